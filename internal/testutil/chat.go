package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/roach88/streakbot/internal/checkin"
)

// Post is a message sent through FakeChat.
type Post struct {
	ChannelID string
	Text      string
}

// FakeChat is an in-memory group chat.
type FakeChat struct {
	mu sync.Mutex

	Members  []checkin.Member
	Channels map[string][]checkin.Message

	// Errors injected per operation. MessagesErr applies to every channel
	// unless ChannelErr names the channel.
	RosterErr   error
	MessagesErr error
	ChannelErr  map[string]error
	PostErr     error

	Log   *CallLog
	posts []Post
	wins  []checkin.Window
}

// NewFakeChat creates a chat with the given roster and no messages.
func NewFakeChat(log *CallLog, members ...checkin.Member) *FakeChat {
	if log == nil {
		log = NewCallLog()
	}
	return &FakeChat{
		Members:  members,
		Channels: make(map[string][]checkin.Message),
		Log:      log,
	}
}

// SetMessages stores a channel's batch, most-recent-first. Positions are
// assigned in order.
func (c *FakeChat) SetMessages(channelID string, msgs ...checkin.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range msgs {
		msgs[i].Position = i
	}
	c.Channels[channelID] = msgs
}

func (c *FakeChat) Roster(ctx context.Context) ([]checkin.Member, error) {
	c.Log.Record("roster")
	if c.RosterErr != nil {
		return nil, c.RosterErr
	}
	return append([]checkin.Member(nil), c.Members...), nil
}

// RawRoster returns the roster in GroupMe's group document shape.
func (c *FakeChat) RawRoster(ctx context.Context) (json.RawMessage, error) {
	c.Log.Record("raw roster")
	if c.RosterErr != nil {
		return nil, c.RosterErr
	}
	type member struct {
		UserID   string `json:"user_id"`
		Nickname string `json:"nickname"`
	}
	doc := struct {
		Response struct {
			Members []member `json:"members"`
		} `json:"response"`
	}{}
	doc.Response.Members = make([]member, 0, len(c.Members))
	for _, m := range c.Members {
		doc.Response.Members = append(doc.Response.Members, member{UserID: m.ID, Nickname: m.Name})
	}
	return json.Marshal(doc)
}

func (c *FakeChat) Messages(ctx context.Context, channelID string, w checkin.Window) ([]checkin.Message, error) {
	c.Log.Record("messages " + channelID)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wins = append(c.wins, w)
	if err := c.ChannelErr[channelID]; err != nil {
		return nil, err
	}
	if c.MessagesErr != nil {
		return nil, c.MessagesErr
	}
	msgs := c.Channels[channelID]
	if msgs == nil {
		return []checkin.Message{}, nil
	}
	return append([]checkin.Message(nil), msgs...), nil
}

func (c *FakeChat) Post(ctx context.Context, channelID, text string) error {
	c.Log.Record("post " + channelID)
	if c.PostErr != nil {
		return c.PostErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posts = append(c.posts, Post{ChannelID: channelID, Text: text})
	return nil
}

// Posts returns the messages posted so far.
func (c *FakeChat) Posts() []Post {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Post(nil), c.posts...)
}

// Windows returns the windows passed to Messages.
func (c *FakeChat) Windows() []checkin.Window {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]checkin.Window(nil), c.wins...)
}
