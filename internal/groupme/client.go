// Package groupme is a small client for the GroupMe v3 REST API covering
// what the streak bot needs: the group roster, a channel's recent messages,
// and posting a message.
//
// Every call is synchronous and retried according to a RetryPolicy. When the
// attempts run out the call fails with a *RetryError; nothing is dropped
// silently. Record-level problems (a member without a nickname) are logged
// and skipped.
package groupme

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/roach88/streakbot/internal/checkin"
)

// DefaultBaseURL is the public GroupMe v3 API.
const DefaultBaseURL = "https://api.groupme.com/v3"

// DefaultLimit is the largest page GroupMe serves.
const DefaultLimit = 100

// Options configures a Client.
type Options struct {
	BaseURL string
	Token   string
	GroupID string

	// Limit caps messages fetched per channel (GroupMe allows up to 100).
	Limit int

	Retry RetryPolicy

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// NewGUID overrides source_guid generation (for tests).
	NewGUID func() (string, error)
}

// Client talks to one GroupMe group and its subgroups.
type Client struct {
	base    string
	token   string
	groupID string
	limit   int
	retry   RetryPolicy
	http    *http.Client
	log     *slog.Logger
	val     *validator.Validate
	newGUID func() (string, error)
}

// New creates a Client, filling unset options with defaults.
func New(opts Options) *Client {
	c := &Client{
		base:    opts.BaseURL,
		token:   opts.Token,
		groupID: opts.GroupID,
		limit:   opts.Limit,
		retry:   opts.Retry,
		http:    opts.HTTPClient,
		log:     opts.Logger,
		val:     validator.New(validator.WithRequiredStructEnabled()),
		newGUID: opts.NewGUID,
	}
	if c.base == "" {
		c.base = DefaultBaseURL
	}
	if c.limit <= 0 || c.limit > DefaultLimit {
		c.limit = DefaultLimit
	}
	if c.retry.Attempts == 0 {
		c.retry = DefaultRetry
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.newGUID == nil {
		c.newGUID = timeGUID
	}
	return c
}

// timeGUID returns a time-based (version 1) UUID, matching what GroupMe's
// own clients send as source_guid.
func timeGUID() (string, error) {
	id, err := uuid.NewUUID()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// endpoint builds an API URL carrying the access token.
func (c *Client) endpoint(query url.Values, elem ...string) (string, error) {
	u, err := url.JoinPath(c.base, elem...)
	if err != nil {
		return "", err
	}
	if query == nil {
		query = url.Values{}
	}
	query.Set("token", c.token)
	return u + "?" + query.Encode(), nil
}

// RawRoster returns the group's JSON document as served by GroupMe.
func (c *Client) RawRoster(ctx context.Context) (json.RawMessage, error) {
	endpoint, err := c.endpoint(nil, "groups", c.groupID)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}

	resp, err := c.do(ctx, "get users", func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	}, isOK)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("get users: read body: %w", err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("get users: response is not JSON")
	}
	return body, nil
}

// Roster returns the group's members. Members without a user_id or a
// nickname are skipped with a warning.
func (c *Client) Roster(ctx context.Context) ([]checkin.Member, error) {
	raw, err := c.RawRoster(ctx)
	if err != nil {
		return nil, err
	}

	var env envelope[groupResponse]
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("get users: decode: %w", err)
	}

	members := make([]checkin.Member, 0, len(env.Response.Members))
	for i, rec := range env.Response.Members {
		if err := c.val.Struct(rec); err != nil {
			c.log.Warn("missing user_id or nickname in roster record", "index", i, "error", err)
			continue
		}
		members = append(members, checkin.Member{ID: rec.UserID, Name: rec.Nickname})
	}

	c.log.Info("found users", "count", len(members))
	return members, nil
}

// Messages returns a channel's messages created after the window opened,
// most-recent-first, with positions assigned in that order.
func (c *Client) Messages(ctx context.Context, channelID string, w checkin.Window) ([]checkin.Message, error) {
	purpose := "get messages " + channelID
	endpoint, err := c.endpoint(url.Values{
		"after_id":    {w.AfterID()},
		"limit":       {strconv.Itoa(c.limit)},
		"acceptFiles": {"0"},
	}, "groups", channelID, "messages")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", purpose, err)
	}

	resp, err := c.do(ctx, purpose, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	}, isOKOrNotModified)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		c.log.Info("no messages since window start", "channel", channelID, "since", w.Label())
		return []checkin.Message{}, nil
	}

	var env envelope[messagesResponse]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", purpose, err)
	}

	msgs := make([]checkin.Message, len(env.Response.Messages))
	events := 0
	for i, rec := range env.Response.Messages {
		m := checkin.Message{
			MemberID: rec.UserID,
			Event:    rec.Event != nil,
			Position: i,
		}
		if rec.Text == nil {
			m.NoText = true
		} else {
			m.Text = *rec.Text
		}
		if m.Event {
			events++
		}
		if rec.UserID == "" && !m.Event {
			c.log.Warn("message record has no user_id", "channel", channelID, "position", i)
		}
		msgs[i] = m
	}

	c.log.Info("found messages", "channel", channelID, "since", w.Label(), "total", len(msgs), "non_events", len(msgs)-events)
	return msgs, nil
}

// Post sends text to a channel.
func (c *Client) Post(ctx context.Context, channelID, text string) error {
	purpose := "post leaderboard " + channelID

	guid, err := c.newGUID()
	if err != nil {
		return fmt.Errorf("%s: source guid: %w", purpose, err)
	}
	payload := postRequest{Message: postMessage{SourceGUID: guid, Text: text}}
	if err := c.val.Struct(payload); err != nil {
		return fmt.Errorf("%s: invalid message: %w", purpose, err)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: encode: %w", purpose, err)
	}

	endpoint, err := c.endpoint(nil, "groups", channelID, "messages")
	if err != nil {
		return fmt.Errorf("%s: %w", purpose, err)
	}

	resp, err := c.do(ctx, purpose, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, isOK)
	if err != nil {
		return err
	}
	resp.Body.Close()

	c.log.Info("post request complete", "purpose", purpose)
	return nil
}
