// Package run orchestrates one daily streak update: fetch the roster and
// each check-in channel, scan for check-ins, fold the day into the stored
// streaks, persist, and publish the leaderboard.
//
// Persistence always precedes publishing. A run that fails before the write
// leaves the store untouched; a run that fails while publishing has already
// saved the new streaks.
package run

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/streakbot/internal/checkin"
	"github.com/roach88/streakbot/internal/config"
	"github.com/roach88/streakbot/internal/leaderboard"
	"github.com/roach88/streakbot/internal/ledger"
)

// Chat is the group chat the runner reads from and posts to.
type Chat interface {
	Roster(ctx context.Context) ([]checkin.Member, error)
	Messages(ctx context.Context, channelID string, w checkin.Window) ([]checkin.Message, error)
	Post(ctx context.Context, channelID, text string) error
}

// Store holds the streak snapshot between runs.
type Store interface {
	ReadStreaks(ctx context.Context) (map[string]int, error)
	WriteStreaks(ctx context.Context, streaks map[string]int) error
}

// Runner executes the daily pipeline.
type Runner struct {
	Chat   Chat
	Store  Store
	Logger *slog.Logger
	Config config.Config

	// ForceDryRun skips the write and the post even in prod.
	ForceDryRun bool
}

// ChannelReport summarizes one channel's scan.
type ChannelReport struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Messages      int                `json:"messages"`
	Credited      []string           `json:"credited"`
	Checkins      int                `json:"checkins"`
	Skipped       int                `json:"skipped"`
	OutOfSequence int                `json:"out_of_sequence"`
	Stopped       checkin.StopReason `json:"stopped"`
}

// Report describes a completed run.
type Report struct {
	Window      checkin.Window      `json:"-"`
	Day         string              `json:"day"`
	WindowStart time.Time           `json:"window_start"`
	DryRun      bool                `json:"dry_run"`
	Channels    []ChannelReport     `json:"channels,omitempty"`
	Read        int                 `json:"read"`
	Streaks     ledger.Streaks      `json:"streaks"`
	Leaderboard []leaderboard.Entry `json:"leaderboard"`
	Message     string              `json:"message"`
	Persisted   bool                `json:"persisted"`
	Posted      bool                `json:"posted"`
	Posts       int                 `json:"posts"`
}

// DryRun reports whether this runner skips writes and posts.
func (r *Runner) DryRun() bool {
	return r.ForceDryRun || r.Config.DryRun()
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// Window returns the day a run at now processes.
func (r *Runner) Window(now time.Time) (checkin.Window, error) {
	loc, err := r.Config.Location()
	if err != nil {
		return checkin.Window{}, err
	}
	return checkin.NewWindow(now, loc, r.Config.Schedule.DayStartHour)
}

// Run processes the day before now.
func (r *Runner) Run(ctx context.Context, now time.Time) (Report, error) {
	log := r.logger()

	win, err := r.Window(now)
	if err != nil {
		return Report{}, fmt.Errorf("resolve window: %w", err)
	}
	rep := r.newReport(win)
	log.Info("starting run", "day", rep.Day, "window_start", win.Start, "dry_run", rep.DryRun)

	roster, err := r.roster(ctx)
	if err != nil {
		return rep, err
	}
	names := make(map[string]string, len(roster))
	for _, m := range roster {
		names[m.ID] = m.Name
	}

	today := ledger.NewOutcomes(roster)
	for _, ch := range r.Config.GroupMe.CheckinChannels {
		msgs, err := r.Chat.Messages(ctx, ch.ID, win)
		if err != nil {
			return rep, fail(CodeFetchFailed, "get messages "+ch.Label(), err)
		}

		res := checkin.Scan(log, ch.Label(), checkin.FilterEvents(msgs))
		for _, id := range res.Credited {
			if !today.MarkRead(id) {
				log.Warn("check-in from member not on roster, ignoring", "channel", ch.Label(), "member_id", id)
			}
		}
		rep.Channels = append(rep.Channels, ChannelReport{
			ID:            ch.ID,
			Name:          ch.Label(),
			Messages:      len(msgs),
			Credited:      res.Credited,
			Checkins:      res.Checkins,
			Skipped:       res.Skipped,
			OutOfSequence: res.OutOfSequence,
			Stopped:       res.Stopped,
		})
	}
	rep.Read = today.ReadCount()
	log.Info("scored day", "read", rep.Read, "roster", len(roster))

	prior, err := r.Store.ReadStreaks(ctx)
	if err != nil {
		return rep, fail(CodePersistRead, "read streaks", err)
	}
	rep.Streaks = ledger.Apply(prior, today)

	if rep.DryRun {
		log.Info("dry run, not writing streaks")
	} else {
		if err := r.Store.WriteStreaks(ctx, rep.Streaks); err != nil {
			return rep, fail(CodePersistWrite, "write streaks", err)
		}
		rep.Persisted = true
		log.Info("wrote streaks", "count", len(rep.Streaks))
	}

	rep.Leaderboard = leaderboard.Rank(rep.Streaks, names)
	rep.Message = leaderboard.Render(leaderboard.Header(r.Config.Schedule.Title, rep.Day), rep.Leaderboard)

	if rep.DryRun {
		log.Info("dry run, not posting leaderboard", "message", rep.Message)
		return rep, nil
	}
	parts := leaderboard.Split(rep.Message, leaderboard.MaxPostLength)
	for i, part := range parts {
		if err := r.Chat.Post(ctx, r.Config.GroupMe.StreaksChannel, part); err != nil {
			return rep, fail(CodePublishFailed, "post leaderboard", err)
		}
		rep.Posts = i + 1
	}
	rep.Posted = true
	log.Info("posted leaderboard", "entries", len(rep.Leaderboard), "posts", rep.Posts)
	return rep, nil
}

// Preview renders the stored streaks of the current roster without
// scanning, writing, or posting. Members with no stored streak show 0.
func (r *Runner) Preview(ctx context.Context, now time.Time) (Report, error) {
	win, err := r.Window(now)
	if err != nil {
		return Report{}, fmt.Errorf("resolve window: %w", err)
	}
	rep := r.newReport(win)
	rep.DryRun = true

	roster, err := r.roster(ctx)
	if err != nil {
		return rep, err
	}

	stored, err := r.Store.ReadStreaks(ctx)
	if err != nil {
		return rep, fail(CodePersistRead, "read streaks", err)
	}

	rep.Streaks = make(ledger.Streaks, len(roster))
	names := make(map[string]string, len(roster))
	for _, m := range roster {
		rep.Streaks[m.ID] = stored[m.ID]
		names[m.ID] = m.Name
	}
	rep.Leaderboard = leaderboard.Rank(rep.Streaks, names)
	rep.Message = leaderboard.Render(leaderboard.Header(r.Config.Schedule.Title, rep.Day), rep.Leaderboard)
	return rep, nil
}

func (r *Runner) newReport(win checkin.Window) Report {
	return Report{
		Window:      win,
		Day:         win.Label(),
		WindowStart: win.Start,
		DryRun:      r.DryRun(),
	}
}

func (r *Runner) roster(ctx context.Context) ([]checkin.Member, error) {
	roster, err := r.Chat.Roster(ctx)
	if err != nil {
		return nil, fail(CodeFetchFailed, "get users", err)
	}
	if len(roster) == 0 {
		return nil, fail(CodeEmptyRoster, "get users", nil)
	}
	return roster, nil
}
