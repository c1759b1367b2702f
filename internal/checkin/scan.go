package checkin

import (
	"errors"
	"log/slog"
)

// StopReason explains why a scan ended.
type StopReason string

const (
	// StopExhausted means every message in the batch was examined.
	StopExhausted StopReason = "exhausted"

	// StopBoundary means an ordinal below the expected value was found,
	// so the rest of the batch belongs to an already-processed day.
	StopBoundary StopReason = "boundary"

	// StopPastEnd means the counter advanced past the size of the batch:
	// every message was credited and no larger ordinal can follow.
	StopPastEnd StopReason = "past_end"
)

// Result is the outcome of scanning one channel's batch.
type Result struct {
	// Credited lists member IDs credited with a check-in, in credit order.
	// A member who checks in twice appears twice.
	Credited []string

	// Checkins is the number of accepted check-ins (last ordinal accepted).
	Checkins int

	// Skipped counts messages without a usable ordinal.
	Skipped int

	// OutOfSequence counts ordinals above the expected value.
	OutOfSequence int

	// Stopped is why the scan ended.
	Stopped StopReason

	// StopPosition is the position of the boundary message, or -1.
	StopPosition int
}

// Scan credits members from a channel's non-event messages.
//
// msgs must be most-recent-first and already bounded to the target day's
// window. The scan proceeds in the order received, comparing each ordinal
// against an expected counter that starts at 1. See the package doc for
// the sequence rules. A nil logger discards diagnostics.
func Scan(log *slog.Logger, channel string, msgs []Message) Result {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = log.With("channel", channel)

	res := Result{Stopped: StopExhausted, StopPosition: -1}
	expected := 1

	for _, m := range msgs {
		n, err := ParseMessage(m)
		if err != nil {
			res.Skipped++
			if errors.Is(err, ErrNoText) {
				log.Error("unable to parse text from message", "position", m.Position, "member_id", m.MemberID)
			} else {
				log.Warn("skipping message not prefixed with a check-in marker", "position", m.Position)
			}
			continue
		}

		if n > expected {
			res.OutOfSequence++
			log.Warn("check-in ordinal above expected, ignoring", "position", m.Position, "ordinal", n, "expected", expected)
			continue
		}
		if n < expected {
			res.Stopped = StopBoundary
			res.StopPosition = m.Position
			log.Warn("check-in ordinal below expected, stopping", "position", m.Position, "ordinal", n, "expected", expected)
			break
		}

		log.Debug("check-in found", "position", m.Position, "ordinal", n, "member_id", m.MemberID)
		res.Credited = append(res.Credited, m.MemberID)
		expected++
		if expected > len(msgs) {
			res.Stopped = StopPastEnd
			break
		}
	}

	res.Checkins = expected - 1
	if res.Checkins == 0 {
		log.Info("no one read today")
	} else {
		log.Info("logged check-ins", "count", res.Checkins)
	}
	return res
}
