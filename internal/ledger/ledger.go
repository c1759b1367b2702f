// Package ledger folds daily participation outcomes into signed streaks.
//
// A streak is a signed run length: positive for consecutive days read,
// negative for consecutive days missed, zero only before a member's first
// recorded day.
package ledger

import (
	"sort"

	"github.com/roach88/streakbot/internal/checkin"
)

// Outcome is a member's result for one day.
type Outcome int

const (
	// NotRead is the default outcome for every roster member.
	NotRead Outcome = -1

	// Read is the outcome for members credited with a check-in.
	Read Outcome = 1
)

// String returns "read" or "not_read".
func (o Outcome) String() string {
	if o == Read {
		return "read"
	}
	return "not_read"
}

// Streaks maps member ID to signed streak.
type Streaks map[string]int

// Outcomes maps member ID to the day's outcome.
// It holds exactly one entry per roster member.
type Outcomes map[string]Outcome

// NewOutcomes seeds every roster member with NotRead.
func NewOutcomes(roster []checkin.Member) Outcomes {
	out := make(Outcomes, len(roster))
	for _, m := range roster {
		out[m.ID] = NotRead
	}
	return out
}

// MarkRead credits a member with Read.
// Returns false, leaving the map unchanged, if id is not on the roster.
func (o Outcomes) MarkRead(id string) bool {
	if _, ok := o[id]; !ok {
		return false
	}
	o[id] = Read
	return true
}

// ReadCount returns how many members read.
func (o Outcomes) ReadCount() int {
	n := 0
	for _, v := range o {
		if v == Read {
			n++
		}
	}
	return n
}

// Next folds one day's outcome into a streak.
//
// A zero streak or a streak with the same sign grows by one in the outcome's
// direction. A streak with the opposite sign restarts at the outcome.
func Next(streak int, delta Outcome) int {
	d := int(delta)
	if streak == 0 || (streak > 0) == (d > 0) {
		return streak + d
	}
	return d
}

// Apply computes the new streak for every member in today.
// Members missing from prior start at 0. Members in prior but not in
// today are not part of the result.
func Apply(prior Streaks, today Outcomes) Streaks {
	next := make(Streaks, len(today))
	for id, delta := range today {
		next[id] = Next(prior[id], delta)
	}
	return next
}

// IDs returns the member IDs in s, sorted.
func (s Streaks) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
