// Package leaderboard ranks streaks and renders the message posted to chat.
package leaderboard

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// MaxPostLength is the longest message GroupMe accepts, in characters.
const MaxPostLength = 1000

// Entry is one ranked line of the leaderboard.
type Entry struct {
	MemberID string `json:"member_id"`
	Name     string `json:"name"`
	Streak   int    `json:"streak"`
}

// String renders the entry as "<streak> - <name>".
func (e Entry) String() string {
	return strconv.Itoa(e.Streak) + " - " + e.Name
}

// Rank orders members by streak descending, then by display name ascending
// ignoring case. Members without a name fall back to their ID.
func Rank(streaks map[string]int, names map[string]string) []Entry {
	entries := make([]Entry, 0, len(streaks))
	keys := make(map[string]string, len(streaks))
	for id, streak := range streaks {
		name, ok := names[id]
		if !ok {
			name = id
		}
		entries = append(entries, Entry{MemberID: id, Name: name, Streak: streak})
		keys[id] = foldName(name)
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Streak != b.Streak {
			return a.Streak > b.Streak
		}
		if ka, kb := keys[a.MemberID], keys[b.MemberID]; ka != kb {
			return ka < kb
		}
		// Names equal ignoring case; keep the order total.
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.MemberID < b.MemberID
	})
	return entries
}

// foldName is the case-insensitive comparison key for a display name.
func foldName(name string) string {
	return cases.Fold().String(norm.NFC.String(name))
}

// Header returns "<title> for <label>:".
func Header(title, label string) string {
	return fmt.Sprintf("%s for %s:", title, label)
}

// Render joins the header and one line per entry with newlines.
func Render(header string, entries []Entry) string {
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, header)
	for _, e := range entries {
		lines = append(lines, e.String())
	}
	return strings.Join(lines, "\n")
}

// Split breaks a rendered leaderboard into messages of at most limit
// characters, cutting only between lines. Joining the parts with newlines
// restores the message unless a single line was longer than limit; such a
// line is cut mid-line.
func Split(message string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(message) <= limit {
		return []string{message}
	}

	var (
		parts   []string
		cur     strings.Builder
		size    int
		started bool
	)
	flush := func() {
		parts = append(parts, cur.String())
		cur.Reset()
		size = 0
		started = false
	}

	for _, line := range strings.Split(message, "\n") {
		n := utf8.RuneCountInString(line)
		if started && size+1+n > limit {
			flush()
		}
		for n > limit {
			runes := []rune(line)
			parts = append(parts, string(runes[:limit]))
			line = string(runes[limit:])
			n -= limit
		}
		if started {
			cur.WriteByte('\n')
			size++
		}
		cur.WriteString(line)
		size += n
		started = true
	}
	if started {
		flush()
	}
	return parts
}
