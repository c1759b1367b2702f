package checkin

import (
	"errors"
	"regexp"
	"strconv"
)

var (
	// ErrNoOrdinal reports text that does not start with a check-in marker.
	ErrNoOrdinal = errors.New("no check-in ordinal")

	// ErrNoText reports a message whose text could not be inspected.
	ErrNoText = errors.New("message has no text")
)

// ordinalPattern matches digits, an optional '?', then ')' or '.'.
var ordinalPattern = regexp.MustCompile(`^(\d+)\??[).]`)

// ParseOrdinal extracts the leading check-in ordinal from text.
// Returns ErrNoOrdinal when the text does not start with a marker.
func ParseOrdinal(text string) (int, error) {
	match := ordinalPattern.FindStringSubmatch(text)
	if match == nil {
		return 0, ErrNoOrdinal
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		// Out of range for int; nobody counts that high.
		return 0, ErrNoOrdinal
	}
	return n, nil
}

// ParseMessage is ParseOrdinal for a whole message.
// Returns ErrNoText for messages without inspectable text.
func ParseMessage(m Message) (int, error) {
	if m.NoText {
		return 0, ErrNoText
	}
	return ParseOrdinal(m.Text)
}
