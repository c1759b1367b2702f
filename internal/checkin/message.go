package checkin

// Member is a tracked group member as reported by the roster.
// ID is the identity; Name is display metadata refreshed every run.
type Member struct {
	ID   string
	Name string
}

// Message is a chat message in a retrieved batch.
type Message struct {
	// MemberID is the author of the message.
	MemberID string

	// Text is the raw message body.
	Text string

	// NoText is set when the upstream record carried no text at all
	// (image-only posts, null text). Such messages cannot be inspected.
	NoText bool

	// Event marks system-generated messages (joins, renames, polls).
	// Events are never check-ins.
	Event bool

	// Position is the rank in the batch, most-recent-first (0 = newest).
	Position int
}

// FilterEvents returns the messages that are not system events,
// preserving order and positions.
func FilterEvents(msgs []Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Event {
			continue
		}
		out = append(out, m)
	}
	return out
}
