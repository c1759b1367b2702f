package groupme

import "encoding/json"

// envelope wraps every GroupMe v3 response body.
type envelope[T any] struct {
	Response T `json:"response"`
}

type groupResponse struct {
	Members []memberRecord `json:"members"`
}

// memberRecord is one entry of a group's member list.
type memberRecord struct {
	UserID   string `json:"user_id" validate:"required"`
	Nickname string `json:"nickname" validate:"required"`
}

type messagesResponse struct {
	Count    int             `json:"count"`
	Messages []messageRecord `json:"messages"`
}

// messageRecord is one chat message. Text is null for attachment-only
// posts. Event is present only on system-generated messages.
type messageRecord struct {
	ID      string          `json:"id"`
	UserID  string          `json:"user_id"`
	Text    *string         `json:"text"`
	Event   json.RawMessage `json:"event,omitempty"`
	Created int64           `json:"created_at"`
}

type postRequest struct {
	Message postMessage `json:"message" validate:"required"`
}

type postMessage struct {
	SourceGUID string `json:"source_guid" validate:"required"`
	Text       string `json:"text" validate:"required,max=1000"`
}
