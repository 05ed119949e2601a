package messaging

import (
	"strings"
	"time"
)

// Message is an immutable entry in a conversation's append-only log. Seq is
// assigned by the store and is 1 for the conversation's first message; the
// read flag is the only mutable field after append.
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	Text           string
	Read           bool
	Seq            int64
	CreatedAt      time.Time
}

// NewMessage validates and normalizes a candidate message. Text is trimmed;
// empty text is rejected before any store access.
func NewMessage(conversationID, senderID, text string, now time.Time) (Message, error) {
	if conversationID == "" || senderID == "" {
		return Message{}, ErrNotParticipant
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
		CreatedAt:      now.UTC(),
	}, nil
}

// First reports whether this is the conversation's very first message.
func (m Message) First() bool {
	return m.Seq == 1
}
