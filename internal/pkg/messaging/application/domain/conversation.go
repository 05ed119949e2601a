package messaging

import (
	"errors"
	"time"
)

// Domain-level errors for messaging behaviors.
var (
	ErrNotParticipant = errors.New("messaging: sender is not a participant in the conversation")
	ErrSelfMessage    = errors.New("messaging: cannot message yourself")
	ErrEmptyMessage   = errors.New("messaging: message text is empty")
)

// Conversation is the persisted thread between exactly two users. The pair
// is stored normalized (ParticipantA < ParticipantB) so at most one
// conversation exists per unordered pair. Conversations are never deleted;
// the denormalized last-message fields feed list views.
type Conversation struct {
	ID              string
	ParticipantA    string
	ParticipantB    string
	LastMessageText string
	LastMessageTime time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NormalizePair orders two participant ids so the unordered pair maps to a
// single canonical (a, b) with a < b.
func NormalizePair(u1, u2 string) (string, string) {
	if u2 < u1 {
		return u2, u1
	}
	return u1, u2
}

// HasParticipant tells whether userID belongs to this conversation.
func (c Conversation) HasParticipant(userID string) bool {
	return userID != "" && (c.ParticipantA == userID || c.ParticipantB == userID)
}

// OtherParticipant returns the peer of userID, or ok=false when userID is
// not a participant.
func (c Conversation) OtherParticipant(userID string) (string, bool) {
	switch userID {
	case c.ParticipantA:
		return c.ParticipantB, true
	case c.ParticipantB:
		return c.ParticipantA, true
	default:
		return "", false
	}
}
