package repository

import (
	"context"
	"errors"

	messaging "github.com/ashudev21/rabf-backend/internal/pkg/messaging/application/domain"
)

// ErrNotFound signals an absent conversation.
var ErrNotFound = errors.New("messaging repository: conversation not found")

// ConversationRepository defines persistence for conversations and their
// append-only message logs. AppendMessage is the sole serialization point
// for concurrent senders to the same conversation: it assigns the sequence
// number and refreshes the denormalized last-message summary atomically.
type ConversationRepository interface {
	// FindOrCreate returns the conversation for the unordered user pair,
	// creating it when absent. Safe under concurrent first-contact from
	// both directions: exactly one record survives.
	FindOrCreate(ctx context.Context, userA, userB string) (messaging.Conversation, error)

	FindByID(ctx context.Context, id string) (messaging.Conversation, error)

	// FindByPair returns the conversation for the unordered pair without
	// creating one; ErrNotFound when the pair has never spoken.
	FindByPair(ctx context.Context, userA, userB string) (messaging.Conversation, error)

	// AppendMessage atomically appends msg to the conversation's log,
	// assigning ID and Seq, and updates lastMessageText/lastMessageTime/
	// updatedAt. Returns ErrNotFound if the conversation no longer exists.
	AppendMessage(ctx context.Context, conversationID string, msg messaging.Message) (messaging.Message, error)

	// PageMessages returns the page-th window of size limit, counting
	// backward from the end of the log: page 1 holds the most recent limit
	// messages in chronological order, page 2 the limit messages
	// immediately preceding them, with no overlap and no gap.
	PageMessages(ctx context.Context, conversationID string, limit, page int) ([]messaging.Message, error)

	// CountBySender counts messages authored by senderID in the
	// conversation; the Usage Gate reads it fresh on every send.
	CountBySender(ctx context.Context, conversationID, senderID string) (int, error)

	// ListForUser returns the user's conversations ordered by most recent
	// activity first.
	ListForUser(ctx context.Context, userID string) ([]messaging.Conversation, error)
}

// BookingReader is the narrow read-only view of bookings the Usage Gate
// needs: whether an accepted booking links two identities, checked in both
// customer/provider directions.
type BookingReader interface {
	HasAcceptedBetween(ctx context.Context, userA, userB string) (bool, error)
}
