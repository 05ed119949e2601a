package usecase

import (
	"context"
	"fmt"
	"time"

	userport "github.com/ashudev21/rabf-backend/internal/repository/port"

	messaging "github.com/ashudev21/rabf-backend/internal/pkg/messaging/application/domain"
	repository "github.com/ashudev21/rabf-backend/internal/pkg/messaging/persistence/repository/port"
	"github.com/ashudev21/rabf-backend/internal/pkg/notification"
)

// Notifier is the slice of the notification bus this use case needs:
// fire-and-forget fan-out to a target user. Failures stay inside the
// implementation; a send must never fail because a notification could not
// be published.
type Notifier interface {
	Notify(ctx context.Context, targetUserID string, p notification.Payload)
}

// SendMessageInput carries one send attempt. Exactly one of ConversationID
// (socket path: the joined room) or RecipientID (REST path: first contact)
// must identify the thread; when both are set ConversationID wins.
type SendMessageInput struct {
	SenderID       string
	RecipientID    string
	ConversationID string
	Text           string
}

// SendMessageResult is the persisted message plus its conversation with the
// refreshed last-message summary, ready for room broadcast and chat-list
// updates.
type SendMessageResult struct {
	Message      messaging.Message
	Conversation messaging.Conversation
	RecipientID  string
}

// SendMessageUseCase runs the full send pipeline: resolve the conversation,
// apply the usage gate, append, and publish the first-contact notification.
// Room broadcast stays with the callers; persistence and notification are
// deliberately decoupled so a broker outage never rolls back an append.
type SendMessageUseCase struct {
	Repo     repository.ConversationRepository
	Bookings repository.BookingReader
	Users    userport.UserRepository
	Notifier Notifier

	clock func() time.Time
}

func NewSendMessageUseCase(repo repository.ConversationRepository, bookings repository.BookingReader, users userport.UserRepository, notifier Notifier) *SendMessageUseCase {
	return &SendMessageUseCase{
		Repo:     repo,
		Bookings: bookings,
		Users:    users,
		Notifier: notifier,
		clock:    func() time.Time { return time.Now().UTC() },
	}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (SendMessageResult, error) {
	if in.SenderID == "" {
		return SendMessageResult{}, fmt.Errorf("senderId is required")
	}

	conv, err := uc.resolveConversation(ctx, in)
	if err != nil {
		return SendMessageResult{}, err
	}
	recipient, ok := conv.OtherParticipant(in.SenderID)
	if !ok {
		return SendMessageResult{}, messaging.ErrNotParticipant
	}

	// Usage gate, evaluated fresh on every attempt: booking status can
	// change between messages.
	hasBooking, err := uc.Bookings.HasAcceptedBetween(ctx, in.SenderID, recipient)
	if err != nil {
		return SendMessageResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	sentCount := 0
	if !hasBooking {
		sentCount, err = uc.Repo.CountBySender(ctx, conv.ID, in.SenderID)
		if err != nil {
			return SendMessageResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}
	if err := messaging.AllowSend(hasBooking, sentCount); err != nil {
		return SendMessageResult{}, err
	}

	msg, err := messaging.NewMessage(conv.ID, in.SenderID, in.Text, uc.clock())
	if err != nil {
		return SendMessageResult{}, err
	}

	appended, err := uc.Repo.AppendMessage(ctx, conv.ID, msg)
	if err == repository.ErrNotFound {
		return SendMessageResult{}, err
	}
	if err != nil {
		return SendMessageResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// A NEW_MESSAGE notification announces first contact only; later
	// messages reach the recipient through the room and chat-list events.
	if appended.First() {
		uc.Notifier.Notify(ctx, recipient, notification.Payload{
			Type:    notification.TypeNewMessage,
			Message: fmt.Sprintf("New message from %s", uc.senderName(ctx, in.SenderID)),
			Link:    "/chats/" + in.SenderID,
			ChatID:  conv.ID,
			SentAt:  &appended.CreatedAt,
		})
	}

	conv.LastMessageText = appended.Text
	conv.LastMessageTime = appended.CreatedAt
	conv.UpdatedAt = appended.CreatedAt

	return SendMessageResult{Message: appended, Conversation: conv, RecipientID: recipient}, nil
}

func (uc *SendMessageUseCase) resolveConversation(ctx context.Context, in SendMessageInput) (messaging.Conversation, error) {
	if in.ConversationID != "" {
		conv, err := uc.Repo.FindByID(ctx, in.ConversationID)
		if err == repository.ErrNotFound {
			return messaging.Conversation{}, err
		}
		if err != nil {
			return messaging.Conversation{}, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if !conv.HasParticipant(in.SenderID) {
			return messaging.Conversation{}, messaging.ErrNotParticipant
		}
		return conv, nil
	}

	if in.RecipientID == "" {
		return messaging.Conversation{}, fmt.Errorf("recipientId or conversationId is required")
	}
	if in.RecipientID == in.SenderID {
		return messaging.Conversation{}, messaging.ErrSelfMessage
	}
	conv, err := uc.Repo.FindOrCreate(ctx, in.SenderID, in.RecipientID)
	if err != nil {
		return messaging.Conversation{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return conv, nil
}

// senderName resolves a display name for notification text; the user id is
// an acceptable fallback when the lookup fails.
func (uc *SendMessageUseCase) senderName(ctx context.Context, senderID string) string {
	if uc.Users == nil {
		return senderID
	}
	u, err := uc.Users.FindByID(ctx, senderID)
	if err != nil || u.Name == "" {
		return senderID
	}
	return u.Name
}
