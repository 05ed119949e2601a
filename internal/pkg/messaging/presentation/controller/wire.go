package controller

import (
	"context"
	"encoding/json"
	"time"

	userport "github.com/ashudev21/rabf-backend/internal/repository/port"

	"github.com/ashudev21/rabf-backend/internal/infrastructure/realtime"
	messaging "github.com/ashudev21/rabf-backend/internal/pkg/messaging/application/domain"
	"github.com/ashudev21/rabf-backend/internal/pkg/messaging/application/usecase"
	"github.com/ashudev21/rabf-backend/internal/pkg/notification"
)

// Socket protocol frames. Inbound: join_room, send_message. Outbound:
// connected, joined, receive_message, update_chat_list, error.

type inboundFrame struct {
	Type    string `json:"type"`
	RoomID  string `json:"room_id,omitempty"`
	Content string `json:"content,omitempty"`
}

type ackFrame struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id,omitempty"`
}

type errorFrame struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type messagePayload struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Text           string    `json:"text"`
	Read           bool      `json:"read"`
	Seq            int64     `json:"seq"`
	CreatedAt      time.Time `json:"created_at"`
}

type receiveMessageFrame struct {
	Type    string         `json:"type"`
	RoomID  string         `json:"room_id"`
	Message messagePayload `json:"message"`
}

type participantSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
	ProfileImage string `json:"profile_image,omitempty"`
}

type updateChatListFrame struct {
	Type             string             `json:"type"`
	ChatID           string             `json:"chat_id"`
	LastMessage      string             `json:"last_message"`
	LastMessageTime  time.Time          `json:"last_message_time"`
	OtherParticipant participantSummary `json:"other_participant"`
}

func toMessagePayload(m messaging.Message) messagePayload {
	return messagePayload{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Text:           m.Text,
		Read:           m.Read,
		Seq:            m.Seq,
		CreatedAt:      m.CreatedAt,
	}
}

// fanOutMessage pushes a freshly appended message to the conversation room
// and refreshes both participants' chat lists through their private rooms.
// Shared by the socket and REST send paths; all broker failures are
// swallowed downstream, so this never fails the send.
func fanOutMessage(ctx context.Context, bus *notification.Bus, users userport.UserRepository, res usecase.SendMessageResult) {
	msgFrame, err := json.Marshal(receiveMessageFrame{
		Type:    "receive_message",
		RoomID:  res.Conversation.ID,
		Message: toMessagePayload(res.Message),
	})
	if err == nil {
		bus.BroadcastRoom(ctx, res.Conversation.ID, msgFrame)
	}

	// The recipient's list shows the sender, and vice versa.
	sender := summaryFor(ctx, users, res.Message.SenderID)
	recipient := summaryFor(ctx, users, res.RecipientID)

	pushChatList(ctx, bus, res, res.RecipientID, sender)
	pushChatList(ctx, bus, res, res.Message.SenderID, recipient)
}

func pushChatList(ctx context.Context, bus *notification.Bus, res usecase.SendMessageResult, targetUserID string, other participantSummary) {
	frame, err := json.Marshal(updateChatListFrame{
		Type:             "update_chat_list",
		ChatID:           res.Conversation.ID,
		LastMessage:      res.Conversation.LastMessageText,
		LastMessageTime:  res.Conversation.LastMessageTime,
		OtherParticipant: other,
	})
	if err != nil {
		return
	}
	bus.BroadcastRoom(ctx, realtime.UserRoom(targetUserID), frame)
}

// summaryFor resolves display details best-effort; a bare id is enough for
// the client to render something.
func summaryFor(ctx context.Context, users userport.UserRepository, userID string) participantSummary {
	if users == nil {
		return participantSummary{ID: userID}
	}
	u, err := users.FindByID(ctx, userID)
	if err != nil {
		return participantSummary{ID: userID}
	}
	return participantSummary{ID: u.ID, Name: u.Name, ProfileImage: u.ProfileImage}
}
