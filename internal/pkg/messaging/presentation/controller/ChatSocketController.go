package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	userport "github.com/ashudev21/rabf-backend/internal/repository/port"

	"github.com/ashudev21/rabf-backend/internal/infrastructure/auth"
	"github.com/ashudev21/rabf-backend/internal/infrastructure/realtime"
	messaging "github.com/ashudev21/rabf-backend/internal/pkg/messaging/application/domain"
	"github.com/ashudev21/rabf-backend/internal/pkg/messaging/application/usecase"
	repository "github.com/ashudev21/rabf-backend/internal/pkg/messaging/persistence/repository/port"
	"github.com/ashudev21/rabf-backend/internal/pkg/notification"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// ChatSocketController handles the websocket endpoint for realtime chat traffic.
type ChatSocketController struct {
	router          *realtime.Router
	bus             *notification.Bus
	users           userport.UserRepository
	sendMessageUC   *usecase.SendMessageUseCase
	joinRoomUC      *usecase.JoinConversationUseCase
	upgrader        websocket.Upgrader
	inflightTimeout time.Duration
}

func NewChatSocketController(
	repo repository.ConversationRepository,
	bookings repository.BookingReader,
	users userport.UserRepository,
	bus *notification.Bus,
	router *realtime.Router,
	allowedOrigin string,
) *ChatSocketController {
	return &ChatSocketController{
		router:        router,
		bus:           bus,
		users:         users,
		sendMessageUC: usecase.NewSendMessageUseCase(repo, bookings, users, bus),
		joinRoomUC:    usecase.NewJoinConversationUseCase(repo),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
		inflightTimeout: 5 * time.Second,
	}
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades HTTP connections to websocket and processes frames until the
// client disconnects. The auth middleware runs first, so an unauthenticated
// request never reaches the upgrade.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.UserID(c)

		ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; just log and return.
			return
		}

		conn := realtime.NewConnection(userID, ws)
		ctl.router.Attach(conn)
		defer func() {
			ctl.router.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(1 << 20) // 1MB payload cap
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		if payload, err := json.Marshal(ackFrame{Type: "connected"}); err == nil {
			_ = conn.Send(payload)
		}

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				ctl.replyError(conn, "read_error", err.Error())
				return
			}

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "bad_request", "invalid payload")
				continue
			}

			switch frame.Type {
			case "join_room":
				ctl.handleJoin(c, conn, frame)
			case "leave_room":
				ctl.handleLeave(conn, frame)
			case "send_message":
				ctl.handleSend(c, conn, userID, frame)
			default:
				ctl.replyError(conn, "unsupported_type", "unknown frame type")
			}
		}
	}
}

func (ctl *ChatSocketController) handleJoin(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	if frame.RoomID == "" {
		ctl.replyError(conn, "bad_request", "room_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	err := ctl.joinRoomUC.Execute(ctx, usecase.JoinConversationInput{
		ConversationID: frame.RoomID,
		UserID:         conn.UserID,
	})
	if err != nil {
		ctl.handleUseCaseError(conn, err)
		return
	}

	ctl.router.Join(frame.RoomID, conn)

	if payload, err := json.Marshal(ackFrame{Type: "joined", RoomID: frame.RoomID}); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *ChatSocketController) handleLeave(conn *realtime.Connection, frame inboundFrame) {
	if frame.RoomID == "" {
		ctl.replyError(conn, "bad_request", "room_id is required")
		return
	}
	ctl.router.Leave(frame.RoomID, conn)

	if payload, err := json.Marshal(ackFrame{Type: "left", RoomID: frame.RoomID}); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *ChatSocketController) handleSend(c *gin.Context, conn *realtime.Connection, userID string, frame inboundFrame) {
	if frame.RoomID == "" {
		ctl.replyError(conn, "bad_request", "room_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	result, err := ctl.sendMessageUC.Execute(ctx, usecase.SendMessageInput{
		ConversationID: frame.RoomID,
		SenderID:       userID,
		Text:           frame.Content,
	})
	if err != nil {
		ctl.handleUseCaseError(conn, err)
		return
	}

	// Fan out through the broker so every process holding a session in the
	// room, this one included, delivers the same frames.
	fanOutMessage(ctx, ctl.bus, ctl.users, result)
}

func (ctl *ChatSocketController) handleUseCaseError(conn *realtime.Connection, err error) {
	switch {
	case errors.Is(err, messaging.ErrQuotaExceeded):
		ctl.replyError(conn, string(notification.TypeLimitReached), "You have reached your free message limit for this conversation")
	case errors.Is(err, messaging.ErrNotParticipant):
		ctl.replyError(conn, "forbidden", "user is not a participant in this conversation")
	case errors.Is(err, repository.ErrNotFound):
		ctl.replyError(conn, "not_found", "conversation not found")
	case errors.Is(err, usecase.ErrPersistence):
		ctl.replyError(conn, "internal_error", "unexpected persistence error")
	default:
		ctl.replyError(conn, "bad_request", err.Error())
	}
}

func (ctl *ChatSocketController) replyError(conn *realtime.Connection, code, message string) {
	frame := errorFrame{Type: "error", Code: code, Message: message}
	if payload, err := json.Marshal(frame); err == nil {
		_ = conn.Send(payload)
	}
}
