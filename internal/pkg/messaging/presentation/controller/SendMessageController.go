package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	userport "github.com/ashudev21/rabf-backend/internal/repository/port"

	"github.com/ashudev21/rabf-backend/internal/infrastructure/auth"
	messaging "github.com/ashudev21/rabf-backend/internal/pkg/messaging/application/domain"
	"github.com/ashudev21/rabf-backend/internal/pkg/messaging/application/usecase"
	repository "github.com/ashudev21/rabf-backend/internal/pkg/messaging/persistence/repository/port"
	"github.com/ashudev21/rabf-backend/internal/pkg/notification"

	"github.com/gin-gonic/gin"
)

// SendMessageController handles the HTTP fallback for sending a message
// when no socket is available (one controller per endpoint).
type SendMessageController struct {
	UC    *usecase.SendMessageUseCase
	bus   *notification.Bus
	users userport.UserRepository
}

func NewSendMessageController(
	repo repository.ConversationRepository,
	bookings repository.BookingReader,
	users userport.UserRepository,
	bus *notification.Bus,
) *SendMessageController {
	return &SendMessageController{
		UC:    usecase.NewSendMessageUseCase(repo, bookings, users, bus),
		bus:   bus,
		users: users,
	}
}

type sendMessageRequest struct {
	RecipientID    string `json:"recipient_id"`
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content" binding:"required"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.RecipientID == "" && req.ConversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "recipient_id or conversation_id is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		result, err := h.UC.Execute(ctx, usecase.SendMessageInput{
			SenderID:       auth.UserID(c),
			RecipientID:    req.RecipientID,
			ConversationID: req.ConversationID,
			Text:           req.Content,
		})
		if err != nil {
			h.writeError(c, err)
			return
		}

		// Same realtime fan-out as the socket path, so open tabs stay
		// current even when the send came over plain HTTP.
		fanOutMessage(ctx, h.bus, h.users, result)

		c.JSON(http.StatusCreated, gin.H{
			"message":      toMessagePayload(result.Message),
			"chat_id":      result.Conversation.ID,
			"recipient_id": result.RecipientID,
		})
	}
}

func (h *SendMessageController) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, messaging.ErrQuotaExceeded):
		c.JSON(http.StatusForbidden, gin.H{
			"error": "You have reached your free message limit for this conversation",
			"code":  notification.TypeLimitReached,
		})
	case errors.Is(err, messaging.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": "user is not a participant in this conversation"})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
	case errors.Is(err, usecase.ErrPersistence):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected persistence error"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
