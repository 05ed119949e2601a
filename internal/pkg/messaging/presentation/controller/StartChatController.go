package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ashudev21/rabf-backend/internal/infrastructure/auth"
	messaging "github.com/ashudev21/rabf-backend/internal/pkg/messaging/application/domain"
	"github.com/ashudev21/rabf-backend/internal/pkg/messaging/application/usecase"
	repository "github.com/ashudev21/rabf-backend/internal/pkg/messaging/persistence/repository/port"

	"github.com/gin-gonic/gin"
)

// StartChatController opens (or returns) the conversation with another user
// ahead of the first message, so the client has a room id to join.
type StartChatController struct {
	UC *usecase.StartConversationUseCase
}

func NewStartChatController(repo repository.ConversationRepository) *StartChatController {
	return &StartChatController{UC: usecase.NewStartConversationUseCase(repo)}
}

type startChatRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

func (h *StartChatController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req startChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		conv, err := h.UC.Execute(ctx, usecase.StartConversationInput{
			UserID: auth.UserID(c),
			PeerID: req.UserID,
		})
		if err != nil {
			status := http.StatusBadRequest
			switch {
			case errors.Is(err, messaging.ErrSelfMessage):
				status = http.StatusBadRequest
			case errors.Is(err, usecase.ErrPersistence):
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":                conv.ID,
			"participant_a":     conv.ParticipantA,
			"participant_b":     conv.ParticipantB,
			"last_message":      conv.LastMessageText,
			"last_message_time": conv.LastMessageTime,
			"created_at":        conv.CreatedAt,
		})
	}
}
