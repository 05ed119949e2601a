package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	userport "github.com/ashudev21/rabf-backend/internal/repository/port"

	"github.com/ashudev21/rabf-backend/internal/infrastructure/auth"
	"github.com/ashudev21/rabf-backend/internal/pkg/messaging/application/usecase"
	repository "github.com/ashudev21/rabf-backend/internal/pkg/messaging/persistence/repository/port"

	"github.com/gin-gonic/gin"
)

// ListChatsController handles the chat-list view: every conversation the
// caller participates in, most recent activity first.
type ListChatsController struct {
	UC    *usecase.ListConversationsUseCase
	users userport.UserRepository
}

func NewListChatsController(repo repository.ConversationRepository, users userport.UserRepository) *ListChatsController {
	return &ListChatsController{UC: usecase.NewListConversationsUseCase(repo), users: users}
}

func (h *ListChatsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.UserID(c)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		convs, err := h.UC.Execute(ctx, usecase.ListConversationsInput{UserID: userID})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		out := make([]gin.H, 0, len(convs))
		for _, conv := range convs {
			peerID, _ := conv.OtherParticipant(userID)
			out = append(out, gin.H{
				"id":                conv.ID,
				"last_message":      conv.LastMessageText,
				"last_message_time": conv.LastMessageTime,
				"updated_at":        conv.UpdatedAt,
				"other_participant": summaryFor(ctx, h.users, peerID),
			})
		}

		c.JSON(http.StatusOK, gin.H{"chats": out, "count": len(out)})
	}
}
