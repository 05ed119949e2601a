package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ashudev21/rabf-backend/internal/infrastructure/auth"
	messaging "github.com/ashudev21/rabf-backend/internal/pkg/messaging/application/domain"
	"github.com/ashudev21/rabf-backend/internal/pkg/messaging/application/usecase"
	repository "github.com/ashudev21/rabf-backend/internal/pkg/messaging/persistence/repository/port"

	"github.com/gin-gonic/gin"
)

// GetMessagesController handles fetching the message history with a peer
// user (one controller per endpoint).
type GetMessagesController struct {
	UC *usecase.GetMessagesUseCase
}

func NewGetMessagesController(repo repository.ConversationRepository) *GetMessagesController {
	return &GetMessagesController{UC: usecase.NewGetMessagesUseCase(repo)}
}

func (h *GetMessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		peerID := c.Param("userId")
		if peerID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
			return
		}

		// Defaults
		limit := 20
		page := 1

		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		if v := c.Query("page"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				page = n
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msgs, err := h.UC.Execute(ctx, usecase.GetMessagesInput{
			PeerID: peerID,
			UserID: auth.UserID(c),
			Limit:  limit,
			Page:   page,
		})
		if errors.Is(err, repository.ErrNotFound) {
			// No conversation with this peer yet; an empty history, not an error.
			c.JSON(http.StatusOK, gin.H{"messages": []gin.H{}, "limit": limit, "page": page, "count": 0})
			return
		}
		if err != nil {
			status := http.StatusBadRequest
			switch {
			case errors.Is(err, messaging.ErrNotParticipant):
				status = http.StatusForbidden
			case errors.Is(err, usecase.ErrPersistence):
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		out := make([]messagePayload, 0, len(msgs))
		for _, m := range msgs {
			out = append(out, toMessagePayload(m))
		}

		c.JSON(http.StatusOK, gin.H{
			"messages": out,
			"limit":    limit,
			"page":     page,
			"count":    len(out),
		})
	}
}
