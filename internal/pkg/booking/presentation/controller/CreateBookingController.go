package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	userport "github.com/ashudev21/rabf-backend/internal/repository/port"

	"github.com/ashudev21/rabf-backend/internal/infrastructure/auth"
	qport "github.com/ashudev21/rabf-backend/internal/infrastructure/queue/port"
	"github.com/ashudev21/rabf-backend/internal/pkg/booking/application/usecase"
	repository "github.com/ashudev21/rabf-backend/internal/pkg/booking/persistence/repository/port"
	"github.com/ashudev21/rabf-backend/internal/pkg/notification"

	"github.com/gin-gonic/gin"
)

// CreateBookingController handles booking creation; the caller is the
// customer (one controller per endpoint).
type CreateBookingController struct {
	UC *usecase.CreateBookingUseCase
}

func NewCreateBookingController(repo repository.BookingRepository, users userport.UserRepository, bus *notification.Bus, queue qport.Client) *CreateBookingController {
	return &CreateBookingController{UC: usecase.NewCreateBookingUseCase(repo, users, bus, queue)}
}

type createBookingRequest struct {
	ProviderID      string    `json:"provider_id" binding:"required"`
	StartTime       time.Time `json:"start_time" binding:"required"`
	EndTime         time.Time `json:"end_time" binding:"required"`
	MeetingLocation string    `json:"meeting_location" binding:"required"`
	TotalPrice      int64     `json:"total_price"`
}

func (h *CreateBookingController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		b, err := h.UC.Execute(ctx, usecase.CreateBookingInput{
			CustomerID:      auth.UserID(c),
			ProviderID:      req.ProviderID,
			StartTime:       req.StartTime,
			EndTime:         req.EndTime,
			MeetingLocation: req.MeetingLocation,
			TotalPrice:      req.TotalPrice,
		})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":               b.ID,
			"customer_id":      b.CustomerID,
			"provider_id":      b.ProviderID,
			"status":           b.Status,
			"start_time":       b.StartTime,
			"end_time":         b.EndTime,
			"meeting_location": b.MeetingLocation,
			"total_price":      b.TotalPrice,
			"created_at":       b.CreatedAt,
		})
	}
}
