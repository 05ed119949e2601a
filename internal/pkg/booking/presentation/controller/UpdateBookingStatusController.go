package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	userport "github.com/ashudev21/rabf-backend/internal/repository/port"

	"github.com/ashudev21/rabf-backend/internal/infrastructure/auth"
	qport "github.com/ashudev21/rabf-backend/internal/infrastructure/queue/port"
	booking "github.com/ashudev21/rabf-backend/internal/pkg/booking/application/domain"
	"github.com/ashudev21/rabf-backend/internal/pkg/booking/application/usecase"
	repository "github.com/ashudev21/rabf-backend/internal/pkg/booking/persistence/repository/port"
	"github.com/ashudev21/rabf-backend/internal/pkg/notification"

	"github.com/gin-gonic/gin"
)

// UpdateBookingStatusController handles status transitions on a booking;
// only a party to the booking may act on it.
type UpdateBookingStatusController struct {
	UC *usecase.UpdateBookingStatusUseCase
}

func NewUpdateBookingStatusController(repo repository.BookingRepository, users userport.UserRepository, bus *notification.Bus, queue qport.Client) *UpdateBookingStatusController {
	return &UpdateBookingStatusController{UC: usecase.NewUpdateBookingStatusUseCase(repo, users, bus, queue)}
}

type updateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *UpdateBookingStatusController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID := c.Param("id")
		if bookingID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
			return
		}

		var req updateBookingStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		b, err := h.UC.Execute(ctx, usecase.UpdateBookingStatusInput{
			BookingID: bookingID,
			ActorID:   auth.UserID(c),
			Status:    booking.Status(req.Status),
		})
		if err != nil {
			switch {
			case errors.Is(err, booking.ErrInvalidStatus):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, booking.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			case errors.Is(err, usecase.ErrPersistence):
				c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected persistence error"})
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":         b.ID,
			"status":     b.Status,
			"updated_at": b.UpdatedAt,
		})
	}
}
