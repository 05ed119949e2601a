package usecase

import (
	"context"
	"fmt"
	"log"

	qport "github.com/ashudev21/rabf-backend/internal/infrastructure/queue/port"
	userport "github.com/ashudev21/rabf-backend/internal/repository/port"

	booking "github.com/ashudev21/rabf-backend/internal/pkg/booking/application/domain"
	repository "github.com/ashudev21/rabf-backend/internal/pkg/booking/persistence/repository/port"
	"github.com/ashudev21/rabf-backend/internal/pkg/email/task"
	"github.com/ashudev21/rabf-backend/internal/pkg/notification"
)

// UpdateBookingStatusInput moves a booking to a new lifecycle state on
// behalf of the acting user.
type UpdateBookingStatusInput struct {
	BookingID string
	ActorID   string
	Status    booking.Status
}

// UpdateBookingStatusUseCase validates and applies the transition, then
// notifies the customer (BOOKING_UPDATE) and queues a status email. An
// accepted booking also lifts the messaging quota between the two parties,
// which the usage gate picks up on the next send attempt.
type UpdateBookingStatusUseCase struct {
	Repo     repository.BookingRepository
	Users    userport.UserRepository
	Notifier Notifier
	Queue    qport.Client
}

func NewUpdateBookingStatusUseCase(repo repository.BookingRepository, users userport.UserRepository, notifier Notifier, queue qport.Client) *UpdateBookingStatusUseCase {
	return &UpdateBookingStatusUseCase{Repo: repo, Users: users, Notifier: notifier, Queue: queue}
}

func (uc *UpdateBookingStatusUseCase) Execute(ctx context.Context, in UpdateBookingStatusInput) (booking.Booking, error) {
	if in.BookingID == "" {
		return booking.Booking{}, fmt.Errorf("bookingId is required")
	}
	if !booking.ValidStatusUpdate(in.Status) {
		return booking.Booking{}, booking.ErrInvalidStatus
	}

	existing, err := uc.Repo.FindByID(ctx, in.BookingID)
	if err == booking.ErrNotFound {
		return booking.Booking{}, err
	}
	if err != nil {
		return booking.Booking{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// Only the two parties may move the booking.
	if in.ActorID != existing.CustomerID && in.ActorID != existing.ProviderID {
		return booking.Booking{}, booking.ErrNotFound
	}

	updated, err := uc.Repo.UpdateStatus(ctx, in.BookingID, in.Status)
	if err == booking.ErrNotFound {
		return booking.Booking{}, err
	}
	if err != nil {
		return booking.Booking{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	uc.Notifier.Notify(ctx, updated.CustomerID, notification.Payload{
		Type:    notification.TypeBookingUpdate,
		Message: fmt.Sprintf("Your booking was %s", updated.Status),
		Link:    "/bookings",
	})

	if customer, err := uc.Users.FindByID(ctx, updated.CustomerID); err == nil {
		err := task.EnqueueSendEmail(ctx, uc.Queue, task.SendEmailTaskPayload{
			Email:    customer.Email,
			Subject:  fmt.Sprintf("Booking %s", updated.Status),
			Template: "booking-status",
			Data: map[string]string{
				"name":   customer.Name,
				"status": string(updated.Status),
				"link":   "/bookings",
			},
		})
		if err != nil {
			log.Printf("booking: enqueue status email for %s: %v", updated.CustomerID, err)
		}
	}

	return updated, nil
}
