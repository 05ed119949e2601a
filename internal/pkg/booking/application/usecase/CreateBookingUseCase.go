package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	qport "github.com/ashudev21/rabf-backend/internal/infrastructure/queue/port"
	userport "github.com/ashudev21/rabf-backend/internal/repository/port"

	booking "github.com/ashudev21/rabf-backend/internal/pkg/booking/application/domain"
	repository "github.com/ashudev21/rabf-backend/internal/pkg/booking/persistence/repository/port"
	"github.com/ashudev21/rabf-backend/internal/pkg/email/task"
	"github.com/ashudev21/rabf-backend/internal/pkg/notification"
)

// Notifier mirrors the messaging use case's notification slice.
type Notifier interface {
	Notify(ctx context.Context, targetUserID string, p notification.Payload)
}

// CreateBookingInput carries a new booking request from a customer.
type CreateBookingInput struct {
	CustomerID      string
	ProviderID      string
	StartTime       time.Time
	EndTime         time.Time
	MeetingLocation string
	TotalPrice      int64
}

// CreateBookingUseCase persists a pending booking, notifies the provider in
// real time and queues a confirmation email. Notification and email are
// side effects: their failure never fails the booking.
type CreateBookingUseCase struct {
	Repo     repository.BookingRepository
	Users    userport.UserRepository
	Notifier Notifier
	Queue    qport.Client
}

func NewCreateBookingUseCase(repo repository.BookingRepository, users userport.UserRepository, notifier Notifier, queue qport.Client) *CreateBookingUseCase {
	return &CreateBookingUseCase{Repo: repo, Users: users, Notifier: notifier, Queue: queue}
}

func (uc *CreateBookingUseCase) Execute(ctx context.Context, in CreateBookingInput) (booking.Booking, error) {
	if in.CustomerID == "" || in.ProviderID == "" {
		return booking.Booking{}, fmt.Errorf("customerId and providerId are required")
	}
	if in.MeetingLocation == "" {
		return booking.Booking{}, fmt.Errorf("meetingLocation is required")
	}
	if !in.EndTime.After(in.StartTime) {
		return booking.Booking{}, fmt.Errorf("endTime must be after startTime")
	}

	created, err := uc.Repo.Create(ctx, booking.Booking{
		CustomerID:      in.CustomerID,
		ProviderID:      in.ProviderID,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		MeetingLocation: in.MeetingLocation,
		TotalPrice:      in.TotalPrice,
	})
	if err != nil {
		return booking.Booking{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	uc.Notifier.Notify(ctx, created.ProviderID, notification.Payload{
		Type:    notification.TypeBookingRequest,
		Message: "New booking request!",
		Link:    "/bookings",
	})

	if provider, err := uc.Users.FindByID(ctx, created.ProviderID); err == nil {
		err := task.EnqueueSendEmail(ctx, uc.Queue, task.SendEmailTaskPayload{
			Email:    provider.Email,
			Subject:  "New booking request",
			Template: "booking-request",
			Data:     map[string]string{"name": provider.Name, "link": "/bookings"},
		})
		if err != nil {
			log.Printf("booking: enqueue request email for %s: %v", created.ProviderID, err)
		}
	}

	return created, nil
}
