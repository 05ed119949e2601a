package repository

import (
	"context"

	booking "github.com/ashudev21/rabf-backend/internal/pkg/booking/application/domain"
)

// BookingRepository persists bookings and serves the one read the messaging
// usage gate depends on: whether an accepted booking links two identities.
type BookingRepository interface {
	Create(ctx context.Context, b booking.Booking) (booking.Booking, error)

	// FindByID returns booking.ErrNotFound when absent.
	FindByID(ctx context.Context, id string) (booking.Booking, error)

	UpdateStatus(ctx context.Context, id string, status booking.Status) (booking.Booking, error)

	// HasAcceptedBetween checks both directions: userA as customer of
	// userB, and userB as customer of userA.
	HasAcceptedBetween(ctx context.Context, userA, userB string) (bool, error)
}
