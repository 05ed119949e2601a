package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	booking "github.com/ashudev21/rabf-backend/internal/pkg/booking/application/domain"
	repository "github.com/ashudev21/rabf-backend/internal/pkg/booking/persistence/repository/port"
)

type PgBookingRepository struct {
	pool *pgxpool.Pool
}

func NewPgBookingRepository(pool *pgxpool.Pool) *PgBookingRepository {
	return &PgBookingRepository{pool: pool}
}

var _ repository.BookingRepository = (*PgBookingRepository)(nil)

const bookingColumns = `id::text, customer_id::text, provider_id::text,
	start_time, end_time, meeting_location, total_price, status, created_at, updated_at`

func (r *PgBookingRepository) Create(ctx context.Context, b booking.Booking) (booking.Booking, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO booking (customer_id, provider_id, start_time, end_time, meeting_location, total_price, status)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7)
		RETURNING `+bookingColumns+`
	`, b.CustomerID, b.ProviderID, b.StartTime, b.EndTime, b.MeetingLocation, b.TotalPrice, booking.StatusPending).
		Scan(&b.ID, &b.CustomerID, &b.ProviderID, &b.StartTime, &b.EndTime,
			&b.MeetingLocation, &b.TotalPrice, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r *PgBookingRepository) FindByID(ctx context.Context, id string) (booking.Booking, error) {
	var b booking.Booking
	err := r.pool.QueryRow(ctx, `
		SELECT `+bookingColumns+` FROM booking WHERE id = $1::uuid
	`, id).Scan(&b.ID, &b.CustomerID, &b.ProviderID, &b.StartTime, &b.EndTime,
		&b.MeetingLocation, &b.TotalPrice, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return booking.Booking{}, booking.ErrNotFound
	}
	if err != nil {
		return booking.Booking{}, err
	}
	return b, nil
}

func (r *PgBookingRepository) UpdateStatus(ctx context.Context, id string, status booking.Status) (booking.Booking, error) {
	var b booking.Booking
	err := r.pool.QueryRow(ctx, `
		UPDATE booking SET status = $2, updated_at = NOW()
		WHERE id = $1::uuid
		RETURNING `+bookingColumns+`
	`, id, status).Scan(&b.ID, &b.CustomerID, &b.ProviderID, &b.StartTime, &b.EndTime,
		&b.MeetingLocation, &b.TotalPrice, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return booking.Booking{}, booking.ErrNotFound
	}
	if err != nil {
		return booking.Booking{}, err
	}
	return b, nil
}

func (r *PgBookingRepository) HasAcceptedBetween(ctx context.Context, userA, userB string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM booking
			WHERE status = $3
			  AND ((customer_id = $1::uuid AND provider_id = $2::uuid)
			    OR (customer_id = $2::uuid AND provider_id = $1::uuid))
		)
	`, userA, userB, booking.StatusAccepted).Scan(&exists)
	return exists, err
}
