package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ashudev21/rabf-backend/internal/repository/port"
)

type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

var _ port.UserRepository = (*PgUserRepository)(nil)

func (r *PgUserRepository) FindByID(ctx context.Context, id string) (port.User, error) {
	var u port.User
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, name, email, COALESCE(profile_image, '')
		FROM app_user
		WHERE id = $1::uuid
	`, id).Scan(&u.ID, &u.Name, &u.Email, &u.ProfileImage)
	if errors.Is(err, pgx.ErrNoRows) {
		return port.User{}, port.ErrUserNotFound
	}
	if err != nil {
		return port.User{}, err
	}
	return u, nil
}
