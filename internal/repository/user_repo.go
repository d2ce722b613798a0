package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cleanease/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	UpdatePassword(ctx context.Context, username, passwordHash string) error
	AddBooking(ctx context.Context, username string, booking domain.Booking) error
	ListBookings(ctx context.Context, username string) ([]domain.Booking, error)
	// RemoveBooking devuelve false si el usuario existe pero no tiene esa reserva.
	RemoveBooking(ctx context.Context, username, bookingID string) (bool, error)
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, name, username, email, password, bookings, created_at)
		VALUES ($1, $2, $3, $4, $5, '[]'::jsonb, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	)
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

const pgUserColumns = `id, name, username, email, password, bookings, created_at`

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+pgUserColumns+` FROM users WHERE id = $1`, id)
}

func (r *PgUserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+pgUserColumns+` FROM users WHERE username = $1`, username)
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+pgUserColumns+` FROM users WHERE email = $1`, email)
}

func (r *PgUserRepository) getOne(ctx context.Context, query string, arg any) (domain.User, error) {
	var (
		u        domain.User
		bookings []byte
	)
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Name,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&bookings,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	if err := decodeJSONList(bookings, &u.Bookings); err != nil {
		return domain.User{}, fmt.Errorf("decode bookings: %w", err)
	}
	return u, nil
}

func (r *PgUserRepository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	const query = `UPDATE users SET password = $2 WHERE username = $1`
	tag, err := r.pool.Exec(ctx, query, username, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgUserRepository) AddBooking(ctx context.Context, username string, booking domain.Booking) error {
	data, err := json.Marshal(booking)
	if err != nil {
		return err
	}
	const query = `UPDATE users SET bookings = bookings || jsonb_build_array($2::jsonb) WHERE username = $1`
	tag, err := r.pool.Exec(ctx, query, username, string(data))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgUserRepository) ListBookings(ctx context.Context, username string) ([]domain.Booking, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, `SELECT bookings FROM users WHERE username = $1`, username).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var bookings []domain.Booking
	if err := decodeJSONList(raw, &bookings); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *PgUserRepository) RemoveBooking(ctx context.Context, username, bookingID string) (bool, error) {
	const query = `
		UPDATE users
		SET bookings = (
			SELECT COALESCE(jsonb_agg(b), '[]'::jsonb)
			FROM jsonb_array_elements(bookings) AS b
			WHERE b->>'_id' <> $2
		)
		WHERE username = $1
		  AND bookings @> jsonb_build_array(jsonb_build_object('_id', $2::text))
	`
	tag, err := r.pool.Exec(ctx, query, username, bookingID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, ErrNotFound
	}
	return false, nil
}

func decodeJSONList[T any](raw []byte, out *[]T) error {
	if len(raw) == 0 {
		*out = []T{}
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return err
	}
	if *out == nil {
		*out = []T{}
	}
	return nil
}
