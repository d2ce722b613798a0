package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cleanease/internal/domain"
)

// ProviderRepository define la persistencia de proveedores ("employees").
type ProviderRepository interface {
	Create(ctx context.Context, provider domain.Provider) error
	GetByID(ctx context.Context, id int64) (domain.Provider, error)
	List(ctx context.Context, offset, limit int) ([]domain.Provider, int64, error)
	Update(ctx context.Context, id int64, update domain.ProviderUpdate) (domain.Provider, error)
	Delete(ctx context.Context, id int64) error
	// AddRating aplica promedio, conteo y reseña en una sola actualización atómica.
	// Devuelve ErrNotFound o ErrDuplicateReview si la condición no se cumple.
	AddRating(ctx context.Context, id int64, rating float64, review domain.Review) (domain.Provider, error)
	AddBooking(ctx context.Context, id int64, booking domain.Booking) error
}

type PgProviderRepository struct {
	pool *pgxpool.Pool
}

func NewPgProviderRepository(pool *pgxpool.Pool) *PgProviderRepository {
	return &PgProviderRepository{pool: pool}
}

const pgProviderColumns = `id, image, name, category, city, price, rating_average, rating_count, reviews, bookings, is_active, created_at, updated_at`

func (r *PgProviderRepository) Create(ctx context.Context, p domain.Provider) error {
	const query = `
		INSERT INTO providers (id, image, name, category, city, price, rating_average, rating_count, reviews, bookings, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, '[]'::jsonb, '[]'::jsonb, $9, $10, $11)
	`
	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Image,
		p.Name,
		p.Category,
		p.City,
		p.Price,
		p.Rating.Average,
		p.Rating.Count,
		p.IsActive,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

func (r *PgProviderRepository) GetByID(ctx context.Context, id int64) (domain.Provider, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+pgProviderColumns+` FROM providers WHERE id = $1`, id)
	return scanProvider(row)
}

func (r *PgProviderRepository) List(ctx context.Context, offset, limit int) ([]domain.Provider, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM providers`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+pgProviderColumns+` FROM providers ORDER BY id ASC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	providers := []domain.Provider{}
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, 0, err
		}
		providers = append(providers, p)
	}
	return providers, total, rows.Err()
}

func (r *PgProviderRepository) Update(ctx context.Context, id int64, u domain.ProviderUpdate) (domain.Provider, error) {
	const query = `
		UPDATE providers SET
			image = COALESCE($2::text, image),
			name = COALESCE($3::text, name),
			category = COALESCE($4::text, category),
			city = COALESCE($5::text, city),
			price = COALESCE($6::double precision, price),
			updated_at = $7
		WHERE id = $1
		RETURNING ` + pgProviderColumns
	row := r.pool.QueryRow(ctx, query, id, u.Image, u.Name, u.Category, u.City, u.Price, time.Now().UTC())
	return scanProvider(row)
}

func (r *PgProviderRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM providers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Postgres evalúa las expresiones SET sobre la fila previa, así que promedio
// y conteo leen los mismos valores.
const pgAddRatingQuery = `
		UPDATE providers SET
			rating_average = (rating_average * rating_count + $2) / (rating_count + 1),
			rating_count = rating_count + 1,
			reviews = reviews || jsonb_build_array(jsonb_build_object('name', $3::text, 'comments', $4::text, 'createdAt', $5::timestamptz)),
			updated_at = $5
		WHERE id = $1
		  AND NOT reviews @> jsonb_build_array(jsonb_build_object('name', $3::text))
		RETURNING ` + pgProviderColumns

// AddRating usa un UPDATE condicional y solo consulta la existencia si no hubo fila.
func (r *PgProviderRepository) AddRating(ctx context.Context, id int64, rating float64, review domain.Review) (domain.Provider, error) {
	row := r.pool.QueryRow(ctx, pgAddRatingQuery, id, rating, review.Name, review.Comments, review.CreatedAt)
	p, err := scanProvider(row)
	if !errors.Is(err, ErrNotFound) {
		return p, err
	}
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM providers WHERE id = $1)`, id).Scan(&exists); err != nil {
		return domain.Provider{}, err
	}
	if exists {
		return domain.Provider{}, ErrDuplicateReview
	}
	return domain.Provider{}, ErrNotFound
}

func (r *PgProviderRepository) AddBooking(ctx context.Context, id int64, booking domain.Booking) error {
	data, err := json.Marshal(booking)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE providers SET bookings = bookings || jsonb_build_array($2::jsonb) WHERE id = $1`,
		id, string(data),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProvider(row pgx.Row) (domain.Provider, error) {
	var (
		p                 domain.Provider
		reviews, bookings []byte
	)
	err := row.Scan(
		&p.ID,
		&p.Image,
		&p.Name,
		&p.Category,
		&p.City,
		&p.Price,
		&p.Rating.Average,
		&p.Rating.Count,
		&reviews,
		&bookings,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Provider{}, ErrNotFound
	}
	if err != nil {
		return domain.Provider{}, err
	}
	if err := decodeJSONList(reviews, &p.Reviews); err != nil {
		return domain.Provider{}, fmt.Errorf("decode reviews: %w", err)
	}
	if err := decodeJSONList(bookings, &p.Bookings); err != nil {
		return domain.Provider{}, fmt.Errorf("decode bookings: %w", err)
	}
	return p, nil
}
