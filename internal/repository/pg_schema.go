package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	username   TEXT NOT NULL UNIQUE,
	email      TEXT NOT NULL UNIQUE,
	password   TEXT NOT NULL,
	bookings   JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS providers (
	id             BIGINT PRIMARY KEY,
	image          TEXT NOT NULL,
	name           TEXT NOT NULL,
	category       TEXT NOT NULL,
	city           TEXT NOT NULL,
	price          DOUBLE PRECISION NOT NULL CHECK (price >= 0),
	rating_average DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (rating_average >= 0 AND rating_average <= 5),
	rating_count   INTEGER NOT NULL DEFAULT 0 CHECK (rating_count >= 0),
	reviews        JSONB NOT NULL DEFAULT '[]'::jsonb,
	bookings       JSONB NOT NULL DEFAULT '[]'::jsonb,
	is_active      BOOLEAN NOT NULL DEFAULT TRUE,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS providers_category_city_idx ON providers (category, city);
`

// EnsurePgSchema crea las tablas si no existen.
func EnsurePgSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, pgSchema)
	return err
}
