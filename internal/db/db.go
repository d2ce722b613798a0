package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const pgPingTimeout = 5 * time.Second

// NewPool abre el pool de Postgres usado con STORE_DRIVER=postgres y verifica la conexión.
// Los parámetros pool_* presentes en DATABASE_URL tienen prioridad sobre los valores por defecto.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := parsePoolConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pgPingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

func parsePoolConfig(databaseURL string) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	if !strings.Contains(databaseURL, "pool_max_conns") {
		poolCfg.MaxConns = 10
	}
	if !strings.Contains(databaseURL, "pool_min_conns") {
		poolCfg.MinConns = 1
	}
	if !strings.Contains(databaseURL, "pool_max_conn_lifetime") {
		poolCfg.MaxConnLifetime = 30 * time.Minute
	}
	if !strings.Contains(databaseURL, "pool_max_conn_idle_time") {
		poolCfg.MaxConnIdleTime = 5 * time.Minute
	}
	poolCfg.HealthCheckPeriod = 30 * time.Second
	if poolCfg.ConnConfig.ConnectTimeout == 0 {
		poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second
	}
	return poolCfg, nil
}
