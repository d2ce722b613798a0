package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss se devuelve cuando la clave no existe o ya expiró.
var ErrMiss = errors.New("cache miss")

// Store es un almacén clave-valor efímero con TTL por entrada.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	// Delete informa si existía una entrada viva para la clave.
	Delete(ctx context.Context, key string) (bool, error)
	// CompareAndDelete borra la clave sólo si su valor es expected, de forma atómica.
	CompareAndDelete(ctx context.Context, key, expected string) (bool, error)
}
