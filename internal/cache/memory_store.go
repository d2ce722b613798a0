package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

type memoryItem struct {
	value     string
	expiresAt time.Time
}

// MemoryStore es el respaldo en proceso cuando Redis no está disponible.
// No sobrevive reinicios ni se comparte entre instancias.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
	cron  *cron.Cron
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memoryItem),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// NewMemoryStoreWithClock permite fijar el reloj, útil para simular expiraciones.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	s := NewMemoryStore()
	if now != nil {
		s.now = now
	}
	return s
}

// StartSweeper programa la limpieza activa de entradas vencidas.
func (s *MemoryStore) StartSweeper(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { s.Sweep() }); err != nil {
		return err
	}
	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()
	c.Start()
	return nil
}

// Close detiene el sweeper, si se inició.
func (s *MemoryStore) Close() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

// Sweep elimina las entradas vencidas y devuelve cuántas borró.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for key, item := range s.items {
		if !now.Before(item.expiresAt) {
			delete(s.items, key)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("cache ttl must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = memoryItem{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.liveLocked(key)
	if !ok {
		return "", ErrMiss
	}
	return item.value, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.liveLocked(key)
	delete(s.items, key)
	return ok, nil
}

func (s *MemoryStore) CompareAndDelete(_ context.Context, key, expected string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.liveLocked(key)
	if !ok || item.value != expected {
		return false, nil
	}
	delete(s.items, key)
	return true, nil
}

// liveLocked requiere s.mu tomado; descarta la entrada si ya venció.
func (s *MemoryStore) liveLocked(key string) (memoryItem, bool) {
	item, ok := s.items[key]
	if !ok {
		return memoryItem{}, false
	}
	if !s.now().Before(item.expiresAt) {
		delete(s.items, key)
		return memoryItem{}, false
	}
	return item, true
}
