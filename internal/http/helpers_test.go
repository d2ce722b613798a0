package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cleanease/internal/cache"
	"cleanease/internal/domain"
	"cleanease/internal/metrics"
	"cleanease/internal/repository"
	"cleanease/internal/service"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]domain.User)}
}

func (m *memUserRepo) find(pred func(domain.User) bool) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if pred(u) {
			return u, nil
		}
	}
	return domain.User{}, repository.ErrNotFound
}

func (m *memUserRepo) Create(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	return m.find(func(u domain.User) bool { return u.ID == id })
}

func (m *memUserRepo) GetByUsername(_ context.Context, username string) (domain.User, error) {
	return m.find(func(u domain.User) bool { return u.Username == username })
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	return m.find(func(u domain.User) bool { return u.Email == email })
}

func (m *memUserRepo) update(username string, fn func(*domain.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.users {
		if u.Username == username {
			fn(&u)
			m.users[id] = u
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memUserRepo) UpdatePassword(_ context.Context, username, passwordHash string) error {
	return m.update(username, func(u *domain.User) { u.PasswordHash = passwordHash })
}

func (m *memUserRepo) AddBooking(_ context.Context, username string, booking domain.Booking) error {
	return m.update(username, func(u *domain.User) { u.Bookings = append(u.Bookings, booking) })
}

func (m *memUserRepo) ListBookings(ctx context.Context, username string) ([]domain.Booking, error) {
	u, err := m.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return u.Bookings, nil
}

func (m *memUserRepo) RemoveBooking(_ context.Context, username, bookingID string) (bool, error) {
	removed := false
	err := m.update(username, func(u *domain.User) {
		kept := []domain.Booking{}
		for _, b := range u.Bookings {
			if b.ID == bookingID {
				removed = true
				continue
			}
			kept = append(kept, b)
		}
		u.Bookings = kept
	})
	return removed, err
}

type memProviderRepo struct {
	mu        sync.Mutex
	providers map[int64]domain.Provider
}

func newMemProviderRepo() *memProviderRepo {
	return &memProviderRepo{providers: make(map[int64]domain.Provider)}
}

func (m *memProviderRepo) Create(_ context.Context, p domain.Provider) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.providers[p.ID]; ok {
		return repository.ErrDuplicate
	}
	m.providers[p.ID] = p
	return nil
}

func (m *memProviderRepo) GetByID(_ context.Context, id int64) (domain.Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.providers[id]
	if !ok {
		return domain.Provider{}, repository.ErrNotFound
	}
	return p, nil
}

func (m *memProviderRepo) List(_ context.Context, offset, limit int) ([]domain.Provider, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]domain.Provider, 0, len(m.providers))
	for _, p := range m.providers {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], int64(len(all)), nil
}

func (m *memProviderRepo) Update(_ context.Context, id int64, u domain.ProviderUpdate) (domain.Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.providers[id]
	if !ok {
		return domain.Provider{}, repository.ErrNotFound
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.City != nil {
		p.City = *u.City
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Image != nil {
		p.Image = *u.Image
	}
	m.providers[id] = p
	return p, nil
}

func (m *memProviderRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.providers[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.providers, id)
	return nil
}

func (m *memProviderRepo) AddRating(_ context.Context, id int64, rating float64, review domain.Review) (domain.Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.providers[id]
	if !ok {
		return domain.Provider{}, repository.ErrNotFound
	}
	if p.HasReviewFrom(review.Name) {
		return domain.Provider{}, repository.ErrDuplicateReview
	}
	n := float64(p.Rating.Count)
	p.Rating.Average = (p.Rating.Average*n + rating) / (n + 1)
	p.Rating.Count++
	p.Reviews = append(p.Reviews, review)
	m.providers[id] = p
	return p, nil
}

func (m *memProviderRepo) AddBooking(_ context.Context, id int64, booking domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.providers[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Bookings = append(p.Bookings, booking)
	m.providers[id] = p
	return nil
}

type mockEmailSender struct {
	mu       sync.Mutex
	lastTo   string
	lastCode string
	err      error
}

func (m *mockEmailSender) SendVerificationOTP(_ context.Context, toEmail string, code string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTo = toEmail
	m.lastCode = code
	return m.err
}

type mockLimiter struct {
	allow bool
}

func (m *mockLimiter) Allow(_ string) bool {
	return m.allow
}

func (m *mockLimiter) Refund(_ string) {}

type testServer struct {
	router    *gin.Engine
	users     *memUserRepo
	providers *memProviderRepo
	sender    *mockEmailSender
	jwt       *service.JWTService
	store     *cache.MemoryStore
}

func newTestServer(t *testing.T, limiters RateLimiters) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		t.Fatalf("register validators: %v", err)
	}

	logger := zap.NewNop()
	m := metrics.NewNop()
	users := newMemUserRepo()
	providers := newMemProviderRepo()
	sender := &mockEmailSender{}
	store := cache.NewMemoryStore()
	jwtSvc := service.NewJWTService("secret", time.Hour)
	errs := NewErrorWriter(logger, false)

	userSvc := service.NewUserService(logger, users, jwtSvc)
	authSvc := service.NewAuthService(logger, users, store, sender, nil, m, service.AuthServiceConfig{})
	providerSvc := service.NewProviderService(logger, providers, nil, m, 10, 100)
	bookingSvc := service.NewBookingService(logger, users, providers, nil, m)

	r := NewRouter(RouterDeps{
		Logger:   logger,
		Metrics:  m,
		JWT:      jwtSvc,
		Errors:   errs,
		Limiters: limiters,
		Users:    NewUserHandler(logger, userSvc, authSvc, PasswordPolicy{MinLength: 8, MaxLength: 128}, errs),
		Provider: NewProviderHandler(logger, providerSvc, errs),
		Booking:  NewBookingHandler(logger, bookingSvc, errs),
	})
	return &testServer{router: r, users: users, providers: providers, sender: sender, jwt: jwtSvc, store: store}
}

func (s *testServer) register(t *testing.T, username, email, password string) {
	t.Helper()
	rec := performRequest(s.router, http.MethodPost, "/api/register", map[string]any{
		"name":     "Test User",
		"username": username,
		"email":    email,
		"password": password,
	}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", username, rec.Code, rec.Body.String())
	}
}

func (s *testServer) token(t *testing.T, username string) string {
	t.Helper()
	u, err := s.users.GetByUsername(context.Background(), username)
	if err != nil {
		t.Fatalf("lookup %s: %v", username, err)
	}
	token, _, err := s.jwt.IssueToken(u.ID, u.Username)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func performRequest(r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

// countingLimiter permite hasta max solicitudes contadas y registra devoluciones.
type countingLimiter struct {
	mu      sync.Mutex
	max     int
	count   int
	refunds int
}

func (l *countingLimiter) Allow(_ string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.count >= l.max {
		return false
	}
	l.count++
	return true
}

func (l *countingLimiter) Refund(_ string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refunds++
	if l.count > 0 {
		l.count--
	}
}
