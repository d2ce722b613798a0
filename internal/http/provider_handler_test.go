package http

import (
	"math"
	"net/http"
	"testing"

	"cleanease/internal/domain"
)

func seedProvider(t *testing.T, s *testServer, token string) {
	t.Helper()
	rec := performRequest(s.router, http.MethodPost, "/api/addemployee", map[string]any{
		"id": 1, "image": "https://img.example.com/1.png", "name": "Spotless", "category": "Cleaning", "city": "Pune", "price": 40,
	}, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add employee: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestProviderHandlerCRUD(t *testing.T) {
	s := newTestServer(t, RateLimiters{})
	s.register(t, "alice", "alice@example.com", "Secret123")
	token := s.token(t, "alice")

	rec := performRequest(s.router, http.MethodPost, "/api/addemployee", map[string]any{
		"id": 1, "image": "https://img.example.com/1.png", "name": "Spotless", "category": "Cleaning", "city": "Pune", "price": 40,
	}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	seedProvider(t, s, token)

	rec = performRequest(s.router, http.MethodPost, "/api/addemployee", map[string]any{
		"id": 2, "image": "https://img.example.com/2.png", "name": "Greeny", "category": "Gardening", "city": "Pune", "price": 10,
	}, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown category, got %d", rec.Code)
	}

	rec = performRequest(s.router, http.MethodPut, "/api/updateEmployee/1", map[string]any{"city": "Mumbai"}, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from update, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated domain.Provider
	decodeBody(t, rec, &updated)
	if updated.City != "Mumbai" || updated.Name != "Spotless" {
		t.Fatalf("unexpected provider %+v", updated)
	}

	rec = performRequest(s.router, http.MethodPut, "/api/updateEmployee/1", map[string]any{}, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty update, got %d", rec.Code)
	}
	rec = performRequest(s.router, http.MethodPut, "/api/updateEmployee/abc", map[string]any{"city": "Goa"}, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", rec.Code)
	}

	rec = performRequest(s.router, http.MethodDelete, "/api/deleteEmployee/1", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from delete, got %d", rec.Code)
	}
	rec = performRequest(s.router, http.MethodGet, "/api/employees/1", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestProviderHandlerList(t *testing.T) {
	s := newTestServer(t, RateLimiters{})
	for i := int64(1); i <= 12; i++ {
		s.providers.providers[i] = domain.Provider{ID: i, Name: "p", Category: domain.CategoryCleaning, Reviews: []domain.Review{}}
	}

	rec := performRequest(s.router, http.MethodGet, "/api/employees?page=2&limit=5", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var page struct {
		Employees  []domain.Provider `json:"employees"`
		Pagination domain.Pagination `json:"pagination"`
	}
	decodeBody(t, rec, &page)
	if len(page.Employees) != 5 || page.Employees[0].ID != 6 {
		t.Fatalf("unexpected page %+v", page.Employees)
	}
	if page.Pagination.TotalCount != 12 || page.Pagination.TotalPages != 3 || !page.Pagination.HasNextPage || !page.Pagination.HasPrevPage {
		t.Fatalf("unexpected pagination %+v", page.Pagination)
	}

	rec = performRequest(s.router, http.MethodGet, "/api/employees?page=-1", nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative page, got %d", rec.Code)
	}
}

func TestProviderHandlerRating(t *testing.T) {
	s := newTestServer(t, RateLimiters{})
	s.register(t, "alice", "alice@example.com", "Secret123")
	token := s.token(t, "alice")
	s.providers.providers[1] = domain.Provider{
		ID:      1,
		Name:    "Spotless",
		Rating:  domain.Rating{Average: 4.0, Count: 2},
		Reviews: []domain.Review{{Name: "carol"}, {Name: "dave"}},
	}

	rec := performRequest(s.router, http.MethodGet, "/api/employees/1", nil, token)
	var detail struct {
		ReviewedByMe bool `json:"reviewedByMe"`
	}
	decodeBody(t, rec, &detail)
	if detail.ReviewedByMe {
		t.Fatalf("alice has not reviewed yet")
	}

	rec = performRequest(s.router, http.MethodPost, "/api/rating", map[string]any{
		"empID": "1", "rating": 5, "reviewtext": "great",
	}, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from rating, got %d: %s", rec.Code, rec.Body.String())
	}
	var rated domain.Provider
	decodeBody(t, rec, &rated)
	if rated.Rating.Count != 3 || math.Abs(rated.Rating.Average-13.0/3.0) > 1e-12 {
		t.Fatalf("unexpected rating %+v", rated.Rating)
	}

	rec = performRequest(s.router, http.MethodPost, "/api/rating", map[string]any{
		"empID": 1, "rating": 2, "reviewtext": "again",
	}, token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate review, got %d", rec.Code)
	}

	rec = performRequest(s.router, http.MethodGet, "/api/employees/1", nil, token)
	decodeBody(t, rec, &detail)
	if !detail.ReviewedByMe {
		t.Fatalf("expected reviewedByMe after rating")
	}

	rec = performRequest(s.router, http.MethodPost, "/api/rating", map[string]any{
		"empID": "1", "rating": 7,
	}, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out of range rating, got %d", rec.Code)
	}
	rec = performRequest(s.router, http.MethodPost, "/api/rating", map[string]any{
		"empID": "42", "rating": 3,
	}, token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown provider, got %d", rec.Code)
	}
}
