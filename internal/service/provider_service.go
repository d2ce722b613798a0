package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"cleanease/internal/domain"
	"cleanease/internal/events"
	"cleanease/internal/metrics"
	"cleanease/internal/repository"
)

const (
	minRating         = 1
	maxRating         = 5
	maxReviewTextSize = 500
)

// ProviderService administra el catálogo de proveedores y sus calificaciones.
type ProviderService struct {
	logger          *zap.Logger
	providers       repository.ProviderRepository
	publisher       events.Publisher
	metrics         *metrics.Metrics
	defaultPageSize int
	maxPageSize     int
}

func NewProviderService(
	logger *zap.Logger,
	providers repository.ProviderRepository,
	publisher events.Publisher,
	m *metrics.Metrics,
	defaultPageSize, maxPageSize int,
) *ProviderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if m == nil {
		m = metrics.NewNop()
	}
	if maxPageSize <= 0 {
		maxPageSize = 100
	}
	if defaultPageSize <= 0 || defaultPageSize > maxPageSize {
		defaultPageSize = 10
	}
	return &ProviderService{
		logger:          logger.Named("providers"),
		providers:       providers,
		publisher:       publisher,
		metrics:         m,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

type CreateProviderInput struct {
	ID       int64
	Image    string
	Name     string
	Category string
	City     string
	Price    float64
}

// ProviderPage es una página del listado.
type ProviderPage struct {
	Items      []domain.Provider `json:"employees"`
	Pagination domain.Pagination `json:"pagination"`
}

type RatingInput struct {
	ProviderID int64
	Reviewer   string
	Rating     float64
	Text       string
}

func (s *ProviderService) Create(ctx context.Context, input CreateProviderInput) (domain.Provider, error) {
	name := strings.TrimSpace(input.Name)
	city := strings.TrimSpace(input.City)
	if input.ID <= 0 || name == "" || city == "" || input.Price < 0 || !domain.IsValidCategory(input.Category) {
		return domain.Provider{}, ErrInvalidInput
	}

	now := time.Now().UTC()
	p := domain.Provider{
		ID:        input.ID,
		Image:     strings.TrimSpace(input.Image),
		Name:      name,
		Category:  input.Category,
		City:      city,
		Price:     input.Price,
		Rating:    domain.Rating{Average: 0, Count: 0},
		Reviews:   []domain.Review{},
		Bookings:  []domain.Booking{},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.providers.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.Provider{}, ErrProviderExists
		}
		return domain.Provider{}, fmt.Errorf("create provider: %w", err)
	}
	s.logger.Info("provider created", zap.Int64("provider_id", p.ID))
	return p, nil
}

func (s *ProviderService) Get(ctx context.Context, id int64) (domain.Provider, error) {
	p, err := s.providers.GetByID(ctx, id)
	if err != nil {
		return domain.Provider{}, mapProviderErr(err)
	}
	return p, nil
}

// List pagina por id; page empieza en 1 y limit se acota a maxPageSize.
func (s *ProviderService) List(ctx context.Context, page, limit int) (ProviderPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	items, total, err := s.providers.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return ProviderPage{}, fmt.Errorf("list providers: %w", err)
	}
	if items == nil {
		items = []domain.Provider{}
	}
	return ProviderPage{
		Items:      items,
		Pagination: domain.NewPagination(page, limit, total),
	}, nil
}

func (s *ProviderService) Update(ctx context.Context, id int64, update domain.ProviderUpdate) (domain.Provider, error) {
	if update.IsEmpty() {
		return domain.Provider{}, ErrInvalidInput
	}
	if update.Category != nil && !domain.IsValidCategory(*update.Category) {
		return domain.Provider{}, ErrInvalidInput
	}
	if update.Price != nil && *update.Price < 0 {
		return domain.Provider{}, ErrInvalidInput
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return domain.Provider{}, ErrInvalidInput
	}

	p, err := s.providers.Update(ctx, id, update)
	if err != nil {
		return domain.Provider{}, mapProviderErr(err)
	}
	return p, nil
}

func (s *ProviderService) Delete(ctx context.Context, id int64) error {
	if err := s.providers.Delete(ctx, id); err != nil {
		return mapProviderErr(err)
	}
	s.logger.Info("provider deleted", zap.Int64("provider_id", id))
	return nil
}

// AddRating agrega la calificación en una única actualización condicional del registro.
func (s *ProviderService) AddRating(ctx context.Context, input RatingInput) (domain.Provider, error) {
	reviewer := strings.TrimSpace(input.Reviewer)
	if reviewer == "" || len(input.Text) > maxReviewTextSize {
		return domain.Provider{}, ErrInvalidInput
	}
	if math.IsNaN(input.Rating) || input.Rating < minRating || input.Rating > maxRating {
		return domain.Provider{}, ErrInvalidInput
	}

	review := domain.Review{
		Name:      reviewer,
		Comments:  input.Text,
		CreatedAt: time.Now().UTC(),
	}
	p, err := s.providers.AddRating(ctx, input.ProviderID, input.Rating, review)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return domain.Provider{}, ErrDuplicateReview
		}
		return domain.Provider{}, mapProviderErr(err)
	}
	s.metrics.RatingsAdded.Inc()

	if err := s.publisher.Publish(ctx, events.SubjectRatingAdded, events.RatingAdded{
		ProviderID: p.ID,
		Reviewer:   reviewer,
		Rating:     input.Rating,
		Average:    p.Rating.Average,
		Count:      p.Rating.Count,
	}); err != nil {
		s.logger.Warn("publish rating added failed", zap.Error(err))
	}
	return p, nil
}

func mapProviderErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProviderNotFound
	}
	return fmt.Errorf("provider store: %w", err)
}
