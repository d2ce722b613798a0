package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cleanease/internal/domain"
	"cleanease/internal/events"
	"cleanease/internal/metrics"
	"cleanease/internal/repository"
)

// BookingService crea copias de la reserva en el usuario y en el proveedor.
type BookingService struct {
	logger    *zap.Logger
	users     repository.UserRepository
	providers repository.ProviderRepository
	publisher events.Publisher
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewBookingService(
	logger *zap.Logger,
	users repository.UserRepository,
	providers repository.ProviderRepository,
	publisher events.Publisher,
	m *metrics.Metrics,
) *BookingService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &BookingService{
		logger:    logger.Named("bookings"),
		users:     users,
		providers: providers,
		publisher: publisher,
		metrics:   m,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type CreateBookingInput struct {
	Username   string
	ProviderID int64
	Date       time.Time
	Time       string
}

// Create guarda la reserva primero en el proveedor y luego en el usuario.
// No hay transacción entre ambos documentos.
func (s *BookingService) Create(ctx context.Context, input CreateBookingInput) (domain.Booking, error) {
	username := strings.TrimSpace(input.Username)
	slot := strings.TrimSpace(input.Time)
	if username == "" || slot == "" || input.Date.IsZero() {
		return domain.Booking{}, ErrInvalidInput
	}
	if !input.Date.After(s.now()) {
		return domain.Booking{}, ErrInvalidInput
	}

	if _, err := s.users.GetByUsername(ctx, username); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Booking{}, ErrUserNotFound
		}
		return domain.Booking{}, fmt.Errorf("lookup user: %w", err)
	}
	provider, err := s.providers.GetByID(ctx, input.ProviderID)
	if err != nil {
		return domain.Booking{}, mapProviderErr(err)
	}

	booking := domain.Booking{
		ID:            uuid.NewString(),
		ProviderName:  provider.Name,
		ProviderImage: provider.Image,
		City:          provider.City,
		Date:          input.Date.UTC(),
		Time:          slot,
		BookedBy:      username,
	}

	if err := s.providers.AddBooking(ctx, provider.ID, booking); err != nil {
		return domain.Booking{}, mapProviderErr(err)
	}
	if err := s.users.AddBooking(ctx, username, booking); err != nil {
		s.logger.Error("booking stored on provider but not on user",
			zap.Error(err),
			zap.String("booking_id", booking.ID),
			zap.Int64("provider_id", provider.ID),
		)
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Booking{}, ErrUserNotFound
		}
		return domain.Booking{}, fmt.Errorf("add booking to user: %w", err)
	}
	s.metrics.BookingsCreated.Inc()

	if err := s.publisher.Publish(ctx, events.SubjectBookingCreated, events.BookingCreated{
		BookingID:  booking.ID,
		ProviderID: provider.ID,
		Username:   username,
		Date:       booking.Date,
		Time:       booking.Time,
	}); err != nil {
		s.logger.Warn("publish booking created failed", zap.Error(err))
	}
	return booking, nil
}

func (s *BookingService) List(ctx context.Context, username string) ([]domain.Booking, error) {
	bookings, err := s.users.ListBookings(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	if bookings == nil {
		bookings = []domain.Booking{}
	}
	return bookings, nil
}

// Remove borra la reserva sólo de la lista del usuario.
func (s *BookingService) Remove(ctx context.Context, username, bookingID string) error {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return ErrInvalidInput
	}
	removed, err := s.users.RemoveBooking(ctx, strings.TrimSpace(username), bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("remove booking: %w", err)
	}
	if !removed {
		return ErrBookingNotFound
	}
	return nil
}
