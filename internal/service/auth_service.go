package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"cleanease/internal/cache"
	"cleanease/internal/email"
	"cleanease/internal/events"
	"cleanease/internal/metrics"
	"cleanease/internal/repository"
)

const (
	passwordHashCost = 10
	otpDigits        = 6
	resetMarkerValue = "true"

	defaultOTPTTL          = 300 * time.Second
	defaultResetSessionTTL = 600 * time.Second
)

// AuthService implementa el flujo OTP -> sesión de reseteo -> nueva contraseña.
type AuthService struct {
	logger    *zap.Logger
	users     repository.UserRepository
	store     cache.Store
	sender    email.Sender
	publisher events.Publisher
	metrics   *metrics.Metrics
	otpTTL    time.Duration
	resetTTL  time.Duration
	now       func() time.Time
}

type AuthServiceConfig struct {
	OTPTTL          time.Duration
	ResetSessionTTL time.Duration
}

// OTPDelivery confirma el envío de un código.
type OTPDelivery struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func NewAuthService(
	logger *zap.Logger,
	users repository.UserRepository,
	store cache.Store,
	sender email.Sender,
	publisher events.Publisher,
	m *metrics.Metrics,
	cfg AuthServiceConfig,
) *AuthService {
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = defaultOTPTTL
	}
	if cfg.ResetSessionTTL <= 0 {
		cfg.ResetSessionTTL = defaultResetSessionTTL
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &AuthService{
		logger:    logger.Named("auth"),
		users:     users,
		store:     store,
		sender:    sender,
		publisher: publisher,
		metrics:   m,
		otpTTL:    cfg.OTPTTL,
		resetTTL:  cfg.ResetSessionTTL,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func otpKey(userID string) string {
	return "otp:" + userID
}

func resetSessionKey(userID string) string {
	return "reset-session:" + userID
}

// IssueOTP genera un código, lo guarda con TTL (sobrescribiendo el anterior) y lo envía por correo.
// Si el envío falla el código queda guardado.
func (s *AuthService) IssueOTP(ctx context.Context, emailAddr, userID string) (OTPDelivery, error) {
	emailAddr = normalizeEmail(emailAddr)
	userID = strings.TrimSpace(userID)
	if emailAddr == "" || userID == "" {
		return OTPDelivery{}, ErrInvalidInput
	}

	if _, err := s.users.GetByEmail(ctx, emailAddr); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return OTPDelivery{}, ErrUserNotFound
		}
		return OTPDelivery{}, fmt.Errorf("lookup user by email: %w", err)
	}

	code, err := generateOTPCode()
	if err != nil {
		return OTPDelivery{}, fmt.Errorf("generate otp: %w", err)
	}
	if err := s.store.Set(ctx, otpKey(userID), code, s.otpTTL); err != nil {
		return OTPDelivery{}, fmt.Errorf("store otp: %w", err)
	}
	s.metrics.OTPIssued.Inc()
	expiresAt := s.now().Add(s.otpTTL)

	if s.sender == nil {
		return OTPDelivery{}, ErrEmailSendFailure
	}
	if err := s.sender.SendVerificationOTP(ctx, emailAddr, code, expiresAt); err != nil {
		s.logger.Warn("send verification otp failed", zap.Error(err), zap.String("user_id", userID))
		return OTPDelivery{}, fmt.Errorf("%w: %v", ErrEmailSendFailure, err)
	}

	s.logger.Info("otp issued", zap.String("user_id", userID))
	return OTPDelivery{Email: emailAddr, ExpiresAt: expiresAt}, nil
}

// VerifyOTP consume el código y abre la sesión de reseteo.
// Un código incorrecto no consume la entrada; de dos verificaciones concurrentes sólo una gana.
func (s *AuthService) VerifyOTP(ctx context.Context, userID, code string) error {
	userID = strings.TrimSpace(userID)
	code = strings.TrimSpace(code)
	if userID == "" {
		return ErrInvalidInput
	}

	stored, err := s.store.Get(ctx, otpKey(userID))
	if errors.Is(err, cache.ErrMiss) {
		s.metrics.OTPVerifications.WithLabelValues("not_found").Inc()
		return ErrOTPNotFound
	}
	if err != nil {
		return fmt.Errorf("read otp: %w", err)
	}
	if stored != code {
		s.metrics.OTPVerifications.WithLabelValues("invalid").Inc()
		return ErrOTPInvalid
	}

	consumed, err := s.store.CompareAndDelete(ctx, otpKey(userID), code)
	if err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	if !consumed {
		s.metrics.OTPVerifications.WithLabelValues("not_found").Inc()
		return ErrOTPNotFound
	}

	if err := s.store.Set(ctx, resetSessionKey(userID), resetMarkerValue, s.resetTTL); err != nil {
		return fmt.Errorf("open reset session: %w", err)
	}
	s.metrics.OTPVerifications.WithLabelValues("verified").Inc()
	s.logger.Info("otp verified", zap.String("user_id", userID))
	return nil
}

// ResetPassword exige una sesión de reseteo viva y la consume.
// La fortaleza de newPassword se valida antes de llamar a este método.
func (s *AuthService) ResetPassword(ctx context.Context, username, newPassword, userID string) error {
	username = strings.TrimSpace(username)
	userID = strings.TrimSpace(userID)
	if username == "" || userID == "" || newPassword == "" {
		return ErrInvalidInput
	}

	if _, err := s.store.Get(ctx, resetSessionKey(userID)); err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return ErrResetSessionExpired
		}
		return fmt.Errorf("read reset session: %w", err)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user by username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), passwordHashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	// La sesión se consume antes de escribir: dos reseteos concurrentes no pueden ganar ambos.
	consumed, err := s.store.CompareAndDelete(ctx, resetSessionKey(userID), resetMarkerValue)
	if err != nil {
		return fmt.Errorf("consume reset session: %w", err)
	}
	if !consumed {
		return ErrResetSessionExpired
	}

	if err := s.users.UpdatePassword(ctx, user.Username, string(hash)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}
	s.metrics.PasswordResets.Inc()

	at := s.now()
	if err := s.publisher.Publish(ctx, events.SubjectPasswordReset, events.PasswordReset{
		UserID:   userID,
		Username: user.Username,
		At:       at,
	}); err != nil {
		s.logger.Warn("publish password reset failed", zap.Error(err))
	}
	s.logger.Info("password reset", zap.String("username", user.Username))
	return nil
}

func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// IsValidOTPCode comprueba el formato de 6 dígitos decimales.
func IsValidOTPCode(code string) bool {
	if len(code) != otpDigits {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
