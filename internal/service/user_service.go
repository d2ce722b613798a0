package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"cleanease/internal/domain"
	"cleanease/internal/repository"
)

// UserService coordina reglas de negocio para cuentas.
type UserService struct {
	logger *zap.Logger
	users  repository.UserRepository
	tokens *JWTService
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, tokens *JWTService) *UserService {
	return &UserService{
		logger: logger.Named("users"),
		users:  users,
		tokens: tokens,
	}
}

type RegisterInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

// LoginResult contiene el token emitido y la identidad asociada.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
}

// Register crea la cuenta; username y email deben ser únicos.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	username := strings.TrimSpace(input.Username)
	emailAddr := normalizeEmail(input.Email)
	if username == "" || emailAddr == "" || input.Password == "" {
		return domain.User{}, ErrInvalidInput
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return domain.User{}, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, fmt.Errorf("lookup username: %w", err)
	}
	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return domain.User{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), passwordHashCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(input.Name),
		Username:     username,
		Email:        emailAddr,
		PasswordHash: string(hash),
		Bookings:     []domain.Booking{},
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Carrera entre la comprobación previa y el índice único.
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.User{}, s.conflictFor(ctx, emailAddr)
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return user.PublicProfile(), nil
}

// conflictFor decide qué índice único se violó tras un ErrDuplicate.
func (s *UserService) conflictFor(ctx context.Context, emailAddr string) error {
	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return ErrEmailTaken
	}
	return ErrUsernameTaken
}

// Login valida credenciales y emite un token de sesión.
func (s *UserService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return LoginResult{}, ErrUserNotFound
		}
		return LoginResult{}, fmt.Errorf("lookup user: %w", err)
	}
	if user.PasswordHash == "" {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.IssueToken(user.ID, user.Username)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}
	return LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
		Username:  user.Username,
	}, nil
}

// GetByID devuelve el perfil público de la cuenta dueña de un token.
func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.User{}, ErrInvalidInput
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("lookup user by id: %w", err)
	}
	return user.PublicProfile(), nil
}

// GetByUsername devuelve el perfil público, sin hash de contraseña.
func (s *UserService) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.User{}, ErrInvalidInput
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}
	return user.PublicProfile(), nil
}
