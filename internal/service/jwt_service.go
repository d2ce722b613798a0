package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTService emite y valida tokens de sesión firmados (HS256).
type JWTService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// Identity es el resultado de verificar un token.
type Identity struct {
	UserID        string `json:"userId"`
	Username      string `json:"username"`
	Authenticated bool   `json:"-"`
}

type Claims struct {
	UserID   string `json:"uid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

var (
	ErrJWTInvalid = errors.New("jwt invalid")
	ErrJWTExpired = errors.New("jwt expired")
)

const defaultTokenTTL = 24 * time.Hour

func NewJWTService(secret string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "cleanease",
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// IssueToken firma un token con la identidad y su expiración.
func (s *JWTService) IssueToken(userID, username string) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, ErrJWTInvalid
	}
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(username) == "" {
		return "", time.Time{}, ErrJWTInvalid
	}
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// VerifyToken valida firma y expiración sin tocar almacenamiento.
func (s *JWTService) VerifyToken(tokenString string) (Identity, error) {
	if len(s.secret) == 0 {
		return Identity{}, ErrJWTInvalid
	}
	if strings.TrimSpace(tokenString) == "" {
		return Identity{}, ErrJWTInvalid
	}
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return Identity{}, err
	}
	if !s.isValidClaims(claims) {
		return Identity{}, ErrJWTInvalid
	}
	return Identity{
		UserID:        claims.UserID,
		Username:      claims.Username,
		Authenticated: true,
	}, nil
}

// VerifyOptional nunca falla: ante cualquier error devuelve una identidad anónima.
func (s *JWTService) VerifyOptional(tokenString string) Identity {
	identity, err := s.VerifyToken(tokenString)
	if err != nil {
		return Identity{}
	}
	return identity
}

func (s *JWTService) parseToken(tokenString string) (Claims, error) {
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrJWTExpired
		}
		return Claims{}, ErrJWTInvalid
	}
	return claims, nil
}

func (s *JWTService) isValidClaims(claims Claims) bool {
	if strings.TrimSpace(claims.UserID) == "" || strings.TrimSpace(claims.Username) == "" {
		return false
	}
	if claims.Subject != claims.UserID {
		return false
	}
	return claims.Issuer == s.issuer
}
