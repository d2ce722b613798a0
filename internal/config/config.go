package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8000"`
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	StoreDriver string `env:"STORE_DRIVER" envDefault:"mongo"`

	MongoURI    string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB     string `env:"MONGO_DB" envDefault:"cleanease"`
	DatabaseURL string `env:"DATABASE_URL"`

	RedisURL       string `env:"REDIS_URL"`
	CacheSweepSpec string `env:"CACHE_SWEEP_SPEC" envDefault:"@every 1m"`

	JWTSecret string        `env:"JWT_SECRET,required"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`

	OTPExpirySeconds       int `env:"OTP_EXPIRY_SECONDS" envDefault:"300"`
	ResetSessionTTLSeconds int `env:"RESET_SESSION_TTL_SECONDS" envDefault:"600"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME" envDefault:"CleanEase"`

	PasswordMinLength int `env:"PASSWORD_MIN_LENGTH" envDefault:"8"`
	PasswordMaxLength int `env:"PASSWORD_MAX_LENGTH" envDefault:"128"`

	RateLimitWindow      time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
	RateLimitMaxRequests int           `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"100"`

	DefaultPageSize int `env:"DEFAULT_PAGE_SIZE" envDefault:"10"`
	MaxPageSize     int `env:"MAX_PAGE_SIZE" envDefault:"100"`

	NATSURL string `env:"NATS_URL"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate revisa combinaciones que env no puede expresar.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMongo:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.PasswordMinLength < 1 || c.PasswordMinLength > c.PasswordMaxLength {
		return fmt.Errorf("invalid password length bounds %d-%d", c.PasswordMinLength, c.PasswordMaxLength)
	}
	if c.OTPExpirySeconds <= 0 || c.ResetSessionTTLSeconds <= 0 {
		return errors.New("otp expiry and reset session ttl must be positive")
	}
	if c.JWTExpiry <= 0 {
		return errors.New("JWT_EXPIRY must be positive")
	}
	if c.DefaultPageSize < 1 || c.DefaultPageSize > c.MaxPageSize {
		return fmt.Errorf("invalid page size bounds %d-%d", c.DefaultPageSize, c.MaxPageSize)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) OTPExpiry() time.Duration {
	return time.Duration(c.OTPExpirySeconds) * time.Second
}

func (c *Config) ResetSessionTTL() time.Duration {
	return time.Duration(c.ResetSessionTTLSeconds) * time.Second
}
