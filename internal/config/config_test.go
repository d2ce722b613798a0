package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.OTPExpiry() != 300*time.Second {
		t.Fatalf("expected otp expiry 300s, got %v", cfg.OTPExpiry())
	}
	if cfg.ResetSessionTTL() != 600*time.Second {
		t.Fatalf("expected reset session ttl 600s, got %v", cfg.ResetSessionTTL())
	}
	if cfg.JWTExpiry != 24*time.Hour {
		t.Fatalf("expected jwt expiry 24h, got %v", cfg.JWTExpiry)
	}
	if cfg.PasswordMinLength != 8 || cfg.PasswordMaxLength != 128 {
		t.Fatalf("unexpected password bounds %d-%d", cfg.PasswordMinLength, cfg.PasswordMaxLength)
	}
	if cfg.StoreDriver != StoreMongo {
		t.Fatalf("expected mongo driver by default, got %s", cfg.StoreDriver)
	}
}

func TestLoadConfig_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}

func TestConfigValidate(t *testing.T) {
	base := func() Config {
		return Config{
			StoreDriver:            StoreMongo,
			JWTExpiry:              time.Hour,
			OTPExpirySeconds:       300,
			ResetSessionTTLSeconds: 600,
			PasswordMinLength:      8,
			PasswordMaxLength:      128,
			DefaultPageSize:        10,
			MaxPageSize:            100,
		}
	}

	cases := map[string]func(*Config){
		"unknown driver":          func(c *Config) { c.StoreDriver = "sqlite" },
		"postgres without url":    func(c *Config) { c.StoreDriver = StorePostgres },
		"min above max":           func(c *Config) { c.PasswordMinLength = 200 },
		"zero otp ttl":            func(c *Config) { c.OTPExpirySeconds = 0 },
		"negative reset ttl":      func(c *Config) { c.ResetSessionTTLSeconds = -1 },
		"page size above maximum": func(c *Config) { c.DefaultPageSize = 500 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}

	cfg := base()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}
