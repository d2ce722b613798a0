package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cleanease/internal/cache"
	"cleanease/internal/config"
	"cleanease/internal/email"
	"cleanease/internal/events"
	apihttp "cleanease/internal/http"
	"cleanease/internal/metrics"
	"cleanease/internal/repository"
	"cleanease/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	var logger *zap.Logger
	if cfg.IsProduction() {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	stores, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store connect", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer stores.Close()
	userRepo, providerRepo := stores.Users, stores.Providers

	store, redisClient, closeCache, err := cache.Open(ctx, cfg.RedisURL, cfg.CacheSweepSpec, logger)
	if err != nil {
		logger.Fatal("cache init", zap.Error(err))
	}
	defer closeCache()

	limiters := apihttp.RateLimiters{
		API: service.NewRateLimiter(redisClient, service.RateLimit{
			Name:   "api",
			Window: cfg.RateLimitWindow,
			Max:    cfg.RateLimitMaxRequests,
		}),
		Auth:  service.NewRateLimiter(redisClient, service.AuthRateLimit),
		OTP:   service.NewRateLimiter(redisClient, service.OTPRateLimit),
		Reset: service.NewRateLimiter(redisClient, service.ResetRateLimit),
	}

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATSURL != "" {
		natsPub, err := events.NewNATSPublisher(cfg.NATSURL, logger)
		if err != nil {
			logger.Warn("nats connect failed, events disabled", zap.Error(err))
		} else {
			defer natsPub.Close()
			publisher = natsPub
		}
	}

	m := metrics.New("cleanease")

	if err := apihttp.RegisterValidators(); err != nil {
		logger.Fatal("register validators", zap.Error(err))
	}
	errs := apihttp.NewErrorWriter(logger, cfg.IsProduction())

	jwtSvc := service.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry)
	userSvc := service.NewUserService(logger, userRepo, jwtSvc)
	authSvc := service.NewAuthService(logger, userRepo, store, emailSender, publisher, m, service.AuthServiceConfig{
		OTPTTL:          cfg.OTPExpiry(),
		ResetSessionTTL: cfg.ResetSessionTTL(),
	})
	providerSvc := service.NewProviderService(logger, providerRepo, publisher, m, cfg.DefaultPageSize, cfg.MaxPageSize)
	bookingSvc := service.NewBookingService(logger, userRepo, providerRepo, publisher, m)

	policy := apihttp.PasswordPolicy{MinLength: cfg.PasswordMinLength, MaxLength: cfg.PasswordMaxLength}
	router := apihttp.NewRouter(apihttp.RouterDeps{
		Logger:   logger,
		Metrics:  m,
		JWT:      jwtSvc,
		Errors:   errs,
		Limiters: limiters,
		Users:    apihttp.NewUserHandler(logger, userSvc, authSvc, policy, errs),
		Provider: apihttp.NewProviderHandler(logger, providerSvc, errs),
		Booking:  apihttp.NewBookingHandler(logger, bookingSvc, errs),
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
