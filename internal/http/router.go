package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cleanease/internal/metrics"
	"cleanease/internal/service"
)

// RateLimiters agrupa los cupos por grupo de rutas; nil desactiva el cupo.
type RateLimiters struct {
	API   service.RateLimiter
	Auth  service.RateLimiter
	OTP   service.RateLimiter
	Reset service.RateLimiter
}

// RouterDeps reúne lo necesario para montar la API.
type RouterDeps struct {
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	JWT      *service.JWTService
	Errors   *ErrorWriter
	Limiters RateLimiters
	Users    *UserHandler
	Provider *ProviderHandler
	Booking  *BookingHandler
}

// NewRouter configura el router de Gin con middlewares y rutas bajo /api.
func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(d.Logger), gin.Recovery())
	if d.Metrics != nil {
		r.Use(metricsMiddleware(d.Metrics))
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "CleanEase API is running"})
	})

	api := r.Group("/api", jsonContentTypeMiddleware(), rateLimitMiddleware(d.Limiters.API, d.Errors))

	authLimited := rateLimitMiddleware(d.Limiters.Auth, d.Errors)
	otpLimited := rateLimitMiddleware(d.Limiters.OTP, d.Errors)
	resetLimited := failedOnlyRateLimitMiddleware(d.Limiters.Reset, d.Errors)
	requireAuth := RequireAuth(d.JWT, d.Errors)
	optionalAuth := OptionalAuth(d.JWT)

	// Cuentas y OTP.
	api.POST("/register", authLimited, d.Users.Register)
	api.POST("/login", authLimited, d.Users.Login)
	api.POST("/registermail", otpLimited, d.Users.RegisterMail)
	api.POST("/otpvalidation", otpLimited, d.Users.VerifyOTP)
	api.PATCH("/resetPassword", resetLimited, d.Users.ResetPassword)
	api.POST("/authenticate", requireAuth, d.Users.Authenticate)
	api.GET("/user/:username", d.Users.GetUser)

	// Proveedores.
	api.POST("/addemployee", requireAuth, d.Provider.Create)
	api.PUT("/updateEmployee/:id", requireAuth, d.Provider.Update)
	api.DELETE("/deleteEmployee/:id", requireAuth, d.Provider.Delete)
	api.GET("/employees", optionalAuth, d.Provider.List)
	api.GET("/employees/:id", optionalAuth, d.Provider.Get)
	api.POST("/rating", requireAuth, d.Provider.AddRating)

	// Reservas.
	api.POST("/booking", requireAuth, d.Booking.Create)
	api.GET("/Cartpage", requireAuth, d.Booking.List)
	api.DELETE("/removeBooking", requireAuth, d.Booking.Remove)

	r.NoRoute(func(c *gin.Context) {
		d.Errors.Status(c, http.StatusNotFound, "Route "+c.Request.URL.Path+" not found")
	})

	return r
}
