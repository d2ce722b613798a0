package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cleanease/internal/metrics"
	"cleanease/internal/service"
)

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// metricsMiddleware registra la latencia por ruta registrada, no por path crudo.
func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// rateLimitMiddleware aplica el cupo por IP de cliente.
func rateLimitMiddleware(limiter service.RateLimiter, errs *ErrorWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		if !limiter.Allow(c.ClientIP()) {
			errs.Write(c, service.ErrRateLimited)
			return
		}
		c.Next()
	}
}

// failedOnlyRateLimitMiddleware cuenta sólo las respuestas con error;
// una respuesta 2xx/3xx devuelve su solicitud al cupo.
func failedOnlyRateLimitMiddleware(limiter service.RateLimiter, errs *ErrorWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		key := c.ClientIP()
		if !limiter.Allow(key) {
			errs.Write(c, service.ErrRateLimited)
			return
		}
		c.Next()
		if c.Writer.Status() < http.StatusBadRequest {
			limiter.Refund(key)
		}
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
