package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cleanease/internal/service"
)

// errorResponse es el cuerpo uniforme de error.
type errorResponse struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
}

// ErrorWriter traduce errores de servicio a respuestas HTTP.
type ErrorWriter struct {
	logger     *zap.Logger
	production bool
}

func NewErrorWriter(logger *zap.Logger, production bool) *ErrorWriter {
	return &ErrorWriter{logger: logger, production: production}
}

type errorMapping struct {
	target  error
	status  int
	message string
}

var errorMappings = []errorMapping{
	{service.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{service.ErrProviderNotFound, http.StatusNotFound, "Employee not found"},
	{service.ErrBookingNotFound, http.StatusNotFound, "Booking not found"},
	{service.ErrUsernameTaken, http.StatusConflict, "Username already exists"},
	{service.ErrEmailTaken, http.StatusConflict, "Email already exists"},
	{service.ErrProviderExists, http.StatusConflict, "Employee id already exists"},
	{service.ErrDuplicateReview, http.StatusConflict, "User has already submitted a review"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid username or password"},
	{service.ErrJWTExpired, http.StatusUnauthorized, "Token expired"},
	{service.ErrJWTInvalid, http.StatusUnauthorized, "Invalid token"},
	{service.ErrOTPNotFound, http.StatusBadRequest, "OTP expired or not generated"},
	{service.ErrOTPInvalid, http.StatusBadRequest, "Invalid OTP"},
	{service.ErrResetSessionExpired, http.StatusBadRequest, "Password reset session expired"},
	{service.ErrInvalidInput, http.StatusBadRequest, "Invalid request"},
	{service.ErrRateLimited, http.StatusTooManyRequests, "Too many requests, please try again later"},
	{service.ErrEmailSendFailure, http.StatusInternalServerError, "Failed to send OTP email"},
}

func statusFor(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.message
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}

// Write responde con el status correspondiente y aborta la cadena.
func (w *ErrorWriter) Write(c *gin.Context, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		w.logger.Error("request failed",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
	}
	w.respond(c, status, message, err)
}

// Invalid responde 400 con el mensaje de validación.
func (w *ErrorWriter) Invalid(c *gin.Context, err error) {
	w.logger.Debug("invalid request", zap.Error(err), zap.String("path", c.Request.URL.Path))
	w.respond(c, http.StatusBadRequest, validationMessage(err), err)
}

// Status responde con un status y mensaje fijos.
func (w *ErrorWriter) Status(c *gin.Context, status int, message string) {
	w.respond(c, status, message, nil)
}

func (w *ErrorWriter) respond(c *gin.Context, status int, message string, err error) {
	body := errorResponse{
		Success:    false,
		StatusCode: status,
		Message:    message,
	}
	if !w.production && err != nil {
		body.Detail = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}
