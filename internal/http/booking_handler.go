package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cleanease/internal/service"
)

// BookingHandler atiende reservas del usuario autenticado.
type BookingHandler struct {
	logger      *zap.Logger
	bookingServ *service.BookingService
	errs        *ErrorWriter
}

func NewBookingHandler(logger *zap.Logger, bookingServ *service.BookingService, errs *ErrorWriter) *BookingHandler {
	return &BookingHandler{
		logger:      logger,
		bookingServ: bookingServ,
		errs:        errs,
	}
}

var bookingDateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseBookingDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range bookingDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("date must be an ISO-8601 date")
}

// Create maneja POST /booking.
func (h *BookingHandler) Create(c *gin.Context) {
	identity, ok := GetIdentity(c)
	if !ok {
		h.errs.Status(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	var req struct {
		EmployeeID flexString `json:"employeeId" binding:"required"`
		Date       string     `json:"date" binding:"required"`
		Time       string     `json:"time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Invalid(c, err)
		return
	}
	providerID, err := strconv.ParseInt(req.EmployeeID.String(), 10, 64)
	if err != nil || providerID <= 0 {
		h.errs.Status(c, http.StatusBadRequest, "Invalid ID format")
		return
	}
	date, err := parseBookingDate(req.Date)
	if err != nil {
		h.errs.Invalid(c, err)
		return
	}

	booking, err := h.bookingServ.Create(c.Request.Context(), service.CreateBookingInput{
		Username:   identity.Username,
		ProviderID: providerID,
		Date:       date,
		Time:       req.Time,
	})
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Booking created successfully!", "booking": booking})
}

// List maneja GET /Cartpage.
func (h *BookingHandler) List(c *gin.Context) {
	identity, ok := GetIdentity(c)
	if !ok {
		h.errs.Status(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	bookings, err := h.bookingServ.List(c.Request.Context(), identity.Username)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// Remove maneja DELETE /removeBooking; bookingId llega en el cuerpo o en la query.
func (h *BookingHandler) Remove(c *gin.Context) {
	identity, ok := GetIdentity(c)
	if !ok {
		h.errs.Status(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	bookingID := strings.TrimSpace(c.Query("bookingId"))
	if bookingID == "" && c.Request.ContentLength != 0 {
		var req struct {
			BookingID string `json:"bookingId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			h.errs.Invalid(c, err)
			return
		}
		bookingID = strings.TrimSpace(req.BookingID)
	}
	if bookingID == "" {
		h.errs.Status(c, http.StatusBadRequest, "bookingId is required")
		return
	}

	if err := h.bookingServ.Remove(c.Request.Context(), identity.Username, bookingID); err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking removed successfully!"})
}
