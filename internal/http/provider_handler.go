package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cleanease/internal/domain"
	"cleanease/internal/service"
)

// ProviderHandler expone el catálogo de proveedores ("employees").
type ProviderHandler struct {
	logger       *zap.Logger
	providerServ *service.ProviderService
	errs         *ErrorWriter
}

func NewProviderHandler(logger *zap.Logger, providerServ *service.ProviderService, errs *ErrorWriter) *ProviderHandler {
	return &ProviderHandler{
		logger:       logger,
		providerServ: providerServ,
		errs:         errs,
	}
}

// providerDetail agrega al proveedor si el llamador ya lo calificó.
type providerDetail struct {
	domain.Provider
	ReviewedByMe bool `json:"reviewedByMe"`
}

// Create maneja POST /addemployee.
func (h *ProviderHandler) Create(c *gin.Context) {
	var req struct {
		ID       int64   `json:"id" binding:"required,gt=0"`
		Image    string  `json:"image" binding:"required,url"`
		Name     string  `json:"name" binding:"required,min=2,max=100"`
		Category string  `json:"category" binding:"required,category"`
		City     string  `json:"city" binding:"required,min=2"`
		Price    float64 `json:"price" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Invalid(c, err)
		return
	}

	p, err := h.providerServ.Create(c.Request.Context(), service.CreateProviderInput{
		ID:       req.ID,
		Image:    req.Image,
		Name:     req.Name,
		Category: req.Category,
		City:     req.City,
		Price:    req.Price,
	})
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// List maneja GET /employees?page=&limit=.
func (h *ProviderHandler) List(c *gin.Context) {
	var q struct {
		Page  int `form:"page" binding:"omitempty,min=1"`
		Limit int `form:"limit" binding:"omitempty,min=1"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		h.errs.Invalid(c, err)
		return
	}

	page, err := h.providerServ.List(c.Request.Context(), q.Page, q.Limit)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get maneja GET /employees/:id.
func (h *ProviderHandler) Get(c *gin.Context) {
	id, ok := h.providerID(c)
	if !ok {
		return
	}

	p, err := h.providerServ.Get(c.Request.Context(), id)
	if err != nil {
		h.errs.Write(c, err)
		return
	}

	detail := providerDetail{Provider: p}
	if identity, ok := GetIdentity(c); ok {
		detail.ReviewedByMe = p.HasReviewFrom(identity.Username)
	}
	c.JSON(http.StatusOK, detail)
}

// Update maneja PUT /updateEmployee/:id.
func (h *ProviderHandler) Update(c *gin.Context) {
	id, ok := h.providerID(c)
	if !ok {
		return
	}
	var req struct {
		Image    *string  `json:"image" binding:"omitempty,url"`
		Name     *string  `json:"name" binding:"omitempty,min=2,max=100"`
		Category *string  `json:"category" binding:"omitempty,category"`
		City     *string  `json:"city" binding:"omitempty,min=2"`
		Price    *float64 `json:"price" binding:"omitempty,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Invalid(c, err)
		return
	}

	p, err := h.providerServ.Update(c.Request.Context(), id, domain.ProviderUpdate{
		Image:    req.Image,
		Name:     req.Name,
		Category: req.Category,
		City:     req.City,
		Price:    req.Price,
	})
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Delete maneja DELETE /deleteEmployee/:id.
func (h *ProviderHandler) Delete(c *gin.Context) {
	id, ok := h.providerID(c)
	if !ok {
		return
	}
	if err := h.providerServ.Delete(c.Request.Context(), id); err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Employee deleted successfully"})
}

// AddRating maneja POST /rating. El autor de la reseña es el usuario del token.
func (h *ProviderHandler) AddRating(c *gin.Context) {
	identity, ok := GetIdentity(c)
	if !ok {
		h.errs.Status(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	var req struct {
		EmpID      flexString `json:"empID" binding:"required"`
		Rating     float64    `json:"rating" binding:"required,min=1,max=5"`
		ReviewText string     `json:"reviewtext" binding:"max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Invalid(c, err)
		return
	}
	id, err := strconv.ParseInt(req.EmpID.String(), 10, 64)
	if err != nil || id <= 0 {
		h.errs.Status(c, http.StatusBadRequest, "Invalid ID format")
		return
	}

	p, err := h.providerServ.AddRating(c.Request.Context(), service.RatingInput{
		ProviderID: id,
		Reviewer:   identity.Username,
		Rating:     req.Rating,
		Text:       req.ReviewText,
	})
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProviderHandler) providerID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.errs.Status(c, http.StatusBadRequest, "Invalid ID format")
		return 0, false
	}
	return id, true
}
