package domain

import "time"

// Categorías admitidas para un proveedor.
const (
	CategoryCleaning    = "Cleaning"
	CategoryMaintenance = "Maintenance"
	CategoryPlumbing    = "Plumbing"
	CategoryElectrical  = "Electrical"
	CategoryPainting    = "Painting"
)

var Categories = []string{
	CategoryCleaning,
	CategoryMaintenance,
	CategoryPlumbing,
	CategoryElectrical,
	CategoryPainting,
}

func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Rating es el promedio acumulado de calificaciones.
type Rating struct {
	Average float64 `json:"average" bson:"average"`
	Count   int     `json:"count" bson:"count"`
}

type Review struct {
	Name      string    `json:"name" bson:"name"`
	Comments  string    `json:"comments" bson:"comments"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// Provider es un "employee" del dominio original: un servicio publicado.
type Provider struct {
	ID        int64     `json:"id" bson:"id"`
	Image     string    `json:"image" bson:"image"`
	Name      string    `json:"name" bson:"name"`
	Category  string    `json:"category" bson:"category"`
	City      string    `json:"city" bson:"city"`
	Price     float64   `json:"price" bson:"price"`
	Rating    Rating    `json:"rating" bson:"rating"`
	Reviews   []Review  `json:"review" bson:"reviews"`
	Bookings  []Booking `json:"bookings" bson:"bookings"`
	IsActive  bool      `json:"isActive" bson:"is_active"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// HasReviewFrom indica si reviewer ya dejó una reseña (comparación exacta).
func (p Provider) HasReviewFrom(reviewer string) bool {
	for _, r := range p.Reviews {
		if r.Name == reviewer {
			return true
		}
	}
	return false
}

// ProviderUpdate contiene los campos modificables; nil significa sin cambio.
type ProviderUpdate struct {
	Image    *string  `json:"image,omitempty"`
	Name     *string  `json:"name,omitempty"`
	Category *string  `json:"category,omitempty"`
	City     *string  `json:"city,omitempty"`
	Price    *float64 `json:"price,omitempty"`
}

func (u ProviderUpdate) IsEmpty() bool {
	return u.Image == nil && u.Name == nil && u.Category == nil && u.City == nil && u.Price == nil
}

// Pagination describe una página de resultados.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
	Limit       int   `json:"limit"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

func NewPagination(page, limit int, total int64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  total,
		Limit:       limit,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}
