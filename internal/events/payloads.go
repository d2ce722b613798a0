package events

import "time"

type BookingCreated struct {
	BookingID  string    `json:"bookingId"`
	ProviderID int64     `json:"providerId"`
	Username   string    `json:"username"`
	Date       time.Time `json:"date"`
	Time       string    `json:"time"`
}

type RatingAdded struct {
	ProviderID int64   `json:"providerId"`
	Reviewer   string  `json:"reviewer"`
	Rating     float64 `json:"rating"`
	Average    float64 `json:"average"`
	Count      int     `json:"count"`
}

type PasswordReset struct {
	UserID   string    `json:"userId"`
	Username string    `json:"username"`
	At       time.Time `json:"at"`
}
