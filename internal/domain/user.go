package domain

import "time"

// User es la cuenta de un cliente del marketplace.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password"`
	Bookings     []Booking `json:"bookings" bson:"bookings"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// PublicProfile devuelve una copia sin datos sensibles.
func (u User) PublicProfile() User {
	u.PasswordHash = ""
	if u.Bookings == nil {
		u.Bookings = []Booking{}
	}
	return u
}
