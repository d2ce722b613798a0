package domain

import "time"

// Booking es una copia desnormalizada tomada al momento de reservar.
// Se guarda por separado en el usuario y en el proveedor.
type Booking struct {
	ID            string    `json:"_id" bson:"id"`
	ProviderName  string    `json:"employeeName" bson:"employee_name"`
	ProviderImage string    `json:"employeeImage" bson:"employee_image"`
	City          string    `json:"city" bson:"city"`
	Date          time.Time `json:"date" bson:"date"`
	Time          string    `json:"time" bson:"time"`
	BookedBy      string    `json:"bookedBy" bson:"booked_by"`
}
