package events

import "time"

// TypeAppointmentBooked is emitted once per created site visit.
const TypeAppointmentBooked = "appointment.booked.v1"

// AppointmentBookedV1 is the payload of TypeAppointmentBooked.
type AppointmentBookedV1 struct {
	AppointmentID string    `json:"appointment_id"`
	UserID        string    `json:"user_id"`
	PropertyID    string    `json:"property_id"`
	PropertyTitle string    `json:"property_title"`
	Location      string    `json:"location"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	PreferredTime string    `json:"preferred_time"`
	Requirements  string    `json:"requirements"`
	Language      string    `json:"language"`
	BookedAt      time.Time `json:"booked_at"`
}
