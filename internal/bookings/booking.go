package bookings

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a booking id does not exist.
var ErrNotFound = errors.New("bookings: booking not found")

// Booking statuses.
const (
	StatusRequested = "requested"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Request describes a site visit to be booked.
type Request struct {
	UserID        string
	PropertyID    string
	PropertyTitle string
	Name          string
	Phone         string
	TimeText      string
	Notes         string
	Language      string
}

// Validate checks the fields the bookings table requires.
func (r Request) Validate() error {
	switch {
	case strings.TrimSpace(r.PropertyID) == "":
		return errors.New("bookings: property id required")
	case strings.TrimSpace(r.Name) == "":
		return errors.New("bookings: name required")
	case strings.TrimSpace(r.Phone) == "":
		return errors.New("bookings: phone required")
	case strings.TrimSpace(r.TimeText) == "":
		return errors.New("bookings: preferred time required")
	}
	return nil
}

// Booking is a persisted site visit.
type Booking struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	PropertyID    string    `json:"property_id"`
	PropertyTitle string    `json:"property_title"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	TimeText      string    `json:"time_text"`
	Notes         string    `json:"notes"`
	Language      string    `json:"language"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
