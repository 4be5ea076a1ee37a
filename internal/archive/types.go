package archive

import (
	"context"
	"time"
)

// TurnRecord is one inbound message and the engine's reaction to it.
type TurnRecord struct {
	UserID    string    `json:"user_id"`
	Inbound   string    `json:"inbound"`
	MediaURL  string    `json:"media_url,omitempty"`
	MediaKind string    `json:"media_kind,omitempty"`
	Reply     string    `json:"reply"`
	FromState string    `json:"from_state"`
	ToState   string    `json:"to_state"`
	Delivered bool      `json:"delivered"`
	Language  string    `json:"language"`
	At        time.Time `json:"at"`
}

// AppointmentRecord is the long-term document kept for every booking.
type AppointmentRecord struct {
	AppointmentID string    `json:"appointment_id"`
	UserID        string    `json:"user_id"`
	PropertyID    string    `json:"property_id"`
	PropertyTitle string    `json:"property_title"`
	Location      string    `json:"location"`
	Price         int64     `json:"price"`
	KeyAmenities  []string  `json:"key_amenities,omitempty"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	PreferredTime string    `json:"preferred_time"`
	Requirements  string    `json:"requirements"`
	Language      string    `json:"language"`
	BookedAt      time.Time `json:"booked_at"`
}

// Archive persists conversation turns and appointment documents.
type Archive interface {
	RecordTurn(ctx context.Context, rec TurnRecord) error
	RecordAppointment(ctx context.Context, rec AppointmentRecord) error
}

// ManifestEntry is one JSONL line in the monthly appointment manifest.
type ManifestEntry struct {
	AppointmentID string `json:"appointment_id"`
	S3Key         string `json:"s3_key"`
	PropertyID    string `json:"property_id"`
	Language      string `json:"language"`
	ArchivedAt    string `json:"archived_at"`
}
