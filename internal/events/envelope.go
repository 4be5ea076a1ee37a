package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Producer identifies this service in emitted envelopes.
const Producer = "realestate-concierge"

// Meta describes an emitted event.
type Meta struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Time          time.Time `json:"time"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Producer      string    `json:"producer,omitempty"`
}

// Envelope wraps an event payload with its metadata.
type Envelope struct {
	Meta Meta            `json:"meta"`
	Data json.RawMessage `json:"data"`
}

// NewEnvelope encodes data under a fresh event id.
func NewEnvelope(eventType, correlationID string, data any) (Envelope, error) {
	if eventType == "" {
		return Envelope{}, fmt.Errorf("events: event type required")
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("events: marshal %s: %w", eventType, err)
	}
	return Envelope{
		Meta: Meta{
			ID:            uuid.NewString(),
			Type:          eventType,
			Time:          time.Now().UTC(),
			CorrelationID: correlationID,
			Producer:      Producer,
		},
		Data: raw,
	}, nil
}

// Decode unmarshals the payload into v.
func (e Envelope) Decode(v any) error {
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("events: decode %s: %w", e.Meta.Type, err)
	}
	return nil
}
