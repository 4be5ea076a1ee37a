package archive

import (
	"context"
	"crypto/sha256"
	"fmt"
	"regexp"
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	// Indian mobile numbers with an optional +91, 91 or 0 trunk prefix.
	phoneRe = regexp.MustCompile(`(?:\+?91[-\s]?|\b0|\b)[6-9]\d{4}[-\s]?\d{5}\b`)
)

// HashPhone returns the hex-encoded SHA-256 hash of a phone number.
func HashPhone(phone string) string {
	h := sha256.Sum256([]byte(phone))
	return fmt.Sprintf("%x", h)
}

// ScrubPII replaces emails with [EMAIL] and phone numbers with [PHONE].
func ScrubPII(text string) string {
	text = emailRe.ReplaceAllString(text, "[EMAIL]")
	text = phoneRe.ReplaceAllString(text, "[PHONE]")
	return text
}

// Redacting scrubs turn text before handing it to the wrapped archive.
// Appointment documents are the business record and pass through untouched.
type Redacting struct {
	next Archive
}

func NewRedacting(next Archive) *Redacting {
	if next == nil {
		panic("archive: wrapped archive required")
	}
	return &Redacting{next: next}
}

func (r *Redacting) RecordTurn(ctx context.Context, rec TurnRecord) error {
	rec.Inbound = ScrubPII(rec.Inbound)
	rec.Reply = ScrubPII(rec.Reply)
	return r.next.RecordTurn(ctx, rec)
}

func (r *Redacting) RecordAppointment(ctx context.Context, rec AppointmentRecord) error {
	return r.next.RecordAppointment(ctx, rec)
}
