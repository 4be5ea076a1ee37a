package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// SQLStore writes turns and appointment records to Postgres.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore returns nil when db is nil so callers can skip archiving.
func NewSQLStore(db *sql.DB) *SQLStore {
	if db == nil {
		return nil
	}
	return &SQLStore{db: db}
}

func (s *SQLStore) RecordTurn(ctx context.Context, rec TurnRecord) error {
	if s == nil {
		return nil
	}
	at := rec.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversation_turns (user_id, inbound, media_url, media_kind, reply, from_state, to_state, delivered, language, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, rec.UserID, rec.Inbound, nullString(rec.MediaURL), nullString(rec.MediaKind), rec.Reply, rec.FromState, rec.ToState, rec.Delivered, rec.Language, at)
	if err != nil {
		return fmt.Errorf("archive: insert turn: %w", err)
	}
	return nil
}

func (s *SQLStore) RecordAppointment(ctx context.Context, rec AppointmentRecord) error {
	if s == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO appointment_records (appointment_id, user_id, property_id, property_title, location, price, key_amenities,
			name, phone, preferred_time, requirements, language, booked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (appointment_id) DO NOTHING
	`, rec.AppointmentID, rec.UserID, rec.PropertyID, rec.PropertyTitle, rec.Location, rec.Price, pq.Array(rec.KeyAmenities),
		rec.Name, rec.Phone, rec.PreferredTime, rec.Requirements, rec.Language, rec.BookedAt)
	if err != nil {
		return fmt.Errorf("archive: insert appointment: %w", err)
	}
	return nil
}

// ListTurns returns the most recent turns for a user, newest first.
func (s *SQLStore) ListTurns(ctx context.Context, userID string, limit int) ([]TurnRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, inbound, COALESCE(media_url, ''), COALESCE(media_kind, ''), reply, from_state, to_state, delivered, language, created_at
		FROM conversation_turns
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("archive: list turns: %w", err)
	}
	defer rows.Close()

	out := []TurnRecord{}
	for rows.Next() {
		var rec TurnRecord
		if err := rows.Scan(&rec.UserID, &rec.Inbound, &rec.MediaURL, &rec.MediaKind, &rec.Reply,
			&rec.FromState, &rec.ToState, &rec.Delivered, &rec.Language, &rec.At); err != nil {
			return nil, fmt.Errorf("archive: scan turn: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetAppointment loads an archived appointment document.
func (s *SQLStore) GetAppointment(ctx context.Context, appointmentID string) (*AppointmentRecord, error) {
	var rec AppointmentRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT appointment_id, user_id, property_id, property_title, location, price, key_amenities,
			name, phone, preferred_time, requirements, language, booked_at
		FROM appointment_records WHERE appointment_id = $1
	`, appointmentID).Scan(&rec.AppointmentID, &rec.UserID, &rec.PropertyID, &rec.PropertyTitle, &rec.Location, &rec.Price,
		pq.Array(&rec.KeyAmenities), &rec.Name, &rec.Phone, &rec.PreferredTime, &rec.Requirements, &rec.Language, &rec.BookedAt)
	if err != nil {
		return nil, fmt.Errorf("archive: get appointment: %w", err)
	}
	return &rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
