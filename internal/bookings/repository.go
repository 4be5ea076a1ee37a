package bookings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists bookings.
type Store interface {
	Insert(ctx context.Context, b Booking) error
	Get(ctx context.Context, id uuid.UUID) (*Booking, error)
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides persistence helpers for bookings.
type Repository struct {
	db querier
}

// NewRepository creates a repository backed by pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("bookings: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithQuerier allows injecting mocks for tests.
func NewRepositoryWithQuerier(q querier) *Repository {
	return &Repository{db: q}
}

// Insert writes a booking row.
func (r *Repository) Insert(ctx context.Context, b Booking) error {
	id, err := uuid.Parse(b.ID)
	if err != nil {
		return fmt.Errorf("bookings: invalid id: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO bookings (id, user_id, property_id, property_title, name, phone, time_text, notes, language, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, toPGUUID(id), b.UserID, b.PropertyID, b.PropertyTitle, b.Name, b.Phone, b.TimeText, b.Notes, b.Language, b.Status, toPGTime(b.CreatedAt))
	if err != nil {
		return fmt.Errorf("bookings: insert: %w", err)
	}
	return nil
}

// Get loads a booking by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var (
		b       Booking
		created pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, `
		SELECT user_id, property_id, property_title, name, phone, time_text, notes, language, status, created_at
		FROM bookings WHERE id = $1
	`, toPGUUID(id)).Scan(&b.UserID, &b.PropertyID, &b.PropertyTitle, &b.Name, &b.Phone, &b.TimeText, &b.Notes, &b.Language, &b.Status, &created)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("bookings: load: %w", err)
	}
	b.ID = id.String()
	if created.Valid {
		b.CreatedAt = created.Time
	}
	return &b, nil
}

// MemoryRepository keeps bookings in process memory for local runs.
type MemoryRepository struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]Booking
}

// NewMemoryRepository returns an empty in-memory store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[uuid.UUID]Booking)}
}

func (m *MemoryRepository) Insert(ctx context.Context, b Booking) error {
	id, err := uuid.Parse(b.ID)
	if err != nil {
		return fmt.Errorf("bookings: invalid id: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.rows[id]; exists {
		return fmt.Errorf("bookings: duplicate id %s", id)
	}
	m.rows[id] = b
	return nil
}

func (m *MemoryRepository) Get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func toPGUUID(id uuid.UUID) pgtype.UUID {
	if id == uuid.Nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{
		Bytes: [16]byte(id),
		Valid: true,
	}
}

func toPGTime(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{
		Time:  t,
		Valid: true,
	}
}
