package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

type outboxDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// OutboxStore keeps envelopes that could not be published so they can be
// redelivered once the bus is reachable.
type OutboxStore struct {
	db outboxDB
}

func NewOutboxStore(pool *pgxpool.Pool) *OutboxStore {
	if pool == nil {
		panic("events: pgx pool required")
	}
	return &OutboxStore{db: pool}
}

func newOutboxStoreWithDB(db outboxDB) *OutboxStore {
	if db == nil {
		panic("events: db required")
	}
	return &OutboxStore{db: db}
}

// Insert parks env. Re-inserting the same event id is a no-op.
func (s *OutboxStore) Insert(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("events: marshal envelope: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO event_outbox (id, type, envelope)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, env.Meta.ID, env.Meta.Type, data)
	if err != nil {
		return fmt.Errorf("events: insert outbox: %w", err)
	}
	return nil
}

// FetchPending returns undelivered envelopes, oldest first.
func (s *OutboxStore) FetchPending(ctx context.Context, limit int32) ([]Envelope, error) {
	rows, err := s.db.Query(ctx, `
		SELECT envelope
		FROM event_outbox
		WHERE delivered_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("events: fetch pending: %w", err)
	}
	defer rows.Close()

	var out []Envelope
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("events: scan outbox: %w", err)
		}
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("events: decode outbox envelope: %w", err)
		}
		out = append(out, env)
	}
	return out, rows.Err()
}

func (s *OutboxStore) MarkDelivered(ctx context.Context, id string) (bool, error) {
	ct, err := s.db.Exec(ctx, `
		UPDATE event_outbox
		SET delivered_at = now()
		WHERE id = $1 AND delivered_at IS NULL
	`, id)
	if err != nil {
		return false, fmt.Errorf("events: mark delivered: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

type outboxWriter interface {
	Insert(ctx context.Context, env Envelope) error
}

// OutboxPublisher publishes through next and parks envelopes that fail.
type OutboxPublisher struct {
	next   Publisher
	outbox outboxWriter
	logger *logging.Logger
}

func NewOutboxPublisher(next Publisher, outbox outboxWriter, logger *logging.Logger) *OutboxPublisher {
	if next == nil || outbox == nil {
		panic("events: publisher and outbox required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &OutboxPublisher{next: next, outbox: outbox, logger: logger}
}

func (p *OutboxPublisher) Publish(ctx context.Context, env Envelope) error {
	pubErr := p.next.Publish(ctx, env)
	if pubErr == nil {
		return nil
	}
	p.logger.Warn("event publish failed, parking in outbox", "error", pubErr, "event_id", env.Meta.ID, "type", env.Meta.Type)
	if err := p.outbox.Insert(context.WithoutCancel(ctx), env); err != nil {
		return errors.Join(pubErr, err)
	}
	return nil
}

type outboxReader interface {
	FetchPending(ctx context.Context, limit int32) ([]Envelope, error)
	MarkDelivered(ctx context.Context, id string) (bool, error)
}

// Deliverer polls the outbox and republishes parked envelopes.
type Deliverer struct {
	store     outboxReader
	publisher Publisher
	logger    *logging.Logger
	batchSize int32
	interval  time.Duration
}

func NewDeliverer(store outboxReader, publisher Publisher, logger *logging.Logger) *Deliverer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Deliverer{
		store:     store,
		publisher: publisher,
		logger:    logger,
		batchSize: 25,
		interval:  10 * time.Second,
	}
}

func (d *Deliverer) WithBatchSize(size int32) *Deliverer {
	if size > 0 {
		d.batchSize = size
	}
	return d
}

func (d *Deliverer) WithInterval(interval time.Duration) *Deliverer {
	if interval > 0 {
		d.interval = interval
	}
	return d
}

// Start drains the outbox every interval until ctx is done.
func (d *Deliverer) Start(ctx context.Context) {
	if d.store == nil || d.publisher == nil {
		return
	}
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.drain(ctx)
		}
	}
}

// drain republishes one batch and returns how many envelopes were delivered.
func (d *Deliverer) drain(ctx context.Context) int {
	entries, err := d.store.FetchPending(ctx, d.batchSize)
	if err != nil {
		d.logger.Error("outbox fetch failed", "error", err)
		return 0
	}
	delivered := 0
	for _, env := range entries {
		if err := d.publisher.Publish(ctx, env); err != nil {
			d.logger.Warn("outbox delivery failed", "error", err, "event_id", env.Meta.ID, "type", env.Meta.Type)
			// The bus is likely still down; retry the rest next tick.
			break
		}
		if ok, err := d.store.MarkDelivered(ctx, env.Meta.ID); err != nil {
			d.logger.Error("failed to mark outbox delivered", "error", err, "event_id", env.Meta.ID)
		} else if ok {
			delivered++
		}
	}
	if delivered > 0 {
		d.logger.Info("outbox drained", "delivered", delivered)
	}
	return delivered
}
