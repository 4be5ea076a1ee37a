package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

// ErrNotFound is returned by repositories for unseen user ids.
var ErrNotFound = errors.New("session: not found")

// Repository loads and saves whole session records.
type Repository interface {
	Load(ctx context.Context, userID string) (*Session, error)
	Save(ctx context.Context, s *Session) error
}

// Locker serializes work on a key. Unlock must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Store wraps a Repository with per-user serialization so two messages from
// the same user never interleave their read-modify-write cycles.
type Store struct {
	repo   Repository
	locker Locker
	logger *logging.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithLocker overrides the default in-process KeyedMutex.
func WithLocker(l Locker) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.locker = l
		}
	}
}

// WithClock overrides the clock used for new and updated records.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore builds a Store over repo.
func NewStore(repo Repository, logger *logging.Logger, opts ...StoreOption) *Store {
	if repo == nil {
		panic("session: repository cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Store{
		repo:   repo,
		locker: NewKeyedMutex(),
		logger: logger,
		tracer: otel.Tracer("concierge.internal.session"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Update loads (or creates) the session for userID, applies fn and persists
// the result while holding the user's lock. When fn returns an error nothing
// is saved.
func (s *Store) Update(ctx context.Context, userID string, fn func(*Session) error) (*Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("session: user id required")
	}
	ctx, span := s.tracer.Start(ctx, "session.update")
	defer span.End()
	span.SetAttributes(attribute.String("concierge.user_id", userID))

	unlock, err := s.locker.Lock(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("session: failed to lock %s: %w", userID, err)
	}
	defer unlock()

	sess, err := s.repo.Load(ctx, userID)
	switch {
	case errors.Is(err, ErrNotFound):
		sess = New(userID, s.now().UTC())
		s.logger.Debug("session created", "user_id", userID)
	case err != nil:
		span.RecordError(err)
		return nil, err
	}

	if err := fn(sess); err != nil {
		span.RecordError(err)
		return nil, err
	}
	sess.UpdatedAt = s.now().UTC()
	if err := s.repo.Save(ctx, sess); err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("concierge.state", string(sess.State())))
	return sess, nil
}

// Get returns the stored session without locking or creating it.
func (s *Store) Get(ctx context.Context, userID string) (*Session, error) {
	return s.repo.Load(ctx, userID)
}
