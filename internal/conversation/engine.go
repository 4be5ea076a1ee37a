package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/realestate-concierge/internal/archive"
	"github.com/wolfman30/realestate-concierge/internal/session"
	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

// InboundMessage is one message from a user on any channel.
type InboundMessage struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
	Media  *Media `json:"media,omitempty"`
}

// Response is the engine's reply for the transport to deliver.
type Response struct {
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	State     string    `json:"state"`
	Delivered bool      `json:"delivered"`
	Timestamp time.Time `json:"timestamp"`
}

// Service is the entry point transports depend on.
type Service interface {
	HandleInboundMessage(ctx context.Context, msg InboundMessage) (*Response, error)
}

// Engine ties the session store to the state machine and runs side effects
// after the session has been saved.
type Engine struct {
	store   *session.Store
	machine *Machine
	turns   archive.Archive
	effects *effectRunner
	logger  *logging.Logger
	now     func() time.Time
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithTurnArchive records every turn in the long-term store.
func WithTurnArchive(a archive.Archive) EngineOption {
	return func(e *Engine) { e.turns = a }
}

// WithSideEffectTimeout bounds each side effect.
func WithSideEffectTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.effects.timeout = d
		}
	}
}

// WithSynchronousEffects runs side effects before HandleInboundMessage
// returns. Intended for tests and the single-shot lambda.
func WithSynchronousEffects() EngineOption {
	return func(e *Engine) { e.effects.sync = true }
}

// WithEngineMetrics reports side effect outcomes.
func WithEngineMetrics(metrics Metrics) EngineOption {
	return func(e *Engine) {
		if metrics != nil {
			e.effects.metrics = metrics
		}
	}
}

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates the conversation engine.
func NewEngine(store *session.Store, machine *Machine, logger *logging.Logger, opts ...EngineOption) *Engine {
	if store == nil {
		panic("conversation: session store cannot be nil")
	}
	if machine == nil {
		panic("conversation: machine cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	e := &Engine{
		store:   store,
		machine: machine,
		logger:  logger,
		now:     time.Now,
		effects: &effectRunner{timeout: defaultSideEffectTimeout, logger: logger, metrics: nopMetrics{}},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HandleInboundMessage runs one dialogue step for the user. A nil response
// with a nil error means the reply was already delivered on a side channel.
func (e *Engine) HandleInboundMessage(ctx context.Context, msg InboundMessage) (*Response, error) {
	userID := strings.TrimSpace(msg.UserID)
	if userID == "" {
		return nil, errors.New("conversation: user id required")
	}
	if msg.Media != nil && strings.TrimSpace(msg.Media.URL) == "" {
		msg.Media = nil
	}

	now := e.now().UTC()
	in := Input{Raw: msg.Text, Text: Normalize(msg.Text), Media: msg.Media, Now: now}

	var (
		out     Outcome
		from    session.State
		stepped *session.Session
	)
	sess, err := e.store.Update(ctx, userID, func(s *session.Session) error {
		from = s.State()
		var stepErr error
		out, stepErr = e.machine.Step(ctx, s, in)
		if stepErr == nil {
			stepped = s
		}
		return stepErr
	})
	if err != nil {
		e.logger.Error("conversation step failed", "user_id", userID, "error", err)
		if stepped != nil && len(out.Effects) > 0 {
			// The step committed external work (a booking) that the stored
			// session no longer reflects.
			e.logger.Error("session not saved after side effects", "user_id", userID,
				"appointment_id", stepped.AppointmentID(), "state", stepped.State())
			e.effects.run(ctx, userID, out.Effects)
		}
		return nil, fmt.Errorf("conversation: failed to process message: %w", err)
	}

	to := sess.State()
	if out.Failure != nil {
		e.logger.Info("conversation input recovered", "user_id", userID, "state", to, "kind", errorKind(out.Failure), "error", out.Failure)
	}
	e.logger.Debug("conversation step", "user_id", userID, "from", from, "to", to, "delivered", out.Delivered)

	effects := out.Effects
	if e.turns != nil {
		effects = append(effects, e.turnEffect(userID, msg, out, from, to, sess, now))
	}
	e.effects.run(ctx, userID, effects)

	if out.Delivered {
		return nil, nil
	}
	return &Response{
		UserID:    userID,
		Message:   out.Reply,
		State:     string(to),
		Timestamp: now,
	}, nil
}

func (e *Engine) turnEffect(userID string, msg InboundMessage, out Outcome, from, to session.State, sess *session.Session, at time.Time) Effect {
	rec := archive.TurnRecord{
		UserID:    userID,
		Inbound:   msg.Text,
		Reply:     out.Reply,
		FromState: string(from),
		ToState:   string(to),
		Delivered: out.Delivered,
		Language:  string(sess.Language),
		At:        at,
	}
	if msg.Media != nil {
		rec.MediaURL = msg.Media.URL
		rec.MediaKind = msg.Media.Kind
	}
	return Effect{Name: "archive_turn", Run: func(ctx context.Context) error {
		return e.turns.RecordTurn(ctx, rec)
	}}
}

// Session returns the stored session for inspection.
func (e *Engine) Session(ctx context.Context, userID string) (*session.Session, error) {
	return e.store.Get(ctx, userID)
}

// Wait blocks until background side effects have finished.
func (e *Engine) Wait() {
	e.effects.wait()
}
