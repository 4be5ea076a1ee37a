package conversation

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/realestate-concierge/internal/archive"
	"github.com/wolfman30/realestate-concierge/internal/events"
	"github.com/wolfman30/realestate-concierge/internal/i18n"
	"github.com/wolfman30/realestate-concierge/internal/session"
	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

var conversationTracer = otel.Tracer("concierge.internal.conversation")

const (
	defaultHardResetAfter      = 24 * time.Hour
	defaultInactivityAfter     = 15 * time.Minute
	defaultCollaboratorTimeout = 5 * time.Second
)

// Media references a file attached to an inbound message.
type Media struct {
	URL  string `json:"url"`
	Kind string `json:"kind,omitempty"`
}

// Input is one inbound message as seen by the machine.
type Input struct {
	Raw   string
	Text  string
	Media *Media
	Now   time.Time
}

// Outcome is the result of one step. Delivered means a side channel already
// sent the reply. Failure carries a recovered error for logging and metrics.
type Outcome struct {
	Reply     string
	Delivered bool
	Effects   []Effect
	Failure   error
}

// Machine is the dialogue state machine. It mutates the session it is given
// and never persists anything itself.
type Machine struct {
	loc       *i18n.Localizer
	catalog   Catalog
	bookings  BookingService
	extractor Extractor
	notifier  Notifier
	documents DocumentLinker
	media     MediaSender
	publisher events.Publisher
	archive   archive.Archive
	metrics   Metrics
	logger    *logging.Logger

	hardResetAfter      time.Duration
	inactivityAfter     time.Duration
	collaboratorTimeout time.Duration
}

// MachineOption customizes a Machine.
type MachineOption func(*Machine)

// WithExtractor enables the language model path for free text interests.
func WithExtractor(e Extractor) MachineOption {
	return func(m *Machine) { m.extractor = e }
}

// WithNotifier wires the agent/CRM/email notification sink.
func WithNotifier(n Notifier) MachineOption {
	return func(m *Machine) { m.notifier = n }
}

// WithDocuments wires property document links.
func WithDocuments(d DocumentLinker) MachineOption {
	return func(m *Machine) { m.documents = d }
}

// WithMediaSender lets documents be delivered as attachments.
func WithMediaSender(s MediaSender) MachineOption {
	return func(m *Machine) { m.media = s }
}

// WithEventPublisher publishes appointment.booked events.
func WithEventPublisher(p events.Publisher) MachineOption {
	return func(m *Machine) { m.publisher = p }
}

// WithAppointmentArchive stores an appointment document per booking.
func WithAppointmentArchive(a archive.Archive) MachineOption {
	return func(m *Machine) { m.archive = a }
}

func WithMetrics(metrics Metrics) MachineOption {
	return func(m *Machine) {
		if metrics != nil {
			m.metrics = metrics
		}
	}
}

// WithHardResetAfter sets the silence after which a session restarts at Welcome.
func WithHardResetAfter(d time.Duration) MachineOption {
	return func(m *Machine) {
		if d > 0 {
			m.hardResetAfter = d
		}
	}
}

// WithInactivityAfter sets the mid-flow idle time that triggers "are you still there".
func WithInactivityAfter(d time.Duration) MachineOption {
	return func(m *Machine) {
		if d > 0 {
			m.inactivityAfter = d
		}
	}
}

// WithCollaboratorTimeout bounds every catalog, booking, extractor and document call.
func WithCollaboratorTimeout(d time.Duration) MachineOption {
	return func(m *Machine) {
		if d > 0 {
			m.collaboratorTimeout = d
		}
	}
}

// NewMachine builds the state machine around its required collaborators.
func NewMachine(loc *i18n.Localizer, catalog Catalog, bookings BookingService, logger *logging.Logger, opts ...MachineOption) *Machine {
	if loc == nil {
		panic("conversation: localizer cannot be nil")
	}
	if catalog == nil {
		panic("conversation: catalog cannot be nil")
	}
	if bookings == nil {
		panic("conversation: booking service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	m := &Machine{
		loc:                 loc,
		catalog:             catalog,
		bookings:            bookings,
		metrics:             nopMetrics{},
		logger:              logger,
		hardResetAfter:      defaultHardResetAfter,
		inactivityAfter:     defaultInactivityAfter,
		collaboratorTimeout: defaultCollaboratorTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Step advances s by one inbound message. The returned error is reserved for
// internal faults such as an illegal transition; user-level failures are
// reported in Outcome.Failure with a localized reply.
func (m *Machine) Step(ctx context.Context, s *session.Session, in Input) (Outcome, error) {
	ctx, span := conversationTracer.Start(ctx, "conversation.step", trace.WithAttributes(
		attribute.String("concierge.user_id", s.UserID),
		attribute.String("concierge.state.from", string(s.State())),
	))
	defer span.End()

	if in.Now.IsZero() {
		in.Now = time.Now().UTC()
	}
	if in.Text == "" {
		in.Text = Normalize(in.Raw)
	}
	from := s.State()

	if !from.Valid() {
		out := m.recoverUnknown(s, in)
		m.observe(from, s.State(), out)
		return out, nil
	}

	if m.hardReset(s, in.Now) {
		m.logger.Info("session hard reset after silence", "user_id", s.UserID, "state", from)
		from = s.State()
	}
	s.LastMessageAt = in.Now

	out, handled := m.applyInactivity(s, in)
	if !handled {
		s.LastActivityAt = in.Now
		out = m.dispatch(ctx, s, in)
	}

	to := s.State()
	if err := validateTransition(from, to); err != nil {
		span.RecordError(err)
		return Outcome{}, err
	}
	span.SetAttributes(attribute.String("concierge.state.to", string(to)))
	m.observe(from, to, out)
	return out, nil
}

func (m *Machine) dispatch(ctx context.Context, s *session.Session, in Input) Outcome {
	if in.Text == "" && in.Media != nil {
		return Outcome{Reply: m.t(s, i18n.KeyMediaReceived, nil)}
	}
	if out, ok := m.handleCommand(s, matchCommand(in.Text)); ok {
		return out
	}

	switch p := s.Phase.(type) {
	case session.LanguageSelection:
		return m.handleLanguageSelection(s, in)
	case session.Welcome:
		return m.handleWelcome(s, in)
	case session.InterestSelection:
		return m.handleInterestSelection(ctx, s, in)
	case session.PropertyMatch:
		return m.handlePropertyMatch(s, p, in)
	case session.ScheduleVisit:
		return m.handleScheduleVisit(s, p, in)
	case session.CollectInfo:
		return m.handleCollectInfo(ctx, s, p, in)
	case session.Completed:
		return m.handleCompleted(ctx, s, p, in)
	case nil:
		s.Phase = session.LanguageSelection{}
		return m.handleLanguageSelection(s, in)
	}
	return m.recoverUnknown(s, in)
}

func (m *Machine) recoverUnknown(s *session.Session, in Input) Outcome {
	raw := string(s.State())
	if u, ok := s.Phase.(session.Unknown); ok && u.Raw != "" {
		raw = u.Raw
	}
	m.logger.Error("unknown session state, resetting", "user_id", s.UserID, "state", raw)
	s.Preferences = session.Preferences{}
	s.Phase = session.LanguageSelection{}
	s.IsInactive = false
	s.LastMessageAt = in.Now
	s.LastActivityAt = in.Now
	prompt := m.t(s, i18n.KeyLanguageMenu, nil)
	return Outcome{
		Reply:   m.t(s, i18n.KeySystemError, i18n.Params{"Prompt": prompt}),
		Failure: &UnknownStateError{State: raw},
	}
}

func (m *Machine) observe(from, to session.State, out Outcome) {
	m.metrics.ObserveTurn(string(from), string(to))
	if out.Failure != nil {
		m.metrics.ObserveError(errorKind(out.Failure))
	}
}

// call runs fn under the collaborator timeout. The wait is bounded even if fn
// ignores its context.
func (m *Machine) call(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, m.collaboratorTimeout)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	status := "ok"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		status = "timeout"
	case err != nil:
		status = "error"
	}
	m.metrics.ObserveCollaborator(name, status, time.Since(start))
	if err != nil {
		m.logger.Warn("collaborator call failed", "collaborator", name, "status", status, "error", err)
		return &CollaboratorError{Collaborator: name, Err: err}
	}
	return nil
}

func (m *Machine) t(s *session.Session, key i18n.Key, params i18n.Params) string {
	return m.loc.T(key, s.Language, params)
}
