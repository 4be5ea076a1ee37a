package conversation

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/wolfman30/realestate-concierge/internal/archive"
	"github.com/wolfman30/realestate-concierge/internal/bookings"
	"github.com/wolfman30/realestate-concierge/internal/catalog"
	"github.com/wolfman30/realestate-concierge/internal/documents"
	"github.com/wolfman30/realestate-concierge/internal/events"
	"github.com/wolfman30/realestate-concierge/internal/i18n"
	"github.com/wolfman30/realestate-concierge/internal/session"
	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

var t0 = time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)

func testLogger() *logging.Logger {
	return logging.NewWithWriter(io.Discard, "error")
}

func newTestMachine(t *testing.T, opts ...MachineOption) *Machine {
	t.Helper()
	return NewMachine(
		i18n.NewLocalizer("HomeFinder"),
		catalog.NewStaticCatalog(catalog.DemoListings()),
		bookings.NewService(bookings.NewMemoryRepository(), testLogger()),
		testLogger(),
		opts...,
	)
}

// driver feeds messages through a machine one minute apart.
type driver struct {
	t   *testing.T
	m   *Machine
	s   *session.Session
	now time.Time
}

func newDriver(t *testing.T, m *Machine) *driver {
	return &driver{t: t, m: m, s: session.New("user-1", t0), now: t0}
}

func (d *driver) send(raw string) Outcome {
	d.t.Helper()
	d.now = d.now.Add(time.Minute)
	out, err := d.m.Step(context.Background(), d.s, Input{Raw: raw, Now: d.now})
	if err != nil {
		d.t.Fatalf("step %q: unexpected error: %v", raw, err)
	}
	return out
}

func (d *driver) sendAt(raw string, at time.Time) Outcome {
	d.t.Helper()
	d.now = at
	out, err := d.m.Step(context.Background(), d.s, Input{Raw: raw, Now: at})
	if err != nil {
		d.t.Fatalf("step %q: unexpected error: %v", raw, err)
	}
	return out
}

// toCollect drives a fresh session to CollectInfo for the cheapest buy listing.
func (d *driver) toCollect() {
	d.t.Helper()
	for _, msg := range []string{"hi", "1", "1", "1", "1"} {
		d.send(msg)
	}
	if d.s.State() != session.StateCollectInfo {
		d.t.Fatalf("expected CollectInfo, got %s", d.s.State())
	}
}

// toCompleted drives a fresh session through a full booking.
func (d *driver) toCompleted() Outcome {
	d.t.Helper()
	d.toCollect()
	d.send("Asha Patil")
	d.send("9876543210")
	d.send("25/12/2025 11am")
	out := d.send("1")
	if d.s.State() != session.StateCompleted {
		d.t.Fatalf("expected Completed, got %s (reply %q)", d.s.State(), out.Reply)
	}
	return out
}

func runEffects(t *testing.T, effects []Effect) {
	t.Helper()
	for _, e := range effects {
		if err := e.Run(context.Background()); err != nil {
			t.Fatalf("effect %s: %v", e.Name, err)
		}
	}
}

type notification struct {
	channel string
	text    string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, channel, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{channel: channel, text: text})
	return n.err
}

func (n *recordingNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.sent...)
}

type recordingPublisher struct {
	mu        sync.Mutex
	envelopes []events.Envelope
}

func (p *recordingPublisher) Publish(_ context.Context, env events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.envelopes = append(p.envelopes, env)
	return nil
}

type recordingArchive struct {
	mu           sync.Mutex
	turns        []archive.TurnRecord
	appointments []archive.AppointmentRecord
}

func (a *recordingArchive) RecordTurn(_ context.Context, rec archive.TurnRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.turns = append(a.turns, rec)
	return nil
}

func (a *recordingArchive) RecordAppointment(_ context.Context, rec archive.AppointmentRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.appointments = append(a.appointments, rec)
	return nil
}

func (a *recordingArchive) turnCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.turns)
}

type stubExtractor struct {
	values map[string]string
	err    error
	calls  []string
}

func (e *stubExtractor) Extract(_ context.Context, kind, _ string) (string, error) {
	e.calls = append(e.calls, kind)
	if e.err != nil {
		return "", e.err
	}
	if v, ok := e.values[kind]; ok {
		return v, nil
	}
	return Unclear, nil
}

type stubLinker struct {
	err error
}

func (l stubLinker) Link(_ context.Context, propertyID string, kind documents.Kind) (string, error) {
	if l.err != nil {
		return "", l.err
	}
	return "https://docs.example.com/" + propertyID + "/" + string(kind) + ".pdf", nil
}

type stubMediaSender struct {
	err      error
	captions []string
	urls     []string
}

func (m *stubMediaSender) SendMedia(_ context.Context, _ string, caption, mediaURL string) error {
	m.captions = append(m.captions, caption)
	m.urls = append(m.urls, mediaURL)
	return m.err
}

// flakyBookings fails CreateBooking until fail is cleared.
type flakyBookings struct {
	*bookings.Service
	fail bool
}

func (f *flakyBookings) CreateBooking(ctx context.Context, req bookings.Request) (string, error) {
	if f.fail {
		return "", errors.New("bookings unavailable")
	}
	return f.Service.CreateBooking(ctx, req)
}

// stuckCatalog never answers until released.
type stuckCatalog struct {
	release chan struct{}
}

func (c stuckCatalog) FindMatches(context.Context, catalog.Criteria) ([]catalog.Property, error) {
	<-c.release
	return nil, nil
}

type failingCatalog struct{}

func (failingCatalog) FindMatches(context.Context, catalog.Criteria) ([]catalog.Property, error) {
	return nil, errors.New("catalog down")
}

type recordingMetrics struct {
	mu            sync.Mutex
	turns         []string
	errors        []string
	collaborators []string
	effects       []string
}

func (m *recordingMetrics) ObserveTurn(from, to string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, from+">"+to)
}

func (m *recordingMetrics) ObserveError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, kind)
}

func (m *recordingMetrics) ObserveCollaborator(name, status string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collaborators = append(m.collaborators, name+":"+status)
}

func (m *recordingMetrics) ObserveSideEffect(name, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.effects = append(m.effects, name+":"+status)
}
