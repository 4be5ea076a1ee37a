package conversation

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/realestate-concierge/internal/bookings"
	"github.com/wolfman30/realestate-concierge/internal/catalog"
	"github.com/wolfman30/realestate-concierge/internal/events"
	"github.com/wolfman30/realestate-concierge/internal/i18n"
	"github.com/wolfman30/realestate-concierge/internal/session"
)

func TestStepBookingScenario(t *testing.T) {
	d := newDriver(t, newTestMachine(t))

	out := d.send("Hi")
	assert.Equal(t, session.StateWelcome, d.s.State())
	assert.Contains(t, out.Reply, "Welcome to HomeFinder")

	out = d.send("1")
	assert.Equal(t, session.StateInterestSelection, d.s.State())
	assert.Contains(t, out.Reply, "What are you looking for?")

	out = d.send("1")
	require.Equal(t, session.StatePropertyMatch, d.s.State())
	matches := d.s.MatchedProperties()
	require.Len(t, matches, 3)
	assert.Equal(t, catalog.InterestBuy, d.s.Preferences.Interest)
	assert.Contains(t, out.Reply, "1. Skyline Heights 1BHK, Wakad, Pune (₹48,00,000)")

	out = d.send("1")
	require.Equal(t, session.StateScheduleVisit, d.s.State())
	require.NotNil(t, d.s.SelectedProperty())
	assert.Equal(t, matches[0].ID, d.s.SelectedProperty().ID)
	assert.Contains(t, out.Reply, "1. Schedule a site visit")

	out = d.send("1")
	require.Equal(t, session.StateCollectInfo, d.s.State())
	assert.Equal(t, "Great! Please tell me your full name.", out.Reply)

	out = d.send("asha patil")
	assert.Contains(t, out.Reply, "Thanks Asha Patil!")
	out = d.send("9876543210")
	assert.Contains(t, out.Reply, "When would you like to visit?")
	out = d.send("25/12/2025 11am")
	assert.Contains(t, out.Reply, "Any special requirements?")

	out = d.send("1")
	require.Equal(t, session.StateCompleted, d.s.State())
	id := d.s.AppointmentID()
	require.NotEmpty(t, id)
	assert.Equal(t, []string{id}, d.s.AppointmentHistory)
	assert.Contains(t, out.Reply, "Your site visit is booked!")
	assert.Contains(t, out.Reply, "Booking ID: "+id)
	assert.Contains(t, out.Reply, "Time: 25/12/2025 11am (Thursday)")
	assert.Contains(t, out.Reply, "Requirements: None")

	info := d.s.UserInfo()
	assert.Equal(t, "Asha Patil", info.Name)
	assert.Equal(t, "9876543210", info.Phone)
	assert.Equal(t, "None", info.SpecialRequirements)
}

func TestStepMarathiFlow(t *testing.T) {
	d := newDriver(t, newTestMachine(t))

	d.send("नमस्कार")
	out := d.send("2")
	assert.Equal(t, i18n.Marathi, d.s.Language)
	assert.Contains(t, out.Reply, "तुम्ही काय शोधत आहात?")

	out = d.send("२")
	require.Equal(t, session.StatePropertyMatch, d.s.State())
	assert.Equal(t, catalog.InterestRent, d.s.Preferences.Interest)
	assert.Len(t, d.s.MatchedProperties(), 2)
	assert.Contains(t, out.Reply, "तुमच्यासाठी जुळणाऱ्या मालमत्ता")
	assert.Contains(t, out.Reply, "(₹18,000)")

	out = d.send("पहिला")
	require.Equal(t, session.StateScheduleVisit, d.s.State())
	assert.Contains(t, out.Reply, "ठिकाण: Hinjewadi, Pune")

	out = d.send("होय")
	require.Equal(t, session.StateCollectInfo, d.s.State())
	assert.Equal(t, "छान! कृपया तुमचे पूर्ण नाव सांगा.", out.Reply)
}

func TestRestartIsIdempotent(t *testing.T) {
	d := newDriver(t, newTestMachine(t))
	d.send("hi")
	d.send("1")
	d.send("buy under 90 lakh")
	require.Equal(t, session.StatePropertyMatch, d.s.State())
	require.NotZero(t, d.s.Preferences)

	first := d.send("restart")
	assert.Equal(t, session.StateWelcome, d.s.State())
	assert.Zero(t, d.s.Preferences)
	snapshot := *d.s

	second := d.send("restart")
	assert.Equal(t, first.Reply, second.Reply)
	assert.Equal(t, session.StateWelcome, d.s.State())
	assert.Equal(t, snapshot.Preferences, d.s.Preferences)
	assert.Equal(t, snapshot.Phase, d.s.Phase)
	assert.Equal(t, snapshot.Language, d.s.Language)
}

func TestPropertyIndexOutOfRangeReprompts(t *testing.T) {
	d := newDriver(t, newTestMachine(t))
	d.send("hi")
	d.send("1")
	d.send("1")
	require.Len(t, d.s.MatchedProperties(), 3)

	for _, input := range []string{"0", "4", "99", "tenth", "maybe"} {
		out := d.send(input)
		assert.Equal(t, session.StatePropertyMatch, d.s.State(), "input %q", input)
		assert.True(t, strings.HasPrefix(out.Reply, "Sorry, I didn't understand that."), "input %q", input)
		var verr *ValidationError
		assert.ErrorAs(t, out.Failure, &verr, "input %q", input)
	}

	d.send("option 3")
	require.Equal(t, session.StateScheduleVisit, d.s.State())
	assert.Equal(t, d.s.MatchedProperties()[2].ID, d.s.SelectedProperty().ID)
}

func TestScheduleVisitBackKeepsMatches(t *testing.T) {
	d := newDriver(t, newTestMachine(t))
	d.send("hi")
	d.send("1")
	d.send("1")
	before := d.s.MatchedProperties()
	d.send("second")
	require.Equal(t, session.StateScheduleVisit, d.s.State())

	out := d.send("2")
	assert.Equal(t, session.StatePropertyMatch, d.s.State())
	assert.Equal(t, before, d.s.MatchedProperties())
	assert.Contains(t, out.Reply, "Here are the properties that match")

	out = d.send("schedule please")
	assert.Equal(t, session.StatePropertyMatch, d.s.State())
	assert.NotNil(t, out.Failure)
}

func TestEmptyMatchesStayInPropertyMatch(t *testing.T) {
	d := newDriver(t, newTestMachine(t))
	d.send("hi")
	d.send("1")

	out := d.send("plot under 10 lakh")
	require.Equal(t, session.StatePropertyMatch, d.s.State())
	assert.Empty(t, d.s.MatchedProperties())
	assert.Equal(t, int64(1000000), d.s.Preferences.MaxBudget)
	assert.Contains(t, out.Reply, "no properties match")

	out = d.send("1")
	assert.Equal(t, session.StatePropertyMatch, d.s.State())
	assert.Contains(t, out.Reply, "no properties match")

	d.send("new search")
	assert.Equal(t, session.StateWelcome, d.s.State())
}

func TestInterestKeywordsAndBudget(t *testing.T) {
	d := newDriver(t, newTestMachine(t))
	d.send("hi")
	d.send("1")

	d.send("I want to buy, budget 90 lakh")
	require.Equal(t, session.StatePropertyMatch, d.s.State())
	assert.Equal(t, catalog.InterestBuy, d.s.Preferences.Interest)
	assert.Equal(t, int64(9000000), d.s.Preferences.MaxBudget)
	assert.Len(t, d.s.MatchedProperties(), 2)
}

func TestAmbiguousInterestNeverGuesses(t *testing.T) {
	d := newDriver(t, newTestMachine(t))
	d.send("hi")
	d.send("1")

	for _, input := range []string{"buy or rent", "7", "something nice"} {
		out := d.send(input)
		assert.Equal(t, session.StateInterestSelection, d.s.State(), "input %q", input)
		assert.Contains(t, out.Reply, "What are you looking for?")
	}
}

func TestInterestFromExtractor(t *testing.T) {
	extractor := &stubExtractor{values: map[string]string{
		ExtractInterest: "commercial",
		ExtractLocation: "Kharadi",
	}}
	d := newDriver(t, newTestMachine(t, WithExtractor(extractor)))
	d.send("hi")
	d.send("1")

	d.send("need a workspace for my startup team")
	require.Equal(t, session.StatePropertyMatch, d.s.State())
	assert.Equal(t, catalog.InterestCommercial, d.s.Preferences.Interest)
	assert.Equal(t, "Kharadi", d.s.Preferences.Location)
	require.Len(t, d.s.MatchedProperties(), 1)
	assert.Equal(t, "pune-kharadi-office", d.s.MatchedProperties()[0].ID)
	assert.Equal(t, []string{ExtractInterest, ExtractLocation, ExtractBudget}, extractor.calls)
}

func TestInterestExtractorUnclearReprompts(t *testing.T) {
	extractor := &stubExtractor{values: map[string]string{}}
	d := newDriver(t, newTestMachine(t, WithExtractor(extractor)))
	d.send("hi")
	d.send("1")

	out := d.send("hmm not sure yet")
	assert.Equal(t, session.StateInterestSelection, d.s.State())
	var verr *ValidationError
	assert.ErrorAs(t, out.Failure, &verr)
}

func TestCatalogFailureIsLocalized(t *testing.T) {
	m := NewMachine(i18n.NewLocalizer(""), failingCatalog{},
		bookings.NewService(bookings.NewMemoryRepository(), testLogger()), testLogger())
	d := newDriver(t, m)
	d.send("hi")
	d.send("1")

	out := d.send("1")
	assert.Equal(t, session.StateInterestSelection, d.s.State())
	assert.Contains(t, out.Reply, "couldn't search properties")
	var cerr *CollaboratorError
	require.ErrorAs(t, out.Failure, &cerr)
	assert.Equal(t, "catalog", cerr.Collaborator)
}

func TestCollaboratorTimeoutIsBounded(t *testing.T) {
	stuck := stuckCatalog{release: make(chan struct{})}
	t.Cleanup(func() { close(stuck.release) })
	metrics := &recordingMetrics{}
	m := NewMachine(i18n.NewLocalizer(""), stuck,
		bookings.NewService(bookings.NewMemoryRepository(), testLogger()), testLogger(),
		WithCollaboratorTimeout(20*time.Millisecond), WithMetrics(metrics))
	d := newDriver(t, m)
	d.send("hi")
	d.send("1")

	start := time.Now()
	out := d.send("1")
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, session.StateInterestSelection, d.s.State())
	assert.True(t, errors.Is(out.Failure, context.DeadlineExceeded))
	assert.Contains(t, metrics.collaborators, "catalog:timeout")
	assert.Contains(t, metrics.errors, "collaborator")
}

func TestHelpDoesNotMutateState(t *testing.T) {
	d := newDriver(t, newTestMachine(t))
	d.send("hi")
	d.send("1")
	d.send("1")
	d.send("1")
	require.Equal(t, session.StateScheduleVisit, d.s.State())
	before := d.s.Phase

	out := d.send("Help?")
	assert.Equal(t, "Reply 1 to schedule a visit or 2 to go back to the list.", out.Reply)
	assert.Equal(t, before, d.s.Phase)
}

func TestChangeLanguageReentersSelection(t *testing.T) {
	d := newDriver(t, newTestMachine(t))
	d.send("hi")
	d.send("1")
	d.send("1")

	out := d.send("change language")
	assert.Equal(t, session.StateLanguageSelection, d.s.State())
	assert.Zero(t, d.s.Preferences)
	assert.Contains(t, out.Reply, "1. English")

	out = d.send("मराठी")
	assert.Equal(t, session.StateWelcome, d.s.State())
	assert.Equal(t, i18n.Marathi, d.s.Language)
	assert.Contains(t, out.Reply, "मध्ये आपले स्वागत आहे")
}

func TestLanguageSelectionRejectsUnknownInput(t *testing.T) {
	d := newDriver(t, newTestMachine(t))
	out := d.send("3")
	assert.Equal(t, session.StateLanguageSelection, d.s.State())
	assert.Contains(t, out.Reply, "Sorry, I didn't understand that.")
	assert.Contains(t, out.Reply, "2. मराठी (Marathi)")
}

func TestMediaOnlyMessageIsAcknowledged(t *testing.T) {
	d := newDriver(t, newTestMachine(t))
	d.send("hi")
	d.send("1")
	before := d.s.Phase

	d.now = d.now.Add(time.Minute)
	out, err := d.m.Step(context.Background(), d.s, Input{Media: &Media{URL: "https://cdn.example.com/a.jpg", Kind: "image/jpeg"}, Now: d.now})
	require.NoError(t, err)
	assert.Contains(t, out.Reply, "we received your file")
	assert.Equal(t, before, d.s.Phase)
}

func TestUnknownStateRecoversToLanguageSelection(t *testing.T) {
	metrics := &recordingMetrics{}
	d := newDriver(t, newTestMachine(t, WithMetrics(metrics)))
	d.s.Phase = session.Unknown{Raw: "Negotiating"}
	d.s.Preferences.Interest = catalog.InterestBuy

	out := d.send("1")
	assert.Equal(t, session.StateLanguageSelection, d.s.State())
	assert.Zero(t, d.s.Preferences)
	assert.Contains(t, out.Reply, "Sorry, something went wrong")
	assert.Contains(t, out.Reply, "1. English")
	var uerr *UnknownStateError
	require.ErrorAs(t, out.Failure, &uerr)
	assert.Equal(t, "Negotiating", uerr.State)
	assert.Contains(t, metrics.errors, "unknown_state")

	d.send("1")
	assert.Equal(t, session.StateWelcome, d.s.State())
}

func TestBookingEffects(t *testing.T) {
	notifier := &recordingNotifier{}
	publisher := &recordingPublisher{}
	arch := &recordingArchive{}
	d := newDriver(t, newTestMachine(t,
		WithNotifier(notifier), WithEventPublisher(publisher), WithAppointmentArchive(arch)))

	out := d.toCompleted()
	id := d.s.AppointmentID()

	var names []string
	for _, e := range out.Effects {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"notify_agent_sms", "notify_crm", "notify_email", "publish_event", "archive_appointment"}, names)
	runEffects(t, out.Effects)

	sent := notifier.all()
	require.Len(t, sent, 3)
	assert.Equal(t, ChannelAgentSMS, sent[0].channel)
	assert.Contains(t, sent[0].text, "New site visit "+id)
	assert.Contains(t, sent[0].text, "Asha Patil (9876543210)")
	assert.Contains(t, sent[1].text, "booking="+id)
	assert.Contains(t, sent[2].text, "Preferred time: 25/12/2025 11am (Thursday)")

	require.Len(t, publisher.envelopes, 1)
	env := publisher.envelopes[0]
	assert.Equal(t, events.TypeAppointmentBooked, env.Meta.Type)
	assert.Equal(t, id, env.Meta.CorrelationID)
	var payload events.AppointmentBookedV1
	require.NoError(t, env.Decode(&payload))
	assert.Equal(t, "pune-wakad-1bhk", payload.PropertyID)
	assert.Equal(t, "user-1", payload.UserID)

	require.Len(t, arch.appointments, 1)
	assert.Equal(t, id, arch.appointments[0].AppointmentID)
	assert.Equal(t, int64(4800000), arch.appointments[0].Price)
}

func TestBookingFailureKeepsSlotsAndRetries(t *testing.T) {
	flaky := &flakyBookings{Service: bookings.NewService(bookings.NewMemoryRepository(), testLogger()), fail: true}
	m := NewMachine(i18n.NewLocalizer(""), catalog.NewStaticCatalog(catalog.DemoListings()), flaky, testLogger())
	d := newDriver(t, m)
	d.toCollect()
	d.send("Asha Patil")
	d.send("9876543210")
	d.send("tomorrow 5pm")

	out := d.send("2")
	require.Equal(t, session.StateCollectInfo, d.s.State())
	assert.Contains(t, out.Reply, "couldn't book your visit")
	assert.Empty(t, out.Effects)
	var cerr *CollaboratorError
	require.ErrorAs(t, out.Failure, &cerr)
	assert.Equal(t, "Parking", d.s.UserInfo().SpecialRequirements)

	flaky.fail = false
	out = d.send("retry")
	require.Equal(t, session.StateCompleted, d.s.State())
	assert.Contains(t, out.Reply, "Requirements: Parking")
}

func TestCheckPreconditions(t *testing.T) {
	valid := session.CollectInfo{
		Property: catalog.Property{ID: "p1"},
		Slots:    session.UserInfo{Name: "Asha", Phone: "9876543210", PreferredTime: "today"},
	}
	assert.NoError(t, checkPreconditions(valid))

	cases := map[string]func(*session.CollectInfo){
		"property": func(p *session.CollectInfo) { p.Property.ID = "" },
		SlotName:   func(p *session.CollectInfo) { p.Slots.Name = " " },
		SlotPhone:  func(p *session.CollectInfo) { p.Slots.Phone = "12345" },
		SlotTime:   func(p *session.CollectInfo) { p.Slots.PreferredTime = "" },
	}
	for field, mutate := range cases {
		p := valid
		mutate(&p)
		var perr *PreconditionError
		require.ErrorAs(t, checkPreconditions(p), &perr, field)
		assert.Equal(t, field, perr.Field)
	}
}

func TestTransitionTable(t *testing.T) {
	for _, state := range session.States {
		assert.True(t, CanTransition(state, state), "%s should allow staying", state)
		assert.True(t, CanTransition(state, session.StateLanguageSelection) || state == session.StateLanguageSelection)
	}
	assert.False(t, CanTransition(session.StateLanguageSelection, session.StateCompleted))
	assert.False(t, CanTransition(session.StateWelcome, session.StateCollectInfo))
	assert.False(t, CanTransition(session.StateUnknown, session.StateWelcome))
}

// Random input never leaves the state enum or takes an edge outside the table.
func TestRandomInputFollowsTransitionTable(t *testing.T) {
	vocabulary := []string{
		"hi", "1", "2", "3", "4", "5", "0", "9", "help", "end", "restart", "change language",
		"buy", "rent in aundh", "back", "yes", "second", "Asha Patil", "9876543210", "12345",
		"25/12/2025 10am", "other", "need lift", "मराठी", "२", "नमस्कार", "", "x",
	}
	rng := rand.New(rand.NewSource(42))
	m := newTestMachine(t, WithDocuments(stubLinker{}))

	for run := 0; run < 30; run++ {
		s := session.New("user-rand", t0)
		now := t0
		for step := 0; step < 60; step++ {
			now = now.Add(time.Duration(rng.Intn(20)) * time.Minute)
			from := s.State()
			msg := vocabulary[rng.Intn(len(vocabulary))]
			_, err := m.Step(context.Background(), s, Input{Raw: msg, Now: now})
			require.NoError(t, err, "run %d step %d %q from %s", run, step, msg, from)
			to := s.State()
			require.True(t, to.Valid(), "invalid state %s", to)

			info := s.UserInfo()
			if info.Phone != "" {
				require.NotEmpty(t, info.Name)
			}
			if info.SpecialRequirements != "" {
				require.NotEmpty(t, info.PreferredTime)
			}
		}
	}
}
