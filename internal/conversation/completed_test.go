package conversation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/realestate-concierge/internal/documents"
	"github.com/wolfman30/realestate-concierge/internal/session"
)

func completedPhase(t *testing.T, s *session.Session) session.Completed {
	t.Helper()
	p, ok := s.Phase.(session.Completed)
	require.True(t, ok, "expected Completed, got %T", s.Phase)
	return p
}

func TestCompletedShowsAppointmentDetails(t *testing.T) {
	d := newDriver(t, newTestMachine(t, WithDocuments(stubLinker{})))
	d.toCompleted()
	id := d.s.AppointmentID()

	out := d.send("1")
	assert.True(t, completedPhase(t, d.s).ViewingDetails)
	assert.Contains(t, out.Reply, "Appointment "+id)
	assert.Contains(t, out.Reply, "Status: requested")
	assert.Contains(t, out.Reply, "0. Back")

	out = d.send("0")
	p := completedPhase(t, d.s)
	assert.False(t, p.ViewingDetails)
	assert.False(t, p.DocumentSelection)
	assert.Contains(t, out.Reply, "What would you like to do next?")

	d.send("1")
	out = d.send("1")
	p = completedPhase(t, d.s)
	assert.False(t, p.ViewingDetails)
	assert.True(t, p.DocumentSelection)
	assert.Contains(t, out.Reply, "Which document would you like?")
}

func TestCompletedDocumentLink(t *testing.T) {
	d := newDriver(t, newTestMachine(t, WithDocuments(stubLinker{})))
	d.toCompleted()

	d.send("2")
	require.True(t, completedPhase(t, d.s).DocumentSelection)

	out := d.send("2")
	assert.Contains(t, out.Reply, "Floor plan for Skyline Heights 1BHK: https://docs.example.com/pune-wakad-1bhk/floor_plan.pdf")
	assert.True(t, completedPhase(t, d.s).DocumentSelection)

	out = d.send("7")
	assert.Contains(t, out.Reply, "Sorry, I didn't understand that.")

	d.send("back")
	assert.False(t, completedPhase(t, d.s).DocumentSelection)
}

func TestCompletedDocumentAsMedia(t *testing.T) {
	media := &stubMediaSender{}
	d := newDriver(t, newTestMachine(t, WithDocuments(stubLinker{}), WithMediaSender(media)))
	d.toCompleted()
	d.send("2")

	out := d.send("1")
	assert.True(t, out.Delivered)
	assert.Empty(t, out.Reply)
	require.Len(t, media.urls, 1)
	assert.Equal(t, "https://docs.example.com/pune-wakad-1bhk/brochure.pdf", media.urls[0])
	assert.Contains(t, media.captions[0], "Brochure for Skyline Heights 1BHK")
}

func TestCompletedDocumentMediaFailureFallsBackToLink(t *testing.T) {
	media := &stubMediaSender{err: errors.New("provider down")}
	d := newDriver(t, newTestMachine(t, WithDocuments(stubLinker{}), WithMediaSender(media)))
	d.toCompleted()
	d.send("2")

	out := d.send("3")
	assert.False(t, out.Delivered)
	assert.Contains(t, out.Reply, "price_sheet.pdf")
}

func TestCompletedDocumentUnavailable(t *testing.T) {
	d := newDriver(t, newTestMachine(t, WithDocuments(stubLinker{err: documents.ErrUnavailable})))
	d.toCompleted()
	d.send("2")

	out := d.send("1")
	assert.Contains(t, out.Reply, "that document isn't available")
	assert.ErrorIs(t, out.Failure, documents.ErrUnavailable)
}

func TestCompletedEndAndNewSearch(t *testing.T) {
	d := newDriver(t, newTestMachine(t))
	d.toCompleted()
	id := d.s.AppointmentID()

	out := d.send("4")
	assert.Contains(t, out.Reply, "Thank you for chatting with HomeFinder")
	assert.Equal(t, session.StateCompleted, d.s.State())

	d.send("2")
	out = d.send("end")
	assert.Contains(t, out.Reply, "Thank you for chatting")
	p := completedPhase(t, d.s)
	assert.False(t, p.DocumentSelection)
	assert.Equal(t, id, p.AppointmentID)

	out = d.send("3")
	assert.Equal(t, session.StateWelcome, d.s.State())
	assert.Equal(t, []string{id}, d.s.AppointmentHistory)
	assert.Contains(t, out.Reply, "Welcome to HomeFinder")
}

func TestCompletedMenuAcceptsKeywords(t *testing.T) {
	d := newDriver(t, newTestMachine(t, WithDocuments(stubLinker{})))
	d.toCompleted()

	out := d.send("details")
	assert.True(t, completedPhase(t, d.s).ViewingDetails)
	assert.Contains(t, out.Reply, "Status: requested")

	out = d.send("documents")
	p := completedPhase(t, d.s)
	assert.False(t, p.ViewingDetails)
	assert.True(t, p.DocumentSelection)
	assert.Contains(t, out.Reply, "Which document would you like?")

	out = d.send("Floor plan please")
	assert.Contains(t, out.Reply, "floor_plan.pdf")

	out = d.send("किंमत यादी")
	assert.Contains(t, out.Reply, "price_sheet.pdf")

	d.send("back")
	out = d.send("कागदपत्रे")
	assert.True(t, completedPhase(t, d.s).DocumentSelection)
	assert.Contains(t, out.Reply, "Which document would you like?")

	d.send("back")
	out = d.send("तपशील")
	assert.True(t, completedPhase(t, d.s).ViewingDetails)
	assert.Contains(t, out.Reply, "Status: requested")
}

func TestCompletedMenuDocumentByName(t *testing.T) {
	d := newDriver(t, newTestMachine(t, WithDocuments(stubLinker{})))
	d.toCompleted()

	out := d.send("brochure")
	assert.Contains(t, out.Reply, "brochure.pdf")
	assert.True(t, completedPhase(t, d.s).DocumentSelection)

	d.send("back")
	out = d.send("ब्रोशर")
	assert.Contains(t, out.Reply, "brochure.pdf")
}

func TestCompletedMenuRejectsAmbiguousKeywords(t *testing.T) {
	d := newDriver(t, newTestMachine(t, WithDocuments(stubLinker{})))
	d.toCompleted()

	out := d.send("details or documents")
	p := completedPhase(t, d.s)
	assert.False(t, p.ViewingDetails)
	assert.False(t, p.DocumentSelection)
	assert.Contains(t, out.Reply, "What would you like to do next?")
}
