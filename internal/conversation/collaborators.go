package conversation

import (
	"context"
	"time"

	"github.com/wolfman30/realestate-concierge/internal/bookings"
	"github.com/wolfman30/realestate-concierge/internal/catalog"
	"github.com/wolfman30/realestate-concierge/internal/documents"
)

// Notification channels understood by Notifier implementations.
const (
	ChannelAgentSMS = "agent_sms"
	ChannelEmail    = "email"
	ChannelCRM      = "crm"
)

// Extraction kinds passed to Extractor, and its "nothing found" answer.
const (
	ExtractInterest = "interest"
	ExtractLocation = "location"
	ExtractBudget   = "budget"

	Unclear = "UNCLEAR"
)

// Catalog finds listings for a set of criteria.
type Catalog interface {
	FindMatches(ctx context.Context, criteria catalog.Criteria) ([]catalog.Property, error)
}

// BookingService creates and reads site visit bookings.
type BookingService interface {
	CreateBooking(ctx context.Context, req bookings.Request) (string, error)
	GetBooking(ctx context.Context, id string) (*bookings.Booking, error)
}

// Notifier is a fire-and-forget sink for operator notifications.
type Notifier interface {
	Notify(ctx context.Context, channel, text string) error
}

// Extractor pulls a single field out of free text, returning Unclear when
// the text does not contain it.
type Extractor interface {
	Extract(ctx context.Context, kind, freeText string) (string, error)
}

// DocumentLinker returns a URL for a property document.
type DocumentLinker interface {
	Link(ctx context.Context, propertyID string, kind documents.Kind) (string, error)
}

// MediaSender delivers a file directly to the user over the active channel.
type MediaSender interface {
	SendMedia(ctx context.Context, userID, caption, mediaURL string) error
}

// Metrics receives engine observations. *metrics.ConversationMetrics
// satisfies it.
type Metrics interface {
	ObserveTurn(from, to string)
	ObserveError(kind string)
	ObserveCollaborator(name, status string, d time.Duration)
	ObserveSideEffect(name, status string)
}

type nopMetrics struct{}

func (nopMetrics) ObserveTurn(string, string)                        {}
func (nopMetrics) ObserveError(string)                               {}
func (nopMetrics) ObserveCollaborator(string, string, time.Duration) {}
func (nopMetrics) ObserveSideEffect(string, string)                  {}
