package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

var bookingsTracer = otel.Tracer("concierge.internal.bookings")

// Service creates and reads site visit bookings.
type Service struct {
	store  Store
	logger *logging.Logger
	now    func() time.Time
}

// NewService constructs a bookings service.
func NewService(store Store, logger *logging.Logger) *Service {
	if store == nil {
		panic("bookings: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// CreateBooking persists a requested visit and returns its id.
func (s *Service) CreateBooking(ctx context.Context, req Request) (string, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.create")
	defer span.End()
	span.SetAttributes(attribute.String("concierge.property_id", req.PropertyID))

	if err := req.Validate(); err != nil {
		span.RecordError(err)
		return "", err
	}
	b := Booking{
		ID:            uuid.NewString(),
		UserID:        req.UserID,
		PropertyID:    req.PropertyID,
		PropertyTitle: req.PropertyTitle,
		Name:          req.Name,
		Phone:         req.Phone,
		TimeText:      req.TimeText,
		Notes:         req.Notes,
		Language:      req.Language,
		Status:        StatusRequested,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.store.Insert(ctx, b); err != nil {
		span.RecordError(err)
		return "", err
	}
	span.SetAttributes(attribute.String("concierge.booking_id", b.ID))
	s.logger.Info("booking created", "booking_id", b.ID, "property_id", b.PropertyID, "user_id", b.UserID)
	return b.ID, nil
}

// GetBooking loads a booking. Malformed ids are reported as ErrNotFound.
func (s *Service) GetBooking(ctx context.Context, id string) (*Booking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.get")
	defer span.End()

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	b, err := s.store.Get(ctx, parsed)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return b, nil
}
