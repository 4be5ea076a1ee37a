package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/realestate-concierge/internal/archive"
	"github.com/wolfman30/realestate-concierge/internal/bookings"
	"github.com/wolfman30/realestate-concierge/internal/observability/metrics"
	"github.com/wolfman30/realestate-concierge/internal/session"
	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

const (
	defaultTurnsLimit = 50
	maxTurnsLimit     = 200
	statsWindow       = 24 * time.Hour
)

type sessionReader interface {
	Get(ctx context.Context, userID string) (*session.Session, error)
}

type turnLister interface {
	ListTurns(ctx context.Context, userID string, limit int) ([]archive.TurnRecord, error)
}

type appointmentReader interface {
	GetAppointment(ctx context.Context, appointmentID string) (*archive.AppointmentRecord, error)
}

type bookingReader interface {
	GetBooking(ctx context.Context, id string) (*bookings.Booking, error)
}

// AdminConciergeHandler serves the operator API for inspecting
// conversations and bookings.
type AdminConciergeHandler struct {
	sessions     sessionReader
	bookings     bookingReader
	turns        turnLister
	appointments appointmentReader
	db           *sql.DB
	gatherer     prometheus.Gatherer
	logger       *logging.Logger
	now          func() time.Time
}

// AdminOption configures optional data sources. Endpoints whose source is
// missing answer 503.
type AdminOption func(*AdminConciergeHandler)

// WithTurnHistory enables the turns endpoint.
func WithTurnHistory(t turnLister) AdminOption {
	return func(h *AdminConciergeHandler) { h.turns = t }
}

// WithAppointments enables the appointment document endpoint.
func WithAppointments(a appointmentReader) AdminOption {
	return func(h *AdminConciergeHandler) { h.appointments = a }
}

// WithStatsDB adds booking and traffic counts to /admin/stats.
func WithStatsDB(db *sql.DB) AdminOption {
	return func(h *AdminConciergeHandler) { h.db = db }
}

// WithGatherer adds collaborator latency snapshots to /admin/stats.
func WithGatherer(g prometheus.Gatherer) AdminOption {
	return func(h *AdminConciergeHandler) { h.gatherer = g }
}

// NewAdminConciergeHandler creates the admin handler.
func NewAdminConciergeHandler(sessions sessionReader, bookingSvc bookingReader, logger *logging.Logger, opts ...AdminOption) *AdminConciergeHandler {
	if sessions == nil {
		panic("handlers: session reader cannot be nil")
	}
	if bookingSvc == nil {
		panic("handlers: booking reader cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	h := &AdminConciergeHandler{
		sessions: sessions,
		bookings: bookingSvc,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// GetSession handles GET /admin/sessions/{userID}.
func (h *AdminConciergeHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user id required")
		return
	}
	sess, err := h.sessions.Get(r.Context(), userID)
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		h.logger.Error("admin: failed to load session", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// TurnsResponse lists archived turns, newest first.
type TurnsResponse struct {
	UserID string               `json:"user_id"`
	Turns  []archive.TurnRecord `json:"turns"`
}

// ListTurns handles GET /admin/sessions/{userID}/turns?limit=N.
func (h *AdminConciergeHandler) ListTurns(w http.ResponseWriter, r *http.Request) {
	if h.turns == nil {
		writeError(w, http.StatusServiceUnavailable, "turn history not configured")
		return
	}
	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user id required")
		return
	}
	limit := defaultTurnsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxTurnsLimit)
	}

	turns, err := h.turns.ListTurns(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error("admin: failed to list turns", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to list turns")
		return
	}
	if turns == nil {
		turns = []archive.TurnRecord{}
	}
	writeJSON(w, http.StatusOK, TurnsResponse{UserID: userID, Turns: turns})
}

// GetBooking handles GET /admin/bookings/{bookingID}.
func (h *AdminConciergeHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "bookingID"))
	b, err := h.bookings.GetBooking(r.Context(), id)
	if errors.Is(err, bookings.ErrNotFound) {
		writeError(w, http.StatusNotFound, "booking not found")
		return
	}
	if err != nil {
		h.logger.Error("admin: failed to load booking", "error", err, "booking_id", id)
		writeError(w, http.StatusInternalServerError, "failed to load booking")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// GetAppointment handles GET /admin/appointments/{appointmentID}.
func (h *AdminConciergeHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	if h.appointments == nil {
		writeError(w, http.StatusServiceUnavailable, "appointment archive not configured")
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "appointmentID"))
	rec, err := h.appointments.GetAppointment(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "appointment not found")
		return
	}
	if err != nil {
		h.logger.Error("admin: failed to load appointment", "error", err, "appointment_id", id)
		writeError(w, http.StatusInternalServerError, "failed to load appointment")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// StatsResponse summarises recent activity.
type StatsResponse struct {
	WindowHours       int                       `json:"window_hours"`
	TotalBookings     *int64                    `json:"total_bookings,omitempty"`
	RecentBookings    *int64                    `json:"recent_bookings,omitempty"`
	ActiveUsers       *int64                    `json:"active_users,omitempty"`
	RecentTurns       *int64                    `json:"recent_turns,omitempty"`
	CollaboratorStats []metrics.LatencySnapshot `json:"collaborator_latency"`
}

// Stats handles GET /admin/stats.
func (h *AdminConciergeHandler) Stats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{
		WindowHours:       int(statsWindow / time.Hour),
		CollaboratorStats: []metrics.LatencySnapshot{},
	}

	if h.db != nil {
		since := h.now().Add(-statsWindow)
		var total, recent, users, turns int64
		err := h.db.QueryRowContext(r.Context(), `
			SELECT
				(SELECT COUNT(*) FROM bookings),
				(SELECT COUNT(*) FROM bookings WHERE created_at >= $1),
				(SELECT COUNT(DISTINCT user_id) FROM conversation_turns WHERE created_at >= $1),
				(SELECT COUNT(*) FROM conversation_turns WHERE created_at >= $1)
		`, since).Scan(&total, &recent, &users, &turns)
		if err != nil {
			h.logger.Error("admin: failed to load stats", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load stats")
			return
		}
		resp.TotalBookings, resp.RecentBookings, resp.ActiveUsers, resp.RecentTurns = &total, &recent, &users, &turns
	}

	if h.gatherer != nil {
		if snaps := metrics.SnapshotCollaborators(h.gatherer); len(snaps) > 0 {
			resp.CollaboratorStats = snaps
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
