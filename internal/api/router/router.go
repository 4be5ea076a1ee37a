package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/realestate-concierge/internal/conversation"
	"github.com/wolfman30/realestate-concierge/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/realestate-concierge/internal/http/middleware"
	"github.com/wolfman30/realestate-concierge/internal/messaging"
	"github.com/wolfman30/realestate-concierge/internal/webchat"
	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

// Config holds router configuration. Nil handlers leave their routes
// unmounted.
type Config struct {
	Logger              *logging.Logger
	MessagingHandler    *messaging.Handler
	ConversationHandler *conversation.Handler
	WebChatHandler      *webchat.Handler
	AdminHandler        *handlers.AdminConciergeHandler
	AdminAuthSecret     string
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string

	// PublicRateLimit throttles unauthenticated chat and webhook traffic.
	PublicRateLimit *httpmiddleware.RateLimiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Public endpoints (webhooks, chat widget)
	r.Group(func(public chi.Router) {
		if cfg.PublicRateLimit != nil {
			public.Use(httpmiddleware.RateLimit(cfg.PublicRateLimit))
		}
		if cfg.MessagingHandler != nil {
			public.Post("/messaging/twilio/webhook", cfg.MessagingHandler.TwilioWebhook)
		}
		if cfg.WebChatHandler != nil {
			public.Route("/chat", func(chat chi.Router) {
				if len(cfg.CORSAllowedOrigins) > 0 {
					chat.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
				}
				chat.Get("/ws", cfg.WebChatHandler.HandleWebSocket)
				chat.Post("/message", cfg.WebChatHandler.HandleMessage)
				chat.Get("/history", cfg.WebChatHandler.HandleHistory)
			})
		}
	})

	if cfg.ConversationHandler != nil {
		r.Group(func(api chi.Router) {
			api.Use(middleware.Compress(5))
			api.Post("/conversations/message", cfg.ConversationHandler.Message)
		})
	}

	if cfg.AdminHandler != nil && cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Use(middleware.Compress(5))
			admin.Get("/sessions/{userID}", cfg.AdminHandler.GetSession)
			admin.Get("/sessions/{userID}/turns", cfg.AdminHandler.ListTurns)
			admin.Get("/bookings/{bookingID}", cfg.AdminHandler.GetBooking)
			admin.Get("/appointments/{appointmentID}", cfg.AdminHandler.GetAppointment)
			admin.Get("/stats", cfg.AdminHandler.Stats)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
