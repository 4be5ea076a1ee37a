package conversation

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

// Handler wires HTTP requests to the conversation service.
type Handler struct {
	service Service
	logger  *logging.Logger
}

// NewHandler creates a conversation handler.
func NewHandler(service Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// deliveredResponse is returned when the reply already went out on a media
// channel.
type deliveredResponse struct {
	UserID    string `json:"user_id"`
	Delivered bool   `json:"delivered"`
}

// Message handles POST /conversations/message.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	var req InboundMessage
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode message request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	resp, err := h.service.HandleInboundMessage(r.Context(), req)
	if err != nil {
		h.logger.Error("failed to process message", "error", err, "user_id", req.UserID)
		http.Error(w, "Failed to process message", http.StatusInternalServerError)
		return
	}
	if resp == nil {
		h.writeJSON(w, http.StatusOK, deliveredResponse{UserID: req.UserID, Delivered: true})
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
