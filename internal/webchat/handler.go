package webchat

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/wolfman30/realestate-concierge/internal/archive"
	"github.com/wolfman30/realestate-concierge/internal/conversation"
	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

// Channel is the job channel used for web chat messages.
const Channel = "webchat"

const (
	userIDPrefix      = "web:"
	historyLimit      = 50
	enqueueTimeout    = 3 * time.Second
	genericErrMessage = "Sorry, something went wrong. Please try again."
)

// Publisher enqueues conversation jobs.
type Publisher interface {
	Enqueue(ctx context.Context, job conversation.Job) (string, error)
}

// HistoryStore reads archived turns for a user.
type HistoryStore interface {
	ListTurns(ctx context.Context, userID string, limit int) ([]archive.TurnRecord, error)
}

// Handler manages web chat connections and messages. Without a publisher
// messages run through the engine inline and the reply is pushed straight
// back; with one the worker delivers it through ReplyMessenger.
type Handler struct {
	service   conversation.Service
	publisher Publisher
	history   HistoryStore
	logger    *logging.Logger

	mu       sync.RWMutex
	sessions map[string]*wsConn // userID -> active connection
}

type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) send(msg OutboundMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return websocket.JSON.Send(c.conn, msg)
}

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type      string `json:"type"` // "message", "ping"
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type      string           `json:"type"` // "message", "media", "typing", "history", "session", "error", "pong"
	Text      string           `json:"text,omitempty"`
	URL       string           `json:"url,omitempty"`
	Role      string           `json:"role,omitempty"` // "assistant" or "user"
	SessionID string           `json:"session_id,omitempty"`
	Timestamp string           `json:"timestamp,omitempty"`
	Messages  []HistoryMessage `json:"messages,omitempty"`
}

// HistoryMessage is a simplified message for history responses.
type HistoryMessage struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// Option configures a Handler.
type Option func(*Handler)

// WithPublisher queues messages for the worker pool.
func WithPublisher(p Publisher) Option {
	return func(h *Handler) {
		h.publisher = p
	}
}

// WithHistory replays archived turns when a session reconnects.
func WithHistory(store HistoryStore) Option {
	return func(h *Handler) {
		h.history = store
	}
}

// NewHandler creates a web chat handler.
func NewHandler(service conversation.Service, logger *logging.Logger, opts ...Option) *Handler {
	if service == nil {
		panic("webchat: conversation service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	h := &Handler{
		service:  service,
		logger:   logger,
		sessions: make(map[string]*wsConn),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// UserID builds the conversation key for a web chat session.
func UserID(sessionID string) string {
	return userIDPrefix + sessionID
}

// generateSessionID creates a random session identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// HandleWebSocket upgrades to WebSocket and handles real-time messaging.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session"))
	if sessionID == "" {
		sessionID = generateSessionID()
	}
	userID := UserID(sessionID)

	wsc := &wsConn{conn: conn}
	_ = wsc.send(OutboundMessage{Type: "session", SessionID: sessionID})

	if history := h.loadHistory(r.Context(), userID, historyLimit); len(history) > 0 {
		_ = wsc.send(OutboundMessage{Type: "history", Messages: history})
	}

	h.mu.Lock()
	h.sessions[userID] = wsc
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		if h.sessions[userID] == wsc {
			delete(h.sessions, userID)
		}
		h.mu.Unlock()
	}()

	h.logger.Info("webchat: connection opened", "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", sessionID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = wsc.send(OutboundMessage{Type: "pong"})
			continue
		}
		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		if reply, ok := h.processMessage(r.Context(), userID, msg.Text); ok && reply != "" {
			h.SendToSession(userID, assistantMessage(reply))
		}
	}
}

// processMessage runs or queues one message. It returns the reply when the
// engine ran inline and false when the message could not be handled.
func (h *Handler) processMessage(ctx context.Context, userID, text string) (string, bool) {
	h.SendToSession(userID, OutboundMessage{Type: "typing"})

	msg := conversation.InboundMessage{UserID: userID, Text: text}
	if h.publisher != nil {
		enqueueCtx, cancel := context.WithTimeout(ctx, enqueueTimeout)
		defer cancel()
		if _, err := h.publisher.Enqueue(enqueueCtx, conversation.Job{Channel: Channel, Message: msg, ReplyTo: userID}); err != nil {
			h.logger.Error("webchat: failed to enqueue message", "error", err, "user_id", userID)
			h.SendToSession(userID, OutboundMessage{Type: "error", Text: genericErrMessage})
			return "", false
		}
		return "", true
	}

	resp, err := h.service.HandleInboundMessage(ctx, msg)
	if err != nil {
		h.logger.Error("webchat: failed to handle message", "error", err, "user_id", userID)
		h.SendToSession(userID, OutboundMessage{Type: "error", Text: genericErrMessage})
		return "", false
	}
	if resp == nil {
		return "", true
	}
	return resp.Message, true
}

// SendToSession sends a message to an active WebSocket session. It reports
// whether the session was connected.
func (h *Handler) SendToSession(userID string, msg OutboundMessage) bool {
	h.mu.RLock()
	wsc, ok := h.sessions[userID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	if err := wsc.send(msg); err != nil {
		h.logger.Debug("webchat: send failed", "user_id", userID, "error", err)
		return false
	}
	return true
}

// HandleMessage is the HTTP fallback for sending messages.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Text      string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = generateSessionID()
	}

	reply, ok := h.processMessage(r.Context(), UserID(req.SessionID), req.Text)
	if !ok {
		http.Error(w, genericErrMessage, http.StatusInternalServerError)
		return
	}

	out := map[string]string{"session_id": req.SessionID, "status": "queued"}
	if h.publisher == nil {
		out["status"] = "replied"
		out["reply"] = reply
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// HandleHistory returns chat history for a session.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	history := []HistoryMessage{}
	if h.history != nil {
		turns, err := h.history.ListTurns(r.Context(), UserID(sessionID), 100)
		if err != nil {
			h.logger.Error("webchat: failed to load history", "error", err)
			http.Error(w, "failed to load history", http.StatusInternalServerError)
			return
		}
		history = turnsToHistory(turns)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"messages": history})
}

func (h *Handler) loadHistory(ctx context.Context, userID string, limit int) []HistoryMessage {
	if h.history == nil {
		return nil
	}
	turns, err := h.history.ListTurns(ctx, userID, limit)
	if err != nil {
		h.logger.Warn("webchat: failed to load history", "error", err, "user_id", userID)
		return nil
	}
	return turnsToHistory(turns)
}

// turnsToHistory flattens newest-first turns into an oldest-first chat log.
func turnsToHistory(turns []archive.TurnRecord) []HistoryMessage {
	history := make([]HistoryMessage, 0, len(turns)*2)
	for i := len(turns) - 1; i >= 0; i-- {
		t := turns[i]
		ts := t.At.UTC().Format(time.RFC3339)
		if t.Inbound != "" {
			history = append(history, HistoryMessage{Role: "user", Text: t.Inbound, Timestamp: ts})
		}
		if t.Reply != "" {
			history = append(history, HistoryMessage{Role: "assistant", Text: t.Reply, Timestamp: ts})
		}
	}
	return history
}

func assistantMessage(text string) OutboundMessage {
	return OutboundMessage{
		Type:      "message",
		Role:      "assistant",
		Text:      text,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
