package webchat

import (
	"context"
	"errors"

	"github.com/wolfman30/realestate-concierge/internal/conversation"
	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

// ErrNotConnected is returned when the visitor has no open socket.
var ErrNotConnected = errors.New("webchat: session not connected")

// ReplyMessenger implements conversation.ReplyMessenger and
// conversation.MediaSender for web chat by pushing to the visitor's socket.
type ReplyMessenger struct {
	handler *Handler
	logger  *logging.Logger
}

// NewReplyMessenger creates a webchat reply messenger.
func NewReplyMessenger(handler *Handler, logger *logging.Logger) *ReplyMessenger {
	if handler == nil {
		panic("webchat: handler cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ReplyMessenger{handler: handler, logger: logger}
}

var (
	_ conversation.ReplyMessenger = (*ReplyMessenger)(nil)
	_ conversation.MediaSender    = (*ReplyMessenger)(nil)
)

// SendReply pushes the engine response to the visitor's WebSocket. Replies
// for disconnected visitors are dropped; the archive keeps them for history.
func (m *ReplyMessenger) SendReply(ctx context.Context, reply conversation.OutboundReply) error {
	userID := reply.UserID
	if userID == "" {
		userID = reply.To
	}
	if !m.handler.SendToSession(userID, assistantMessage(reply.Body)) {
		m.logger.Info("webchat: visitor offline, reply kept in history", "user_id", userID)
		return nil
	}
	m.logger.Debug("webchat: reply sent", "user_id", userID, "length", len(reply.Body))
	return nil
}

// SendMedia pushes a file link card to the visitor.
func (m *ReplyMessenger) SendMedia(ctx context.Context, userID, caption, mediaURL string) error {
	msg := assistantMessage(caption)
	msg.Type = "media"
	msg.URL = mediaURL
	if !m.handler.SendToSession(userID, msg) {
		return ErrNotConnected
	}
	return nil
}
