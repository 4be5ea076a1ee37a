package messaging

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/realestate-concierge/internal/conversation"
	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

var twilioTracer = otel.Tracer("concierge.internal.messaging.twilio")

const (
	channelSMS           = "sms"
	processedProviderKey = "twilio"
	enqueueTimeout       = 3 * time.Second
)

type jobPublisher interface {
	Enqueue(ctx context.Context, job conversation.Job) (string, error)
}

type processedStore interface {
	MarkProcessed(ctx context.Context, provider, eventID string) (bool, error)
	Forget(ctx context.Context, provider, eventID string) error
}

type inboundObserver interface {
	ObserveInbound(channel, status string)
	ObserveWebhookLatency(channel string, d time.Duration)
}

// Handler handles Twilio messaging webhooks. Without a publisher the
// engine runs inline and the reply is returned as TwiML; with one the
// message is queued and the worker sends the reply.
type Handler struct {
	service       conversation.Service
	publisher     jobPublisher
	processed     processedStore
	metrics       inboundObserver
	authToken     string
	publicBaseURL string
	logger        *logging.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithSignatureValidation rejects requests without a valid
// X-Twilio-Signature. publicBaseURL overrides the host seen by the server
// when it sits behind a proxy.
func WithSignatureValidation(authToken, publicBaseURL string) HandlerOption {
	return func(h *Handler) {
		h.authToken = authToken
		h.publicBaseURL = publicBaseURL
	}
}

// WithAsyncPublisher queues inbound messages instead of replying inline.
func WithAsyncPublisher(p jobPublisher) HandlerOption {
	return func(h *Handler) {
		h.publisher = p
	}
}

// WithProcessedStore drops webhook retries for a MessageSid already seen.
func WithProcessedStore(s processedStore) HandlerOption {
	return func(h *Handler) {
		h.processed = s
	}
}

// WithInboundMetrics records webhook outcomes and latency.
func WithInboundMetrics(m inboundObserver) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// NewHandler creates a new messaging handler.
func NewHandler(service conversation.Service, logger *logging.Logger, opts ...HandlerOption) *Handler {
	if service == nil {
		panic("messaging: conversation service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	h := &Handler{service: service, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// TwilioWebhook handles POST /messaging/twilio/webhook requests.
func (h *Handler) TwilioWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, span := twilioTracer.Start(r.Context(), "messaging.twilio.webhook")
	defer span.End()

	status := "accepted"
	defer func() {
		if h.metrics != nil {
			h.metrics.ObserveInbound(channelSMS, status)
			h.metrics.ObserveWebhookLatency(channelSMS, time.Since(start))
		}
	}()

	if h.authToken != "" {
		if !ValidateTwilioSignature(r, h.authToken, buildAbsoluteURL(r, h.publicBaseURL)) {
			status = "unauthorized"
			h.logger.Warn("invalid twilio signature")
			span.RecordError(errors.New("invalid twilio signature"))
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
	}

	webhook, err := ParseTwilioWebhook(r)
	if err != nil {
		status = "invalid"
		h.logger.Error("failed to parse twilio webhook", "error", err)
		span.RecordError(err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	from := NormalizeE164(webhook.From)
	to := NormalizeE164(webhook.To)
	span.SetAttributes(
		attribute.String("concierge.twilio.message_sid", webhook.MessageSid),
		attribute.String("concierge.twilio.from", from),
	)
	if webhook.MessageSid == "" || from == "" || (strings.TrimSpace(webhook.Body) == "" && webhook.NumMedia == 0) {
		status = "invalid"
		err := errors.New("missing required twilio fields")
		h.logger.Error("invalid twilio payload", "error", err)
		span.RecordError(err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if h.processed != nil {
		fresh, err := h.processed.MarkProcessed(ctx, processedProviderKey, webhook.MessageSid)
		if err != nil {
			h.logger.Warn("idempotency check failed, processing anyway", "error", err, "message_sid", webhook.MessageSid)
		} else if !fresh {
			status = "duplicate"
			h.logger.Info("duplicate twilio webhook ignored", "message_sid", webhook.MessageSid)
			writeTwiML(w, "")
			return
		}
	}

	msg := conversation.InboundMessage{
		UserID: UserIDForPhone(from),
		Text:   webhook.Body,
	}
	if webhook.NumMedia > 0 && webhook.MediaURLs[0] != "" {
		msg.Media = &conversation.Media{URL: webhook.MediaURLs[0], Kind: webhook.MediaTypes[0]}
	}

	if h.publisher != nil {
		publishCtx, cancel := context.WithTimeout(ctx, enqueueTimeout)
		defer cancel()
		jobID, err := h.publisher.Enqueue(publishCtx, conversation.Job{
			Channel:           channelSMS,
			Message:           msg,
			ReplyTo:           from,
			ReplyFrom:         to,
			ProviderMessageID: webhook.MessageSid,
		})
		if err != nil {
			status = "failed"
			h.release(ctx, webhook.MessageSid)
			h.logger.Error("failed to enqueue conversation job", "error", err, "message_sid", webhook.MessageSid)
			span.RecordError(err)
			http.Error(w, "Failed to schedule reply", http.StatusInternalServerError)
			return
		}
		status = "queued"
		h.logger.Info("twilio webhook queued", "job_id", jobID, "user_id", msg.UserID)
		writeTwiML(w, "")
		return
	}

	resp, err := h.service.HandleInboundMessage(ctx, msg)
	if err != nil {
		status = "failed"
		h.release(ctx, webhook.MessageSid)
		h.logger.Error("failed to handle twilio message", "error", err, "user_id", msg.UserID)
		span.RecordError(err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	reply := ""
	if resp != nil {
		reply = resp.Message
	}
	writeTwiML(w, reply)
}

func (h *Handler) release(ctx context.Context, sid string) {
	if h.processed == nil {
		return
	}
	if err := h.processed.Forget(context.WithoutCancel(ctx), processedProviderKey, sid); err != nil {
		h.logger.Warn("failed to clear idempotency marker", "error", err, "message_sid", sid)
	}
}

func writeTwiML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(TwiML(body))
}
