package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/realestate-concierge/internal/conversation"
	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

var twilioSendTracer = otel.Tracer("concierge.internal.messaging.twilio_send")

const (
	defaultTwilioBaseURL = "https://api.twilio.com"
	maxSendAttempts      = 3
)

type outboundObserver interface {
	ObserveOutbound(channel, status string)
}

// TwilioSender posts SMS and MMS messages using Twilio's REST API.
type TwilioSender struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	httpClient *http.Client
	metrics    outboundObserver
	logger     *logging.Logger
	sleep      func(time.Duration)
}

// TwilioOption configures a TwilioSender.
type TwilioOption func(*TwilioSender)

// WithTwilioBaseURL points the sender at a different API host.
func WithTwilioBaseURL(base string) TwilioOption {
	return func(s *TwilioSender) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			s.baseURL = base
		}
	}
}

// WithTwilioHTTPClient overrides the HTTP client.
func WithTwilioHTTPClient(client *http.Client) TwilioOption {
	return func(s *TwilioSender) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithOutboundMetrics records delivery outcomes.
func WithOutboundMetrics(m outboundObserver) TwilioOption {
	return func(s *TwilioSender) {
		s.metrics = m
	}
}

// NewTwilioSender builds a sender with sane defaults.
func NewTwilioSender(accountSID, authToken, defaultFrom string, logger *logging.Logger, opts ...TwilioOption) *TwilioSender {
	if logger == nil {
		logger = logging.Default()
	}
	s := &TwilioSender{
		accountSID: accountSID,
		authToken:  authToken,
		from:       defaultFrom,
		baseURL:    defaultTwilioBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	_ conversation.ReplyMessenger = (*TwilioSender)(nil)
	_ conversation.MediaSender    = (*TwilioSender)(nil)
)

// SendReply dispatches a single SMS, retrying transient failures.
func (s *TwilioSender) SendReply(ctx context.Context, msg conversation.OutboundReply) error {
	return s.send(ctx, msg.To, msg.From, msg.Body, "")
}

// SendSMS sends body to an arbitrary number from the default sender.
func (s *TwilioSender) SendSMS(ctx context.Context, to, body string) error {
	return s.send(ctx, to, "", body, "")
}

// SendMedia sends a file as MMS to an SMS user.
func (s *TwilioSender) SendMedia(ctx context.Context, userID, caption, mediaURL string) error {
	to, ok := PhoneForUserID(userID)
	if !ok {
		return fmt.Errorf("messaging: user %q is not reachable by sms", userID)
	}
	if strings.TrimSpace(mediaURL) == "" {
		return errors.New("messaging: media url required")
	}
	return s.send(ctx, to, "", caption, mediaURL)
}

func (s *TwilioSender) send(ctx context.Context, to, from, body, mediaURL string) (err error) {
	if s.accountSID == "" || s.authToken == "" {
		return errors.New("messaging: twilio credentials missing")
	}
	if to == "" {
		return errors.New("messaging: to required")
	}
	if from == "" {
		from = s.from
	}
	if from == "" {
		return errors.New("messaging: from required")
	}
	if strings.TrimSpace(body) == "" && mediaURL == "" {
		return errors.New("messaging: body required")
	}

	ctx, span := twilioSendTracer.Start(ctx, "messaging.twilio.send")
	defer span.End()
	span.SetAttributes(
		attribute.String("concierge.to", to),
		attribute.Bool("concierge.media", mediaURL != ""),
	)
	defer func() {
		if s.metrics == nil {
			return
		}
		status := "sent"
		if err != nil {
			status = "failed"
		}
		s.metrics.ObserveOutbound("sms", status)
	}()

	payload := url.Values{}
	payload.Set("To", to)
	payload.Set("From", from)
	if body != "" {
		payload.Set("Body", body)
	}
	if mediaURL != "" {
		payload.Set("MediaUrl", mediaURL)
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, s.accountSID)

	var lastErr error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(payload.Encode()))
		if reqErr != nil {
			lastErr = reqErr
			break
		}
		req.SetBasicAuth(s.accountSID, s.authToken)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, doErr := s.httpClient.Do(req)
		if doErr != nil {
			lastErr = doErr
		} else {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				s.logger.Info("twilio message sent", "to", to, "media", mediaURL != "", "sid", parseMessageSID(respBody))
				return nil
			}
			lastErr = fmt.Errorf("messaging: twilio send failed: %s", formatTwilioError(resp.StatusCode, respBody))
			// Don't retry non-rate-limit 4xx errors.
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				break
			}
		}
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}
		if attempt < maxSendAttempts {
			s.sleep(time.Duration(200+rand.Intn(300)) * time.Millisecond)
		}
	}

	span.RecordError(lastErr)
	s.logger.Warn("twilio send failed", "to", to, "error", lastErr)
	return lastErr
}

func parseMessageSID(body []byte) string {
	var parsed struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	return parsed.SID
}

type twilioAPIError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

func formatTwilioError(status int, body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return fmt.Sprintf("status %d", status)
	}
	var parsed twilioAPIError
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil && parsed.Message != "" {
		if parsed.Code != 0 {
			return fmt.Sprintf("status %d code %d: %s", status, parsed.Code, parsed.Message)
		}
		return fmt.Sprintf("status %d: %s", status, parsed.Message)
	}
	return fmt.Sprintf("status %d: %s", status, trimmed)
}
