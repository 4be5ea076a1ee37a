package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

// Channels accepted by Dispatcher.Notify.
const (
	ChannelAgentSMS = "agent_sms"
	ChannelEmail    = "email"
	ChannelCRM      = "crm"
)

const bookingEmailSubject = "New site visit booked"

// SMSSender sends SMS messages to operators.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Dispatcher routes operator notifications to SMS, email and the CRM. A
// channel without a configured destination is logged and skipped.
type Dispatcher struct {
	sms        SMSSender
	agentPhone string
	email      EmailSender
	agentEmail string
	crm        CRMSink
	logger     *logging.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithAgentSMS sends agent alerts to phone.
func WithAgentSMS(sender SMSSender, phone string) DispatcherOption {
	return func(d *Dispatcher) {
		d.sms = sender
		d.agentPhone = strings.TrimSpace(phone)
	}
}

// WithAgentEmail sends booking emails to address.
func WithAgentEmail(sender EmailSender, address string) DispatcherOption {
	return func(d *Dispatcher) {
		d.email = sender
		d.agentEmail = strings.TrimSpace(address)
	}
}

// WithCRM overrides the default log-only CRM sink.
func WithCRM(sink CRMSink) DispatcherOption {
	return func(d *Dispatcher) {
		if sink != nil {
			d.crm = sink
		}
	}
}

// NewDispatcher creates a notification dispatcher.
func NewDispatcher(logger *logging.Logger, opts ...DispatcherOption) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	d := &Dispatcher{logger: logger, crm: NewLogCRMSink(logger)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Notify delivers text on channel.
func (d *Dispatcher) Notify(ctx context.Context, channel, text string) error {
	switch channel {
	case ChannelAgentSMS:
		if d.sms == nil || d.agentPhone == "" {
			d.logger.Debug("notify: agent sms not configured, skipping")
			return nil
		}
		if err := d.sms.SendSMS(ctx, d.agentPhone, text); err != nil {
			return fmt.Errorf("notify: agent sms: %w", err)
		}
		d.logger.Info("agent sms sent", "to", d.agentPhone)
		return nil

	case ChannelEmail:
		if d.email == nil || d.agentEmail == "" {
			d.logger.Debug("notify: agent email not configured, skipping")
			return nil
		}
		return d.email.Send(ctx, NewBookingEmail(d.agentEmail, text))

	case ChannelCRM:
		return d.crm.Record(ctx, text)
	}
	return fmt.Errorf("notify: unknown channel %q", channel)
}
