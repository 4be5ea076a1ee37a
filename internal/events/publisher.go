package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rabbitmq/amqp091-go"

	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

// Publisher emits domain events.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
}

// NopPublisher drops every event. Used when no bus is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Envelope) error { return nil }

type natsConn interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes envelopes on "<prefix>.<type>" subjects.
type NATSPublisher struct {
	conn   natsConn
	prefix string
	logger *logging.Logger
}

// NewNATSPublisher wraps an established connection.
func NewNATSPublisher(conn natsConn, prefix string, logger *logging.Logger) *NATSPublisher {
	if conn == nil {
		panic("events: nats connection required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &NATSPublisher{conn: conn, prefix: strings.Trim(prefix, "."), logger: logger}
}

// Subject returns the subject used for an event type.
func (p *NATSPublisher) Subject(eventType string) string {
	if p.prefix == "" {
		return eventType
	}
	return p.prefix + "." + eventType
}

func (p *NATSPublisher) Publish(ctx context.Context, env Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("events: marshal envelope: %w", err)
	}
	subject := p.Subject(env.Meta.Type)
	if err := p.conn.Publish(subject, body); err != nil {
		return fmt.Errorf("events: nats publish %s: %w", subject, err)
	}
	p.logger.Debug("event published", "subject", subject, "event_id", env.Meta.ID)
	return nil
}

// ConnectNATS dials NATS with reconnect handling. token may be empty.
func ConnectNATS(url, token string, logger *logging.Logger) (*nats.Conn, error) {
	if logger == nil {
		logger = logging.Default()
	}
	opts := []nats.Option{
		nats.Name(Producer),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("events: nats connect: %w", err)
	}
	return nc, nil
}

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

type amqpConnection interface {
	Channel() (amqpChannel, error)
	Close() error
}

type amqpConnAdapter struct{ conn *amqp091.Connection }

func (a amqpConnAdapter) Channel() (amqpChannel, error) {
	ch, err := a.conn.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func (a amqpConnAdapter) Close() error { return a.conn.Close() }

// AMQPPublisher publishes envelopes to a topic exchange using the event type
// as routing key.
type AMQPPublisher struct {
	conn     amqpConnection
	exchange string
	logger   *logging.Logger
}

// DialAMQP connects and declares the durable topic exchange.
func DialAMQP(url, exchange string, logger *logging.Logger) (*AMQPPublisher, error) {
	if logger == nil {
		logger = logging.Default()
	}
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("events: amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: amqp channel: %w", err)
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: declare exchange %s: %w", exchange, err)
	}
	return &AMQPPublisher{conn: amqpConnAdapter{conn: conn}, exchange: exchange, logger: logger}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, env Envelope) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("events: amqp channel: %w", err)
	}
	defer ch.Close()
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("events: marshal envelope: %w", err)
	}
	err = ch.PublishWithContext(ctx, p.exchange, env.Meta.Type, false, false, amqp091.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp091.Persistent,
		MessageId:     env.Meta.ID,
		CorrelationId: env.Meta.CorrelationID,
		Timestamp:     env.Meta.Time,
		Type:          env.Meta.Type,
		AppId:         Producer,
		Body:          body,
	})
	if err != nil {
		return fmt.Errorf("events: amqp publish %s: %w", env.Meta.Type, err)
	}
	p.logger.Debug("event published", "exchange", p.exchange, "routing_key", env.Meta.Type, "event_id", env.Meta.ID)
	return nil
}

// Close releases the AMQP connection.
func (p *AMQPPublisher) Close() error {
	return p.conn.Close()
}
