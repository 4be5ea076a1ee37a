package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"
)

type fakeNATS struct {
	subject string
	data    []byte
	err     error
}

func (f *fakeNATS) Publish(subject string, data []byte) error {
	f.subject = subject
	f.data = data
	return f.err
}

func TestNewEnvelope(t *testing.T) {
	env, err := NewEnvelope(TypeAppointmentBooked, "corr-1", AppointmentBookedV1{AppointmentID: "bk-1"})
	if err != nil {
		t.Fatalf("envelope: %v", err)
	}
	if env.Meta.ID == "" || env.Meta.Type != TypeAppointmentBooked || env.Meta.Producer != Producer {
		t.Fatalf("unexpected meta %+v", env.Meta)
	}
	var got AppointmentBookedV1
	if err := env.Decode(&got); err != nil || got.AppointmentID != "bk-1" {
		t.Fatalf("decode: %+v err=%v", got, err)
	}
	if _, err := NewEnvelope("", "", nil); err == nil {
		t.Fatalf("expected error for empty type")
	}
}

func TestNATSPublisherUsesPrefixedSubject(t *testing.T) {
	conn := &fakeNATS{}
	pub := NewNATSPublisher(conn, "concierge.", nil)
	env, _ := NewEnvelope(TypeAppointmentBooked, "", map[string]string{"a": "b"})

	if err := pub.Publish(context.Background(), env); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if conn.subject != "concierge.appointment.booked.v1" {
		t.Fatalf("unexpected subject %s", conn.subject)
	}
	var decoded Envelope
	if err := json.Unmarshal(conn.data, &decoded); err != nil || decoded.Meta.ID != env.Meta.ID {
		t.Fatalf("unexpected body %s err=%v", conn.data, err)
	}

	conn.err = errors.New("closed")
	if err := pub.Publish(context.Background(), env); err == nil {
		t.Fatalf("expected publish error")
	}
}

type fakeAMQPChannel struct {
	exchange string
	key      string
	msg      amqp091.Publishing
	closed   bool
}

func (c *fakeAMQPChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	c.exchange, c.key, c.msg = exchange, key, msg
	return nil
}

func (c *fakeAMQPChannel) Close() error {
	c.closed = true
	return nil
}

type fakeAMQPConn struct {
	ch *fakeAMQPChannel
}

func (c *fakeAMQPConn) Channel() (amqpChannel, error) { return c.ch, nil }
func (c *fakeAMQPConn) Close() error                  { return nil }

func TestAMQPPublisherRoutesByType(t *testing.T) {
	ch := &fakeAMQPChannel{}
	pub := &AMQPPublisher{conn: &fakeAMQPConn{ch: ch}, exchange: "concierge.events", logger: nil}
	pub.logger = nopLogger()
	env, _ := NewEnvelope(TypeAppointmentBooked, "corr-9", map[string]string{})

	if err := pub.Publish(context.Background(), env); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if ch.exchange != "concierge.events" || ch.key != TypeAppointmentBooked {
		t.Fatalf("unexpected routing %s/%s", ch.exchange, ch.key)
	}
	if ch.msg.MessageId != env.Meta.ID || ch.msg.CorrelationId != "corr-9" || ch.msg.DeliveryMode != amqp091.Persistent {
		t.Fatalf("unexpected publishing %+v", ch.msg)
	}
	if !ch.closed {
		t.Fatalf("expected channel closed after publish")
	}
}
