package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

type natsConn interface {
	Publish(subject string, data []byte) error
}

// CRMSink records booking log lines in the CRM.
type CRMSink interface {
	Record(ctx context.Context, entry string) error
}

type crmMessage struct {
	Entry      string    `json:"entry"`
	RecordedAt time.Time `json:"recorded_at"`
}

// NATSCRMSink publishes CRM log entries on a NATS subject consumed by the
// CRM integration.
type NATSCRMSink struct {
	conn    natsConn
	subject string
	now     func() time.Time
}

// NewNATSCRMSink publishes on subject through conn.
func NewNATSCRMSink(conn natsConn, subject string) *NATSCRMSink {
	if conn == nil {
		panic("notify: nats connection required")
	}
	if subject == "" {
		subject = "concierge.crm"
	}
	return &NATSCRMSink{conn: conn, subject: subject, now: time.Now}
}

func (s *NATSCRMSink) Record(ctx context.Context, entry string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(crmMessage{Entry: entry, RecordedAt: s.now().UTC()})
	if err != nil {
		return fmt.Errorf("notify: failed to encode crm entry: %w", err)
	}
	if err := s.conn.Publish(s.subject, data); err != nil {
		return fmt.Errorf("notify: failed to publish crm entry: %w", err)
	}
	return nil
}

// LogCRMSink writes CRM entries to the application log.
type LogCRMSink struct {
	logger *logging.Logger
}

func NewLogCRMSink(logger *logging.Logger) *LogCRMSink {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogCRMSink{logger: logger}
}

func (s *LogCRMSink) Record(_ context.Context, entry string) error {
	s.logger.Info("crm entry", "entry", entry)
	return nil
}
