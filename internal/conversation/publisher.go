package conversation

import (
	"context"
	"fmt"

	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

// Publisher enqueues inbound messages for asynchronous processing.
type Publisher struct {
	queue  queueClient
	logger *logging.Logger
}

// NewPublisher creates a queue-backed publisher.
func NewPublisher(queue queueClient, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("conversation: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{queue: queue, logger: logger}
}

// Enqueue publishes a job and returns its id.
func (p *Publisher) Enqueue(ctx context.Context, job Job) (string, error) {
	job, body, err := encodeJob(job)
	if err != nil {
		return "", err
	}
	if err := p.queue.Send(ctx, jobMessage(job, body)); err != nil {
		return "", fmt.Errorf("conversation: failed to enqueue job: %w", err)
	}
	p.logger.Debug("conversation job enqueued", "job_id", job.ID, "channel", job.Channel, "user_id", job.Message.UserID)
	return job.ID, nil
}
