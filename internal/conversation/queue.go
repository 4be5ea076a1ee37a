package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type queueClient interface {
	Send(ctx context.Context, msg queueMessage) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// queueMessage is one encoded job. GroupID is the user id: jobs sharing it
// must be processed in the order they were sent.
type queueMessage struct {
	ID            string
	Body          string
	GroupID       string
	Channel       string
	ReceiptHandle string
}

func jobMessage(job Job, body string) queueMessage {
	return queueMessage{ID: job.ID, Body: body, GroupID: job.Message.UserID, Channel: job.Channel}
}

// Job is an inbound message queued for asynchronous processing together with
// the addressing needed to send the reply.
type Job struct {
	ID                string         `json:"id"`
	Channel           string         `json:"channel"`
	Message           InboundMessage `json:"message"`
	ReplyTo           string         `json:"reply_to"`
	ReplyFrom         string         `json:"reply_from"`
	ProviderMessageID string         `json:"provider_message_id,omitempty"`
	ReceivedAt        time.Time      `json:"received_at"`
}

func encodeJob(job Job) (Job, string, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.ReceivedAt.IsZero() {
		job.ReceivedAt = time.Now().UTC()
	}
	body, err := json.Marshal(job)
	if err != nil {
		return Job{}, "", fmt.Errorf("conversation: failed to encode job: %w", err)
	}
	return job, string(body), nil
}

func decodeJob(body string) (Job, error) {
	var job Job
	if err := json.Unmarshal([]byte(body), &job); err != nil {
		return Job{}, fmt.Errorf("conversation: failed to decode job: %w", err)
	}
	return job, nil
}
