package main

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-lambda-go/events"

	"github.com/wolfman30/realestate-concierge/internal/conversation"
	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

type scriptedProcessor struct {
	results map[string]error
	seen    []string
}

func (p *scriptedProcessor) ProcessBody(_ context.Context, body string) error {
	p.seen = append(p.seen, body)
	return p.results[body]
}

func TestHandleReportsOnlyRetryableFailures(t *testing.T) {
	logger := logging.NewWithWriter(io.Discard, "error")
	proc := &scriptedProcessor{results: map[string]error{
		"fail": errors.New("session store unavailable"),
	}}

	evt := events.SQSEvent{Records: []events.SQSMessage{
		{MessageId: "m1", Body: "ok"},
		{MessageId: "m2", Body: "fail"},
		{MessageId: "m3", Body: "ok-too"},
	}}
	resp := handle(context.Background(), proc, logger, evt)

	if len(proc.seen) != 3 {
		t.Fatalf("expected every record processed, got %v", proc.seen)
	}
	if len(resp.BatchItemFailures) != 1 || resp.BatchItemFailures[0].ItemIdentifier != "m2" {
		t.Fatalf("unexpected failures %+v", resp.BatchItemFailures)
	}
}

func TestHandleDropsUndecodableJobs(t *testing.T) {
	logger := logging.NewWithWriter(io.Discard, "error")
	worker := conversation.NewWorker(noopService{}, nil, nil, logger)

	evt := events.SQSEvent{Records: []events.SQSMessage{{MessageId: "bad", Body: "not json"}}}
	resp := handle(context.Background(), worker, logger, evt)
	if len(resp.BatchItemFailures) != 0 {
		t.Fatalf("expected undecodable job to be dropped, got %+v", resp.BatchItemFailures)
	}
}

type noopService struct{}

func (noopService) HandleInboundMessage(context.Context, conversation.InboundMessage) (*conversation.Response, error) {
	return nil, nil
}
