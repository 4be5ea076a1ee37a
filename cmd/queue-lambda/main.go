package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/wolfman30/realestate-concierge/cmd/mainconfig"
	"github.com/wolfman30/realestate-concierge/internal/app/bootstrap"
	appconfig "github.com/wolfman30/realestate-concierge/internal/config"
	"github.com/wolfman30/realestate-concierge/internal/conversation"
	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

type bodyProcessor interface {
	ProcessBody(ctx context.Context, body string) error
}

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	ctx := context.Background()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	app, err := bootstrap.Build(ctx, cfg, awsCfg, logger)
	if err != nil {
		logger.Error("failed to build application", "error", err)
		os.Exit(1)
	}
	worker := app.NewWorker()

	lambda.Start(func(ctx context.Context, evt events.SQSEvent) (events.SQSEventResponse, error) {
		return handle(ctx, worker, logger, evt), nil
	})
}

// handle processes each record and reports the ones that should be
// redelivered. Undecodable bodies are dropped.
func handle(ctx context.Context, worker bodyProcessor, logger *logging.Logger, evt events.SQSEvent) events.SQSEventResponse {
	var resp events.SQSEventResponse
	for _, record := range evt.Records {
		err := worker.ProcessBody(ctx, record.Body)
		if err == nil || conversation.IsUndecodable(err) {
			continue
		}
		logger.Warn("conversation job failed, leaving for redelivery", "error", err, "message_id", record.MessageId)
		resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
	}
	return resp
}
