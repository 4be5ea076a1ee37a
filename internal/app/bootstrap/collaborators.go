package bootstrap

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"

	"github.com/wolfman30/realestate-concierge/internal/bookings"
	"github.com/wolfman30/realestate-concierge/internal/catalog"
	appconfig "github.com/wolfman30/realestate-concierge/internal/config"
	"github.com/wolfman30/realestate-concierge/internal/conversation"
	"github.com/wolfman30/realestate-concierge/internal/documents"
	"github.com/wolfman30/realestate-concierge/internal/llm"
	"github.com/wolfman30/realestate-concierge/internal/notify"
	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

// BuildCatalog uses the properties table when Postgres is available and the
// built-in demo listings otherwise.
func BuildCatalog(pool *pgxpool.Pool, logger *logging.Logger) conversation.Catalog {
	if pool == nil {
		logger.Warn("no database configured; serving demo listings")
		return catalog.NewStaticCatalog(catalog.DemoListings())
	}
	return catalog.NewRepository(pool)
}

// BuildBookingService persists bookings in Postgres, or in memory for local
// runs.
func BuildBookingService(pool *pgxpool.Pool, logger *logging.Logger) *bookings.Service {
	if pool == nil {
		return bookings.NewService(bookings.NewMemoryRepository(), logger)
	}
	return bookings.NewService(bookings.NewRepository(pool), logger)
}

// BuildExtractor wires the LLM field extractor. Bedrock is primary and Gemini
// the fallback; either alone also works. It returns nil when no model is
// configured, which leaves the engine on its rule-based parsing.
func BuildExtractor(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (conversation.Extractor, func(), error) {
	var (
		clients []llm.Client
		closers []func()
	)
	if model := strings.TrimSpace(cfg.BedrockModelID); model != "" {
		clients = append(clients, llm.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg), model))
	}
	if key := strings.TrimSpace(cfg.GeminiAPIKey); key != "" {
		gemini, err := llm.NewGeminiClient(ctx, key, cfg.GeminiModelID)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { _ = gemini.Close() })
		clients = append(clients, gemini)
	}
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	switch len(clients) {
	case 0:
		logger.Warn("no LLM configured; free-text extraction disabled")
		return nil, closeAll, nil
	case 1:
		return llm.NewExtractor(clients[0], "", logger), closeAll, nil
	default:
		logger.Info("llm extractor configured with fallback")
		return llm.NewExtractor(llm.NewFallbackClient(clients[0], clients[1], logger), "", logger), closeAll, nil
	}
}

// BuildDocumentLinker presigns links from the documents bucket, or builds
// plain links under DOCUMENTS_BASE_URL.
func BuildDocumentLinker(cfg *appconfig.Config, awsCfg aws.Config) (conversation.DocumentLinker, error) {
	if cfg.DocumentsBucket != "" {
		return documents.NewS3Linker(newS3Client(cfg, awsCfg), cfg.DocumentsBucket, cfg.DocumentLinkTTL), nil
	}
	return documents.NewStaticLinker(cfg.DocumentsBaseURL)
}

// BuildNotifier wires agent alerts. SendGrid wins over SES when both are
// configured; the CRM feed rides on NATS when connected.
func BuildNotifier(cfg *appconfig.Config, sms notify.SMSSender, nc *nats.Conn, awsCfg aws.Config, logger *logging.Logger) *notify.Dispatcher {
	var opts []notify.DispatcherOption
	if sms != nil && cfg.AgentAlertPhone != "" {
		opts = append(opts, notify.WithAgentSMS(sms, cfg.AgentAlertPhone))
	}

	if cfg.AgentAlertEmail != "" {
		var sender notify.EmailSender
		if sg := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); sg != nil {
			sender = sg
		} else if ses := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); ses != nil {
			sender = ses
		} else {
			sender = notify.NewStubEmailSender(logger)
		}
		opts = append(opts, notify.WithAgentEmail(sender, cfg.AgentAlertEmail))
	}

	if nc != nil {
		opts = append(opts, notify.WithCRM(notify.NewNATSCRMSink(nc, cfg.CRMSubject)))
	}
	return notify.NewDispatcher(logger, opts...)
}

// newS3Client addresses buckets by path when an endpoint override is set,
// since LocalStack does not serve virtual-hosted bucket names.
func newS3Client(cfg *appconfig.Config, awsCfg aws.Config) *s3.Client {
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.AWSEndpointOverride != ""
	})
}
