package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/realestate-concierge/internal/api/router"
	"github.com/wolfman30/realestate-concierge/internal/archive"
	"github.com/wolfman30/realestate-concierge/internal/bookings"
	appconfig "github.com/wolfman30/realestate-concierge/internal/config"
	"github.com/wolfman30/realestate-concierge/internal/conversation"
	"github.com/wolfman30/realestate-concierge/internal/events"
	"github.com/wolfman30/realestate-concierge/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/realestate-concierge/internal/http/middleware"
	"github.com/wolfman30/realestate-concierge/internal/i18n"
	"github.com/wolfman30/realestate-concierge/internal/messaging"
	"github.com/wolfman30/realestate-concierge/internal/notify"
	"github.com/wolfman30/realestate-concierge/internal/observability/metrics"
	"github.com/wolfman30/realestate-concierge/internal/session"
	"github.com/wolfman30/realestate-concierge/internal/webchat"
	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

const memoryQueueBuffer = 256

// App is the fully wired concierge: engine, transports and the queue
// plumbing between them.
type App struct {
	Config   *appconfig.Config
	Logger   *logging.Logger
	Registry *prometheus.Registry

	Engine   *conversation.Engine
	Sessions *session.Store
	Bookings *bookings.Service
	Turns    *archive.SQLStore
	DB       *sql.DB
	Pool     *pgxpool.Pool

	Publisher *conversation.Publisher
	Messenger conversation.ChannelMessenger
	Twilio    *messaging.TwilioSender
	WebChat   *webchat.Handler

	messagingMetrics *metrics.MessagingMetrics
	bus              *eventBus
	newWorker        func(opts ...conversation.WorkerOption) *conversation.Worker
	closers          []func()
}

// Build wires every component selected by cfg. Close releases what it opened.
func Build(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	app := &App{Config: cfg, Logger: logger, Registry: prometheus.NewRegistry()}
	app.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	app.messagingMetrics = metrics.NewMessagingMetrics(app.Registry)
	convMetrics := metrics.NewConversationMetrics(app.Registry)

	if err := app.build(ctx, awsCfg, convMetrics); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) build(ctx context.Context, awsCfg aws.Config, convMetrics *metrics.ConversationMetrics) error {
	cfg, logger := a.Config, a.Logger

	pool, db, err := ConnectPostgres(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	if pool != nil {
		a.Pool, a.DB = pool, db
		a.closers = append(a.closers, func() { _ = db.Close(); pool.Close() })
	}

	var redisClient *redis.Client
	if cfg.SessionBackend == appconfig.SessionBackendRedis || cfg.SessionBackend == appconfig.SessionBackendDynamoDB {
		if redisClient = BuildRedisClient(ctx, cfg, logger, true); redisClient != nil {
			a.closers = append(a.closers, func() { _ = redisClient.Close() })
		}
	}

	a.Sessions, err = BuildSessionStore(cfg, redisClient, awsCfg, logger)
	if err != nil {
		return err
	}

	bus, err := buildEventBus(cfg, pool, logger)
	if err != nil {
		return err
	}
	a.bus = bus
	a.closers = append(a.closers, bus.closers...)

	extractor, closeLLM, err := BuildExtractor(ctx, cfg, awsCfg, logger)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, closeLLM)

	linker, err := BuildDocumentLinker(cfg, awsCfg)
	if err != nil {
		return err
	}

	a.Messenger = conversation.ChannelMessenger{}
	media := conversation.PrefixMediaSender{}
	var sms *messaging.TwilioSender
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		sms = messaging.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, logger,
			messaging.WithOutboundMetrics(a.messagingMetrics))
		a.Twilio = sms
		a.Messenger["sms"] = sms
		media["sms"] = sms
	} else {
		logger.Warn("twilio not configured; sms replies and agent texts are disabled")
	}

	var smsSender notify.SMSSender
	if sms != nil {
		smsSender = sms
	}
	notifier := BuildNotifier(cfg, smsSender, bus.nats, awsCfg, logger)

	arch, sqlStore := BuildArchive(cfg, db, awsCfg, logger)
	a.Turns = sqlStore
	a.Bookings = BuildBookingService(pool, logger)

	machineOpts := []conversation.MachineOption{
		conversation.WithNotifier(notifier),
		conversation.WithDocuments(linker),
		conversation.WithMediaSender(media),
		conversation.WithEventPublisher(bus.publisher),
		conversation.WithMetrics(convMetrics),
		conversation.WithHardResetAfter(cfg.SessionHardResetAfter),
		conversation.WithInactivityAfter(cfg.SessionInactivityAfter),
		conversation.WithCollaboratorTimeout(cfg.CollaboratorTimeout),
	}
	if extractor != nil {
		machineOpts = append(machineOpts, conversation.WithExtractor(extractor))
	}
	engineOpts := []conversation.EngineOption{
		conversation.WithSideEffectTimeout(cfg.SideEffectTimeout),
		conversation.WithEngineMetrics(convMetrics),
	}
	if arch != nil {
		machineOpts = append(machineOpts, conversation.WithAppointmentArchive(arch))
		engineOpts = append(engineOpts, conversation.WithTurnArchive(arch))
	}

	machine := conversation.NewMachine(i18n.NewLocalizer(cfg.BrandName), BuildCatalog(pool, logger), a.Bookings, logger, machineOpts...)
	a.Engine = conversation.NewEngine(a.Sessions, machine, logger, engineOpts...)

	if err := a.buildQueue(awsCfg); err != nil {
		return err
	}

	var webOpts []webchat.Option
	if sqlStore != nil {
		webOpts = append(webOpts, webchat.WithHistory(sqlStore))
	}
	// Sockets live in this process, so only an in-process queue can route
	// worker replies back to them.
	if cfg.AsyncMessaging && cfg.UseMemoryQueue {
		webOpts = append(webOpts, webchat.WithPublisher(a.Publisher))
	}
	a.WebChat = webchat.NewHandler(a.Engine, logger, webOpts...)
	// The webchat sender exists only once the engine does; the map is filled
	// before any message is served.
	webMessenger := webchat.NewReplyMessenger(a.WebChat, logger)
	a.Messenger[webchat.Channel] = webMessenger
	media["web"] = webMessenger
	return nil
}

func (a *App) buildQueue(awsCfg aws.Config) error {
	cfg, logger := a.Config, a.Logger
	workerOpts := []conversation.WorkerOption{conversation.WithWorkerCount(cfg.WorkerCount)}
	if a.Pool != nil {
		workerOpts = append(workerOpts, conversation.WithProcessedEventsStore(events.NewProcessedStore(a.Pool)))
	}

	if cfg.UseMemoryQueue {
		queue := conversation.NewMemoryQueue(memoryQueueBuffer)
		a.Publisher = conversation.NewPublisher(queue, logger)
		a.newWorker = func(opts ...conversation.WorkerOption) *conversation.Worker {
			return conversation.NewWorker(a.Engine, queue, a.Messenger, logger, slices.Concat(workerOpts, opts)...)
		}
		return nil
	}
	if strings.TrimSpace(cfg.ConversationQueueURL) == "" {
		return fmt.Errorf("bootstrap: CONVERSATION_QUEUE_URL is required when USE_MEMORY_QUEUE=false")
	}
	queue := conversation.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.ConversationQueueURL)
	a.Publisher = conversation.NewPublisher(queue, logger)
	a.newWorker = func(opts ...conversation.WorkerOption) *conversation.Worker {
		return conversation.NewWorker(a.Engine, queue, a.Messenger, logger, slices.Concat(workerOpts, opts)...)
	}
	return nil
}

// NewWorker returns a queue consumer over the configured queue.
func (a *App) NewWorker(opts ...conversation.WorkerOption) *conversation.Worker {
	return a.newWorker(opts...)
}

// StartBackground runs the outbox deliverer until ctx is done.
func (a *App) StartBackground(ctx context.Context) {
	a.bus.start(ctx)
}

// Router builds the HTTP surface.
func (a *App) Router() http.Handler {
	cfg := a.Config

	msgOpts := []messaging.HandlerOption{messaging.WithInboundMetrics(a.messagingMetrics)}
	if cfg.TwilioAuthToken != "" {
		msgOpts = append(msgOpts, messaging.WithSignatureValidation(cfg.TwilioAuthToken, cfg.PublicBaseURL))
	}
	if cfg.AsyncMessaging {
		msgOpts = append(msgOpts, messaging.WithAsyncPublisher(a.Publisher))
	}
	if a.Pool != nil {
		msgOpts = append(msgOpts, messaging.WithProcessedStore(events.NewProcessedStore(a.Pool)))
	}

	adminOpts := []handlers.AdminOption{handlers.WithGatherer(a.Registry)}
	if a.Turns != nil {
		adminOpts = append(adminOpts, handlers.WithTurnHistory(a.Turns), handlers.WithAppointments(a.Turns))
	}
	if a.DB != nil {
		adminOpts = append(adminOpts, handlers.WithStatsDB(a.DB))
	}

	var limiter *httpmiddleware.RateLimiter
	if cfg.PublicRateLimitRPS > 0 {
		limiter = httpmiddleware.NewRateLimiter(cfg.PublicRateLimitRPS, cfg.PublicRateBurst)
	}

	return router.New(&router.Config{
		Logger:              a.Logger,
		MessagingHandler:    messaging.NewHandler(a.Engine, a.Logger, msgOpts...),
		ConversationHandler: conversation.NewHandler(a.Engine, a.Logger),
		WebChatHandler:      a.WebChat,
		AdminHandler:        handlers.NewAdminConciergeHandler(a.Sessions, a.Bookings, a.Logger, adminOpts...),
		AdminAuthSecret:     cfg.AdminJWTSecret,
		MetricsHandler:      promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		PublicRateLimit:     limiter,
	})
}

// Close releases connections in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
