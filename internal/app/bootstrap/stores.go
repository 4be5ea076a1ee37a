package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/realestate-concierge/internal/archive"
	appconfig "github.com/wolfman30/realestate-concierge/internal/config"
	"github.com/wolfman30/realestate-concierge/internal/events"
	"github.com/wolfman30/realestate-concierge/internal/session"
	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

// BuildSessionStore selects the session repository named by
// cfg.SessionBackend. Redis, when reachable, also provides the per-user lock
// so several processes can share one store.
func BuildSessionStore(cfg *appconfig.Config, redisClient *redis.Client, awsCfg aws.Config, logger *logging.Logger) (*session.Store, error) {
	var repo session.Repository
	switch cfg.SessionBackend {
	case "", appconfig.SessionBackendMemory:
		repo = session.NewMemoryRepository()
	case appconfig.SessionBackendRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("bootstrap: redis session backend requires REDIS_ADDR")
		}
		repo = session.NewRedisRepository(redisClient, cfg.SessionTTL)
	case appconfig.SessionBackendDynamoDB:
		repo = session.NewDynamoRepository(dynamodb.NewFromConfig(awsCfg), cfg.SessionTable, cfg.SessionTTL)
	default:
		return nil, fmt.Errorf("bootstrap: unknown session backend %q", cfg.SessionBackend)
	}

	var opts []session.StoreOption
	if redisClient != nil && cfg.SessionBackend != appconfig.SessionBackendMemory && cfg.SessionBackend != "" {
		opts = append(opts, session.WithLocker(session.NewRedisLocker(redisClient, cfg.SessionLockTTL)))
	}
	logger.Info("session store configured", "backend", cfg.SessionBackend, "distributed_lock", len(opts) > 0)
	return session.NewStore(repo, logger, opts...), nil
}

// BuildArchive fans turn and appointment records out to Postgres and S3.
// It returns the SQL store separately for the read paths and nil when
// nothing is configured.
func BuildArchive(cfg *appconfig.Config, db *sql.DB, awsCfg aws.Config, logger *logging.Logger) (archive.Archive, *archive.SQLStore) {
	var (
		sinks    archive.Fanout
		sqlStore *archive.SQLStore
	)
	if db != nil {
		sqlStore = archive.NewSQLStore(db)
		sinks = append(sinks, sqlStore)
	}
	if cfg.ArchiveBucket != "" {
		sinks = append(sinks, archive.NewS3Store(newS3Client(cfg, awsCfg), cfg.ArchiveBucket, logger))
	}
	if len(sinks) == 0 {
		logger.Warn("no archive configured; turns and appointments are not persisted long-term")
		return nil, nil
	}

	var out archive.Archive = sinks
	if cfg.ArchiveRedactPII {
		out = archive.NewRedacting(out)
	}
	return out, sqlStore
}

// eventBus is the configured publisher plus what must run or close with it.
type eventBus struct {
	publisher events.Publisher
	nats      *nats.Conn
	deliverer *events.Deliverer
	closers   []func()
}

// buildEventBus connects the publisher named by cfg.EventsBackend. With the
// outbox enabled and Postgres available, failed publishes are parked and
// redelivered in the background.
func buildEventBus(cfg *appconfig.Config, pool *pgxpool.Pool, logger *logging.Logger) (*eventBus, error) {
	bus := &eventBus{}
	switch cfg.EventsBackend {
	case "", appconfig.EventsBackendNone:
		bus.publisher = events.NopPublisher{}
		return bus, nil
	case appconfig.EventsBackendNATS:
		nc, err := events.ConnectNATS(cfg.NATSURL, cfg.NATSToken, logger)
		if err != nil {
			return nil, err
		}
		bus.nats = nc
		bus.closers = append(bus.closers, func() { _ = nc.Drain() })
		bus.publisher = events.NewNATSPublisher(nc, "", logger)
	case appconfig.EventsBackendAMQP:
		pub, err := events.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err != nil {
			return nil, err
		}
		bus.closers = append(bus.closers, func() { _ = pub.Close() })
		bus.publisher = pub
	default:
		return nil, fmt.Errorf("bootstrap: unknown events backend %q", cfg.EventsBackend)
	}

	if cfg.OutboxEnabled {
		if pool == nil {
			logger.Warn("event outbox requested without DATABASE_URL; publishing directly")
			return bus, nil
		}
		store := events.NewOutboxStore(pool)
		bus.deliverer = events.NewDeliverer(store, bus.publisher, logger)
		bus.publisher = events.NewOutboxPublisher(bus.publisher, store, logger)
	}
	logger.Info("event bus configured", "backend", cfg.EventsBackend, "outbox", bus.deliverer != nil)
	return bus, nil
}

func (b *eventBus) start(ctx context.Context) {
	if b.deliverer != nil {
		go b.deliverer.Start(ctx)
	}
}
