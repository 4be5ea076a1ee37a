package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

const (
	defaultWorkerCount   = 2
	defaultWaitSeconds   = 2
	defaultBatchSize     = 5
	maxWaitSeconds       = 20
	maxReceiveBatchSize  = 10
	deleteTimeout        = 5 * time.Second
	defaultReplyTimeout  = 10 * time.Second
	processedProviderKey = "inbound"
)

type processedEventStore interface {
	MarkProcessed(ctx context.Context, provider, eventID string) (bool, error)
	Forget(ctx context.Context, provider, eventID string) error
}

// Worker consumes queued inbound messages, runs them through the engine and
// sends the replies.
type Worker struct {
	service   Service
	queue     queueClient
	messenger ReplyMessenger
	logger    *logging.Logger

	cfg workerConfig
	wg  sync.WaitGroup
}

type workerConfig struct {
	workers          int
	receiveWaitSecs  int
	receiveBatchSize int
	replyTimeout     time.Duration
	processed        processedEventStore
}

// WorkerOption customizes worker behavior.
type WorkerOption func(*workerConfig)

// WithWorkerCount sets the number of concurrent consumer goroutines.
func WithWorkerCount(count int) WorkerOption {
	return func(cfg *workerConfig) {
		if count > 0 {
			cfg.workers = count
		}
	}
}

// WithReceiveWaitSeconds sets the long-poll wait duration.
func WithReceiveWaitSeconds(seconds int) WorkerOption {
	return func(cfg *workerConfig) {
		if seconds < 0 {
			return
		}
		if seconds > maxWaitSeconds {
			seconds = maxWaitSeconds
		}
		cfg.receiveWaitSecs = seconds
	}
}

// WithReceiveBatchSize sets how many messages to fetch per poll.
func WithReceiveBatchSize(size int) WorkerOption {
	return func(cfg *workerConfig) {
		if size <= 0 {
			return
		}
		if size > maxReceiveBatchSize {
			size = maxReceiveBatchSize
		}
		cfg.receiveBatchSize = size
	}
}

// WithReplyTimeout bounds each outbound reply.
func WithReplyTimeout(d time.Duration) WorkerOption {
	return func(cfg *workerConfig) {
		if d > 0 {
			cfg.replyTimeout = d
		}
	}
}

// WithProcessedEventsStore drops provider redeliveries of the same message.
func WithProcessedEventsStore(store processedEventStore) WorkerOption {
	return func(cfg *workerConfig) {
		cfg.processed = store
	}
}

// NewWorker constructs a queue consumer around the provided service.
func NewWorker(service Service, queue queueClient, messenger ReplyMessenger, logger *logging.Logger, opts ...WorkerOption) *Worker {
	if service == nil {
		panic("conversation: service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	cfg := workerConfig{
		workers:          defaultWorkerCount,
		receiveWaitSecs:  defaultWaitSeconds,
		receiveBatchSize: defaultBatchSize,
		replyTimeout:     defaultReplyTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Worker{
		service:   service,
		queue:     queue,
		messenger: messenger,
		logger:    logger,
		cfg:       cfg,
	}
}

// Start launches worker goroutines until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	if w.queue == nil {
		panic("conversation: worker started without a queue")
	}
	for i := 0; i < w.cfg.workers; i++ {
		w.wg.Add(1)
		go w.run(ctx, i+1)
	}
}

// Wait blocks until all worker goroutines exit.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context, workerID int) {
	defer w.wg.Done()
	w.logger.Debug("conversation worker started", "worker_id", workerID)

	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("conversation worker stopping", "worker_id", workerID)
			return
		default:
		}

		messages, err := w.queue.Receive(ctx, w.cfg.receiveBatchSize, w.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			w.logger.Error("failed to receive conversation jobs", "error", err, "worker_id", workerID)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, msg := range messages {
			w.handleMessage(ctx, msg)
		}
	}
}

func (w *Worker) handleMessage(ctx context.Context, msg queueMessage) {
	if err := w.ProcessBody(ctx, msg.Body); err != nil && !IsUndecodable(err) {
		// Leave the message for redelivery.
		return
	}
	deleteCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deleteTimeout)
	defer cancel()
	if err := w.queue.Delete(deleteCtx, msg.ReceiptHandle); err != nil {
		w.logger.Error("failed to delete conversation job", "error", err, "msg_id", msg.ID)
	}
}

type jobDecodeError struct{ err error }

func (e *jobDecodeError) Error() string { return e.err.Error() }
func (e *jobDecodeError) Unwrap() error { return e.err }

// IsUndecodable reports whether err came from a job body that can never be
// processed and should be dropped rather than redelivered.
func IsUndecodable(err error) bool {
	var decodeErr *jobDecodeError
	return errors.As(err, &decodeErr)
}

// ProcessBody handles one queued job body. It is exported for serverless
// consumers that receive bodies without a queueClient.
func (w *Worker) ProcessBody(ctx context.Context, body string) error {
	job, err := decodeJob(body)
	if err != nil {
		w.logger.Error("dropping undecodable conversation job", "error", err)
		return &jobDecodeError{err: err}
	}
	return w.process(ctx, job)
}

func (w *Worker) process(ctx context.Context, job Job) error {
	providerID := strings.TrimSpace(job.ProviderMessageID)
	if w.cfg.processed != nil && providerID != "" {
		fresh, err := w.cfg.processed.MarkProcessed(ctx, processedProviderKey, providerID)
		if err != nil {
			w.logger.Warn("idempotency check failed, processing anyway", "error", err, "provider_message_id", providerID)
		} else if !fresh {
			w.logger.Info("skipping duplicate inbound message", "provider_message_id", providerID, "job_id", job.ID)
			return nil
		}
	}

	resp, err := w.service.HandleInboundMessage(ctx, job.Message)
	if err != nil {
		w.logger.Error("failed to process conversation job", "error", err, "job_id", job.ID, "user_id", job.Message.UserID)
		if w.cfg.processed != nil && providerID != "" {
			if ferr := w.cfg.processed.Forget(context.WithoutCancel(ctx), processedProviderKey, providerID); ferr != nil {
				w.logger.Warn("failed to clear idempotency marker", "error", ferr, "provider_message_id", providerID)
			}
		}
		return err
	}
	if resp == nil || w.messenger == nil || strings.TrimSpace(resp.Message) == "" {
		return nil
	}

	replyCtx, cancel := context.WithTimeout(ctx, w.cfg.replyTimeout)
	defer cancel()
	reply := OutboundReply{
		Channel: job.Channel,
		UserID:  job.Message.UserID,
		To:      job.ReplyTo,
		From:    job.ReplyFrom,
		Body:    resp.Message,
	}
	if err := w.messenger.SendReply(replyCtx, reply); err != nil {
		// The session has already advanced; redelivery would replay the step.
		w.logger.Error("failed to send reply", "error", err, "job_id", job.ID, "user_id", job.Message.UserID)
		return nil
	}
	w.logger.Debug("reply sent", "job_id", job.ID, "user_id", job.Message.UserID, "state", resp.State)
	return nil
}
