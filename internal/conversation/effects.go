package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

const defaultSideEffectTimeout = 10 * time.Second

// Effect is fire-and-forget work emitted by a step. Failures are logged and
// never undo the step.
type Effect struct {
	Name string
	Run  func(ctx context.Context) error
}

type effectRunner struct {
	timeout time.Duration
	sync    bool
	logger  *logging.Logger
	metrics Metrics
	wg      sync.WaitGroup
}

// run executes effects detached from the caller's cancellation.
func (r *effectRunner) run(ctx context.Context, userID string, effects []Effect) {
	if len(effects) == 0 {
		return
	}
	base := context.WithoutCancel(ctx)
	for _, e := range effects {
		if r.sync {
			r.exec(base, userID, e)
			continue
		}
		r.wg.Add(1)
		go func(e Effect) {
			defer r.wg.Done()
			r.exec(base, userID, e)
		}(e)
	}
}

func (r *effectRunner) exec(ctx context.Context, userID string, e Effect) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("side effect panicked", "effect", e.Name, "user_id", userID, "panic", rec)
			r.metrics.ObserveSideEffect(e.Name, "panic")
		}
	}()

	if err := e.Run(ctx); err != nil {
		r.logger.Warn("side effect failed", "effect", e.Name, "user_id", userID, "error", err)
		r.metrics.ObserveSideEffect(e.Name, "error")
		return
	}
	r.metrics.ObserveSideEffect(e.Name, "ok")
}

func (r *effectRunner) wait() {
	r.wg.Wait()
}
