// Package refresh re-runs a fetch whenever its input period changes and
// keeps only the most recent answer. Each trigger starts a new generation and
// cancels the one before it; results from an older generation are dropped
// even when they arrive last.
package refresh

import (
	"context"
	"log/slog"
	"sync"

	"github.com/derickschaefer/aquarius/internal/observability"
	"github.com/derickschaefer/aquarius/internal/period"
)

// FetchFunc loads the view for a period.
type FetchFunc[T any] func(ctx context.Context, period string) (T, error)

// ApplyFunc receives the outcome of the current generation.
type ApplyFunc[T any] func(period string, result T, err error)

// Refresher runs a FetchFunc per trigger and applies only results of the
// latest generation. The zero value is not usable; call New.
type Refresher[T any] struct {
	parent  context.Context
	fetch   FetchFunc[T]
	apply   ApplyFunc[T]
	logger  *slog.Logger
	metrics *observability.Metrics

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New returns a Refresher whose fetches derive from ctx. metrics may be nil.
// apply runs with the refresher locked and must not call Trigger.
func New[T any](ctx context.Context, fetch FetchFunc[T], apply ApplyFunc[T], logger *slog.Logger, metrics *observability.Metrics) *Refresher[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher[T]{
		parent:  ctx,
		fetch:   fetch,
		apply:   apply,
		logger:  logger,
		metrics: metrics,
	}
}

// Trigger starts a fetch for p and supersedes any fetch in flight. It
// returns the generation assigned to the request.
func (r *Refresher[T]) Trigger(p string) uint64 {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.gen++
	gen := r.gen
	ctx, cancel := context.WithCancel(r.parent)
	r.cancel = cancel
	r.wg.Add(1)
	r.mu.Unlock()

	go r.run(ctx, cancel, gen, p)
	return gen
}

func (r *Refresher[T]) run(ctx context.Context, cancel context.CancelFunc, gen uint64, p string) {
	defer r.wg.Done()
	defer cancel()

	result, err := r.fetch(ctx, p)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		r.logger.Debug("discarding stale refresh", "generation", gen, "current", r.gen, "period", p)
		if r.metrics != nil {
			r.metrics.RefreshStale.Inc()
		}
		return
	}
	if r.metrics != nil {
		r.metrics.RefreshApplied.Inc()
	}
	r.apply(p, result, err)
}

// Generation returns the generation of the most recent trigger.
func (r *Refresher[T]) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}

// Wait blocks until every started fetch has returned.
func (r *Refresher[T]) Wait() {
	r.wg.Wait()
}

// Stop cancels the fetch in flight and waits for it to finish. Its result,
// if any, is discarded.
func (r *Refresher[T]) Stop() {
	r.mu.Lock()
	r.gen++
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Unlock()
	r.wg.Wait()
}

// Bind triggers a refresh on every change of s. The returned function
// unsubscribes.
func (r *Refresher[T]) Bind(s *period.Store) (cancel func()) {
	return s.Subscribe(func(p string) {
		r.Trigger(p)
	})
}
