package aggregator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"codebrief/internal/collector"
	"codebrief/internal/model"
)

const (
	// DefaultTaskTimeout bounds a single collector run.
	DefaultTaskTimeout = 60 * time.Second
	// DefaultShutdownGrace bounds the drain wait in Close.
	DefaultShutdownGrace = 30 * time.Second
)

// Aggregator fans out all registered collectors in parallel and merges the
// results of the ones that finish successfully within the per-task deadline.
// One failing or slow source never aborts the batch.
type Aggregator struct {
	collectors    []collector.Collector
	taskTimeout   time.Duration
	shutdownGrace time.Duration
	wg            sync.WaitGroup
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithTaskTimeout overrides the per-collector deadline.
func WithTaskTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.taskTimeout = d
		}
	}
}

// WithShutdownGrace overrides the drain wait used by Close.
func WithShutdownGrace(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.shutdownGrace = d
		}
	}
}

func New(collectors []collector.Collector, opts ...Option) *Aggregator {
	a := &Aggregator{
		collectors:    collectors,
		taskTimeout:   DefaultTaskTimeout,
		shutdownGrace: DefaultShutdownGrace,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type taskResult struct {
	name  string
	items []model.NewsItem
	err   error
}

// CollectAll runs every collector in its own goroutine, each under the task
// deadline, and returns the concatenation of the successful results. Order
// across sources is undefined; order within one source is preserved. The
// merged slice is written only by the calling goroutine.
//
// A collector that ignores its context and overruns the deadline is
// abandoned: the merge stops waiting for it and its eventual result is
// dropped into the buffered channel and discarded.
func (a *Aggregator) CollectAll(ctx context.Context) []model.NewsItem {
	n := len(a.collectors)
	if n == 0 {
		return nil
	}
	slog.Info("aggregator: starting collection", "sources", n)

	// Buffered so abandoned tasks can still send and exit.
	results := make(chan taskResult, n)
	for _, c := range a.collectors {
		c := c
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			taskCtx, cancel := context.WithTimeout(ctx, a.taskTimeout)
			defer cancel()
			items, err := c.Collect(taskCtx)
			results <- taskResult{name: c.Name(), items: items, err: err}
		}()
	}

	// Small slack past the task deadline: well-behaved collectors report a
	// context error themselves before this fires.
	guard := time.NewTimer(a.taskTimeout + 5*time.Second)
	defer guard.Stop()

	var merged []model.NewsItem
	succeeded := 0
	for pending := n; pending > 0; {
		select {
		case r := <-results:
			pending--
			if r.err != nil {
				slog.Error("aggregator: collection task failed", "source", r.name, "err", r.err)
				continue
			}
			succeeded++
			merged = append(merged, r.items...)
		case <-guard.C:
			slog.Error("aggregator: abandoning tasks past deadline", "pending", pending)
			pending = 0
		}
	}
	slog.Info("aggregator: collection finished", "sources_ok", succeeded, "sources", n, "items", len(merged))
	return merged
}

// Close waits for in-flight collector goroutines to wind down, up to the
// shutdown grace. Workers still running after that are left to the runtime;
// their contexts are already expired.
func (a *Aggregator) Close() {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(a.shutdownGrace):
		slog.Warn("aggregator: shutdown grace elapsed with workers still running")
	}
}
