package prefetch

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Sternrassler/color-cache/pkg/cache"
	"github.com/Sternrassler/color-cache/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var prefetchListsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "colorapi_prefetch_lists_total",
	Help: "Total lists processed by the prefetcher by outcome",
}, []string{"outcome"}) // "loaded", "cached", "failed"

// Config holds warmer configuration
type Config struct {
	// MaxConcurrency is the maximum number of parallel list loads
	MaxConcurrency int
	// Timeout per list load
	Timeout time.Duration
}

// DefaultConfig returns a conservative configuration for the public API
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        15 * time.Second,
	}
}

// Loader is satisfied by *cache.Cache
type Loader interface {
	GetList(ctx context.Context, name string) cache.Result
}

// Report summarizes a Warm call
type Report struct {
	// Loaded lists the names that are now in the cache, sorted
	Loaded []string
	// Failed maps names that could not be loaded to their error
	Failed map[string]error
	// Duration of the whole call
	Duration time.Duration
}

// FailedNames returns the failed list names, sorted
func (r Report) FailedNames() []string {
	names := make([]string, 0, len(r.Failed))
	for name := range r.Failed {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Warmer loads lists through a Loader with a bounded worker pool
type Warmer struct {
	loader Loader
	config Config
	logger zerolog.Logger
}

// NewWarmer creates a new warmer
func NewWarmer(loader Loader, config Config) *Warmer {
	if loader == nil {
		panic("loader cannot be nil")
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}

	return &Warmer{
		loader: loader,
		config: config,
		logger: logging.NewLogger("prefetch"),
	}
}

// Warm loads every distinct name. It returns an error if any list failed
// or ctx ended before all names were dispatched; the report is complete
// for every name that was attempted.
func (w *Warmer) Warm(ctx context.Context, names []string) (Report, error) {
	start := time.Now()

	distinct := slices.Clone(names)
	slices.Sort(distinct)
	distinct = slices.Compact(distinct)

	report := Report{
		Loaded: make([]string, 0, len(distinct)),
		Failed: make(map[string]error),
	}
	if len(distinct) == 0 {
		return report, nil
	}

	w.logger.Info().
		Int("lists", len(distinct)).
		Int("workers", w.config.MaxConcurrency).
		Msg("Starting prefetch")

	queue := make(chan string)
	results := make(chan listResult, len(distinct))

	workers := min(w.config.MaxConcurrency, len(distinct))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go w.worker(ctx, queue, results, &wg, i)
	}

	// Fill queue until done or cancelled
	dispatched := 0
dispatch:
	for _, name := range distinct {
		if ctx.Err() != nil {
			break
		}
		select {
		case queue <- name:
			dispatched++
		case <-ctx.Done():
			break dispatch
		}
	}
	close(queue)

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		if res.err != nil {
			report.Failed[res.name] = res.err
			prefetchListsTotal.WithLabelValues("failed").Inc()
			continue
		}
		report.Loaded = append(report.Loaded, res.name)
		if res.cached {
			prefetchListsTotal.WithLabelValues("cached").Inc()
		} else {
			prefetchListsTotal.WithLabelValues("loaded").Inc()
		}
	}
	slices.Sort(report.Loaded)
	report.Duration = time.Since(start)

	var errs []error
	if dispatched < len(distinct) {
		errs = append(errs, fmt.Errorf("prefetch stopped after %d/%d lists: %w", dispatched, len(distinct), ctx.Err()))
	}
	for _, name := range report.FailedNames() {
		errs = append(errs, fmt.Errorf("list %q: %w", name, report.Failed[name]))
	}

	w.logger.Info().
		Int("loaded", len(report.Loaded)).
		Int("failed", len(report.Failed)).
		Dur("duration", report.Duration).
		Msg("Prefetch complete")

	return report, errors.Join(errs...)
}

type listResult struct {
	name   string
	cached bool
	err    error
}

// worker processes names from the queue
func (w *Warmer) worker(ctx context.Context, queue <-chan string, results chan<- listResult, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()
	processed := 0

	for name := range queue {
		listCtx, cancel := context.WithTimeout(ctx, w.config.Timeout)
		res := w.loader.GetList(listCtx, name)
		cancel()

		if res.Err != nil {
			w.logger.Warn().
				Err(res.Err).
				Int("worker_id", workerID).
				Str("list", name).
				Msg("List prefetch failed")
		}

		// results is buffered for every name, never blocks
		results <- listResult{name: name, cached: res.Cached, err: res.Err}
		processed++
	}

	if processed > 0 {
		w.logger.Debug().
			Int("worker_id", workerID).
			Int("lists_processed", processed).
			Msg("Worker completed")
	}
}
