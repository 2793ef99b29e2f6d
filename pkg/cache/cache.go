package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/color-cache/pkg/colors"
	"github.com/Sternrassler/color-cache/pkg/logging"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Fetcher retrieves a raw API body for a request path.
// *client.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, path string) ([]byte, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, path string) ([]byte, error) {
	return f(ctx, path)
}

// Option configures a Cache.
type Option func(*Cache)

// WithStore replaces the cache's private MemoryStore.
func WithStore(store Store) Option {
	return func(c *Cache) {
		c.store = store
	}
}

// WithLogger sets the logger used for load results.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithLoadTimeout bounds each shared load. Loads run detached from the
// callers' contexts, so without a bound here or in the Fetcher a stuck
// upstream holds the key's load slot indefinitely.
func WithLoadTimeout(d time.Duration) Option {
	return func(c *Cache) {
		c.loadTimeout = d
	}
}

// Cache memoizes color lists per query key. At most one fetch per key is
// outstanding at any time; concurrent callers for the same key share it.
// Successful results are stored for the lifetime of the Cache and never
// replaced. Failed loads leave no trace, so the next call fetches again.
type Cache struct {
	fetcher Fetcher
	store   Store
	group   singleflight.Group
	logger  zerolog.Logger

	loadTimeout time.Duration
}

// New creates a cache that loads through fetcher.
func New(fetcher Fetcher, opts ...Option) *Cache {
	if fetcher == nil {
		panic("fetcher cannot be nil")
	}

	c := &Cache{
		fetcher: fetcher,
		store:   NewMemoryStore(),
		logger:  logging.NewLogger("query-cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		panic("store cannot be nil")
	}
	return c
}

// GetList returns the color list with the given name ("" selects the
// default list). It never panics; failures are reported in Result.Err.
func (c *Cache) GetList(ctx context.Context, name string) Result {
	return c.Get(ctx, ListKey(name))
}

// Get returns the collection for key, loading it on first use.
//
// A stored collection is returned without any network call. Otherwise the
// caller joins or starts the single in-flight load for key. The load runs
// detached from the caller's cancellation so that other waiters are not
// affected; a caller whose ctx ends first gets ctx's error back while the
// load carries on.
func (c *Cache) Get(ctx context.Context, key QueryKey) Result {
	if coll, ok := c.store.Get(key); ok {
		CacheHits.Inc()
		c.logger.Debug().Str("key", key.String()).Msg("Cache hit")
		return Result{Key: key, Collection: coll, Cached: true}
	}

	CacheMisses.Inc()
	c.logger.Debug().Str("key", key.String()).Msg("Cache miss")

	if err := ctx.Err(); err != nil {
		CacheLoadErrors.WithLabelValues("canceled").Inc()
		return Result{Key: key, Err: err}
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key.String(), func() (any, error) {
		loadCtx := detached
		if c.loadTimeout > 0 {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithTimeout(detached, c.loadTimeout)
			defer cancel()
		}
		return c.load(loadCtx, key)
	})

	select {
	case <-ctx.Done():
		CacheLoadErrors.WithLabelValues("canceled").Inc()
		c.logger.Debug().
			Err(ctx.Err()).
			Str("key", key.String()).
			Msg("Caller gave up waiting for load")
		return Result{Key: key, Err: ctx.Err()}

	case res := <-ch:
		if res.Shared {
			CacheShared.Inc()
		}
		if res.Err != nil {
			return Result{Key: key, Err: res.Err, Shared: res.Shared}
		}
		return Result{Key: key, Collection: res.Val.(*colors.Collection), Shared: res.Shared}
	}
}

// load fetches, normalizes and stores the list for key. It runs at most
// once concurrently per key. A panic in the fetcher is turned into an error
// so that it reaches every waiter instead of crashing the process.
func (c *Cache) load(ctx context.Context, key QueryKey) (coll *colors.Collection, err error) {
	defer func() {
		if r := recover(); r != nil {
			CacheLoadErrors.WithLabelValues("panic").Inc()
			c.logger.Error().
				Str("key", key.String()).
				Interface("panic", r).
				Msg("Color list load panicked")
			coll = nil
			err = fmt.Errorf("color list load for %s panicked: %v", key, r)
		}
	}()

	// a previous load may have finished between the caller's lookup and now
	if stored, ok := c.store.Get(key); ok {
		return stored, nil
	}

	start := time.Now()

	body, err := c.fetcher.Fetch(ctx, key.Path())
	if err != nil {
		CacheLoadErrors.WithLabelValues("transport").Inc()
		c.logger.Warn().
			Err(err).
			Str("key", key.String()).
			Dur("duration", time.Since(start)).
			Msg("Failed to fetch color list")
		return nil, err
	}

	coll, err = Normalize(body)
	if err != nil {
		var malformed *MalformedResponseError
		if errors.As(err, &malformed) {
			malformed.Key = key
		}
		CacheLoadErrors.WithLabelValues("malformed").Inc()
		c.logger.Warn().
			Err(err).
			Str("key", key.String()).
			Int("bytes", len(body)).
			Msg("Malformed color list response")
		return nil, err
	}

	stored, inserted := c.store.PutIfAbsent(key, coll)
	if inserted {
		CacheEntries.Inc()
	}

	c.logger.Info().
		Str("key", key.String()).
		Int("colors", stored.Len()).
		Dur("duration", time.Since(start)).
		Msg("Color list loaded")

	return stored, nil
}

// Lookup returns the stored list with the given name without fetching.
func (c *Cache) Lookup(name string) (*colors.Collection, bool) {
	return c.store.Get(ListKey(name))
}

// Len returns the number of stored lists.
func (c *Cache) Len() int {
	return c.store.Len()
}

// Keys returns the keys of all stored lists.
func (c *Cache) Keys() []QueryKey {
	return c.store.Keys()
}
