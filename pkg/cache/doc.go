// Package cache provides the memoizing query cache for the color naming API.
//
// The cache maps a query key (derived from a list name) to an ordered
// colors.Collection. Each distinct key is fetched from the network at most
// once per Cache; every later request is served from memory.
//
// - Deterministic key derivation ("/v1/?list=<name>")
// - Single in-flight fetch per key, shared by concurrent callers
// - First successful result is stored and never replaced
// - Failed fetches are not stored; the next call retries the network
// - Typed results instead of panics or swallowed errors
// - Prometheus metrics for observability
//
// # Basic Usage
//
//	// Create the HTTP adapter
//	api, err := client.New(client.DefaultConfig())
//	if err != nil {
//		return err
//	}
//
//	// Create the cache
//	c := cache.New(api)
//
//	// Load a list
//	res := c.GetList(ctx, "bestOf")
//	if !res.OK() {
//		return res.Err
//	}
//	for name, attrs := range res.Collection.All() {
//		fmt.Println(name, attrs["hex"])
//	}
//
// # Errors
//
// Result.Err is a *client.TransportError when the request failed, a
// *MalformedResponseError when the body has the wrong shape, or the
// caller's context error when it stopped waiting.
//
//	var malformed *cache.MalformedResponseError
//	if errors.As(res.Err, &malformed) {
//		// API changed shape
//	}
//
// # Metrics
//
// The cache exports Prometheus metrics:
//
//   - colorapi_cache_hits_total - Lists served from memory
//   - colorapi_cache_misses_total - Lookups that needed a load
//   - colorapi_cache_shared_total - Loads shared by concurrent callers
//   - colorapi_cache_load_errors_total{reason} - Failed loads
//   - colorapi_cache_entries - Lists held in memory
package cache
