package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/color-cache/pkg/cache"
	"github.com/Sternrassler/color-cache/pkg/client"
	"github.com/Sternrassler/color-cache/pkg/logging"
	"github.com/Sternrassler/color-cache/pkg/metrics"
	"github.com/Sternrassler/color-cache/pkg/prefetch"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

func main() {
	cfg, err := loadConfig(viper.New(), os.Getenv("COLOR_PROXY_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging)
	logger := logging.NewLogger("color-proxy")

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("Server failed")
		os.Exit(1)
	}
}

func run(cfg Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api, err := client.New(cfg.Client)
	if err != nil {
		return fmt.Errorf("create color api client: %w", err)
	}
	defer api.Close()

	var cacheOpts []cache.Option
	if cfg.Client.Timeout == 0 {
		// no client timeout: keep a hung upstream from pinning a list's load
		cacheOpts = append(cacheOpts, cache.WithLoadTimeout(cfg.RequestTimeout))
	}
	queryCache := cache.New(api, cacheOpts...)

	if len(cfg.Prefetch) > 0 {
		warmer := prefetch.NewWarmer(queryCache, cfg.Warmer)
		go func() {
			if _, err := warmer.Warm(ctx, cfg.Prefetch); err != nil {
				logger.Warn().Err(err).Msg("Prefetch incomplete")
			}
		}()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newMux(queryCache, cfg.RequestTimeout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("base_url", api.BaseURL()).
			Msg("Starting color proxy server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newMux(queryCache *cache.Cache, requestTimeout time.Duration) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /v1/lists", listHandler(queryCache, requestTimeout))
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

type errorBody struct {
	Error string `json:"error"`
	Key   string `json:"key"`
}

// listHandler serves GET /v1/lists?list=<name> from the query cache.
func listHandler(queryCache *cache.Cache, requestTimeout time.Duration) http.HandlerFunc {
	logger := logging.NewLogger("color-proxy")

	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("list")

		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		res := queryCache.GetList(ctx, name)
		if !res.OK() {
			status := http.StatusBadGateway
			if errors.Is(res.Err, context.DeadlineExceeded) {
				status = http.StatusGatewayTimeout
			}
			writeJSON(w, status, errorBody{Error: res.Err.Error(), Key: res.Key.String()}, logger)
			return
		}

		switch {
		case res.Cached:
			w.Header().Set("X-Cache", "HIT")
		case res.Shared:
			w.Header().Set("X-Cache", "SHARED")
		default:
			w.Header().Set("X-Cache", "MISS")
		}
		writeJSON(w, http.StatusOK, res.Collection, logger)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any, logger zerolog.Logger) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to encode response")
		http.Error(w, "encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logger.Warn().Err(err).Msg("Failed to write response")
	}
}
