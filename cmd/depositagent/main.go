// depositagent serves the deposit account opening dialogue over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/tbxark/depositagent/agent"
	"github.com/tbxark/depositagent/cache"
	"github.com/tbxark/depositagent/config"
	"github.com/tbxark/depositagent/extract"
	"github.com/tbxark/depositagent/metrics"
	"github.com/tbxark/depositagent/server"
)

const purgeInterval = 10 * time.Minute

func main() {
	path := flag.String("config", "config.json", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*path)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped successfully")
}

func run(ctx context.Context, cfg *config.Config) error {
	core, err := openCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := core.Close(); closeErr != nil {
			slog.Error("Failed to close session cache", "error", closeErr)
		}
	}()
	slog.Info("Session store ready", "store", cfg.Store, "session_ttl", cfg.SessionTTL)

	extractor, err := newExtractor(ctx, cfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	engine := agent.NewEngine(
		agent.NewCacheSessionStore(core, cfg.SessionTTL),
		extractor,
		agent.WithMetrics(metrics.New(reg)),
		agent.WithExtractionTimeout(cfg.ExtractionTimeout),
		agent.WithTrimmer(agent.KeepSystemLastNTrimmer{N: cfg.HistoryWindow}),
	)

	opts := []server.Option{
		server.WithCORSOrigins(cfg.CORSOrigins...),
		server.WithGatherer(reg),
	}
	if p, ok := core.(server.Pinger); ok {
		opts = append(opts, server.WithHealthCheck(p))
	}
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.New(engine, opts...).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Extraction may take up to the configured timeout.
		WriteTimeout: cfg.ExtractionTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func openCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.Store {
	case config.StoreRedis:
		return cache.NewRedisCache(ctx, cfg.RedisURL)
	case config.StoreSQLite:
		c, err := cache.NewSQLiteCache(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		go purgeExpired(ctx, c)
		return c, nil
	default:
		return cache.NewMemoryCache(), nil
	}
}

// purgeExpired drops expired rows until ctx is done. Reads already ignore
// them, this only reclaims space.
func purgeExpired(ctx context.Context, c *cache.SQLiteCache) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := c.Purge(ctx)
			if err != nil {
				slog.Warn("Failed to purge expired sessions", "error", err)
				continue
			}
			if n > 0 {
				slog.Debug("Purged expired sessions", "count", n)
			}
		}
	}
}

// newExtractor builds the LLM extraction pipeline: forced tool call first, the
// fenced-JSON text reply as fallback, both behind a circuit breaker. It returns
// nil when no model is configured.
func newExtractor(ctx context.Context, cfg *config.Config) (extract.Extractor, error) {
	if !cfg.LLMEnabled() {
		slog.Warn("No chat model configured, extraction disabled")
		return nil, nil
	}
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		BaseURL: cfg.LLM.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	toolBased, err := extract.NewToolBasedExtractor(cm)
	if err != nil {
		return nil, err
	}
	settings := extract.DefaultBreakerSettings()
	settings.MinRequests = cfg.Breaker.MinRequests
	settings.FailureRatio = cfg.Breaker.FailureRatio
	settings.Timeout = cfg.Breaker.Timeout
	slog.Info("Extraction enabled", "model", cfg.LLM.Model)
	return extract.NewBreakerExtractor(
		extract.NewFailbackExtractor(toolBased, extract.NewTextExtractor(cm)),
		settings,
	), nil
}
