package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"innovation-events/internal/aggregator"
	"innovation-events/internal/board"
	"innovation-events/internal/cache"
	"innovation-events/internal/capture"
	"innovation-events/internal/config"
	"innovation-events/internal/eventbrite"
	"innovation-events/internal/logger"
	"innovation-events/internal/metrics"
	"innovation-events/internal/roster"
	"innovation-events/internal/web"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log := logger.New(cfg.LogLevel)
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	organizers, err := roster.Load(ctx, cfg, os.Getenv)
	if err != nil {
		return fmt.Errorf("loading roster: %w", err)
	}
	log.Info("roster loaded", "source", cfg.Roster.Source, "organizers", len(organizers))
	if cfg.Eventbrite.Token == "" {
		log.Warn("EVENTBRITE_TOKEN is not set; requests will be rejected")
	}

	client := eventbrite.NewClient(cfg.Eventbrite.APIBase, cfg.Eventbrite.Token,
		eventbrite.WithTimeout(cfg.Eventbrite.Timeout),
		eventbrite.WithLogger(log),
		eventbrite.WithMetrics(m),
	)
	agg := aggregator.New(client,
		aggregator.WithMaxConcurrency(cfg.Aggregation.MaxConcurrency),
		aggregator.WithBudget(cfg.Aggregation.Budget),
		aggregator.WithLogger(log),
		aggregator.WithMetrics(m),
	)
	b := board.New(organizers, agg, cache.New(cfg.CacheTTL),
		board.WithLogger(log),
		board.WithMetrics(m),
	)

	opts := []web.Option{web.WithLogger(log), web.WithMetrics(m)}
	if cfg.Preview.Enabled {
		c := capture.New(capture.Options{
			Width:      cfg.Preview.Width,
			Height:     cfg.Preview.Height,
			ChromePath: os.Getenv("CHROME_PATH"),
		})
		opts = append(opts, web.WithPreview(c, localURL(cfg.Listen)))
	}
	mux := http.NewServeMux()
	web.New(b, opts...).RegisterRoutes(mux)

	if cfg.RefreshEnabled() {
		sched := cron.New()
		if _, err := sched.AddFunc(cfg.Refresh, func() {
			if _, err := b.Retry(ctx); err != nil && !errors.Is(err, board.ErrSuperseded) {
				log.Error("scheduled refresh failed", "err", err)
			}
		}); err != nil {
			return fmt.Errorf("scheduling refresh: %w", err)
		}
		sched.Start()
		defer sched.Stop()
		log.Info("refresh scheduled", "cron", cfg.Refresh)
	}

	// Warm the cache without blocking startup.
	go func() {
		if _, err := b.Snapshot(ctx); err != nil {
			log.Error("initial load failed", "err", err)
		}
	}()

	srv := &http.Server{Addr: cfg.Listen, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// localURL is the address the preview browser uses to reach this server.
func localURL(listen string) string {
	if strings.HasPrefix(listen, ":") {
		return "http://127.0.0.1" + listen + "/"
	}
	return "http://" + listen + "/"
}
