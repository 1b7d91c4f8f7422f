// Package main is the entry point for the catalog-console server binary.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"catalog-console/internal/api"
	"catalog-console/internal/client"
	"catalog-console/internal/config"
	"catalog-console/internal/middleware"
	"catalog-console/internal/service"
	"catalog-console/internal/ui"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Warn("could not load .env", "error", err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	backend, err := client.New(client.Config{
		BaseURL:           cfg.Backend.BaseURL,
		TokenURL:          cfg.Backend.OAuthTokenURL,
		ClientID:          cfg.Backend.OAuthClientID,
		ClientSecret:      cfg.Backend.OAuthClientSecret,
		Scope:             cfg.Backend.OAuthScope,
		RequestsPerSecond: cfg.Backend.RequestsPerSecond,
		Burst:             cfg.Backend.Burst,
		RetryMax:          cfg.Backend.RetryMax,
		Timeout:           cfg.Backend.Timeout,
		Logger:            logger,
	})
	if err != nil {
		logger.Error("backend client setup failed", "error", err)
		os.Exit(1)
	}

	tree := service.NewTreeResolver(backend, logger)
	access := service.NewAccessService(backend, logger, cfg.FanOutLimit, cfg.CacheTTL)
	grants := service.NewGrantService(backend, access, logger)

	var refresher *service.StatsRefresher
	if cfg.StatsRefreshSchedule != "" {
		refresher = service.NewStatsRefresher(access, cfg.OrphanSampleLimit, cfg.StatsRefreshSchedule, logger)
		if err := refresher.Start(); err != nil {
			logger.Error("invalid stats refresh schedule", "schedule", cfg.StatsRefreshSchedule, "error", err)
			os.Exit(1)
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))

	apiHandler := api.NewHandler(tree, access, grants, cfg.OrphanSampleLimit, logger)
	r.Route("/api/v1", func(r chi.Router) {
		api.MountRoutes(r, apiHandler)
	})

	uiHandler := ui.NewHandler(tree, access, grants, cfg.OrphanSampleLimit, logger)
	r.Route("/ui", func(r chi.Router) {
		ui.MountRoutes(r, uiHandler)
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui", http.StatusSeeOther)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("console listening", "addr", cfg.ListenAddr, "env", cfg.Env)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
		if refresher != nil {
			<-refresher.Stop().Done()
		}
	}
}
