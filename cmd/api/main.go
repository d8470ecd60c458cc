package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"convo-insights-go/internal/api"
	"convo-insights-go/internal/config"
	"convo-insights-go/internal/dashboard"
	"convo-insights-go/internal/escalation"
	"convo-insights-go/internal/logger"
	"convo-insights-go/internal/store"
	"convo-insights-go/internal/types"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	log.WithField("service", "convo-insights-go").
		WithField("source", cfg.Source.Kind).
		Info("starting service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, closeSrc, err := store.Open(ctx, cfg.Source)
	if err != nil {
		log.WithError(err).Fatal("failed to open source")
	}
	defer closeSrc() //nolint:errcheck

	roles, err := escalation.LoadRoles(cfg.Roles.Path)
	if err != nil {
		log.WithError(err).Fatal("failed to load roles")
	}
	log.WithField("roles_path", cfg.Roles.Path).WithField("mapped", roles.Len()).Info("roles loaded")

	// already validated
	metric, _ := escalation.ParseMetric(cfg.Dashboard.Metric)
	win, _ := types.ParseWindow(cfg.Dashboard.Window)

	srv := api.New(log, func(ctx context.Context) ([]types.ConversationRow, error) {
		return store.LoadRows(ctx, src, cfg.Since(time.Now().UTC()))
	}, api.Options{
		Roles:          roles,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Defaults: dashboard.Options{
			Window:        win,
			Metric:        metric,
			Settings:      cfg.Settings(),
			AgentLimit:    cfg.Dashboard.AgentLimit,
			ReasonLimit:   cfg.Dashboard.ReasonLimit,
			ToxicityLimit: cfg.Dashboard.ToxicityLimit,
			TipLimit:      cfg.Dashboard.TipLimit,
		},
	})

	if _, err := srv.Reload(ctx); err != nil {
		log.WithError(err).Fatal("failed to load dataset")
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("addr", addr).Info("listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server terminated")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
}
