// Package main is the entry point for the preparation analysis service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/prepcheck/internal/analysis"
	"github.com/Faultbox/prepcheck/internal/config"
	"github.com/Faultbox/prepcheck/internal/httpapi"
	"github.com/Faultbox/prepcheck/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== prepcheck server ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	engine := analysis.New(
		analysis.Options{Parallel: cfg.Analysis.Parallel},
		logger.With(zap.String("component", "engine")),
	)
	handler := httpapi.New(engine, logger.With(zap.String("component", "http")), httpapi.Options{
		MaxBodyBytes:  cfg.Server.MaxUploadBytes(),
		AllowedOrigin: cfg.Server.AllowedOrigin,
	})
	srv := httpapi.NewServer(cfg.Server.Addr, handler.Routes(),
		cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, logger.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}

	logger.Info("server stopped")
}
