package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/hhhafather/data-agent/internal/adapters/http"
	"github.com/hhhafather/data-agent/internal/bootstrap"
	"github.com/hhhafather/data-agent/internal/config"
	"github.com/hhhafather/data-agent/internal/observability/logging"
)

const serviceName = "data-agent-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(cfg, logger, serviceName)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	router := httpadapter.NewRouter(app.Sessions, app.Analysis, httpadapter.RouterOptions{
		MaxUploadBytes: cfg.MaxUploadBytes,
		Service:        serviceName,
		IngestObserver: app.Metrics,
	}).Handler()

	handler := app.Metrics.Middleware(serviceName, router)
	handler = httpadapter.BackpressureMiddleware(handler, cfg.APIMaxConcurrent, 100*time.Millisecond)
	handler = httpadapter.RateLimitMiddleware(handler, cfg.APIRateLimitRPS, cfg.APIRateLimitBurst)
	handler = httpadapter.AccessLogMiddleware(logger, handler)
	handler = httpadapter.RequestIDMiddleware(handler)

	mux := http.NewServeMux()
	mux.Handle("/metrics", app.Metrics.Handler())
	mux.Handle("/", handler)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown error", "error", err)
	}
}
