// The retention worker deletes upload blobs that no session state refers to:
// superseded blobs as soon as their replacement event arrives, and anything
// past the retention window via a periodic sweep.
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

	"github.com/hhhafather/data-agent/internal/bootstrap"
	"github.com/hhhafather/data-agent/internal/config"
	"github.com/hhhafather/data-agent/internal/core/domain"
	"github.com/hhhafather/data-agent/internal/infrastructure/storage/localfs"
	"github.com/hhhafather/data-agent/internal/observability/logging"
	"github.com/hhhafather/data-agent/internal/observability/metrics"
)

const serviceName = "data-agent-worker"

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

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	go serveMetrics(cfg.WorkerMetricsPort, workerMetrics, logger)

	retention := time.Duration(cfg.UploadRetentionHours) * time.Hour
	sweepEvery := time.Duration(cfg.WorkerSweepMinutes) * time.Minute
	go sweepLoop(ctx, app.Storage, workerMetrics, logger, retention, sweepEvery)

	logger.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeUploadStored(ctx, func(handlerCtx context.Context, event domain.UploadStoredEvent) error {
		if event.PreviousKey == "" || event.PreviousKey == event.StorageKey {
			return nil
		}
		err := app.Storage.Delete(handlerCtx, event.PreviousKey)
		workerMetrics.RecordDelete(serviceName, "superseded", err)
		if err != nil {
			return err
		}
		logger.Info("deleted superseded upload",
			"session_id", event.SessionID, "key", event.PreviousKey)
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}

func sweepLoop(
	ctx context.Context,
	storage *localfs.Storage,
	workerMetrics *metrics.WorkerMetrics,
	logger *slog.Logger,
	retention time.Duration,
	every time.Duration,
) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep(ctx, storage, workerMetrics, logger, retention)
		}
	}
}

func sweep(
	ctx context.Context,
	storage *localfs.Storage,
	workerMetrics *metrics.WorkerMetrics,
	logger *slog.Logger,
	retention time.Duration,
) {
	start := time.Now()
	keys, err := storage.ListOlderThan(ctx, start.Add(-retention))
	if err != nil {
		workerMetrics.RecordSweep(serviceName, 0, time.Since(start), err)
		logger.Error("retention sweep failed", "error", err)
		return
	}

	removed := 0
	for _, key := range keys {
		deleteErr := storage.Delete(ctx, key)
		workerMetrics.RecordDelete(serviceName, "expired", deleteErr)
		if deleteErr != nil {
			logger.Warn("failed to delete expired upload", "key", key, "error", deleteErr)
			continue
		}
		removed++
	}

	workerMetrics.RecordSweep(serviceName, removed, time.Since(start), nil)
	if removed > 0 {
		logger.Info("retention sweep removed uploads", "count", removed)
	}
}

func serveMetrics(port string, workerMetrics *metrics.WorkerMetrics, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", workerMetrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	logger.Info("worker metrics listening", "port", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		logger.Error("worker metrics server error", "error", err)
	}
}
