// Package bootstrap wires infrastructure into the use cases for both
// entrypoints. The API and the retention worker share one composition so
// their storage and queue settings cannot drift apart.
package bootstrap

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/hhhafather/data-agent/internal/config"
	"github.com/hhhafather/data-agent/internal/core/ports"
	"github.com/hhhafather/data-agent/internal/core/usecase"
	"github.com/hhhafather/data-agent/internal/infrastructure/cache/memory"
	"github.com/hhhafather/data-agent/internal/infrastructure/llm/openai"
	"github.com/hhhafather/data-agent/internal/infrastructure/loader"
	"github.com/hhhafather/data-agent/internal/infrastructure/queue/nats"
	"github.com/hhhafather/data-agent/internal/infrastructure/resilience"
	"github.com/hhhafather/data-agent/internal/infrastructure/storage/localfs"
	"github.com/hhhafather/data-agent/internal/observability/metrics"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Storage *localfs.Storage
	Queue   *nats.Queue
	Metrics *metrics.HTTPServerMetrics

	Sessions ports.SessionService
	Analysis ports.AnalysisService

	closeFn func()
}

func New(cfg config.Config, logger *slog.Logger, service string) (*App, error) {
	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	analyzer := openai.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, openai.Options{
		Timeout:            time.Duration(cfg.OpenAITimeoutSeconds) * time.Second,
		MaxTokens:          cfg.OpenAIMaxTokens,
		SampleRows:         cfg.AnalysisSampleRows,
		ResilienceExecutor: executor,
	})

	cache := memory.New(time.Duration(cfg.AnalysisCacheTTLSeconds) * time.Second)
	httpMetrics := metrics.NewHTTPServerMetrics(service)

	sessions := usecase.NewSessionStateUseCase(storage, loader.New(), queue, logger)
	analysis := usecase.NewAnalyzeUseCase(sessions, cache, analyzer, logger, &analysisObserver{
		service: service,
		metrics: httpMetrics,
		cache:   cache,
	})

	return &App{
		Config:   cfg,
		Logger:   logger,
		Storage:  storage,
		Queue:    queue,
		Metrics:  httpMetrics,
		Sessions: sessions,
		Analysis: analysis,

		closeFn: func() {
			queue.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

type analysisObserver struct {
	service string
	metrics *metrics.HTTPServerMetrics
	cache   *memory.Cache
}

func (o *analysisObserver) AnalysisObserved(outcome string) {
	o.metrics.RecordAnalysis(o.service, outcome)
	o.metrics.SetCacheEntries(o.cache.Len())
}
