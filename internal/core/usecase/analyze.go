package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hhhafather/data-agent/internal/core/domain"
	"github.com/hhhafather/data-agent/internal/core/ports"
)

// AnalyzeUseCase orchestrates one question: cache lookup, the external
// analysis call on a miss, contract validation, and chart projection. Every
// collaborator fault collapses into the fallback answer; the interaction
// itself never fails once a table is present.
type AnalyzeUseCase struct {
	sessions ports.SessionService
	cache    ports.AnalysisCache
	analyzer ports.Analyzer
	logger   *slog.Logger
	observer AnalysisObserver
}

// AnalysisObserver receives analysis outcomes for metrics. Implementations
// must not block.
type AnalysisObserver interface {
	AnalysisObserved(outcome string)
}

type noopObserver struct{}

func (noopObserver) AnalysisObserved(string) {}

func NewAnalyzeUseCase(
	sessions ports.SessionService,
	cache ports.AnalysisCache,
	analyzer ports.Analyzer,
	logger *slog.Logger,
	observer AnalysisObserver,
) *AnalyzeUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	if observer == nil {
		observer = noopObserver{}
	}
	return &AnalyzeUseCase{
		sessions: sessions,
		cache:    cache,
		analyzer: analyzer,
		logger:   logger,
		observer: observer,
	}
}

func (uc *AnalyzeUseCase) Analyze(
	ctx context.Context,
	sessionID, question string,
	chart domain.ChartKind,
) (*ports.AnalysisOutcome, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "analyze", fmt.Errorf("question is required"))
	}

	table, err := uc.sessions.CurrentTable(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, domain.WrapError(domain.ErrNoFile, "analyze", fmt.Errorf("session %s has no table", sessionID))
	}
	if table.Empty() {
		return nil, domain.WrapError(domain.ErrEmptyTable, "analyze", fmt.Errorf("current table has no rows"))
	}

	result, cached, err := uc.cache.GetOrCompute(ctx, table.Fingerprint(), question, func(ctx context.Context) (domain.AnalysisResult, error) {
		return uc.compute(ctx, table, question), nil
	})
	if err != nil {
		// The compute callback never errors; this guards a cache
		// implementation swap.
		uc.logger.Error("analysis cache failure", "session_id", sessionID, "error", err)
		result = domain.Fallback()
	}

	switch {
	case result.IsFallback():
		uc.observer.AnalysisObserved("fallback")
	case cached:
		uc.observer.AnalysisObserved("cached")
	default:
		uc.observer.AnalysisObserved("computed")
	}

	outcome := &ports.AnalysisOutcome{Result: result, Cached: cached}
	if series, ok := domain.ProjectChart(result, chart); ok {
		outcome.Series = &series
	}
	return outcome, nil
}

// compute always produces a presentable result: call-level faults and
// malformed output both degrade to the fallback answer, which is cached like
// any other result.
func (uc *AnalyzeUseCase) compute(ctx context.Context, table *domain.Table, question string) domain.AnalysisResult {
	raw, err := uc.analyzer.Analyze(ctx, table, question)
	if err != nil {
		uc.logger.Warn("analysis call failed", "error", err)
		return domain.Fallback()
	}

	result, err := domain.ParseAnalysisResult(raw)
	if err != nil {
		uc.logger.Warn("analysis output rejected", "error", err)
	}
	return result
}
