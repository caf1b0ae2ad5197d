package ports

import (
	"context"
	"io"

	"github.com/hhhafather/data-agent/internal/core/domain"
)

// SessionService is the inbound contract for the session file-state lifecycle.
type SessionService interface {
	Create(ctx context.Context) (*domain.Session, error)
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	OnUpload(ctx context.Context, sessionID, filename string, category domain.FileCategory, data io.Reader) (*domain.Session, error)
	OnSheetSelected(ctx context.Context, sessionID, sheet string) (*domain.Session, error)
	OnUploadRemoved(ctx context.Context, sessionID string) (*domain.Session, error)
	CurrentTable(ctx context.Context, sessionID string) (*domain.Table, error)
}

// AnalysisOutcome is the user-facing product of one question.
type AnalysisOutcome struct {
	Result domain.AnalysisResult    `json:"result"`
	Series *domain.RenderableSeries `json:"series,omitempty"`
	Cached bool                     `json:"cached"`
}

// AnalysisService answers one question against the session's current table.
type AnalysisService interface {
	Analyze(ctx context.Context, sessionID, question string, chart domain.ChartKind) (*AnalysisOutcome, error)
}
