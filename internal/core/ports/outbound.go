package ports

import (
	"context"
	"io"
	"time"

	"github.com/hhhafather/data-agent/internal/core/domain"
)

// ObjectStorage persists raw uploads. Keys are derived from session id and
// filename, so concurrent sessions never collide on a path.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	ListOlderThan(ctx context.Context, cutoff time.Time) ([]string, error)
}

// TableLoader normalizes a supported upload into a single tabular
// representation. Two-phase spreadsheet loading goes through ListSubSources
// first; Ingest never persists anything.
type TableLoader interface {
	ListSubSources(ctx context.Context, data io.Reader, category domain.FileCategory) ([]string, error)
	Ingest(ctx context.Context, data io.Reader, category domain.FileCategory, subSource string) (*domain.Table, error)
}

// Analyzer is the external analysis collaborator. It returns raw text that is
// expected, but not trusted, to be one JSON object of the result contract.
type Analyzer interface {
	Analyze(ctx context.Context, table *domain.Table, question string) (string, error)
}

// AnalysisCache memoizes analysis outcomes by table fingerprint and literal
// question text. The second return reports whether the result came from an
// unexpired cached entry.
type AnalysisCache interface {
	GetOrCompute(
		ctx context.Context,
		fingerprint domain.TableFingerprint,
		question string,
		compute func(context.Context) (domain.AnalysisResult, error),
	) (domain.AnalysisResult, bool, error)
}

// EventPublisher announces upload lifecycle events for out-of-band cleanup.
type EventPublisher interface {
	PublishUploadStored(ctx context.Context, event domain.UploadStoredEvent) error
}

// EventSubscriber delivers upload lifecycle events to the retention worker.
// Subscribe blocks until ctx is cancelled.
type EventSubscriber interface {
	SubscribeUploadStored(ctx context.Context, handler func(context.Context, domain.UploadStoredEvent) error) error
}
