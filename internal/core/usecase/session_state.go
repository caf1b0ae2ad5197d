package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hhhafather/data-agent/internal/core/domain"
	"github.com/hhhafather/data-agent/internal/core/ports"
)

// SessionStateUseCase owns the per-session file lifecycle: persist-then-ingest
// on new uploads, cached-table reuse on re-renders, one re-ingestion per sheet
// change. Sessions live for the process lifetime only.
type SessionStateUseCase struct {
	storage ports.ObjectStorage
	loader  ports.TableLoader
	events  ports.EventPublisher
	logger  *slog.Logger
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

// sessionEntry serializes interactions within one session; the registry map
// only guards lookup and insertion.
type sessionEntry struct {
	mu      sync.Mutex
	session *domain.Session
}

func NewSessionStateUseCase(
	storage ports.ObjectStorage,
	loader ports.TableLoader,
	events ports.EventPublisher,
	logger *slog.Logger,
) *SessionStateUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStateUseCase{
		storage:  storage,
		loader:   loader,
		events:   events,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*sessionEntry),
	}
}

// WithClock overrides the time source for tests.
func (uc *SessionStateUseCase) WithClock(now func() time.Time) *SessionStateUseCase {
	uc.now = now
	return uc
}

func (uc *SessionStateUseCase) Create(_ context.Context) (*domain.Session, error) {
	now := uc.now().UTC()
	session := &domain.Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	uc.mu.Lock()
	uc.sessions[session.ID] = &sessionEntry{session: session}
	uc.mu.Unlock()

	return snapshot(session), nil
}

func (uc *SessionStateUseCase) Get(_ context.Context, sessionID string) (*domain.Session, error) {
	entry, err := uc.entry(sessionID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return snapshot(entry.session), nil
}

func (uc *SessionStateUseCase) OnUpload(
	ctx context.Context,
	sessionID, filename string,
	category domain.FileCategory,
	data io.Reader,
) (*domain.Session, error) {
	entry, err := uc.entry(sessionID)
	if err != nil {
		return nil, err
	}

	if !category.Accepts(filename) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", fmt.Errorf("%q is not a %s file", filename, category))
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	session := entry.session

	// Same name means the UI re-rendered the same upload; the cached table
	// stays and nothing is re-persisted or re-parsed.
	if session.CurrentFileName == filename && session.Category == category {
		return snapshot(session), nil
	}

	key := uploadKey(sessionID, filename)
	previousKey := session.StorageKey

	if err := uc.storage.Save(ctx, key, data); err != nil {
		return nil, domain.WrapError(domain.ErrLoad, "persist upload", err)
	}

	var sheets []string
	selected := ""
	if category.HasSubSources() {
		sheets, err = uc.listSheets(ctx, key, category)
		if err != nil {
			session.ClearUpload()
			return nil, err
		}
		// Remembered sheet name survives across uploads when the new
		// enumeration still contains it.
		if slices.Contains(sheets, session.SelectedSheet) {
			selected = session.SelectedSheet
		} else {
			selected = sheets[0]
		}
	}

	table, err := uc.ingest(ctx, key, category, selected)
	if err != nil {
		session.ClearUpload()
		return nil, err
	}

	session.CurrentFileName = filename
	session.Category = category
	session.StorageKey = key
	session.SheetNames = sheets
	session.SelectedSheet = selected
	session.Table = table
	session.UpdatedAt = uc.now().UTC()

	uc.publishStored(ctx, domain.UploadStoredEvent{
		SessionID:   sessionID,
		StorageKey:  key,
		PreviousKey: previousKey,
		StoredAt:    session.UpdatedAt,
	})

	return snapshot(session), nil
}

func (uc *SessionStateUseCase) OnSheetSelected(ctx context.Context, sessionID, sheet string) (*domain.Session, error) {
	entry, err := uc.entry(sessionID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	session := entry.session

	if !session.HasFile() {
		return nil, domain.WrapError(domain.ErrNoFile, "select sheet", fmt.Errorf("session %s has no upload", sessionID))
	}
	if !session.Category.HasSubSources() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "select sheet", fmt.Errorf("%s uploads have no sheets", session.Category))
	}
	if !slices.Contains(session.SheetNames, sheet) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "select sheet", fmt.Errorf("unknown sheet %q", sheet))
	}
	if sheet == session.SelectedSheet {
		return snapshot(session), nil
	}

	table, err := uc.ingest(ctx, session.StorageKey, session.Category, sheet)
	if err != nil {
		session.Table = nil
		return nil, err
	}

	session.SelectedSheet = sheet
	session.Table = table
	session.UpdatedAt = uc.now().UTC()
	return snapshot(session), nil
}

func (uc *SessionStateUseCase) OnUploadRemoved(_ context.Context, sessionID string) (*domain.Session, error) {
	entry, err := uc.entry(sessionID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	entry.session.ClearUpload()
	entry.session.UpdatedAt = uc.now().UTC()
	return snapshot(entry.session), nil
}

func (uc *SessionStateUseCase) CurrentTable(_ context.Context, sessionID string) (*domain.Table, error) {
	entry, err := uc.entry(sessionID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.session.Table, nil
}

func (uc *SessionStateUseCase) entry(sessionID string) (*sessionEntry, error) {
	uc.mu.RLock()
	entry, ok := uc.sessions[sessionID]
	uc.mu.RUnlock()
	if !ok {
		return nil, domain.WrapError(domain.ErrSessionNotFound, "lookup session", fmt.Errorf("id %q", sessionID))
	}
	return entry, nil
}

func (uc *SessionStateUseCase) listSheets(ctx context.Context, key string, category domain.FileCategory) ([]string, error) {
	reader, err := uc.storage.Open(ctx, key)
	if err != nil {
		return nil, domain.WrapError(domain.ErrLoad, "open upload", err)
	}
	defer reader.Close()

	sheets, err := uc.loader.ListSubSources(ctx, reader, category)
	if err != nil {
		return nil, err
	}
	if len(sheets) == 0 {
		return nil, domain.WrapError(domain.ErrNoSubSource, "enumerate sheets", fmt.Errorf("workbook has no sheets"))
	}
	return sheets, nil
}

func (uc *SessionStateUseCase) ingest(ctx context.Context, key string, category domain.FileCategory, sheet string) (*domain.Table, error) {
	reader, err := uc.storage.Open(ctx, key)
	if err != nil {
		return nil, domain.WrapError(domain.ErrLoad, "open upload", err)
	}
	defer reader.Close()

	return uc.loader.Ingest(ctx, reader, category, sheet)
}

func (uc *SessionStateUseCase) publishStored(ctx context.Context, event domain.UploadStoredEvent) {
	if uc.events == nil {
		return
	}
	if err := uc.events.PublishUploadStored(ctx, event); err != nil {
		// Cleanup is best effort; a lost event only delays reclamation
		// until the age-based sweep.
		uc.logger.Warn("publish upload event failed", "session_id", event.SessionID, "error", err)
	}
}

// snapshot copies the mutable session fields so callers never observe a
// half-replaced record. The table pointer is shared safely: tables are
// replaced wholesale, never mutated.
func snapshot(session *domain.Session) *domain.Session {
	clone := *session
	clone.SheetNames = slices.Clone(session.SheetNames)
	return &clone
}

func uploadKey(sessionID, filename string) string {
	return fmt.Sprintf("%s_%s", sessionID, sanitizeFilename(filename))
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "upload.bin"
	}
	return base
}
