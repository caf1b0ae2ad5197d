package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/hhhafather/data-agent/internal/core/domain"
	"github.com/hhhafather/data-agent/internal/core/ports"
)

// IngestObserver receives upload handling outcomes. Nil observers are allowed.
type IngestObserver interface {
	RecordIngest(service, category, status string, duration time.Duration)
}

type Router struct {
	sessions       ports.SessionService
	analysis       ports.AnalysisService
	maxUploadBytes int64
	service        string
	ingest         IngestObserver
}

type RouterOptions struct {
	MaxUploadBytes int64
	Service        string
	IngestObserver IngestObserver
}

func NewRouter(sessions ports.SessionService, analysis ports.AnalysisService, options RouterOptions) *Router {
	maxUploadBytes := options.MaxUploadBytes
	if maxUploadBytes <= 0 {
		maxUploadBytes = 64 << 20
	}
	return &Router{
		sessions:       sessions,
		analysis:       analysis,
		maxUploadBytes: maxUploadBytes,
		service:        options.Service,
		ingest:         options.IngestObserver,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/sessions", rt.createSession)
	mux.HandleFunc("/v1/sessions/", rt.sessionScoped)
	return mux
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) createSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	session, err := rt.sessions.Create(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (rt *Router) sessionScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/sessions/")
	sessionID, suffix, _ := strings.Cut(rest, "/")
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session id is required"})
		return
	}

	switch suffix {
	case "":
		rt.getSession(w, r, sessionID)
	case "file":
		switch r.Method {
		case http.MethodPost:
			rt.uploadFile(w, r, sessionID)
		case http.MethodDelete:
			rt.removeFile(w, r, sessionID)
		default:
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		}
	case "sheet":
		rt.selectSheet(w, r, sessionID)
	case "table":
		rt.getTable(w, r, sessionID)
	case "analyze":
		rt.analyze(w, r, sessionID)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func (rt *Router) getSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	session, err := rt.sessions.Get(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (rt *Router) uploadFile(w http.ResponseWriter, r *http.Request, sessionID string) {
	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, rt.maxUploadBytes)

	rawCategory := r.FormValue("category")
	category, err := domain.ParseFileCategory(rawCategory)
	if err != nil {
		rt.recordIngest(rawCategory, "rejected", time.Since(start))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		rt.recordIngest(string(category), "rejected", time.Since(start))
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "upload exceeds size limit"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	session, err := rt.sessions.OnUpload(r.Context(), sessionID, fileHeader.Filename, category, file)
	if err != nil {
		rt.recordIngest(string(category), "error", time.Since(start))
		writeError(w, err)
		return
	}

	rt.recordIngest(string(category), "ok", time.Since(start))
	writeJSON(w, http.StatusOK, session)
}

func (rt *Router) removeFile(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := rt.sessions.OnUploadRemoved(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (rt *Router) selectSheet(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPut {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Sheet string `json:"sheet"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Sheet) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "sheet is required"})
		return
	}

	session, err := rt.sessions.OnSheetSelected(r.Context(), sessionID, req.Sheet)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (rt *Router) getTable(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	table, err := rt.sessions.CurrentTable(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	if table == nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"state":   "no_file",
			"message": "No file uploaded yet. Upload a file to view its table.",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"state": "ready",
		"table": table,
	})
}

type analyzeResponse struct {
	Answer string                   `json:"answer,omitempty"`
	Table  *domain.ResultTable      `json:"table,omitempty"`
	Chart  *domain.ChartPayload     `json:"chart,omitempty"`
	Series *domain.RenderableSeries `json:"series,omitempty"`
	Cached bool                     `json:"cached"`
}

func (rt *Router) analyze(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question string `json:"question"`
		Chart    string `json:"chart"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}
	chart, err := domain.ParseChartKind(req.Chart)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	outcome, err := rt.analysis.Analyze(r.Context(), sessionID, req.Question, chart)
	if err != nil {
		// A question without data is a conversation state, not a failure.
		switch {
		case domain.IsKind(err, domain.ErrNoFile):
			writeJSON(w, http.StatusOK, map[string]string{
				"state":   "no_file",
				"message": "Please upload a file first, then ask your question.",
			})
		case domain.IsKind(err, domain.ErrEmptyTable):
			writeJSON(w, http.StatusOK, map[string]string{
				"state":   "empty_table",
				"message": "The uploaded file has no data rows to analyze.",
			})
		default:
			writeError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		Answer: outcome.Result.Answer,
		Table:  outcome.Result.Table,
		Chart:  outcome.Result.Chart,
		Series: outcome.Series,
		Cached: outcome.Cached,
	})
}

func (rt *Router) recordIngest(category, status string, duration time.Duration) {
	if rt.ingest == nil {
		return
	}
	rt.ingest.RecordIngest(rt.service, category, status, duration)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
