package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/arena-engine/pkg/arena"
	"github.com/jwebster45206/arena-engine/pkg/queue"
	"github.com/jwebster45206/arena-engine/pkg/storage"
)

// PhaseEnqueuer accepts phase requests for the workers
type PhaseEnqueuer interface {
	EnqueueRequest(ctx context.Context, req *queue.PhaseRequest) error
}

// PhaseNotifier announces queued phases to live viewers
type PhaseNotifier interface {
	PublishPhaseQueued(ctx context.Context, sessionID uuid.UUID, requestID string, phase string) error
}

// SessionLogReader reads and clears the per-session phase history
type SessionLogReader interface {
	Recent(ctx context.Context, sessionID uuid.UUID, limit int) ([]string, error)
	Clear(ctx context.Context, sessionID uuid.UUID) error
}

// CreateSessionRequest defines the request body for starting a session
type CreateSessionRequest struct {
	Comp string `json:"comp"` // Optional: comp filename, defaults to the configured comp
}

// EnqueuePhaseRequest defines the request body for queueing a phase
type EnqueuePhaseRequest struct {
	Phase string `json:"phase"`
}

// EnqueuePhaseResponse is returned when a phase is accepted
type EnqueuePhaseResponse struct {
	RequestID string      `json:"request_id"`
	SessionID uuid.UUID   `json:"session_id"`
	Phase     queue.Phase `json:"phase"`
}

type SessionHandler struct {
	storage     storage.Storage
	queue       PhaseEnqueuer
	notifier    PhaseNotifier
	sessionLog  SessionLogReader
	defaultComp string
	logger      *slog.Logger
}

func NewSessionHandler(logger *slog.Logger, storage storage.Storage, queue PhaseEnqueuer, defaultComp string) *SessionHandler {
	return &SessionHandler{
		storage:     storage,
		queue:       queue,
		defaultComp: defaultComp,
		logger:      logger,
	}
}

// WithNotifier publishes phase.queued events
func (h *SessionHandler) WithNotifier(n PhaseNotifier) *SessionHandler {
	h.notifier = n
	return h
}

// WithSessionLog serves and clears the phase history
func (h *SessionHandler) WithSessionLog(l SessionLogReader) *SessionHandler {
	h.sessionLog = l
	return h
}

// ServeHTTP handles HTTP requests for arena sessions
// Routes:
// POST /v1/sessions               - Start a session from a comp
// GET /v1/sessions/{id}           - Read session state
// DELETE /v1/sessions/{id}        - Delete a session
// POST /v1/sessions/{id}/phases   - Queue a phase for the workers
// GET /v1/sessions/{id}/log       - Recent phase history
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")
	if path == "" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleCreate(w, r)
		return
	}

	parts := strings.Split(path, "/")
	sessionID, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleRead(w, r, sessionID)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.handleDelete(w, r, sessionID)
	case len(parts) == 2 && parts[1] == "phases" && r.Method == http.MethodPost:
		h.handleEnqueue(w, r, sessionID)
	case len(parts) == 2 && parts[1] == "log" && r.Method == http.MethodGet:
		h.handleLog(w, r, sessionID)
	case len(parts) <= 2:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	default:
		writeError(w, h.logger, http.StatusNotFound, "Not found")
	}
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
			return
		}
	}
	compFile := ensureJSONExtension(strings.TrimSpace(req.Comp))
	if compFile == "" {
		compFile = h.defaultComp
	}

	c, err := h.storage.GetComp(r.Context(), compFile)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, h.logger, http.StatusBadRequest, "Comp not found: "+compFile)
			return
		}
		h.logger.Error("Failed to load comp", "comp", compFile, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load comp")
		return
	}

	s := arena.NewSession(c)
	s.Comp = compFile
	s.Health = arena.MaxHealth
	if err := h.storage.SaveSession(r.Context(), s); err != nil {
		h.logger.Error("Failed to save session", "session_id", s.ID.String(), "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save session")
		return
	}

	h.logger.Info("Session created", "session_id", s.ID.String(), "comp", compFile)
	writeJSON(w, h.logger, http.StatusCreated, s)
}

func (h *SessionHandler) load(w http.ResponseWriter, r *http.Request, id uuid.UUID) (*arena.Session, bool) {
	s, err := h.storage.LoadSession(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Session not found")
			return nil, false
		}
		h.logger.Error("Failed to load session", "session_id", id.String(), "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return nil, false
	}
	return s, true
}

func (h *SessionHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	s, ok := h.load(w, r, id)
	if !ok {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s)
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.storage.DeleteSession(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete session", "session_id", id.String(), "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	if h.sessionLog != nil {
		if err := h.sessionLog.Clear(r.Context(), id); err != nil {
			h.logger.Warn("Failed to clear session log", "session_id", id.String(), "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) handleEnqueue(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req EnqueuePhaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	phase, err := queue.ParsePhase(req.Phase)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	if _, ok := h.load(w, r, id); !ok {
		return
	}

	pr := queue.NewPhaseRequest(id, phase)
	if err := h.queue.EnqueueRequest(r.Context(), pr); err != nil {
		h.logger.Error("Failed to enqueue phase", "session_id", id.String(), "phase", phase, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to enqueue phase")
		return
	}
	if h.notifier != nil {
		if err := h.notifier.PublishPhaseQueued(r.Context(), id, pr.RequestID, string(phase)); err != nil {
			h.logger.Warn("Failed to publish queued event", "error", err)
		}
	}

	writeJSON(w, h.logger, http.StatusAccepted, EnqueuePhaseResponse{
		RequestID: pr.RequestID,
		SessionID: id,
		Phase:     phase,
	})
}

func (h *SessionHandler) handleLog(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if h.sessionLog == nil {
		writeJSON(w, h.logger, http.StatusOK, []string{})
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, h.logger, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	lines, err := h.sessionLog.Recent(r.Context(), id, limit)
	if err != nil {
		h.logger.Error("Failed to read session log", "session_id", id.String(), "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to read session log")
		return
	}
	if lines == nil {
		lines = []string{}
	}
	writeJSON(w, h.logger, http.StatusOK, lines)
}
