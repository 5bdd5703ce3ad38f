package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/arena-engine/pkg/storage"
)

type CompHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewCompHandler(logger *slog.Logger, storage storage.Storage) *CompHandler {
	return &CompHandler{
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP handles composition reads
// Routes:
// GET /v1/comps            - Map of comp name to file name
// GET /v1/comps/{filename} - One composition
func (h *CompHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	filename := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/comps"), "/")
	if filename == "" {
		comps, err := h.storage.ListComps(r.Context())
		if err != nil {
			h.logger.Error("Failed to list comps", "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to list comps")
			return
		}
		writeJSON(w, h.logger, http.StatusOK, comps)
		return
	}

	c, err := h.storage.GetComp(r.Context(), ensureJSONExtension(filename))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Comp not found")
			return
		}
		h.logger.Error("Failed to load comp", "filename", filename, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load comp")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, c)
}

// ensureJSONExtension adds .json extension if not present
func ensureJSONExtension(s string) string {
	if s == "" {
		return ""
	}
	if !strings.HasSuffix(s, ".json") {
		return s + ".json"
	}
	return s
}
