package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/lyriceval/internal/evaluation"
	"github.com/lehigh-university-libraries/lyriceval/internal/models"
	"github.com/lehigh-university-libraries/lyriceval/internal/rhyme"
	"github.com/lehigh-university-libraries/lyriceval/internal/storage"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 8 << 20

type Handler struct {
	runStore  *storage.RunStore
	evaluator *evaluation.Evaluator
	workers   int
}

// New creates the API handlers around ev. workers bounds concurrent songs
// per run request.
func New(ev *evaluation.Evaluator, workers int) *Handler {
	if workers < 1 {
		workers = 1
	}
	return &Handler{
		runStore:  storage.New(),
		evaluator: ev,
		workers:   workers,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// readJSON decodes the request body into v, answering 400 on failure.
func (h *Handler) readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// statusFor maps evaluation errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, rhyme.ErrLengthMismatch), errors.Is(err, rhyme.ErrTooManyClasses):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

// Run helpers
func (h *Handler) getRunOrError(w http.ResponseWriter, runID string) (*models.EvaluationRun, bool) {
	run, exists := h.runStore.Get(runID)
	if !exists {
		h.writeError(w, "Run not found", http.StatusNotFound)
		return nil, false
	}
	return run, true
}
