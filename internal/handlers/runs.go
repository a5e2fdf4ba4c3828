package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lehigh-university-libraries/lyriceval/internal/eval/dataset"
	"github.com/lehigh-university-libraries/lyriceval/internal/eval/metrics"
	"github.com/lehigh-university-libraries/lyriceval/internal/models"
)

func (h *Handler) HandleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, h.runStore.List())
	case "POST":
		var req models.RunRequest
		if !h.readJSON(w, r, &req) {
			return
		}
		if len(req.Songs) == 0 {
			h.writeError(w, "At least one song is required", http.StatusBadRequest)
			return
		}

		results, err := h.evaluator.Run(r.Context(), dataset.Songs(req.Songs), h.workers)
		if err != nil {
			h.writeError(w, "Evaluation failed: "+err.Error(), statusFor(err))
			return
		}

		// The run is complete before it is published to other requests.
		id := uuid.NewString()
		run := &models.EvaluationRun{
			ID:        id,
			CreatedAt: time.Now(),
			Songs:     len(req.Songs),
			Results:   results,
			Summary:   metrics.AggregateSongResults(results, id),
		}
		h.runStore.Add(run)

		w.Header().Set("Location", "/api/runs/"+id)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		h.writeJSON(w, run)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleRunDetail(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimPrefix(r.URL.Path, "/api/runs/")

	run, ok := h.getRunOrError(w, runID)
	if !ok {
		return
	}

	switch r.Method {
	case "GET":
		h.writeJSON(w, run)
	case "DELETE":
		h.runStore.Delete(run.ID)
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
