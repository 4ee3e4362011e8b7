package httpapi

import (
	"context"
	"errors"
	"net/http"

	"ghostcheck-engine/internal/pipeline"
)

type PipelineHandler struct {
	RunIngestion      func(ctx context.Context) (pipeline.Result, error)
	RunReverification func(ctx context.Context) (pipeline.SweepResult, error)
	Status            func() pipeline.Status
}

func (h PipelineHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Status())
}

// Run blocks until the ingestion finishes and returns the full result.
// Uses a detached context so a disconnecting client doesn't abort a
// half-done run.
func (h PipelineHandler) Run(w http.ResponseWriter, r *http.Request) {
	res, err := h.RunIngestion(context.Background())
	if errors.Is(err, pipeline.ErrAlreadyRunning) {
		WriteError(w, r, http.StatusConflict, "already_running", err.Error())
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "run_failed", err.Error())
		return
	}
	writeJSON(w, res)
}

func (h PipelineHandler) Reverify(w http.ResponseWriter, r *http.Request) {
	res, err := h.RunReverification(context.Background())
	if errors.Is(err, pipeline.ErrAlreadyRunning) {
		WriteError(w, r, http.StatusConflict, "already_running", err.Error())
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "sweep_failed", err.Error())
		return
	}
	writeJSON(w, res)
}
