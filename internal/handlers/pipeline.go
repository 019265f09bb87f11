package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"dupe-checker/internal/logging"
	"dupe-checker/internal/pipeline"
)

// ImportRequest starts an import.
type ImportRequest struct {
	Path string `json:"path"`
}

// RunResponse acknowledges a started pipeline.
type RunResponse struct {
	Status string `json:"status"`
	RunID  string `json:"runId"`
}

// StatusResponse reports the status line and both pipelines.
type StatusResponse struct {
	Status       string               `json:"status"`
	LastError    string               `json:"lastError,omitempty"`
	Import       pipeline.Status      `json:"import"`
	Preview      pipeline.Status      `json:"preview"`
	Stats        pipeline.ImportStats `json:"stats"`
	Duplicates   int                  `json:"duplicates"`
	PreviewIndex int                  `json:"previewIndex"`
}

// StartImport begins ingesting the CSV named in the request body.
func (h *Handlers) StartImport(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	runID, err := h.manager.StartImport(strings.TrimSpace(req.Path))
	switch {
	case errors.Is(err, pipeline.ErrEmptyPath):
		writeJSONError(w, "Path is required", http.StatusBadRequest)
		return
	case errors.Is(err, pipeline.ErrAlreadyRunning):
		writeJSONError(w, "Import already running", http.StatusConflict)
		return
	case err != nil:
		logging.Error("Failed to start import: %v", err)
		writeJSONError(w, "Failed to start import", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, RunResponse{Status: "started", RunID: runID})
}

// CancelImport asks a running import to stop.
func (h *Handlers) CancelImport(w http.ResponseWriter, _ *http.Request) {
	if h.manager.CancelImport() {
		writeJSONStatus(w, "cancelling")
		return
	}
	writeJSONStatus(w, "idle")
}

// StartPreviews begins or resumes thumbnail generation.
func (h *Handlers) StartPreviews(w http.ResponseWriter, _ *http.Request) {
	runID, err := h.manager.StartPreviews()
	switch {
	case errors.Is(err, pipeline.ErrNoDuplicates):
		writeJSONStatus(w, "no_duplicates")
		return
	case errors.Is(err, pipeline.ErrAlreadyRunning):
		writeJSONError(w, "Preview generation already running", http.StatusConflict)
		return
	case err != nil:
		logging.Error("Failed to start preview generation: %v", err)
		writeJSONError(w, "Failed to start preview generation", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, RunResponse{Status: "started", RunID: runID})
}

// CancelPreviews asks running preview generation to stop.
func (h *Handlers) CancelPreviews(w http.ResponseWriter, _ *http.Request) {
	if h.manager.CancelPreviews() {
		writeJSONStatus(w, "cancelling")
		return
	}
	writeJSONStatus(w, "idle")
}

// GetStatus returns the status line and live pipeline state.
func (h *Handlers) GetStatus(w http.ResponseWriter, _ *http.Request) {
	session := h.manager.Session()
	response := StatusResponse{
		Status:       h.model.Status(),
		LastError:    h.model.LastError(),
		Import:       h.manager.ImportController().Status(),
		Preview:      h.manager.PreviewController().Status(),
		Stats:        session.Stats(),
		Duplicates:   session.Len(),
		PreviewIndex: session.PreviewIndex(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, response)
}
