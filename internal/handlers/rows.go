package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"dupe-checker/internal/dupes"
	"dupe-checker/internal/logging"
	"dupe-checker/internal/reveal"
)

// ListRows returns every grid row in duplicate order.
func (h *Handlers) ListRows(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, h.model.Rows())
}

// GetThumbnail serves the JPEG preview of one row.
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	d, ok := h.duplicate(w, r)
	if !ok {
		return
	}
	if !d.HasThumbnail() {
		http.Error(w, "Thumbnail not available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(d.Thumbnail)))
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(d.Thumbnail); err != nil {
		logging.Debug("Failed to write thumbnail: %v", err)
	}
}

// RevealRow opens the file manager at the row's file.
func (h *Handlers) RevealRow(w http.ResponseWriter, r *http.Request) {
	d, ok := h.duplicate(w, r)
	if !ok {
		return
	}

	err := h.revealer.Reveal(d.Record.FullPath())
	switch {
	case errors.Is(err, reveal.ErrNotFound):
		writeJSONError(w, "Path does not exist", http.StatusNotFound)
		return
	case err != nil:
		logging.Error("Failed to reveal %s: %v", d.Record.FullPath(), err)
		writeJSONError(w, "Failed to open file location", http.StatusInternalServerError)
		return
	}
	writeJSONStatus(w, "revealed")
}

// duplicate resolves the {index} route variable against the session.
func (h *Handlers) duplicate(w http.ResponseWriter, r *http.Request) (dupes.Duplicate, bool) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeJSONError(w, "Invalid row index", http.StatusBadRequest)
		return dupes.Duplicate{}, false
	}

	d, ok := h.manager.Session().At(index)
	if !ok {
		writeJSONError(w, "Row not found", http.StatusNotFound)
		return dupes.Duplicate{}, false
	}
	return d, true
}
