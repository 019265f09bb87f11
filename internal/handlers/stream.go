package handlers

import (
	"net/http"
)

// Stream upgrades to a websocket carrying live grid updates.
func (h *Handlers) Stream(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		writeJSONError(w, "Live updates unavailable", http.StatusServiceUnavailable)
		return
	}
	h.hub.ServeHTTP(w, r)
}
