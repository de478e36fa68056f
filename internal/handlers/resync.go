package handlers

import (
	"context"
	"net/http"

	"qgate/internal/resync"
)

// Triggerer starts one resync run.
type Triggerer interface {
	Trigger(ctx context.Context) (*resync.Summary, error)
}

// ResyncHandler triggers a rebuild of the reindex task backlog.
type ResyncHandler struct {
	resyncer Triggerer
}

// NewResyncHandler creates the /resync handler
func NewResyncHandler(resyncer Triggerer) *ResyncHandler {
	return &ResyncHandler{resyncer: resyncer}
}

// ResyncResponse is the response returned to clients
type ResyncResponse struct {
	Success bool            `json:"success"`
	Summary *resync.Summary `json:"summary"`
}

// ServeHTTP handles the resync trigger HTTP request
func (h *ResyncHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	summary, err := h.resyncer.Trigger(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ResyncResponse{Success: true, Summary: summary})
}
