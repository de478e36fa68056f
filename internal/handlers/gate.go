package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"qgate/internal/gate"
	"qgate/internal/metrics"
	"qgate/internal/models"
)

// GateHandler evaluates all conditions of a quality gate in one call.
type GateHandler struct {
	maxBodySize int64
}

// NewGateHandler creates the /gate handler
func NewGateHandler() *GateHandler {
	return &GateHandler{maxBodySize: 4 * 1024 * 1024} // 4MB
}

// GateRequest is the incoming JSON payload: a gate definition plus the
// measures to test, keyed by metric key
type GateRequest struct {
	Name       string                   `json:"name"`
	Conditions []*models.Condition      `json:"conditions"`
	Measures   map[string]*MeasureInput `json:"measures"`
}

// GateResponse is the response returned to clients
type GateResponse struct {
	Success bool         `json:"success"`
	Result  *gate.Result `json:"result"`
}

// ServeHTTP handles the gate evaluation HTTP request
func (h *GateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	var req GateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	for i, condition := range req.Conditions {
		if err := validateCondition(condition); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("condition %d: %v", i, err))
			return
		}
	}

	measures := make(map[string]*models.Measure, len(req.Measures))
	for key, input := range req.Measures {
		measure, err := input.ToMeasure()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("measure %s: %v", key, err))
			return
		}
		measures[key] = measure
	}

	result, err := gate.Evaluate(&gate.Gate{Name: req.Name, Conditions: req.Conditions}, measures)
	if err != nil {
		if err == gate.ErrNoConditions {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		status, kind := classifyEvaluationError(err)
		metrics.EvaluationErrorsTotal.WithLabelValues(kind).Inc()
		writeError(w, status, err.Error())
		return
	}

	metrics.GateEvaluationsTotal.WithLabelValues(string(result.Level)).Inc()
	writeJSON(w, http.StatusOK, GateResponse{Success: true, Result: result})
}
