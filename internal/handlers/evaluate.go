package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"qgate/internal/evaluator"
	"qgate/internal/metrics"
	"qgate/internal/models"
)

// EvaluateHandler evaluates a single condition against a measure.
type EvaluateHandler struct {
	maxBodySize int64
}

// NewEvaluateHandler creates the /evaluate handler
func NewEvaluateHandler() *EvaluateHandler {
	return &EvaluateHandler{maxBodySize: 1 * 1024 * 1024} // 1MB
}

// EvaluateRequest is the incoming JSON payload
type EvaluateRequest struct {
	Condition *models.Condition `json:"condition"`
	Measure   *MeasureInput     `json:"measure"`
}

// EvaluateResponse is the response returned to clients
type EvaluateResponse struct {
	Success bool                       `json:"success"`
	Result  evaluator.EvaluationResult `json:"result"`
}

// ServeHTTP handles the evaluate HTTP request
func (h *EvaluateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType != "application/json" && contentType != "" {
		writeError(w, http.StatusUnsupportedMediaType, "content-type must be application/json")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	var req EvaluateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if err := validateCondition(req.Condition); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Measure == nil {
		writeError(w, http.StatusBadRequest, "measure is required")
		return
	}
	measure, err := req.Measure.ToMeasure()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := evaluator.Evaluate(req.Condition, measure)
	if err != nil {
		status, kind := classifyEvaluationError(err)
		metrics.EvaluationErrorsTotal.WithLabelValues(kind).Inc()
		writeError(w, status, err.Error())
		return
	}

	metrics.EvaluationsTotal.WithLabelValues(string(result.Level)).Inc()
	writeJSON(w, http.StatusOK, EvaluateResponse{Success: true, Result: result})
}

// classifyEvaluationError maps evaluator error kinds to HTTP statuses
// and metric labels
func classifyEvaluationError(err error) (int, string) {
	var unsupportedType *evaluator.UnsupportedTypeError
	var parseErr *evaluator.ThresholdParseError
	var unsupportedOp *evaluator.UnsupportedOperatorError

	switch {
	case errors.As(err, &unsupportedType):
		return http.StatusUnprocessableEntity, "unsupported_type"
	case errors.As(err, &parseErr):
		return http.StatusBadRequest, "threshold_parse"
	case errors.As(err, &unsupportedOp):
		return http.StatusBadRequest, "unsupported_operator"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
