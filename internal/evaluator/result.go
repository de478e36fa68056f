package evaluator

import "qgate/internal/models"

// EvaluationResult is the immutable outcome of evaluating one
// condition: the level reached and the comparable actually tested,
// kept for display and audit. Value is nil when the measure carried
// nothing to test.
type EvaluationResult struct {
	Level models.Level       `json:"level"`
	Value *models.Comparable `json:"value,omitempty"`
}

func okResult(value *models.Comparable) EvaluationResult {
	return EvaluationResult{Level: models.LevelOK, Value: value}
}

func errorResult(value *models.Comparable) EvaluationResult {
	return EvaluationResult{Level: models.LevelError, Value: value}
}
