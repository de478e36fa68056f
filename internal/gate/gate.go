// Package gate aggregates condition evaluations into a single verdict
// for a named quality gate.
package gate

import (
	"errors"

	"qgate/internal/evaluator"
	"qgate/internal/models"
)

// ErrNoConditions is returned when a gate declares no conditions.
var ErrNoConditions = errors.New("gate has no conditions")

// Gate is a named set of conditions evaluated together.
type Gate struct {
	Name       string
	Conditions []*models.Condition
}

// ConditionResult pairs a condition with its evaluation outcome.
type ConditionResult struct {
	Condition *models.Condition          `json:"condition"`
	Result    evaluator.EvaluationResult `json:"result"`
}

// Result is the verdict for a whole gate: ERROR as soon as any
// condition is breached, OK otherwise.
type Result struct {
	Gate       string            `json:"gate"`
	Level      models.Level      `json:"level"`
	Conditions []ConditionResult `json:"conditions"`
}

// Evaluate runs every condition of the gate against the supplied
// measures, keyed by metric key. A metric without a measure is treated
// as a measure with no value, which never breaches its condition.
// Evaluation stops at the first fatal error; a gate verdict is only
// produced when every condition evaluated cleanly.
func Evaluate(g *Gate, measures map[string]*models.Measure) (*Result, error) {
	if len(g.Conditions) == 0 {
		return nil, ErrNoConditions
	}

	result := &Result{
		Gate:       g.Name,
		Level:      models.LevelOK,
		Conditions: make([]ConditionResult, 0, len(g.Conditions)),
	}

	for _, condition := range g.Conditions {
		measure, ok := measures[condition.Metric.Key]
		if !ok {
			measure = models.NewNoValueMeasure()
		}

		evaluation, err := evaluator.Evaluate(condition, measure)
		if err != nil {
			return nil, err
		}

		result.Conditions = append(result.Conditions, ConditionResult{
			Condition: condition,
			Result:    evaluation,
		})
		if evaluation.Level == models.LevelError {
			result.Level = models.LevelError
		}
	}

	return result, nil
}
