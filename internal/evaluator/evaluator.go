// Package evaluator decides whether a measure breaches a declared
// threshold condition. It is a pure function of its two inputs: no
// state, no locks, no I/O. It is safe to call concurrently.
package evaluator

import (
	"qgate/internal/models"
)

// Evaluate tests the measure against the condition and reports the
// level reached plus the comparable value that was tested.
//
// A measure with no value (or, in variation mode, no variation) never
// breaches a condition: the result is OK with an absent value and the
// threshold is not even parsed. All other failure modes are fatal to
// the call and surface as UnsupportedTypeError, ThresholdParseError or
// UnsupportedOperatorError.
//
// EQUALS and NOT_EQUALS on double metrics use exact floating equality
// with no epsilon tolerance. Thresholds rounded for display will not
// match a measure stored at higher precision.
func Evaluate(condition *models.Condition, measure *models.Measure) (EvaluationResult, error) {
	if condition.Metric.Type.ValueDomain() == models.DomainNone {
		return EvaluationResult{}, unsupportedConditionType(condition.Metric.Type)
	}

	value, err := projectMeasure(condition, measure)
	if err != nil {
		return EvaluationResult{}, err
	}
	if value == nil {
		return okResult(nil), nil
	}

	threshold, err := parseThreshold(condition.Metric, condition.Threshold)
	if err != nil {
		return EvaluationResult{}, err
	}

	// both operands derive from the metric's value domain, so the
	// kinds always match here
	order, err := value.Compare(threshold)
	if err != nil {
		return EvaluationResult{}, err
	}

	breached, err := reachesThreshold(condition.Operator, order)
	if err != nil {
		return EvaluationResult{}, err
	}
	if breached {
		return errorResult(value), nil
	}
	return okResult(value), nil
}

// reachesThreshold applies the operator to a three-way order between
// measure value and threshold.
func reachesThreshold(op models.Operator, order int) (bool, error) {
	switch op {
	case models.OperatorEquals:
		return order == 0, nil
	case models.OperatorNotEquals:
		return order != 0, nil
	case models.OperatorGreaterThan:
		return order > 0, nil
	case models.OperatorLessThan:
		return order < 0, nil
	default:
		return false, &UnsupportedOperatorError{Operator: op}
	}
}
