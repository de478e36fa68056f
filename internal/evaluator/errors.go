package evaluator

import (
	"fmt"

	"qgate/internal/models"
)

// UnsupportedTypeError reports that a condition's metric type (or, in
// variation mode, its value domain) cannot be evaluated at all. It is
// fatal to the evaluation call and never retried.
type UnsupportedTypeError struct {
	msg string
}

func (e *UnsupportedTypeError) Error() string { return e.msg }

func unsupportedConditionType(t models.MetricType) *UnsupportedTypeError {
	return &UnsupportedTypeError{msg: fmt.Sprintf("conditions on metric type %s are not supported", t)}
}

func unsupportedThresholdDomain(d models.ValueDomain) *UnsupportedTypeError {
	return &UnsupportedTypeError{msg: fmt.Sprintf("unsupported value domain %s, cannot parse condition threshold", d)}
}

func unsupportedMeasureDomain(d models.ValueDomain) *UnsupportedTypeError {
	return &UnsupportedTypeError{msg: fmt.Sprintf("unsupported measure value domain %s, cannot project measure", d)}
}

func unsupportedVariationType(t models.MetricType) *UnsupportedTypeError {
	return &UnsupportedTypeError{msg: fmt.Sprintf("unsupported metric type %s for variation comparison", t)}
}

// ThresholdParseError reports a threshold string that cannot be parsed
// into the metric's value domain. The message names the raw threshold
// and the metric's display name, never the underlying numeric parser.
type ThresholdParseError struct {
	Threshold string
	Metric    string
}

func (e *ThresholdParseError) Error() string {
	return fmt.Sprintf("unable to parse threshold %q to compare against %s", e.Threshold, e.Metric)
}

// UnsupportedOperatorError reports an operator outside the known set
// reaching the comparator. It indicates a programming or data error
// upstream.
type UnsupportedOperatorError struct {
	Operator models.Operator
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("unsupported operator %q", string(e.Operator))
}
