package models

// Operator is the comparison applied between a measure value and a
// condition threshold.
type Operator string

const (
	OperatorEquals      Operator = "EQUALS"
	OperatorNotEquals   Operator = "NOT_EQUALS"
	OperatorGreaterThan Operator = "GREATER_THAN"
	OperatorLessThan    Operator = "LESS_THAN"
)

// IsValid checks if the operator is one of the known operators
func (o Operator) IsValid() bool {
	switch o {
	case OperatorEquals, OperatorNotEquals, OperatorGreaterThan, OperatorLessThan:
		return true
	default:
		return false
	}
}

// Condition is a declared rule testing a measure of one metric against
// a textual threshold. When UseVariation is set, the measure's
// variation is compared instead of its absolute value. Conditions are
// read-only inputs to the evaluator.
type Condition struct {
	Metric    *Metric  `json:"metric"`
	Operator  Operator `json:"operator"`
	Threshold string   `json:"threshold"`

	// Compare the measure's variation rather than its absolute value
	UseVariation bool `json:"useVariation,omitempty"`
}

// NewCondition creates a condition on the absolute value of a metric
func NewCondition(metric *Metric, op Operator, threshold string) *Condition {
	return &Condition{Metric: metric, Operator: op, Threshold: threshold}
}

// NewVariationCondition creates a condition on the variation of a metric
func NewVariationCondition(metric *Metric, op Operator, threshold string) *Condition {
	return &Condition{Metric: metric, Operator: op, Threshold: threshold, UseVariation: true}
}
