package evaluator

import (
	"qgate/internal/models"
)

// projectMeasure extracts the comparable to test from a measure. A nil
// comparable with a nil error means the measure has nothing to test and
// the condition passes automatically.
func projectMeasure(condition *models.Condition, measure *models.Measure) (*models.Comparable, error) {
	if condition.UseVariation {
		return projectVariation(condition, measure)
	}
	return projectValue(measure)
}

// projectValue maps the measure's absolute value into a comparable,
// dispatching on the measure's own value domain.
func projectValue(measure *models.Measure) (*models.Comparable, error) {
	switch domain := measure.ValueDomain(); domain {
	case models.DomainBoolean:
		return comparableOf(models.BoolOf(measure.BoolValue())), nil
	case models.DomainInt:
		return comparableOf(models.IntOf(measure.IntValue())), nil
	case models.DomainLong:
		return comparableOf(models.LongOf(measure.LongValue())), nil
	case models.DomainDouble:
		return comparableOf(models.DoubleOf(measure.DoubleValue())), nil
	case models.DomainString:
		return comparableOf(models.StringOf(measure.StringValue())), nil
	case models.DomainLevel:
		return comparableOf(models.StringOf(string(measure.LevelValue()))), nil
	case models.DomainNoValue:
		return nil, nil
	default:
		return nil, unsupportedMeasureDomain(domain)
	}
}

// projectVariation maps the measure's variation into a comparable,
// narrowing the stored double per the metric's declared type. An
// absent variation is an automatic pass regardless of domain. When a
// variation is present, only numeric and boolean metrics are
// supported: deltas have no meaning for string or level domains.
func projectVariation(condition *models.Condition, measure *models.Measure) (*models.Comparable, error) {
	if !measure.HasVariation() {
		return nil, nil
	}

	variation := measure.Variation()
	metricType := condition.Metric.Type
	switch metricType.ValueDomain() {
	case models.DomainBoolean:
		// truncate toward zero, then test equality to 1
		return comparableOf(models.BoolOf(int32(variation) == 1)), nil
	case models.DomainInt:
		return comparableOf(models.IntOf(int32(variation))), nil
	case models.DomainLong:
		return comparableOf(models.LongOf(int64(variation))), nil
	case models.DomainDouble:
		return comparableOf(models.DoubleOf(variation)), nil
	default:
		return nil, unsupportedVariationType(metricType)
	}
}

func comparableOf(c models.Comparable) *models.Comparable { return &c }
