package evaluator

import (
	"strconv"
	"strings"

	"qgate/internal/models"
)

// parseThreshold converts a condition's raw threshold string into a
// comparable in the metric's value domain. Malformed numeric literals
// surface as a ThresholdParseError naming the threshold and the
// metric's display name.
func parseThreshold(metric *models.Metric, raw string) (models.Comparable, error) {
	switch domain := metric.Type.ValueDomain(); domain {
	case models.DomainBoolean:
		// the literal "1" means true, any other integer means false
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return models.Comparable{}, parseError(metric, raw)
		}
		return models.BoolOf(n == 1), nil

	case models.DomainInt:
		return parseIntThreshold(metric, raw)

	case models.DomainLong:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return models.Comparable{}, parseError(metric, raw)
		}
		return models.LongOf(n), nil

	case models.DomainDouble:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return models.Comparable{}, parseError(metric, raw)
		}
		return models.DoubleOf(f), nil

	case models.DomainString, models.DomainLevel:
		// level thresholds are not validated against the level
		// enumeration at parse time
		return models.StringOf(raw), nil

	default:
		return models.Comparable{}, unsupportedThresholdDomain(domain)
	}
}

// parseIntThreshold truncates at the decimal point rather than
// rounding: "10.2" and "10.9" both parse to 10. Asserted legacy
// behavior, do not change to rounding.
func parseIntThreshold(metric *models.Metric, raw string) (models.Comparable, error) {
	s := raw
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		s = s[:idx]
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return models.Comparable{}, parseError(metric, raw)
	}
	return models.IntOf(int32(n)), nil
}

func parseError(metric *models.Metric, raw string) *ThresholdParseError {
	return &ThresholdParseError{Threshold: raw, Metric: metric.DisplayName()}
}
