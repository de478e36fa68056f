package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"qgate/internal/models"
)

// MeasureInput is the wire format for a measure. At most one value
// field may be set; none at all means a measure with no value. The
// variation is independent of the value.
type MeasureInput struct {
	Bool      *bool    `json:"bool,omitempty"`
	Int       *int32   `json:"int,omitempty"`
	Long      *int64   `json:"long,omitempty"`
	Double    *float64 `json:"double,omitempty"`
	String    *string  `json:"string,omitempty"`
	Level     *string  `json:"level,omitempty"`
	Variation *float64 `json:"variation,omitempty"`
}

// Input validation errors
var (
	ErrMultipleValues = errors.New("measure must carry at most one value")
	ErrInvalidLevel   = errors.New("level value must be OK or ERROR")
)

// ToMeasure converts the input into a domain measure
func (in *MeasureInput) ToMeasure() (*models.Measure, error) {
	var measure *models.Measure

	set := func(m *models.Measure) error {
		if measure != nil {
			return ErrMultipleValues
		}
		measure = m
		return nil
	}

	if in.Bool != nil {
		if err := set(models.NewBoolMeasure(*in.Bool)); err != nil {
			return nil, err
		}
	}
	if in.Int != nil {
		if err := set(models.NewIntMeasure(*in.Int)); err != nil {
			return nil, err
		}
	}
	if in.Long != nil {
		if err := set(models.NewLongMeasure(*in.Long)); err != nil {
			return nil, err
		}
	}
	if in.Double != nil {
		if err := set(models.NewDoubleMeasure(*in.Double)); err != nil {
			return nil, err
		}
	}
	if in.String != nil {
		if err := set(models.NewStringMeasure(*in.String)); err != nil {
			return nil, err
		}
	}
	if in.Level != nil {
		level := models.Level(*in.Level)
		if !level.IsValid() {
			return nil, ErrInvalidLevel
		}
		if err := set(models.NewLevelMeasure(level)); err != nil {
			return nil, err
		}
	}

	if measure == nil {
		measure = models.NewNoValueMeasure()
	}
	if in.Variation != nil {
		measure = measure.WithVariation(*in.Variation)
	}
	return measure, nil
}

// validateCondition checks the parts of a condition the evaluator
// expects the caller to have filled in
func validateCondition(condition *models.Condition) error {
	if condition == nil {
		return errors.New("condition is required")
	}
	if condition.Metric == nil {
		return errors.New("condition metric is required")
	}
	if err := condition.Metric.Validate(); err != nil {
		return fmt.Errorf("condition metric: %w", err)
	}
	return nil
}

// writeJSON writes a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck // response is already committed
}

// writeError writes an error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}
