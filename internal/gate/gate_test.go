package gate_test

import (
	"errors"
	"testing"

	"qgate/internal/evaluator"
	"qgate/internal/gate"
	"qgate/internal/models"
)

func coverageCondition(op models.Operator, threshold string) *models.Condition {
	metric := &models.Metric{Key: "coverage", Name: "Coverage", Type: models.TypePercent}
	return models.NewCondition(metric, op, threshold)
}

func duplicationCondition(op models.Operator, threshold string) *models.Condition {
	metric := &models.Metric{Key: "duplications", Name: "Duplications", Type: models.TypePercent}
	return models.NewCondition(metric, op, threshold)
}

func TestGateOKWhenNoConditionBreached(t *testing.T) {
	g := &gate.Gate{
		Name: "default",
		Conditions: []*models.Condition{
			coverageCondition(models.OperatorLessThan, "80"),
			duplicationCondition(models.OperatorGreaterThan, "3"),
		},
	}
	measures := map[string]*models.Measure{
		"coverage":     models.NewDoubleMeasure(91.5),
		"duplications": models.NewDoubleMeasure(1.2),
	}

	result, err := gate.Evaluate(g, measures)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if result.Level != models.LevelOK {
		t.Errorf("Level = %v, want OK", result.Level)
	}
	if len(result.Conditions) != 2 {
		t.Fatalf("got %d condition results, want 2", len(result.Conditions))
	}
}

func TestGateErrorWhenAnyConditionBreached(t *testing.T) {
	g := &gate.Gate{
		Name: "default",
		Conditions: []*models.Condition{
			coverageCondition(models.OperatorLessThan, "80"),
			duplicationCondition(models.OperatorGreaterThan, "3"),
		},
	}
	measures := map[string]*models.Measure{
		"coverage":     models.NewDoubleMeasure(61.5),
		"duplications": models.NewDoubleMeasure(1.2),
	}

	result, err := gate.Evaluate(g, measures)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if result.Level != models.LevelError {
		t.Errorf("Level = %v, want ERROR", result.Level)
	}
	if result.Conditions[0].Result.Level != models.LevelError {
		t.Errorf("breached condition reported %v", result.Conditions[0].Result.Level)
	}
	if result.Conditions[1].Result.Level != models.LevelOK {
		t.Errorf("passing condition reported %v", result.Conditions[1].Result.Level)
	}
}

func TestGateMissingMeasurePasses(t *testing.T) {
	g := &gate.Gate{
		Name:       "default",
		Conditions: []*models.Condition{coverageCondition(models.OperatorLessThan, "80")},
	}

	result, err := gate.Evaluate(g, map[string]*models.Measure{})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if result.Level != models.LevelOK {
		t.Errorf("Level = %v, want OK for missing measure", result.Level)
	}
	if result.Conditions[0].Result.Value != nil {
		t.Error("missing measure should evaluate with an absent value")
	}
}

func TestGateNoConditions(t *testing.T) {
	_, err := gate.Evaluate(&gate.Gate{Name: "empty"}, nil)
	if !errors.Is(err, gate.ErrNoConditions) {
		t.Errorf("Evaluate() error = %v, want ErrNoConditions", err)
	}
}

func TestGateStopsOnFatalError(t *testing.T) {
	data := &models.Metric{Key: "raw", Name: "Raw Data", Type: models.TypeData}
	g := &gate.Gate{
		Name:       "default",
		Conditions: []*models.Condition{models.NewCondition(data, models.OperatorEquals, "1")},
	}

	_, err := gate.Evaluate(g, map[string]*models.Measure{"raw": models.NewStringMeasure("x")})
	var unsupported *evaluator.UnsupportedTypeError
	if !errors.As(err, &unsupported) {
		t.Errorf("Evaluate() error = %v, want UnsupportedTypeError", err)
	}
}
