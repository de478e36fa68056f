package models_test

import (
	"testing"

	"qgate/internal/models"
)

func TestMeasureDomains(t *testing.T) {
	tests := []struct {
		name    string
		measure *models.Measure
		domain  models.ValueDomain
	}{
		{"bool", models.NewBoolMeasure(true), models.DomainBoolean},
		{"int", models.NewIntMeasure(10), models.DomainInt},
		{"long", models.NewLongMeasure(10), models.DomainLong},
		{"double", models.NewDoubleMeasure(10.2), models.DomainDouble},
		{"string", models.NewStringMeasure("TEST"), models.DomainString},
		{"level", models.NewLevelMeasure(models.LevelError), models.DomainLevel},
		{"no value", models.NewNoValueMeasure(), models.DomainNoValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.measure.ValueDomain(); got != tt.domain {
				t.Errorf("ValueDomain() = %v, want %v", got, tt.domain)
			}
			wantValue := tt.domain != models.DomainNoValue
			if got := tt.measure.HasValue(); got != wantValue {
				t.Errorf("HasValue() = %v, want %v", got, wantValue)
			}
			if tt.measure.HasVariation() {
				t.Error("HasVariation() = true on a fresh measure")
			}
		})
	}
}

func TestMeasureWithVariation(t *testing.T) {
	base := models.NewIntMeasure(10)
	withVar := base.WithVariation(3)

	if base.HasVariation() {
		t.Error("WithVariation mutated the original measure")
	}
	if !withVar.HasVariation() {
		t.Fatal("HasVariation() = false after WithVariation")
	}
	if got := withVar.Variation(); got != 3 {
		t.Errorf("Variation() = %v, want 3", got)
	}

	// variation presence is independent of the primary value
	noValue := models.NewNoValueMeasure().WithVariation(-1.5)
	if noValue.HasValue() {
		t.Error("HasValue() = true on a no-value measure")
	}
	if !noValue.HasVariation() {
		t.Error("HasVariation() = false on a no-value measure with variation")
	}
}
