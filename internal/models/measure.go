package models

// Level is the outcome of an evaluation, and also the value domain of
// LEVEL-typed measures.
type Level string

const (
	LevelOK    Level = "OK"
	LevelError Level = "ERROR"
)

// IsValid checks if the level is one of the known levels
func (l Level) IsValid() bool {
	return l == LevelOK || l == LevelError
}

// Measure is an immutable snapshot of a computed value for one metric.
// It holds at most one value consistent with its domain, or no value at
// all, plus an optional variation (delta against a baseline period)
// whose presence is independent of the primary value.
type Measure struct {
	domain      ValueDomain
	boolValue   bool
	intValue    int32
	longValue   int64
	doubleValue float64
	stringValue string
	levelValue  Level
	variation   *float64
}

// NewBoolMeasure creates a measure in the BOOLEAN domain
func NewBoolMeasure(v bool) *Measure {
	return &Measure{domain: DomainBoolean, boolValue: v}
}

// NewIntMeasure creates a measure in the INT domain
func NewIntMeasure(v int32) *Measure {
	return &Measure{domain: DomainInt, intValue: v}
}

// NewLongMeasure creates a measure in the LONG domain
func NewLongMeasure(v int64) *Measure {
	return &Measure{domain: DomainLong, longValue: v}
}

// NewDoubleMeasure creates a measure in the DOUBLE domain
func NewDoubleMeasure(v float64) *Measure {
	return &Measure{domain: DomainDouble, doubleValue: v}
}

// NewStringMeasure creates a measure in the STRING domain
func NewStringMeasure(v string) *Measure {
	return &Measure{domain: DomainString, stringValue: v}
}

// NewLevelMeasure creates a measure in the LEVEL domain
func NewLevelMeasure(v Level) *Measure {
	return &Measure{domain: DomainLevel, levelValue: v}
}

// NewNoValueMeasure creates a measure carrying no value. It may still
// carry a variation.
func NewNoValueMeasure() *Measure {
	return &Measure{domain: DomainNoValue}
}

// WithVariation returns a copy of the measure carrying the given variation
func (m *Measure) WithVariation(v float64) *Measure {
	copied := *m
	copied.variation = &v
	return &copied
}

// ValueDomain returns the domain of the held value, DomainNoValue when absent
func (m *Measure) ValueDomain() ValueDomain { return m.domain }

// HasValue reports whether the measure holds a primary value
func (m *Measure) HasValue() bool { return m.domain != DomainNoValue }

// HasVariation reports whether a variation was recorded
func (m *Measure) HasVariation() bool { return m.variation != nil }

// Variation returns the recorded variation; only meaningful when
// HasVariation is true.
func (m *Measure) Variation() float64 {
	if m.variation == nil {
		return 0
	}
	return *m.variation
}

// BoolValue returns the held bool; only meaningful in the BOOLEAN domain.
func (m *Measure) BoolValue() bool { return m.boolValue }

// IntValue returns the held int32; only meaningful in the INT domain.
func (m *Measure) IntValue() int32 { return m.intValue }

// LongValue returns the held int64; only meaningful in the LONG domain.
func (m *Measure) LongValue() int64 { return m.longValue }

// DoubleValue returns the held float64; only meaningful in the DOUBLE domain.
func (m *Measure) DoubleValue() float64 { return m.doubleValue }

// StringValue returns the held string; only meaningful in the STRING domain.
func (m *Measure) StringValue() string { return m.stringValue }

// LevelValue returns the held level; only meaningful in the LEVEL domain.
func (m *Measure) LevelValue() Level { return m.levelValue }
