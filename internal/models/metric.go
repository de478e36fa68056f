package models

import "errors"

// ValueDomain is the primitive kind a metric's values are stored and
// compared as. A measure additionally distinguishes the absence of a
// value via DomainNoValue.
type ValueDomain string

const (
	DomainBoolean ValueDomain = "BOOLEAN"
	DomainInt     ValueDomain = "INT"
	DomainLong    ValueDomain = "LONG"
	DomainDouble  ValueDomain = "DOUBLE"
	DomainString  ValueDomain = "STRING"
	DomainLevel   ValueDomain = "LEVEL"
	DomainNoValue ValueDomain = "NO_VALUE"

	// DomainNone marks metric types that cannot be evaluated at all
	// (free-form data, distributions).
	DomainNone ValueDomain = "NONE"
)

// MetricType identifies how a metric is displayed and which ValueDomain
// its values live in.
type MetricType string

const (
	TypeInt          MetricType = "INT"
	TypeRating       MetricType = "RATING"
	TypeMillisec     MetricType = "MILLISEC"
	TypeWorkDuration MetricType = "WORK_DUR"
	TypeFloat        MetricType = "FLOAT"
	TypePercent      MetricType = "PERCENT"
	TypeBool         MetricType = "BOOL"
	TypeString       MetricType = "STRING"
	TypeLevel        MetricType = "LEVEL"
	TypeData         MetricType = "DATA"
	TypeDistrib      MetricType = "DISTRIB"
)

// Validation errors
var (
	ErrEmptyMetricKey    = errors.New("metric key cannot be empty")
	ErrInvalidMetricType = errors.New("invalid metric type")
)

// ValueDomain returns the domain of the metric type. DATA and DISTRIB
// have no evaluable domain and map to DomainNone.
func (t MetricType) ValueDomain() ValueDomain {
	switch t {
	case TypeInt, TypeRating:
		return DomainInt
	case TypeMillisec, TypeWorkDuration:
		return DomainLong
	case TypeFloat, TypePercent:
		return DomainDouble
	case TypeBool:
		return DomainBoolean
	case TypeString:
		return DomainString
	case TypeLevel:
		return DomainLevel
	default:
		return DomainNone
	}
}

// IsValid checks if the metric type is one of the known types
func (t MetricType) IsValid() bool {
	switch t {
	case TypeInt, TypeRating, TypeMillisec, TypeWorkDuration, TypeFloat,
		TypePercent, TypeBool, TypeString, TypeLevel, TypeData, TypeDistrib:
		return true
	default:
		return false
	}
}

// Metric is the named, typed definition a measure is an instance of.
type Metric struct {
	// Technical key, unique within a gate
	Key string `json:"key"`

	// Display name, used in error messages shown to users
	Name string `json:"name"`

	// Declared type, fixing the ValueDomain of all its measures
	Type MetricType `json:"type"`
}

// Validate checks if the metric has all required fields and a known type
func (m *Metric) Validate() error {
	if m.Key == "" {
		return ErrEmptyMetricKey
	}
	if !m.Type.IsValid() {
		return ErrInvalidMetricType
	}
	return nil
}

// DisplayName returns the name to use in messages, falling back to the
// key when no name was declared.
func (m *Metric) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.Key
}
