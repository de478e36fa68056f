package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Kind tags the value held by a Comparable.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindLong
	KindDouble
	KindString
)

// ErrKindMismatch is returned when two Comparables of different kinds
// are compared. The evaluator never does this: both operands of a
// comparison always derive from the same ValueDomain.
var ErrKindMismatch = errors.New("cannot compare values of different kinds")

// Comparable holds exactly one of {bool, int32, int64, float64, string}
// and supports total ordering within like kinds. The zero value is the
// bool false; use the *Of constructors.
type Comparable struct {
	kind Kind
	b    bool
	i    int32
	l    int64
	d    float64
	s    string
}

// BoolOf wraps a bool. Ordering: false < true.
func BoolOf(v bool) Comparable { return Comparable{kind: KindBool, b: v} }

// IntOf wraps a 32-bit integer.
func IntOf(v int32) Comparable { return Comparable{kind: KindInt, i: v} }

// LongOf wraps a 64-bit integer.
func LongOf(v int64) Comparable { return Comparable{kind: KindLong, l: v} }

// DoubleOf wraps a float. Equality is exact, with no epsilon tolerance.
func DoubleOf(v float64) Comparable { return Comparable{kind: KindDouble, d: v} }

// StringOf wraps a string. Ordering is lexicographic by bytes.
func StringOf(v string) Comparable { return Comparable{kind: KindString, s: v} }

// Kind returns the kind tag of the held value
func (c Comparable) Kind() Kind { return c.kind }

// Compare returns a three-way order between c and other: negative when
// c < other, zero when equal, positive when c > other. Both values must
// be of the same kind.
func (c Comparable) Compare(other Comparable) (int, error) {
	if c.kind != other.kind {
		return 0, fmt.Errorf("%w: %s vs %s", ErrKindMismatch, c.kind, other.kind)
	}
	switch c.kind {
	case KindBool:
		return boolToInt(c.b) - boolToInt(other.b), nil
	case KindInt:
		return orderOf(c.i, other.i), nil
	case KindLong:
		return orderOf(c.l, other.l), nil
	case KindDouble:
		return orderOf(c.d, other.d), nil
	case KindString:
		return orderOf(c.s, other.s), nil
	default:
		return 0, fmt.Errorf("unknown comparable kind %d", c.kind)
	}
}

// Value returns the held value as an interface, for display and JSON output
func (c Comparable) Value() any {
	switch c.kind {
	case KindBool:
		return c.b
	case KindInt:
		return c.i
	case KindLong:
		return c.l
	case KindDouble:
		return c.d
	default:
		return c.s
	}
}

func (c Comparable) String() string {
	switch c.kind {
	case KindBool:
		return strconv.FormatBool(c.b)
	case KindInt:
		return strconv.FormatInt(int64(c.i), 10)
	case KindLong:
		return strconv.FormatInt(c.l, 10)
	case KindDouble:
		return strconv.FormatFloat(c.d, 'f', -1, 64)
	default:
		return c.s
	}
}

// MarshalJSON emits the underlying value, not the union wrapper
func (c Comparable) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Value())
}

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func orderOf[T int32 | int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
