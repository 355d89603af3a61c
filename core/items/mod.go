package items

import (
	"math"
	"strconv"
)

// Provenance tells where on the item a mod comes from.
type Provenance string

const (
	ProvenanceUtility   Provenance = "utility"
	ProvenanceImplicit  Provenance = "implicit"
	ProvenanceExplicit  Provenance = "explicit"
	ProvenanceCrafted   Provenance = "crafted"
	ProvenanceEnchant   Provenance = "enchant"
	ProvenanceFractured Provenance = "fractured"
	ProvenanceVeiled    Provenance = "veiled"
	ProvenanceScourge   Provenance = "scourge"
)

// Provenances lists every provenance in the order mods are read from a raw item.
var Provenances = []Provenance{
	ProvenanceEnchant,
	ProvenanceImplicit,
	ProvenanceFractured,
	ProvenanceExplicit,
	ProvenanceCrafted,
	ProvenanceVeiled,
	ProvenanceScourge,
	ProvenanceUtility,
}

// ValueKind discriminates Value.
type ValueKind string

const (
	ValueNone  ValueKind = ""
	ValueExact ValueKind = "exact"
	ValueRange ValueKind = "range"
)

// Value is the numeric part of a mod: nothing, one exact number or a range.
// An exact value stores the number in both Min and Max.
type Value struct {
	Kind ValueKind `json:"kind,omitempty"`
	Min  float64   `json:"min,omitempty"`
	Max  float64   `json:"max,omitempty"`
}

// Exact returns a single-number value.
func Exact(v float64) Value {
	return Value{Kind: ValueExact, Min: v, Max: v}
}

// Range returns a two-number value such as "Adds 5 to 10".
func Range(min, max float64) Value {
	return Value{Kind: ValueRange, Min: min, Max: max}
}

// IsNumeric reports whether the value carries a number.
func (v Value) IsNumeric() bool {
	return v.Kind == ValueExact || v.Kind == ValueRange
}

// Number returns the exact number, or the midpoint of a range.
func (v Value) Number() float64 {
	if v.Kind == ValueRange {
		return (v.Min + v.Max) / 2
	}
	return v.Min
}

func (v Value) String() string {
	switch v.Kind {
	case ValueExact:
		return strconv.FormatFloat(v.Min, 'f', -1, 64)
	case ValueRange:
		return strconv.FormatFloat(v.Min, 'f', -1, 64) + "-" + strconv.FormatFloat(v.Max, 'f', -1, 64)
	default:
		return "-"
	}
}

// Mod is one normalized affix. Two mods occupy the same affix slot when their
// StatID matches; Text is kept for display only.
type Mod struct {
	Text       string     `json:"text"`
	Provenance Provenance `json:"provenance"`
	StatID     string     `json:"stat_id"`
	Value      Value      `json:"value"`
}

// ConstraintKind discriminates Constraint.
type ConstraintKind string

const (
	ConstraintExact  ConstraintKind = "exact"
	ConstraintRange  ConstraintKind = "range"
	ConstraintMin    ConstraintKind = "min"
	ConstraintMax    ConstraintKind = "max"
	ConstraintExist  ConstraintKind = "exist"
	ConstraintIgnore ConstraintKind = "ignore"
)

const epsilon = 1e-9

// Constraint is a per-mod acceptance rule used when matching a required item.
type Constraint struct {
	Kind  ConstraintKind `json:"kind"`
	Value float64        `json:"value,omitempty"`
	Min   float64        `json:"min,omitempty"`
	Max   float64        `json:"max,omitempty"`
}

// Constraint constructors.

func Equals(v float64) Constraint { return Constraint{Kind: ConstraintExact, Value: v} }
func Between(min, max float64) Constraint { return Constraint{Kind: ConstraintRange, Min: min, Max: max} }
func AtLeast(m float64) Constraint { return Constraint{Kind: ConstraintMin, Min: m} }
func AtMost(m float64) Constraint { return Constraint{Kind: ConstraintMax, Max: m} }
func Exists() Constraint { return Constraint{Kind: ConstraintExist} }
func Ignored() Constraint { return Constraint{Kind: ConstraintIgnore} }

// Numeric reports whether the constraint needs a numeric value to pass.
func (c Constraint) Numeric() bool {
	switch c.Kind {
	case ConstraintExact, ConstraintRange, ConstraintMin, ConstraintMax:
		return true
	default:
		return false
	}
}

// Accepts reports whether a present mod with value v satisfies the constraint.
// Numeric constraints never accept a value without a number.
func (c Constraint) Accepts(v Value) bool {
	if !c.Numeric() {
		return c.Kind == ConstraintExist || c.Kind == ConstraintIgnore
	}
	if !v.IsNumeric() {
		return false
	}
	n := v.Number()
	switch c.Kind {
	case ConstraintExact:
		return math.Abs(n-c.Value) < epsilon
	case ConstraintRange:
		return n >= c.Min-epsilon && n <= c.Max+epsilon
	case ConstraintMin:
		return n >= c.Min-epsilon
	case ConstraintMax:
		return n <= c.Max+epsilon
	}
	return false
}

// Validate checks the kind and, for ranges, the bounds.
func (c Constraint) Validate() error {
	switch c.Kind {
	case ConstraintExact, ConstraintMin, ConstraintMax, ConstraintExist, ConstraintIgnore:
		return nil
	case ConstraintRange:
		if c.Min > c.Max {
			return &ConstraintError{Kind: c.Kind, Reason: "min is greater than max"}
		}
		return nil
	default:
		return &ConstraintError{Kind: c.Kind, Reason: "unknown constraint kind"}
	}
}

// ConstraintError is returned by Constraint.Validate.
type ConstraintError struct {
	Kind   ConstraintKind
	Reason string
}

func (e *ConstraintError) Error() string {
	return "constraint " + string(e.Kind) + ": " + e.Reason
}
