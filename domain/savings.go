package domain

import (
	"fmt"
	"strings"
)

// Field identifies one of the three linked quantities of a savings plan.
type Field int

const (
	FieldNone Field = iota
	FieldGoal
	FieldContribution
	FieldDuration
)

// Fields lists the editable quantities in display order.
var Fields = []Field{FieldGoal, FieldContribution, FieldDuration}

func (f Field) String() string {
	switch f {
	case FieldGoal:
		return "goal"
	case FieldContribution:
		return "contribution"
	case FieldDuration:
		return "duration"
	default:
		return "none"
	}
}

// Valid reports whether f names one of the three quantities.
func (f Field) Valid() bool {
	return f == FieldGoal || f == FieldContribution || f == FieldDuration
}

// ParseField accepts the names produced by String, case-insensitively.
// An empty string parses as FieldNone.
func ParseField(raw string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "goal":
		return FieldGoal, nil
	case "contribution":
		return FieldContribution, nil
	case "duration":
		return FieldDuration, nil
	case "", "none":
		return FieldNone, nil
	}
	return FieldNone, fmt.Errorf("%w: %q", ErrInvalidField, raw)
}

func (f Field) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Field) UnmarshalText(text []byte) error {
	parsed, err := ParseField(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// SavingsPlan holds the three quantities and which of them the engine
// computed last. Derived is presentation state only.
type SavingsPlan struct {
	Goal         float64 `json:"goal"`
	Contribution float64 `json:"contribution"`
	Duration     float64 `json:"duration"`
	Derived      Field   `json:"derived"`
}

const (
	DefaultGoal         = 10000.0
	DefaultContribution = 250.0
	DefaultDuration     = 40.0
)

// DefaultPlan returns the plan every session starts from.
func DefaultPlan() SavingsPlan {
	return SavingsPlan{
		Goal:         DefaultGoal,
		Contribution: DefaultContribution,
		Duration:     DefaultDuration,
		Derived:      FieldNone,
	}
}

// Value returns the quantity named by f.
func (p SavingsPlan) Value(f Field) float64 {
	switch f {
	case FieldGoal:
		return p.Goal
	case FieldContribution:
		return p.Contribution
	case FieldDuration:
		return p.Duration
	}
	return 0
}

// With returns a copy of p with the quantity named by f replaced.
func (p SavingsPlan) With(f Field, v float64) SavingsPlan {
	switch f {
	case FieldGoal:
		p.Goal = v
	case FieldContribution:
		p.Contribution = v
	case FieldDuration:
		p.Duration = v
	}
	return p
}
