package domain

import "math"

// UnitPosition says where a control renders its unit symbol.
type UnitPosition string

const (
	UnitPrefix UnitPosition = "prefix"
	UnitSuffix UnitPosition = "suffix"
)

// FieldRange is the control configuration of one quantity: the slider bounds
// and step, plus its label and unit.
type FieldRange struct {
	Field        Field        `json:"field"`
	Label        string       `json:"label"`
	Unit         string       `json:"unit"`
	UnitPosition UnitPosition `json:"unit_position"`
	Min          float64      `json:"min"`
	Max          float64      `json:"max"`
	Step         float64      `json:"step"`
}

const (
	CurrencySymbol = "£"
	DurationSymbol = "m"

	GoalMin          = 100.0
	GoalMax          = 100000.0
	GoalMaxCompact   = 75000.0
	GoalStep         = 100.0
	ContributionMin  = 10.0
	ContributionMax  = 2000.0
	ContributionStep = 10.0
	DurationMin      = 1.0
	DurationMax      = 120.0
	DurationMaxLong  = 240.0
	DurationStep     = 1.0
)

// Clamp bounds v to [Min, Max]. NaN is returned unchanged so the engine can
// zero it.
func (r FieldRange) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Min(math.Max(v, r.Min), r.Max)
}

// Nudge moves v by steps increments of Step, snaps the result to the
// Min + k*Step grid and clamps it.
func (r FieldRange) Nudge(v float64, steps int) float64 {
	next := v + float64(steps)*r.Step
	if r.Step > 0 {
		next = math.Round((next-r.Min)/r.Step)*r.Step + r.Min
	}
	return r.Clamp(next)
}

// Ranges is the control configuration for one variant, keyed by field.
type Ranges map[Field]FieldRange

// Ordered returns the ranges in display order.
func (rs Ranges) Ordered() []FieldRange {
	out := make([]FieldRange, 0, len(Fields))
	for _, f := range Fields {
		if r, ok := rs[f]; ok {
			out = append(out, r)
		}
	}
	return out
}

func goalRange(max float64) FieldRange {
	return FieldRange{
		Field: FieldGoal, Label: "Savings Goal",
		Unit: CurrencySymbol, UnitPosition: UnitPrefix,
		Min: GoalMin, Max: max, Step: GoalStep,
	}
}

func contributionRange() FieldRange {
	return FieldRange{
		Field: FieldContribution, Label: "Monthly Contribution",
		Unit: CurrencySymbol, UnitPosition: UnitPrefix,
		Min: ContributionMin, Max: ContributionMax, Step: ContributionStep,
	}
}

func durationRange(max float64) FieldRange {
	return FieldRange{
		Field: FieldDuration, Label: "Duration",
		Unit: DurationSymbol, UnitPosition: UnitSuffix,
		Min: DurationMin, Max: max, Step: DurationStep,
	}
}

// RangesFor returns the control configuration of a variant.
func RangesFor(variant Variant) Ranges {
	switch variant {
	case VariantAutoCalculate:
		return Ranges{
			FieldGoal:         goalRange(GoalMaxCompact),
			FieldContribution: contributionRange(),
			FieldDuration:     durationRange(DurationMaxLong),
		}
	case VariantGoalSeeking:
		return Ranges{
			FieldGoal:         goalRange(GoalMax),
			FieldContribution: contributionRange(),
			FieldDuration:     durationRange(DurationMaxLong),
		}
	default:
		return Ranges{
			FieldGoal:         goalRange(GoalMax),
			FieldContribution: contributionRange(),
			FieldDuration:     durationRange(DurationMax),
		}
	}
}
