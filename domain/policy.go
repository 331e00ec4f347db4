package domain

import (
	"fmt"
	"strings"
)

// Variant names one of the calculator flows.
type Variant string

const (
	VariantTwoField      Variant = "two-field"
	VariantAutoCalculate Variant = "auto-calculate"
	VariantGoalSeeking   Variant = "goal-seeking"
)

// ParseVariant normalizes a variant name. Empty selects two-field.
func ParseVariant(raw string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(raw))) {
	case "", VariantTwoField:
		return VariantTwoField, nil
	case VariantAutoCalculate:
		return VariantAutoCalculate, nil
	case VariantGoalSeeking:
		return VariantGoalSeeking, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidVariant, raw)
}

// Rule says what an edit to one field does: Held stays put, Recomputed is
// derived from the edited value and Held.
type Rule struct {
	Held       Field `json:"held"`
	Recomputed Field `json:"recomputed"`
}

// Policy is the dispatch table an engine is built with. A field with no rule
// is a pure output and cannot be edited.
type Policy struct {
	Variant Variant        `json:"variant"`
	Target  Field          `json:"target,omitempty"`
	Rules   map[Field]Rule `json:"rules"`

	// Toggleable allows switching AutoCalculate at runtime.
	Toggleable    bool `json:"toggleable"`
	AutoCalculate bool `json:"auto_calculate"`
}

// TwoFieldPolicy always auto-calculates. Goal is never recomputed by an edit:
// both contribution and duration edits hold goal.
func TwoFieldPolicy() Policy {
	return Policy{
		Variant: VariantTwoField,
		Rules: map[Field]Rule{
			FieldGoal:         {Held: FieldDuration, Recomputed: FieldContribution},
			FieldContribution: {Held: FieldGoal, Recomputed: FieldDuration},
			FieldDuration:     {Held: FieldGoal, Recomputed: FieldContribution},
		},
		AutoCalculate: true,
	}
}

// AutoCalculatePolicy rotates: goal -> contribution -> duration -> goal.
func AutoCalculatePolicy(auto bool) Policy {
	return Policy{
		Variant: VariantAutoCalculate,
		Rules: map[Field]Rule{
			FieldGoal:         {Held: FieldDuration, Recomputed: FieldContribution},
			FieldContribution: {Held: FieldGoal, Recomputed: FieldDuration},
			FieldDuration:     {Held: FieldContribution, Recomputed: FieldGoal},
		},
		Toggleable:    true,
		AutoCalculate: auto,
	}
}

// GoalSeekingPolicy treats target as the answer: editing either other field
// recomputes target while the remaining field is held.
func GoalSeekingPolicy(target Field) (Policy, error) {
	if !target.Valid() {
		return Policy{}, fmt.Errorf("%w: goal-seeking target %q", ErrInvalidPolicy, target)
	}
	rules := make(map[Field]Rule, 2)
	for _, edited := range Fields {
		if edited == target {
			continue
		}
		rules[edited] = Rule{Held: third(edited, target), Recomputed: target}
	}
	return Policy{
		Variant:       VariantGoalSeeking,
		Target:        target,
		Rules:         rules,
		AutoCalculate: true,
	}, nil
}

// PolicyFor builds the table for a variant. target is only read for
// goal-seeking; auto is only read for auto-calculate.
func PolicyFor(variant Variant, target Field, auto bool) (Policy, error) {
	switch variant {
	case VariantTwoField, "":
		return TwoFieldPolicy(), nil
	case VariantAutoCalculate:
		return AutoCalculatePolicy(auto), nil
	case VariantGoalSeeking:
		return GoalSeekingPolicy(target)
	}
	return Policy{}, fmt.Errorf("%w: %q", ErrInvalidVariant, variant)
}

// Validate checks that every rule names three distinct quantities.
func (p Policy) Validate() error {
	if len(p.Rules) == 0 {
		return fmt.Errorf("%w: no rules", ErrInvalidPolicy)
	}
	for edited, rule := range p.Rules {
		if !edited.Valid() || !rule.Held.Valid() || !rule.Recomputed.Valid() {
			return fmt.Errorf("%w: rule for %s names an unknown field", ErrInvalidPolicy, edited)
		}
		if edited == rule.Held || edited == rule.Recomputed || rule.Held == rule.Recomputed {
			return fmt.Errorf("%w: rule for %s must name three distinct fields", ErrInvalidPolicy, edited)
		}
	}
	if p.Variant == VariantGoalSeeking {
		if _, ok := p.Rules[p.Target]; ok {
			return fmt.Errorf("%w: goal-seeking target %s must not be editable", ErrInvalidPolicy, p.Target)
		}
	}
	return nil
}

// Editable reports whether f has a rule.
func (p Policy) Editable(f Field) bool {
	_, ok := p.Rules[f]
	return ok
}

// Other returns the quantity that is neither a nor b.
func Other(a, b Field) Field {
	return third(a, b)
}

func third(a, b Field) Field {
	for _, f := range Fields {
		if f != a && f != b {
			return f
		}
	}
	return FieldNone
}
