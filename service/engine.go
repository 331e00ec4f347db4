package service

import (
	"fmt"
	"maps"
	"math"

	"savings-calculator/domain"
)

// Engine keeps a savings plan consistent with goal = contribution × duration.
// Which field an edit recomputes is decided by the policy table the engine was
// built with.
//
// An Engine is not safe for concurrent use. Every method is a synchronous
// read-compute-replace of the plan; callers sharing one across goroutines
// must serialize access themselves.
type Engine struct {
	policy domain.Policy
	plan   domain.SavingsPlan
}

// NewEngine creates an engine at the default plan.
func NewEngine(policy domain.Policy) (*Engine, error) {
	return RestoreEngine(policy, domain.DefaultPlan())
}

// RestoreEngine creates an engine that continues from a previously stored plan.
func RestoreEngine(policy domain.Policy, plan domain.SavingsPlan) (*Engine, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	plan.Goal = finiteOrZero(plan.Goal)
	plan.Contribution = finiteOrZero(plan.Contribution)
	plan.Duration = finiteOrZero(plan.Duration)
	if plan.Derived != domain.FieldNone && !plan.Derived.Valid() {
		plan.Derived = domain.FieldNone
	}
	return &Engine{policy: clonePolicy(policy), plan: plan}, nil
}

// Plan returns a copy of the current plan.
func (e *Engine) Plan() domain.SavingsPlan {
	return e.plan
}

// Policy returns a copy of the dispatch table, including the current
// auto-calculate flag.
func (e *Engine) Policy() domain.Policy {
	return clonePolicy(e.policy)
}

func (e *Engine) AutoCalculate() bool {
	return e.policy.AutoCalculate
}

// SetAutoCalculate switches recomputation on edit. Turning it back on does not
// recompute anything by itself; the next edit or Recompute does.
func (e *Engine) SetAutoCalculate(on bool) error {
	if on == e.policy.AutoCalculate {
		return nil
	}
	if !e.policy.Toggleable {
		return fmt.Errorf("%w: %s", domain.ErrAutoCalculateFixed, e.policy.Variant)
	}
	e.policy.AutoCalculate = on
	return nil
}

// SetGoal stores a new goal and recomputes the field that is neither goal nor
// held. held must be FieldContribution or FieldDuration.
func (e *Engine) SetGoal(v float64, held domain.Field) error {
	return e.Set(domain.FieldGoal, v, held)
}

// SetContribution stores a new contribution, holding goal or duration.
func (e *Engine) SetContribution(v float64, held domain.Field) error {
	return e.Set(domain.FieldContribution, v, held)
}

// SetDuration stores a new duration, holding goal or contribution.
func (e *Engine) SetDuration(v float64, held domain.Field) error {
	return e.Set(domain.FieldDuration, v, held)
}

// Set stores v into field and, when auto-calculate is on, recomputes the
// remaining field from v and held. A non-finite v is stored as 0. In
// goal-seeking the target can be neither set nor held.
func (e *Engine) Set(field domain.Field, v float64, held domain.Field) error {
	if !field.Valid() {
		return fmt.Errorf("%w: %s", domain.ErrInvalidField, field)
	}
	if !held.Valid() || held == field {
		return fmt.Errorf("%w: %s while setting %s", domain.ErrInvalidHeld, held, field)
	}
	if e.policy.Variant == domain.VariantGoalSeeking {
		if field == e.policy.Target {
			return fmt.Errorf("%w: %s", domain.ErrOutputField, field)
		}
		if held == e.policy.Target {
			return fmt.Errorf("%w: %s cannot be held", domain.ErrOutputField, held)
		}
	}
	e.apply(field, v, domain.Rule{Held: held, Recomputed: domain.Other(field, held)})
	return nil
}

// Edit dispatches a raw edit through the policy table. Fields without a rule
// are outputs: the edit is rejected with domain.ErrOutputField and the plan is
// left as it was.
func (e *Engine) Edit(field domain.Field, v float64) error {
	if !field.Valid() {
		return fmt.Errorf("%w: %s", domain.ErrInvalidField, field)
	}
	rule, ok := e.policy.Rules[field]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrOutputField, field)
	}
	e.apply(field, v, rule)
	return nil
}

// Recompute derives target from the other two fields and marks it derived.
func (e *Engine) Recompute(target domain.Field) error {
	if !target.Valid() {
		return fmt.Errorf("%w: %s", domain.ErrInvalidField, target)
	}
	e.plan = derive(e.plan, target)
	return nil
}

// Reset restores the default plan. The policy, including the auto-calculate
// flag, is kept.
func (e *Engine) Reset() {
	e.plan = domain.DefaultPlan()
}

func (e *Engine) apply(field domain.Field, v float64, rule domain.Rule) {
	next := e.plan.With(field, finiteOrZero(v))
	if !e.policy.AutoCalculate {
		// El campo ya no es calculado: lo escribió el usuario.
		if next.Derived == field {
			next.Derived = domain.FieldNone
		}
		e.plan = next
		return
	}
	e.plan = derive(next, rule.Recomputed)
}

func derive(p domain.SavingsPlan, target domain.Field) domain.SavingsPlan {
	switch target {
	case domain.FieldGoal:
		p.Goal = finiteOrZero(p.Contribution * p.Duration)
	case domain.FieldContribution:
		p.Contribution = quotient(p.Goal, p.Duration)
	case domain.FieldDuration:
		p.Duration = quotient(p.Goal, p.Contribution)
	default:
		return p
	}
	p.Derived = target
	return p
}

func quotient(n, d float64) float64 {
	if d == 0 {
		return 0
	}
	return finiteOrZero(n / d)
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clonePolicy(p domain.Policy) domain.Policy {
	p.Rules = maps.Clone(p.Rules)
	return p
}
