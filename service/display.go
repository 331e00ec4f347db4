package service

import (
	"math"

	"github.com/shopspring/decimal"

	"savings-calculator/domain"
)

// PlanView is what a presentation layer renders after every engine call:
// whole-unit values plus the calculated marker.
type PlanView struct {
	Goal          int64              `json:"goal"`
	Contribution  int64              `json:"contribution"`
	Duration      int64              `json:"duration"`
	Derived       domain.Field       `json:"derived"`
	AutoCalculate bool               `json:"auto_calculate"`
	Editable      map[string]bool    `json:"editable"`
	Raw           domain.SavingsPlan `json:"raw"`
}

// NewPlanView rounds the plan for display.
func NewPlanView(plan domain.SavingsPlan, policy domain.Policy) PlanView {
	editable := make(map[string]bool, len(domain.Fields))
	for _, f := range domain.Fields {
		editable[f.String()] = policy.Editable(f)
	}
	return PlanView{
		Goal:          RoundWhole(plan.Goal),
		Contribution:  RoundWhole(plan.Contribution),
		Duration:      RoundWhole(plan.Duration),
		Derived:       plan.Derived,
		AutoCalculate: policy.AutoCalculate,
		Editable:      editable,
		Raw:           plan,
	}
}

// Calculated reports whether f carries the calculated badge.
func (v PlanView) Calculated(f domain.Field) bool {
	return f.Valid() && v.Derived == f
}

// Value returns the rounded value of f.
func (v PlanView) Value(f domain.Field) int64 {
	switch f {
	case domain.FieldGoal:
		return v.Goal
	case domain.FieldContribution:
		return v.Contribution
	case domain.FieldDuration:
		return v.Duration
	}
	return 0
}

// RoundWhole rounds half up to the nearest whole unit. Non-finite values never
// reach here from the engine, but are shown as 0 all the same.
func RoundWhole(v float64) int64 {
	if math.IsNaN(v) || v > 1e18 || v < -1e18 {
		return 0
	}
	return decimal.NewFromFloat(v).Add(decimal.NewFromFloat(0.5)).Floor().IntPart()
}
