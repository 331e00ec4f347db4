package service

import (
	"errors"
	"math"
	"testing"

	"savings-calculator/domain"
)

const tolerance = 1e-9

func newTestEngine(t *testing.T, policy domain.Policy) *Engine {
	t.Helper()
	e, err := NewEngine(policy)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func assertClose(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > tolerance {
		t.Errorf("%s: expected %v, got %v", name, want, got)
	}
}

func TestNewEngine_Defaults(t *testing.T) {
	e := newTestEngine(t, domain.TwoFieldPolicy())

	plan := e.Plan()
	if plan != domain.DefaultPlan() {
		t.Fatalf("expected default plan, got %+v", plan)
	}
	if plan.Derived != domain.FieldNone {
		t.Errorf("expected no derived field, got %s", plan.Derived)
	}
}

func TestNewEngine_InvalidPolicy(t *testing.T) {
	_, err := NewEngine(domain.Policy{})
	if !errors.Is(err, domain.ErrInvalidPolicy) {
		t.Fatalf("expected ErrInvalidPolicy, got %v", err)
	}
}

func TestRecompute_Identities(t *testing.T) {
	cases := []struct {
		goal, contribution, duration float64
	}{
		{10000, 250, 40},
		{12345.67, 13.5, 77},
		{0.5, 0.25, 3},
		{99999, 1999, 119},
	}

	for _, tc := range cases {
		e, err := RestoreEngine(domain.TwoFieldPolicy(), domain.SavingsPlan{
			Goal: tc.goal, Contribution: tc.contribution, Duration: tc.duration,
		})
		if err != nil {
			t.Fatalf("restore: %v", err)
		}

		if err := e.Recompute(domain.FieldGoal); err != nil {
			t.Fatalf("recompute goal: %v", err)
		}
		assertClose(t, "goal", e.Plan().Goal, tc.contribution*tc.duration)
		if e.Plan().Derived != domain.FieldGoal {
			t.Errorf("expected goal derived, got %s", e.Plan().Derived)
		}

		goal := e.Plan().Goal
		if err := e.Recompute(domain.FieldContribution); err != nil {
			t.Fatalf("recompute contribution: %v", err)
		}
		assertClose(t, "contribution", e.Plan().Contribution, goal/tc.duration)

		contribution := e.Plan().Contribution
		if err := e.Recompute(domain.FieldDuration); err != nil {
			t.Fatalf("recompute duration: %v", err)
		}
		assertClose(t, "duration", e.Plan().Duration, goal/contribution)
	}
}

func TestRecompute_DivisionByZero(t *testing.T) {
	e, err := RestoreEngine(domain.TwoFieldPolicy(), domain.SavingsPlan{
		Goal: 10000, Contribution: 0, Duration: 0,
	})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}

	if err := e.Recompute(domain.FieldContribution); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if got := e.Plan().Contribution; got != 0 {
		t.Errorf("expected contribution 0, got %v", got)
	}

	if err := e.Recompute(domain.FieldDuration); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if got := e.Plan().Duration; got != 0 {
		t.Errorf("expected duration 0, got %v", got)
	}
}

func TestRecompute_Overflow(t *testing.T) {
	e, err := RestoreEngine(domain.TwoFieldPolicy(), domain.SavingsPlan{
		Goal: 1, Contribution: math.MaxFloat64, Duration: 10,
	})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}

	if err := e.Recompute(domain.FieldGoal); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if got := e.Plan().Goal; got != 0 {
		t.Errorf("expected overflowing product to become 0, got %v", got)
	}
}

func TestRecompute_Idempotent(t *testing.T) {
	e := newTestEngine(t, domain.TwoFieldPolicy())
	if err := e.SetGoal(777, domain.FieldDuration); err != nil {
		t.Fatalf("set goal: %v", err)
	}

	for _, target := range domain.Fields {
		if err := e.Recompute(target); err != nil {
			t.Fatalf("recompute %s: %v", target, err)
		}
		first := e.Plan()
		if err := e.Recompute(target); err != nil {
			t.Fatalf("recompute %s: %v", target, err)
		}
		if second := e.Plan(); second != first {
			t.Errorf("recompute %s not idempotent: %+v then %+v", target, first, second)
		}
	}
}

func TestRecompute_InvalidTarget(t *testing.T) {
	e := newTestEngine(t, domain.TwoFieldPolicy())
	err := e.Recompute(domain.FieldNone)
	if !errors.Is(err, domain.ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
	if e.Plan() != domain.DefaultPlan() {
		t.Errorf("plan should not change on invalid target")
	}
}

func TestReset_RestoresDefaults(t *testing.T) {
	e := newTestEngine(t, domain.AutoCalculatePolicy(true))
	_ = e.Edit(domain.FieldDuration, 12)
	_ = e.Edit(domain.FieldGoal, math.Inf(1))
	_ = e.SetAutoCalculate(false)

	e.Reset()

	if got := e.Plan(); got != domain.DefaultPlan() {
		t.Fatalf("expected defaults after reset, got %+v", got)
	}
	if e.AutoCalculate() {
		t.Errorf("reset should keep the auto-calculate flag")
	}
}

func TestSetGoal_HoldDuration(t *testing.T) {
	e := newTestEngine(t, domain.TwoFieldPolicy())

	if err := e.SetGoal(20000, domain.FieldDuration); err != nil {
		t.Fatalf("set goal: %v", err)
	}

	plan := e.Plan()
	if plan.Contribution != 500 {
		t.Errorf("expected contribution 500, got %v", plan.Contribution)
	}
	if plan.Duration != 40 {
		t.Errorf("expected duration unchanged at 40, got %v", plan.Duration)
	}
	if plan.Derived != domain.FieldContribution {
		t.Errorf("expected contribution derived, got %s", plan.Derived)
	}
}

func TestSet_AllHeldCombinations(t *testing.T) {
	cases := []struct {
		name    string
		field   domain.Field
		value   float64
		held    domain.Field
		derived domain.Field
		want    float64
	}{
		{"goal hold contribution", domain.FieldGoal, 5000, domain.FieldContribution, domain.FieldDuration, 20},
		{"goal hold duration", domain.FieldGoal, 5000, domain.FieldDuration, domain.FieldContribution, 125},
		{"contribution hold goal", domain.FieldContribution, 500, domain.FieldGoal, domain.FieldDuration, 20},
		{"contribution hold duration", domain.FieldContribution, 500, domain.FieldDuration, domain.FieldGoal, 20000},
		{"duration hold goal", domain.FieldDuration, 20, domain.FieldGoal, domain.FieldContribution, 500},
		{"duration hold contribution", domain.FieldDuration, 20, domain.FieldContribution, domain.FieldGoal, 5000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t, domain.TwoFieldPolicy())
			if err := e.Set(tc.field, tc.value, tc.held); err != nil {
				t.Fatalf("set: %v", err)
			}
			plan := e.Plan()
			if plan.Value(tc.field) != tc.value {
				t.Errorf("expected %s = %v, got %v", tc.field, tc.value, plan.Value(tc.field))
			}
			if plan.Value(tc.held) != domain.DefaultPlan().Value(tc.held) {
				t.Errorf("held %s changed to %v", tc.held, plan.Value(tc.held))
			}
			if plan.Derived != tc.derived {
				t.Errorf("expected %s derived, got %s", tc.derived, plan.Derived)
			}
			assertClose(t, tc.derived.String(), plan.Value(tc.derived), tc.want)
		})
	}
}

func TestSet_InvalidHeld(t *testing.T) {
	e := newTestEngine(t, domain.TwoFieldPolicy())

	for _, held := range []domain.Field{domain.FieldGoal, domain.FieldNone} {
		err := e.SetGoal(1, held)
		if !errors.Is(err, domain.ErrInvalidHeld) {
			t.Errorf("held %s: expected ErrInvalidHeld, got %v", held, err)
		}
	}
	if e.Plan() != domain.DefaultPlan() {
		t.Errorf("plan should not change on invalid held field")
	}
}

func TestSet_ZeroDivisorFallsBackToZero(t *testing.T) {
	e := newTestEngine(t, domain.TwoFieldPolicy())

	if err := e.SetContribution(0, domain.FieldGoal); err != nil {
		t.Fatalf("set contribution: %v", err)
	}
	if got := e.Plan().Duration; got != 0 {
		t.Errorf("expected duration 0, got %v", got)
	}
	if e.Plan().Derived != domain.FieldDuration {
		t.Errorf("expected duration derived, got %s", e.Plan().Derived)
	}
}

func TestSet_NonFiniteInputIsZeroed(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		e := newTestEngine(t, domain.TwoFieldPolicy())
		if err := e.SetGoal(v, domain.FieldDuration); err != nil {
			t.Fatalf("set goal: %v", err)
		}
		plan := e.Plan()
		if plan.Goal != 0 || plan.Contribution != 0 {
			t.Errorf("input %v: expected goal and contribution 0, got %+v", v, plan)
		}
		if plan.Duration != 40 {
			t.Errorf("input %v: duration should be held, got %v", v, plan.Duration)
		}
	}
}

func TestEdit_TwoFieldDispatch(t *testing.T) {
	e := newTestEngine(t, domain.TwoFieldPolicy())

	if err := e.Edit(domain.FieldGoal, 20000); err != nil {
		t.Fatalf("edit goal: %v", err)
	}
	if p := e.Plan(); p.Contribution != 500 || p.Duration != 40 || p.Derived != domain.FieldContribution {
		t.Fatalf("goal edit: unexpected plan %+v", p)
	}

	if err := e.Edit(domain.FieldContribution, 1000); err != nil {
		t.Fatalf("edit contribution: %v", err)
	}
	if p := e.Plan(); p.Goal != 20000 || p.Duration != 20 || p.Derived != domain.FieldDuration {
		t.Fatalf("contribution edit: unexpected plan %+v", p)
	}

	// Duration edits also hold goal: goal is never recomputed.
	if err := e.Edit(domain.FieldDuration, 80); err != nil {
		t.Fatalf("edit duration: %v", err)
	}
	if p := e.Plan(); p.Goal != 20000 || p.Contribution != 250 || p.Derived != domain.FieldContribution {
		t.Fatalf("duration edit: unexpected plan %+v", p)
	}
}

func TestEdit_AutoCalculateDispatch(t *testing.T) {
	e := newTestEngine(t, domain.AutoCalculatePolicy(true))

	if err := e.Edit(domain.FieldDuration, 60); err != nil {
		t.Fatalf("edit duration: %v", err)
	}
	p := e.Plan()
	if p.Goal != 15000 || p.Contribution != 250 || p.Derived != domain.FieldGoal {
		t.Fatalf("duration edit: unexpected plan %+v", p)
	}
}

func TestEdit_KeepsProductInvariant(t *testing.T) {
	policies := []domain.Policy{domain.TwoFieldPolicy(), domain.AutoCalculatePolicy(true)}
	edits := []struct {
		field domain.Field
		value float64
	}{
		{domain.FieldGoal, 31000},
		{domain.FieldContribution, 420},
		{domain.FieldDuration, 17},
		{domain.FieldGoal, 150},
		{domain.FieldDuration, 233},
	}

	for _, policy := range policies {
		e := newTestEngine(t, policy)
		for _, edit := range edits {
			if err := e.Edit(edit.field, edit.value); err != nil {
				t.Fatalf("%s edit %s: %v", policy.Variant, edit.field, err)
			}
			p := e.Plan()
			if math.Abs(p.Goal-p.Contribution*p.Duration) > 1e-6 {
				t.Errorf("%s after %s edit: goal %v != %v × %v", policy.Variant, edit.field, p.Goal, p.Contribution, p.Duration)
			}
		}
	}
}

func TestEdit_AutoCalculateOff(t *testing.T) {
	e := newTestEngine(t, domain.AutoCalculatePolicy(false))

	if err := e.Edit(domain.FieldContribution, 300); err != nil {
		t.Fatalf("edit contribution: %v", err)
	}
	p := e.Plan()
	if p.Goal != 10000 || p.Duration != 40 || p.Contribution != 300 {
		t.Fatalf("expected verbatim store, got %+v", p)
	}
	if p.Derived != domain.FieldNone {
		t.Errorf("expected no derived field, got %s", p.Derived)
	}

	if err := e.Recompute(domain.FieldDuration); err != nil {
		t.Fatalf("recompute duration: %v", err)
	}
	p = e.Plan()
	assertClose(t, "duration", p.Duration, p.Goal/300)
	if p.Derived != domain.FieldDuration {
		t.Errorf("expected duration derived, got %s", p.Derived)
	}
}

func TestEdit_AutoOffClearsMarkerWhenDerivedFieldIsTyped(t *testing.T) {
	e := newTestEngine(t, domain.AutoCalculatePolicy(true))
	_ = e.Edit(domain.FieldGoal, 20000) // contribution derived
	if err := e.SetAutoCalculate(false); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	_ = e.Edit(domain.FieldDuration, 10)
	if got := e.Plan().Derived; got != domain.FieldContribution {
		t.Errorf("editing another field should keep the marker, got %s", got)
	}

	_ = e.Edit(domain.FieldContribution, 123)
	if got := e.Plan().Derived; got != domain.FieldNone {
		t.Errorf("typing into the derived field should clear the marker, got %s", got)
	}
}

func TestSetAutoCalculate_FixedVariant(t *testing.T) {
	e := newTestEngine(t, domain.TwoFieldPolicy())

	err := e.SetAutoCalculate(false)
	if !errors.Is(err, domain.ErrAutoCalculateFixed) {
		t.Fatalf("expected ErrAutoCalculateFixed, got %v", err)
	}
	if !e.AutoCalculate() {
		t.Errorf("auto-calculate should still be on")
	}
	if err := e.SetAutoCalculate(true); err != nil {
		t.Errorf("setting the current value should be a no-op, got %v", err)
	}
}

func TestEdit_GoalSeeking(t *testing.T) {
	policy, err := domain.GoalSeekingPolicy(domain.FieldContribution)
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	e := newTestEngine(t, policy)

	if err := e.Edit(domain.FieldGoal, 12000); err != nil {
		t.Fatalf("edit goal: %v", err)
	}
	if err := e.Edit(domain.FieldDuration, 24); err != nil {
		t.Fatalf("edit duration: %v", err)
	}

	p := e.Plan()
	if p.Contribution != 500 {
		t.Errorf("expected contribution 500, got %v", p.Contribution)
	}
	if p.Goal != 12000 || p.Duration != 24 {
		t.Errorf("edited fields should keep their values, got %+v", p)
	}
	if p.Derived != domain.FieldContribution {
		t.Errorf("expected contribution derived, got %s", p.Derived)
	}
}

func TestEdit_GoalSeekingRejectsTarget(t *testing.T) {
	for _, target := range domain.Fields {
		policy, err := domain.GoalSeekingPolicy(target)
		if err != nil {
			t.Fatalf("policy: %v", err)
		}
		e := newTestEngine(t, policy)

		err = e.Edit(target, 1)
		if !errors.Is(err, domain.ErrOutputField) {
			t.Errorf("target %s: expected ErrOutputField, got %v", target, err)
		}
		if e.Plan() != domain.DefaultPlan() {
			t.Errorf("target %s: rejected edit changed the plan", target)
		}
	}
}

func TestSet_GoalSeekingProtectsTarget(t *testing.T) {
	policy, err := domain.GoalSeekingPolicy(domain.FieldContribution)
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	e := newTestEngine(t, policy)

	if err := e.Set(domain.FieldContribution, 999, domain.FieldGoal); !errors.Is(err, domain.ErrOutputField) {
		t.Errorf("setting the target: expected ErrOutputField, got %v", err)
	}
	if err := e.Set(domain.FieldGoal, 5000, domain.FieldContribution); !errors.Is(err, domain.ErrOutputField) {
		t.Errorf("holding the target: expected ErrOutputField, got %v", err)
	}
	if e.Plan() != domain.DefaultPlan() {
		t.Fatalf("rejected sets changed the plan: %+v", e.Plan())
	}

	if err := e.Set(domain.FieldGoal, 5000, domain.FieldDuration); err != nil {
		t.Fatalf("set goal holding duration: %v", err)
	}
	p := e.Plan()
	if p.Contribution != 125 || p.Derived != domain.FieldContribution {
		t.Errorf("expected contribution 125 derived, got %+v", p)
	}
}

func TestEdit_GoalSeekingGoal(t *testing.T) {
	policy, _ := domain.GoalSeekingPolicy(domain.FieldGoal)
	e := newTestEngine(t, policy)

	_ = e.Edit(domain.FieldContribution, 100)
	_ = e.Edit(domain.FieldDuration, 12)

	if got := e.Plan().Goal; got != 1200 {
		t.Errorf("expected goal 1200, got %v", got)
	}
}

func TestRestoreEngine_SanitizesPlan(t *testing.T) {
	e, err := RestoreEngine(domain.TwoFieldPolicy(), domain.SavingsPlan{
		Goal: math.NaN(), Contribution: math.Inf(1), Duration: 3, Derived: domain.Field(42),
	})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	p := e.Plan()
	if p.Goal != 0 || p.Contribution != 0 || p.Duration != 3 || p.Derived != domain.FieldNone {
		t.Errorf("unexpected restored plan %+v", p)
	}
}

func TestPolicy_ReturnsCopy(t *testing.T) {
	e := newTestEngine(t, domain.TwoFieldPolicy())

	p := e.Policy()
	delete(p.Rules, domain.FieldGoal)

	if !e.Policy().Editable(domain.FieldGoal) {
		t.Errorf("mutating the returned policy must not affect the engine")
	}
}
