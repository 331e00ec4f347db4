package domain

// ProjectionPeriod is the state of the savings pot after one period.
type ProjectionPeriod struct {
	Period       int     `json:"period"`
	Contribution float64 `json:"contribution"`
	Saved        float64 `json:"saved"`
	Remaining    float64 `json:"remaining"`
}

// Projection simulates paying the contribution in period by period until the
// goal is met. PeriodsToGoal can differ from the plan's duration when
// auto-calculate is off or the duration is fractional.
type Projection struct {
	Goal           float64            `json:"goal"`
	Contribution   float64            `json:"contribution"`
	PlannedPeriods float64            `json:"planned_periods"`
	PeriodsToGoal  int                `json:"periods_to_goal"`
	Reachable      bool               `json:"reachable"`
	Schedule       []ProjectionPeriod `json:"schedule"`
}
