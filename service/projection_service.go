package service

import (
	"context"
	"math"

	"github.com/rs/zerolog/log"

	"savings-calculator/domain"
)

// roundTo2Decimals redondea un float64 a 2 decimales
func roundTo2Decimals(value float64) float64 {
	return math.Round(value*100) / 100
}

type ProjectionService struct {
	sessions *SessionService
}

func NewProjectionService(sessions *SessionService) *ProjectionService {
	return &ProjectionService{sessions: sessions}
}

// Project builds the period-by-period schedule of a session's current plan.
func (s *ProjectionService) Project(ctx context.Context, id string) (domain.Projection, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return domain.Projection{}, err
	}
	return BuildProjection(session.Plan), nil
}

// BuildProjection simulates the plan. A goal of 0 is reached immediately; a
// contribution of 0 never reaches a positive goal and yields no schedule.
func BuildProjection(plan domain.SavingsPlan) domain.Projection {
	projection := domain.Projection{
		Goal:           roundTo2Decimals(plan.Goal),
		Contribution:   roundTo2Decimals(plan.Contribution),
		PlannedPeriods: plan.Duration,
		Schedule:       []domain.ProjectionPeriod{},
	}

	if plan.Goal <= ProjectionTolerance {
		projection.Reachable = true
		return projection
	}
	if plan.Contribution <= 0 {
		return projection
	}

	saved := 0.0
	period := 0

	// Simular aportes periodo a periodo hasta alcanzar la meta
	for plan.Goal-saved > ProjectionTolerance {
		if period >= MaxProjectionPeriods {
			log.Warn().
				Int("limit", MaxProjectionPeriods).
				Float64("goal", plan.Goal).
				Float64("contribution", plan.Contribution).
				Msg("projection reached maximum periods limit")
			break
		}
		period++

		// El último aporte solo cubre lo que falta
		payment := math.Min(plan.Contribution, plan.Goal-saved)
		saved += payment

		projection.Schedule = append(projection.Schedule, domain.ProjectionPeriod{
			Period:       period,
			Contribution: roundTo2Decimals(payment),
			Saved:        roundTo2Decimals(saved),
			Remaining:    roundTo2Decimals(math.Max(0, plan.Goal-saved)),
		})
	}

	projection.PeriodsToGoal = period
	projection.Reachable = plan.Goal-saved <= ProjectionTolerance
	return projection
}
