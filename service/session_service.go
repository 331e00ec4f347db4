package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"savings-calculator/domain"
	"savings-calculator/repository"
)

// SessionService hosts one Engine per calculator session. Engines are not
// safe for concurrent use, so every operation runs under the service mutex:
// load the snapshot, restore the engine, apply, save.
type SessionService struct {
	mu       sync.Mutex
	repo     repository.SessionRepository
	defaults domain.Policy
	now      func() time.Time
	newID    func() string
}

// NewSessionService creates a SessionService. defaults is the policy used for
// sessions created without an explicit variant.
func NewSessionService(
	repo repository.SessionRepository,
	defaults domain.Policy,
) (*SessionService, error) {
	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("default policy: %w", err)
	}
	return &SessionService{
		repo:     repo,
		defaults: clonePolicy(defaults),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}, nil
}

// CreateOptions overrides the default policy for a new session.
type CreateOptions struct {
	Variant       string
	Target        string
	AutoCalculate *bool
}

func (o CreateOptions) policy(defaults domain.Policy) (domain.Policy, error) {
	if o.Variant == "" && o.Target == "" && o.AutoCalculate == nil {
		return clonePolicy(defaults), nil
	}

	variant := defaults.Variant
	if o.Variant != "" {
		v, err := domain.ParseVariant(o.Variant)
		if err != nil {
			return domain.Policy{}, err
		}
		variant = v
	}
	target := defaults.Target
	if o.Target != "" {
		t, err := domain.ParseField(o.Target)
		if err != nil {
			return domain.Policy{}, err
		}
		target = t
	}
	auto := true
	if variant == defaults.Variant {
		auto = defaults.AutoCalculate
	}
	if o.AutoCalculate != nil {
		auto = *o.AutoCalculate
	}
	return domain.PolicyFor(variant, target, auto)
}

// Create starts a session at the default plan.
func (s *SessionService) Create(ctx context.Context, opts CreateOptions) (domain.Session, error) {
	policy, err := opts.policy(s.defaults)
	if err != nil {
		return domain.Session{}, err
	}
	engine, err := NewEngine(policy)
	if err != nil {
		return domain.Session{}, err
	}

	now := s.now()
	session := domain.Session{
		ID:        s.newID(),
		Policy:    engine.Policy(),
		Plan:      engine.Plan(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Save(ctx, session); err != nil {
		return domain.Session{}, err
	}
	log.Debug().
		Str("session", session.ID).
		Str("variant", string(policy.Variant)).
		Msg("session created")
	return session, nil
}

func (s *SessionService) Get(ctx context.Context, id string) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Load(ctx, id)
}

// Edit applies a control change through the session's policy table. Slider
// values are clamped to the variant's range; number-field values are passed
// through as typed.
func (s *SessionService) Edit(
	ctx context.Context,
	id string,
	field domain.Field,
	value float64,
	source domain.Source,
) (domain.Session, error) {
	return s.update(ctx, id, "edit", func(e *Engine) error {
		if source == domain.SourceSlider {
			if r, ok := domain.RangesFor(e.Policy().Variant)[field]; ok {
				value = r.Clamp(value)
			}
		}
		return e.Edit(field, value)
	})
}

// Set stores a value with an explicit held field, bypassing the policy table.
func (s *SessionService) Set(
	ctx context.Context,
	id string,
	field domain.Field,
	value float64,
	held domain.Field,
) (domain.Session, error) {
	return s.update(ctx, id, "set", func(e *Engine) error {
		return e.Set(field, value, held)
	})
}

func (s *SessionService) Recompute(ctx context.Context, id string, target domain.Field) (domain.Session, error) {
	return s.update(ctx, id, "recompute", func(e *Engine) error {
		return e.Recompute(target)
	})
}

func (s *SessionService) SetAutoCalculate(ctx context.Context, id string, on bool) (domain.Session, error) {
	return s.update(ctx, id, "auto", func(e *Engine) error {
		return e.SetAutoCalculate(on)
	})
}

func (s *SessionService) Reset(ctx context.Context, id string) (domain.Session, error) {
	return s.update(ctx, id, "reset", func(e *Engine) error {
		e.Reset()
		return nil
	})
}

// Delete ends a session. Deleting an unknown id is not an error.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Delete(ctx, id)
}

// DefaultPolicy returns the policy new sessions get without overrides.
func (s *SessionService) DefaultPolicy() domain.Policy {
	return clonePolicy(s.defaults)
}

func (s *SessionService) update(
	ctx context.Context,
	id string,
	op string,
	apply func(*Engine) error,
) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.repo.Load(ctx, id)
	if err != nil {
		return domain.Session{}, err
	}
	engine, err := RestoreEngine(session.Policy, session.Plan)
	if err != nil {
		return domain.Session{}, fmt.Errorf("restore session %s: %w", id, err)
	}
	if err := apply(engine); err != nil {
		return session, err
	}

	session.Plan = engine.Plan()
	session.Policy = engine.Policy()
	session.UpdatedAt = s.now()

	if err := s.repo.Save(ctx, session); err != nil {
		log.Error().Err(err).Str("session", id).Str("op", op).Msg("failed to save session")
		return domain.Session{}, err
	}
	log.Debug().
		Str("session", id).
		Str("op", op).
		Stringer("derived", session.Plan.Derived).
		Msg("session updated")
	return session, nil
}
