package repository

import (
	"context"

	"savings-calculator/domain"
)

type SessionRepository interface {
	Load(ctx context.Context, id string) (domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
	Delete(ctx context.Context, id string) error
}
