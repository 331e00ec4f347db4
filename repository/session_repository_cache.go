package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"savings-calculator/domain"
)

const sessionKeyPrefix = "savings:session:"

// SessionRepositoryCache stores sessions as JSON in a CacheRepository. Every
// save refreshes the ttl, so idle sessions expire on their own.
type SessionRepositoryCache struct {
	cache CacheRepository
	ttl   time.Duration
}

// NewSessionRepositoryCache creates a cache-backed session repository.
func NewSessionRepositoryCache(cache CacheRepository, ttl time.Duration) *SessionRepositoryCache {
	return &SessionRepositoryCache{cache: cache, ttl: ttl}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

// Load returns domain.ErrSessionNotFound when the id is unknown or expired.
func (r *SessionRepositoryCache) Load(ctx context.Context, id string) (domain.Session, error) {
	raw, ok, err := r.cache.Get(ctx, sessionKey(id))
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session %s: %w", id, err)
	}
	if !ok {
		return domain.Session{}, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return domain.Session{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return session, nil
}

// Save stores the session, overwriting any previous snapshot.
func (r *SessionRepositoryCache) Save(ctx context.Context, session domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}
	if err := r.cache.Set(ctx, sessionKey(session.ID), string(data), r.ttl); err != nil {
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}
	return nil
}

func (r *SessionRepositoryCache) Delete(ctx context.Context, id string) error {
	if err := r.cache.Delete(ctx, sessionKey(id)); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}
