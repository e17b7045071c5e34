package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/zeer-gl/thiqa-gateway/internal/session/domain"
)

const (
	sessionKeyPrefix  = "thiqa:session:"  // Session record: thiqa:session:{session_id}
	expandedKeyPrefix = "thiqa:expanded:" // Set of expanded quote cards: thiqa:expanded:{session_id}
	retriesKeyPrefix  = "thiqa:payretry:" // Payment retry counter: thiqa:payretry:{session_id}
	sessionTTL        = 30 * 24 * time.Hour
)

// SessionRepository handles Redis operations for gateway sessions. It is the
// injected session store: call sites get typed records, never raw JSON blobs.
type SessionRepository struct {
	client *redis.Client
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

// Create stores a new session
func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	s.UpdatedAt = time.Now()

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.client.Set(ctx, r.sessionKey(s.ID), data, sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	data, err := r.client.Get(ctx, r.sessionKey(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var s domain.Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// Update rewrites a session and refreshes its TTL
func (r *SessionRepository) Update(ctx context.Context, s *domain.Session) error {
	s.UpdatedAt = time.Now()

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.client.Set(ctx, r.sessionKey(s.ID), data, sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

// Delete removes a session and its satellite keys. Used by logout; this is the
// only path that invalidates the cached actor records.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.sessionKey(id))
	pipe.Del(ctx, r.expandedKey(id))
	pipe.Del(ctx, r.retriesKey(id))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// SetExpanded toggles a quote card's expanded state, independent per card.
func (r *SessionRepository) SetExpanded(ctx context.Context, sessionID, quoteID string, expanded bool) error {
	key := r.expandedKey(sessionID)

	pipe := r.client.Pipeline()
	if expanded {
		pipe.SAdd(ctx, key, quoteID)
	} else {
		pipe.SRem(ctx, key, quoteID)
	}
	pipe.Expire(ctx, key, sessionTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set expanded state: %w", err)
	}
	return nil
}

// Expanded returns the set of quote IDs whose cards are expanded.
func (r *SessionRepository) Expanded(ctx context.Context, sessionID string) (map[string]bool, error) {
	ids, err := r.client.SMembers(ctx, r.expandedKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list expanded cards: %w", err)
	}

	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// IncrementPaymentRetries bumps the per-session retry counter and returns the
// new count. Atomic, so two tabs cannot both land on the same retry number.
func (r *SessionRepository) IncrementPaymentRetries(ctx context.Context, sessionID string) (int, error) {
	key := r.retriesKey(sessionID)

	pipe := r.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, sessionTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment payment retries: %w", err)
	}
	return int(incr.Val()), nil
}

// PaymentRetries reads the per-session retry counter.
func (r *SessionRepository) PaymentRetries(ctx context.Context, sessionID string) (int, error) {
	n, err := r.client.Get(ctx, r.retriesKey(sessionID)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get payment retries: %w", err)
	}
	return n, nil
}

// ResetPaymentRetries clears the retry counter, e.g. when switching methods.
func (r *SessionRepository) ResetPaymentRetries(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.retriesKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to reset payment retries: %w", err)
	}
	return nil
}

// Helper methods for key generation
func (r *SessionRepository) sessionKey(id string) string {
	return fmt.Sprintf("%s%s", sessionKeyPrefix, id)
}

func (r *SessionRepository) expandedKey(id string) string {
	return fmt.Sprintf("%s%s", expandedKeyPrefix, id)
}

func (r *SessionRepository) retriesKey(id string) string {
	return fmt.Sprintf("%s%s", retriesKeyPrefix, id)
}
