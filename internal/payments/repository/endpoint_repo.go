package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	endpointKey = "thiqa:payments:endpoint" // Resolved payment-methods path
	endpointTTL = 24 * time.Hour
)

// EndpointRepository caches which candidate payment-methods path currently
// answers. The upstream moves this path between deployments; per-request
// probing is the fallback, not the norm.
type EndpointRepository struct {
	client *redis.Client
}

// NewEndpointRepository creates a new EndpointRepository
func NewEndpointRepository(client *redis.Client) *EndpointRepository {
	return &EndpointRepository{client: client}
}

// Resolved returns the cached working path, or "" when none is cached.
func (r *EndpointRepository) Resolved(ctx context.Context) (string, error) {
	path, err := r.client.Get(ctx, endpointKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get resolved endpoint: %w", err)
	}
	return path, nil
}

// SetResolved caches the working path.
func (r *EndpointRepository) SetResolved(ctx context.Context, path string) error {
	if err := r.client.Set(ctx, endpointKey, path, endpointTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache resolved endpoint: %w", err)
	}
	return nil
}

// Invalidate drops the cached path so the next request re-probes.
func (r *EndpointRepository) Invalidate(ctx context.Context) error {
	if err := r.client.Del(ctx, endpointKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate resolved endpoint: %w", err)
	}
	return nil
}
