package integration

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeer-gl/thiqa-gateway/internal/session/domain"
	sessionrepo "github.com/zeer-gl/thiqa-gateway/internal/session/repository"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	// Test connection
	ctx := context.Background()
	err = client.Ping(ctx).Err()
	require.NoError(t, err)

	return client, mr
}

func TestSessionRepository_CreateGetUpdate(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	repo := sessionrepo.NewSessionRepository(client)
	ctx := context.Background()

	t.Run("create assigns id and timestamps", func(t *testing.T) {
		s := &domain.Session{
			Role:              domain.RoleProfessional,
			ProfessionalToken: "pro-token",
			LoggedIn:          true,
			Professional: &domain.Professional{
				ID:   "64f000000000000000000002",
				Name: "Amal",
			},
		}

		require.NoError(t, repo.Create(ctx, s))
		assert.NotEmpty(t, s.ID)
		assert.False(t, s.CreatedAt.IsZero())

		got, err := repo.Get(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleProfessional, got.Role)
		assert.Equal(t, "pro-token", got.ProfessionalToken)
		require.NotNil(t, got.Professional)
		assert.Equal(t, "Amal", got.Professional.Name)
	})

	t.Run("update rewrites cached record", func(t *testing.T) {
		s := &domain.Session{
			Role:              domain.RoleProfessional,
			ProfessionalToken: "pro-token",
			LoggedIn:          true,
			Professional:      &domain.Professional{ID: "64f000000000000000000002", Mobile: "5550001"},
		}
		require.NoError(t, repo.Create(ctx, s))

		s.Professional.Mobile = "5559999"
		require.NoError(t, repo.Update(ctx, s))

		got, err := repo.Get(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, "5559999", got.Professional.Mobile)
	})

	t.Run("missing session", func(t *testing.T) {
		_, err := repo.Get(ctx, "no-such-session")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}

func TestSessionRepository_Delete(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	repo := sessionrepo.NewSessionRepository(client)
	ctx := context.Background()

	s := &domain.Session{Role: domain.RoleCustomer, CustomerToken: "cust-token", LoggedIn: true}
	require.NoError(t, repo.Create(ctx, s))
	require.NoError(t, repo.SetExpanded(ctx, s.ID, "64f000000000000000000001", true))
	_, err := repo.IncrementPaymentRetries(ctx, s.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, s.ID))

	_, err = repo.Get(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	expanded, err := repo.Expanded(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, expanded)

	retries, err := repo.PaymentRetries(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, retries)
}

func TestSessionRepository_ExpandedCards(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	repo := sessionrepo.NewSessionRepository(client)
	ctx := context.Background()

	sessionID := "sess-1"
	quoteA := "64f00000000000000000000a"
	quoteB := "64f00000000000000000000b"

	// Each card toggles independently of the others.
	require.NoError(t, repo.SetExpanded(ctx, sessionID, quoteA, true))
	require.NoError(t, repo.SetExpanded(ctx, sessionID, quoteB, true))
	require.NoError(t, repo.SetExpanded(ctx, sessionID, quoteA, false))

	expanded, err := repo.Expanded(ctx, sessionID)
	require.NoError(t, err)
	assert.False(t, expanded[quoteA])
	assert.True(t, expanded[quoteB])
}

func TestSessionRepository_PaymentRetries(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	repo := sessionrepo.NewSessionRepository(client)
	ctx := context.Background()

	sessionID := "sess-retries"

	n, err := repo.PaymentRetries(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	for want := 1; want <= 3; want++ {
		n, err = repo.IncrementPaymentRetries(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	require.NoError(t, repo.ResetPaymentRetries(ctx, sessionID))

	n, err = repo.PaymentRetries(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
