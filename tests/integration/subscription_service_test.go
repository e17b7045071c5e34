package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sessiondomain "github.com/zeer-gl/thiqa-gateway/internal/session/domain"
	sessionrepo "github.com/zeer-gl/thiqa-gateway/internal/session/repository"
	subdomain "github.com/zeer-gl/thiqa-gateway/internal/subscription/domain"
	subservice "github.com/zeer-gl/thiqa-gateway/internal/subscription/service"
	"github.com/zeer-gl/thiqa-gateway/internal/upstream"
)

func TestSubscriptionService_Plans(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/professional/subscription/plans" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		// Features arrive as a comma string here; the decoder tolerates it.
		w.Write([]byte(`{"plans":[{"_id":"` + testPlanID + `","name":"Gold","price":99,"features":"priority listing,badge"}]}`))
	}))
	defer server.Close()

	sessions := sessionrepo.NewSessionRepository(client)
	svc := subservice.NewSubscriptionService(upstream.NewClient(server.URL), sessions)
	sess := professionalSession(t, sessions, "96650123456")

	plans, err := svc.Plans(context.Background(), sess)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "Gold", plans[0].Name)
	assert.Equal(t, subdomain.FeatureList{"priority listing", "badge"}, plans[0].Features)
}

func TestSubscriptionService_PurchaseCOD(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	var purchaseBody map[string]string
	var profileFetches atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/professional/subscription/purchase":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&purchaseBody))
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"data":{"status":"pending","professional":{"_id":"` + proID + `","name":"Amal","mobile":"96650123456","subscriptionStatus":"pending"}}}`))
		case "/professional/get-professsional/" + proID:
			profileFetches.Add(1)
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"professional":{"_id":"` + proID + `","name":"Amal"}}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	sessions := sessionrepo.NewSessionRepository(client)
	svc := subservice.NewSubscriptionService(upstream.NewClient(server.URL), sessions)
	sess := professionalSession(t, sessions, "+966 50 123 456")
	ctx := context.Background()

	outcome, err := svc.PurchaseCOD(ctx, sess, testPlanID)
	require.NoError(t, err)
	assert.Equal(t, "pending", outcome.Status)

	// Wire body: the plan, the literal cod method, the normalized mobile.
	assert.Equal(t, testPlanID, purchaseBody["planId"])
	assert.Equal(t, "cod", purchaseBody["paymentMethodId"])
	assert.Equal(t, "96650123456", purchaseBody["CustomerMobile"])

	// The purchase response carried the record, so no refetch happened and the
	// cached session mirrors the response.
	assert.Equal(t, int64(0), profileFetches.Load())
	cached, err := sessions.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, cached.Professional)
	assert.Equal(t, "pending", cached.Professional.SubscriptionStatus)
}

func TestSubscriptionService_PurchaseCOD_RefetchWhenResponseIncomplete(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	var profileFetches atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/professional/subscription/purchase":
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"data":{"status":"pending"}}`))
		case "/professional/get-professsional/" + proID:
			profileFetches.Add(1)
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"professional":{"_id":"` + proID + `","name":"Amal","subscriptionStatus":"pending"}}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	sessions := sessionrepo.NewSessionRepository(client)
	svc := subservice.NewSubscriptionService(upstream.NewClient(server.URL), sessions)
	sess := professionalSession(t, sessions, "96650123456")

	outcome, err := svc.PurchaseCOD(context.Background(), sess, testPlanID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), profileFetches.Load())
	require.NotNil(t, outcome.Professional)
	assert.Equal(t, "pending", outcome.Professional.SubscriptionStatus)
}

func TestSubscriptionService_PurchaseCOD_UpstreamRejection(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":false,"message":"subscription purchase failed"}`))
	}))
	defer server.Close()

	sessions := sessionrepo.NewSessionRepository(client)
	svc := subservice.NewSubscriptionService(upstream.NewClient(server.URL), sessions)
	sess := professionalSession(t, sessions, "96650123456")

	// A 2xx whose payload says success:false is a failed purchase, not an
	// empty success.
	outcome, err := svc.PurchaseCOD(context.Background(), sess, testPlanID)
	require.Error(t, err)
	assert.Nil(t, outcome)

	ue, ok := upstream.AsError(err)
	require.True(t, ok)
	assert.Equal(t, upstream.KindRejected, ue.Kind)

	// The cached record is untouched by the failed purchase.
	cached, err := sessions.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Empty(t, cached.Professional.SubscriptionStatus)
}

func TestSubscriptionService_PurchaseCOD_Guards(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected upstream call: %s", r.URL.Path)
	}))
	defer server.Close()

	sessions := sessionrepo.NewSessionRepository(client)
	svc := subservice.NewSubscriptionService(upstream.NewClient(server.URL), sessions)
	ctx := context.Background()

	t.Run("customer role", func(t *testing.T) {
		sess := &sessiondomain.Session{ID: "s", Role: sessiondomain.RoleCustomer, CustomerToken: "c", LoggedIn: true}
		_, err := svc.PurchaseCOD(ctx, sess, testPlanID)
		assert.ErrorIs(t, err, sessiondomain.ErrWrongRole)
	})

	t.Run("malformed plan id", func(t *testing.T) {
		sess := professionalSession(t, sessions, "96650123456")
		_, err := svc.PurchaseCOD(ctx, sess, "gold")
		assert.ErrorIs(t, err, subservice.ErrInvalidPlanID)
	})

	t.Run("missing mobile", func(t *testing.T) {
		sess := professionalSession(t, sessions, "")
		_, err := svc.PurchaseCOD(ctx, sess, testPlanID)
		assert.ErrorIs(t, err, subdomain.ErrNoMobile)
	})

	t.Run("short mobile", func(t *testing.T) {
		sess := professionalSession(t, sessions, "12345")
		_, err := svc.PurchaseCOD(ctx, sess, testPlanID)
		assert.ErrorIs(t, err, subdomain.ErrInvalidMobile)
	})
}
