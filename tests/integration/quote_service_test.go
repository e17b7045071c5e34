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

	quotedomain "github.com/zeer-gl/thiqa-gateway/internal/quotes/domain"
	quoteservice "github.com/zeer-gl/thiqa-gateway/internal/quotes/service"
	sessiondomain "github.com/zeer-gl/thiqa-gateway/internal/session/domain"
	sessionrepo "github.com/zeer-gl/thiqa-gateway/internal/session/repository"
	"github.com/zeer-gl/thiqa-gateway/internal/upstream"
)

const (
	demandA = "64f00000000000000000000a"
	demandB = "64f00000000000000000000b"
	proID   = "64f000000000000000000002"
)

func quoteListBody() string {
	return `{"quotes":[
		{"_id":"` + demandA + `","projectName":"Villa","status":"open"},
		{"_id":"` + demandB + `","projectName":"Office","status":"in progress"}
	]}`
}

func TestQuoteService_ListAndFilter(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(quoteListBody()))
	}))
	defer server.Close()

	sessions := sessionrepo.NewSessionRepository(client)
	svc := quoteservice.NewQuoteService(upstream.NewClient(server.URL), sessions)
	sess := professionalSession(t, sessions, "96650123456")
	ctx := context.Background()

	t.Run("all", func(t *testing.T) {
		views, err := svc.List(ctx, sess, quotedomain.StatusAll)
		require.NoError(t, err)
		assert.Len(t, views, 2)
	})

	t.Run("open only", func(t *testing.T) {
		views, err := svc.List(ctx, sess, quotedomain.StatusOpen)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "Villa", views[0].ProjectName)
		assert.Equal(t, quotedomain.StatusOpen, views[0].NormalizedStatus)
	})

	t.Run("in progress spelling folded", func(t *testing.T) {
		views, err := svc.List(ctx, sess, quotedomain.StatusInProgress)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "Office", views[0].ProjectName)
	})

	t.Run("expanded state merged", func(t *testing.T) {
		on, err := svc.ToggleExpanded(ctx, sess, demandA)
		require.NoError(t, err)
		assert.True(t, on)

		views, err := svc.List(ctx, sess, quotedomain.StatusAll)
		require.NoError(t, err)
		for _, v := range views {
			assert.Equal(t, v.QuoteID() == demandA, v.Expanded)
		}

		off, err := svc.ToggleExpanded(ctx, sess, demandA)
		require.NoError(t, err)
		assert.False(t, off)
	})
}

func TestQuoteService_StartProject_RefetchesList(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	var started atomic.Bool
	var listCalls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/professional/start-project":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, demandA, body["demandId"])
			assert.Equal(t, proID, body["professionalId"])
			started.Store(true)
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"success":true}`))
		case "/professional/demand-quotes":
			listCalls.Add(1)
			w.WriteHeader(http.StatusOK)
			if started.Load() {
				w.Write([]byte(`{"quotes":[{"_id":"` + demandA + `","projectName":"Villa","status":"in progress"}]}`))
			} else {
				w.Write([]byte(quoteListBody()))
			}
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	sessions := sessionrepo.NewSessionRepository(client)
	svc := quoteservice.NewQuoteService(upstream.NewClient(server.URL), sessions)
	sess := professionalSession(t, sessions, "96650123456")

	views, err := svc.StartProject(context.Background(), sess, demandA)
	require.NoError(t, err)

	// The returned list is server state after the claim, not a local patch.
	assert.True(t, started.Load())
	assert.Equal(t, int64(1), listCalls.Load())
	require.Len(t, views, 1)
	assert.Equal(t, quotedomain.StatusInProgress, views[0].NormalizedStatus)
}

func TestQuoteService_StartProject_Guards(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected upstream call: %s", r.URL.Path)
	}))
	defer server.Close()

	sessions := sessionrepo.NewSessionRepository(client)
	svc := quoteservice.NewQuoteService(upstream.NewClient(server.URL), sessions)
	ctx := context.Background()

	t.Run("customer cannot start", func(t *testing.T) {
		sess := &sessiondomain.Session{ID: "s", Role: sessiondomain.RoleCustomer, CustomerToken: "c", LoggedIn: true}
		_, err := svc.StartProject(ctx, sess, demandA)
		assert.ErrorIs(t, err, sessiondomain.ErrWrongRole)
	})

	t.Run("malformed demand id", func(t *testing.T) {
		sess := professionalSession(t, sessions, "96650123456")
		_, err := svc.StartProject(ctx, sess, "123")
		assert.ErrorIs(t, err, quoteservice.ErrInvalidID)
	})
}

func TestQuoteService_AcceptReject(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	var got map[string]any
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/customer/acceptReject-proposal" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		got = map[string]any{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	sessions := sessionrepo.NewSessionRepository(client)
	svc := quoteservice.NewQuoteService(upstream.NewClient(server.URL), sessions)
	ctx := context.Background()

	custSession := &sessiondomain.Session{ID: "cust", Role: sessiondomain.RoleCustomer, CustomerToken: "cust-token", LoggedIn: true}

	t.Run("professional proposal", func(t *testing.T) {
		err := svc.AcceptReject(ctx, custSession, demandA, "Accept", []quotedomain.Proposal{{ProfessionalID: proID}})
		require.NoError(t, err)

		assert.Equal(t, "accept", got["action"])
		assert.Equal(t, proID, got["professionalId"])
		_, hasVendor := got["vendorId"]
		assert.False(t, hasVendor)
	})

	t.Run("vendor proposal", func(t *testing.T) {
		vendorID := "64f000000000000000000003"
		err := svc.AcceptReject(ctx, custSession, demandA, "reject", []quotedomain.Proposal{{VendorID: vendorID}})
		require.NoError(t, err)

		assert.Equal(t, "reject", got["action"])
		assert.Equal(t, vendorID, got["vendorId"])
		_, hasPro := got["professionalId"]
		assert.False(t, hasPro)
	})

	t.Run("ambiguous proposal blocked before network", func(t *testing.T) {
		before := calls.Load()
		err := svc.AcceptReject(ctx, custSession, demandA, "accept", []quotedomain.Proposal{{ProfessionalID: proID, VendorID: "64f000000000000000000003"}})
		assert.ErrorIs(t, err, quotedomain.ErrAmbiguousProposal)
		assert.Equal(t, before, calls.Load())
	})

	t.Run("bad action", func(t *testing.T) {
		err := svc.AcceptReject(ctx, custSession, demandA, "maybe", []quotedomain.Proposal{{ProfessionalID: proID}})
		assert.ErrorIs(t, err, quotedomain.ErrInvalidAction)
	})

	t.Run("no proposals", func(t *testing.T) {
		err := svc.AcceptReject(ctx, custSession, demandA, "accept", nil)
		assert.ErrorIs(t, err, quotedomain.ErrNoProposals)
	})

	t.Run("professional role rejected", func(t *testing.T) {
		sess := professionalSession(t, sessions, "96650123456")
		err := svc.AcceptReject(ctx, sess, demandA, "accept", []quotedomain.Proposal{{ProfessionalID: proID}})
		assert.ErrorIs(t, err, sessiondomain.ErrWrongRole)
	})
}
