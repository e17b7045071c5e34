package unit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	proposalservice "github.com/zeer-gl/thiqa-gateway/internal/proposals/service"
	sessiondomain "github.com/zeer-gl/thiqa-gateway/internal/session/domain"
	"github.com/zeer-gl/thiqa-gateway/internal/upstream"
)

const (
	testDemandID = "64f00000000000000000000a"
	testProID    = "64f000000000000000000002"
)

func testProSession() *sessiondomain.Session {
	return &sessiondomain.Session{
		ID:                "sess-1",
		Role:              sessiondomain.RoleProfessional,
		ProfessionalToken: "pro-token",
		LoggedIn:          true,
		Professional:      &sessiondomain.Professional{ID: testProID, Name: "Amal"},
	}
}

func TestProposalService_Submit(t *testing.T) {
	var preflights, creates atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/professional/get-professsional/" + testProID:
			preflights.Add(1)
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"professional":{"_id":"` + testProID + `","name":"Amal"}}`))
		case "/professional/create-proposal":
			creates.Add(1)
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"success":true}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	svc := proposalservice.NewProposalService(upstream.NewClient(server.URL))

	duration, err := svc.Submit(context.Background(), testProSession(), proposalservice.Submission{
		DemandID: testDemandID,
		Price:    "negotiable",
		Duration: "16/10/2025",
		Notes:    "full renovation",
	})
	require.NoError(t, err)

	// Free-text duration is normalized before it goes on the wire.
	assert.Equal(t, "2025-10-16", duration)
	assert.Equal(t, int64(1), preflights.Load())
	assert.Equal(t, int64(1), creates.Load())
}

func TestProposalService_Submit_PreflightFailure(t *testing.T) {
	var creates atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/professional/get-professsional/" + testProID:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"not found"}`))
		case "/professional/create-proposal":
			creates.Add(1)
		}
	}))
	defer server.Close()

	svc := proposalservice.NewProposalService(upstream.NewClient(server.URL))

	_, err := svc.Submit(context.Background(), testProSession(), proposalservice.Submission{
		DemandID: testDemandID,
		Price:    "500",
		Duration: "2025-10-16",
		Notes:    "paint",
	})
	assert.ErrorIs(t, err, proposalservice.ErrPreflight)
	assert.Equal(t, int64(0), creates.Load())
}

func TestProposalService_Submit_GuardsBeforeNetwork(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected upstream call: %s", r.URL.Path)
	}))
	defer server.Close()

	svc := proposalservice.NewProposalService(upstream.NewClient(server.URL))
	ctx := context.Background()

	t.Run("customer role", func(t *testing.T) {
		sess := &sessiondomain.Session{ID: "s", Role: sessiondomain.RoleCustomer, CustomerToken: "c", LoggedIn: true}
		_, err := svc.Submit(ctx, sess, proposalservice.Submission{DemandID: testDemandID, Price: "1", Duration: "2025-10-16", Notes: "x"})
		assert.ErrorIs(t, err, sessiondomain.ErrWrongRole)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Submit(ctx, testProSession(), proposalservice.Submission{DemandID: testDemandID, Price: "  ", Duration: "2025-10-16", Notes: "x"})
		assert.ErrorIs(t, err, proposalservice.ErrMissingFields)
	})

	t.Run("unparsable duration", func(t *testing.T) {
		_, err := svc.Submit(ctx, testProSession(), proposalservice.Submission{DemandID: testDemandID, Price: "1", Duration: "soon", Notes: "x"})
		assert.Error(t, err)
	})

	t.Run("malformed demand id", func(t *testing.T) {
		_, err := svc.Submit(ctx, testProSession(), proposalservice.Submission{DemandID: "zzz", Price: "1", Duration: "2025-10-16", Notes: "x"})
		assert.ErrorIs(t, err, proposalservice.ErrInvalidID)
	})
}
