package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zeer-gl/thiqa-gateway/internal/calendar"
	"github.com/zeer-gl/thiqa-gateway/internal/ids"
	"github.com/zeer-gl/thiqa-gateway/internal/logging"
	sessiondomain "github.com/zeer-gl/thiqa-gateway/internal/session/domain"
	"github.com/zeer-gl/thiqa-gateway/internal/upstream"
)

var (
	ErrMissingFields = errors.New("price, duration and notes are all required")
	ErrInvalidID     = errors.New("identifier is not a valid record id")
	ErrPreflight     = errors.New("professional is not recognized by the backend")
)

// Submission is one proposal draft ready to submit. Price is free text on
// purpose: the upstream accepts arbitrary strings and is authoritative about
// what it does with them.
type Submission struct {
	DemandID string
	Price    string
	Duration string
	Notes    string
	File     *upstream.FileUpload
}

// ProposalService submits offers against demand quotes.
type ProposalService struct {
	upstream *upstream.Client
}

// NewProposalService creates a new ProposalService
func NewProposalService(client *upstream.Client) *ProposalService {
	return &ProposalService{upstream: client}
}

// Submit validates, pre-flights and submits one proposal. The identifier
// checks guard against malformed cached state: nothing is sent unless both
// ids look like real record ids. Returns the normalized duration actually
// sent on success.
func (s *ProposalService) Submit(ctx context.Context, sess *sessiondomain.Session, sub Submission) (string, error) {
	if sess.Role != sessiondomain.RoleProfessional {
		return "", sessiondomain.ErrWrongRole
	}

	if strings.TrimSpace(sub.Price) == "" ||
		strings.TrimSpace(sub.Duration) == "" ||
		strings.TrimSpace(sub.Notes) == "" {
		return "", ErrMissingFields
	}

	duration, err := calendar.NormalizeDuration(strings.TrimSpace(sub.Duration))
	if err != nil {
		return "", err
	}

	actorID, err := sess.ActorID()
	if err != nil {
		return "", err
	}
	if !ids.IsObjectID(actorID) || !ids.IsObjectID(sub.DemandID) {
		return "", ErrInvalidID
	}

	// Pre-flight: confirm the backend still recognizes this professional
	// before uploading anything.
	if _, err := s.upstream.GetProfessional(ctx, sess.Token(), actorID); err != nil {
		logging.NewLogger(ctx).LogWarnf("submit_proposal", "preflight failed: %v", err)
		return "", fmt.Errorf("%w: %v", ErrPreflight, err)
	}

	err = s.upstream.CreateProposal(ctx, sess.Token(), upstream.ProposalSubmission{
		DemandID:       sub.DemandID,
		ProfessionalID: actorID,
		Proposal:       sub.Notes,
		Price:          sub.Price,
		Duration:       duration,
		CompletionFile: sub.File,
	})
	if err != nil {
		return "", err
	}
	return duration, nil
}
