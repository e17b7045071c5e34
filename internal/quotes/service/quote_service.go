package service

import (
	"context"
	"errors"
	"strings"

	"github.com/zeer-gl/thiqa-gateway/internal/ids"
	"github.com/zeer-gl/thiqa-gateway/internal/logging"
	"github.com/zeer-gl/thiqa-gateway/internal/quotes/domain"
	sessiondomain "github.com/zeer-gl/thiqa-gateway/internal/session/domain"
	sessionrepo "github.com/zeer-gl/thiqa-gateway/internal/session/repository"
	"github.com/zeer-gl/thiqa-gateway/internal/upstream"
)

var (
	ErrInvalidID     = errors.New("identifier is not a valid record id")
	ErrNoDeliverable = errors.New("quote has no deliverable file")
)

// QuoteView is a DemandQuote decorated with the normalized status and the
// session's card-expansion state.
type QuoteView struct {
	domain.DemandQuote
	NormalizedStatus string `json:"normalizedStatus"`
	Expanded         bool   `json:"expanded"`
}

// QuoteService orchestrates the demand-quote workflows: listing/filtering for
// professionals and the accept/reject decision for customers.
type QuoteService struct {
	upstream *upstream.Client
	sessions *sessionrepo.SessionRepository
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(client *upstream.Client, sessions *sessionrepo.SessionRepository) *QuoteService {
	return &QuoteService{upstream: client, sessions: sessions}
}

// List fetches the professional's demand quotes and applies the filter
// predicate locally. Filtering never issues a server-side filter call.
func (s *QuoteService) List(ctx context.Context, sess *sessiondomain.Session, filter string) ([]QuoteView, error) {
	quotes, err := s.upstream.DemandQuotes(ctx, sess.Token())
	if err != nil {
		return nil, err
	}

	expanded, err := s.sessions.Expanded(ctx, sess.ID)
	if err != nil {
		logging.NewLogger(ctx).LogWarnf("list_quotes", "expanded state unavailable: %v", err)
		expanded = map[string]bool{}
	}

	views := make([]QuoteView, 0, len(quotes))
	for _, q := range quotes {
		if !q.MatchesFilter(filter) {
			continue
		}
		views = append(views, QuoteView{
			DemandQuote:      q,
			NormalizedStatus: domain.NormalizeStatus(q.Status),
			Expanded:         expanded[q.QuoteID()],
		})
	}
	return views, nil
}

// ToggleExpanded flips one card's expanded state and returns the new value.
func (s *QuoteService) ToggleExpanded(ctx context.Context, sess *sessiondomain.Session, quoteID string) (bool, error) {
	expanded, err := s.sessions.Expanded(ctx, sess.ID)
	if err != nil {
		return false, err
	}

	next := !expanded[quoteID]
	if err := s.sessions.SetExpanded(ctx, sess.ID, quoteID, next); err != nil {
		return false, err
	}
	return next, nil
}

// StartProject claims a demand quote for the session's professional. On
// success the list is refetched and returned; there is no optimistic update.
func (s *QuoteService) StartProject(ctx context.Context, sess *sessiondomain.Session, demandID string) ([]QuoteView, error) {
	if sess.Role != sessiondomain.RoleProfessional {
		return nil, sessiondomain.ErrWrongRole
	}

	actorID, err := sess.ActorID()
	if err != nil {
		return nil, err
	}
	if !ids.IsObjectID(demandID) || !ids.IsObjectID(actorID) {
		return nil, ErrInvalidID
	}

	err = s.upstream.StartProject(ctx, sess.Token(), upstream.StartProjectRequest{
		DemandID:       demandID,
		ProfessionalID: actorID,
	})
	if err != nil {
		return nil, err
	}

	return s.List(ctx, sess, domain.StatusAll)
}

// AcceptReject submits the customer's decision on a quote. The actor type is
// derived from the quote's first proposal; a proposal crediting both or
// neither actor blocks the call before any network I/O.
func (s *QuoteService) AcceptReject(ctx context.Context, sess *sessiondomain.Session, demandID, action string, proposals []domain.Proposal) error {
	if sess.Role != sessiondomain.RoleCustomer {
		return sessiondomain.ErrWrongRole
	}

	action = strings.ToLower(strings.TrimSpace(action))
	if action != "accept" && action != "reject" {
		return domain.ErrInvalidAction
	}
	if !ids.IsObjectID(demandID) {
		return ErrInvalidID
	}
	if len(proposals) == 0 {
		return domain.ErrNoProposals
	}

	actor, err := proposals[0].Actor()
	if err != nil {
		return err
	}

	return s.upstream.AcceptRejectProposal(ctx, sess.Token(), upstream.AcceptRejectRequest{
		DemandID:       demandID,
		Action:         action,
		ProfessionalID: actor.ProfessionalID,
		VendorID:       actor.VendorID,
	})
}

// DeliverableURL resolves the design-file URL already present on a quote
// record. No upstream mutation is involved in a download.
func (s *QuoteService) DeliverableURL(ctx context.Context, sess *sessiondomain.Session, demandID string) (string, error) {
	quotes, err := s.upstream.DemandQuotes(ctx, sess.Token())
	if err != nil {
		return "", err
	}

	for _, q := range quotes {
		if q.QuoteID() != demandID {
			continue
		}
		if q.DesignFileURL == "" {
			return "", ErrNoDeliverable
		}
		return q.DesignFileURL, nil
	}
	return "", domain.ErrQuoteNotFound
}
