package service

import (
	"context"
	"errors"

	"github.com/zeer-gl/thiqa-gateway/internal/ids"
	"github.com/zeer-gl/thiqa-gateway/internal/logging"
	sessiondomain "github.com/zeer-gl/thiqa-gateway/internal/session/domain"
	sessionrepo "github.com/zeer-gl/thiqa-gateway/internal/session/repository"
	"github.com/zeer-gl/thiqa-gateway/internal/subscription/domain"
	"github.com/zeer-gl/thiqa-gateway/internal/upstream"
)

const codMethodID = "cod"

var ErrInvalidPlanID = errors.New("plan id is malformed")

// PurchaseOutcome reports a finished COD purchase.
type PurchaseOutcome struct {
	Status       string                      `json:"status"`
	Professional *sessiondomain.Professional `json:"professional,omitempty"`
}

// SubscriptionService lists plans and runs the cash-on-delivery purchase
// path. Selecting a plan IS the purchase; there is no confirmation step.
type SubscriptionService struct {
	upstream *upstream.Client
	sessions *sessionrepo.SessionRepository
}

// NewSubscriptionService creates a new SubscriptionService
func NewSubscriptionService(client *upstream.Client, sessions *sessionrepo.SessionRepository) *SubscriptionService {
	return &SubscriptionService{upstream: client, sessions: sessions}
}

// Plans lists the subscription packages for the session's professional.
func (s *SubscriptionService) Plans(ctx context.Context, sess *sessiondomain.Session) ([]domain.Plan, error) {
	return s.upstream.SubscriptionPlans(ctx, sess.Token())
}

// ValidateMobileFor checks the cached profile's mobile number before any
// purchase is allowed to start.
func (s *SubscriptionService) ValidateMobileFor(sess *sessiondomain.Session) (string, error) {
	if sess.Professional == nil || sess.Professional.Mobile == "" {
		return "", domain.ErrNoMobile
	}

	mobile := domain.NormalizeMobile(sess.Professional.Mobile)
	if err := domain.ValidateMobile(mobile); err != nil {
		return "", err
	}
	return mobile, nil
}

// PurchaseCOD buys a plan on the cash-on-delivery path. On a pending status
// the server's response is the single source of truth for the cached
// professional record; the profile is refetched only when the purchase
// response carried no record at all.
func (s *SubscriptionService) PurchaseCOD(ctx context.Context, sess *sessiondomain.Session, planID string) (*PurchaseOutcome, error) {
	if sess.Role != sessiondomain.RoleProfessional {
		return nil, sessiondomain.ErrWrongRole
	}
	if !ids.IsObjectID(planID) {
		return nil, ErrInvalidPlanID
	}

	mobile, err := s.ValidateMobileFor(sess)
	if err != nil {
		return nil, err
	}

	result, err := s.upstream.PurchaseSubscription(ctx, sess.Token(), upstream.PurchaseRequest{
		PlanID:          planID,
		PaymentMethodID: codMethodID,
		CustomerMobile:  mobile,
	})
	if err != nil {
		return nil, err
	}

	outcome := &PurchaseOutcome{Status: result.Status}

	if result.Status == "pending" {
		pro := result.Professional
		if pro == nil {
			// Incomplete purchase response; fall back to the authoritative
			// profile fetch.
			actorID, err := sess.ActorID()
			if err == nil {
				pro, err = s.upstream.GetProfessional(ctx, sess.Token(), actorID)
				if err != nil {
					logging.NewLogger(ctx).LogWarnf("purchase_cod", "profile refetch failed: %v", err)
				}
			}
		}
		if pro != nil {
			sess.Professional = pro
			if err := s.sessions.Update(ctx, sess); err != nil {
				logging.NewLogger(ctx).LogWarnf("purchase_cod", "session cache not updated: %v", err)
			}
			outcome.Professional = pro
		}
	}

	return outcome, nil
}
