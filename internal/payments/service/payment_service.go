package service

import (
	"context"

	"github.com/zeer-gl/thiqa-gateway/internal/ids"
	"github.com/zeer-gl/thiqa-gateway/internal/logging"
	"github.com/zeer-gl/thiqa-gateway/internal/payments/domain"
	"github.com/zeer-gl/thiqa-gateway/internal/payments/repository"
	sessiondomain "github.com/zeer-gl/thiqa-gateway/internal/session/domain"
	sessionrepo "github.com/zeer-gl/thiqa-gateway/internal/session/repository"
	subdomain "github.com/zeer-gl/thiqa-gateway/internal/subscription/domain"
	subservice "github.com/zeer-gl/thiqa-gateway/internal/subscription/service"
	"github.com/zeer-gl/thiqa-gateway/internal/upstream"
)

// PaymentService runs the hosted-payment purchase path: resolving the
// payment-methods endpoint, listing methods, and checking out with a real
// payment-method id.
type PaymentService struct {
	upstream   *upstream.Client
	sessions   *sessionrepo.SessionRepository
	endpoints  *repository.EndpointRepository
	candidates []string
	maxRetries int
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(client *upstream.Client, sessions *sessionrepo.SessionRepository, endpoints *repository.EndpointRepository, candidates []string, maxRetries int) *PaymentService {
	return &PaymentService{
		upstream:   client,
		sessions:   sessions,
		endpoints:  endpoints,
		candidates: candidates,
		maxRetries: maxRetries,
	}
}

// Methods lists the available payment methods, resolving the endpoint first.
// The cached resolution is used when present; otherwise the candidate paths
// are probed in order and the first 2xx wins and is cached.
func (s *PaymentService) Methods(ctx context.Context, sess *sessiondomain.Session) ([]domain.PaymentMethod, error) {
	logger := logging.NewLogger(ctx)
	token := sess.Token()

	if path, err := s.endpoints.Resolved(ctx); err == nil && path != "" {
		methods, err := s.upstream.PaymentMethods(ctx, token, path)
		if err == nil {
			return methods, nil
		}
		// The cached path went stale; fall through to a fresh probe.
		logger.LogWarnf("payment_methods", "resolved path %s failed, reprobing: %v", path, err)
		if err := s.endpoints.Invalidate(ctx); err != nil {
			logger.LogWarnf("payment_methods", "endpoint cache not invalidated: %v", err)
		}
	}

	var lastErr error
	for _, path := range s.candidates {
		methods, err := s.upstream.PaymentMethods(ctx, token, path)
		if err != nil {
			lastErr = err
			continue
		}
		if err := s.endpoints.SetResolved(ctx, path); err != nil {
			logger.LogWarnf("payment_methods", "endpoint not cached: %v", err)
		}
		logger.LogInfof("payment_methods", "resolved endpoint path=%s", path)
		return methods, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, domain.ErrNoEndpoint
}

// Checkout purchases a plan through the hosted gateway and returns the
// redirect URL for the frontend to navigate to. Each failed attempt consumes
// one of the session's retries; past the limit the state is terminal and only
// "different method" or "contact support" remain.
func (s *PaymentService) Checkout(ctx context.Context, sess *sessiondomain.Session, planID, methodID string) (*domain.CheckoutState, error) {
	if sess.Role != sessiondomain.RoleProfessional {
		return nil, sessiondomain.ErrWrongRole
	}
	if !ids.IsObjectID(planID) || methodID == "" {
		return nil, subservice.ErrInvalidPlanID
	}

	used, err := s.sessions.PaymentRetries(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if used >= s.maxRetries {
		return s.terminalState(used), domain.ErrRetriesExhausted
	}

	mobile := ""
	if sess.Professional != nil {
		mobile = subdomain.NormalizeMobile(sess.Professional.Mobile)
	}
	if err := subdomain.ValidateMobile(mobile); err != nil {
		return nil, err
	}

	result, err := s.upstream.PurchaseSubscription(ctx, sess.Token(), upstream.PurchaseRequest{
		PlanID:          planID,
		PaymentMethodID: methodID,
		CustomerMobile:  mobile,
	})
	if err != nil {
		return s.recordFailure(ctx, sess, err)
	}

	if result.RedirectURL == "" {
		return s.recordFailure(ctx, sess, domain.ErrNoRedirectURL)
	}

	if err := s.sessions.ResetPaymentRetries(ctx, sess.ID); err != nil {
		logging.NewLogger(ctx).LogWarnf("checkout", "retry counter not reset: %v", err)
	}

	return &domain.CheckoutState{
		RedirectURL: result.RedirectURL,
		RetriesUsed: used,
		RetriesLeft: s.maxRetries - used,
	}, nil
}

// SwitchMethod resets the retry budget when the user picks another method.
func (s *PaymentService) SwitchMethod(ctx context.Context, sess *sessiondomain.Session) error {
	return s.sessions.ResetPaymentRetries(ctx, sess.ID)
}

// InvalidateEndpoint drops the cached endpoint resolution. Run nightly so a
// moved upstream path is picked up without a failed request in between.
func (s *PaymentService) InvalidateEndpoint(ctx context.Context) error {
	return s.endpoints.Invalidate(ctx)
}

func (s *PaymentService) recordFailure(ctx context.Context, sess *sessiondomain.Session, cause error) (*domain.CheckoutState, error) {
	used, err := s.sessions.IncrementPaymentRetries(ctx, sess.ID)
	if err != nil {
		logging.NewLogger(ctx).LogWarnf("checkout", "retry counter not incremented: %v", err)
		used = s.maxRetries
	}

	if used >= s.maxRetries {
		return s.terminalState(used), cause
	}
	return &domain.CheckoutState{
		RetriesUsed: used,
		RetriesLeft: s.maxRetries - used,
	}, cause
}

func (s *PaymentService) terminalState(used int) *domain.CheckoutState {
	return &domain.CheckoutState{
		RetriesUsed:   used,
		RetriesLeft:   0,
		Exhausted:     true,
		SupportOption: true,
	}
}
