package domain

import (
	"errors"
	"time"
)

// Role identifies which side of the marketplace a session acts for.
type Role string

const (
	RoleCustomer     Role = "customer"
	RoleProfessional Role = "professional"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNotLoggedIn     = errors.New("session is not logged in")
	ErrWrongRole       = errors.New("session role does not permit this action")
	ErrNoActor         = errors.New("session has no resolved actor")
)

// Professional is the cached supply-side actor record mirrored from the upstream
// backend. It is a cache: only a logout or a profile round trip replaces it.
type Professional struct {
	ID                 string `json:"_id"`
	Name               string `json:"name,omitempty"`
	Email              string `json:"email,omitempty"`
	Mobile             string `json:"mobile,omitempty"`
	Profession         string `json:"profession,omitempty"`
	Address            string `json:"address,omitempty"`
	ImageURL           string `json:"image,omitempty"`
	SubscriptionPlanID string `json:"subscriptionPlanId,omitempty"`
	SubscriptionStatus string `json:"subscriptionStatus,omitempty"`
}

// Customer is the cached demand-side actor record.
type Customer struct {
	ID     string `json:"_id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Mobile string `json:"mobile,omitempty"`
}

// Session is the gateway's per-client state: one bearer token per role, the
// cached actor records, and the small pieces of per-session UI state the
// frontends would otherwise keep locally.
type Session struct {
	ID                string        `json:"session_id"`
	Role              Role          `json:"role"`
	CustomerToken     string        `json:"token,omitempty"`
	ProfessionalToken string        `json:"token_sp,omitempty"`
	Customer          *Customer     `json:"customer,omitempty"`
	Professional      *Professional `json:"professional,omitempty"`
	LoggedIn          bool          `json:"logged_in"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// Token returns the bearer token for the session's active role.
func (s *Session) Token() string {
	if s.Role == RoleProfessional {
		return s.ProfessionalToken
	}
	return s.CustomerToken
}

// ActorID resolves the session's actor identity once, at the session level,
// instead of re-deriving it from cached blobs at every call site.
func (s *Session) ActorID() (string, error) {
	if !s.LoggedIn {
		return "", ErrNotLoggedIn
	}
	switch s.Role {
	case RoleProfessional:
		if s.Professional == nil || s.Professional.ID == "" {
			return "", ErrNoActor
		}
		return s.Professional.ID, nil
	case RoleCustomer:
		if s.Customer == nil || s.Customer.ID == "" {
			return "", ErrNoActor
		}
		return s.Customer.ID, nil
	}
	return "", ErrNoActor
}
