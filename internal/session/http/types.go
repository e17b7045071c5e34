package http

import (
	"github.com/zeer-gl/thiqa-gateway/internal/session/domain"
)

// CreateSessionRequest establishes a gateway session after the frontend has
// completed authentication against the upstream. The gateway never runs the
// auth flows itself; it is handed the bearer token for one role.
type CreateSessionRequest struct {
	Role           domain.Role      `json:"role" binding:"required"`
	Token          string           `json:"token" binding:"required"`
	ProfessionalID string           `json:"professionalId,omitempty"`
	Customer       *domain.Customer `json:"customer,omitempty"`
}

// SessionResponse is the session view returned to frontends.
type SessionResponse struct {
	SessionID    string               `json:"session_id"`
	Role         domain.Role          `json:"role"`
	Professional *domain.Professional `json:"professional,omitempty"`
	Customer     *domain.Customer     `json:"customer,omitempty"`
}
