package http

import (
	"github.com/zeer-gl/thiqa-gateway/internal/quotes/domain"
)

// StartProjectRequest claims a demand quote for the session's professional.
type StartProjectRequest struct {
	DemandID string `json:"demandId" binding:"required"`
}

// AcceptRejectRequest carries the customer decision plus the proposals of the
// rendered quote, from which the credited actor type is derived.
type AcceptRejectRequest struct {
	DemandID  string            `json:"demandId" binding:"required"`
	Action    string            `json:"action" binding:"required"`
	Proposals []domain.Proposal `json:"proposals"`
}

// ToggleExpandedRequest flips one quote card's expansion state.
type ToggleExpandedRequest struct {
	QuoteID string `json:"quoteId" binding:"required"`
}
