package domain

import (
	"errors"
	"strings"
)

// Display vocabulary for quote statuses. The upstream returns free-form strings
// ("open", "in progress", "In Progress", "in-progress"); everything is folded
// into this fixed set before the frontends see it.
const (
	StatusAll        = "all"
	StatusOpen       = "open"
	StatusInProgress = "inProgress"
)

var (
	ErrQuoteNotFound     = errors.New("demand quote not found")
	ErrNoProposals       = errors.New("quote has no proposals")
	ErrAmbiguousProposal = errors.New("proposal references both professional and vendor")
	ErrUnownedProposal   = errors.New("proposal references neither professional nor vendor")
	ErrInvalidAction     = errors.New("action must be accept or reject")
)

// Proposal is a priced offer a professional or vendor submitted against a
// demand quote. Exactly one of ProfessionalID/VendorID is expected to be set;
// that is an upstream contract this side can only check, not guarantee.
type Proposal struct {
	ID             string `json:"_id"`
	ProfessionalID string `json:"professionalId,omitempty"`
	VendorID       string `json:"vendorId,omitempty"`
	Price          string `json:"price,omitempty"`
	Duration       string `json:"duration,omitempty"` // YYYY-MM-DD
	Notes          string `json:"proposal,omitempty"`
	CompletionFile string `json:"completionFile,omitempty"`
}

// ActorRef names which actor type a proposal credits.
type ActorRef struct {
	ProfessionalID string
	VendorID       string
}

// Actor derives the actor reference of the proposal, rejecting proposals that
// carry both or neither identifier.
func (p *Proposal) Actor() (ActorRef, error) {
	hasPro := strings.TrimSpace(p.ProfessionalID) != ""
	hasVendor := strings.TrimSpace(p.VendorID) != ""

	switch {
	case hasPro && hasVendor:
		return ActorRef{}, ErrAmbiguousProposal
	case !hasPro && !hasVendor:
		return ActorRef{}, ErrUnownedProposal
	case hasPro:
		return ActorRef{ProfessionalID: p.ProfessionalID}, nil
	default:
		return ActorRef{VendorID: p.VendorID}, nil
	}
}

// DemandQuote is a customer-originated request for project pricing, the root
// record professionals respond to. The upstream backend is authoritative; this
// is a client-side copy and is only ever refetched, never deleted locally.
type DemandQuote struct {
	ID                 string     `json:"_id"`
	AltID              string     `json:"id,omitempty"`
	CustomerID         string     `json:"customerId,omitempty"`
	ProjectName        string     `json:"projectName,omitempty"`
	ProjectDescription string     `json:"projectDescription,omitempty"`
	ProjectAddress     string     `json:"projectAddress,omitempty"`
	ProjectArea        string     `json:"projectArea,omitempty"`
	ProjectType        string     `json:"projectType,omitempty"`
	RequestedPrice     string     `json:"price,omitempty"`
	Status             string     `json:"status,omitempty"`
	Accepted           bool       `json:"isAccepted,omitempty"`
	AcceptedByType     string     `json:"acceptedByType,omitempty"`
	Proposals          []Proposal `json:"proposals,omitempty"`
	DesignFileURL      string     `json:"designFile,omitempty"`
}

// QuoteID returns the record identifier, falling back to the alternate field
// some upstream responses use.
func (q *DemandQuote) QuoteID() string {
	if q.ID != "" {
		return q.ID
	}
	return q.AltID
}

// NormalizeStatus folds the upstream status spellings into the display
// vocabulary. Unknown statuses are returned verbatim; they only show up under
// the "all" filter.
func NormalizeStatus(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	switch s {
	case "open":
		return StatusOpen
	case "in progress", "inprogress":
		return StatusInProgress
	default:
		return strings.TrimSpace(raw)
	}
}

// MatchesFilter is the pure filtering predicate over a fetched quote set.
func (q *DemandQuote) MatchesFilter(filter string) bool {
	if filter == "" || filter == StatusAll {
		return true
	}
	return NormalizeStatus(q.Status) == filter
}
