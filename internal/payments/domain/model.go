package domain

import "errors"

var (
	ErrNoEndpoint       = errors.New("no payment-methods endpoint is reachable")
	ErrNoRedirectURL    = errors.New("purchase response carried no redirect URL")
	ErrRetriesExhausted = errors.New("payment retries exhausted")
)

// PaymentMethod is a hosted-gateway payment option as the upstream lists it.
type PaymentMethod struct {
	ID              string  `json:"paymentMethodId"`
	NameEn          string  `json:"paymentMethodEn,omitempty"`
	NameAr          string  `json:"paymentMethodAr,omitempty"`
	ImageURL        string  `json:"imageUrl,omitempty"`
	ServiceCharge   float64 `json:"serviceCharge,omitempty"`
	Currency        string  `json:"currencyIso,omitempty"`
	IsEmbeddedModel bool    `json:"isEmbeddedSupported,omitempty"`
}

// CheckoutState reports where a hosted-payment attempt stands for a session.
type CheckoutState struct {
	RedirectURL   string `json:"redirect_url,omitempty"`
	RetriesUsed   int    `json:"retries_used"`
	RetriesLeft   int    `json:"retries_left"`
	Exhausted     bool   `json:"exhausted"`
	SupportOption bool   `json:"contact_support"`
}
