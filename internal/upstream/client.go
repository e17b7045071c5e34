package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/zeer-gl/thiqa-gateway/internal/logging"
	paydomain "github.com/zeer-gl/thiqa-gateway/internal/payments/domain"
	quotedomain "github.com/zeer-gl/thiqa-gateway/internal/quotes/domain"
	sessiondomain "github.com/zeer-gl/thiqa-gateway/internal/session/domain"
	subdomain "github.com/zeer-gl/thiqa-gateway/internal/subscription/domain"
)

const (
	// DefaultTimeout bounds ordinary JSON calls.
	DefaultTimeout = 15 * time.Second
	// UploadTimeout bounds multipart uploads (proposal files, profile images).
	UploadTimeout = 60 * time.Second
)

// Client handles communication with the marketplace backend. One bearer token
// per role is passed per call; the client itself is role-agnostic.
type Client struct {
	baseURL       string
	defaultClient *http.Client
	uploadClient  *http.Client // For multipart operations that need longer timeouts
	limiter       *rate.Limiter
}

// NewClient creates a new upstream client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		defaultClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		uploadClient: &http.Client{
			Timeout: UploadTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(20), 40),
	}
}

// BaseURL returns the configured upstream base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// do executes a request against the upstream, applying the rate limiter, the
// bearer token, logging and metrics, and folding every failure mode into
// *Error. A nil error always comes with the raw response body.
func (c *Client) do(ctx context.Context, op, method, path, token string, body io.Reader, contentType string, hc *http.Client) ([]byte, error) {
	logger := logging.NewLogger(ctx)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, transportError(op, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := hc.Do(req)
	duration := time.Since(start)
	if err != nil {
		logger.LogError(op, err)
		recordCall(duration, err)
		return nil, transportError(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.LogError(op, err)
		recordCall(duration, err)
		return nil, transportError(op, err)
	}

	if resp.StatusCode >= 400 {
		ue := translateStatus(op, resp.StatusCode, raw)
		logger.LogWarnf(op, "upstream returned status %d code=%s", resp.StatusCode, ue.Code)
		recordCall(duration, ue)
		return nil, ue
	}

	recordCall(duration, nil)
	return raw, nil
}

func (c *Client) doJSON(ctx context.Context, op, method, path, token string, payload any) ([]byte, error) {
	var body io.Reader
	contentType := ""
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, op, method, path, token, body, contentType, c.defaultClient)
}

// DemandQuotes lists the demand quotes visible to a professional.
func (c *Client) DemandQuotes(ctx context.Context, token string) ([]quotedomain.DemandQuote, error) {
	raw, err := c.do(ctx, "demand_quotes", http.MethodGet, "/professional/demand-quotes", token, nil, "", c.defaultClient)
	if err != nil {
		return nil, err
	}

	var quotes []quotedomain.DemandQuote
	if err := decodeEnvelope("demand_quotes", raw, &quotes, "quotes", "demandQuotes", "demands"); err != nil {
		return nil, err
	}
	return quotes, nil
}

// StartProjectRequest is the claim/start body for a demand quote.
type StartProjectRequest struct {
	DemandID       string `json:"demandId"`
	ProfessionalID string `json:"professionalId"`
}

// StartProject claims a project for a professional.
func (c *Client) StartProject(ctx context.Context, token string, req StartProjectRequest) error {
	_, err := c.doJSON(ctx, "start_project", http.MethodPost, "/professional/start-project", token, req)
	return err
}

// AcceptRejectRequest carries a customer's decision on a proposal. Exactly one
// of ProfessionalID/VendorID must be set; the omitempty tags keep the unused
// one out of the wire body.
type AcceptRejectRequest struct {
	DemandID       string `json:"demandId"`
	Action         string `json:"action"`
	ProfessionalID string `json:"professionalId,omitempty"`
	VendorID       string `json:"vendorId,omitempty"`
}

// AcceptRejectProposal submits a customer's accept/reject decision.
func (c *Client) AcceptRejectProposal(ctx context.Context, token string, req AcceptRejectRequest) error {
	_, err := c.doJSON(ctx, "accept_reject_proposal", http.MethodPut, "/customer/acceptReject-proposal", token, req)
	return err
}

// FileUpload is an optional file attached to a multipart request.
type FileUpload struct {
	Filename string
	Content  []byte
}

// ProposalSubmission is the multipart create-proposal request.
type ProposalSubmission struct {
	DemandID       string
	ProfessionalID string
	Proposal       string
	Price          string
	Duration       string
	CompletionFile *FileUpload
}

// CreateProposal submits an offer against a demand quote. The upstream only
// accepts multipart form data here, not JSON. The completionFile part is
// omitted entirely when no file is attached.
func (c *Client) CreateProposal(ctx context.Context, token string, sub ProposalSubmission) error {
	fields := map[string]string{
		"demandId":       sub.DemandID,
		"professionalId": sub.ProfessionalID,
		"proposal":       sub.Proposal,
		"price":          sub.Price,
		"duration":       sub.Duration,
	}

	body, contentType, err := encodeMultipart(fields, "completionFile", sub.CompletionFile)
	if err != nil {
		return fmt.Errorf("encode proposal form: %w", err)
	}

	recordUpload()
	_, err = c.do(ctx, "create_proposal", http.MethodPost, "/professional/create-proposal", token, body, contentType, c.uploadClient)
	return err
}

// GetProfessional fetches an authoritative professional record. Also used as
// the pre-flight check before a proposal submission.
// Note the upstream's own spelling of the path segment.
func (c *Client) GetProfessional(ctx context.Context, token, id string) (*sessiondomain.Professional, error) {
	raw, err := c.do(ctx, "get_professional", http.MethodGet, "/professional/get-professsional/"+id, token, nil, "", c.defaultClient)
	if err != nil {
		return nil, err
	}

	var pro sessiondomain.Professional
	if err := decodeEnvelope("get_professional", raw, &pro, "professional", "user"); err != nil {
		return nil, err
	}
	return &pro, nil
}

// UpdateProfessional updates a professional profile via multipart form.
func (c *Client) UpdateProfessional(ctx context.Context, token, id string, fields map[string]string, image *FileUpload) (*sessiondomain.Professional, error) {
	body, contentType, err := encodeMultipart(fields, "image", image)
	if err != nil {
		return nil, fmt.Errorf("encode profile form: %w", err)
	}

	recordUpload()
	raw, err := c.do(ctx, "update_professional", http.MethodPut, "/professional/update-professsional/"+id, token, body, contentType, c.uploadClient)
	if err != nil {
		return nil, err
	}

	var pro sessiondomain.Professional
	if err := decodeEnvelope("update_professional", raw, &pro, "professional", "user"); err != nil {
		return nil, err
	}
	return &pro, nil
}

// SubscriptionPlans lists the subscription packages for a professional.
func (c *Client) SubscriptionPlans(ctx context.Context, token string) ([]subdomain.Plan, error) {
	raw, err := c.do(ctx, "subscription_plans", http.MethodGet, "/professional/subscription/plans", token, nil, "", c.defaultClient)
	if err != nil {
		return nil, err
	}

	var plans []subdomain.Plan
	if err := decodeEnvelope("subscription_plans", raw, &plans, "plans", "packages"); err != nil {
		return nil, err
	}
	return plans, nil
}

// PurchaseRequest is the subscription purchase body. CustomerMobile keeps the
// upstream's field casing.
type PurchaseRequest struct {
	PlanID          string `json:"planId"`
	PaymentMethodID string `json:"paymentMethodId"`
	CustomerMobile  string `json:"CustomerMobile"`
}

// PurchaseResult is what the gateway needs from a purchase response: the
// status, the redirect URL for hosted payments (whatever envelope shape it
// arrived in), and the updated professional record when the upstream sends one.
type PurchaseResult struct {
	Status       string
	RedirectURL  string
	Professional *sessiondomain.Professional
}

// PurchaseSubscription buys a plan, by COD or through the hosted gateway.
func (c *Client) PurchaseSubscription(ctx context.Context, token string, req PurchaseRequest) (*PurchaseResult, error) {
	recordPurchase()
	raw, err := c.doJSON(ctx, "purchase_subscription", http.MethodPost, "/professional/subscription/purchase", token, req)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Status       string                      `json:"status"`
		Professional *sessiondomain.Professional `json:"professional"`
	}
	// Redirect-only envelopes still decode here (the struct tolerates missing
	// fields), so a decode failure means a rejected payload such as a 2xx
	// carrying success:false.
	if err := decodeEnvelope("purchase_subscription", raw, &payload); err != nil {
		return nil, err
	}

	return &PurchaseResult{
		Status:       payload.Status,
		RedirectURL:  extractRedirectURL(raw),
		Professional: payload.Professional,
	}, nil
}

// PaymentMethods fetches the payment method list from one candidate path.
// Which path answers is a deployment concern; the resolver in the payments
// package decides which one to ask.
func (c *Client) PaymentMethods(ctx context.Context, token, path string) ([]paydomain.PaymentMethod, error) {
	recordProbe()
	raw, err := c.do(ctx, "payment_methods", http.MethodGet, path, token, nil, "", c.defaultClient)
	if err != nil {
		return nil, err
	}

	var methods []paydomain.PaymentMethod
	if err := decodeEnvelope("payment_methods", raw, &methods, "paymentMethods", "methods"); err != nil {
		return nil, err
	}
	return methods, nil
}

// FetchFile streams a deliverable file already referenced on a quote record.
// The URL is absolute, so the base URL is not applied.
func (c *Client) FetchFile(ctx context.Context, fileURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return nil, transportError("fetch_file", err)
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, &Error{Op: "fetch_file", Kind: KindHTTP, HTTPStatus: resp.StatusCode, Code: CodeNotFound, Message: "deliverable not reachable"}
	}
	return resp, nil
}

func encodeMultipart(fields map[string]string, fileField string, file *FileUpload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}

	if file != nil {
		part, err := w.CreateFormFile(fileField, file.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(file.Content); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
