package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/charlz/audiophile-api/internal/domain/order"
)

// DefaultBaseURL is the production Resend API endpoint.
const DefaultBaseURL = "https://api.resend.com"

// SandboxWarning and SandboxMessage are returned to callers when the provider
// is in testing mode and cannot deliver to unverified recipients. The order
// flow treats this as success so a provider configuration issue never blocks
// a checkout.
const (
	SandboxWarning = "Email service in testing mode"
	SandboxMessage = "Order created successfully. Email notifications require domain verification."
)

// APIError is a structured error response from the Resend API.
type APIError struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("resend: %s: %s", e.Name, e.Message)
}

// IsSandboxRestriction reports whether err is the provider's testing-mode
// validation error: sending to unverified recipients is blocked until a
// domain is verified.
func IsSandboxRestriction(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Name == "validation_error" &&
		strings.Contains(apiErr.Message, "testing emails")
}

// Config holds the Resend client settings.
type Config struct {
	// APIKey authenticates against the Resend API.
	APIKey string
	// From is the fixed sender, e.g. "Audiophile <orders@example.com>".
	From string
	// BaseURL overrides the API endpoint; empty means DefaultBaseURL.
	BaseURL string
	// AppBaseURL is the storefront origin used for view-order links.
	AppBaseURL string
	// SupportEmail is shown in the email support block.
	SupportEmail string
}

// Client sends order confirmation emails through the Resend API.
type Client struct {
	cfg   Config
	httpc *http.Client
	now   func() time.Time
}

// NewClient creates a Resend client. No timeout is configured on dispatch
// beyond the per-request context; the send is a single round trip.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Client{
		cfg:   cfg,
		httpc: &http.Client{},
		now:   time.Now,
	}
}

type sendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type sendEmailResponse struct {
	ID string `json:"id"`
}

// Send dispatches one HTML email and returns the provider message ID.
// Provider-side failures come back as *APIError.
func (c *Client) Send(ctx context.Context, to, subject, htmlBody string) (string, error) {
	body, err := json.Marshal(sendEmailRequest{
		From:    c.cfg.From,
		To:      []string{to},
		Subject: subject,
		HTML:    htmlBody,
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.cfg.BaseURL, "/")+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "send email")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", errors.Wrap(err, "read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Name == "" {
			apiErr.Name = "unknown_error"
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return "", apiErr
	}

	var out sendEmailResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", errors.Wrap(err, "decode response")
	}
	return out.ID, nil
}

// Dispatch renders the confirmation document and sends it. A non-empty
// warning with a nil error means the provider is sandbox-restricted and the
// send was deliberately downgraded to success.
func (c *Client) Dispatch(ctx context.Context, to string, conf Confirmation) (id, warning string, err error) {
	id, err = c.Send(ctx, to, "Order Confirmation - "+conf.OrderCode, RenderConfirmation(conf))
	if err != nil {
		if IsSandboxRestriction(err) {
			return "", SandboxWarning, nil
		}
		return "", "", err
	}
	return id, "", nil
}

// SendConfirmation implements the checkout mailer: it builds the confirmation
// document from the persisted order and dispatches it to the customer.
func (c *Client) SendConfirmation(ctx context.Context, o *order.Order) (string, error) {
	conf := ConfirmationFromOrder(o, c.cfg.AppBaseURL, c.cfg.SupportEmail, c.now())
	_, warning, err := c.Dispatch(ctx, o.Customer.Email, conf)
	return warning, err
}
