package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"playpark/internal/shared/config"
)

// Gateway is the hosted-checkout provider boundary. The provider hosts the
// actual payment UI; we only create charges and read back their state.
type Gateway interface {
	CreateCharge(ctx context.Context, req CreateChargeRequest) (*CreateChargeResponse, error)
	VerifyPayment(ctx context.Context, invoiceID string) (*ProviderPayment, error)
}

// CreateChargeRequest is the checkout creation payload
type CreateChargeRequest struct {
	FullName    string            `json:"full_name"`
	Email       string            `json:"email,omitempty"`
	Amount      string            `json:"amount"`
	InvoiceID   string            `json:"invoice_id"`
	RedirectURL string            `json:"redirect_url"`
	CancelURL   string            `json:"cancel_url"`
	WebhookURL  string            `json:"webhook_url"`
	Metadata    map[string]string `json:"metadata"`
}

// CreateChargeResponse carries the hosted checkout URL
type CreateChargeResponse struct {
	Status     bool   `json:"status"`
	Message    string `json:"message"`
	PaymentURL string `json:"payment_url"`
}

// ProviderPayment is the provider's authoritative view of one invoice
type ProviderPayment struct {
	InvoiceID     string            `json:"invoice_id"`
	Status        string            `json:"status"`
	Amount        string            `json:"amount"`
	Fee           string            `json:"fee"`
	PaymentMethod string            `json:"payment_method"`
	TransactionID string            `json:"transaction_id"`
	SenderNumber  string            `json:"sender_number"`
	Metadata      map[string]string `json:"metadata"`
	Date          string            `json:"date"`
}

const apiKeyHeader = "RT-PLAYPARK-API-KEY"

type httpGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPGateway creates the provider client. The timeout bounds every call;
// nothing is retried inside a request.
func NewHTTPGateway(cfg config.PaymentConfig) Gateway {
	return &httpGateway{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

func (g *httpGateway) CreateCharge(ctx context.Context, req CreateChargeRequest) (*CreateChargeResponse, error) {
	var resp CreateChargeResponse
	if err := g.post(ctx, "/checkout-v2", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Status || resp.PaymentURL == "" {
		return nil, fmt.Errorf("provider rejected checkout: %s", resp.Message)
	}
	return &resp, nil
}

func (g *httpGateway) VerifyPayment(ctx context.Context, invoiceID string) (*ProviderPayment, error) {
	body := map[string]string{"invoice_id": invoiceID}
	var resp ProviderPayment
	if err := g.post(ctx, "/verify-payment", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (g *httpGateway) post(ctx context.Context, path string, payload interface{}, dest interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(apiKeyHeader, g.apiKey)

	res, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("provider call failed: %s (%d)", string(body), res.StatusCode)
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("parse provider response: %w", err)
	}
	return nil
}
