package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"playpark/internal/shared/config"
)

// SMSSender delivers a single message to one phone number.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

type smsClient struct {
	cfg    config.SMSConfig
	client *http.Client
}

// NewSMSClient returns a sender backed by the HTTP SMS gateway.
func NewSMSClient(cfg config.SMSConfig) SMSSender {
	return &smsClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type sendSMSRequest struct {
	APIKey   string `json:"api_key"`
	SenderID string `json:"senderid"`
	Number   string `json:"number"`
	Message  string `json:"message"`
}

type sendSMSResponse struct {
	ResponseCode int    `json:"response_code"`
	SuccessMsg   string `json:"success_message"`
	ErrorMsg     string `json:"error_message"`
}

func (c *smsClient) Send(ctx context.Context, phone, message string) error {
	body, err := json.Marshal(sendSMSRequest{
		APIKey:   c.cfg.APIKey,
		SenderID: c.cfg.SenderID,
		Number:   NormalizePhone(phone, c.cfg.CountryCode),
		Message:  message,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal sms request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read sms gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sms gateway returned status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed sendSMSResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("unexpected sms gateway response: %w", err)
	}
	if parsed.ResponseCode != 202 && parsed.ResponseCode != 200 {
		return fmt.Errorf("sms gateway rejected message: %s", parsed.ErrorMsg)
	}
	return nil
}

// NormalizePhone converts a locally entered phone number into the gateway's
// expected country-prefixed form: non-digits stripped, a leading zero swapped
// for the country code, and the country code prepended when absent.
func NormalizePhone(phone, countryCode string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	cleaned := digits.String()

	switch {
	case cleaned == "":
		return cleaned
	case strings.HasPrefix(cleaned, countryCode):
		return cleaned
	case strings.HasPrefix(cleaned, "0"):
		return countryCode + cleaned[1:]
	default:
		return countryCode + cleaned
	}
}
