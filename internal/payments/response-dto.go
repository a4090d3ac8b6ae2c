package payments

import (
	"time"

	"github.com/google/uuid"
)

type InitiatePaymentResponse struct {
	InvoiceID  string  `json:"invoice_id"`
	PaymentURL string  `json:"payment_url"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	Status     Status  `json:"status"`
}

type PaymentResponse struct {
	ID            uuid.UUID  `json:"id"`
	BookingID     uuid.UUID  `json:"booking_id"`
	InvoiceID     string     `json:"invoice_id"`
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency"`
	Status        Status     `json:"status"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	TransactionID string     `json:"transaction_id,omitempty"`
	Fee           float64    `json:"fee"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type VerifyPaymentResponse struct {
	Payment      PaymentResponse `json:"payment"`
	Verification ProviderPayment `json:"verification"`
}

func ToPaymentResponse(p *Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		BookingID:     p.BookingID,
		InvoiceID:     p.InvoiceID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Status:        p.Status,
		PaymentMethod: p.PaymentMethod,
		TransactionID: p.TransactionID,
		Fee:           p.Fee,
		ProcessedAt:   p.ProcessedAt,
		CreatedAt:     p.CreatedAt,
	}
}
