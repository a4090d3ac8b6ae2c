package payments

// InitiatePaymentRequest starts a hosted checkout for a booking
type InitiatePaymentRequest struct {
	BookingID     string  `json:"booking_id" binding:"required,uuid"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	CustomerName  string  `json:"customer_name" binding:"required"`
	CustomerEmail string  `json:"customer_email" binding:"omitempty,email"`
	CustomerPhone string  `json:"customer_phone" binding:"required"`
	RedirectURL   string  `json:"redirect_url" binding:"required,url"`
	CancelURL     string  `json:"cancel_url" binding:"required,url"`
}

// VerifyPaymentRequest polls the provider for an invoice
type VerifyPaymentRequest struct {
	InvoiceID string `json:"invoice_id" binding:"required"`
}

// WebhookPayload is whatever the provider pushes. Only the recognized fields
// are read; unknown status strings leave the payment pending.
type WebhookPayload struct {
	InvoiceID     string            `json:"invoice_id"`
	Status        string            `json:"status"`
	PaymentMethod string            `json:"payment_method"`
	TransactionID string            `json:"transaction_id"`
	Amount        string            `json:"amount"`
	Fee           string            `json:"fee"`
	SenderNumber  string            `json:"sender_number"`
	Metadata      map[string]string `json:"metadata"`
}

// ResolveInvoiceID returns the invoice from the top-level field, falling back
// to the metadata we attached at checkout creation.
func (w *WebhookPayload) ResolveInvoiceID() string {
	if w.InvoiceID != "" {
		return w.InvoiceID
	}
	return w.Metadata["invoice_id"]
}
