package payments

import (
	"time"

	"github.com/google/uuid"
)

// Payment tracks one hosted-checkout attempt. Exactly one row exists per
// invoice_id, and a row that reached a terminal status never changes again.
type Payment struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"booking_id"`
	InvoiceID     string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"invoice_id"`
	Amount        float64    `gorm:"not null" json:"amount"`
	Currency      string     `gorm:"type:varchar(3);default:'BDT'" json:"currency"`
	Status        Status     `gorm:"type:varchar(20);check:status IN ('pending', 'completed', 'failed');default:'pending'" json:"status"`
	PaymentMethod string     `gorm:"type:varchar(50)" json:"payment_method,omitempty"`
	TransactionID string     `gorm:"type:varchar(100)" json:"transaction_id,omitempty"`
	Fee           float64    `json:"fee,omitempty"`
	Metadata      string     `gorm:"type:jsonb" json:"metadata,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName sets the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// Helper methods for payment management
func (p *Payment) IsPending() bool {
	return p.Status == StatusPending
}

func (p *Payment) IsCompleted() bool {
	return p.Status == StatusCompleted
}

func (p *Payment) IsTerminal() bool {
	return p.Status.IsTerminal()
}
