package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SMSStatus tracks a notification through the pipeline
type SMSStatus string

const (
	SMSStatusPending SMSStatus = "pending"
	SMSStatusQueued  SMSStatus = "queued"
	SMSStatusSent    SMSStatus = "sent"
	SMSStatusFailed  SMSStatus = "failed"
)

// SMSNotification is the message carried through the Kafka pipeline.
type SMSNotification struct {
	ID        uuid.UUID `json:"id"`
	Phone     string    `json:"phone"`
	Message   string    `json:"message"`
	Status    SMSStatus `json:"status"`
	LastError *string   `json:"last_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSMSNotification creates a pending notification with the phone already
// normalized to the venue's country format.
func NewSMSNotification(phone, message, countryCode string) *SMSNotification {
	now := time.Now()
	return &SMSNotification{
		ID:        uuid.New(),
		Phone:     NormalizePhone(phone, countryCode),
		Message:   message,
		Status:    SMSStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (n *SMSNotification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

// GetPartitionKey routes all messages for one recipient to the same partition
// so they are delivered in order.
func (n *SMSNotification) GetPartitionKey() string {
	return n.Phone
}
