package bookings

import (
	"time"

	"playpark/internal/slots"

	"github.com/google/uuid"
)

// Booking defines the main booking structure
type Booking struct {
	ID            uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SlotID        uuid.UUID     `gorm:"type:uuid;index;not null" json:"slot_id"`
	ParentName    string        `gorm:"type:varchar(100);not null" json:"parent_name"`
	ParentPhone   string        `gorm:"type:varchar(20);not null" json:"parent_phone"`
	ChildCount    int           `gorm:"not null;default:1" json:"child_count"`
	Notes         string        `gorm:"type:text" json:"notes,omitempty"`
	Status        Status        `gorm:"type:varchar(20);check:status IN ('pending', 'confirmed', 'cancelled');default:'pending'" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);check:payment_status IN ('pending', 'paid', 'failed');default:'pending'" json:"payment_status"`
	CancelReason  string        `gorm:"type:varchar(255)" json:"cancel_reason,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	CancelledAt   *time.Time    `json:"cancelled_at,omitempty"`

	// Relationships
	Slot *slots.Slot `json:"slot,omitempty" gorm:"foreignKey:SlotID;constraint:OnDelete:RESTRICT;"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

// Helper methods for booking management
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

func (b *Booking) IsPaid() bool {
	return b.PaymentStatus == PaymentStatusPaid
}

func (b *Booking) Cancel(reason string) {
	b.Status = StatusCancelled
	b.CancelReason = reason
	now := time.Now()
	b.CancelledAt = &now
	b.UpdatedAt = now
}
