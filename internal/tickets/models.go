package tickets

import (
	"time"

	"github.com/google/uuid"
)

// Ticket is one admission pass for a slot date. Status moves forward only,
// with the active -> expired transition applied lazily while validating.
type Ticket struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID    *uuid.UUID `gorm:"type:uuid;index" json:"booking_id,omitempty"`
	TicketNumber string     `gorm:"type:varchar(32);uniqueIndex;not null" json:"ticket_number"`
	SlotDate     string     `gorm:"type:varchar(10);not null;index" json:"slot_date"`
	InTime       *time.Time `json:"in_time,omitempty"`
	OutTime      *time.Time `json:"out_time,omitempty"`
	Status       Status     `gorm:"type:varchar(20);check:status IN ('active', 'used', 'cancelled', 'expired');default:'active'" json:"status"`
	InsideVenue  bool       `gorm:"not null;default:false" json:"inside_venue"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName sets the table name for Ticket
func (Ticket) TableName() string {
	return "tickets"
}

func (t *Ticket) IsActive() bool {
	return t.Status == StatusActive
}

// OutTimeElapsed reports whether the ticket carries an expiry timestamp that
// has already passed.
func (t *Ticket) OutTimeElapsed(now time.Time) bool {
	return t.OutTime != nil && now.After(*t.OutTime)
}
