package tickets

import (
	"time"

	"github.com/google/uuid"
)

type TicketResponse struct {
	ID           uuid.UUID  `json:"id"`
	BookingID    *uuid.UUID `json:"booking_id,omitempty"`
	TicketNumber string     `json:"ticket_number"`
	SlotDate     string     `json:"slot_date"`
	InTime       *time.Time `json:"in_time,omitempty"`
	OutTime      *time.Time `json:"out_time,omitempty"`
	Status       Status     `json:"status"`
	InsideVenue  bool       `json:"inside_venue"`
	CreatedAt    time.Time  `json:"created_at"`
}

func toTicketResponsePtr(t *Ticket) *TicketResponse {
	return &TicketResponse{
		ID:           t.ID,
		BookingID:    t.BookingID,
		TicketNumber: t.TicketNumber,
		SlotDate:     t.SlotDate,
		InTime:       t.InTime,
		OutTime:      t.OutTime,
		Status:       t.Status,
		InsideVenue:  t.InsideVenue,
		CreatedAt:    t.CreatedAt,
	}
}
