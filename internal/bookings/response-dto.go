package bookings

import (
	"time"

	"github.com/google/uuid"
)

// BookingResponse is the public view of a booking
type BookingResponse struct {
	ID            uuid.UUID     `json:"id"`
	Date          string        `json:"date"`
	TimeSlot      string        `json:"time_slot"`
	ParentName    string        `json:"parent_name"`
	ParentPhone   string        `json:"parent_phone"`
	ChildCount    int           `json:"child_count"`
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time     `json:"created_at"`
}

// ToBookingResponse converts a booking row (with its slot preloaded) into
// the public view
func ToBookingResponse(b *Booking) BookingResponse {
	resp := BookingResponse{
		ID:            b.ID,
		ParentName:    b.ParentName,
		ParentPhone:   b.ParentPhone,
		ChildCount:    b.ChildCount,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		CreatedAt:     b.CreatedAt,
	}
	if b.Slot != nil {
		resp.Date = b.Slot.SlotDate
		resp.TimeSlot = b.Slot.TimeSlot
	}
	return resp
}

// BookingListResponse is a paginated booking listing
type BookingListResponse struct {
	Bookings   []BookingResponse `json:"bookings"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
}
