package bookings

// CreateBookingRequest represents a reservation request
type CreateBookingRequest struct {
	Date        string `json:"date" binding:"required,slotdate"`
	TimeSlot    string `json:"time_slot" binding:"required,timeslot"`
	ParentName  string `json:"parent_name" binding:"required"`
	ParentPhone string `json:"parent_phone" binding:"required"`
	ChildCount  int    `json:"child_count" binding:"omitempty,min=1,max=20"`
	Notes       string `json:"notes" binding:"omitempty,max=500"`
}

// CancelBookingRequest carries the optional cancellation reason
type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=255"`
}

// BookingListQuery represents booking list filters
type BookingListQuery struct {
	Status        string `form:"status"`
	PaymentStatus string `form:"payment_status"`
	Phone         string `form:"phone"`
	Date          string `form:"date"`
	Page          int    `form:"page"`
	Limit         int    `form:"limit"`
}
