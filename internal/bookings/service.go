package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"playpark/internal/shared/apperr"
	"playpark/internal/slots"
	"playpark/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SlotService interface for slot calendar operations (to avoid circular dependency)
type SlotService interface {
	GetOrCreateSlots(ctx context.Context, date string) ([]slots.Slot, error)
	InvalidateDay(ctx context.Context, date string)
}

// Dispatcher interface for best-effort SMS notifications (to avoid circular dependency)
type Dispatcher interface {
	EnqueueSMS(ctx context.Context, phone, message string) error
}

// Service interface defines the contract for booking business logic
type Service interface {
	CreateBooking(ctx context.Context, req CreateBookingRequest) (*BookingResponse, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListBookings(ctx context.Context, query BookingListQuery) (*BookingListResponse, error)
	CancelBooking(ctx context.Context, id uuid.UUID, reason string) (*Booking, error)
}

// service implements the Service interface
type service struct {
	repo        Repository
	slotService SlotService
	dispatcher  Dispatcher
	logger      *logger.Logger
}

// NewService creates a new booking service instance
func NewService(repo Repository, slotService SlotService, dispatcher Dispatcher) Service {
	return &service{
		repo:        repo,
		slotService: slotService,
		dispatcher:  dispatcher,
		logger:      logger.GetDefault(),
	}
}

// CreateBooking reserves one capacity unit of a slot. The booking insert and
// the slot capacity claim commit together; the concurrent loser gets
// SLOT_UNAVAILABLE and no booking row exists for it.
func (s *service) CreateBooking(ctx context.Context, req CreateBookingRequest) (*BookingResponse, error) {
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return nil, apperr.Validation("INVALID_DATE", "date must be in YYYY-MM-DD format")
	}

	childCount := req.ChildCount
	if childCount <= 0 {
		childCount = 1
	}

	// First access of a fresh date generates the day template
	if _, err := s.slotService.GetOrCreateSlots(ctx, req.Date); err != nil {
		return nil, err
	}

	booking := &Booking{
		ParentName:    req.ParentName,
		ParentPhone:   req.ParentPhone,
		ChildCount:    childCount,
		Notes:         req.Notes,
		Status:        StatusPending,
		PaymentStatus: PaymentStatusPending,
	}

	err := s.repo.CreateWithSlotReservation(ctx, booking, req.Date, req.TimeSlot)
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotNotFound):
			return nil, apperr.NotFound("SLOT_NOT_FOUND", "no slot exists for that date and time")
		case errors.Is(err, ErrSlotUnavailable):
			return nil, apperr.Conflict("SLOT_UNAVAILABLE", "slot is not available for booking")
		default:
			return nil, apperr.Storage("failed to create booking", err)
		}
	}

	s.slotService.InvalidateDay(ctx, req.Date)
	s.logger.LogBookingCreated(ctx, booking.ID.String(), booking.SlotID.String(), booking.ParentPhone)

	// Best effort; a failed SMS never rolls back a committed reservation
	s.notify(ctx, booking.ParentPhone, fmt.Sprintf(
		"Dear %s, we received your booking for %s (%s). Please complete payment to confirm. - PlayPark",
		booking.ParentName, req.Date, req.TimeSlot))

	resp := ToBookingResponse(booking)
	resp.Date = req.Date
	resp.TimeSlot = req.TimeSlot
	return &resp, nil
}

// GetBooking retrieves a booking by ID with its slot
func (s *service) GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	booking, err := s.repo.GetByIDWithSlot(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("BOOKING_NOT_FOUND", "booking not found")
		}
		return nil, apperr.Storage("failed to load booking", err)
	}
	return booking, nil
}

// ListBookings retrieves bookings with filters and pagination
func (s *service) ListBookings(ctx context.Context, query BookingListQuery) (*BookingListResponse, error) {
	listed, totalCount, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, apperr.Storage("failed to list bookings", err)
	}

	responses := make([]BookingResponse, 0, len(listed))
	for i := range listed {
		responses = append(responses, ToBookingResponse(&listed[i]))
	}

	page := query.Page
	if page <= 0 {
		page = 1
	}
	limit := query.Limit
	if limit <= 0 {
		limit = 10
	}

	return &BookingListResponse{
		Bookings:   responses,
		TotalCount: totalCount,
		Page:       page,
		Limit:      limit,
	}, nil
}

// CancelBooking cancels a booking and releases its slot capacity.
// Cancelling an already-cancelled booking is a no-op, not an error.
func (s *service) CancelBooking(ctx context.Context, id uuid.UUID, reason string) (*Booking, error) {
	booking, cancelled, err := s.repo.CancelWithSlotRelease(ctx, id, reason)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("BOOKING_NOT_FOUND", "booking not found")
		}
		return nil, apperr.Storage("failed to cancel booking", err)
	}

	if !cancelled {
		return booking, nil
	}

	if slot, err := s.repo.GetByIDWithSlot(ctx, booking.ID); err == nil && slot.Slot != nil {
		s.slotService.InvalidateDay(ctx, slot.Slot.SlotDate)
	}

	s.logger.LogBookingCancelled(ctx, booking.ID.String(), reason)
	s.notify(ctx, booking.ParentPhone, fmt.Sprintf(
		"Dear %s, your booking has been cancelled. - PlayPark", booking.ParentName))

	return booking, nil
}

// notify enqueues an SMS and swallows any failure
func (s *service) notify(ctx context.Context, phone, message string) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.EnqueueSMS(ctx, phone, message); err != nil {
		s.logger.WarnWithContext(ctx, "sms enqueue failed", map[string]interface{}{
			"phone": phone, "error": err.Error(),
		})
	}
}
