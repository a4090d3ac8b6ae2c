package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"playpark/internal/slots"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Reservation outcomes the service maps onto the API error taxonomy.
var (
	ErrSlotNotFound    = errors.New("slot not found")
	ErrSlotUnavailable = errors.New("slot is not available for booking")
)

type Repository interface {
	// CreateWithSlotReservation inserts the booking and claims slot capacity
	// in one transaction, so a half-applied reservation can never be observed.
	CreateWithSlotReservation(ctx context.Context, booking *Booking, date, timeSlot string) error

	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetByIDWithSlot(ctx context.Context, id uuid.UUID) (*Booking, error)
	List(ctx context.Context, query BookingListQuery) ([]Booking, int64, error)

	// CancelWithSlotRelease cancels the booking and returns slot capacity in
	// one transaction. The bool reports whether this call did the cancel
	// (false means the booking was already cancelled).
	CancelWithSlotRelease(ctx context.Context, id uuid.UUID, reason string) (*Booking, bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateWithSlotReservation(ctx context.Context, booking *Booking, date, timeSlot string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Lock the slot row so concurrent reservations serialize here
		var slot slots.Slot
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("slot_date = ? AND time_slot = ?", date, timeSlot).
			First(&slot).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSlotNotFound
			}
			return fmt.Errorf("failed to lock slot: %w", err)
		}

		// 2. Capacity check under the lock
		if !slot.HasCapacity() {
			return ErrSlotUnavailable
		}

		// 3. Create the booking
		booking.SlotID = slot.ID
		if err := tx.Create(booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		// 4. Claim capacity; slot flips to booked only when full
		newCount := slot.BookedCount + 1
		updates := map[string]interface{}{
			"booked_count": newCount,
			"updated_at":   time.Now(),
		}
		if newCount >= slot.Capacity {
			updates["status"] = slots.StatusBooked
		}

		err = tx.Model(&slots.Slot{}).
			Where("id = ?", slot.ID).
			Updates(updates).Error
		if err != nil {
			return fmt.Errorf("failed to update slot capacity: %w", err)
		}

		return nil
	})
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetByIDWithSlot(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Slot").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) List(ctx context.Context, query BookingListQuery) ([]Booking, int64, error) {
	var listed []Booking
	var totalCount int64

	// Set defaults
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	baseQuery := r.db.WithContext(ctx).Model(&Booking{})
	baseQuery = r.applyFilters(baseQuery, query)

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Preload("Slot").
		Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&listed).Error

	return listed, totalCount, err
}

func (r *repository) CancelWithSlotRelease(ctx context.Context, id uuid.UUID, reason string) (*Booking, bool, error) {
	var booking Booking
	cancelled := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&booking).Error
		if err != nil {
			return err
		}

		// Already cancelled: leave everything untouched
		if booking.IsCancelled() {
			return nil
		}

		booking.Cancel(reason)
		err = tx.Model(&Booking{}).
			Where("id = ?", booking.ID).
			Updates(map[string]interface{}{
				"status":        booking.Status,
				"cancel_reason": booking.CancelReason,
				"cancelled_at":  booking.CancelledAt,
				"updated_at":    booking.UpdatedAt,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to cancel booking: %w", err)
		}

		// Release the capacity unit back to the slot
		var slot slots.Slot
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", booking.SlotID).
			First(&slot).Error
		if err != nil {
			return fmt.Errorf("failed to lock slot: %w", err)
		}

		newCount := slot.BookedCount - 1
		if newCount < 0 {
			newCount = 0
		}
		updates := map[string]interface{}{
			"booked_count": newCount,
			"updated_at":   time.Now(),
		}
		// A blocked slot stays blocked; a full slot reopens
		if slot.Status == slots.StatusBooked && newCount < slot.Capacity {
			updates["status"] = slots.StatusAvailable
		}

		err = tx.Model(&slots.Slot{}).
			Where("id = ?", slot.ID).
			Updates(updates).Error
		if err != nil {
			return fmt.Errorf("failed to release slot capacity: %w", err)
		}

		cancelled = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return &booking, cancelled, nil
}

// applyFilters applies query filters to the GORM query
func (r *repository) applyFilters(query *gorm.DB, filters BookingListQuery) *gorm.DB {
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}

	if filters.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filters.PaymentStatus)
	}

	if filters.Phone != "" {
		query = query.Where("parent_phone = ?", filters.Phone)
	}

	if filters.Date != "" {
		query = query.Joins("JOIN slots ON slots.id = bookings.slot_id").
			Where("slots.slot_date = ?", filters.Date)
	}

	return query
}
