package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"playpark/internal/bookings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrDuplicateInvoice signals an invoice_id collision on insert.
var ErrDuplicateInvoice = errors.New("invoice already exists")

// TerminalFields are the provider-reported details written alongside a
// terminal status transition.
type TerminalFields struct {
	PaymentMethod string
	TransactionID string
	Fee           float64
}

type Repository interface {
	Create(ctx context.Context, payment *Payment) error
	GetByInvoiceID(ctx context.Context, invoiceID string) (*Payment, error)
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) ([]Payment, error)

	// Finalize moves a pending payment into a terminal status and updates the
	// owning booking in the same transaction. The conditional update on
	// status='pending' is the sole concurrency guard: the bool reports whether
	// this call won the transition (false means the row was already terminal).
	Finalize(ctx context.Context, invoiceID string, status Status, fields TerminalFields) (bool, *Payment, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, payment *Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateInvoice
			}
			return err
		}

		// A fresh attempt supersedes an earlier failed one, never a paid one
		err := tx.Model(&bookings.Booking{}).
			Where("id = ? AND payment_status <> ?", payment.BookingID, bookings.PaymentStatusPaid).
			Update("payment_status", bookings.PaymentStatusPending).Error
		if err != nil {
			return fmt.Errorf("failed to reset booking payment status: %w", err)
		}
		return nil
	})
}

func (r *repository) GetByInvoiceID(ctx context.Context, invoiceID string) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).Where("invoice_id = ?", invoiceID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) ([]Payment, error) {
	var rows []Payment
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Finalize(ctx context.Context, invoiceID string, status Status, fields TerminalFields) (bool, *Payment, error) {
	if !status.IsTerminal() {
		return false, nil, fmt.Errorf("finalize called with non-terminal status %q", status)
	}

	var payment Payment
	won := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Model(&Payment{}).
			Where("invoice_id = ? AND status = ?", invoiceID, StatusPending).
			Updates(map[string]interface{}{
				"status":         status,
				"payment_method": fields.PaymentMethod,
				"transaction_id": fields.TransactionID,
				"fee":            fields.Fee,
				"processed_at":   now,
				"updated_at":     now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to finalize payment: %w", result.Error)
		}

		// Read back whichever state committed, winner or not
		if err := tx.Where("invoice_id = ?", invoiceID).First(&payment).Error; err != nil {
			return err
		}

		if result.RowsAffected == 0 {
			return nil
		}
		won = true

		// Propagate the terminal state to the owning booking atomically
		bookingUpdates := map[string]interface{}{
			"updated_at": now,
		}
		bookingScope := tx.Model(&bookings.Booking{}).Where("id = ?", payment.BookingID)
		if status == StatusCompleted {
			bookingUpdates["payment_status"] = bookings.PaymentStatusPaid
			bookingUpdates["status"] = bookings.StatusConfirmed
		} else {
			// A stale failed attempt must not shadow a booking that another
			// attempt already paid
			bookingUpdates["payment_status"] = bookings.PaymentStatusFailed
			bookingScope = bookingScope.Where("payment_status <> ?", bookings.PaymentStatusPaid)
		}

		err := bookingScope.Updates(bookingUpdates).Error
		if err != nil {
			return fmt.Errorf("failed to update booking payment status: %w", err)
		}

		return nil
	})
	if err != nil {
		return false, nil, err
	}

	return won, &payment, nil
}
