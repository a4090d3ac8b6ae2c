package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrDuplicateTicketNumber signals a ticket_number collision on insert.
var ErrDuplicateTicketNumber = errors.New("ticket number already exists")

type Repository interface {
	Create(ctx context.Context, ticket *Ticket) error
	GetByIDOrNumber(ctx context.Context, idOrNumber string) (*Ticket, error)
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*Ticket, error)
	CountForPrefix(ctx context.Context, prefix string) (int64, error)

	// MarkExpiredIfActive flips active -> expired with a conditional update.
	// Returns true when this call applied the transition.
	MarkExpiredIfActive(ctx context.Context, id uuid.UUID) (bool, error)

	// MarkUsedIfActive admits the holder: active -> used, inside_venue=true,
	// in_time stamped. Conditional on status so two racing check-ins admit once.
	MarkUsedIfActive(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	SetInsideVenue(ctx context.Context, id uuid.UUID, inside bool) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, ticket *Ticket) error {
	err := r.db.WithContext(ctx).Create(ticket).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateTicketNumber
	}
	return err
}

// GetByIDOrNumber resolves a ticket by primary key when the input parses as a
// UUID, otherwise by ticket_number.
func (r *repository) GetByIDOrNumber(ctx context.Context, idOrNumber string) (*Ticket, error) {
	var ticket Ticket
	query := r.db.WithContext(ctx)
	if id, err := uuid.Parse(idOrNumber); err == nil {
		query = query.Where("id = ?", id)
	} else {
		query = query.Where("ticket_number = ?", idOrNumber)
	}
	if err := query.First(&ticket).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*Ticket, error) {
	var ticket Ticket
	err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) CountForPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Ticket{}).
		Where("ticket_number LIKE ?", prefix+"%").
		Count(&count).Error
	return count, err
}

func (r *repository) MarkExpiredIfActive(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&Ticket{}).
		Where("id = ? AND status = ?", id, StatusActive).
		Updates(map[string]interface{}{
			"status":     StatusExpired,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to expire ticket: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) MarkUsedIfActive(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&Ticket{}).
		Where("id = ? AND status = ?", id, StatusActive).
		Updates(map[string]interface{}{
			"status":       StatusUsed,
			"inside_venue": true,
			"in_time":      at,
			"updated_at":   at,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark ticket used: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) SetInsideVenue(ctx context.Context, id uuid.UUID, inside bool) error {
	return r.db.WithContext(ctx).Model(&Ticket{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"inside_venue": inside,
			"updated_at":   time.Now(),
		}).Error
}
