package slots

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	GetByDate(ctx context.Context, date string) ([]Slot, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Slot, error)
	GetByDateAndTime(ctx context.Context, date, timeSlot string) (*Slot, error)

	// CreateDay inserts the full day template in one transaction.
	// Returns ErrDayExists when another caller generated the day first.
	CreateDay(ctx context.Context, daySlots []Slot) error

	// UpdateStatusConditional flips status only when the current status
	// matches; reports whether a row changed.
	UpdateStatusConditional(ctx context.Context, id uuid.UUID, from, to Status) (bool, error)
}

// ErrDayExists signals that the day template was already generated.
var ErrDayExists = errors.New("slot day already generated")

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByDate(ctx context.Context, date string) ([]Slot, error) {
	var daySlots []Slot
	err := r.db.WithContext(ctx).
		Where("slot_date = ?", date).
		Order("start_time ASC").
		Find(&daySlots).Error
	return daySlots, err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Slot, error) {
	var slot Slot
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *repository) GetByDateAndTime(ctx context.Context, date, timeSlot string) (*Slot, error) {
	var slot Slot
	err := r.db.WithContext(ctx).
		Where("slot_date = ? AND time_slot = ?", date, timeSlot).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *repository) CreateDay(ctx context.Context, daySlots []Slot) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&daySlots).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDayExists
	}
	return err
}

func (r *repository) UpdateStatusConditional(ctx context.Context, id uuid.UUID, from, to Status) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&Slot{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
