package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"playpark/internal/shared/apperr"
	"playpark/pkg/cache"
	"playpark/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service interface defines the contract for slot calendar logic
type Service interface {
	GetOrCreateSlots(ctx context.Context, date string) ([]Slot, error)
	BlockSlot(ctx context.Context, id uuid.UUID) error
	UnblockSlot(ctx context.Context, id uuid.UUID) error

	// InvalidateDay drops the cached calendar for a date after a slot mutates.
	InvalidateDay(ctx context.Context, date string)
}

type service struct {
	repo   Repository
	cache  cache.Service
	ttl    time.Duration
	logger *logger.Logger
}

// NewService creates a new slot service instance. The cache is optional;
// a nil cache degrades to direct reads.
func NewService(repo Repository, cacheService cache.Service, cacheTTL time.Duration) Service {
	return &service{
		repo:   repo,
		cache:  cacheService,
		ttl:    cacheTTL,
		logger: logger.GetDefault(),
	}
}

// GetOrCreateSlots returns the day calendar, generating the fixed daily
// template on first access. Safe under concurrent first access: a racing
// generator loses on the unique constraint and re-reads.
func (s *service) GetOrCreateSlots(ctx context.Context, date string) ([]Slot, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, apperr.Validation("INVALID_DATE", "date must be in YYYY-MM-DD format")
	}

	cacheKey := dayCacheKey(date)
	if s.cache != nil {
		var cached []Slot
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	daySlots, err := s.repo.GetByDate(ctx, date)
	if err != nil {
		return nil, apperr.Storage("failed to load slots", err)
	}

	if len(daySlots) == 0 {
		err := s.repo.CreateDay(ctx, DayTemplate(date))
		if err != nil && !errors.Is(err, ErrDayExists) {
			return nil, apperr.Storage("failed to generate day template", err)
		}
		// Re-read either way so racing generators converge on the same rows
		daySlots, err = s.repo.GetByDate(ctx, date)
		if err != nil {
			return nil, apperr.Storage("failed to load slots", err)
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, daySlots, s.ttl); err != nil {
			s.logger.WarnWithContext(ctx, "slot cache set failed", map[string]interface{}{
				"date": date, "error": err.Error(),
			})
		}
	}

	return daySlots, nil
}

// BlockSlot takes a slot off the calendar. A booked slot cannot be blocked.
func (s *service) BlockSlot(ctx context.Context, id uuid.UUID) error {
	slot, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("SLOT_NOT_FOUND", "slot not found")
		}
		return apperr.Storage("failed to load slot", err)
	}

	updated, err := s.repo.UpdateStatusConditional(ctx, id, StatusAvailable, StatusBlocked)
	if err != nil {
		return apperr.Storage("failed to block slot", err)
	}
	if !updated {
		return apperr.Conflict("SLOT_NOT_BLOCKABLE", "only an available slot can be blocked")
	}

	s.InvalidateDay(ctx, slot.SlotDate)
	return nil
}

// UnblockSlot returns a blocked slot to the calendar.
func (s *service) UnblockSlot(ctx context.Context, id uuid.UUID) error {
	slot, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("SLOT_NOT_FOUND", "slot not found")
		}
		return apperr.Storage("failed to load slot", err)
	}

	updated, err := s.repo.UpdateStatusConditional(ctx, id, StatusBlocked, StatusAvailable)
	if err != nil {
		return apperr.Storage("failed to unblock slot", err)
	}
	if !updated {
		return apperr.Conflict("SLOT_NOT_BLOCKED", "slot is not blocked")
	}

	s.InvalidateDay(ctx, slot.SlotDate)
	return nil
}

func (s *service) InvalidateDay(ctx context.Context, date string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, dayCacheKey(date)); err != nil {
		s.logger.WarnWithContext(ctx, "slot cache invalidation failed", map[string]interface{}{
			"date": date, "error": err.Error(),
		})
	}
}

func dayCacheKey(date string) string {
	return fmt.Sprintf("playpark:slots:day:%s", date)
}
