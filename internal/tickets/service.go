package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"playpark/internal/bookings"
	"playpark/internal/shared/apperr"
	"playpark/internal/shared/config"
	"playpark/pkg/clock"
	"playpark/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookingSource is the slice of the bookings service this package needs.
// Declared here to avoid a package cycle.
type BookingSource interface {
	GetByIDWithSlot(ctx context.Context, id uuid.UUID) (*bookings.Booking, error)
}

// ValidationResult is the outcome of a walk-in ticket check.
type ValidationResult struct {
	Valid  bool            `json:"valid"`
	Code   string          `json:"code"`
	Reason string          `json:"reason,omitempty"`
	Ticket *TicketResponse `json:"ticket,omitempty"`
}

type Service interface {
	// Validate decides whether a ticket may admit its holder. Checks apply in
	// a fixed order and the first failing one wins; an elapsed out_time on an
	// active ticket is persisted as expired before the result is returned.
	Validate(ctx context.Context, idOrNumber string) (*ValidationResult, error)

	// CheckIn validates and, when valid, admits the holder.
	CheckIn(ctx context.Context, idOrNumber string) (*ValidationResult, error)
	CheckOut(ctx context.Context, idOrNumber string) (*TicketResponse, error)

	// IssueForBooking mints the admission ticket for a paid booking and
	// returns its ticket number.
	IssueForBooking(ctx context.Context, bookingID uuid.UUID) (string, error)

	GetTicket(ctx context.Context, idOrNumber string) (*TicketResponse, error)
}

type service struct {
	repo          Repository
	bookingSource BookingSource
	clock         clock.Clock
	venue         *time.Location
	cfg           config.VenueConfig
	logger        *logger.Logger
}

func NewService(repo Repository, bookingSource BookingSource, clk clock.Clock, cfg config.VenueConfig, log *logger.Logger) (Service, error) {
	venue, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid venue timezone %q: %w", cfg.Timezone, err)
	}
	return &service{
		repo:          repo,
		bookingSource: bookingSource,
		clock:         clk,
		venue:         venue,
		cfg:           cfg,
		logger:        log,
	}, nil
}

func (s *service) Validate(ctx context.Context, idOrNumber string) (*ValidationResult, error) {
	ticket, err := s.repo.GetByIDOrNumber(ctx, idOrNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			result := &ValidationResult{Valid: false, Code: CodeNotFound, Reason: "ticket not found"}
			s.logger.LogTicketValidated(ctx, idOrNumber, false, CodeNotFound)
			return result, nil
		}
		return nil, apperr.Storage("failed to load ticket", err)
	}

	result := s.decide(ctx, ticket)
	s.logger.LogTicketValidated(ctx, ticket.TicketNumber, result.Valid, result.Code)
	return result, nil
}

// decide runs the ordered precedence checks over a loaded ticket. Date checks
// use the venue's wall-clock date, never the host timezone.
func (s *service) decide(ctx context.Context, ticket *Ticket) *ValidationResult {
	now := s.clock.Now().In(s.venue)
	today := now.Format("2006-01-02")

	switch {
	case ticket.SlotDate < today:
		return s.fail(ticket, CodeDatePassed, "ticket date has passed")
	case ticket.SlotDate > today:
		return s.fail(ticket, CodeDateFuture, "ticket is for a future date")
	}

	switch ticket.Status {
	case StatusCancelled:
		return s.fail(ticket, CodeCancelled, "ticket was cancelled")
	case StatusExpired:
		return s.fail(ticket, CodeExpired, "ticket has expired")
	case StatusUsed:
		return s.fail(ticket, CodeAlreadyUsed, "ticket has already been used")
	}

	if ticket.OutTimeElapsed(now) {
		// Lazy expiry: persisted here, not by a background sweep. The
		// conditional update makes concurrent validations converge.
		if _, err := s.repo.MarkExpiredIfActive(ctx, ticket.ID); err != nil {
			s.logger.ErrorWithContext(ctx, "failed to persist lazy ticket expiry", err, map[string]interface{}{
				"ticket_number": ticket.TicketNumber,
			})
		} else {
			ticket.Status = StatusExpired
		}
		return s.fail(ticket, CodeTimeExpired, "ticket exit time has elapsed")
	}

	return &ValidationResult{Valid: true, Code: CodeValid, Ticket: toTicketResponsePtr(ticket)}
}

func (s *service) fail(ticket *Ticket, code, reason string) *ValidationResult {
	return &ValidationResult{Valid: false, Code: code, Reason: reason, Ticket: toTicketResponsePtr(ticket)}
}

func (s *service) CheckIn(ctx context.Context, idOrNumber string) (*ValidationResult, error) {
	result, err := s.Validate(ctx, idOrNumber)
	if err != nil || !result.Valid {
		return result, err
	}

	now := s.clock.Now()
	admitted, err := s.repo.MarkUsedIfActive(ctx, result.Ticket.ID, now)
	if err != nil {
		return nil, apperr.Storage("failed to admit ticket holder", err)
	}
	if !admitted {
		// Lost the race to another check-in between validate and update
		return &ValidationResult{Valid: false, Code: CodeAlreadyUsed, Reason: "ticket has already been used", Ticket: result.Ticket}, nil
	}

	result.Ticket.Status = StatusUsed
	result.Ticket.InsideVenue = true
	result.Ticket.InTime = &now
	return result, nil
}

func (s *service) CheckOut(ctx context.Context, idOrNumber string) (*TicketResponse, error) {
	ticket, err := s.repo.GetByIDOrNumber(ctx, idOrNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(CodeNotFound, "ticket not found")
		}
		return nil, apperr.Storage("failed to load ticket", err)
	}
	if !ticket.InsideVenue {
		return nil, apperr.Conflict("NOT_INSIDE_VENUE", "ticket holder is not inside the venue")
	}

	if err := s.repo.SetInsideVenue(ctx, ticket.ID, false); err != nil {
		return nil, apperr.Storage("failed to check out ticket holder", err)
	}
	ticket.InsideVenue = false
	return toTicketResponsePtr(ticket), nil
}

func (s *service) IssueForBooking(ctx context.Context, bookingID uuid.UUID) (string, error) {
	if existing, err := s.repo.GetByBookingID(ctx, bookingID); err == nil {
		// Reconciliation retries must not mint a second ticket
		return existing.TicketNumber, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperr.Storage("failed to check existing ticket", err)
	}

	booking, err := s.bookingSource.GetByIDWithSlot(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.NotFound("BOOKING_NOT_FOUND", "booking not found")
		}
		return "", apperr.Storage("failed to load booking", err)
	}
	if booking.Slot == nil {
		return "", apperr.Storage("booking has no slot attached", nil)
	}

	slotEnd, err := time.ParseInLocation("2006-01-02 15:04", booking.Slot.SlotDate+" "+booking.Slot.EndTime, s.venue)
	var outTime *time.Time
	if err == nil {
		utc := slotEnd.UTC()
		outTime = &utc
	}

	// Retry a couple of times on number collision; the unique constraint is
	// the real backstop.
	for attempt := 0; attempt < 3; attempt++ {
		number, err := s.nextTicketNumber(ctx)
		if err != nil {
			return "", err
		}
		ticket := &Ticket{
			BookingID:    &bookingID,
			TicketNumber: number,
			SlotDate:     booking.Slot.SlotDate,
			OutTime:      outTime,
			Status:       StatusActive,
		}
		err = s.repo.Create(ctx, ticket)
		if err == nil {
			s.logger.InfoWithContext(ctx, "ticket issued", map[string]interface{}{
				"ticket_number": number,
				"booking_id":    bookingID.String(),
			})
			return number, nil
		}
		if !errors.Is(err, ErrDuplicateTicketNumber) {
			return "", apperr.Storage("failed to create ticket", err)
		}
	}
	return "", apperr.Storage("failed to allocate a unique ticket number", nil)
}

func (s *service) GetTicket(ctx context.Context, idOrNumber string) (*TicketResponse, error) {
	ticket, err := s.repo.GetByIDOrNumber(ctx, idOrNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(CodeNotFound, "ticket not found")
		}
		return nil, apperr.Storage("failed to load ticket", err)
	}
	return toTicketResponsePtr(ticket), nil
}

// nextTicketNumber mints "PP-0001" style numbers from the count of tickets
// already carrying the venue prefix.
func (s *service) nextTicketNumber(ctx context.Context) (string, error) {
	prefix := s.cfg.TicketPrefix + "-"
	count, err := s.repo.CountForPrefix(ctx, prefix)
	if err != nil {
		return "", apperr.Storage("failed to count tickets", err)
	}
	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}
