package tickets

import (
	"context"
	"sync"
	"testing"
	"time"

	"playpark/internal/bookings"
	"playpark/internal/shared/config"
	"playpark/internal/slots"
	"playpark/pkg/clock"
	"playpark/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[uuid.UUID]*Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[uuid.UUID]*Ticket)}
}

func (f *fakeTicketRepo) add(t *Ticket) *Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	f.tickets[t.ID] = t
	return t
}

func (f *fakeTicketRepo) Create(ctx context.Context, ticket *Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.tickets {
		if existing.TicketNumber == ticket.TicketNumber {
			return ErrDuplicateTicketNumber
		}
	}
	ticket.ID = uuid.New()
	stored := *ticket
	f.tickets[ticket.ID] = &stored
	return nil
}

func (f *fakeTicketRepo) GetByIDOrNumber(ctx context.Context, idOrNumber string) (*Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, err := uuid.Parse(idOrNumber); err == nil {
		if ticket, ok := f.tickets[id]; ok {
			copied := *ticket
			return &copied, nil
		}
		return nil, gorm.ErrRecordNotFound
	}
	for _, ticket := range f.tickets {
		if ticket.TicketNumber == idOrNumber {
			copied := *ticket
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTicketRepo) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ticket := range f.tickets {
		if ticket.BookingID != nil && *ticket.BookingID == bookingID {
			copied := *ticket
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTicketRepo) CountForPrefix(ctx context.Context, prefix string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, ticket := range f.tickets {
		if len(ticket.TicketNumber) >= len(prefix) && ticket.TicketNumber[:len(prefix)] == prefix {
			count++
		}
	}
	return count, nil
}

func (f *fakeTicketRepo) MarkExpiredIfActive(ctx context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok || ticket.Status != StatusActive {
		return false, nil
	}
	ticket.Status = StatusExpired
	return true, nil
}

func (f *fakeTicketRepo) MarkUsedIfActive(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok || ticket.Status != StatusActive {
		return false, nil
	}
	ticket.Status = StatusUsed
	ticket.InsideVenue = true
	ticket.InTime = &at
	return true, nil
}

func (f *fakeTicketRepo) SetInsideVenue(ctx context.Context, id uuid.UUID, inside bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ticket, ok := f.tickets[id]; ok {
		ticket.InsideVenue = inside
	}
	return nil
}

type fakeBookingSource struct {
	bookings map[uuid.UUID]*bookings.Booking
}

func (f *fakeBookingSource) GetByIDWithSlot(ctx context.Context, id uuid.UUID) (*bookings.Booking, error) {
	booking, ok := f.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return booking, nil
}

// Venue runs on Asia/Dhaka (UTC+6). 04:00 UTC is 10:00 at the gate.
var gateOpen = time.Date(2025, 6, 1, 4, 0, 0, 0, time.UTC)

func newTicketService(t *testing.T, repo *fakeTicketRepo, source BookingSource, now time.Time) Service {
	t.Helper()
	if source == nil {
		source = &fakeBookingSource{}
	}
	svc, err := NewService(repo, source, clock.NewFixed(now), config.VenueConfig{
		Timezone:     "Asia/Dhaka",
		TicketPrefix: "PP",
	}, logger.GetDefault())
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return svc
}

func TestService_Validate(t *testing.T) {
	t.Parallel()

	t.Run("unknown ticket", func(t *testing.T) {
		svc := newTicketService(t, newFakeTicketRepo(), nil, gateOpen)

		result, err := svc.Validate(context.Background(), "PP-9999")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Valid || result.Code != CodeNotFound {
			t.Fatalf("expected TICKET_NOT_FOUND, got %+v", result)
		}
	})

	t.Run("date checks precede everything else", func(t *testing.T) {
		repo := newFakeTicketRepo()
		elapsed := gateOpen.Add(-2 * time.Hour)
		// Dated yesterday AND past its out_time: the date check must win
		ticket := repo.add(&Ticket{
			TicketNumber: "PP-0001",
			SlotDate:     "2025-05-31",
			OutTime:      &elapsed,
			Status:       StatusActive,
		})
		svc := newTicketService(t, repo, nil, gateOpen)

		result, err := svc.Validate(context.Background(), "PP-0001")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Code != CodeDatePassed {
			t.Fatalf("expected DATE_PASSED, got %s", result.Code)
		}
		// The date short-circuit must not trigger the lazy expiry write
		if repo.tickets[ticket.ID].Status != StatusActive {
			t.Fatalf("expected status untouched, got %s", repo.tickets[ticket.ID].Status)
		}
	})

	t.Run("future date", func(t *testing.T) {
		repo := newFakeTicketRepo()
		repo.add(&Ticket{TicketNumber: "PP-0002", SlotDate: "2025-06-02", Status: StatusActive})
		svc := newTicketService(t, repo, nil, gateOpen)

		result, _ := svc.Validate(context.Background(), "PP-0002")
		if result.Valid || result.Code != CodeDateFuture {
			t.Fatalf("expected DATE_FUTURE, got %+v", result)
		}
	})

	t.Run("venue timezone decides the date boundary", func(t *testing.T) {
		repo := newFakeTicketRepo()
		repo.add(&Ticket{TicketNumber: "PP-0003", SlotDate: "2025-06-01", Status: StatusActive})
		// 23:00 UTC May 31 is already 05:00 June 1 in Dhaka
		svc := newTicketService(t, repo, nil, time.Date(2025, 5, 31, 23, 0, 0, 0, time.UTC))

		result, _ := svc.Validate(context.Background(), "PP-0003")
		if !result.Valid {
			t.Fatalf("expected valid at Dhaka-local date, got %+v", result)
		}
	})

	t.Run("status precedence", func(t *testing.T) {
		cases := []struct {
			name   string
			status Status
			code   string
		}{
			{"cancelled", StatusCancelled, CodeCancelled},
			{"expired", StatusExpired, CodeExpired},
			{"used", StatusUsed, CodeAlreadyUsed},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				repo := newFakeTicketRepo()
				repo.add(&Ticket{TicketNumber: "PP-0004", SlotDate: "2025-06-01", Status: tc.status})
				svc := newTicketService(t, repo, nil, gateOpen)

				result, _ := svc.Validate(context.Background(), "PP-0004")
				if result.Valid || result.Code != tc.code {
					t.Fatalf("expected %s, got %+v", tc.code, result)
				}
			})
		}
	})

	t.Run("elapsed out_time expires the ticket lazily", func(t *testing.T) {
		repo := newFakeTicketRepo()
		elapsed := gateOpen.Add(-30 * time.Minute)
		ticket := repo.add(&Ticket{
			TicketNumber: "PP-0005",
			SlotDate:     "2025-06-01",
			OutTime:      &elapsed,
			Status:       StatusActive,
		})
		svc := newTicketService(t, repo, nil, gateOpen)

		result, err := svc.Validate(context.Background(), "PP-0005")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Valid || result.Code != CodeTimeExpired {
			t.Fatalf("expected TIME_EXPIRED, got %+v", result)
		}
		// The transition is persisted, not just reported
		if repo.tickets[ticket.ID].Status != StatusExpired {
			t.Fatalf("expected persisted expiry, got %s", repo.tickets[ticket.ID].Status)
		}

		// Next validation finds the stored expired status
		again, _ := svc.Validate(context.Background(), "PP-0005")
		if again.Code != CodeExpired {
			t.Fatalf("expected EXPIRED on revalidation, got %s", again.Code)
		}
	})

	t.Run("valid ticket", func(t *testing.T) {
		repo := newFakeTicketRepo()
		future := gateOpen.Add(2 * time.Hour)
		repo.add(&Ticket{
			TicketNumber: "PP-0006",
			SlotDate:     "2025-06-01",
			OutTime:      &future,
			Status:       StatusActive,
		})
		svc := newTicketService(t, repo, nil, gateOpen)

		result, _ := svc.Validate(context.Background(), "PP-0006")
		if !result.Valid || result.Code != CodeValid {
			t.Fatalf("expected valid, got %+v", result)
		}
		if result.Ticket == nil || result.Ticket.TicketNumber != "PP-0006" {
			t.Fatalf("expected ticket payload")
		}
	})
}

func TestService_CheckInCheckOut(t *testing.T) {
	t.Parallel()

	t.Run("check-in admits once", func(t *testing.T) {
		repo := newFakeTicketRepo()
		ticket := repo.add(&Ticket{TicketNumber: "PP-0007", SlotDate: "2025-06-01", Status: StatusActive})
		svc := newTicketService(t, repo, nil, gateOpen)

		result, err := svc.CheckIn(context.Background(), "PP-0007")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !result.Valid {
			t.Fatalf("expected admission, got %+v", result)
		}
		stored := repo.tickets[ticket.ID]
		if stored.Status != StatusUsed || !stored.InsideVenue || stored.InTime == nil {
			t.Fatalf("expected used/inside with in_time, got %+v", stored)
		}

		second, err := svc.CheckIn(context.Background(), "PP-0007")
		if err != nil {
			t.Fatalf("second check-in errored: %v", err)
		}
		if second.Valid || second.Code != CodeAlreadyUsed {
			t.Fatalf("expected ALREADY_USED on re-entry, got %+v", second)
		}
	})

	t.Run("check-out clears inside flag", func(t *testing.T) {
		repo := newFakeTicketRepo()
		ticket := repo.add(&Ticket{TicketNumber: "PP-0008", SlotDate: "2025-06-01", Status: StatusActive})
		svc := newTicketService(t, repo, nil, gateOpen)

		if _, err := svc.CheckIn(context.Background(), "PP-0008"); err != nil {
			t.Fatalf("check-in failed: %v", err)
		}
		resp, err := svc.CheckOut(context.Background(), "PP-0008")
		if err != nil {
			t.Fatalf("check-out failed: %v", err)
		}
		if resp.InsideVenue {
			t.Fatalf("expected inside_venue false")
		}
		if repo.tickets[ticket.ID].InsideVenue {
			t.Fatalf("expected persisted inside_venue false")
		}
	})
}

func TestService_IssueForBooking(t *testing.T) {
	t.Parallel()

	newBooking := func() (*fakeBookingSource, uuid.UUID) {
		bookingID := uuid.New()
		source := &fakeBookingSource{bookings: map[uuid.UUID]*bookings.Booking{
			bookingID: {
				ID: bookingID,
				Slot: &slots.Slot{
					SlotDate: "2025-06-01",
					TimeSlot: "10:00 - 11:00",
					EndTime:  "11:00",
				},
			},
		}}
		return source, bookingID
	}

	t.Run("mints a numbered ticket with the slot's exit time", func(t *testing.T) {
		repo := newFakeTicketRepo()
		source, bookingID := newBooking()
		svc := newTicketService(t, repo, source, gateOpen)

		number, err := svc.IssueForBooking(context.Background(), bookingID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if number != "PP-0001" {
			t.Fatalf("expected PP-0001, got %s", number)
		}

		ticket, err := repo.GetByBookingID(context.Background(), bookingID)
		if err != nil {
			t.Fatalf("ticket row missing: %v", err)
		}
		if ticket.SlotDate != "2025-06-01" || ticket.Status != StatusActive {
			t.Fatalf("unexpected ticket: %+v", ticket)
		}
		// 11:00 Dhaka is 05:00 UTC
		wantOut := time.Date(2025, 6, 1, 5, 0, 0, 0, time.UTC)
		if ticket.OutTime == nil || !ticket.OutTime.Equal(wantOut) {
			t.Fatalf("expected out_time %v, got %v", wantOut, ticket.OutTime)
		}
	})

	t.Run("reissue returns the existing number", func(t *testing.T) {
		repo := newFakeTicketRepo()
		source, bookingID := newBooking()
		svc := newTicketService(t, repo, source, gateOpen)

		first, err := svc.IssueForBooking(context.Background(), bookingID)
		if err != nil {
			t.Fatalf("first issue failed: %v", err)
		}
		second, err := svc.IssueForBooking(context.Background(), bookingID)
		if err != nil {
			t.Fatalf("second issue failed: %v", err)
		}
		if first != second {
			t.Fatalf("expected same number, got %s then %s", first, second)
		}
		if len(repo.tickets) != 1 {
			t.Fatalf("expected one ticket row, got %d", len(repo.tickets))
		}
	})

	t.Run("sequence increments across bookings", func(t *testing.T) {
		repo := newFakeTicketRepo()
		source, bookingA := newBooking()
		bookingB := uuid.New()
		source.bookings[bookingB] = &bookings.Booking{
			ID:   bookingB,
			Slot: &slots.Slot{SlotDate: "2025-06-01", TimeSlot: "11:00 - 12:00", EndTime: "12:00"},
		}
		svc := newTicketService(t, repo, source, gateOpen)

		first, err := svc.IssueForBooking(context.Background(), bookingA)
		if err != nil {
			t.Fatalf("first issue failed: %v", err)
		}
		second, err := svc.IssueForBooking(context.Background(), bookingB)
		if err != nil {
			t.Fatalf("second issue failed: %v", err)
		}
		if first != "PP-0001" || second != "PP-0002" {
			t.Fatalf("expected PP-0001 then PP-0002, got %s and %s", first, second)
		}
	})

	t.Run("unknown booking", func(t *testing.T) {
		svc := newTicketService(t, newFakeTicketRepo(), &fakeBookingSource{bookings: map[uuid.UUID]*bookings.Booking{}}, gateOpen)

		if _, err := svc.IssueForBooking(context.Background(), uuid.New()); err == nil {
			t.Fatalf("expected error for unknown booking")
		}
	})
}
