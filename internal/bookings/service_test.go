package bookings

import (
	"context"
	"sync"
	"testing"
	"time"

	"playpark/internal/shared/apperr"
	"playpark/internal/slots"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeBookingRepo mimics the transactional reservation semantics of the real
// repository: booking insert and slot capacity claim succeed or fail together.
type fakeBookingRepo struct {
	mu       sync.Mutex
	slots    map[string]*slots.Slot // keyed by date+"|"+timeSlot
	bookings map[uuid.UUID]*Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		slots:    make(map[string]*slots.Slot),
		bookings: make(map[uuid.UUID]*Booking),
	}
}

func (f *fakeBookingRepo) addSlot(date, timeSlot string, capacity int) *slots.Slot {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot := &slots.Slot{
		ID:       uuid.New(),
		SlotDate: date,
		TimeSlot: timeSlot,
		Status:   slots.StatusAvailable,
		Capacity: capacity,
	}
	f.slots[date+"|"+timeSlot] = slot
	return slot
}

func (f *fakeBookingRepo) CreateWithSlotReservation(ctx context.Context, booking *Booking, date, timeSlot string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	slot, ok := f.slots[date+"|"+timeSlot]
	if !ok {
		return ErrSlotNotFound
	}
	if !slot.HasCapacity() {
		return ErrSlotUnavailable
	}

	slot.BookedCount++
	if slot.BookedCount >= slot.Capacity {
		slot.Status = slots.StatusBooked
	}

	booking.ID = uuid.New()
	booking.SlotID = slot.ID
	booking.CreatedAt = time.Now()
	stored := *booking
	f.bookings[booking.ID] = &stored
	return nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *booking
	return &copied, nil
}

func (f *fakeBookingRepo) GetByIDWithSlot(ctx context.Context, id uuid.UUID) (*Booking, error) {
	booking, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, slot := range f.slots {
		if slot.ID == booking.SlotID {
			copied := *slot
			booking.Slot = &copied
		}
	}
	return booking, nil
}

func (f *fakeBookingRepo) List(ctx context.Context, query BookingListQuery) ([]Booking, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	listed := make([]Booking, 0, len(f.bookings))
	for _, booking := range f.bookings {
		if query.Status != "" && string(booking.Status) != query.Status {
			continue
		}
		listed = append(listed, *booking)
	}
	return listed, int64(len(listed)), nil
}

func (f *fakeBookingRepo) CancelWithSlotRelease(ctx context.Context, id uuid.UUID, reason string) (*Booking, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	booking, ok := f.bookings[id]
	if !ok {
		return nil, false, gorm.ErrRecordNotFound
	}
	if booking.IsCancelled() {
		copied := *booking
		return &copied, false, nil
	}

	booking.Cancel(reason)
	for _, slot := range f.slots {
		if slot.ID == booking.SlotID {
			slot.BookedCount--
			if slot.Status == slots.StatusBooked && slot.BookedCount < slot.Capacity {
				slot.Status = slots.StatusAvailable
			}
		}
	}
	copied := *booking
	return &copied, true, nil
}

type fakeSlotService struct {
	mu          sync.Mutex
	invalidated []string
}

func (f *fakeSlotService) GetOrCreateSlots(ctx context.Context, date string) ([]slots.Slot, error) {
	return nil, nil
}

func (f *fakeSlotService) InvalidateDay(ctx context.Context, date string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, date)
}

type fakeDispatcher struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeDispatcher) EnqueueSMS(ctx context.Context, phone, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return nil
}

func TestService_CreateBooking(t *testing.T) {
	t.Parallel()

	t.Run("reserves an available slot", func(t *testing.T) {
		repo := newFakeBookingRepo()
		repo.addSlot("2025-06-01", "10:00 - 11:00", 1)
		dispatcher := &fakeDispatcher{}
		svc := NewService(repo, &fakeSlotService{}, dispatcher)

		resp, err := svc.CreateBooking(context.Background(), CreateBookingRequest{
			Date:        "2025-06-01",
			TimeSlot:    "10:00 - 11:00",
			ParentName:  "Rahim",
			ParentPhone: "01712345678",
			ChildCount:  2,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.Status != StatusPending {
			t.Fatalf("expected pending booking, got %s", resp.Status)
		}
		if resp.PaymentStatus != PaymentStatusPending {
			t.Fatalf("expected pending payment, got %s", resp.PaymentStatus)
		}
		if got := repo.slots["2025-06-01|10:00 - 11:00"].Status; got != slots.StatusBooked {
			t.Fatalf("expected slot booked, got %s", got)
		}
		if len(dispatcher.messages) != 1 {
			t.Fatalf("expected one confirmation SMS, got %d", len(dispatcher.messages))
		}
	})

	t.Run("defaults child count to one", func(t *testing.T) {
		repo := newFakeBookingRepo()
		repo.addSlot("2025-06-01", "11:00 - 12:00", 1)
		svc := NewService(repo, &fakeSlotService{}, &fakeDispatcher{})

		resp, err := svc.CreateBooking(context.Background(), CreateBookingRequest{
			Date:        "2025-06-01",
			TimeSlot:    "11:00 - 12:00",
			ParentName:  "Karim",
			ParentPhone: "01812345678",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.ChildCount != 1 {
			t.Fatalf("expected child count 1, got %d", resp.ChildCount)
		}
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		svc := NewService(newFakeBookingRepo(), &fakeSlotService{}, &fakeDispatcher{})

		_, err := svc.CreateBooking(context.Background(), CreateBookingRequest{
			Date:        "June 1st",
			TimeSlot:    "10:00 - 11:00",
			ParentName:  "Rahim",
			ParentPhone: "01712345678",
		})
		app, ok := apperr.AsError(err)
		if !ok || app.Code != "INVALID_DATE" {
			t.Fatalf("expected INVALID_DATE, got %v", err)
		}
	})

	t.Run("unknown time slot", func(t *testing.T) {
		repo := newFakeBookingRepo()
		repo.addSlot("2025-06-01", "10:00 - 11:00", 1)
		svc := NewService(repo, &fakeSlotService{}, &fakeDispatcher{})

		_, err := svc.CreateBooking(context.Background(), CreateBookingRequest{
			Date:        "2025-06-01",
			TimeSlot:    "23:00 - 24:00",
			ParentName:  "Rahim",
			ParentPhone: "01712345678",
		})
		app, ok := apperr.AsError(err)
		if !ok || app.Code != "SLOT_NOT_FOUND" {
			t.Fatalf("expected SLOT_NOT_FOUND, got %v", err)
		}
	})

	t.Run("concurrent bookings admit exactly one winner", func(t *testing.T) {
		repo := newFakeBookingRepo()
		repo.addSlot("2025-06-01", "12:00 - 13:00", 1)
		svc := NewService(repo, &fakeSlotService{}, &fakeDispatcher{})

		const callers = 10
		var wg sync.WaitGroup
		results := make([]error, callers)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, results[i] = svc.CreateBooking(context.Background(), CreateBookingRequest{
					Date:        "2025-06-01",
					TimeSlot:    "12:00 - 13:00",
					ParentName:  "Racer",
					ParentPhone: "01912345678",
				})
			}(i)
		}
		wg.Wait()

		winners, conflicts := 0, 0
		for _, err := range results {
			if err == nil {
				winners++
				continue
			}
			if app, ok := apperr.AsError(err); ok && app.Code == "SLOT_UNAVAILABLE" {
				conflicts++
			}
		}
		if winners != 1 {
			t.Fatalf("expected exactly one winner, got %d", winners)
		}
		if conflicts != callers-1 {
			t.Fatalf("expected %d conflicts, got %d", callers-1, conflicts)
		}
		if len(repo.bookings) != 1 {
			t.Fatalf("expected one booking row, got %d", len(repo.bookings))
		}
	})
}

func TestService_CancelBooking(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) (Service, *fakeBookingRepo, *fakeDispatcher, uuid.UUID) {
		repo := newFakeBookingRepo()
		repo.addSlot("2025-06-01", "10:00 - 11:00", 1)
		dispatcher := &fakeDispatcher{}
		svc := NewService(repo, &fakeSlotService{}, dispatcher)

		resp, err := svc.CreateBooking(context.Background(), CreateBookingRequest{
			Date:        "2025-06-01",
			TimeSlot:    "10:00 - 11:00",
			ParentName:  "Rahim",
			ParentPhone: "01712345678",
		})
		if err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		return svc, repo, dispatcher, resp.ID
	}

	t.Run("cancel releases the slot", func(t *testing.T) {
		svc, repo, _, id := setup(t)

		booking, err := svc.CancelBooking(context.Background(), id, "changed plans")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if booking.Status != StatusCancelled {
			t.Fatalf("expected cancelled, got %s", booking.Status)
		}
		slot := repo.slots["2025-06-01|10:00 - 11:00"]
		if slot.Status != slots.StatusAvailable || slot.BookedCount != 0 {
			t.Fatalf("expected slot released, got %s count=%d", slot.Status, slot.BookedCount)
		}
	})

	t.Run("cancelling twice is a no-op", func(t *testing.T) {
		svc, repo, dispatcher, id := setup(t)

		if _, err := svc.CancelBooking(context.Background(), id, "first"); err != nil {
			t.Fatalf("first cancel failed: %v", err)
		}
		smsAfterFirst := len(dispatcher.messages)

		booking, err := svc.CancelBooking(context.Background(), id, "second")
		if err != nil {
			t.Fatalf("second cancel errored: %v", err)
		}
		if booking.Status != StatusCancelled {
			t.Fatalf("expected cancelled, got %s", booking.Status)
		}
		if repo.slots["2025-06-01|10:00 - 11:00"].BookedCount != 0 {
			t.Fatalf("expected capacity released once, got %d", repo.slots["2025-06-01|10:00 - 11:00"].BookedCount)
		}
		if len(dispatcher.messages) != smsAfterFirst {
			t.Fatalf("expected no second cancellation SMS")
		}
	})

	t.Run("unknown booking", func(t *testing.T) {
		svc, _, _, _ := setup(t)

		_, err := svc.CancelBooking(context.Background(), uuid.New(), "whatever")
		app, ok := apperr.AsError(err)
		if !ok || app.Code != "BOOKING_NOT_FOUND" {
			t.Fatalf("expected BOOKING_NOT_FOUND, got %v", err)
		}
	})
}
