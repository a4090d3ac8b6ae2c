package slots

import (
	"context"
	"sync"
	"testing"

	"playpark/internal/shared/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeSlotRepo struct {
	mu      sync.Mutex
	days    map[string][]Slot
	byID    map[uuid.UUID]*Slot
	creates int
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{
		days: make(map[string][]Slot),
		byID: make(map[uuid.UUID]*Slot),
	}
}

func (f *fakeSlotRepo) GetByDate(ctx context.Context, date string) ([]Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Slot(nil), f.days[date]...), nil
}

func (f *fakeSlotRepo) GetByID(ctx context.Context, id uuid.UUID) (*Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *slot
	return &copied, nil
}

func (f *fakeSlotRepo) GetByDateAndTime(ctx context.Context, date, timeSlot string) (*Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.days[date] {
		if f.days[date][i].TimeSlot == timeSlot {
			copied := f.days[date][i]
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSlotRepo) CreateDay(ctx context.Context, daySlots []Slot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	date := daySlots[0].SlotDate
	if len(f.days[date]) > 0 {
		return ErrDayExists
	}
	for i := range daySlots {
		daySlots[i].ID = uuid.New()
		f.days[date] = append(f.days[date], daySlots[i])
		stored := daySlots[i]
		f.byID[stored.ID] = &stored
	}
	return nil
}

func (f *fakeSlotRepo) UpdateStatusConditional(ctx context.Context, id uuid.UUID, from, to Status) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot, ok := f.byID[id]
	if !ok || slot.Status != from {
		return false, nil
	}
	slot.Status = to
	for i := range f.days[slot.SlotDate] {
		if f.days[slot.SlotDate][i].ID == id {
			f.days[slot.SlotDate][i].Status = to
		}
	}
	return true, nil
}

func TestService_GetOrCreateSlots(t *testing.T) {
	t.Parallel()

	t.Run("rejects malformed date", func(t *testing.T) {
		svc := NewService(newFakeSlotRepo(), nil, 0)

		_, err := svc.GetOrCreateSlots(context.Background(), "01-06-2025")
		app, ok := apperr.AsError(err)
		if !ok || app.Code != "INVALID_DATE" {
			t.Fatalf("expected INVALID_DATE, got %v", err)
		}
	})

	t.Run("generates eleven slots on first access", func(t *testing.T) {
		repo := newFakeSlotRepo()
		svc := NewService(repo, nil, 0)

		daySlots, err := svc.GetOrCreateSlots(context.Background(), "2025-06-01")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(daySlots) != 11 {
			t.Fatalf("expected 11 slots, got %d", len(daySlots))
		}
		if daySlots[0].TimeSlot != "10:00 - 11:00" {
			t.Fatalf("expected first slot 10:00 - 11:00, got %s", daySlots[0].TimeSlot)
		}
		if daySlots[10].TimeSlot != "20:00 - 21:00" {
			t.Fatalf("expected last slot 20:00 - 21:00, got %s", daySlots[10].TimeSlot)
		}
		for _, slot := range daySlots {
			if slot.Status != StatusAvailable {
				t.Fatalf("expected all slots available, got %s", slot.Status)
			}
		}
	})

	t.Run("concurrent first access yields one generation", func(t *testing.T) {
		repo := newFakeSlotRepo()
		svc := NewService(repo, nil, 0)

		var wg sync.WaitGroup
		errs := make([]error, 8)
		counts := make([]int, 8)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				daySlots, err := svc.GetOrCreateSlots(context.Background(), "2025-06-02")
				errs[i] = err
				counts[i] = len(daySlots)
			}(i)
		}
		wg.Wait()

		for i := 0; i < 8; i++ {
			if errs[i] != nil {
				t.Fatalf("caller %d: expected no error, got %v", i, errs[i])
			}
			if counts[i] != 11 {
				t.Fatalf("caller %d: expected 11 slots, got %d", i, counts[i])
			}
		}
		if len(repo.days["2025-06-02"]) != 11 {
			t.Fatalf("expected 11 rows stored, got %d", len(repo.days["2025-06-02"]))
		}
	})

	t.Run("second access reuses existing rows", func(t *testing.T) {
		repo := newFakeSlotRepo()
		svc := NewService(repo, nil, 0)

		first, _ := svc.GetOrCreateSlots(context.Background(), "2025-06-03")
		second, err := svc.GetOrCreateSlots(context.Background(), "2025-06-03")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if repo.creates != 1 {
			t.Fatalf("expected one generation, got %d", repo.creates)
		}
		if first[0].ID != second[0].ID {
			t.Fatalf("expected identical rows across reads")
		}
	})
}

func TestService_BlockUnblock(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) (Service, *fakeSlotRepo, Slot) {
		repo := newFakeSlotRepo()
		svc := NewService(repo, nil, 0)
		daySlots, err := svc.GetOrCreateSlots(context.Background(), "2025-07-01")
		if err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		return svc, repo, daySlots[0]
	}

	t.Run("blocks an available slot", func(t *testing.T) {
		svc, repo, slot := setup(t)

		if err := svc.BlockSlot(context.Background(), slot.ID); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if repo.byID[slot.ID].Status != StatusBlocked {
			t.Fatalf("expected blocked, got %s", repo.byID[slot.ID].Status)
		}
	})

	t.Run("refuses to block a booked slot", func(t *testing.T) {
		svc, repo, slot := setup(t)
		repo.byID[slot.ID].Status = StatusBooked

		err := svc.BlockSlot(context.Background(), slot.ID)
		app, ok := apperr.AsError(err)
		if !ok || app.Code != "SLOT_NOT_BLOCKABLE" {
			t.Fatalf("expected SLOT_NOT_BLOCKABLE, got %v", err)
		}
	})

	t.Run("unblock requires blocked status", func(t *testing.T) {
		svc, _, slot := setup(t)

		err := svc.UnblockSlot(context.Background(), slot.ID)
		app, ok := apperr.AsError(err)
		if !ok || app.Code != "SLOT_NOT_BLOCKED" {
			t.Fatalf("expected SLOT_NOT_BLOCKED, got %v", err)
		}

		if err := svc.BlockSlot(context.Background(), slot.ID); err != nil {
			t.Fatalf("block failed: %v", err)
		}
		if err := svc.UnblockSlot(context.Background(), slot.ID); err != nil {
			t.Fatalf("unblock failed: %v", err)
		}
	})

	t.Run("unknown slot id", func(t *testing.T) {
		svc, _, _ := setup(t)

		err := svc.BlockSlot(context.Background(), uuid.New())
		app, ok := apperr.AsError(err)
		if !ok || app.Code != "SLOT_NOT_FOUND" {
			t.Fatalf("expected SLOT_NOT_FOUND, got %v", err)
		}
	})
}
