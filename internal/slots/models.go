package slots

import (
	"time"

	"github.com/google/uuid"
)

// Slot is one bookable one-hour window on the venue calendar.
// Rows are created lazily: the first read of a date inserts the full
// daily template, and the unique (slot_date, time_slot) constraint
// collapses racing generators.
type Slot struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SlotDate    string    `gorm:"type:varchar(10);not null;uniqueIndex:unique_slot_per_day" json:"date"`
	TimeSlot    string    `gorm:"type:varchar(20);not null;uniqueIndex:unique_slot_per_day" json:"time_slot"`
	StartTime   string    `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime     string    `gorm:"type:varchar(5);not null" json:"end_time"`
	Status      Status    `gorm:"type:varchar(20);check:status IN ('available', 'booked', 'blocked');default:'available'" json:"status"`
	Capacity    int       `gorm:"not null;default:1" json:"capacity"`
	BookedCount int       `gorm:"not null;default:0" json:"booked_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName sets the table name for Slot
func (Slot) TableName() string {
	return "slots"
}

// HasCapacity reports whether another booking fits into this slot.
func (s *Slot) HasCapacity() bool {
	return s.Status != StatusBlocked && s.BookedCount < s.Capacity
}

// DayTemplate returns the fixed daily template for a date: eleven one-hour
// windows from 10:00 to 21:00, all available.
func DayTemplate(date string) []Slot {
	slots := make([]Slot, 0, 11)
	for hour := 10; hour < 21; hour++ {
		start := formatHour(hour)
		end := formatHour(hour + 1)
		slots = append(slots, Slot{
			SlotDate:  date,
			TimeSlot:  start + " - " + end,
			StartTime: start,
			EndTime:   end,
			Status:    StatusAvailable,
			Capacity:  1,
		})
	}
	return slots
}

func formatHour(hour int) string {
	return time.Date(0, 1, 1, hour, 0, 0, 0, time.UTC).Format("15:04")
}
