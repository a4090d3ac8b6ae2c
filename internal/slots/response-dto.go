package slots

import "github.com/google/uuid"

// DaySlotsResponse is the calendar for one date
type DaySlotsResponse struct {
	Date  string     `json:"date"`
	Slots []SlotInfo `json:"slots"`
}

// SlotInfo is the public view of a slot
type SlotInfo struct {
	ID        uuid.UUID `json:"id"`
	TimeSlot  string    `json:"time_slot"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Status    Status    `json:"status"`
}

// ToDaySlotsResponse converts slot rows into the public calendar view
func ToDaySlotsResponse(date string, daySlots []Slot) DaySlotsResponse {
	infos := make([]SlotInfo, 0, len(daySlots))
	for _, s := range daySlots {
		infos = append(infos, SlotInfo{
			ID:        s.ID,
			TimeSlot:  s.TimeSlot,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			Status:    s.Status,
		})
	}
	return DaySlotsResponse{Date: date, Slots: infos}
}
