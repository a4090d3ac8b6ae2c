package slots

// DaySlotsRequest selects one calendar day
type DaySlotsRequest struct {
	SelectedDate string `json:"selected_date" binding:"required,slotdate"`
}
