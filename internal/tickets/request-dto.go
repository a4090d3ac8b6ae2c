package tickets

// ValidateTicketRequest identifies a ticket by id or number; at least one must
// be present.
type ValidateTicketRequest struct {
	TicketID     string `json:"ticket_id" binding:"omitempty,uuid"`
	TicketNumber string `json:"ticket_number" binding:"omitempty"`
}

// Identifier returns whichever reference was supplied, preferring the id.
func (r *ValidateTicketRequest) Identifier() string {
	if r.TicketID != "" {
		return r.TicketID
	}
	return r.TicketNumber
}
