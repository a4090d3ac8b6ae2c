package tickets

// Status represents the lifecycle state of a ticket
type Status string

const (
	StatusActive    Status = "active"
	StatusUsed      Status = "used"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusUsed, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// Validation outcome codes, stable for machine consumption.
const (
	CodeNotFound    = "TICKET_NOT_FOUND"
	CodeDatePassed  = "DATE_PASSED"
	CodeDateFuture  = "DATE_FUTURE"
	CodeCancelled   = "CANCELLED"
	CodeExpired     = "EXPIRED"
	CodeAlreadyUsed = "ALREADY_USED"
	CodeTimeExpired = "TIME_EXPIRED"
	CodeValid       = "VALID"
)
