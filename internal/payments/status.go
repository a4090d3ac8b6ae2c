package payments

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsValid checks if the payment status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the status will never change again
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Provider status strings recognized from webhook and verify payloads.
// Anything else leaves the payment pending for manual review.
const (
	ProviderStatusCompleted = "COMPLETED"
	ProviderStatusPending   = "PENDING"
	ProviderStatusCancelled = "CANCELLED"
	ProviderStatusFailed    = "FAILED"
)

// MapProviderStatus translates a reported provider status into the local
// terminal status. The bool is false when the report is non-terminal or
// unrecognized.
func MapProviderStatus(reported string) (Status, bool) {
	switch reported {
	case ProviderStatusCompleted:
		return StatusCompleted, true
	case ProviderStatusCancelled, ProviderStatusFailed:
		return StatusFailed, true
	default:
		return StatusPending, false
	}
}
