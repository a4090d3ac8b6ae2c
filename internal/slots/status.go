package slots

type Status string

const (
	StatusAvailable Status = "available"
	StatusBooked    Status = "booked"
	StatusBlocked   Status = "blocked"
)

// IsValid checks if the slot status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusBooked, StatusBlocked:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsBookable checks if a slot with this status accepts new bookings
func (s Status) IsBookable() bool {
	return s == StatusAvailable
}
