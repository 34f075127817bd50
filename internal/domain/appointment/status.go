package appointment

import "fmt"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown appointment status %q", s)
}

// IsActive reports whether appointments in this status hold their slot.
func (s Status) IsActive() bool {
	switch s {
	case StatusPending, StatusConfirmed:
		return true
	case StatusCancelled:
		return false
	}
	return false
}

// ===============================
// Transitions
//
//	pending   → confirmed
//	pending   → cancelled
//	confirmed → cancelled
// ===============================

func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCancelled
	case StatusCancelled:
		return false
	}
	return false
}

func CanConfirm(current Status) error {
	if !CanTransition(current, StatusConfirmed) {
		return ErrInvalidState
	}
	return nil
}

func CanCancel(current Status) error {
	if !CanTransition(current, StatusCancelled) {
		return ErrInvalidState
	}
	return nil
}

func InitialStatus() Status {
	return StatusPending
}
