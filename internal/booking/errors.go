package booking

import (
	"errors"
	"fmt"
)

var (
	ErrBookingNotFound        = errors.New("booking not found")
	ErrRefundRequestNotFound  = errors.New("refund request not found")
	ErrNotBookingOwner        = errors.New("booking belongs to another student")
	ErrInvalidDate            = errors.New("booking date must be in YYYY-MM-DD format")
	ErrDateInPast             = errors.New("booking date cannot be in the past")
	ErrNotOperatingDay        = errors.New("transport option does not operate on this day")
	ErrInvalidSeatCount       = errors.New("number of seats must be at least 1")
	ErrNotEligible            = errors.New("only confirmed or completed bookings can be refunded")
	ErrDuplicateRefundRequest = errors.New("refund request already exists for this booking")
	ErrInvalidAmount          = errors.New("amount must be greater than zero")
	ErrInvalidDecision        = errors.New("decision must be approved, rejected or processed")
)

// InvalidTransitionError reports an illegal state-machine move. It carries
// both states so callers can surface what was attempted from where.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change %s status from %s to %s", e.Entity, e.From, e.To)
}
