package transport

import (
	"errors"
	"fmt"
)

var (
	ErrRouteNotFound     = errors.New("transport option not found")
	ErrRouteNotAvailable = errors.New("transport option is not available")
	ErrInvalidSchedule   = errors.New("departure time must be before arrival time")
	ErrInvalidDay        = errors.New("invalid day of operation")
	ErrInvalidPrice      = errors.New("price must not be negative")
	ErrNotRouteOwner     = errors.New("route belongs to another organizer")
	ErrDuplicateReview   = errors.New("review already exists for this booking")
)

// CapacityError reports a seat reservation that exceeds current inventory.
// It carries the actual availability so callers can surface it.
type CapacityError struct {
	Requested int
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("insufficient seats: requested %d, only %d available", e.Requested, e.Available)
}
