package order

import "github.com/go-faster/errors"

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// ErrUnknownStatus is returned when parsing an unrecognized status value.
var ErrUnknownStatus = errors.New("unknown order status")

// ParseStatus validates a raw status value.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return Status(s), nil
	}
	return "", ErrUnknownStatus
}

// transitions is the allowed-transition table: forward-only through the
// fulfilment chain, with cancellation possible from any non-terminal
// state. DELIVERED and CANCELLED are terminal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered, StatusCancelled},
	StatusDelivered: {},
	StatusCancelled: {},
}

// CanTransition reports whether moving from s to next is allowed.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are permitted from s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}
