package orders

import "github.com/Hshshssjsjjsjsqq/vercel-backend/internal/apperr"

type Status string

const (
	StatusPlaced    Status = "Placed"
	StatusShipped   Status = "Shipped"
	StatusDelivered Status = "Delivered"
	StatusRejected  Status = "Rejected"
	StatusCancelled Status = "Cancelled"
)

// Terminal states have no way out: an order is never un-cancelled.
var validNext = map[Status]map[Status]bool{
	StatusPlaced:    {StatusShipped: true, StatusRejected: true, StatusCancelled: true},
	StatusShipped:   {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered: {},
	StatusRejected:  {},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := validNext[st]; !ok {
		return "", apperr.Validation("unknown order status %q", s)
	}
	return st, nil
}

func (s Status) Terminal() bool { return len(validNext[s]) == 0 }

// RestoresStock reports whether entering s credits the order's stock back.
func (s Status) RestoresStock() bool {
	return s == StatusRejected || s == StatusCancelled
}

// UserCancellable reports whether the owner may still cancel.
func (s Status) UserCancellable() bool {
	switch s {
	case StatusShipped, StatusDelivered, StatusRejected, StatusCancelled:
		return false
	}
	return true
}
