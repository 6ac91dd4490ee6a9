package orders

import (
	"slices"
	"time"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/apperr"
)

// CancellationReasons is the fixed list a user picks from when cancelling.
var CancellationReasons = []string{
	"Found a better price elsewhere",
	"Ordered by mistake",
	"Delivery is taking too long",
	"Need to change delivery address",
	"Want to change items or quantity",
}

func IsCancellationReason(r string) bool {
	return slices.Contains(CancellationReasons, r)
}

// CancelByUser applies an owner cancellation. Stock restoration is the
// caller's job; see RestoresStock.
func (o *Order) CancelByUser(userID, reason string, now time.Time) error {
	if !IsCancellationReason(reason) {
		return apperr.Validation("Please select a valid cancellation reason")
	}
	if o.UserID != userID {
		return apperr.Authorization("You can only cancel your own order")
	}
	if !o.Status.UserCancellable() {
		return apperr.Conflict("Order cannot be cancelled once it is %s", o.Status)
	}
	o.Status = StatusCancelled
	o.CancelledBy = ActorUser
	o.CancelReason = reason
	o.CancelledAt = &now
	o.UpdatedAt = now
	return nil
}

// SetStatusByAdmin moves the order to next. Setting the current status again
// is accepted and reports changed=false.
func (o *Order) SetStatusByAdmin(next Status, now time.Time) (changed bool, err error) {
	if _, ok := validNext[next]; !ok {
		return false, apperr.Validation("unknown order status %q", next)
	}
	if next == o.Status {
		return false, nil
	}
	if !CanTransition(o.Status, next) {
		return false, apperr.Conflict("cannot move order from %s to %s", o.Status, next)
	}
	o.Status = next
	o.UpdatedAt = now
	if next == StatusCancelled {
		o.CancelledBy = ActorAdmin
		o.CancelledAt = &now
	}
	return true, nil
}
