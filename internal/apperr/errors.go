// Package apperr defines the error kinds shared by every storefront component.
// Handlers map kinds to transport status codes; nothing in the core retries on them.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindAuthorization
	KindExpired
	KindMismatch
	KindEmptyCart
	KindPaymentSignature
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindAuthorization:
		return "authorization"
	case KindExpired:
		return "expired"
	case KindMismatch:
		return "mismatch"
	case KindEmptyCart:
		return "empty_cart"
	case KindPaymentSignature:
		return "payment_signature"
	case KindPersistence:
		return "persistence"
	default:
		return "internal"
	}
}

// Sentinels for errors.Is. Every *Error of a kind matches the sentinel of that kind.
var (
	ErrValidation       = &Error{Kind: KindValidation, Msg: "validation failed"}
	ErrNotFound         = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrConflict         = &Error{Kind: KindConflict, Msg: "conflict"}
	ErrAuthorization    = &Error{Kind: KindAuthorization, Msg: "not allowed"}
	ErrExpired          = &Error{Kind: KindExpired, Msg: "expired"}
	ErrMismatch         = &Error{Kind: KindMismatch, Msg: "mismatch"}
	ErrEmptyCart        = &Error{Kind: KindEmptyCart, Msg: "cart is empty"}
	ErrPaymentSignature = &Error{Kind: KindPaymentSignature, Msg: "invalid payment signature"}
	ErrPersistence      = &Error{Kind: KindPersistence, Msg: "persistence failure"}
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality so callers can match on the package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an error of any kind.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func Authorization(format string, args ...any) error {
	return &Error{Kind: KindAuthorization, Msg: fmt.Sprintf(format, args...)}
}

// Persistence wraps an unexpected store failure. The message stays generic;
// the cause is only reachable through Unwrap (and logs).
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: KindPersistence, Msg: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}
