// Package errors defines the failure taxonomy shared by every subpass
// operation. Transports map Kind to status codes and surface Reason verbatim.
package errors

import (
	"errors"
	"fmt"
)

// Kind groups failures by what the caller can do about them.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindStateConflict Kind = "state_conflict"
	KindAuthorization Kind = "authorization"
	KindAvailability  Kind = "availability"
	KindTransfer      Kind = "transfer"
)

// Error is a domain failure with a stable, machine-matchable reason.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string { return e.Reason }

func newErr(kind Kind, reason string) *Error { return &Error{Kind: kind, Reason: reason} }

var (
	// Validation
	ErrInvalidClass    = newErr(KindValidation, "InvalidClass")
	ErrInvalidDuration = newErr(KindValidation, "InvalidDuration")
	ErrInvalidQuantity = newErr(KindValidation, "InvalidQuantity")
	ErrInvalidAddress  = newErr(KindValidation, "InvalidAddress")
	ErrLengthMismatch  = newErr(KindValidation, "LengthMismatch")
	ErrSelfApproval    = newErr(KindValidation, "SelfApproval")

	// State conflicts
	ErrAlreadySubscribed         = newErr(KindStateConflict, "AlreadySubscribed")
	ErrDuplicateGrant            = newErr(KindStateConflict, "DuplicateGrant")
	ErrSeatLimitReached          = newErr(KindStateConflict, "SeatLimitReached")
	ErrNotSubscribed             = newErr(KindStateConflict, "NotSubscribed")
	ErrReceiverAlreadySubscribed = newErr(KindStateConflict, "ReceiverAlreadySubscribed")
	ErrNotPaused                 = newErr(KindStateConflict, "NotPaused")

	// Authorization
	ErrNotPrivileged      = newErr(KindAuthorization, "NotPrivileged")
	ErrNotOwnerOrApproved = newErr(KindAuthorization, "NotOwnerOrApproved")

	// Availability
	ErrPaused = newErr(KindAvailability, "Paused")

	// Ledger
	ErrInsufficientBalance  = newErr(KindTransfer, "InsufficientBalance")
	ErrZeroAddressRecipient = newErr(KindTransfer, "ZeroAddressRecipient")
)

// As returns the domain error wrapped in err, if any.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Reason returns the stable reason string of a domain error, or "Internal"
// for anything else.
func Reason(err error) string {
	if de, ok := As(err); ok {
		return de.Reason
	}
	return "Internal"
}

// KindOf returns the kind of a domain error and false for foreign errors.
func KindOf(err error) (Kind, bool) {
	if de, ok := As(err); ok {
		return de.Kind, true
	}
	return "", false
}

// Wrap annotates err with the failed operation, keeping it matchable.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
