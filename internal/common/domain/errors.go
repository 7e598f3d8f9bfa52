package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error so callers can map it to a response.
type ErrorKind string

const (
	KindValidation      ErrorKind = "validation"
	KindNotFound        ErrorKind = "not_found"
	KindForbidden       ErrorKind = "forbidden"
	KindConflict        ErrorKind = "conflict"
	KindInvalidState    ErrorKind = "invalid_state"
	KindPaymentMismatch ErrorKind = "payment_mismatch"
)

// Error is the value-level error type returned by the domain and application layers.
type Error struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// NewValidationError reports malformed or out-of-range input.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewForbiddenError reports an actor attempting an operation it is not permitted to perform.
func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NewConflictError reports an optimistic-concurrency mismatch.
func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewInvalidStateError reports a lifecycle event that is not legal from the current state.
func NewInvalidStateError(current, attempted string) *Error {
	return &Error{
		Kind:    KindInvalidState,
		Message: fmt.Sprintf("cannot apply %s in state %s", attempted, current),
	}
}

// NewPaymentMismatchError reports a payment event whose amount disagrees with the stored quote.
func NewPaymentMismatchError(expectedCents, actualCents int64) *Error {
	return &Error{
		Kind:    KindPaymentMismatch,
		Message: fmt.Sprintf("payment amount %d does not match quoted total %d", actualCents, expectedCents),
	}
}

// KindOf returns the kind of a domain error, or "" for any other error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
