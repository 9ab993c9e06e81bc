package services

import (
	"errors"
	"fmt"

	"parcel-delivery-api/store"
)

// Error kinds. Handlers map them to HTTP statuses with errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden access")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("invalid request")
	ErrConflict     = errors.New("conflict")
	ErrGateway      = errors.New("payment gateway error")
)

// Error carries a client-facing message together with its kind and cause
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind, cause error, msg string) error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// notFound turns a store miss into ErrNotFound with msg and passes other
// errors through
func notFound(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return wrapError(ErrNotFound, err, msg)
	}
	return err
}
