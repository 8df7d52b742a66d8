// Package apperr holds the sentinel errors shared by every service of the
// restaurant system and the kind classification the HTTP layers map to
// status codes.
package apperr

import (
	"context"
	"errors"
)

var (
	ErrParseCmd       = errors.New("cannot parse arguments")
	ErrHelp           = errors.New("")
	ErrModeFlag       = errors.New("mode flag is required")
	ErrUnknownService = errors.New("unknown service, write --help command to see valid services")

	ErrDBConn = errors.New("db connection failure")
	ErrMBConn = errors.New("message broker connection failure")
	ErrMBCh   = errors.New("message broker channel failure")
	// ErrStreamClosed means a delivery channel ended while its consumer was
	// still running.
	ErrStreamClosed = errors.New("message broker delivery stream closed")

	ErrOrderNotFound     = errors.New("order not found")
	ErrStatusConflict    = errors.New("order status does not allow this change")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// kinder is satisfied by typed domain errors that classify themselves.
type kinder interface {
	Kind() string
}

// Kind returns a short machine-readable classification of err.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	var k kinder
	if errors.As(err, &k) {
		return k.Kind()
	}

	switch {
	case errors.Is(err, ErrOrderNotFound):
		return "not_found"
	case errors.Is(err, ErrStatusConflict):
		return "status_conflict"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrDBConn):
		return "db_unavailable"
	case errors.Is(err, ErrMBConn), errors.Is(err, ErrMBCh), errors.Is(err, ErrStreamClosed):
		return "broker_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "internal"
	}
}
