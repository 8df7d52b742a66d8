package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidCart  = errors.New("invalid cart")
	ErrCheckoutSync = errors.New("checkout could not be saved")
	ErrStaleCatalog = errors.New("not enough stock")
)

// InvalidCartError means the cart cannot become an order as it is. The
// caller should re-sync the cart before retrying.
type InvalidCartError struct {
	Reason  string
	Dropped []string
}

func (e *InvalidCartError) Error() string {
	if len(e.Dropped) == 0 {
		return fmt.Sprintf("invalid cart: %s", e.Reason)
	}
	return fmt.Sprintf("invalid cart: %s (dropped %s)", e.Reason, strings.Join(e.Dropped, ", "))
}

func (e *InvalidCartError) Is(target error) bool { return target == ErrInvalidCart }
func (e *InvalidCartError) Kind() string         { return "invalid_cart" }

// CheckoutSyncError means the atomic write failed and nothing was stored.
// Retrying is safe.
type CheckoutSyncError struct {
	Err error
}

func (e *CheckoutSyncError) Error() string        { return "checkout sync failed: " + e.Err.Error() }
func (e *CheckoutSyncError) Unwrap() error        { return e.Err }
func (e *CheckoutSyncError) Is(target error) bool { return target == ErrCheckoutSync }
func (e *CheckoutSyncError) Kind() string         { return "checkout_sync" }

// StaleCatalogWarning is returned by cart updates that would exceed the
// available stock. The cart is unchanged.
type StaleCatalogWarning struct {
	ItemID    string
	Requested int
	Available int
}

func (e *StaleCatalogWarning) Error() string {
	return fmt.Sprintf("only %d of %s available, requested %d", e.Available, e.ItemID, e.Requested)
}

func (e *StaleCatalogWarning) Is(target error) bool { return target == ErrStaleCatalog }
func (e *StaleCatalogWarning) Kind() string         { return "stale_catalog" }

type RequestError struct {
	Field  string
	Reason string
}

func (e *RequestError) Error() string { return e.Field + " " + e.Reason }
func (e *RequestError) Kind() string  { return "invalid_request" }
