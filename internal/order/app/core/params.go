package core

import (
	"time"

	"table-order/internal/xpkg/models"
)

const (
	ServiceName = "order-service"

	// WaitTime bounds request handling and graceful shutdown, in seconds.
	WaitTime = 10

	DefaultPort = 3000
)

type OrderParams struct {
	Port        int
	SeedMenu    string
	ConfirmWait time.Duration
}

// CheckoutRequest identifies who is ordering and how they pay.
type CheckoutRequest struct {
	TableID string
	UserID  string
	Method  models.PaymentMethod
}

func (r CheckoutRequest) Validate() error {
	switch {
	case r.TableID == "":
		return &RequestError{Field: "table_id", Reason: "is empty"}
	case r.UserID == "":
		return &RequestError{Field: "user_id", Reason: "is empty"}
	case !r.Method.Valid():
		return &RequestError{Field: "method", Reason: "must be CASH or UPI"}
	}
	return nil
}
