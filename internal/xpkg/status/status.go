// Package status derives display and settlement state from order records
// and detects item readiness transitions between consecutive snapshots.
package status

import (
	"errors"

	"table-order/internal/xpkg/models"
)

var (
	ErrInvalidTransition    = errors.New("order status does not allow this transition")
	ErrConfirmationRequired = errors.New("force settle requires explicit confirmation")
)

type Bucket string

const (
	Secured  Bucket = "SECURED"
	AtRisk   Bucket = "AT_RISK"
	Excluded Bucket = "EXCLUDED"
)

const (
	DisplaySettled         = "SETTLED"
	DisplayBillRequested   = "BILL REQUESTED"
	DisplayServed          = "SERVED"
	DisplayAwaitingPayment = "AWAITING PAYMENT"
	DisplayReadyToServe    = "READY TO SERVE"
	DisplayPreparing       = "PREPARING"
	DisplayReceived        = "RECEIVED"
)

type Readiness struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
	Ready   int `json:"ready"`
	Served  int `json:"served"`
}

type Classification struct {
	Bucket        Bucket    `json:"bucket"`
	DisplayStatus string    `json:"display_status"`
	Readiness     Readiness `json:"readiness"`
}

// Classify buckets an order for revenue accounting and derives what the
// customer and admin views show for it.
//
// An order is counted only when its total is positive; counted orders are
// SECURED once settled and AT_RISK otherwise.
func Classify(o models.Order) Classification {
	r := readiness(o.Items)
	return Classification{
		Bucket:        bucket(o),
		DisplayStatus: display(o.Status, r),
		Readiness:     r,
	}
}

// Counted reports whether the order takes part in revenue statistics.
func Counted(o models.Order) bool {
	return o.Total > 0
}

func bucket(o models.Order) Bucket {
	switch {
	case !Counted(o):
		return Excluded
	case o.Status == models.StatusSettled:
		return Secured
	default:
		return AtRisk
	}
}

func readiness(items []models.OrderItem) Readiness {
	r := Readiness{Total: len(items)}
	for _, it := range items {
		switch it.Status {
		case models.ItemReady:
			r.Ready++
		case models.ItemServed:
			r.Served++
		default:
			r.Pending++
		}
	}
	return r
}

func display(s models.OrderStatus, r Readiness) string {
	switch s {
	case models.StatusSettled:
		return DisplaySettled
	case models.StatusBillRequested:
		return DisplayBillRequested
	case models.StatusServed:
		return DisplayServed
	case models.StatusPaymentPending:
		return DisplayAwaitingPayment
	}

	switch {
	case r.Total > 0 && r.Served == r.Total:
		return DisplayServed
	case r.Ready > 0:
		return DisplayReadyToServe
	case r.Served > 0:
		return DisplayPreparing
	default:
		return DisplayReceived
	}
}

// DiffReadiness returns the indices of items that are ready in curr but were
// not ready in prev. Items are matched by position, so the comparison is only
// meaningful while the source keeps item order stable.
func DiffReadiness(prev, curr models.Order) []int {
	n := min(len(prev.Items), len(curr.Items))
	var out []int
	for i := 0; i < n; i++ {
		if curr.Items[i].Status == models.ItemReady && prev.Items[i].Status != models.ItemReady {
			out = append(out, i)
		}
	}
	return out
}

// CanRequestBill reports whether the customer may ask for the check.
func CanRequestBill(o models.Order) error {
	if o.Payment.Method != models.MethodCash || o.Status != models.StatusServed {
		return ErrInvalidTransition
	}
	return nil
}

// CanConfirmPayment reports whether a payment confirmation applies to o.
// A settled order yields (true, nil): the confirmation is a no-op.
func CanConfirmPayment(o models.Order) (alreadySettled bool, err error) {
	switch o.Status {
	case models.StatusSettled:
		return true, nil
	case models.StatusPaymentPending, models.StatusBillRequested:
		return false, nil
	default:
		return false, ErrInvalidTransition
	}
}

// ConfirmableFrom lists the statuses a payment confirmation settles.
func ConfirmableFrom() []models.OrderStatus {
	return []models.OrderStatus{models.StatusPaymentPending, models.StatusBillRequested}
}
