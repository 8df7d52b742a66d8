package status

import (
	"errors"
	"reflect"
	"testing"

	"table-order/internal/xpkg/models"
)

func items(statuses ...models.ItemStatus) []models.OrderItem {
	out := make([]models.OrderItem, len(statuses))
	for i, s := range statuses {
		out[i] = models.OrderItem{ItemID: string(rune('a' + i)), Name: "item-" + string(rune('a'+i)), Qty: 1, Status: s}
	}
	return out
}

func TestClassifyBucket(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		order models.Order
		want  Bucket
	}{
		{name: "settled", order: models.Order{Total: 100, Status: models.StatusSettled}, want: Secured},
		{name: "pending", order: models.Order{Total: 200, Status: models.StatusPending}, want: AtRisk},
		{name: "payment_pending", order: models.Order{Total: 200, Status: models.StatusPaymentPending}, want: AtRisk},
		{name: "bill_requested", order: models.Order{Total: 200, Status: models.StatusBillRequested}, want: AtRisk},
		{name: "served", order: models.Order{Total: 200, Status: models.StatusServed}, want: AtRisk},
		{name: "pending_zero_total", order: models.Order{Total: 0, Status: models.StatusPending}, want: Excluded},
		{name: "settled_zero_total", order: models.Order{Total: 0, Status: models.StatusSettled}, want: Excluded},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Classify(tt.order).Bucket; got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestClassifyDisplayStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status models.OrderStatus
		items  []models.OrderItem
		want   string
	}{
		{name: "settled", status: models.StatusSettled, items: items(models.ItemPending), want: DisplaySettled},
		{name: "bill", status: models.StatusBillRequested, want: DisplayBillRequested},
		{name: "served", status: models.StatusServed, want: DisplayServed},
		{name: "awaiting_payment", status: models.StatusPaymentPending, items: items(models.ItemReady), want: DisplayAwaitingPayment},
		{name: "received", status: models.StatusPending, items: items(models.ItemPending, models.ItemPending), want: DisplayReceived},
		{name: "ready", status: models.StatusPending, items: items(models.ItemReady, models.ItemPending), want: DisplayReadyToServe},
		{name: "preparing", status: models.StatusPending, items: items(models.ItemServed, models.ItemPending), want: DisplayPreparing},
		{name: "all_served", status: models.StatusPending, items: items(models.ItemServed, models.ItemServed), want: DisplayServed},
		{name: "no_items", status: models.StatusPending, want: DisplayReceived},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Classify(models.Order{Total: 10, Status: tt.status, Items: tt.items})
			if got.DisplayStatus != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got.DisplayStatus)
			}
		})
	}
}

func TestClassifyReadiness(t *testing.T) {
	t.Parallel()

	got := Classify(models.Order{Items: items(models.ItemPending, models.ItemReady, models.ItemServed, models.ItemReady)}).Readiness
	want := Readiness{Total: 4, Pending: 1, Ready: 2, Served: 1}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestDiffReadiness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		prev []models.OrderItem
		curr []models.OrderItem
		want []int
	}{
		{
			name: "first_becomes_ready",
			prev: items(models.ItemPending, models.ItemPending),
			curr: items(models.ItemReady, models.ItemPending),
			want: []int{0},
		},
		{
			name: "already_ready_is_not_reported",
			prev: items(models.ItemReady, models.ItemPending),
			curr: items(models.ItemReady, models.ItemReady),
			want: []int{1},
		},
		{
			name: "served_is_not_ready",
			prev: items(models.ItemReady),
			curr: items(models.ItemServed),
			want: nil,
		},
		{
			name: "length_mismatch_compares_common_prefix",
			prev: items(models.ItemPending),
			curr: items(models.ItemReady, models.ItemReady),
			want: []int{0},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := DiffReadiness(models.Order{Items: tt.prev}, models.Order{Items: tt.curr})
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCanRequestBill(t *testing.T) {
	t.Parallel()

	cash := models.Payment{Method: models.MethodCash}
	upi := models.Payment{Method: models.MethodUPI}

	if err := CanRequestBill(models.Order{Status: models.StatusServed, Payment: cash}); err != nil {
		t.Fatalf("served cash order: unexpected %v", err)
	}
	for _, o := range []models.Order{
		{Status: models.StatusPending, Payment: cash},
		{Status: models.StatusServed, Payment: upi},
		{Status: models.StatusSettled, Payment: cash},
	} {
		if err := CanRequestBill(o); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("%s/%s: expected ErrInvalidTransition, got %v", o.Status, o.Payment.Method, err)
		}
	}
}

func TestCanConfirmPayment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status  models.OrderStatus
		settled bool
		err     error
	}{
		{status: models.StatusPaymentPending},
		{status: models.StatusBillRequested},
		{status: models.StatusSettled, settled: true},
		{status: models.StatusPending, err: ErrInvalidTransition},
		{status: models.StatusServed, err: ErrInvalidTransition},
	}

	for _, tt := range tests {
		settled, err := CanConfirmPayment(models.Order{Status: tt.status})
		if settled != tt.settled || !errors.Is(err, tt.err) {
			t.Fatalf("%s: expected (%v, %v), got (%v, %v)", tt.status, tt.settled, tt.err, settled, err)
		}
	}
}
