package services

import (
	"errors"
	"math"
	"testing"

	"table-order/internal/order/app/core"
	"table-order/internal/xpkg/models"
)

func testCatalog() models.Catalog {
	return models.NewCatalog([]models.MenuItem{
		{ID: "a", Name: "Masala Dosa", Price: 100, Stock: 5},
		{ID: "b", Name: "Paneer Tikka", Price: 250, Stock: 1},
	})
}

func TestCartAdd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		steps   []CartEntry
		wantErr error
		want    []CartEntry
	}{
		{
			name:  "adds in insertion order",
			steps: []CartEntry{{"b", 1}, {"a", 2}},
			want:  []CartEntry{{"b", 1}, {"a", 2}},
		},
		{
			name:    "over stock is rejected without mutation",
			steps:   []CartEntry{{"b", 1}, {"b", 1}},
			wantErr: core.ErrStaleCatalog,
			want:    []CartEntry{{"b", 1}},
		},
		{
			name:  "zero removes the entry",
			steps: []CartEntry{{"a", 2}, {"b", 1}, {"a", -2}},
			want:  []CartEntry{{"b", 1}},
		},
		{
			name:  "negative result removes the entry",
			steps: []CartEntry{{"a", 1}, {"a", -5}},
			want:  []CartEntry{},
		},
		{
			name:    "unknown item is out of stock",
			steps:   []CartEntry{{"zzz", 1}},
			wantErr: core.ErrStaleCatalog,
			want:    []CartEntry{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cart := NewCart()
			var err error
			for _, s := range tt.steps {
				err = cart.Add(testCatalog(), s.ItemID, s.Qty)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := cart.Entries()
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("entry %d: expected %v, got %v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestCartDecrementAllowedAboveShrunkStock(t *testing.T) {
	t.Parallel()

	cart := NewCart()
	if err := cart.Add(testCatalog(), "a", 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	shrunk := models.NewCatalog([]models.MenuItem{{ID: "a", Price: 100, Stock: 1}})
	if err := cart.Add(shrunk, "a", -1); err != nil {
		t.Fatalf("decrement must not be rejected: %v", err)
	}
	if q := cart.Quantity("a"); q != 3 {
		t.Fatalf("expected 3, got %d", q)
	}
}

func TestCartHugeDeltaIsStale(t *testing.T) {
	t.Parallel()

	cart := NewCart()
	if err := cart.Add(testCatalog(), "a", 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := cart.Add(testCatalog(), "a", math.MaxInt)
	var warn *core.StaleCatalogWarning
	if !errors.As(err, &warn) {
		t.Fatalf("expected StaleCatalogWarning, got %v", err)
	}
	if warn.Requested != math.MaxInt || warn.Available != 5 {
		t.Fatalf("unexpected warning %+v", warn)
	}
	if q := cart.Quantity("a"); q != 2 {
		t.Fatalf("cart must be unchanged, got %d", q)
	}
}

func TestCartSubtractKeepsLaterAdditions(t *testing.T) {
	t.Parallel()

	cart := NewCart()
	_ = cart.Add(testCatalog(), "a", 2)
	ordered := cart.Entries()
	_ = cart.Add(testCatalog(), "a", 1)
	_ = cart.Add(testCatalog(), "b", 1)

	cart.Subtract(ordered)
	if q := cart.Quantity("a"); q != 1 {
		t.Fatalf("expected 1 dosa left, got %d", q)
	}
	if q := cart.Quantity("b"); q != 1 {
		t.Fatalf("expected tikka kept, got %d", q)
	}
}

func TestCartTotalIgnoresMissingItems(t *testing.T) {
	t.Parallel()

	cart := NewCart()
	_ = cart.Add(testCatalog(), "a", 2)
	_ = cart.Add(testCatalog(), "b", 1)

	if got := cart.Total(testCatalog()); got != 450 {
		t.Fatalf("expected 450, got %d", got)
	}

	withoutB := models.NewCatalog([]models.MenuItem{{ID: "a", Price: 100, Stock: 5}})
	if got := cart.Total(withoutB); got != 200 {
		t.Fatalf("expected 200, got %d", got)
	}
}

func TestCartsRegistry(t *testing.T) {
	t.Parallel()

	cs := NewCarts()
	c := cs.Get("s1")
	_ = c.Add(testCatalog(), "a", 1)
	if cs.Get("s1").Len() != 1 {
		t.Fatal("expected the same cart for the same session")
	}
	if cs.Get("s2").Len() != 0 {
		t.Fatal("sessions must not share carts")
	}
	cs.Drop("s1")
	if cs.Get("s1").Len() != 0 {
		t.Fatal("expected a fresh cart after drop")
	}
}
