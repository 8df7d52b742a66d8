package core

import (
	"errors"
	"fmt"
	"testing"

	"table-order/internal/xpkg/apperr"
)

func TestTypedErrorsMatchSentinelsAndKinds(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	tests := []struct {
		name     string
		err      error
		sentinel error
		kind     string
	}{
		{"invalid cart", &InvalidCartError{Reason: "empty", Dropped: []string{"b"}}, ErrInvalidCart, "invalid_cart"},
		{"sync", &CheckoutSyncError{Err: cause}, ErrCheckoutSync, "checkout_sync"},
		{"stale", &StaleCatalogWarning{ItemID: "a", Requested: 3, Available: 2}, ErrStaleCatalog, "stale_catalog"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			wrapped := fmt.Errorf("checkout: %w", tt.err)
			if !errors.Is(wrapped, tt.sentinel) {
				t.Fatalf("expected errors.Is to match %v", tt.sentinel)
			}
			if got := apperr.Kind(wrapped); got != tt.kind {
				t.Fatalf("expected kind %q, got %q", tt.kind, got)
			}
		})
	}

	if !errors.Is(&CheckoutSyncError{Err: cause}, cause) {
		t.Fatal("sync error must unwrap to its cause")
	}
}

func TestCheckoutRequestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		req   CheckoutRequest
		field string
	}{
		{"ok", CheckoutRequest{TableID: "4", UserID: "u", Method: "CASH"}, ""},
		{"no table", CheckoutRequest{UserID: "u", Method: "CASH"}, "table_id"},
		{"no user", CheckoutRequest{TableID: "4", Method: "UPI"}, "user_id"},
		{"bad method", CheckoutRequest{TableID: "4", UserID: "u", Method: "CARD"}, "method"},
	}
	for _, tt := range tests {
		err := tt.req.Validate()
		if tt.field == "" {
			if err != nil {
				t.Fatalf("%s: unexpected error %v", tt.name, err)
			}
			continue
		}
		var re *RequestError
		if !errors.As(err, &re) || re.Field != tt.field {
			t.Fatalf("%s: expected request error on %s, got %v", tt.name, tt.field, err)
		}
	}
}
