package handle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"table-order/internal/order/app/services"
	"table-order/internal/order/domain/dto"
	"table-order/internal/xpkg/logger"
	"table-order/internal/xpkg/memstore"
	"table-order/internal/xpkg/models"
)

type nopBroker struct{}

func (nopBroker) PushOrderPlaced(context.Context, models.OrderPlaced) error { return nil }
func (nopBroker) PushChange(context.Context, models.ChangeEvent) error      { return nil }

type instantPayments struct{}

func (instantPayments) Initiate(_ context.Context, o models.Order) (string, error) {
	return "upi://pay?tr=" + o.Payment.TransactionID, nil
}

func newTestMux(t *testing.T) (*http.ServeMux, *memstore.Store) {
	t.Helper()

	store := memstore.New([]models.MenuItem{
		{ID: "a", Name: "Masala Dosa", Price: 100, Stock: 5},
		{ID: "b", Name: "Paneer Tikka", Price: 250, Stock: 1},
	})
	log := logger.Nop()
	orderService := services.NewOrderService(store, nopBroker{}, log)
	engine := services.NewCheckoutEngine(store, nopBroker{}, instantPayments{}, time.Second, log)

	mux := http.NewServeMux()
	Register(mux,
		NewCartHandler(services.NewCarts(), engine, orderService, log),
		NewOrderHandler(orderService, log),
	)
	return mux, store
}

func do(t *testing.T, mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestCartFlow(t *testing.T) {
	t.Parallel()

	mux, store := newTestMux(t)

	rec := do(t, mux, http.MethodPost, "/carts/s1/items", `{"item_id":"a","delta":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	_ = do(t, mux, http.MethodPost, "/carts/s1/items", `{"item_id":"b","delta":1}`)

	rec = do(t, mux, http.MethodPost, "/carts/s1/items", `{"item_id":"b","delta":1}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for over-stock, got %d", rec.Code)
	}
	var cart dto.CartResponse
	if err := json.NewDecoder(rec.Body).Decode(&cart); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if cart.Warning == "" || cart.Total != 450 {
		t.Fatalf("expected warning and unchanged total 450, got %+v", cart)
	}

	rec = do(t, mux, http.MethodPost, "/carts/s1/checkout", `{"table_id":"4","user_id":"guest-1","method":"CASH"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}
	var res services.CheckoutResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode checkout: %v", err)
	}
	if res.Order.Total != 450 || res.Order.Status != models.StatusPending {
		t.Fatalf("unexpected order %+v", res.Order)
	}

	rec = do(t, mux, http.MethodGet, "/carts/s1", "")
	if err := json.NewDecoder(rec.Body).Decode(&cart); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart after checkout, got %+v", cart.Items)
	}

	rec = do(t, mux, http.MethodGet, "/orders?user_id=guest-1", "")
	var views []services.OrderView
	if err := json.NewDecoder(rec.Body).Decode(&views); err != nil {
		t.Fatalf("decode orders: %v", err)
	}
	if len(views) != 1 || views[0].DisplayStatus != "RECEIVED" {
		t.Fatalf("unexpected orders %+v", views)
	}

	if orders, _ := store.ListOrders(context.Background()); len(orders) != 1 {
		t.Fatalf("expected one stored order, got %d", len(orders))
	}
}

func TestErrorStatusCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"empty cart checkout", http.MethodPost, "/carts/empty/checkout", `{"table_id":"1","user_id":"u","method":"CASH"}`, http.StatusConflict},
		{"bad method", http.MethodPost, "/carts/x/checkout", `{"table_id":"1","user_id":"u","method":"CARD"}`, http.StatusBadRequest},
		{"bad json", http.MethodPost, "/carts/x/checkout", `{`, http.StatusBadRequest},
		{"orders without user", http.MethodGet, "/orders", "", http.StatusBadRequest},
		{"bill for unknown order", http.MethodPost, "/orders/nope/bill-request", `{"user_id":"u"}`, http.StatusNotFound},
		{"clear cart", http.MethodDelete, "/carts/x", "", http.StatusNoContent},
		{"menu", http.MethodGet, "/menu", "", http.StatusOK},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mux, _ := newTestMux(t)
			if rec := do(t, mux, tt.method, tt.path, tt.body); rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body)
			}
		})
	}
}

func TestUPICheckoutReturnsRedirect(t *testing.T) {
	t.Parallel()

	mux, _ := newTestMux(t)
	_ = do(t, mux, http.MethodPost, "/carts/s9/items", `{"item_id":"a","delta":1}`)
	rec := do(t, mux, http.MethodPost, "/carts/s9/checkout", `{"table_id":"9","user_id":"guest-9","method":"UPI"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}
	var res services.CheckoutResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Prompt.Kind != models.PromptUPIRedirect || !strings.HasPrefix(res.Prompt.URI, "upi://pay") {
		t.Fatalf("unexpected prompt %+v", res.Prompt)
	}
	if res.Order.Status != models.StatusPaymentPending {
		t.Fatalf("expected payment_pending, got %s", res.Order.Status)
	}
}
