package handle

import "net/http"

func Register(mux *http.ServeMux, carts *CartHandler, orders *OrderHandler) {
	mux.Handle("GET /menu", orders.Menu())
	mux.Handle("GET /orders", orders.List())
	mux.Handle("POST /orders/{order_id}/bill-request", orders.RequestBill())

	mux.Handle("GET /carts/{session_id}", carts.Get())
	mux.Handle("POST /carts/{session_id}/items", carts.AddItem())
	mux.Handle("DELETE /carts/{session_id}", carts.Clear())
	mux.Handle("POST /carts/{session_id}/checkout", carts.Checkout())
}
