package handle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"table-order/internal/order/app/core"
	"table-order/internal/order/app/services"
	"table-order/internal/order/domain/dto"
	"table-order/internal/xpkg/logger"
	"table-order/internal/xpkg/models"
)

type CartHandler struct {
	carts        *services.Carts
	checkout     *services.CheckoutEngine
	orderService *services.OrderService
	mylog        logger.Logger
}

func NewCartHandler(carts *services.Carts, checkout *services.CheckoutEngine, orderService *services.OrderService, mylog logger.Logger) *CartHandler {
	return &CartHandler{carts: carts, checkout: checkout, orderService: orderService, mylog: mylog}
}

func cartResponse(session string, cart *services.Cart, catalog models.Catalog) dto.CartResponse {
	resp := dto.CartResponse{SessionID: session, Items: []dto.CartLine{}}
	for _, e := range cart.Entries() {
		line := dto.CartLine{ItemID: e.ItemID, Qty: e.Qty}
		if it, ok := catalog.Lookup(e.ItemID); ok {
			line.Name = it.Name
			line.Price = it.Price
			line.Subtotal = it.Price * int64(e.Qty)
		}
		resp.Items = append(resp.Items, line)
	}
	resp.Total = cart.Total(catalog)
	return resp
}

func (ch *CartHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := r.PathValue("session_id")
		catalog, err := ch.orderService.Catalog(r.Context())
		if err != nil {
			jsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, cartResponse(session, ch.carts.Get(session), catalog))
	}
}

// AddItem applies a quantity delta. A stock warning answers 409 with the
// unchanged cart.
func (ch *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.CartItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ItemID == "" {
			badJSON(w)
			return
		}

		session := r.PathValue("session_id")
		catalog, err := ch.orderService.Catalog(r.Context())
		if err != nil {
			jsonError(w, err)
			return
		}
		cart := ch.carts.Get(session)

		if err := cart.Add(catalog, req.ItemID, req.Delta); err != nil {
			var warn *core.StaleCatalogWarning
			if errors.As(err, &warn) {
				resp := cartResponse(session, cart, catalog)
				resp.Warning = warn.Error()
				jsonResponse(w, http.StatusConflict, resp)
				return
			}
			jsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, cartResponse(session, cart, catalog))
	}
}

func (ch *CartHandler) Clear() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ch.carts.Drop(r.PathValue("session_id"))
		w.WriteHeader(http.StatusNoContent)
	}
}

func (ch *CartHandler) Checkout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.CheckoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			ch.mylog.Action("parse_failed").Error("Failed to parse checkout", err)
			badJSON(w)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), core.WaitTime*time.Second)
		defer cancel()

		session := r.PathValue("session_id")
		res, err := ch.checkout.Checkout(ctx, ch.carts.Get(session), core.CheckoutRequest{
			TableID: req.TableID,
			UserID:  req.UserID,
			Method:  req.Method,
		})
		if err != nil {
			jsonError(w, err)
			return
		}
		ch.mylog.Action("checkout_completed").Info("Checkout completed", "session_id", session, "order_id", res.Order.ID)
		jsonResponse(w, http.StatusCreated, res)
	}
}
