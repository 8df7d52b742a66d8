package handle

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"table-order/internal/order/app/core"
	"table-order/internal/order/app/services"
	"table-order/internal/order/domain/dto"
	"table-order/internal/xpkg/logger"
)

type OrderHandler struct {
	orderService *services.OrderService
	mylog        logger.Logger
}

func NewOrderHandler(orderService *services.OrderService, mylog logger.Logger) *OrderHandler {
	return &OrderHandler{orderService: orderService, mylog: mylog}
}

func (oh *OrderHandler) Menu() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalog, err := oh.orderService.Catalog(r.Context())
		if err != nil {
			oh.mylog.Action("menu_failed").Error("Failed to load menu", err)
			jsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, catalog.Items())
	}
}

func (oh *OrderHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := oh.orderService.ListForUser(r.Context(), r.URL.Query().Get("user_id"))
		if err != nil {
			jsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, views)
	}
}

func (oh *OrderHandler) RequestBill() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.BillRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badJSON(w)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), core.WaitTime*time.Second)
		defer cancel()

		v, err := oh.orderService.RequestBill(ctx, r.PathValue("order_id"), req.UserID)
		if err != nil {
			jsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, v)
	}
}
