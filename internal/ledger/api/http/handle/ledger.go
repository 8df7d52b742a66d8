package handle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"table-order/internal/ledger/app/core"
	"table-order/internal/ledger/app/services"
	"table-order/internal/xpkg/logger"
	"table-order/internal/xpkg/models"
)

type LedgerHandler struct {
	ledgerService *services.LedgerService
	mylog         logger.Logger
}

func NewLedgerHandler(ledgerService *services.LedgerService, mylog logger.Logger) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService, mylog: mylog}
}

func Register(mux *http.ServeMux, lh *LedgerHandler) {
	mux.Handle("GET /stats", lh.Stats())
	mux.Handle("GET /ledger", lh.Ledger())
	mux.Handle("GET /analytics", lh.Analytics())
	mux.Handle("POST /orders/{order_id}/settle", lh.Settle())
	mux.Handle("POST /orders/{order_id}/force-settle", lh.ForceSettle())
	mux.Handle("POST /payments/confirm", lh.ConfirmPayment())
}

func (lh *LedgerHandler) Stats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, lh.ledgerService.Report().Stats)
	}
}

func (lh *LedgerHandler) Ledger() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, lh.ledgerService.Ledger())
	}
}

func (lh *LedgerHandler) Analytics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep := lh.ledgerService.Report()
		jsonResponse(w, http.StatusOK, map[string]any{
			"revenue_by_day": rep.RevenueByDay,
			"popular_items":  rep.PopularItems,
		})
	}
}

func (lh *LedgerHandler) Settle() http.HandlerFunc {
	return lh.transition("settle_failed", func(ctx context.Context, r *http.Request) (models.Order, error) {
		return lh.ledgerService.Settle(ctx, r.PathValue("order_id"))
	})
}

func (lh *LedgerHandler) ForceSettle() http.HandlerFunc {
	return lh.transition("force_settle_failed", func(ctx context.Context, r *http.Request) (models.Order, error) {
		var req struct {
			Confirm bool `json:"confirm"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return models.Order{}, errBadJSON
		}
		return lh.ledgerService.ForceSettle(ctx, r.PathValue("order_id"), req.Confirm)
	})
}

func (lh *LedgerHandler) ConfirmPayment() http.HandlerFunc {
	return lh.transition("payment_confirm_failed", func(ctx context.Context, r *http.Request) (models.Order, error) {
		var req struct {
			TransactionID string `json:"transaction_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return models.Order{}, errBadJSON
		}
		return lh.ledgerService.ConfirmByTransaction(ctx, req.TransactionID)
	})
}

var errBadJSON = errors.New("failed to parse JSON")

func (lh *LedgerHandler) transition(action string, fn func(context.Context, *http.Request) (models.Order, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), core.WaitTime*time.Second)
		defer cancel()

		o, err := fn(ctx, r)
		if err != nil {
			if errors.Is(err, errBadJSON) {
				jsonError(w, http.StatusBadRequest, err)
				return
			}
			code := statusCode(err)
			if code >= http.StatusInternalServerError {
				lh.mylog.Action(action).Error("Failed to change order", err)
			}
			jsonError(w, code, err)
			return
		}
		jsonResponse(w, http.StatusOK, o)
	}
}
