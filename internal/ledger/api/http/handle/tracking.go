package handle

import (
	"context"
	"net/http"
	"time"

	"table-order/internal/ledger/app/core"
	"table-order/internal/ledger/app/services"
	"table-order/internal/xpkg/logger"
)

type TrackingHandler struct {
	trackingService *services.TrackingService
	mylog           logger.Logger
}

func NewTrackingHandler(trackingService *services.TrackingService, mylog logger.Logger) *TrackingHandler {
	return &TrackingHandler{trackingService: trackingService, mylog: mylog}
}

func RegisterTracking(mux *http.ServeMux, th *TrackingHandler) {
	mux.Handle("GET /orders/{order_id}/history", th.History())
	mux.Handle("GET /workers", th.Workers())
}

func (th *TrackingHandler) History() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), core.WaitTime*time.Second)
		defer cancel()

		logs, err := th.trackingService.History(ctx, r.PathValue("order_id"))
		if err != nil {
			jsonError(w, statusCode(err), err)
			return
		}

		type entry struct {
			Status    string `json:"status"`
			Timestamp string `json:"timestamp"`
			ChangedBy string `json:"changed_by"`
			Note      string `json:"note,omitempty"`
		}
		history := make([]entry, 0, len(logs))
		for _, l := range logs {
			history = append(history, entry{
				Status:    string(l.Status),
				Timestamp: l.ChangedAt.UTC().Format(time.RFC3339),
				ChangedBy: l.ChangedBy,
				Note:      l.Note,
			})
		}
		jsonResponse(w, http.StatusOK, history)
	}
}

func (th *TrackingHandler) Workers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), core.WaitTime*time.Second)
		defer cancel()

		workers, err := th.trackingService.Workers(ctx)
		if err != nil {
			jsonError(w, statusCode(err), err)
			return
		}
		jsonResponse(w, http.StatusOK, workers)
	}
}
