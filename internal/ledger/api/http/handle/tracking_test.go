package handle

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"table-order/internal/ledger/app/services"
	"table-order/internal/xpkg/apperr"
	"table-order/internal/xpkg/logger"
	"table-order/internal/xpkg/models"
)

type stubTracking struct{}

func (stubTracking) History(_ context.Context, id string) ([]models.StatusLog, error) {
	if id != "o1" {
		return nil, apperr.ErrOrderNotFound
	}
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	return []models.StatusLog{
		{OrderID: "o1", Status: models.StatusPending, ChangedBy: "checkout", ChangedAt: at},
		{OrderID: "o1", Status: models.StatusServed, ChangedBy: "chef", ChangedAt: at.Add(time.Minute)},
	}, nil
}

func (stubTracking) Workers(context.Context) ([]models.Worker, error) {
	return []models.Worker{{Name: "chef", Status: "offline"}}, nil
}

func TestTrackingRoutes(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	RegisterTracking(mux, NewTrackingHandler(services.NewTrackingService(stubTracking{}, logger.Nop()), logger.Nop()))

	rec := serve(mux, http.MethodGet, "/orders/o1/history", "")
	var history []struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
		ChangedBy string `json:"changed_by"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&history); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(history) != 2 || history[1].ChangedBy != "chef" || history[0].Timestamp != "2026-03-10T12:00:00Z" {
		t.Fatalf("unexpected history %+v", history)
	}

	if rec := serve(mux, http.MethodGet, "/orders/missing/history", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = serve(mux, http.MethodGet, "/workers", "")
	var workers []services.WorkerView
	if err := json.NewDecoder(rec.Body).Decode(&workers); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(workers) != 1 || workers[0].Name != "chef" || workers[0].Responsive {
		t.Fatalf("unexpected workers %+v", workers)
	}
}
