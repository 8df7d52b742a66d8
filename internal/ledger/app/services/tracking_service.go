package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"table-order/internal/ledger/app/core"
	"table-order/internal/xpkg/apperr"
	"table-order/internal/xpkg/logger"
	"table-order/internal/xpkg/models"
)

type WorkerView struct {
	models.Worker
	Responsive bool `json:"responsive"`
}

type TrackingService struct {
	repo  core.ITrackingRepo
	now   func() time.Time
	mylog logger.Logger
}

func NewTrackingService(repo core.ITrackingRepo, mylog logger.Logger) *TrackingService {
	return &TrackingService{
		repo:  repo,
		now:   time.Now,
		mylog: mylog,
	}
}

func (ts *TrackingService) History(ctx context.Context, orderID string) ([]models.StatusLog, error) {
	mylog := ts.mylog.Action("get_history")

	logs, err := ts.repo.History(ctx, orderID)
	if err != nil {
		if errors.Is(err, apperr.ErrOrderNotFound) {
			return nil, err
		}
		mylog.Error("Failed to get history", err, "order_id", orderID)
		return nil, fmt.Errorf("cannot get history: %w", err)
	}
	return logs, nil
}

// Workers lists every registered kitchen worker. An online worker whose last
// heartbeat is older than the stale window is reported unresponsive.
func (ts *TrackingService) Workers(ctx context.Context) ([]WorkerView, error) {
	mylog := ts.mylog.Action("get_workers")

	workers, err := ts.repo.Workers(ctx)
	if err != nil {
		mylog.Error("Failed to get workers", err)
		return nil, fmt.Errorf("cannot get workers: %w", err)
	}

	now := ts.now()
	out := make([]WorkerView, 0, len(workers))
	for _, w := range workers {
		out = append(out, WorkerView{
			Worker:     w,
			Responsive: w.Responsive(now),
		})
	}
	return out, nil
}
