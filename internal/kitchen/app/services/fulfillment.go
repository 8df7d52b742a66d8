package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"table-order/internal/kitchen/app/core"
	"table-order/internal/xpkg/apperr"
	"table-order/internal/xpkg/logger"
	"table-order/internal/xpkg/models"
)

// Fulfillment cooks the items of placed orders one at a time, serves them
// together and then marks the order served.
type Fulfillment struct {
	repo   core.IOrderRepo
	mb     core.IRabbitMQ
	worker string
	cook   time.Duration
	serve  time.Duration
	mylog  logger.Logger
}

func NewFulfillment(repo core.IOrderRepo, mb core.IRabbitMQ, params *core.WorkerParams, mylog logger.Logger) *Fulfillment {
	return &Fulfillment{
		repo:   repo,
		mb:     mb,
		worker: params.WorkerName,
		cook:   params.CookTime,
		serve:  params.ServeTime,
		mylog:  mylog,
	}
}

// HandleMessage processes one kitchen message. requeue tells the consumer
// whether a failed message is worth delivering again.
func (f *Fulfillment) HandleMessage(ctx context.Context, body []byte) (requeue bool, err error) {
	var msg models.OrderPlaced
	if err := json.Unmarshal(body, &msg); err != nil {
		return false, fmt.Errorf("unmarshal message: %w", err)
	}
	if msg.OrderID == "" {
		return false, errors.New("message without order id")
	}

	if err := f.Prepare(ctx, msg.OrderID); err != nil {
		if errors.Is(err, apperr.ErrOrderNotFound) {
			return false, err
		}
		return true, err
	}
	return false, nil
}

// Prepare advances the items of an order from pending to ready to served.
// Items already ready or served are not cooked again, so a redelivered
// message resumes where the previous attempt stopped. Payment status does
// not gate cooking; only an order whose items are all served is skipped.
func (f *Fulfillment) Prepare(ctx context.Context, orderID string) error {
	mylog := f.mylog.Action("prepare_order").With("order_id", orderID)

	o, err := f.repo.GetOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", orderID, err)
	}
	if allServed(o.Items) {
		mylog.Warn("Order already served, skipping", "status", o.Status)
		return nil
	}
	mylog.Info("Cooking started", "items", len(o.Items))

	for i, it := range o.Items {
		if it.Status != models.ItemPending {
			continue
		}
		if err := sleep(ctx, f.cook); err != nil {
			return err
		}
		if err := f.repo.SetItemStatus(ctx, o.ID, i, models.ItemReady, f.worker); err != nil {
			return fmt.Errorf("mark item %d ready: %w", i, err)
		}
		mylog.Debug("Item ready", "position", i, "name", it.Name)
		f.changed(ctx, o.ID, "item_ready")
	}

	if err := sleep(ctx, f.serve); err != nil {
		return err
	}
	for i, it := range o.Items {
		if it.Status == models.ItemServed {
			continue
		}
		if err := f.repo.SetItemStatus(ctx, o.ID, i, models.ItemServed, f.worker); err != nil {
			return fmt.Errorf("mark item %d served: %w", i, err)
		}
	}

	_, err = f.repo.UpdateOrderStatus(ctx, o.ID, models.StatusServed, f.worker, models.StatusPending)
	switch {
	case errors.Is(err, apperr.ErrStatusConflict):
		// Unpaid or already settled orders keep their status.
		mylog.Debug("Items served, order status kept", "status", o.Status)
	case err != nil:
		return fmt.Errorf("mark order served: %w", err)
	default:
		mylog.Info("Order served")
	}
	f.changed(ctx, o.ID, "served")
	return nil
}

func (f *Fulfillment) changed(ctx context.Context, orderID, kind string) {
	ev := models.ChangeEvent{Collection: models.CollectionOrders, OrderID: orderID, Kind: kind, At: time.Now()}
	if err := f.mb.PushChange(ctx, ev); err != nil {
		f.mylog.Action("change_publish").Error("Failed to publish change", err, "order_id", orderID)
	}
}

func allServed(items []models.OrderItem) bool {
	for _, it := range items {
		if it.Status != models.ItemServed {
			return false
		}
	}
	return true
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
