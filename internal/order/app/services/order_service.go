package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"table-order/internal/order/app/core"
	"table-order/internal/xpkg/apperr"
	"table-order/internal/xpkg/logger"
	"table-order/internal/xpkg/models"
	"table-order/internal/xpkg/status"
)

// OrderView is an order as the customer sees it.
type OrderView struct {
	models.Order
	DisplayStatus string           `json:"display_status"`
	Readiness     status.Readiness `json:"readiness"`
}

type OrderService struct {
	repo  core.IOrderRepo
	mb    core.IRabbitMQ
	mylog logger.Logger
}

func NewOrderService(repo core.IOrderRepo, mb core.IRabbitMQ, mylog logger.Logger) *OrderService {
	return &OrderService{repo: repo, mb: mb, mylog: mylog}
}

func (os *OrderService) Catalog(ctx context.Context) (models.Catalog, error) {
	menu, err := os.repo.ListMenu(ctx)
	if err != nil {
		return models.Catalog{}, fmt.Errorf("load menu: %w", err)
	}
	return models.NewCatalog(menu), nil
}

// SeedMenu upserts items and announces the menu change.
func (os *OrderService) SeedMenu(ctx context.Context, items []models.MenuItem) error {
	if err := os.repo.UpsertMenu(ctx, items); err != nil {
		return fmt.Errorf("seed menu: %w", err)
	}
	os.mylog.Action("menu_seeded").Info("Menu seeded", "items", len(items))
	os.publishChange(ctx, models.ChangeEvent{Collection: models.CollectionMenu, Kind: "seeded"})
	return nil
}

func (os *OrderService) ListForUser(ctx context.Context, userID string) ([]OrderView, error) {
	if userID == "" {
		return nil, &core.RequestError{Field: "user_id", Reason: "is empty"}
	}
	orders, err := os.repo.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, view(o))
	}
	return views, nil
}

func view(o models.Order) OrderView {
	c := status.Classify(o)
	return OrderView{Order: o, DisplayStatus: c.DisplayStatus, Readiness: c.Readiness}
}

// RequestBill moves a served cash order of userID to bill_requested.
func (os *OrderService) RequestBill(ctx context.Context, orderID, userID string) (OrderView, error) {
	mylog := os.mylog.Action("bill_request").With("order_id", orderID)

	if userID == "" {
		return OrderView{}, &core.RequestError{Field: "user_id", Reason: "is empty"}
	}
	o, err := os.repo.GetOrder(ctx, orderID)
	if err != nil {
		return OrderView{}, err
	}
	if o.UserID != userID {
		return OrderView{}, apperr.ErrOrderNotFound
	}
	if err := status.CanRequestBill(o); err != nil {
		return OrderView{}, fmt.Errorf("order %s is %s paid by %s: %w", o.ID, o.Status, o.Payment.Method, err)
	}

	updated, err := os.repo.UpdateOrderStatus(ctx, orderID, models.StatusBillRequested, core.ServiceName, models.StatusServed)
	if err != nil {
		if errors.Is(err, apperr.ErrStatusConflict) {
			return OrderView{}, fmt.Errorf("%w: %v", status.ErrInvalidTransition, err)
		}
		mylog.Error("Failed to request bill", err)
		return OrderView{}, err
	}
	mylog.Info("Bill requested", "table_id", updated.TableID)

	os.publishChange(ctx, models.ChangeEvent{Collection: models.CollectionOrders, OrderID: orderID, Kind: "bill_requested"})
	return view(updated), nil
}

func (os *OrderService) publishChange(ctx context.Context, ev models.ChangeEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	if err := os.mb.PushChange(ctx, ev); err != nil {
		os.mylog.Action("change_publish").Error("Failed to publish change", err, "collection", ev.Collection)
	}
}
