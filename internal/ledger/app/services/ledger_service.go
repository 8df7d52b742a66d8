package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"table-order/internal/ledger/app/core"
	"table-order/internal/xpkg/apperr"
	"table-order/internal/xpkg/logger"
	"table-order/internal/xpkg/models"
	"table-order/internal/xpkg/status"
)

// LedgerService serves revenue views from the latest feed snapshot and
// settles orders.
type LedgerService struct {
	repo     core.ILedgerRepo
	mb       core.IRabbitMQ
	loc      *time.Location
	mylog    logger.Logger
	snapshot atomic.Pointer[models.Snapshot]
	onChange func()
}

func NewLedgerService(repo core.ILedgerRepo, mb core.IRabbitMQ, loc *time.Location, mylog logger.Logger) *LedgerService {
	s := &LedgerService{repo: repo, mb: mb, loc: loc, mylog: mylog, onChange: func() {}}
	s.snapshot.Store(&models.Snapshot{})
	return s
}

// OnChange registers a callback run after every successful write, typically
// a feed kick so the views catch up without waiting for the broker.
func (ls *LedgerService) OnChange(fn func()) {
	ls.onChange = fn
}

// Apply replaces the working snapshot.
func (ls *LedgerService) Apply(snap models.Snapshot) {
	ls.snapshot.Store(&snap)
}

func (ls *LedgerService) Snapshot() models.Snapshot {
	return *ls.snapshot.Load()
}

func (ls *LedgerService) Report() Report {
	return Aggregate(ls.Snapshot().Orders, ls.loc)
}

func (ls *LedgerService) Ledger() []LedgerRow {
	return Ledger(ls.Snapshot().Orders)
}

// Settle confirms payment of an awaiting order. Confirming a settled order
// changes nothing.
func (ls *LedgerService) Settle(ctx context.Context, orderID string) (models.Order, error) {
	o, err := ls.repo.GetOrder(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	return ls.confirm(ctx, o)
}

// ConfirmByTransaction is Settle keyed by the payment reference, as a
// payment provider callback reports it.
func (ls *LedgerService) ConfirmByTransaction(ctx context.Context, txID string) (models.Order, error) {
	if txID == "" {
		return models.Order{}, fmt.Errorf("transaction id is empty: %w", apperr.ErrOrderNotFound)
	}
	o, err := ls.repo.GetOrderByTransaction(ctx, txID)
	if err != nil {
		return models.Order{}, err
	}
	return ls.confirm(ctx, o)
}

func (ls *LedgerService) confirm(ctx context.Context, o models.Order) (models.Order, error) {
	mylog := ls.mylog.Action("payment_confirm").With("order_id", o.ID, "transaction_id", o.Payment.TransactionID)

	settled, err := status.CanConfirmPayment(o)
	if err != nil {
		return models.Order{}, fmt.Errorf("order %s is %s: %w", o.ID, o.Status, err)
	}
	if settled {
		mylog.Debug("Order already settled")
		return o, nil
	}

	updated, err := ls.repo.UpdateOrderStatus(ctx, o.ID, models.StatusSettled, core.ServiceName, status.ConfirmableFrom()...)
	if err != nil {
		if errors.Is(err, apperr.ErrStatusConflict) {
			return models.Order{}, fmt.Errorf("%w: %v", status.ErrInvalidTransition, err)
		}
		mylog.Error("Failed to settle order", err)
		return models.Order{}, err
	}
	mylog.Info("Payment confirmed", "amount", updated.Total)
	ls.changed(ctx, updated.ID, "settled")
	return updated, nil
}

// ForceSettle settles an order whatever its status. It refuses to act unless
// confirm is set and is idempotent.
func (ls *LedgerService) ForceSettle(ctx context.Context, orderID string, confirm bool) (models.Order, error) {
	mylog := ls.mylog.Action("force_settle").With("order_id", orderID)
	if !confirm {
		return models.Order{}, status.ErrConfirmationRequired
	}

	before, err := ls.repo.GetOrder(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	updated, err := ls.repo.UpdateOrderStatus(ctx, orderID, models.StatusSettled, core.ServiceName)
	if err != nil {
		mylog.Error("Failed to force settle order", err)
		return models.Order{}, err
	}
	if before.Status != models.StatusSettled {
		mylog.Warn("Order force settled", "previous_status", before.Status, "amount", updated.Total)
		ls.changed(ctx, orderID, "force_settled")
	}
	return updated, nil
}

func (ls *LedgerService) changed(ctx context.Context, orderID, kind string) {
	ev := models.ChangeEvent{Collection: models.CollectionOrders, OrderID: orderID, Kind: kind, At: time.Now()}
	if err := ls.mb.PushChange(ctx, ev); err != nil {
		ls.mylog.Action("change_publish").Error("Failed to publish change", err, "order_id", orderID)
	}
	ls.onChange()
}
