package services

import (
	"context"
	"errors"
	"time"

	"table-order/internal/order/app/core"
	"table-order/internal/xpkg/apperr"
	"table-order/internal/xpkg/logger"
	"table-order/internal/xpkg/models"

	"github.com/google/uuid"
)

type CheckoutResult struct {
	Order   models.Order         `json:"order"`
	Prompt  models.PaymentPrompt `json:"prompt"`
	Dropped []string             `json:"dropped,omitempty"`
}

// CheckoutEngine turns carts into orders.
type CheckoutEngine struct {
	repo        core.IOrderRepo
	mb          core.IRabbitMQ
	payments    core.IPaymentChannel
	confirmWait time.Duration
	mylog       logger.Logger

	now     func() time.Time
	orderID func() string
	txID    func() string
}

func NewCheckoutEngine(
	repo core.IOrderRepo,
	mb core.IRabbitMQ,
	payments core.IPaymentChannel,
	confirmWait time.Duration,
	mylog logger.Logger,
) *CheckoutEngine {
	return &CheckoutEngine{
		repo:        repo,
		mb:          mb,
		payments:    payments,
		confirmWait: confirmWait,
		mylog:       mylog,
		now:         time.Now,
		orderID:     uuid.NewString,
		txID:        NewTransactionID,
	}
}

// NewTransactionID returns a random payment reference.
func NewTransactionID() string {
	return "TXN-" + uuid.NewString()
}

// Checkout validates cart against the current menu and places the order.
//
// Entries whose item vanished or whose stock no longer covers the quantity
// are dropped and reported in the result. A cart with nothing left fails with
// *core.InvalidCartError; a failed write fails with *core.CheckoutSyncError.
// In both cases nothing is stored and the cart is left as it was. On success
// the entries read at the start of checkout are removed from the cart.
func (e *CheckoutEngine) Checkout(ctx context.Context, cart *Cart, req core.CheckoutRequest) (CheckoutResult, error) {
	mylog := e.mylog.Action("checkout").With("table_id", req.TableID, "user_id", req.UserID, "method", req.Method)

	if err := req.Validate(); err != nil {
		return CheckoutResult{}, err
	}

	menu, err := e.repo.ListMenu(ctx)
	if err != nil {
		mylog.Error("Failed to load menu", err)
		return CheckoutResult{}, &core.CheckoutSyncError{Err: err}
	}
	catalog := models.NewCatalog(menu)

	entries := cart.Entries()
	items, total, dropped := revalidate(entries, catalog)
	if len(items) == 0 || total <= 0 {
		mylog.Warn("Cart is not orderable", "dropped", dropped)
		return CheckoutResult{}, &core.InvalidCartError{Reason: "nothing orderable in cart", Dropped: dropped}
	}

	order := models.Order{
		ID:        e.orderID(),
		TableID:   req.TableID,
		UserID:    req.UserID,
		Total:     total,
		Status:    initialStatus(req.Method),
		CreatedAt: e.now(),
		Payment:   models.Payment{TransactionID: e.txID(), Method: req.Method},
		Items:     items,
	}

	if err := e.repo.PlaceOrder(ctx, order); err != nil {
		if errors.Is(err, apperr.ErrInsufficientStock) {
			mylog.Warn("Stock changed during checkout", "order_id", order.ID)
			return CheckoutResult{}, &core.InvalidCartError{Reason: "stock changed during checkout", Dropped: dropped}
		}
		mylog.Error("Failed to place order", err, "order_id", order.ID)
		return CheckoutResult{}, &core.CheckoutSyncError{Err: err}
	}
	mylog.Info("Order placed", "order_id", order.ID, "total", order.Total, "items", len(order.Items))

	e.announce(ctx, order)

	result := CheckoutResult{Order: order, Prompt: models.PaymentPrompt{Kind: models.PromptNone}, Dropped: dropped}
	if req.Method == models.MethodUPI {
		result.Prompt = e.paymentPrompt(ctx, order)
	}

	cart.Subtract(entries)
	return result, nil
}

func initialStatus(m models.PaymentMethod) models.OrderStatus {
	if m == models.MethodCash {
		return models.StatusPending
	}
	return models.StatusPaymentPending
}

// revalidate copies the cart into order items priced from catalog.
func revalidate(entries []CartEntry, catalog models.Catalog) (items []models.OrderItem, total int64, dropped []string) {
	for _, entry := range entries {
		it, ok := catalog.Lookup(entry.ItemID)
		if !ok || it.Stock < entry.Qty {
			dropped = append(dropped, entry.ItemID)
			continue
		}
		items = append(items, models.OrderItem{
			ItemID: it.ID,
			Name:   it.Name,
			Qty:    entry.Qty,
			Price:  it.Price,
			Status: models.ItemPending,
		})
		total += it.Price * int64(entry.Qty)
	}
	return items, total, dropped
}

// announce tells the kitchen and feed subscribers about a committed order.
// The order is already stored, so failures are only logged.
func (e *CheckoutEngine) announce(ctx context.Context, order models.Order) {
	mylog := e.mylog.Action("order_announce").With("order_id", order.ID)

	placed := models.OrderPlaced{
		OrderID:  order.ID,
		TableID:  order.TableID,
		Method:   order.Payment.Method,
		Items:    len(order.Items),
		PlacedAt: order.CreatedAt,
	}
	if err := e.mb.PushOrderPlaced(ctx, placed); err != nil {
		mylog.Error("Failed to notify kitchen", err)
	}
	ev := models.ChangeEvent{Collection: models.CollectionOrders, OrderID: order.ID, Kind: "created", At: e.now()}
	if err := e.mb.PushChange(ctx, ev); err != nil {
		mylog.Error("Failed to publish change", err)
	}
}

// paymentPrompt starts the UPI payment and waits at most confirmWait for the
// channel. Without an answer in time the customer pays at the counter; the
// order stays payment_pending either way.
func (e *CheckoutEngine) paymentPrompt(ctx context.Context, order models.Order) models.PaymentPrompt {
	mylog := e.mylog.Action("payment_initiate").With("order_id", order.ID, "transaction_id", order.Payment.TransactionID)

	waitCtx, cancel := context.WithTimeout(ctx, e.confirmWait)
	defer cancel()

	uri, err := e.payments.Initiate(waitCtx, order)
	if err != nil {
		mylog.Warn("Payment channel did not answer, falling back to counter", "error", err.Error())
		return models.PaymentPrompt{Kind: models.PromptPayAtCounter}
	}
	mylog.Info("Payment initiated")
	return models.PaymentPrompt{Kind: models.PromptUPIRedirect, URI: uri}
}
