// Package payment starts UPI payments for placed orders.
package payment

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"table-order/internal/xpkg/broker"
	"table-order/internal/xpkg/config"
	"table-order/internal/xpkg/models"
)

// Publisher sends a message and waits for the broker to accept it.
type Publisher interface {
	PublishConfirmed(ctx context.Context, exchange, key string, v any) error
}

type UPI struct {
	pub Publisher
	cfg *config.Payment
}

func NewUPI(pub Publisher, cfg *config.Payment) *UPI {
	return &UPI{pub: pub, cfg: cfg}
}

// DeepLink builds the upi://pay link a payment app opens for order.
func DeepLink(cfg *config.Payment, order models.Order) string {
	q := url.Values{}
	q.Set("pa", cfg.Payee)
	q.Set("pn", cfg.PayeeName)
	q.Set("tr", order.Payment.TransactionID)
	q.Set("am", strconv.FormatInt(order.Total, 10)+".00")
	q.Set("cu", cfg.Currency)
	q.Set("tn", fmt.Sprintf("Table %s order", order.TableID))
	return "upi://pay?" + q.Encode()
}

// Initiate publishes the payment intent and returns the deep link once the
// broker confirms it.
func (u *UPI) Initiate(ctx context.Context, order models.Order) (string, error) {
	uri := DeepLink(u.cfg, order)
	intent := models.PaymentIntent{
		OrderID:       order.ID,
		TransactionID: order.Payment.TransactionID,
		Payee:         u.cfg.Payee,
		PayeeName:     u.cfg.PayeeName,
		Amount:        order.Total,
		Currency:      u.cfg.Currency,
		URI:           uri,
	}
	if err := u.pub.PublishConfirmed(ctx, broker.PaymentsExchange, broker.PaymentRoutingKey, intent); err != nil {
		return "", fmt.Errorf("initiate upi payment: %w", err)
	}
	return uri, nil
}
