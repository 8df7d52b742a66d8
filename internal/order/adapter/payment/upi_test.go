package payment

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"table-order/internal/xpkg/broker"
	"table-order/internal/xpkg/config"
	"table-order/internal/xpkg/models"
)

type recordingPublisher struct {
	exchange, key string
	msg           any
	err           error
}

func (p *recordingPublisher) PublishConfirmed(_ context.Context, exchange, key string, v any) error {
	p.exchange, p.key, p.msg = exchange, key, v
	return p.err
}

var payCfg = &config.Payment{Payee: "cafe@upi", PayeeName: "Corner Cafe", Currency: "INR"}

func upiOrder() models.Order {
	return models.Order{
		ID:      "o-1",
		TableID: "12",
		Total:   450,
		Payment: models.Payment{TransactionID: "TXN-abc", Method: models.MethodUPI},
	}
}

func TestDeepLink(t *testing.T) {
	t.Parallel()

	link := DeepLink(payCfg, upiOrder())
	if !strings.HasPrefix(link, "upi://pay?") {
		t.Fatalf("unexpected scheme: %s", link)
	}
	q, err := url.ParseQuery(strings.TrimPrefix(link, "upi://pay?"))
	if err != nil {
		t.Fatalf("parse query: %v", err)
	}
	want := map[string]string{
		"pa": "cafe@upi",
		"pn": "Corner Cafe",
		"tr": "TXN-abc",
		"am": "450.00",
		"cu": "INR",
		"tn": "Table 12 order",
	}
	for k, v := range want {
		if got := q.Get(k); got != v {
			t.Fatalf("%s: expected %q, got %q", k, v, got)
		}
	}
}

func TestInitiatePublishesIntent(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{}
	uri, err := NewUPI(pub, payCfg).Initiate(context.Background(), upiOrder())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pub.exchange != broker.PaymentsExchange || pub.key != broker.PaymentRoutingKey {
		t.Fatalf("published to %s/%s", pub.exchange, pub.key)
	}
	intent, ok := pub.msg.(models.PaymentIntent)
	if !ok || intent.TransactionID != "TXN-abc" || intent.Amount != 450 || intent.URI != uri {
		t.Fatalf("unexpected intent %+v", pub.msg)
	}
}

func TestInitiateFailsWithoutConfirm(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{err: context.DeadlineExceeded}
	uri, err := NewUPI(pub, payCfg).Initiate(context.Background(), upiOrder())
	if !errors.Is(err, context.DeadlineExceeded) || uri != "" {
		t.Fatalf("expected deadline error and no uri, got %q, %v", uri, err)
	}
}
