// Package broker wraps the RabbitMQ connection shared by every service:
// topology, confirmed publishing, queue consumption and the change fanout.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"table-order/internal/xpkg/apperr"
	"table-order/internal/xpkg/config"
	"table-order/internal/xpkg/logger"
	"table-order/internal/xpkg/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	OrdersExchange   = "orders_topic"
	PaymentsExchange = "payments"
	ChangesExchange  = "order_changes"

	KitchenQueue  = "kitchen_queue"
	PaymentsQueue = "payments_queue"

	PaymentRoutingKey = "payment.upi"

	reconnectInterval = 5 * time.Second
)

// KitchenRoutingKey routes a placed order to the kitchen by payment method.
func KitchenRoutingKey(m models.PaymentMethod) string {
	return "kitchen." + string(m)
}

type RabbitMQ struct {
	ctx          context.Context
	cfg          *config.RabbitMQ
	conn         *amqp.Connection
	ch           *amqp.Channel
	mylog        logger.Logger
	mu           sync.Mutex
	reconnecting bool
	prefetch     int
}

// Dial connects, enables publisher confirms and declares the topology.
func Dial(ctx context.Context, cfg *config.RabbitMQ, prefetch int, mylog logger.Logger) (*RabbitMQ, error) {
	r := &RabbitMQ{
		ctx:      ctx,
		cfg:      cfg,
		mylog:    mylog,
		prefetch: prefetch,
	}
	if err := r.connect(); err != nil {
		return nil, err
	}
	mylog.Action("mb_connected").Info("Connected to message broker", "host", cfg.Host)
	return r, nil
}

func (r *RabbitMQ) connect() error {
	conn, err := amqp.Dial(r.cfg.URL())
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrMBConn, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("%w: %v", apperr.ErrMBCh, err)
	}
	if err := ch.Confirm(false); err != nil {
		conn.Close()
		return fmt.Errorf("%w: confirm mode: %v", apperr.ErrMBCh, err)
	}
	if r.prefetch > 0 {
		if err := ch.Qos(r.prefetch, 0, false); err != nil {
			conn.Close()
			return fmt.Errorf("%w: qos: %v", apperr.ErrMBCh, err)
		}
	}
	if err := declareTopology(ch); err != nil {
		conn.Close()
		return err
	}

	r.mu.Lock()
	r.conn = conn
	r.ch = ch
	r.mu.Unlock()
	return nil
}

func declareTopology(ch *amqp.Channel) error {
	exchanges := []struct{ name, kind string }{
		{OrdersExchange, amqp.ExchangeTopic},
		{PaymentsExchange, amqp.ExchangeTopic},
		{ChangesExchange, amqp.ExchangeFanout},
	}
	for _, ex := range exchanges {
		if err := ch.ExchangeDeclare(ex.name, ex.kind, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.name, err)
		}
	}

	queues := []struct{ name, key, exchange string }{
		{KitchenQueue, "kitchen.*", OrdersExchange},
		{PaymentsQueue, "payment.*", PaymentsExchange},
	}
	for _, q := range queues {
		if _, err := ch.QueueDeclare(q.name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
		if err := ch.QueueBind(q.name, q.key, q.exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", q.name, err)
		}
	}
	return nil
}

func (r *RabbitMQ) IsAlive() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil || r.conn.IsClosed() {
		return apperr.ErrMBConn
	}
	if r.ch == nil || r.ch.IsClosed() {
		return apperr.ErrMBCh
	}
	return nil
}

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ch != nil && !r.ch.IsClosed() {
		if err := r.ch.Close(); err != nil {
			return fmt.Errorf("close rabbitmq channel: %w", err)
		}
	}
	if r.conn != nil && !r.conn.IsClosed() {
		if err := r.conn.Close(); err != nil {
			return fmt.Errorf("close rabbitmq connection: %w", err)
		}
	}
	return nil
}

func (r *RabbitMQ) channel() (*amqp.Channel, error) {
	if err := r.IsAlive(); err != nil {
		go r.reconnect(r.ctx)
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ch, nil
}

func (r *RabbitMQ) reconnect(ctx context.Context) {
	r.mu.Lock()
	if r.reconnecting {
		r.mu.Unlock()
		return
	}
	r.reconnecting = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.reconnecting = false
		r.mu.Unlock()
	}()

	t := time.NewTicker(reconnectInterval)
	defer t.Stop()
	mylog := r.mylog.Action("rabbitmq_reconnecting")

	for {
		select {
		case <-t.C:
			if err := r.connect(); err != nil {
				mylog.Warn("Failed to reconnect to message broker", "error", err.Error())
				continue
			}
			mylog.Info("Reconnected to message broker")
			return
		case <-ctx.Done():
			return
		}
	}
}

func publishing(v any) (amqp.Publishing, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal message: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	}, nil
}

// Publish sends v as JSON without waiting for the broker confirmation.
func (r *RabbitMQ) Publish(ctx context.Context, exchange, key string, v any) error {
	msg, err := publishing(v)
	if err != nil {
		return err
	}
	ch, err := r.channel()
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, exchange, key, false, false, msg)
}

// PublishConfirmed sends v and blocks until the broker confirms it or ctx
// is done. A nack is reported as an error.
func (r *RabbitMQ) PublishConfirmed(ctx context.Context, exchange, key string, v any) error {
	msg, err := publishing(v)
	if err != nil {
		return err
	}
	ch, err := r.channel()
	if err != nil {
		return err
	}
	dc, err := ch.PublishWithDeferredConfirmWithContext(ctx, exchange, key, false, false, msg)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", exchange, err)
	}
	ok, err := dc.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("wait for confirm: %w", err)
	}
	if !ok {
		return fmt.Errorf("broker rejected message to %s", exchange)
	}
	return nil
}

// Consume starts a manual-ack consumer on a durable queue.
func (r *RabbitMQ) Consume(ctx context.Context, queue, consumer string) (<-chan amqp.Delivery, error) {
	ch, err := r.channel()
	if err != nil {
		return nil, err
	}
	return ch.ConsumeWithContext(ctx, queue, consumer, false, false, false, false, nil)
}

// PublishChange announces a change to every feed subscriber.
func (r *RabbitMQ) PublishChange(ctx context.Context, ev models.ChangeEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	return r.Publish(ctx, ChangesExchange, "", ev)
}

// SubscribeChanges binds an exclusive server-named queue to the change
// fanout and decodes its messages. The channel closes when ctx is done or
// the delivery stream ends.
func (r *RabbitMQ) SubscribeChanges(ctx context.Context) (<-chan models.ChangeEvent, error) {
	ch, err := r.channel()
	if err != nil {
		return nil, err
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare change queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", ChangesExchange, false, nil); err != nil {
		return nil, fmt.Errorf("bind change queue: %w", err)
	}
	deliveries, err := ch.ConsumeWithContext(ctx, q.Name, "", true, true, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume change queue: %w", err)
	}

	events := make(chan models.ChangeEvent, 16)
	go func() {
		defer close(events)
		mylog := r.mylog.Action("change_received")
		for d := range deliveries {
			var ev models.ChangeEvent
			if err := json.Unmarshal(d.Body, &ev); err != nil {
				mylog.Error("Failed to decode change event", err)
				continue
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
