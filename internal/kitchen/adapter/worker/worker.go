package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	brokermessage "table-order/internal/kitchen/adapter/broker_message"
	"table-order/internal/kitchen/adapter/db"
	"table-order/internal/kitchen/app/core"
	"table-order/internal/kitchen/app/services"
	"table-order/internal/xpkg/apperr"
	"table-order/internal/xpkg/broker"
	"table-order/internal/xpkg/config"
	xdb "table-order/internal/xpkg/db"
	"table-order/internal/xpkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"
)

// Handler processes one message body.
type Handler interface {
	HandleMessage(ctx context.Context, body []byte) (requeue bool, err error)
}

type Worker struct {
	cfg          *config.Config
	workerParams *core.WorkerParams
	mylog        logger.Logger

	db         *xdb.DB
	mb         *broker.RabbitMQ
	workerRepo core.IWorkerRepo

	mu sync.Mutex
}

func NewWorker(cfg *config.Config, workerParams *core.WorkerParams, mylog logger.Logger) *Worker {
	return &Worker{
		cfg:          cfg,
		workerParams: workerParams,
		mylog:        mylog.With("worker_name", workerParams.WorkerName),
	}
}

// Run registers the worker and processes kitchen messages until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	mylog := w.mylog.Action("run_worker")

	d, err := xdb.Start(ctx, w.cfg.DB, w.mylog)
	if err != nil {
		mylog.Action("db_connection_failed").Error("Failed to connect to database", err)
		return err
	}
	w.mu.Lock()
	w.db = d
	w.mu.Unlock()
	if err := d.Migrate(ctx); err != nil {
		return err
	}

	mb, err := broker.Dial(ctx, w.cfg.RMQ, w.workerParams.Prefetch, w.mylog)
	if err != nil {
		mylog.Action("mb_connection_failed").Error("Failed to connect to message broker", err)
		return err
	}

	w.mu.Lock()
	w.mb = mb
	w.workerRepo = db.NewWorkerRepo(d.Pool())
	w.mu.Unlock()

	if err := w.workerRepo.Register(ctx, w.workerParams.WorkerName); err != nil {
		return fmt.Errorf("register worker: %w", err)
	}
	mylog.Info("Worker registered")

	messages := brokermessage.New(mb)
	fulfillment := services.NewFulfillment(db.NewOrderRepo(d), messages, w.workerParams, w.mylog)

	jobs, err := messages.ConsumeOrders(ctx, w.workerParams.WorkerName)
	if err != nil {
		return fmt.Errorf("consume kitchen queue: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	for i := 0; i < w.workerParams.Workers; i++ {
		g.Go(func() error {
			return w.consume(gCtx, jobs, fulfillment)
		})
	}
	g.Go(func() error {
		w.heartbeat(gCtx)
		return nil
	})
	return g.Wait()
}

// consume returns apperr.ErrStreamClosed when jobs closes before ctx is
// done, so the worker exits instead of heartbeating without consuming.
func (w *Worker) consume(ctx context.Context, jobs <-chan amqp.Delivery, h Handler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-jobs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				w.mylog.Action("work").Error("Delivery channel closed", apperr.ErrStreamClosed)
				return apperr.ErrStreamClosed
			}
			w.process(ctx, msg, h)
		}
	}
}

func (w *Worker) process(ctx context.Context, msg amqp.Delivery, h Handler) {
	mylog := w.mylog.Action("process_message")

	requeue, err := h.HandleMessage(ctx, msg.Body)
	if err != nil {
		switch {
		case ctx.Err() != nil || errors.Is(err, context.Canceled):
			// Interrupted by shutdown, not a failure of the order.
			requeue = true
		case msg.Redelivered:
			// A redelivered message that fails again is dropped.
			requeue = false
		}
		mylog.Error("Failed to process order", err, "requeue", requeue)
		if err := msg.Nack(false, requeue); err != nil {
			mylog.Error("Failed to nack", err)
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		mylog.Error("Failed to ack message", err)
		return
	}

	dbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), core.WaitTime*time.Second)
	defer cancel()
	if err := w.workerRepo.AddProcessed(dbCtx, w.workerParams.WorkerName); err != nil {
		mylog.Error("Failed to count processed order", err)
	}
}

func (w *Worker) heartbeat(ctx context.Context) {
	t := time.NewTicker(time.Duration(w.workerParams.HeartbeatInterval) * time.Second)
	defer t.Stop()
	mylog := w.mylog.Action("heartbeat")

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			hbCtx, cancel := context.WithTimeout(ctx, core.WaitTime*time.Second)
			if err := w.workerRepo.Heartbeat(hbCtx, w.workerParams.WorkerName); err != nil {
				mylog.Error("Failed to update last seen", err)
			}
			cancel()
		}
	}
}

// Stop marks the worker offline and closes its connections.
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.mylog.Action("graceful_shutdown_started").Info("Shutting down")

	var errs []error
	if w.workerRepo != nil {
		offCtx, cancel := context.WithTimeout(ctx, core.WaitTime*time.Second)
		defer cancel()
		if err := w.workerRepo.SetOffline(offCtx, w.workerParams.WorkerName); err != nil {
			errs = append(errs, fmt.Errorf("set offline: %w", err))
		}
	}
	if w.mb != nil {
		if err := w.mb.Close(); err != nil {
			errs = append(errs, fmt.Errorf("mb close: %w", err))
		}
	}
	if w.db != nil {
		if err := w.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("db close: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		w.mylog.Action("graceful_shutdown_failed").Error("Failed to shut down cleanly", err)
		return err
	}
	w.mylog.Action("graceful_shutdown_completed").Info("Successfully shut down")
	return nil
}
