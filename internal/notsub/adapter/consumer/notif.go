package consumer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"table-order/internal/notsub/app/core"
	"table-order/internal/notsub/app/services"
	"table-order/internal/xpkg/broker"
	"table-order/internal/xpkg/config"
	xdb "table-order/internal/xpkg/db"
	"table-order/internal/xpkg/feed"
	"table-order/internal/xpkg/logger"
	"table-order/internal/xpkg/models"

	brokermessage "table-order/internal/notsub/adapter/broker_message"
	database "table-order/internal/notsub/adapter/db"

	"golang.org/x/sync/errgroup"
)

type Notification struct {
	cfg   *config.Config
	mylog logger.Logger

	db *xdb.DB
	mb *broker.RabbitMQ
	mu sync.Mutex
}

func NewNotification(cfg *config.Config, mylog logger.Logger) *Notification {
	return &Notification{
		cfg:   cfg,
		mylog: mylog,
	}
}

// Run follows the change feed and prints ready notifications until ctx is
// done.
func (n *Notification) Run(ctx context.Context) error {
	mylog := n.mylog.Action("run_notifications")

	d, err := xdb.Start(ctx, n.cfg.DB, n.mylog)
	if err != nil {
		mylog.Action("db_connection_failed").Error("Failed to connect to database", err)
		return err
	}
	n.mu.Lock()
	n.db = d
	n.mu.Unlock()

	mb, err := broker.Dial(ctx, n.cfg.RMQ, 0, n.mylog)
	if err != nil {
		mylog.Action("mb_connection_failed").Error("Failed to connect to message broker", err)
		return err
	}
	mylog.Action("mb_connected").Info("Successful message broker connection")

	n.mu.Lock()
	n.mb = mb
	n.mu.Unlock()

	var messages core.IRabbitMQ = brokermessage.New(mb)
	var repo core.ISnapshotRepo = database.NewSnapshotRepo(d)

	events, err := messages.Changes(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to changes: %w", err)
	}

	notifier := services.NewNotifier(os.Stdout, n.mylog)
	changes := feed.New(repo, n.mylog)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return changes.Run(gCtx, func(snap models.Snapshot) { notifier.Apply(snap) })
	})
	g.Go(func() error {
		return changes.Follow(gCtx, events)
	})
	return g.Wait()
}

func (n *Notification) Stop(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.mylog.Action("graceful_shutdown_started").Info("Shutting down")

	var errs []error
	if n.mb != nil {
		if err := n.mb.Close(); err != nil {
			errs = append(errs, fmt.Errorf("mb close: %w", err))
		}
	}
	if n.db != nil {
		if err := n.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("db close: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		n.mylog.Action("graceful_shutdown_failed").Error("Failed to shut down cleanly", err)
		return err
	}
	n.mylog.Action("graceful_shutdown_completed").Info("Successfully shut down")
	return nil
}
