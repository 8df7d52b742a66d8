// Package feed turns change notifications into a stream of full snapshots.
//
// Writers announce that something changed; the feed reloads the complete
// state and hands it to a single consumer. Kicks arriving while a reload is
// in progress collapse into one, so the consumer always catches up to the
// latest state but may skip intermediate ones.
package feed

import (
	"context"
	"fmt"

	"table-order/internal/xpkg/apperr"
	"table-order/internal/xpkg/logger"
	"table-order/internal/xpkg/models"
)

type Loader interface {
	Snapshot(ctx context.Context) (models.Snapshot, error)
}

type Feed struct {
	loader Loader
	kick   chan struct{}
	mylog  logger.Logger
}

func New(loader Loader, mylog logger.Logger) *Feed {
	return &Feed{
		loader: loader,
		kick:   make(chan struct{}, 1),
		mylog:  mylog,
	}
}

// Kick requests a reload. It never blocks.
func (f *Feed) Kick() {
	select {
	case f.kick <- struct{}{}:
	default:
	}
}

// Run loads the initial snapshot, then reloads on every kick until ctx is
// done. A failed initial load is returned; later failures are logged and the
// previous snapshot stays current.
func (f *Feed) Run(ctx context.Context, deliver func(models.Snapshot)) error {
	mylog := f.mylog.Action("feed_reload")

	snap, err := f.loader.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("initial snapshot: %w", err)
	}
	deliver(snap)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-f.kick:
			snap, err := f.loader.Snapshot(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				mylog.Error("Failed to reload snapshot", err)
				continue
			}
			mylog.Debug("Snapshot reloaded", "orders", len(snap.Orders), "menu", len(snap.Menu))
			deliver(snap)
		}
	}
}

// Follow kicks the feed for every event received on events until ctx is
// done. A channel that closes first returns apperr.ErrStreamClosed.
func (f *Feed) Follow(ctx context.Context, events <-chan models.ChangeEvent) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				f.mylog.Action("feed_follow").Error("Change stream closed", apperr.ErrStreamClosed)
				return apperr.ErrStreamClosed
			}
			f.Kick()
		}
	}
}
