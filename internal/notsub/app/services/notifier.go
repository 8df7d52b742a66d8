package services

import (
	"fmt"
	"io"
	"sync"

	"table-order/internal/xpkg/logger"
	"table-order/internal/xpkg/models"
	"table-order/internal/xpkg/status"
)

// Notifier turns consecutive snapshots into one-shot "item ready" lines.
type Notifier struct {
	mu      sync.Mutex
	tracker *status.Tracker
	out     io.Writer
	mylog   logger.Logger
}

func NewNotifier(out io.Writer, mylog logger.Logger) *Notifier {
	return &Notifier{
		tracker: status.NewTracker(),
		out:     out,
		mylog:   mylog,
	}
}

// Apply diffs snap against the previous one and announces every item that
// became ready in between.
func (n *Notifier) Apply(snap models.Snapshot) []status.ReadyNotification {
	n.mu.Lock()
	notes := n.tracker.Observe(snap.Orders)
	n.mu.Unlock()

	for _, note := range notes {
		n.mylog.Action("notification_sent").WithGroup("details").
			With("order_id", note.OrderID, "table_id", note.TableID, "item", note.ItemName).
			Info("Item ready")
		fmt.Fprintf(n.out, "Table T-%s: %s is ready (order %s, item #%d)\n", note.TableID, note.ItemName, note.OrderID, note.Index+1)
	}
	n.mylog.Action("snapshot_applied").Debug("Snapshot diffed", "orders", len(snap.Orders), "notifications", len(notes))
	return notes
}

// Tracked is the number of orders remembered from the last snapshot.
func (n *Notifier) Tracked() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tracker.Len()
}
