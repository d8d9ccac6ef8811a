package deadline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"scriptqueue/internal/logging"
	"scriptqueue/internal/notifications"
	"scriptqueue/internal/queue"
	"scriptqueue/internal/services"
)

// Lister provides the queue snapshot the notifier scans.
type Lister interface {
	List(ctx context.Context, statuses ...queue.Status) ([]*queue.Item, error)
}

// Notifier periodically scans open items and emits one notification per
// (item, classification) pair for the lifetime of the process. An item that
// slides from near-due into overdue notifies again under the new key.
type Notifier struct {
	store       Lister
	notifier    notifications.Service
	logger      *slog.Logger
	nearDueDays int

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewNotifier(store Lister, notifier notifications.Service, logger *slog.Logger, nearDueDays int) *Notifier {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Notifier{
		store:       store,
		notifier:    notifier,
		logger:      logger,
		nearDueDays: nearDueDays,
		seen:        make(map[string]struct{}),
	}
}

// Scan classifies every non-completed item and notifies for pairs not yet
// seen. Scanning never mutates queue state.
func (n *Notifier) Scan(ctx context.Context) error {
	items, err := n.store.List(ctx, queue.StatusPending, queue.StatusInProgress)
	if err != nil {
		return services.Wrap(services.ErrUnavailable, "deadline", "scan", "list queue items", err)
	}

	now := time.Now().UTC()
	for _, item := range items {
		class := Classify(*item, now, n.nearDueDays)
		if class == ClassNone {
			continue
		}
		if !n.markSeen(item.ID, class) {
			continue
		}
		n.logger.Info("deadline notification",
			logging.String(logging.FieldItemID, item.ID),
			logging.String("classification", string(class)),
			logging.String("title", item.Title))
		if err := n.notifier.NotifyDeadline(ctx, *item, string(class)); err != nil {
			n.logger.Warn("deadline notification delivery failed",
				logging.String(logging.FieldItemID, item.ID),
				logging.Error(err))
		}
	}
	return nil
}

// markSeen records the pair and reports whether it was new.
func (n *Notifier) markSeen(itemID string, class Classification) bool {
	key := itemID + "|" + string(class)
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.seen[key]; ok {
		return false
	}
	n.seen[key] = struct{}{}
	return true
}
