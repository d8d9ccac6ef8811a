package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"scriptqueue/internal/logging"
	"scriptqueue/internal/queue"
	"scriptqueue/internal/services"
	"scriptqueue/internal/stats"
	"scriptqueue/internal/watch"
)

// Lister is the slice of the queue store the dashboard reads from.
type Lister interface {
	List(ctx context.Context, statuses ...queue.Status) ([]*queue.Item, error)
}

// Store maintains an in-memory snapshot of the queue, refreshed in full
// whenever the change broker reports a mutation. Concurrent refreshes are
// ordered by a generation counter so a stale fetch can never overwrite a
// newer one.
type Store struct {
	source Lister
	logger *slog.Logger

	nextGen uint64

	mu         sync.RWMutex
	appliedGen uint64
	items      []queue.Item

	cancelSub func()
	done      chan struct{}
}

// New builds a Store and performs an initial refresh. When broker is non-nil
// the store owns exactly one subscription, torn down by Close.
func New(ctx context.Context, source Lister, broker *watch.Broker, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Store{
		source: source,
		logger: logger,
		done:   make(chan struct{}),
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	if broker != nil {
		events, cancel := broker.Subscribe()
		s.cancelSub = cancel
		go s.watch(events)
	} else {
		close(s.done)
	}
	return s, nil
}

func (s *Store) watch(events <-chan watch.Event) {
	defer close(s.done)
	for evt := range events {
		if err := s.Refresh(context.Background()); err != nil {
			s.logger.Warn("snapshot refresh failed",
				logging.String(logging.FieldItemID, evt.ItemID),
				logging.Error(err))
		}
	}
}

// Refresh replaces the snapshot with a fresh full fetch. Safe to call
// concurrently; the highest generation wins regardless of completion order.
func (s *Store) Refresh(ctx context.Context) error {
	gen := atomic.AddUint64(&s.nextGen, 1)

	fetched, err := s.source.List(ctx)
	if err != nil {
		return services.Wrap(services.ErrUnavailable, "dashboard", "refresh", "list queue items", err)
	}
	items := make([]queue.Item, 0, len(fetched))
	for _, item := range fetched {
		items = append(items, *item)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen <= s.appliedGen {
		return nil
	}
	s.appliedGen = gen
	s.items = items
	return nil
}

// Items returns a copy of the current snapshot, newest first.
func (s *Store) Items() []queue.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]queue.Item, len(s.items))
	copy(out, s.items)
	return out
}

// Summary aggregates the current snapshot.
func (s *Store) Summary() stats.Summary {
	return stats.Summarize(s.Items())
}

// Leaderboard ranks workers over the current snapshot.
func (s *Store) Leaderboard() []stats.WorkerStanding {
	return stats.Leaderboard(s.Items())
}

// Close tears down the broker subscription and waits for the watcher to
// drain.
func (s *Store) Close() {
	if s.cancelSub != nil {
		s.cancelSub()
	}
	<-s.done
}
