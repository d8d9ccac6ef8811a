package testsupport

import (
	"context"
	"testing"
	"time"

	"scriptqueue/internal/config"
	"scriptqueue/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// AddItem creates a pending queue item for tests using the provided store.
func AddItem(t testing.TB, store *queue.Store, title string, price float64, deadline *time.Time) *queue.Item {
	t.Helper()

	item, err := store.Add(context.Background(), title, "test description", price, deadline)
	if err != nil {
		t.Fatalf("store.Add: %v", err)
	}
	return item
}

// ClaimItem claims an item for tests.
func ClaimItem(t testing.TB, store *queue.Store, id, username string) *queue.Item {
	t.Helper()

	item, err := store.Claim(context.Background(), id, username)
	if err != nil {
		t.Fatalf("store.Claim: %v", err)
	}
	return item
}

// CompleteItem completes an item for tests, optionally submitting a script.
func CompleteItem(t testing.TB, store *queue.Store, id, content, submittedBy string) *queue.Item {
	t.Helper()

	item, err := store.Complete(context.Background(), id, content, submittedBy)
	if err != nil {
		t.Fatalf("store.Complete: %v", err)
	}
	return item
}
