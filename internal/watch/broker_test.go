package watch_test

import (
	"testing"
	"time"

	"go.uber.org/goleak"

	"scriptqueue/internal/watch"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSubscribeReceivesPublishedEvents(t *testing.T) {
	broker := watch.NewBroker()
	defer broker.Close()

	events, cancel := broker.Subscribe()
	defer cancel()

	broker.Publish(watch.Event{Op: watch.OpInsert, ItemID: "item-1"})

	select {
	case evt := <-events:
		if evt.Op != watch.OpInsert || evt.ItemID != "item-1" {
			t.Fatalf("unexpected event: %#v", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	broker := watch.NewBroker()
	defer broker.Close()

	events, cancel := broker.Subscribe()
	cancel()
	cancel() // idempotent

	if _, ok := <-events; ok {
		t.Fatal("expected channel closed after cancel")
	}

	// Publishing after cancel must not panic.
	broker.Publish(watch.Event{Op: watch.OpDelete, ItemID: "item-2"})
}

func TestPublishDoesNotBlockOnSlowSubscriber(t *testing.T) {
	broker := watch.NewBroker()
	defer broker.Close()

	_, cancel := broker.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			broker.Publish(watch.Event{Op: watch.OpUpdate, ItemID: "busy"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber buffer")
	}
}

func TestSubscribeAfterCloseReturnsClosedChannel(t *testing.T) {
	broker := watch.NewBroker()
	broker.Close()

	events, cancel := broker.Subscribe()
	defer cancel()
	if _, ok := <-events; ok {
		t.Fatal("expected closed channel from closed broker")
	}
}
