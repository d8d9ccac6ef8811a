package deadline_test

import (
	"context"
	"testing"
	"time"

	"scriptqueue/internal/deadline"
	"scriptqueue/internal/queue"
)

type staticLister struct {
	items []*queue.Item
}

func (s *staticLister) List(context.Context, ...queue.Status) ([]*queue.Item, error) {
	return s.items, nil
}

type recordingNotifier struct {
	deadlines []string
}

func (r *recordingNotifier) NotifyDeadline(_ context.Context, item queue.Item, classification string) error {
	r.deadlines = append(r.deadlines, item.ID+"|"+classification)
	return nil
}

func (r *recordingNotifier) NotifyCompleted(context.Context, queue.Item, string) error { return nil }
func (r *recordingNotifier) NotifyError(context.Context, error, string) error          { return nil }
func (r *recordingNotifier) TestNotification(context.Context) error                    { return nil }

func TestScanNotifiesOncePerClassification(t *testing.T) {
	due := time.Now().UTC().Add(48 * time.Hour)
	lister := &staticLister{items: []*queue.Item{
		{ID: "a", Title: "Near", Status: queue.StatusPending, Deadline: &due},
	}}
	recorder := &recordingNotifier{}
	notifier := deadline.NewNotifier(lister, recorder, nil, 2)

	ctx := context.Background()
	if err := notifier.Scan(ctx); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if err := notifier.Scan(ctx); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(recorder.deadlines) != 1 {
		t.Fatalf("expected one notification, got %d: %v", len(recorder.deadlines), recorder.deadlines)
	}
	if recorder.deadlines[0] != "a|near-due" {
		t.Fatalf("unexpected notification: %s", recorder.deadlines[0])
	}
}

func TestScanNotifiesAgainOnReclassification(t *testing.T) {
	due := time.Now().UTC().Add(48 * time.Hour)
	item := &queue.Item{ID: "a", Title: "Sliding", Status: queue.StatusPending, Deadline: &due}
	lister := &staticLister{items: []*queue.Item{item}}
	recorder := &recordingNotifier{}
	notifier := deadline.NewNotifier(lister, recorder, nil, 2)

	ctx := context.Background()
	if err := notifier.Scan(ctx); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	// Deadline passes between scans.
	past := time.Now().UTC().Add(-time.Hour)
	item.Deadline = &past
	if err := notifier.Scan(ctx); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(recorder.deadlines) != 2 {
		t.Fatalf("expected two notifications, got %d: %v", len(recorder.deadlines), recorder.deadlines)
	}
	if recorder.deadlines[1] != "a|overdue" {
		t.Fatalf("expected overdue notification, got %s", recorder.deadlines[1])
	}
}

func TestScanSkipsUnclassifiedItems(t *testing.T) {
	far := time.Now().UTC().Add(30 * 24 * time.Hour)
	lister := &staticLister{items: []*queue.Item{
		{ID: "a", Title: "No deadline", Status: queue.StatusPending},
		{ID: "b", Title: "Far out", Status: queue.StatusPending, Deadline: &far},
	}}
	recorder := &recordingNotifier{}
	notifier := deadline.NewNotifier(lister, recorder, nil, 2)

	if err := notifier.Scan(context.Background()); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(recorder.deadlines) != 0 {
		t.Fatalf("expected no notifications, got %v", recorder.deadlines)
	}
}
