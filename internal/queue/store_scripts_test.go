package queue_test

import (
	"context"
	"errors"
	"testing"

	"scriptqueue/internal/services"
	"scriptqueue/internal/testsupport"
)

func TestAppendScriptAssignsDenseVersions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item := testsupport.AddItem(t, store, "Job", 100, nil)
	testsupport.ClaimItem(t, store, item.ID, "w")
	testsupport.CompleteItem(t, store, item.ID, "v1 body", "w")

	second, err := store.AppendScript(ctx, item.ID, "v2 body", "admin")
	if err != nil {
		t.Fatalf("AppendScript failed: %v", err)
	}
	if second.Version != 2 {
		t.Fatalf("expected version 2, got %d", second.Version)
	}
	third, err := store.AppendScript(ctx, item.ID, "v3 body", "admin")
	if err != nil {
		t.Fatalf("AppendScript failed: %v", err)
	}
	if third.Version != 3 {
		t.Fatalf("expected version 3, got %d", third.Version)
	}

	scripts, err := store.ListScripts(ctx, item.ID)
	if err != nil {
		t.Fatalf("ListScripts failed: %v", err)
	}
	if len(scripts) != 3 {
		t.Fatalf("expected 3 versions, got %d", len(scripts))
	}
	// Newest first.
	for i, script := range scripts {
		if want := len(scripts) - i; script.Version != want {
			t.Fatalf("expected version %d at position %d, got %d", want, i, script.Version)
		}
	}
}

func TestAppendScriptRejectsEmptyContent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item := testsupport.AddItem(t, store, "Job", 100, nil)

	if _, err := store.AppendScript(ctx, item.ID, "   ", "admin"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := store.AppendScript(ctx, item.ID, "body", ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for missing submitter, got %v", err)
	}
}

func TestAppendScriptMissingItemNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	_, err := store.AppendScript(context.Background(), "no-such-id", "body", "admin")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLatestScriptPicksHighestVersion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item := testsupport.AddItem(t, store, "Job", 100, nil)
	testsupport.ClaimItem(t, store, item.ID, "w")
	testsupport.CompleteItem(t, store, item.ID, "first", "w")
	if _, err := store.AppendScript(ctx, item.ID, "second", "admin"); err != nil {
		t.Fatalf("AppendScript failed: %v", err)
	}

	latest, err := store.LatestScript(ctx, item.ID)
	if err != nil {
		t.Fatalf("LatestScript failed: %v", err)
	}
	if latest == nil || latest.Content != "second" || latest.Version != 2 {
		t.Fatalf("unexpected latest script: %#v", latest)
	}
}

func TestLatestScriptNilWhenNone(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item := testsupport.AddItem(t, store, "Job", 100, nil)

	latest, err := store.LatestScript(ctx, item.ID)
	if err != nil {
		t.Fatalf("LatestScript failed: %v", err)
	}
	if latest != nil {
		t.Fatalf("expected no script, got %#v", latest)
	}
}
