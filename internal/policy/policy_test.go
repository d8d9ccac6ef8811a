package policy_test

import (
	"testing"

	"scriptqueue/internal/policy"
	"scriptqueue/internal/queue"
)

func TestEvaluateClaim(t *testing.T) {
	pending := queue.Item{Status: queue.StatusPending}
	claimed := queue.Item{Status: queue.StatusInProgress, ClaimedBy: "w1"}

	if d := policy.Evaluate(policy.RoleUser, "w2", pending); !d.CanClaim {
		t.Fatal("approved user should be able to claim a pending item")
	}
	if d := policy.Evaluate(policy.RoleAdmin, "boss", pending); !d.CanClaim {
		t.Fatal("admin should be able to claim a pending item")
	}
	if d := policy.Evaluate(policy.RoleUser, "w2", claimed); d.CanClaim {
		t.Fatal("claimed item must not be claimable")
	}
	if d := policy.Evaluate(policy.RoleNone, "pendinguser", pending); d.CanClaim {
		t.Fatal("unapproved account must not claim")
	}
	if d := policy.Evaluate(policy.RoleUser, "", pending); d.CanClaim {
		t.Fatal("missing username must not claim")
	}
}

func TestEvaluateComplete(t *testing.T) {
	item := queue.Item{Status: queue.StatusInProgress, ClaimedBy: "w1"}

	if d := policy.Evaluate(policy.RoleUser, "w1", item); !d.CanComplete {
		t.Fatal("claimer should be able to complete their item")
	}
	if d := policy.Evaluate(policy.RoleUser, "w2", item); d.CanComplete {
		t.Fatal("other workers must not complete someone else's item")
	}
	if d := policy.Evaluate(policy.RoleAdmin, "boss", item); !d.CanComplete {
		t.Fatal("admin should be able to complete any in-progress item")
	}

	pending := queue.Item{Status: queue.StatusPending}
	if d := policy.Evaluate(policy.RoleAdmin, "boss", pending); d.CanComplete {
		t.Fatal("pending item must not be completable")
	}
}

func TestEvaluateEditAndDelete(t *testing.T) {
	open := queue.Item{Status: queue.StatusInProgress, ClaimedBy: "w1"}
	done := queue.Item{Status: queue.StatusCompleted, ClaimedBy: "w1"}

	if d := policy.Evaluate(policy.RoleAdmin, "boss", open); !d.CanEdit || !d.CanDelete {
		t.Fatalf("admin should edit and delete open items: %#v", d)
	}
	if d := policy.Evaluate(policy.RoleAdmin, "boss", done); d.CanEdit {
		t.Fatal("completed items must not be editable")
	}
	if d := policy.Evaluate(policy.RoleAdmin, "boss", done); !d.CanDelete {
		t.Fatal("admin should delete completed items")
	}
	if d := policy.Evaluate(policy.RoleUser, "w1", open); d.CanEdit || d.CanDelete {
		t.Fatalf("workers must not edit or delete: %#v", d)
	}
}

func TestEvaluateScriptHistory(t *testing.T) {
	done := queue.Item{Status: queue.StatusCompleted, ClaimedBy: "w1"}
	open := queue.Item{Status: queue.StatusInProgress, ClaimedBy: "w1"}

	if d := policy.Evaluate(policy.RoleAdmin, "boss", done); !d.CanViewScriptHistory {
		t.Fatal("admin should view script history of completed items")
	}
	if d := policy.Evaluate(policy.RoleUser, "w1", done); !d.CanViewScriptHistory {
		t.Fatal("claimer should view scripts of their completed item")
	}
	if d := policy.Evaluate(policy.RoleUser, "w2", done); d.CanViewScriptHistory {
		t.Fatal("unrelated worker must not view scripts")
	}
	if d := policy.Evaluate(policy.RoleAdmin, "boss", open); d.CanViewScriptHistory {
		t.Fatal("scripts are only visible once the item is completed")
	}
}

func TestParseRole(t *testing.T) {
	if got := policy.ParseRole("admin"); got != policy.RoleAdmin {
		t.Fatalf("expected admin, got %s", got)
	}
	if got := policy.ParseRole("user"); got != policy.RoleUser {
		t.Fatalf("expected user, got %s", got)
	}
	if got := policy.ParseRole(""); got != policy.RoleNone {
		t.Fatalf("expected none, got %s", got)
	}
	if got := policy.ParseRole("superuser"); got != policy.RoleNone {
		t.Fatalf("unknown roles must map to none, got %s", got)
	}
}
