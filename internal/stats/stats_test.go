package stats_test

import (
	"testing"

	"scriptqueue/internal/queue"
	"scriptqueue/internal/stats"
)

func TestSummarize(t *testing.T) {
	items := []queue.Item{
		{Status: queue.StatusPending, Price: 100},
		{Status: queue.StatusInProgress, Price: 50, ClaimedBy: "w1"},
		{Status: queue.StatusCompleted, Price: 200, ClaimedBy: "w2"},
		{Status: queue.StatusCompleted, Price: 25, ClaimedBy: "w1"},
	}

	s := stats.Summarize(items)
	if s.TotalJobs != 4 {
		t.Fatalf("expected 4 jobs, got %d", s.TotalJobs)
	}
	if s.PendingJobs != 1 || s.InProgressJobs != 1 || s.CompletedJobs != 2 {
		t.Fatalf("unexpected status counts: %#v", s)
	}
	if s.TotalRevenue != 225 {
		t.Fatalf("expected total revenue 225, got %v", s.TotalRevenue)
	}
	if s.PendingRevenue != 150 {
		t.Fatalf("expected pending revenue 150, got %v", s.PendingRevenue)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if s := stats.Summarize(nil); s != (stats.Summary{}) {
		t.Fatalf("expected zero summary, got %#v", s)
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	items := []queue.Item{
		{Status: queue.StatusCompleted, Price: 100, ClaimedBy: "w1"},
		{Status: queue.StatusCompleted, Price: 200, ClaimedBy: "w2"},
		{Status: queue.StatusCompleted, Price: 50, ClaimedBy: "w1"},
	}

	board := stats.Leaderboard(items)
	if len(board) != 2 {
		t.Fatalf("expected 2 workers, got %d", len(board))
	}
	if board[0].Name != "w1" || board[0].CompletedJobs != 2 || board[0].TotalEarnings != 150 {
		t.Fatalf("unexpected first row: %#v", board[0])
	}
	if board[1].Name != "w2" || board[1].CompletedJobs != 1 || board[1].TotalEarnings != 200 {
		t.Fatalf("unexpected second row: %#v", board[1])
	}
}

func TestLeaderboardTiesKeepFirstCompletionOrder(t *testing.T) {
	items := []queue.Item{
		{Status: queue.StatusCompleted, Price: 10, ClaimedBy: "late"},
		{Status: queue.StatusCompleted, Price: 10, ClaimedBy: "early"},
	}
	// Oldest completion last in a newest-first listing; feed oldest first.
	board := stats.Leaderboard([]queue.Item{items[1], items[0]})
	if board[0].Name != "early" || board[1].Name != "late" {
		t.Fatalf("tie ordering broken: %#v", board)
	}
}

func TestLeaderboardIgnoresOpenItems(t *testing.T) {
	items := []queue.Item{
		{Status: queue.StatusPending, Price: 100},
		{Status: queue.StatusInProgress, Price: 50, ClaimedBy: "w1"},
	}
	if board := stats.Leaderboard(items); len(board) != 0 {
		t.Fatalf("expected empty leaderboard, got %#v", board)
	}
}
