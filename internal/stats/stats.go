package stats

import (
	"sort"

	"scriptqueue/internal/queue"
)

// Summary aggregates job counts and revenue over the whole queue.
type Summary struct {
	TotalJobs      int
	PendingJobs    int
	InProgressJobs int
	CompletedJobs  int
	TotalRevenue   float64
	PendingRevenue float64
}

// Summarize computes a Summary from a snapshot of the queue. Total revenue
// sums completed items; pending revenue sums everything not yet completed.
func Summarize(items []queue.Item) Summary {
	var s Summary
	for _, item := range items {
		s.TotalJobs++
		switch item.Status {
		case queue.StatusPending:
			s.PendingJobs++
			s.PendingRevenue += item.Price
		case queue.StatusInProgress:
			s.InProgressJobs++
			s.PendingRevenue += item.Price
		case queue.StatusCompleted:
			s.CompletedJobs++
			s.TotalRevenue += item.Price
		}
	}
	return s
}

// WorkerStanding is one leaderboard row.
type WorkerStanding struct {
	Name          string
	CompletedJobs int
	TotalEarnings float64
}

// Leaderboard groups completed items by worker and orders the result by
// completed count descending. Workers with equal counts keep the order in
// which they first completed an item.
func Leaderboard(items []queue.Item) []WorkerStanding {
	index := make(map[string]int)
	var standings []WorkerStanding
	for _, item := range items {
		if item.Status != queue.StatusCompleted || item.ClaimedBy == "" {
			continue
		}
		pos, ok := index[item.ClaimedBy]
		if !ok {
			pos = len(standings)
			index[item.ClaimedBy] = pos
			standings = append(standings, WorkerStanding{Name: item.ClaimedBy})
		}
		standings[pos].CompletedJobs++
		standings[pos].TotalEarnings += item.Price
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].CompletedJobs > standings[j].CompletedJobs
	})
	return standings
}
