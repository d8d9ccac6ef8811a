package deadline

import (
	"time"

	"scriptqueue/internal/queue"
)

// Classification buckets a queue item by how close its deadline is.
type Classification string

const (
	ClassNone     Classification = ""
	ClassOverdue  Classification = "overdue"
	ClassDueToday Classification = "due-today"
	ClassNearDue  Classification = "near-due"
)

// Classify buckets item relative to now. Completed items and items without
// a deadline never classify. nearDueDays is the inclusive threshold for the
// near-due bucket, measured in whole 24h periods remaining.
func Classify(item queue.Item, now time.Time, nearDueDays int) Classification {
	if item.Status == queue.StatusCompleted || item.Deadline == nil {
		return ClassNone
	}
	remaining := item.Deadline.Sub(now)
	if remaining < 0 {
		return ClassOverdue
	}
	daysLeft := int(remaining.Hours() / 24)
	switch {
	case daysLeft == 0:
		return ClassDueToday
	case daysLeft <= nearDueDays:
		return ClassNearDue
	}
	return ClassNone
}
