package queue

import (
	"fmt"
	"strings"
	"time"

	"scriptqueue/internal/services"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

var allStatuses = []Status{
	StatusPending,
	StatusInProgress,
	StatusCompleted,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Item represents a queue item persisted in SQLite.
type Item struct {
	ID          string
	Title       string
	Description string
	Price       float64
	Status      Status
	ClaimedBy   string
	Deadline    *time.Time
	CreatedAt   time.Time
	CompletedAt *time.Time
	UpdatedAt   time.Time
}

// Script is one immutable submission for a queue item. Versions per item form
// a dense sequence starting at 1; the highest version is the current script.
type Script struct {
	ID          string
	QueueItemID string
	Content     string
	SubmittedBy string
	Version     int
	CreatedAt   time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, error) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := statusSet[normalized]; !ok {
		return "", services.Wrap(services.ErrValidation, "queue", "parse-status", fmt.Sprintf("unknown status %q", value), nil)
	}
	return normalized, nil
}

// IsTerminal reports whether the status admits no further transition.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted
}

// IsClaimed reports whether the item has an owner. Claimed is equivalent to
// status in-progress or completed; the store enforces that equivalence.
func (i Item) IsClaimed() bool {
	return i.ClaimedBy != ""
}

// HasDeadline reports whether a deadline is set.
func (i Item) HasDeadline() bool {
	return i.Deadline != nil
}
