package queue

import (
	"database/sql"
	"errors"
	"time"
)

const itemColumns = "id, title, description, price, status, claimed_by, deadline, created_at, completed_at, updated_at"

const scriptColumns = "id, queue_item_id, content, submitted_by, version, created_at"

// timeLayout is fixed-width so lexicographic ordering of stored timestamps
// matches chronological ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id           string
		title        string
		description  string
		price        float64
		statusStr    string
		claimedBy    sql.NullString
		deadlineRaw  sql.NullString
		createdRaw   string
		completedRaw sql.NullString
		updatedRaw   string
	)

	if err := scanner.Scan(
		&id,
		&title,
		&description,
		&price,
		&statusStr,
		&claimedBy,
		&deadlineRaw,
		&createdRaw,
		&completedRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:          id,
		Title:       title,
		Description: description,
		Price:       price,
		Status:      Status(statusStr),
		ClaimedBy:   claimedBy.String,
	}

	if created, err := parseTimeString(createdRaw); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		item.UpdatedAt = updated
	}
	if deadlineRaw.Valid {
		if deadline, err := parseTimeString(deadlineRaw.String); err == nil {
			item.Deadline = &deadline
		}
	}
	if completedRaw.Valid {
		if completed, err := parseTimeString(completedRaw.String); err == nil {
			item.CompletedAt = &completed
		}
	}
	return item, nil
}

func scanScript(scanner interface{ Scan(dest ...any) error }) (*Script, error) {
	var (
		id          string
		queueItemID string
		content     string
		submittedBy string
		version     int
		createdRaw  string
	)

	if err := scanner.Scan(&id, &queueItemID, &content, &submittedBy, &version, &createdRaw); err != nil {
		return nil, err
	}

	script := &Script{
		ID:          id,
		QueueItemID: queueItemID,
		Content:     content,
		SubmittedBy: submittedBy,
		Version:     version,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		script.CreatedAt = created
	}
	return script, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
