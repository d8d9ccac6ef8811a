package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"scriptqueue/internal/services"
	"scriptqueue/internal/watch"
)

// Add inserts a new pending queue item. Title and description are required,
// price must be non-negative, and deadline is optional.
func (s *Store) Add(ctx context.Context, title, description string, price float64, deadline *time.Time) (*Item, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return nil, services.Wrap(services.ErrValidation, "queue", "add", "title is required", nil)
	}
	if description == "" {
		return nil, services.Wrap(services.ErrValidation, "queue", "add", "description is required", nil)
	}
	if price < 0 {
		return nil, services.Wrap(services.ErrValidation, "queue", "add", "price must be non-negative", nil)
	}

	id := uuid.New().String()
	timestamp := time.Now().UTC().Format(timeLayout)

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO queue_items (
            id, title, description, price, status, claimed_by, deadline,
            created_at, completed_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		title,
		description,
		price,
		StatusPending,
		nil,
		nullableTime(deadline),
		timestamp,
		nil,
		timestamp,
	)
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "queue", "add", "insert item", err)
	}

	s.publish(watch.OpInsert, id)
	return s.GetByID(ctx, id)
}

// Update edits title, description, price, and deadline of a non-completed
// item. Status, ownership, and completion timestamps are never touched here.
func (s *Store) Update(ctx context.Context, id, title, description string, price float64, deadline *time.Time) (*Item, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return nil, services.Wrap(services.ErrValidation, "queue", "update", "title is required", nil)
	}
	if description == "" {
		return nil, services.Wrap(services.ErrValidation, "queue", "update", "description is required", nil)
	}
	if price < 0 {
		return nil, services.Wrap(services.ErrValidation, "queue", "update", "price must be non-negative", nil)
	}

	res, err := s.execWithRetry(
		ctx,
		`UPDATE queue_items
         SET title = ?, description = ?, price = ?, deadline = ?, updated_at = ?
         WHERE id = ? AND status != ?`,
		title,
		description,
		price,
		nullableTime(deadline),
		time.Now().UTC().Format(timeLayout),
		id,
		StatusCompleted,
	)
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "queue", "update", "update item", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "queue", "update", "rows affected", err)
	}
	if affected == 0 {
		return nil, s.explainMissedUpdate(ctx, id, "update", "item is completed", services.ErrInvalidState)
	}

	s.publish(watch.OpUpdate, id)
	return s.GetByID(ctx, id)
}

// Claim transitions a pending item to in-progress and records ownership. The
// guard on the previous status is applied by the database so two workers
// racing for the same item cannot both win.
func (s *Store) Claim(ctx context.Context, id, username string) (*Item, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, services.Wrap(services.ErrValidation, "queue", "claim", "username is required", nil)
	}

	res, err := s.execWithRetry(
		ctx,
		`UPDATE queue_items
         SET status = ?, claimed_by = ?, updated_at = ?
         WHERE id = ? AND status = ?`,
		StatusInProgress,
		username,
		time.Now().UTC().Format(timeLayout),
		id,
		StatusPending,
	)
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "queue", "claim", "update item", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "queue", "claim", "rows affected", err)
	}
	if affected == 0 {
		return nil, s.explainMissedUpdate(ctx, id, "claim", "item is no longer pending", services.ErrConflict)
	}

	s.publish(watch.OpUpdate, id)
	return s.GetByID(ctx, id)
}

// Complete transitions an in-progress item to completed and, when content is
// provided, appends the next script version in the same transaction. The
// status guard is applied by the database; losing the race surfaces as an
// invalid-state error with the item left untouched.
func (s *Store) Complete(ctx context.Context, id, scriptContent, submittedBy string) (*Item, error) {
	ctx = ensureContext(ctx)
	now := time.Now().UTC()
	timestamp := now.Format(timeLayout)

	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		res, err := tx.ExecContext(
			ctx,
			`UPDATE queue_items
             SET status = ?, completed_at = ?, updated_at = ?
             WHERE id = ? AND status = ?`,
			StatusCompleted,
			timestamp,
			timestamp,
			id,
			StatusInProgress,
		)
		if err != nil {
			return fmt.Errorf("update item: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return errCompleteGuard
		}

		if strings.TrimSpace(scriptContent) != "" {
			if err := insertScript(ctx, tx, uuid.New().String(), id, scriptContent, submittedBy, now); err != nil {
				return err
			}
		}

		return tx.Commit()
	})
	if err != nil {
		if errors.Is(err, errCompleteGuard) {
			return nil, s.explainMissedUpdate(ctx, id, "complete", "item is not in progress", services.ErrInvalidState)
		}
		return nil, services.Wrap(services.ErrUnavailable, "queue", "complete", "apply transition", err)
	}

	s.publish(watch.OpUpdate, id)
	return s.GetByID(ctx, id)
}

var errCompleteGuard = errors.New("status guard missed")

// Remove deletes an item and its scripts.
func (s *Store) Remove(ctx context.Context, id string) error {
	res, err := s.execWithRetry(ctx, `DELETE FROM queue_items WHERE id = ?`, id)
	if err != nil {
		return services.Wrap(services.ErrUnavailable, "queue", "remove", "delete item", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return services.Wrap(services.ErrUnavailable, "queue", "remove", "rows affected", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "queue", "remove", "no such item", nil)
	}
	s.publish(watch.OpDelete, id)
	return nil
}

// GetByID fetches a queue item by identifier. A missing item returns nil, nil.
func (s *Store) GetByID(ctx context.Context, id string) (*Item, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+itemColumns+` FROM queue_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "queue", "get", "scan item", err)
	}
	return item, nil
}

// List returns queue items filtered by status set (or all items when no status
// is provided), newest-created first.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	ctx = ensureContext(ctx)
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + itemColumns + ` FROM queue_items`
	orderClause := ` ORDER BY created_at DESC`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "queue", "list", "query items", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// explainMissedUpdate distinguishes a conditional update that matched no rows
// because the item is gone from one that matched no rows because the status
// guard failed.
func (s *Store) explainMissedUpdate(ctx context.Context, id, operation, guardMessage string, guardMarker error) error {
	item, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return services.Wrap(services.ErrNotFound, "queue", operation, "no such item", nil)
	}
	return services.Wrap(guardMarker, "queue", operation, fmt.Sprintf("%s (status %s)", guardMessage, item.Status), nil)
}
