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

// insertScript appends the next script version for an item inside tx. The
// version subquery runs under the transaction and the UNIQUE constraint on
// (queue_item_id, version) backstops any writer that slips past it, so the
// dense 1..N sequence survives concurrent submissions.
func insertScript(ctx context.Context, tx *sql.Tx, id, queueItemID, content, submittedBy string, now time.Time) error {
	_, err := tx.ExecContext(
		ctx,
		`INSERT INTO scripts (id, queue_item_id, content, submitted_by, version, created_at)
         SELECT ?, ?, ?, ?, COALESCE(MAX(version), 0) + 1, ?
         FROM scripts WHERE queue_item_id = ?`,
		id,
		queueItemID,
		content,
		submittedBy,
		now.Format(timeLayout),
		queueItemID,
	)
	if err != nil {
		return fmt.Errorf("insert script: %w", err)
	}
	return nil
}

// AppendScript records a new script version for an item outside of the
// completion flow (the admin edit-and-resubmit path). Scripts are never
// mutated or deleted; corrections always append.
func (s *Store) AppendScript(ctx context.Context, queueItemID, content, submittedBy string) (*Script, error) {
	if strings.TrimSpace(content) == "" {
		return nil, services.Wrap(services.ErrValidation, "scripts", "append", "content is required", nil)
	}
	if strings.TrimSpace(submittedBy) == "" {
		return nil, services.Wrap(services.ErrValidation, "scripts", "append", "submitter is required", nil)
	}

	item, err := s.GetByID(ctx, queueItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, services.Wrap(services.ErrNotFound, "scripts", "append", "no such item", nil)
	}

	ctx = ensureContext(ctx)
	now := time.Now().UTC()
	scriptID := uuid.New().String()

	err = retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if err := insertScript(ctx, tx, scriptID, queueItemID, content, submittedBy, now); err != nil {
			return err
		}

		return tx.Commit()
	})
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "scripts", "append", "record version", err)
	}

	s.publish(watch.OpUpdate, queueItemID)
	return s.getScript(ctx, scriptID)
}

// ListScripts returns every version for an item, latest first.
func (s *Store) ListScripts(ctx context.Context, queueItemID string) ([]*Script, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+scriptColumns+` FROM scripts WHERE queue_item_id = ? ORDER BY version DESC`,
		queueItemID,
	)
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "scripts", "list", "query versions", err)
	}
	defer rows.Close()

	var scripts []*Script
	for rows.Next() {
		script, err := scanScript(rows)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, script)
	}
	return scripts, rows.Err()
}

// LatestScript returns the current (highest) version for an item, or nil when
// no script has been submitted.
func (s *Store) LatestScript(ctx context.Context, queueItemID string) (*Script, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT `+scriptColumns+` FROM scripts WHERE queue_item_id = ? ORDER BY version DESC LIMIT 1`,
		queueItemID,
	)
	script, err := scanScript(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "scripts", "latest", "scan version", err)
	}
	return script, nil
}

func (s *Store) getScript(ctx context.Context, id string) (*Script, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+scriptColumns+` FROM scripts WHERE id = ?`, id)
	script, err := scanScript(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "scripts", "get", "scan version", err)
	}
	return script, nil
}
