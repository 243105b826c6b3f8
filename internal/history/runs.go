package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const runColumns = "id, kind, album_id, status, started_at, finished_at, total, downloaded, processed, skipped, errors"

// BeginRun inserts a new running row and returns it.
func (s *Store) BeginRun(ctx context.Context, kind, albumID string) (*Run, error) {
	if kind == "" {
		kind = KindBackup
	}
	run := &Run{
		ID:        uuid.NewString(),
		Kind:      kind,
		AlbumID:   albumID,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}

	err := s.execWithRetry(ctx,
		`INSERT INTO runs (id, kind, album_id, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Kind, run.AlbumID, run.Status, run.StartedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun stamps the end of a run with its final status and counters.
func (s *Store) FinishRun(ctx context.Context, runID, status string, total, downloaded, processed, skipped, errored int) error {
	err := s.execWithRetry(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, total = ?, downloaded = ?, processed = ?, skipped = ?, errors = ?
         WHERE id = ?`,
		status, time.Now().UTC().Format(time.RFC3339Nano),
		total, downloaded, processed, skipped, errored,
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecordItem appends one settled item to a run.
func (s *Store) RecordItem(ctx context.Context, runID, itemID, filename, outcome, errorMessage string) error {
	err := s.execWithRetry(ctx,
		`INSERT INTO run_items (run_id, item_id, filename, outcome, error_message, recorded_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		runID, itemID, filename, outcome, errorMessage,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record item: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LastRun returns the most recently started run, or nil when history is empty.
func (s *Store) LastRun(ctx context.Context) (*Run, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ItemsForRun returns the settled items of a run in recording order.
func (s *Store) ItemsForRun(ctx context.Context, runID string) ([]RunItem, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT id, run_id, item_id, filename, outcome, error_message, recorded_at
         FROM run_items WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run items: %w", err)
	}
	defer rows.Close()

	var items []RunItem
	for rows.Next() {
		var item RunItem
		var recordedAt string
		if err := rows.Scan(&item.ID, &item.RunID, &item.ItemID, &item.Filename,
			&item.Outcome, &item.ErrorMessage, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan run item: %w", err)
		}
		item.RecordedAt = parseTimestamp(recordedAt)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run items: %w", err)
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var startedAt string
	var finishedAt sql.NullString
	if err := row.Scan(&run.ID, &run.Kind, &run.AlbumID, &run.Status,
		&startedAt, &finishedAt,
		&run.Total, &run.Downloaded, &run.Processed, &run.Skipped, &run.Errors); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = parseTimestamp(startedAt)
	if finishedAt.Valid && finishedAt.String != "" {
		t := parseTimestamp(finishedAt.String)
		run.FinishedAt = &t
	}
	return &run, nil
}

func parseTimestamp(value string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Time{}
}
