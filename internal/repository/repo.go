package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sonroyaalmerol/kumaplay/internal/acquire"
)

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Close() error { return r.db.Close() }

// SaveRun stores a finished acquisition report and its items.
func (r *Repo) SaveRun(ctx context.Context, rep *acquire.Report) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	batchErr := ""
	if rep.BatchErr != nil {
		batchErr = rep.BatchErr.Error()
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO acquisition_runs(id, reference, title, profile, used_fallback,
		    succeeded, failed, batch_error, started_at, finished_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		rep.RunID, string(rep.Reference), rep.Title, rep.Profile, boolToInt(rep.UsedFallback),
		rep.Succeeded, rep.Failed, batchErr, rep.StartedAt.UnixMilli(), rep.FinishedAt.UnixMilli(),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO acquisition_items(run_id, position, label, status, profile, path, error)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, it := range rep.Items {
		itemErr := ""
		if it.Err != nil {
			itemErr = it.Err.Error()
		}
		if _, err := stmt.ExecContext(ctx, rep.RunID, i, it.Label, it.Status.String(),
			it.Profile, strings.Join(it.Paths, "\n"), itemErr); err != nil {
			return fmt.Errorf("insert item %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// RecentRuns returns up to limit runs, newest first.
func (r *Repo) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, reference, title, profile, used_fallback, succeeded, failed,
		       batch_error, started_at, finished_at
		FROM acquisition_runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		var fallback int
		var started, finished int64
		if err := rows.Scan(&run.ID, &run.Reference, &run.Title, &run.Profile, &fallback,
			&run.Succeeded, &run.Failed, &run.BatchError, &started, &finished); err != nil {
			return nil, err
		}
		run.UsedFallback = fallback != 0
		run.StartedAt = time.UnixMilli(started)
		run.FinishedAt = time.UnixMilli(finished)
		out = append(out, run)
	}
	return out, rows.Err()
}

// RunItems returns the items of one run in playlist order.
func (r *Repo) RunItems(ctx context.Context, runID string) ([]RunItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT run_id, position, label, status, profile, path, error
		FROM acquisition_items WHERE run_id = ?
		ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunItem
	for rows.Next() {
		var it RunItem
		var paths string
		if err := rows.Scan(&it.RunID, &it.Position, &it.Label, &it.Status, &it.Profile, &paths, &it.Error); err != nil {
			return nil, err
		}
		if paths != "" {
			it.Paths = strings.Split(paths, "\n")
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
