// Package store keeps a history of benchmark runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"psv/internal/bench"
	"psv/internal/logging"
)

// HistoryStore records benchmark summaries and their failed trials.
type HistoryStore struct {
	db     *sql.DB
	mu     sync.Mutex
	dbPath string
}

// FailureRecord is a failed trial as stored.
type FailureRecord struct {
	RunID        string
	Trial        int
	Reason       bench.FailureReason
	Message      string
	Numbers      []int
	Instructions string
}

// Open initializes the database at path. ":memory:" gives a throwaway store.
func Open(path string) (*HistoryStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection, or every ":memory:" connection gets its own database
	db.SetMaxOpenConns(1)

	s := &HistoryStore{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	logging.StoreDebug("Opened history store at %s", path)
	return s, nil
}

func (s *HistoryStore) initialize() error {
	runsTable := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		executable TEXT NOT NULL,
		strategy TEXT,
		length INTEGER NOT NULL,
		trials INTEGER NOT NULL,
		workers INTEGER NOT NULL,
		completed INTEGER NOT NULL,
		successes INTEGER NOT NULL,
		failures INTEGER NOT NULL,
		min_count INTEGER,
		max_count INTEGER,
		avg_count REAL,
		cancelled INTEGER NOT NULL DEFAULT 0,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`

	failuresTable := `
	CREATE TABLE IF NOT EXISTS trial_failures (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		trial INTEGER NOT NULL,
		reason TEXT NOT NULL,
		message TEXT,
		numbers TEXT,
		instructions TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_failures_run ON trial_failures(run_id);
	`

	for _, table := range []string{runsTable, failuresTable} {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}

// SaveRun records a summary and the failed trials among results in one
// transaction.
func (s *HistoryStore) SaveRun(ctx context.Context, sum *bench.Summary, results []bench.TrialResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (run_id, executable, strategy, length, trials, workers,
			completed, successes, failures, min_count, max_count, avg_count, cancelled, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.RunID, sum.Executable, sum.Strategy, sum.Length, sum.Trials, sum.Workers,
		sum.Completed, sum.Successes, sum.Failures,
		nullInt(sum.Min), nullInt(sum.Max), nullFloat(sum.Average),
		sum.Cancelled, sum.StartedAt.UTC(), sum.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stored := 0
	for _, r := range results {
		if r.Success || r.Failure == nil {
			continue
		}
		f := r.Failure
		numbers, _ := json.Marshal([]int(f.Numbers))
		tokens := make([]byte, 0, len(f.Instructions)*3)
		for i, ins := range f.Instructions {
			if i > 0 {
				tokens = append(tokens, ' ')
			}
			tokens = append(tokens, ins.String()...)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO trial_failures (run_id, trial, reason, message, numbers, instructions) VALUES (?, ?, ?, ?, ?, ?)",
			sum.RunID, r.Trial, string(f.Reason), f.Message, string(numbers), string(tokens),
		); err != nil {
			return fmt.Errorf("failed to insert trial failure: %w", err)
		}
		stored++
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logging.Store("Saved run %s (%d failures)", sum.RunID, stored)
	return nil
}

// RecentRuns returns the latest runs, newest first.
func (s *HistoryStore) RecentRuns(ctx context.Context, limit int) ([]bench.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, executable, strategy, length, trials, workers, completed, successes, failures,
			min_count, max_count, avg_count, cancelled, started_at, duration_ms
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []bench.Summary
	for rows.Next() {
		var (
			sum        bench.Summary
			strategy   sql.NullString
			minC, maxC sql.NullInt64
			avg        sql.NullFloat64
			durationMs int64
		)
		if err := rows.Scan(&sum.RunID, &sum.Executable, &strategy, &sum.Length, &sum.Trials, &sum.Workers,
			&sum.Completed, &sum.Successes, &sum.Failures, &minC, &maxC, &avg,
			&sum.Cancelled, &sum.StartedAt, &durationMs); err != nil {
			return nil, err
		}
		sum.Strategy = strategy.String
		sum.Duration = time.Duration(durationMs) * time.Millisecond
		if minC.Valid {
			v := int(minC.Int64)
			sum.Min = &v
		}
		if maxC.Valid {
			v := int(maxC.Int64)
			sum.Max = &v
		}
		if avg.Valid {
			v := avg.Float64
			sum.Average = &v
		}
		runs = append(runs, sum)
	}
	return runs, rows.Err()
}

// Failures returns the stored failed trials of a run in trial order.
func (s *HistoryStore) Failures(ctx context.Context, runID string) ([]FailureRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT run_id, trial, reason, message, numbers, instructions FROM trial_failures WHERE run_id = ? ORDER BY trial",
		runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FailureRecord
	for rows.Next() {
		var (
			rec           FailureRecord
			reason        string
			message, nums sql.NullString
			instructions  sql.NullString
		)
		if err := rows.Scan(&rec.RunID, &rec.Trial, &reason, &message, &nums, &instructions); err != nil {
			return nil, err
		}
		rec.Reason = bench.FailureReason(reason)
		rec.Message = message.String
		rec.Instructions = instructions.String
		if nums.Valid && nums.String != "" {
			if err := json.Unmarshal([]byte(nums.String), &rec.Numbers); err != nil {
				return nil, fmt.Errorf("trial %d: corrupt numbers: %w", rec.Trial, err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
