// Package storage persists check reports in SQLite so that runs can be
// compared over time.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mvp-joe/stubcheck/internal/model"
	"github.com/mvp-joe/stubcheck/internal/reconcile"
)

// Store reads and writes reports.
type Store struct {
	db *sql.DB
}

// Run is the summary row of one saved report.
type Run struct {
	ID           string
	StartedAt    time.Time
	PHPVersion   string
	StubRoot     string
	StubRevision string
	StubBranch   string
	Checked      int
	Problems     int
	Muted        int
	Failures     int
}

// RunMeta describes the inputs of a report.
type RunMeta struct {
	StartedAt    time.Time
	PHPVersion   string
	StubRoot     string
	StubRevision string // git HEAD of the stub repository, if any
	StubBranch   string
}

// StoredProblem is a problem read back from the store.
type StoredProblem struct {
	reconcile.Problem
	Muted bool
}

// Open opens (creating if needed) the database at path.
// ":memory:" opens a private in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases consistent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveReport writes report in one transaction and returns the new run ID.
func (s *Store) SaveReport(ctx context.Context, report *reconcile.Report, meta RunMeta) (string, error) {
	runID := uuid.New().String()
	if meta.StartedAt.IsZero() {
		meta.StartedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	_, err = sq.Insert("runs").
		Columns("run_id", "started_at", "php_version", "stub_root", "stub_revision", "stub_branch",
			"checked", "problem_count", "muted_count", "failure_count").
		Values(runID, meta.StartedAt.UTC().Format(time.RFC3339Nano), meta.PHPVersion, meta.StubRoot,
			meta.StubRevision, meta.StubBranch,
			report.Checked, len(report.Problems), len(report.Muted), len(report.Failures)).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to write run: %w", err)
	}

	seq := 0
	insertProblems := func(problems []reconcile.Problem, muted bool) error {
		for _, p := range problems {
			seq++
			_, err := sq.Insert("problems").
				Columns("run_id", "seq", "function_name", "code", "detail", "muted").
				Values(runID, seq, p.Function, int(p.Code), p.Detail, muted).
				RunWith(tx).
				ExecContext(ctx)
			if err != nil {
				return fmt.Errorf("failed to write problem for %s: %w", p.Function, err)
			}
		}
		return nil
	}
	if err := insertProblems(report.Problems, false); err != nil {
		return "", err
	}
	if err := insertProblems(report.Muted, true); err != nil {
		return "", err
	}

	for i, f := range report.Failures {
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		_, err := sq.Insert("failures").
			Columns("run_id", "seq", "function_name", "source", "message").
			Values(runID, i+1, f.Function, string(f.Source), msg).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to write failure for %s: %w", f.Function, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit report: %w", err)
	}
	return runID, nil
}

// Runs lists saved runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := sq.Select("run_id", "started_at", "php_version", "stub_root", "stub_revision", "stub_branch",
		"checked", "problem_count", "muted_count", "failure_count").
		From("runs").
		OrderBy("started_at DESC").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		var startedAt string
		if err := rows.Scan(&r.ID, &startedAt, &r.PHPVersion, &r.StubRoot, &r.StubRevision, &r.StubBranch, &r.Checked, &r.Problems, &r.Muted, &r.Failures); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LoadProblems returns the problems of a run in report order, unmuted first.
func (s *Store) LoadProblems(ctx context.Context, runID string) ([]StoredProblem, error) {
	rows, err := sq.Select("function_name", "code", "detail", "muted").
		From("problems").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("seq").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query problems for run %s: %w", runID, err)
	}
	defer rows.Close()

	problems := []StoredProblem{}
	for rows.Next() {
		var p StoredProblem
		var code int
		if err := rows.Scan(&p.Function, &code, &p.Detail, &p.Muted); err != nil {
			return nil, fmt.Errorf("failed to scan problem: %w", err)
		}
		p.Code = model.ProblemCode(code)
		problems = append(problems, p)
	}
	return problems, rows.Err()
}
