// Package journal records program runs in a SQL database: when each run
// started, how long it took, its status and result, the lines it printed and
// the diagnostics it reported. SQLite, PostgreSQL and MySQL are supported.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sambeau/benday/pkg/benday/benday"
	"github.com/sambeau/benday/pkg/benday/errors"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// DefaultMaxRuns is how many runs are kept when Config.MaxRuns is zero
const DefaultMaxRuns = 500

// Config holds journal settings
type Config struct {
	Driver  string // sqlite, postgres or mysql (default sqlite)
	DSN     string // data source; a file path for sqlite
	MaxRuns int    // runs to keep; older runs are deleted (default 500)
}

// Run is one recorded run
type Run struct {
	ID          int64                 `json:"id"`
	Started     time.Time             `json:"started"`
	Duration    time.Duration         `json:"duration_ns"`
	Status      string                `json:"status"`
	Result      string                `json:"result,omitempty"`
	Program     string                `json:"program,omitempty"`
	Output      []string              `json:"output"`
	Diagnostics []*errors.BendayError `json:"diagnostics,omitempty"`
}

// Journal is a run recorder backed by database/sql
type Journal struct {
	mu      sync.Mutex
	db      *sql.DB
	driver  string
	maxRuns int
}

// MaxRuns returns how many runs are kept
func (j *Journal) MaxRuns() int { return j.maxRuns }

// Open connects to the journal database and creates its tables.
func Open(ctx context.Context, cfg Config) (*Journal, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}

	dsn := cfg.DSN
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			return nil, fmt.Errorf("journal: sqlite needs a database path")
		}
		if dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, fmt.Errorf("creating journal directory: %w", err)
			}
			dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres, DriverMySQL:
		if dsn == "" {
			return nil, fmt.Errorf("journal: %s needs a dsn", driver)
		}
	default:
		return nil, fmt.Errorf("journal: unknown driver %q (supported: sqlite, postgres, mysql)", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening journal database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to journal database: %w", err)
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	}

	j := &Journal{db: db, driver: driver, maxRuns: cfg.MaxRuns}
	if j.maxRuns <= 0 {
		j.maxRuns = DefaultMaxRuns
	}

	if err := j.createSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}
	return j, nil
}

func (j *Journal) createSchema(ctx context.Context) error {
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	switch j.driver {
	case DriverPostgres:
		id = "BIGSERIAL PRIMARY KEY"
	case DriverMySQL:
		id = "BIGINT AUTO_INCREMENT PRIMARY KEY"
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id ` + id + `,
			started_ms BIGINT NOT NULL,
			duration_us BIGINT NOT NULL,
			status VARCHAR(16) NOT NULL,
			result TEXT NOT NULL,
			program TEXT NOT NULL,
			diagnostics TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS run_lines (
			run_id BIGINT NOT NULL,
			line_no INTEGER NOT NULL,
			line TEXT NOT NULL,
			PRIMARY KEY (run_id, line_no)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := j.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record stores one run and deletes the oldest runs beyond MaxRuns.
// It implements benday.Recorder.
func (j *Journal) Record(ctx context.Context, rec benday.RunRecord) error {
	diags, err := json.Marshal(rec.Diagnostics)
	if err != nil {
		return fmt.Errorf("encoding diagnostics: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	id, err := j.insertRun(ctx, tx, rec, string(diags))
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	for i, line := range rec.Output {
		if _, err := tx.ExecContext(ctx, j.rebind(`INSERT INTO run_lines (run_id, line_no, line) VALUES (?, ?, ?)`), id, i, line); err != nil {
			return fmt.Errorf("inserting output: %w", err)
		}
	}

	if cutoff := id - int64(j.maxRuns); cutoff > 0 {
		if _, err := tx.ExecContext(ctx, j.rebind(`DELETE FROM run_lines WHERE run_id <= ?`), cutoff); err != nil {
			return fmt.Errorf("pruning output: %w", err)
		}
		if _, err := tx.ExecContext(ctx, j.rebind(`DELETE FROM runs WHERE id <= ?`), cutoff); err != nil {
			return fmt.Errorf("pruning runs: %w", err)
		}
	}

	return tx.Commit()
}

func (j *Journal) insertRun(ctx context.Context, tx *sql.Tx, rec benday.RunRecord, diags string) (int64, error) {
	query := `INSERT INTO runs (started_ms, duration_us, status, result, program, diagnostics) VALUES (?, ?, ?, ?, ?, ?)`
	args := []any{rec.Started.UnixMilli(), rec.Duration.Microseconds(), rec.Status, rec.Result, rec.Program, diags}

	if j.driver == DriverPostgres {
		var id int64
		err := tx.QueryRowContext(ctx, j.rebind(query)+" RETURNING id", args...).Scan(&id)
		return id, err
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Runs returns up to limit runs, newest first, without their output.
func (j *Journal) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 100
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.QueryContext(ctx, j.rebind(`
		SELECT id, started_ms, duration_us, status, result, program, diagnostics
		FROM runs
		ORDER BY id DESC
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get returns one run with its output, or sql.ErrNoRows.
func (j *Journal) Get(ctx context.Context, id int64) (*Run, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	row := j.db.QueryRowContext(ctx, j.rebind(`
		SELECT id, started_ms, duration_us, status, result, program, diagnostics
		FROM runs
		WHERE id = ?
	`), id)
	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}

	rows, err := j.db.QueryContext(ctx, j.rebind(`SELECT line FROM run_lines WHERE run_id = ? ORDER BY line_no`), id)
	if err != nil {
		return nil, fmt.Errorf("querying output: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, err
		}
		run.Output = append(run.Output, line)
	}
	return &run, rows.Err()
}

// Count returns the number of stored runs.
func (j *Journal) Count(ctx context.Context) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var n int
	err := j.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&n)
	return n, err
}

// Clear deletes every run.
func (j *Journal) Clear(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.db.ExecContext(ctx, "DELETE FROM run_lines"); err != nil {
		return err
	}
	_, err := j.db.ExecContext(ctx, "DELETE FROM runs")
	return err
}

// Close closes the database connection.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		run        Run
		startedMS  int64
		durationUS int64
		diags      string
	)
	if err := s.Scan(&run.ID, &startedMS, &durationUS, &run.Status, &run.Result, &run.Program, &diags); err != nil {
		return Run{}, err
	}
	run.Started = time.UnixMilli(startedMS).UTC()
	run.Duration = time.Duration(durationUS) * time.Microsecond
	run.Output = []string{}
	if diags != "" && diags != "null" {
		if err := json.Unmarshal([]byte(diags), &run.Diagnostics); err != nil {
			return Run{}, fmt.Errorf("decoding diagnostics of run %d: %w", run.ID, err)
		}
	}
	return run, nil
}

// rebind rewrites ? placeholders as $1, $2, ... for PostgreSQL.
func (j *Journal) rebind(query string) string {
	if j.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
