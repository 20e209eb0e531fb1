package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

// FileName is the name of the database file inside its directory.
const FileName = "cnesreport.db"

// timestampLayout is fixed width so that stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned when no run matches a query.
var ErrRunNotFound = errors.New("export run not found")

// RunDB stores export runs.
type RunDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RunDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the RunDB stored in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return rdb, nil
}

// Path returns the path of the database file.
func (rdb *RunDB) Path() string {
	return rdb.dbPath
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

func (rdb *RunDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS export_runs (
		id TEXT PRIMARY KEY,
		project_key TEXT NOT NULL,
		branch TEXT NOT NULL DEFAULT '',
		timestamp TEXT NOT NULL,
		formats_ok TEXT NOT NULL,
		formats_failed TEXT NOT NULL,
		archive TEXT NOT NULL DEFAULT '',
		digest TEXT NOT NULL DEFAULT '',
		issue_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_project ON export_runs(project_key);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON export_runs(timestamp);
	`
	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// Run is one recorded export run.
type Run struct {
	ID         string
	ProjectKey string
	Branch     string
	Timestamp  time.Time

	// FormatsOK lists the produced formats.
	FormatsOK []string
	// FormatsFailed maps each failed format to its error message.
	FormatsFailed map[string]string

	Archive    string
	Digest     string
	IssueCount int
}

// Failed reports whether at least one format failed.
func (r *Run) Failed() bool {
	return len(r.FormatsFailed) > 0
}

// SaveRun stores run. A missing ID or timestamp is filled in.
func (rdb *RunDB) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now()
	}
	run.Timestamp = run.Timestamp.UTC()

	ok := run.FormatsOK
	if ok == nil {
		ok = []string{}
	}
	okJSON, err := json.Marshal(ok)
	if err != nil {
		return fmt.Errorf("failed to serialize formats: %w", err)
	}
	failed := run.FormatsFailed
	if failed == nil {
		failed = map[string]string{}
	}
	failedJSON, err := json.Marshal(failed)
	if err != nil {
		return fmt.Errorf("failed to serialize failures: %w", err)
	}

	query := `
	INSERT INTO export_runs (id, project_key, branch, timestamp, formats_ok, formats_failed, archive, digest, issue_count)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = rdb.db.ExecContext(ctx, query,
		run.ID,
		run.ProjectKey,
		run.Branch,
		run.Timestamp.Format(timestampLayout),
		string(okJSON),
		string(failedJSON),
		run.Archive,
		run.Digest,
		run.IssueCount,
	)
	if err != nil {
		return fmt.Errorf("failed to save export run: %w", err)
	}
	return nil
}

const selectRuns = `
	SELECT id, project_key, branch, timestamp, formats_ok, formats_failed, archive, digest, issue_count
	FROM export_runs
	`

// ListRuns returns the runs of a project, most recent first. An empty
// projectKey lists the runs of every project.
func (rdb *RunDB) ListRuns(ctx context.Context, projectKey string) ([]Run, error) {
	query := selectRuns
	var args []any
	if projectKey != "" {
		query += " WHERE project_key = ?"
		args = append(args, projectKey)
	}
	query += " ORDER BY timestamp DESC, id"

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query export runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LatestRun returns the most recent run of a project.
func (rdb *RunDB) LatestRun(ctx context.Context, projectKey string) (*Run, error) {
	row := rdb.db.QueryRowContext(ctx, selectRuns+" WHERE project_key = ? ORDER BY timestamp DESC, id LIMIT 1", projectKey)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, projectKey)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListProjects returns the keys of every project with a recorded run, sorted.
func (rdb *RunDB) ListProjects(ctx context.Context) ([]string, error) {
	rows, err := rdb.db.QueryContext(ctx, "SELECT DISTINCT project_key FROM export_runs ORDER BY project_key")
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var projects []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, key)
	}
	return projects, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		run        Run
		timestamp  string
		okJSON     string
		failedJSON string
	)
	err := s.Scan(
		&run.ID,
		&run.ProjectKey,
		&run.Branch,
		&timestamp,
		&okJSON,
		&failedJSON,
		&run.Archive,
		&run.Digest,
		&run.IssueCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return run, err
		}
		return run, fmt.Errorf("failed to scan export run: %w", err)
	}
	run.Timestamp = parseTimestamp(timestamp)
	if err := json.Unmarshal([]byte(okJSON), &run.FormatsOK); err != nil {
		return run, fmt.Errorf("failed to parse formats of run %s: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(failedJSON), &run.FormatsFailed); err != nil {
		return run, fmt.Errorf("failed to parse failures of run %s: %w", run.ID, err)
	}
	return run, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05", // SQLite default datetime format
	"2006-01-02T15:04:05",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
