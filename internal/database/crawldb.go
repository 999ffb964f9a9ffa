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

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/crawler/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "crawler.db"

// ErrRunNotFound is returned when a run ID has no row in the runs table.
var ErrRunNotFound = errors.New("run not found")

// CrawlDB stores crawl runs and their per-task visits.
type CrawlDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures CrawlDB behavior.
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

// Open opens or creates the crawl history database in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
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

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Path returns the database file path.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- One row per crawl run; summary_json is filled when the run finishes
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seeds TEXT NOT NULL,
		max_depth INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		interrupted INTEGER NOT NULL DEFAULT 0,
		summary_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	CREATE TABLE IF NOT EXISTS page_visits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		url TEXT NOT NULL,
		depth INTEGER NOT NULL,
		findings INTEGER NOT NULL,
		failure TEXT,
		error TEXT,
		visited_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_page_visits_run ON page_visits(run_id);

	CREATE TABLE IF NOT EXISTS resource_visits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		url TEXT NOT NULL,
		path TEXT,
		size INTEGER NOT NULL,
		digest TEXT,
		exif_tags INTEGER NOT NULL,
		failure TEXT,
		error TEXT,
		fetched_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_resource_visits_run ON resource_visits(run_id);
	CREATE INDEX IF NOT EXISTS idx_resource_visits_digest ON resource_visits(digest);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// StartRun inserts a run row before the crawl begins.
func (cdb *CrawlDB) StartRun(ctx context.Context, id string, seeds []string, maxDepth int, startedAt time.Time) error {
	seedsJSON, err := json.Marshal(seeds)
	if err != nil {
		return fmt.Errorf("failed to serialize seeds: %w", err)
	}

	query := `
	INSERT INTO runs (id, seeds, max_depth, started_at)
	VALUES (?, ?, ?, ?)
	`
	if _, err := cdb.db.ExecContext(ctx, query, id, string(seedsJSON), maxDepth, formatTimestamp(startedAt)); err != nil {
		return fmt.Errorf("failed to start run: %w", err)
	}
	return nil
}

// FinishRun stores the final summary of the run summary.RunID.
func (cdb *CrawlDB) FinishRun(ctx context.Context, summary *model.CrawlSummary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to serialize summary: %w", err)
	}

	query := `
	UPDATE runs SET finished_at = ?, interrupted = ?, summary_json = ?
	WHERE id = ?
	`
	result, err := cdb.db.ExecContext(ctx, query,
		formatTimestamp(summary.FinishedAt),
		summary.Interrupted,
		string(summaryJSON),
		summary.RunID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, summary.RunID)
	}
	return nil
}

// RunRecord is one row of the runs table.
type RunRecord struct {
	ID          string
	Seeds       []string
	MaxDepth    int
	StartedAt   time.Time
	FinishedAt  time.Time
	Interrupted bool

	// Summary is nil while the run has not finished.
	Summary *model.CrawlSummary
}

// Finished reports whether FinishRun was called for the run.
func (r RunRecord) Finished() bool {
	return r.Summary != nil
}

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (cdb *CrawlDB) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
	SELECT id, seeds, max_depth, started_at, finished_at, interrupted, summary_json
	FROM runs
	ORDER BY started_at DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun returns the run with the given ID.
// It returns ErrRunNotFound when there is no such run.
func (cdb *CrawlDB) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	query := `
	SELECT id, seeds, max_depth, started_at, finished_at, interrupted, summary_json
	FROM runs
	WHERE id = ?
	`
	run, err := scanRun(cdb.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*RunRecord, error) {
	var (
		run         RunRecord
		seedsJSON   string
		startedAt   string
		finishedAt  sql.NullString
		summaryJSON sql.NullString
	)
	err := s.Scan(&run.ID, &seedsJSON, &run.MaxDepth, &startedAt, &finishedAt, &run.Interrupted, &summaryJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	if err := json.Unmarshal([]byte(seedsJSON), &run.Seeds); err != nil {
		return nil, fmt.Errorf("failed to parse seeds of run %s: %w", run.ID, err)
	}
	run.StartedAt = parseTimestamp(startedAt)
	if finishedAt.Valid {
		run.FinishedAt = parseTimestamp(finishedAt.String)
	}
	if summaryJSON.Valid && summaryJSON.String != "" {
		var summary model.CrawlSummary
		if err := json.Unmarshal([]byte(summaryJSON.String), &summary); err != nil {
			return nil, fmt.Errorf("failed to parse summary of run %s: %w", run.ID, err)
		}
		run.Summary = &summary
	}
	return &run, nil
}

// InsertPageVisit stores the outcome of one spider task of run runID.
func (cdb *CrawlDB) InsertPageVisit(ctx context.Context, runID string, visit model.PageVisit) error {
	query := `
	INSERT INTO page_visits (run_id, url, depth, findings, failure, error, visited_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := cdb.db.ExecContext(ctx, query,
		runID,
		visit.URL,
		visit.Depth,
		visit.Findings,
		nullString(visit.Failure),
		nullString(visit.Error),
		formatTimestamp(visit.VisitedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert page visit: %w", err)
	}
	return nil
}

// InsertResourceVisit stores the outcome of one fetch task of run runID.
func (cdb *CrawlDB) InsertResourceVisit(ctx context.Context, runID string, visit model.ResourceVisit) error {
	query := `
	INSERT INTO resource_visits (run_id, url, path, size, digest, exif_tags, failure, error, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := cdb.db.ExecContext(ctx, query,
		runID,
		visit.URL,
		nullString(visit.Path),
		visit.Size,
		nullString(visit.Digest),
		visit.EXIFTags,
		nullString(visit.Failure),
		nullString(visit.Error),
		formatTimestamp(visit.FetchedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert resource visit: %w", err)
	}
	return nil
}

// PageVisits returns the page visits of a run in harvest order.
func (cdb *CrawlDB) PageVisits(ctx context.Context, runID string) ([]model.PageVisit, error) {
	query := `
	SELECT url, depth, findings, failure, error, visited_at
	FROM page_visits
	WHERE run_id = ?
	ORDER BY id
	`
	rows, err := cdb.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query page visits: %w", err)
	}
	defer rows.Close()

	var visits []model.PageVisit
	for rows.Next() {
		var (
			visit     model.PageVisit
			failure   sql.NullString
			errMsg    sql.NullString
			visitedAt string
		)
		if err := rows.Scan(&visit.URL, &visit.Depth, &visit.Findings, &failure, &errMsg, &visitedAt); err != nil {
			return nil, fmt.Errorf("failed to scan page visit: %w", err)
		}
		visit.Failure = failure.String
		visit.Error = errMsg.String
		visit.VisitedAt = parseTimestamp(visitedAt)
		visits = append(visits, visit)
	}
	return visits, rows.Err()
}

// ResourceVisits returns the resource visits of a run in harvest order.
func (cdb *CrawlDB) ResourceVisits(ctx context.Context, runID string) ([]model.ResourceVisit, error) {
	query := `
	SELECT url, path, size, digest, exif_tags, failure, error, fetched_at
	FROM resource_visits
	WHERE run_id = ?
	ORDER BY id
	`
	rows, err := cdb.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query resource visits: %w", err)
	}
	defer rows.Close()

	var visits []model.ResourceVisit
	for rows.Next() {
		var (
			visit     model.ResourceVisit
			path      sql.NullString
			digest    sql.NullString
			failure   sql.NullString
			errMsg    sql.NullString
			fetchedAt string
		)
		err := rows.Scan(&visit.URL, &path, &visit.Size, &digest, &visit.EXIFTags, &failure, &errMsg, &fetchedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resource visit: %w", err)
		}
		visit.Path = path.String
		visit.Digest = digest.String
		visit.Failure = failure.String
		visit.Error = errMsg.String
		visit.FetchedAt = parseTimestamp(fetchedAt)
		visits = append(visits, visit)
	}
	return visits, rows.Err()
}

// FindResourcesByDigest returns the URLs of successfully fetched resources
// whose body had the given digest, across all runs.
func (cdb *CrawlDB) FindResourcesByDigest(ctx context.Context, digest string) ([]string, error) {
	query := `
	SELECT DISTINCT url FROM resource_visits
	WHERE digest = ?
	ORDER BY url
	`
	rows, err := cdb.db.QueryContext(ctx, query, digest)
	if err != nil {
		return nil, fmt.Errorf("failed to query resources by digest: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan resource url: %w", err)
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// Recorder returns a sink that stores visits under runID.
func (cdb *CrawlDB) Recorder(runID string) *RunRecorder {
	return &RunRecorder{db: cdb, runID: runID}
}

// RunRecorder writes the visits of one run. It satisfies crawler.Recorder.
type RunRecorder struct {
	db    *CrawlDB
	runID string
}

// RunID returns the run the recorder writes to.
func (r *RunRecorder) RunID() string {
	return r.runID
}

// RecordPage stores a page visit.
func (r *RunRecorder) RecordPage(ctx context.Context, visit model.PageVisit) error {
	return r.db.InsertPageVisit(ctx, r.runID, visit)
}

// RecordResource stores a resource visit.
func (r *RunRecorder) RecordResource(ctx context.Context, visit model.ResourceVisit) error {
	return r.db.InsertResourceVisit(ctx, r.runID, visit)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// timestampLayout is how times are written. RFC 3339 strings in UTC sort
// chronologically as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats that may be read back.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp tries each known format and returns the zero time when
// none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
