package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/crawler/internal/crawler"
	"github.com/nao1215/crawler/internal/model"
)

var _ crawler.Recorder = (*RunRecorder)(nil)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *CrawlDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// startTestRun inserts a run starting at startedAt.
func startTestRun(t *testing.T, db *CrawlDB, id string, startedAt time.Time) {
	t.Helper()

	if err := db.StartRun(context.Background(), id, []string{"https://example.test/"}, 4, startedAt); err != nil {
		t.Fatalf("failed to start run: %v", err)
	}
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		want := filepath.Join(dbDir, FileName)
		if db.Path() != want {
			t.Errorf("Path() = %q, want %q", db.Path(), want)
		}
		if _, err := os.Stat(want); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "nonexistent-db")
		_, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err == nil {
			t.Fatal("expected error when CreateIfNotExists=false and database does not exist")
		}
		if !strings.Contains(err.Error(), "database not found") {
			t.Errorf("expected error to contain %q, got %q", "database not found", err.Error())
		}
		if _, statErr := os.Stat(dbDir); !os.IsNotExist(statErr) {
			t.Error("database directory should not have been created when CreateIfNotExists=false")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "existing-db")
		db1, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		startTestRun(t, db1, "run-1", time.Now())
		db1.Close()

		db2, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to open existing database: %v", err)
		}
		defer db2.Close()

		run, err := db2.GetRun(context.Background(), "run-1")
		if err != nil {
			t.Fatalf("expected run to persist: %v", err)
		}
		if run.ID != "run-1" {
			t.Errorf("unexpected run %q", run.ID)
		}
	})

	t.Run("fails when the directory is a file", func(t *testing.T) {
		t.Parallel()

		blocker := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(blocker, nil, 0o600); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}
		if _, err := Open(filepath.Join(blocker, "db"), DefaultOptions()); err == nil {
			t.Error("expected error, got nil")
		}
	})
}

// TestDefaultOptions tests the default options values.
func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	if !opts.CreateIfNotExists {
		t.Error("expected CreateIfNotExists to be true by default")
	}
	if !opts.EnableWAL {
		t.Error("expected EnableWAL to be true by default")
	}
}

func TestRuns(t *testing.T) {
	t.Parallel()

	t.Run("unfinished run has no summary", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		startTestRun(t, db, "run-a", started)

		run, err := db.GetRun(context.Background(), "run-a")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if run.Finished() {
			t.Error("expected run to be unfinished")
		}
		if !run.StartedAt.Equal(started) {
			t.Errorf("StartedAt = %v, want %v", run.StartedAt, started)
		}
		if len(run.Seeds) != 1 || run.Seeds[0] != "https://example.test/" {
			t.Errorf("unexpected seeds %v", run.Seeds)
		}
		if run.MaxDepth != 4 {
			t.Errorf("MaxDepth = %d, want 4", run.MaxDepth)
		}
	})

	t.Run("finish stores the summary", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		startTestRun(t, db, "run-b", started)

		summary := model.NewCrawlSummary([]string{"https://example.test/"}, 4, 512)
		summary.RunID = "run-b"
		summary.StartedAt = started
		summary.FinishedAt = started.Add(3 * time.Second)
		summary.PagesCrawled = 7
		summary.ResourcesFetched = 2
		summary.Interrupted = true

		if err := db.FinishRun(context.Background(), summary); err != nil {
			t.Fatalf("failed to finish run: %v", err)
		}

		run, err := db.GetRun(context.Background(), "run-b")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !run.Finished() {
			t.Fatal("expected run to be finished")
		}
		if !run.Interrupted {
			t.Error("expected interrupted flag")
		}
		if !run.FinishedAt.Equal(summary.FinishedAt) {
			t.Errorf("FinishedAt = %v, want %v", run.FinishedAt, summary.FinishedAt)
		}
		if run.Summary.PagesCrawled != 7 || run.Summary.ResourcesFetched != 2 {
			t.Errorf("unexpected summary %+v", run.Summary)
		}
		if run.Summary.Duration() != 3*time.Second {
			t.Errorf("Duration() = %v, want 3s", run.Summary.Duration())
		}
	})

	t.Run("finish of unknown run fails", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		summary := model.NewCrawlSummary(nil, 1, 1)
		summary.RunID = "missing"
		err := db.FinishRun(context.Background(), summary)
		if !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("get unknown run fails", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		_, err := db.GetRun(context.Background(), "missing")
		if !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("duplicate run id fails", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		startTestRun(t, db, "dup", time.Now())
		if err := db.StartRun(context.Background(), "dup", nil, 1, time.Now()); err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("list returns newest first and honors limit", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		startTestRun(t, db, "old", base)
		startTestRun(t, db, "new", base.Add(time.Hour))
		startTestRun(t, db, "mid", base.Add(time.Minute))

		runs, err := db.ListRuns(context.Background(), 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := make([]string, 0, len(runs))
		for _, run := range runs {
			got = append(got, run.ID)
		}
		if strings.Join(got, ",") != "new,mid,old" {
			t.Errorf("order = %v, want [new mid old]", got)
		}

		limited, err := db.ListRuns(context.Background(), 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(limited) != 2 {
			t.Errorf("expected 2 runs, got %d", len(limited))
		}
	})

	t.Run("list of empty database", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		runs, err := db.ListRuns(context.Background(), 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(runs) != 0 {
			t.Errorf("expected no runs, got %d", len(runs))
		}
	})
}

func TestRunRecorder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	startTestRun(t, db, "run-r", now)
	startTestRun(t, db, "other", now)

	rec := db.Recorder("run-r")
	if rec.RunID() != "run-r" {
		t.Errorf("RunID() = %q", rec.RunID())
	}

	pages := []model.PageVisit{
		{URL: "https://example.test/", Depth: 0, Findings: 3, VisitedAt: now},
		{URL: "https://example.test/down", Depth: 1, Failure: "status", Error: "unexpected status 503", VisitedAt: now.Add(time.Second)},
	}
	for _, p := range pages {
		if err := rec.RecordPage(ctx, p); err != nil {
			t.Fatalf("failed to record page: %v", err)
		}
	}

	digest := strings.Repeat("ab", 32)
	resources := []model.ResourceVisit{
		{URL: "https://example.test/cat.jpg", Path: "archive/res/cat.jpg", Size: 42, Digest: digest, EXIFTags: 5, FetchedAt: now},
		{URL: "https://example.test/", FetchedAt: now},
	}
	for _, r := range resources {
		if err := rec.RecordResource(ctx, r); err != nil {
			t.Fatalf("failed to record resource: %v", err)
		}
	}
	if err := db.Recorder("other").RecordResource(ctx, model.ResourceVisit{URL: "https://mirror.test/cat.jpg", Digest: digest, FetchedAt: now}); err != nil {
		t.Fatalf("failed to record resource: %v", err)
	}

	t.Run("page visits round trip in order", func(t *testing.T) {
		t.Parallel()

		got, err := db.PageVisits(ctx, "run-r")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != len(pages) {
			t.Fatalf("expected %d visits, got %d", len(pages), len(got))
		}
		for i := range pages {
			if got[i].URL != pages[i].URL || got[i].Depth != pages[i].Depth || got[i].Findings != pages[i].Findings {
				t.Errorf("visit %d = %+v, want %+v", i, got[i], pages[i])
			}
			if got[i].Error != pages[i].Error || got[i].Failure != pages[i].Failure {
				t.Errorf("visit %d error = %q/%q", i, got[i].Failure, got[i].Error)
			}
			if !got[i].VisitedAt.Equal(pages[i].VisitedAt) {
				t.Errorf("visit %d time = %v", i, got[i].VisitedAt)
			}
		}
		if got[1].Succeeded() {
			t.Error("expected second visit to be a failure")
		}
	})

	t.Run("resource visits round trip", func(t *testing.T) {
		t.Parallel()

		got, err := db.ResourceVisits(ctx, "run-r")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 visits, got %d", len(got))
		}
		if got[0].Path != "archive/res/cat.jpg" || got[0].Size != 42 || got[0].Digest != digest || got[0].EXIFTags != 5 {
			t.Errorf("unexpected visit %+v", got[0])
		}
		if !got[1].Skipped() {
			t.Errorf("expected second visit to be skipped, got %+v", got[1])
		}
	})

	t.Run("visits of unknown run are empty", func(t *testing.T) {
		t.Parallel()

		got, err := db.PageVisits(ctx, "missing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected no visits, got %d", len(got))
		}
	})

	t.Run("resources are found by digest across runs", func(t *testing.T) {
		t.Parallel()

		urls, err := db.FindResourcesByDigest(ctx, digest)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"https://example.test/cat.jpg", "https://mirror.test/cat.jpg"}
		if strings.Join(urls, " ") != strings.Join(want, " ") {
			t.Errorf("urls = %v, want %v", urls, want)
		}
	})
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "written layout",
			input: formatTimestamp(time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC)),
			want:  time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC),
		},
		{
			name:  "sqlite default",
			input: "2024-01-02 03:04:05",
			want:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		{
			name:  "garbage",
			input: "yesterday",
			want:  time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := parseTimestamp(tt.input); !got.Equal(tt.want) {
				t.Errorf("parseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
