package history

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if err := store.BeginRun(ctx, "run-1", KindPublish, start); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	outcomes := []FileOutcome{
		{RunID: "run-1", UID: "my-photo", Kind: "image", Source: "/w/my-photo.png", Status: FilePublished,
			Keys: []string{"my-photo.png", "my-photo_w200.png"}},
		{RunID: "run-1", UID: "broken", Kind: "image", Source: "/w/broken.png", Status: FileFailed, Error: "decode image"},
	}
	for _, outcome := range outcomes {
		if err := store.RecordFile(ctx, outcome); err != nil {
			t.Fatalf("RecordFile: %v", err)
		}
	}
	if err := store.FinishRun(ctx, Run{
		ID: "run-1", Status: StatusCompleted, FinishedAt: start.Add(3 * time.Second),
		Processed: 1, Total: 2, Failed: 1, Summary: "Successfully processed and uploaded 1 out of 2 files.",
	}); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	run := runs[0]
	if run.Status != StatusCompleted || run.Processed != 1 || run.Total != 2 || run.Failed != 1 {
		t.Fatalf("unexpected run %+v", run)
	}
	if run.Duration() != 3*time.Second {
		t.Fatalf("unexpected duration %s", run.Duration())
	}

	files, err := store.FilesForRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("FilesForRun: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(files))
	}
	if len(files[0].Keys) != 2 || files[0].Keys[1] != "my-photo_w200.png" {
		t.Fatalf("unexpected keys %v", files[0].Keys)
	}
	if files[1].Status != FileFailed || files[1].Error != "decode image" || files[1].Keys != nil {
		t.Fatalf("unexpected failure outcome %+v", files[1])
	}
}

func TestRecentRunsNewestFirstAndPrefixLookup(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ids := []string{"aaaa-1", "bbbb-2", "bbbb-3"}
	for i, id := range ids {
		if err := store.BeginRun(ctx, id, KindMirror, base.Add(time.Duration(i)*time.Millisecond*150)); err != nil {
			t.Fatalf("BeginRun: %v", err)
		}
	}
	runs, err := store.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "bbbb-3" || runs[1].ID != "bbbb-2" {
		t.Fatalf("unexpected order %+v", runs)
	}
	if !runs[0].FinishedAt.IsZero() || runs[0].Status != StatusRunning {
		t.Fatalf("expected unfinished run, got %+v", runs[0])
	}

	run, err := store.GetRun(ctx, "aaaa")
	if err != nil || run.ID != "aaaa-1" {
		t.Fatalf("GetRun prefix = %+v, %v", run, err)
	}
	if _, err := store.GetRun(ctx, "bbbb"); err == nil {
		t.Fatal("expected ambiguous prefix error")
	}
	if _, err := store.GetRun(ctx, "zzzz"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
}

func TestPruneCascadesFiles(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	old := time.Now().AddDate(0, 0, -40)
	if err := store.BeginRun(ctx, "old", KindPublish, old); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordFile(ctx, FileOutcome{RunID: "old", UID: "x", Kind: "file", Source: "/x", Status: FilePublished}); err != nil {
		t.Fatal(err)
	}
	if err := store.BeginRun(ctx, "new", KindPublish, time.Now()); err != nil {
		t.Fatal(err)
	}

	removed, err := store.Prune(ctx, time.Now().AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 pruned run, got %d", removed)
	}
	files, err := store.FilesForRun(ctx, "old")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Fatalf("expected cascade delete, got %d files", len(files))
	}
}

func TestReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	first, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.BeginRun(context.Background(), "r", KindPublish, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}
	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	runs, err := second.RecentRuns(context.Background(), 5)
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected persisted run, got %v %v", runs, err)
	}
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
