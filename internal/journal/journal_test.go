package journal_test

import (
	"context"
	"testing"

	"lectern/internal/journal"
)

func openJournal(t *testing.T) *journal.Journal {
	t.Helper()
	j, err := journal.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestRecordAndFindByFingerprint(t *testing.T) {
	j := openJournal(t)
	ctx := context.Background()

	entry, err := j.RecordCompleted(ctx, "/in/2024-05-06_13-05-00_1.mp3", "abc123", "Linear Algebra", "/archives/2024-05-06_13-05-00_1")
	if err != nil {
		t.Fatalf("RecordCompleted: %v", err)
	}
	if entry.ID == 0 || entry.Status != journal.StatusCompleted {
		t.Fatalf("unexpected entry %+v", entry)
	}

	found, err := j.FindByFingerprint(ctx, "abc123")
	if err != nil {
		t.Fatalf("FindByFingerprint: %v", err)
	}
	if found == nil || found.Course != "Linear Algebra" {
		t.Fatalf("fingerprint lookup failed: %+v", found)
	}

	missing, err := j.FindByFingerprint(ctx, "nope")
	if err != nil {
		t.Fatalf("FindByFingerprint: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown fingerprint, got %+v", missing)
	}
}

func TestFailedEntriesDoNotCountAsSeen(t *testing.T) {
	j := openJournal(t)
	ctx := context.Background()

	if _, err := j.RecordFailed(ctx, "/in/bad.mp3", "def456", "transcription failed"); err != nil {
		t.Fatalf("RecordFailed: %v", err)
	}

	found, err := j.FindByFingerprint(ctx, "def456")
	if err != nil {
		t.Fatalf("FindByFingerprint: %v", err)
	}
	if found != nil {
		t.Fatalf("failed entries must not mark content as processed: %+v", found)
	}
}

func TestListAndStats(t *testing.T) {
	j := openJournal(t)
	ctx := context.Background()

	if _, err := j.RecordCompleted(ctx, "/in/a.mp3", "f1", "Physics", "/archives/a"); err != nil {
		t.Fatal(err)
	}
	if _, err := j.RecordCompleted(ctx, "/in/b.mp3", "f2", "Physics", "/archives/b"); err != nil {
		t.Fatal(err)
	}
	if _, err := j.RecordFailed(ctx, "/in/c.mp3", "f3", "diarization failed"); err != nil {
		t.Fatal(err)
	}

	all, err := j.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
	if all[0].SourcePath != "/in/c.mp3" {
		t.Fatalf("expected newest first, got %+v", all[0])
	}

	failed, err := j.List(ctx, journal.StatusFailed)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(failed) != 1 || failed[0].ErrorMsg != "diarization failed" {
		t.Fatalf("unexpected failed list %+v", failed)
	}

	stats, err := j.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[journal.StatusCompleted] != 2 || stats[journal.StatusFailed] != 1 {
		t.Fatalf("unexpected stats %v", stats)
	}
}

func TestReopenExistingDatabase(t *testing.T) {
	dir := t.TempDir()
	first, err := journal.Open(dir)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if _, err := first.RecordCompleted(context.Background(), "/in/a.mp3", "f1", "History", "/archives/a"); err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second, err := journal.Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	entries, err := second.List(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries lost across reopen: %d", len(entries))
	}
}
