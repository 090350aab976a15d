package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"lectern/internal/align"
	"lectern/internal/archive"
	"lectern/internal/catalog"
	"lectern/internal/config"
	"lectern/internal/journal"
	"lectern/internal/logging"
	"lectern/internal/pipeline"
	"lectern/internal/records"
	"lectern/internal/schedule"
	"lectern/internal/services/gemini"
	"lectern/internal/testsupport"
)

type stubTranscriber struct {
	segments []align.TranscriptSegment
	err      error
}

func (s *stubTranscriber) Transcribe(ctx context.Context, audioPath string) ([]align.TranscriptSegment, error) {
	return s.segments, s.err
}

type stubDiarizer struct {
	turns []align.SpeakerTurn
	err   error
}

func (s *stubDiarizer) Diarize(ctx context.Context, audioPath string) ([]align.SpeakerTurn, error) {
	return s.turns, s.err
}

type stubGenerator struct {
	err   error
	calls int
}

func (s *stubGenerator) Generate(ctx context.Context, prompt, text string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "generated: " + prompt, nil
}

type fixture struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	store    *records.Store
	journal  *journal.Journal
}

func newFixture(t *testing.T, transcriber pipeline.Transcriber, diarizer pipeline.Diarizer, generator pipeline.Generator) *fixture {
	t.Helper()

	cfg := testsupport.NewConfig(t,
		testsupport.WithGeminiPrompts("Summarize this:", "Extract highlights from this:"))

	logger := logging.NewNop()
	cat := catalog.New(cfg.Paths.DataDir, logger)
	if err := cat.Add(schedule.Course{
		Name:            "Linear Algebra",
		DurationMinutes: 60,
		Schedule:        []schedule.Entry{{Days: []string{"Monday"}, StartTime: "13:00"}},
	}); err != nil {
		t.Fatal(err)
	}

	store := records.NewStore(cfg.Paths.DataDir, logger)
	matcher := schedule.NewMatcher(cfg.Schedule.MatchWindowMinutes, logger)
	archiver := archive.New(cfg.Paths.ArchiveDir, logger)
	jnl := testsupport.MustOpenJournal(t, cfg.Paths.DataDir)

	return &fixture{
		cfg:      cfg,
		pipeline: pipeline.New(cfg, cat, store, matcher, archiver, jnl, transcriber, diarizer, generator, logger),
		store:    store,
		journal:  jnl,
	}
}

func (f *fixture) addRecording(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.cfg.Paths.IncomingDir, name)
	testsupport.WriteFile(t, path, content)
	return path
}

func defaultStubs() (*stubTranscriber, *stubDiarizer, *stubGenerator) {
	transcriber := &stubTranscriber{segments: []align.TranscriptSegment{
		{Start: 0, End: 2, Text: "welcome back"},
		{Start: 2, End: 4, Text: "today we cover eigenvalues"},
	}}
	diarizer := &stubDiarizer{turns: []align.SpeakerTurn{
		{Start: 0, End: 4, Speaker: "SPEAKER_00"},
	}}
	return transcriber, diarizer, &stubGenerator{}
}

func TestProcessFileEndToEnd(t *testing.T) {
	transcriber, diarizer, generator := defaultStubs()
	f := newFixture(t, transcriber, diarizer, generator)
	// Monday 2024-05-06 at 13:05, within the 15 minute window of 13:00.
	audio := f.addRecording(t, "2024-05-06_13-05-00_1.mp3", "audio bytes")

	result := f.pipeline.ProcessFile(context.Background(), audio)
	if result.Err != nil {
		t.Fatalf("ProcessFile: %v", result.Err)
	}
	if result.Course != "Linear Algebra" {
		t.Fatalf("expected schedule match, got %+v", result)
	}
	if result.Date != "2024-05-06" || result.Time != "13:05:00" {
		t.Fatalf("unexpected metadata %+v", result)
	}

	cs, err := f.store.Load("Linear Algebra")
	if err != nil {
		t.Fatal(err)
	}
	if len(cs.Lectures) != 1 {
		t.Fatalf("expected one lecture record, got %d", len(cs.Lectures))
	}
	lecture := cs.Lectures[0]
	if lecture.Summary != "generated: Summarize this:" {
		t.Fatalf("unexpected summary %q", lecture.Summary)
	}
	if len(lecture.Speakers) != 1 || lecture.Speakers[0] != "SPEAKER_00" {
		t.Fatalf("unexpected speakers %v", lecture.Speakers)
	}

	archivedAudio := filepath.Join(f.cfg.Paths.ArchiveDir, "2024-05-06_13-05-00_1", "2024-05-06_13-05-00_1.mp3")
	if _, err := os.Stat(archivedAudio); err != nil {
		t.Fatalf("audio not archived: %v", err)
	}
	archivedSRT := filepath.Join(f.cfg.Paths.ArchiveDir, "2024-05-06_13-05-00_1", "2024-05-06_13-05-00_1.srt")
	if _, err := os.Stat(archivedSRT); err != nil {
		t.Fatalf("subtitle not archived: %v", err)
	}

	entries, err := f.journal.List(context.Background(), journal.StatusCompleted)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Course != "Linear Algebra" {
		t.Fatalf("journal entry missing: %+v", entries)
	}
}

func TestProcessFileUnknownCourseFallback(t *testing.T) {
	transcriber, diarizer, generator := defaultStubs()
	f := newFixture(t, transcriber, diarizer, generator)
	audio := f.addRecording(t, "not-a-date.mp3", "audio bytes")

	result := f.pipeline.ProcessFile(context.Background(), audio)
	if result.Err != nil {
		t.Fatalf("ProcessFile: %v", result.Err)
	}
	if result.Course != schedule.UnknownCourse || result.Date != schedule.NotAvailable {
		t.Fatalf("expected unknown-course fallback, got %+v", result)
	}

	cs, err := f.store.Load(schedule.UnknownCourse)
	if err != nil {
		t.Fatal(err)
	}
	if len(cs.Lectures) != 1 {
		t.Fatalf("fallback record not stored: %d", len(cs.Lectures))
	}
}

func TestGenerationFailureUsesSentinel(t *testing.T) {
	transcriber, diarizer, _ := defaultStubs()
	generator := &stubGenerator{err: errors.New("quota exceeded")}
	f := newFixture(t, transcriber, diarizer, generator)
	audio := f.addRecording(t, "2024-05-06_13-05-00_1.mp3", "audio bytes")

	result := f.pipeline.ProcessFile(context.Background(), audio)
	if result.Err != nil {
		t.Fatalf("generation failure must not abort the file: %v", result.Err)
	}

	cs, err := f.store.Load("Linear Algebra")
	if err != nil {
		t.Fatal(err)
	}
	if cs.Lectures[0].Summary != gemini.FailedMessage || cs.Lectures[0].Highlights != gemini.FailedMessage {
		t.Fatalf("expected failure sentinels, got %+v", cs.Lectures[0])
	}
}

func TestProcessDirectoryIsolatesFailures(t *testing.T) {
	transcriber, diarizer, generator := defaultStubs()
	f := newFixture(t, transcriber, diarizer, generator)
	f.addRecording(t, "2024-05-06_13-05-00_1.mp3", "good audio")
	f.addRecording(t, "2024-05-13_13-05-00_1.mp3", "more good audio")
	f.addRecording(t, "notes.txt", "not audio at all")

	// Fail the second file only.
	failOn := filepath.Join(f.cfg.Paths.IncomingDir, "2024-05-13_13-05-00_1.mp3")
	failingTranscriber := &selectiveTranscriber{inner: transcriber, failPath: failOn}

	p := rebuild(t, f, failingTranscriber, diarizer, generator)
	summary, err := p.ProcessDirectory(context.Background())
	if err != nil {
		t.Fatalf("ProcessDirectory: %v", err)
	}
	if summary.Processed != 1 || summary.Failed != 1 {
		t.Fatalf("expected 1 processed and 1 failed, got %s", summary.Describe())
	}

	failed, err := f.journal.List(context.Background(), journal.StatusFailed)
	if err != nil {
		t.Fatal(err)
	}
	if len(failed) != 1 || filepath.Base(failed[0].SourcePath) != "2024-05-13_13-05-00_1.mp3" {
		t.Fatalf("failed journal entry missing: %+v", failed)
	}
}

func TestDuplicateContentFlagged(t *testing.T) {
	transcriber, diarizer, generator := defaultStubs()
	f := newFixture(t, transcriber, diarizer, generator)

	first := f.addRecording(t, "2024-05-06_13-05-00_1.mp3", "identical audio")
	if result := f.pipeline.ProcessFile(context.Background(), first); result.Err != nil {
		t.Fatalf("first run: %v", result.Err)
	}

	second := f.addRecording(t, "2024-05-13_13-05-00_1.mp3", "identical audio")
	result := f.pipeline.ProcessFile(context.Background(), second)
	if result.Err != nil {
		t.Fatalf("second run: %v", result.Err)
	}
	if !result.Duplicate {
		t.Fatal("expected duplicate content to be flagged")
	}

	// Appends are deliberately not deduplicated.
	cs, err := f.store.Load("Linear Algebra")
	if err != nil {
		t.Fatal(err)
	}
	if len(cs.Lectures) != 2 {
		t.Fatalf("expected two records for duplicate content, got %d", len(cs.Lectures))
	}
}

type selectiveTranscriber struct {
	inner    pipeline.Transcriber
	failPath string
}

func (s *selectiveTranscriber) Transcribe(ctx context.Context, audioPath string) ([]align.TranscriptSegment, error) {
	if audioPath == s.failPath {
		return nil, errors.New("transcription backend unavailable")
	}
	return s.inner.Transcribe(ctx, audioPath)
}

func rebuild(t *testing.T, f *fixture, transcriber pipeline.Transcriber, diarizer pipeline.Diarizer, generator pipeline.Generator) *pipeline.Pipeline {
	t.Helper()
	logger := logging.NewNop()
	cat := catalog.New(f.cfg.Paths.DataDir, logger)
	matcher := schedule.NewMatcher(f.cfg.Schedule.MatchWindowMinutes, logger)
	archiver := archive.New(f.cfg.Paths.ArchiveDir, logger)
	return pipeline.New(f.cfg, cat, f.store, matcher, archiver, f.journal, transcriber, diarizer, generator, logger)
}
