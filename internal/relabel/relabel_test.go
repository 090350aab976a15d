package relabel_test

import (
	"errors"
	"testing"

	"lectern/internal/align"
	"lectern/internal/logging"
	"lectern/internal/records"
	"lectern/internal/relabel"
)

func lectureWithSpeakers(summary string) records.Lecture {
	return records.NewLecture(
		records.Metadata{Course: "Physics", Date: "2026-02-10", Time: "09:00:00"},
		summary,
		"- interference",
		[]align.CombinedSegment{
			{Start: 0, End: 2, Speaker: "SPEAKER_00", Text: "good morning"},
			{Start: 2, End: 4, Speaker: "SPEAKER_01", Text: "question"},
			{Start: 4, End: 6, Speaker: "SPEAKER_00", Text: "go ahead"},
		},
	)
}

func TestApplyReplacesMappedSpeakersOnly(t *testing.T) {
	record := lectureWithSpeakers("waves")
	updated := relabel.Apply(record, map[string]string{"SPEAKER_00": "Alice"})

	for _, segment := range updated.Segments {
		if segment.Speaker == "SPEAKER_00" {
			t.Fatalf("mapped speaker survived: %+v", segment)
		}
	}
	if updated.Segments[1].Speaker != "SPEAKER_01" {
		t.Fatalf("unmapped speaker changed: %+v", updated.Segments[1])
	}

	want := map[string]bool{"Alice": true, "SPEAKER_01": true}
	if len(updated.Speakers) != 2 {
		t.Fatalf("unexpected speakers %v", updated.Speakers)
	}
	for _, speaker := range updated.Speakers {
		if !want[speaker] {
			t.Fatalf("unexpected speaker %q in %v", speaker, updated.Speakers)
		}
	}

	// Original record must be untouched.
	if record.Segments[0].Speaker != "SPEAKER_00" {
		t.Fatal("Apply mutated its input")
	}
}

func TestRelabelPersists(t *testing.T) {
	store := records.NewStore(t.TempDir(), logging.NewNop())
	record := lectureWithSpeakers("optics lecture")
	if err := store.Append("Physics", record); err != nil {
		t.Fatal(err)
	}

	r := relabel.New(store, logging.NewNop())
	updated, err := r.Relabel("Physics", record, map[string]string{"SPEAKER_01": "Student"})
	if err != nil {
		t.Fatalf("Relabel: %v", err)
	}
	if updated.Segments[1].Speaker != "Student" {
		t.Fatalf("returned record not relabeled: %+v", updated.Segments[1])
	}

	cs, err := store.Load("Physics")
	if err != nil {
		t.Fatal(err)
	}
	if cs.Lectures[0].Segments[1].Speaker != "Student" {
		t.Fatalf("relabel not persisted: %+v", cs.Lectures[0].Segments[1])
	}
}

func TestRelabelDiscardedOnAmbiguousMatch(t *testing.T) {
	store := records.NewStore(t.TempDir(), logging.NewNop())
	first := lectureWithSpeakers("duplicate summary")
	second := lectureWithSpeakers("duplicate summary")
	if err := store.Append("Physics", first, second); err != nil {
		t.Fatal(err)
	}

	r := relabel.New(store, logging.NewNop())
	_, err := r.Relabel("Physics", first, map[string]string{"SPEAKER_00": "Alice"})
	if !errors.Is(err, records.ErrAmbiguousUpdate) {
		t.Fatalf("expected ErrAmbiguousUpdate, got %v", err)
	}

	cs, err := store.Load("Physics")
	if err != nil {
		t.Fatal(err)
	}
	for _, lecture := range cs.Lectures {
		if lecture.Segments[0].Speaker != "SPEAKER_00" {
			t.Fatalf("store mutated despite failed relabel: %+v", lecture.Segments[0])
		}
	}
}

func TestRelabelEmptyMappingIsNoop(t *testing.T) {
	store := records.NewStore(t.TempDir(), logging.NewNop())
	r := relabel.New(store, logging.NewNop())
	record := lectureWithSpeakers("unchanged")
	got, err := r.Relabel("Physics", record, nil)
	if err != nil {
		t.Fatalf("Relabel: %v", err)
	}
	if got.Segments[0].Speaker != "SPEAKER_00" {
		t.Fatalf("no-op relabel changed record: %+v", got.Segments[0])
	}
}
