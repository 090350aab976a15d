package subtitles_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lectern/internal/align"
	"lectern/internal/subtitles"
)

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{1.5, "00:00:01,500"},
		{61.042, "00:01:01,042"},
		{3661.999, "01:01:01,999"},
		{3599.9995, "01:00:00,000"}, // rounds up across the hour boundary
	}
	for _, tc := range cases {
		if got := subtitles.FormatTimestamp(tc.seconds); got != tc.want {
			t.Fatalf("FormatTimestamp(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestWriteFileProducesNumberedCues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.srt")
	segments := []align.TranscriptSegment{
		{Start: 0, End: 2.5, Text: "  hello there  "},
		{Start: 2.5, End: 5, Text: "general lecture"},
	}
	if err := subtitles.WriteFile(path, segments); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:02,500\nhello there\n\n" +
		"2\n00:00:02,500 --> 00:00:05,000\ngeneral lecture\n\n"
	if string(data) != want {
		t.Fatalf("unexpected srt content:\n%q\nwant:\n%q", data, want)
	}

	cues, err := subtitles.CountCues(path)
	if err != nil {
		t.Fatalf("CountCues: %v", err)
	}
	if cues != 2 {
		t.Fatalf("expected 2 cues, got %d", cues)
	}
}

func TestWriteFileRejectsNegativeTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.srt")
	err := subtitles.WriteFile(path, []align.TranscriptSegment{{Start: -1, End: 0, Text: "x"}})
	if err == nil || !strings.Contains(err.Error(), "negative timestamp") {
		t.Fatalf("expected negative timestamp error, got %v", err)
	}
}

func TestParseTimestampRoundTrips(t *testing.T) {
	for _, seconds := range []float64{0, 1.5, 59.25, 3661.25} {
		formatted := subtitles.FormatTimestamp(seconds)
		parsed, err := subtitles.ParseTimestamp(formatted)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q): %v", formatted, err)
		}
		if parsed != seconds {
			t.Fatalf("round trip %v -> %q -> %v", seconds, formatted, parsed)
		}
	}
	if _, err := subtitles.ParseTimestamp("garbage"); err == nil {
		t.Fatal("expected parse error")
	}
}
