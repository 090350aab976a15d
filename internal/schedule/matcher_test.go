package schedule_test

import (
	"testing"

	"lectern/internal/logging"
	"lectern/internal/schedule"
)

func newMatcher() *schedule.Matcher {
	return schedule.NewMatcher(15, logging.NewNop())
}

func mondayCourse(startTime string) schedule.Course {
	return schedule.Course{
		Name:            "Algorithms",
		DurationMinutes: 60,
		Schedule: []schedule.Entry{
			{Days: []string{"Monday"}, StartTime: startTime},
		},
	}
}

func TestMatchWithinWindow(t *testing.T) {
	// 2024-05-06 is a Monday; 13:05 is five minutes after the 13:00 slot.
	got := newMatcher().Match("2024-05-06_13-05-00_1.mp3", []schedule.Course{mondayCourse("13:00")})
	want := schedule.Assignment{Course: "Algorithms", Date: "2024-05-06", Time: "13:05:00"}
	if got != want {
		t.Fatalf("expected %+v, got %+v", got, want)
	}
}

func TestMatchOutsideWindowKeepsParsedTimestamp(t *testing.T) {
	// 13:30 is 25 minutes away from the recording's 13:05 start.
	got := newMatcher().Match("2024-05-06_13-05-00_1.mp3", []schedule.Course{mondayCourse("13:30")})
	want := schedule.Assignment{Course: schedule.UnknownCourse, Date: "2024-05-06", Time: "13:05:00"}
	if got != want {
		t.Fatalf("expected %+v, got %+v", got, want)
	}
}

func TestMatchWrongDayFallsBack(t *testing.T) {
	course := schedule.Course{
		Name:     "Seminar",
		Schedule: []schedule.Entry{{Days: []string{"Tuesday"}, StartTime: "13:05"}},
	}
	got := newMatcher().Match("2024-05-06_13-05-00_1.mp3", []schedule.Course{course})
	if got.Course != schedule.UnknownCourse {
		t.Fatalf("expected fallback, got %+v", got)
	}
}

func TestMatchUnparsableFilename(t *testing.T) {
	got := newMatcher().Match("not-a-date.mp3", []schedule.Course{mondayCourse("13:00")})
	want := schedule.Assignment{
		Course: schedule.UnknownCourse,
		Date:   schedule.NotAvailable,
		Time:   schedule.NotAvailable,
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", got, want)
	}
}

func TestMatchNoCoursesSkipsMatching(t *testing.T) {
	got := newMatcher().Match("2024-05-06_13-05-00_1.mp3", nil)
	if got.Course != schedule.UnknownCourse {
		t.Fatalf("expected unknown course, got %+v", got)
	}
	if got.Date != "2024-05-06" || got.Time != "13:05:00" {
		t.Fatalf("expected parsed timestamp preserved, got %+v", got)
	}
}

func TestMatchIsFirstFitAcrossCourses(t *testing.T) {
	// Both courses are within the window; the first configured course wins
	// even though the second is closer in time.
	courses := []schedule.Course{
		{
			Name:     "First",
			Schedule: []schedule.Entry{{Days: []string{"Monday"}, StartTime: "13:15"}},
		},
		{
			Name:     "Closer",
			Schedule: []schedule.Entry{{Days: []string{"Monday"}, StartTime: "13:05"}},
		},
	}
	got := newMatcher().Match("2024-05-06_13-05-00_1.mp3", courses)
	if got.Course != "First" {
		t.Fatalf("expected first-fit selection, got %+v", got)
	}
}

func TestMatchSkipsUnparsableEntryAndContinues(t *testing.T) {
	course := schedule.Course{
		Name: "Mixed",
		Schedule: []schedule.Entry{
			{Days: []string{"Monday"}, StartTime: "one o'clock"},
			{Days: []string{"Monday"}, StartTime: "13:00"},
		},
	}
	got := newMatcher().Match("2024-05-06_13-05-00_1.mp3", []schedule.Course{course})
	if got.Course != "Mixed" {
		t.Fatalf("expected match via second entry, got %+v", got)
	}
}

func TestParseRecordingName(t *testing.T) {
	rec, ok := schedule.ParseRecordingName("/incoming/2024-05-06_13-05-00_lecture.wav")
	if !ok {
		t.Fatal("expected successful parse")
	}
	if rec.Date != "2024-05-06" || rec.Time != "13:05:00" {
		t.Fatalf("unexpected parse result %+v", rec)
	}
	if rec.Weekday.String() != "Monday" {
		t.Fatalf("expected Monday, got %s", rec.Weekday)
	}
	if rec.MinuteOfDay != 13*60+5 {
		t.Fatalf("unexpected minute of day %d", rec.MinuteOfDay)
	}

	for _, bad := range []string{
		"not-a-date.mp3",
		"2024-05-06_13-05-00.mp3",     // missing suffix
		"2024-05-06_13-05-00_1.txt",   // unsupported extension
		"2024-13-40_13-05-00_1.mp3",   // impossible date
		"2024-05-06-13-05-00_1.mp3",   // wrong separator
		"2024-05-06_25-05-00_odd.ogg", // impossible hour
	} {
		if _, ok := schedule.ParseRecordingName(bad); ok {
			t.Fatalf("expected parse failure for %q", bad)
		}
	}
}

func TestCanonicalDay(t *testing.T) {
	if got := schedule.CanonicalDay("  monday "); got != "Monday" {
		t.Fatalf("expected Monday, got %q", got)
	}
	days := schedule.CanonicalDays([]string{"TUESDAY", "", "wednesday"})
	if len(days) != 2 || days[0] != "Tuesday" || days[1] != "Wednesday" {
		t.Fatalf("unexpected canonical days %v", days)
	}
}

func TestIsAudioFile(t *testing.T) {
	for _, name := range []string{"a.wav", "b.MP3", "c.flac", "d.ogg"} {
		if !schedule.IsAudioFile(name) {
			t.Fatalf("expected %q to be audio", name)
		}
	}
	if schedule.IsAudioFile("notes.txt") {
		t.Fatal("expected txt to be rejected")
	}
}
