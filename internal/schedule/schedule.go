package schedule

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UnknownCourse is the bucket for recordings that cannot be matched to a course.
const UnknownCourse = "Unknown Course"

// NotAvailable marks date/time metadata that could not be derived.
const NotAvailable = "N/A"

// Entry is one recurring slot in a course's weekly schedule.
type Entry struct {
	Days      []string `json:"days"`
	StartTime string   `json:"start_time"`
}

// Course describes a scheduled course. Name is the unique key.
type Course struct {
	Name            string   `json:"name"`
	Keywords        []string `json:"keywords,omitempty"`
	DurationMinutes int      `json:"duration_minutes"`
	Schedule        []Entry  `json:"schedule,omitempty"`
}

var dayTitler = cases.Title(language.English)

// CanonicalDay normalizes a user-entered weekday name to its English title
// form ("monday" -> "Monday"). Unrecognized names are returned title-cased so
// they are at least stored consistently.
func CanonicalDay(day string) string {
	return dayTitler.String(strings.ToLower(strings.TrimSpace(day)))
}

// CanonicalDays normalizes a list of weekday names, dropping blanks.
func CanonicalDays(days []string) []string {
	out := make([]string, 0, len(days))
	for _, day := range days {
		if normalized := CanonicalDay(day); normalized != "" {
			out = append(out, normalized)
		}
	}
	return out
}

// ValidWeekday reports whether day names one of the seven English weekdays,
// in any casing.
func ValidWeekday(day string) bool {
	normalized := CanonicalDay(day)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if normalized == d.String() {
			return true
		}
	}
	return false
}

// ParseClock parses an HH:MM schedule start time.
func ParseClock(value string) (time.Time, error) {
	return time.Parse("15:04", value)
}

func (e Entry) hasDay(day string) bool {
	for _, candidate := range e.Days {
		if strings.EqualFold(strings.TrimSpace(candidate), day) {
			return true
		}
	}
	return false
}
