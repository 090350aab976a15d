package schedule

import (
	"log/slog"

	"lectern/internal/logging"
)

// Assignment names the course and timestamp metadata derived for a recording.
type Assignment struct {
	Course string
	Date   string
	Time   string
}

// Matcher assigns recordings to courses by filename timestamp and weekly
// schedule.
type Matcher struct {
	windowMinutes int
	logger        *slog.Logger
}

// NewMatcher constructs a matcher. windowMinutes is the maximum distance in
// minutes between a recording's start and a scheduled start for a match.
func NewMatcher(windowMinutes int, logger *slog.Logger) *Matcher {
	if windowMinutes <= 0 {
		windowMinutes = 15
	}
	return &Matcher{
		windowMinutes: windowMinutes,
		logger:        logging.NewComponentLogger(logger, "schedule"),
	}
}

// Match derives the course assignment for a recording filename.
//
// Matching is first-fit: courses are scanned in their configured order, each
// course's entries in order, and the first entry whose weekday contains the
// recording's day and whose start time lies within the match window wins.
// This is deterministic for a fixed course ordering but is not a closest-in-
// time selection.
//
// Fallbacks: an unparsable filename yields UnknownCourse with N/A date and
// time; a parsable filename with no matching course keeps the parsed date and
// time under UnknownCourse. With zero courses configured no matching is
// attempted at all.
func (m *Matcher) Match(filename string, courses []Course) Assignment {
	rec, ok := ParseRecordingName(filename)
	if !ok {
		m.logger.Warn("filename does not match recording convention",
			logging.String("filename", filename),
		)
		return Assignment{Course: UnknownCourse, Date: NotAvailable, Time: NotAvailable}
	}

	fallback := Assignment{Course: UnknownCourse, Date: rec.Date, Time: rec.Time}
	if len(courses) == 0 {
		m.logger.Warn("no courses configured; treating recording as unscheduled",
			logging.String("filename", filename),
		)
		return fallback
	}

	day := rec.Weekday.String()
	for _, course := range courses {
		for _, entry := range course.Schedule {
			if !entry.hasDay(day) || entry.StartTime == "" {
				continue
			}
			start, err := ParseClock(entry.StartTime)
			if err != nil {
				m.logger.Warn("skipping schedule entry with unparsable start time",
					logging.String("course", course.Name),
					logging.String("start_time", entry.StartTime),
				)
				continue
			}
			distance := rec.MinuteOfDay - (start.Hour()*60 + start.Minute())
			if distance < 0 {
				distance = -distance
			}
			if distance <= m.windowMinutes {
				return Assignment{Course: course.Name, Date: rec.Date, Time: rec.Time}
			}
		}
	}

	m.logger.Warn("no course schedule matched recording",
		logging.String("filename", filename),
		logging.String("date", rec.Date),
		logging.String("time", rec.Time),
	)
	return fallback
}
