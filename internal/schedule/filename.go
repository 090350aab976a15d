package schedule

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Recordings are named YYYY-MM-DD_HH-MM-SS_<suffix>.<ext>.
var recordingNamePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})_(\d{2}-\d{2}-\d{2})_.+\.(wav|mp3|flac|ogg)$`)

// AudioExtensions lists the recording file extensions the pipeline accepts.
var AudioExtensions = []string{".wav", ".mp3", ".flac", ".ogg"}

// IsAudioFile reports whether the filename carries a supported audio extension.
func IsAudioFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, candidate := range AudioExtensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

// RecordingTime is the timestamp parsed from a recording's filename.
type RecordingTime struct {
	// Date is the recording date formatted YYYY-MM-DD.
	Date string
	// Time is the recording start time formatted HH:MM:SS.
	Time string
	// Weekday is derived from Date.
	Weekday time.Weekday
	// MinuteOfDay is the start time expressed as minutes since midnight.
	MinuteOfDay int
}

// ParseRecordingName extracts the timestamp encoded in a recording filename.
// The second return value is false when the name does not follow the
// convention; that is a routine condition, not an error.
func ParseRecordingName(filename string) (RecordingTime, bool) {
	base := filepath.Base(filename)
	match := recordingNamePattern.FindStringSubmatch(strings.ToLower(base))
	if match == nil {
		return RecordingTime{}, false
	}

	parsed, err := time.Parse("2006-01-02 15-04-05", match[1]+" "+match[2])
	if err != nil {
		return RecordingTime{}, false
	}

	return RecordingTime{
		Date:        match[1],
		Time:        strings.ReplaceAll(match[2], "-", ":"),
		Weekday:     parsed.Weekday(),
		MinuteOfDay: parsed.Hour()*60 + parsed.Minute(),
	}, true
}
