package subtitles

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"lectern/internal/align"
)

// FormatTimestamp converts seconds to the SRT time format HH:MM:SS,mmm.
// Negative timestamps are a caller bug and are rejected upstream by WriteFile.
func FormatTimestamp(seconds float64) string {
	millis := int64(math.Round(seconds * 1000.0))
	hours := millis / 3_600_000
	millis -= hours * 3_600_000
	minutes := millis / 60_000
	millis -= minutes * 60_000
	secs := millis / 1_000
	millis -= secs * 1_000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// WriteFile writes transcript segments as sequential numbered SRT cues, one
// per segment in the given order.
func WriteFile(path string, segments []align.TranscriptSegment) error {
	for i, seg := range segments {
		if seg.Start < 0 || seg.End < 0 {
			return fmt.Errorf("write srt: segment %d has negative timestamp", i)
		}
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("write srt: ensure directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for i, seg := range segments {
		fmt.Fprintf(w, "%d\n", i+1)
		fmt.Fprintf(w, "%s --> %s\n", FormatTimestamp(seg.Start), FormatTimestamp(seg.End))
		fmt.Fprintf(w, "%s\n\n", strings.TrimSpace(seg.Text))
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	return file.Close()
}

// CountCues returns the number of cue blocks in an SRT file.
func CountCues(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read srt: %w", err)
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return 0, nil
	}
	count := 0
	for _, block := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(block) != "" {
			count++
		}
	}
	return count, nil
}

// ParseTimestamp converts an SRT timestamp back to seconds. It tolerates a
// period in place of the standard comma before the millisecond field.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(strings.ReplaceAll(value, ".", ","))
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}
