package align

import (
	"fmt"

	"lectern/internal/services"
)

// UnknownSpeaker is assigned to transcript segments no diarization turn covers.
const UnknownSpeaker = "UNKNOWN"

// TranscriptSegment is one span of transcribed speech, in seconds from the
// start of the recording.
type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// SpeakerTurn is one contiguous interval the diarizer attributed to a speaker.
// The speaker label is opaque and not stable across recordings.
type SpeakerTurn struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// CombinedSegment is a transcript segment enriched with an inferred speaker.
type CombinedSegment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
}

// Combine fuses transcript segments with diarization turns. Each segment takes
// the speaker of the first turn whose interval strictly overlaps it, in turn
// order; segments no turn covers get UnknownSpeaker. Output order matches the
// transcript segment order.
//
// This is deliberately a first-match policy, not maximum-overlap: when several
// turns overlap one segment the winner is the earliest in turn order.
func Combine(segments []TranscriptSegment, turns []SpeakerTurn) ([]CombinedSegment, error) {
	if err := validateSegments(segments); err != nil {
		return nil, err
	}
	if err := validateTurns(turns); err != nil {
		return nil, err
	}

	combined := make([]CombinedSegment, 0, len(segments))
	for _, seg := range segments {
		speaker := UnknownSpeaker
		for _, turn := range turns {
			if overlaps(seg.Start, seg.End, turn.Start, turn.End) {
				speaker = turn.Speaker
				break
			}
		}
		combined = append(combined, CombinedSegment{
			Start:   seg.Start,
			End:     seg.End,
			Speaker: speaker,
			Text:    seg.Text,
		})
	}
	return combined, nil
}

// overlaps reports strict interval overlap; touching boundaries do not count.
func overlaps(aStart, aEnd, bStart, bEnd float64) bool {
	return max(aStart, bStart) < min(aEnd, bEnd)
}

func validateSegments(segments []TranscriptSegment) error {
	for i, seg := range segments {
		if err := validateInterval(seg.Start, seg.End); err != nil {
			return services.Wrap(services.ErrValidation, "aligning", "validate transcript",
				fmt.Sprintf("transcript segment %d: %v", i, err), nil)
		}
	}
	return nil
}

func validateTurns(turns []SpeakerTurn) error {
	for i, turn := range turns {
		if err := validateInterval(turn.Start, turn.End); err != nil {
			return services.Wrap(services.ErrValidation, "aligning", "validate diarization",
				fmt.Sprintf("speaker turn %d: %v", i, err), nil)
		}
	}
	return nil
}

func validateInterval(start, end float64) error {
	if start < 0 || end < 0 {
		return fmt.Errorf("negative interval [%g, %g]", start, end)
	}
	if end < start {
		return fmt.Errorf("inverted interval [%g, %g]", start, end)
	}
	return nil
}

// Speakers returns the distinct speaker labels present in segments, in first
// appearance order.
func Speakers(segments []CombinedSegment) []string {
	seen := make(map[string]struct{}, 4)
	var out []string
	for _, seg := range segments {
		if _, ok := seen[seg.Speaker]; ok {
			continue
		}
		seen[seg.Speaker] = struct{}{}
		out = append(out, seg.Speaker)
	}
	return out
}

// Transcript joins segment texts into one space-separated transcript string.
func Transcript(segments []CombinedSegment) string {
	total := 0
	for _, seg := range segments {
		total += len(seg.Text) + 1
	}
	buf := make([]byte, 0, total)
	for i, seg := range segments {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, seg.Text...)
	}
	return string(buf)
}
