package records

import (
	"github.com/google/uuid"

	"lectern/internal/align"
)

// Metadata identifies which course slot a lecture belongs to. Date and Time
// are formatted YYYY-MM-DD and HH:MM:SS, or "N/A" when unknown.
type Metadata struct {
	Course string `json:"course"`
	Date   string `json:"date"`
	Time   string `json:"time"`
}

// Lecture is one processed recording. ID is assigned at creation; legacy
// records without one are still located by summary text (see UpdateInPlace).
type Lecture struct {
	ID         string                  `json:"id,omitempty"`
	Metadata   Metadata                `json:"metadata"`
	Summary    string                  `json:"summary"`
	Highlights string                  `json:"highlights"`
	Speakers   []string                `json:"speakers"`
	Segments   []align.CombinedSegment `json:"transcript_segments"`
}

// NewLecture builds a lecture record with a fresh identifier and the speakers
// set derived from the supplied segments.
func NewLecture(meta Metadata, summary, highlights string, segments []align.CombinedSegment) Lecture {
	return Lecture{
		ID:         uuid.NewString(),
		Metadata:   meta,
		Summary:    summary,
		Highlights: highlights,
		Speakers:   align.Speakers(segments),
		Segments:   segments,
	}
}

// ClassStore is the in-memory form of one course's persisted lecture
// collection. dictShape tracks whether the on-disk form is the object shape
// with a notes list; appending the first note is the only operation that
// flips it.
type ClassStore struct {
	Lectures []Lecture
	Notes    []string

	dictShape bool
}

// HasNotes reports whether the store carries course notes.
func (c *ClassStore) HasNotes() bool {
	return len(c.Notes) > 0
}
