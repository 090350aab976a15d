// Package relabel renames diarized speaker IDs in stored lecture records.
package relabel

import (
	"log/slog"

	"lectern/internal/align"
	"lectern/internal/logging"
	"lectern/internal/records"
)

// Relabeler applies speaker display-name mappings to lecture records and
// persists the result.
type Relabeler struct {
	store  *records.Store
	logger *slog.Logger
}

// New constructs a relabeler over the given record store.
func New(store *records.Store, logger *slog.Logger) *Relabeler {
	return &Relabeler{
		store:  store,
		logger: logging.NewComponentLogger(logger, "relabel"),
	}
}

// Apply returns a copy of record with mapped speaker IDs replaced in every
// segment and the speakers list recomputed from the rewritten segments.
// Segments whose speaker is not a mapping key are untouched.
func Apply(record records.Lecture, mapping map[string]string) records.Lecture {
	segments := make([]align.CombinedSegment, len(record.Segments))
	copy(segments, record.Segments)
	for i, segment := range segments {
		if name, ok := mapping[segment.Speaker]; ok {
			segments[i].Speaker = name
		}
	}
	record.Segments = segments
	record.Speakers = align.Speakers(segments)
	return record
}

// Relabel applies the mapping to the record and persists it in place, using
// the record's current summary to locate it in the store. A failed update
// (missing or ambiguous match) leaves the store untouched, and the returned
// error signals that the relabel did not take effect.
func (r *Relabeler) Relabel(course string, record records.Lecture, mapping map[string]string) (records.Lecture, error) {
	if len(mapping) == 0 {
		return record, nil
	}

	updated := Apply(record, mapping)
	if err := r.store.UpdateInPlace(course, record.Summary, updated); err != nil {
		r.logger.Error("relabel not persisted, discarding changes",
			logging.String(logging.FieldCourse, course),
			logging.Error(err),
		)
		return records.Lecture{}, err
	}

	r.logger.Info("speaker labels updated",
		logging.String(logging.FieldCourse, course),
		logging.Int("mapped_speakers", len(mapping)),
	)
	return updated, nil
}
