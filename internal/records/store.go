package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"lectern/internal/logging"
	"lectern/internal/services"
)

var (
	// ErrNoMatch is returned when an in-place update finds no record with the
	// target summary.
	ErrNoMatch = errors.New("no matching lecture record")
	// ErrAmbiguousUpdate is returned when more than one record matches; the
	// store is left untouched rather than risking silent corruption.
	ErrAmbiguousUpdate = errors.New("ambiguous lecture update")
)

// Store reads and writes per-course lecture collections as JSON files under a
// data directory. Each course's load-mutate-write sequence is serialized with
// a file lock so concurrent processes cannot lose updates.
type Store struct {
	dataDir string
	logger  *slog.Logger
}

// NewStore constructs a record store rooted at dataDir.
func NewStore(dataDir string, logger *slog.Logger) *Store {
	return &Store{
		dataDir: dataDir,
		logger:  logging.NewComponentLogger(logger, "records"),
	}
}

// CoursePath returns the store file path for a course.
func (s *Store) CoursePath(course string) string {
	return filepath.Join(s.dataDir, sanitizeCourseName(course)+".json")
}

// storeFile is the object shape of a persisted course store.
type storeFile struct {
	Lectures []Lecture `json:"lectures"`
	Notes    []string  `json:"notes"`
}

// Load reads a course store, accepting both persisted shapes: a bare JSON
// array of lectures, or an object with lectures and notes lists. A missing
// file loads as an empty bare-shape store.
func (s *Store) Load(course string) (*ClassStore, error) {
	path := s.CoursePath(course)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &ClassStore{}, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "records", "load store",
			fmt.Sprintf("read %s", filepath.Base(path)), err)
	}
	return decodeStore(path, data)
}

func decodeStore(path string, data []byte) (*ClassStore, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return &ClassStore{}, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var lectures []Lecture
		if err := json.Unmarshal(data, &lectures); err != nil {
			return nil, services.Wrap(services.ErrPersistence, "records", "decode store",
				fmt.Sprintf("parse %s", filepath.Base(path)), err)
		}
		return &ClassStore{Lectures: lectures}, nil
	}

	var file storeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "records", "decode store",
			fmt.Sprintf("parse %s", filepath.Base(path)), err)
	}
	return &ClassStore{Lectures: file.Lectures, Notes: file.Notes, dictShape: true}, nil
}

// save writes the store back atomically, preserving its on-disk shape. The
// object shape is used once the store has ever carried notes.
func (s *Store) save(course string, cs *ClassStore) error {
	path := s.CoursePath(course)

	var payload any
	if cs.dictShape || len(cs.Notes) > 0 {
		cs.dictShape = true
		notes := cs.Notes
		if notes == nil {
			notes = []string{}
		}
		lectures := cs.Lectures
		if lectures == nil {
			lectures = []Lecture{}
		}
		payload = storeFile{Lectures: lectures, Notes: notes}
	} else {
		lectures := cs.Lectures
		if lectures == nil {
			lectures = []Lecture{}
		}
		payload = lectures
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrPersistence, "records", "encode store", course, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return services.Wrap(services.ErrPersistence, "records", "ensure data dir", course, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".store-*.json")
	if err != nil {
		return services.Wrap(services.ErrPersistence, "records", "stage store write", course, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return services.Wrap(services.ErrPersistence, "records", "stage store write", course, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return services.Wrap(services.ErrPersistence, "records", "stage store write", course, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return services.Wrap(services.ErrPersistence, "records", "commit store write", course, err)
	}
	return nil
}

// withLock serializes a load-mutate-write sequence for one course.
func (s *Store) withLock(course string, fn func() error) error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return services.Wrap(services.ErrPersistence, "records", "ensure data dir", course, err)
	}
	lock := flock.New(s.CoursePath(course) + ".lock")
	if err := lock.Lock(); err != nil {
		return services.Wrap(services.ErrPersistence, "records", "lock store", course, err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warn("failed to release store lock",
				logging.String(logging.FieldCourse, course),
				logging.Error(err),
			)
		}
	}()
	return fn()
}

// Append adds lecture records to the end of a course's store and writes the
// whole store back. There is no identity check: re-appending the same lecture
// produces a duplicate record. Callers wanting dedupe must fingerprint the
// source recording before processing it.
func (s *Store) Append(course string, lectures ...Lecture) error {
	if len(lectures) == 0 {
		return nil
	}
	return s.withLock(course, func() error {
		cs, err := s.Load(course)
		if err != nil {
			return err
		}
		cs.Lectures = append(cs.Lectures, lectures...)
		return s.save(course, cs)
	})
}

// UpdateInPlace replaces the unique record whose summary equals
// targetSummary. With zero matches it returns ErrNoMatch; with more than one
// it returns ErrAmbiguousUpdate. In both failure cases the persisted store is
// left byte-for-byte untouched.
func (s *Store) UpdateInPlace(course, targetSummary string, updated Lecture) error {
	return s.withLock(course, func() error {
		cs, err := s.Load(course)
		if err != nil {
			return err
		}

		matchIndex := -1
		for i, lecture := range cs.Lectures {
			if lecture.Summary != targetSummary {
				continue
			}
			if matchIndex >= 0 {
				return fmt.Errorf("%w: summary matches records %d and %d in %s",
					ErrAmbiguousUpdate, matchIndex, i, filepath.Base(s.CoursePath(course)))
			}
			matchIndex = i
		}
		if matchIndex < 0 {
			return fmt.Errorf("%w: course %s", ErrNoMatch, course)
		}

		cs.Lectures[matchIndex] = updated
		return s.save(course, cs)
	})
}

// AppendNote appends a note to a course's store. A store persisted as a bare
// lecture list is converted to the object shape here; this is the only path
// that changes a store's on-disk shape.
func (s *Store) AppendNote(course, note string) error {
	return s.withLock(course, func() error {
		cs, err := s.Load(course)
		if err != nil {
			return err
		}
		if !cs.dictShape {
			s.logger.Info("converting course store to object shape for notes",
				logging.String(logging.FieldCourse, course),
			)
		}
		cs.Notes = append(cs.Notes, note)
		cs.dictShape = true
		return s.save(course, cs)
	})
}

// ListCourses returns the store file stems present under the data directory,
// excluding the course catalog file.
func (s *Store) ListCourses() ([]string, error) {
	entries, err := os.ReadDir(s.dataDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "records", "scan data dir", "", err)
	}
	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
			continue
		}
		if name == CatalogFileName {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".json"))
	}
	return names, nil
}
