// Package catalog manages the long-lived course catalog file that schedule
// matching and course management commands read and edit.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"lectern/internal/logging"
	"lectern/internal/records"
	"lectern/internal/schedule"
	"lectern/internal/services"
)

var (
	// ErrCourseExists is returned when adding a course whose name is taken.
	ErrCourseExists = errors.New("course already exists")
	// ErrCourseNotFound is returned when a named course is absent.
	ErrCourseNotFound = errors.New("course not found")
)

// Catalog reads and writes the courses.json file under the data directory.
// Course names are the unique key; lookups are case-insensitive so CLI typos
// in casing do not create duplicates.
type Catalog struct {
	path   string
	logger *slog.Logger
}

type catalogFile struct {
	Courses []schedule.Course `json:"courses"`
}

// New constructs a catalog backed by courses.json under dataDir.
func New(dataDir string, logger *slog.Logger) *Catalog {
	return &Catalog{
		path:   filepath.Join(dataDir, records.CatalogFileName),
		logger: logging.NewComponentLogger(logger, "catalog"),
	}
}

// Path returns the catalog file location.
func (c *Catalog) Path() string {
	return c.path
}

// List returns all courses in configured order. A missing catalog file is
// created empty on first access.
func (c *Catalog) List() ([]schedule.Course, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		c.logger.Info("course catalog missing, creating empty catalog",
			logging.String("path", c.path),
		)
		if err := c.save(nil); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "catalog", "load catalog", filepath.Base(c.path), err)
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "catalog", "decode catalog", filepath.Base(c.path), err)
	}
	return file.Courses, nil
}

// Get returns the course with the given name.
func (c *Catalog) Get(name string) (schedule.Course, error) {
	courses, err := c.List()
	if err != nil {
		return schedule.Course{}, err
	}
	for _, course := range courses {
		if strings.EqualFold(course.Name, name) {
			return course, nil
		}
	}
	return schedule.Course{}, fmt.Errorf("%w: %s", ErrCourseNotFound, name)
}

// Add appends a new course to the catalog. Names must be unique and the
// course must pass validation.
func (c *Catalog) Add(course schedule.Course) error {
	if err := validate(course); err != nil {
		return err
	}
	courses, err := c.List()
	if err != nil {
		return err
	}
	for _, existing := range courses {
		if strings.EqualFold(existing.Name, course.Name) {
			return fmt.Errorf("%w: %s", ErrCourseExists, existing.Name)
		}
	}
	course.Schedule = canonicalizeSchedule(course.Schedule)
	return c.save(append(courses, course))
}

// Update replaces the course with the given name. Renames are allowed as long
// as the new name does not collide with another course.
func (c *Catalog) Update(name string, updated schedule.Course) error {
	if err := validate(updated); err != nil {
		return err
	}
	courses, err := c.List()
	if err != nil {
		return err
	}

	index := -1
	for i, course := range courses {
		if strings.EqualFold(course.Name, name) {
			index = i
			continue
		}
		if strings.EqualFold(course.Name, updated.Name) {
			return fmt.Errorf("%w: %s", ErrCourseExists, course.Name)
		}
	}
	if index < 0 {
		return fmt.Errorf("%w: %s", ErrCourseNotFound, name)
	}

	updated.Schedule = canonicalizeSchedule(updated.Schedule)
	courses[index] = updated
	return c.save(courses)
}

// Delete removes the named course.
func (c *Catalog) Delete(name string) error {
	courses, err := c.List()
	if err != nil {
		return err
	}
	for i, course := range courses {
		if strings.EqualFold(course.Name, name) {
			return c.save(append(courses[:i], courses[i+1:]...))
		}
	}
	return fmt.Errorf("%w: %s", ErrCourseNotFound, name)
}

func (c *Catalog) save(courses []schedule.Course) error {
	if courses == nil {
		courses = []schedule.Course{}
	}
	data, err := json.MarshalIndent(catalogFile{Courses: courses}, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrPersistence, "catalog", "encode catalog", filepath.Base(c.path), err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrPersistence, "catalog", "ensure data dir", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".catalog-*.json")
	if err != nil {
		return services.Wrap(services.ErrPersistence, "catalog", "stage catalog write", filepath.Base(c.path), err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return services.Wrap(services.ErrPersistence, "catalog", "stage catalog write", filepath.Base(c.path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return services.Wrap(services.ErrPersistence, "catalog", "stage catalog write", filepath.Base(c.path), err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return services.Wrap(services.ErrPersistence, "catalog", "commit catalog write", filepath.Base(c.path), err)
	}
	return nil
}

func validate(course schedule.Course) error {
	if strings.TrimSpace(course.Name) == "" {
		return services.Wrap(services.ErrValidation, "catalog", "validate course", "course name must not be empty", nil)
	}
	if course.DurationMinutes <= 0 {
		return services.Wrap(services.ErrValidation, "catalog", "validate course",
			fmt.Sprintf("duration must be positive, got %d", course.DurationMinutes), nil)
	}
	for _, entry := range course.Schedule {
		if len(entry.Days) == 0 {
			return services.Wrap(services.ErrValidation, "catalog", "validate course",
				"schedule entry needs at least one day", nil)
		}
		for _, day := range entry.Days {
			if !schedule.ValidWeekday(day) {
				return services.Wrap(services.ErrValidation, "catalog", "validate course",
					fmt.Sprintf("unknown weekday %q", day), nil)
			}
		}
		if _, err := schedule.ParseClock(entry.StartTime); err != nil {
			return services.Wrap(services.ErrValidation, "catalog", "validate course",
				fmt.Sprintf("bad start time %q", entry.StartTime), err)
		}
	}
	return nil
}

func canonicalizeSchedule(entries []schedule.Entry) []schedule.Entry {
	out := make([]schedule.Entry, len(entries))
	for i, entry := range entries {
		out[i] = schedule.Entry{
			Days:      schedule.CanonicalDays(entry.Days),
			StartTime: entry.StartTime,
		}
	}
	return out
}
