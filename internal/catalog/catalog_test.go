package catalog_test

import (
	"errors"
	"os"
	"testing"

	"lectern/internal/catalog"
	"lectern/internal/logging"
	"lectern/internal/schedule"
)

func newCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	return catalog.New(t.TempDir(), logging.NewNop())
}

func algebra() schedule.Course {
	return schedule.Course{
		Name:            "Linear Algebra",
		Keywords:        []string{"matrix", "eigen"},
		DurationMinutes: 90,
		Schedule: []schedule.Entry{
			{Days: []string{"monday", "Wednesday"}, StartTime: "10:00"},
		},
	}
}

func TestListCreatesEmptyCatalog(t *testing.T) {
	cat := newCatalog(t)
	courses, err := cat.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(courses) != 0 {
		t.Fatalf("expected empty catalog, got %v", courses)
	}
	if _, err := os.Stat(cat.Path()); err != nil {
		t.Fatalf("catalog file not created: %v", err)
	}
}

func TestAddCanonicalizesWeekdays(t *testing.T) {
	cat := newCatalog(t)
	if err := cat.Add(algebra()); err != nil {
		t.Fatalf("Add: %v", err)
	}

	course, err := cat.Get("linear algebra")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	days := course.Schedule[0].Days
	if days[0] != "Monday" || days[1] != "Wednesday" {
		t.Fatalf("weekdays not canonicalized: %v", days)
	}
}

func TestAddRejectsDuplicateName(t *testing.T) {
	cat := newCatalog(t)
	if err := cat.Add(algebra()); err != nil {
		t.Fatalf("Add: %v", err)
	}
	dup := algebra()
	dup.Name = "LINEAR ALGEBRA"
	if err := cat.Add(dup); !errors.Is(err, catalog.ErrCourseExists) {
		t.Fatalf("expected ErrCourseExists, got %v", err)
	}
}

func TestAddValidation(t *testing.T) {
	cat := newCatalog(t)

	noName := algebra()
	noName.Name = "  "
	if err := cat.Add(noName); err == nil {
		t.Fatal("expected error for blank name")
	}

	badDuration := algebra()
	badDuration.DurationMinutes = 0
	if err := cat.Add(badDuration); err == nil {
		t.Fatal("expected error for zero duration")
	}

	badDay := algebra()
	badDay.Schedule[0].Days = []string{"Funday"}
	if err := cat.Add(badDay); err == nil {
		t.Fatal("expected error for unknown weekday")
	}

	badClock := algebra()
	badClock.Schedule[0].StartTime = "25:99"
	if err := cat.Add(badClock); err == nil {
		t.Fatal("expected error for bad start time")
	}
}

func TestUpdateRenames(t *testing.T) {
	cat := newCatalog(t)
	if err := cat.Add(algebra()); err != nil {
		t.Fatalf("Add: %v", err)
	}

	renamed := algebra()
	renamed.Name = "Advanced Linear Algebra"
	renamed.DurationMinutes = 120
	if err := cat.Update("Linear Algebra", renamed); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if _, err := cat.Get("Linear Algebra"); !errors.Is(err, catalog.ErrCourseNotFound) {
		t.Fatalf("old name still present: %v", err)
	}
	course, err := cat.Get("Advanced Linear Algebra")
	if err != nil {
		t.Fatalf("Get renamed: %v", err)
	}
	if course.DurationMinutes != 120 {
		t.Fatalf("update lost fields: %+v", course)
	}
}

func TestUpdateRejectsNameCollision(t *testing.T) {
	cat := newCatalog(t)
	physics := algebra()
	physics.Name = "Physics"
	if err := cat.Add(algebra()); err != nil {
		t.Fatal(err)
	}
	if err := cat.Add(physics); err != nil {
		t.Fatal(err)
	}

	collide := algebra()
	collide.Name = "physics"
	if err := cat.Update("Linear Algebra", collide); !errors.Is(err, catalog.ErrCourseExists) {
		t.Fatalf("expected ErrCourseExists, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	cat := newCatalog(t)
	if err := cat.Add(algebra()); err != nil {
		t.Fatal(err)
	}
	if err := cat.Delete("linear ALGEBRA"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	courses, err := cat.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(courses) != 0 {
		t.Fatalf("course not removed: %v", courses)
	}
	if err := cat.Delete("Linear Algebra"); !errors.Is(err, catalog.ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
}
