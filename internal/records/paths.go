package records

import "strings"

// CatalogFileName is the course catalog file kept alongside the per-course
// stores in the data directory.
const CatalogFileName = "courses.json"

// sanitizeCourseName converts a course name to a safe store filename stem.
// Spaces become underscores; path separators and other unsafe runes are
// dropped.
func sanitizeCourseName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == ' ':
			b.WriteRune('_')
		case r == '/' || r == '\\' || r == ':' || r == 0:
			// drop
		default:
			b.WriteRune(r)
		}
	}
	stem := b.String()
	if stem == "" {
		stem = "Unknown_Course"
	}
	return stem
}
