// Package records persists per-course lecture collections as JSON stores
// under the data directory, one file per course.
package records
