// Package schedule matches recordings to courses using filename-encoded
// timestamps and weekly course schedules.
package schedule
