// Package logging configures slog output and shared attribute helpers.
package logging
