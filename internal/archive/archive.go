// Package archive moves a processed recording and its subtitle artifact into
// a per-recording archive directory.
package archive

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"lectern/internal/fileutil"
	"lectern/internal/logging"
	"lectern/internal/services"
)

// Archiver files processed recordings under archiveDir, one subdirectory per
// recording named after the audio file's stem.
type Archiver struct {
	archiveDir string
	logger     *slog.Logger
}

// New constructs an archiver rooted at archiveDir.
func New(archiveDir string, logger *slog.Logger) *Archiver {
	return &Archiver{
		archiveDir: archiveDir,
		logger:     logging.NewComponentLogger(logger, "archive"),
	}
}

// Dir returns the archive directory for an audio file.
func (a *Archiver) Dir(audioPath string) string {
	base := filepath.Base(audioPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(a.archiveDir, stem)
}

// Archive moves the audio file and, when present, its subtitle file into the
// recording's archive directory. A subtitle already present at the archive
// destination is left in place and the incoming one is not moved, so a re-run
// cannot clobber an earlier archived subtitle. Returns the archive directory.
func (a *Archiver) Archive(audioPath, subtitlePath string) (string, error) {
	dir := a.Dir(audioPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrPersistence, "archive", "create archive dir", dir, err)
	}

	if _, err := os.Stat(audioPath); err == nil {
		target := filepath.Join(dir, filepath.Base(audioPath))
		if err := fileutil.MoveFile(audioPath, target); err != nil {
			return "", services.Wrap(services.ErrPersistence, "archive", "move audio", filepath.Base(audioPath), err)
		}
		a.logger.Info("archived audio recording",
			logging.String("source", audioPath),
			logging.String("target", target),
		)
	} else if !os.IsNotExist(err) {
		return "", services.Wrap(services.ErrPersistence, "archive", "stat audio", filepath.Base(audioPath), err)
	}

	if subtitlePath == "" {
		return dir, nil
	}
	if _, err := os.Stat(subtitlePath); err != nil {
		if os.IsNotExist(err) {
			return dir, nil
		}
		return "", services.Wrap(services.ErrPersistence, "archive", "stat subtitle", filepath.Base(subtitlePath), err)
	}

	target := filepath.Join(dir, filepath.Base(subtitlePath))
	if _, err := os.Stat(target); err == nil {
		a.logger.Warn("subtitle already archived, skipping move",
			logging.String("subtitle", filepath.Base(subtitlePath)),
			logging.String("target", target),
		)
		return dir, nil
	}
	if err := fileutil.MoveFile(subtitlePath, target); err != nil {
		return "", services.Wrap(services.ErrPersistence, "archive", "move subtitle", filepath.Base(subtitlePath), err)
	}
	a.logger.Info("archived subtitle file",
		logging.String("source", subtitlePath),
		logging.String("target", target),
	)
	return dir, nil
}
