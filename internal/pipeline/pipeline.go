// Package pipeline orchestrates the processing of incoming lecture
// recordings: transcription, diarization, alignment, schedule matching,
// content generation, persistence, journaling, and archival.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"lectern/internal/align"
	"lectern/internal/archive"
	"lectern/internal/catalog"
	"lectern/internal/config"
	"lectern/internal/fileutil"
	"lectern/internal/journal"
	"lectern/internal/logging"
	"lectern/internal/records"
	"lectern/internal/schedule"
	"lectern/internal/services"
	"lectern/internal/services/gemini"
	"lectern/internal/subtitles"
)

// Transcriber converts an audio file into timed transcript segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]align.TranscriptSegment, error)
}

// Diarizer labels who is speaking when in an audio file.
type Diarizer interface {
	Diarize(ctx context.Context, audioPath string) ([]align.SpeakerTurn, error)
}

// Generator produces summary or highlight text from a transcript.
type Generator interface {
	Generate(ctx context.Context, prompt, text string) (string, error)
}

// Result describes the outcome of processing one recording.
type Result struct {
	Source     string
	Course     string
	Date       string
	Time       string
	ArchiveDir string
	Duplicate  bool
	Err        error
}

// Summary aggregates a batch run.
type Summary struct {
	Processed int
	Failed    int
	Results   []Result
}

// Pipeline wires the processing stages together.
type Pipeline struct {
	cfg         *config.Config
	catalog     *catalog.Catalog
	store       *records.Store
	matcher     *schedule.Matcher
	archiver    *archive.Archiver
	journal     *journal.Journal
	transcriber Transcriber
	diarizer    Diarizer
	generator   Generator
	logger      *slog.Logger
}

// New constructs a pipeline. journal may be nil; journaling is then skipped.
func New(
	cfg *config.Config,
	cat *catalog.Catalog,
	store *records.Store,
	matcher *schedule.Matcher,
	archiver *archive.Archiver,
	jnl *journal.Journal,
	transcriber Transcriber,
	diarizer Diarizer,
	generator Generator,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		catalog:     cat,
		store:       store,
		matcher:     matcher,
		archiver:    archiver,
		journal:     jnl,
		transcriber: transcriber,
		diarizer:    diarizer,
		generator:   generator,
		logger:      logging.NewComponentLogger(logger, "pipeline"),
	}
}

// ProcessDirectory processes every audio file in the incoming directory, in
// name order. A failure in one file is recorded and the batch moves on.
func (p *Pipeline) ProcessDirectory(ctx context.Context) (Summary, error) {
	var summary Summary

	entries, err := os.ReadDir(p.cfg.Paths.IncomingDir)
	if err != nil {
		return summary, services.Wrap(services.ErrPersistence, "scanning", "read incoming dir", p.cfg.Paths.IncomingDir, err)
	}

	var audioFiles []string
	for _, entry := range entries {
		if entry.IsDir() || !schedule.IsAudioFile(entry.Name()) {
			continue
		}
		audioFiles = append(audioFiles, filepath.Join(p.cfg.Paths.IncomingDir, entry.Name()))
	}
	sort.Strings(audioFiles)

	if len(audioFiles) == 0 {
		p.logger.Info("no audio files found in incoming directory",
			logging.String("dir", p.cfg.Paths.IncomingDir),
		)
		return summary, nil
	}

	for _, audioPath := range audioFiles {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		result := p.ProcessFile(ctx, audioPath)
		summary.Results = append(summary.Results, result)
		if result.Err != nil {
			summary.Failed++
			continue
		}
		summary.Processed++
	}
	return summary, nil
}

// ProcessFile runs the full stage sequence for one recording. The returned
// Result carries the error instead of failing the batch.
func (p *Pipeline) ProcessFile(ctx context.Context, audioPath string) Result {
	result := Result{Source: audioPath}
	base := filepath.Base(audioPath)

	ctx = services.WithRecording(ctx, base)
	ctx = services.WithRequestID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("processing recording")

	fingerprint, err := fileutil.Fingerprint(audioPath)
	if err != nil {
		result.Err = services.Wrap(services.ErrPersistence, "fingerprinting", "hash audio", base, err)
		p.recordFailure(ctx, logger, audioPath, "", result.Err)
		return result
	}
	if p.journal != nil {
		if prior, err := p.journal.FindByFingerprint(ctx, fingerprint); err != nil {
			logger.Warn("journal lookup failed", logging.Error(err))
		} else if prior != nil {
			// Appends are not deduplicated; processing the same content twice
			// writes a second lecture record. Flag it loudly and continue.
			result.Duplicate = true
			logger.Warn("recording content was already processed; a duplicate record will be appended",
				logging.String("prior_source", prior.SourcePath),
				logging.String("prior_course", prior.Course),
			)
		}
	}

	segments, err := p.transcribe(ctx, logger, audioPath)
	if err != nil {
		result.Err = err
		p.recordFailure(ctx, logger, audioPath, fingerprint, err)
		return result
	}

	subtitlePath, err := p.writeSubtitles(ctx, logger, audioPath, segments)
	if err != nil {
		result.Err = err
		p.recordFailure(ctx, logger, audioPath, fingerprint, err)
		return result
	}

	turns, err := p.diarize(ctx, logger, audioPath)
	if err != nil {
		result.Err = err
		p.recordFailure(ctx, logger, audioPath, fingerprint, err)
		return result
	}

	combined, err := p.alignSegments(ctx, logger, segments, turns)
	if err != nil {
		result.Err = err
		p.recordFailure(ctx, logger, audioPath, fingerprint, err)
		return result
	}

	assignment, err := p.matchSchedule(ctx, logger, base)
	if err != nil {
		result.Err = err
		p.recordFailure(ctx, logger, audioPath, fingerprint, err)
		return result
	}
	result.Course = assignment.Course
	result.Date = assignment.Date
	result.Time = assignment.Time

	summary, highlights := p.generateContent(ctx, logger, combined)

	lecture := records.NewLecture(
		records.Metadata{Course: assignment.Course, Date: assignment.Date, Time: assignment.Time},
		summary,
		highlights,
		combined,
	)
	if err := p.persist(ctx, logger, assignment.Course, lecture); err != nil {
		result.Err = err
		p.recordFailure(ctx, logger, audioPath, fingerprint, err)
		return result
	}

	archiveDir, err := p.archive(ctx, logger, audioPath, subtitlePath)
	if err != nil {
		result.Err = err
		p.recordFailure(ctx, logger, audioPath, fingerprint, err)
		return result
	}
	result.ArchiveDir = archiveDir

	if p.journal != nil {
		if _, err := p.journal.RecordCompleted(ctx, audioPath, fingerprint, assignment.Course, archiveDir); err != nil {
			logger.Warn("journal write failed", logging.Error(err))
		}
	}

	logger.Info("recording processed",
		logging.String(logging.FieldCourse, assignment.Course),
		logging.String("archive_dir", archiveDir),
	)
	return result
}

func (p *Pipeline) transcribe(ctx context.Context, logger *slog.Logger, audioPath string) ([]align.TranscriptSegment, error) {
	ctx = services.WithStage(ctx, "transcribing")
	logger = logging.WithContext(ctx, logger)
	logger.Info("transcribing audio")

	segments, err := p.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	logger.Info("transcription complete", logging.Int("segments", len(segments)))
	return segments, nil
}

func (p *Pipeline) writeSubtitles(ctx context.Context, logger *slog.Logger, audioPath string, segments []align.TranscriptSegment) (string, error) {
	ctx = services.WithStage(ctx, "subtitles")
	logger = logging.WithContext(ctx, logger)

	if err := os.MkdirAll(p.cfg.Paths.ProcessedDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrPersistence, "subtitles", "ensure processed dir", p.cfg.Paths.ProcessedDir, err)
	}
	base := filepath.Base(audioPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	subtitlePath := filepath.Join(p.cfg.Paths.ProcessedDir, stem+".srt")

	if err := subtitles.WriteFile(subtitlePath, segments); err != nil {
		return "", err
	}
	logger.Info("subtitle file written", logging.String("path", subtitlePath))
	return subtitlePath, nil
}

func (p *Pipeline) diarize(ctx context.Context, logger *slog.Logger, audioPath string) ([]align.SpeakerTurn, error) {
	ctx = services.WithStage(ctx, "diarizing")
	logger = logging.WithContext(ctx, logger)
	logger.Info("diarizing audio")

	turns, err := p.diarizer.Diarize(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	logger.Info("diarization complete", logging.Int("turns", len(turns)))
	return turns, nil
}

func (p *Pipeline) alignSegments(ctx context.Context, logger *slog.Logger, segments []align.TranscriptSegment, turns []align.SpeakerTurn) ([]align.CombinedSegment, error) {
	ctx = services.WithStage(ctx, "aligning")
	logger = logging.WithContext(ctx, logger)

	combined, err := align.Combine(segments, turns)
	if err != nil {
		return nil, err
	}
	logger.Info("alignment complete",
		logging.Int("segments", len(combined)),
		logging.Int("speakers", len(align.Speakers(combined))),
	)
	return combined, nil
}

func (p *Pipeline) matchSchedule(ctx context.Context, logger *slog.Logger, filename string) (schedule.Assignment, error) {
	ctx = services.WithStage(ctx, "matching")
	logger = logging.WithContext(ctx, logger)

	courses, err := p.catalog.List()
	if err != nil {
		return schedule.Assignment{}, err
	}
	assignment := p.matcher.Match(filename, courses)
	logger.Info("schedule matched",
		logging.String(logging.FieldCourse, assignment.Course),
		logging.String("date", assignment.Date),
		logging.String("time", assignment.Time),
	)
	return assignment, nil
}

// generateContent produces the summary and highlights. A generation failure
// is downgraded to the failure sentinel so one flaky API call does not throw
// away an otherwise complete lecture record.
func (p *Pipeline) generateContent(ctx context.Context, logger *slog.Logger, combined []align.CombinedSegment) (string, string) {
	ctx = services.WithStage(ctx, "generating")
	logger = logging.WithContext(ctx, logger)

	transcript := align.Transcript(combined)

	summary, err := p.generator.Generate(ctx, p.cfg.Gemini.SummaryPrompt, transcript)
	if err != nil {
		logger.Warn("summary generation failed", logging.Error(err))
		summary = gemini.FailedMessage
	}
	highlights, err := p.generator.Generate(ctx, p.cfg.Gemini.HighlightsPrompt, transcript)
	if err != nil {
		logger.Warn("highlights generation failed", logging.Error(err))
		highlights = gemini.FailedMessage
	}
	return summary, highlights
}

func (p *Pipeline) persist(ctx context.Context, logger *slog.Logger, course string, lecture records.Lecture) error {
	ctx = services.WithStage(ctx, "persisting")
	logger = logging.WithContext(ctx, logger)

	if err := p.store.Append(course, lecture); err != nil {
		return err
	}
	logger.Info("lecture record appended",
		logging.String(logging.FieldCourse, course),
		logging.String("record_id", lecture.ID),
	)
	return nil
}

func (p *Pipeline) archive(ctx context.Context, logger *slog.Logger, audioPath, subtitlePath string) (string, error) {
	ctx = services.WithStage(ctx, "archiving")
	logger = logging.WithContext(ctx, logger)

	dir, err := p.archiver.Archive(audioPath, subtitlePath)
	if err != nil {
		return "", err
	}
	return dir, nil
}

func (p *Pipeline) recordFailure(ctx context.Context, logger *slog.Logger, audioPath, fingerprint string, cause error) {
	logger.Error("recording failed", logging.Error(cause))
	if p.journal == nil {
		return
	}
	if _, err := p.journal.RecordFailed(ctx, audioPath, fingerprint, cause.Error()); err != nil {
		logger.Warn("journal write failed", logging.Error(err))
	}
}

// Describe summarizes a batch for log output.
func (s Summary) Describe() string {
	return fmt.Sprintf("%d processed, %d failed", s.Processed, s.Failed)
}
