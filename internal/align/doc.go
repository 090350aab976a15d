// Package align fuses transcription segments with speaker diarization turns
// into speaker-attributed combined segments.
package align
