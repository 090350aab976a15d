// Package subtitles formats transcript segments as SRT subtitle files.
package subtitles
