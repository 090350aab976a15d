// Command lectern organizes lecture audio recordings: it transcribes and
// diarizes incoming files, matches them to course schedules, generates
// summaries, and archives the results.
package main
