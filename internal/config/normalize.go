package config

import "strings"

// normalize expands path fields and trims string settings in place.
func (c *Config) normalize() error {
	paths := []*string{
		&c.Paths.IncomingDir,
		&c.Paths.ProcessedDir,
		&c.Paths.ArchiveDir,
		&c.Paths.DataDir,
		&c.Paths.LogDir,
	}
	for _, field := range paths {
		expanded, err := expandPath(strings.TrimSpace(*field))
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.Transcriber.BaseURL = strings.TrimRight(strings.TrimSpace(c.Transcriber.BaseURL), "/")
	c.Diarizer.BaseURL = strings.TrimRight(strings.TrimSpace(c.Diarizer.BaseURL), "/")
	c.Gemini.BaseURL = strings.TrimRight(strings.TrimSpace(c.Gemini.BaseURL), "/")
	c.Gemini.APIKey = strings.TrimSpace(c.Gemini.APIKey)
	c.Gemini.Model = strings.TrimSpace(c.Gemini.Model)
	c.Diarizer.HFToken = strings.TrimSpace(c.Diarizer.HFToken)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}
