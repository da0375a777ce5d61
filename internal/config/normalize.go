package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMatcher()
	c.normalizeResolver()
	c.normalizeExtractor()
	c.normalizeBatch()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.AudioDir) == "" {
		c.Paths.AudioDir = defaultAudioDir
	}
	if c.Paths.AudioDir, err = expandPath(c.Paths.AudioDir); err != nil {
		return fmt.Errorf("paths.audio_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.AlignmentDir) == "" {
		c.Paths.AlignmentDir = defaultAlignmentDir
	}
	if c.Paths.AlignmentDir, err = expandPath(c.Paths.AlignmentDir); err != nil {
		return fmt.Errorf("paths.alignment_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ClipsDir) == "" {
		c.Paths.ClipsDir = defaultClipsDir
	}
	if c.Paths.ClipsDir, err = expandPath(c.Paths.ClipsDir); err != nil {
		return fmt.Errorf("paths.clips_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ManifestPath) == "" {
		c.Paths.ManifestPath = defaultManifestPath
	}
	if c.Paths.ManifestPath, err = expandPath(c.Paths.ManifestPath); err != nil {
		return fmt.Errorf("paths.manifest_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeMatcher() {
	if c.Matcher.SubstitutionsPerTokens <= 0 {
		c.Matcher.SubstitutionsPerTokens = defaultSubstitutionsPerToken
	}
}

func (c *Config) normalizeResolver() {
	if c.Resolver.PaddingMS < 0 {
		c.Resolver.PaddingMS = defaultPaddingMS
	}
}

func (c *Config) normalizeExtractor() {
	if c.Extractor.FadeMS < 0 {
		c.Extractor.FadeMS = defaultFadeMS
	}
	if c.Extractor.MinClipMS <= 0 {
		c.Extractor.MinClipMS = defaultMinClipMS
	}
	if c.Extractor.MaxClipMS <= 0 {
		c.Extractor.MaxClipMS = defaultMaxClipMS
	}
}

func (c *Config) normalizeBatch() {
	if c.Batch.Workers <= 0 {
		c.Batch.Workers = defaultWorkers
	}
	if c.Batch.AlignerTimeoutSeconds <= 0 {
		c.Batch.AlignerTimeoutSeconds = defaultAlignerTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}
