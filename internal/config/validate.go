package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMatcher(); err != nil {
		return err
	}
	if err := c.validateResolver(); err != nil {
		return err
	}
	if err := c.validateExtractor(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMatcher() error {
	if c.Matcher.SubstitutionsPerTokens < 1 {
		return errors.New("matcher.substitutions_per_tokens must be at least 1")
	}
	return nil
}

func (c *Config) validateResolver() error {
	if c.Resolver.PaddingMS < 0 {
		return errors.New("resolver.padding_ms must not be negative")
	}
	return nil
}

func (c *Config) validateExtractor() error {
	if c.Extractor.FadeMS < 0 {
		return errors.New("extractor.fade_ms must not be negative")
	}
	if c.Extractor.MinClipMS <= 0 {
		return errors.New("extractor.min_clip_ms must be positive")
	}
	if c.Extractor.MaxClipMS <= c.Extractor.MinClipMS {
		return fmt.Errorf("extractor.max_clip_ms must exceed min_clip_ms (%d)", c.Extractor.MinClipMS)
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.Workers < 1 {
		return errors.New("batch.workers must be at least 1")
	}
	if c.Batch.AlignerTimeoutSeconds < 1 {
		return errors.New("batch.aligner_timeout_seconds must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
