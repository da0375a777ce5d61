package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file locations used by a batch run.
type Paths struct {
	AudioDir     string `toml:"audio_dir"`
	AlignmentDir string `toml:"alignment_dir"`
	ClipsDir     string `toml:"clips_dir"`
	LogDir       string `toml:"log_dir"`
	ManifestPath string `toml:"manifest_path"`
}

// Normalizer contains text normalization settings shared by transcript
// tokens and phrase-list entries.
type Normalizer struct {
	// FoldDiacritics makes matching accent-insensitive so learner-typed
	// phrases missing accents still match the aligned transcript.
	FoldDiacritics bool `toml:"fold_diacritics"`
}

// Matcher contains phrase matching settings.
type Matcher struct {
	FuzzyEnabled bool `toml:"fuzzy_enabled"`
	// SubstitutionsPerTokens is the fuzzy budget denominator: one token
	// substitution is allowed per this many phrase tokens (minimum one).
	SubstitutionsPerTokens int `toml:"substitutions_per_tokens"`
	// ScaleWithLength pins the budget at one substitution when false.
	ScaleWithLength bool `toml:"scale_with_length"`
}

// Resolver contains span resolution settings.
type Resolver struct {
	PaddingMS int `toml:"padding_ms"`
}

// Extractor contains clip extraction settings.
type Extractor struct {
	FadeMS    int `toml:"fade_ms"`
	MinClipMS int `toml:"min_clip_ms"`
	MaxClipMS int `toml:"max_clip_ms"`
}

// Batch contains orchestration settings.
type Batch struct {
	Workers               int `toml:"workers"`
	AlignerTimeoutSeconds int `toml:"aligner_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for phrasecut.
//
// Configuration sections by subsystem:
//   - Paths: audio, alignment, clip output, log, and manifest locations
//   - Normalizer: token normalization policy (diacritic folding)
//   - Matcher: exact/fuzzy matching budgets
//   - Resolver: span padding
//   - Extractor: fade length and clip duration sanity bounds
//   - Batch: worker count and external aligner timeout
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Normalizer Normalizer `toml:"normalizer"`
	Matcher    Matcher    `toml:"matcher"`
	Resolver   Resolver   `toml:"resolver"`
	Extractor  Extractor  `toml:"extractor"`
	Batch      Batch      `toml:"batch"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/phrasecut/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("phrasecut.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for a batch run.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ClipsDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if manifestDir := filepath.Dir(c.Paths.ManifestPath); manifestDir != "." && manifestDir != "" {
		if err := os.MkdirAll(manifestDir, 0o755); err != nil {
			return fmt.Errorf("create manifest directory %q: %w", manifestDir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for audio decoding.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
