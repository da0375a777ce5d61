package config

const (
	defaultAudioDir              = "~/.local/share/phrasecut/audio"
	defaultAlignmentDir          = "~/.local/share/phrasecut/alignments"
	defaultClipsDir              = "~/.local/share/phrasecut/clips"
	defaultLogDir                = "~/.local/share/phrasecut/logs"
	defaultManifestPath          = "~/.local/share/phrasecut/manifest.db"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultSubstitutionsPerToken = 4
	defaultPaddingMS             = 80
	defaultFadeMS                = 10
	defaultMinClipMS             = 50
	defaultMaxClipMS             = 15000
	defaultWorkers               = 4
	defaultAlignerTimeoutSeconds = 600
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			AudioDir:     defaultAudioDir,
			AlignmentDir: defaultAlignmentDir,
			ClipsDir:     defaultClipsDir,
			LogDir:       defaultLogDir,
			ManifestPath: defaultManifestPath,
		},
		Normalizer: Normalizer{
			FoldDiacritics: true,
		},
		Matcher: Matcher{
			FuzzyEnabled:           true,
			SubstitutionsPerTokens: defaultSubstitutionsPerToken,
			ScaleWithLength:        true,
		},
		Resolver: Resolver{
			PaddingMS: defaultPaddingMS,
		},
		Extractor: Extractor{
			FadeMS:    defaultFadeMS,
			MinClipMS: defaultMinClipMS,
			MaxClipMS: defaultMaxClipMS,
		},
		Batch: Batch{
			Workers:               defaultWorkers,
			AlignerTimeoutSeconds: defaultAlignerTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
