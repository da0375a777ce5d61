package align

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"phrasecut/internal/services"
)

// Provider loads the aligned word sequence for one recording. The aligner
// itself is a black box; the core depends only on this output contract, so
// adapters for other tools slot in behind the same method.
type Provider interface {
	Load(ctx context.Context, recording string) ([]Word, error)
}

// DirProvider reads pre-generated alignment files from a directory, one file
// per recording named after it: <recording>.TextGrid (MFA) or
// <recording>.json (WhisperX).
type DirProvider struct {
	Dir string
}

func (p DirProvider) Load(_ context.Context, recording string) ([]Word, error) {
	for _, candidate := range []struct {
		suffix string
		parse  func(string) ([]Word, error)
	}{
		{".TextGrid", ParseTextGrid},
		{".textgrid", ParseTextGrid},
		{".json", ParseWhisperX},
	} {
		path := filepath.Join(p.Dir, recording+candidate.suffix)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return candidate.parse(path)
	}
	return nil, services.Wrap(services.ErrNotFound, "align", "locate alignment",
		fmt.Sprintf("no alignment file for recording %q under %s", recording, p.Dir), nil)
}

// ParseFile dispatches on file extension. Used by the CLI inspect command.
func ParseFile(path string) ([]Word, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".textgrid":
		return ParseTextGrid(path)
	case ".json":
		return ParseWhisperX(path)
	default:
		return nil, services.Wrap(services.ErrInvalidRequest, "align", "parse",
			fmt.Sprintf("unsupported alignment format %q", filepath.Ext(path)), nil)
	}
}
