package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"phrasecut/internal/services"
)

// Decoder loads source recordings into sample buffers. WAV files are read
// directly; anything else is routed through ffmpeg, which is the external
// decode collaborator; the core never transcodes formats itself.
type Decoder struct {
	FFmpegBinary string

	runner func(ctx context.Context, name string, args ...string) error
}

// WithRunner sets a custom command runner (for testing).
func (d *Decoder) WithRunner(runner func(ctx context.Context, name string, args ...string) error) {
	d.runner = runner
}

// Decode loads the recording at path into memory.
func (d *Decoder) Decode(ctx context.Context, id, path string) (*Recording, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return LoadWAV(id, path)
	}
	return d.decodeViaFFmpeg(ctx, id, path)
}

func (d *Decoder) decodeViaFFmpeg(ctx context.Context, id, path string) (*Recording, error) {
	tmp, err := os.CreateTemp("", "phrasecut-decode-*.wav")
	if err != nil {
		return nil, services.Wrap(services.ErrAudioDecode, "media", "decode", "create temp wav", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpPath)

	binary := d.FFmpegBinary
	if binary == "" {
		binary = "ffmpeg"
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", path,
		"-vn",
		"-c:a", "pcm_s16le",
		tmpPath,
	}
	if err := d.run(ctx, binary, args...); err != nil {
		return nil, services.Wrap(services.ErrAudioDecode, "media", "decode", path, err)
	}
	return LoadWAV(id, tmpPath)
}

func (d *Decoder) run(ctx context.Context, name string, args ...string) error {
	if d.runner != nil {
		return d.runner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
