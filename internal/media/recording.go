package media

import (
	"os"

	"github.com/go-audio/wav"

	"phrasecut/internal/services"
)

// Recording is one decoded dialogue audio file: an immutable interleaved PCM
// sample buffer plus its format. Loaded once per batch group and shared
// read-only by every extraction for that recording.
type Recording struct {
	ID         string
	Samples    []int
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   float64
}

// Frames returns the number of sample frames (samples per channel).
func (r *Recording) Frames() int {
	if r.Channels == 0 {
		return 0
	}
	return len(r.Samples) / r.Channels
}

// LoadWAV decodes a PCM WAV file into memory.
func LoadWAV(id, path string) (*Recording, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "media", "open audio", path, err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, services.Wrap(services.ErrAudioDecode, "media", "decode wav", path, err)
	}
	if buf == nil || buf.Format == nil || len(buf.Data) == 0 {
		return nil, services.Wrap(services.ErrAudioDecode, "media", "decode wav", path+": empty sample buffer", nil)
	}

	rec := &Recording{
		ID:         id,
		Samples:    buf.Data,
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
		BitDepth:   int(decoder.BitDepth),
	}
	if rec.SampleRate <= 0 || rec.Channels <= 0 {
		return nil, services.Wrap(services.ErrAudioDecode, "media", "decode wav", path+": invalid format", nil)
	}
	if rec.BitDepth == 0 {
		rec.BitDepth = 16
	}
	rec.Duration = float64(rec.Frames()) / float64(rec.SampleRate)
	return rec, nil
}
