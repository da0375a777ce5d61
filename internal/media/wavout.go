package media

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"phrasecut/internal/services"
)

// WriteWAV writes an interleaved PCM buffer to a WAV file.
func WriteWAV(path string, samples []int, sampleRate, channels, bitDepth int) error {
	file, err := os.Create(path)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "media", "write wav", path, err)
	}
	defer file.Close()

	encoder := wav.NewEncoder(file, sampleRate, bitDepth, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: bitDepth,
	}
	if err := encoder.Write(buf); err != nil {
		return services.Wrap(services.ErrExternalTool, "media", "write wav", path, err)
	}
	if err := encoder.Close(); err != nil {
		return services.Wrap(services.ErrExternalTool, "media", "write wav", path, err)
	}
	return nil
}
