package extract

import (
	"fmt"
	"math"

	"phrasecut/internal/media"
	"phrasecut/internal/resolve"
	"phrasecut/internal/services"
)

// Options tunes clip post-processing.
type Options struct {
	// FadeSeconds is the linear fade applied at both cut boundaries so clips
	// do not click at playback start/end.
	FadeSeconds float64
	// MinDuration/MaxDuration bound plausible clip lengths; durations outside
	// the window are flagged suspicious (they usually indicate a matcher
	// error) but the artifact is still produced for review.
	MinDuration float64
	MaxDuration float64
}

// Clip is one extracted audio artifact: an independent sample payload plus
// format, handed to the deck-building collaborator keyed by its request.
type Clip struct {
	Recording  string
	Samples    []int
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   float64
	Suspicious bool
	Flag       string
}

// Extract cuts the resolved span out of the recording's sample buffer. It
// reads the shared immutable buffer and returns a fresh payload, so
// extractions for one recording can run concurrently.
func Extract(rec *media.Recording, span resolve.Span, opts Options) (*Clip, error) {
	if rec == nil || rec.Frames() == 0 {
		return nil, services.Wrap(services.ErrAudioDecode, "extract", "cut", "recording has no samples", nil)
	}
	if span.End <= span.Start {
		return nil, services.Wrap(services.ErrSuspiciousSpan, "extract", "cut",
			fmt.Sprintf("degenerate span [%.3f, %.3f]", span.Start, span.End), nil)
	}

	startFrame := int(math.Round(span.Start * float64(rec.SampleRate)))
	endFrame := int(math.Round(span.End * float64(rec.SampleRate)))
	if startFrame < 0 {
		startFrame = 0
	}
	if endFrame > rec.Frames() {
		endFrame = rec.Frames()
	}
	if endFrame <= startFrame {
		return nil, services.Wrap(services.ErrSuspiciousSpan, "extract", "cut",
			fmt.Sprintf("span [%.3f, %.3f] lies outside the recording", span.Start, span.End), nil)
	}

	samples := make([]int, (endFrame-startFrame)*rec.Channels)
	copy(samples, rec.Samples[startFrame*rec.Channels:endFrame*rec.Channels])
	applyFades(samples, rec.Channels, int(math.Round(opts.FadeSeconds*float64(rec.SampleRate))))

	clip := &Clip{
		Recording:  rec.ID,
		Samples:    samples,
		SampleRate: rec.SampleRate,
		Channels:   rec.Channels,
		BitDepth:   rec.BitDepth,
		Duration:   float64(endFrame-startFrame) / float64(rec.SampleRate),
	}

	if opts.MinDuration > 0 && clip.Duration < opts.MinDuration {
		clip.Suspicious = true
		clip.Flag = fmt.Sprintf("clip %.3fs shorter than %.3fs minimum", clip.Duration, opts.MinDuration)
	} else if opts.MaxDuration > 0 && clip.Duration > opts.MaxDuration {
		clip.Suspicious = true
		clip.Flag = fmt.Sprintf("clip %.3fs longer than %.3fs maximum", clip.Duration, opts.MaxDuration)
	}
	return clip, nil
}

// applyFades ramps the first and last fadeFrames frames linearly. The fade is
// shortened when the clip is too small to hold two full ramps.
func applyFades(samples []int, channels, fadeFrames int) {
	if fadeFrames <= 0 || channels <= 0 {
		return
	}
	frames := len(samples) / channels
	if fadeFrames > frames/2 {
		fadeFrames = frames / 2
	}
	if fadeFrames == 0 {
		return
	}
	for f := 0; f < fadeFrames; f++ {
		gain := float64(f) / float64(fadeFrames)
		for c := 0; c < channels; c++ {
			in := f*channels + c
			out := (frames-1-f)*channels + c
			samples[in] = int(math.Round(float64(samples[in]) * gain))
			samples[out] = int(math.Round(float64(samples[out]) * gain))
		}
	}
}
