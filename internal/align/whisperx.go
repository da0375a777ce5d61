package align

import (
	"encoding/json"
	"os"

	"phrasecut/internal/services"
)

// WhisperX writes segment-grouped word timestamps as JSON. Words without
// timing (numerals and other tokens the aligner cannot place) are skipped.

type whisperXWord struct {
	Word  string   `json:"word"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
	Score *float64 `json:"score"`
}

type whisperXSegment struct {
	Words []whisperXWord `json:"words"`
}

type whisperXPayload struct {
	Segments []whisperXSegment `json:"segments"`
}

// ParseWhisperX reads a WhisperX word-level JSON file and flattens it into an
// ordered word sequence.
func ParseWhisperX(path string) ([]Word, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "align", "read whisperx json", path, err)
	}
	var payload whisperXPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, services.Wrap(services.ErrAlignmentCorrupt, "align", "parse whisperx json", path, err)
	}

	var words []Word
	for _, segment := range payload.Segments {
		for _, w := range segment.Words {
			if w.Start == nil || w.End == nil {
				continue
			}
			word := Word{Text: w.Word, Start: *w.Start, End: *w.End}
			if w.Score != nil {
				word.Confidence = *w.Score
			}
			words = append(words, word)
		}
	}
	return words, nil
}
