package align

import (
	"fmt"

	"phrasecut/internal/services"
	"phrasecut/internal/textnorm"
)

// Word is one token from forced alignment: text plus its time interval in the
// source recording. Confidence is optional; aligners that do not report it
// leave it zero.
type Word struct {
	Text       string
	Start      float64
	End        float64
	Confidence float64
}

// Index wraps the ordered word sequence of one recording and answers
// token-range time queries. Words are normalized once at construction with the
// same normalizer the phrase matcher uses. Immutable after construction.
type Index struct {
	recording string
	words     []Word
	tokens    []string
}

// NewIndex validates and indexes an aligned word sequence. Timestamps must be
// non-decreasing and non-overlapping; anything else fails the whole recording
// with an alignment-corrupt error. Words that normalize to nothing (silence
// markers, stray punctuation) are dropped, mirroring how aligners emit empty
// intervals between speech.
func NewIndex(recording string, words []Word, mode textnorm.FoldMode) (*Index, error) {
	kept := make([]Word, 0, len(words))
	tokens := make([]string, 0, len(words))

	var prevEnd float64
	for i, w := range words {
		if w.Start < 0 || w.End <= w.Start {
			return nil, services.Wrap(services.ErrAlignmentCorrupt, "align", "validate",
				fmt.Sprintf("word %d (%q) has invalid interval [%.3f, %.3f]", i, w.Text, w.Start, w.End), nil)
		}
		if w.Start < prevEnd {
			return nil, services.Wrap(services.ErrAlignmentCorrupt, "align", "validate",
				fmt.Sprintf("word %d (%q) starts at %.3f before previous word ends at %.3f", i, w.Text, w.Start, prevEnd), nil)
		}
		prevEnd = w.End

		token := textnorm.NormalizeWord(w.Text, mode)
		if token == "" {
			continue
		}
		kept = append(kept, w)
		tokens = append(tokens, token)
	}

	return &Index{recording: recording, words: kept, tokens: tokens}, nil
}

// Recording returns the identifier of the source recording.
func (x *Index) Recording() string { return x.recording }

// Len returns the number of indexed words.
func (x *Index) Len() int { return len(x.words) }

// Token returns the normalized text of word i.
func (x *Index) Token(i int) string { return x.tokens[i] }

// Tokens returns the full normalized token sequence. Callers must not mutate
// the returned slice.
func (x *Index) Tokens() []string { return x.tokens }

// Word returns the aligned word at position i.
func (x *Index) Word(i int) Word { return x.words[i] }

// Span returns the raw time interval covered by the inclusive token range
// [i, j].
func (x *Index) Span(i, j int) (start, end float64) {
	return x.words[i].Start, x.words[j].End
}

// PrevEnd returns the end time of the word before position i, or 0 when i is
// the first word. Used to clamp span padding so it never bleeds into adjacent
// speech.
func (x *Index) PrevEnd(i int) float64 {
	if i <= 0 {
		return 0
	}
	return x.words[i-1].End
}

// NextStart returns the start time of the word after position j, or the given
// fallback when j is the last word.
func (x *Index) NextStart(j int, fallback float64) float64 {
	if j >= len(x.words)-1 {
		return fallback
	}
	return x.words[j+1].Start
}
