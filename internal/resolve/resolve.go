package resolve

import (
	"fmt"

	"phrasecut/internal/align"
	"phrasecut/internal/match"
	"phrasecut/internal/services"
)

// Method records how a span was selected.
type Method string

const (
	MethodExact Method = "exact"
	MethodFuzzy Method = "fuzzy"
)

// Span is the single extraction interval chosen for a phrase request.
// Invariant: Start < End and the interval lies within [0, duration] of the
// recording.
type Span struct {
	StartIndex int
	EndIndex   int
	Start      float64
	End        float64
	Method     Method
}

// Kind tags the resolution outcome. Ambiguity and absence are normal
// outcomes, not errors; the caller records them and moves on.
type Kind int

const (
	KindResolved Kind = iota
	KindAmbiguous
	KindNotFound
)

// Result is the tagged resolution outcome. Candidates is populated for
// KindAmbiguous so every contender can be surfaced for manual review.
type Result struct {
	Kind       Kind
	Span       Span
	Candidates []match.Candidate
}

// Options tunes span selection.
type Options struct {
	// PaddingSeconds is added symmetrically around the matched tokens,
	// clamped to file bounds and to the neighboring words' intervals so the
	// clip never bleeds into adjacent speech.
	PaddingSeconds float64
}

// Resolve turns matcher candidates into at most one extraction span.
//
// With an occurrence hint (1-based) the hinted ordinal is selected in file
// order; an ordinal beyond the candidate count is an error. Without a hint a
// single top-ranked candidate resolves directly, while multiple equally
// ranked candidates yield an ambiguous result listing all of them; the
// resolver never guesses.
func Resolve(candidates []match.Candidate, occurrence int, idx *align.Index, duration float64, opts Options) (Result, error) {
	if len(candidates) == 0 {
		return Result{Kind: KindNotFound}, nil
	}

	if occurrence > 0 {
		if occurrence > len(candidates) {
			return Result{}, services.Wrap(services.ErrOccurrenceOutOfRange, "resolve", "occurrence hint",
				fmt.Sprintf("occurrence %d requested but only %d matches found", occurrence, len(candidates)), nil)
		}
		return Result{Kind: KindResolved, Span: pad(candidates[occurrence-1], idx, duration, opts)}, nil
	}

	top := topTier(candidates)
	if len(top) > 1 {
		return Result{Kind: KindAmbiguous, Candidates: top}, nil
	}
	return Result{Kind: KindResolved, Span: pad(top[0], idx, duration, opts)}, nil
}

// topTier returns the equally ranked leading candidates: all of them for
// exact matches (every exact match scores the same), or the maximum-score
// subset for fuzzy matches, preserving file order.
func topTier(candidates []match.Candidate) []match.Candidate {
	best := candidates[0].Score
	for _, c := range candidates[1:] {
		if c.Score > best {
			best = c.Score
		}
	}
	tier := make([]match.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Score == best {
			tier = append(tier, c)
		}
	}
	return tier
}

func pad(c match.Candidate, idx *align.Index, duration float64, opts Options) Span {
	start := c.Start - opts.PaddingSeconds
	end := c.End + opts.PaddingSeconds

	if prev := idx.PrevEnd(c.StartIndex); start < prev {
		start = prev
	}
	if start < 0 {
		start = 0
	}
	if next := idx.NextStart(c.EndIndex, duration); end > next {
		end = next
	}
	if duration > 0 && end > duration {
		end = duration
	}

	method := MethodFuzzy
	if c.Exact {
		method = MethodExact
	}
	return Span{
		StartIndex: c.StartIndex,
		EndIndex:   c.EndIndex,
		Start:      start,
		End:        end,
		Method:     method,
	}
}
