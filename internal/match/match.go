package match

import (
	"phrasecut/internal/align"
)

// Candidate is a contiguous aligned-word span that matches a phrase.
// Ephemeral: it exists only between matching and span resolution.
type Candidate struct {
	StartIndex int
	EndIndex   int // inclusive
	Score      float64
	Start      float64
	End        float64
	Exact      bool
}

// Options tunes the fuzzy fallback. The zero value disables fuzzy matching.
type Options struct {
	FuzzyEnabled bool
	// SubstitutionsPerTokens allows one token substitution per this many
	// phrase tokens (minimum one substitution overall).
	SubstitutionsPerTokens int
	// ScaleWithLength pins the budget at one substitution when false.
	ScaleWithLength bool
}

// Match finds all candidate spans for a normalized phrase in an alignment
// index, most-likely-first: every exact match ranks above every fuzzy match,
// and within a tier candidates are ordered by position in the recording. An
// empty result is a normal outcome, not an error.
//
// The fuzzy pass only runs when no exact window exists. It tolerates
// transcript/alignment spelling drift: a window qualifies when at most the
// budgeted number of tokens differ and each differing token pair is close at
// the rune level.
func Match(phrase []string, idx *align.Index, opts Options) []Candidate {
	n := len(phrase)
	if n == 0 || idx == nil || idx.Len() < n {
		return nil
	}

	candidates := exactPass(phrase, idx)
	if len(candidates) > 0 || !opts.FuzzyEnabled {
		return candidates
	}
	return fuzzyPass(phrase, idx, substitutionBudget(n, opts))
}

func substitutionBudget(phraseLen int, opts Options) int {
	if !opts.ScaleWithLength {
		return 1
	}
	per := opts.SubstitutionsPerTokens
	if per <= 0 {
		per = 4
	}
	budget := phraseLen / per
	if budget < 1 {
		budget = 1
	}
	return budget
}

func exactPass(phrase []string, idx *align.Index) []Candidate {
	n := len(phrase)
	var candidates []Candidate
	for i := 0; i+n <= idx.Len(); i++ {
		if !windowEqual(phrase, idx, i) {
			continue
		}
		start, end := idx.Span(i, i+n-1)
		candidates = append(candidates, Candidate{
			StartIndex: i,
			EndIndex:   i + n - 1,
			Score:      1.0,
			Start:      start,
			End:        end,
			Exact:      true,
		})
	}
	return candidates
}

func windowEqual(phrase []string, idx *align.Index, offset int) bool {
	for k, token := range phrase {
		if idx.Token(offset+k) != token {
			return false
		}
	}
	return true
}

func fuzzyPass(phrase []string, idx *align.Index, budget int) []Candidate {
	n := len(phrase)
	var candidates []Candidate
	for i := 0; i+n <= idx.Len(); i++ {
		substitutions := 0
		ok := true
		for k, token := range phrase {
			got := idx.Token(i + k)
			if got == token {
				continue
			}
			substitutions++
			if substitutions > budget || !tokensClose(token, got) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		start, end := idx.Span(i, i+n-1)
		candidates = append(candidates, Candidate{
			StartIndex: i,
			EndIndex:   i + n - 1,
			Score:      1.0 - float64(substitutions)/float64(n),
			Start:      start,
			End:        end,
		})
	}
	return candidates
}

// tokensClose reports whether two differing tokens plausibly denote the same
// word with spelling drift. The rune edit budget grows slowly with token
// length so short function words stay strict.
func tokensClose(a, b string) bool {
	shorter := len([]rune(a))
	if lb := len([]rune(b)); lb < shorter {
		shorter = lb
	}
	allowed := 1 + shorter/6
	return editDistance(a, b) <= allowed
}
