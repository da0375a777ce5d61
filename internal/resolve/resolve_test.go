package resolve

import (
	"errors"
	"math"
	"testing"

	"phrasecut/internal/align"
	"phrasecut/internal/match"
	"phrasecut/internal/services"
	"phrasecut/internal/textnorm"
)

const fileDuration = 10.0

var defaultOpts = Options{PaddingSeconds: 0.08}

func dialogueIndex(t *testing.T) *align.Index {
	t.Helper()
	idx, err := align.NewIndex("dialogue_03", []align.Word{
		{Text: "bonjour", Start: 0.0, End: 0.4},
		{Text: "madame", Start: 0.4, End: 0.9},
		{Text: "comment", Start: 1.0, End: 1.3},
		{Text: "allez", Start: 1.3, End: 1.6},
		{Text: "vous", Start: 1.6, End: 1.9},
	}, textnorm.FoldNone)
	if err != nil {
		t.Fatal(err)
	}
	return idx
}

var matchOpts = match.Options{FuzzyEnabled: true, SubstitutionsPerTokens: 4, ScaleWithLength: true}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestResolveSingleExactMatchWithPadding(t *testing.T) {
	idx := dialogueIndex(t)
	candidates := match.Match([]string{"comment", "allez", "vous"}, idx, matchOpts)

	result, err := Resolve(candidates, 0, idx, fileDuration, defaultOpts)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Kind != KindResolved {
		t.Fatalf("kind = %v, want resolved", result.Kind)
	}
	span := result.Span
	// Padding clamps to the previous word ("madame" ends at 0.9), leaving the
	// full 80ms on the left here; nothing follows "vous" so the right keeps it too.
	if !approx(span.Start, 0.92) || !approx(span.End, 1.98) {
		t.Errorf("span = [%v, %v], want [0.92, 1.98]", span.Start, span.End)
	}
	if span.Method != MethodExact {
		t.Errorf("method = %v, want exact", span.Method)
	}
	// Padding must strictly contain the raw token interval.
	if span.Start > 1.0 || span.End < 1.9 {
		t.Errorf("span [%v, %v] does not contain raw interval [1.0, 1.9]", span.Start, span.End)
	}
}

func TestResolveFuzzyTypoSameSpan(t *testing.T) {
	idx := dialogueIndex(t)
	candidates := match.Match([]string{"commont", "allez", "vous"}, idx, matchOpts)

	result, err := Resolve(candidates, 0, idx, fileDuration, defaultOpts)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Kind != KindResolved {
		t.Fatalf("kind = %v, want resolved", result.Kind)
	}
	if !approx(result.Span.Start, 0.92) || !approx(result.Span.End, 1.98) {
		t.Errorf("span = [%v, %v], want [0.92, 1.98]", result.Span.Start, result.Span.End)
	}
	if result.Span.Method != MethodFuzzy {
		t.Errorf("method = %v, want fuzzy", result.Span.Method)
	}
}

func TestResolveNotFound(t *testing.T) {
	idx := dialogueIndex(t)
	result, err := Resolve(nil, 0, idx, fileDuration, defaultOpts)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Kind != KindNotFound {
		t.Errorf("kind = %v, want not-found", result.Kind)
	}
}

func repeatedIndex(t *testing.T) *align.Index {
	t.Helper()
	idx, err := align.NewIndex("greetings", []align.Word{
		{Text: "bonjour", Start: 0.0, End: 0.4},
		{Text: "jean", Start: 0.4, End: 0.8},
		{Text: "bonjour", Start: 2.0, End: 2.5},
		{Text: "marie", Start: 2.5, End: 2.9},
	}, textnorm.FoldNone)
	if err != nil {
		t.Fatal(err)
	}
	return idx
}

func TestResolveAmbiguousWithoutHint(t *testing.T) {
	idx := repeatedIndex(t)
	candidates := match.Match([]string{"bonjour"}, idx, matchOpts)

	result, err := Resolve(candidates, 0, idx, fileDuration, defaultOpts)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Kind != KindAmbiguous {
		t.Fatalf("kind = %v, want ambiguous", result.Kind)
	}
	if len(result.Candidates) != 2 {
		t.Errorf("got %d ambiguous candidates, want 2", len(result.Candidates))
	}
}

func TestResolveOccurrenceHint(t *testing.T) {
	idx := repeatedIndex(t)
	candidates := match.Match([]string{"bonjour"}, idx, matchOpts)

	// Deterministic across repeated runs.
	for run := 0; run < 3; run++ {
		result, err := Resolve(candidates, 2, idx, fileDuration, defaultOpts)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if result.Kind != KindResolved {
			t.Fatalf("kind = %v, want resolved", result.Kind)
		}
		if result.Span.StartIndex != 2 {
			t.Errorf("run %d: selected index %d, want 2 (second occurrence)", run, result.Span.StartIndex)
		}
	}
}

func TestResolveOccurrenceOutOfRange(t *testing.T) {
	idx := repeatedIndex(t)
	candidates := match.Match([]string{"bonjour"}, idx, matchOpts)

	_, err := Resolve(candidates, 3, idx, fileDuration, defaultOpts)
	if !errors.Is(err, services.ErrOccurrenceOutOfRange) {
		t.Errorf("expected occurrence-out-of-range error, got %v", err)
	}
}

func TestResolvePaddingClampedToFileBounds(t *testing.T) {
	idx, err := align.NewIndex("edge", []align.Word{
		{Text: "oui", Start: 0.02, End: 0.3},
	}, textnorm.FoldNone)
	if err != nil {
		t.Fatal(err)
	}
	candidates := match.Match([]string{"oui"}, idx, matchOpts)

	result, resolveErr := Resolve(candidates, 0, idx, 0.35, defaultOpts)
	if resolveErr != nil {
		t.Fatalf("Resolve: %v", resolveErr)
	}
	span := result.Span
	if span.Start != 0 {
		t.Errorf("start = %v, want clamp to 0", span.Start)
	}
	if span.End != 0.35 {
		t.Errorf("end = %v, want clamp to duration 0.35", span.End)
	}
	if span.Start >= span.End {
		t.Errorf("invariant violated: start %v >= end %v", span.Start, span.End)
	}
}

func TestResolvePaddingClampedToNeighbors(t *testing.T) {
	idx, err := align.NewIndex("tight", []align.Word{
		{Text: "le", Start: 0.0, End: 0.48},
		{Text: "petit", Start: 0.5, End: 0.9},
		{Text: "chat", Start: 0.93, End: 1.4},
	}, textnorm.FoldNone)
	if err != nil {
		t.Fatal(err)
	}
	candidates := match.Match([]string{"petit"}, idx, matchOpts)

	result, resolveErr := Resolve(candidates, 0, idx, fileDuration, defaultOpts)
	if resolveErr != nil {
		t.Fatalf("Resolve: %v", resolveErr)
	}
	span := result.Span
	// Only 20ms of gap exists on the left and 30ms on the right; the 80ms
	// padding must stop at the neighbors.
	if !approx(span.Start, 0.48) {
		t.Errorf("start = %v, want 0.48 (previous word end)", span.Start)
	}
	if !approx(span.End, 0.93) {
		t.Errorf("end = %v, want 0.93 (next word start)", span.End)
	}
}

func TestResolveFuzzyTierAmbiguity(t *testing.T) {
	idx, err := align.NewIndex("drift", []align.Word{
		{Text: "aller", Start: 0.0, End: 0.4},
		{Text: "vite", Start: 0.4, End: 0.8},
		{Text: "aller", Start: 2.0, End: 2.4},
		{Text: "loin", Start: 2.4, End: 2.8},
	}, textnorm.FoldNone)
	if err != nil {
		t.Fatal(err)
	}
	candidates := match.Match([]string{"allez"}, idx, matchOpts)
	if len(candidates) != 2 {
		t.Fatalf("precondition: want 2 fuzzy candidates, got %+v", candidates)
	}

	result, resolveErr := Resolve(candidates, 0, idx, fileDuration, defaultOpts)
	if resolveErr != nil {
		t.Fatalf("Resolve: %v", resolveErr)
	}
	if result.Kind != KindAmbiguous {
		t.Errorf("equal-score fuzzy matches should be ambiguous, got kind %v", result.Kind)
	}
}
