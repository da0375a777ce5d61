package align

import (
	"errors"
	"testing"

	"phrasecut/internal/services"
	"phrasecut/internal/textnorm"
)

func dialogueWords() []Word {
	return []Word{
		{Text: "bonjour", Start: 0.0, End: 0.4},
		{Text: "madame", Start: 0.4, End: 0.9},
		{Text: "comment", Start: 1.0, End: 1.3},
		{Text: "allez", Start: 1.3, End: 1.6},
		{Text: "vous", Start: 1.6, End: 1.9},
	}
}

func TestNewIndexValid(t *testing.T) {
	idx, err := NewIndex("dialogue_03", dialogueWords(), textnorm.FoldNone)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	if idx.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", idx.Len())
	}
	start, end := idx.Span(2, 4)
	if start != 1.0 || end != 1.9 {
		t.Errorf("Span(2, 4) = [%v, %v], want [1.0, 1.9]", start, end)
	}
	if idx.Token(0) != "bonjour" {
		t.Errorf("Token(0) = %q", idx.Token(0))
	}
}

func TestNewIndexRejectsCorruptTimestamps(t *testing.T) {
	tests := []struct {
		name  string
		words []Word
	}{
		{"overlapping", []Word{
			{Text: "a", Start: 0.0, End: 0.6},
			{Text: "b", Start: 0.5, End: 0.9},
		}},
		{"non-monotonic", []Word{
			{Text: "a", Start: 1.0, End: 1.4},
			{Text: "b", Start: 0.2, End: 0.6},
		}},
		{"zero length", []Word{
			{Text: "a", Start: 0.5, End: 0.5},
		}},
		{"inverted interval", []Word{
			{Text: "a", Start: 0.9, End: 0.4},
		}},
		{"negative start", []Word{
			{Text: "a", Start: -0.1, End: 0.4},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewIndex("bad", tt.words, textnorm.FoldNone)
			if !errors.Is(err, services.ErrAlignmentCorrupt) {
				t.Errorf("expected alignment-corrupt error, got %v", err)
			}
		})
	}
}

func TestNewIndexDropsEmptyTokens(t *testing.T) {
	words := []Word{
		{Text: "bonjour", Start: 0.0, End: 0.4},
		{Text: "...", Start: 0.4, End: 0.5},
		{Text: "madame", Start: 0.5, End: 0.9},
	}
	idx, err := NewIndex("r", words, textnorm.FoldNone)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	if idx.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 after dropping punctuation-only word", idx.Len())
	}
	if idx.Token(1) != "madame" {
		t.Errorf("Token(1) = %q, want madame", idx.Token(1))
	}
}

func TestNewIndexFoldsDiacritics(t *testing.T) {
	words := []Word{{Text: "Préfère", Start: 0.0, End: 0.5}}
	idx, err := NewIndex("r", words, textnorm.FoldDiacritics)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	if idx.Token(0) != "prefere" {
		t.Errorf("Token(0) = %q, want prefere", idx.Token(0))
	}
}

func TestNeighborAccessors(t *testing.T) {
	idx, err := NewIndex("dialogue_03", dialogueWords(), textnorm.FoldNone)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	if got := idx.PrevEnd(0); got != 0 {
		t.Errorf("PrevEnd(0) = %v, want 0", got)
	}
	if got := idx.PrevEnd(2); got != 0.9 {
		t.Errorf("PrevEnd(2) = %v, want 0.9", got)
	}
	if got := idx.NextStart(4, 12.5); got != 12.5 {
		t.Errorf("NextStart(last) = %v, want fallback 12.5", got)
	}
	if got := idx.NextStart(1, 99); got != 1.0 {
		t.Errorf("NextStart(1) = %v, want 1.0", got)
	}
}
