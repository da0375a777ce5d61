package textnorm

import (
	"reflect"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		text string
		mode FoldMode
		want []string
	}{
		{"lowercase and punctuation", "Bonjour, Madame !", FoldNone, []string{"bonjour", "madame"}},
		{"keeps intra-word apostrophe", "s'il vous plaît", FoldNone, []string{"s'il", "vous", "plaît"}},
		{"curly apostrophe folded to straight", "c’est ça", FoldNone, []string{"c'est", "ça"}},
		{"keeps intra-word hyphen", "le petit-déjeuner", FoldNone, []string{"le", "petit-déjeuner"}},
		{"strips quotes and guillemets", "« bonjour » dit-il...", FoldNone, []string{"bonjour", "dit-il"}},
		{"folds diacritics", "préfère à côté", FoldDiacritics, []string{"prefere", "a", "cote"}},
		{"exact mode keeps accents", "préfère", FoldNone, []string{"préfère"}},
		{"trims dangling apostrophe", "' bonjour '", FoldNone, []string{"bonjour"}},
		{"collapses whitespace", "  comment   allez \t vous ", FoldNone, []string{"comment", "allez", "vous"}},
		{"empty", "  ...  ", FoldNone, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.text, tt.mode)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestNormalizeWordIdempotent(t *testing.T) {
	inputs := []string{
		"Comment allez-vous ?",
		"J'ai PRÉFÉRÉ le déjeuner...",
		"deux, s'il vous plaît !",
	}
	for _, mode := range []FoldMode{FoldNone, FoldDiacritics} {
		for _, input := range inputs {
			once := NormalizeWord(input, mode)
			twice := NormalizeWord(once, mode)
			if once != twice {
				t.Errorf("mode %d: NormalizeWord not idempotent: %q -> %q -> %q", mode, input, once, twice)
			}
		}
	}
}

func TestNormalizeSymmetry(t *testing.T) {
	// Aligned word and phrase text must normalize through the same path.
	aligned := NormalizeWord("Préfère", FoldDiacritics)
	phrase := Normalize("prefere", FoldDiacritics)
	if len(phrase) != 1 || phrase[0] != aligned {
		t.Errorf("aligned %q vs phrase %v should be identical", aligned, phrase)
	}
}

func TestClipName(t *testing.T) {
	tests := []struct {
		phrase string
		want   string
	}{
		{"s'il vous plaît", "sil_vous_plait"},
		{"Comment allez-vous ?", "comment_allez_vous"},
		{"oui c'est ça", "oui_cest_ca"},
		{"...", "clip"},
		{"", "clip"},
	}
	for _, tt := range tests {
		if got := ClipName(tt.phrase); got != tt.want {
			t.Errorf("ClipName(%q) = %q, want %q", tt.phrase, got, tt.want)
		}
	}
}

func TestClipNameASCII(t *testing.T) {
	name := ClipName("petit déjeuner à l'hôtel")
	for _, r := range name {
		if r > 127 {
			t.Fatalf("ClipName produced non-ASCII rune %q in %q", r, name)
		}
	}
	if strings.Contains(name, " ") {
		t.Fatalf("ClipName contains space: %q", name)
	}
}
