package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldMode controls diacritic handling during normalization.
type FoldMode int

const (
	// FoldNone keeps accents; matching is exact.
	FoldNone FoldMode = iota
	// FoldDiacritics strips combining marks so learner-typed phrases
	// missing accents still match the aligned transcript.
	FoldDiacritics
)

// diacriticFolder decomposes to NFD, drops combining marks, and recomposes.
var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes text into comparable tokens: lowercased, punctuation
// stripped except apostrophes and hyphens inside words, optional diacritic
// folding. The same function must be applied to aligned transcript words and to
// phrase-list entries; it is the single source of truth for both paths.
func Normalize(text string, mode FoldMode) []string {
	return tokenize(NormalizeWord(text, mode))
}

// NormalizeWord canonicalizes a single string without splitting it into
// tokens. Idempotent: NormalizeWord(NormalizeWord(x)) == NormalizeWord(x).
func NormalizeWord(text string, mode FoldMode) string {
	lowered := strings.ToLower(text)
	lowered = strings.ReplaceAll(lowered, "’", "'")
	if mode == FoldDiacritics {
		if folded, _, err := transform.String(diacriticFolder, lowered); err == nil {
			lowered = folded
		}
	}

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '\'' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(tokenize(b.String()), " ")
}

// tokenize splits on whitespace and trims apostrophes/hyphens that are not
// inside a word. Empty tokens are dropped.
func tokenize(text string) []string {
	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		token := strings.Trim(field, "'-")
		if token == "" {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// clipNameReplacer maps characters the original phrase may carry into
// filesystem-safe equivalents before the alnum filter runs.
var clipNameReplacer = strings.NewReplacer(" ", "_", "'", "", "-", "_")

// ClipName derives a filesystem-safe clip file stem from a phrase.
// Diacritics are always folded so names stay ASCII. Returns "clip" for
// input that normalizes to nothing.
func ClipName(phrase string) string {
	joined := strings.Join(Normalize(phrase, FoldDiacritics), " ")
	candidate := clipNameReplacer.Replace(joined)
	var b strings.Builder
	for _, r := range candidate {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '_':
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "clip"
	}
	return out
}
