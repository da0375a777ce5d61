// Package textnorm canonicalizes transcript and phrase text into comparable
// token form.
//
// Normalization lowercases, strips punctuation that carries no matching
// weight (keeping apostrophes and hyphens inside words), and optionally folds
// diacritics so accent-less learner input still matches accented transcripts.
// Both aligned words and phrase-list entries must pass through the same
// functions; any asymmetry between the two paths is a correctness bug.
package textnorm
