// Package align imports forced-alignment output and indexes it for phrase
// lookup.
//
// An Index wraps one recording's ordered word timestamps, validated at
// construction (non-decreasing, non-overlapping intervals) and normalized with
// the shared text normalizer so the matcher compares like with like. Parsers
// cover Montreal Forced Aligner TextGrid files (including UTF-16 output) and
// WhisperX word-level JSON; both sit behind the narrow Provider contract so
// the aligner stays swappable. CommandAligner shells out to an external
// aligner with a hard timeout for recordings that have no alignment file yet.
package align
