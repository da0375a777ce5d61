// Package resolve selects one extraction timespan per phrase request from
// matcher candidates.
//
// Ambiguity is a first-class outcome: multiple equally ranked matches are
// surfaced in full for human or occurrence-hint resolution rather than being
// broken by an arbitrary heuristic. Selected spans receive symmetric padding
// clamped to the recording bounds and to neighboring aligned words.
package resolve
