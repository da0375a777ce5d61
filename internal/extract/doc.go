// Package extract cuts resolved timespans out of decoded recordings.
//
// Cuts are sample-accurate with short linear fades at both boundaries, and
// durations outside the configured sanity window are flagged for review
// instead of being silently emitted.
package extract
