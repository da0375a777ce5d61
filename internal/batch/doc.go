// Package batch orchestrates a full run: phrase-list intake, per-recording
// grouping, worker-pool dispatch, span resolution, clip extraction, and
// manifest bookkeeping.
package batch
