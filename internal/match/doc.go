// Package match locates phrase token sequences inside an alignment index.
//
// Matching runs an exact sliding-window pass first; only when no exact window
// exists does a bounded edit-distance fallback run, tolerating transcription
// spelling drift without ever outranking an exact hit. Candidates are returned
// in recording order within each tier so downstream occurrence hints are
// deterministic.
package match
