// Package manifest persists batch outcomes in SQLite. Every phrase request
// becomes an entry carrying its lifecycle status, the resolved span and clip
// path on success, or the candidate set and failure reason otherwise.
package manifest
