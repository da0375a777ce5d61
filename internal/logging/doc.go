// Package logging builds the slog loggers used across phrasecut.
//
// It provides a console handler that renders compact single-line records
// (timestamp, level, component prefix, message, key=value attrs) plus a JSON
// handler for machine consumption, selected by config. Attr helpers and shared
// field keys keep batch, matcher, and extractor output consistent.
package logging
