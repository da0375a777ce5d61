// Package main hosts the phrasecut CLI entrypoint and command graph.
//
// The Cobra-based command tree drives batch runs over phrase lists, renders
// manifest reports, and offers dry-run inspection of alignments and matches.
// It centralizes configuration resolution and logging setup so subcommands
// can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
