// Package deps checks the availability of external tools a batch run may
// invoke, for preflight diagnostics in the CLI.
package deps
