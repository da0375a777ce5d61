package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers classifying failures across the pipeline. Wrap tags errors
// with one of these so the orchestrator can map a failure to the manifest
// outcome without string matching.
var (
	// ErrInvalidRequest marks a malformed phrase-list row (missing phrase,
	// unresolvable recording reference). The row is skipped and reported.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrAlignmentCorrupt marks unusable alignment data for a recording
	// (non-monotonic or overlapping timestamps). Fails the whole file group.
	ErrAlignmentCorrupt = errors.New("alignment corrupt")
	// ErrOccurrenceOutOfRange marks an occurrence hint exceeding the number
	// of matches found for the phrase.
	ErrOccurrenceOutOfRange = errors.New("occurrence out of range")
	// ErrSuspiciousSpan marks an extracted clip whose duration falls outside
	// the configured sanity bounds. The artifact is still produced.
	ErrSuspiciousSpan = errors.New("suspicious span")
	// ErrAudioDecode marks a failure in the external audio decoder.
	ErrAudioDecode = errors.New("audio decode error")
	// ErrTimeout marks an external collaborator exceeding its deadline.
	ErrTimeout = errors.New("timeout")
	// ErrExternalTool marks any other external tool failure.
	ErrExternalTool = errors.New("external tool error")
	// ErrConfiguration marks unusable configuration; fails fast before any
	// file is processed.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks a missing file or resource.
	ErrNotFound = errors.New("not found")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later outcome classification. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureReason renders a short human-readable reason for manifest rows.
// The sentinel prefix is kept so reviewers can see the failure class.
func FailureReason(err error) string {
	if err == nil {
		return ""
	}
	return strings.TrimSpace(err.Error())
}

// reasonCodes maps sentinels to the stable identifiers stored in manifest
// rows and matched on by report filters.
var reasonCodes = []struct {
	marker error
	code   string
}{
	{ErrInvalidRequest, "invalid_request"},
	{ErrAlignmentCorrupt, "alignment_corrupt"},
	{ErrOccurrenceOutOfRange, "occurrence_out_of_range"},
	{ErrSuspiciousSpan, "suspicious_span"},
	{ErrAudioDecode, "audio_decode"},
	{ErrTimeout, "timeout"},
	{ErrConfiguration, "configuration"},
	{ErrNotFound, "not_found"},
	{ErrExternalTool, "external_tool"},
}

// ReasonCode classifies an error into its machine-readable failure class.
func ReasonCode(err error) string {
	if err == nil {
		return ""
	}
	for _, entry := range reasonCodes {
		if errors.Is(err, entry.marker) {
			return entry.code
		}
	}
	return "error"
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
