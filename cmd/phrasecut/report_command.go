package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"phrasecut/internal/manifest"
)

type entryPayload struct {
	Line        int                  `json:"line"`
	Recording   string               `json:"recording"`
	Phrase      string               `json:"phrase"`
	Translation string               `json:"translation,omitempty"`
	Occurrence  int                  `json:"occurrence,omitempty"`
	Status      string               `json:"status"`
	Method      string               `json:"method,omitempty"`
	ClipStart   float64              `json:"clip_start,omitempty"`
	ClipEnd     float64              `json:"clip_end,omitempty"`
	ClipPath    string               `json:"clip_path,omitempty"`
	Candidates  []manifest.Candidate `json:"candidates,omitempty"`
	Suspicious  bool                 `json:"suspicious,omitempty"`
	Note        string               `json:"note,omitempty"`
	Reason      string               `json:"reason,omitempty"`
	Error       string               `json:"error,omitempty"`
}

func newReportCommand(ctx *commandContext) *cobra.Command {
	var runID string
	var statusFlags []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render manifest outcomes for review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			filter, err := parseStatusFilters(statusFlags)
			if err != nil {
				return err
			}

			store, err := manifest.Open(cfg.Paths.ManifestPath)
			if err != nil {
				return err
			}
			defer store.Close()

			cmdCtx := cmd.Context()
			if runID == "" {
				runID, err = store.LatestRunID(cmdCtx)
				if err != nil {
					return err
				}
			}
			if runID == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Manifest is empty; run a batch first.")
				return nil
			}

			entries, err := store.EntriesByRun(cmdCtx, runID)
			if err != nil {
				return err
			}
			entries = filterEntries(entries, filter)

			if jsonOutput {
				payload := make([]entryPayload, 0, len(entries))
				for _, entry := range entries {
					payload = append(payload, toEntryPayload(entry))
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No entries in run %s match the filter.\n", runID)
				return nil
			}
			colorize := shouldColorize(out)

			headers := []string{"Line", "Recording", "Phrase", "Status", "Method", "Span", "Detail"}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					fmt.Sprintf("%d", entry.Line),
					entry.Recording,
					entry.Phrase,
					statusText(entry.Status, colorize),
					entry.Method,
					formatSpan(entry),
					entryDetail(entry),
				})
			}
			fmt.Fprintf(out, "Run %s\n", runID)
			fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft}))
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run identifier (defaults to the most recent run)")
	cmd.Flags().StringSliceVar(&statusFlags, "status", nil, "Filter by status (resolved, ambiguous, not_found, failed, pending)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit entries as JSON")
	return cmd
}

func parseStatusFilters(values []string) (map[manifest.Status]struct{}, error) {
	if len(values) == 0 {
		return nil, nil
	}
	filter := make(map[manifest.Status]struct{}, len(values))
	for _, value := range values {
		status, ok := manifest.ParseStatus(value)
		if !ok {
			return nil, fmt.Errorf("unknown status %q (known: %s)", value, knownStatusList())
		}
		filter[status] = struct{}{}
	}
	return filter, nil
}

func knownStatusList() string {
	statuses := manifest.AllStatuses()
	names := make([]string, len(statuses))
	for i, status := range statuses {
		names[i] = string(status)
	}
	return strings.Join(names, ", ")
}

func filterEntries(entries []*manifest.Entry, filter map[manifest.Status]struct{}) []*manifest.Entry {
	if filter == nil {
		return entries
	}
	filtered := make([]*manifest.Entry, 0, len(entries))
	for _, entry := range entries {
		if _, ok := filter[entry.Status]; ok {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

func formatSpan(entry *manifest.Entry) string {
	if entry.Status != manifest.StatusResolved {
		return ""
	}
	return fmt.Sprintf("%.2fs-%.2fs", entry.ClipStart, entry.ClipEnd)
}

func entryDetail(entry *manifest.Entry) string {
	switch entry.Status {
	case manifest.StatusResolved:
		detail := entry.ClipPath
		if entry.Suspicious {
			detail += " [suspicious: " + entry.SuspiciousNote + "]"
		}
		return detail
	case manifest.StatusAmbiguous:
		var candidates []manifest.Candidate
		if err := json.Unmarshal([]byte(entry.CandidatesJSON), &candidates); err != nil || len(candidates) == 0 {
			return "multiple matches"
		}
		spans := make([]string, len(candidates))
		for i, c := range candidates {
			spans[i] = fmt.Sprintf("%.2fs-%.2fs", c.Start, c.End)
		}
		return fmt.Sprintf("%d matches: %s (add an occurrence hint)", len(candidates), strings.Join(spans, ", "))
	case manifest.StatusFailed:
		if entry.ErrorMessage != "" {
			return entry.ErrorMessage
		}
		return entry.FailureReason
	default:
		return ""
	}
}

func toEntryPayload(entry *manifest.Entry) entryPayload {
	payload := entryPayload{
		Line:        entry.Line,
		Recording:   entry.Recording,
		Phrase:      entry.Phrase,
		Translation: entry.Translation,
		Occurrence:  entry.Occurrence,
		Status:      string(entry.Status),
		Method:      entry.Method,
		Suspicious:  entry.Suspicious,
		Note:        entry.SuspiciousNote,
		Reason:      entry.FailureReason,
		Error:       entry.ErrorMessage,
	}
	if entry.Status == manifest.StatusResolved {
		payload.ClipStart = entry.ClipStart
		payload.ClipEnd = entry.ClipEnd
		payload.ClipPath = entry.ClipPath
	}
	if entry.CandidatesJSON != "" {
		_ = json.Unmarshal([]byte(entry.CandidatesJSON), &payload.Candidates)
	}
	return payload
}
