package main

import (
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"phrasecut/internal/batch"
	"phrasecut/internal/manifest"
)

type summaryPayload struct {
	RunID      string `json:"run_id"`
	Total      int    `json:"total"`
	Pending    int    `json:"pending"`
	Resolved   int    `json:"resolved"`
	Ambiguous  int    `json:"ambiguous"`
	NotFound   int    `json:"not_found"`
	Failed     int    `json:"failed"`
	Suspicious int    `json:"suspicious"`
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "run <phrases.csv>",
		Short: "Resolve a phrase list and extract clips",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.buildLogger()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, err := manifest.Open(cfg.Paths.ManifestPath)
			if err != nil {
				return err
			}
			defer store.Close()

			summary, err := batch.New(cfg, store, logger).Run(runCtx, args[0])
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, summaryPayload{
					RunID:      summary.RunID,
					Total:      summary.Total,
					Pending:    summary.Pending,
					Resolved:   summary.Resolved,
					Ambiguous:  summary.Ambiguous,
					NotFound:   summary.NotFound,
					Failed:     summary.Failed,
					Suspicious: summary.Suspicious,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s\n", summary.RunID)
			fmt.Fprintln(out, renderSummaryTable(summary))
			if remaining := summary.Ambiguous + summary.NotFound + summary.Failed; remaining > 0 {
				fmt.Fprintf(out, "%d request(s) need review: phrasecut report --run %s\n", remaining, summary.RunID)
			}
			if summary.Suspicious > 0 {
				fmt.Fprintf(out, "%d clip(s) flagged suspicious; listen before importing.\n", summary.Suspicious)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the run summary as JSON")
	return cmd
}

func renderSummaryTable(summary manifest.Summary) string {
	headers := []string{"Outcome", "Count"}
	rows := [][]string{
		{"resolved", strconv.Itoa(summary.Resolved)},
		{"ambiguous", strconv.Itoa(summary.Ambiguous)},
		{"not found", strconv.Itoa(summary.NotFound)},
		{"failed", strconv.Itoa(summary.Failed)},
		{"pending", strconv.Itoa(summary.Pending)},
		{"suspicious", strconv.Itoa(summary.Suspicious)},
		{"total", strconv.Itoa(summary.Total)},
	}
	return renderTable(headers, rows, []columnAlignment{alignLeft, alignRight})
}
