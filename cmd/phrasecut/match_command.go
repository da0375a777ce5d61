package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"phrasecut/internal/match"
	"phrasecut/internal/resolve"
	"phrasecut/internal/textnorm"
)

type matchPayload struct {
	Outcome    string           `json:"outcome"`
	Method     string           `json:"method,omitempty"`
	Start      float64          `json:"start,omitempty"`
	End        float64          `json:"end,omitempty"`
	Candidates []matchCandidate `json:"candidates,omitempty"`
}

type matchCandidate struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Score float64 `json:"score"`
	Exact bool    `json:"exact"`
}

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var occurrence int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "match <recording> <phrase>",
		Short: "Dry-run the matcher and resolver for one phrase",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			idx, err := loadIndex(cmd, cfg, args[0])
			if err != nil {
				return err
			}
			fold := textnorm.FoldNone
			if cfg.Normalizer.FoldDiacritics {
				fold = textnorm.FoldDiacritics
			}
			tokens := textnorm.Normalize(args[1], fold)
			if len(tokens) == 0 {
				return fmt.Errorf("phrase %q has no matchable tokens", args[1])
			}

			candidates := match.Match(tokens, idx, match.Options{
				FuzzyEnabled:           cfg.Matcher.FuzzyEnabled,
				SubstitutionsPerTokens: cfg.Matcher.SubstitutionsPerTokens,
				ScaleWithLength:        cfg.Matcher.ScaleWithLength,
			})

			padding := float64(cfg.Resolver.PaddingMS) / 1000
			// No audio decode in a dry run; pad against the last aligned
			// word instead of the real file duration.
			duration := padding
			if idx.Len() > 0 {
				duration = idx.Word(idx.Len()-1).End + padding
			}
			result, err := resolve.Resolve(candidates, occurrence, idx, duration, resolve.Options{PaddingSeconds: padding})
			if err != nil {
				return err
			}

			if jsonOutput {
				payload := matchPayload{Outcome: outcomeLabel(result.Kind)}
				if result.Kind == resolve.KindResolved {
					payload.Method = string(result.Span.Method)
					payload.Start = result.Span.Start
					payload.End = result.Span.End
				}
				for _, c := range result.Candidates {
					payload.Candidates = append(payload.Candidates, matchCandidate{Start: c.Start, End: c.End, Score: c.Score, Exact: c.Exact})
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			switch result.Kind {
			case resolve.KindResolved:
				fmt.Fprintf(out, "resolved (%s): %.3fs-%.3fs\n", result.Span.Method, result.Span.Start, result.Span.End)
			case resolve.KindNotFound:
				fmt.Fprintln(out, "not found")
			case resolve.KindAmbiguous:
				fmt.Fprintf(out, "ambiguous: %d equally plausible matches (add --occurrence)\n", len(result.Candidates))
				headers := []string{"#", "Start", "End", "Score", "Exact"}
				rows := make([][]string, len(result.Candidates))
				for i, c := range result.Candidates {
					rows[i] = []string{
						strconv.Itoa(i + 1),
						fmt.Sprintf("%.3f", c.Start),
						fmt.Sprintf("%.3f", c.End),
						fmt.Sprintf("%.2f", c.Score),
						yesNo(c.Exact),
					}
				}
				fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft}))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&occurrence, "occurrence", 0, "1-based occurrence to select when the phrase repeats")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the outcome as JSON")
	return cmd
}

func outcomeLabel(kind resolve.Kind) string {
	switch kind {
	case resolve.KindResolved:
		return "resolved"
	case resolve.KindAmbiguous:
		return "ambiguous"
	default:
		return "not_found"
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
