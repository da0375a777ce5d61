package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"phrasecut/internal/align"
	"phrasecut/internal/config"
	"phrasecut/internal/textnorm"
)

type wordPayload struct {
	Index int     `json:"index"`
	Word  string  `json:"word"`
	Token string  `json:"token"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "inspect <recording>",
		Short: "Parse and validate the alignment for one recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			idx, err := loadIndex(cmd, cfg, args[0])
			if err != nil {
				return err
			}

			if jsonOutput {
				words := make([]wordPayload, idx.Len())
				for i := 0; i < idx.Len(); i++ {
					word := idx.Word(i)
					words[i] = wordPayload{Index: i, Word: word.Text, Token: idx.Token(i), Start: word.Start, End: word.End}
				}
				return writeJSON(cmd, words)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d aligned words, valid\n", args[0], idx.Len())
			headers := []string{"#", "Word", "Token", "Start", "End"}
			rows := make([][]string, idx.Len())
			for i := 0; i < idx.Len(); i++ {
				word := idx.Word(i)
				rows[i] = []string{
					strconv.Itoa(i),
					word.Text,
					idx.Token(i),
					fmt.Sprintf("%.3f", word.Start),
					fmt.Sprintf("%.3f", word.End),
				}
			}
			fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the word list as JSON")
	return cmd
}

func loadIndex(cmd *cobra.Command, cfg *config.Config, recording string) (*align.Index, error) {
	provider := align.DirProvider{Dir: cfg.Paths.AlignmentDir}
	words, err := provider.Load(cmd.Context(), recording)
	if err != nil {
		return nil, err
	}
	fold := textnorm.FoldNone
	if cfg.Normalizer.FoldDiacritics {
		fold = textnorm.FoldDiacritics
	}
	return align.NewIndex(recording, words, fold)
}
