package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"phrasecut/internal/align"
	"phrasecut/internal/batch"
)

func newAlignCommand(ctx *commandContext) *cobra.Command {
	var alignerBinary string
	var alignerArgs []string

	cmd := &cobra.Command{
		Use:   "align <recording> <transcript>",
		Short: "Generate an alignment for one recording with an external aligner",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			audioPath, err := batch.FindAudio(cfg.Paths.AudioDir, args[0])
			if err != nil {
				return err
			}
			destPath := filepath.Join(cfg.Paths.AlignmentDir, recordingStem(args[0])+".TextGrid")

			aligner := &align.CommandAligner{
				Binary:  alignerBinary,
				Args:    alignerArgs,
				Timeout: time.Duration(cfg.Batch.AlignerTimeoutSeconds) * time.Second,
			}
			if err := aligner.Generate(cmd.Context(), audioPath, args[1], destPath); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Aligned %s; expecting output at %s\n", audioPath, destPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&alignerBinary, "aligner", "mfa", "Aligner executable")
	cmd.Flags().StringSliceVar(&alignerArgs, "aligner-arg",
		[]string{"align_one", "{audio}", "{transcript}", "{dest}"},
		"Aligner arguments; {audio}, {transcript} and {dest} are substituted")
	return cmd
}

func recordingStem(recording string) string {
	if ext := filepath.Ext(recording); ext != "" {
		return recording[:len(recording)-len(ext)]
	}
	return recording
}
