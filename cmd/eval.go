package cmd

import (
	"github.com/lehigh-university-libraries/lyriceval/internal/evalcmd"
	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Lyric translation evaluation tools",
		Long: `Evaluation tools for measuring how well translated lyrics keep the
rhyme and meaning of their originals.

Supports scoring whole corpora, comparing individual songs or schemes,
inspecting stanza alignment, warming the synonym cache and generating
reports from saved results.`,
	}

	// Add eval subcommands
	cmd.AddCommand(evalcmd.NewRunCmd())
	cmd.AddCommand(evalcmd.NewRhymeCmd())
	cmd.AddCommand(evalcmd.NewReportCmd())
	cmd.AddCommand(evalcmd.NewInspectCmd())
	cmd.AddCommand(evalcmd.NewPrefetchCmd())

	return cmd
}
