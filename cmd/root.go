package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "lyriceval",
		Short: "Evaluate rhyme and meaning preservation in translated song lyrics",
		Long: `Lyriceval scores machine translations of English song lyrics into Irish.

It compares each stanza's rhyme scheme with the original's, and scores the
translation's meaning against a human reference with METEOR, optionally
matching Irish synonyms.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	// Add subcommands
	cmd.AddCommand(newEvalCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}
