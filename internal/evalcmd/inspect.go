package evalcmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/lyriceval/internal/corpus"
)

// NewInspectCmd creates the inspect command
func NewInspectCmd() *cobra.Command {
	var corpusSrc corpusFlags
	var limit int
	var interactive bool
	var showLyrics bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect songs in a corpus (useful for checking stanza alignment)",
		Long: `Inspect songs from a dataset file or parallel text files.

Shows each song's stanza and line counts on every side, flags songs whose
stanzas do not line up, and optionally prints the lyrics side by side.`,
		Example: `  # Inspect first 5 songs interactively
  lyriceval eval inspect --dataset ./songs.parquet --limit 5 --interactive

  # Only show counts for parallel text files
  lyriceval eval inspect --original eng.txt --translation ga.txt --lyrics=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := corpusSrc.validate(); err != nil {
				return err
			}
			return executeInspect(cmd.Context(), corpusSrc, limit, interactive, showLyrics)
		},
	}

	corpusSrc.register(cmd)
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of songs to inspect (0 for all)")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "Pause after each song (press Enter to continue)")
	cmd.Flags().BoolVar(&showLyrics, "lyrics", true, "Print stanzas side by side")

	return cmd
}

func executeInspect(ctx context.Context, src corpusFlags, limit int, interactive, showLyrics bool) error {
	records, err := loadSongs(src, limit)
	if err != nil {
		return err
	}

	fmt.Printf("Loaded %d songs from %s\n", len(records), src.source())
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	for i, record := range records {
		select {
		case <-ctx.Done():
			fmt.Println("\nInspection interrupted.")
			return nil
		default:
		}

		fmt.Printf("SONG %d/%d: %s\n", i+1, len(records), record.Title)
		fmt.Println(strings.Repeat("-", 80))

		orig := corpus.SplitStanzas(record.Original)
		trans := corpus.SplitStanzas(record.Translated)
		fmt.Printf("Original:       %d stanzas, %d lines\n", len(orig), lineCount(orig))
		fmt.Printf("Translation:    %d stanzas, %d lines\n", len(trans), lineCount(trans))
		if record.Reference != "" {
			ref := corpus.SplitStanzas(record.Reference)
			fmt.Printf("Reference:      %d stanzas, %d lines\n", len(ref), lineCount(ref))
		}
		if problem := alignmentProblem(orig, trans); problem != "" {
			fmt.Printf("⚠ Misaligned:   %s\n", problem)
		}
		fmt.Println()

		if showLyrics {
			printSideBySide(orig, trans)
		}

		if interactive {
			fmt.Print("Press Enter to continue to next song (or Ctrl+C to quit)...")

			inputCh := make(chan struct{})
			go func() {
				_, _ = reader.ReadString('\n')
				close(inputCh)
			}()

			select {
			case <-ctx.Done():
				fmt.Println("\nInspection interrupted.")
				return nil
			case <-inputCh:
				fmt.Println()
			}
		} else {
			fmt.Println()
		}
	}

	return nil
}

func lineCount(stanzas []corpus.Stanza) int {
	n := 0
	for _, s := range stanzas {
		n += len(s)
	}
	return n
}

// alignmentProblem describes the first stanza or line count mismatch, or
// returns "" when the two sides line up.
func alignmentProblem(orig, trans []corpus.Stanza) string {
	if len(orig) != len(trans) {
		return fmt.Sprintf("%d original stanzas, %d translated", len(orig), len(trans))
	}
	for i := range orig {
		if len(orig[i]) != len(trans[i]) {
			return fmt.Sprintf("stanza %d has %d original lines, %d translated", i+1, len(orig[i]), len(trans[i]))
		}
	}
	return ""
}

func printSideBySide(orig, trans []corpus.Stanza) {
	const width = 38
	for i := 0; i < max(len(orig), len(trans)); i++ {
		var a, b corpus.Stanza
		if i < len(orig) {
			a = orig[i]
		}
		if i < len(trans) {
			b = trans[i]
		}
		for j := 0; j < max(len(a), len(b)); j++ {
			var left, right string
			if j < len(a) {
				left = a[j]
			}
			if j < len(b) {
				right = b[j]
			}
			fmt.Printf("  %-*s  %s\n", width, truncate(left, width), right)
		}
		fmt.Println()
	}
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
