package evalcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/lyriceval/internal/config"
)

// loadConfig reads the file named by the inherited --config flag, if any.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path := ""
	if f := cmd.Flag("config"); f != nil {
		path = f.Value.String()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// corpusFlags selects songs either from a dataset file or from parallel
// "*"-delimited text files.
type corpusFlags struct {
	dataset     string
	original    string
	translation string
	reference   string
}

func (f *corpusFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dataset, "dataset", "", "Path to a .json, .jsonl or .parquet dataset of aligned songs")
	cmd.Flags().StringVar(&f.original, "original", "", "Path to the original-language lyrics text file")
	cmd.Flags().StringVar(&f.translation, "translation", "", "Path to the translated lyrics text file")
	cmd.Flags().StringVar(&f.reference, "reference", "", "Path to a human reference translation text file (optional)")
	cmd.MarkFlagsMutuallyExclusive("dataset", "original")
	cmd.MarkFlagsMutuallyExclusive("dataset", "translation")
	cmd.MarkFlagsRequiredTogether("original", "translation")
}

func (f *corpusFlags) validate() error {
	if f.dataset == "" && f.original == "" {
		return fmt.Errorf("either --dataset or --original and --translation are required")
	}
	return nil
}

func (f *corpusFlags) source() string {
	if f.dataset != "" {
		return f.dataset
	}
	return f.original
}

// NewRunCmd creates the run command for scoring a translated corpus
func NewRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate rhyme and meaning preservation of translated lyrics",
		Long: `Evaluate a corpus of translated songs.

Each song's rhyme scheme is compared stanza by stanza with its original,
giving a rhyme divergence per song. When a human reference translation is
available, the translation is also scored line by line against it with
METEOR, with and without Irish synonym matching.

Per-song results are merged into the results JSON file, keyed by song index.`,
		Example: `  # Evaluate parallel text files
  lyriceval eval run --original eng.txt --translation ga_mt.txt --reference ga.txt

  # Evaluate the first 20 songs of a dataset without synonyms
  lyriceval eval run --dataset songs.jsonl --sample 20 --no-synonyms

  # Write YAML and parquet copies plus a metrics textfile
  lyriceval eval run --dataset songs.parquet --evals-dir evals --parquet results.parquet --metrics-file run.prom`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.corpus.validate(); err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return executeRun(cmd.Context(), cfg, opts)
		},
	}

	opts.corpus.register(cmd)
	cmd.Flags().StringVar(&opts.output, "output", "results.json", "Path to the per-song results JSON file")
	cmd.Flags().StringVar(&opts.summary, "summary", "", "Path to write the aggregate summary JSON")
	cmd.Flags().StringVar(&opts.report, "report", "", "Path to write a detailed text report")
	cmd.Flags().StringVar(&opts.evalsDir, "evals-dir", "", "Directory to write a YAML copy of the run")
	cmd.Flags().StringVar(&opts.parquet, "parquet", "", "Path to write per-song rows as parquet")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Path to write Prometheus metrics in text format")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Songs evaluated concurrently (defaults to the configured value)")
	cmd.Flags().IntVar(&opts.sample, "sample", 0, "Number of songs to evaluate (0 for all)")
	cmd.Flags().BoolVar(&opts.noSynonyms, "no-synonyms", false, "Disable synonym matching and prefetching")

	return cmd
}

// NewRhymeCmd creates the rhyme command
func NewRhymeCmd() *cobra.Command {
	var originalPath string
	var translationPath string

	cmd := &cobra.Command{
		Use:   "rhyme [REFERENCE_SCHEME HYPOTHESIS_SCHEME]",
		Short: "Show rhyme schemes and match tiers",
		Long: `Compare rhyme schemes.

With two scheme arguments (e.g. AABB ABCC) the schemes are compared
directly. Otherwise --original and --translation name one song each, and
every stanza is labelled and compared.`,
		Example: `  # Compare two literal schemes
  lyriceval eval rhyme AAbb ABCC

  # Label and compare a single song
  lyriceval eval rhyme --original song.en.txt --translation song.ga.txt`,
		Args: cobra.MatchAll(cobra.MaximumNArgs(2), func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return fmt.Errorf("expected two schemes, got one")
			}
			return nil
		}),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				return executeSchemeCompare(cmd.OutOrStdout(), args[0], args[1])
			}
			if originalPath == "" || translationPath == "" {
				return fmt.Errorf("--original and --translation are required without scheme arguments")
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return executeRhyme(cmd.Context(), cmd.OutOrStdout(), cfg, originalPath, translationPath)
		},
	}

	cmd.Flags().StringVar(&originalPath, "original", "", "Path to the original song text")
	cmd.Flags().StringVar(&translationPath, "translation", "", "Path to the translated song text")

	return cmd
}

// NewReportCmd creates the report command
func NewReportCmd() *cobra.Command {
	var resultsPath string
	var format string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a report from a results file",
		Example: `  # Text summary
  lyriceval eval report --results results.json

  # CSV for a spreadsheet
  lyriceval eval report --results results.json --format csv > results.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeReport(cmd.OutOrStdout(), resultsPath, format)
		},
	}

	cmd.Flags().StringVar(&resultsPath, "results", "results.json", "Path to the per-song results JSON file")
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text, json, csv)")

	return cmd
}

// NewPrefetchCmd creates the prefetch command
func NewPrefetchCmd() *cobra.Command {
	var corpus corpusFlags
	var workers int

	cmd := &cobra.Command{
		Use:   "prefetch",
		Short: "Warm the synonym cache for a corpus",
		Long: `Lemmatise every reference translation line in the corpus and look up
synonyms for each distinct lemma not yet cached. Later runs then score
synonym matches without contacting the thesaurus.`,
		Example: `  lyriceval eval prefetch --dataset songs.jsonl --workers 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := corpus.validate(); err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.PrefetchWorkers = workers
			}
			return executePrefetch(cmd.Context(), cfg, corpus)
		},
	}

	corpus.register(cmd)
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent thesaurus lookups (defaults to the configured value)")

	return cmd
}
