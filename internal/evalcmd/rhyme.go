package evalcmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/lehigh-university-libraries/lyriceval/internal/config"
	"github.com/lehigh-university-libraries/lyriceval/internal/rhyme"
	"github.com/lehigh-university-libraries/lyriceval/internal/service"
)

func executeSchemeCompare(w io.Writer, reference, hypothesis string) error {
	ref, err := rhyme.ParseScheme(reference)
	if err != nil {
		return fmt.Errorf("invalid reference scheme: %w", err)
	}
	hyp, err := rhyme.ParseScheme(hypothesis)
	if err != nil {
		return fmt.Errorf("invalid hypothesis scheme: %w", err)
	}

	tier, err := rhyme.Compare(ref, hyp)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s vs %s: %s (weight %.1f)\n", ref, hyp, tier, tier.Weight())
	if !ref.HasRepeat() {
		fmt.Fprintln(w, "Reference has no rhyme; the stanza would not be counted.")
	}
	return nil
}

func executeRhyme(ctx context.Context, w io.Writer, cfg config.Config, originalPath, translationPath string) (err error) {
	original, err := os.ReadFile(originalPath)
	if err != nil {
		return fmt.Errorf("failed to read original: %w", err)
	}
	translation, err := os.ReadFile(translationPath)
	if err != nil {
		return fmt.Errorf("failed to read translation: %w", err)
	}

	svc, err := service.New(cfg, service.Options{NoSynonyms: true})
	if err != nil {
		return fmt.Errorf("failed to initialise evaluator: %w", err)
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	res, err := svc.Evaluator.RhymeDivergence(ctx, string(original), string(translation))
	if err != nil {
		return fmt.Errorf("failed to compare rhyme: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STANZA\tORIGINAL\tTRANSLATION\tTIER\tCOUNTED")
	for _, s := range res.Stanzas {
		counted := ""
		if s.Counted {
			counted = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", s.Index+1, s.Reference, s.Hypothesis, s.Tier, counted)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w, strings.Repeat("-", 40))
	fmt.Fprintf(w, "Counted stanzas:  %d\n", res.Counted)
	fmt.Fprintf(w, "Rhyme divergence: %.3f\n", res.Divergence)
	return nil
}
