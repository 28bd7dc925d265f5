package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/go-tts-dataprep/internal/vocab"
)

func newVocabCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Vocabulary tools",
	}

	cmd.AddCommand(newVocabGenerateCmd())
	cmd.AddCommand(newVocabCheckCmd())

	return cmd
}

func newVocabGenerateCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Emit the canonical vocabulary file",
		RunE: func(_ *cobra.Command, _ []string) error {
			w := os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			n, err := vocab.Generate(w)
			if err != nil {
				return err
			}

			slog.Info("vocabulary generated", "symbols", n, "out", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output path ('' for stdout)")

	return cmd
}

func newVocabCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check metadata transcripts against the vocabulary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if cfg.Paths.VocabPath == "" {
				return fmt.Errorf("vocab check needs --paths-vocab-path")
			}

			vmap, err := loadVocab(cfg)
			if err != nil {
				return err
			}

			prober, closeProber, err := openProber(cfg)
			if err != nil {
				return err
			}
			defer closeProber()

			ingests, err := parseAll(cmd.Context(), cfg, vmap, prober, slog.Default())
			if err != nil {
				var coverage *vocab.CoverageError
				if errors.As(err, &coverage) {
					return fmt.Errorf("coverage failure: %w", err)
				}
				return err
			}

			total := 0
			for _, in := range ingests {
				total += len(in.Records)
			}

			fmt.Fprintf(os.Stdout, "coverage ok: %d records, %d symbols\n", total, vmap.Size())
			return nil
		},
	}

	return cmd
}
