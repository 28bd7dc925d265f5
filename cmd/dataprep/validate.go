package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate metadata files and report ingestion stats",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
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
				return err
			}

			total := 0
			for _, in := range ingests {
				s := in.Stats
				fmt.Fprintf(os.Stdout, "%s: kept=%d malformed=%d missing_audio=%d probe_failures=%d bad_duration=%d empty_text=%d\n",
					in.Path, s.Kept, s.Malformed, s.MissingAudio, s.ProbeFailures, s.BadDuration, s.EmptyText)
				total += s.Kept
			}

			fmt.Fprintf(os.Stdout, "total records: %d\n", total)
			return nil
		},
	}

	return cmd
}
