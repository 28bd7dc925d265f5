package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/go-tts-dataprep/internal/vocab"
)

func newFixCmd() *cobra.Command {
	var fixPath string

	cmd := &cobra.Command{
		Use:   "fix <metadata-file>",
		Short: "Apply a character fix-list to a metadata file in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if _, err := requireConfig(); err != nil {
				return err
			}

			if fixPath == "" {
				return fmt.Errorf("fix needs --fix-list")
			}

			fixes, err := vocab.LoadFixList(fixPath)
			if err != nil {
				return err
			}

			report, err := fixes.ApplyToMetadata(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "changed: %d\nuntouched: %d\n", report.Changed, report.Untouched)
			return nil
		},
	}

	cmd.Flags().StringVar(&fixPath, "fix-list", "", "JSON file mapping characters to replacements (null keeps the character)")

	return cmd
}
