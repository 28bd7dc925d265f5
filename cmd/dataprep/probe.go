package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/go-tts-dataprep/internal/audio"
)

func newProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe <wav-file>",
		Short: "Probe a WAV header and print its properties",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			info, err := audio.ProbeWAV(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "frames: %d\nsample_rate: %d\nchannels: %d\nbit_depth: %d\nduration: %.3fs\n",
				info.Frames, info.SampleRate, info.Channels, info.BitDepth, info.Duration())
			return nil
		},
	}

	return cmd
}
