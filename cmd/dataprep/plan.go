package main

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/go-tts-dataprep/internal/config"
	"github.com/example/go-tts-dataprep/internal/dataset"
	"github.com/example/go-tts-dataprep/internal/featstore"
	"github.com/example/go-tts-dataprep/internal/sampler"
)

func newPlanCmd() *cobra.Command {
	var source string
	var epoch int
	var shuffle bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan training batches and print their statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			kind, err := config.NormalizeSource(source)
			if err != nil {
				return err
			}

			var view dataset.View
			switch kind {
			case config.SourceRawAudio:
				view, err = buildRawView(cmd, cfg)
			case config.SourcePrecomputed:
				view, err = buildPrecomputedView(cfg)
			}
			if err != nil {
				return err
			}

			order := sampler.Sequential(view.Len())
			if shuffle {
				order = sampler.Shuffled(view.Len(), cfg.Sampler.Seed)
			}

			seed := cfg.Sampler.Seed
			s, err := sampler.New(view, order, sampler.Options{
				FramesThreshold: float64(cfg.Sampler.FramesThreshold),
				MaxSamples:      cfg.Sampler.MaxSamples,
				Seed:            &seed,
				DropResidual:    cfg.Sampler.DropResidual,
				Logger:          slog.Default(),
			})
			if err != nil {
				return err
			}
			s.SetEpoch(epoch)

			return printPlan(os.Stdout, view, s, float64(cfg.Sampler.FramesThreshold))
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Dataset source: raw-audio or precomputed (default raw-audio)")
	cmd.Flags().IntVar(&epoch, "epoch", 0, "Epoch whose delivery order to report")
	cmd.Flags().BoolVar(&shuffle, "shuffle", false, "Shuffle row order before length sorting")

	return cmd
}

func buildRawView(cmd *cobra.Command, cfg config.Config) (dataset.View, error) {
	vmap, err := loadVocab(cfg)
	if err != nil {
		return nil, err
	}

	prober, closeProber, err := openProber(cfg)
	if err != nil {
		return nil, err
	}
	defer closeProber()

	ingests, err := parseAll(cmd.Context(), cfg, vmap, prober, slog.Default())
	if err != nil {
		return nil, err
	}

	views := make([]dataset.View, 0, len(ingests))
	for _, in := range ingests {
		v, err := dataset.NewRawAudio(in.Records, dataset.FrameEnergy{HopLength: cfg.Audio.HopLength}, dataset.RawAudioOptions{
			TargetSampleRate: cfg.Audio.TargetSampleRate,
			HopLength:        cfg.Audio.HopLength,
			Durations:        cfg.Audio.DurationPolicy(),
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", in.Path, err)
		}
		views = append(views, v)
	}

	if len(views) == 1 {
		return views[0], nil
	}

	return dataset.NewConcat(views...), nil
}

func buildPrecomputedView(cfg config.Config) (dataset.View, error) {
	if cfg.Paths.FeatureDir == "" {
		return nil, fmt.Errorf("precomputed source needs --paths-feature-dir")
	}

	store, err := featstore.Open(filepath.Join(cfg.Paths.FeatureDir, "features.safetensors"))
	if err != nil {
		return nil, err
	}

	var durations []float64
	if cfg.Paths.DurationSidecar != "" {
		durations, err = featstore.LoadDurations(cfg.Paths.DurationSidecar)
		if err != nil {
			return nil, err
		}
	}

	// Planning never touches transcripts.
	texts := make([]string, store.Len())

	return dataset.NewPrecomputed(store, texts, dataset.PrecomputedOptions{
		TargetSampleRate: cfg.Audio.TargetSampleRate,
		HopLength:        cfg.Audio.HopLength,
		Durations:        durations,
	})
}

// printPlan reports batch count, fill ratio against the frame budget, an
// estimate of padding waste from length spread inside each batch, and how
// many oversized rows were dropped.
func printPlan(w io.Writer, lens sampler.FrameLens, s *sampler.DynamicBatchSampler, threshold float64) error {
	var (
		rows        int
		usedFrames  float64
		paddedCells float64
	)

	for _, batch := range s.Batches() {
		longest := 0.0
		batchFrames := 0.0
		for _, i := range batch {
			fl, err := lens.FrameLen(i)
			if err != nil {
				return err
			}
			batchFrames += fl
			longest = math.Max(longest, fl)
		}

		rows += len(batch)
		usedFrames += batchFrames
		paddedCells += longest*float64(len(batch)) - batchFrames
	}

	fillRatio := 0.0
	if s.Len() > 0 {
		fillRatio = usedFrames / (float64(s.Len()) * threshold)
	}

	paddingWaste := 0.0
	if usedFrames+paddedCells > 0 {
		paddingWaste = paddedCells / (usedFrames + paddedCells)
	}

	fmt.Fprintf(w, "batches: %d\n", s.Len())
	fmt.Fprintf(w, "rows: %d\n", rows)
	fmt.Fprintf(w, "dropped oversized: %d\n", s.Dropped())
	fmt.Fprintf(w, "fill ratio: %.3f\n", fillRatio)
	fmt.Fprintf(w, "padding waste: %.3f\n", paddingWaste)

	return nil
}
