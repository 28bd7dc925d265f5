package dataset

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/go-tts-dataprep/internal/audio"
	"github.com/example/go-tts-dataprep/internal/metadata"
)

// RawAudio serves examples straight from audio files: decode, downmix to
// mono, resample to the target rate, then extract features. Frame lengths
// come from the records' probed durations, so planning never opens a file.
type RawAudio struct {
	records   []metadata.Record
	extractor FeatureExtractor
	rate      int
	hop       int
	durations metadata.DurationPolicy
}

// RawAudioOptions configures a RawAudio view.
type RawAudioOptions struct {
	TargetSampleRate int
	HopLength        int

	// Durations re-checks clip lengths at materialization time. Rows
	// outside the bounds are skipped forward modulo the dataset size.
	Durations metadata.DurationPolicy
}

// NewRawAudio creates a raw-audio view over validated records.
func NewRawAudio(records []metadata.Record, extractor FeatureExtractor, opts RawAudioOptions) (*RawAudio, error) {
	if len(records) == 0 {
		return nil, errors.New("dataset: no records")
	}

	if extractor == nil {
		return nil, errors.New("dataset: nil feature extractor")
	}

	if opts.TargetSampleRate <= 0 || opts.HopLength <= 0 {
		return nil, fmt.Errorf("dataset: invalid sample rate %d or hop length %d", opts.TargetSampleRate, opts.HopLength)
	}

	return &RawAudio{
		records:   records,
		extractor: extractor,
		rate:      opts.TargetSampleRate,
		hop:       opts.HopLength,
		durations: opts.Durations,
	}, nil
}

func (d *RawAudio) Len() int {
	return len(d.records)
}

// FrameLen derives the frame count from probed duration: duration × rate ÷
// hop. No audio is decoded.
func (d *RawAudio) FrameLen(i int) (float64, error) {
	if i < 0 || i >= len(d.records) {
		return 0, fmt.Errorf("%w: %d (dataset size %d)", ErrIndexOutOfRange, i, len(d.records))
	}

	return d.records[i].Duration * float64(d.rate) / float64(d.hop), nil
}

// Item materializes row i. A row outside the duration bounds skips forward
// to the next valid row modulo the dataset size; the scan is bounded at one
// full pass, after which ErrNoValidSample is returned.
func (d *RawAudio) Item(ctx context.Context, i int) (Example, error) {
	if i < 0 || i >= len(d.records) {
		return Example{}, fmt.Errorf("%w: %d (dataset size %d)", ErrIndexOutOfRange, i, len(d.records))
	}

	idx := i
	for attempts := 0; attempts < len(d.records); attempts++ {
		if err := ctx.Err(); err != nil {
			return Example{}, err
		}

		rec := d.records[idx]
		if d.durations.Accepts(rec.Duration) {
			return d.materialize(rec)
		}

		idx = (idx + 1) % len(d.records)
	}

	return Example{}, fmt.Errorf("%w: scanned all %d rows starting at %d", ErrNoValidSample, len(d.records), i)
}

func (d *RawAudio) materialize(rec metadata.Record) (Example, error) {
	samples, srcRate, channels, err := audio.DecodeWAVFile(rec.AudioPath)
	if err != nil {
		return Example{}, fmt.Errorf("dataset: %w", err)
	}

	mono, err := audio.DownmixMono(samples, channels)
	if err != nil {
		return Example{}, fmt.Errorf("dataset: %s: %w", rec.AudioPath, err)
	}

	mono, err = audio.Resample(mono, srcRate, d.rate)
	if err != nil {
		return Example{}, fmt.Errorf("dataset: %s: %w", rec.AudioPath, err)
	}

	features, err := d.extractor.Extract(mono, d.rate)
	if err != nil {
		return Example{}, fmt.Errorf("dataset: extract %s: %w", rec.AudioPath, err)
	}

	return Example{Features: features, Text: rec.Text}, nil
}
