package dataset

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/go-tts-dataprep/internal/featstore"
)

// Precomputed serves feature matrices straight from a feature store; no
// audio is ever decoded. Frame lengths come from a duration sidecar when
// one is supplied, otherwise from the stored matrix's own time dimension
// (shape metadata only, no payload decode).
type Precomputed struct {
	store     *featstore.Store
	texts     []string
	durations []float64
	rate      int
	hop       int
}

// PrecomputedOptions configures a Precomputed view.
type PrecomputedOptions struct {
	TargetSampleRate int
	HopLength        int

	// Durations is the optional sidecar, aligned by index with the store.
	// Supplying wrong durations here starves or overflows the frame
	// budget downstream, so the length must match exactly.
	Durations []float64
}

// NewPrecomputed creates a view over a feature store and its transcripts.
func NewPrecomputed(store *featstore.Store, texts []string, opts PrecomputedOptions) (*Precomputed, error) {
	if store == nil {
		return nil, errors.New("dataset: nil feature store")
	}

	if store.Len() == 0 {
		return nil, errors.New("dataset: empty feature store")
	}

	if len(texts) != store.Len() {
		return nil, fmt.Errorf("dataset: %d texts for %d features", len(texts), store.Len())
	}

	if opts.Durations != nil && len(opts.Durations) != store.Len() {
		return nil, fmt.Errorf("dataset: duration sidecar has %d rows, store has %d", len(opts.Durations), store.Len())
	}

	if opts.TargetSampleRate <= 0 || opts.HopLength <= 0 {
		return nil, fmt.Errorf("dataset: invalid sample rate %d or hop length %d", opts.TargetSampleRate, opts.HopLength)
	}

	return &Precomputed{
		store:     store,
		texts:     texts,
		durations: opts.Durations,
		rate:      opts.TargetSampleRate,
		hop:       opts.HopLength,
	}, nil
}

func (d *Precomputed) Len() int {
	return d.store.Len()
}

func (d *Precomputed) FrameLen(i int) (float64, error) {
	if i < 0 || i >= d.store.Len() {
		return 0, fmt.Errorf("%w: %d (dataset size %d)", ErrIndexOutOfRange, i, d.store.Len())
	}

	if d.durations != nil {
		return d.durations[i] * float64(d.rate) / float64(d.hop), nil
	}

	shape, err := d.store.FeatureShape(i)
	if err != nil {
		return 0, fmt.Errorf("dataset: %w", err)
	}

	if len(shape) == 0 {
		return 0, fmt.Errorf("dataset: feature %d has no shape", i)
	}

	return float64(shape[len(shape)-1]), nil
}

func (d *Precomputed) Item(ctx context.Context, i int) (Example, error) {
	if i < 0 || i >= d.store.Len() {
		return Example{}, fmt.Errorf("%w: %d (dataset size %d)", ErrIndexOutOfRange, i, d.store.Len())
	}

	if err := ctx.Err(); err != nil {
		return Example{}, err
	}

	features, err := d.store.Feature(i)
	if err != nil {
		return Example{}, fmt.Errorf("dataset: %w", err)
	}

	return Example{Features: features, Text: d.texts[i]}, nil
}
