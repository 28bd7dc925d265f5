// Package dataset exposes training corpora through a single capability
// surface: length, cheap per-index frame length, and on-demand example
// materialization. Frame-length queries never decode audio or materialize
// features; the batch planner scans the whole corpus through them.
package dataset

import (
	"context"
	"errors"

	"github.com/example/go-tts-dataprep/internal/tensor"
)

// Example is one materialized training unit: a [d, t] feature matrix and
// its transcript.
type Example struct {
	Features *tensor.Tensor
	Text     string
}

// FeatureExtractor maps a mono waveform at a given sample rate to a 2-D
// time-frequency representation. The transform itself is outside this
// package; implementations are opaque.
type FeatureExtractor interface {
	Extract(samples []float32, sampleRate int) (*tensor.Tensor, error)
}

// View is an index-addressable dataset.
type View interface {
	// Len returns the number of rows.
	Len() int

	// FrameLen returns the feature frame count for row i without decoding
	// audio or materializing features.
	FrameLen(i int) (float64, error)

	// Item materializes row i.
	Item(ctx context.Context, i int) (Example, error)
}

// ErrIndexOutOfRange signals an index outside the view; a programming or
// configuration error upstream, never a data defect.
var ErrIndexOutOfRange = errors.New("dataset: index out of range")

// ErrNoValidSample is returned when a bounded skip-forward scan finds no
// row inside the duration bounds.
var ErrNoValidSample = errors.New("dataset: no row within duration bounds")
