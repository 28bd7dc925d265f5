// Package collate assembles materialized examples into fixed-shape training
// batches: time-padded, stacked features plus per-row length bookkeeping.
package collate

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/example/go-tts-dataprep/internal/dataset"
	"github.com/example/go-tts-dataprep/internal/tensor"
)

// Batch is one collated training step. Features is [n, d, maxT]; rows
// shorter than maxT are zero-padded on the right, never truncated.
// FeatureLengths holds each row's true frame count before padding.
type Batch struct {
	Features       *tensor.Tensor
	FeatureLengths []int
	Texts          []string
	TextLengths    []int
}

// ErrEmptyBatch is returned when there is nothing to collate.
var ErrEmptyBatch = errors.New("collate: empty batch")

// Collate pads every example's features to the longest time dimension in
// the batch and stacks them. All examples must share the same feature
// dimension; time may vary.
func Collate(examples []dataset.Example) (Batch, error) {
	if len(examples) == 0 {
		return Batch{}, ErrEmptyBatch
	}

	maxT := int64(0)
	for i, ex := range examples {
		if ex.Features == nil {
			return Batch{}, fmt.Errorf("collate: example %d has no features", i)
		}

		if ex.Features.Rank() != 2 {
			return Batch{}, fmt.Errorf("collate: example %d has rank %d, want 2", i, ex.Features.Rank())
		}

		if d := ex.Features.Shape()[0]; d != examples[0].Features.Shape()[0] {
			return Batch{}, fmt.Errorf("collate: example %d has feature dim %d, example 0 has %d",
				i, d, examples[0].Features.Shape()[0])
		}

		if t := ex.Features.TimeLen(); t > maxT {
			maxT = t
		}
	}

	padded := make([]*tensor.Tensor, len(examples))
	featureLengths := make([]int, len(examples))
	texts := make([]string, len(examples))
	textLengths := make([]int, len(examples))

	for i, ex := range examples {
		featureLengths[i] = int(ex.Features.TimeLen())
		texts[i] = ex.Text
		textLengths[i] = utf8.RuneCountInString(ex.Text)

		p, err := ex.Features.PadTimeTo(maxT)
		if err != nil {
			return Batch{}, fmt.Errorf("collate: pad example %d: %w", i, err)
		}
		padded[i] = p
	}

	features, err := tensor.Stack(padded)
	if err != nil {
		return Batch{}, fmt.Errorf("collate: %w", err)
	}

	return Batch{
		Features:       features,
		FeatureLengths: featureLengths,
		Texts:          texts,
		TextLengths:    textLengths,
	}, nil
}
