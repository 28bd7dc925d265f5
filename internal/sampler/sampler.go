// Package sampler plans length-aware training batches. Rows are packed
// greedily under a frame budget so every batch carries a comparable amount
// of audio regardless of clip length; only the delivery order of finished
// batches changes between epochs.
package sampler

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
)

// FrameLens exposes per-index frame lengths. Dataset views satisfy it.
type FrameLens interface {
	Len() int
	FrameLen(i int) (float64, error)
}

// Sequential returns the identity index order 0..n-1.
func Sequential(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

// Shuffled returns a seeded permutation of 0..n-1.
func Shuffled(n int, seed int64) []int {
	return rand.New(rand.NewSource(seed)).Perm(n)
}

// Options configures batch planning.
type Options struct {
	// FramesThreshold caps the summed frame length of a batch.
	FramesThreshold float64

	// MaxSamples additionally caps the row count per batch; zero means
	// unlimited.
	MaxSamples int

	// Seed drives the per-epoch delivery permutation. Nil disables
	// shuffling: delivery stays in construction order on every epoch.
	Seed *int64

	// DropResidual discards the final underfull batch.
	DropResidual bool

	Logger *slog.Logger
}

// ErrInvalidThreshold is returned when the frame budget is not positive.
var ErrInvalidThreshold = errors.New("sampler: frames threshold must be positive")

// DynamicBatchSampler holds the planned batches. Batch contents are fixed
// at construction; SetEpoch only permutes delivery order.
type DynamicBatchSampler struct {
	batches  [][]int
	delivery []int
	dropped  int
	seed     *int64
}

type lengthedIndex struct {
	index    int
	frameLen float64
}

// New plans batches over the given index order. Every FrameLen is queried
// exactly once; no audio or features are touched.
func New(source FrameLens, order []int, opts Options) (*DynamicBatchSampler, error) {
	if source == nil {
		return nil, errors.New("sampler: nil frame length source")
	}

	if opts.FramesThreshold <= 0 {
		return nil, ErrInvalidThreshold
	}

	if opts.MaxSamples < 0 {
		return nil, fmt.Errorf("sampler: negative max samples %d", opts.MaxSamples)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if order == nil {
		order = Sequential(source.Len())
	}

	items := make([]lengthedIndex, 0, len(order))
	for _, i := range order {
		fl, err := source.FrameLen(i)
		if err != nil {
			return nil, fmt.Errorf("sampler: frame length of row %d: %w", i, err)
		}
		items = append(items, lengthedIndex{index: i, frameLen: fl})
	}

	// Stable so equal-length rows keep the source order and planning stays
	// reproducible for a fixed input order.
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].frameLen < items[b].frameLen
	})

	batches, dropped := planBatches(items, opts.FramesThreshold, opts.MaxSamples, opts.DropResidual)

	if dropped > 0 {
		logger.Warn("dropped oversized rows",
			"count", dropped,
			"frames_threshold", opts.FramesThreshold)
	}

	s := &DynamicBatchSampler{
		batches: batches,
		dropped: dropped,
		seed:    opts.Seed,
	}

	// Construction order until an epoch is set.
	s.delivery = Sequential(len(batches))

	return s, nil
}

// planBatches packs length-sorted rows greedily: a row joins the open batch
// while the summed frame length stays at or under the threshold and the
// batch is below maxSamples (zero = unlimited). Any row that cannot join
// closes the open batch; a single row longer than the threshold can never
// fit anywhere and is dropped. Only the batch still open after the pass is
// residual, kept unless dropResidual.
func planBatches(items []lengthedIndex, threshold float64, maxSamples int, dropResidual bool) (batches [][]int, dropped int) {
	var (
		batch  []int
		frames float64
	)

	for _, it := range items {
		if it.frameLen > threshold {
			if len(batch) > 0 {
				batches = append(batches, batch)
				batch = nil
				frames = 0
			}

			dropped++
			continue
		}

		fits := frames+it.frameLen <= threshold
		if maxSamples > 0 && len(batch) >= maxSamples {
			fits = false
		}

		if !fits && len(batch) > 0 {
			batches = append(batches, batch)
			batch = nil
			frames = 0
		}

		batch = append(batch, it.index)
		frames += it.frameLen
	}

	if len(batch) > 0 && !dropResidual {
		batches = append(batches, batch)
	}

	return batches, dropped
}

// Len returns the number of planned batches.
func (s *DynamicBatchSampler) Len() int {
	return len(s.batches)
}

// Dropped returns how many rows exceeded the frame budget on their own.
func (s *DynamicBatchSampler) Dropped() int {
	return s.dropped
}

// SetEpoch re-derives the delivery permutation from seed+epoch. Calling it
// again with the same epoch restores the same order. Without a seed the
// delivery order stays the construction order on every epoch.
func (s *DynamicBatchSampler) SetEpoch(epoch int) {
	if s.seed == nil {
		s.delivery = Sequential(len(s.batches))
		return
	}

	s.delivery = rand.New(rand.NewSource(*s.seed + int64(epoch))).Perm(len(s.batches))
}

// Batches returns the planned batches in the current epoch's delivery
// order. The outer slice is fresh; the inner slices are shared and must
// not be mutated.
func (s *DynamicBatchSampler) Batches() [][]int {
	out := make([][]int, len(s.batches))
	for pos, bi := range s.delivery {
		out[pos] = s.batches[bi]
	}
	return out
}
