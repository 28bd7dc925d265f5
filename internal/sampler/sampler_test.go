package sampler

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"testing"
)

// fixedLens serves a fixed frame length per index.
type fixedLens []float64

func (f fixedLens) Len() int { return len(f) }

func (f fixedLens) FrameLen(i int) (float64, error) {
	if i < 0 || i >= len(f) {
		return 0, fmt.Errorf("index %d out of range", i)
	}
	return f[i], nil
}

func TestPackingUnderThreshold(t *testing.T) {
	s, err := New(fixedLens{10, 10, 10, 10, 100}, nil, Options{FramesThreshold: 25})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	want := [][]int{{0, 1}, {2, 3}}
	if got := s.Batches(); !reflect.DeepEqual(got, want) {
		t.Errorf("Batches = %v, want %v", got, want)
	}

	if s.Dropped() != 1 {
		t.Errorf("Dropped = %d, want 1", s.Dropped())
	}
}

func TestBatchesRespectThresholdAndPartitionInput(t *testing.T) {
	lens := fixedLens{7, 3, 12, 5, 9, 2, 11, 4, 8, 6}
	const threshold = 20.0

	s, err := New(lens, nil, Options{FramesThreshold: threshold})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	seen := map[int]bool{}
	for _, batch := range s.Batches() {
		var frames float64
		for _, i := range batch {
			if seen[i] {
				t.Fatalf("index %d appears in more than one batch", i)
			}
			seen[i] = true
			frames += lens[i]
		}

		if frames > threshold {
			t.Errorf("batch %v sums to %g frames, above %g", batch, frames, threshold)
		}
	}

	if len(seen) != lens.Len() {
		t.Errorf("batches cover %d of %d indices", len(seen), lens.Len())
	}
}

func seedOf(v int64) *int64 { return &v }

func TestOversizedRowClosesOpenBatch(t *testing.T) {
	// sorted: 10,15 fill a batch exactly; 100 cannot fit anywhere. The
	// full [10,15] batch is emitted when 100 arrives, so it is not
	// residual and must survive DropResidual.
	s, err := New(fixedLens{10, 15, 100}, nil, Options{FramesThreshold: 25, DropResidual: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	want := [][]int{{0, 1}}
	if got := s.Batches(); !reflect.DeepEqual(got, want) {
		t.Errorf("Batches = %v, want %v", got, want)
	}

	if s.Dropped() != 1 {
		t.Errorf("Dropped = %d, want 1", s.Dropped())
	}
}

func TestMaxSamplesCap(t *testing.T) {
	s, err := New(fixedLens{1, 1, 1, 1, 1, 1, 1}, nil, Options{FramesThreshold: 100, MaxSamples: 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, batch := range s.Batches() {
		if len(batch) > 3 {
			t.Errorf("batch %v exceeds max samples 3", batch)
		}
	}
}

func TestDropResidual(t *testing.T) {
	// sorted: 10,10,15 → [10,10] then residual [15]
	lens := fixedLens{10, 15, 10}

	kept, err := New(lens, nil, Options{FramesThreshold: 20})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if kept.Len() != 2 {
		t.Errorf("residual kept: Len = %d, want 2", kept.Len())
	}

	dropped, err := New(lens, nil, Options{FramesThreshold: 20, DropResidual: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if dropped.Len() != 1 {
		t.Errorf("residual dropped: Len = %d, want 1", dropped.Len())
	}
}

func TestEpochPermutationDeterministic(t *testing.T) {
	lens := make(fixedLens, 40)
	for i := range lens {
		lens[i] = float64(1 + i%7)
	}

	build := func() *DynamicBatchSampler {
		s, err := New(lens, nil, Options{FramesThreshold: 15, Seed: seedOf(42)})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		return s
	}

	a, b := build(), build()

	a.SetEpoch(3)
	b.SetEpoch(3)
	if !reflect.DeepEqual(a.Batches(), b.Batches()) {
		t.Error("same seed and epoch produced different delivery orders")
	}

	epoch3 := a.Batches()

	a.SetEpoch(4)
	if reflect.DeepEqual(epoch3, a.Batches()) {
		t.Error("different epochs produced identical delivery orders")
	}

	a.SetEpoch(3)
	if !reflect.DeepEqual(epoch3, a.Batches()) {
		t.Error("revisiting an epoch did not restore its delivery order")
	}
}

func TestEpochShufflesOrderNotContents(t *testing.T) {
	lens := make(fixedLens, 40)
	for i := range lens {
		lens[i] = float64(1 + i%7)
	}

	s, err := New(lens, nil, Options{FramesThreshold: 15, Seed: seedOf(7)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	canonical := func(batches [][]int) []string {
		keys := make([]string, len(batches))
		for i, b := range batches {
			keys[i] = fmt.Sprint(b)
		}
		sort.Strings(keys)
		return keys
	}

	base := canonical(s.Batches())

	for epoch := 1; epoch <= 3; epoch++ {
		s.SetEpoch(epoch)
		if !reflect.DeepEqual(canonical(s.Batches()), base) {
			t.Fatalf("epoch %d changed batch contents", epoch)
		}
	}
}

func TestUnseededDeliveryStaysInConstructionOrder(t *testing.T) {
	lens := make(fixedLens, 40)
	for i := range lens {
		lens[i] = float64(1 + i%7)
	}

	s, err := New(lens, nil, Options{FramesThreshold: 15})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	construction := s.Batches()

	for _, epoch := range []int{0, 1, 5} {
		s.SetEpoch(epoch)
		if !reflect.DeepEqual(s.Batches(), construction) {
			t.Errorf("epoch %d reordered an unseeded sampler", epoch)
		}
	}
}

func TestExplicitOrderSources(t *testing.T) {
	if got := Sequential(4); !reflect.DeepEqual(got, []int{0, 1, 2, 3}) {
		t.Errorf("Sequential(4) = %v", got)
	}

	a := Shuffled(10, 99)
	b := Shuffled(10, 99)
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different shuffles")
	}

	sorted := append([]int(nil), a...)
	sort.Ints(sorted)
	if !reflect.DeepEqual(sorted, Sequential(10)) {
		t.Errorf("Shuffled(10, 99) = %v is not a permutation", a)
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(fixedLens{1}, nil, Options{FramesThreshold: 0}); !errors.Is(err, ErrInvalidThreshold) {
		t.Errorf("zero threshold error = %v, want ErrInvalidThreshold", err)
	}

	if _, err := New(nil, nil, Options{FramesThreshold: 10}); err == nil {
		t.Error("expected error for nil source")
	}

	if _, err := New(fixedLens{1}, []int{5}, Options{FramesThreshold: 10}); err == nil {
		t.Error("expected error for out-of-range order index")
	}
}
