package dataset

import (
	"errors"
	"math"

	"github.com/example/go-tts-dataprep/internal/tensor"
)

// FrameEnergy is a minimal feature extractor: one log-energy value per hop.
// It is mainly useful for exercising the pipeline without a spectral frontend.
type FrameEnergy struct {
	// HopLength is the number of samples per frame.
	HopLength int
}

// Extract computes a [1, T] tensor of per-frame log energies, where
// T = ceil(len(samples) / HopLength).
func (f FrameEnergy) Extract(samples []float32, sampleRate int) (*tensor.Tensor, error) {
	if f.HopLength <= 0 {
		return nil, errors.New("frame energy: hop length must be positive")
	}
	if len(samples) == 0 {
		return nil, errors.New("frame energy: empty input")
	}
	frames := (len(samples) + f.HopLength - 1) / f.HopLength
	out := make([]float32, frames)
	for t := 0; t < frames; t++ {
		start := t * f.HopLength
		end := start + f.HopLength
		if end > len(samples) {
			end = len(samples)
		}
		var sum float64
		for _, s := range samples[start:end] {
			sum += float64(s) * float64(s)
		}
		mean := sum / float64(end-start)
		out[t] = float32(math.Log(mean + 1e-10))
	}
	return tensor.New(out, []int64{1, int64(frames)})
}
