package audio

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/cwbudde/wav"
)

// DecodeWAVFile decodes a WAV file and returns interleaved float32 PCM
// samples together with the source sample rate and channel count. Unlike a
// playback path, ingestion accepts any rate, channel count, and bit depth;
// downmixing and resampling happen downstream.
func DecodeWAVFile(path string) ([]float32, int, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("read %s: %w", path, err)
	}

	samples, rate, channels, err := DecodeWAV(data)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode %s: %w", path, err)
	}

	return samples, rate, channels, nil
}

// DecodeWAV decodes WAV bytes into interleaved float32 PCM samples.
func DecodeWAV(data []byte) ([]float32, int, int, error) {
	if len(data) == 0 {
		return nil, 0, 0, errors.New("empty WAV input")
	}

	r := bytes.NewReader(data)
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, 0, errors.New("invalid WAV file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("reading PCM data: %w", err)
	}

	return buf.Data, int(dec.SampleRate), int(dec.NumChans), nil
}

// DownmixMono averages interleaved multi-channel samples into mono.
// Mono input is returned unchanged.
func DownmixMono(samples []float32, channels int) ([]float32, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("invalid channel count %d", channels)
	}

	if channels == 1 {
		return samples, nil
	}

	if len(samples)%channels != 0 {
		return nil, fmt.Errorf("sample count %d not divisible by %d channels", len(samples), channels)
	}

	frames := len(samples) / channels
	out := make([]float32, frames)

	for i := range frames {
		var sum float32
		for c := range channels {
			sum += samples[i*channels+c]
		}

		out[i] = sum / float32(channels)
	}

	return out, nil
}
