// Package testutil provides shared fixture helpers for pipeline tests:
// synthetic WAV clips and pipe-delimited metadata files written into
// temporary directories.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/go-tts-dataprep/internal/audio"
)

// WriteWAV writes a sine-tone WAV clip of the given duration into dir and
// returns its path.
func WriteWAV(tb testing.TB, dir, name string, seconds float64, sampleRate, channels int) string {
	tb.Helper()

	frames := int(seconds * float64(sampleRate))
	samples := make([]float32, frames*channels)

	for i := range samples {
		samples[i] = 0.5 * float32(math.Sin(2*math.Pi*440*float64(i/channels)/float64(sampleRate)))
	}

	data, err := audio.EncodeWAV(samples, sampleRate, channels)
	if err != nil {
		tb.Fatalf("encode fixture WAV: %v", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatalf("write fixture WAV: %v", err)
	}

	return path
}

// WriteMetadata writes a metadata file with one entry per line and returns
// its path.
func WriteMetadata(tb testing.TB, dir, name string, lines []string) string {
	tb.Helper()

	path := filepath.Join(dir, name)

	content := strings.Join(lines, "\n")
	if content != "" {
		content += "\n"
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		tb.Fatalf("write fixture metadata: %v", err)
	}

	return path
}
