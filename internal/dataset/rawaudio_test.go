package dataset

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/example/go-tts-dataprep/internal/metadata"
	"github.com/example/go-tts-dataprep/internal/testutil"
)

func rawFixture(t *testing.T) []metadata.Record {
	t.Helper()

	dir := t.TempDir()

	return []metadata.Record{
		{AudioPath: testutil.WriteWAV(t, dir, "a.wav", 0.5, 8000, 1), Text: "first clip", Duration: 0.5},
		{AudioPath: testutil.WriteWAV(t, dir, "b.wav", 1.0, 8000, 1), Text: "second clip", Duration: 1.0},
		{AudioPath: testutil.WriteWAV(t, dir, "c.wav", 2.0, 8000, 2), Text: "third clip", Duration: 2.0},
	}
}

func TestRawAudioFrameLen(t *testing.T) {
	view, err := NewRawAudio(rawFixture(t), FrameEnergy{HopLength: 200}, RawAudioOptions{
		TargetSampleRate: 8000,
		HopLength:        200,
		Durations:        metadata.RawClipPolicy(),
	})
	if err != nil {
		t.Fatalf("NewRawAudio: %v", err)
	}

	if view.Len() != 3 {
		t.Fatalf("Len = %d, want 3", view.Len())
	}

	// duration × rate ÷ hop
	want := []float64{20, 40, 80}
	for i, w := range want {
		got, err := view.FrameLen(i)
		if err != nil {
			t.Fatalf("FrameLen(%d): %v", i, err)
		}

		if math.Abs(got-w) > 1e-9 {
			t.Errorf("FrameLen(%d) = %g, want %g", i, got, w)
		}
	}

	if _, err := view.FrameLen(3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("FrameLen(3) error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestRawAudioItem(t *testing.T) {
	view, err := NewRawAudio(rawFixture(t), FrameEnergy{HopLength: 200}, RawAudioOptions{
		TargetSampleRate: 8000,
		HopLength:        200,
		Durations:        metadata.RawClipPolicy(),
	})
	if err != nil {
		t.Fatalf("NewRawAudio: %v", err)
	}

	example, err := view.Item(context.Background(), 1)
	if err != nil {
		t.Fatalf("Item(1): %v", err)
	}

	if example.Text != "second clip" {
		t.Errorf("Text = %q, want %q", example.Text, "second clip")
	}

	shape := example.Features.Shape()
	if len(shape) != 2 || shape[0] != 1 || shape[1] != 40 {
		t.Errorf("feature shape = %v, want [1 40]", shape)
	}

	// stereo clip downmixes before extraction
	if _, err := view.Item(context.Background(), 2); err != nil {
		t.Fatalf("Item(2): %v", err)
	}
}

func TestRawAudioItemSkipsForward(t *testing.T) {
	records := rawFixture(t)
	records[0].Duration = 45 // outside bounds at materialization time

	view, err := NewRawAudio(records, FrameEnergy{HopLength: 200}, RawAudioOptions{
		TargetSampleRate: 8000,
		HopLength:        200,
		Durations:        metadata.RawClipPolicy(),
	})
	if err != nil {
		t.Fatalf("NewRawAudio: %v", err)
	}

	example, err := view.Item(context.Background(), 0)
	if err != nil {
		t.Fatalf("Item(0): %v", err)
	}

	if example.Text != "second clip" {
		t.Errorf("Text = %q, want the next valid row %q", example.Text, "second clip")
	}
}

func TestRawAudioItemNoValidSample(t *testing.T) {
	records := rawFixture(t)
	for i := range records {
		records[i].Duration = 45
	}

	view, err := NewRawAudio(records, FrameEnergy{HopLength: 200}, RawAudioOptions{
		TargetSampleRate: 8000,
		HopLength:        200,
		Durations:        metadata.RawClipPolicy(),
	})
	if err != nil {
		t.Fatalf("NewRawAudio: %v", err)
	}

	if _, err := view.Item(context.Background(), 0); !errors.Is(err, ErrNoValidSample) {
		t.Fatalf("Item error = %v, want ErrNoValidSample", err)
	}
}

func TestRawAudioItemCancelledContext(t *testing.T) {
	view, err := NewRawAudio(rawFixture(t), FrameEnergy{HopLength: 200}, RawAudioOptions{
		TargetSampleRate: 8000,
		HopLength:        200,
		Durations:        metadata.RawClipPolicy(),
	})
	if err != nil {
		t.Fatalf("NewRawAudio: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := view.Item(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("Item error = %v, want context.Canceled", err)
	}
}

func TestNewRawAudioValidation(t *testing.T) {
	records := rawFixture(t)

	if _, err := NewRawAudio(nil, FrameEnergy{HopLength: 200}, RawAudioOptions{TargetSampleRate: 8000, HopLength: 200}); err == nil {
		t.Error("expected error for empty records")
	}

	if _, err := NewRawAudio(records, nil, RawAudioOptions{TargetSampleRate: 8000, HopLength: 200}); err == nil {
		t.Error("expected error for nil extractor")
	}

	if _, err := NewRawAudio(records, FrameEnergy{HopLength: 200}, RawAudioOptions{TargetSampleRate: 8000, HopLength: 0}); err == nil {
		t.Error("expected error for zero hop length")
	}
}
