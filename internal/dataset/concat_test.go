package dataset

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// stubView serves fixed frame lengths and labels items by view name and
// local index.
type stubView struct {
	name      string
	frameLens []float64
}

func (v *stubView) Len() int { return len(v.frameLens) }

func (v *stubView) FrameLen(i int) (float64, error) {
	if i < 0 || i >= len(v.frameLens) {
		return 0, fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	return v.frameLens[i], nil
}

func (v *stubView) Item(_ context.Context, i int) (Example, error) {
	if i < 0 || i >= len(v.frameLens) {
		return Example{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	return Example{Text: fmt.Sprintf("%s/%d", v.name, i)}, nil
}

func TestConcatTranslatesIndices(t *testing.T) {
	concat := NewConcat(
		&stubView{name: "a", frameLens: []float64{10, 11, 12}},
		&stubView{name: "b", frameLens: []float64{20}},
		&stubView{name: "c", frameLens: []float64{30, 31}},
	)

	if concat.Len() != 6 {
		t.Fatalf("Len = %d, want 6", concat.Len())
	}

	tests := []struct {
		global   int
		frameLen float64
		text     string
	}{
		{global: 0, frameLen: 10, text: "a/0"}, // first of first view
		{global: 1, frameLen: 11, text: "a/1"}, // interior
		{global: 2, frameLen: 12, text: "a/2"}, // last of first view
		{global: 3, frameLen: 20, text: "b/0"}, // single-item view
		{global: 4, frameLen: 30, text: "c/0"}, // first of last view
		{global: 5, frameLen: 31, text: "c/1"}, // last overall
	}

	for _, tt := range tests {
		got, err := concat.FrameLen(tt.global)
		if err != nil {
			t.Fatalf("FrameLen(%d): %v", tt.global, err)
		}
		if got != tt.frameLen {
			t.Errorf("FrameLen(%d) = %g, want %g", tt.global, got, tt.frameLen)
		}

		example, err := concat.Item(context.Background(), tt.global)
		if err != nil {
			t.Fatalf("Item(%d): %v", tt.global, err)
		}
		if example.Text != tt.text {
			t.Errorf("Item(%d).Text = %q, want %q", tt.global, example.Text, tt.text)
		}
	}
}

func TestConcatOutOfRange(t *testing.T) {
	concat := NewConcat(&stubView{name: "a", frameLens: []float64{10, 11}})

	for _, i := range []int{-1, 2, 100} {
		if _, err := concat.FrameLen(i); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("FrameLen(%d) error = %v, want ErrIndexOutOfRange", i, err)
		}

		if _, err := concat.Item(context.Background(), i); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Item(%d) error = %v, want ErrIndexOutOfRange", i, err)
		}
	}
}

func TestConcatEmptySubView(t *testing.T) {
	concat := NewConcat(
		&stubView{name: "a", frameLens: []float64{10}},
		&stubView{name: "empty"},
		&stubView{name: "c", frameLens: []float64{30}},
	)

	if concat.Len() != 2 {
		t.Fatalf("Len = %d, want 2", concat.Len())
	}

	example, err := concat.Item(context.Background(), 1)
	if err != nil {
		t.Fatalf("Item(1): %v", err)
	}

	if example.Text != "c/0" {
		t.Errorf("Item(1).Text = %q, want %q", example.Text, "c/0")
	}
}
