// Package tensor provides the dense float32 feature tensor used throughout
// the data pipeline. Features are row-major; the time axis is always the
// last dimension.
package tensor

import (
	"errors"
	"fmt"
	"math"
)

// Tensor is a dense, row-major float32 tensor.
type Tensor struct {
	shape []int64
	data  []float32
}

// New creates a tensor from data and shape.
func New(data []float32, shape []int64) (*Tensor, error) {
	total, err := shapeElemCount(shape)
	if err != nil {
		return nil, err
	}

	if len(data) != total {
		return nil, fmt.Errorf("tensor: data length %d does not match shape %v (%d elements)", len(data), shape, total)
	}

	s := append([]int64(nil), shape...)
	d := append([]float32(nil), data...)

	return &Tensor{shape: s, data: d}, nil
}

// newOwned creates a Tensor taking ownership of the provided data and shape
// slices without copying. len(data) must equal the product of shape elements;
// this is the caller's responsibility.
func newOwned(data []float32, shape []int64) *Tensor {
	return &Tensor{shape: shape, data: data}
}

// Zeros creates a zero-initialized tensor.
func Zeros(shape []int64) (*Tensor, error) {
	total, err := shapeElemCount(shape)
	if err != nil {
		return nil, err
	}

	return &Tensor{
		shape: append([]int64(nil), shape...),
		data:  make([]float32, total),
	}, nil
}

func (t *Tensor) Shape() []int64 {
	if t == nil {
		return nil
	}

	return append([]int64(nil), t.shape...)
}

// Data returns a copy of the underlying tensor data.
func (t *Tensor) Data() []float32 {
	if t == nil {
		return nil
	}

	return append([]float32(nil), t.data...)
}

// RawData returns the underlying data slice.
// Callers must treat it as read-only.
func (t *Tensor) RawData() []float32 {
	if t == nil {
		return nil
	}

	return t.data
}

func (t *Tensor) ElemCount() int {
	if t == nil {
		return 0
	}

	return len(t.data)
}

func (t *Tensor) Rank() int {
	if t == nil {
		return 0
	}

	return len(t.shape)
}

// TimeLen returns the size of the last (time) dimension.
func (t *Tensor) TimeLen() int64 {
	if t == nil || len(t.shape) == 0 {
		return 0
	}

	return t.shape[len(t.shape)-1]
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	if t == nil {
		return nil
	}

	dup, _ := New(t.data, t.shape)

	return dup
}

// PadTimeTo right-pads the last dimension with zeros to length. The input
// is never truncated; length shorter than the current time dimension is an
// error.
func (t *Tensor) PadTimeTo(length int64) (*Tensor, error) {
	if t == nil {
		return nil, errors.New("tensor: pad on nil tensor")
	}

	if len(t.shape) == 0 {
		return nil, errors.New("tensor: pad requires rank >= 1")
	}

	cur := t.shape[len(t.shape)-1]
	if length < cur {
		return nil, fmt.Errorf("tensor: pad target %d shorter than time dimension %d", length, cur)
	}

	if length == cur {
		return t.Clone(), nil
	}

	outShape := append([]int64(nil), t.shape...)
	outShape[len(outShape)-1] = length

	out, err := Zeros(outShape)
	if err != nil {
		return nil, err
	}

	rows := int64(1)
	for _, d := range t.shape[:len(t.shape)-1] {
		rows *= d
	}

	for r := int64(0); r < rows; r++ {
		copy(out.data[r*length:r*length+cur], t.data[r*cur:(r+1)*cur])
	}

	return out, nil
}

// Stack stacks equal-shape tensors into a new leading dimension.
func Stack(tensors []*Tensor) (*Tensor, error) {
	if len(tensors) == 0 {
		return nil, errors.New("tensor: stack requires at least one tensor")
	}

	first := tensors[0]
	if first == nil {
		return nil, errors.New("tensor: stack tensor 0 is nil")
	}

	for i, t := range tensors {
		if t == nil {
			return nil, fmt.Errorf("tensor: stack tensor %d is nil", i)
		}

		if !equalShape(t.shape, first.shape) {
			return nil, fmt.Errorf("tensor: stack tensor %d shape %v does not match base shape %v", i, t.shape, first.shape)
		}
	}

	outShape := make([]int64, 0, len(first.shape)+1)
	outShape = append(outShape, int64(len(tensors)))
	outShape = append(outShape, first.shape...)

	span := len(first.data)
	outData := make([]float32, len(tensors)*span)

	for i, t := range tensors {
		copy(outData[i*span:(i+1)*span], t.data)
	}

	return newOwned(outData, outShape), nil
}

func equalShape(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func shapeElemCount(shape []int64) (int, error) {
	total := int64(1)

	for i, d := range shape {
		if d < 0 {
			return 0, fmt.Errorf("tensor: shape %v has negative dimension at %d", shape, i)
		}

		total *= d
		if total > math.MaxInt32 && total > math.MaxInt64/2 {
			return 0, fmt.Errorf("tensor: shape %v too large", shape)
		}
	}

	if total > int64(^uint(0)>>1) {
		return 0, fmt.Errorf("tensor: shape %v exceeds platform int size", shape)
	}

	return int(total), nil
}
