package dataset

import (
	"context"
	"fmt"
)

// Concat joins several views into one index space. Indices run through the
// sub-views in the order they were given.
type Concat struct {
	views []View
	// cum[k] is the number of items in views[0..k-1]; cum[len(views)] is the total.
	cum []int
}

// NewConcat builds a concatenated view over the given sub-views.
func NewConcat(views ...View) *Concat {
	cum := make([]int, len(views)+1)
	for i, v := range views {
		cum[i+1] = cum[i] + v.Len()
	}
	return &Concat{views: views, cum: cum}
}

// Len returns the total number of items across all sub-views.
func (c *Concat) Len() int {
	return c.cum[len(c.views)]
}

// FrameLen reports the frame length of the item at the global index.
func (c *Concat) FrameLen(index int) (float64, error) {
	view, local, err := c.locate(index)
	if err != nil {
		return 0, err
	}
	return view.FrameLen(local)
}

// Item materializes the item at the global index.
func (c *Concat) Item(ctx context.Context, index int) (Example, error) {
	view, local, err := c.locate(index)
	if err != nil {
		return Example{}, err
	}
	return view.Item(ctx, local)
}

func (c *Concat) locate(index int) (View, int, error) {
	if index < 0 || index >= c.Len() {
		return nil, 0, fmt.Errorf("index %d outside [0, %d): %w", index, c.Len(), ErrIndexOutOfRange)
	}
	for k, v := range c.views {
		if index < c.cum[k+1] {
			return v, index - c.cum[k], nil
		}
	}
	// unreachable: cum covers the full range
	return nil, 0, fmt.Errorf("index %d outside [0, %d): %w", index, c.Len(), ErrIndexOutOfRange)
}
