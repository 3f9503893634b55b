package tensor

import (
	"fmt"
	"slices"
)

// Shape holds the extent of each tensor dimension, outermost first.
// Shape{2, 24, 3} is a batch of 2 windows of 24 timesteps with 3 features.
// A zero-length Shape denotes a scalar.
type Shape []int

// NumElements returns the number of elements a tensor of this shape holds.
// A scalar holds one element.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate reports whether every dimension is positive.
func (s Shape) Validate() error {
	for axis, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("shape %v has non-positive dimension %d at axis %d", s, dim, axis)
		}
	}
	return nil
}

// Equal reports whether both shapes have the same rank and dimensions.
func (s Shape) Equal(other Shape) bool {
	return slices.Equal(s, other)
}

// Clone returns an independent copy of the shape.
func (s Shape) Clone() Shape {
	return slices.Clone(s)
}

// ComputeStrides returns the row-major strides of the shape: the element
// offset between consecutive indices along each axis. The innermost axis has
// stride 1.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	acc := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= s[i]
	}
	return strides
}

// rightDim returns the dimension i axes in from the right edge of the shape,
// treating axes beyond the shape's rank as 1.
func rightDim(s Shape, i int) int {
	if i >= len(s) {
		return 1
	}
	return s[len(s)-1-i]
}

// BroadcastShapes resolves two shapes under NumPy broadcasting: axes are
// aligned from the right, a missing axis counts as 1, and at every position
// the dimensions must either match or one of them must be 1 (which stretches
// to the other).
//
// It returns the resolved shape and whether any axis actually stretches, so
// callers can take a same-shape fast path when it does not.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	rank := max(len(a), len(b))
	out := make(Shape, rank)
	stretched := false

	for i := 0; i < rank; i++ {
		da, db := rightDim(a, i), rightDim(b, i)
		axis := rank - 1 - i
		switch {
		case da == db:
			out[axis] = da
		case da == 1:
			out[axis] = db
			stretched = true
		case db == 1:
			out[axis] = da
			stretched = true
		default:
			return nil, false, fmt.Errorf("cannot broadcast %v with %v: axis %d has %d vs %d",
				a, b, axis, da, db)
		}
	}
	return out, stretched, nil
}
