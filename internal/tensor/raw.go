// Package tensor implements the float32 tensor substrate used by the Tempo
// model stack: shapes, raw storage, the Backend op interface and the generic
// Tensor type that delegates computation to a backend.
package tensor

import (
	"fmt"
)

// RawTensor is the low-level tensor representation: a contiguous, row-major
// float32 buffer plus shape metadata. Backends operate on RawTensors; the
// generic Tensor type wraps them with a backend for method-style ops.
type RawTensor struct {
	data   []float32
	shape  Shape
	stride []int
}

// NewRaw creates a new RawTensor with the given shape.
// Memory is allocated and zero-initialized.
func NewRaw(shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	return &RawTensor{
		data:   make([]float32, shape.NumElements()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
	}, nil
}

// RawFromSlice creates a RawTensor backed by a copy of the given data.
func RawFromSlice(data []float32, shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}

	buf := make([]float32, len(data))
	copy(buf, data)

	return &RawTensor{
		data:   buf,
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
	}, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// Data returns the underlying float32 buffer.
// The buffer is shared, not copied; mutating it mutates the tensor.
func (r *RawTensor) Data() []float32 {
	return r.data
}

// Clone returns a deep copy of the tensor.
func (r *RawTensor) Clone() *RawTensor {
	buf := make([]float32, len(r.data))
	copy(buf, r.data)
	return &RawTensor{
		data:   buf,
		shape:  r.shape.Clone(),
		stride: r.shape.ComputeStrides(),
	}
}

// WithShape returns a view-like RawTensor sharing this tensor's buffer under
// a new shape. The element count must match.
func (r *RawTensor) WithShape(shape Shape) *RawTensor {
	if shape.NumElements() != r.NumElements() {
		panic(fmt.Sprintf("RawTensor.WithShape: cannot view %v (%d elements) as %v (%d elements)",
			r.shape, r.NumElements(), shape, shape.NumElements()))
	}
	return &RawTensor{
		data:   r.data,
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
	}
}

// String returns a short description of the tensor.
func (r *RawTensor) String() string {
	return fmt.Sprintf("RawTensor(shape=%v)", r.shape)
}
