package tensor

import (
	"fmt"
)

// Tensor is a generic tensor parameterized over its compute backend.
//
// Tensor wraps a RawTensor together with the backend that computes on it,
// so operations read naturally in model code:
//
//	z := x.MatMul(w).Add(b)
//
// Type parameter B is the backend implementation (e.g. *cpu.CPUBackend).
type Tensor[B Backend] struct {
	raw     *RawTensor
	backend B
}

// New creates a tensor from a raw tensor.
//
// This is a low-level function. Most users should use creation functions
// like Zeros, Ones, or FromSlice instead.
func New[B Backend](raw *RawTensor, b B) *Tensor[B] {
	return &Tensor[B]{raw: raw, backend: b}
}

// FromSlice creates a tensor from a Go slice.
func FromSlice[B Backend](data []float32, shape Shape, b B) (*Tensor[B], error) {
	raw, err := RawFromSlice(data, shape)
	if err != nil {
		return nil, err
	}
	return New(raw, b), nil
}

// Shape returns the tensor's shape.
func (t *Tensor[B]) Shape() Shape {
	return t.raw.Shape()
}

// NumElements returns the total number of elements.
func (t *Tensor[B]) NumElements() int {
	return t.raw.NumElements()
}

// Raw returns the underlying raw tensor.
func (t *Tensor[B]) Raw() *RawTensor {
	return t.raw
}

// Backend returns the tensor's compute backend.
func (t *Tensor[B]) Backend() B {
	return t.backend
}

// Data returns the underlying float32 buffer (shared, not copied).
func (t *Tensor[B]) Data() []float32 {
	return t.raw.Data()
}

// At returns the element at the given multi-dimensional indices.
func (t *Tensor[B]) At(indices ...int) float32 {
	return t.raw.Data()[t.flatIndex(indices)]
}

// Set writes the element at the given multi-dimensional indices.
func (t *Tensor[B]) Set(value float32, indices ...int) {
	t.raw.Data()[t.flatIndex(indices)] = value
}

func (t *Tensor[B]) flatIndex(indices []int) int {
	shape := t.raw.Shape()
	if len(indices) != len(shape) {
		panic(fmt.Sprintf("Tensor.At: expected %d indices for shape %v, got %d",
			len(shape), shape, len(indices)))
	}
	strides := t.raw.Strides()
	idx := 0
	for i, index := range indices {
		if index < 0 || index >= shape[i] {
			panic(fmt.Sprintf("Tensor.At: index %d out of range for dimension %d (size %d)",
				index, i, shape[i]))
		}
		idx += index * strides[i]
	}
	return idx
}

// Clone returns a deep copy of the tensor.
func (t *Tensor[B]) Clone() *Tensor[B] {
	return New(t.raw.Clone(), t.backend)
}

// String returns a short description of the tensor.
func (t *Tensor[B]) String() string {
	return fmt.Sprintf("Tensor(shape=%v, backend=%s)", t.Shape(), t.backend.Name())
}

// Operations delegated to the backend.

// Add performs element-wise addition with broadcasting.
func (t *Tensor[B]) Add(other *Tensor[B]) *Tensor[B] {
	return New(t.backend.Add(t.raw, other.raw), t.backend)
}

// Sub performs element-wise subtraction with broadcasting.
func (t *Tensor[B]) Sub(other *Tensor[B]) *Tensor[B] {
	return New(t.backend.Sub(t.raw, other.raw), t.backend)
}

// Mul performs element-wise multiplication with broadcasting.
func (t *Tensor[B]) Mul(other *Tensor[B]) *Tensor[B] {
	return New(t.backend.Mul(t.raw, other.raw), t.backend)
}

// MulScalar multiplies every element by a scalar.
func (t *Tensor[B]) MulScalar(scalar float32) *Tensor[B] {
	return New(t.backend.MulScalar(t.raw, scalar), t.backend)
}

// AddScalar adds a scalar to every element.
func (t *Tensor[B]) AddScalar(scalar float32) *Tensor[B] {
	return New(t.backend.AddScalar(t.raw, scalar), t.backend)
}

// MatMul performs 2D matrix multiplication: [M, K] @ [K, N] -> [M, N].
func (t *Tensor[B]) MatMul(other *Tensor[B]) *Tensor[B] {
	return New(t.backend.MatMul(t.raw, other.raw), t.backend)
}

// BatchMatMul performs batched matrix multiplication on 3D/4D tensors.
func (t *Tensor[B]) BatchMatMul(other *Tensor[B]) *Tensor[B] {
	return New(t.backend.BatchMatMul(t.raw, other.raw), t.backend)
}

// Reshape returns a tensor with the same data and a new shape.
func (t *Tensor[B]) Reshape(dims ...int) *Tensor[B] {
	return New(t.backend.Reshape(t.raw, Shape(dims)), t.backend)
}

// Transpose permutes the tensor's axes. With no arguments it reverses them.
func (t *Tensor[B]) Transpose(axes ...int) *Tensor[B] {
	return New(t.backend.Transpose(t.raw, axes...), t.backend)
}

// T transposes a 2D tensor.
func (t *Tensor[B]) T() *Tensor[B] {
	if len(t.Shape()) != 2 {
		panic(fmt.Sprintf("Tensor.T: expected 2D tensor, got shape %v", t.Shape()))
	}
	return t.Transpose(1, 0)
}

// Softmax applies softmax along the given dimension (-1 for last).
func (t *Tensor[B]) Softmax(dim int) *Tensor[B] {
	return New(t.backend.Softmax(t.raw, dim), t.backend)
}

// Sigmoid applies the element-wise logistic function.
func (t *Tensor[B]) Sigmoid() *Tensor[B] {
	return New(t.backend.Sigmoid(t.raw), t.backend)
}

// ReLU applies the element-wise rectifier max(0, x).
func (t *Tensor[B]) ReLU() *Tensor[B] {
	return New(t.backend.ReLU(t.raw), t.backend)
}

// Rsqrt applies the element-wise reciprocal square root.
func (t *Tensor[B]) Rsqrt() *Tensor[B] {
	return New(t.backend.Rsqrt(t.raw), t.backend)
}

// MeanDim computes the mean along a dimension.
func (t *Tensor[B]) MeanDim(dim int, keepDim bool) *Tensor[B] {
	return New(t.backend.MeanDim(t.raw, dim, keepDim), t.backend)
}
