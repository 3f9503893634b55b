package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempo-ml/tempo/internal/backend/cpu"
	"github.com/tempo-ml/tempo/internal/tensor"
)

func TestAtSet(t *testing.T) {
	backend := cpu.New()
	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)

	assert.Equal(t, float32(1), x.At(0, 0))
	assert.Equal(t, float32(6), x.At(1, 2))

	x.Set(42, 1, 1)
	assert.Equal(t, float32(42), x.At(1, 1))
}

func TestAtPanics(t *testing.T) {
	backend := cpu.New()
	x := tensor.Zeros(tensor.Shape{2, 3}, backend)

	assert.Panics(t, func() { x.At(0) }, "wrong index count")
	assert.Panics(t, func() { x.At(2, 0) }, "index out of range")
	assert.Panics(t, func() { x.At(0, -1) }, "negative index")
}

func TestTensorClone(t *testing.T) {
	backend := cpu.New()
	x, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, backend)
	require.NoError(t, err)

	y := x.Clone()
	y.Set(9, 0)

	assert.Equal(t, float32(1), x.At(0))
	assert.Equal(t, float32(9), y.At(0))
}

func TestT(t *testing.T) {
	backend := cpu.New()
	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)

	y := x.T()
	require.True(t, y.Shape().Equal(tensor.Shape{3, 2}))
	assert.Equal(t, float32(2), y.At(1, 0))

	z := tensor.Zeros(tensor.Shape{2, 3, 4}, backend)
	assert.Panics(t, func() { z.T() })
}

func TestCreationFunctions(t *testing.T) {
	backend := cpu.New()

	zeros := tensor.Zeros(tensor.Shape{2, 2}, backend)
	for _, v := range zeros.Data() {
		assert.Zero(t, v)
	}

	ones := tensor.Ones(tensor.Shape{2, 2}, backend)
	for _, v := range ones.Data() {
		assert.Equal(t, float32(1), v)
	}

	full := tensor.Full(tensor.Shape{3}, 7.5, backend)
	for _, v := range full.Data() {
		assert.Equal(t, float32(7.5), v)
	}

	uniform := tensor.Rand(tensor.Shape{100}, backend)
	for i, v := range uniform.Data() {
		if v < 0 || v >= 1 {
			t.Errorf("Rand element %d = %v, want in [0, 1)", i, v)
		}
	}
}

func TestChainedOps(t *testing.T) {
	backend := cpu.New()
	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)
	w, err := tensor.FromSlice([]float32{1, 0, 0, 1}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)

	// (x @ I) * 2 + 1
	y := x.MatMul(w).MulScalar(2).AddScalar(1)
	assert.Equal(t, []float32{3, 5, 7, 9}, y.Data())
}
