package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempo-ml/tempo/internal/backend/cpu"
	"github.com/tempo-ml/tempo/internal/tensor"
)

func TestLayerNormShape(t *testing.T) {
	backend := cpu.New()
	ln := NewLayerNorm(8, 1e-5, backend)

	input := tensor.Randn(tensor.Shape{2, 5, 8}, backend)
	output := ln.Forward(input)

	if !output.Shape().Equal(tensor.Shape{2, 5, 8}) {
		t.Errorf("expected output shape [2 5 8], got %v", output.Shape())
	}
}

func TestLayerNormNormalizes(t *testing.T) {
	backend := cpu.New()
	ln := NewLayerNorm(4, 1e-5, backend)

	input, err := tensor.FromSlice([]float32{1, 2, 3, 4, 10, 20, 30, 40}, tensor.Shape{2, 4}, backend)
	require.NoError(t, err)

	output := ln.Forward(input)
	data := output.Data()

	// With gamma=1, beta=0 each row has mean ~0 and variance ~1.
	for r := 0; r < 2; r++ {
		var mean float64
		for i := 0; i < 4; i++ {
			mean += float64(data[r*4+i])
		}
		mean /= 4
		assert.InDelta(t, 0.0, mean, 1e-5, "row %d mean", r)

		var variance float64
		for i := 0; i < 4; i++ {
			d := float64(data[r*4+i]) - mean
			variance += d * d
		}
		variance /= 4
		assert.InDelta(t, 1.0, variance, 1e-3, "row %d variance", r)
	}
}

func TestLayerNormGammaBeta(t *testing.T) {
	backend := cpu.New()
	ln := NewLayerNorm(2, 1e-5, backend)

	copy(ln.Gamma.Tensor().Data(), []float32{2, 2})
	copy(ln.Beta.Tensor().Data(), []float32{1, 1})

	input, err := tensor.FromSlice([]float32{-1, 1}, tensor.Shape{1, 2}, backend)
	require.NoError(t, err)

	output := ln.Forward(input).Data()
	// Normalized row is [-1, 1] (up to epsilon), then scaled and shifted.
	assert.InDelta(t, -1.0, output[0], 1e-2)
	assert.InDelta(t, 3.0, output[1], 1e-2)
}

func TestLayerNormConstantRow(t *testing.T) {
	backend := cpu.New()
	ln := NewLayerNorm(4, 1e-5, backend)

	input, err := tensor.FromSlice([]float32{3, 3, 3, 3}, tensor.Shape{1, 4}, backend)
	require.NoError(t, err)

	// Zero variance must not produce NaN or Inf thanks to epsilon.
	output := ln.Forward(input).Data()
	for i, v := range output {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Errorf("element %d = %v, want finite", i, v)
		}
	}
}
