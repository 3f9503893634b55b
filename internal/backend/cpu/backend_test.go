package cpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempo-ml/tempo/internal/tensor"
)

// Compile-time check that CPUBackend implements tensor.Backend.
var _ tensor.Backend = (*CPUBackend)(nil)

func raw(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.RawFromSlice(data, shape)
	require.NoError(t, err)
	return r
}

func TestAddSameShape(t *testing.T) {
	backend := New()
	a := raw(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := raw(t, []float32{10, 20, 30, 40}, tensor.Shape{2, 2})

	out := backend.Add(a, b)
	assert.Equal(t, []float32{11, 22, 33, 44}, out.Data())
}

func TestAddBroadcastRow(t *testing.T) {
	backend := New()
	// [2, 3] + [3] broadcasts the row vector over both rows.
	a := raw(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := raw(t, []float32{10, 20, 30}, tensor.Shape{3})

	out := backend.Add(a, b)
	if !out.Shape().Equal(tensor.Shape{2, 3}) {
		t.Fatalf("expected shape [2 3], got %v", out.Shape())
	}
	assert.Equal(t, []float32{11, 22, 33, 14, 25, 36}, out.Data())
}

func TestAddBroadcastBatch(t *testing.T) {
	backend := New()
	// [2, 2, 2] + [2, 2]: the positional-encoding pattern, a table broadcast
	// over the batch dimension.
	a := raw(t, []float32{1, 1, 1, 1, 2, 2, 2, 2}, tensor.Shape{2, 2, 2})
	b := raw(t, []float32{10, 20, 30, 40}, tensor.Shape{2, 2})

	out := backend.Add(a, b)
	assert.Equal(t, []float32{11, 21, 31, 41, 12, 22, 32, 42}, out.Data())
}

func TestSubMul(t *testing.T) {
	backend := New()
	a := raw(t, []float32{5, 6}, tensor.Shape{2})
	b := raw(t, []float32{2, 3}, tensor.Shape{2})

	assert.Equal(t, []float32{3, 3}, backend.Sub(a, b).Data())
	assert.Equal(t, []float32{10, 18}, backend.Mul(a, b).Data())
}

func TestScalarOps(t *testing.T) {
	backend := New()
	a := raw(t, []float32{1, 2, 3}, tensor.Shape{3})

	assert.Equal(t, []float32{2, 4, 6}, backend.MulScalar(a, 2).Data())
	assert.Equal(t, []float32{1.5, 2.5, 3.5}, backend.AddScalar(a, 0.5).Data())
}

func TestMatMul(t *testing.T) {
	backend := New()
	// [2, 3] @ [3, 2]
	a := raw(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := raw(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})

	out := backend.MatMul(a, b)
	if !out.Shape().Equal(tensor.Shape{2, 2}) {
		t.Fatalf("expected shape [2 2], got %v", out.Shape())
	}
	assert.Equal(t, []float32{58, 64, 139, 154}, out.Data())
}

func TestMatMulShapeMismatch(t *testing.T) {
	backend := New()
	a := raw(t, make([]float32, 6), tensor.Shape{2, 3})
	b := raw(t, make([]float32, 8), tensor.Shape{4, 2})

	assert.Panics(t, func() { backend.MatMul(a, b) })
}

func TestBatchMatMul3D(t *testing.T) {
	backend := New()
	// Two identical [2, 2] matmuls stacked along the batch dimension.
	a := raw(t, []float32{1, 2, 3, 4, 1, 2, 3, 4}, tensor.Shape{2, 2, 2})
	b := raw(t, []float32{5, 6, 7, 8, 5, 6, 7, 8}, tensor.Shape{2, 2, 2})

	out := backend.BatchMatMul(a, b)
	if !out.Shape().Equal(tensor.Shape{2, 2, 2}) {
		t.Fatalf("expected shape [2 2 2], got %v", out.Shape())
	}
	assert.Equal(t, []float32{19, 22, 43, 50, 19, 22, 43, 50}, out.Data())
}

func TestBatchMatMul4D(t *testing.T) {
	backend := New()
	a := raw(t, make([]float32, 2*3*4*5), tensor.Shape{2, 3, 4, 5})
	b := raw(t, make([]float32, 2*3*5*6), tensor.Shape{2, 3, 5, 6})

	out := backend.BatchMatMul(a, b)
	if !out.Shape().Equal(tensor.Shape{2, 3, 4, 6}) {
		t.Fatalf("expected shape [2 3 4 6], got %v", out.Shape())
	}
}

func TestTranspose2D(t *testing.T) {
	backend := New()
	a := raw(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	out := backend.Transpose(a)
	if !out.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("expected shape [3 2], got %v", out.Shape())
	}
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, out.Data())
}

func TestTranspose4DHeadSplit(t *testing.T) {
	backend := New()
	// The attention head split: [batch, seq, heads, dim] -> [batch, heads, seq, dim].
	batch, seq, heads, dim := 1, 2, 2, 2
	data := make([]float32, batch*seq*heads*dim)
	for i := range data {
		data[i] = float32(i)
	}
	a := raw(t, data, tensor.Shape{batch, seq, heads, dim})

	out := backend.Transpose(a, 0, 2, 1, 3)
	if !out.Shape().Equal(tensor.Shape{batch, heads, seq, dim}) {
		t.Fatalf("expected shape [1 2 2 2], got %v", out.Shape())
	}
	// Element [0, h, s, d] must equal input [0, s, h, d].
	assert.Equal(t, []float32{0, 1, 4, 5, 2, 3, 6, 7}, out.Data())
}

func TestTransposeRoundTrip(t *testing.T) {
	backend := New()
	data := make([]float32, 24)
	for i := range data {
		data[i] = float32(i)
	}
	a := raw(t, data, tensor.Shape{2, 3, 4})

	back := backend.Transpose(backend.Transpose(a, 1, 0, 2), 1, 0, 2)
	assert.Equal(t, data, back.Data())
}

func TestReshape(t *testing.T) {
	backend := New()
	a := raw(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	out := backend.Reshape(a, tensor.Shape{3, 2})
	if !out.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("expected shape [3 2], got %v", out.Shape())
	}
	assert.Equal(t, a.Data(), out.Data())

	assert.Panics(t, func() { backend.Reshape(a, tensor.Shape{4, 2}) })
}

func TestSoftmaxLastDim(t *testing.T) {
	backend := New()
	a := raw(t, []float32{1, 2, 3, 1, 1, 1}, tensor.Shape{2, 3})

	out := backend.Softmax(a, -1)
	data := out.Data()

	// Rows sum to 1.
	for r := 0; r < 2; r++ {
		sum := data[r*3] + data[r*3+1] + data[r*3+2]
		assert.InDelta(t, 1.0, sum, 1e-6, "row %d", r)
	}
	// Uniform logits give uniform weights.
	assert.InDelta(t, 1.0/3.0, data[3], 1e-6)
	// Monotonicity in the logits.
	assert.Greater(t, data[2], data[1])
	assert.Greater(t, data[1], data[0])
}

func TestSoftmaxStableWithNegInf(t *testing.T) {
	backend := New()
	negInf := float32(math.Inf(-1))
	a := raw(t, []float32{1, negInf, 2, negInf}, tensor.Shape{2, 2})

	out := backend.Softmax(a, -1)
	data := out.Data()

	// Masked positions get exactly zero weight, the rest the full mass.
	assert.Equal(t, float32(1), data[0])
	assert.Equal(t, float32(0), data[1])
	assert.Equal(t, float32(1), data[2])
	assert.Equal(t, float32(0), data[3])
}

func TestSigmoidBounds(t *testing.T) {
	backend := New()
	a := raw(t, []float32{-100, -1, 0, 1, 100}, tensor.Shape{5})

	out := backend.Sigmoid(a).Data()
	for i, v := range out {
		if v <= 0 || v >= 1 {
			t.Errorf("sigmoid output %d = %v, want strictly inside (0, 1)", i, v)
		}
	}
	assert.InDelta(t, 0.5, out[2], 1e-6)
}

func TestReLU(t *testing.T) {
	backend := New()
	a := raw(t, []float32{-2, -0.5, 0, 0.5, 2}, tensor.Shape{5})

	assert.Equal(t, []float32{0, 0, 0, 0.5, 2}, backend.ReLU(a).Data())
}

func TestRsqrt(t *testing.T) {
	backend := New()
	a := raw(t, []float32{4, 16}, tensor.Shape{2})

	out := backend.Rsqrt(a).Data()
	assert.InDelta(t, 0.5, out[0], 1e-6)
	assert.InDelta(t, 0.25, out[1], 1e-6)
}

func TestMeanDim(t *testing.T) {
	backend := New()
	a := raw(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	// Keep the reduced dimension.
	kept := backend.MeanDim(a, -1, true)
	if !kept.Shape().Equal(tensor.Shape{2, 1}) {
		t.Fatalf("expected shape [2 1], got %v", kept.Shape())
	}
	assert.InDelta(t, 2.0, kept.Data()[0], 1e-6)
	assert.InDelta(t, 5.0, kept.Data()[1], 1e-6)

	// Drop it.
	dropped := backend.MeanDim(a, 0, false)
	if !dropped.Shape().Equal(tensor.Shape{3}) {
		t.Fatalf("expected shape [3], got %v", dropped.Shape())
	}
	assert.InDelta(t, 2.5, dropped.Data()[0], 1e-6)
}
