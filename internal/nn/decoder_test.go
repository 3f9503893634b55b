package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tempo-ml/tempo/internal/backend/cpu"
	"github.com/tempo-ml/tempo/internal/tensor"
)

func TestDecoderShapePreserving(t *testing.T) {
	backend := cpu.New()
	dec := NewDecoder(16, 4, 4, 2, 32, 0.1, nil, backend)

	state := tensor.Randn(tensor.Shape{2, 5, 16}, backend)
	memory := tensor.Randn(tensor.Shape{2, 5, 16}, backend)
	out := dec.Forward(state, memory)

	if !out.Shape().Equal(tensor.Shape{2, 5, 16}) {
		t.Errorf("expected output shape [2 5 16], got %v", out.Shape())
	}
}

func TestDecoderUsesMemory(t *testing.T) {
	backend := cpu.New()
	dec := NewDecoder(8, 4, 4, 2, 16, 0, nil, backend)

	state := tensor.Randn(tensor.Shape{1, 4, 8}, backend)
	memA := tensor.Randn(tensor.Shape{1, 4, 8}, backend)
	memB := tensor.Randn(tensor.Shape{1, 4, 8}, backend)

	outA := dec.Forward(state, memA)
	outB := dec.Forward(state, memB)

	// Cross-attention must propagate the memory into the output.
	assert.NotEqual(t, outA.Data(), outB.Data())
}

func TestDecoderDeterministicInEval(t *testing.T) {
	backend := cpu.New()
	dec := NewDecoder(8, 4, 4, 2, 16, 0.5, nil, backend)

	state := tensor.Randn(tensor.Shape{1, 4, 8}, backend)
	memory := tensor.Randn(tensor.Shape{1, 4, 8}, backend)

	first := dec.Forward(state, memory)
	second := dec.Forward(state, memory)

	assert.Equal(t, first.Data(), second.Data())
}

func TestDecoderRejectsNon3DInput(t *testing.T) {
	backend := cpu.New()
	dec := NewDecoder(8, 4, 4, 2, 16, 0, nil, backend)

	good := tensor.Randn(tensor.Shape{1, 4, 8}, backend)
	bad := tensor.Randn(tensor.Shape{4, 8}, backend)

	assert.Panics(t, func() { dec.Forward(bad, good) })
	assert.Panics(t, func() { dec.Forward(good, bad) })
}

func TestDecoderParameters(t *testing.T) {
	backend := cpu.New()
	dec := NewDecoder(8, 4, 4, 2, 16, 0, nil, backend)

	// 8 per attention module (two of them), 4 from the FFN, 2 per LayerNorm.
	params := dec.Parameters()
	if len(params) != 26 {
		t.Errorf("expected 26 parameters, got %d", len(params))
	}
}
