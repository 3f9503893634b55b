package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tempo-ml/tempo/internal/backend/cpu"
	"github.com/tempo-ml/tempo/internal/tensor"
)

func TestEncoderShapePreserving(t *testing.T) {
	backend := cpu.New()
	enc := NewEncoder(16, 4, 4, 2, 32, 0.1, nil, backend)

	x := tensor.Randn(tensor.Shape{2, 5, 16}, backend)
	out := enc.Forward(x)

	if !out.Shape().Equal(tensor.Shape{2, 5, 16}) {
		t.Errorf("expected output shape [2 5 16], got %v", out.Shape())
	}
}

func TestEncoderDeterministicInEval(t *testing.T) {
	backend := cpu.New()
	enc := NewEncoder(8, 4, 4, 2, 16, 0.5, nil, backend)

	x := tensor.Randn(tensor.Shape{1, 4, 8}, backend)
	first := enc.Forward(x)
	second := enc.Forward(x)

	assert.Equal(t, first.Data(), second.Data())
}

func TestEncoderTrainingPerturbsOutput(t *testing.T) {
	backend := cpu.New()
	enc := NewEncoder(8, 4, 4, 2, 16, 0.5, nil, backend)
	enc.SetTraining(true)

	x := tensor.Randn(tensor.Shape{1, 4, 8}, backend)
	first := enc.Forward(x)
	second := enc.Forward(x)

	// With p=0.5 over two sub-blocks the dropout masks virtually never agree.
	assert.NotEqual(t, first.Data(), second.Data())
}

func TestEncoderRejectsNon3DInput(t *testing.T) {
	backend := cpu.New()
	enc := NewEncoder(8, 4, 4, 2, 16, 0, nil, backend)

	x := tensor.Randn(tensor.Shape{4, 8}, backend)
	assert.Panics(t, func() { enc.Forward(x) })
}

func TestEncoderParameters(t *testing.T) {
	backend := cpu.New()
	enc := NewEncoder(8, 4, 4, 2, 16, 0, nil, backend)

	// 8 from self-attention, 4 from the FFN, 2 per LayerNorm.
	params := enc.Parameters()
	if len(params) != 16 {
		t.Errorf("expected 16 parameters, got %d", len(params))
	}
}
