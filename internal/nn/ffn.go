package nn

import (
	"github.com/tempo-ml/tempo/internal/tensor"
)

// FeedForward implements the position-wise feed-forward network of a
// transformer layer.
//
// Architecture:
//
//	FFN(x) = Linear2(ReLU(Linear1(x)))
//
// Where:
//   - Linear1: [d_model → d_ff] (expansion)
//   - Linear2: [d_ff → d_model] (projection back)
//
// The same two affine maps are applied independently at every timestep.
type FeedForward[B tensor.Backend] struct {
	Linear1 *Linear[B] // [d_model → d_ff]
	Linear2 *Linear[B] // [d_ff → d_model]
	ReLU    *ReLU[B]
	backend B
}

// NewFeedForward creates a new position-wise feed-forward network.
func NewFeedForward[B tensor.Backend](dModel, dFF int, backend B) *FeedForward[B] {
	return &FeedForward[B]{
		Linear1: NewLinear(dModel, dFF, backend),
		Linear2: NewLinear(dFF, dModel, backend),
		ReLU:    NewReLU[B](),
		backend: backend,
	}
}

// Forward computes the FFN output.
//
// Shapes: [batch, seq, d_model] -> [batch, seq, d_model]
// (2D [batch, d_model] input is accepted as well).
func (f *FeedForward[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	x = f.Linear1.Forward(x)
	x = f.ReLU.Forward(x)
	return f.Linear2.Forward(x)
}

// Parameters returns all trainable parameters (Linear1 and Linear2).
func (f *FeedForward[B]) Parameters() []*Parameter[B] {
	params := make([]*Parameter[B], 0, 4)
	params = append(params, f.Linear1.Parameters()...)
	params = append(params, f.Linear2.Parameters()...)
	return params
}
