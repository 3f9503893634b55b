package nn

import (
	"fmt"

	"github.com/tempo-ml/tempo/internal/tensor"
)

// Decoder is one layer of the decoder stack.
//
// Each layer consumes the running decoding state and the (fixed) encoder
// memory, and produces an updated decoding state of the same shape:
//
//	state → self-MHA → dropout → + → LayerNorm
//	      → cross-MHA(state, memory, memory) → dropout → + → LayerNorm
//	      → FFN → dropout → + → LayerNorm
//
// All residual additions use the block input (post-norm).
type Decoder[B tensor.Backend] struct {
	SelfAttention  *MultiHeadAttention[B]
	CrossAttention *MultiHeadAttention[B]
	FeedForward    *FeedForward[B]
	Norm1          *LayerNorm[B]
	Norm2          *LayerNorm[B]
	Norm3          *LayerNorm[B]
	Dropout        *Dropout[B]

	mask    *tensor.Tensor[B] // attention restriction, nil for full attention
	backend B
}

// NewDecoder creates one decoder layer. Parameters mirror NewEncoder.
func NewDecoder[B tensor.Backend](
	dModel, dimQ, dimV, numHeads, dFF int,
	dropout float32,
	mask *tensor.Tensor[B],
	backend B,
) *Decoder[B] {
	return &Decoder[B]{
		SelfAttention:  NewMultiHeadAttention(dModel, dimQ, dimV, numHeads, backend),
		CrossAttention: NewMultiHeadAttention(dModel, dimQ, dimV, numHeads, backend),
		FeedForward:    NewFeedForward(dModel, dFF, backend),
		Norm1:          NewLayerNorm(dModel, 1e-5, backend),
		Norm2:          NewLayerNorm(dModel, 1e-5, backend),
		Norm3:          NewLayerNorm(dModel, 1e-5, backend),
		Dropout:        NewDropout[B](dropout),
		mask:           mask,
		backend:        backend,
	}
}

// Forward propagates the decoding state through the layer.
//
// Args:
//   - state: running decoding state [batch, seq, d_model]
//   - memory: final encoder output [batch, seq, d_model], reused unchanged
//     by every decoder layer
//
// Returns the updated decoding state [batch, seq, d_model].
func (d *Decoder[B]) Forward(state, memory *tensor.Tensor[B]) *tensor.Tensor[B] {
	if len(state.Shape()) != 3 || len(memory.Shape()) != 3 {
		panic(fmt.Sprintf("Decoder.Forward: expected 3D state and memory, got %v and %v",
			state.Shape(), memory.Shape()))
	}

	// Self-attention block.
	residual := state
	x := d.SelfAttention.Forward(state, state, state, d.mask)
	x = d.Dropout.Forward(x)
	x = d.Norm1.Forward(x.Add(residual))

	// Cross-attention block: queries from the state, keys/values from the
	// encoder memory.
	residual = x
	x = d.CrossAttention.Forward(x, memory, memory, d.mask)
	x = d.Dropout.Forward(x)
	x = d.Norm2.Forward(x.Add(residual))

	// Feed-forward block.
	residual = x
	x = d.FeedForward.Forward(x)
	x = d.Dropout.Forward(x)
	return d.Norm3.Forward(x.Add(residual))
}

// SetTraining switches dropout between training and evaluation mode.
func (d *Decoder[B]) SetTraining(training bool) {
	d.Dropout.SetTraining(training)
}

// Parameters returns all trainable parameters of the layer.
func (d *Decoder[B]) Parameters() []*Parameter[B] {
	params := make([]*Parameter[B], 0, 26)
	params = append(params, d.SelfAttention.Parameters()...)
	params = append(params, d.CrossAttention.Parameters()...)
	params = append(params, d.FeedForward.Parameters()...)
	params = append(params, d.Norm1.Parameters()...)
	params = append(params, d.Norm2.Parameters()...)
	params = append(params, d.Norm3.Parameters()...)
	return params
}
