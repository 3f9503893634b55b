package nn

import (
	"fmt"

	"github.com/tempo-ml/tempo/internal/tensor"
)

// Encoder is one layer of the encoder stack.
//
// Architecture (post-norm, original Transformer):
//
//	x → self-MHA → dropout → + → LayerNorm → FFN → dropout → + → LayerNorm
//	         ↑_______________|                   ↑___________|
//	       (residual)                          (residual)
//
// The layer is shape-preserving: [batch, seq, d_model] → [batch, seq, d_model].
type Encoder[B tensor.Backend] struct {
	SelfAttention *MultiHeadAttention[B]
	FeedForward   *FeedForward[B]
	Norm1         *LayerNorm[B]
	Norm2         *LayerNorm[B]
	Dropout       *Dropout[B]

	mask    *tensor.Tensor[B] // attention restriction, nil for full attention
	backend B
}

// NewEncoder creates one encoder layer.
//
// Parameters:
//   - dModel: model width
//   - dimQ, dimV, numHeads: attention geometry (see MultiHeadAttention)
//   - dFF: feed-forward hidden width
//   - dropout: drop probability after each sub-block
//   - mask: optional additive attention mask shared by the layer, or nil
//   - backend: computation backend
func NewEncoder[B tensor.Backend](
	dModel, dimQ, dimV, numHeads, dFF int,
	dropout float32,
	mask *tensor.Tensor[B],
	backend B,
) *Encoder[B] {
	return &Encoder[B]{
		SelfAttention: NewMultiHeadAttention(dModel, dimQ, dimV, numHeads, backend),
		FeedForward:   NewFeedForward(dModel, dFF, backend),
		Norm1:         NewLayerNorm(dModel, 1e-5, backend),
		Norm2:         NewLayerNorm(dModel, 1e-5, backend),
		Dropout:       NewDropout[B](dropout),
		mask:          mask,
		backend:       backend,
	}
}

// Forward propagates the input through the layer.
//
// Input and output shape: [batch, seq, d_model].
func (e *Encoder[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	if len(x.Shape()) != 3 {
		panic(fmt.Sprintf("Encoder.Forward: expected 3D input [batch, seq, d_model], got shape %v", x.Shape()))
	}

	// Self-attention block.
	residual := x
	x = e.SelfAttention.Forward(x, x, x, e.mask)
	x = e.Dropout.Forward(x)
	x = e.Norm1.Forward(x.Add(residual))

	// Feed-forward block.
	residual = x
	x = e.FeedForward.Forward(x)
	x = e.Dropout.Forward(x)
	return e.Norm2.Forward(x.Add(residual))
}

// SetTraining switches dropout between training and evaluation mode.
func (e *Encoder[B]) SetTraining(training bool) {
	e.Dropout.SetTraining(training)
}

// Parameters returns all trainable parameters of the layer.
func (e *Encoder[B]) Parameters() []*Parameter[B] {
	params := make([]*Parameter[B], 0, 16)
	params = append(params, e.SelfAttention.Parameters()...)
	params = append(params, e.FeedForward.Parameters()...)
	params = append(params, e.Norm1.Parameters()...)
	params = append(params, e.Norm2.Parameters()...)
	return params
}
