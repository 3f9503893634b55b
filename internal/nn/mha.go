package nn

import (
	"math"

	"github.com/tempo-ml/tempo/internal/tensor"
)

// MultiHeadAttention implements multi-head attention with independent query
// and value widths:
//
//	MHA(Q, K, V) = Concat(head_1, ..., head_h) * W_O
//	head_i = SDPA(Q*W_Q_i, K*W_K_i, V*W_V_i)
//
// Queries and keys are projected to dimQ per head, values to dimV per head,
// so the projection matrices have shapes:
//
//	W_Q, W_K: [d_model, q*h]
//	W_V:      [d_model, v*h]
//	W_O:      [v*h, d_model]
//
// An optional additive mask restricts which key positions each query may
// attend to (see ChunkMask and WindowMask).
type MultiHeadAttention[B tensor.Backend] struct {
	WQ       *Linear[B] // query projection [d_model → q*h]
	WK       *Linear[B] // key projection [d_model → q*h]
	WV       *Linear[B] // value projection [d_model → v*h]
	WO       *Linear[B] // output projection [v*h → d_model]
	NumHeads int
	DimQ     int // per-head query/key width
	DimV     int // per-head value width
	DModel   int
	backend  B
}

// NewMultiHeadAttention creates a new multi-head attention module.
//
// Parameters:
//   - dModel: model width of the layer inputs and outputs
//   - dimQ: per-head query/key width
//   - dimV: per-head value width
//   - numHeads: number of attention heads
//   - backend: computation backend
func NewMultiHeadAttention[B tensor.Backend](
	dModel, dimQ, dimV, numHeads int,
	backend B,
) *MultiHeadAttention[B] {
	return &MultiHeadAttention[B]{
		WQ:       NewLinear(dModel, dimQ*numHeads, backend),
		WK:       NewLinear(dModel, dimQ*numHeads, backend),
		WV:       NewLinear(dModel, dimV*numHeads, backend),
		WO:       NewLinear(dimV*numHeads, dModel, backend),
		NumHeads: numHeads,
		DimQ:     dimQ,
		DimV:     dimV,
		DModel:   dModel,
		backend:  backend,
	}
}

// Forward computes multi-head attention.
//
// Args:
//   - query: [batch, seq_q, d_model]
//   - key:   [batch, seq_k, d_model]
//   - value: [batch, seq_k, d_model]
//   - mask: optional additive attention mask [1, 1, seq_q, seq_k] or nil
//
// Returns [batch, seq_q, d_model].
//
// For self-attention, pass the same tensor for query, key, and value.
// For cross-attention (decoder attending over encoder memory), query differs
// from key/value.
func (m *MultiHeadAttention[B]) Forward(
	query, key, value *tensor.Tensor[B],
	mask *tensor.Tensor[B],
) *tensor.Tensor[B] {
	batch := query.Shape()[0]
	seqQ := query.Shape()[1]
	seqK := key.Shape()[1]

	// 1. Project and split heads: [batch, seq, h*dim] -> [batch, h, seq, dim]
	q := splitHeads(m.WQ.Forward(query), batch, seqQ, m.NumHeads, m.DimQ)
	k := splitHeads(m.WK.Forward(key), batch, seqK, m.NumHeads, m.DimQ)
	v := splitHeads(m.WV.Forward(value), batch, seqK, m.NumHeads, m.DimV)

	// 2. Scaled dot-product attention per head, scores scaled by 1/sqrt(q).
	scale := float32(1.0 / math.Sqrt(float64(m.DimQ)))
	attnOut, _ := ScaledDotProductAttention(q, k, v, mask, scale)

	// 3. Merge heads: [batch, h, seq_q, v] -> [batch, seq_q, h*v]
	attnOut = attnOut.Transpose(0, 2, 1, 3).Reshape(batch, seqQ, m.NumHeads*m.DimV)

	// 4. Output projection back to d_model.
	return m.WO.Forward(attnOut)
}

// splitHeads reshapes a projected tensor [batch, seq, h*dim] into the
// per-head layout [batch, h, seq, dim].
func splitHeads[B tensor.Backend](t *tensor.Tensor[B], batch, seq, heads, dim int) *tensor.Tensor[B] {
	return t.Reshape(batch, seq, heads, dim).Transpose(0, 2, 1, 3)
}

// Parameters returns all trainable parameters (WQ, WK, WV, WO weights and biases).
func (m *MultiHeadAttention[B]) Parameters() []*Parameter[B] {
	params := make([]*Parameter[B], 0, 8)
	params = append(params, m.WQ.Parameters()...)
	params = append(params, m.WK.Parameters()...)
	params = append(params, m.WV.Parameters()...)
	params = append(params, m.WO.Parameters()...)
	return params
}
