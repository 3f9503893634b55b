package nn

import (
	"fmt"
	"math"

	"github.com/tempo-ml/tempo/internal/tensor"
)

// ScaledDotProductAttention computes attention using the scaled dot-product
// mechanism:
//
//	Attention(Q, K, V) = softmax(QK^T / sqrt(d_q)) * V
//
// Parameters:
//   - query: [batch, heads, seq_q, d_q]
//   - key:   [batch, heads, seq_k, d_q]
//   - value: [batch, heads, seq_k, d_v]
//   - mask: optional additive attention mask [1, 1, seq_q, seq_k] or nil
//     (-inf at masked positions)
//   - scale: scaling factor (0 for auto-compute as 1/sqrt(d_q))
//
// Returns the attended values [batch, heads, seq_q, d_v] and the attention
// weights [batch, heads, seq_q, seq_k].
func ScaledDotProductAttention[B tensor.Backend](
	query, key, value *tensor.Tensor[B],
	mask *tensor.Tensor[B],
	scale float32,
) (*tensor.Tensor[B], *tensor.Tensor[B]) {
	validateAttentionInputs(query, key, value)

	if scale == 0 {
		scale = float32(1.0 / math.Sqrt(float64(query.Shape()[3])))
	}

	// 1. Attention scores: Q @ K^T, with K transposed on its last two dims.
	kT := key.Transpose(0, 1, 3, 2)
	scores := query.BatchMatMul(kT)

	// 2. Scale
	scores = scores.MulScalar(scale)

	// 3. Apply mask (if provided)
	if mask != nil {
		scores = scores.Add(mask)
	}

	// 4. Softmax over keys
	weights := scores.Softmax(-1)

	// 5. Output: weights @ V
	output := weights.BatchMatMul(value)

	return output, weights
}

// validateAttentionInputs validates the input tensors for attention.
func validateAttentionInputs[B tensor.Backend](query, key, value *tensor.Tensor[B]) {
	if len(query.Shape()) != 4 || len(key.Shape()) != 4 || len(value.Shape()) != 4 {
		panic("ScaledDotProductAttention: query, key and value must be 4D [batch, heads, seq, dim]")
	}
	if query.Shape()[3] != key.Shape()[3] {
		panic(fmt.Sprintf("ScaledDotProductAttention: query and key must share the same head dim, got %d and %d",
			query.Shape()[3], key.Shape()[3]))
	}
	if key.Shape()[2] != value.Shape()[2] {
		panic(fmt.Sprintf("ScaledDotProductAttention: key and value must share the same seq length, got %d and %d",
			key.Shape()[2], value.Shape()[2]))
	}
}

// AttentionMode selects how attention is restricted to sub-ranges of the
// sequence inside encoder/decoder layers.
type AttentionMode int

// Recognized attention restriction modes.
const (
	// AttentionFull attends over the whole sequence (no mask).
	AttentionFull AttentionMode = iota
	// AttentionChunk restricts attention to block-diagonal chunks.
	AttentionChunk
	// AttentionWindow restricts attention to a sliding window around each
	// query position.
	AttentionWindow
)

// String returns the configuration name of the mode.
func (m AttentionMode) String() string {
	switch m {
	case AttentionFull:
		return "full"
	case AttentionChunk:
		return "chunk"
	case AttentionWindow:
		return "window"
	default:
		return "unknown"
	}
}

// ParseAttentionMode resolves a configuration name to an AttentionMode.
// An empty name selects AttentionChunk (the historical default); "none" and
// "full" select unrestricted attention. Any other name is a configuration
// error naming the offending value and the allowed set.
func ParseAttentionMode(name string) (AttentionMode, error) {
	switch name {
	case "", "chunk":
		return AttentionChunk, nil
	case "window":
		return AttentionWindow, nil
	case "none", "full":
		return AttentionFull, nil
	default:
		return AttentionFull, fmt.Errorf(
			`chunk mode %q not understood, must be one of "chunk", "window", "full" or "none"`, name)
	}
}

// ChunkMask builds an additive attention mask restricting attention to
// block-diagonal chunks: position i may attend to position j only when both
// fall in the same chunk of chunkSize consecutive timesteps.
//
// Shape: [1, 1, seqLen, seqLen], broadcastable over batch and heads.
func ChunkMask[B tensor.Backend](seqLen, chunkSize int, backend B) *tensor.Tensor[B] {
	if chunkSize <= 0 {
		panic(fmt.Sprintf("ChunkMask: chunkSize must be positive, got %d", chunkSize))
	}

	mask := tensor.Zeros(tensor.Shape{1, 1, seqLen, seqLen}, backend)
	negInf := float32(math.Inf(-1))
	data := mask.Data()

	for i := 0; i < seqLen; i++ {
		for j := 0; j < seqLen; j++ {
			if i/chunkSize != j/chunkSize {
				data[i*seqLen+j] = negInf
			}
		}
	}
	return mask
}

// WindowMask builds an additive attention mask restricting attention to a
// sliding window: position i may attend to position j only when
// |i - j| <= windowSize.
//
// Shape: [1, 1, seqLen, seqLen], broadcastable over batch and heads.
func WindowMask[B tensor.Backend](seqLen, windowSize int, backend B) *tensor.Tensor[B] {
	if windowSize <= 0 {
		panic(fmt.Sprintf("WindowMask: windowSize must be positive, got %d", windowSize))
	}

	mask := tensor.Zeros(tensor.Shape{1, 1, seqLen, seqLen}, backend)
	negInf := float32(math.Inf(-1))
	data := mask.Data()

	for i := 0; i < seqLen; i++ {
		for j := 0; j < seqLen; j++ {
			d := i - j
			if d < 0 {
				d = -d
			}
			if d > windowSize {
				data[i*seqLen+j] = negInf
			}
		}
	}
	return mask
}
