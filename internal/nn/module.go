// Package nn implements the neural network modules of the Tempo framework:
// linear layers, activations, dropout, layer normalization, multi-head
// attention with chunk/window masking, encoder/decoder layers, positional
// encodings and the sequence-to-sequence Transformer that composes them.
package nn

import (
	"github.com/tempo-ml/tempo/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Every NN module must implement:
//   - Forward: compute output from input
//   - Parameters: return all trainable parameters
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor[B]) *tensor.Tensor[B]

	// Parameters returns all trainable parameters of this module.
	//
	// This includes weights, biases, and any nested module parameters.
	// Returns an empty slice for modules without trainable parameters.
	Parameters() []*Parameter[B]
}
