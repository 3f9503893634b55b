package nn

import (
	"github.com/tempo-ml/tempo/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// Parameters are the tensors an external training procedure is allowed to
// mutate. The forward pass itself only reads them. Fixed buffers (such as a
// positional encoding table) are deliberately not Parameters so that a
// trainer walking Parameters() never touches them.
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[B]
}

// NewParameter creates a new trainable parameter.
//
// The parameter tensor should be initialized before creating the Parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[B]) *Parameter[B] {
	return &Parameter[B]{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[B] {
	return p.tensor
}
