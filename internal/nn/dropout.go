package nn

import (
	"fmt"
	"math/rand"

	"github.com/tempo-ml/tempo/internal/tensor"
)

// Dropout randomly zeroes elements of the input with probability P during
// training, scaling the survivors by 1/(1-P) (inverted dropout) so that the
// expected activation is unchanged.
//
// In evaluation mode Dropout is the identity, which keeps inference
// deterministic.
type Dropout[B tensor.Backend] struct {
	P        float32
	training bool
	rng      *rand.Rand
}

// NewDropout creates a new Dropout module with drop probability p in [0, 1).
// The module starts in evaluation mode.
func NewDropout[B tensor.Backend](p float32) *Dropout[B] {
	if p < 0 || p >= 1 {
		panic(fmt.Sprintf("Dropout: probability must be in [0, 1), got %f", p))
	}
	return &Dropout[B]{
		P: p,
		//nolint:gosec // math/rand is fine for dropout masks
		rng: rand.New(rand.NewSource(rand.Int63())),
	}
}

// SetTraining switches the module between training and evaluation mode.
func (d *Dropout[B]) SetTraining(training bool) {
	d.training = training
}

// Training reports whether the module is in training mode.
func (d *Dropout[B]) Training() bool {
	return d.training
}

// Forward applies dropout in training mode and is the identity otherwise.
func (d *Dropout[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	if !d.training || d.P == 0 {
		return input
	}

	scale := 1.0 / (1.0 - d.P)
	out := input.Clone()
	data := out.Data()
	for i := range data {
		if d.rng.Float32() < d.P {
			data[i] = 0
		} else {
			data[i] *= scale
		}
	}
	return out
}

// Parameters returns nil (Dropout has no trainable parameters).
func (d *Dropout[B]) Parameters() []*Parameter[B] {
	return nil
}
