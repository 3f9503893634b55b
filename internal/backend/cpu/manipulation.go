package cpu

import (
	"fmt"

	"github.com/tempo-ml/tempo/internal/tensor"
)

// Reshape returns a tensor viewing the same data under a new shape.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if newShape.NumElements() != t.NumElements() {
		panic(fmt.Sprintf("reshape: cannot reshape %v (%d elements) to %v (%d elements)",
			t.Shape(), t.NumElements(), newShape, newShape.NumElements()))
	}
	return t.WithShape(newShape)
}

// Transpose permutes the tensor's axes into a fresh contiguous tensor.
// With no axes given, the dimension order is reversed.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	nDims := len(shape)

	if len(axes) == 0 {
		axes = make([]int, nDims)
		for i := range axes {
			axes[i] = nDims - 1 - i
		}
	}
	if len(axes) != nDims {
		panic(fmt.Sprintf("transpose: expected %d axes for shape %v, got %d", nDims, shape, len(axes)))
	}

	// Validate that axes is a permutation of [0, nDims).
	seen := make([]bool, nDims)
	for _, ax := range axes {
		if ax < 0 || ax >= nDims || seen[ax] {
			panic(fmt.Sprintf("transpose: invalid axes permutation %v for shape %v", axes, shape))
		}
		seen[ax] = true
	}

	outShape := make(tensor.Shape, nDims)
	for d, ax := range axes {
		outShape[d] = shape[ax]
	}

	result, err := tensor.NewRaw(outShape)
	if err != nil {
		panic(fmt.Sprintf("transpose: failed to create result tensor: %v", err))
	}

	// Source strides reordered to output dimension order: walking the output
	// row-major advances the input by srcStrides[d] along output dim d.
	inStrides := t.Strides()
	srcStrides := make([]int, nDims)
	for d, ax := range axes {
		srcStrides[d] = inStrides[ax]
	}

	src := t.Data()
	dst := result.Data()
	counters := make([]int, nDims)
	off := 0
	for i := range dst {
		dst[i] = src[off]
		for d := nDims - 1; d >= 0; d-- {
			counters[d]++
			off += srcStrides[d]
			if counters[d] < outShape[d] {
				break
			}
			counters[d] = 0
			off -= srcStrides[d] * outShape[d]
		}
	}
	return result
}
