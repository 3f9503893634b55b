package cpu

import (
	"fmt"
	"math"

	"github.com/tempo-ml/tempo/internal/tensor"
)

// Rsqrt computes the element-wise reciprocal square root.
func (cpu *CPUBackend) Rsqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return unaryOp(x, func(v float32) float32 {
		return float32(1.0 / math.Sqrt(float64(v)))
	})
}

// Sigmoid computes the element-wise logistic function 1 / (1 + exp(-x)).
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return unaryOp(x, func(v float32) float32 {
		return float32(1.0 / (1.0 + math.Exp(float64(-v))))
	})
}

// ReLU computes the element-wise rectifier max(0, x).
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return unaryOp(x, func(v float32) float32 {
		if v > 0 {
			return v
		}
		return 0
	})
}

// Softmax applies softmax along the given dimension (negative dims count
// from the end). Uses the max-subtraction trick for numerical stability.
func (cpu *CPUBackend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	dim = normalizeDim(dim, len(shape), "softmax")

	outer, size, inner := splitDims(shape, dim)

	result, err := tensor.NewRaw(shape)
	if err != nil {
		panic(fmt.Sprintf("softmax: failed to create result tensor: %v", err))
	}

	src := x.Data()
	dst := result.Data()
	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			base := o*size*inner + in

			maxVal := src[base]
			for s := 1; s < size; s++ {
				if v := src[base+s*inner]; v > maxVal {
					maxVal = v
				}
			}

			sum := float32(0)
			for s := 0; s < size; s++ {
				e := float32(math.Exp(float64(src[base+s*inner] - maxVal)))
				dst[base+s*inner] = e
				sum += e
			}

			for s := 0; s < size; s++ {
				dst[base+s*inner] /= sum
			}
		}
	}
	return result
}

// MeanDim computes the mean along a dimension. With keepDim the reduced
// dimension is retained with size 1, otherwise it is dropped.
func (cpu *CPUBackend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	dim = normalizeDim(dim, len(shape), "meandim")

	outer, size, inner := splitDims(shape, dim)

	outShape := make(tensor.Shape, 0, len(shape))
	for d, s := range shape {
		switch {
		case d != dim:
			outShape = append(outShape, s)
		case keepDim:
			outShape = append(outShape, 1)
		}
	}
	if len(outShape) == 0 {
		outShape = tensor.Shape{1}
	}

	result, err := tensor.NewRaw(outShape)
	if err != nil {
		panic(fmt.Sprintf("meandim: failed to create result tensor: %v", err))
	}

	src := x.Data()
	dst := result.Data()
	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			base := o*size*inner + in
			sum := float32(0)
			for s := 0; s < size; s++ {
				sum += src[base+s*inner]
			}
			dst[o*inner+in] = sum / float32(size)
		}
	}
	return result
}

// normalizeDim resolves negative dimension indices and bounds-checks.
func normalizeDim(dim, nDims int, op string) int {
	if dim < 0 {
		dim += nDims
	}
	if dim < 0 || dim >= nDims {
		panic(fmt.Sprintf("%s: dimension %d out of range for %d-dimensional tensor", op, dim, nDims))
	}
	return dim
}

// splitDims factors a shape around dim into (outer, size, inner) extents.
func splitDims(shape tensor.Shape, dim int) (outer, size, inner int) {
	outer, size, inner = 1, shape[dim], 1
	for d := 0; d < dim; d++ {
		outer *= shape[d]
	}
	for d := dim + 1; d < len(shape); d++ {
		inner *= shape[d]
	}
	return outer, size, inner
}
