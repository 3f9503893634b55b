// Package cpu implements the pure-Go CPU backend for the tensor substrate.
package cpu

import (
	"fmt"

	"github.com/tempo-ml/tempo/internal/tensor"
)

// CPUBackend implements tensor operations on CPU in pure Go.
type CPUBackend struct{}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return binaryOp("add", a, b, func(x, y float32) float32 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return binaryOp("sub", a, b, func(x, y float32) float32 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return binaryOp("mul", a, b, func(x, y float32) float32 { return x * y })
}

// MulScalar multiplies every element by a scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float32) *tensor.RawTensor {
	return unaryOp(x, func(v float32) float32 { return v * scalar })
}

// AddScalar adds a scalar to every element.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, scalar float32) *tensor.RawTensor {
	return unaryOp(x, func(v float32) float32 { return v + scalar })
}

// unaryOp applies an element-wise function into a fresh tensor.
func unaryOp(x *tensor.RawTensor, op func(float32) float32) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape())
	if err != nil {
		panic(fmt.Sprintf("cpu: failed to create result tensor: %v", err))
	}
	src := x.Data()
	dst := result.Data()
	for i, v := range src {
		dst[i] = op(v)
	}
	return result
}

// binaryOp applies an element-wise binary function with broadcasting.
func binaryOp(name string, a, b *tensor.RawTensor, op func(x, y float32) float32) *tensor.RawTensor {
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	result, err := tensor.NewRaw(outShape)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", name, err))
	}

	if !needsBroadcast {
		// Fast path: identical shapes, flat loop.
		aData := a.Data()
		bData := b.Data()
		out := result.Data()
		for i := range out {
			out[i] = op(aData[i], bData[i])
		}
		return result
	}

	broadcastBinary(result, a, b, outShape, op)
	return result
}

// broadcastBinary evaluates op over outShape, mapping each output element to
// its (possibly broadcast) source elements in a and b.
func broadcastBinary(out, a, b *tensor.RawTensor, outShape tensor.Shape, op func(x, y float32) float32) {
	aStrides := broadcastStrides(a.Shape(), a.Strides(), outShape)
	bStrides := broadcastStrides(b.Shape(), b.Strides(), outShape)

	nDims := len(outShape)
	counters := make([]int, nDims)
	aData := a.Data()
	bData := b.Data()
	outData := out.Data()

	offA, offB := 0, 0
	for i := range outData {
		outData[i] = op(aData[offA], bData[offB])

		// Advance the multi-dimensional counter (row-major order).
		for d := nDims - 1; d >= 0; d-- {
			counters[d]++
			offA += aStrides[d]
			offB += bStrides[d]
			if counters[d] < outShape[d] {
				break
			}
			counters[d] = 0
			offA -= aStrides[d] * outShape[d]
			offB -= bStrides[d] * outShape[d]
		}
	}
}

// broadcastStrides aligns a source shape's strides to the output shape,
// zeroing strides along broadcast (size-1 or missing) dimensions.
func broadcastStrides(srcShape tensor.Shape, srcStrides []int, outShape tensor.Shape) []int {
	nDims := len(outShape)
	strides := make([]int, nDims)
	offset := nDims - len(srcShape)
	for d := 0; d < nDims; d++ {
		srcIdx := d - offset
		if srcIdx < 0 || srcShape[srcIdx] == 1 {
			strides[d] = 0
		} else {
			strides[d] = srcStrides[srcIdx]
		}
	}
	return strides
}
