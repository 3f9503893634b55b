package cpu

import (
	"fmt"

	"github.com/tempo-ml/tempo/internal/tensor"
)

// MatMul performs 2D matrix multiplication: [M, K] @ [K, N] -> [M, N].
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()

	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D tensors, got %v and %v", aShape, bShape))
	}
	if aShape[1] != bShape[0] {
		panic(fmt.Sprintf("matmul: inner dimensions mismatch: %v @ %v", aShape, bShape))
	}

	m, k, n := aShape[0], aShape[1], bShape[1]
	result, err := tensor.NewRaw(tensor.Shape{m, n})
	if err != nil {
		panic(fmt.Sprintf("matmul: failed to create result tensor: %v", err))
	}

	matmul2D(result.Data(), a.Data(), b.Data(), m, k, n)
	return result
}

// BatchMatMul performs batched matrix multiplication for 3D/4D tensors.
// For 3D: [B, M, K] @ [B, K, N] -> [B, M, N]
// For 4D: [B, H, M, K] @ [B, H, K, N] -> [B, H, M, N]
func (cpu *CPUBackend) BatchMatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()

	if len(aShape) != len(bShape) || (len(aShape) != 3 && len(aShape) != 4) {
		panic(fmt.Sprintf("batchmatmul: expected matching 3D or 4D tensors, got %v and %v", aShape, bShape))
	}

	// Leading (batch) dimensions must match exactly.
	nBatchDims := len(aShape) - 2
	batch := 1
	for d := 0; d < nBatchDims; d++ {
		if aShape[d] != bShape[d] {
			panic(fmt.Sprintf("batchmatmul: batch dimensions mismatch: %v vs %v", aShape, bShape))
		}
		batch *= aShape[d]
	}

	m, k := aShape[nBatchDims], aShape[nBatchDims+1]
	kB, n := bShape[nBatchDims], bShape[nBatchDims+1]
	if k != kB {
		panic(fmt.Sprintf("batchmatmul: inner dimensions mismatch: %v @ %v", aShape, bShape))
	}

	outShape := aShape.Clone()
	outShape[len(outShape)-1] = n
	result, err := tensor.NewRaw(outShape)
	if err != nil {
		panic(fmt.Sprintf("batchmatmul: failed to create result tensor: %v", err))
	}

	aData := a.Data()
	bData := b.Data()
	outData := result.Data()
	for i := 0; i < batch; i++ {
		matmul2D(
			outData[i*m*n:(i+1)*m*n],
			aData[i*m*k:(i+1)*m*k],
			bData[i*k*n:(i+1)*k*n],
			m, k, n,
		)
	}
	return result
}

// matmul2D computes out = a @ b for row-major buffers.
// The i-k-j loop order keeps the inner loop streaming over contiguous rows.
func matmul2D(out, a, b []float32, m, k, n int) {
	for i := 0; i < m; i++ {
		outRow := out[i*n : (i+1)*n]
		aRow := a[i*k : (i+1)*k]
		for kk := 0; kk < k; kk++ {
			av := aRow[kk]
			if av == 0 {
				continue
			}
			bRow := b[kk*n : (kk+1)*n]
			for j := range outRow {
				outRow[j] += av * bRow[j]
			}
		}
	}
}
