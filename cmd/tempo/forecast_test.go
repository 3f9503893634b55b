package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempo-ml/tempo/backend/cpu"
	"github.com/tempo-ml/tempo/tensor"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadWindows(t *testing.T) {
	backend := cpu.New()
	path := writeCSV(t, "1,2\n3,4\n5,6\n7,8\n")

	// 4 rows of 2 features, windows of 2 timesteps -> 2 windows.
	input, batch, err := readWindows(path, 2, 2, backend)
	require.NoError(t, err)

	assert.Equal(t, 2, batch)
	require.True(t, input.Shape().Equal(tensor.Shape{2, 2, 2}))
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, input.Data())
}

func TestReadWindowsRowCountMismatch(t *testing.T) {
	backend := cpu.New()
	path := writeCSV(t, "1,2\n3,4\n5,6\n")

	_, _, err := readWindows(path, 2, 2, backend)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple of seq_len")
}

func TestReadWindowsColumnMismatch(t *testing.T) {
	backend := cpu.New()
	path := writeCSV(t, "1,2,3\n4,5,6\n")

	_, _, err := readWindows(path, 2, 2, backend)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "columns")
}

func TestReadWindowsBadNumber(t *testing.T) {
	backend := cpu.New()
	path := writeCSV(t, "1,x\n3,4\n")

	_, _, err := readWindows(path, 2, 2, backend)
	require.Error(t, err)
}

func TestWriteWindowsRoundTrip(t *testing.T) {
	backend := cpu.New()
	out, err := tensor.FromSlice([]float32{0.25, 0.5, 0.75, 0.125}, tensor.Shape{2, 2, 1}, backend)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, writeWindows(path, out))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0.25\n0.5\n0.75\n0.125\n", string(got))
}
