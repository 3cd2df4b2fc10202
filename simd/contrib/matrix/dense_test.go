// Copyright 2025 simdperf Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package matrix

import (
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatami-inc/test-simple-simd-perf/simd"
)

func sequence(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = float64(i)
	}
	return s
}

func TestNewDense(t *testing.T) {
	m, err := NewDense(3, 4, sequence(12))
	require.NoError(t, err)
	assert.Equal(t, 3, m.NRow())
	assert.Equal(t, 4, m.NCol())
	assert.Equal(t, []float64{4, 5, 6, 7}, m.Row(1))
	assert.Equal(t, 4, cap(m.Row(1)), "row view must not extend into the next row")
}

func TestNewDenseErrors(t *testing.T) {
	tests := []struct {
		name       string
		nrow, ncol int
		n          int
	}{
		{"too few values", 3, 4, 11},
		{"too many values", 3, 4, 13},
		{"negative rows", -1, 4, 0},
		{"negative cols", 2, -3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDense(tt.nrow, tt.ncol, sequence(tt.n))
			require.Error(t, err)
			assert.True(t, errors.Is(errors.Invalid, err))
		})
	}
}

func TestEmptyMatrix(t *testing.T) {
	m, err := NewDense[float32](0, 5, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, m.NRow())

	m, err = NewDense[float32](5, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, m.DenseRow(Copy).Fetch(4, nil))
}

func TestFetchReference(t *testing.T) {
	m, err := NewDense(3, 4, sequence(12))
	require.NoError(t, err)

	ext := m.DenseRow(Reference)
	assert.Equal(t, Reference, ext.Mode())
	assert.Equal(t, 4, ext.Len())

	dst := make([]float64, 4)
	row := ext.Fetch(2, dst)
	assert.Equal(t, []float64{8, 9, 10, 11}, row)
	assert.Equal(t, []float64{0, 0, 0, 0}, dst, "reference fetch must not write dst")
	assert.Same(t, &m.values[8], &row[0], "reference fetch must point into storage")
}

func TestFetchCopy(t *testing.T) {
	m, err := NewDense(3, 4, sequence(12))
	require.NoError(t, err)

	buf, err := simd.NewBuffer[float64](4, simd.DefaultAlignment)
	require.NoError(t, err)
	dst := buf.Acquire(4)

	ext := m.DenseRow(Copy)
	for i := 0; i < m.NRow(); i++ {
		row := ext.Fetch(i, dst)
		assert.Equal(t, m.Row(i), row)
		assert.Same(t, &dst[0], &row[0], "copy fetch must return the destination buffer")
		assert.True(t, simd.IsAligned(row, simd.DefaultAlignment))
	}

	// Writing the copy must leave the matrix untouched.
	row := ext.Fetch(0, dst)
	row[0] = 100
	assert.Equal(t, 0.0, m.Row(0)[0])
}

func TestFetchCopyLargerBuffer(t *testing.T) {
	m, err := NewDense(2, 3, sequence(6))
	require.NoError(t, err)
	dst := make([]float64, 10)
	row := m.DenseRow(Copy).Fetch(1, dst)
	assert.Len(t, row, 3)
	assert.Equal(t, []float64{3, 4, 5}, row)
}

func TestFetchPreconditions(t *testing.T) {
	m, err := NewDense(2, 3, sequence(6))
	require.NoError(t, err)
	for _, mode := range []FetchMode{Copy, Reference} {
		ext := m.DenseRow(mode)
		assert.Panics(t, func() { ext.Fetch(2, make([]float64, 3)) })
		assert.Panics(t, func() { ext.Fetch(-1, make([]float64, 3)) })
	}
	assert.Panics(t, func() { m.DenseRow(Copy).Fetch(0, make([]float64, 2)) }, "short destination")
}

func TestDenseRowBlock(t *testing.T) {
	m, err := NewDense(3, 5, sequence(15))
	require.NoError(t, err)

	for _, mode := range []FetchMode{Copy, Reference} {
		ext, err := m.DenseRowBlock(mode, 1, 3)
		require.NoError(t, err)
		assert.Equal(t, 3, ext.Len())
		dst := make([]float64, 3)
		assert.Equal(t, []float64{6, 7, 8}, ext.Fetch(1, dst), mode.String())
		assert.Equal(t, []float64{11, 12, 13}, ext.Fetch(2, dst), mode.String())
	}

	for _, block := range [][2]int{{-1, 2}, {0, 6}, {4, 2}, {2, -1}} {
		_, err := m.DenseRowBlock(Copy, block[0], block[1])
		assert.True(t, errors.Is(errors.Invalid, err), "block %v", block)
	}
	ext, err := m.DenseRowBlock(Reference, 5, 0)
	require.NoError(t, err)
	assert.Empty(t, ext.Fetch(0, nil))
}

func TestParseFetchMode(t *testing.T) {
	for _, mode := range []FetchMode{Copy, Reference} {
		got, err := ParseFetchMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, got)
	}
	_, err := ParseFetchMode("borrow")
	assert.True(t, errors.Is(errors.Invalid, err))
	assert.Equal(t, "FetchMode(9)", FetchMode(9).String())
}

func BenchmarkFetch(b *testing.B) {
	const nrow, ncol = 100, 10000
	m, err := NewDense(nrow, ncol, sequence(nrow*ncol))
	if err != nil {
		b.Fatal(err)
	}
	dst := make([]float64, ncol)
	for _, mode := range []FetchMode{Copy, Reference} {
		ext := m.DenseRow(mode)
		b.Run(mode.String(), func(b *testing.B) {
			b.SetBytes(ncol * 8)
			for i := 0; i < b.N; i++ {
				ext.Fetch(i%nrow, dst)
			}
		})
	}
}
