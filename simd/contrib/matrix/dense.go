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
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/tatami-inc/test-simple-simd-perf/simd"
)

// Dense is a dense row-major matrix. Row i occupies
// values[i*ncol : (i+1)*ncol]. A Dense is immutable after construction and
// safe for concurrent reads.
type Dense[T simd.Floats] struct {
	nrow, ncol int
	values     []T
}

// NewDense wraps values as an nrow x ncol row-major matrix. The matrix takes
// ownership of values; callers must not modify it afterwards.
func NewDense[T simd.Floats](nrow, ncol int, values []T) (*Dense[T], error) {
	if nrow < 0 || ncol < 0 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("matrix: negative dimensions %dx%d", nrow, ncol))
	}
	if ncol != 0 && nrow > len(values)/ncol || len(values) != nrow*ncol {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("matrix: %d values do not fill a %dx%d matrix", len(values), nrow, ncol))
	}
	return &Dense[T]{nrow: nrow, ncol: ncol, values: values}, nil
}

// NRow returns the number of rows.
func (m *Dense[T]) NRow() int { return m.nrow }

// NCol returns the number of columns.
func (m *Dense[T]) NCol() int { return m.ncol }

// Row returns a view of row i in the backing storage. The view's capacity is
// clipped to the row so appends cannot spill into the next row.
func (m *Dense[T]) Row(i int) []T {
	off := i * m.ncol
	return m.values[off : off+m.ncol : off+m.ncol]
}

// DenseRow returns an extractor over full rows.
func (m *Dense[T]) DenseRow(mode FetchMode) Extractor[T] {
	return &denseRowExtractor[T]{m: m, mode: mode, length: m.ncol}
}

// DenseRowBlock returns an extractor over the column block
// [start, start+length) of each row.
func (m *Dense[T]) DenseRowBlock(mode FetchMode, start, length int) (Extractor[T], error) {
	if start < 0 || length < 0 || start > m.ncol-length {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("matrix: block [%d, %d+%d) out of range for %d columns", start, start, length, m.ncol))
	}
	return &denseRowExtractor[T]{m: m, mode: mode, start: start, length: length}, nil
}

type denseRowExtractor[T simd.Floats] struct {
	m      *Dense[T]
	mode   FetchMode
	start  int
	length int
}

func (e *denseRowExtractor[T]) Fetch(i int, dst []T) []T {
	if i < 0 || i >= e.m.nrow {
		panic(fmt.Sprintf("matrix: row %d out of range [0, %d)", i, e.m.nrow))
	}
	off := i*e.m.ncol + e.start
	row := e.m.values[off : off+e.length : off+e.length]
	if e.mode == Reference {
		return row
	}
	dst = dst[:e.length]
	copy(dst, row)
	return dst
}

func (e *denseRowExtractor[T]) Len() int { return e.length }

func (e *denseRowExtractor[T]) Mode() FetchMode { return e.mode }

var (
	_ Matrix[float32] = (*Dense[float32])(nil)
	_ Matrix[float64] = (*Dense[float64])(nil)
)
