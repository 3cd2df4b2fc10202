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

// Package matrix provides the row-access contract the benchmark traverses:
// a dense row-major matrix and per-worker extractors that hand out one row
// at a time.
//
// An Extractor either returns a view into the matrix storage (Reference) or
// copies the row into a caller-supplied buffer (Copy). Views into storage
// carry no alignment guarantee; a copy lands wherever the caller's buffer
// is, typically an aligned scratch buffer from simd.NewBuffer.
//
// Usage:
//
//	m, _ := matrix.NewDense(nrow, ncol, values)
//	ext := m.DenseRow(matrix.Copy)
//	for i := start; i < end; i++ {
//	    row := ext.Fetch(i, buf)
//	    ...
//	}
package matrix

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/tatami-inc/test-simple-simd-perf/simd"
)

// FetchMode selects how an Extractor returns a row.
type FetchMode int

const (
	// Copy copies the row into the destination buffer and returns it.
	Copy FetchMode = iota
	// Reference returns a view into the matrix storage without copying.
	Reference
)

// String returns "copy" or "reference".
func (m FetchMode) String() string {
	switch m {
	case Copy:
		return "copy"
	case Reference:
		return "reference"
	default:
		return fmt.Sprintf("FetchMode(%d)", int(m))
	}
}

// ParseFetchMode parses "copy" or "reference".
func ParseFetchMode(s string) (FetchMode, error) {
	switch s {
	case "copy":
		return Copy, nil
	case "reference", "ref":
		return Reference, nil
	}
	return 0, errors.E(errors.Invalid, fmt.Sprintf("matrix: unknown fetch mode %q", s))
}

// Matrix is a read-only matrix whose rows can be extracted.
type Matrix[T simd.Floats] interface {
	// NRow returns the number of rows.
	NRow() int
	// NCol returns the number of columns.
	NCol() int
	// DenseRow returns an extractor over full rows.
	DenseRow(mode FetchMode) Extractor[T]
	// DenseRowBlock returns an extractor over columns [start, start+length)
	// of each row.
	DenseRowBlock(mode FetchMode, start, length int) (Extractor[T], error)
}

// Extractor fetches rows from one matrix. Extractors are cheap, hold no
// row data of their own and must not be shared between goroutines.
type Extractor[T simd.Floats] interface {
	// Fetch returns the elements of row i. In Copy mode they are copied
	// into dst, which must hold at least Len() elements, and dst[:Len()]
	// is returned. In Reference mode dst is ignored.
	//
	// i must be in [0, NRow()); violations panic.
	Fetch(i int, dst []T) []T
	// Len returns the number of elements Fetch returns.
	Len() int
	// Mode returns the fetch mode.
	Mode() FetchMode
}
