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

// Package simd holds the low-level pieces shared by the benchmark kernels:
// the element type constraint, runtime detection of the SIMD instruction set,
// aligned scratch memory and batch/tail arithmetic.
//
// Basic usage:
//
//	import "github.com/tatami-inc/test-simple-simd-perf/simd"
//
//	buf, err := simd.NewBuffer[float64](ncol, simd.DefaultAlignment)
//	row := buf.Acquire(ncol) // &row[0] is 256-byte aligned
//	width := simd.BatchWidth[float64](simd.DefaultAlignment)
package simd

import "unsafe"

// Floats is a constraint for the element types a benchmark can run with.
type Floats interface {
	~float32 | ~float64
}

// SizeOf returns the size in bytes of one T.
func SizeOf[T Floats]() int {
	var dummy T
	return int(unsafe.Sizeof(dummy))
}
