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

package kernel

import "github.com/tatami-inc/test-simple-simd-perf/simd"

// Portable batch implementations. Each batch is processed through
// full-capacity-clipped windows so the inner loop runs over fixed-length
// slices; the AVX2 versions in kernel_avx2.go override these when the
// hardware and build allow it.

func baseDivideBatches[T simd.Floats](dst, src, operand []T, width int) int {
	upto := simd.BatchedLength(len(dst), width)
	for j := 0; j < upto; j += width {
		d := dst[j : j+width : j+width]
		x := src[j : j+width : j+width]
		a := operand[j : j+width : j+width]
		for k := range d {
			d[k] = x[k] / a[k]
		}
	}
	return upto
}

func baseDivideMultiplyAddBatches[T simd.Floats](dst, src, operand []T, width int) int {
	upto := simd.BatchedLength(len(dst), width)
	for j := 0; j < upto; j += width {
		d := dst[j : j+width : j+width]
		x := src[j : j+width : j+width]
		a := operand[j : j+width : j+width]
		for k := range d {
			d[k] = T(x[k]/a[k]) + T(x[k]*a[k])
		}
	}
	return upto
}

// vectorLevel is the instruction set of the functions in batches32 and
// batches64. It only changes when an init() installs vector versions, so
// CPUs detected as NEON or AVX-512 still report the level actually used.
var vectorLevel = simd.DispatchScalar

// VectorLevel returns the instruction set the vectorized strategy runs
// float32 and float64 batches with.
func VectorLevel() simd.DispatchLevel { return vectorLevel }

// Dispatch tables, indexed by Transform.
var (
	batches32 = [numTransforms]func(dst, src, operand []float32, width int) int{
		Divide:            baseDivideBatches[float32],
		DivideMultiplyAdd: baseDivideMultiplyAddBatches[float32],
	}
	batches64 = [numTransforms]func(dst, src, operand []float64, width int) int{
		Divide:            baseDivideBatches[float64],
		DivideMultiplyAdd: baseDivideMultiplyAddBatches[float64],
	}
)
