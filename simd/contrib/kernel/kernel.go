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

// Package kernel implements the elementwise row transform the benchmark
// times: for every column j, dst[j] = f(src[j], operand[j]).
//
// Two transforms are available:
//   - Divide: dst[j] = src[j] / operand[j]
//   - DivideMultiplyAdd: dst[j] = src[j]/operand[j] + src[j]*operand[j]
//
// and two strategies that produce identical results:
//   - Scalar: a plain element loop
//   - Vectorized: fixed-width batches followed by a scalar tail loop
//
// The batch functions are selected at init time from the detected dispatch
// level; with GOEXPERIMENT=simd on AVX2 hardware they use archsimd vectors,
// elsewhere a portable windowed loop.
package kernel

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/tatami-inc/test-simple-simd-perf/simd"
)

// Transform selects the per-element arithmetic.
type Transform int

const (
	// Divide computes x / a.
	Divide Transform = iota
	// DivideMultiplyAdd computes x/a + x*a.
	DivideMultiplyAdd

	numTransforms
)

// String returns the flag spelling of the transform.
func (t Transform) String() string {
	switch t {
	case Divide:
		return "divide"
	case DivideMultiplyAdd:
		return "combined"
	default:
		return fmt.Sprintf("Transform(%d)", int(t))
	}
}

// ParseTransform parses "divide" or "combined".
func ParseTransform(s string) (Transform, error) {
	switch s {
	case "divide":
		return Divide, nil
	case "combined":
		return DivideMultiplyAdd, nil
	}
	return 0, errors.E(errors.Invalid, "kernel: unknown transform", fmt.Sprintf("%q", s))
}

// Strategy selects how the transform is executed.
type Strategy int

const (
	// Scalar processes one element at a time.
	Scalar Strategy = iota
	// Vectorized processes full batches with vector operations and the
	// remainder with the scalar loop.
	Vectorized
)

// String returns "scalar" or "simd".
func (s Strategy) String() string {
	switch s {
	case Scalar:
		return "scalar"
	case Vectorized:
		return "simd"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// Kernel is an elementwise transform bound to an element type, strategy and
// batch width. A Kernel holds no mutable state and may be shared.
type Kernel[T simd.Floats] struct {
	transform Transform
	strategy  Strategy
	width     int
	level     simd.DispatchLevel

	// batches processes the full batches at the start of dst and returns
	// how many elements it wrote.
	batches func(dst, src, operand []T, width int) int
	scalar  func(dst, src, operand []T)
}

// New returns a kernel for the given transform and strategy. The batch width
// is derived from alignment with simd.BatchWidth.
func New[T simd.Floats](transform Transform, strategy Strategy, alignment int) (*Kernel[T], error) {
	if transform < 0 || transform >= numTransforms {
		return nil, errors.E(errors.Invalid, "kernel: invalid transform", transform.String())
	}
	if strategy != Scalar && strategy != Vectorized {
		return nil, errors.E(errors.Invalid, "kernel: invalid strategy", strategy.String())
	}
	width := simd.BatchWidth[T](alignment)
	if width < 1 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("kernel: alignment %d yields an empty batch", alignment))
	}
	k := &Kernel[T]{
		transform: transform,
		strategy:  strategy,
		width:     width,
	}
	k.batches, k.level = batchesFor[T](transform)
	if strategy == Scalar {
		k.level = simd.DispatchScalar
	}
	switch transform {
	case Divide:
		k.scalar = divideScalar[T]
	case DivideMultiplyAdd:
		k.scalar = divideMultiplyAddScalar[T]
	}
	return k, nil
}

// batchesFor picks the dispatched batch function for the concrete element
// type and the level it runs at, falling back to the generic loop for named
// float types.
func batchesFor[T simd.Floats](transform Transform) (func(dst, src, operand []T, width int) int, simd.DispatchLevel) {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(batches32[transform]).(func(dst, src, operand []T, width int) int), vectorLevel
	case float64:
		return any(batches64[transform]).(func(dst, src, operand []T, width int) int), vectorLevel
	}
	if transform == Divide {
		return baseDivideBatches[T], simd.DispatchScalar
	}
	return baseDivideMultiplyAddBatches[T], simd.DispatchScalar
}

// Transform returns the kernel's transform.
func (k *Kernel[T]) Transform() Transform { return k.transform }

// Strategy returns the kernel's strategy.
func (k *Kernel[T]) Strategy() Strategy { return k.strategy }

// BatchWidth returns the number of elements per vector batch.
func (k *Kernel[T]) BatchWidth() int { return k.width }

// Level returns the instruction set Apply runs its batches with.
// DispatchScalar covers both the scalar strategy and the portable batch
// loop.
func (k *Kernel[T]) Level() simd.DispatchLevel { return k.level }

// Apply computes dst[j] = f(src[j], operand[j]) for j in [0, len(dst)).
//
// src and operand must hold at least len(dst) elements; neither needs to be
// aligned. dst may be the same slice as src.
func (k *Kernel[T]) Apply(dst, src, operand []T) {
	n := len(dst)
	src = src[:n]
	operand = operand[:n]

	var j int
	if k.strategy == Vectorized {
		j = k.batches(dst, src, operand, k.width)
	}
	k.scalar(dst[j:], src[j:], operand[j:])
}

func divideScalar[T simd.Floats](dst, src, operand []T) {
	src = src[:len(dst)]
	operand = operand[:len(dst)]
	for j := range dst {
		dst[j] = src[j] / operand[j]
	}
}

func divideMultiplyAddScalar[T simd.Floats](dst, src, operand []T) {
	src = src[:len(dst)]
	operand = operand[:len(dst)]
	for j := range dst {
		x, a := src[j], operand[j]
		// The conversions round each term and keep the compiler from fusing
		// the multiply into the add, matching the vector path.
		dst[j] = T(x/a) + T(x*a)
	}
}

// RowSum returns the sum of s accumulated in float64.
func RowSum[T simd.Floats](s []T) float64 {
	var total float64
	for _, v := range s {
		total += float64(v)
	}
	return total
}
