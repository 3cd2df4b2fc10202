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

//go:build amd64 && goexperiment.simd

package kernel

import (
	"simd/archsimd"

	"github.com/tatami-inc/test-simple-simd-perf/simd"
)

func init() {
	if simd.CurrentLevel() < simd.DispatchAVX2 {
		return
	}
	vectorLevel = simd.DispatchAVX2
	batches32[Divide] = divideBatchesAVX2F32
	batches32[DivideMultiplyAdd] = divideMultiplyAddBatchesAVX2F32
	batches64[Divide] = divideBatchesAVX2F64
	batches64[DivideMultiplyAdd] = divideMultiplyAddBatchesAVX2F64
}

// The AVX2 functions only handle 256-bit batches (8 float32 or 4 float64
// lanes, the default alignment). Other widths use the portable loop.
// Source and operand loads are unaligned; stores go to dst.

func divideBatchesAVX2F32(dst, src, operand []float32, width int) int {
	if width != 8 {
		return baseDivideBatches(dst, src, operand, width)
	}
	upto := simd.BatchedLength(len(dst), 8)
	for j := 0; j < upto; j += 8 {
		x := archsimd.LoadFloat32x8Slice(src[j:])
		a := archsimd.LoadFloat32x8Slice(operand[j:])
		x.Div(a).StoreSlice(dst[j:])
	}
	return upto
}

func divideMultiplyAddBatchesAVX2F32(dst, src, operand []float32, width int) int {
	if width != 8 {
		return baseDivideMultiplyAddBatches(dst, src, operand, width)
	}
	upto := simd.BatchedLength(len(dst), 8)
	for j := 0; j < upto; j += 8 {
		x := archsimd.LoadFloat32x8Slice(src[j:])
		a := archsimd.LoadFloat32x8Slice(operand[j:])
		x.Div(a).Add(x.Mul(a)).StoreSlice(dst[j:])
	}
	return upto
}

func divideBatchesAVX2F64(dst, src, operand []float64, width int) int {
	if width != 4 {
		return baseDivideBatches(dst, src, operand, width)
	}
	upto := simd.BatchedLength(len(dst), 4)
	for j := 0; j < upto; j += 4 {
		x := archsimd.LoadFloat64x4Slice(src[j:])
		a := archsimd.LoadFloat64x4Slice(operand[j:])
		x.Div(a).StoreSlice(dst[j:])
	}
	return upto
}

func divideMultiplyAddBatchesAVX2F64(dst, src, operand []float64, width int) int {
	if width != 4 {
		return baseDivideMultiplyAddBatches(dst, src, operand, width)
	}
	upto := simd.BatchedLength(len(dst), 4)
	for j := 0; j < upto; j += 4 {
		x := archsimd.LoadFloat64x4Slice(src[j:])
		a := archsimd.LoadFloat64x4Slice(operand[j:])
		x.Div(a).Add(x.Mul(a)).StoreSlice(dst[j:])
	}
	return upto
}
