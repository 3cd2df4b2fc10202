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

package simd

import (
	"os"
	"strconv"
)

// DispatchLevel is the widest instruction set detected on this CPU. Kernels
// may run at a lower level; see kernel.VectorLevel.
type DispatchLevel int

const (
	// DispatchScalar means plain Go loops.
	DispatchScalar DispatchLevel = iota
	// DispatchSSE2 is the amd64 baseline. No kernel targets it; it is
	// only reported.
	DispatchSSE2
	// DispatchAVX2 means 256-bit registers.
	DispatchAVX2
	// DispatchAVX512 means 512-bit registers. The kernels use their AVX2
	// batches here.
	DispatchAVX512
	// DispatchNEON means 128-bit ARM registers. Only detected; batches use
	// the portable loop.
	DispatchNEON
)

// String returns the lower-case name of the level, e.g. "avx2".
func (d DispatchLevel) String() string {
	switch d {
	case DispatchScalar:
		return "scalar"
	case DispatchSSE2:
		return "sse2"
	case DispatchAVX2:
		return "avx2"
	case DispatchAVX512:
		return "avx512"
	case DispatchNEON:
		return "neon"
	default:
		return "unknown"
	}
}

// Both are written once by the per-architecture init functions.
var (
	currentLevel DispatchLevel
	currentWidth int // register width in bytes
)

// CurrentLevel returns the detected dispatch level.
func CurrentLevel() DispatchLevel {
	return currentLevel
}

// CurrentWidth returns the register width of CurrentLevel in bytes: 16 for
// SSE2, NEON and scalar, 32 for AVX2, 64 for AVX-512.
func CurrentWidth() int {
	return currentWidth
}

// CurrentName is shorthand for CurrentLevel().String().
func CurrentName() string {
	return currentLevel.String()
}

// NoSimdEnv reports whether SIMDPERF_NO_SIMD asks for the scalar level.
// Any non-empty value counts unless it parses as a false boolean.
func NoSimdEnv() bool {
	val := os.Getenv("SIMDPERF_NO_SIMD")
	if val == "" {
		return false
	}
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return true
}

// MaxLanes returns the number of T lanes in one register at the current width.
//
// With AVX2 (32 bytes) that is 8 float32 lanes or 4 float64 lanes.
func MaxLanes[T Floats]() int {
	return currentWidth / SizeOf[T]()
}

func setScalarMode() {
	currentLevel = DispatchScalar
	currentWidth = 16
}
