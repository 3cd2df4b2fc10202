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

package simd

import (
	"simd/archsimd"

	"golang.org/x/sys/cpu"
)

var (
	hasAVX2   bool
	hasAVX512 bool
	hasFMA    bool
)

func init() {
	hasAVX2 = archsimd.X86.AVX2()
	hasAVX512 = archsimd.X86.AVX512()
	hasFMA = cpu.X86.HasFMA

	if NoSimdEnv() {
		setScalarMode()
		return
	}

	switch {
	case hasAVX512:
		currentLevel = DispatchAVX512
		currentWidth = 64
	case hasAVX2:
		currentLevel = DispatchAVX2
		currentWidth = 32
	default:
		// SSE2 is baseline for amd64
		currentLevel = DispatchSSE2
		currentWidth = 16
	}
}
