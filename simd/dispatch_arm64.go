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

//go:build arm64

package simd

import "golang.org/x/sys/cpu"

var (
	hasAVX2   bool
	hasAVX512 bool
	hasFMA    bool
)

func init() {
	// Every ARMv8 core has fused multiply-add in ASIMD.
	hasFMA = cpu.ARM64.HasASIMD

	if NoSimdEnv() {
		setScalarMode()
		return
	}

	// NEON is recorded for reporting; there are no NEON kernels, so
	// kernel.VectorLevel stays scalar on arm64.
	if cpu.ARM64.HasASIMD {
		currentLevel = DispatchNEON
		currentWidth = 16
	} else {
		setScalarMode()
	}
}
