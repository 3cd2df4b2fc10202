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

import "strings"

// HasAVX2 reports whether the CPU supports AVX2, independent of the dispatch
// level the kernels were built for.
func HasAVX2() bool { return hasAVX2 }

// HasAVX512 reports whether the CPU supports AVX-512F.
func HasAVX512() bool { return hasAVX512 }

// HasFMA reports whether the CPU supports fused multiply-add.
func HasFMA() bool { return hasFMA }

// CPUFeatures returns a comma-separated list of the detected features that
// matter to the kernels, e.g. "avx2,fma". It returns "none" when nothing
// was detected.
func CPUFeatures() string {
	var feats []string
	if hasAVX2 {
		feats = append(feats, "avx2")
	}
	if hasAVX512 {
		feats = append(feats, "avx512")
	}
	if hasFMA {
		feats = append(feats, "fma")
	}
	if len(feats) == 0 {
		return "none"
	}
	return strings.Join(feats, ",")
}
