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

// BatchWidth returns the number of T elements processed per vector batch for
// a buffer alignment: alignment / sizeof(T) / 8. At the default 256-byte
// alignment this is one 256-bit register, 4 float64 or 8 float32 lanes.
// It returns 0 when the alignment is too small to hold a single lane batch.
func BatchWidth[T Floats](alignment int) int {
	return alignment / SizeOf[T]() / 8
}

// BatchedLength returns the largest multiple of width not exceeding size,
// i.e. the prefix covered by full batches. The remaining size-BatchedLength
// elements form the tail.
func BatchedLength(size, width int) int {
	if width <= 0 {
		return 0
	}
	return size - size%width
}

// ProcessWithTail is a helper for processing arrays in fixed-width batches
// that handles both full batches and the tail (remainder).
//
// It calls:
//   - fullFn(offset) for each full batch (offset is the starting index)
//   - tailFn(offset, count) once for the tail if size is not a multiple of width
//
// Example:
//
//	simd.ProcessWithTail(len(dst), 4,
//	    func(offset int) {
//	        divide4(dst[offset:offset+4], src[offset:], op[offset:])
//	    },
//	    func(offset, count int) {
//	        for j := offset; j < offset+count; j++ {
//	            dst[j] = src[j] / op[j]
//	        }
//	    },
//	)
func ProcessWithTail(size, width int, fullFn func(offset int), tailFn func(offset, count int)) {
	upto := BatchedLength(size, width)
	for offset := 0; offset < upto; offset += width {
		fullFn(offset)
	}
	if remaining := size - upto; remaining > 0 {
		tailFn(upto, remaining)
	}
}

// AlignedSize rounds size up to the next multiple of width.
// This is useful for sizing buffers that will be processed in batches.
func AlignedSize(size, width int) int {
	if width <= 0 {
		return size
	}
	return ((size + width - 1) / width) * width
}
