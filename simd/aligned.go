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
	"fmt"
	"math"
	"unsafe"

	"github.com/grailbio/base/errors"
)

// DefaultAlignment is the byte boundary scratch and operand buffers are
// aligned to. It is a multiple of every vector register width in use.
const DefaultAlignment = 256

// AlignOffset returns the number of bytes to add to addr so that the result
// is divisible by alignment, which must be a power of two.
func AlignOffset(addr, alignment uintptr) uintptr {
	return (alignment - addr&(alignment-1)) & (alignment - 1)
}

// IsAligned returns true if the first element of s starts on an alignment
// boundary. Empty slices are considered aligned.
func IsAligned[T Floats](s []T, alignment int) bool {
	if len(s) == 0 {
		return true
	}
	return uintptr(unsafe.Pointer(&s[0]))%uintptr(alignment) == 0
}

// checkAlignment validates that alignment is a power of two that can hold
// at least one T.
func checkAlignment[T Floats](alignment int) error {
	if alignment <= 0 || alignment&(alignment-1) != 0 {
		return errors.E(errors.Invalid, fmt.Sprint("simd: alignment must be a positive power of two, got ", alignment))
	}
	if alignment < SizeOf[T]() {
		return errors.E(errors.Invalid, fmt.Sprintf("simd: alignment %d is smaller than the element size %d", alignment, SizeOf[T]()))
	}
	return nil
}

// AlignedSlice allocates a slice of capacity elements whose first element
// is aligned to alignment bytes.
//
// The backing array is oversized by alignment bytes so that an aligned
// offset exists wherever the allocator places it. The returned slice keeps
// the whole backing array alive.
func AlignedSlice[T Floats](capacity, alignment int) ([]T, error) {
	if err := checkAlignment[T](alignment); err != nil {
		return nil, err
	}
	if capacity < 0 {
		return nil, errors.E(errors.Invalid, fmt.Sprint("simd: negative capacity ", capacity))
	}
	size := SizeOf[T]()
	pad := alignment / size
	if capacity > (math.MaxInt-alignment)/size {
		return nil, errors.E(errors.OOM, fmt.Sprintf("simd: aligned buffer of %d elements overflows the address space", capacity))
	}

	raw := make([]T, capacity+pad)
	off := int(AlignOffset(uintptr(unsafe.Pointer(&raw[0])), uintptr(alignment))) / size
	return raw[off : off+capacity : off+capacity], nil
}

// Buffer is a reusable aligned scratch area. It is owned by a single worker
// and is not safe for concurrent use.
type Buffer[T Floats] struct {
	data      []T
	alignment int
}

// NewBuffer allocates a Buffer able to hold capacity elements.
func NewBuffer[T Floats](capacity, alignment int) (*Buffer[T], error) {
	data, err := AlignedSlice[T](capacity, alignment)
	if err != nil {
		return nil, err
	}
	return &Buffer[T]{data: data, alignment: alignment}, nil
}

// Acquire returns an aligned view of exactly capacity elements. If the
// buffer is too small it is replaced by a larger aligned block; previous
// views then no longer share memory with the buffer.
//
// Acquire panics if the larger block cannot be described, which only
// happens for capacities beyond the address space.
func (b *Buffer[T]) Acquire(capacity int) []T {
	if capacity > cap(b.data) {
		data, err := AlignedSlice[T](capacity, b.alignment)
		if err != nil {
			panic(err)
		}
		b.data = data
	}
	return b.data[:capacity]
}

// Cap returns the number of elements the buffer holds without growing.
func (b *Buffer[T]) Cap() int { return cap(b.data) }

// Alignment returns the byte alignment of every view the buffer hands out.
func (b *Buffer[T]) Alignment() int { return b.alignment }
