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

package bench

import (
	"fmt"
	"math"

	"github.com/grailbio/base/errors"
	"github.com/tatami-inc/test-simple-simd-perf/simd"
	"github.com/tatami-inc/test-simple-simd-perf/simd/contrib/kernel"
	"github.com/tatami-inc/test-simple-simd-perf/simd/contrib/matrix"
	"github.com/tatami-inc/test-simple-simd-perf/simd/contrib/workerpool"
)

// Precision selects the matrix element type.
type Precision int

const (
	// Float64 runs with double precision elements.
	Float64 Precision = iota
	// Float32 runs with single precision elements.
	Float32
)

// String returns "float64" or "float32".
func (p Precision) String() string {
	switch p {
	case Float64:
		return "float64"
	case Float32:
		return "float32"
	default:
		return fmt.Sprintf("Precision(%d)", int(p))
	}
}

// ElementSize returns the size in bytes of one element.
func (p Precision) ElementSize() int {
	if p == Float32 {
		return simd.SizeOf[float32]()
	}
	return simd.SizeOf[float64]()
}

// ParsePrecision parses a precision name. "double" and "float" are accepted
// as aliases of float64 and float32.
func ParsePrecision(s string) (Precision, error) {
	switch s {
	case "float64", "double":
		return Float64, nil
	case "float32", "float", "single":
		return Float32, nil
	}
	return 0, errors.E(errors.Invalid, fmt.Sprintf("bench: unknown precision %q", s))
}

// ExecutorKind selects how worker tasks are run.
type ExecutorKind int

const (
	// PoolExecutor runs tasks on a workerpool.Pool created before timing
	// starts.
	PoolExecutor ExecutorKind = iota
	// SpawnExecutor starts the worker goroutines inside the timed region.
	SpawnExecutor
)

// String returns "pool" or "spawn".
func (k ExecutorKind) String() string {
	switch k {
	case PoolExecutor:
		return "pool"
	case SpawnExecutor:
		return "spawn"
	default:
		return fmt.Sprintf("ExecutorKind(%d)", int(k))
	}
}

// ParseExecutorKind parses "pool" or "spawn".
func ParseExecutorKind(s string) (ExecutorKind, error) {
	switch s {
	case "pool":
		return PoolExecutor, nil
	case "spawn":
		return SpawnExecutor, nil
	}
	return 0, errors.E(errors.Invalid, fmt.Sprintf("bench: unknown executor %q", s))
}

// Config describes one benchmark run.
type Config struct {
	// Precision is the element type of the matrix and operand.
	Precision Precision
	// SIMD selects the vectorized kernel strategy instead of the scalar one.
	SIMD bool
	// Threads is the number of workers the rows are split across.
	Threads int
	// Rows and Cols are the matrix dimensions.
	Rows, Cols int
	// Transform is the per-element arithmetic.
	Transform kernel.Transform
	// Fetch selects whether rows are copied into the scratch buffer and
	// transformed in place, or read from storage into the buffer.
	Fetch matrix.FetchMode
	// Alignment is the byte alignment of scratch and operand buffers. It also
	// fixes the vector batch width.
	Alignment int
	// Seed seeds the generator filling the matrix and operand.
	Seed uint64
	// Executor selects how workers are started.
	Executor ExecutorKind
	// ColumnStart and ColumnLength restrict the transform to a block of
	// columns. A ColumnLength of zero selects every column and requires a
	// zero ColumnStart.
	ColumnStart, ColumnLength int
}

// DefaultConfig returns the configuration of the reference workload:
// a 10000x10000 float64 matrix, the combined transform, copy fetches,
// 256-byte alignment, seed 42 and a single scalar worker.
func DefaultConfig() Config {
	return Config{
		Precision: Float64,
		Threads:   1,
		Rows:      10000,
		Cols:      10000,
		Transform: kernel.DivideMultiplyAdd,
		Fetch:     matrix.Copy,
		Alignment: simd.DefaultAlignment,
		Seed:      42,
		Executor:  PoolExecutor,
	}
}

// Validate checks that the configuration describes a runnable benchmark.
func (c Config) Validate() error {
	switch {
	case c.Precision != Float64 && c.Precision != Float32:
		return errors.E(errors.Invalid, "bench: invalid precision "+c.Precision.String())
	case c.Threads < 1:
		return errors.E(errors.Invalid, fmt.Sprintf("bench: thread count must be positive, got %d", c.Threads))
	case c.Rows < 1 || c.Cols < 1:
		return errors.E(errors.Invalid, fmt.Sprintf("bench: dimensions must be positive, got %dx%d", c.Rows, c.Cols))
	case c.Rows > math.MaxInt/c.Cols:
		return errors.E(errors.OOM, fmt.Sprintf("bench: a %dx%d matrix overflows the address space", c.Rows, c.Cols))
	case c.Transform != kernel.Divide && c.Transform != kernel.DivideMultiplyAdd:
		return errors.E(errors.Invalid, "bench: invalid transform "+c.Transform.String())
	case c.Fetch != matrix.Copy && c.Fetch != matrix.Reference:
		return errors.E(errors.Invalid, "bench: invalid fetch mode "+c.Fetch.String())
	case c.Executor != PoolExecutor && c.Executor != SpawnExecutor:
		return errors.E(errors.Invalid, "bench: invalid executor "+c.Executor.String())
	case c.Alignment <= 0 || c.Alignment&(c.Alignment-1) != 0:
		return errors.E(errors.Invalid, fmt.Sprintf("bench: alignment must be a power of two, got %d", c.Alignment))
	case c.Alignment/c.Precision.ElementSize()/8 < 1:
		return errors.E(errors.Invalid, fmt.Sprintf("bench: alignment %d is too small for %s batches", c.Alignment, c.Precision))
	case c.ColumnLength == 0 && c.ColumnStart != 0:
		return errors.E(errors.Invalid, fmt.Sprintf("bench: column block starting at %d needs a length", c.ColumnStart))
	case c.ColumnStart < 0 || c.ColumnLength < 0 || c.ColumnStart > c.Cols-c.ColumnLength:
		return errors.E(errors.Invalid, fmt.Sprintf("bench: column block [%d, %d+%d) out of range for %d columns",
			c.ColumnStart, c.ColumnStart, c.ColumnLength, c.Cols))
	}
	return nil
}

// Strategy returns the kernel strategy the SIMD flag selects.
func (c Config) Strategy() kernel.Strategy {
	if c.SIMD {
		return kernel.Vectorized
	}
	return kernel.Scalar
}

// Block returns the start and length of the transformed column range.
func (c Config) Block() (start, length int) {
	if c.ColumnLength == 0 {
		return 0, c.Cols
	}
	return c.ColumnStart, c.ColumnLength
}

// newExecutor returns the configured executor and a function releasing it.
func (c Config) newExecutor() (workerpool.Executor, func()) {
	if c.Executor == SpawnExecutor {
		return workerpool.Spawn{}, func() {}
	}
	pool := workerpool.New(c.Threads)
	return pool, pool.Close
}
