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

// Package bench runs the row-transform benchmark: it generates a seeded
// random matrix and operand vector, times one parallel pass of the
// elementwise kernel over every row, and reduces the per-worker row sums
// into a checksum.
//
// The checksum only exists so the computation has an observable result; its
// value is reproducible for a given configuration but carries no meaning.
//
// Usage:
//
//	cfg := bench.DefaultConfig()
//	cfg.SIMD = true
//	cfg.Threads = 4
//	res, err := bench.Run(cfg)
//	fmt.Printf("Access time: %d, yielding %g\n", res.ElapsedMillis(), res.Checksum)
package bench

import (
	"math/rand/v2"

	"github.com/tatami-inc/test-simple-simd-perf/simd"
	"github.com/tatami-inc/test-simple-simd-perf/simd/contrib/matrix"
	"gonum.org/v1/gonum/mathext/prng"
)

// Generate builds a rows x cols matrix and a cols-long aligned operand
// vector filled with standard normal values. Values come from a 64-bit
// Mersenne Twister seeded with seed, matrix first in row-major order and
// the operand after it, so equal arguments give equal data.
func Generate[T simd.Floats](rows, cols int, seed uint64, alignment int) (*matrix.Dense[T], []T, error) {
	src := prng.NewMT19937_64()
	src.Seed(seed)
	rng := rand.New(src)

	values := make([]T, rows*cols)
	for i := range values {
		values[i] = T(rng.NormFloat64())
	}
	m, err := matrix.NewDense(rows, cols, values)
	if err != nil {
		return nil, nil, err
	}

	operand, err := simd.AlignedSlice[T](cols, alignment)
	if err != nil {
		return nil, nil, err
	}
	for j := range operand {
		operand[j] = T(rng.NormFloat64())
	}
	return m, operand, nil
}
