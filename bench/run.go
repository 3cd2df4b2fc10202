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
	"time"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/must"
	"github.com/tatami-inc/test-simple-simd-perf/simd"
	"github.com/tatami-inc/test-simple-simd-perf/simd/contrib/kernel"
	"github.com/tatami-inc/test-simple-simd-perf/simd/contrib/matrix"
	"github.com/tatami-inc/test-simple-simd-perf/simd/contrib/workerpool"
)

// Result is the outcome of one benchmark run.
type Result struct {
	// Config is the configuration the run used.
	Config Config
	// Elapsed covers the parallel pass only, not data generation.
	Elapsed time.Duration
	// Checksum is the sum of WorkerTotals.
	Checksum float64
	// WorkerTotals holds each worker's accumulated row sums, widened to
	// float64, indexed by worker.
	WorkerTotals []float64
	// Level is the instruction set the kernel's batches ran with. It is
	// "scalar" for the scalar strategy and for the portable batch loop,
	// whatever the CPU supports.
	Level string
	// BatchWidth is the number of elements per vector batch.
	BatchWidth int
}

// ElapsedMillis returns the elapsed time in whole milliseconds.
func (r Result) ElapsedMillis() int64 {
	return r.Elapsed.Milliseconds()
}

// Bytes returns the number of matrix bytes the run transformed.
func (r Result) Bytes() int64 {
	_, length := r.Config.Block()
	return int64(r.Config.Rows) * int64(length) * int64(r.Config.Precision.ElementSize())
}

// Run validates cfg, generates its input and times one pass over all rows.
func Run(cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if cfg.Precision == Float32 {
		return run[float32](cfg)
	}
	return run[float64](cfg)
}

func run[T simd.Floats](cfg Config) (Result, error) {
	m, operand, err := Generate[T](cfg.Rows, cfg.Cols, cfg.Seed, cfg.Alignment)
	if err != nil {
		return Result{}, err
	}
	k, err := kernel.New[T](cfg.Transform, cfg.Strategy(), cfg.Alignment)
	if err != nil {
		return Result{}, err
	}
	start, length := cfg.Block()
	operand = operand[start : start+length]

	exec, release := cfg.newExecutor()
	defer release()

	log.Debug.Printf("bench: %s %s %s, %dx%d block [%d, %d), %d workers (%s), cpu level %s, kernel level %s, batch width %d",
		cfg.Precision, cfg.Strategy(), cfg.Transform, cfg.Rows, cfg.Cols, start, start+length,
		cfg.Threads, cfg.Executor, simd.CurrentName(), k.Level(), k.BatchWidth())

	begin := time.Now()
	totals := workerpool.Collect(exec, cfg.Rows, cfg.Threads, func(worker, first, n int) T {
		return transformRows(m, k, operand, cfg, worker, first, n)
	})
	elapsed := time.Since(begin)

	res := Result{
		Config:       cfg,
		Elapsed:      elapsed,
		WorkerTotals: make([]float64, len(totals)),
		Level:        k.Level().String(),
		BatchWidth:   k.BatchWidth(),
	}
	for w, total := range totals {
		res.WorkerTotals[w] = float64(total)
		res.Checksum += float64(total)
	}
	return res, nil
}

// transformRows is one worker's task: it owns its extractor, scratch buffer
// and accumulator, and returns the accumulated row sums of rows
// [first, first+n).
func transformRows[T simd.Floats](m *matrix.Dense[T], k *kernel.Kernel[T], operand []T, cfg Config, worker, first, n int) T {
	start, length := cfg.Block()
	ext, err := m.DenseRowBlock(cfg.Fetch, start, length)
	must.Nil(err, "bench: worker ", worker)
	buf, err := simd.NewBuffer[T](simd.AlignedSize(length, k.BatchWidth()), cfg.Alignment)
	must.Nil(err, "bench: worker ", worker)
	dst := buf.Acquire(length)

	var total T
	for i := first; i < first+n; i++ {
		// In copy mode src is dst and the kernel works in place.
		src := ext.Fetch(i, dst)
		k.Apply(dst, src, operand)
		total = T(float64(total) + kernel.RowSum(dst))
	}
	return total
}
