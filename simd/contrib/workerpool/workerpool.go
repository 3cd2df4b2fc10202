// Copyright 2025 The simdperf Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool splits a row range across a fixed number of workers and
// runs one task per worker, joining before it returns.
//
// Ranges are contiguous, disjoint and balanced: with total rows and w
// workers, every worker gets total/w rows and the first total%w workers get
// one more. There is no work stealing; a worker's range is fixed up front.
//
// Two executors run the tasks. A Pool keeps its goroutines alive between
// runs so repeated traversals do not pay spawn cost; Spawn starts fresh
// goroutines per run and propagates worker panics to the caller.
//
// Usage:
//
//	pool := workerpool.New(nthreads)
//	defer pool.Close()
//
//	totals := workerpool.Collect(pool, nrow, nthreads, func(w, start, length int) float64 {
//	    var total float64
//	    for i := start; i < start+length; i++ {
//	        total += process(i)
//	    }
//	    return total
//	})
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/grailbio/base/must"
)

// Range is the contiguous block of indices assigned to one worker.
type Range struct {
	Worker int
	Start  int
	Length int
}

// End returns one past the last index in the range.
func (r Range) End() int { return r.Start + r.Length }

// Partition divides [0, total) into exactly workers contiguous ranges whose
// lengths differ by at most one. The first total%workers ranges are the
// longer ones. Ranges may be empty when workers > total.
func Partition(total, workers int) []Range {
	must.Truef(workers >= 1, "workerpool: need at least one worker, got %d", workers)
	must.Truef(total >= 0, "workerpool: negative total %d", total)

	base, extra := total/workers, total%workers
	ranges := make([]Range, workers)
	start := 0
	for w := range ranges {
		n := base
		if w < extra {
			n++
		}
		ranges[w] = Range{Worker: w, Start: start, Length: n}
		start += n
	}
	return ranges
}

// Executor runs task once per worker over the balanced partition of
// [0, total), concurrently, and returns after every task has finished.
type Executor interface {
	Run(total, workers int, task func(worker, start, length int))
}

// Collect runs task through e and returns each worker's result indexed by
// worker. Results become visible only after all workers have finished.
func Collect[R any](e Executor, total, workers int, task func(worker, start, length int) R) []R {
	type result struct {
		worker int
		value  R
	}
	resultC := make(chan result, workers)
	e.Run(total, workers, func(worker, start, length int) {
		resultC <- result{worker, task(worker, start, length)}
	})
	close(resultC)

	results := make([]R, workers)
	for r := range resultC {
		results[r.worker] = r.value
	}
	return results
}

// Pool is a persistent worker pool that can be reused across many
// traversals. Workers are spawned once at creation and reused.
type Pool struct {
	numWorkers int
	workC      chan workItem
	closeOnce  sync.Once
	closed     atomic.Bool
}

// workItem represents a single task to execute.
type workItem struct {
	fn      func()
	barrier *sync.WaitGroup
}

// New creates a new worker pool with the specified number of workers.
// Workers are spawned immediately and persist until Close is called.
// If numWorkers <= 0, uses GOMAXPROCS.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		numWorkers: numWorkers,
		// Buffer enough for all workers to have pending work
		workC: make(chan workItem, numWorkers*2),
	}

	for range numWorkers {
		go p.worker()
	}

	return p
}

// worker is the main loop for each persistent worker goroutine.
func (p *Pool) worker() {
	for item := range p.workC {
		item.fn()
		item.barrier.Done()
	}
}

// NumWorkers returns the number of goroutines in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Close shuts down the worker pool. All pending work will complete.
// Calling Close multiple times is safe.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.workC)
	})
}

// Run implements Executor. With more workers than pool goroutines the
// extra tasks queue and run as goroutines free up; results are unaffected.
// A closed pool runs the tasks sequentially on the caller's goroutine.
func (p *Pool) Run(total, workers int, task func(worker, start, length int)) {
	ranges := Partition(total, workers)

	if p.closed.Load() || workers == 1 {
		for _, r := range ranges {
			task(r.Worker, r.Start, r.Length)
		}
		return
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for _, r := range ranges {
		p.workC <- workItem{
			fn: func() {
				task(r.Worker, r.Start, r.Length)
			},
			barrier: &wg,
		}
	}
	wg.Wait()
}
