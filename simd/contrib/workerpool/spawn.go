// Copyright 2025 The simdperf Authors. SPDX-License-Identifier: Apache-2.0

package workerpool

import (
	"github.com/grailbio/base/must"
	"github.com/grailbio/base/traverse"
)

// Spawn is an Executor that starts one goroutine per worker for every run.
// A panic in any task is re-raised on the caller's goroutine once the other
// tasks have finished.
type Spawn struct{}

// Run implements Executor.
func (Spawn) Run(total, workers int, task func(worker, start, length int)) {
	ranges := Partition(total, workers)
	err := traverse.Limit(workers).Each(workers, func(w int) error {
		r := ranges[w]
		task(r.Worker, r.Start, r.Length)
		return nil
	})
	must.Nil(err, "workerpool: spawned traversal")
}

var (
	_ Executor = (*Pool)(nil)
	_ Executor = Spawn{}
)
