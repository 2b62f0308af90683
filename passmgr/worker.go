// Copyright (c) 2024 The gatecore Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.
package passmgr

import (
	"fmt"
	"runtime"
	"sync"

	"gatecore/diag"
	"gatecore/kernel"
)

// KernelResult pairs one kernel's outcome with either its Result or the
// error that stopped it. A batch never lets one failing kernel abort the
// rest (§5: "each kernel compiles in its own task over its own IR").
type KernelResult struct {
	Kernel *kernel.Kernel
	Result *Result
	Err    *diag.Error
}

// CompileAll compiles every kernel in ks against the shared kernels map (the
// full sibling set each one may Call). In Synchronous mode each kernel runs
// in turn on the calling goroutine; in Asynchronous mode independent
// kernels are fanned out across a worker pool, one task per kernel queued
// on a channel and drained by a fixed number of workers — the same
// task-channel-plus-WaitGroup shape used for parallel independent work
// elsewhere in the pack. Passes within a single kernel are never
// parallelized against each other; only whole kernels are (§5).
func CompileAll(ks []*kernel.Kernel, kernels map[string]*kernel.Kernel, opts Options) []KernelResult {
	if opts.Mode == Synchronous {
		out := make([]KernelResult, len(ks))
		for i, k := range ks {
			r, err := Compile(k, kernels, opts)
			out[i] = KernelResult{Kernel: k, Result: r, Err: err}
		}
		return out
	}
	return compileAllAsync(ks, kernels, opts)
}

type compileJob struct {
	idx int
	k   *kernel.Kernel
}

func compileAllAsync(ks []*kernel.Kernel, kernels map[string]*kernel.Kernel, opts Options) []KernelResult {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(ks) {
		workers = len(ks)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan compileJob, len(ks))
	for i, k := range ks {
		jobs <- compileJob{idx: i, k: k}
	}
	close(jobs)

	out := make([]KernelResult, len(ks))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				r, err := Compile(job.k, kernels, opts)
				out[job.idx] = KernelResult{Kernel: job.k, Result: r, Err: err}
			}
		}()
	}
	wg.Wait()

	if opts.Verbosity >= Summary {
		ok := 0
		for _, kr := range out {
			if kr.Err == nil {
				ok++
			}
		}
		fmt.Printf("compiled %d/%d kernels (%d workers)\n", ok, len(ks), workers)
	}
	return out
}
