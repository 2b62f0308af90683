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
package passes

import (
	"container/heap"

	"gatecore/diag"
	"gatecore/ntl"
	"gatecore/utils"
)

// SingleRegisterWrite checks that every register is written by at most one
// op — the post-fixed-point invariant the optimizer must leave intact.
type SingleRegisterWrite struct{}

func (SingleRegisterWrite) Description() string { return "every register is written at most once" }

func (SingleRegisterWrite) Run(o *ntl.Object) (*ntl.Object, *diag.Error) {
	written := utils.NewSet[ntl.RegId]()
	mark := func(r ntl.RegId) *diag.Error {
		if !written.Add(r) {
			return diag.New(diag.CauseStructural, "register written more than once")
		}
		return nil
	}
	for _, inst := range o.Ops {
		if inst.Op == ntl.OpComment {
			continue
		}
		if err := mark(inst.Dst); err != nil {
			return nil, err
		}
		if aux, ok := inst.Aux.(ntl.BlackBoxAux); ok {
			for _, vec := range aux.Outputs {
				for _, w := range vec {
					if w.Tag == ntl.WireRegister {
						if err := mark(w.Reg); err != nil {
							return nil, err
						}
					}
				}
			}
		}
	}
	return o, nil
}

// CheckForUndriven checks that every register referenced somewhere is
// either a primary input or has a defining op — §4.8's structural
// diagnostic for a register that nothing ever assigns.
type CheckForUndriven struct{}

func (CheckForUndriven) Description() string { return "every referenced register has a driver" }

func (CheckForUndriven) Run(o *ntl.Object) (*ntl.Object, *diag.Error) {
	driven := utils.NewSet[ntl.RegId]()
	for _, vec := range o.Inputs {
		for _, w := range vec {
			if w.Tag == ntl.WireRegister {
				driven.Add(w.Reg)
			}
		}
	}
	for _, inst := range o.Ops {
		if inst.Op == ntl.OpComment {
			continue
		}
		driven.Add(inst.Dst)
		if aux, ok := inst.Aux.(ntl.BlackBoxAux); ok {
			for _, vec := range aux.Outputs {
				for _, w := range vec {
					if w.Tag == ntl.WireRegister {
						driven.Add(w.Reg)
					}
				}
			}
		}
	}
	check := func(w ntl.Wire) *diag.Error {
		if w.Tag == ntl.WireRegister && !driven.Contains(w.Reg) {
			return diag.New(diag.CauseStructural, "undriven register")
		}
		return nil
	}
	for _, inst := range o.Ops {
		var err *diag.Error
		inst.VisitArgs(func(w ntl.Wire) {
			if err == nil {
				err = check(w)
			}
		})
		if err != nil {
			return nil, err
		}
	}
	for _, w := range o.Outputs {
		if err := check(w); err != nil {
			return nil, err
		}
	}
	return o, nil
}

type indexHeap []int

func (h indexHeap) Len() int            { return len(h) }
func (h indexHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *indexHeap) Push(x interface{}) { *h = append(*h, x.(int)) }
func (h *indexHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// ReorderInstructions performs a stable topological sort of the op list by
// data dependency, breaking ties by original index so the output is
// deterministic across runs of the otherwise order-agnostic fixed-point
// loop (§9's reordering design note).
type ReorderInstructions struct{}

func (ReorderInstructions) Description() string {
	return "topologically sort ops by data dependency, tie-broken by original index"
}

func (ReorderInstructions) Run(o *ntl.Object) (*ntl.Object, *diag.Error) {
	n := len(o.Ops)
	defIdx := map[ntl.RegId]int{}
	for i, inst := range o.Ops {
		if inst.Op != ntl.OpComment {
			defIdx[inst.Dst] = i
		}
	}
	dependents := make([][]int, n)
	indegree := make([]int, n)
	for i, inst := range o.Ops {
		seen := utils.NewSet[int]()
		inst.VisitArgs(func(w ntl.Wire) {
			if w.Tag != ntl.WireRegister {
				return
			}
			j, ok := defIdx[w.Reg]
			if !ok || j == i || !seen.Add(j) {
				return
			}
			dependents[j] = append(dependents[j], i)
			indegree[i]++
		})
	}

	ready := &indexHeap{}
	for i := 0; i < n; i++ {
		if indegree[i] == 0 {
			heap.Push(ready, i)
		}
	}
	order := make([]int, 0, n)
	for ready.Len() > 0 {
		i := heap.Pop(ready).(int)
		order = append(order, i)
		for _, j := range dependents[i] {
			indegree[j]--
			if indegree[j] == 0 {
				heap.Push(ready, j)
			}
		}
	}
	if len(order) != n {
		return nil, diag.New(diag.CauseStructural, "combinational cycle detected while reordering")
	}
	out := make([]ntl.Inst, n)
	for pos, i := range order {
		out[pos] = o.Ops[i]
	}
	o.Ops = out
	return o, nil
}
