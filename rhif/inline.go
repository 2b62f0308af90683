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
package rhif

import "gatecore/diag"

// CalleeResolver looks up the already-inlined RHIF object for a sibling
// kernel named by an Exec's ExecAux.Callee. The returned Object must itself
// be free of OpExec, so one InlineCalls sweep over the caller is enough
// regardless of call depth — passmgr resolves callees bottom-up so this
// invariant holds by construction.
type CalleeResolver func(name string) (*Object, bool)

// InlineCalls replaces every OpExec in o with a fresh copy of the resolved
// callee's body spliced in at the call site (§3.2: "Exec, call to a sibling
// RHIF function"). Each call site gets its own copy of the callee's
// registers and literals — slot identity is per-Object, so two Exec sites
// calling the same callee never alias each other's state, and recursive
// instantiation (a callee that itself called a callee) already happened
// when that callee was inlined.
func InlineCalls(o *Object, resolve CalleeResolver) (*Object, *diag.Error) {
	out := make([]Inst, 0, len(o.Ops))
	for _, inst := range o.Ops {
		if inst.Op != OpExec {
			out = append(out, inst)
			continue
		}
		aux, ok := inst.Aux.(ExecAux)
		if !ok {
			return nil, diag.ICE("rhif: Exec op with no ExecAux", inst.Loc)
		}
		callee, ok := resolve(aux.Callee)
		if !ok {
			return nil, diag.New(diag.CauseType, "call to unknown kernel "+aux.Callee, inst.Loc)
		}
		if len(callee.Args) != len(inst.Args) {
			return nil, diag.New(diag.CauseType, "call to "+aux.Callee+" passes the wrong number of arguments", inst.Loc)
		}

		remapped := make(map[SlotId]SlotId, len(callee.Slots))
		for i, param := range callee.Args {
			remapped[param] = inst.Args[i]
		}
		remapSlot := func(id SlotId) SlotId {
			if r, ok := remapped[id]; ok {
				return r
			}
			s := callee.Slots[id]
			var r SlotId
			if s.Tag == SlotLiteral {
				r = o.InternLiteral(s.Kind, s.Value)
			} else {
				r = o.NewRegister(s.Kind)
			}
			remapped[id] = r
			return r
		}

		for _, calleeInst := range callee.Ops {
			out = append(out, remapInst(calleeInst, remapSlot))
		}
		out = append(out, Inst{Op: OpAssign, Dst: inst.Dst, Args: []SlotId{remapSlot(callee.Ret)}, Loc: inst.Loc})
	}
	o.Ops = out
	return o, nil
}

// remapInst copies inst with every slot it reads or writes passed through
// remap, leaving inst (and the callee Object it came from) untouched.
func remapInst(inst Inst, remap func(SlotId) SlotId) Inst {
	out := inst
	out.Dst = remap(inst.Dst)
	if len(inst.Args) > 0 {
		out.Args = make([]SlotId, len(inst.Args))
		for i, a := range inst.Args {
			out.Args[i] = remap(a)
		}
	}
	switch aux := inst.Aux.(type) {
	case PathAux:
		path := make(Path, len(aux.Path))
		copy(path, aux.Path)
		for i, e := range path {
			if e.Kind == PathDynamicIndex {
				path[i].Dynamic = remap(e.Dynamic)
			}
		}
		out.Aux = PathAux{Path: path}
	case CaseAux:
		arms := make([]CaseArm, len(aux.Arms))
		copy(arms, aux.Arms)
		for i := range arms {
			arms[i].Result = remap(arms[i].Result)
		}
		out.Aux = CaseAux{Arms: arms}
	}
	return out
}
