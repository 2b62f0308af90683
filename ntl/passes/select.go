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
	"gatecore/diag"
	"gatecore/ntl"
)

// LowerSelects folds a Select whose condition is a known constant, or whose
// two branches are the same wire, into a plain Assign.
type LowerSelects struct{}

func (LowerSelects) Description() string {
	return "fold a constant-condition or equal-branch Select into Assign"
}

func (LowerSelects) Run(o *ntl.Object) (*ntl.Object, *diag.Error) {
	for i, inst := range o.Ops {
		if inst.Op != ntl.OpSelect {
			continue
		}
		cond, trueW, falseW := inst.Args[0], inst.Args[1], inst.Args[2]
		if trueW.Equal(falseW) {
			o.Ops[i] = ntl.Inst{Op: ntl.OpAssign, Dst: inst.Dst, Args: []ntl.Wire{trueW}, Loc: inst.Loc}
			continue
		}
		if cond.IsConst() {
			switch cond.Const {
			case ntl.Bit1:
				o.Ops[i] = ntl.Inst{Op: ntl.OpAssign, Dst: inst.Dst, Args: []ntl.Wire{trueW}, Loc: inst.Loc}
			case ntl.Bit0:
				o.Ops[i] = ntl.Inst{Op: ntl.OpAssign, Dst: inst.Dst, Args: []ntl.Wire{falseW}, Loc: inst.Loc}
			}
		}
	}
	return o, nil
}

// RemoveExtraRegisters substitutes away register-to-register Assign chains,
// the NTL-stage counterpart of the identically named RTL pass.
type RemoveExtraRegisters struct{}

func (RemoveExtraRegisters) Description() string {
	return "substitute away register-to-register Assign chains"
}

func (RemoveExtraRegisters) Run(o *ntl.Object) (*ntl.Object, *diag.Error) {
	alias := map[ntl.RegId]ntl.Wire{}
	for _, inst := range o.Ops {
		if inst.Op == ntl.OpAssign && inst.Args[0].Tag == ntl.WireRegister {
			alias[inst.Dst] = inst.Args[0]
		}
	}
	resolve := func(w ntl.Wire) ntl.Wire {
		seen := map[ntl.RegId]bool{}
		cur := w
		for cur.Tag == ntl.WireRegister {
			next, ok := alias[cur.Reg]
			if !ok || seen[cur.Reg] {
				break
			}
			seen[cur.Reg] = true
			cur = next
		}
		return cur
	}
	for i, inst := range o.Ops {
		newArgs := make([]ntl.Wire, len(inst.Args))
		for j, a := range inst.Args {
			newArgs[j] = resolve(a)
		}
		o.Ops[i].Args = newArgs
		switch aux := o.Ops[i].Aux.(type) {
		case ntl.CaseAux:
			for k, d := range aux.Discriminant {
				aux.Discriminant[k] = resolve(d)
			}
			for k, e := range aux.Entries {
				e.Value = resolve(e.Value)
				aux.Entries[k] = e
			}
			o.Ops[i].Aux = aux
		}
	}
	for i, w := range o.Outputs {
		o.Outputs[i] = resolve(w)
	}
	return o, nil
}
