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

// Package passes implements the §4.7 NTL optimizer: nine passes run to a
// fixed point, followed by three post-fixed-point verification passes:
// SingleRegisterWrite and CheckForUndriven only check, and
// ReorderInstructions rewrites nothing but the order of the ops.
package passes

import (
	"gatecore/diag"
	"gatecore/ntl"
)

// RemoveExtraLiterals finds registers driven by a plain Assign of a constant
// wire and substitutes that constant directly into every later reference,
// collapsing one layer of register indirection around a literal.
type RemoveExtraLiterals struct{}

func (RemoveExtraLiterals) Description() string {
	return "substitute constant-valued registers with their literal wire"
}

func (RemoveExtraLiterals) Run(o *ntl.Object) (*ntl.Object, *diag.Error) {
	known := map[ntl.RegId]ntl.Wire{}
	for _, inst := range o.Ops {
		if inst.Op == ntl.OpAssign && inst.Args[0].IsConst() {
			known[inst.Dst] = inst.Args[0]
		}
	}
	if len(known) == 0 {
		return o, nil
	}
	substitute := func(w ntl.Wire) ntl.Wire {
		if w.Tag == ntl.WireRegister {
			if c, ok := known[w.Reg]; ok {
				return c
			}
		}
		return w
	}
	for i, inst := range o.Ops {
		newArgs := make([]ntl.Wire, len(inst.Args))
		for j, a := range inst.Args {
			newArgs[j] = substitute(a)
		}
		o.Ops[i].Args = newArgs
		switch aux := o.Ops[i].Aux.(type) {
		case ntl.CaseAux:
			for k, d := range aux.Discriminant {
				aux.Discriminant[k] = substitute(d)
			}
			for k, e := range aux.Entries {
				e.Value = substitute(e.Value)
				aux.Entries[k] = e
			}
			o.Ops[i].Aux = aux
		}
	}
	for i, w := range o.Outputs {
		o.Outputs[i] = substitute(w)
	}
	return o, nil
}

// ConstantRegisterElimination deletes Assign-to-constant ops whose register
// is no longer referenced anywhere, once RemoveExtraLiterals has inlined the
// constant at every use site.
type ConstantRegisterElimination struct{}

func (ConstantRegisterElimination) Description() string {
	return "delete unreferenced constant-valued register definitions"
}

func (ConstantRegisterElimination) Run(o *ntl.Object) (*ntl.Object, *diag.Error) {
	referenced := map[ntl.RegId]bool{}
	for _, w := range o.Outputs {
		if w.Tag == ntl.WireRegister {
			referenced[w.Reg] = true
		}
	}
	for _, inst := range o.Ops {
		inst.VisitArgs(func(w ntl.Wire) {
			if w.Tag == ntl.WireRegister {
				referenced[w.Reg] = true
			}
		})
	}
	out := make([]ntl.Inst, 0, len(o.Ops))
	for _, inst := range o.Ops {
		if inst.Op == ntl.OpAssign && inst.Args[0].IsConst() && !referenced[inst.Dst] {
			continue
		}
		out = append(out, inst)
	}
	o.Ops = out
	return o, nil
}
