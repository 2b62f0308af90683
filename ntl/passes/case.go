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

// LowerCase expands each one-bit Case into a chain of Selects keyed on the
// discriminant bits, with the last (typically wildcard) entry as the
// fall-through default — §4.6/§4.7's gate-level realization of Case.
type LowerCase struct{}

func (LowerCase) Description() string {
	return "expand Case into a chain of Selects over the discriminant bits"
}

func (LowerCase) Run(o *ntl.Object) (*ntl.Object, *diag.Error) {
	var appended []ntl.Inst
	for i, inst := range o.Ops {
		if inst.Op != ntl.OpCase {
			continue
		}
		aux := inst.Aux.(ntl.CaseAux)
		n := len(aux.Entries)
		if n == 0 {
			return nil, diag.ICE("ntl: Case with no entries reached LowerCase")
		}
		result := aux.Entries[n-1].Value
		for k := n - 2; k >= 0; k-- {
			entry := aux.Entries[k]
			cond := matchCondition(o, aux.Discriminant, entry)
			next := o.NewDataRegister()
			selInst := ntl.Inst{Op: ntl.OpSelect, Dst: next, Args: []ntl.Wire{cond, entry.Value, result}, Loc: inst.Loc}
			appended = append(appended, selInst)
			result = ntl.RegWire(next)
		}
		o.Ops[i] = ntl.Inst{Op: ntl.OpAssign, Dst: inst.Dst, Args: []ntl.Wire{result}, Loc: inst.Loc}
	}
	o.Ops = append(o.Ops, appended...)
	return o, nil
}

// matchCondition builds the one-bit equality test between the discriminant
// bits and an entry's pattern, folding to an always-true constant for a
// wildcard entry.
func matchCondition(o *ntl.Object, discriminant []ntl.Wire, entry ntl.CaseEntry) ntl.Wire {
	if entry.Wildcard || entry.Pattern == nil {
		return ntl.ConstWire(ntl.Bit1)
	}
	var acc ntl.Wire
	for i, d := range discriminant {
		patBit := ntl.ConstWire(entry.Pattern[i])
		xnor := o.NewDataRegister()
		o.Append(ntl.Inst{Op: ntl.OpBinary, Dst: xnor, Args: []ntl.Wire{d, patBit}, Aux: ntl.BinAux{Op: ntl.BinXnor}})
		if i == 0 {
			acc = ntl.RegWire(xnor)
			continue
		}
		and := o.NewDataRegister()
		o.Append(ntl.Inst{Op: ntl.OpBinary, Dst: and, Args: []ntl.Wire{acc, ntl.RegWire(xnor)}, Aux: ntl.BinAux{Op: ntl.BinAnd}})
		acc = ntl.RegWire(and)
	}
	return acc
}
