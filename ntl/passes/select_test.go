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
	"testing"

	"gatecore/ntl"
)

func TestLowerSelectsConstantCondition(t *testing.T) {
	o := ntl.NewObject(1, "k")
	a := o.NewDataRegister()
	b := o.NewDataRegister()
	dst := o.NewDataRegister()
	o.Append(ntl.Inst{Op: ntl.OpSelect, Dst: dst, Args: []ntl.Wire{ntl.ConstWire(ntl.Bit1), ntl.RegWire(a), ntl.RegWire(b)}})

	out, err := (LowerSelects{}).Run(o)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Ops[0].Op != ntl.OpAssign || !out.Ops[0].Args[0].Equal(ntl.RegWire(a)) {
		t.Fatalf("Select(1, a, b) should fold to Assign(a), got %+v", out.Ops[0])
	}
}

func TestLowerSelectsEqualBranches(t *testing.T) {
	o := ntl.NewObject(1, "k")
	cond := o.NewDataRegister()
	a := o.NewDataRegister()
	dst := o.NewDataRegister()
	o.Append(ntl.Inst{Op: ntl.OpSelect, Dst: dst, Args: []ntl.Wire{ntl.RegWire(cond), ntl.RegWire(a), ntl.RegWire(a)}})

	out, err := (LowerSelects{}).Run(o)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Ops[0].Op != ntl.OpAssign {
		t.Fatalf("Select(cond, a, a) should fold regardless of cond, got %+v", out.Ops[0])
	}
}

func TestRemoveExtraRegistersResolvesChain(t *testing.T) {
	o := ntl.NewObject(1, "k")
	src := o.NewDataRegister()
	mid := o.NewDataRegister()
	final := o.NewDataRegister()
	o.Append(ntl.Inst{Op: ntl.OpAssign, Dst: mid, Args: []ntl.Wire{ntl.RegWire(src)}})
	o.Append(ntl.Inst{Op: ntl.OpUnary, Dst: final, Args: []ntl.Wire{ntl.RegWire(mid)}, Aux: ntl.UnAux{Op: ntl.UnNot}})

	out, err := (RemoveExtraRegisters{}).Run(o)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !out.Ops[1].Args[0].Equal(ntl.RegWire(src)) {
		t.Fatalf("downstream use of mid should resolve to src, got %+v", out.Ops[1].Args[0])
	}
}
