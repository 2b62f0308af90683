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

	"gatecore/diag"
	"gatecore/ntl"
)

func TestSingleRegisterWriteRejectsDoubleWrite(t *testing.T) {
	o := ntl.NewObject(1, "k")
	dst := o.NewDataRegister()
	o.Append(ntl.Inst{Op: ntl.OpAssign, Dst: dst, Args: []ntl.Wire{ntl.ConstWire(ntl.Bit0)}})
	o.Append(ntl.Inst{Op: ntl.OpAssign, Dst: dst, Args: []ntl.Wire{ntl.ConstWire(ntl.Bit1)}})

	_, err := (SingleRegisterWrite{}).Run(o)
	if err == nil || err.Cause != diag.CauseStructural {
		t.Fatalf("expected a structural error for double write, got %v", err)
	}
}

func TestSingleRegisterWriteAcceptsDistinctWrites(t *testing.T) {
	o := ntl.NewObject(1, "k")
	a := o.NewDataRegister()
	b := o.NewDataRegister()
	o.Append(ntl.Inst{Op: ntl.OpAssign, Dst: a, Args: []ntl.Wire{ntl.ConstWire(ntl.Bit0)}})
	o.Append(ntl.Inst{Op: ntl.OpAssign, Dst: b, Args: []ntl.Wire{ntl.ConstWire(ntl.Bit1)}})

	if _, err := (SingleRegisterWrite{}).Run(o); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestCheckForUndrivenRejectsMissingDriver(t *testing.T) {
	o := ntl.NewObject(1, "k")
	undriven := o.NewDataRegister()
	dst := o.NewDataRegister()
	o.Append(ntl.Inst{Op: ntl.OpUnary, Dst: dst, Args: []ntl.Wire{ntl.RegWire(undriven)}, Aux: ntl.UnAux{Op: ntl.UnNot}})

	_, err := (CheckForUndriven{}).Run(o)
	if err == nil || err.Cause != diag.CauseStructural {
		t.Fatalf("expected a structural error for an undriven register, got %v", err)
	}
}

func TestCheckForUndrivenAcceptsInputs(t *testing.T) {
	o := ntl.NewObject(1, "k")
	in := o.NewDataRegister()
	dst := o.NewDataRegister()
	o.Inputs = [][]ntl.Wire{{ntl.RegWire(in)}}
	o.Append(ntl.Inst{Op: ntl.OpUnary, Dst: dst, Args: []ntl.Wire{ntl.RegWire(in)}, Aux: ntl.UnAux{Op: ntl.UnNot}})
	o.Outputs = []ntl.Wire{ntl.RegWire(dst)}

	if _, err := (CheckForUndriven{}).Run(o); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestReorderInstructionsRespectsDependencies(t *testing.T) {
	o := ntl.NewObject(1, "k")
	a := o.NewDataRegister()
	b := o.NewDataRegister()
	c := o.NewDataRegister()
	// Append out of dependency order: c depends on b, b depends on a.
	o.Append(ntl.Inst{Op: ntl.OpUnary, Dst: c, Args: []ntl.Wire{ntl.RegWire(b)}, Aux: ntl.UnAux{Op: ntl.UnNot}})
	o.Append(ntl.Inst{Op: ntl.OpUnary, Dst: b, Args: []ntl.Wire{ntl.RegWire(a)}, Aux: ntl.UnAux{Op: ntl.UnNot}})
	o.Append(ntl.Inst{Op: ntl.OpAssign, Dst: a, Args: []ntl.Wire{ntl.ConstWire(ntl.Bit1)}})

	out, err := (ReorderInstructions{}).Run(o)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	pos := map[ntl.RegId]int{}
	for i, inst := range out.Ops {
		pos[inst.Dst] = i
	}
	if pos[a] > pos[b] || pos[b] > pos[c] {
		t.Fatalf("expected a before b before c, got positions %v", pos)
	}
}

func TestReorderInstructionsDetectsCycle(t *testing.T) {
	o := ntl.NewObject(1, "k")
	a := o.NewDataRegister()
	b := o.NewDataRegister()
	o.Append(ntl.Inst{Op: ntl.OpUnary, Dst: a, Args: []ntl.Wire{ntl.RegWire(b)}, Aux: ntl.UnAux{Op: ntl.UnNot}})
	o.Append(ntl.Inst{Op: ntl.OpUnary, Dst: b, Args: []ntl.Wire{ntl.RegWire(a)}, Aux: ntl.UnAux{Op: ntl.UnNot}})

	_, err := (ReorderInstructions{}).Run(o)
	if err == nil || err.Cause != diag.CauseStructural {
		t.Fatalf("expected a structural cycle error, got %v", err)
	}
}
