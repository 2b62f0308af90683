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

func TestPipelineConvergesAndSimplifiesAndWithZero(t *testing.T) {
	o := ntl.NewObject(1, "k")
	a := o.NewDataRegister()
	mid := o.NewDataRegister()
	dst := o.NewDataRegister()
	o.Inputs = [][]ntl.Wire{{ntl.RegWire(a)}}
	o.Append(ntl.Inst{Op: ntl.OpAssign, Dst: mid, Args: []ntl.Wire{ntl.RegWire(a)}})
	o.Append(ntl.Inst{Op: ntl.OpBinary, Dst: dst, Args: []ntl.Wire{ntl.RegWire(mid), ntl.ConstWire(ntl.Bit0)}, Aux: ntl.BinAux{Op: ntl.BinAnd}})
	o.Outputs = []ntl.Wire{ntl.RegWire(dst)}

	final, rounds, err := ntl.RunToFixedPoint(o, Pipeline())
	if err != nil {
		t.Fatalf("RunToFixedPoint: %v", err)
	}
	if rounds < 1 {
		t.Fatalf("expected at least one round")
	}
	if len(final.Ops) != 0 {
		t.Fatalf("expected the constant Assign to be eliminated once its value reaches the output, got %d ops: %+v", len(final.Ops), final.Ops)
	}
	if len(final.Outputs) != 1 || !final.Outputs[0].Equal(ntl.ConstWire(ntl.Bit0)) {
		t.Fatalf("expected (a AND 0) to fold to literal 0 on the output, got %+v", final.Outputs)
	}

	if _, err := ntl.RunOnce(final, VerificationPipeline()); err != nil {
		t.Fatalf("verification passes should accept the optimized object: %v", err)
	}
}

func TestPipelineIsIdempotentAtFixedPoint(t *testing.T) {
	o := ntl.NewObject(1, "k")
	a := o.NewDataRegister()
	dst := o.NewDataRegister()
	o.Inputs = [][]ntl.Wire{{ntl.RegWire(a)}}
	o.Append(ntl.Inst{Op: ntl.OpUnary, Dst: dst, Args: []ntl.Wire{ntl.RegWire(a)}, Aux: ntl.UnAux{Op: ntl.UnNot}})
	o.Outputs = []ntl.Wire{ntl.RegWire(dst)}

	once, rounds1, err := ntl.RunToFixedPoint(o, Pipeline())
	if err != nil {
		t.Fatalf("RunToFixedPoint: %v", err)
	}
	before := ntl.Fingerprint(once)
	twice, rounds2, err := ntl.RunToFixedPoint(once, Pipeline())
	if err != nil {
		t.Fatalf("RunToFixedPoint (second pass): %v", err)
	}
	if rounds1 == 0 || rounds2 == 0 {
		t.Fatalf("expected at least one round each time")
	}
	if ntl.Fingerprint(twice) != before {
		t.Fatalf("re-running the optimizer on an already-quiescent object must be a no-op")
	}
}
