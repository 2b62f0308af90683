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
	"math/big"
	"testing"

	"gatecore/rtl"
)

func TestLowerNotEqualZeroToAnyRewritesComparison(t *testing.T) {
	o := rtl.NewObject(1, "f")
	arg := o.NewRegister(rtl.Unsigned(8))
	o.Args = []rtl.RegId{arg}
	zero := o.InternLiteral(rtl.Unsigned(8), big.NewInt(0))
	dst := o.NewRegister(rtl.Unsigned(1))
	o.Append(rtl.Inst{Op: rtl.OpBinary, Dst: dst, Args: []rtl.Operand{rtl.RegOperand(arg), rtl.LitOperand(zero)}, Aux: rtl.BinAux{Op: rtl.BinNe}})
	o.Ret = dst

	out, err := LowerNotEqualZeroToAny{}.Run(o)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Ops[0].Op != rtl.OpUnary {
		t.Fatalf("expected Ne(x, 0) to rewrite to Unary Any, got %v", out.Ops[0].Op)
	}
	if aux := out.Ops[0].Aux.(rtl.UnAux); aux.Op != rtl.UnAny {
		t.Fatalf("expected UnAny, got %v", aux.Op)
	}
}

func TestLowerShiftsByZeroToCopy(t *testing.T) {
	o := rtl.NewObject(1, "f")
	arg := o.NewRegister(rtl.Unsigned(8))
	o.Args = []rtl.RegId{arg}
	zero := o.InternLiteral(rtl.Unsigned(8), big.NewInt(0))
	dst := o.NewRegister(rtl.Unsigned(8))
	o.Append(rtl.Inst{Op: rtl.OpBinary, Dst: dst, Args: []rtl.Operand{rtl.RegOperand(arg), rtl.LitOperand(zero)}, Aux: rtl.BinAux{Op: rtl.BinShl}})
	o.Ret = dst

	out, err := LowerShiftsByZeroToCopy{}.Run(o)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Ops[0].Op != rtl.OpAssign {
		t.Fatalf("expected a shift-by-zero to rewrite to Assign, got %v", out.Ops[0].Op)
	}
}

func TestLowerShiftByConstantDecomposesIntoConcat(t *testing.T) {
	o := rtl.NewObject(1, "f")
	arg := o.NewRegister(rtl.Unsigned(8))
	o.Args = []rtl.RegId{arg}
	amount := o.InternLiteral(rtl.Unsigned(8), big.NewInt(2))
	dst := o.NewRegister(rtl.Unsigned(8))
	o.Append(rtl.Inst{Op: rtl.OpBinary, Dst: dst, Args: []rtl.Operand{rtl.RegOperand(arg), rtl.LitOperand(amount)}, Aux: rtl.BinAux{Op: rtl.BinShl}})
	o.Ret = dst

	out, err := LowerShiftByConstant{}.Run(o)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var found bool
	for _, inst := range out.Ops {
		if inst.Dst == dst && inst.Op == rtl.OpConcat {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a constant-amount shift to decompose into a static Concat, got %+v", out.Ops)
	}
}

func TestLowerMultiplyToShiftRewritesPowerOfTwo(t *testing.T) {
	o := rtl.NewObject(1, "f")
	arg := o.NewRegister(rtl.Unsigned(8))
	o.Args = []rtl.RegId{arg}
	four := o.InternLiteral(rtl.Unsigned(8), big.NewInt(4))
	dst := o.NewRegister(rtl.Unsigned(8))
	o.Append(rtl.Inst{Op: rtl.OpBinary, Dst: dst, Args: []rtl.Operand{rtl.RegOperand(arg), rtl.LitOperand(four)}, Aux: rtl.BinAux{Op: rtl.BinMul}})
	o.Ret = dst

	out, err := LowerMultiplyToShift{}.Run(o)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	aux, ok := out.Ops[0].Aux.(rtl.BinAux)
	if !ok || aux.Op != rtl.BinShl {
		t.Fatalf("expected Mul by 4 to rewrite into Shl, got %+v", out.Ops[0])
	}
}

func TestCheckNoZeroResizeRejectsZeroLengthCast(t *testing.T) {
	o := rtl.NewObject(1, "f")
	arg := o.NewRegister(rtl.Unsigned(8))
	o.Args = []rtl.RegId{arg}
	dst := o.NewRegister(rtl.Unsigned(0))
	o.Append(rtl.Inst{Op: rtl.OpCast, Dst: dst, Args: []rtl.Operand{rtl.RegOperand(arg)}, Aux: rtl.CastAux{Len: 0}})
	o.Ret = dst

	if _, err := (CheckNoZeroResize{}).Run(o); err == nil {
		t.Fatalf("expected a zero-length Cast to be rejected")
	}
}

func TestStripEmptyArgsFromConcat(t *testing.T) {
	o := rtl.NewObject(1, "f")
	arg := o.NewRegister(rtl.Unsigned(8))
	o.Args = []rtl.RegId{arg}
	empty := o.NewRegister(rtl.Unsigned(0))
	dst := o.NewRegister(rtl.Unsigned(8))
	o.Append(rtl.Inst{Op: rtl.OpConcat, Dst: dst, Args: []rtl.Operand{rtl.RegOperand(empty), rtl.RegOperand(arg)}})
	o.Ret = dst

	out, err := StripEmptyArgsFromConcat{}.Run(o)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Ops[0].Args) != 1 || out.Ops[0].Args[0].Reg != arg {
		t.Fatalf("expected the zero-width operand to be stripped, got %+v", out.Ops[0].Args)
	}
}

func TestPipelineRunsFullOrderWithoutError(t *testing.T) {
	o := rtl.NewObject(1, "f")
	arg := o.NewRegister(rtl.Unsigned(8))
	o.Args = []rtl.RegId{arg}
	four := o.InternLiteral(rtl.Unsigned(8), big.NewInt(4))
	dst := o.NewRegister(rtl.Unsigned(8))
	o.Append(rtl.Inst{Op: rtl.OpBinary, Dst: dst, Args: []rtl.Operand{rtl.RegOperand(arg), rtl.LitOperand(four)}, Aux: rtl.BinAux{Op: rtl.BinMul}})
	o.Ret = dst

	if _, err := rtl.RunOnce(o, Pipeline()); err != nil {
		t.Fatalf("RunOnce(Pipeline()): %v", err)
	}
}
