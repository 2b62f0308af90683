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
package ntl

import (
	"math/big"
	"testing"

	"gatecore/rtl"
)

// evalLowered interprets a lowered NTL object given seed values for its
// Inputs, evaluating Assign/Binary/Unary/Select/Case ops in program order —
// valid because Lower always emits an operand's defining op before any op
// that reads it.
func evalLowered(o *Object, seeds ...map[RegId]BitValue) map[RegId]BitValue {
	vals := map[RegId]BitValue{}
	for _, seed := range seeds {
		for k, v := range seed {
			vals[k] = v
		}
	}
	for _, inst := range o.Ops {
		switch inst.Op {
		case OpComment:
			continue
		case OpAssign:
			vals[inst.Dst] = wireVal(vals, inst.Args[0])
		case OpBinary:
			aux := inst.Aux.(BinAux)
			vals[inst.Dst] = evalBinLocal(aux.Op, wireVal(vals, inst.Args[0]), wireVal(vals, inst.Args[1]))
		case OpUnary:
			aux := inst.Aux.(UnAux)
			switch aux.Op {
			case UnNot:
				v := wireVal(vals, inst.Args[0])
				vals[inst.Dst] = notLocalVal(v)
			default:
				allVals := make([]BitValue, len(inst.Args))
				for i, a := range inst.Args {
					allVals[i] = wireVal(vals, a)
				}
				vals[inst.Dst] = reduceLocal(aux.Op, allVals)
			}
		case OpSelect:
			c := wireVal(vals, inst.Args[0])
			if c == Bit1 {
				vals[inst.Dst] = wireVal(vals, inst.Args[1])
			} else {
				vals[inst.Dst] = wireVal(vals, inst.Args[2])
			}
		case OpCase:
			aux := inst.Aux.(CaseAux)
			dvals := make([]BitValue, len(aux.Discriminant))
			for i, d := range aux.Discriminant {
				dvals[i] = wireVal(vals, d)
			}
			vals[inst.Dst] = wireVal(vals, aux.Entries[len(aux.Entries)-1].Value)
			for _, e := range aux.Entries {
				if e.Wildcard || e.Pattern == nil {
					continue
				}
				match := true
				for i, p := range e.Pattern {
					if p != dvals[i] {
						match = false
						break
					}
				}
				if match {
					vals[inst.Dst] = wireVal(vals, e.Value)
					break
				}
			}
		}
	}
	return vals
}

func notLocalVal(v BitValue) BitValue {
	switch v {
	case Bit0:
		return Bit1
	case Bit1:
		return Bit0
	}
	return BitX
}

func reduceLocal(op UnOp, vals []BitValue) BitValue {
	switch op {
	case UnAny:
		for _, v := range vals {
			if v == Bit1 {
				return Bit1
			}
		}
		return Bit0
	case UnAll:
		for _, v := range vals {
			if v == Bit0 {
				return Bit0
			}
		}
		return Bit1
	case UnXorReduce:
		acc := Bit0
		for _, v := range vals {
			acc = evalBinLocal(BinXor, acc, v)
		}
		return acc
	}
	return BitX
}

func seedInputs(o *Object, argIdx int, v uint64) map[RegId]BitValue {
	seed := map[RegId]BitValue{}
	for i, w := range o.Inputs[argIdx] {
		if (v>>uint(i))&1 == 1 {
			seed[w.Reg] = Bit1
		} else {
			seed[w.Reg] = Bit0
		}
	}
	return seed
}

func buildBinaryKernel(op rtl.BinOp, width int) (*rtl.Object, rtl.RegId, rtl.RegId) {
	o := rtl.NewObject(1, "k")
	a := o.NewRegister(rtl.Unsigned(width))
	b := o.NewRegister(rtl.Unsigned(width))
	o.Args = []rtl.RegId{a, b}
	dst := o.NewRegister(rtl.Unsigned(width))
	o.Append(rtl.Inst{Op: rtl.OpBinary, Dst: dst, Args: []rtl.Operand{rtl.RegOperand(a), rtl.RegOperand(b)}, Aux: rtl.BinAux{Op: op}})
	o.Ret = dst
	return o, a, b
}

func TestLowerBinaryAdd(t *testing.T) {
	src, _, _ := buildBinaryKernel(rtl.BinAdd, 4)
	n, err := Lower(src)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	vals := evalLowered(n, seedInputs(n, 0, 3), seedInputs(n, 1, 5))
	if got := bitsToUint(n.Outputs, vals); got != 8 {
		t.Errorf("3+5 = %d, want 8", got)
	}
}

func TestLowerBinaryEq(t *testing.T) {
	o := rtl.NewObject(1, "eqk")
	a := o.NewRegister(rtl.Unsigned(4))
	b := o.NewRegister(rtl.Unsigned(4))
	o.Args = []rtl.RegId{a, b}
	dst := o.NewRegister(rtl.Unsigned(1))
	o.Append(rtl.Inst{Op: rtl.OpBinary, Dst: dst, Args: []rtl.Operand{rtl.RegOperand(a), rtl.RegOperand(b)}, Aux: rtl.BinAux{Op: rtl.BinEq}})
	o.Ret = dst

	n, err := Lower(o)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	vals := evalLowered(n, seedInputs(n, 0, 7), seedInputs(n, 1, 7))
	if got := bitsToUint(n.Outputs, vals); got != 1 {
		t.Errorf("eq(7,7) = %d, want 1", got)
	}
	vals2 := evalLowered(n, seedInputs(n, 0, 7), seedInputs(n, 1, 6))
	if got := bitsToUint(n.Outputs, vals2); got != 0 {
		t.Errorf("eq(7,6) = %d, want 0", got)
	}
}

func TestLowerCast(t *testing.T) {
	o := rtl.NewObject(1, "castk")
	a := o.NewRegister(rtl.Signed(4))
	o.Args = []rtl.RegId{a}
	dst := o.NewRegister(rtl.Signed(8))
	o.Append(rtl.Inst{Op: rtl.OpCast, Dst: dst, Args: []rtl.Operand{rtl.RegOperand(a)}, Aux: rtl.CastAux{Signed: true, Len: 8}})
	o.Ret = dst

	n, err := Lower(o)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	// -1 in 4 bits is 0b1111; sign-extended to 8 bits it should be 0xFF.
	vals := evalLowered(n, seedInputs(n, 0, 0xF))
	if got := bitsToUint(n.Outputs, vals); got != 0xFF {
		t.Errorf("sign-extend(-1) = %#x, want 0xff", got)
	}
}

func TestLowerCase(t *testing.T) {
	o := rtl.NewObject(1, "casek")
	sel := o.NewRegister(rtl.Unsigned(2))
	o.Args = []rtl.RegId{sel}
	dst := o.NewRegister(rtl.Unsigned(8))
	lit0 := o.InternLiteral(rtl.Unsigned(8), big.NewInt(10))
	lit1 := o.InternLiteral(rtl.Unsigned(8), big.NewInt(11))
	litDefault := o.InternLiteral(rtl.Unsigned(8), big.NewInt(99))
	o.Append(rtl.Inst{
		Op:  rtl.OpCase,
		Dst: dst,
		Args: []rtl.Operand{rtl.RegOperand(sel)},
		Aux: rtl.CaseAux{Entries: []rtl.CaseEntry{
			{Pattern: big.NewInt(0), Value: rtl.LitOperand(lit0)},
			{Pattern: big.NewInt(1), Value: rtl.LitOperand(lit1)},
			{Pattern: nil, Value: rtl.LitOperand(litDefault)},
		}},
	})
	o.Ret = dst

	n, err := Lower(o)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	for sv, want := range map[uint64]uint64{0: 10, 1: 11, 2: 99, 3: 99} {
		vals := evalLowered(n, seedInputs(n, 0, sv))
		if got := bitsToUint(n.Outputs, vals); got != want {
			t.Errorf("case(%d) = %d, want %d", sv, got, want)
		}
	}
}
