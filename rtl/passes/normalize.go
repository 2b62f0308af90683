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

// Package passes implements the §4.5 RTL peephole passes, each run exactly
// once in the fixed order given by Pipeline.
package passes

import (
	"math/big"

	"gatecore/diag"
	"gatecore/rtl"
)

// CheckNoZeroResize rejects a Cast whose target length is zero.
type CheckNoZeroResize struct{}

func (CheckNoZeroResize) Description() string { return "reject Cast{len=0} as an ICE" }

func (CheckNoZeroResize) Run(o *rtl.Object) (*rtl.Object, *diag.Error) {
	for _, inst := range o.Ops {
		if inst.Op != rtl.OpCast {
			continue
		}
		if aux, ok := inst.Aux.(rtl.CastAux); ok && aux.Len == 0 {
			return nil, diag.ICE("rtl: zero-length Cast")
		}
	}
	return o, nil
}

// LowerSingleConcatToCopy rewrites a Concat with exactly one operand into
// an Assign.
type LowerSingleConcatToCopy struct{}

func (LowerSingleConcatToCopy) Description() string { return "rewrite a one-operand Concat to Assign" }

func (LowerSingleConcatToCopy) Run(o *rtl.Object) (*rtl.Object, *diag.Error) {
	for i, inst := range o.Ops {
		if inst.Op == rtl.OpConcat && len(inst.Args) == 1 {
			o.Ops[i] = rtl.Inst{Op: rtl.OpAssign, Dst: inst.Dst, Args: inst.Args, Loc: inst.Loc}
		}
	}
	return o, nil
}

// StripEmptyArgsFromConcat removes zero-width operands from a Concat's
// argument list — they contribute no bits to the result.
type StripEmptyArgsFromConcat struct{}

func (StripEmptyArgsFromConcat) Description() string { return "drop zero-width operands from Concat" }

func (StripEmptyArgsFromConcat) Run(o *rtl.Object) (*rtl.Object, *diag.Error) {
	for i, inst := range o.Ops {
		if inst.Op != rtl.OpConcat {
			continue
		}
		kept := make([]rtl.Operand, 0, len(inst.Args))
		for _, a := range inst.Args {
			if o.KindOf(a).Width > 0 {
				kept = append(kept, a)
			}
		}
		o.Ops[i].Args = kept
	}
	return o, nil
}

// LowerShiftsByZeroToCopy rewrites a Binary Shl/Shr whose shift amount is
// the literal zero into an Assign of the left-hand operand.
type LowerShiftsByZeroToCopy struct{}

func (LowerShiftsByZeroToCopy) Description() string { return "rewrite a shift-by-zero into Assign" }

func (LowerShiftsByZeroToCopy) Run(o *rtl.Object) (*rtl.Object, *diag.Error) {
	for i, inst := range o.Ops {
		if inst.Op != rtl.OpBinary {
			continue
		}
		aux, ok := inst.Aux.(rtl.BinAux)
		if !ok || (aux.Op != rtl.BinShl && aux.Op != rtl.BinShr) {
			continue
		}
		if lit, isLit := literalValue(o, inst.Args[1]); isLit && lit.Sign() == 0 {
			o.Ops[i] = rtl.Inst{Op: rtl.OpAssign, Dst: inst.Dst, Args: []rtl.Operand{inst.Args[0]}, Loc: inst.Loc}
		}
	}
	return o, nil
}

func literalValue(o *rtl.Object, op rtl.Operand) (*big.Int, bool) {
	if op.Tag != rtl.OperandLiteral {
		return nil, false
	}
	return o.Literals[op.Lit].Value, true
}

func isPowerOfTwo(v *big.Int) bool {
	if v.Sign() <= 0 {
		return false
	}
	minusOne := new(big.Int).Sub(v, big.NewInt(1))
	return new(big.Int).And(v, minusOne).Sign() == 0
}

// LowerShiftByConstant decomposes a Binary Shl/Shr by a literal shift
// amount into a static Concat+Index pair, so later NTL lowering never has
// to synthesize a barrel shifter.
type LowerShiftByConstant struct{}

func (LowerShiftByConstant) Description() string {
	return "decompose a constant-amount shift into static Concat+Index"
}

func (LowerShiftByConstant) Run(o *rtl.Object) (*rtl.Object, *diag.Error) {
	for i, inst := range o.Ops {
		if inst.Op != rtl.OpBinary {
			continue
		}
		aux, ok := inst.Aux.(rtl.BinAux)
		if !ok || (aux.Op != rtl.BinShl && aux.Op != rtl.BinShr) {
			continue
		}
		lit, isLit := literalValue(o, inst.Args[1])
		if !isLit || lit.Sign() == 0 {
			continue
		}
		amount := int(lit.Int64())
		width := o.RegKindOf(inst.Dst).Width
		arg := inst.Args[0]
		if amount >= width {
			zero := o.InternLiteral(rtl.Unsigned(width), big.NewInt(0))
			o.Ops[i] = rtl.Inst{Op: rtl.OpAssign, Dst: inst.Dst, Args: []rtl.Operand{rtl.LitOperand(zero)}, Loc: inst.Loc}
			continue
		}
		pad := o.InternLiteral(rtl.Unsigned(amount), big.NewInt(0))
		var concatArgs []rtl.Operand
		if aux.Op == rtl.BinShl {
			hi := o.NewRegister(rtl.Unsigned(width - amount))
			o.Ops = append(o.Ops, rtl.Inst{Op: rtl.OpIndex, Dst: hi, Args: []rtl.Operand{arg}, Aux: rtl.IndexAux{Range: rtl.BitRange{Lo: 0, Len: width - amount}}, Loc: inst.Loc})
			concatArgs = []rtl.Operand{rtl.LitOperand(pad), rtl.RegOperand(hi)}
		} else {
			lo := o.NewRegister(rtl.Unsigned(width - amount))
			o.Ops = append(o.Ops, rtl.Inst{Op: rtl.OpIndex, Dst: lo, Args: []rtl.Operand{arg}, Aux: rtl.IndexAux{Range: rtl.BitRange{Lo: amount, Len: width - amount}}, Loc: inst.Loc})
			concatArgs = []rtl.Operand{rtl.RegOperand(lo), rtl.LitOperand(pad)}
		}
		o.Ops[i] = rtl.Inst{Op: rtl.OpConcat, Dst: inst.Dst, Args: concatArgs, Loc: inst.Loc}
	}
	return o, nil
}

// LowerMultiplyToShift rewrites Binary Mul by a power-of-two literal into
// Binary Shl by the corresponding shift amount.
type LowerMultiplyToShift struct{}

func (LowerMultiplyToShift) Description() string {
	return "rewrite multiply-by-power-of-two-literal into a shift"
}

func (LowerMultiplyToShift) Run(o *rtl.Object) (*rtl.Object, *diag.Error) {
	for i, inst := range o.Ops {
		if inst.Op != rtl.OpBinary {
			continue
		}
		aux, ok := inst.Aux.(rtl.BinAux)
		if !ok || aux.Op != rtl.BinMul {
			continue
		}
		for argIdx := 0; argIdx < 2; argIdx++ {
			lit, isLit := literalValue(o, inst.Args[argIdx])
			if !isLit || lit.Sign() <= 0 || !isPowerOfTwo(lit) {
				continue
			}
			shiftAmount := lit.BitLen() - 1
			other := inst.Args[1-argIdx]
			shiftWidth := o.RegKindOf(inst.Dst).Width
			shiftLit := o.InternLiteral(rtl.Unsigned(shiftWidth), big.NewInt(int64(shiftAmount)))
			o.Ops[i] = rtl.Inst{Op: rtl.OpBinary, Dst: inst.Dst, Args: []rtl.Operand{other, rtl.LitOperand(shiftLit)}, Aux: rtl.BinAux{Op: rtl.BinShl}, Loc: inst.Loc}
			break
		}
	}
	return o, nil
}
