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

func evalBin(op ntl.BinOp, a, b ntl.BitValue) ntl.BitValue {
	switch op {
	case ntl.BinAnd:
		if a == ntl.Bit0 || b == ntl.Bit0 {
			return ntl.Bit0
		}
		if a == ntl.BitX || b == ntl.BitX {
			return ntl.BitX
		}
		return ntl.Bit1
	case ntl.BinOr:
		if a == ntl.Bit1 || b == ntl.Bit1 {
			return ntl.Bit1
		}
		if a == ntl.BitX || b == ntl.BitX {
			return ntl.BitX
		}
		return ntl.Bit0
	case ntl.BinXor:
		if a == ntl.BitX || b == ntl.BitX {
			return ntl.BitX
		}
		if a == b {
			return ntl.Bit0
		}
		return ntl.Bit1
	case ntl.BinXnor:
		if a == ntl.BitX || b == ntl.BitX {
			return ntl.BitX
		}
		if a == b {
			return ntl.Bit1
		}
		return ntl.Bit0
	}
	return ntl.BitX
}

func evalNot(a ntl.BitValue) ntl.BitValue {
	switch a {
	case ntl.Bit0:
		return ntl.Bit1
	case ntl.Bit1:
		return ntl.Bit0
	}
	return ntl.BitX
}

func evalReduce(op ntl.UnOp, vals []ntl.BitValue) ntl.BitValue {
	switch op {
	case ntl.UnAny:
		sawX := false
		for _, v := range vals {
			if v == ntl.Bit1 {
				return ntl.Bit1
			}
			if v == ntl.BitX {
				sawX = true
			}
		}
		if sawX {
			return ntl.BitX
		}
		return ntl.Bit0
	case ntl.UnAll:
		sawX := false
		for _, v := range vals {
			if v == ntl.Bit0 {
				return ntl.Bit0
			}
			if v == ntl.BitX {
				sawX = true
			}
		}
		if sawX {
			return ntl.BitX
		}
		return ntl.Bit1
	case ntl.UnXorReduce:
		parity := ntl.Bit0
		for _, v := range vals {
			if v == ntl.BitX {
				return ntl.BitX
			}
			parity = evalBin(ntl.BinXor, parity, v)
		}
		return parity
	}
	return ntl.BitX
}

func assignConst(inst ntl.Inst, v ntl.BitValue) ntl.Inst {
	return ntl.Inst{Op: ntl.OpAssign, Dst: inst.Dst, Args: []ntl.Wire{ntl.ConstWire(v)}, Loc: inst.Loc}
}

// ConstantPropagation folds any Binary or Unary op whose operands are all
// constant wires into a literal Assign.
type ConstantPropagation struct{}

func (ConstantPropagation) Description() string {
	return "fold gates with all-constant operands into literal Assigns"
}

func (ConstantPropagation) Run(o *ntl.Object) (*ntl.Object, *diag.Error) {
	for i, inst := range o.Ops {
		switch inst.Op {
		case ntl.OpBinary:
			a, b := inst.Args[0], inst.Args[1]
			if !a.IsConst() || !b.IsConst() {
				continue
			}
			aux := inst.Aux.(ntl.BinAux)
			o.Ops[i] = assignConst(inst, evalBin(aux.Op, a.Const, b.Const))
		case ntl.OpUnary:
			allConst := true
			vals := make([]ntl.BitValue, len(inst.Args))
			for j, a := range inst.Args {
				if !a.IsConst() {
					allConst = false
					break
				}
				vals[j] = a.Const
			}
			if !allConst {
				continue
			}
			aux := inst.Aux.(ntl.UnAux)
			if aux.Op == ntl.UnNot {
				o.Ops[i] = assignConst(inst, evalNot(vals[0]))
				continue
			}
			o.Ops[i] = assignConst(inst, evalReduce(aux.Op, vals))
		}
	}
	return o, nil
}

// LowerBitwiseOpWithConstant applies identity/absorption simplifications
// when exactly one operand of a two-input gate is constant.
type LowerBitwiseOpWithConstant struct{}

func (LowerBitwiseOpWithConstant) Description() string {
	return "apply absorption/identity rules when one Binary operand is constant"
}

func (LowerBitwiseOpWithConstant) Run(o *ntl.Object) (*ntl.Object, *diag.Error) {
	for i, inst := range o.Ops {
		if inst.Op != ntl.OpBinary {
			continue
		}
		a, b := inst.Args[0], inst.Args[1]
		var lit ntl.Wire
		var other ntl.Wire
		switch {
		case a.IsConst() && !b.IsConst():
			lit, other = a, b
		case b.IsConst() && !a.IsConst():
			lit, other = b, a
		default:
			continue
		}
		aux := inst.Aux.(ntl.BinAux)
		switch aux.Op {
		case ntl.BinAnd:
			if lit.Const == ntl.Bit0 {
				o.Ops[i] = assignConst(inst, ntl.Bit0)
			} else if lit.Const == ntl.Bit1 {
				o.Ops[i] = ntl.Inst{Op: ntl.OpAssign, Dst: inst.Dst, Args: []ntl.Wire{other}, Loc: inst.Loc}
			}
		case ntl.BinOr:
			if lit.Const == ntl.Bit1 {
				o.Ops[i] = assignConst(inst, ntl.Bit1)
			} else if lit.Const == ntl.Bit0 {
				o.Ops[i] = ntl.Inst{Op: ntl.OpAssign, Dst: inst.Dst, Args: []ntl.Wire{other}, Loc: inst.Loc}
			}
		case ntl.BinXor:
			if lit.Const == ntl.Bit0 {
				o.Ops[i] = ntl.Inst{Op: ntl.OpAssign, Dst: inst.Dst, Args: []ntl.Wire{other}, Loc: inst.Loc}
			} else if lit.Const == ntl.Bit1 {
				o.Ops[i] = ntl.Inst{Op: ntl.OpUnary, Dst: inst.Dst, Args: []ntl.Wire{other}, Aux: ntl.UnAux{Op: ntl.UnNot}, Loc: inst.Loc}
			}
		case ntl.BinXnor:
			if lit.Const == ntl.Bit1 {
				o.Ops[i] = ntl.Inst{Op: ntl.OpAssign, Dst: inst.Dst, Args: []ntl.Wire{other}, Loc: inst.Loc}
			} else if lit.Const == ntl.Bit0 {
				o.Ops[i] = ntl.Inst{Op: ntl.OpUnary, Dst: inst.Dst, Args: []ntl.Wire{other}, Aux: ntl.UnAux{Op: ntl.UnNot}, Loc: inst.Loc}
			}
		}
	}
	return o, nil
}

// LowerAnyAll rewrites a single-wire Any/All/XorReduce into a plain Assign
// of its one operand — folding over one element is always an identity.
type LowerAnyAll struct{}

func (LowerAnyAll) Description() string {
	return "rewrite a single-operand reduction into Assign"
}

func (LowerAnyAll) Run(o *ntl.Object) (*ntl.Object, *diag.Error) {
	for i, inst := range o.Ops {
		if inst.Op != ntl.OpUnary {
			continue
		}
		aux := inst.Aux.(ntl.UnAux)
		if aux.Op == ntl.UnNot || len(inst.Args) != 1 {
			continue
		}
		o.Ops[i] = ntl.Inst{Op: ntl.OpAssign, Dst: inst.Dst, Args: inst.Args, Loc: inst.Loc}
	}
	return o, nil
}
