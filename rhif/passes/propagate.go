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

	"gatecore/diag"
	"gatecore/rhif"
)

// PropagateLiterals substitutes l for every read of r when it finds an
// Assign(r, l) with r a register and l a literal (§4.3 item 5). This is
// copy propagation through the register, not arithmetic — folding
// Binary/Unary/Cast ops whose operands happen to be literals is
// FoldConstantExprs's job, run after this pass so it sees the literals
// this one just substituted in. The candidate-producing Assign itself is
// left in place even though it's now dead: RemoveUnusedRegisters deletes
// it once it sees nothing reads r anymore, on the same fixed-point loop
// this pass runs in. This pass only drops the degenerate identity
// Assign(x, x) a substitution can produce — cleanup, not the point of it.
type PropagateLiterals struct{}

func (PropagateLiterals) Description() string {
	return "substitute literals for register reads"
}

func (PropagateLiterals) Run(o *rhif.Object) (*rhif.Object, *diag.Error) {
	candidates := map[rhif.SlotId]rhif.SlotId{}
	for _, inst := range o.Ops {
		if inst.Op != rhif.OpAssign || len(inst.Args) != 1 {
			continue
		}
		if o.Slots[inst.Dst].Tag == rhif.SlotRegister && o.IsLiteral(inst.Args[0]) {
			candidates[inst.Dst] = inst.Args[0]
		}
	}
	if len(candidates) == 0 {
		return o, nil
	}

	for i := range o.Ops {
		o.Ops[i].VisitArgsMut(func(arg *rhif.SlotId) {
			if lit, ok := candidates[*arg]; ok {
				*arg = lit
			}
		})
	}

	out := o.Ops[:0]
	for _, inst := range o.Ops {
		if inst.Op == rhif.OpAssign && len(inst.Args) == 1 && inst.Args[0] == inst.Dst {
			continue
		}
		out = append(out, inst)
	}
	o.Ops = out
	return o, nil
}

// FoldConstantExprs constant-folds Binary/Unary/Cast opcodes whose operands
// are all literals, replacing the Op with an Assign from the folded literal.
// Arithmetic here is ordinary big.Int math used only to compute the folded
// *value*; the bit-precise semantics (wraparound, signedness) are re-applied
// by masking the result to the opcode's declared width — genuine gate-level
// bit arithmetic remains NTL's ConstantPropagation's job, not this pass's.
type FoldConstantExprs struct{}

func (FoldConstantExprs) Description() string {
	return "fold Binary/Unary/Cast opcodes whose operands are all literals"
}

func (FoldConstantExprs) Run(o *rhif.Object) (*rhif.Object, *diag.Error) {
	for i, inst := range o.Ops {
		switch inst.Op {
		case rhif.OpBinary:
			folded, ok := foldBinary(o, inst)
			if ok {
				o.Ops[i] = folded
			}
		case rhif.OpUnary:
			folded, ok := foldUnary(o, inst)
			if ok {
				o.Ops[i] = folded
			}
		case rhif.OpCast:
			folded, ok := foldCast(o, inst)
			if ok {
				o.Ops[i] = folded
			}
		}
	}
	return o, nil
}

func foldBinary(o *rhif.Object, inst rhif.Inst) (rhif.Inst, bool) {
	if len(inst.Args) != 2 || !o.IsLiteral(inst.Args[0]) || !o.IsLiteral(inst.Args[1]) {
		return inst, false
	}
	aux, ok := inst.Aux.(rhif.BinAux)
	if !ok {
		return inst, false
	}
	l := o.Slots[inst.Args[0]].Value
	r := o.Slots[inst.Args[1]].Value
	dstKind := o.KindOf(inst.Dst)
	width := dstKind.BitWidth()
	var v big.Int
	switch aux.Op {
	case rhif.BinAdd:
		v.Add(l, r)
	case rhif.BinSub:
		v.Sub(l, r)
	case rhif.BinMul:
		v.Mul(l, r)
	case rhif.BinAnd:
		v.And(l, r)
	case rhif.BinOr:
		v.Or(l, r)
	case rhif.BinXor:
		v.Xor(l, r)
	case rhif.BinShl:
		v.Lsh(l, uint(r.Int64()))
	case rhif.BinShr:
		v.Rsh(l, uint(r.Int64()))
	case rhif.BinEq:
		v.SetInt64(boolInt(l.Cmp(r) == 0))
	case rhif.BinNe:
		v.SetInt64(boolInt(l.Cmp(r) != 0))
	case rhif.BinLt:
		v.SetInt64(boolInt(l.Cmp(r) < 0))
	case rhif.BinLe:
		v.SetInt64(boolInt(l.Cmp(r) <= 0))
	case rhif.BinGt:
		v.SetInt64(boolInt(l.Cmp(r) > 0))
	case rhif.BinGe:
		v.SetInt64(boolInt(l.Cmp(r) >= 0))
	default:
		return inst, false
	}
	if width > 0 && v.BitLen() > width {
		mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width)), big.NewInt(1))
		v.And(&v, mask)
	}
	litId := o.InternLiteral(dstKind, &v)
	return rhif.Inst{Op: rhif.OpAssign, Dst: inst.Dst, Args: []rhif.SlotId{litId}, Loc: inst.Loc}, true
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func foldUnary(o *rhif.Object, inst rhif.Inst) (rhif.Inst, bool) {
	if len(inst.Args) != 1 || !o.IsLiteral(inst.Args[0]) {
		return inst, false
	}
	aux, ok := inst.Aux.(rhif.UnAux)
	if !ok {
		return inst, false
	}
	arg := o.Slots[inst.Args[0]].Value
	dstKind := o.KindOf(inst.Dst)
	width := dstKind.BitWidth()
	var v big.Int
	switch aux.Op {
	case rhif.UnNeg:
		v.Neg(arg)
	case rhif.UnNot:
		mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width)), big.NewInt(1))
		v.Xor(arg, mask)
	default:
		return inst, false
	}
	if width > 0 {
		mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width)), big.NewInt(1))
		v.And(&v, mask)
		if v.Sign() < 0 {
			v.Add(&v, new(big.Int).Lsh(big.NewInt(1), uint(width)))
		}
	}
	litId := o.InternLiteral(dstKind, &v)
	return rhif.Inst{Op: rhif.OpAssign, Dst: inst.Dst, Args: []rhif.SlotId{litId}, Loc: inst.Loc}, true
}

func foldCast(o *rhif.Object, inst rhif.Inst) (rhif.Inst, bool) {
	if len(inst.Args) != 1 || !o.IsLiteral(inst.Args[0]) {
		return inst, false
	}
	dstKind := o.KindOf(inst.Dst)
	width := dstKind.BitWidth()
	arg := o.Slots[inst.Args[0]].Value
	v := new(big.Int).Set(arg)
	if width > 0 {
		mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width)), big.NewInt(1))
		v.And(v, mask)
	}
	litId := o.InternLiteral(dstKind, v)
	return rhif.Inst{Op: rhif.OpAssign, Dst: inst.Dst, Args: []rhif.SlotId{litId}, Loc: inst.Loc}, true
}

// RemoveUnneededMuxes rewrites Select(cond, a, b) to an Assign when cond is a
// literal, or when a == b regardless of cond.
type RemoveUnneededMuxes struct{}

func (RemoveUnneededMuxes) Description() string {
	return "rewrite Select to Assign when the condition is constant or both arms match"
}

func (RemoveUnneededMuxes) Run(o *rhif.Object) (*rhif.Object, *diag.Error) {
	for i, inst := range o.Ops {
		if inst.Op != rhif.OpSelect || len(inst.Args) != 3 {
			continue
		}
		cond, then, els := inst.Args[0], inst.Args[1], inst.Args[2]
		if then == els {
			o.Ops[i] = rhif.Inst{Op: rhif.OpAssign, Dst: inst.Dst, Args: []rhif.SlotId{then}, Loc: inst.Loc}
			continue
		}
		if !o.IsLiteral(cond) {
			continue
		}
		chosen := els
		if o.Slots[cond].Value.Sign() != 0 {
			chosen = then
		}
		o.Ops[i] = rhif.Inst{Op: rhif.OpAssign, Dst: inst.Dst, Args: []rhif.SlotId{chosen}, Loc: inst.Loc}
	}
	return o, nil
}

// RemoveEmptyCases rewrites a Case or Select whose result slot has Empty
// kind into a Noop — there is nothing a zero-width value could carry, so
// the branch structure is pure dead weight once its type is known.
type RemoveEmptyCases struct{}

func (RemoveEmptyCases) Description() string {
	return "rewrite a Case/Select with an Empty-kind result into Noop"
}

func (RemoveEmptyCases) Run(o *rhif.Object) (*rhif.Object, *diag.Error) {
	for i, inst := range o.Ops {
		if inst.Op != rhif.OpCase && inst.Op != rhif.OpSelect {
			continue
		}
		if !o.KindOf(inst.Dst).IsEmpty() {
			continue
		}
		o.Ops[i] = rhif.Inst{Op: rhif.OpNoop, Dst: inst.Dst, Loc: inst.Loc}
	}
	return o, nil
}

// RemoveUselessCasts rewrites Cast(arg) to an Assign when arg's Kind already
// matches the cast's declared signedness and width exactly.
type RemoveUselessCasts struct{}

func (RemoveUselessCasts) Description() string {
	return "drop a Cast whose argument already has the target width and signedness"
}

func (RemoveUselessCasts) Run(o *rhif.Object) (*rhif.Object, *diag.Error) {
	for i, inst := range o.Ops {
		if inst.Op != rhif.OpCast || len(inst.Args) != 1 {
			continue
		}
		aux, ok := inst.Aux.(rhif.CastAux)
		if !ok {
			continue
		}
		argKind := o.KindOf(inst.Args[0])
		dstKind := o.KindOf(inst.Dst)
		if argKind.BitWidth() == aux.Len && argKind.Tag == dstKind.Tag {
			o.Ops[i] = rhif.Inst{Op: rhif.OpAssign, Dst: inst.Dst, Args: []rhif.SlotId{inst.Args[0]}, Loc: inst.Loc}
		}
	}
	return o, nil
}
