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

	"gatecore/diag"
	"gatecore/rtl"
	"gatecore/sourcepool"
)

// lowering walks one rtl.Object and expands every register into a bit
// vector of fresh ntl registers — §4.6: "each RTL operand of width w
// expands into w wires."
type lowering struct {
	src  *rtl.Object
	dst  *Object
	bits map[rtl.RegId][]Wire
}

// Lower expands an RTL object into its bit-level NTL form.
func Lower(src *rtl.Object) (*Object, *diag.Error) {
	dst := NewObject(src.FunctionId, src.Name)
	l := &lowering{src: src, dst: dst, bits: map[rtl.RegId][]Wire{}}

	maxReg := rtl.RegId(-1)
	for r := range src.Regs {
		if r > maxReg {
			maxReg = r
		}
	}
	for r := rtl.RegId(0); r <= maxReg; r++ {
		k, ok := src.Regs[r]
		if !ok {
			continue
		}
		bits := make([]Wire, k.Width)
		for i := range bits {
			bits[i] = RegWire(dst.NewDataRegister())
		}
		l.bits[r] = bits
	}

	dst.Inputs = make([][]Wire, len(src.Args))
	for i, a := range src.Args {
		dst.Inputs[i] = l.bits[a]
	}

	for _, inst := range src.Ops {
		if err := l.lowerInst(inst); err != nil {
			return nil, err
		}
	}
	dst.Outputs = l.bits[src.Ret]
	return dst, nil
}

func bitsOfBigInt(v *big.Int, width int) []Wire {
	mod := new(big.Int).Lsh(big.NewInt(1), uint(width))
	t := new(big.Int).Mod(v, mod)
	bits := make([]Wire, width)
	for i := 0; i < width; i++ {
		if t.Bit(i) == 1 {
			bits[i] = ConstWire(Bit1)
		} else {
			bits[i] = ConstWire(Bit0)
		}
	}
	return bits
}

func bitValuesOfBig(v *big.Int, width int) []BitValue {
	if v == nil {
		return nil
	}
	bits := make([]BitValue, width)
	for i := 0; i < width; i++ {
		if v.Bit(i) == 1 {
			bits[i] = Bit1
		} else {
			bits[i] = Bit0
		}
	}
	return bits
}

func (l *lowering) operandBits(op rtl.Operand) []Wire {
	if op.Tag == rtl.OperandLiteral {
		lit := l.src.Literals[op.Lit]
		return bitsOfBigInt(lit.Value, lit.Kind.Width)
	}
	return l.bits[op.Reg]
}

func (l *lowering) assign(dstBits, srcBits []Wire, loc sourcepool.SourceLocation) {
	for i, d := range dstBits {
		l.dst.Append(Inst{Op: OpAssign, Dst: d.Reg, Args: []Wire{srcBits[i]}, Loc: loc})
	}
}

func (l *lowering) eqConstBig(s *synth, bits []Wire, pattern *big.Int) Wire {
	if pattern == nil {
		return s.one()
	}
	pairs := make([]Wire, len(bits))
	for i, b := range bits {
		bv := Bit0
		if pattern.Bit(i) == 1 {
			bv = Bit1
		}
		pairs[i] = s.bin(BinXnor, b, ConstWire(bv))
	}
	return s.andReduce(pairs)
}

func (l *lowering) eqConstInt(s *synth, bits []Wire, v int) Wire {
	return l.eqConstBig(s, bits, big.NewInt(int64(v)))
}

func (l *lowering) lowerInst(inst rtl.Inst) *diag.Error {
	s := &synth{o: l.dst, loc: inst.Loc}
	dstBits, ok := l.bits[inst.Dst]
	if !ok {
		return diag.ICE("ntl: lowering instruction targets an undeclared register")
	}
	width := len(dstBits)

	switch inst.Op {
	case rtl.OpComment:
		aux := inst.Aux.(rtl.CommentAux)
		var onto RegId
		if width > 0 {
			onto = dstBits[0].Reg
		}
		l.dst.Append(Inst{Op: OpComment, Dst: onto, Aux: CommentAux{Text: aux.Text}, Loc: inst.Loc})
		return nil

	case rtl.OpAssign:
		l.assign(dstBits, l.operandBits(inst.Args[0]), inst.Loc)
		return nil

	case rtl.OpConcat:
		flat := make([]Wire, 0, width)
		for _, a := range inst.Args {
			flat = append(flat, l.operandBits(a)...)
		}
		l.assign(dstBits, flat, inst.Loc)
		return nil

	case rtl.OpIndex:
		aux := inst.Aux.(rtl.IndexAux)
		src := l.operandBits(inst.Args[0])
		l.assign(dstBits, src[aux.Range.Lo:aux.Range.Lo+aux.Range.Len], inst.Loc)
		return nil

	case rtl.OpSplice:
		aux := inst.Aux.(rtl.SpliceAux)
		base := l.operandBits(inst.Args[0])
		value := l.operandBits(inst.Args[1])
		result := append([]Wire{}, base...)
		copy(result[aux.Range.Lo:aux.Range.Lo+aux.Range.Len], value)
		l.assign(dstBits, result, inst.Loc)
		return nil

	case rtl.OpDynamicIndex:
		aux := inst.Aux.(rtl.DynamicIndexAux)
		base := l.operandBits(inst.Args[0])
		offset := l.operandBits(aux.Offset)
		w := aux.Len
		maxOffset := len(base) - w
		if maxOffset < 0 {
			maxOffset = 0
		}
		result := append([]Wire{}, base[maxOffset:maxOffset+w]...)
		for v := maxOffset - 1; v >= 0; v-- {
			cond := l.eqConstInt(s, offset, v)
			slice := base[v : v+w]
			next := make([]Wire, w)
			for k := range next {
				next[k] = s.emit(OpSelect, []Wire{cond, slice[k], result[k]}, nil)
			}
			result = next
		}
		l.assign(dstBits, result, inst.Loc)
		return nil

	case rtl.OpDynamicSplice:
		aux := inst.Aux.(rtl.DynamicSpliceAux)
		base := l.operandBits(inst.Args[0])
		value := l.operandBits(inst.Args[1])
		offset := l.operandBits(aux.Offset)
		baseWidth := len(base)
		maxOffset := baseWidth - aux.Len
		result := append([]Wire{}, base...)
		for v := 0; v <= maxOffset; v++ {
			cond := l.eqConstInt(s, offset, v)
			candidate := append([]Wire{}, base...)
			copy(candidate[v:v+aux.Len], value)
			next := make([]Wire, baseWidth)
			for k := range next {
				next[k] = s.emit(OpSelect, []Wire{cond, candidate[k], result[k]}, nil)
			}
			result = next
		}
		l.assign(dstBits, result, inst.Loc)
		return nil

	case rtl.OpCast:
		aux := inst.Aux.(rtl.CastAux)
		src := l.operandBits(inst.Args[0])
		srcKind := l.src.KindOf(inst.Args[0])
		result := make([]Wire, width)
		if width <= len(src) {
			copy(result, src[:width])
		} else {
			copy(result, src)
			pad := ConstWire(Bit0)
			if srcKind.Signed && len(src) > 0 {
				pad = src[len(src)-1]
			}
			for i := len(src); i < width; i++ {
				result[i] = pad
			}
		}
		_ = aux
		l.assign(dstBits, result, inst.Loc)
		return nil

	case rtl.OpSelect:
		cond := l.operandBits(inst.Args[0])[0]
		tBits := l.operandBits(inst.Args[1])
		fBits := l.operandBits(inst.Args[2])
		result := make([]Wire, width)
		for k := range result {
			result[k] = s.emit(OpSelect, []Wire{cond, tBits[k], fBits[k]}, nil)
		}
		l.assign(dstBits, result, inst.Loc)
		return nil

	case rtl.OpCase:
		aux := inst.Aux.(rtl.CaseAux)
		discriminant := l.operandBits(inst.Args[0])
		n := len(aux.Entries)
		if n == 0 {
			return diag.ICE("ntl: Case with no entries")
		}
		armBits := make([][]Wire, n)
		for i, e := range aux.Entries {
			armBits[i] = l.operandBits(e.Value)
		}
		for k := 0; k < width; k++ {
			entries := make([]CaseEntry, n)
			for i, e := range aux.Entries {
				entries[i] = CaseEntry{Pattern: bitValuesOfBig(e.Pattern, len(discriminant)), Wildcard: e.Pattern == nil, Value: armBits[i][k]}
			}
			l.dst.Append(Inst{Op: OpCase, Dst: dstBits[k].Reg, Aux: CaseAux{Discriminant: discriminant, Entries: entries}, Loc: inst.Loc})
		}
		return nil

	case rtl.OpUnary:
		return l.lowerUnary(s, inst, dstBits, width)

	case rtl.OpBinary:
		return l.lowerBinary(s, inst, dstBits, width)
	}
	return diag.ICE("ntl: unrecognized rtl opcode during lowering")
}

func (l *lowering) lowerUnary(s *synth, inst rtl.Inst, dstBits []Wire, width int) *diag.Error {
	aux := inst.Aux.(rtl.UnAux)
	a := l.operandBits(inst.Args[0])
	switch aux.Op {
	case rtl.UnNot:
		result := make([]Wire, width)
		for i := range result {
			result[i] = s.not(a[i])
		}
		l.assign(dstBits, result, inst.Loc)
	case rtl.UnNeg:
		wide := s.widen(a, width)
		one := make([]Wire, width)
		one[0] = s.one()
		for i := 1; i < width; i++ {
			one[i] = s.zero()
		}
		neg, _ := s.ripple(s.invertAll(wide), one, s.zero())
		l.assign(dstBits, neg, inst.Loc)
	case rtl.UnAny:
		result := s.orReduce(a)
		l.assign(dstBits, []Wire{result}, inst.Loc)
	default:
		return diag.ICE("ntl: unrecognized unary op during lowering")
	}
	return nil
}

func (l *lowering) lowerBinary(s *synth, inst rtl.Inst, dstBits []Wire, width int) *diag.Error {
	aux := inst.Aux.(rtl.BinAux)
	a := l.operandBits(inst.Args[0])
	b := l.operandBits(inst.Args[1])
	kind := l.src.KindOf(inst.Args[0])

	perBit := func(op BinOp) {
		result := make([]Wire, width)
		for i := range result {
			result[i] = s.bin(op, a[i], b[i])
		}
		l.assign(dstBits, result, inst.Loc)
	}

	switch aux.Op {
	case rtl.BinAnd:
		perBit(BinAnd)
	case rtl.BinOr:
		perBit(BinOr)
	case rtl.BinXor:
		perBit(BinXor)
	case rtl.BinAdd:
		l.assign(dstBits, s.addTruncated(a, b, width), inst.Loc)
	case rtl.BinSub:
		diff, _ := s.subtract(s.widen(a, width), s.widen(b, width))
		l.assign(dstBits, diff, inst.Loc)
	case rtl.BinMul:
		l.assign(dstBits, s.multiply(a, b, width), inst.Loc)
	case rtl.BinShl:
		l.assign(dstBits, l.barrelShift(s, a, b, width, true), inst.Loc)
	case rtl.BinShr:
		l.assign(dstBits, l.barrelShift(s, a, b, width, false), inst.Loc)
	case rtl.BinEq:
		l.assign(dstBits, []Wire{s.eq(a, b)}, inst.Loc)
	case rtl.BinNe:
		l.assign(dstBits, []Wire{s.ne(a, b)}, inst.Loc)
	case rtl.BinLt:
		l.assign(dstBits, []Wire{l.compareLt(s, a, b, kind.Signed)}, inst.Loc)
	case rtl.BinGe:
		l.assign(dstBits, []Wire{s.not(l.compareLt(s, a, b, kind.Signed))}, inst.Loc)
	case rtl.BinGt:
		l.assign(dstBits, []Wire{l.compareLt(s, b, a, kind.Signed)}, inst.Loc)
	case rtl.BinLe:
		l.assign(dstBits, []Wire{s.not(l.compareLt(s, b, a, kind.Signed))}, inst.Loc)
	default:
		return diag.ICE("ntl: unrecognized binary op during lowering")
	}
	return nil
}

func (l *lowering) compareLt(s *synth, a, b []Wire, signed bool) Wire {
	if signed {
		return s.lessThanSigned(a, b)
	}
	return s.lessThanUnsigned(a, b)
}

// barrelShift synthesizes a dynamic shift by decoding every possible shift
// amount the shift-amount operand could hold into a chain of Selects, the
// same keyed-decode technique §4.6 specifies for Case.
func (l *lowering) barrelShift(s *synth, a, shiftAmount []Wire, width int, left bool) []Wire {
	result := make([]Wire, width)
	for i := range result {
		result[i] = s.zero()
	}
	for v := width - 1; v >= 0; v-- {
		cond := l.eqConstInt(s, shiftAmount, v)
		candidate := make([]Wire, width)
		for k := range candidate {
			var srcIdx int
			if left {
				srcIdx = k - v
			} else {
				srcIdx = k + v
			}
			if srcIdx >= 0 && srcIdx < len(a) {
				candidate[k] = a[srcIdx]
			} else {
				candidate[k] = s.zero()
			}
		}
		next := make([]Wire, width)
		for k := range next {
			next[k] = s.emit(OpSelect, []Wire{cond, candidate[k], result[k]}, nil)
		}
		result = next
	}
	return result
}
