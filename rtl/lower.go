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
package rtl

import (
	"math/big"

	"gatecore/diag"
	"gatecore/kind"
	"gatecore/rhif"
	"gatecore/sourcepool"
)

// lowering holds the per-slot RTL operand map while walking one rhif.Object.
type lowering struct {
	src  *rhif.Object
	dst  *Object
	slot map[rhif.SlotId]Operand
}

func regKindOf(k kind.Kind) RegisterKind {
	return RegisterKind{Signed: k.Tag == kind.Signed, Width: k.BitWidth()}
}

// widthFor returns the number of bits needed to address n elements
// (minimum 1, so a single-element array still gets an addressable index).
func widthFor(n int) int {
	w := 1
	for (1 << uint(w)) < n {
		w++
	}
	return w
}

// Lower implements §4.4: every RHIF slot maps to one RTL operand whose
// width equals the slot's Kind's bit count; composite kinds are laid out
// LSB-first per Kind's own layout rules. A kernel handed to this lowerer
// must already have every Exec opcode inlined away — cross-kernel calls are
// a MIR/RHIF-stage concern this IR has no opcode for, so an unresolved
// OpExec here is an internal compiler error, not a user diagnostic.
func Lower(src *rhif.Object) (*Object, *diag.Error) {
	dst := NewObject(src.FunctionId, src.Name)
	l := &lowering{src: src, dst: dst, slot: make(map[rhif.SlotId]Operand)}

	for id, s := range src.Slots {
		rk := regKindOf(s.Kind)
		if s.Tag == rhif.SlotLiteral {
			l.slot[id] = LitOperand(dst.InternLiteral(rk, s.Value))
		} else {
			l.slot[id] = RegOperand(dst.NewRegister(rk))
		}
	}
	for _, a := range src.Args {
		dst.Args = append(dst.Args, l.slot[a].Reg)
	}
	for _, inst := range src.Ops {
		if err := l.lowerInst(inst); err != nil {
			return nil, err
		}
	}
	dst.Ret = l.slot[src.Ret].Reg
	return dst, nil
}

func (l *lowering) op(id rhif.SlotId) Operand { return l.slot[id] }

func (l *lowering) lowerInst(inst rhif.Inst) *diag.Error {
	dstReg := l.slot[inst.Dst].Reg
	loc := inst.Loc
	switch inst.Op {
	case rhif.OpAssign:
		l.dst.Append(Inst{Op: OpAssign, Dst: dstReg, Args: []Operand{l.op(inst.Args[0])}, Loc: loc})

	case rhif.OpBinary:
		aux := inst.Aux.(rhif.BinAux)
		l.dst.Append(Inst{Op: OpBinary, Dst: dstReg, Args: []Operand{l.op(inst.Args[0]), l.op(inst.Args[1])}, Aux: BinAux{Op: BinOp(aux.Op)}, Loc: loc})

	case rhif.OpUnary:
		aux := inst.Aux.(rhif.UnAux)
		l.dst.Append(Inst{Op: OpUnary, Dst: dstReg, Args: []Operand{l.op(inst.Args[0])}, Aux: UnAux{Op: UnOp(aux.Op)}, Loc: loc})

	case rhif.OpSelect:
		l.dst.Append(Inst{Op: OpSelect, Dst: dstReg, Args: []Operand{l.op(inst.Args[0]), l.op(inst.Args[1]), l.op(inst.Args[2])}, Loc: loc})

	case rhif.OpCase:
		aux := inst.Aux.(rhif.CaseAux)
		scrutKind := l.src.KindOf(inst.Args[0])
		entries := make([]CaseEntry, len(aux.Arms))
		for i, arm := range aux.Arms {
			var pattern *big.Int
			switch {
			case arm.Variant != "":
				v, _, ok := scrutKind.VariantByName(arm.Variant)
				if !ok {
					return diag.ICE("rtl lowering: unknown enum variant " + arm.Variant)
				}
				pattern = big.NewInt(v.Discriminant)
			case arm.Pattern != nil:
				pattern = big.NewInt(*arm.Pattern)
			}
			entries[i] = CaseEntry{Pattern: pattern, Value: l.op(arm.Result)}
		}
		l.dst.Append(Inst{Op: OpCase, Dst: dstReg, Args: []Operand{l.op(inst.Args[0])}, Aux: CaseAux{Entries: entries}, Loc: loc})

	case rhif.OpCast:
		aux := inst.Aux.(rhif.CastAux)
		l.dst.Append(Inst{Op: OpCast, Dst: dstReg, Args: []Operand{l.op(inst.Args[0])}, Aux: CastAux{Signed: aux.Signed, Len: aux.Len}, Loc: loc})

	case rhif.OpRetime:
		// Signal/retime casts compile to Assign at the RTL level; the
		// clock-domain bookkeeping is a timing concern layered outside
		// this bit-level IR.
		l.dst.Append(Inst{Op: OpAssign, Dst: dstReg, Args: []Operand{l.op(inst.Args[0])}, Loc: loc})

	case rhif.OpStructCtor, rhif.OpTupleCtor, rhif.OpArrayCtor:
		args := make([]Operand, len(inst.Args))
		for i, a := range inst.Args {
			args[i] = l.op(a)
		}
		l.dst.Append(Inst{Op: OpConcat, Dst: dstReg, Args: args, Loc: loc})

	case rhif.OpEnumCtor:
		aux := inst.Aux.(rhif.CtorAux)
		payload := l.op(inst.Args[0])
		v, _, ok := aux.Kind.VariantByName(aux.Variant)
		if !ok {
			return diag.ICE("rtl lowering: unknown enum variant " + aux.Variant)
		}
		discWidth := aux.Kind.DiscriminantWidth()
		discLit := l.dst.InternLiteral(Unsigned(discWidth), big.NewInt(v.Discriminant))
		payloadWidth := aux.Kind.MaxPayloadWidth()
		if got := l.dst.KindOf(payload).Width; got < payloadWidth {
			padded := l.dst.NewRegister(Unsigned(payloadWidth))
			zero := l.dst.InternLiteral(Unsigned(payloadWidth-got), big.NewInt(0))
			l.dst.Append(Inst{Op: OpConcat, Dst: padded, Args: []Operand{payload, LitOperand(zero)}, Loc: loc})
			payload = RegOperand(padded)
		}
		var args []Operand
		if aux.Kind.DiscLayout == kind.LayoutLsb {
			args = []Operand{LitOperand(discLit), payload}
		} else {
			args = []Operand{payload, LitOperand(discLit)}
		}
		l.dst.Append(Inst{Op: OpConcat, Dst: dstReg, Args: args, Loc: loc})

	case rhif.OpRepeat:
		aux := inst.Aux.(rhif.RepeatAux)
		arg := l.op(inst.Args[0])
		args := make([]Operand, aux.Count)
		for i := range args {
			args[i] = arg
		}
		l.dst.Append(Inst{Op: OpConcat, Dst: dstReg, Args: args, Loc: loc})

	case rhif.OpIndex:
		aux := inst.Aux.(rhif.PathAux)
		base := l.op(inst.Args[0])
		baseKind := l.src.KindOf(inst.Args[0])
		result, _, err := l.readPath(base, baseKind, aux.Path, loc)
		if err != nil {
			return err
		}
		l.dst.Append(Inst{Op: OpAssign, Dst: dstReg, Args: []Operand{result}, Loc: loc})

	case rhif.OpSplice:
		aux := inst.Aux.(rhif.PathAux)
		base := l.op(inst.Args[0])
		baseKind := l.src.KindOf(inst.Args[0])
		value := l.op(inst.Args[1])
		if err := l.lowerSplice(dstReg, base, baseKind, aux.Path, value, loc); err != nil {
			return err
		}

	case rhif.OpNoop:
		// Empty-kind result: zero width, nothing to carry, nothing to emit.

	case rhif.OpExec:
		return diag.ICE("rtl lowering: unresolved Exec " + inst.Aux.(rhif.ExecAux).Callee + " (calls must be inlined before RTL lowering)")

	default:
		return diag.ICE("rtl lowering: unhandled RHIF opcode")
	}
	return nil
}

// stepResult is the outcome of resolving one PathElement against a base
// Kind: the read-through operand/kind for descending further, plus either
// a static BitRange or a dynamic (offset, length) pair for splicing back.
type stepResult struct {
	read      Operand
	readKind  kind.Kind
	static    *BitRange
	dynOffset Operand
	dynLen    int
}

func (l *lowering) readStep(base Operand, baseKind kind.Kind, elem rhif.PathElement, loc sourcepool.SourceLocation) (stepResult, *diag.Error) {
	switch elem.Kind {
	case rhif.PathField:
		off, fk, ok := baseKind.FieldOffset(elem.Field)
		if !ok {
			return stepResult{}, diag.ICE("rtl lowering: unknown field " + elem.Field)
		}
		return l.emitIndex(base, fk, BitRange{Lo: off, Len: fk.BitWidth()}, loc)
	case rhif.PathIndex:
		off, ek, ok := baseKind.ArrayElemOffset(elem.Index)
		if !ok {
			return stepResult{}, diag.ICE("rtl lowering: array index out of range")
		}
		return l.emitIndex(base, ek, BitRange{Lo: off, Len: ek.BitWidth()}, loc)
	case rhif.PathTupleIndex:
		off, tk, ok := baseKind.TupleOffset(elem.Index)
		if !ok {
			return stepResult{}, diag.ICE("rtl lowering: tuple index out of range")
		}
		return l.emitIndex(base, tk, BitRange{Lo: off, Len: tk.BitWidth()}, loc)
	case rhif.PathEnumPayloadByValue:
		v, _, ok := baseKind.VariantByName(elem.Variant)
		if !ok {
			return stepResult{}, diag.ICE("rtl lowering: unknown enum variant " + elem.Variant)
		}
		off := baseKind.PayloadOffset()
		return l.emitIndex(base, v.Payload, BitRange{Lo: off, Len: v.Payload.BitWidth()}, loc)
	case rhif.PathEnumDiscriminant:
		off := baseKind.DiscriminantOffset()
		w := baseKind.DiscriminantWidth()
		return l.emitIndex(base, kind.NewBits(w), BitRange{Lo: off, Len: w}, loc)
	case rhif.PathDynamicIndex:
		if baseKind.Tag != kind.Array {
			return stepResult{}, diag.ICE("rtl lowering: dynamic index of non-array value")
		}
		ek := *baseKind.Base
		elemWidth := ek.BitWidth()
		selOperand := l.op(elem.Dynamic)
		idxWidth := widthFor(baseKind.Len)
		widthLit := l.dst.InternLiteral(Unsigned(idxWidth), bigFromInt(elemWidth))
		offsetReg := l.dst.NewRegister(Unsigned(idxWidth))
		l.dst.Append(Inst{Op: OpBinary, Dst: offsetReg, Args: []Operand{selOperand, LitOperand(widthLit)}, Aux: BinAux{Op: BinMul}, Loc: loc})
		dst := l.dst.NewRegister(regKindOf(ek))
		l.dst.Append(Inst{Op: OpDynamicIndex, Dst: dst, Args: []Operand{base}, Aux: DynamicIndexAux{Offset: RegOperand(offsetReg), Len: elemWidth}, Loc: loc})
		return stepResult{read: RegOperand(dst), readKind: ek, dynOffset: RegOperand(offsetReg), dynLen: elemWidth}, nil
	}
	return stepResult{}, diag.ICE("rtl lowering: unhandled path element")
}

func (l *lowering) emitIndex(base Operand, subKind kind.Kind, rng BitRange, loc sourcepool.SourceLocation) (stepResult, *diag.Error) {
	dst := l.dst.NewRegister(regKindOf(subKind))
	l.dst.Append(Inst{Op: OpIndex, Dst: dst, Args: []Operand{base}, Aux: IndexAux{Range: rng}, Loc: loc})
	return stepResult{read: RegOperand(dst), readKind: subKind, static: &rng}, nil
}

func bigFromInt(n int) *big.Int { return big.NewInt(int64(n)) }

func (l *lowering) readPath(base Operand, baseKind kind.Kind, path rhif.Path, loc sourcepool.SourceLocation) (Operand, kind.Kind, *diag.Error) {
	cur, curKind := base, baseKind
	for _, elem := range path {
		step, err := l.readStep(cur, curKind, elem, loc)
		if err != nil {
			return Operand{}, kind.Kind{}, err
		}
		cur, curKind = step.read, step.readKind
	}
	return cur, curKind, nil
}

// lowerSplice implements a path-write as a chain of single-level splices,
// innermost first: descend through every path element (recording how each
// level will later be spliced back), then rebuild outward from the
// replacement value up to dst.
func (l *lowering) lowerSplice(dst RegId, base Operand, baseKind kind.Kind, path rhif.Path, value Operand, loc sourcepool.SourceLocation) *diag.Error {
	if len(path) == 0 {
		l.dst.Append(Inst{Op: OpAssign, Dst: dst, Args: []Operand{value}, Loc: loc})
		return nil
	}
	frames := make([]stepResult, len(path))
	bases := make([]Operand, len(path))
	baseKinds := make([]kind.Kind, len(path))
	cur, curKind := base, baseKind
	for i, elem := range path {
		step, err := l.readStep(cur, curKind, elem, loc)
		if err != nil {
			return err
		}
		frames[i] = step
		bases[i] = cur
		baseKinds[i] = curKind
		cur, curKind = step.read, step.readKind
	}
	newVal := value
	for i := len(frames) - 1; i >= 0; i-- {
		f := frames[i]
		var out RegId
		if i == 0 {
			out = dst
		} else {
			out = l.dst.NewRegister(regKindOf(baseKinds[i]))
		}
		if f.static != nil {
			l.dst.Append(Inst{Op: OpSplice, Dst: out, Args: []Operand{bases[i], newVal}, Aux: SpliceAux{Range: *f.static}, Loc: loc})
		} else {
			l.dst.Append(Inst{Op: OpDynamicSplice, Dst: out, Args: []Operand{bases[i], newVal}, Aux: DynamicSpliceAux{Offset: f.dynOffset, Len: f.dynLen}, Loc: loc})
		}
		newVal = RegOperand(out)
	}
	return nil
}
