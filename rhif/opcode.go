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
package rhif

import (
	"gatecore/kind"
	"gatecore/sourcepool"
)

// Op names one RHIF opcode (§3.2). The operand-carrying payload specific to
// an Op lives in Inst.Aux, mirroring the teacher's Value.Sym "one escape
// hatch per node" idiom rather than one Go type per opcode.
type Op int

const (
	OpAssign Op = iota
	OpBinary
	OpUnary
	OpSelect
	OpCase
	OpIndex
	OpSplice
	OpCast
	OpRetime
	OpStructCtor
	OpTupleCtor
	OpArrayCtor
	OpEnumCtor
	OpRepeat
	OpExec
	OpNoop
)

func (op Op) String() string {
	switch op {
	case OpAssign:
		return "Assign"
	case OpBinary:
		return "Binary"
	case OpUnary:
		return "Unary"
	case OpSelect:
		return "Select"
	case OpCase:
		return "Case"
	case OpIndex:
		return "Index"
	case OpSplice:
		return "Splice"
	case OpCast:
		return "Cast"
	case OpRetime:
		return "Retime"
	case OpStructCtor:
		return "StructCtor"
	case OpTupleCtor:
		return "TupleCtor"
	case OpArrayCtor:
		return "ArrayCtor"
	case OpEnumCtor:
		return "EnumCtor"
	case OpRepeat:
		return "Repeat"
	case OpExec:
		return "Exec"
	case OpNoop:
		return "Noop"
	}
	return "<unknown-op>"
}

type BinOp int

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinAnd
	BinOr
	BinXor
	BinShl
	BinShr
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
)

type UnOp int

const (
	UnNeg UnOp = iota
	UnNot
)

// PathElement mirrors kernel.PathElement (§3.2): Field, Index,
// DynamicIndex, TupleIndex, EnumPayloadByValue, EnumDiscriminant.
type PathElementKind int

const (
	PathField PathElementKind = iota
	PathIndex
	PathDynamicIndex
	PathTupleIndex
	PathEnumPayloadByValue
	PathEnumDiscriminant
)

type PathElement struct {
	Kind    PathElementKind
	Field   string
	Index   int
	Dynamic SlotId // valid when Kind == PathDynamicIndex
	Variant string
}

type Path []PathElement

// Resolve walks a Path through a base Kind, returning the sub-kind it names.
// DynamicIndex resolution only checks the indexed dimension's element kind;
// range-checking a concrete selector value is a runtime/NTL-lowering concern.
func (p Path) Resolve(base kind.Kind) (kind.Kind, bool) {
	cur := base
	for _, e := range p {
		switch e.Kind {
		case PathField:
			off, k, ok := cur.FieldOffset(e.Field)
			_ = off
			if !ok {
				return kind.Kind{}, false
			}
			cur = k
		case PathIndex:
			_, k, ok := cur.ArrayElemOffset(e.Index)
			if !ok {
				return kind.Kind{}, false
			}
			cur = k
		case PathDynamicIndex:
			if cur.Tag != kind.Array {
				return kind.Kind{}, false
			}
			cur = *cur.Base
		case PathTupleIndex:
			_, k, ok := cur.TupleOffset(e.Index)
			if !ok {
				return kind.Kind{}, false
			}
			cur = k
		case PathEnumPayloadByValue:
			v, _, ok := cur.VariantByName(e.Variant)
			if !ok {
				return kind.Kind{}, false
			}
			cur = v.Payload
		case PathEnumDiscriminant:
			if cur.Tag == kind.Enum {
				cur = kind.NewBits(cur.DiscriminantWidth())
			}
			// Non-enum .discriminant is handled by PrecomputeDiscriminants,
			// which rewrites it to an identity Assign before this ever runs.
		}
	}
	return cur, true
}

// CaseArm pairs a scalar pattern (nil = wildcard) or enum variant name with
// a result slot.
type CaseArm struct {
	Pattern *int64
	Variant string
	Result  SlotId
}

// --- Aux payloads, one struct per opcode shape needing more than Args/Dst ---

type BinAux struct{ Op BinOp }
type UnAux struct{ Op UnOp }
type CaseAux struct{ Arms []CaseArm }
type PathAux struct{ Path Path }
type CastAux struct {
	Signed bool
	Len    int // -1 => infer from target slot's Kind (LowerInferredCasts)
}
type RetimeAux struct{ Color kind.ClockColor }
type CtorAux struct {
	Kind    kind.Kind
	Variant string // set for OpEnumCtor
}
type RepeatAux struct{ Count int }
type ExecAux struct{ Callee string }

// Inst is one RHIF opcode plus its source location (§3.1: "(opcode,
// source-location) pairs").
type Inst struct {
	Op   Op
	Dst  SlotId
	Args []SlotId
	Aux  interface{}
	Loc  sourcepool.SourceLocation
}

// VisitArgs calls f for every SlotId this instruction reads, including ones
// tucked inside Aux (a dynamic-index selector, a splice's write path). Passes
// build their liveness/use-def sweeps entirely through this one visitor so a
// new opcode only needs to teach VisitArgs about its operands once.
func (i Inst) VisitArgs(f func(SlotId)) {
	for _, a := range i.Args {
		f(a)
	}
	switch aux := i.Aux.(type) {
	case PathAux:
		for _, e := range aux.Path {
			if e.Kind == PathDynamicIndex {
				f(e.Dynamic)
			}
		}
	case CaseAux:
		for _, arm := range aux.Arms {
			f(arm.Result)
		}
	}
}

// VisitArgsMut calls f with a pointer to every SlotId this instruction reads,
// letting a caller rewrite reads in place (e.g. substituting a propagated
// literal for a register read). Covers exactly the same operand set as
// VisitArgs; the two must be kept in sync when a new opcode gains operands.
func (i *Inst) VisitArgsMut(f func(*SlotId)) {
	for idx := range i.Args {
		f(&i.Args[idx])
	}
	switch aux := i.Aux.(type) {
	case PathAux:
		for idx := range aux.Path {
			if aux.Path[idx].Kind == PathDynamicIndex {
				f(&aux.Path[idx].Dynamic)
			}
		}
	case CaseAux:
		for idx := range aux.Arms {
			f(&aux.Arms[idx].Result)
		}
	}
}
