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

	"gatecore/sourcepool"
)

type Op int

const (
	OpBinary Op = iota
	OpUnary
	OpAssign
	OpSelect
	OpCase
	OpConcat
	OpIndex
	OpDynamicIndex
	OpSplice
	OpDynamicSplice
	OpCast
	OpComment
)

func (op Op) String() string {
	switch op {
	case OpBinary:
		return "Binary"
	case OpUnary:
		return "Unary"
	case OpAssign:
		return "Assign"
	case OpSelect:
		return "Select"
	case OpCase:
		return "Case"
	case OpConcat:
		return "Concat"
	case OpIndex:
		return "Index"
	case OpDynamicIndex:
		return "DynamicIndex"
	case OpSplice:
		return "Splice"
	case OpDynamicSplice:
		return "DynamicSplice"
	case OpCast:
		return "Cast"
	case OpComment:
		return "Comment"
	}
	return "<unknown-op>"
}

// BinOp/UnOp mirror rhif's enums exactly, so lowering is a plain int
// conversion (see rtl/lower.go).
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

// UnOp mirrors rhif's UnNeg/UnNot, plus UnAny — a reduction op with no RHIF
// equivalent, introduced at this stage by LowerNotEqualZeroToAny and later
// lowered directly onto NTL's own Any gate (§4.6).
type UnOp int

const (
	UnNeg UnOp = iota
	UnNot
	UnAny
)

// CaseEntry pairs a literal pattern (nil = wildcard) with its operand.
type CaseEntry struct {
	Pattern *big.Int
	Value   Operand
}

// --- Aux payloads, one struct per opcode shape needing more than Args/Dst ---

type BinAux struct{ Op BinOp }
type UnAux struct{ Op UnOp }
type CaseAux struct{ Entries []CaseEntry }
type IndexAux struct{ Range BitRange }
type DynamicIndexAux struct {
	Offset Operand
	Len    int
}
type SpliceAux struct{ Range BitRange }
type DynamicSpliceAux struct {
	Offset Operand
	Len    int
}
type CastAux struct {
	Signed bool
	Len    int
}
type CommentAux struct{ Text string }

// Inst is one RTL opcode plus its source location.
type Inst struct {
	Op   Op
	Dst  RegId
	Args []Operand
	Aux  interface{}
	Loc  sourcepool.SourceLocation
}

// VisitArgs calls f for every operand this instruction reads, including
// ones tucked inside Aux (a DynamicIndex/DynamicSplice offset, a Case
// entry's value).
func (i Inst) VisitArgs(f func(Operand)) {
	for _, a := range i.Args {
		f(a)
	}
	switch aux := i.Aux.(type) {
	case DynamicIndexAux:
		f(aux.Offset)
	case DynamicSpliceAux:
		f(aux.Offset)
	case CaseAux:
		for _, e := range aux.Entries {
			f(e.Value)
		}
	}
}
