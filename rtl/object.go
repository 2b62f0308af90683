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

// Package rtl implements the §3.3 register-transfer-level IR: bit-range
// operands over fixed-width registers and literals, with explicit concat,
// index and splice opcodes replacing RHIF's Kind-aware Path.
package rtl

import (
	"fmt"
	"math/big"

	"gatecore/sourcepool"
)

type RegId int
type LitId int

// RegisterKind is a register's bit width and signedness — the only type
// information that survives past RHIF.
type RegisterKind struct {
	Signed bool
	Width  int
}

func Unsigned(width int) RegisterKind { return RegisterKind{Signed: false, Width: width} }
func Signed(width int) RegisterKind   { return RegisterKind{Signed: true, Width: width} }

// Literal is an immutable, width-exact constant, uniquely interned per
// (width, signed, value) per §3.3's invariant.
type Literal struct {
	Kind  RegisterKind
	Value *big.Int
}

// OperandTag discriminates an Operand.
type OperandTag int

const (
	OperandRegister OperandTag = iota
	OperandLiteral
)

// Operand is a Register or a Literal reference (§3.3).
type Operand struct {
	Tag OperandTag
	Reg RegId
	Lit LitId
}

func RegOperand(r RegId) Operand { return Operand{Tag: OperandRegister, Reg: r} }
func LitOperand(l LitId) Operand { return Operand{Tag: OperandLiteral, Lit: l} }

// BitRange is a static, half-open bit range [Lo, Lo+Len) within an operand's
// width, least-significant bit first.
type BitRange struct {
	Lo  int
	Len int
}

// Object is one compiled kernel at the RTL stage.
type Object struct {
	FunctionId sourcepool.FunctionId
	Name       string
	Args       []RegId
	Ret        RegId
	Ops        []Inst
	Regs       map[RegId]RegisterKind
	Literals   map[LitId]*Literal
	Symbols    *sourcepool.SymbolMap[RegId]

	nextReg  RegId
	nextLit  LitId
	litIndex map[string]LitId
}

func NewObject(id sourcepool.FunctionId, name string) *Object {
	return &Object{
		FunctionId: id,
		Name:       name,
		Regs:       make(map[RegId]RegisterKind),
		Literals:   make(map[LitId]*Literal),
		Symbols:    sourcepool.NewSymbolMap[RegId](),
		litIndex:   make(map[string]LitId),
	}
}

func (o *Object) NewRegister(k RegisterKind) RegId {
	id := o.nextReg
	o.nextReg++
	o.Regs[id] = k
	return id
}

func litKey(k RegisterKind, v *big.Int) string {
	return fmt.Sprintf("%v:%d:%s", k.Signed, k.Width, v.Text(16))
}

// InternLiteral returns the LitId for (kind, value), reusing a prior literal
// if this exact (width, signed, value) triple was already interned.
func (o *Object) InternLiteral(k RegisterKind, v *big.Int) LitId {
	key := litKey(k, v)
	if id, ok := o.litIndex[key]; ok {
		return id
	}
	id := o.nextLit
	o.nextLit++
	o.Literals[id] = &Literal{Kind: k, Value: new(big.Int).Set(v)}
	o.litIndex[key] = id
	return id
}

func (o *Object) Append(inst Inst) int {
	o.Ops = append(o.Ops, inst)
	return len(o.Ops) - 1
}

// KindOf reports the width/signedness of an operand.
func (o *Object) KindOf(op Operand) RegisterKind {
	if op.Tag == OperandLiteral {
		return o.Literals[op.Lit].Kind
	}
	return o.Regs[op.Reg]
}

func (o *Object) RegKindOf(r RegId) RegisterKind { return o.Regs[r] }
