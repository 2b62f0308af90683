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

// Package ntl implements the §3.4 netlist IR: single-bit wires, SSA
// registers, and only gate-level opcodes. This is the deep core (§4.7):
// the fixed-point gate optimizer that every other stage ultimately lowers
// into.
package ntl

import "gatecore/sourcepool"

type RegId int

// BitValue is one bit's value, including the unknown state X — §9 requires
// X to compare unequal to both 0 and 1 under literal interning.
type BitValue int

const (
	Bit0 BitValue = iota
	Bit1
	BitX
)

func (b BitValue) String() string {
	switch b {
	case Bit0:
		return "0"
	case Bit1:
		return "1"
	case BitX:
		return "X"
	}
	return "?"
}

type WireTag int

const (
	WireRegister WireTag = iota
	WireConst
)

// Wire is one bit: either a Register or an immediate BitX value (§3.4).
type Wire struct {
	Tag   WireTag
	Reg   RegId
	Const BitValue
}

func RegWire(r RegId) Wire         { return Wire{Tag: WireRegister, Reg: r} }
func ConstWire(b BitValue) Wire    { return Wire{Tag: WireConst, Const: b} }
func (w Wire) IsConst() bool       { return w.Tag == WireConst }
func (w Wire) Equal(o Wire) bool   { return w.Tag == o.Tag && w.Reg == o.Reg && w.Const == o.Const }

// WireKind distinguishes a data register from a clock or reset register
// (§3.4's "clock/reset wires are distinguished by WireKind").
type WireKind int

const (
	KindData WireKind = iota
	KindClock
	KindReset
)

// Object is one compiled kernel at the NTL stage: ordered wire operations,
// per-argument bit vectors, an output bit vector, and a symbol table.
type Object struct {
	FunctionId sourcepool.FunctionId
	Name       string
	Inputs     [][]Wire // one bit vector per original RTL argument
	Outputs    []Wire
	Ops        []Inst
	Kinds      map[RegId]WireKind
	Symbols    *sourcepool.SymbolMap[RegId]

	nextReg RegId
}

func NewObject(id sourcepool.FunctionId, name string) *Object {
	return &Object{
		FunctionId: id,
		Name:       name,
		Kinds:      make(map[RegId]WireKind),
		Symbols:    sourcepool.NewSymbolMap[RegId](),
	}
}

func (o *Object) NewRegister(kind WireKind) RegId {
	id := o.nextReg
	o.nextReg++
	o.Kinds[id] = kind
	return id
}

func (o *Object) NewDataRegister() RegId { return o.NewRegister(KindData) }

func (o *Object) Append(inst Inst) int {
	o.Ops = append(o.Ops, inst)
	return len(o.Ops) - 1
}
