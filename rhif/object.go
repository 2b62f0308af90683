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

// Package rhif implements the resolved high-level IR (§3.2): a typed
// slot-based IR with language-level opcodes, used both as the output of
// MIR's flattening+unification (the mir package builds one of these
// directly) and as the input to RTL lowering.
package rhif

import (
	"fmt"
	"math/big"

	"gatecore/kind"
	"gatecore/sourcepool"
)

// SlotId names a value carrier: a Literal or a Register (§3.1/§3.2).
type SlotId int

type SlotTag int

const (
	SlotRegister SlotTag = iota
	SlotLiteral
)

// Slot is one entry in an Object's slot table. Literal slots carry their
// value as a math/big.Int magnitude interpreted per Kind (unsigned for
// Bits, two's-complement for Signed) — the core stores concrete bit
// patterns only to extract individual bits during NTL lowering; it performs
// no bit-precise arithmetic of its own (that library is an external
// collaborator, §1).
type Slot struct {
	Tag   SlotTag
	Kind  kind.Kind
	Value *big.Int // meaningful only when Tag == SlotLiteral
}

// Object is one compiled kernel at the RHIF stage.
type Object struct {
	FunctionId sourcepool.FunctionId
	Name       string
	Args       []SlotId
	Ret        SlotId
	Ops        []Inst
	Slots      map[SlotId]*Slot
	Symbols    *sourcepool.SymbolMap[SlotId]

	nextSlot SlotId
	litIndex map[string]SlotId // interning key -> SlotId, same value+kind => same SlotId
}

func NewObject(id sourcepool.FunctionId, name string) *Object {
	return &Object{
		FunctionId: id,
		Name:       name,
		Slots:      make(map[SlotId]*Slot),
		Symbols:    sourcepool.NewSymbolMap[SlotId](),
		litIndex:   make(map[string]SlotId),
	}
}

// NewRegister allocates a fresh virtual register slot of the given kind.
func (o *Object) NewRegister(k kind.Kind) SlotId {
	id := o.nextSlot
	o.nextSlot++
	o.Slots[id] = &Slot{Tag: SlotRegister, Kind: k}
	return id
}

func litKey(k kind.Kind, v *big.Int) string {
	return fmt.Sprintf("%s:%s", k.String(), v.Text(16))
}

// InternLiteral returns the SlotId for (kind, value), reusing a prior slot if
// this exact (kind, value) pair was already interned (§3.3 invariant:
// "literals are immutable and uniquely interned per value+width").
func (o *Object) InternLiteral(k kind.Kind, v *big.Int) SlotId {
	key := litKey(k, v)
	if id, ok := o.litIndex[key]; ok {
		return id
	}
	id := o.nextSlot
	o.nextSlot++
	o.Slots[id] = &Slot{Tag: SlotLiteral, Kind: k, Value: new(big.Int).Set(v)}
	o.litIndex[key] = id
	return id
}

func (o *Object) IsLiteral(id SlotId) bool {
	s, ok := o.Slots[id]
	return ok && s.Tag == SlotLiteral
}

// Append adds an opcode to the instruction stream, returning its index.
func (o *Object) Append(inst Inst) int {
	o.Ops = append(o.Ops, inst)
	return len(o.Ops) - 1
}

func (o *Object) KindOf(id SlotId) kind.Kind {
	if s, ok := o.Slots[id]; ok {
		return s.Kind
	}
	return kind.KindEmpty
}
