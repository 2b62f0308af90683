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

// Package kind implements the structural type descriptor shared by every IR
// stage (MIR through NTL): an algebraic type with an exact bit layout, so
// lowering never has to re-derive a width or a field offset.
package kind

import (
	"fmt"
	"strings"

	"gatecore/utils"
)

// Tag discriminates the variants of Kind. The zero value is Empty so a
// freshly zeroed Kind is always well-formed.
type Tag int

const (
	Empty Tag = iota
	Bits
	Signed
	Clock
	Reset
	Struct
	Tuple
	Array
	Enum
	Signal
)

func (t Tag) String() string {
	switch t {
	case Empty:
		return "Empty"
	case Bits:
		return "Bits"
	case Signed:
		return "Signed"
	case Clock:
		return "Clock"
	case Reset:
		return "Reset"
	case Struct:
		return "Struct"
	case Tuple:
		return "Tuple"
	case Array:
		return "Array"
	case Enum:
		return "Enum"
	case Signal:
		return "Signal"
	}
	return "<unknown-kind>"
}

// DiscriminantLayout says whether an Enum's discriminant bits sit at the
// most- or least-significant end of the value. Every pass that reads or
// writes a discriminant must consult this field on the Kind in hand rather
// than assume a default — the spec leaves this ambiguous in the source this
// was distilled from and requires uniform handling here.
type DiscriminantLayout int

const (
	LayoutLsb DiscriminantLayout = iota
	LayoutMsb
)

// Field is one named member of a Struct kind, in declaration order (first
// field at LSB).
type Field struct {
	Name string
	Kind Kind
}

// Variant is one named alternative of an Enum kind, carrying its integer
// discriminant value and payload kind (Empty for a unit variant).
type Variant struct {
	Name        string
	Discriminant int64
	Payload     Kind
}

// ClockColor identifies a clock domain for Signal kinds. Two signals unify
// only when their colors match (or the compile-time clock is unspecified,
// ClockColorAny); crossing colors without an explicit Retime is a clock
// domain error (see diag.CauseClockDomain).
type ClockColor string

const ClockColorAny ClockColor = ""

// Kind is the structural type descriptor. Only the fields relevant to Tag
// are meaningful; callers should use the constructors below rather than
// building a Kind literal directly.
type Kind struct {
	Tag    Tag
	Width  int // Bits / Signed: bit width. Array: unused (see Len).
	Fields []Field
	Elems  []Kind // Tuple
	Base   *Kind  // Array element kind
	Len    int    // Array length
	Variants []Variant
	DiscLayout DiscriminantLayout
	Inner  *Kind // Signal
	Color  ClockColor
}

func NewBits(width int) Kind {
	if width <= 0 {
		panic(fmt.Sprintf("kind.NewBits: width must be positive, got %d", width))
	}
	return Kind{Tag: Bits, Width: width}
}

func NewSigned(width int) Kind {
	if width <= 0 {
		panic(fmt.Sprintf("kind.NewSigned: width must be positive, got %d", width))
	}
	return Kind{Tag: Signed, Width: width}
}

var KindEmpty = Kind{Tag: Empty}
var KindClock = Kind{Tag: Clock}
var KindReset = Kind{Tag: Reset}

func NewStruct(fields ...Field) Kind {
	return Kind{Tag: Struct, Fields: fields}
}

func NewTuple(elems ...Kind) Kind {
	return Kind{Tag: Tuple, Elems: elems}
}

func NewArray(base Kind, length int) Kind {
	if length < 0 {
		panic("kind.NewArray: negative length")
	}
	b := base
	return Kind{Tag: Array, Base: &b, Len: length}
}

func NewEnum(layout DiscriminantLayout, variants ...Variant) Kind {
	return Kind{Tag: Enum, DiscLayout: layout, Variants: variants}
}

func NewSignal(inner Kind, color ClockColor) Kind {
	in := inner
	return Kind{Tag: Signal, Inner: &in, Color: color}
}

// BitWidth returns the exact number of bits this Kind occupies, per the
// bit-layout rules: Bits/Signed carry their width directly; Struct and Tuple
// concatenate members; Array replicates its base; Enum reserves
// DiscriminantWidth() bits plus the widest variant payload, zero-padded;
// Signal is transparent; Clock and Reset are one bit.
func (k Kind) BitWidth() int {
	switch k.Tag {
	case Empty:
		return 0
	case Bits, Signed:
		return k.Width
	case Clock, Reset:
		return 1
	case Struct:
		w := 0
		for _, f := range k.Fields {
			w += f.Kind.BitWidth()
		}
		return w
	case Tuple:
		w := 0
		for _, e := range k.Elems {
			w += e.BitWidth()
		}
		return w
	case Array:
		return k.Base.BitWidth() * k.Len
	case Enum:
		return k.DiscriminantWidth() + k.MaxPayloadWidth()
	case Signal:
		return k.Inner.BitWidth()
	}
	panic(fmt.Sprintf("kind.BitWidth: unhandled tag %v", k.Tag))
}

// DiscriminantWidth is the number of bits needed to represent every variant's
// discriminant value (minimum 1, so a single-variant enum still reserves a
// distinguishable tag bit the way the teacher's boolean-style types do).
func (k Kind) DiscriminantWidth() int {
	utils.Assert(k.Tag == Enum, "DiscriminantWidth: not an Enum kind")
	maxv := int64(0)
	for _, v := range k.Variants {
		if v.Discriminant > maxv {
			maxv = v.Discriminant
		}
	}
	w := 1
	for (int64(1) << uint(w)) <= maxv {
		w++
	}
	return w
}

// MaxPayloadWidth is the width of the widest variant payload; every variant's
// payload is zero-padded up to this width in the Enum's bit layout.
func (k Kind) MaxPayloadWidth() int {
	utils.Assert(k.Tag == Enum, "MaxPayloadWidth: not an Enum kind")
	max := 0
	for _, v := range k.Variants {
		if w := v.Payload.BitWidth(); w > max {
			max = w
		}
	}
	return max
}

// FieldOffset returns the LSB bit offset of a named struct field.
func (k Kind) FieldOffset(name string) (int, Kind, bool) {
	utils.Assert(k.Tag == Struct, "FieldOffset: not a Struct kind")
	off := 0
	for _, f := range k.Fields {
		if f.Name == name {
			return off, f.Kind, true
		}
		off += f.Kind.BitWidth()
	}
	return 0, Kind{}, false
}

// TupleOffset returns the LSB bit offset of a tuple element by index.
func (k Kind) TupleOffset(index int) (int, Kind, bool) {
	utils.Assert(k.Tag == Tuple, "TupleOffset: not a Tuple kind")
	if index < 0 || index >= len(k.Elems) {
		return 0, Kind{}, false
	}
	off := 0
	for i := 0; i < index; i++ {
		off += k.Elems[i].BitWidth()
	}
	return off, k.Elems[index], true
}

// ArrayElemOffset returns the LSB bit offset of an array element by index.
func (k Kind) ArrayElemOffset(index int) (int, Kind, bool) {
	utils.Assert(k.Tag == Array, "ArrayElemOffset: not an Array kind")
	if index < 0 || index >= k.Len {
		return 0, Kind{}, false
	}
	return index * k.Base.BitWidth(), *k.Base, true
}

// VariantByName finds a variant and its payload bit offset within the
// enum's total layout, honoring DiscLayout: payload bits sit above the
// discriminant for LayoutLsb, below it for LayoutMsb.
func (k Kind) VariantByName(name string) (Variant, int, bool) {
	utils.Assert(k.Tag == Enum, "VariantByName: not an Enum kind")
	for _, v := range k.Variants {
		if v.Name == name {
			return v, k.PayloadOffset(), true
		}
	}
	return Variant{}, 0, false
}

// VariantByDiscriminant finds a variant by its discriminant value.
func (k Kind) VariantByDiscriminant(d int64) (Variant, bool) {
	utils.Assert(k.Tag == Enum, "VariantByDiscriminant: not an Enum kind")
	for _, v := range k.Variants {
		if v.Discriminant == d {
			return v, true
		}
	}
	return Variant{}, false
}

// DiscriminantOffset is the LSB bit offset of the discriminant field within
// an Enum's layout.
func (k Kind) DiscriminantOffset() int {
	utils.Assert(k.Tag == Enum, "DiscriminantOffset: not an Enum kind")
	if k.DiscLayout == LayoutLsb {
		return 0
	}
	return k.MaxPayloadWidth()
}

// PayloadOffset is the LSB bit offset of the payload field within an Enum's
// layout.
func (k Kind) PayloadOffset() int {
	utils.Assert(k.Tag == Enum, "PayloadOffset: not an Enum kind")
	if k.DiscLayout == LayoutLsb {
		return k.DiscriminantWidth()
	}
	return 0
}

// Equal reports structural equality, which is what the type-equivalence
// solver and the RTL/NTL operand-width checks compare against.
func (k Kind) Equal(o Kind) bool {
	if k.Tag != o.Tag {
		return false
	}
	switch k.Tag {
	case Empty, Clock, Reset:
		return true
	case Bits, Signed:
		return k.Width == o.Width
	case Struct:
		if len(k.Fields) != len(o.Fields) {
			return false
		}
		for i := range k.Fields {
			if k.Fields[i].Name != o.Fields[i].Name || !k.Fields[i].Kind.Equal(o.Fields[i].Kind) {
				return false
			}
		}
		return true
	case Tuple:
		if len(k.Elems) != len(o.Elems) {
			return false
		}
		for i := range k.Elems {
			if !k.Elems[i].Equal(o.Elems[i]) {
				return false
			}
		}
		return true
	case Array:
		return k.Len == o.Len && k.Base.Equal(*o.Base)
	case Enum:
		if k.DiscLayout != o.DiscLayout || len(k.Variants) != len(o.Variants) {
			return false
		}
		for i := range k.Variants {
			a, b := k.Variants[i], o.Variants[i]
			if a.Name != b.Name || a.Discriminant != b.Discriminant || !a.Payload.Equal(b.Payload) {
				return false
			}
		}
		return true
	case Signal:
		return k.Color == o.Color && k.Inner.Equal(*o.Inner)
	}
	return false
}

func (k Kind) IsEmpty() bool { return k.Tag == Empty }

func (k Kind) String() string {
	switch k.Tag {
	case Empty:
		return "()"
	case Bits:
		return fmt.Sprintf("b%d", k.Width)
	case Signed:
		return fmt.Sprintf("s%d", k.Width)
	case Clock:
		return "clock"
	case Reset:
		return "reset"
	case Struct:
		parts := make([]string, len(k.Fields))
		for i, f := range k.Fields {
			parts[i] = fmt.Sprintf("%s:%v", f.Name, f.Kind)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case Tuple:
		parts := make([]string, len(k.Elems))
		for i, e := range k.Elems {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case Array:
		return fmt.Sprintf("[%v; %d]", *k.Base, k.Len)
	case Enum:
		parts := make([]string, len(k.Variants))
		for i, v := range k.Variants {
			parts[i] = fmt.Sprintf("%s=%d:%v", v.Name, v.Discriminant, v.Payload)
		}
		return "enum{" + strings.Join(parts, ", ") + "}"
	case Signal:
		return fmt.Sprintf("signal<%v>@%s", *k.Inner, k.Color)
	}
	return "<?>"
}

