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

import "testing"

func TestBitValueUnequal(t *testing.T) {
	if Bit0 == BitX || Bit1 == BitX {
		t.Fatalf("BitX must compare unequal to both Bit0 and Bit1")
	}
	if Bit0 == Bit1 {
		t.Fatalf("Bit0 must compare unequal to Bit1")
	}
}

func TestWireEqual(t *testing.T) {
	a := RegWire(3)
	b := RegWire(3)
	c := RegWire(4)
	if !a.Equal(b) {
		t.Fatalf("same register wires should compare equal")
	}
	if a.Equal(c) {
		t.Fatalf("different register wires should not compare equal")
	}
	if ConstWire(Bit0).Equal(ConstWire(Bit1)) {
		t.Fatalf("distinct constant wires should not compare equal")
	}
	if RegWire(0).Equal(ConstWire(Bit0)) {
		t.Fatalf("a register wire and a constant wire should never compare equal")
	}
}

func TestNewRegisterAssignsDistinctIds(t *testing.T) {
	o := NewObject(1, "k")
	a := o.NewDataRegister()
	b := o.NewDataRegister()
	if a == b {
		t.Fatalf("successive NewDataRegister calls must return distinct ids")
	}
	if o.Kinds[a] != KindData || o.Kinds[b] != KindData {
		t.Fatalf("NewDataRegister should record KindData")
	}
}
