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
	"testing"

	"gatecore/kind"
	"gatecore/rhif"
)

func TestLowerBinaryPreservesWidth(t *testing.T) {
	src := rhif.NewObject(1, "f")
	bits8 := kind.NewBits(8)
	l := src.InternLiteral(bits8, big.NewInt(3))
	r := src.InternLiteral(bits8, big.NewInt(5))
	dst := src.NewRegister(bits8)
	src.Append(rhif.Inst{Op: rhif.OpBinary, Dst: dst, Args: []rhif.SlotId{l, r}, Aux: rhif.BinAux{Op: rhif.BinAnd}})
	src.Ret = dst

	out, err := Lower(src)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if len(out.Ops) != 1 || out.Ops[0].Op != OpBinary {
		t.Fatalf("expected one lowered Binary op, got %+v", out.Ops)
	}
	if out.RegKindOf(out.Ret).Width != 8 {
		t.Fatalf("expected the return register to keep its 8-bit width, got %d", out.RegKindOf(out.Ret).Width)
	}
}

func TestLowerSignedKindCarriesSignedness(t *testing.T) {
	src := rhif.NewObject(1, "f")
	signed8 := kind.NewSigned(8)
	lit := src.InternLiteral(signed8, big.NewInt(-1))
	dst := src.NewRegister(signed8)
	src.Append(rhif.Inst{Op: rhif.OpAssign, Dst: dst, Args: []rhif.SlotId{lit}})
	src.Ret = dst

	out, err := Lower(src)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if !out.RegKindOf(out.Ret).Signed {
		t.Fatalf("expected the signed Kind to carry through as a signed RegisterKind")
	}
}

func TestLowerRejectsUnresolvedExec(t *testing.T) {
	src := rhif.NewObject(1, "f")
	bits8 := kind.NewBits(8)
	dst := src.NewRegister(bits8)
	src.Append(rhif.Inst{Op: rhif.OpExec, Dst: dst, Aux: rhif.ExecAux{Callee: "g"}})
	src.Ret = dst

	if _, err := Lower(src); err == nil {
		t.Fatalf("expected Lower to reject an unresolved Exec as an internal error")
	}
}
