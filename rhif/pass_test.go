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
	"math/big"
	"testing"

	"gatecore/diag"
	"gatecore/kind"
)

func TestFingerprintStableAcrossIdenticalObjects(t *testing.T) {
	build := func() *Object {
		o := NewObject(1, "f")
		bits8 := kind.NewBits(8)
		l := o.InternLiteral(bits8, big.NewInt(3))
		r := o.InternLiteral(bits8, big.NewInt(5))
		dst := o.NewRegister(bits8)
		o.Append(Inst{Op: OpBinary, Dst: dst, Args: []SlotId{l, r}, Aux: BinAux{Op: BinAnd}})
		o.Ret = dst
		return o
	}
	a, b := build(), build()
	if Fingerprint(a) != Fingerprint(b) {
		t.Fatalf("expected two independently built but structurally identical objects to fingerprint the same")
	}
}

func TestFingerprintChangesWhenOpsChange(t *testing.T) {
	o := NewObject(1, "f")
	bits8 := kind.NewBits(8)
	l := o.InternLiteral(bits8, big.NewInt(3))
	dst := o.NewRegister(bits8)
	o.Ret = dst
	before := Fingerprint(o)
	o.Append(Inst{Op: OpAssign, Dst: dst, Args: []SlotId{l}})
	after := Fingerprint(o)
	if before == after {
		t.Fatalf("expected appending an opcode to change the fingerprint")
	}
}

type constPass struct{ ran int }

func (p *constPass) Description() string { return "no-op, counts invocations" }
func (p *constPass) Run(o *Object) (*Object, *diag.Error) {
	p.ran++
	return o, nil
}

type onceThenNoopPass struct {
	o        *Object
	fired    bool
	dst, lit SlotId
}

func (p *onceThenNoopPass) Description() string { return "rewrites dst once, then stabilizes" }
func (p *onceThenNoopPass) Run(o *Object) (*Object, *diag.Error) {
	if !p.fired {
		o.Append(Inst{Op: OpAssign, Dst: p.dst, Args: []SlotId{p.lit}})
		p.fired = true
	}
	return o, nil
}

func TestRunToFixedPointStopsWhenFingerprintStabilizes(t *testing.T) {
	o := NewObject(1, "f")
	bits8 := kind.NewBits(8)
	lit := o.InternLiteral(bits8, big.NewInt(1))
	dst := o.NewRegister(bits8)
	o.Ret = dst
	pass := &onceThenNoopPass{o: o, dst: dst, lit: lit}

	out, rounds, err := RunToFixedPoint(o, []Pass{pass})
	if err != nil {
		t.Fatalf("RunToFixedPoint: %v", err)
	}
	if rounds != 2 {
		t.Fatalf("expected 2 rounds (one that mutates, one that confirms quiescence), got %d", rounds)
	}
	if len(out.Ops) != 1 {
		t.Fatalf("expected the single mutation to have run exactly once, got %d ops", len(out.Ops))
	}
}

func TestRunToFixedPointRunsAtLeastOnceWhenAlreadyStable(t *testing.T) {
	o := NewObject(1, "f")
	bits8 := kind.NewBits(8)
	o.Ret = o.NewRegister(bits8)
	pass := &constPass{}

	_, rounds, err := RunToFixedPoint(o, []Pass{pass})
	if err != nil {
		t.Fatalf("RunToFixedPoint: %v", err)
	}
	if rounds != 1 {
		t.Fatalf("expected exactly 1 round for an already-stable object, got %d", rounds)
	}
	if pass.ran != 1 {
		t.Fatalf("expected the pass to run exactly once, ran %d times", pass.ran)
	}
}
