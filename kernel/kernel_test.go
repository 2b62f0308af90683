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
package kernel

import (
	"testing"

	"gatecore/kind"
)

func TestContentHashIsDeterministicAndDistinguishesSource(t *testing.T) {
	a := ContentHash("f", "1 + 2")
	b := ContentHash("f", "1 + 2")
	if a != b {
		t.Fatalf("expected ContentHash to be deterministic for identical inputs")
	}
	if ContentHash("f", "1 + 3") == a {
		t.Fatalf("expected different source text to produce a different FunctionId")
	}
	if ContentHash("g", "1 + 2") == a {
		t.Fatalf("expected different kernel names to produce a different FunctionId")
	}
}

func TestBuilderBindsSpansAndAssignsFreshNodeIds(t *testing.T) {
	b := NewBuilder("f.rhdl", "f", "1 + 2")
	one := b.Lit(0, 1, kind.NewBits(8), 1)
	two := b.Lit(4, 5, kind.NewBits(8), 2)
	if one.ID() == two.ID() {
		t.Fatalf("expected distinct node ids for distinct AST nodes")
	}
	if b.Source().Text(one.ID()) != "1" || b.Source().Text(two.ID()) != "2" {
		t.Fatalf("expected each node's span to resolve back to its source text")
	}
}

func TestBuilderCallExprBuildsCallNode(t *testing.T) {
	b := NewBuilder("f.rhdl", "f", "g(1)")
	arg := b.Lit(2, 3, kind.NewBits(8), 1)
	call := b.CallExpr(0, 4, "g", arg)
	if call.Callee != "g" {
		t.Fatalf("expected Callee %q, got %q", "g", call.Callee)
	}
	if len(call.Args) != 1 || call.Args[0] != arg {
		t.Fatalf("expected the Call to carry its argument expression")
	}
}

func TestBuilderKernelCarriesAccumulatedSource(t *testing.T) {
	b := NewBuilder("f.rhdl", "f", "1")
	lit := b.Lit(0, 1, kind.NewBits(8), 1)
	body := b.Block(0, 1, nil, lit)
	k := b.Kernel("f", nil, kind.NewBits(8), body)
	if k.Source != b.Source() {
		t.Fatalf("expected the finalized Kernel to share the builder's SpannedSource")
	}
	if k.FunctionId != b.Source().FunctionId {
		t.Fatalf("expected the Kernel's FunctionId to match its source's")
	}
	if k.Body.Tail != lit {
		t.Fatalf("expected the Kernel body's tail expression to be the literal")
	}
}
