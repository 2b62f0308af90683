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
package sourcepool

import "testing"

func TestBindAndText(t *testing.T) {
	src := NewSpannedSource(1, "f", "f.rhdl", "1 + 2")
	src.Bind(0, Span{Start: 0, End: 1})
	src.Bind(1, Span{Start: 4, End: 5})
	if got := src.Text(0); got != "1" {
		t.Errorf("Text(0) = %q, want %q", got, "1")
	}
	if got := src.Text(1); got != "2" {
		t.Errorf("Text(1) = %q, want %q", got, "2")
	}
}

func TestBindAdvancesNextNodeId(t *testing.T) {
	src := NewSpannedSource(1, "f", "f.rhdl", "1 + 2")
	src.Bind(5, Span{Start: 0, End: 1})
	if src.NextNodeId != 6 {
		t.Fatalf("expected NextNodeId to advance past the highest bound node, got %d", src.NextNodeId)
	}
}

func TestSynthesizeInheritsSpanOfOrigin(t *testing.T) {
	src := NewSpannedSource(1, "f", "f.rhdl", "1 + 2")
	src.Bind(0, Span{Start: 0, End: 1})
	synth := src.Synthesize(0)
	if synth == 0 {
		t.Fatalf("expected a fresh node id distinct from the origin")
	}
	if src.Text(synth) != src.Text(0) {
		t.Fatalf("expected the synthesized node to inherit its origin's span")
	}
}

func TestSpannedSourceSetResolve(t *testing.T) {
	set := NewSpannedSourceSet()
	src := NewSpannedSource(1, "f", "f.rhdl", "1 + 2")
	src.Bind(0, Span{Start: 0, End: 1})
	set.Add(src)

	filename, span, text, ok := set.Resolve(SourceLocation{Func: 1, Node: 0})
	if !ok {
		t.Fatalf("expected Resolve to find the bound node")
	}
	if filename != "f.rhdl" || text != "1" || span != (Span{Start: 0, End: 1}) {
		t.Fatalf("unexpected resolve result: filename=%q span=%+v text=%q", filename, span, text)
	}

	if _, _, _, ok := set.Resolve(SourceLocation{Func: 99, Node: 0}); ok {
		t.Fatalf("expected Resolve to fail for an unknown function id")
	}
}

func TestSymbolMapCompleteReportsMissing(t *testing.T) {
	m := NewSymbolMap[int]()
	m.Bind(1, SourceLocation{Func: 1, Node: 0}, "x")
	missing := m.Complete([]int{1, 2, 3})
	if len(missing) != 2 || missing[0] != 2 || missing[1] != 3 {
		t.Fatalf("expected {2,3} missing, got %v", missing)
	}
	if m.Name(1) != "x" {
		t.Fatalf("expected bound name %q, got %q", "x", m.Name(1))
	}
}
