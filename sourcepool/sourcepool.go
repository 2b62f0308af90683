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

// Package sourcepool implements the symbol & source model shared across every
// IR (§3.5): it interns source text, spans, and function/node ids, and is
// extended (never rewritten) as lowering synthesizes new operands. Every
// synthetic operand created by a pass inherits the source location of the
// opcode that introduced it.
package sourcepool

import "fmt"

// FunctionId is a 64-bit content hash of a kernel's source (§3.1, §6).
type FunctionId uint64

// NodeId identifies one node in the originating AST, scoped to a FunctionId.
type NodeId int

// Span is a byte range into a SpannedSource's source text.
type Span struct {
	Start, End int
}

// SourceLocation pins a diagnostic to one node of one function, resolvable
// to a byte range through a SpannedSourceSet.
type SourceLocation struct {
	Func FunctionId
	Node NodeId
}

func (l SourceLocation) String() string {
	return fmt.Sprintf("%#x:n%d", uint64(l.Func), l.Node)
}

// SpannedSource binds one kernel's function id to its source text and a map
// from NodeId to byte range within that text, plus the originating filename.
type SpannedSource struct {
	FunctionId FunctionId
	Name       string
	Filename   string
	Source     string
	Spans      map[NodeId]Span
	// NextNodeId is handed out to passes that synthesize new AST-level nodes
	// (e.g. a discriminant literal materialized by PrecomputeDiscriminants);
	// it only ever increases, so ids stay unique within this function.
	NextNodeId NodeId
}

func NewSpannedSource(id FunctionId, name, filename, source string) *SpannedSource {
	return &SpannedSource{
		FunctionId: id,
		Name:       name,
		Filename:   filename,
		Source:     source,
		Spans:      make(map[NodeId]Span),
	}
}

// Bind records the byte range of an AST node.
func (s *SpannedSource) Bind(node NodeId, span Span) {
	s.Spans[node] = span
	if node >= s.NextNodeId {
		s.NextNodeId = node + 1
	}
}

// Synthesize allocates a fresh NodeId inheriting the span of an existing
// node — used whenever a pass introduces an operand with no counterpart in
// the original source (a folded literal, a desugared discriminant read).
func (s *SpannedSource) Synthesize(from NodeId) NodeId {
	id := s.NextNodeId
	s.NextNodeId++
	if span, ok := s.Spans[from]; ok {
		s.Spans[id] = span
	}
	return id
}

// Text returns the source snippet a node's span covers.
func (s *SpannedSource) Text(node NodeId) string {
	span, ok := s.Spans[node]
	if !ok {
		return ""
	}
	if span.Start < 0 || span.End > len(s.Source) || span.Start > span.End {
		return ""
	}
	return s.Source[span.Start:span.End]
}

// SpannedSourceSet holds every function compiled together and provides a
// global span resolver for diagnostics, concatenating byte offsets across
// functions the way a linker concatenates sections.
type SpannedSourceSet struct {
	byFunc map[FunctionId]*SpannedSource
	order  []FunctionId
}

func NewSpannedSourceSet() *SpannedSourceSet {
	return &SpannedSourceSet{byFunc: make(map[FunctionId]*SpannedSource)}
}

func (set *SpannedSourceSet) Add(src *SpannedSource) {
	if _, exists := set.byFunc[src.FunctionId]; !exists {
		set.order = append(set.order, src.FunctionId)
	}
	set.byFunc[src.FunctionId] = src
}

func (set *SpannedSourceSet) Get(id FunctionId) (*SpannedSource, bool) {
	s, ok := set.byFunc[id]
	return s, ok
}

// Resolve turns a SourceLocation into the filename, byte span, and source
// text a diagnostic renderer needs — the one place the global offset
// bookkeeping lives.
func (set *SpannedSourceSet) Resolve(loc SourceLocation) (filename string, span Span, text string, ok bool) {
	src, exists := set.byFunc[loc.Func]
	if !exists {
		return "", Span{}, "", false
	}
	sp, exists := src.Spans[loc.Node]
	if !exists {
		return src.Filename, Span{}, "", false
	}
	return src.Filename, sp, src.Text(loc.Node), true
}

// SymbolMap maps operands/slots at one IR stage to their originating source
// location and a human-readable name, for pretty-printing and diagnostics.
// Every IR stage keeps its own SymbolMap. MIR building fills the RHIF one;
// the RTL and NTL lowerings start theirs empty and copy no entries forward.
type SymbolMap[K comparable] struct {
	Locations map[K]SourceLocation
	Names     map[K]string
}

func NewSymbolMap[K comparable]() *SymbolMap[K] {
	return &SymbolMap[K]{
		Locations: make(map[K]SourceLocation),
		Names:     make(map[K]string),
	}
}

func (m *SymbolMap[K]) Bind(key K, loc SourceLocation, name string) {
	m.Locations[key] = loc
	if name != "" {
		m.Names[key] = name
	}
}

func (m *SymbolMap[K]) Location(key K) (SourceLocation, bool) {
	loc, ok := m.Locations[key]
	return loc, ok
}

func (m *SymbolMap[K]) Name(key K) string {
	return m.Names[key]
}

// Complete returns every key in keys that has no recorded location. The
// RHIF and RTL SymbolTableIsComplete passes do not call it: they check that
// every referenced slot or register has a declared kind.
func (m *SymbolMap[K]) Complete(keys []K) (missing []K) {
	for _, k := range keys {
		if _, ok := m.Locations[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}
