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
	"hash/fnv"

	"gatecore/kind"
	"gatecore/sourcepool"
)

// Builder assigns fresh NodeIds and binds each one to a span in the
// underlying SpannedSource, standing in for what a real surface-language
// parser would do while walking its own concrete syntax tree. It exists so
// this repository's own tests and the demo kernels under cmd/gatecore can
// construct well-formed Kernels without a parser, which is explicitly out of
// scope (§1).
type Builder struct {
	src  *sourcepool.SpannedSource
	next sourcepool.NodeId
}

func NewBuilder(filename, name, source string) *Builder {
	id := ContentHash(name, source)
	return &Builder{src: sourcepool.NewSpannedSource(id, name, filename, source)}
}

// ContentHash computes the 64-bit function id (§3.1: "content hash of
// source") from a kernel's name and source text.
func ContentHash(name, source string) sourcepool.FunctionId {
	h := fnv.New64a()
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(source))
	return sourcepool.FunctionId(h.Sum64())
}

func (b *Builder) Source() *sourcepool.SpannedSource { return b.src }

// Node binds span [start,end) in the original source to a fresh NodeId.
func (b *Builder) Node(start, end int) sourcepool.NodeId {
	id := b.next
	b.next++
	b.src.Bind(id, sourcepool.Span{Start: start, End: end})
	return id
}

func (b *Builder) Lit(start, end int, k kind.Kind, value int64) *Literal {
	return &Literal{exprBase{node{b.Node(start, end)}}, k, value}
}

func (b *Builder) VarRef(start, end int, name string) *Var {
	return &Var{exprBase{node{b.Node(start, end)}}, name}
}

func (b *Builder) Bin(start, end int, op BinOp, l, r Expr) *Binary {
	return &Binary{exprBase{node{b.Node(start, end)}}, op, l, r}
}

func (b *Builder) Un(start, end int, op UnOp, arg Expr) *Unary {
	return &Unary{exprBase{node{b.Node(start, end)}}, op, arg}
}

func (b *Builder) IfExpr(start, end int, cond, then, els Expr) *If {
	return &If{exprBase{node{b.Node(start, end)}}, cond, then, els}
}

func (b *Builder) CallExpr(start, end int, callee string, args ...Expr) *Call {
	return &Call{exprBase{node{b.Node(start, end)}}, callee, args}
}

func (b *Builder) CaseExpr(start, end int, scrutinee Expr, arms ...CaseArm) *Case {
	return &Case{exprBase{node{b.Node(start, end)}}, scrutinee, arms}
}

func (b *Builder) EnumValue(start, end int, k kind.Kind, variant string, payload Expr) *EnumLit {
	return &EnumLit{exprBase{node{b.Node(start, end)}}, k, variant, payload}
}

func (b *Builder) Block(start, end int, stmts []Stmt, tail Expr) *Block {
	return &Block{node{b.Node(start, end)}, stmts, tail}
}

func (b *Builder) LetStmt(start, end int, name string, init Expr) *Let {
	return &Let{stmtBase{node{b.Node(start, end)}}, name, init}
}

func (b *Builder) ExprStatement(start, end int, value Expr) *ExprStmt {
	return &ExprStmt{stmtBase{node{b.Node(start, end)}}, value}
}

// Kernel finalizes the Kernel with the accumulated SpannedSource.
func (b *Builder) Kernel(name string, args []Arg, ret kind.Kind, body *Block) *Kernel {
	return &Kernel{
		FunctionId: b.src.FunctionId,
		Name:       name,
		Args:       args,
		Ret:        ret,
		Body:       body,
		Source:     b.src,
	}
}
