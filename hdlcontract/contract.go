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

// Package hdlcontract implements the §6 output contract: the boundary
// between this core and the (out-of-scope) Verilog emitter. It only fixes
// the *shape* a module must be handed over in — a port list with exact
// widths and explicit signedness, and a body of HDL-AST statement nodes
// (continuous assigns, always-blocks with sensitivity lists, case
// statements, instance declarations). It never formats or emits any
// Verilog text; a real emitter is expected to walk this tree and print it
// (§1, §6: "the emitter is expected to format text only").
package hdlcontract

import "gatecore/ntl"

// Direction is a port's signal direction.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// Port is one module port: exact width, explicit signedness, per §6's
// "widths are exact; signedness is explicit."
type Port struct {
	Name      string
	Direction Direction
	Width     int
	Signed    bool
}

// Module is one compiled kernel's output-contract shape: a name, a port
// list, and a body of HDL-AST statements. PortWires records, for each
// port, the underlying gate-level wires it is bound to (LSB first) so a
// renderer can connect the declared ports to the body below without
// re-deriving the bit layout itself.
type Module struct {
	Name      string
	Ports     []Port
	PortWires map[string][]ntl.Wire
	Body      []Statement
}

// Statement is any HDL-AST statement node.
type Statement interface{ hdlStmt() }

// Assign is a continuous assignment (`assign lhs = rhs;`) when it appears
// directly in a Module's Body, or a procedural assignment when nested
// inside an AlwaysBlock/CaseStatement arm — the same node serves both
// roles, since this package models statement *shape*, not Verilog's
// blocking/non-blocking assignment semantics (out of scope, §1).
type Assign struct {
	LHS ntl.Wire
	RHS Expr
}

func (Assign) hdlStmt() {}

// AlwaysBlock is an `always @(*) ...` block with an explicit sensitivity
// list, per §6.
type AlwaysBlock struct {
	Sensitivity []ntl.Wire
	Body        []Statement
}

func (AlwaysBlock) hdlStmt() {}

// CaseStatementArm pairs a bit pattern (nil Pattern with Wildcard=true
// means the default arm) with the statements it selects.
type CaseStatementArm struct {
	Pattern  []ntl.BitValue
	Wildcard bool
	Body     []Statement
}

// CaseStatement selects one arm based on Selector's bits, mirroring
// ntl.CaseAux one level up in the output contract.
type CaseStatement struct {
	Selector []ntl.Wire
	Arms     []CaseStatementArm
}

func (CaseStatement) hdlStmt() {}

// InstanceDecl references a child module by name, connecting its ports to
// wires in the parent (§6: "instance declarations referencing child
// modules") — the output-contract counterpart of an NTL BlackBox op.
type InstanceDecl struct {
	ModuleName   string
	InstanceName string
	Connections  map[string][]ntl.Wire
}

func (InstanceDecl) hdlStmt() {}

// Expr is any HDL-AST expression appearing on the right-hand side of an
// Assign or as a CaseStatement selector bit.
type Expr interface{ hdlExpr() }

type WireExpr struct{ Wire ntl.Wire }

func (WireExpr) hdlExpr() {}

type BinaryExpr struct {
	Op   ntl.BinOp
	A, B Expr
}

func (BinaryExpr) hdlExpr() {}

type UnaryExpr struct {
	Op   ntl.UnOp
	Args []Expr
}

func (UnaryExpr) hdlExpr() {}

// SelectExpr is a ternary mux: Cond ? Then : Else.
type SelectExpr struct {
	Cond, Then, Else Expr
}

func (SelectExpr) hdlExpr() {}
