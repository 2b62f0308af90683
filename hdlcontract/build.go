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
package hdlcontract

import (
	"fmt"

	"gatecore/diag"
	"gatecore/ntl"
	"gatecore/rtl"
)

// Build produces the output-contract Module for one compiled kernel. The
// port list (name, direction, width, signedness) is read off rtlObj,
// since RTL is the last stage that still carries signedness (§3.3,
// §4.6 drops it down to bare wires); the body is read off ntlObj, the
// gate-level netlist the ports ultimately connect to. Both objects must
// come from the same compilation (same FunctionId) — Build does not
// re-derive one from the other.
func Build(rtlObj *rtl.Object, ntlObj *ntl.Object) (*Module, *diag.Error) {
	if rtlObj.FunctionId != ntlObj.FunctionId {
		return nil, diag.ICE("hdlcontract: rtl and ntl objects come from different kernels")
	}
	if len(rtlObj.Args) != len(ntlObj.Inputs) {
		return nil, diag.ICE("hdlcontract: rtl argument count does not match ntl input count")
	}

	m := &Module{
		Name:      ntlObj.Name,
		PortWires: make(map[string][]ntl.Wire),
	}

	for i, reg := range rtlObj.Args {
		k := rtlObj.RegKindOf(reg)
		name := fmt.Sprintf("arg%d", i)
		m.Ports = append(m.Ports, Port{Name: name, Direction: Input, Width: k.Width, Signed: k.Signed})
		m.PortWires[name] = ntlObj.Inputs[i]
	}

	retKind := rtlObj.RegKindOf(rtlObj.Ret)
	m.Ports = append(m.Ports, Port{Name: "out", Direction: Output, Width: retKind.Width, Signed: retKind.Signed})
	m.PortWires["out"] = ntlObj.Outputs

	for _, inst := range ntlObj.Ops {
		stmt := buildStatement(inst)
		if stmt != nil {
			m.Body = append(m.Body, stmt)
		}
	}
	return m, nil
}

func buildStatement(inst ntl.Inst) Statement {
	switch inst.Op {
	case ntl.OpComment:
		// Annotation only; the output contract has no comment-statement
		// node (§6 lists assigns, always-blocks, case statements, and
		// instance declarations only).
		return nil
	case ntl.OpAssign:
		return Assign{LHS: ntl.RegWire(inst.Dst), RHS: buildExpr(inst.Args[0])}
	case ntl.OpBinary:
		aux := inst.Aux.(ntl.BinAux)
		return Assign{LHS: ntl.RegWire(inst.Dst), RHS: BinaryExpr{Op: aux.Op, A: buildExpr(inst.Args[0]), B: buildExpr(inst.Args[1])}}
	case ntl.OpUnary:
		aux := inst.Aux.(ntl.UnAux)
		args := make([]Expr, len(inst.Args))
		for i, a := range inst.Args {
			args[i] = buildExpr(a)
		}
		return Assign{LHS: ntl.RegWire(inst.Dst), RHS: UnaryExpr{Op: aux.Op, Args: args}}
	case ntl.OpSelect:
		return Assign{LHS: ntl.RegWire(inst.Dst), RHS: SelectExpr{
			Cond: buildExpr(inst.Args[0]), Then: buildExpr(inst.Args[1]), Else: buildExpr(inst.Args[2]),
		}}
	case ntl.OpCase:
		aux := inst.Aux.(ntl.CaseAux)
		arms := make([]CaseStatementArm, len(aux.Entries))
		for i, e := range aux.Entries {
			arms[i] = CaseStatementArm{
				Pattern:  e.Pattern,
				Wildcard: e.Wildcard,
				Body:     []Statement{Assign{LHS: ntl.RegWire(inst.Dst), RHS: buildExpr(e.Value)}},
			}
		}
		return AlwaysBlock{
			Sensitivity: aux.Discriminant,
			Body:        []Statement{CaseStatement{Selector: aux.Discriminant, Arms: arms}},
		}
	case ntl.OpBlackBox:
		aux := inst.Aux.(ntl.BlackBoxAux)
		conns := make(map[string][]ntl.Wire, len(aux.Inputs)+len(aux.Outputs))
		for i, bits := range aux.Inputs {
			conns[fmt.Sprintf("in%d", i)] = bits
		}
		for i, bits := range aux.Outputs {
			conns[fmt.Sprintf("out%d", i)] = bits
		}
		return InstanceDecl{ModuleName: aux.Name, InstanceName: fmt.Sprintf("u_w%d", inst.Dst), Connections: conns}
	}
	return nil
}

func buildExpr(w ntl.Wire) Expr { return WireExpr{Wire: w} }
