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

import "fmt"

func (op Operand) String() string {
	if op.Tag == OperandLiteral {
		return fmt.Sprintf("lit%d", op.Lit)
	}
	return fmt.Sprintf("r%d", op.Reg)
}

func (k RegisterKind) String() string {
	if k.Signed {
		return fmt.Sprintf("s%d", k.Width)
	}
	return fmt.Sprintf("u%d", k.Width)
}

func (i Inst) String() string {
	s := fmt.Sprintf("%s = %s", Operand{Tag: OperandRegister, Reg: i.Dst}, i.Op)
	for _, a := range i.Args {
		s += fmt.Sprintf(" %s", a)
	}
	if aux := i.Aux; aux != nil {
		s += fmt.Sprintf(" %+v", aux)
	}
	return s
}

// String renders one compiled kernel's register stream, mirroring
// rhif.Object.String() one stage down.
func (o *Object) String() string {
	s := fmt.Sprintf("func %s(", o.Name)
	for i, arg := range o.Args {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s: %s", Operand{Tag: OperandRegister, Reg: arg}, o.RegKindOf(arg))
	}
	s += fmt.Sprintf(") -> %s {\n", o.RegKindOf(o.Ret))
	for _, inst := range o.Ops {
		s += fmt.Sprintf("  %s\n", inst)
	}
	s += fmt.Sprintf("  ret %s\n}\n", Operand{Tag: OperandRegister, Reg: o.Ret})
	return s
}
