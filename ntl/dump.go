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

import "fmt"

func (w Wire) String() string {
	if w.Tag == WireConst {
		return w.Const.String()
	}
	return fmt.Sprintf("w%d", w.Reg)
}

func (i Inst) String() string {
	s := fmt.Sprintf("w%d = %s", i.Dst, i.Op)
	for _, a := range i.Args {
		s += fmt.Sprintf(" %s", a)
	}
	switch aux := i.Aux.(type) {
	case BinAux:
		s += fmt.Sprintf(" [%v]", aux.Op)
	case UnAux:
		s += fmt.Sprintf(" [%v]", aux.Op)
	case CaseAux:
		s += fmt.Sprintf(" on %v (%d entries)", aux.Discriminant, len(aux.Entries))
	case CommentAux:
		s += fmt.Sprintf(" %q", aux.Text)
	case BlackBoxAux:
		s += fmt.Sprintf(" %q", aux.Name)
	}
	return s
}

// String renders the gate-level netlist one wire op per line, in the same
// compiler-transcript idiom as rhif.Object.String()/rtl.Object.String() one
// stage up.
func (o *Object) String() string {
	s := fmt.Sprintf("netlist %s(", o.Name)
	for i, bits := range o.Inputs {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("arg%d[%d]", i, len(bits))
	}
	s += fmt.Sprintf(") -> [%d] {\n", len(o.Outputs))
	for _, inst := range o.Ops {
		s += fmt.Sprintf("  %s\n", inst)
	}
	s += fmt.Sprintf("  out %v\n}\n", o.Outputs)
	return s
}
