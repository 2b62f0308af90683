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

import "fmt"

func (i Inst) String() string {
	s := fmt.Sprintf("r%d = %s", i.Dst, i.Op)
	for _, a := range i.Args {
		s += fmt.Sprintf(" r%d", a)
	}
	if aux := i.Aux; aux != nil {
		s += fmt.Sprintf(" %+v", aux)
	}
	return s
}

// String renders the object the way a compiler transcript would: one line
// per opcode, slot kinds summarized at the top. There is no dot-file or
// waveform output here (§1, §5: no I/O inside the core) — a driver that
// wants a file just writes this string out itself.
func (o *Object) String() string {
	s := fmt.Sprintf("func %s(", o.Name)
	for i, arg := range o.Args {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("r%d: %s", arg, o.KindOf(arg))
	}
	s += fmt.Sprintf(") -> %s {\n", o.KindOf(o.Ret))
	for _, inst := range o.Ops {
		s += fmt.Sprintf("  %s\n", inst)
	}
	s += fmt.Sprintf("  ret r%d\n}\n", o.Ret)
	return s
}
