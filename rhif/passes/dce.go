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
package passes

import (
	"gatecore/diag"
	"gatecore/rhif"
)

// RemoveUnusedLiterals drops every slot, literal or register, that no
// surviving opcode, Ret, or Arg reads. The ops that write such registers are
// deleted by the separate RemoveUnusedRegisters pass below.
type RemoveUnusedLiterals struct{}

func (RemoveUnusedLiterals) Description() string {
	return "drop literal and register slots that nothing reads"
}

func (RemoveUnusedLiterals) Run(o *rhif.Object) (*rhif.Object, *diag.Error) {
	live := map[rhif.SlotId]bool{o.Ret: true}
	for _, a := range o.Args {
		live[a] = true
	}
	for _, inst := range o.Ops {
		inst.VisitArgs(func(id rhif.SlotId) { live[id] = true })
	}
	for id := range o.Slots {
		if !live[id] {
			delete(o.Slots, id)
		}
	}
	return o, nil
}

// RemoveUnusedRegisters drops Ops whose Dst is a register nothing downstream
// reads and which has no side effect (every RHIF opcode is pure, so any
// dead Dst is safe to delete outright).
type RemoveUnusedRegisters struct{}

func (RemoveUnusedRegisters) Description() string {
	return "delete opcodes whose result register is never read"
}

func (RemoveUnusedRegisters) Run(o *rhif.Object) (*rhif.Object, *diag.Error) {
	live := map[rhif.SlotId]bool{o.Ret: true}
	for _, a := range o.Args {
		live[a] = true
	}
	for _, inst := range o.Ops {
		inst.VisitArgs(func(id rhif.SlotId) { live[id] = true })
	}
	out := make([]rhif.Inst, 0, len(o.Ops))
	for _, inst := range o.Ops {
		if inst.Dst == o.Ret || live[inst.Dst] {
			out = append(out, inst)
		}
	}
	o.Ops = out
	return o, nil
}
