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
	"gatecore/ntl"
	"gatecore/utils"
)

// DeadCodeElimination deletes every op whose result register is read neither
// by the outputs nor by any op. A read by an op that is itself dead still
// counts, so a dead chain loses one op per run and the fixed-point loop
// removes the rest. Comment and BlackBox ops are always kept.
type DeadCodeElimination struct{}

func (DeadCodeElimination) Description() string { return "delete unreferenced wire operations" }

func (DeadCodeElimination) Run(o *ntl.Object) (*ntl.Object, *diag.Error) {
	live := utils.NewSet[ntl.RegId]()
	for _, w := range o.Outputs {
		if w.Tag == ntl.WireRegister {
			live.Add(w.Reg)
		}
	}
	for _, inst := range o.Ops {
		inst.VisitArgs(func(w ntl.Wire) {
			if w.Tag == ntl.WireRegister {
				live.Add(w.Reg)
			}
		})
		if inst.Op == ntl.OpBlackBox {
			if aux, ok := inst.Aux.(ntl.BlackBoxAux); ok {
				for _, vec := range aux.Outputs {
					for _, w := range vec {
						if w.Tag == ntl.WireRegister {
							live.Add(w.Reg)
						}
					}
				}
			}
		}
	}
	out := make([]ntl.Inst, 0, len(o.Ops))
	for _, inst := range o.Ops {
		if inst.Op == ntl.OpComment || inst.Op == ntl.OpBlackBox || live.Contains(inst.Dst) {
			out = append(out, inst)
		}
	}
	o.Ops = out
	return o, nil
}
