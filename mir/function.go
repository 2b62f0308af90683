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

// Package mir implements the §3.1 typed three-address IR: flattening a
// kernel.Kernel's nested expressions into fresh-register opcodes, while
// accumulating type-equivalence constraints that must unify before the
// result is a valid rhif.Object. MIR and RHIF share one Inst/Slot/Op
// vocabulary, defined once in package rhif (see DESIGN.md); this package's
// own contribution is strictly the equivalence set and its union-find
// solver.
package mir

import (
	"gatecore/rhif"
	"gatecore/sourcepool"
)

// Equivalence records that slots A and B must share the same Kind once
// solved, and the source node that introduced the constraint (an
// assignment, an operator's shared-width requirement, a branch merge).
type Equivalence struct {
	A, B   rhif.SlotId
	Origin sourcepool.SourceLocation
}

// Function is one MIR-stage compilation unit: a rhif.Object under
// construction plus the equivalence pairs accumulated while flattening.
type Function struct {
	Object       *rhif.Object
	Equivalences []Equivalence
}

func NewFunction(obj *rhif.Object) *Function {
	return &Function{Object: obj}
}

// Equate records that a and b must unify, originating at loc.
func (f *Function) Equate(a, b rhif.SlotId, loc sourcepool.SourceLocation) {
	if a == b {
		return
	}
	f.Equivalences = append(f.Equivalences, Equivalence{A: a, B: b, Origin: loc})
}
