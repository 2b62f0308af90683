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

import "gatecore/rhif"

// Pipeline returns the §4.3 RHIF passes in the fixed order RunToFixedPoint
// repeats until the object's fingerprint stabilizes.
func Pipeline() []rhif.Pass {
	return []rhif.Pass{
		SymbolTableIsComplete{},
		PrecomputeDiscriminants{},
		LowerDynamicIndicesWithConstantArguments{},
		LowerInferredCasts{},
		PropagateLiterals{},
		FoldConstantExprs{},
		RemoveUnneededMuxes{},
		RemoveEmptyCases{},
		RemoveUselessCasts{},
		RemoveUnusedLiterals{},
		RemoveUnusedRegisters{},
	}
}
