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

import "gatecore/ntl"

// Pipeline returns the §4.7 fixed-point gate optimizer passes, run
// repeatedly until the object's Fingerprint stops changing.
func Pipeline() []ntl.Pass {
	return []ntl.Pass{
		RemoveExtraLiterals{},
		ConstantRegisterElimination{},
		LowerCase{},
		LowerSelects{},
		RemoveExtraRegisters{},
		ConstantPropagation{},
		LowerBitwiseOpWithConstant{},
		LowerAnyAll{},
		DeadCodeElimination{},
	}
}

// VerificationPipeline returns the post-fixed-point checks (§4.7) that run
// exactly once after the optimizer quiesces, never rewriting the logic
// itself (ReorderInstructions excepted, which only reorders).
func VerificationPipeline() []ntl.Pass {
	return []ntl.Pass{
		SingleRegisterWrite{},
		ReorderInstructions{},
		CheckForUndriven{},
	}
}
