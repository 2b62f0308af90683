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

import "gatecore/diag"

// Pass is the RTL-stage counterpart of rhif.Pass. Unlike RHIF's passes,
// §4.5 runs these exactly once each, in a fixed order, rather than to a
// fixed point.
type Pass interface {
	Description() string
	Run(*Object) (*Object, *diag.Error)
}

// RunOnce runs each pass exactly once, in the given order, short-circuiting
// on the first error.
func RunOnce(o *Object, passes []Pass) (*Object, *diag.Error) {
	for _, p := range passes {
		next, err := p.Run(o)
		if err != nil {
			return nil, err
		}
		o = next
	}
	return o, nil
}
