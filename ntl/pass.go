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

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"gatecore/diag"
)

// Pass is the NTL-stage counterpart of rhif.Pass: the optimizer (§4.7) runs
// these to a fixed point, the same way RHIF's passes do.
type Pass interface {
	Description() string
	Run(*Object) (*Object, *diag.Error)
}

// Fingerprint hashes every op and register kind, order-sensitive, to drive
// RunToFixedPoint's quiescence check.
func Fingerprint(o *Object) uint64 {
	h := sha256.New()
	var buf [8]byte
	putU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	putWire := func(w Wire) {
		putU64(uint64(w.Tag))
		putU64(uint64(w.Reg))
		putU64(uint64(w.Const))
	}
	putU64(uint64(len(o.Ops)))
	for _, inst := range o.Ops {
		putU64(uint64(inst.Op))
		putU64(uint64(inst.Dst))
		putU64(uint64(len(inst.Args)))
		for _, a := range inst.Args {
			putWire(a)
		}
		h.Write([]byte(fmt.Sprintf("%v", inst.Aux)))
	}
	for id := RegId(0); id < o.nextReg; id++ {
		k, ok := o.Kinds[id]
		if !ok {
			continue
		}
		putU64(uint64(k))
	}
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum[:8])
}

// RunToFixedPoint runs passes in the given order, repeating until the
// Object's Fingerprint stabilizes — §4.7's "the deep core" quiescence loop.
func RunToFixedPoint(o *Object, passes []Pass) (*Object, int, *diag.Error) {
	rounds := 0
	prev := Fingerprint(o)
	for {
		rounds++
		for _, p := range passes {
			next, err := p.Run(o)
			if err != nil {
				return nil, rounds, err
			}
			o = next
		}
		cur := Fingerprint(o)
		if cur == prev {
			return o, rounds, nil
		}
		prev = cur
	}
}

// RunOnce runs passes exactly once each, in order — used for the §4.7
// post-fixed-point verification passes, which must not loop.
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
