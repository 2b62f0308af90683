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

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"gatecore/diag"
)

// Pass is the §4.1 pass interface: a static description and a pure
// Object-to-Object transform. A pass takes ownership of its input and
// returns either a rewritten Object or a diag.Error; it never partially
// mutates on failure, because Go's pass implementations below only mutate
// the (already-owned) *Object they were handed and return early on error
// before any caller observes a half-rewritten Op list.
type Pass interface {
	Description() string
	Run(*Object) (*Object, *diag.Error)
}

// Fingerprint is an order-sensitive hash of every opcode and slot kind,
// used by RunToFixedPoint to detect quiescence (§4.3, §8's idempotence law).
// The driver's kernel cache does not use it: it keys on kernel names and
// function ids.
func Fingerprint(o *Object) uint64 {
	h := sha256.New()
	var buf [8]byte
	putU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	putU64(uint64(len(o.Ops)))
	for _, inst := range o.Ops {
		putU64(uint64(inst.Op))
		putU64(uint64(inst.Dst))
		putU64(uint64(len(inst.Args)))
		for _, a := range inst.Args {
			putU64(uint64(a))
		}
		h.Write([]byte(fmt.Sprintf("%v", inst.Aux)))
	}
	for id := SlotId(0); id < o.nextSlot; id++ {
		s, ok := o.Slots[id]
		if !ok {
			continue
		}
		putU64(uint64(s.Tag))
		h.Write([]byte(s.Kind.String()))
		if s.Value != nil {
			h.Write(s.Value.Bytes())
		}
	}
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum[:8])
}

// RunToFixedPoint runs passes in the given order, repeating the whole list
// until the Object's Fingerprint stops changing (§4.3: "The loop iterates
// until an IR fingerprint... is stable"). It returns the number of rounds
// performed, mainly for diagnostics/tests.
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
