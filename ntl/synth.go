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

import "gatecore/sourcepool"

// synth holds the gate-emission primitives shared by lower.go's opcode
// handlers: every RTL arithmetic/comparison op bottoms out in one of these.
type synth struct {
	o   *Object
	loc sourcepool.SourceLocation
}

func (s *synth) reg() RegId { return s.o.NewDataRegister() }

func (s *synth) emit(op Op, args []Wire, aux interface{}) Wire {
	dst := s.reg()
	s.o.Append(Inst{Op: op, Dst: dst, Args: args, Aux: aux, Loc: s.loc})
	return RegWire(dst)
}

func (s *synth) bin(op BinOp, a, b Wire) Wire {
	return s.emit(OpBinary, []Wire{a, b}, BinAux{Op: op})
}

func (s *synth) un(op UnOp, args ...Wire) Wire {
	return s.emit(OpUnary, args, UnAux{Op: op})
}

func (s *synth) not(a Wire) Wire { return s.un(UnNot, a) }

// fullAdder returns (sum, carryOut) for one bit position.
func (s *synth) fullAdder(a, b, cin Wire) (Wire, Wire) {
	axb := s.bin(BinXor, a, b)
	sum := s.bin(BinXor, axb, cin)
	aAndB := s.bin(BinAnd, a, b)
	cinAndAxb := s.bin(BinAnd, cin, axb)
	cout := s.bin(BinOr, aAndB, cinAndAxb)
	return sum, cout
}

// ripple adds two equal-length bit vectors (LSB first) with the given
// carry-in, returning a result of the same length plus the final carry-out
// — a textbook ripple-carry adder (§4.7's arithmetic primitive).
func (s *synth) ripple(a, b []Wire, cin Wire) ([]Wire, Wire) {
	n := len(a)
	out := make([]Wire, n)
	carry := cin
	for i := 0; i < n; i++ {
		var sum Wire
		sum, carry = s.fullAdder(a[i], b[i], carry)
		out[i] = sum
	}
	return out, carry
}

func (s *synth) zero() Wire { return ConstWire(Bit0) }
func (s *synth) one() Wire  { return ConstWire(Bit1) }

// invertAll returns the bitwise complement of a vector.
func (s *synth) invertAll(a []Wire) []Wire {
	out := make([]Wire, len(a))
	for i, w := range a {
		out[i] = s.not(w)
	}
	return out
}

// subtract computes a - b over equal-length vectors via two's complement
// (a + ~b + 1), returning the difference and the adder's final carry-out —
// for unsigned operands, carry-out == 0 means a < b (a borrow occurred).
func (s *synth) subtract(a, b []Wire) ([]Wire, Wire) {
	return s.ripple(a, s.invertAll(b), s.one())
}

// addTruncated adds two vectors of possibly differing lengths, widening the
// shorter with zero-constant wires, and truncates the result to width bits.
func (s *synth) addTruncated(a, b []Wire, width int) []Wire {
	av := s.widen(a, width)
	bv := s.widen(b, width)
	sum, _ := s.ripple(av, bv, s.zero())
	return sum
}

func (s *synth) widen(a []Wire, width int) []Wire {
	if len(a) >= width {
		return a[:width]
	}
	out := make([]Wire, width)
	copy(out, a)
	for i := len(a); i < width; i++ {
		out[i] = s.zero()
	}
	return out
}

// multiply synthesizes an a * b unsigned shift-and-add multiplier, truncated to
// width bits: for each bit i of b, gate a (shifted left i positions) with
// that bit, and accumulate via the ripple-carry adder.
func (s *synth) multiply(a, b []Wire, width int) []Wire {
	acc := make([]Wire, width)
	for i := range acc {
		acc[i] = s.zero()
	}
	for i, bBit := range b {
		shifted := make([]Wire, width)
		for j := range shifted {
			if j < i {
				shifted[j] = s.zero()
				continue
			}
			srcIdx := j - i
			if srcIdx < len(a) {
				shifted[j] = s.bin(BinAnd, a[srcIdx], bBit)
			} else {
				shifted[j] = s.zero()
			}
		}
		acc = s.addTruncated(acc, shifted, width)
	}
	return acc
}

// orReduce folds a wire vector with OR, one bit at a time.
func (s *synth) orReduce(a []Wire) Wire {
	if len(a) == 0 {
		return s.zero()
	}
	acc := a[0]
	for _, w := range a[1:] {
		acc = s.bin(BinOr, acc, w)
	}
	return acc
}

// andReduce folds a wire vector with AND.
func (s *synth) andReduce(a []Wire) Wire {
	if len(a) == 0 {
		return s.one()
	}
	acc := a[0]
	for _, w := range a[1:] {
		acc = s.bin(BinAnd, acc, w)
	}
	return acc
}

// eq tests bitwise equality of two equal-length vectors: XNOR every pair,
// then AND-reduce.
func (s *synth) eq(a, b []Wire) Wire {
	pairs := make([]Wire, len(a))
	for i := range a {
		pairs[i] = s.bin(BinXnor, a[i], b[i])
	}
	return s.andReduce(pairs)
}

// ne is the complement of eq, synthesized directly as an OR-reduce of
// per-bit XORs rather than negating eq's result.
func (s *synth) ne(a, b []Wire) Wire {
	pairs := make([]Wire, len(a))
	for i := range a {
		pairs[i] = s.bin(BinXor, a[i], b[i])
	}
	return s.orReduce(pairs)
}

// lessThanUnsigned reports a < b for unsigned equal-length vectors using the
// subtractor's carry-out: no final carry means a borrow occurred.
func (s *synth) lessThanUnsigned(a, b []Wire) Wire {
	_, cout := s.subtract(a, b)
	return s.not(cout)
}

// lessThanSigned reports a < b for two's-complement equal-length vectors by
// flipping both sign bits and reusing the unsigned comparator — a standard
// trick: complementing the MSB maps signed order onto unsigned order.
func (s *synth) lessThanSigned(a, b []Wire) Wire {
	n := len(a)
	af := append(append([]Wire{}, a[:n-1]...), s.not(a[n-1]))
	bf := append(append([]Wire{}, b[:n-1]...), s.not(b[n-1]))
	return s.lessThanUnsigned(af, bf)
}
