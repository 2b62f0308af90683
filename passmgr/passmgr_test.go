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
package passmgr

import (
	"testing"

	"gatecore/kernel"
	"gatecore/kind"
	"gatecore/ntl"
	"gatecore/rhif"
)

// constFoldKernel builds `fn f() -> Bits(8) { 3 & 5 }`, the §8 scenario 1
// constant-folding example.
func constFoldKernel() *kernel.Kernel {
	b := kernel.NewBuilder("t.rhdl", "f", "3 & 5")
	bits8 := kind.NewBits(8)
	three := b.Lit(0, 1, bits8, 3)
	five := b.Lit(4, 5, bits8, 5)
	and := b.Bin(0, 5, kernel.OpAnd, three, five)
	body := b.Block(0, 5, nil, and)
	return b.Kernel("f", nil, bits8, body)
}

func TestCompileFoldsConstants(t *testing.T) {
	k := constFoldKernel()
	res, err := Compile(k, map[string]*kernel.Kernel{"f": k}, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	for _, inst := range res.NTL.Ops {
		if inst.Op == ntl.OpBinary {
			t.Fatalf("expected no binary ops left after folding, found %+v", inst)
		}
	}
	if len(res.NTL.Outputs) != 8 {
		t.Fatalf("expected 8 output wires, got %d", len(res.NTL.Outputs))
	}
	want := []ntl.BitValue{ntl.Bit1, ntl.Bit0, ntl.Bit0, ntl.Bit0, ntl.Bit0, ntl.Bit0, ntl.Bit0, ntl.Bit0}
	vals := map[ntl.RegId]ntl.BitValue{}
	for _, inst := range res.NTL.Ops {
		if inst.Op == ntl.OpAssign {
			if inst.Args[0].Tag == ntl.WireConst {
				vals[inst.Dst] = inst.Args[0].Const
			}
		}
	}
	for i, w := range res.NTL.Outputs {
		got := w.Const
		if w.Tag == ntl.WireRegister {
			got = vals[w.Reg]
		}
		if got != want[i] {
			t.Errorf("output bit %d: want %v, got %v", i, want[i], got)
		}
	}
}

func TestCompileAllSynchronousAndAsynchronousAgree(t *testing.T) {
	ks := []*kernel.Kernel{constFoldKernel()}
	kernels := map[string]*kernel.Kernel{"f": ks[0]}

	sync := CompileAll(ks, kernels, Options{Mode: Synchronous})
	async := CompileAll(ks, kernels, Options{Mode: Asynchronous, Workers: 4})

	if len(sync) != 1 || len(async) != 1 {
		t.Fatalf("expected one result each, got %d and %d", len(sync), len(async))
	}
	if sync[0].Err != nil || async[0].Err != nil {
		t.Fatalf("unexpected errors: %v, %v", sync[0].Err, async[0].Err)
	}
	if len(sync[0].Result.NTL.Outputs) != len(async[0].Result.NTL.Outputs) {
		t.Fatalf("synchronous and asynchronous compiles disagree on output width")
	}
}

func TestCacheReturnsSameResultOnSecondCall(t *testing.T) {
	k := constFoldKernel()
	kernels := map[string]*kernel.Kernel{"f": k}
	c := NewCache()

	first, err := c.CompileCached(k, kernels, Options{})
	if err != nil {
		t.Fatalf("CompileCached: %v", err)
	}
	second, err := c.CompileCached(k, kernels, Options{})
	if err != nil {
		t.Fatalf("CompileCached (second): %v", err)
	}
	if first != second {
		t.Fatalf("expected the cache to return the identical *Result on a repeat call")
	}
}

// doubleKernel builds `fn double(x: Bits(8)) -> Bits(8) { x + x }`.
func doubleKernel() *kernel.Kernel {
	b := kernel.NewBuilder("double.rhdl", "double", "x + x")
	bits8 := kind.NewBits(8)
	x := b.VarRef(0, 1, "x")
	sum := b.Bin(0, 5, kernel.OpAdd, x, x)
	body := b.Block(0, 5, nil, sum)
	return b.Kernel("double", []kernel.Arg{{Name: "x", Kind: bits8}}, bits8, body)
}

// callDoubleKernel builds `fn call_double() -> Bits(8) { double(21) }`.
func callDoubleKernel() *kernel.Kernel {
	b := kernel.NewBuilder("call_double.rhdl", "call_double", "double(21)")
	bits8 := kind.NewBits(8)
	arg := b.Lit(7, 9, bits8, 21)
	call := b.CallExpr(0, 10, "double", arg)
	body := b.Block(0, 10, nil, call)
	return b.Kernel("call_double", nil, bits8, body)
}

func TestCompileInlinesSiblingCall(t *testing.T) {
	double := doubleKernel()
	caller := callDoubleKernel()
	kernels := map[string]*kernel.Kernel{"double": double, "call_double": caller}

	res, err := Compile(caller, kernels, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for _, inst := range res.RHIFOpt.Ops {
		if inst.Op == rhif.OpExec {
			t.Fatalf("expected Exec to be inlined away before the rhif fixed point, found %+v", inst)
		}
	}
	// 21 + 21 == 42, all constants, so the whole thing should fold down to
	// a single constant output once the call is inlined and constant
	// propagation sees through it.
	vals := map[ntl.RegId]ntl.BitValue{}
	for _, inst := range res.NTL.Ops {
		if inst.Op == ntl.OpAssign && inst.Args[0].Tag == ntl.WireConst {
			vals[inst.Dst] = inst.Args[0].Const
		}
	}
	const want = byte(42)
	for i, w := range res.NTL.Outputs {
		got := w.Const
		if w.Tag == ntl.WireRegister {
			got = vals[w.Reg]
		}
		wantBit := ntl.Bit0
		if (want>>uint(i))&1 == 1 {
			wantBit = ntl.Bit1
		}
		if got != wantBit {
			t.Errorf("output bit %d: want %v, got %v", i, wantBit, got)
		}
	}
}

func TestCompileRejectsRecursiveCall(t *testing.T) {
	b := kernel.NewBuilder("loop.rhdl", "loop", "loop(x)")
	bits8 := kind.NewBits(8)
	x := b.VarRef(5, 6, "x")
	call := b.CallExpr(0, 7, "loop", x)
	body := b.Block(0, 7, nil, call)
	loop := b.Kernel("loop", []kernel.Arg{{Name: "x", Kind: bits8}}, bits8, body)

	_, err := Compile(loop, map[string]*kernel.Kernel{"loop": loop}, Options{})
	if err == nil {
		t.Fatalf("expected a recursive kernel call to be rejected")
	}
}
