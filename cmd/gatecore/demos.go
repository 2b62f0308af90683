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
package main

import (
	"sort"

	"gatecore/kernel"
	"gatecore/kind"
)

// demo bundles a hand-built Kernel with whatever sibling kernels it may Call
// (siblings is nil for every demo that calls nothing). Since parsing a
// surface language is out of scope (§1), these stand in for what a real
// frontend would hand the core, built the same way this repository's own
// tests build fixtures (kernel.Builder).
type demo struct {
	name     string
	doc      string
	k        *kernel.Kernel
	siblings []*kernel.Kernel
}

// demoKernels builds the kernels map Compile/CompileAll need to resolve any
// Call d.k makes: itself plus every declared sibling.
func demoKernels(d demo) map[string]*kernel.Kernel {
	kernels := map[string]*kernel.Kernel{d.k.Name: d.k}
	for _, s := range d.siblings {
		kernels[s.Name] = s
	}
	return kernels
}

// constFoldDemo builds `fn f() -> Bits(8) { 3 & 5 }`, folding to a single
// constant by the time it reaches RHIF.
func constFoldDemo() demo {
	b := kernel.NewBuilder("const_fold.rhdl", "const_fold", "3 & 5")
	bits8 := kind.NewBits(8)
	three := b.Lit(0, 1, bits8, 3)
	five := b.Lit(4, 5, bits8, 5)
	and := b.Bin(0, 5, kernel.OpAnd, three, five)
	body := b.Block(0, 5, nil, and)
	return demo{
		name: "const-fold",
		doc:  "3 & 5, folds to a literal before RTL lowering",
		k:    b.Kernel("const_fold", nil, bits8, body),
	}
}

// deadBranchDemo builds `fn f() -> Bits(8) { if true { 1 } else { 2 } }`,
// an If whose condition is a compile-time constant, so one whole arm never
// reaches the netlist.
func deadBranchDemo() demo {
	src := "if true { 1 } else { 2 }"
	b := kernel.NewBuilder("dead_branch.rhdl", "dead_branch", src)
	bits8 := kind.NewBits(8)
	cond := b.Lit(3, 7, kind.NewBits(1), 1)
	then := b.Lit(10, 11, bits8, 1)
	els := b.Lit(21, 22, bits8, 2)
	ifExpr := b.IfExpr(0, 24, cond, then, els)
	body := b.Block(0, 24, nil, ifExpr)
	return demo{
		name: "dead-branch",
		doc:  "if true {1} else {2}, one arm is unreachable",
		k:    b.Kernel("dead_branch", nil, bits8, body),
	}
}

// caseSelectDemo builds a three-armed Case over a Bits(2) argument, which
// lowers to an RTL/NTL OpCase and is the source scenario for the output
// contract's AlwaysBlock/CaseStatement shape.
func caseSelectDemo() demo {
	src := "case x { 0 => 10, 1 => 20, _ => 30 }"
	b := kernel.NewBuilder("case_select.rhdl", "case_select", src)
	bits2 := kind.NewBits(2)
	bits8 := kind.NewBits(8)
	x := b.VarRef(5, 6, "x")
	zero := int64(0)
	one := int64(1)
	arms := []kernel.CaseArm{
		{Pattern: &zero, Result: b.Lit(14, 16, bits8, 10)},
		{Pattern: &one, Result: b.Lit(23, 25, bits8, 20)},
		{Pattern: nil, Result: b.Lit(32, 34, bits8, 30)},
	}
	caseExpr := b.CaseExpr(0, 36, x, arms...)
	body := b.Block(0, 36, nil, caseExpr)
	return demo{
		name: "case-select",
		doc:  "case x {0 => 10, 1 => 20, _ => 30}, lowers to a gate-level case",
		k:    b.Kernel("case_select", []kernel.Arg{{Name: "x", Kind: bits2}}, bits8, body),
	}
}

// doubleKernel builds `fn double(x: Bits(8)) -> Bits(8) { x + x }`, the
// sibling callee siblingCallDemo exercises.
func doubleKernel() *kernel.Kernel {
	b := kernel.NewBuilder("double.rhdl", "double", "x + x")
	bits8 := kind.NewBits(8)
	x := b.VarRef(0, 1, "x")
	sum := b.Bin(0, 5, kernel.OpAdd, x, x)
	body := b.Block(0, 5, nil, sum)
	return b.Kernel("double", []kernel.Arg{{Name: "x", Kind: bits8}}, bits8, body)
}

// siblingCallDemo builds `fn sibling_call() -> Bits(8) { double(21) }`,
// exercising Exec/sibling-call inlining (§3.2) end to end through the CLI.
func siblingCallDemo() demo {
	double := doubleKernel()
	b := kernel.NewBuilder("sibling_call.rhdl", "sibling_call", "double(21)")
	bits8 := kind.NewBits(8)
	arg := b.Lit(7, 9, bits8, 21)
	call := b.CallExpr(0, 10, "double", arg)
	body := b.Block(0, 10, nil, call)
	return demo{
		name:     "sibling-call",
		doc:      "double(21), inlines a sibling kernel call before RTL lowering",
		k:        b.Kernel("sibling_call", nil, bits8, body),
		siblings: []*kernel.Kernel{double},
	}
}

var allDemos = []demo{constFoldDemo(), deadBranchDemo(), caseSelectDemo(), siblingCallDemo()}

func demoByName(name string) (demo, bool) {
	for _, d := range allDemos {
		if d.name == name {
			return d, true
		}
	}
	return demo{}, false
}

func demoNames() []string {
	names := make([]string, len(allDemos))
	for i, d := range allDemos {
		names[i] = d.name
	}
	sort.Strings(names)
	return names
}
