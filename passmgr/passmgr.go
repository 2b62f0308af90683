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

// Package passmgr drives one kernel through every IR stage in order: MIR
// construction and unification, the RHIF fixed-point pass list, RTL
// lowering and its once-run peephole passes, and NTL lowering followed by
// its fixed-point gate optimizer and post-fixed-point verification passes
// (§2, §4). It exposes the §6 pass-manager knobs (mode, verbosity) to a
// driver without introducing any I/O of its own — the core still performs
// none (§5).
package passmgr

import (
	"fmt"

	"gatecore/diag"
	"gatecore/kernel"
	"gatecore/kind"
	"gatecore/mir"
	"gatecore/ntl"
	ntlpasses "gatecore/ntl/passes"
	"gatecore/rhif"
	rhifpasses "gatecore/rhif/passes"
	"gatecore/rtl"
	rtlpasses "gatecore/rtl/passes"
)

// signaturesFromKernels projects the return Kind of every sibling kernel out
// of the full kernels map, the view mir.Build needs to type-check a Call —
// keeping kernels as the single source of truth removes the risk of a
// signatures map drifting out of sync with the bodies InlineCalls resolves
// against.
func signaturesFromKernels(kernels map[string]*kernel.Kernel) map[string]kind.Kind {
	signatures := make(map[string]kind.Kind, len(kernels))
	for name, k := range kernels {
		signatures[name] = k.Ret
	}
	return signatures
}

// Mode selects how CompileAll schedules a batch of independent kernels
// (§5: "parallelism across independent kernels is permitted at the driver
// level"). It has no effect on Compile, which always runs one kernel's
// passes sequentially — intra-kernel passes depend on stable operand
// numbering and must never run concurrently with each other.
type Mode int

const (
	Synchronous Mode = iota
	Asynchronous
)

func (m Mode) String() string {
	if m == Asynchronous {
		return "asynchronous"
	}
	return "synchronous"
}

// Verbosity controls how much of each IR stage Compile prints while it
// runs, in the teacher's plain fmt.Printf transcript style — there is no
// structured logger here (see DESIGN.md).
type Verbosity int

const (
	Silent Verbosity = iota
	Summary
	Verbose
)

// Options carries the §6 pass-manager knobs through to Compile/CompileAll.
type Options struct {
	Mode      Mode
	Verbosity Verbosity
	// Workers bounds the pool CompileAll uses in Asynchronous mode. <= 0
	// means runtime.NumCPU().
	Workers int
}

// Result collects every IR stage produced while compiling one kernel, so a
// driver can inspect or print any point in the pipeline, not only the
// final netlist.
type Result struct {
	Kernel     *kernel.Kernel
	RHIF       *rhif.Object // after MIR solve and Exec inlining, before any rhif pass runs
	RHIFOpt    *rhif.Object // after RunToFixedPoint(rhifpasses.Pipeline())
	RHIFRounds int
	RTL        *rtl.Object
	NTL        *ntl.Object // after RunToFixedPoint(ntlpasses.Pipeline())
	NTLRounds  int
}

func logStage(opts Options, label string, s fmt.Stringer) {
	if opts.Verbosity < Verbose {
		return
	}
	fmt.Printf("=== %s ===\n%s\n", label, s)
}

// buildCalleeRHIF runs k's MIR construction, solving and RHIF fixed-point
// cleanup — the state a Call site needs from a callee before InlineCalls
// can splice it in. Callees are optimized before inlining so a caller never
// has to re-discover constant folds or dead-register cleanup the callee's
// own pipeline already found.
func buildCalleeRHIF(k *kernel.Kernel, signatures map[string]kind.Kind) (*rhif.Object, *diag.Error) {
	fn, err := mir.Build(k, signatures)
	if err != nil {
		return nil, err
	}
	obj, err := mir.Solve(fn)
	if err != nil {
		return nil, err
	}
	obj, _, err = rhif.RunToFixedPoint(obj, rhifpasses.Pipeline())
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// resolveCalleeRHIF builds, optimizes, and fully inlines (recursively) the
// named sibling kernel, memoizing the result per Compile call and rejecting
// a call cycle — hardware kernels have no stack, so unbounded recursive
// instantiation can never be realized as a finite netlist.
func resolveCalleeRHIF(name string, kernels map[string]*kernel.Kernel, signatures map[string]kind.Kind, active map[string]bool, cache map[string]*rhif.Object) (*rhif.Object, *diag.Error) {
	if o, ok := cache[name]; ok {
		return o, nil
	}
	if active[name] {
		return nil, diag.New(diag.CauseSemantic, "recursive kernel call not supported: "+name)
	}
	callee, ok := kernels[name]
	if !ok {
		return nil, diag.New(diag.CauseType, "call to unknown kernel "+name)
	}

	active[name] = true
	defer delete(active, name)

	obj, err := buildCalleeRHIF(callee, signatures)
	if err != nil {
		return nil, err
	}

	var nestedErr *diag.Error
	obj, err = rhif.InlineCalls(obj, func(n string) (*rhif.Object, bool) {
		resolved, rerr := resolveCalleeRHIF(n, kernels, signatures, active, cache)
		if rerr != nil {
			nestedErr = rerr
			return nil, false
		}
		return resolved, true
	})
	if nestedErr != nil {
		return nil, nestedErr
	}
	if err != nil {
		return nil, err
	}

	cache[name] = obj
	return obj, nil
}

// Compile runs k through MIR -> RHIF -> RTL -> NTL (§2, §4). kernels
// supplies every sibling kernel k may Call, by name — it both type-checks a
// Call site (via the return Kind mir.Build needs) and, after MIR solving,
// resolves and inlines each Exec with its callee's optimized RHIF body
// before the result ever reaches rtl.Lower (§3.2).
func Compile(k *kernel.Kernel, kernels map[string]*kernel.Kernel, opts Options) (*Result, *diag.Error) {
	signatures := signaturesFromKernels(kernels)

	fn, err := mir.Build(k, signatures)
	if err != nil {
		return nil, err
	}
	rhifObj, err := mir.Solve(fn)
	if err != nil {
		return nil, err
	}
	logStage(opts, k.Name+" rhif (pre-optimization)", rhifObj)

	active := map[string]bool{k.Name: true}
	cache := map[string]*rhif.Object{}
	var nestedErr *diag.Error
	rhifObj, err = rhif.InlineCalls(rhifObj, func(n string) (*rhif.Object, bool) {
		resolved, rerr := resolveCalleeRHIF(n, kernels, signatures, active, cache)
		if rerr != nil {
			nestedErr = rerr
			return nil, false
		}
		return resolved, true
	})
	if nestedErr != nil {
		return nil, nestedErr
	}
	if err != nil {
		return nil, err
	}
	logStage(opts, k.Name+" rhif (calls inlined)", rhifObj)

	rhifOpt, rhifRounds, err := rhif.RunToFixedPoint(rhifObj, rhifpasses.Pipeline())
	if err != nil {
		return nil, err
	}
	logStage(opts, k.Name+" rhif (fixed point)", rhifOpt)

	rtlObj, err := rtl.Lower(rhifOpt)
	if err != nil {
		return nil, err
	}
	rtlObj, err = rtl.RunOnce(rtlObj, rtlpasses.Pipeline())
	if err != nil {
		return nil, err
	}
	logStage(opts, k.Name+" rtl", rtlObj)

	ntlObj, err := ntl.Lower(rtlObj)
	if err != nil {
		return nil, err
	}
	ntlOpt, ntlRounds, err := ntl.RunToFixedPoint(ntlObj, ntlpasses.Pipeline())
	if err != nil {
		return nil, err
	}
	if _, err := ntl.RunOnce(ntlOpt, ntlpasses.VerificationPipeline()); err != nil {
		return nil, err
	}
	logStage(opts, k.Name+" ntl (fixed point)", ntlOpt)

	if opts.Verbosity >= Summary {
		fmt.Printf("%s: rhif %d round(s), ntl %d round(s)\n", k.Name, rhifRounds, ntlRounds)
	}

	return &Result{
		Kernel:     k,
		RHIF:       rhifObj,
		RHIFOpt:    rhifOpt,
		RHIFRounds: rhifRounds,
		RTL:        rtlObj,
		NTL:        ntlOpt,
		NTLRounds:  ntlRounds,
	}, nil
}
