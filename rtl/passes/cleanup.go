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

import (
	"math/big"

	"gatecore/diag"
	"gatecore/rtl"
)

// LowerNotEqualZeroToAny rewrites Binary Ne(x, 0) into Unary Any(x).
type LowerNotEqualZeroToAny struct{}

func (LowerNotEqualZeroToAny) Description() string { return "rewrite x != 0 into Any(x)" }

func (LowerNotEqualZeroToAny) Run(o *rtl.Object) (*rtl.Object, *diag.Error) {
	for i, inst := range o.Ops {
		if inst.Op != rtl.OpBinary {
			continue
		}
		aux, ok := inst.Aux.(rtl.BinAux)
		if !ok || aux.Op != rtl.BinNe {
			continue
		}
		for _, idx := range []int{0, 1} {
			lit, isLit := literalValue(o, inst.Args[idx])
			if isLit && lit.Sign() == 0 {
				other := inst.Args[1-idx]
				o.Ops[i] = rtl.Inst{Op: rtl.OpUnary, Dst: inst.Dst, Args: []rtl.Operand{other}, Aux: rtl.UnAux{Op: rtl.UnAny}, Loc: inst.Loc}
				break
			}
		}
	}
	return o, nil
}

// LowerSignalCasts rewrites a Cast whose length already matches its
// argument's width into a plain Assign — a safety net for signal/retime
// casts that reach RTL still wrapped as Cast after upstream simplification.
type LowerSignalCasts struct{}

func (LowerSignalCasts) Description() string {
	return "rewrite a Cast with matching width into Assign"
}

func (LowerSignalCasts) Run(o *rtl.Object) (*rtl.Object, *diag.Error) {
	for i, inst := range o.Ops {
		if inst.Op != rtl.OpCast {
			continue
		}
		aux := inst.Aux.(rtl.CastAux)
		argKind := o.KindOf(inst.Args[0])
		if argKind.Width == aux.Len && argKind.Signed == aux.Signed {
			o.Ops[i] = rtl.Inst{Op: rtl.OpAssign, Dst: inst.Dst, Args: inst.Args, Loc: inst.Loc}
		}
	}
	return o, nil
}

// LowerIndexAllToCopy rewrites an Index spanning an argument's entire width
// into an Assign.
type LowerIndexAllToCopy struct{}

func (LowerIndexAllToCopy) Description() string {
	return "rewrite an Index covering the full argument width into Assign"
}

func (LowerIndexAllToCopy) Run(o *rtl.Object) (*rtl.Object, *diag.Error) {
	for i, inst := range o.Ops {
		if inst.Op != rtl.OpIndex {
			continue
		}
		aux := inst.Aux.(rtl.IndexAux)
		argWidth := o.KindOf(inst.Args[0]).Width
		if aux.Range.Lo == 0 && aux.Range.Len == argWidth {
			o.Ops[i] = rtl.Inst{Op: rtl.OpAssign, Dst: inst.Dst, Args: inst.Args, Loc: inst.Loc}
		}
	}
	return o, nil
}

// LowerEmptySpliceToCopy rewrites a Splice with a zero-length range into an
// Assign of the original value, discarding the (width-zero) write.
type LowerEmptySpliceToCopy struct{}

func (LowerEmptySpliceToCopy) Description() string {
	return "rewrite a zero-length Splice into Assign of the original value"
}

func (LowerEmptySpliceToCopy) Run(o *rtl.Object) (*rtl.Object, *diag.Error) {
	for i, inst := range o.Ops {
		if inst.Op != rtl.OpSplice {
			continue
		}
		aux := inst.Aux.(rtl.SpliceAux)
		if aux.Range.Len == 0 {
			o.Ops[i] = rtl.Inst{Op: rtl.OpAssign, Dst: inst.Dst, Args: []rtl.Operand{inst.Args[0]}, Loc: inst.Loc}
		}
	}
	return o, nil
}

// RemoveExtraRegisters eliminates `r <- s` Assign chains by substituting
// every downstream use of r with its ultimate source, then relies on
// RemoveUnusedOperands to delete the now-dead Assign ops.
type RemoveExtraRegisters struct{}

func (RemoveExtraRegisters) Description() string {
	return "substitute away register-to-register Assign chains"
}

func (RemoveExtraRegisters) Run(o *rtl.Object) (*rtl.Object, *diag.Error) {
	alias := map[rtl.RegId]rtl.Operand{}
	for _, inst := range o.Ops {
		if inst.Op == rtl.OpAssign && inst.Args[0].Tag == rtl.OperandRegister {
			alias[inst.Dst] = inst.Args[0]
		}
	}
	resolve := func(op rtl.Operand) rtl.Operand {
		seen := map[rtl.RegId]bool{}
		cur := op
		for cur.Tag == rtl.OperandRegister {
			next, ok := alias[cur.Reg]
			if !ok || seen[cur.Reg] {
				break
			}
			seen[cur.Reg] = true
			cur = next
		}
		return cur
	}
	for i, inst := range o.Ops {
		newArgs := make([]rtl.Operand, len(inst.Args))
		for j, a := range inst.Args {
			newArgs[j] = resolve(a)
		}
		o.Ops[i].Args = newArgs
		switch aux := o.Ops[i].Aux.(type) {
		case rtl.DynamicIndexAux:
			aux.Offset = resolve(aux.Offset)
			o.Ops[i].Aux = aux
		case rtl.DynamicSpliceAux:
			aux.Offset = resolve(aux.Offset)
			o.Ops[i].Aux = aux
		case rtl.CaseAux:
			entries := make([]rtl.CaseEntry, len(aux.Entries))
			for k, e := range aux.Entries {
				e.Value = resolve(e.Value)
				entries[k] = e
			}
			o.Ops[i].Aux = rtl.CaseAux{Entries: entries}
		}
	}
	if ret, ok := alias[o.Ret]; ok {
		resolved := resolve(ret)
		if resolved.Tag == rtl.OperandRegister {
			o.Ret = resolved.Reg
		}
	}
	return o, nil
}

// RemoveEmptyFunctionArguments drops zero-width arguments and redirects any
// reference to one onto a single shared zero-width literal.
type RemoveEmptyFunctionArguments struct{}

func (RemoveEmptyFunctionArguments) Description() string {
	return "drop empty-kind arguments, redirecting references to a shared empty literal"
}

func (RemoveEmptyFunctionArguments) Run(o *rtl.Object) (*rtl.Object, *diag.Error) {
	shared := o.InternLiteral(rtl.Unsigned(0), big.NewInt(0))
	empties := map[rtl.RegId]bool{}
	kept := make([]rtl.RegId, 0, len(o.Args))
	for _, a := range o.Args {
		if o.RegKindOf(a).Width == 0 {
			empties[a] = true
			continue
		}
		kept = append(kept, a)
	}
	if len(empties) == 0 {
		return o, nil
	}
	o.Args = kept
	replace := func(op rtl.Operand) rtl.Operand {
		if op.Tag == rtl.OperandRegister && empties[op.Reg] {
			return rtl.LitOperand(shared)
		}
		return op
	}
	for i, inst := range o.Ops {
		for j, a := range inst.Args {
			o.Ops[i].Args[j] = replace(a)
		}
	}
	return o, nil
}

// RemoveUnusedOperands deletes ops whose result register is never read.
type RemoveUnusedOperands struct{}

func (RemoveUnusedOperands) Description() string { return "delete opcodes whose result is never read" }

func (RemoveUnusedOperands) Run(o *rtl.Object) (*rtl.Object, *diag.Error) {
	live := map[rtl.RegId]bool{o.Ret: true}
	for _, a := range o.Args {
		live[a] = true
	}
	for _, inst := range o.Ops {
		inst.VisitArgs(func(op rtl.Operand) {
			if op.Tag == rtl.OperandRegister {
				live[op.Reg] = true
			}
		})
	}
	out := make([]rtl.Inst, 0, len(o.Ops))
	for _, inst := range o.Ops {
		if inst.Dst == o.Ret || live[inst.Dst] {
			out = append(out, inst)
		}
	}
	o.Ops = out
	return o, nil
}

// SymbolTableIsComplete checks that every referenced register has a
// declared RegisterKind.
type SymbolTableIsComplete struct{}

func (SymbolTableIsComplete) Description() string {
	return "every referenced register has a declared RegisterKind"
}

func (SymbolTableIsComplete) Run(o *rtl.Object) (*rtl.Object, *diag.Error) {
	check := func(r rtl.RegId) *diag.Error {
		if _, ok := o.Regs[r]; !ok {
			return diag.ICE("rtl: register has no declared kind")
		}
		return nil
	}
	if err := check(o.Ret); err != nil {
		return nil, err
	}
	for _, a := range o.Args {
		if err := check(a); err != nil {
			return nil, err
		}
	}
	for _, inst := range o.Ops {
		if err := check(inst.Dst); err != nil {
			return nil, err
		}
	}
	return o, nil
}
