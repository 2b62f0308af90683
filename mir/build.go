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
package mir

import (
	"math/big"

	"gatecore/diag"
	"gatecore/kernel"
	"gatecore/kind"
	"gatecore/rhif"
	"gatecore/sourcepool"
)

// Builder flattens a kernel.Kernel's nested expression tree into rhif
// three-address opcodes, one fresh register per subexpression, recording
// type-equivalence constraints (via fn.Equate) wherever two slots are
// required to share a Kind without the builder itself resolving it.
//
// A real frontend's type checker would leave genuinely unresolved Kinds on
// some slots for the solver to pin down; this builder always has a
// concrete Kind in hand when it allocates a register (kernel nodes already
// carry the annotations a parser+checker would have produced), so here the
// equivalence set serves purely as a post-hoc consistency check rather than
// a constraint solver with free variables — see DESIGN.md's Open Question
// decision on MIR/RHIF sharing.
type Builder struct {
	fn         *Function
	obj        *rhif.Object
	scope      map[string]rhif.SlotId
	signatures map[string]kind.Kind // sibling kernel name -> return kind, for Exec/Call
	src        *sourcepool.SpannedSource
}

// Build flattens k into a MIR Function. signatures supplies the return kind
// of every sibling kernel k may Call; a Call to a name absent from
// signatures is a type error.
func Build(k *kernel.Kernel, signatures map[string]kind.Kind) (*Function, *diag.Error) {
	obj := rhif.NewObject(k.FunctionId, k.Name)
	fn := NewFunction(obj)
	b := &Builder{
		fn:         fn,
		obj:        obj,
		scope:      make(map[string]rhif.SlotId),
		signatures: signatures,
		src:        k.Source,
	}
	for _, arg := range k.Args {
		id := obj.NewRegister(arg.Kind)
		obj.Args = append(obj.Args, id)
		b.scope[arg.Name] = id
		obj.Symbols.Bind(id, b.loc(k.Body.ID()), arg.Name)
	}
	retSlot, err := b.lowerBlock(k.Body)
	if err != nil {
		return nil, err
	}
	obj.Ret = retSlot
	return fn, nil
}

func (b *Builder) loc(n sourcepool.NodeId) sourcepool.SourceLocation {
	fid := sourcepool.FunctionId(0)
	if b.src != nil {
		fid = b.src.FunctionId
	}
	return sourcepool.SourceLocation{Func: fid, Node: n}
}

func (b *Builder) lowerBlock(blk *kernel.Block) (rhif.SlotId, *diag.Error) {
	for _, stmt := range blk.Stmts {
		if err := b.lowerStmt(stmt); err != nil {
			return 0, err
		}
	}
	if blk.Tail == nil {
		return b.obj.InternLiteral(kind.KindEmpty, big.NewInt(0)), nil
	}
	return b.lowerExpr(blk.Tail)
}

func (b *Builder) lowerStmt(stmt kernel.Stmt) *diag.Error {
	switch s := stmt.(type) {
	case *kernel.Let:
		slot, err := b.lowerExpr(s.Init)
		if err != nil {
			return err
		}
		b.scope[s.Name] = slot
		b.obj.Symbols.Bind(slot, b.loc(s.ID()), s.Name)
		return nil
	case *kernel.Assign:
		base, ok := b.scope[s.Name]
		if !ok {
			return diag.New(diag.CauseSemantic, "assignment to undeclared name "+s.Name, b.loc(s.ID()))
		}
		val, err := b.lowerExpr(s.Value)
		if err != nil {
			return err
		}
		path, err := b.lowerPath(s.Path)
		if err != nil {
			return err
		}
		dst := b.obj.NewRegister(b.obj.KindOf(base))
		b.obj.Append(rhif.Inst{
			Op:   rhif.OpSplice,
			Dst:  dst,
			Args: []rhif.SlotId{base, val},
			Aux:  rhif.PathAux{Path: path},
			Loc:  b.loc(s.ID()),
		})
		b.scope[s.Name] = dst
		return nil
	case *kernel.ExprStmt:
		_, err := b.lowerExpr(s.Value)
		return err
	}
	return diag.ICE("mir: unhandled statement node")
}

func (b *Builder) lowerPath(path []kernel.PathElement) (rhif.Path, *diag.Error) {
	out := make(rhif.Path, len(path))
	for i, e := range path {
		elem := rhif.PathElement{
			Kind:    rhif.PathElementKind(e.Kind),
			Field:   e.Field,
			Index:   e.Index,
			Variant: e.Variant,
		}
		if e.Kind == kernel.PathDynamicIndex {
			sel, err := b.lowerExpr(e.Dynamic)
			if err != nil {
				return nil, err
			}
			elem.Dynamic = sel
		}
		out[i] = elem
	}
	return out, nil
}

func convBin(op kernel.BinOp) rhif.BinOp { return rhif.BinOp(op) }
func convUn(op kernel.UnOp) rhif.UnOp    { return rhif.UnOp(op) }

func isComparison(op rhif.BinOp) bool {
	switch op {
	case rhif.BinEq, rhif.BinNe, rhif.BinLt, rhif.BinLe, rhif.BinGt, rhif.BinGe:
		return true
	}
	return false
}

func requiresSameKind(op rhif.BinOp) bool {
	switch op {
	case rhif.BinShl, rhif.BinShr:
		return false
	}
	return true
}

func (b *Builder) lowerExpr(e kernel.Expr) (rhif.SlotId, *diag.Error) {
	loc := b.loc(e.ID())
	switch n := e.(type) {
	case *kernel.Literal:
		return b.obj.InternLiteral(n.Kind, big.NewInt(n.Value)), nil

	case *kernel.Var:
		id, ok := b.scope[n.Name]
		if !ok {
			return 0, diag.New(diag.CauseSemantic, "reference to undeclared name "+n.Name, loc)
		}
		return id, nil

	case *kernel.Binary:
		l, err := b.lowerExpr(n.Left)
		if err != nil {
			return 0, err
		}
		r, err := b.lowerExpr(n.Right)
		if err != nil {
			return 0, err
		}
		op := convBin(n.Op)
		if requiresSameKind(op) {
			b.fn.Equate(l, r, loc)
		}
		resultKind := b.obj.KindOf(l)
		if isComparison(op) {
			resultKind = kind.NewBits(1)
		}
		dst := b.obj.NewRegister(resultKind)
		b.obj.Append(rhif.Inst{Op: rhif.OpBinary, Dst: dst, Args: []rhif.SlotId{l, r}, Aux: rhif.BinAux{Op: op}, Loc: loc})
		return dst, nil

	case *kernel.Unary:
		arg, err := b.lowerExpr(n.Arg)
		if err != nil {
			return 0, err
		}
		dst := b.obj.NewRegister(b.obj.KindOf(arg))
		b.obj.Append(rhif.Inst{Op: rhif.OpUnary, Dst: dst, Args: []rhif.SlotId{arg}, Aux: rhif.UnAux{Op: convUn(n.Op)}, Loc: loc})
		return dst, nil

	case *kernel.If:
		cond, err := b.lowerExpr(n.Cond)
		if err != nil {
			return 0, err
		}
		then, err := b.lowerExpr(n.Then)
		if err != nil {
			return 0, err
		}
		els, err := b.lowerExpr(n.Else)
		if err != nil {
			return 0, err
		}
		b.fn.Equate(then, els, loc)
		dst := b.obj.NewRegister(b.obj.KindOf(then))
		b.obj.Append(rhif.Inst{Op: rhif.OpSelect, Dst: dst, Args: []rhif.SlotId{cond, then, els}, Loc: loc})
		return dst, nil

	case *kernel.Field:
		base, err := b.lowerExpr(n.Base)
		if err != nil {
			return 0, err
		}
		_, fk, ok := b.obj.KindOf(base).FieldOffset(n.Name)
		if !ok {
			return 0, diag.New(diag.CauseType, "no field "+n.Name+" on "+b.obj.KindOf(base).String(), loc)
		}
		dst := b.obj.NewRegister(fk)
		b.obj.Append(rhif.Inst{Op: rhif.OpIndex, Dst: dst, Args: []rhif.SlotId{base}, Aux: rhif.PathAux{Path: rhif.Path{{Kind: rhif.PathField, Field: n.Name}}}, Loc: loc})
		return dst, nil

	case *kernel.Index:
		base, err := b.lowerExpr(n.Base)
		if err != nil {
			return 0, err
		}
		_, ek, ok := b.obj.KindOf(base).ArrayElemOffset(n.Index)
		if !ok {
			return 0, diag.New(diag.CauseSemantic, "array index out of declared range", loc)
		}
		dst := b.obj.NewRegister(ek)
		b.obj.Append(rhif.Inst{Op: rhif.OpIndex, Dst: dst, Args: []rhif.SlotId{base}, Aux: rhif.PathAux{Path: rhif.Path{{Kind: rhif.PathIndex, Index: n.Index}}}, Loc: loc})
		return dst, nil

	case *kernel.DynamicIndex:
		base, err := b.lowerExpr(n.Base)
		if err != nil {
			return 0, err
		}
		sel, err := b.lowerExpr(n.Selector)
		if err != nil {
			return 0, err
		}
		baseKind := b.obj.KindOf(base)
		if baseKind.Tag != kind.Array {
			return 0, diag.New(diag.CauseType, "dynamic index of non-array value", loc)
		}
		dst := b.obj.NewRegister(*baseKind.Base)
		b.obj.Append(rhif.Inst{Op: rhif.OpIndex, Dst: dst, Args: []rhif.SlotId{base}, Aux: rhif.PathAux{Path: rhif.Path{{Kind: rhif.PathDynamicIndex, Dynamic: sel}}}, Loc: loc})
		return dst, nil

	case *kernel.TupleIndex:
		base, err := b.lowerExpr(n.Base)
		if err != nil {
			return 0, err
		}
		_, tk, ok := b.obj.KindOf(base).TupleOffset(n.Index)
		if !ok {
			return 0, diag.New(diag.CauseSemantic, "tuple index out of declared range", loc)
		}
		dst := b.obj.NewRegister(tk)
		b.obj.Append(rhif.Inst{Op: rhif.OpIndex, Dst: dst, Args: []rhif.SlotId{base}, Aux: rhif.PathAux{Path: rhif.Path{{Kind: rhif.PathTupleIndex, Index: n.Index}}}, Loc: loc})
		return dst, nil

	case *kernel.StructLit:
		args := make([]rhif.SlotId, len(n.Order))
		for i, name := range n.Order {
			slot, err := b.lowerExpr(n.Fields[name])
			if err != nil {
				return 0, err
			}
			_, fk, ok := n.Kind.FieldOffset(name)
			if !ok {
				return 0, diag.New(diag.CauseType, "struct literal names unknown field "+name, loc)
			}
			if !b.obj.KindOf(slot).Equal(fk) {
				return 0, diag.New(diag.CauseType, "struct field "+name+" kind mismatch", loc)
			}
			args[i] = slot
		}
		dst := b.obj.NewRegister(n.Kind)
		b.obj.Append(rhif.Inst{Op: rhif.OpStructCtor, Dst: dst, Args: args, Aux: rhif.CtorAux{Kind: n.Kind}, Loc: loc})
		return dst, nil

	case *kernel.TupleLit:
		args := make([]rhif.SlotId, len(n.Elems))
		elemKinds := make([]kind.Kind, len(n.Elems))
		for i, el := range n.Elems {
			slot, err := b.lowerExpr(el)
			if err != nil {
				return 0, err
			}
			args[i] = slot
			elemKinds[i] = b.obj.KindOf(slot)
		}
		tupleKind := kind.NewTuple(elemKinds...)
		dst := b.obj.NewRegister(tupleKind)
		b.obj.Append(rhif.Inst{Op: rhif.OpTupleCtor, Dst: dst, Args: args, Aux: rhif.CtorAux{Kind: tupleKind}, Loc: loc})
		return dst, nil

	case *kernel.ArrayLit:
		args := make([]rhif.SlotId, len(n.Elems))
		for i, el := range n.Elems {
			slot, err := b.lowerExpr(el)
			if err != nil {
				return 0, err
			}
			if !b.obj.KindOf(slot).Equal(n.Elem) {
				return 0, diag.New(diag.CauseType, "array literal element kind mismatch", loc)
			}
			args[i] = slot
		}
		arrKind := kind.NewArray(n.Elem, len(n.Elems))
		dst := b.obj.NewRegister(arrKind)
		b.obj.Append(rhif.Inst{Op: rhif.OpArrayCtor, Dst: dst, Args: args, Aux: rhif.CtorAux{Kind: arrKind}, Loc: loc})
		return dst, nil

	case *kernel.Repeat:
		val, err := b.lowerExpr(n.Value)
		if err != nil {
			return 0, err
		}
		arrKind := kind.NewArray(b.obj.KindOf(val), n.Count)
		dst := b.obj.NewRegister(arrKind)
		b.obj.Append(rhif.Inst{Op: rhif.OpRepeat, Dst: dst, Args: []rhif.SlotId{val}, Aux: rhif.RepeatAux{Count: n.Count}, Loc: loc})
		return dst, nil

	case *kernel.EnumLit:
		payload := b.obj.InternLiteral(kind.KindEmpty, big.NewInt(0))
		if n.Payload != nil {
			var err *diag.Error
			payload, err = b.lowerExpr(n.Payload)
			if err != nil {
				return 0, err
			}
		}
		dst := b.obj.NewRegister(n.Kind)
		b.obj.Append(rhif.Inst{Op: rhif.OpEnumCtor, Dst: dst, Args: []rhif.SlotId{payload}, Aux: rhif.CtorAux{Kind: n.Kind, Variant: n.Variant}, Loc: loc})
		return dst, nil

	case *kernel.Cast:
		arg, err := b.lowerExpr(n.Arg)
		if err != nil {
			return 0, err
		}
		width := n.Len
		if width < 0 {
			width = b.obj.KindOf(arg).BitWidth()
		}
		var dstKind kind.Kind
		if n.Signed {
			dstKind = kind.NewSigned(width)
		} else {
			dstKind = kind.NewBits(width)
		}
		dst := b.obj.NewRegister(dstKind)
		b.obj.Append(rhif.Inst{Op: rhif.OpCast, Dst: dst, Args: []rhif.SlotId{arg}, Aux: rhif.CastAux{Signed: n.Signed, Len: n.Len}, Loc: loc})
		return dst, nil

	case *kernel.Retime:
		arg, err := b.lowerExpr(n.Arg)
		if err != nil {
			return 0, err
		}
		argKind := b.obj.KindOf(arg)
		inner := argKind
		if argKind.Tag == kind.Signal {
			inner = *argKind.Inner
		}
		dst := b.obj.NewRegister(kind.NewSignal(inner, n.Color))
		b.obj.Append(rhif.Inst{Op: rhif.OpRetime, Dst: dst, Args: []rhif.SlotId{arg}, Aux: rhif.RetimeAux{Color: n.Color}, Loc: loc})
		return dst, nil

	case *kernel.Call:
		args := make([]rhif.SlotId, len(n.Args))
		for i, a := range n.Args {
			slot, err := b.lowerExpr(a)
			if err != nil {
				return 0, err
			}
			args[i] = slot
		}
		retKind, ok := b.signatures[n.Callee]
		if !ok {
			return 0, diag.New(diag.CauseType, "call to unknown kernel "+n.Callee, loc)
		}
		dst := b.obj.NewRegister(retKind)
		b.obj.Append(rhif.Inst{Op: rhif.OpExec, Dst: dst, Args: args, Aux: rhif.ExecAux{Callee: n.Callee}, Loc: loc})
		return dst, nil

	case *kernel.Case:
		scrut, err := b.lowerExpr(n.Scrutinee)
		if err != nil {
			return 0, err
		}
		arms := make([]rhif.CaseArm, len(n.Arms))
		var first rhif.SlotId
		for i, arm := range n.Arms {
			resSlot, err := b.lowerExpr(arm.Result)
			if err != nil {
				return 0, err
			}
			if i == 0 {
				first = resSlot
			} else {
				b.fn.Equate(first, resSlot, loc)
			}
			arms[i] = rhif.CaseArm{Pattern: arm.Pattern, Variant: arm.Variant, Result: resSlot}
		}
		dst := b.obj.NewRegister(b.obj.KindOf(first))
		b.obj.Append(rhif.Inst{Op: rhif.OpCase, Dst: dst, Args: []rhif.SlotId{scrut}, Aux: rhif.CaseAux{Arms: arms}, Loc: loc})
		return dst, nil
	}
	return 0, diag.ICE("mir: unhandled expression node")
}
