package annotate

import (
	"fmt"
	"log/slog"

	"github.com/sirkon/deraw/internal/crashdetail"
	"github.com/sirkon/deraw/internal/diag"
	"github.com/sirkon/deraw/internal/fact"
	"github.com/sirkon/deraw/internal/irl"
	"github.com/sirkon/deraw/internal/typedesc"
)

// visitor carries the state of one annotation pass over one body.
type visitor struct {
	facts    *fact.Table
	callees  *irl.CalleeTable
	body     *irl.Body
	rewrites map[irl.Location][]RewriteOp

	rep *diag.PhaseReporter
	log *slog.Logger
	rec *crashdetail.Recorder

	loc irl.Location
	sub Path
}

// Gen walks every basic block of body in program order and produces the
// rewrite operations each instruction needs. Soft failures go to rep;
// unsupported instruction kinds panic with *UnsupportedConstructError.
func Gen(
	facts *fact.Table,
	callees *irl.CalleeTable,
	body *irl.Body,
	rep *diag.Reporter,
	log *slog.Logger,
	rec *crashdetail.Recorder,
) map[irl.Location][]RewriteOp {
	v := &visitor{
		facts:    facts,
		callees:  callees,
		body:     body,
		rewrites: make(map[irl.Location][]RewriteOp),
		rep:      rep.Phase(diag.PhaseAnnotate),
		log:      log,
		rec:      rec,
	}

	for bi, bb := range body.Blocks {
		for si, st := range bb.Statements {
			loc := irl.Location{Block: bi, Index: si}
			guard := rec.SetCurrentSpan(st.Span)
			v.visitStatement(st, loc)
			guard.Release()
		}

		if term := bb.Terminator; term != nil {
			loc := irl.Location{Block: bi, Index: len(bb.Statements)}
			guard := rec.SetCurrentSpan(term.Span)
			v.visitTerminator(term, loc)
			guard.Release()
		}
	}

	return v.rewrites
}

// enter pushes one sub-location for the duration of f.
func (v *visitor) enter(sub SubLoc, f func()) {
	v.sub = append(v.sub, sub)
	f()
	v.sub = v.sub[:len(v.sub)-1]
}

func (v *visitor) enterDest(f func())                 { v.enter(Dest(), f) }
func (v *visitor) enterAssignRvalue(f func())         { v.enter(AssignRvalue(), f) }
func (v *visitor) enterCallArg(i int, f func())       { v.enter(CallArg(i), f) }
func (v *visitor) enterRvalueOperand(i int, f func()) { v.enter(RvalueOperand(i), f) }
func (v *visitor) enterRvaluePlace(i int, f func())   { v.enter(RvaluePlace(i), f) }

// checkStackClear enforces the stack-balance invariant at instruction
// boundaries.
func (v *visitor) checkStackClear(loc irl.Location) {
	if len(v.sub) != 0 {
		unsupported(fmt.Sprintf("non-empty sub-location stack %s", v.sub), loc)
	}
}

func (v *visitor) visitStatement(st *irl.Statement, loc irl.Location) {
	v.loc = loc
	v.checkStackClear(loc)

	switch kind := st.Kind.(type) {
	case *irl.StmtAssign:
		v.visitAssign(kind, loc)
	case *irl.StmtFakeRead:
	case *irl.StmtStorageLive:
	case *irl.StmtStorageDead:
	case *irl.StmtNop:
	case *irl.StmtSetDiscriminant:
		unsupported("set-discriminant statement", loc)
	case *irl.StmtIntrinsicCopy:
		unsupported("intrinsic-copy statement", loc)
	default:
		unsupported(fmt.Sprintf("statement %T", st.Kind), loc)
	}

	v.checkStackClear(loc)
}

func (v *visitor) visitAssign(st *irl.StmtAssign, loc irl.Location) {
	pl := st.Dest
	rv := st.Rv

	if _, isCast := rv.(*irl.RvCast); isCast && v.body.SkipCast[loc] {
		// A cast to or from a void pointer bundled with an allocator
		// call; the call rewrite owns it.
		return
	}

	plLty := v.body.TypeOfPlace(pl)

	if pl.IsIndirect() && irl.IsAnyPtr(v.body.TypeOfLocal(pl.Local).Ty) {
		localLty := v.body.TypeOfLocal(pl.Local)
		desc := typedesc.Resolve(localLty.Ty, v.facts.Perms(localLty.Label), v.facts.Flags(localLty.Label))
		if desc.Own == typedesc.OwnCell {
			// A store like `*x = 2` where `x` has CELL permissions.
			v.enterAssignRvalue(func() { v.emit(OpCellSet, false) })
		}
	}

	if use, ok := rv.(*irl.RvUse); ok {
		localTy := v.body.TypeOfLocal(pl.Local).Ty
		localAddr := v.body.AddrOfLocal[pl.Local]
		desc := typedesc.ResolveLocal(localTy, v.facts.Perms(localAddr), v.facts.Flags(localAddr))
		if desc.Own == typedesc.OwnCell {
			// An init like `let x = 2` where `x` has CELL permissions.
			v.enterAssignRvalue(func() {
				v.enterRvalueOperand(0, func() { v.emit(OpCellNew, false) })
			})
		}

		if rvPlace, ok := irl.OperandPlace(use.Op); ok {
			if rvPlace.IsIndirect() && irl.IsAnyPtr(v.body.TypeOfLocal(rvPlace.Local).Ty) {
				localLty := v.body.TypeOfLocal(rvPlace.Local)
				if v.facts.Flags(localLty.Label).Contains(fact.FlagCell) {
					// A read like `let x = *y` where `y` has CELL permissions.
					v.enterAssignRvalue(func() {
						v.enterRvalueOperand(0, func() { v.emit(OpCellGet, false) })
					})
				}
			}
		}
	}

	rvLty := v.body.TypeOfRvalue(rv, loc)
	v.enterAssignRvalue(func() { v.visitRvalue(rv, &rvLty) })
	v.emitCastLtyLty(rvLty, plLty)
	v.enterDest(func() { v.visitPlace(pl) })
}

func (v *visitor) visitTerminator(term *irl.Terminator, loc irl.Location) {
	v.loc = loc
	v.checkStackClear(loc)

	switch kind := term.Kind.(type) {
	case *irl.TermGoto:
	case *irl.TermSwitchInt:
	case *irl.TermReturn:
	case *irl.TermUnreachable:
	case *irl.TermDrop:
	case *irl.TermCall:
		v.visitCall(kind, loc)
	case *irl.TermInlineAsm:
		unsupported("inline-asm terminator", loc)
	default:
		unsupported(fmt.Sprintf("terminator %T", term.Kind), loc)
	}

	v.checkStackClear(loc)
}

func (v *visitor) visitCall(call *irl.TermCall, loc irl.Location) {
	plLty := v.body.TypeOfPlace(call.Dest)

	// Special cases for particular callees.
	switch v.callees.Classify(call.Func) {
	case irl.CalleeOffset:
		v.visitPtrOffset(call.Args[0], plLty)
		return
	case irl.CalleeAsPtr:
		v.visitAccessor(call.Args[0], plLty)
		return
	}

	// General case: the callee's signature is not modeled, so argument
	// types cannot be checked against expectations yet; arguments are
	// visited without one.
	for i, arg := range call.Args {
		v.enterCallArg(i, func() { v.visitOperand(arg, nil) })
	}
}

// visitRvalue descends into an rvalue. A non-nil expect also emits the
// casts needed to make the rvalue produce a value of that type.
func (v *visitor) visitRvalue(rv irl.Rvalue, expect *irl.LTy) {
	switch kind := rv.(type) {
	case *irl.RvUse:
		v.enterRvalueOperand(0, func() { v.visitOperand(kind.Op, expect) })
	case *irl.RvRepeat:
		v.enterRvalueOperand(0, func() { v.visitOperand(kind.Op, nil) })
	case *irl.RvRef:
		v.enterRvaluePlace(0, func() { v.visitPlace(kind.Place) })
	case *irl.RvAddrOf:
		v.enterRvaluePlace(0, func() { v.visitPlace(kind.Place) })
		if expect != nil {
			desc := typedesc.Resolve(expect.Ty, v.facts.Perms(expect.Label), v.facts.Flags(expect.Label))
			v.enterRvalueOperand(0, func() {
				switch desc.Own {
				case typedesc.OwnCell:
					// Address-of a cell exposes read access to the cell
					// handle, never a mutable raw pointer.
					v.emit(OpRawToRef, false)
				case typedesc.OwnImm, typedesc.OwnMut:
					v.emit(OpRawToRef, kind.Mut)
				}
			})
		}
	case *irl.RvLen:
		v.enterRvaluePlace(0, func() { v.visitPlace(kind.Place) })
	case *irl.RvCast:
		v.enterRvalueOperand(0, func() { v.visitOperand(kind.Op, nil) })
	case *irl.RvBinaryOp:
		v.enterRvalueOperand(0, func() { v.visitOperand(kind.A, nil) })
		v.enterRvalueOperand(1, func() { v.visitOperand(kind.B, nil) })
	case *irl.RvUnaryOp:
		v.enterRvalueOperand(0, func() { v.visitOperand(kind.A, nil) })
	case *irl.RvAggregate:
		for i, op := range kind.Ops {
			v.enterRvalueOperand(i, func() { v.visitOperand(op, nil) })
		}
	default:
		unsupported(fmt.Sprintf("rvalue %T", rv), v.loc)
	}
}

// visitOperand descends into an operand. A non-nil expect also emits
// whatever casts are needed to make the operand produce that type.
func (v *visitor) visitOperand(op irl.Operand, expect *irl.LTy) {
	pl, ok := irl.OperandPlace(op)
	if !ok {
		return
	}

	v.visitPlace(pl)

	if expect != nil {
		ptrLty := v.body.TypeOfPlace(pl)
		if !ptrLty.Label.IsNone() {
			v.emitCastLtyLty(ptrLty, *expect)
		}
	}
}

// visitOperandDesc is visitOperand against an expected descriptor
// instead of an expected labeled type.
func (v *visitor) visitOperandDesc(op irl.Operand, expect typedesc.TypeDesc) {
	pl, ok := irl.OperandPlace(op)
	if !ok {
		return
	}

	v.visitPlace(pl)

	ptrLty := v.body.TypeOfPlace(pl)
	if !ptrLty.Label.IsNone() {
		from := typedesc.Resolve(ptrLty.Ty, v.facts.Perms(ptrLty.Label), v.facts.Flags(ptrLty.Label))
		v.emitCastDescDesc(from, expect)
	}
}

func (v *visitor) visitPlace(pl irl.Place) {
	// Deref chains inside places are not decomposed yet; stores and
	// loads through them are handled at the assignment level.
	_ = pl
}

// visitPtrOffset handles `ptr.offset(i)`-shaped calls: the argument is
// rewritten against a widened expectation and the call itself becomes
// slice indexing.
func (v *visitor) visitPtrOffset(op irl.Operand, resultLty irl.LTy) {
	resultDesc := typedesc.Resolve(resultLty.Ty, v.facts.Perms(resultLty.Label), v.facts.Flags(resultLty.Label))

	var argQty typedesc.Quantity
	switch resultDesc.Qty {
	case typedesc.QtySingle:
		argQty = typedesc.QtySlice
	case typedesc.QtySlice:
		argQty = typedesc.QtySlice
	case typedesc.QtyOffsetPtr:
		argQty = typedesc.QtyOffsetPtr
	case typedesc.QtyArray:
		unsupported("array quantity out of the resolver", v.loc)
	}

	argExpect := typedesc.TypeDesc{
		Own:     resultDesc.Own,
		Qty:     argQty,
		Pointee: resultDesc.Pointee,
	}

	v.enterCallArg(0, func() { v.visitOperandDesc(op, argExpect) })

	mut := resultDesc.Own == typedesc.OwnMut

	v.emit(OpOffsetSlice, mut)

	// A Single result narrows the indexed slice back to one element.
	if resultDesc.Qty == typedesc.QtySingle {
		v.emit(OpSliceFirst, mut)
	}
}

// visitAccessor handles as_ptr/as_mut_ptr-shaped calls: once both sides
// are rewritten to the same safe type, the accessor is redundant.
func (v *visitor) visitAccessor(op irl.Operand, resultLty irl.LTy) {
	opLty := v.body.TypeOfOperand(op)

	opDesc := typedesc.Resolve(opLty.Ty, v.facts.Perms(opLty.Label), v.facts.Flags(opLty.Label))
	resultDesc := typedesc.Resolve(resultLty.Ty, v.facts.Perms(resultLty.Label), v.facts.Flags(resultLty.Label))

	if opDesc.Own == resultDesc.Own && opDesc.Qty == resultDesc.Qty {
		v.emit(OpRemoveAsPtr, false)
	}
}

func (v *visitor) emit(kind OpKind, mut bool) {
	v.rewrites[v.loc] = append(v.rewrites[v.loc], RewriteOp{
		Kind: kind,
		Mut:  mut,
		Sub:  v.sub.Clone(),
	})
}

// emitCastDescDesc emits the operations turning a value of descriptor
// from into one of descriptor to. Equal descriptors need nothing; the
// only known narrowing is Mut→Imm; everything else is a soft failure.
func (v *visitor) emitCastDescDesc(from, to typedesc.TypeDesc) {
	if !irl.TypeEqual(from.Pointee, to.Pointee) {
		v.rep.Report(diag.RWD010CastPointeeMismatch,
			fmt.Sprintf("cast endpoints disagree on pointee: %s vs %s", from, to),
			v.body.LocationSpan(v.loc))
		return
	}

	if from.Equal(to) {
		return
	}

	if from.Qty == to.Qty && from.Own == typedesc.OwnMut && to.Own == typedesc.OwnImm {
		v.emit(OpMutToImm, false)
		return
	}

	v.log.Warn("unsupported cast kind",
		slog.String("from", from.String()),
		slog.String("to", to.String()),
		slog.String("loc", v.loc.String()),
	)
	v.rep.Report(diag.RWD000UnsupportedCast,
		fmt.Sprintf("unsupported cast kind: %s -> %s", from, to),
		v.body.LocationSpan(v.loc))
}

func (v *visitor) emitCastLtyLty(from, to irl.LTy) {
	if from.Label.IsNone() && to.Label.IsNone() {
		return
	}

	// Both sides already safe: nothing to retrofit.
	_, fromRaw := from.Ty.(*irl.TyRawPtr)
	_, toRaw := to.Ty.(*irl.TyRawPtr)
	if !fromRaw && !toRaw {
		return
	}

	fromDesc := typedesc.Resolve(from.Ty, v.facts.Perms(from.Label), v.facts.Flags(from.Label))
	toDesc := typedesc.Resolve(to.Ty, v.facts.Perms(to.Label), v.facts.Flags(to.Label))
	v.emitCastDescDesc(fromDesc, toDesc)
}
