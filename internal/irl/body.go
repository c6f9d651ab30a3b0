package irl

import (
	"fmt"

	"github.com/sirkon/deraw/internal/fact"
	"github.com/sirkon/deraw/internal/span"
)

// Location addresses one instruction inside a body: statement Index
// within Block, or the block's terminator when Index equals the
// statement count.
type Location struct {
	Block int
	Index int
}

func (l Location) String() string {
	return fmt.Sprintf("bb%d[%d]", l.Block, l.Index)
}

// Less orders locations in program order.
func (l Location) Less(other Location) bool {
	if l.Block != other.Block {
		return l.Block < other.Block
	}
	return l.Index < other.Index
}

// Block is one basic block: straight-line statements closed by a
// terminator.
type Block struct {
	Statements []*Statement
	Terminator *Terminator
}

// Body is the IR-L form of one function, together with the typing and
// labeling information the front end attaches to it.
type Body struct {
	Name   string
	Blocks []*Block

	// LocalTys is the labeled static type of each local.
	LocalTys []LTy
	// LocalNames is the source name of each local; temporaries are "".
	LocalNames []string
	// LocalDeclSpans is the span of each local's source type annotation.
	// Zero for temporaries and for locals declared without one.
	LocalDeclSpans []span.Span
	// AddrOfLocal is, per local, the PointerID classifying the address
	// of that local (a pointer the program never names explicitly).
	AddrOfLocal []fact.PointerID

	// RvalueTys carries the front end's type for each assignment rvalue,
	// keyed by the assignment's location.
	RvalueTys map[Location]LTy
	// SkipCast marks cast statements that belong to void-pointer
	// bookkeeping around allocator calls; the annotator skips them.
	SkipCast map[Location]bool

	// Synthetic marks compiler-generated bodies; unlowering skips them.
	Synthetic bool
}

// StmtAt resolves a location to either a statement or a terminator.
// Exactly one of the results is non-nil.
func (b *Body) StmtAt(loc Location) (*Statement, *Terminator) {
	bb := b.Blocks[loc.Block]
	if loc.Index < len(bb.Statements) {
		return bb.Statements[loc.Index], nil
	}
	if loc.Index == len(bb.Statements) {
		return nil, bb.Terminator
	}
	panic(fmt.Sprintf("irl: location %s out of range", loc))
}

// LocationSpan is the source span of the instruction at loc.
func (b *Body) LocationSpan(loc Location) span.Span {
	st, term := b.StmtAt(loc)
	if st != nil {
		return st.Span
	}
	return term.Span
}

// EachLocation calls f for every instruction location in program order.
func (b *Body) EachLocation(f func(Location)) {
	for bi, bb := range b.Blocks {
		for si := range bb.Statements {
			f(Location{Block: bi, Index: si})
		}
		if bb.Terminator != nil {
			f(Location{Block: bi, Index: len(bb.Statements)})
		}
	}
}

// TypeOfLocal is the labeled type of a bare local.
func (b *Body) TypeOfLocal(l Local) LTy {
	return b.LocalTys[l]
}

// TypeOfPlace computes the labeled type of a place by walking its
// projection chain. Projected places lose their pointer label: the
// inference engine labels whole locals, not projections.
func (b *Body) TypeOfPlace(pl Place) LTy {
	lty := b.LocalTys[pl.Local]
	for _, pr := range pl.Proj {
		switch v := pr.(type) {
		case *ProjDeref:
			elem := Pointee(lty.Ty)
			if elem == nil {
				panic(fmt.Sprintf("irl: deref of non-pointer type %s in %s", TypeString(lty.Ty), pl))
			}
			lty = LTy{Ty: elem}
		case *ProjField:
			// Field types are not tracked; the rewrite pipeline never
			// needs them beyond "not a labeled pointer".
			lty = LTy{Ty: &TyNamed{Name: fmt.Sprintf("<field %d>", v.Index)}}
		}
	}
	return lty
}

// TypeOfOperand is the labeled type of an operand.
func (b *Body) TypeOfOperand(op Operand) LTy {
	switch v := op.(type) {
	case *OperandCopy:
		return b.TypeOfPlace(v.Place)
	case *OperandMove:
		return b.TypeOfPlace(v.Place)
	case *OperandConst:
		return LTy{Ty: v.Ty}
	default:
		panic(fmt.Sprintf("irl: unknown operand variant %T", op))
	}
}

// TypeOfRvalue is the labeled type an rvalue produces at loc. The front
// end's explicit record wins; otherwise the type is derived from the
// rvalue's shape.
func (b *Body) TypeOfRvalue(rv Rvalue, loc Location) LTy {
	if lty, ok := b.RvalueTys[loc]; ok {
		return lty
	}

	switch v := rv.(type) {
	case *RvUse:
		return b.TypeOfOperand(v.Op)
	case *RvCast:
		return LTy{Ty: v.Ty}
	case *RvRef:
		return LTy{Ty: &TyRef{Mut: v.Mut, Elem: b.TypeOfPlace(v.Place).Ty}}
	case *RvAddrOf:
		return LTy{Ty: &TyRawPtr{Mut: v.Mut, Elem: b.TypeOfPlace(v.Place).Ty}}
	case *RvLen:
		return LTy{Ty: &TyNamed{Name: "usize"}}
	default:
		return LTy{Ty: &TyNamed{Name: "<derived>"}}
	}
}
