package annotate

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/sirkon/deepequal"
	"github.com/stretchr/testify/require"

	"github.com/sirkon/deraw/internal/crashdetail"
	"github.com/sirkon/deraw/internal/diag"
	"github.com/sirkon/deraw/internal/fact"
	"github.com/sirkon/deraw/internal/irl"
	"github.com/sirkon/deraw/internal/span"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mutPtr(name string) irl.Type {
	return &irl.TyRawPtr{Mut: true, Elem: &irl.TyNamed{Name: name}}
}

func constPtr(name string) irl.Type {
	return &irl.TyRawPtr{Elem: &irl.TyNamed{Name: name}}
}

// singleAssignBody wraps one assignment statement into a body.
func singleAssignBody(locals []irl.LTy, dest irl.Place, rv irl.Rvalue) *irl.Body {
	return &irl.Body{
		Name:        "f",
		LocalTys:    locals,
		AddrOfLocal: make([]fact.PointerID, len(locals)),
		Blocks: []*irl.Block{
			{
				Statements: []*irl.Statement{
					{Kind: &irl.StmtAssign{Dest: dest, Rv: rv}, Span: span.New("lib.rs", 0, 10)},
				},
				Terminator: &irl.Terminator{Kind: &irl.TermReturn{}, Span: span.New("lib.rs", 11, 12)},
			},
		},
	}
}

func runGen(t *testing.T, facts *fact.Table, body *irl.Body) (map[irl.Location][]RewriteOp, *diag.Reporter) {
	t.Helper()

	rep := diag.NewReporter()
	rec := crashdetail.NewRecorder()
	ops := Gen(facts, irl.NewCalleeTable(nil), body, rep, quietLogger(), rec)
	return ops, rep
}

func requireOps(t *testing.T, got, want []RewriteOp) {
	t.Helper()

	if len(got) != len(want) {
		deepequal.SideBySide(t, "operations", want, got)
		t.FailNow()
	}
	for i := range want {
		if got[i].Kind != want[i].Kind || got[i].Mut != want[i].Mut || got[i].Sub.Key() != want[i].Sub.Key() {
			deepequal.SideBySide(t, "operations", want, got)
			t.FailNow()
		}
	}
}

func TestCellSetOnStoreThroughCellPointer(t *testing.T) {
	// *x = 2 where x is a CELL pointer.
	facts := fact.NewTable()
	facts.Set(1, fact.PermRead|fact.PermWrite, fact.FlagCell)

	locals := []irl.LTy{
		{},
		{Ty: mutPtr("i32"), Label: 1},
	}
	body := singleAssignBody(
		locals,
		irl.Place{Local: 1, Proj: []irl.Projection{&irl.ProjDeref{}}},
		&irl.RvUse{Op: &irl.OperandConst{Ty: &irl.TyNamed{Name: "i32"}, Text: "2"}},
	)

	ops, rep := runGen(t, facts, body)
	requireOps(t, ops[irl.Location{Block: 0, Index: 0}], []RewriteOp{
		{Kind: OpCellSet, Sub: Path{AssignRvalue()}},
	})
	require.Empty(t, rep.Reports())
}

func TestCellNewOnCellLocalInit(t *testing.T) {
	// let x = 2 where the address of x has CELL permissions.
	facts := fact.NewTable()
	facts.Set(2, fact.PermRead|fact.PermWrite, fact.FlagCell)

	locals := []irl.LTy{
		{},
		{Ty: &irl.TyNamed{Name: "i32"}},
	}
	body := singleAssignBody(
		locals,
		irl.PlaceOf(1),
		&irl.RvUse{Op: &irl.OperandConst{Ty: &irl.TyNamed{Name: "i32"}, Text: "2"}},
	)
	body.AddrOfLocal[1] = 2

	ops, _ := runGen(t, facts, body)
	requireOps(t, ops[irl.Location{Block: 0, Index: 0}], []RewriteOp{
		{Kind: OpCellNew, Sub: Path{AssignRvalue(), RvalueOperand(0)}},
	})
}

func TestCellGetOnLoadThroughCellPointer(t *testing.T) {
	// let x = *y where y is a CELL pointer.
	facts := fact.NewTable()
	facts.Set(3, fact.PermRead, fact.FlagCell)

	locals := []irl.LTy{
		{},
		{Ty: &irl.TyNamed{Name: "i32"}},
		{Ty: constPtr("i32"), Label: 3},
	}
	body := singleAssignBody(
		locals,
		irl.PlaceOf(1),
		&irl.RvUse{Op: &irl.OperandCopy{Place: irl.Place{Local: 2, Proj: []irl.Projection{&irl.ProjDeref{}}}}},
	)

	ops, _ := runGen(t, facts, body)
	requireOps(t, ops[irl.Location{Block: 0, Index: 0}], []RewriteOp{
		{Kind: OpCellGet, Sub: Path{AssignRvalue(), RvalueOperand(0)}},
	})
}

func TestMutToImmNarrowing(t *testing.T) {
	// let p = q where q resolves to &mut and p to &.
	facts := fact.NewTable()
	facts.Set(4, fact.PermRead|fact.PermWrite|fact.PermUnique, 0)
	facts.Set(5, fact.PermRead, 0)

	locals := []irl.LTy{
		{},
		{Ty: mutPtr("i32"), Label: 5},
		{Ty: mutPtr("i32"), Label: 4},
	}
	body := singleAssignBody(
		locals,
		irl.PlaceOf(1),
		&irl.RvUse{Op: &irl.OperandCopy{Place: irl.PlaceOf(2)}},
	)

	ops, rep := runGen(t, facts, body)
	requireOps(t, ops[irl.Location{Block: 0, Index: 0}], []RewriteOp{
		{Kind: OpMutToImm, Sub: nil},
	})
	require.Empty(t, rep.Reports())
}

func TestNoOpCastEmitsNothing(t *testing.T) {
	// Identical descriptors on both sides: no operation at all.
	facts := fact.NewTable()
	facts.Set(4, fact.PermRead, 0)
	facts.Set(5, fact.PermRead, 0)

	locals := []irl.LTy{
		{},
		{Ty: constPtr("i32"), Label: 5},
		{Ty: constPtr("i32"), Label: 4},
	}
	body := singleAssignBody(
		locals,
		irl.PlaceOf(1),
		&irl.RvUse{Op: &irl.OperandCopy{Place: irl.PlaceOf(2)}},
	)

	ops, rep := runGen(t, facts, body)
	require.Empty(t, ops)
	require.Empty(t, rep.Reports())
}

func TestUnsupportedCastIsSoft(t *testing.T) {
	// Imm slice -> Imm single has no known narrowing.
	facts := fact.NewTable()
	facts.Set(4, fact.PermRead|fact.PermOffsetAdd, 0)
	facts.Set(5, fact.PermRead, 0)

	locals := []irl.LTy{
		{},
		{Ty: constPtr("u8"), Label: 5},
		{Ty: constPtr("u8"), Label: 4},
	}
	body := singleAssignBody(
		locals,
		irl.PlaceOf(1),
		&irl.RvUse{Op: &irl.OperandCopy{Place: irl.PlaceOf(2)}},
	)

	ops, rep := runGen(t, facts, body)
	require.Empty(t, ops)

	reports := rep.Reports()
	require.Len(t, reports, 1)
	require.Equal(t, diag.RWD000UnsupportedCast, reports[0].Code)
	require.Equal(t, diag.PhaseAnnotate, reports[0].Phase)
}

func TestRawToRefMutability(t *testing.T) {
	type test struct {
		name    string
		perms   fact.Perm
		flags   fact.Flag
		addrMut bool
		want    []RewriteOp
	}

	tests := []test{
		{
			name:    "mutable target keeps declared mutability",
			perms:   fact.PermRead | fact.PermWrite | fact.PermUnique,
			addrMut: true,
			want: []RewriteOp{
				{Kind: OpRawToRef, Mut: true, Sub: Path{AssignRvalue(), RvalueOperand(0)}},
			},
		},
		{
			name:    "cell target is forced immutable",
			perms:   fact.PermRead | fact.PermWrite,
			flags:   fact.FlagCell,
			addrMut: true,
			want: []RewriteOp{
				{Kind: OpRawToRef, Mut: false, Sub: Path{AssignRvalue(), RvalueOperand(0)}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := fact.NewTable()
			facts.Set(10, tt.perms, tt.flags)

			locals := []irl.LTy{
				{},
				{Ty: mutPtr("i32"), Label: 10},
				{Ty: &irl.TyNamed{Name: "i32"}},
			}
			body := singleAssignBody(
				locals,
				irl.PlaceOf(1),
				&irl.RvAddrOf{Mut: tt.addrMut, Place: irl.PlaceOf(2)},
			)
			body.RvalueTys = map[irl.Location]irl.LTy{
				{Block: 0, Index: 0}: {Ty: mutPtr("i32"), Label: 10},
			}

			ops, _ := runGen(t, facts, body)
			requireOps(t, ops[irl.Location{Block: 0, Index: 0}], tt.want)
		})
	}
}

func callBody(locals []irl.LTy, fnRef irl.PackagedFunc, arg irl.Operand, dest irl.Place) *irl.Body {
	return &irl.Body{
		Name:        "f",
		LocalTys:    locals,
		AddrOfLocal: make([]fact.PointerID, len(locals)),
		Blocks: []*irl.Block{
			{
				Terminator: &irl.Terminator{
					Kind: &irl.TermCall{
						Func: &irl.OperandConst{Ty: &irl.TyFnDef{Ref: fnRef}},
						Args: []irl.Operand{arg},
						Dest: dest,
					},
					Span: span.New("lib.rs", 0, 20),
				},
			},
		},
	}
}

func TestOffsetCallQuantityWidening(t *testing.T) {
	// p = q.offset(i) where the result is a single element: the argument
	// must be expected as a slice, and exactly OffsetSlice then
	// SliceFirst must be emitted.
	facts := fact.NewTable()
	facts.Set(6, fact.PermRead|fact.PermWrite|fact.PermUnique|fact.PermOffsetAdd, 0)
	facts.Set(7, fact.PermRead|fact.PermWrite|fact.PermUnique, 0)

	locals := []irl.LTy{
		{},
		{Ty: mutPtr("u8"), Label: 7},
		{Ty: mutPtr("u8"), Label: 6},
	}
	body := callBody(
		locals,
		irl.PackagedFunc{Path: "core::ptr", Name: "offset"},
		&irl.OperandCopy{Place: irl.PlaceOf(2)},
		irl.PlaceOf(1),
	)

	ops, rep := runGen(t, facts, body)
	requireOps(t, ops[irl.Location{Block: 0, Index: 0}], []RewriteOp{
		{Kind: OpOffsetSlice, Mut: true, Sub: nil},
		{Kind: OpSliceFirst, Mut: true, Sub: nil},
	})
	require.Empty(t, rep.Reports(), "the argument already matches the widened expectation")
}

func TestOffsetCallSliceResult(t *testing.T) {
	// The result keeps offsetting: no SliceFirst narrowing.
	facts := fact.NewTable()
	facts.Set(6, fact.PermRead|fact.PermOffsetAdd, 0)
	facts.Set(7, fact.PermRead|fact.PermOffsetAdd, 0)

	locals := []irl.LTy{
		{},
		{Ty: constPtr("u8"), Label: 7},
		{Ty: constPtr("u8"), Label: 6},
	}
	body := callBody(
		locals,
		irl.PackagedFunc{Path: "core::ptr", Name: "offset"},
		&irl.OperandCopy{Place: irl.PlaceOf(2)},
		irl.PlaceOf(1),
	)

	ops, _ := runGen(t, facts, body)
	requireOps(t, ops[irl.Location{Block: 0, Index: 0}], []RewriteOp{
		{Kind: OpOffsetSlice, Mut: false, Sub: nil},
	})
}

func TestRedundantAccessorElision(t *testing.T) {
	// q = p.as_ptr() where both sides resolve identically: one
	// RemoveAsPtr, no cast alongside.
	facts := fact.NewTable()
	facts.Set(8, fact.PermRead, 0)
	facts.Set(9, fact.PermRead, 0)

	locals := []irl.LTy{
		{},
		{Ty: constPtr("u8"), Label: 9},
		{Ty: constPtr("u8"), Label: 8},
	}
	body := callBody(
		locals,
		irl.PackagedFunc{Path: "core::slice", Name: "as_ptr"},
		&irl.OperandCopy{Place: irl.PlaceOf(2)},
		irl.PlaceOf(1),
	)

	ops, rep := runGen(t, facts, body)
	requireOps(t, ops[irl.Location{Block: 0, Index: 0}], []RewriteOp{
		{Kind: OpRemoveAsPtr, Sub: nil},
	})
	require.Empty(t, rep.Reports())
}

func TestAccessorKeptWhenDescriptorsDiffer(t *testing.T) {
	facts := fact.NewTable()
	facts.Set(8, fact.PermRead|fact.PermOffsetAdd, 0)
	facts.Set(9, fact.PermRead, 0)

	locals := []irl.LTy{
		{},
		{Ty: constPtr("u8"), Label: 9},
		{Ty: constPtr("u8"), Label: 8},
	}
	body := callBody(
		locals,
		irl.PackagedFunc{Path: "core::slice", Name: "as_ptr"},
		&irl.OperandCopy{Place: irl.PlaceOf(2)},
		irl.PlaceOf(1),
	)

	ops, _ := runGen(t, facts, body)
	require.Empty(t, ops, "differing descriptors keep the accessor call untouched")
}

func TestUnsupportedStatementIsFatal(t *testing.T) {
	body := &irl.Body{
		LocalTys:    []irl.LTy{{}, {Ty: &irl.TyNamed{Name: "E"}}},
		AddrOfLocal: make([]fact.PointerID, 2),
		Blocks: []*irl.Block{
			{
				Statements: []*irl.Statement{
					{Kind: &irl.StmtSetDiscriminant{Dest: irl.PlaceOf(1)}, Span: span.New("lib.rs", 0, 4)},
				},
				Terminator: &irl.Terminator{Kind: &irl.TermReturn{}},
			},
		},
	}

	rec := crashdetail.NewRecorder()
	err := rec.Catch(func() error {
		Gen(fact.NewTable(), irl.NewCalleeTable(nil), body, diag.NewReporter(), quietLogger(), rec)
		return nil
	})

	require.Error(t, err)
	require.Contains(t, err.Error(), "set-discriminant")

	var detail *crashdetail.Detail
	require.True(t, errors.As(err, &detail))
	require.Equal(t, span.New("lib.rs", 0, 4), detail.Span,
		"the failure must carry the span of the offending instruction")
}

func TestSubLocationStackBalance(t *testing.T) {
	// A dirty stack at instruction entry is a coverage failure.
	v := &visitor{
		body: singleAssignBody(
			[]irl.LTy{{}, {Ty: &irl.TyNamed{Name: "i32"}}},
			irl.PlaceOf(1),
			&irl.RvUse{Op: &irl.OperandConst{Ty: &irl.TyNamed{Name: "i32"}}},
		),
		facts:    fact.NewTable(),
		callees:  irl.NewCalleeTable(nil),
		rewrites: map[irl.Location][]RewriteOp{},
		rep:      diag.NewReporter().Phase(diag.PhaseAnnotate),
		log:      quietLogger(),
		sub:      Path{Dest()},
	}

	defer func() {
		p := recover()
		require.NotNil(t, p, "a non-empty sub-location stack at entry must abort")
		_, ok := p.(*UnsupportedConstructError)
		require.True(t, ok, "got %T", p)
	}()

	st := v.body.Blocks[0].Statements[0]
	v.visitStatement(st, irl.Location{})
}

func TestPathPrefix(t *testing.T) {
	p := Path{AssignRvalue(), CallArg(0), OperandPlace()}

	require.True(t, p.HasPrefix(nil))
	require.True(t, p.HasPrefix(Path{AssignRvalue()}))
	require.True(t, p.HasPrefix(Path{AssignRvalue(), CallArg(0)}))
	require.False(t, p.HasPrefix(Path{AssignRvalue(), CallArg(1)}))
	require.False(t, p.HasPrefix(Path{Dest()}))
	require.False(t, Path{Dest()}.HasPrefix(p))

	require.Equal(t, "[Rvalue, CallArg(0), OperandPlace]", p.String())
}
