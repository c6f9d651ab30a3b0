package rewrite

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sirkon/deraw/internal/annotate"
	"github.com/sirkon/deraw/internal/diag"
	"github.com/sirkon/deraw/internal/irl"
	"github.com/sirkon/deraw/internal/span"
	"github.com/sirkon/deraw/internal/srcast"
	"github.com/sirkon/deraw/internal/unlower"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLiftOffsetCall(t *testing.T) {
	// `q.offset(i)` annotated [OffsetSlice, SliceFirst] becomes
	// `&mut (&mut q[i ..])[0]` at the call's span.
	src := "let p = q.offset(i);"
	spRecv := span.New("lib.rs", 8, 9)
	spIdx := span.New("lib.rs", 17, 18)
	spCall := span.New("lib.rs", 8, 19)
	loc := irl.Location{Block: 0, Index: 0}

	tree := srcast.NewTree(&srcast.Expr{
		ID:     1,
		Kind:   srcast.KindMethodCall,
		Span:   spCall,
		Callee: &srcast.Expr{ID: 2, Kind: srcast.KindOther, Span: spRecv, Text: "q"},
		Args:   []*srcast.Expr{{ID: 3, Kind: srcast.KindOther, Span: spIdx, Text: "i"}},
	})

	origins := unlower.NewOriginMap()
	origins.Insert(loc, nil, unlower.MirOrigin{Node: 1, Span: spCall, Desc: unlower.DescStoreIntoLocal})
	origins.Insert(loc, annotate.Path{annotate.AssignRvalue()}, unlower.MirOrigin{Node: 1, Span: spCall, Desc: unlower.DescWholeExpr})

	ops := map[irl.Location][]annotate.RewriteOp{
		loc: {
			{Kind: annotate.OpOffsetSlice, Mut: true},
			{Kind: annotate.OpSliceFirst, Mut: true},
		},
	}

	rep := diag.NewReporter()
	edits := Lift(ops, origins, tree, rep, quietLogger())
	require.Len(t, edits, 1)
	require.Empty(t, rep.Reports())

	out := Apply(map[string]string{"lib.rs": src}, edits)
	require.Equal(t, "let p = &mut (&mut q[i ..])[0];", out["lib.rs"])
}

func TestLiftMutToImm(t *testing.T) {
	src := "let p = q;"
	spQ := span.New("lib.rs", 8, 9)
	loc := irl.Location{Block: 0, Index: 0}

	tree := srcast.NewTree(&srcast.Expr{ID: 1, Kind: srcast.KindOther, Span: spQ, Text: "q"})

	origins := unlower.NewOriginMap()
	origins.Insert(loc, nil, unlower.MirOrigin{Node: 1, Span: spQ, Desc: unlower.DescStoreIntoLocal})

	ops := map[irl.Location][]annotate.RewriteOp{
		loc: {{Kind: annotate.OpMutToImm}},
	}

	edits := Lift(ops, origins, tree, diag.NewReporter(), quietLogger())
	require.Len(t, edits, 1)

	out := Apply(map[string]string{"lib.rs": src}, edits)
	require.Equal(t, "let p = &*q;", out["lib.rs"])
}

func TestLiftRemoveAsPtr(t *testing.T) {
	src := "let p = v.as_ptr();"
	spRecv := span.New("lib.rs", 8, 9)
	spCall := span.New("lib.rs", 8, 18)
	loc := irl.Location{Block: 0, Index: 0}

	tree := srcast.NewTree(&srcast.Expr{
		ID:     1,
		Kind:   srcast.KindMethodCall,
		Span:   spCall,
		Callee: &srcast.Expr{ID: 2, Kind: srcast.KindOther, Span: spRecv, Text: "v"},
	})

	origins := unlower.NewOriginMap()
	origins.Insert(loc, nil, unlower.MirOrigin{Node: 1, Span: spCall, Desc: unlower.DescStoreIntoLocal})

	ops := map[irl.Location][]annotate.RewriteOp{
		loc: {{Kind: annotate.OpRemoveAsPtr}},
	}

	edits := Lift(ops, origins, tree, diag.NewReporter(), quietLogger())
	require.Len(t, edits, 1)

	out := Apply(map[string]string{"lib.rs": src}, edits)
	require.Equal(t, "let p = v;", out["lib.rs"])
}

func TestLiftRawToRef(t *testing.T) {
	src := "let p = core::ptr::addr_of_mut!(x);"
	spX := span.New("lib.rs", 32, 33)
	spAddr := span.New("lib.rs", 8, 34)
	loc := irl.Location{Block: 0, Index: 0}

	tree := srcast.NewTree(&srcast.Expr{
		ID:   1,
		Kind: srcast.KindAddrOf,
		Span: spAddr,
		X:    &srcast.Expr{ID: 2, Kind: srcast.KindOther, Span: spX, Text: "x"},
	})

	origins := unlower.NewOriginMap()
	origins.Insert(loc, nil, unlower.MirOrigin{Node: 1, Span: spAddr, Desc: unlower.DescStoreIntoLocal})
	origins.Insert(loc, annotate.Path{annotate.AssignRvalue()}, unlower.MirOrigin{Node: 1, Span: spAddr, Desc: unlower.DescWholeExpr})

	ops := map[irl.Location][]annotate.RewriteOp{
		loc: {{
			Kind: annotate.OpRawToRef,
			Mut:  true,
			Sub:  annotate.Path{annotate.AssignRvalue(), annotate.RvalueOperand(0)},
		}},
	}

	rep := diag.NewReporter()
	edits := Lift(ops, origins, tree, rep, quietLogger())
	require.Len(t, edits, 1)
	require.Empty(t, rep.Reports())

	out := Apply(map[string]string{"lib.rs": src}, edits)
	require.Equal(t, "let p = &mut x;", out["lib.rs"])
}

func TestLiftCellOpsAreDropped(t *testing.T) {
	sp := span.New("lib.rs", 8, 9)
	loc := irl.Location{Block: 0, Index: 0}

	tree := srcast.NewTree(&srcast.Expr{ID: 1, Kind: srcast.KindOther, Span: sp})

	origins := unlower.NewOriginMap()
	origins.Insert(loc, annotate.Path{annotate.AssignRvalue()}, unlower.MirOrigin{Node: 1, Span: sp, Desc: unlower.DescWholeExpr})

	ops := map[irl.Location][]annotate.RewriteOp{
		loc: {{Kind: annotate.OpCellNew, Sub: annotate.Path{annotate.AssignRvalue(), annotate.RvalueOperand(0)}}},
	}

	rep := diag.NewReporter()
	edits := Lift(ops, origins, tree, rep, quietLogger())
	require.Empty(t, edits)

	reports := rep.Reports()
	require.Len(t, reports, 1)
	require.Equal(t, diag.RWD150UnsupportedLift, reports[0].Code)
	require.Equal(t, diag.PhaseLift, reports[0].Phase)
}

func TestLiftMissingOrigin(t *testing.T) {
	loc := irl.Location{Block: 0, Index: 0}
	tree := srcast.NewTree(&srcast.Expr{ID: 1, Kind: srcast.KindOther, Span: span.New("lib.rs", 0, 1)})

	ops := map[irl.Location][]annotate.RewriteOp{
		loc: {{Kind: annotate.OpMutToImm}},
	}

	rep := diag.NewReporter()
	edits := Lift(ops, unlower.NewOriginMap(), tree, rep, quietLogger())
	require.Empty(t, edits)

	reports := rep.Reports()
	require.Len(t, reports, 1)
	require.Equal(t, diag.RWD160MissingOrigin, reports[0].Code)
}
