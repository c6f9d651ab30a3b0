package unlower

import (
	"fmt"
	"log/slog"

	"github.com/sirkon/deraw/internal/annotate"
	"github.com/sirkon/deraw/internal/diag"
	"github.com/sirkon/deraw/internal/irl"
	"github.com/sirkon/deraw/internal/span"
	"github.com/sirkon/deraw/internal/srcast"
)

// builder carries the state of one unlowering pass over one body.
type builder struct {
	body  *irl.Body
	index *span.Index[irl.Location]
	out   *OriginMap

	rep *diag.PhaseReporter
	log *slog.Logger
}

// Build constructs the unlowering map of body against its expression
// tree. Synthetic bodies get an empty map: there is no source to splice
// rewrites into.
func Build(body *irl.Body, tree *srcast.Tree, rep *diag.Reporter, log *slog.Logger) *OriginMap {
	b := &builder{
		body:  body,
		index: span.NewIndex[irl.Location](),
		out:   NewOriginMap(),
		rep:   rep.Phase(diag.PhaseUnlower),
		log:   log,
	}

	if body.Synthetic {
		return b.out
	}

	body.EachLocation(func(loc irl.Location) {
		b.index.Insert(body.LocationSpan(loc), loc)
	})

	srcast.Walk(tree.Root, func(e *srcast.Expr) bool {
		b.visitExpr(e)
		return true
	})

	return b.out
}

// record inserts an origin pointing at ex, funneling conflicts into the
// report stream.
func (b *builder) record(loc irl.Location, sub annotate.Path, ex *srcast.Expr, desc OriginDesc) {
	origin := MirOrigin{
		Node: ex.ID,
		Span: ex.Span,
		Desc: desc,
	}

	if b.out.Insert(loc, sub, origin) != InsertConflict {
		return
	}

	old, _ := b.out.Lookup(loc, sub)
	b.log.Error("conflicting origins",
		slog.String("loc", loc.String()),
		slog.String("sub", sub.String()),
		slog.String("kept", old.Node.String()),
		slog.String("dropped", origin.Node.String()),
	)
	b.rep.Report(diag.RWD110OriginConflict,
		fmt.Sprintf("conflicting origins at %s %s: kept %s, dropped %s", loc, sub, old.Node, origin.Node),
		b.body.LocationSpan(loc))
}

// ignorable instructions carry no expression semantics of their own and
// never consume a matched location.
func (b *builder) ignorable(loc irl.Location) bool {
	st, _ := b.body.StmtAt(loc)
	if st == nil {
		return false
	}

	switch st.Kind.(type) {
	case *irl.StmtFakeRead, *irl.StmtStorageLive, *irl.StmtStorageDead, *irl.StmtNop:
		return true
	default:
		return false
	}
}

// soleAssign expects locs to be exactly one assignment statement.
func (b *builder) soleAssign(locs []irl.Location) (irl.Location, *irl.StmtAssign, bool) {
	if len(locs) != 1 {
		return irl.Location{}, nil, false
	}
	return b.lastAssign(locs)
}

// lastAssign expects the final location to be an assignment statement.
func (b *builder) lastAssign(locs []irl.Location) (irl.Location, *irl.StmtAssign, bool) {
	if len(locs) == 0 {
		return irl.Location{}, nil, false
	}

	loc := locs[len(locs)-1]
	st, _ := b.body.StmtAt(loc)
	if st == nil {
		return irl.Location{}, nil, false
	}

	assign, ok := st.Kind.(*irl.StmtAssign)
	if !ok {
		return irl.Location{}, nil, false
	}
	return loc, assign, true
}

// lastCall expects the final location to be a call terminator.
func (b *builder) lastCall(locs []irl.Location) (irl.Location, *irl.TermCall, bool) {
	if len(locs) == 0 {
		return irl.Location{}, nil, false
	}

	loc := locs[len(locs)-1]
	_, term := b.body.StmtAt(loc)
	if term == nil {
		return irl.Location{}, nil, false
	}

	call, ok := term.Kind.(*irl.TermCall)
	if !ok {
		return irl.Location{}, nil, false
	}
	return loc, call, true
}

// mismatch reports an expression whose matched instructions do not fit
// its shape. The expression gets no origins.
func (b *builder) mismatch(e *srcast.Expr, locs []irl.Location, expected string) {
	b.log.Warn("unlowering shape mismatch",
		slog.String("expected", expected),
		slog.String("kind", e.Kind.String()),
		slog.String("span", e.Span.String()),
		slog.Int("locs", len(locs)),
	)
	b.rep.Report(diag.RWD100StructuralMismatch,
		fmt.Sprintf("%s expression lowered unexpectedly: %s", e.Kind, expected),
		e.Span)
}

// auxSkipped reports matched locations the shape rules did not consume.
// Decomposing them (adjustments, overloaded operators) is not done yet.
func (b *builder) auxSkipped(e *srcast.Expr, extra []irl.Location) {
	if len(extra) == 0 {
		return
	}

	b.log.Warn("auxiliary locations left unconsumed",
		slog.String("span", e.Span.String()),
		slog.Int("count", len(extra)),
	)
	b.rep.Report(diag.RWD120AuxLocationsSkipped,
		fmt.Sprintf("%d auxiliary locations of a %s expression left without origins", len(extra), e.Kind),
		e.Span)
}

func (b *builder) visitExpr(e *srcast.Expr) {
	var locs []irl.Location
	for _, loc := range b.index.LookupExact(e.Span) {
		if !b.ignorable(loc) {
			locs = append(locs, loc)
		}
	}
	if len(locs) == 0 {
		return
	}

	// Most expressions end with an assignment storing the result into
	// an invented temporary; assignments and calls have bespoke shapes.
	switch e.Kind {
	case srcast.KindAssign:
		loc, _, ok := b.soleAssign(locs)
		if !ok {
			b.mismatch(e, locs, "exactly one store")
			return
		}

		b.record(loc, nil, e, DescWholeExpr)
		b.record(loc, annotate.Path{annotate.Dest()}, e.Dst, DescWholeExpr)
		b.record(loc, annotate.Path{annotate.AssignRvalue()}, e.Src, DescWholeExpr)

	case srcast.KindCall, srcast.KindMethodCall:
		loc, call, ok := b.lastCall(locs)
		if !ok || !call.Dest.IsVar() {
			b.mismatch(e, locs, "a final call storing into a plain local")
			return
		}

		b.record(loc, nil, e, DescStoreIntoLocal)
		b.record(loc, annotate.Path{annotate.AssignRvalue()}, e, DescWholeExpr)

		// A method call lowers its receiver as the leading argument.
		args := e.Args
		if e.Kind == srcast.KindMethodCall && e.Callee != nil {
			args = append([]*srcast.Expr{e.Callee}, args...)
		}
		n := min(len(args), len(call.Args))
		for i, arg := range args[:n] {
			b.record(loc, annotate.Path{annotate.AssignRvalue(), annotate.CallArg(i)}, arg, DescWholeExpr)
		}

		b.auxSkipped(e, locs[:len(locs)-1])

	default:
		loc, assign, ok := b.lastAssign(locs)
		if !ok || !assign.Dest.IsVar() {
			b.mismatch(e, locs, "a final store into a plain local")
			return
		}

		b.record(loc, nil, e, DescStoreIntoLocal)
		b.record(loc, annotate.Path{annotate.AssignRvalue()}, e, DescWholeExpr)

		b.auxSkipped(e, locs[:len(locs)-1])
	}
}
