package rewrite

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/sirkon/deraw/internal/annotate"
	"github.com/sirkon/deraw/internal/diag"
	"github.com/sirkon/deraw/internal/irl"
	"github.com/sirkon/deraw/internal/span"
	"github.com/sirkon/deraw/internal/srcast"
	"github.com/sirkon/deraw/internal/unlower"
)

// lifter carries the state of one lifting pass over one body's
// operations.
type lifter struct {
	origins *unlower.OriginMap
	tree    *srcast.Tree

	rep *diag.PhaseReporter
	log *slog.Logger
}

// Lift joins per-location rewrite operations with the unlowering map
// and folds them into source edits. Operations whose sub-location
// cannot be traced back to a source expression are dropped with a
// report; so are operations the tree alphabet cannot express yet.
func Lift(
	ops map[irl.Location][]annotate.RewriteOp,
	origins *unlower.OriginMap,
	tree *srcast.Tree,
	rep *diag.Reporter,
	log *slog.Logger,
) []Edit {
	l := &lifter{
		origins: origins,
		tree:    tree,
		rep:     rep.Phase(diag.PhaseLift),
		log:     log,
	}

	locs := make([]irl.Location, 0, len(ops))
	for loc := range ops {
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(i, j int) bool { return locs[i].Less(locs[j]) })

	var edits []Edit
	for _, loc := range locs {
		edits = append(edits, l.liftLocation(loc, ops[loc])...)
	}

	return edits
}

// anchor resolves an operation's sub-location to its source origin,
// falling back to shorter prefixes of the path: the annotator addresses
// positions finer than the unlowering pass records.
func (l *lifter) anchor(loc irl.Location, sub annotate.Path) (unlower.MirOrigin, bool) {
	for n := len(sub); n >= 0; n-- {
		if origin, ok := l.origins.Lookup(loc, sub[:n]); ok {
			return origin, ok
		}
	}
	return unlower.MirOrigin{}, false
}

func (l *lifter) liftLocation(loc irl.Location, ops []annotate.RewriteOp) []Edit {
	// Operations anchored to the same span fold into one tree, in
	// emission order.
	type accum struct {
		origin unlower.MirOrigin
		rw     Node
	}
	var groups []*accum

	for _, op := range ops {
		origin, ok := l.anchor(loc, op.Sub)
		if !ok {
			l.rep.Report(diag.RWD160MissingOrigin,
				fmt.Sprintf("no source origin for %s at %s, %s dropped", op.Sub, loc, op.Kind),
				span.Span{})
			continue
		}

		var group *accum
		for _, g := range groups {
			if g.origin.Span == origin.Span {
				group = g
				break
			}
		}
		if group == nil {
			group = &accum{origin: origin, rw: &Identity{}}
			groups = append(groups, group)
		}

		rw, ok := l.foldOp(group.rw, op, origin)
		if !ok {
			continue
		}
		group.rw = rw
	}

	var edits []Edit
	for _, g := range groups {
		if _, identity := g.rw.(*Identity); identity {
			continue
		}
		edits = append(edits, Edit{Span: g.origin.Span, Rw: g.rw})
	}
	return edits
}

// foldOp extends the accumulated tree with one more operation.
func (l *lifter) foldOp(prev Node, op annotate.RewriteOp, origin unlower.MirOrigin) (Node, bool) {
	switch op.Kind {
	case annotate.OpOffsetSlice:
		recv, idx, ok := l.callOperands(origin)
		if !ok {
			return nil, false
		}
		return &Ref{
			Inner: &SliceTail{
				Arr: &Sub{Index: 0, Span: recv},
				Idx: &Sub{Index: 1, Span: idx},
			},
			Mut: op.Mut,
		}, true

	case annotate.OpSliceFirst:
		return &Ref{
			Inner: &Index{Arr: prev, Idx: &LitZero{}},
			Mut:   op.Mut,
		}, true

	case annotate.OpMutToImm:
		return &Ref{Inner: &Deref{Inner: prev}}, true

	case annotate.OpRemoveAsPtr:
		recv, ok := l.receiver(origin)
		if !ok {
			return nil, false
		}
		return &Sub{Index: 0, Span: recv}, true

	case annotate.OpRawToRef:
		ex := l.tree.Node(origin.Node)
		if ex == nil || ex.Kind != srcast.KindAddrOf || ex.X == nil {
			l.mismatch(origin, "an address-of expression")
			return nil, false
		}
		return &Ref{
			Inner: &Sub{Index: 0, Span: ex.X.Span},
			Mut:   op.Mut,
		}, true

	case annotate.OpCellNew, annotate.OpCellGet, annotate.OpCellSet:
		// The tree alphabet has no call builder, so cell wrappers are
		// not expressible yet.
		l.rep.Report(diag.RWD150UnsupportedLift,
			fmt.Sprintf("%s has no tree form, rewrite dropped", op.Kind),
			origin.Span)
		return nil, false

	default:
		panic(fmt.Sprintf("rewrite: unknown operation %s", op.Kind))
	}
}

// callOperands extracts the receiver and first-argument spans of the
// call expression behind origin: `p.offset(i)` or `offset(p, i)`.
func (l *lifter) callOperands(origin unlower.MirOrigin) (recv, idx span.Span, ok bool) {
	ex := l.tree.Node(origin.Node)
	if ex == nil {
		l.mismatch(origin, "a call expression")
		return span.Span{}, span.Span{}, false
	}

	switch ex.Kind {
	case srcast.KindMethodCall:
		if ex.Callee == nil || len(ex.Args) < 1 {
			break
		}
		return ex.Callee.Span, ex.Args[0].Span, true
	case srcast.KindCall:
		if len(ex.Args) < 2 {
			break
		}
		return ex.Args[0].Span, ex.Args[1].Span, true
	}

	l.mismatch(origin, "a call with a receiver and an offset argument")
	return span.Span{}, span.Span{}, false
}

// receiver extracts the receiver span of the accessor call behind
// origin: `v.as_ptr()` or `as_ptr(v)`.
func (l *lifter) receiver(origin unlower.MirOrigin) (span.Span, bool) {
	ex := l.tree.Node(origin.Node)
	if ex == nil {
		l.mismatch(origin, "a call expression")
		return span.Span{}, false
	}

	switch ex.Kind {
	case srcast.KindMethodCall:
		if ex.Callee == nil {
			break
		}
		return ex.Callee.Span, true
	case srcast.KindCall:
		if len(ex.Args) < 1 {
			break
		}
		return ex.Args[0].Span, true
	}

	l.mismatch(origin, "a call with a receiver")
	return span.Span{}, false
}

func (l *lifter) mismatch(origin unlower.MirOrigin, expected string) {
	l.log.Warn("source shape does not fit the operation",
		slog.String("node", origin.Node.String()),
		slog.String("span", origin.Span.String()),
		slog.String("expected", expected),
	)
	l.rep.Report(diag.RWD100StructuralMismatch,
		fmt.Sprintf("expected %s at the rewrite origin", expected),
		origin.Span)
}
