package srcast

import (
	"fmt"

	"github.com/sirkon/deraw/internal/span"
)

// NodeID is the stable identifier the front end assigns to every node.
type NodeID int

func (id NodeID) String() string {
	return fmt.Sprintf("node(%d)", int(id))
}

// ExprKind is the closed set of expression shapes the unlowering pass
// distinguishes. Shapes it has no special handling for are KindOther.
type ExprKind int

const (
	// KindOther covers every expression without bespoke handling:
	// binary operations, literals, variable references and so on.
	KindOther ExprKind = iota
	// KindAssign: `lhs = rhs`.
	KindAssign
	// KindCall: `f(args...)`.
	KindCall
	// KindMethodCall: `recv.m(args...)`.
	KindMethodCall
	// KindAddrOf: `&raw const e` / `&raw mut e`.
	KindAddrOf
	// KindDeref: `*e`.
	KindDeref
	// KindIndex: `arr[idx]`.
	KindIndex
)

func (k ExprKind) String() string {
	switch k {
	case KindOther:
		return "other"
	case KindAssign:
		return "assign"
	case KindCall:
		return "call"
	case KindMethodCall:
		return "method-call"
	case KindAddrOf:
		return "addr-of"
	case KindDeref:
		return "deref"
	case KindIndex:
		return "index"
	default:
		return fmt.Sprintf("kind-unknown(%d)", int(k))
	}
}

// Expr is one source expression node.
//
// The field set is a union over the kinds: Dst/Src for assignments,
// Callee/Args for calls (Callee is the receiver for method calls),
// X/Y for unary and indexing forms. Text holds the raw source fragment
// for leaves.
type Expr struct {
	ID   NodeID
	Kind ExprKind
	Span span.Span

	Dst, Src *Expr
	Callee   *Expr
	Args     []*Expr
	X, Y     *Expr
	Text     string
}

// Children returns the node's direct subexpressions in source order.
func (e *Expr) Children() []*Expr {
	var out []*Expr
	push := func(c *Expr) {
		if c != nil {
			out = append(out, c)
		}
	}
	push(e.Dst)
	push(e.Src)
	push(e.Callee)
	for _, a := range e.Args {
		push(a)
	}
	push(e.X)
	push(e.Y)
	return out
}

// Walk visits e and its subtree in preorder. Returning false from f
// prunes the node's subtree.
func Walk(e *Expr, f func(*Expr) bool) {
	if e == nil {
		return
	}
	if !f(e) {
		return
	}
	for _, c := range e.Children() {
		Walk(c, f)
	}
}

// Tree is a rooted expression tree with identifier and parent lookups.
type Tree struct {
	Root    *Expr
	byID    map[NodeID]*Expr
	parents map[NodeID]*Expr
}

// NewTree indexes the subtree under root.
func NewTree(root *Expr) *Tree {
	t := &Tree{
		Root:    root,
		byID:    make(map[NodeID]*Expr),
		parents: make(map[NodeID]*Expr),
	}

	Walk(root, func(e *Expr) bool {
		if old, ok := t.byID[e.ID]; ok && old != e {
			panic(fmt.Sprintf("srcast: duplicate node id %s", e.ID))
		}
		t.byID[e.ID] = e
		for _, c := range e.Children() {
			t.parents[c.ID] = e
		}
		return true
	})

	return t
}

// Node resolves an identifier to its node, or nil.
func (t *Tree) Node(id NodeID) *Expr {
	return t.byID[id]
}

// Parent returns the parent of the identified node, or nil for the
// root. Reserved for upstream consumers.
func (t *Tree) Parent(id NodeID) *Expr {
	return t.parents[id]
}
