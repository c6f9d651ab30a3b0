package span

import (
	"github.com/sirkon/rbtree"
)

// indexEntry keeps every payload inserted under one exact span. Payloads
// stay in insertion order.
type indexEntry[T any] struct {
	span  Span
	items []T
}

// Cmp defines a total order over entries: by file name, then by Lo, then
// by Hi. It returns 0 only for entries with byte-identical spans, so the
// RB-tree keeps one node per distinct span.
func (e *indexEntry[T]) Cmp(other *indexEntry[T]) int {
	switch {
	case e.span.File < other.span.File:
		return -1
	case e.span.File > other.span.File:
		return 1
	}
	switch {
	case e.span.Lo < other.span.Lo:
		return -1
	case e.span.Lo > other.span.Lo:
		return 1
	}
	switch {
	case e.span.Hi < other.span.Hi:
		return -1
	case e.span.Hi > other.span.Hi:
		return 1
	}
	return 0
}

// Index is a sorted map from spans to ordered lists of payloads.
type Index[T any] struct {
	tree *rbtree.Tree[*indexEntry[T]]
	size int
}

// NewIndex is the [Index] constructor.
func NewIndex[T any]() *Index[T] {
	return &Index[T]{tree: rbtree.New[*indexEntry[T]]()}
}

// Insert records item under sp. Zero spans are not indexed: instructions
// without a source location can never be matched to an expression.
func (x *Index[T]) Insert(sp Span, item T) {
	if sp.IsZero() {
		return
	}

	probe := &indexEntry[T]{span: sp}
	e := x.tree.InsertReturn(probe)
	e.items = append(e.items, item)
	x.size++
}

// LookupExact returns the payloads recorded under exactly sp, in
// insertion order. The returned slice is shared and must not be mutated.
func (x *Index[T]) LookupExact(sp Span) []T {
	probe := &indexEntry[T]{span: sp}
	e := x.tree.Search(probe)
	if e == nil {
		return nil
	}
	return e.items
}

// Size is the total number of payload insertions.
func (x *Index[T]) Size() int {
	return x.size
}
