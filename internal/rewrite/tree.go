package rewrite

import (
	"github.com/sirkon/deraw/internal/span"
)

// Expression builders.

// Identity takes the original expression unchanged.
type Identity struct{}

// Sub extracts the subexpression at the given position. Span is the
// subexpression's location in the original source; Index only names the
// position in placeholder output.
type Sub struct {
	Index int
	Span  span.Span
}

// Ref builds `&e` or `&mut e`.
type Ref struct {
	Inner Node
	Mut   bool
}

// AddrOf builds `core::ptr::addr_of!(e)` or `core::ptr::addr_of_mut!(e)`.
type AddrOf struct {
	Inner Node
	Mut   bool
}

// Deref builds `*e`.
type Deref struct {
	Inner Node
}

// Index builds `arr[idx]`.
type Index struct {
	Arr Node
	Idx Node
}

// SliceTail builds `arr[idx ..]`.
type SliceTail struct {
	Arr Node
	Idx Node
}

// CastUsize builds `e as usize`.
type CastUsize struct {
	Inner Node
}

// LitZero is the integer literal `0`.
type LitZero struct{}

// Type builders. None of them require parenthesization.

// PrintTy emits a complete pretty-printed type, discarding the original
// annotation.
type PrintTy struct {
	Text string
}

// TyPtr builds `*const T` or `*mut T`.
type TyPtr struct {
	Inner Node
	Mut   bool
}

// TyRef builds `&T` or `&mut T`.
type TyRef struct {
	Inner Node
	Mut   bool
}

// TySlice builds `[T]`.
type TySlice struct {
	Inner Node
}

// TyCtor builds `Name<T1, T2>`.
type TyCtor struct {
	Name string
	Args []Node
}

func (*Identity) isNode()  {}
func (*Sub) isNode()       {}
func (*Ref) isNode()       {}
func (*AddrOf) isNode()    {}
func (*Deref) isNode()     {}
func (*Index) isNode()     {}
func (*SliceTail) isNode() {}
func (*CastUsize) isNode() {}
func (*LitZero) isNode()   {}
func (*PrintTy) isNode()   {}
func (*TyPtr) isNode()     {}
func (*TyRef) isNode()     {}
func (*TySlice) isNode()   {}
func (*TyCtor) isNode()    {}
