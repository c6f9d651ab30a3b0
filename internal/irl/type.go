package irl

import (
	"fmt"
	"strings"

	"github.com/sirkon/deraw/internal/fact"
)

// TyNamed is a plain named type: a primitive or a user-defined name.
//
//	i32, u8, libc::c_char, MyStruct
type TyNamed struct {
	Name string
}

// TyRawPtr is a raw pointer type.
//
//	*const T, *mut T
type TyRawPtr struct {
	Mut  bool
	Elem Type
}

// TyRef is a reference type.
//
//	&T, &mut T
type TyRef struct {
	Mut  bool
	Elem Type
}

// TySlice is an unsized slice type.
//
//	[T]
type TySlice struct {
	Elem Type
}

// TyFnDef is the zero-sized type of a known function item. Ref names the
// function; the callee registry classifies calls by it.
type TyFnDef struct {
	Ref PackagedFunc
}

func (*TyNamed) isType()  {}
func (*TyRawPtr) isType() {}
func (*TyRef) isType()    {}
func (*TySlice) isType()  {}
func (*TyFnDef) isType()  {}

// IsAnyPtr reports whether t is a raw pointer or a reference.
func IsAnyPtr(t Type) bool {
	switch t.(type) {
	case *TyRawPtr, *TyRef:
		return true
	default:
		return false
	}
}

// Pointee returns the element type of a pointer-like type, or nil.
func Pointee(t Type) Type {
	switch v := t.(type) {
	case *TyRawPtr:
		return v.Elem
	case *TyRef:
		return v.Elem
	default:
		return nil
	}
}

// TypeEqual is structural equality over type trees. Needed to detect
// no-op casts: two descriptors over the same pointee must compare equal.
func TypeEqual(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}

	switch av := a.(type) {
	case *TyNamed:
		bv, ok := b.(*TyNamed)
		return ok && av.Name == bv.Name
	case *TyRawPtr:
		bv, ok := b.(*TyRawPtr)
		return ok && av.Mut == bv.Mut && TypeEqual(av.Elem, bv.Elem)
	case *TyRef:
		bv, ok := b.(*TyRef)
		return ok && av.Mut == bv.Mut && TypeEqual(av.Elem, bv.Elem)
	case *TySlice:
		bv, ok := b.(*TySlice)
		return ok && TypeEqual(av.Elem, bv.Elem)
	case *TyFnDef:
		bv, ok := b.(*TyFnDef)
		return ok && av.Ref == bv.Ref
	default:
		panic(fmt.Sprintf("irl: unknown type variant %T", a))
	}
}

// TypeString renders a type back to source syntax.
func TypeString(t Type) string {
	var sb strings.Builder
	writeType(&sb, t)
	return sb.String()
}

func writeType(sb *strings.Builder, t Type) {
	switch v := t.(type) {
	case *TyNamed:
		sb.WriteString(v.Name)
	case *TyRawPtr:
		if v.Mut {
			sb.WriteString("*mut ")
		} else {
			sb.WriteString("*const ")
		}
		writeType(sb, v.Elem)
	case *TyRef:
		if v.Mut {
			sb.WriteString("&mut ")
		} else {
			sb.WriteString("&")
		}
		writeType(sb, v.Elem)
	case *TySlice:
		sb.WriteString("[")
		writeType(sb, v.Elem)
		sb.WriteString("]")
	case *TyFnDef:
		fmt.Fprintf(sb, "fn %s", v.Ref)
	default:
		panic(fmt.Sprintf("irl: unknown type variant %T", t))
	}
}

// LTy is a labeled type: the static type of a value together with the
// PointerID the inference engine classified its outermost pointer under.
// Values that are not pointers, or that the engine never saw, carry the
// none label.
type LTy struct {
	Ty    Type
	Label fact.PointerID
}
