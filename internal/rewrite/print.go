package rewrite

import (
	"fmt"
	"strings"
)

// leafSource supplies the text of Identity and Sub leaves during
// rendering. A nil source produces the placeholder form: `$e` for
// Identity and `$i` for Sub.
type leafSource func(n Node) string

// Print renders the tree in placeholder form, the original expression
// shown as `$e` and subexpressions as `$0`, `$1`, ...
func Print(n Node) string {
	var sb strings.Builder
	pretty(&sb, n, 0, nil)
	return sb.String()
}

// Render renders the tree over concrete leaf texts.
func Render(n Node, leaves leafSource) string {
	var sb strings.Builder
	pretty(&sb, n, 0, leaves)
	return sb.String()
}

// Operator precedence, higher binds tighter:
//
//	Index, SliceTail: 3
//	Ref, Deref: 2
//	CastUsize: 1
//
// A child is parenthesized iff its operator binds weaker than the
// position requires. Leaves and type builders are atomic.
func pretty(sb *strings.Builder, n Node, prec int, leaves leafSource) {
	parenthesizeIf := func(cond bool, inner func()) {
		if cond {
			sb.WriteString("(")
		}
		inner()
		if cond {
			sb.WriteString(")")
		}
	}

	switch v := n.(type) {
	case *Identity:
		if leaves == nil {
			sb.WriteString("$e")
			return
		}
		sb.WriteString(leaves(v))
	case *Sub:
		if leaves == nil {
			fmt.Fprintf(sb, "$%d", v.Index)
			return
		}
		sb.WriteString(leaves(v))
	case *Ref:
		parenthesizeIf(prec > 2, func() {
			if v.Mut {
				sb.WriteString("&mut ")
			} else {
				sb.WriteString("&")
			}
			pretty(sb, v.Inner, 2, leaves)
		})
	case *AddrOf:
		if v.Mut {
			sb.WriteString("core::ptr::addr_of_mut!")
		} else {
			sb.WriteString("core::ptr::addr_of!")
		}
		sb.WriteString("(")
		pretty(sb, v.Inner, 0, leaves)
		sb.WriteString(")")
	case *Deref:
		parenthesizeIf(prec > 2, func() {
			sb.WriteString("*")
			pretty(sb, v.Inner, 2, leaves)
		})
	case *Index:
		parenthesizeIf(prec > 3, func() {
			pretty(sb, v.Arr, 3, leaves)
			sb.WriteString("[")
			pretty(sb, v.Idx, 0, leaves)
			sb.WriteString("]")
		})
	case *SliceTail:
		parenthesizeIf(prec > 3, func() {
			pretty(sb, v.Arr, 3, leaves)
			sb.WriteString("[")
			// Rather than figure out the right precedence for `..`,
			// force parenthesization in this position.
			pretty(sb, v.Idx, 999, leaves)
			sb.WriteString(" ..]")
		})
	case *CastUsize:
		parenthesizeIf(prec > 1, func() {
			pretty(sb, v.Inner, 1, leaves)
			sb.WriteString(" as usize")
		})
	case *LitZero:
		sb.WriteString("0")
	case *PrintTy:
		sb.WriteString(v.Text)
	case *TyPtr:
		if v.Mut {
			sb.WriteString("*mut ")
		} else {
			sb.WriteString("*const ")
		}
		pretty(sb, v.Inner, 0, leaves)
	case *TyRef:
		if v.Mut {
			sb.WriteString("&mut ")
		} else {
			sb.WriteString("&")
		}
		pretty(sb, v.Inner, 0, leaves)
	case *TySlice:
		sb.WriteString("[")
		pretty(sb, v.Inner, 0, leaves)
		sb.WriteString("]")
	case *TyCtor:
		sb.WriteString(v.Name)
		sb.WriteString("<")
		for i, arg := range v.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			pretty(sb, arg, 0, leaves)
		}
		sb.WriteString(">")
	default:
		panic(fmt.Sprintf("rewrite: unknown node %T", n))
	}
}
