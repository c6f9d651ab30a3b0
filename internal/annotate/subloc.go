package annotate

import (
	"fmt"
	"strings"
)

// SubLocKind enumerates the positional roles a sub-expression can play
// inside one instruction.
type SubLocKind int

const (
	// KindDest: the LHS of an assignment or call destination.
	KindDest SubLocKind = iota
	// KindAssignRvalue: the RHS of an assignment, or the call itself
	// in its result-producing role.
	KindAssignRvalue
	// KindCallArg: the Nth argument of a call.
	KindCallArg
	// KindRvalueOperand: the Nth operand of an rvalue.
	KindRvalueOperand
	// KindRvaluePlace: the Nth place an rvalue refers to directly.
	KindRvaluePlace
	// KindOperandPlace: the place read by an operand.
	KindOperandPlace
	// KindPlacePointer: the pointer of the Nth innermost deref within
	// a place.
	KindPlacePointer
)

// SubLoc is one step of a walk from an instruction down to an embedded
// sub-expression. Index is meaningful only for the indexed kinds.
type SubLoc struct {
	Kind  SubLocKind
	Index int
}

// Constructors for stable call sites.

func Dest() SubLoc               { return SubLoc{Kind: KindDest} }
func AssignRvalue() SubLoc       { return SubLoc{Kind: KindAssignRvalue} }
func CallArg(i int) SubLoc       { return SubLoc{Kind: KindCallArg, Index: i} }
func RvalueOperand(i int) SubLoc { return SubLoc{Kind: KindRvalueOperand, Index: i} }
func RvaluePlace(i int) SubLoc   { return SubLoc{Kind: KindRvaluePlace, Index: i} }
func OperandPlace() SubLoc       { return SubLoc{Kind: KindOperandPlace} }
func PlacePointer(i int) SubLoc  { return SubLoc{Kind: KindPlacePointer, Index: i} }

func (s SubLoc) String() string {
	switch s.Kind {
	case KindDest:
		return "Dest"
	case KindAssignRvalue:
		return "Rvalue"
	case KindCallArg:
		return fmt.Sprintf("CallArg(%d)", s.Index)
	case KindRvalueOperand:
		return fmt.Sprintf("RvalueOperand(%d)", s.Index)
	case KindRvaluePlace:
		return fmt.Sprintf("RvaluePlace(%d)", s.Index)
	case KindOperandPlace:
		return "OperandPlace"
	case KindPlacePointer:
		return fmt.Sprintf("PlacePointer(%d)", s.Index)
	default:
		return fmt.Sprintf("subloc-unknown(%d)", int(s.Kind))
	}
}

// Path is an ordered walk from an instruction to a sub-expression. The
// empty path addresses the whole instruction.
type Path []SubLoc

// Clone detaches the path from the shared stack it was built on.
func (p Path) Clone() Path {
	if len(p) == 0 {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Key encodes the path into a comparable string usable as a map key.
func (p Path) Key() string {
	var sb strings.Builder
	for _, s := range p {
		fmt.Fprintf(&sb, "%d.%d;", int(s.Kind), s.Index)
	}
	return sb.String()
}

// HasPrefix reports whether prefix addresses the path itself or one of
// its enclosing positions.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i, s := range prefix {
		if p[i] != s {
			return false
		}
	}
	return true
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
