package typedesc

import (
	"fmt"

	"github.com/sirkon/deraw/internal/fact"
	"github.com/sirkon/deraw/internal/irl"
)

// Ownership is the access discipline a pointer grants after rewriting.
type Ownership int

const (
	// OwnRaw keeps an immutable raw pointer (passthrough).
	OwnRaw Ownership = iota
	// OwnRawMut keeps a mutable raw pointer (passthrough).
	OwnRawMut
	// OwnImm becomes a shared reference.
	OwnImm
	// OwnMut becomes a unique reference.
	OwnMut
	// OwnCell becomes a reference to an interior-mutability cell.
	OwnCell
	// OwnRc becomes a reference-counted handle. Reserved: the resolver
	// does not produce it yet.
	OwnRc
	// OwnBox becomes an owning handle. Reserved as well.
	OwnBox
)

func (o Ownership) String() string {
	switch o {
	case OwnRaw:
		return "raw"
	case OwnRawMut:
		return "raw-mut"
	case OwnImm:
		return "imm"
	case OwnMut:
		return "mut"
	case OwnCell:
		return "cell"
	case OwnRc:
		return "rc"
	case OwnBox:
		return "box"
	default:
		return fmt.Sprintf("ownership-unknown(%d)", int(o))
	}
}

// Quantity is how many elements a pointer addresses.
type Quantity int

const (
	// QtySingle addresses exactly one element.
	QtySingle Quantity = iota
	// QtySlice addresses a run of elements with a tracked length.
	QtySlice
	// QtyOffsetPtr addresses a run of elements without a tracked
	// length; it stays offsettable after rewriting.
	QtyOffsetPtr
	// QtyArray is a fixed-length run. Resolve never produces it; it
	// exists for downstream type construction only.
	QtyArray
)

func (q Quantity) String() string {
	switch q {
	case QtySingle:
		return "single"
	case QtySlice:
		return "slice"
	case QtyOffsetPtr:
		return "offset-ptr"
	case QtyArray:
		return "array"
	default:
		return fmt.Sprintf("quantity-unknown(%d)", int(q))
	}
}

// TypeDesc describes what a pointer-typed value is or must become.
type TypeDesc struct {
	Own     Ownership
	Qty     Quantity
	Pointee irl.Type
}

// Equal compares descriptors, pointee types structurally.
func (d TypeDesc) Equal(other TypeDesc) bool {
	return d.Own == other.Own && d.Qty == other.Qty && irl.TypeEqual(d.Pointee, other.Pointee)
}

func (d TypeDesc) String() string {
	return fmt.Sprintf("{%s %s %s}", d.Own, d.Qty, irl.TypeString(d.Pointee))
}

// Resolve computes the descriptor of a pointer-typed value from its
// static type and its inferred bits. Pure and total: values that are
// not pointers at all come back as raw passthrough descriptors over
// their own type.
func Resolve(ty irl.Type, perms fact.Perm, flags fact.Flag) TypeDesc {
	pointee := irl.Pointee(ty)
	if pointee == nil {
		// Not a pointer: passthrough.
		return TypeDesc{Own: OwnRaw, Qty: QtySingle, Pointee: ty}
	}

	return TypeDesc{
		Own:     ownership(ty, perms, flags),
		Qty:     quantity(perms),
		Pointee: pointee,
	}
}

// ResolveLocal computes the descriptor of a non-pointer local viewed
// through the pointer classifying its address. The pointee is the
// local's own type; ownership comes from how the address is used.
func ResolveLocal(ty irl.Type, perms fact.Perm, flags fact.Flag) TypeDesc {
	return TypeDesc{
		Own:     ownership(ty, perms, flags),
		Qty:     quantity(perms),
		Pointee: ty,
	}
}

func ownership(ty irl.Type, perms fact.Perm, flags fact.Flag) Ownership {
	// The CELL flag dominates: interior mutability is decided upstream
	// and overrides whatever the permission bits would select.
	if flags.Contains(fact.FlagCell) {
		return OwnCell
	}
	if flags.Contains(fact.FlagFixed) {
		if raw, ok := ty.(*irl.TyRawPtr); ok && raw.Mut {
			return OwnRawMut
		}
		return OwnRaw
	}

	if perms.Contains(fact.PermUnique | fact.PermWrite) {
		return OwnMut
	}
	return OwnImm
}

func quantity(perms fact.Perm) Quantity {
	offsets := perms&(fact.PermOffsetAdd|fact.PermOffsetSub) != 0
	switch {
	case offsets && perms.Contains(fact.PermFree):
		// The pointer both moves and releases its allocation: length
		// tracking alone cannot express it.
		return QtyOffsetPtr
	case offsets:
		return QtySlice
	default:
		return QtySingle
	}
}
