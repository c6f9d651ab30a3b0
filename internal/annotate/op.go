package annotate

import "fmt"

// OpKind enumerates the abstract rewrite operations.
type OpKind int

const (
	opInvalid OpKind = iota

	// OpOffsetSlice replaces `ptr.offset(i)` with slice indexing of the
	// form `&ptr[i..]`.
	OpOffsetSlice
	// OpSliceFirst replaces `slice` with `&slice[0]`.
	OpSliceFirst
	// OpMutToImm replaces `ptr` with `&*ptr`, narrowing `&mut T` to `&T`.
	OpMutToImm
	// OpRemoveAsPtr removes a redundant as_ptr/as_mut_ptr accessor call.
	OpRemoveAsPtr
	// OpRawToRef replaces a raw address-of with a plain reference.
	OpRawToRef
	// OpCellNew wraps an initializer: `let x = y` → `let x = Cell::new(y)`.
	OpCellNew
	// OpCellGet replaces `*y` with a cell read where `y` is a pointer.
	OpCellGet
	// OpCellSet replaces `*y = x` with a cell write where `y` is a pointer.
	OpCellSet
)

func (k OpKind) String() string {
	switch k {
	case OpOffsetSlice:
		return "OffsetSlice"
	case OpSliceFirst:
		return "SliceFirst"
	case OpMutToImm:
		return "MutToImm"
	case OpRemoveAsPtr:
		return "RemoveAsPtr"
	case OpRawToRef:
		return "RawToRef"
	case OpCellNew:
		return "CellNew"
	case OpCellGet:
		return "CellGet"
	case OpCellSet:
		return "CellSet"
	default:
		return fmt.Sprintf("op-unknown(%d)", int(k))
	}
}

// RewriteOp is one abstract rewrite operation attributed to a precise
// sub-location of its instruction. Mut is meaningful for the kinds that
// carry mutability (OffsetSlice, SliceFirst, RawToRef).
type RewriteOp struct {
	Kind OpKind
	Mut  bool
	Sub  Path
}

func (op RewriteOp) String() string {
	if op.Mut {
		return fmt.Sprintf("%s{mut} @ %s", op.Kind, op.Sub)
	}
	return fmt.Sprintf("%s @ %s", op.Kind, op.Sub)
}
