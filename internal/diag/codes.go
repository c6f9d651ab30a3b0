package diag

import "fmt"

// Code represents a deraw diagnostic code (RWD-series).
type Code int

const (
	codeInvalid Code = iota

	RWD000UnsupportedCast
	RWD010CastPointeeMismatch
	RWD100StructuralMismatch
	RWD110OriginConflict
	RWD120AuxLocationsSkipped
	RWD150UnsupportedLift
	RWD160MissingOrigin
)

// String returns the canonical code and short name of the diagnostic.
// Example: "RWD000: UnsupportedCast"
func (c Code) String() string {
	switch c {
	case RWD000UnsupportedCast:
		return "RWD000: UnsupportedCast"
	case RWD010CastPointeeMismatch:
		return "RWD010: CastPointeeMismatch"
	case RWD100StructuralMismatch:
		return "RWD100: StructuralMismatch"
	case RWD110OriginConflict:
		return "RWD110: OriginConflict"
	case RWD120AuxLocationsSkipped:
		return "RWD120: AuxLocationsSkipped"
	case RWD150UnsupportedLift:
		return "RWD150: UnsupportedLift"
	case RWD160MissingOrigin:
		return "RWD160: MissingOrigin"
	default:
		return fmt.Sprintf("code-unknown(%d)", int(c))
	}
}

// Description returns the human-readable explanation of the code.
func (c Code) Description() string {
	switch c {
	case RWD000UnsupportedCast:
		return "No known narrowing expresses this descriptor change; the rewrite is dropped."
	case RWD010CastPointeeMismatch:
		return "Cast endpoints disagree on the pointee type."
	case RWD100StructuralMismatch:
		return "The expression's IR-L instructions do not match its syntactic shape; it contributes no origins."
	case RWD110OriginConflict:
		return "A (location, sub-location) key already holds a different origin; the first writer wins."
	case RWD120AuxLocationsSkipped:
		return "Auxiliary instruction locations were not decomposed further."
	case RWD150UnsupportedLift:
		return "No rewrite-tree form exists for this operation yet; the rewrite is dropped."
	case RWD160MissingOrigin:
		return "No source origin is known for the operation's sub-location; the rewrite is dropped."
	default:
		return fmt.Sprintf("unknown code (%d)", int(c))
	}
}
