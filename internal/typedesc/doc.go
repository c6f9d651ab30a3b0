// Package typedesc derives type descriptors: the answer to "what is
// this pointer now, and what must it become".
//
// A descriptor combines an ownership kind (shared reference, unique
// reference, interior-mutability cell, raw passthrough), a quantity
// (one element, a slice, an offsettable pointer) and the pointee type.
// Descriptors are never stored; they are recomputed on demand from a
// value's static type and its inferred permission/flag bits, so two
// descriptors over the same pointee can always be compared to detect
// no-op casts.
package typedesc
