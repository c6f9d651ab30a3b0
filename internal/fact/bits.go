package fact

import (
	"fmt"
	"strings"
)

// Perm is a bitset of operations the program performs through a pointer.
type Perm uint16

const (
	// PermRead: the pointee is read through this pointer.
	PermRead Perm = 1 << iota
	// PermWrite: the pointee is written through this pointer.
	PermWrite
	// PermUnique: no aliasing write happens while this pointer is live.
	PermUnique
	// PermOffsetAdd: pointer arithmetic with positive offsets.
	PermOffsetAdd
	// PermOffsetSub: pointer arithmetic with negative offsets.
	PermOffsetSub
	// PermFree: the allocation is released through this pointer.
	PermFree
)

// Flag is a bitset of extra markers attached to a pointer.
type Flag uint16

const (
	// FlagCell: the pointee needs interior mutability after the rewrite.
	FlagCell Flag = 1 << iota
	// FlagFixed: the pointer must keep its original type (opt-out).
	FlagFixed
)

// Contains reports whether every bit of other is set in p.
func (p Perm) Contains(other Perm) bool {
	return p&other == other
}

// Contains reports whether every bit of other is set in f.
func (f Flag) Contains(other Flag) bool {
	return f&other == other
}

var permNames = map[Perm]string{
	PermRead:      "read",
	PermWrite:     "write",
	PermUnique:    "unique",
	PermOffsetAdd: "offset-add",
	PermOffsetSub: "offset-sub",
	PermFree:      "free",
}

var flagNames = map[Flag]string{
	FlagCell:  "cell",
	FlagFixed: "fixed",
}

func (p Perm) String() string {
	return bitsString(uint16(p), func(b uint16) (string, bool) {
		v, ok := permNames[Perm(b)]
		return v, ok
	})
}

func (f Flag) String() string {
	return bitsString(uint16(f), func(b uint16) (string, bool) {
		v, ok := flagNames[Flag(b)]
		return v, ok
	})
}

func bitsString(v uint16, name func(uint16) (string, bool)) string {
	if v == 0 {
		return "∅"
	}

	var parts []string
	for b := uint16(1); b != 0; b <<= 1 {
		if v&b == 0 {
			continue
		}
		if n, ok := name(b); ok {
			parts = append(parts, n)
		} else {
			parts = append(parts, fmt.Sprintf("unknown(%#x)", b))
		}
	}
	return strings.Join(parts, "|")
}

// UnmarshalText for setting single permission bits with configs, fixtures, etc.
func (p *Perm) UnmarshalText(rawtext []byte) error {
	text := string(rawtext)
	for k, v := range permNames {
		if v == text {
			*p = k
			return nil
		}
	}

	return fmt.Errorf("unknown permission name %q", text)
}

// UnmarshalText for setting single flag bits with configs, fixtures, etc.
func (f *Flag) UnmarshalText(rawtext []byte) error {
	text := string(rawtext)
	for k, v := range flagNames {
		if v == text {
			*f = k
			return nil
		}
	}

	return fmt.Errorf("unknown flag name %q", text)
}
