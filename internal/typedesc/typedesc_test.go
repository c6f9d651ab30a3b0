package typedesc

import (
	"testing"

	"github.com/sirkon/deepequal"

	"github.com/sirkon/deraw/internal/fact"
	"github.com/sirkon/deraw/internal/irl"
)

func ptrTo(mut bool, name string) irl.Type {
	return &irl.TyRawPtr{Mut: mut, Elem: &irl.TyNamed{Name: name}}
}

func TestResolve(t *testing.T) {
	type test struct {
		name  string
		ty    irl.Type
		perms fact.Perm
		flags fact.Flag
		want  TypeDesc
	}

	tests := []test{
		{
			name:  "read-only pointer to one element",
			ty:    ptrTo(false, "i32"),
			perms: fact.PermRead,
			want:  TypeDesc{Own: OwnImm, Qty: QtySingle, Pointee: &irl.TyNamed{Name: "i32"}},
		},
		{
			name:  "unique writable pointer",
			ty:    ptrTo(true, "i32"),
			perms: fact.PermRead | fact.PermWrite | fact.PermUnique,
			want:  TypeDesc{Own: OwnMut, Qty: QtySingle, Pointee: &irl.TyNamed{Name: "i32"}},
		},
		{
			name:  "shared writable pointer stays imm unless unique",
			ty:    ptrTo(true, "i32"),
			perms: fact.PermRead | fact.PermWrite,
			want:  TypeDesc{Own: OwnImm, Qty: QtySingle, Pointee: &irl.TyNamed{Name: "i32"}},
		},
		{
			name:  "cell flag dominates permissions",
			ty:    ptrTo(true, "i32"),
			perms: fact.PermRead | fact.PermWrite | fact.PermUnique,
			flags: fact.FlagCell,
			want:  TypeDesc{Own: OwnCell, Qty: QtySingle, Pointee: &irl.TyNamed{Name: "i32"}},
		},
		{
			name:  "offset arithmetic widens to slice",
			ty:    ptrTo(false, "u8"),
			perms: fact.PermRead | fact.PermOffsetAdd,
			want:  TypeDesc{Own: OwnImm, Qty: QtySlice, Pointee: &irl.TyNamed{Name: "u8"}},
		},
		{
			name:  "offset plus free keeps an offsettable pointer",
			ty:    ptrTo(true, "u8"),
			perms: fact.PermRead | fact.PermWrite | fact.PermUnique | fact.PermOffsetAdd | fact.PermFree,
			want:  TypeDesc{Own: OwnMut, Qty: QtyOffsetPtr, Pointee: &irl.TyNamed{Name: "u8"}},
		},
		{
			name:  "fixed flag keeps the raw type",
			ty:    ptrTo(true, "u8"),
			perms: fact.PermRead | fact.PermWrite | fact.PermUnique,
			flags: fact.FlagFixed,
			want:  TypeDesc{Own: OwnRawMut, Qty: QtySingle, Pointee: &irl.TyNamed{Name: "u8"}},
		},
		{
			name: "non-pointer passthrough",
			ty:   &irl.TyNamed{Name: "i32"},
			want: TypeDesc{Own: OwnRaw, Qty: QtySingle, Pointee: &irl.TyNamed{Name: "i32"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.ty, tt.perms, tt.flags)
			if !got.Equal(tt.want) {
				deepequal.SideBySide(t, "descriptor", tt.want, got)
				t.Fail()
			}
		})
	}
}

func TestResolveLocal(t *testing.T) {
	// A plain i32 local whose address is classified as a cell pointer.
	got := ResolveLocal(&irl.TyNamed{Name: "i32"}, fact.PermRead|fact.PermWrite, fact.FlagCell)
	want := TypeDesc{Own: OwnCell, Qty: QtySingle, Pointee: &irl.TyNamed{Name: "i32"}}
	if !got.Equal(want) {
		deepequal.SideBySide(t, "descriptor", want, got)
		t.Fail()
	}
}

func TestDescriptorEquality(t *testing.T) {
	a := Resolve(ptrTo(false, "i32"), fact.PermRead, 0)
	b := Resolve(ptrTo(true, "i32"), fact.PermRead, 0)

	// Same pointee, same bits-derived shape: descriptor equality must
	// hold regardless of the original raw mutability, which only the
	// ownership computation consumes.
	if !a.Equal(b) {
		t.Fatalf("descriptors must match: %s vs %s", a, b)
	}

	c := Resolve(ptrTo(false, "u8"), fact.PermRead, 0)
	if a.Equal(c) {
		t.Fatal("different pointees must not compare equal")
	}
}
