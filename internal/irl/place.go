package irl

import (
	"fmt"
	"strings"
)

// Local is the index of a function-local slot, parameter slots included.
type Local int

func (l Local) String() string {
	return fmt.Sprintf("_%d", int(l))
}

// ProjDeref dereferences the pointer produced so far.
type ProjDeref struct{}

// ProjField selects the Index-th field of the value produced so far.
type ProjField struct {
	Index int
}

func (*ProjDeref) isProjection() {}
func (*ProjField) isProjection() {}

// Place is a memory location: a local plus a projection chain applied
// to it, outermost projection last.
//
//	_1        -> Local: 1
//	*_1       -> Local: 1, Proj: [ProjDeref]
//	(*_1).2   -> Local: 1, Proj: [ProjDeref, ProjField{2}]
type Place struct {
	Local Local
	Proj  []Projection
}

// PlaceOf is a shorthand for a bare local place.
func PlaceOf(l Local) Place {
	return Place{Local: l}
}

// IsVar reports whether the place is a bare local with no projections.
func (p Place) IsVar() bool {
	return len(p.Proj) == 0
}

// IsIndirect reports whether evaluating the place goes through at least
// one dereference.
func (p Place) IsIndirect() bool {
	for _, pr := range p.Proj {
		if _, ok := pr.(*ProjDeref); ok {
			return true
		}
	}
	return false
}

func (p Place) String() string {
	var sb strings.Builder
	sb.WriteString(p.Local.String())
	for _, pr := range p.Proj {
		switch v := pr.(type) {
		case *ProjDeref:
			s := sb.String()
			sb.Reset()
			fmt.Fprintf(&sb, "(*%s)", s)
		case *ProjField:
			fmt.Fprintf(&sb, ".%d", v.Index)
		}
	}
	return sb.String()
}
