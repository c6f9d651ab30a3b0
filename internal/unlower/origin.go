package unlower

import (
	"fmt"
	"io"

	"github.com/sirkon/deraw/internal/annotate"
	"github.com/sirkon/deraw/internal/irl"
	"github.com/sirkon/deraw/internal/span"
	"github.com/sirkon/deraw/internal/srcast"
)

// OriginDesc tells what role an instruction plays for its expression.
type OriginDesc int

const (
	// DescWholeExpr: the instruction (or sub-location) represents the
	// expression itself.
	DescWholeExpr OriginDesc = iota
	// DescStoreIntoLocal: the instruction stores the expression's
	// result into an invented local.
	DescStoreIntoLocal
)

func (d OriginDesc) String() string {
	switch d {
	case DescWholeExpr:
		return "expr"
	case DescStoreIntoLocal:
		return "store-into-local"
	default:
		return fmt.Sprintf("desc-unknown(%d)", int(d))
	}
}

// MirOrigin is the source expression a (sub)location was lowered from.
type MirOrigin struct {
	Node srcast.NodeID
	Span span.Span
	Desc OriginDesc
}

// Key addresses one (sub)location of a body. Sub is the encoded form of
// the sub-location path, see [annotate.Path.Key].
type Key struct {
	Loc irl.Location
	Sub string
}

// InsertStatus is the outcome of one origin insertion.
type InsertStatus int

const (
	// InsertOK: the key was vacant, the origin is recorded.
	InsertOK InsertStatus = iota
	// InsertDuplicate: the key already held the very same origin.
	InsertDuplicate
	// InsertConflict: the key held a different origin; the existing
	// one stays.
	InsertConflict
)

func (s InsertStatus) String() string {
	switch s {
	case InsertOK:
		return "ok"
	case InsertDuplicate:
		return "duplicate"
	case InsertConflict:
		return "conflict"
	default:
		return fmt.Sprintf("status-unknown(%d)", int(s))
	}
}

// OriginMap maps (sub)locations of one body to their source origins.
// Inserts are first-writer-wins; lookups never mutate.
type OriginMap struct {
	entries map[Key]MirOrigin

	// perLoc keeps the sub-location paths recorded for each location in
	// insertion order, for dumps and deterministic iteration.
	perLoc map[irl.Location][]annotate.Path
}

// NewOriginMap is the [OriginMap] constructor.
func NewOriginMap() *OriginMap {
	return &OriginMap{
		entries: make(map[Key]MirOrigin),
		perLoc:  make(map[irl.Location][]annotate.Path),
	}
}

// Insert records origin for (loc, sub). The first recorded origin for a
// key is final: re-inserting the same value is a no-op and a different
// value is rejected with [InsertConflict].
func (m *OriginMap) Insert(loc irl.Location, sub annotate.Path, origin MirOrigin) InsertStatus {
	key := Key{Loc: loc, Sub: sub.Key()}

	old, ok := m.entries[key]
	switch {
	case !ok:
		m.entries[key] = origin
		m.perLoc[loc] = append(m.perLoc[loc], sub.Clone())
		return InsertOK
	case old == origin:
		return InsertDuplicate
	default:
		return InsertConflict
	}
}

// Lookup resolves (loc, sub) to its origin.
func (m *OriginMap) Lookup(loc irl.Location, sub annotate.Path) (MirOrigin, bool) {
	origin, ok := m.entries[Key{Loc: loc, Sub: sub.Key()}]
	return origin, ok
}

// Len is the number of recorded (sub)locations.
func (m *OriginMap) Len() int {
	return len(m.entries)
}

// Dump prints the map in program order, one instruction per line with
// its recorded sub-locations indented below.
func (m *OriginMap) Dump(w io.Writer, body *irl.Body) {
	fmt.Fprintf(w, "unlowering for %s:\n", body.Name)
	body.EachLocation(func(loc irl.Location) {
		subs := m.perLoc[loc]
		if len(subs) == 0 {
			return
		}

		fmt.Fprintf(w, "  %s: %s\n", loc, body.LocationSpan(loc))
		for _, sub := range subs {
			origin := m.entries[Key{Loc: loc, Sub: sub.Key()}]
			fmt.Fprintf(w, "    %s: %s, %s, %s\n", sub, origin.Desc, origin.Node, origin.Span)
		}
	})
}
