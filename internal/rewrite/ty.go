package rewrite

import (
	"fmt"
	"io"

	"github.com/sirkon/deraw/internal/fact"
	"github.com/sirkon/deraw/internal/irl"
	"github.com/sirkon/deraw/internal/typedesc"
)

// LocalTypeRewrite is the new type annotation of one local.
type LocalTypeRewrite struct {
	Local irl.Local
	Name  string
	Old   string
	New   Node
}

// GenTypeRewrites computes replacement type annotations for the
// annotated pointer locals of body: raw pointers becoming references,
// slices or cells per their resolved descriptors. Locals whose
// ownership stays raw keep their annotation. The returned edits cover
// the locals with a recorded annotation span; the rewrites list covers
// all of them, temporaries included, in local order.
func GenTypeRewrites(facts *fact.Table, body *irl.Body) ([]LocalTypeRewrite, []Edit) {
	var (
		rws   []LocalTypeRewrite
		edits []Edit
	)

	for i, lty := range body.LocalTys {
		if lty.Label.IsNone() || !irl.IsAnyPtr(lty.Ty) {
			continue
		}

		desc := typedesc.Resolve(lty.Ty, facts.Perms(lty.Label), facts.Flags(lty.Label))
		rw, changed := typeTree(desc)
		if !changed {
			continue
		}

		local := irl.Local(i)
		var name string
		if int(local) < len(body.LocalNames) {
			name = body.LocalNames[local]
		}
		rws = append(rws, LocalTypeRewrite{
			Local: local,
			Name:  name,
			Old:   irl.TypeString(lty.Ty),
			New:   rw,
		})

		if int(local) < len(body.LocalDeclSpans) {
			if sp := body.LocalDeclSpans[local]; !sp.IsZero() {
				edits = append(edits, Edit{Span: sp, Rw: rw})
			}
		}
	}

	return rws, edits
}

// typeTree builds the replacement type of one resolved descriptor.
// Raw ownership keeps the original annotation.
func typeTree(desc typedesc.TypeDesc) (Node, bool) {
	switch desc.Own {
	case typedesc.OwnRaw, typedesc.OwnRawMut:
		return nil, false
	}
	if desc.Qty == typedesc.QtyOffsetPtr {
		// Pointers that are both offset and freed have no safe
		// replacement shape.
		return nil, false
	}

	var inner Node = &PrintTy{Text: irl.TypeString(desc.Pointee)}

	if desc.Own == typedesc.OwnCell {
		inner = &TyCtor{Name: "Cell", Args: []Node{inner}}
	}

	if desc.Qty == typedesc.QtySlice {
		inner = &TySlice{Inner: inner}
	}

	return &TyRef{
		Inner: inner,
		Mut:   desc.Own == typedesc.OwnMut,
	}, true
}

// DumpLocalTypes prints the rewritten annotations, one local per line.
func DumpLocalTypes(w io.Writer, body *irl.Body, rws []LocalTypeRewrite) {
	fmt.Fprintf(w, "local types for %s:\n", body.Name)
	for _, rw := range rws {
		name := rw.Name
		if name == "" {
			name = rw.Local.String()
		}
		fmt.Fprintf(w, "  %s: %s -> %s\n", name, rw.Old, Print(rw.New))
	}
}
