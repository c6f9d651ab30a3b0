package rewrite

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirkon/deraw/internal/span"
)

// Edit replaces the text of one span with the rendering of one tree.
type Edit struct {
	Span span.Span
	Rw   Node
}

// Apply splices edits into files and returns the rewritten contents.
// Files without edits pass through byte-identical. Edits within a file
// are applied in one linear pass over sorted start offsets; overlapping
// spans mean the producer broke its contract and abort.
func Apply(files map[string]string, edits []Edit) map[string]string {
	perFile := make(map[string][]Edit)
	for _, e := range edits {
		if e.Span.IsZero() {
			panic(fmt.Sprintf("rewrite: edit %s over a zero span", Print(e.Rw)))
		}
		perFile[e.Span.File] = append(perFile[e.Span.File], e)
	}

	out := make(map[string]string, len(files))
	for name, src := range files {
		out[name] = applyFile(name, src, perFile[name])
	}

	return out
}

func applyFile(name, src string, edits []Edit) string {
	if len(edits) == 0 {
		return src
	}

	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].Span.Lo < edits[j].Span.Lo
	})

	var sb strings.Builder
	pos := 0
	for _, e := range edits {
		if e.Span.Lo < pos {
			panic(fmt.Sprintf("rewrite: overlapping edits in %s at offset %d", name, e.Span.Lo))
		}
		if e.Span.Hi > len(src) {
			panic(fmt.Sprintf("rewrite: edit %s out of bounds of %s", e.Span, name))
		}

		sb.WriteString(src[pos:e.Span.Lo])
		sb.WriteString(Render(e.Rw, leavesOver(src, e.Span)))
		pos = e.Span.Hi
	}
	sb.WriteString(src[pos:])

	return sb.String()
}

// leavesOver binds the leaf texts of one edit: Identity is the edit
// span's own text, Sub is the text of the leaf's recorded span.
func leavesOver(src string, edit span.Span) leafSource {
	return func(n Node) string {
		switch v := n.(type) {
		case *Identity:
			return src[edit.Lo:edit.Hi]
		case *Sub:
			if v.Span.IsZero() || v.Span.Hi > len(src) {
				panic(fmt.Sprintf("rewrite: subexpression $%d has no usable span", v.Index))
			}
			return src[v.Span.Lo:v.Span.Hi]
		default:
			panic(fmt.Sprintf("rewrite: %T is not a leaf", n))
		}
	}
}
