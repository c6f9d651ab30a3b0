package rewrite

// Node is a rewrite tree: either a replacement expression or a
// replacement type built over pieces of the original source.
//
// The set of implementations is closed, new ones require printer
// support in this package.
type Node interface {
	isNode()
}
