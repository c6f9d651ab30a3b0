// Package rewrite turns annotated IR operations into source text edits
// and applies them.
//
// The central type is the rewrite tree, [Node]: a small expression and
// type algebra whose leaves either stand for the original source text
// ([Identity]) or for a subexpression of it ([Sub]). Trees are built by
// [Lift], which joins the annotator's per-location operations with the
// unlowering map, and consumed by [Apply], which renders every tree
// over the original text of its span and splices the results into the
// files in one pass.
//
// Rendering is precedence-aware: a child is parenthesized exactly when
// its operator binds weaker than the position requires. Leaves are
// atomic and never parenthesized.
package rewrite
