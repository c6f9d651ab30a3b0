// Package span defines source spans and an ordered span index.
//
// A Span is a half-open byte range [Lo, Hi) within a named source file.
// Every IR-L instruction and every source AST node carries the span it
// was produced from; spans are the common currency between the two
// representations and the anchor for textual edits.
//
// The Index maps each distinct span to the ordered list of payload
// values inserted under it. The unlowering pass uses it to find, for a
// source expression, every IR-L location whose instruction carries
// exactly that expression's span. Ordering of payloads under one span
// follows insertion order, which for IR-L means program order.
package span
