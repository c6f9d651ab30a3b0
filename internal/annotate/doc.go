// Package annotate walks IR-L and decides, instruction by instruction,
// which abstract rewrite operations the source must receive.
//
// The output is a map from instruction locations to ordered lists of
// operations, each tagged with the sub-location path of the exact
// operand, rvalue or place it applies to. Operations stay abstract:
// "turn this offset call into slice indexing", "narrow this unique
// reference to a shared one". Turning them into concrete source text
// is the lifting stage's job.
//
// The pass is best-effort at the data level and strict at the coverage
// level: descriptor changes it cannot express become diagnostics and the
// affected rewrite is dropped, while instruction kinds it does not
// handle at all abort the session through an unsupported-construct
// panic, so coverage gaps surface in tests instead of producing wrong
// output.
package annotate
