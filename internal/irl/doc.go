// Package irl defines the mid-level intermediate representation the
// rewrite pipeline operates on.
//
// IR-L is produced by the front end (out of scope here) by lowering the
// source AST: a function body becomes an ordered list of basic blocks,
// each holding simple statements and exactly one terminator. Every
// statement and terminator carries the source span it was lowered from;
// every local carries a static type, optionally labeled with the
// PointerID the inference engine classified it under.
//
// The entities in this package form a closed vocabulary: statement,
// terminator, rvalue, operand and projection kinds are tagged variants
// with marker methods, and consumers are expected to switch over them
// exhaustively. Kinds the pipeline cannot handle yet must fail fast
// rather than be silently skipped, so coverage gaps show up in tests.
//
// The package also hosts the known-callee registry: classification of
// call targets into pointer-offset calls, pointer-materialization
// accessors and ordinary functions, with a YAML-configurable table of
// registered names.
package irl
