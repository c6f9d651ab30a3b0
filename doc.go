// Package deraw rewrites raw pointer usage into safe borrows.
//
// The input is a set of functions lowered into a small intermediate
// representation, a pointer permission table produced by a prior
// analysis, and the original source text. For every pointer the table
// classifies, the session decides the safe replacement shape (a shared
// or unique reference, a slice, an interior-mutability cell, or keeping
// the pointer raw) and produces the edited source text together with
// the rewritten type annotations of the affected locals.
//
// The work happens in three stages:
//
//  1. Annotation walks the IR and attaches abstract rewrite operations
//     to precise instruction sub-locations: offset calls become slice
//     indexing, redundant as_ptr accessors are removed, mutability is
//     narrowed where the permissions demand it.
//  2. Unlowering reconstructs which source expression each instruction
//     was lowered from, by exact span matching and shape
//     classification.
//  3. Lifting joins the two, folds operation lists into precedence-
//     aware rewrite trees anchored at source spans, and the applier
//     splices their renderings into the files in one pass.
//
// Failures are split by severity. Constructs the pipeline cannot place
// or express are reported and their rewrites dropped, leaving the rest
// of the output intact. Instruction kinds the pipeline does not cover
// at all abort the session with a detailed error carrying the source
// span under work at the moment of failure.
package deraw
