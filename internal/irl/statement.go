package irl

import (
	"github.com/sirkon/deraw/internal/span"
)

// Statement is one non-terminator instruction with its source span.
type Statement struct {
	Kind StatementKind
	Span span.Span
}

// StmtAssign stores the value of an rvalue into a place.
type StmtAssign struct {
	Dest Place
	Rv   Rvalue
}

// StmtStorageLive marks the start of a local's live range. Bookkeeping
// only; carries no semantic content for rewriting.
type StmtStorageLive struct {
	Local Local
}

// StmtStorageDead marks the end of a local's live range.
type StmtStorageDead struct {
	Local Local
}

// StmtFakeRead is a borrow-check artifact over a place.
type StmtFakeRead struct {
	Place Place
}

// StmtNop does nothing.
type StmtNop struct{}

// StmtSetDiscriminant writes an enum discriminant. The rewrite pipeline
// declares it unsupported: hitting one is a coverage gap, not a data
// problem.
type StmtSetDiscriminant struct {
	Dest Place
}

// StmtIntrinsicCopy is a raw memory copy intrinsic. Unsupported, same
// policy as StmtSetDiscriminant.
type StmtIntrinsicCopy struct {
	Src, Dst, Count Operand
}

func (*StmtAssign) isStatementKind()          {}
func (*StmtStorageLive) isStatementKind()     {}
func (*StmtStorageDead) isStatementKind()     {}
func (*StmtFakeRead) isStatementKind()        {}
func (*StmtNop) isStatementKind()             {}
func (*StmtSetDiscriminant) isStatementKind() {}
func (*StmtIntrinsicCopy) isStatementKind()   {}
