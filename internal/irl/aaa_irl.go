package irl

// Type is the base interface of all static type nodes.
type Type interface {
	isType()
}

// StatementKind marks the closed set of statement variants.
type StatementKind interface {
	isStatementKind()
}

// TerminatorKind marks the closed set of terminator variants.
type TerminatorKind interface {
	isTerminatorKind()
}

// Rvalue marks the closed set of right-hand-side value variants.
type Rvalue interface {
	isRvalue()
}

// Operand marks the closed set of operand variants.
type Operand interface {
	isOperand()
}

// Projection marks the closed set of place projection variants.
type Projection interface {
	isProjection()
}
