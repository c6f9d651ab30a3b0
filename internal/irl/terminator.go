package irl

import (
	"github.com/sirkon/deraw/internal/span"
)

// Terminator is the single control-transfer instruction closing a block.
type Terminator struct {
	Kind TerminatorKind
	Span span.Span
}

// TermGoto jumps unconditionally to another block.
type TermGoto struct {
	Target int
}

// TermSwitchInt branches on an integer operand.
type TermSwitchInt struct {
	Op      Operand
	Targets []int
}

// TermReturn leaves the function.
type TermReturn struct{}

// TermUnreachable marks dead control flow.
type TermUnreachable struct{}

// TermDrop releases a place and continues.
type TermDrop struct {
	Place  Place
	Target int
}

// TermCall invokes Func with Args, stores the result into Dest, then
// continues at Target.
type TermCall struct {
	Func   Operand
	Args   []Operand
	Dest   Place
	Target int
}

// TermInlineAsm embeds assembly. Unsupported by the rewrite pipeline.
type TermInlineAsm struct {
	Text string
}

func (*TermGoto) isTerminatorKind()        {}
func (*TermSwitchInt) isTerminatorKind()   {}
func (*TermReturn) isTerminatorKind()      {}
func (*TermUnreachable) isTerminatorKind() {}
func (*TermDrop) isTerminatorKind()        {}
func (*TermCall) isTerminatorKind()        {}
func (*TermInlineAsm) isTerminatorKind()   {}
