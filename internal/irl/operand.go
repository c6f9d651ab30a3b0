package irl

import "fmt"

// OperandCopy reads a place, leaving it initialized.
type OperandCopy struct {
	Place Place
}

// OperandMove reads a place, invalidating it.
type OperandMove struct {
	Place Place
}

// OperandConst is a compile-time constant with its static type and its
// source text.
type OperandConst struct {
	Ty   Type
	Text string
}

func (*OperandCopy) isOperand()  {}
func (*OperandMove) isOperand()  {}
func (*OperandConst) isOperand() {}

// OperandPlace returns the place an operand reads, if any.
func OperandPlace(op Operand) (Place, bool) {
	switch v := op.(type) {
	case *OperandCopy:
		return v.Place, true
	case *OperandMove:
		return v.Place, true
	case *OperandConst:
		return Place{}, false
	default:
		panic(fmt.Sprintf("irl: unknown operand variant %T", op))
	}
}
