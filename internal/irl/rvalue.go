package irl

// RvUse evaluates a single operand.
type RvUse struct {
	Op Operand
}

// RvRepeat builds an array by repeating an operand.
type RvRepeat struct {
	Op  Operand
	Len int
}

// RvRef takes a reference to a place.
//
//	&place, &mut place
type RvRef struct {
	Mut   bool
	Place Place
}

// RvAddrOf takes the raw address of a place.
//
//	&raw const place, &raw mut place
type RvAddrOf struct {
	Mut   bool
	Place Place
}

// RvLen reads the length of a slice or array place.
type RvLen struct {
	Place Place
}

// RvCast converts an operand to another static type.
type RvCast struct {
	Op Operand
	Ty Type
}

// RvBinaryOp combines two operands. The operator itself is irrelevant
// to rewriting and is kept as plain text.
type RvBinaryOp struct {
	Op   string
	A, B Operand
}

// RvUnaryOp applies a unary operator to one operand.
type RvUnaryOp struct {
	Op string
	A  Operand
}

// RvAggregate builds a composite value from ordered operands.
type RvAggregate struct {
	Ops []Operand
}

func (*RvUse) isRvalue()       {}
func (*RvRepeat) isRvalue()    {}
func (*RvRef) isRvalue()       {}
func (*RvAddrOf) isRvalue()    {}
func (*RvLen) isRvalue()       {}
func (*RvCast) isRvalue()      {}
func (*RvBinaryOp) isRvalue()  {}
func (*RvUnaryOp) isRvalue()   {}
func (*RvAggregate) isRvalue() {}
