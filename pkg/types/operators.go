package types

// BinaryOp identifies a binary operator in an expression.
type BinaryOp uint8

const (
	// Arithmetic
	OpAdd BinaryOp = iota // +
	OpSub                 // -
	OpMul                 // *
	OpDiv                 // /
	OpMod                 // %
	OpPow                 // ^ (also accepted as **)

	// Comparison
	OpEqual        // ==
	OpNotEqual     // !=
	OpLess         // <
	OpLessEqual    // <=
	OpGreater      // >
	OpGreaterEqual // >=

	// Logical
	OpAnd // &
	OpOr  // |
)

// String returns the surface syntax of the operator.
func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpPow:
		return "^"
	case OpEqual:
		return "=="
	case OpNotEqual:
		return "!="
	case OpLess:
		return "<"
	case OpLessEqual:
		return "<="
	case OpGreater:
		return ">"
	case OpGreaterEqual:
		return ">="
	case OpAnd:
		return "&"
	case OpOr:
		return "|"
	default:
		return "(unknown)"
	}
}

// UnaryOp identifies a prefix operator.
type UnaryOp uint8

const (
	OpNegate UnaryOp = iota // -
	OpPlus                  // + (no-op)
	OpNot                   // !
)

// String returns the surface syntax of the operator.
func (op UnaryOp) String() string {
	switch op {
	case OpNegate:
		return "-"
	case OpPlus:
		return "+"
	case OpNot:
		return "!"
	default:
		return "(unknown)"
	}
}
