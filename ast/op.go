package ast

// BinOp is a binary operator, including the logic operators and `as`.
type BinOp string

const (
	BinOpAdd      BinOp = "+"
	BinOpSub      BinOp = "-"
	BinOpMul      BinOp = "*"
	BinOpDiv      BinOp = "/"
	BinOpMod      BinOp = "%"
	BinOpPow      BinOp = "**"
	BinOpFloorDiv BinOp = "//"
	BinOpLShift   BinOp = "<<"
	BinOpRShift   BinOp = ">>"
	BinOpBitOr    BinOp = "|"
	BinOpBitXor   BinOp = "^"
	BinOpBitAnd   BinOp = "&"
	BinOpAnd      BinOp = "and"
	BinOpOr       BinOp = "or"
	BinOpAs       BinOp = "as"
)

// AugOp is an augmented assignment operator. AugOpAssign is the plain
// `=` used by schema attribute defaults.
type AugOp string

const (
	AugOpAssign   AugOp = "="
	AugOpAdd      AugOp = "+="
	AugOpSub      AugOp = "-="
	AugOpMul      AugOp = "*="
	AugOpDiv      AugOp = "/="
	AugOpMod      AugOp = "%="
	AugOpPow      AugOp = "**="
	AugOpFloorDiv AugOp = "//="
	AugOpLShift   AugOp = "<<="
	AugOpRShift   AugOp = ">>="
	AugOpBitOr    AugOp = "|="
	AugOpBitXor   AugOp = "^="
	AugOpBitAnd   AugOp = "&="
)

// ToBinOp strips the trailing `=` of an augmented operator.
func (op AugOp) ToBinOp() (BinOp, bool) {
	if op == AugOpAssign {
		return "", false
	}
	return BinOp(op[:len(op)-1]), true
}

type UnaryOp string

const (
	UnaryOpUAdd   UnaryOp = "+"
	UnaryOpUSub   UnaryOp = "-"
	UnaryOpInvert UnaryOp = "~"
	UnaryOpNot    UnaryOp = "not"
)

type CmpOp string

const (
	CmpOpEq    CmpOp = "=="
	CmpOpNotEq CmpOp = "!="
	CmpOpLt    CmpOp = "<"
	CmpOpLtE   CmpOp = "<="
	CmpOpGt    CmpOp = ">"
	CmpOpGtE   CmpOp = ">="
	CmpOpIs    CmpOp = "is"
	CmpOpIsNot CmpOp = "is not"
	CmpOpIn    CmpOp = "in"
	CmpOpNotIn CmpOp = "not in"
)

// ConfigOp is the merge operation attached to a config entry.
type ConfigOp int

const (
	ConfigOpUnion ConfigOp = iota
	ConfigOpOverride
	ConfigOpInsert
)

func (op ConfigOp) String() string {
	switch op {
	case ConfigOpOverride:
		return "="
	case ConfigOpInsert:
		return "+="
	default:
		return ":"
	}
}

// ExprContext marks whether an identifier is being read or written.
type ExprContext int

const (
	ExprContextLoad ExprContext = iota
	ExprContextStore
)

// QuantOp is the operation of a quantifier expression.
type QuantOp string

const (
	QuantOpAll    QuantOp = "all"
	QuantOpAny    QuantOp = "any"
	QuantOpFilter QuantOp = "filter"
	QuantOpMap    QuantOp = "map"
)

// NameConstant is one of the four keyword literals.
type NameConstant string

const (
	NameConstantTrue      NameConstant = "True"
	NameConstantFalse     NameConstant = "False"
	NameConstantNone      NameConstant = "None"
	NameConstantUndefined NameConstant = "Undefined"
)
