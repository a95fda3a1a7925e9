package resolver

import (
	"fmt"

	"github.com/kcl-lang/kcl-sub002/ast"
	"github.com/kcl-lang/kcl-sub002/failed"
	"github.com/kcl-lang/kcl-sub002/types"
	"github.com/kcl-lang/kcl-sub002/util"
)

// binary types a binary expression. Literal unions on either side are
// widened to their variable types first so that arithmetic on literal
// values behaves like arithmetic on the base types.
func (r *Resolver) binary(left, right types.Type, op ast.BinOp, pos ast.Positioner) types.Type {
	rawRight := right
	left = r.tyCtx.LiteralUnionToVariable(left)
	right = r.tyCtx.LiteralUnionToVariable(right)
	if types.IsAny(left) && types.IsAny(right) {
		return types.Any
	}
	switch op {
	case ast.BinOpAdd:
		if r.tyCtx.IsNumberOrNumberUnion(left) && r.tyCtx.IsNumberOrNumberUnion(right) {
			return numberBinaryTy(left, right)
		}
		if r.tyCtx.IsStrOrStrUnion(left) && r.tyCtx.IsStrOrStrUnion(right) {
			return types.Str
		}
		if lhs, ok := left.(*types.List); ok {
			if rhs, ok := right.(*types.List); ok {
				return types.NewList(types.Sup([]types.Type{lhs.Elem, rhs.Elem}))
			}
		}
	case ast.BinOpSub, ast.BinOpPow:
		if r.tyCtx.IsNumberOrNumberUnion(left) && r.tyCtx.IsNumberOrNumberUnion(right) {
			return numberBinaryTy(left, right)
		}
	case ast.BinOpMul:
		if r.tyCtx.IsNumberOrNumberUnion(left) && r.tyCtx.IsNumberOrNumberUnion(right) {
			return numberBinaryTy(left, right)
		}
		if types.IsInt(left) && r.tyCtx.IsMulValOrUnion(right) {
			return right
		}
		if types.IsInt(right) && r.tyCtx.IsMulValOrUnion(left) {
			return left
		}
	case ast.BinOpDiv, ast.BinOpFloorDiv, ast.BinOpMod:
		if r.tyCtx.IsNumberOrNumberUnion(left) && r.tyCtx.IsNumberOrNumberUnion(right) {
			for _, zero := range types.ZeroLitTypes() {
				if types.Equal(rawRight, zero) {
					r.handler.AddTypeError(pos, "integer division or modulo by zero")
					return numberBinaryTy(left, right)
				}
			}
			return numberBinaryTy(left, right)
		}
	case ast.BinOpLShift, ast.BinOpRShift, ast.BinOpBitXor, ast.BinOpBitAnd:
		if types.IsInt(left) && types.IsInt(right) {
			return types.Int
		}
	case ast.BinOpBitOr:
		if ty, ok := r.bitOr(left, right); ok {
			return ty
		}
	case ast.BinOpAnd:
		return types.Bool
	case ast.BinOpOr:
		return types.Sup([]types.Type{left, right})
	case ast.BinOpAs:
		if !types.IsUpperBound(left, right) && !types.IsUpperBound(right, left) {
			r.handler.AddTypeError(pos,
				"Conversion of type '%v' to type '%v' may be a mistake because neither type sufficiently overlaps with the other",
				left.TypeString(), right.TypeString())
		}
		return right
	}
	if types.IsAny(left) || types.IsAny(right) {
		return types.Any
	}
	r.handler.AddError(failed.TypeError, failed.Message{
		Positioner: pos,
		Text: fmt.Sprintf("unsupported operand type(s) for %v: '%v' and '%v'",
			op, left.TypeString(), right.TypeString()),
	})
	return types.Any
}

// bitOr handles `|`, which doubles as the merge operator for configs.
func (r *Resolver) bitOr(left, right types.Type) (types.Type, bool) {
	if types.IsInt(left) && types.IsInt(right) {
		return types.Int, true
	}
	if types.IsNone(left) {
		return right, true
	}
	if types.IsNone(right) {
		return left, true
	}
	if lhs, ok := left.(*types.List); ok {
		if rhs, ok := right.(*types.List); ok {
			return types.NewList(types.Sup([]types.Type{lhs.Elem, rhs.Elem})), true
		}
	}
	if lhs, ok := left.(*types.Dict); ok {
		if rhs, ok := right.(*types.Dict); ok {
			return mergeDictTypes(lhs, rhs), true
		}
	}
	if _, ok := left.(*types.SchemaType); ok {
		switch right.(type) {
		case *types.SchemaType, *types.Dict:
			return left, true
		}
	}
	return nil, false
}

// mergeDictTypes merges two dict types entry-wise, keeping the per-key
// attribute types where both sides carry them.
func mergeDictTypes(lhs, rhs *types.Dict) *types.Dict {
	key := types.Sup([]types.Type{lhs.Key, rhs.Key})
	val := types.Sup([]types.Type{lhs.Val, rhs.Val})
	if lhs.Attrs == nil && rhs.Attrs == nil {
		return types.NewDict(key, val)
	}
	attrs := util.NewOrderedMap[string, types.Attr]()
	if lhs.Attrs != nil {
		for name, attr := range lhs.Attrs.All() {
			attrs.Set(name, attr)
		}
	}
	if rhs.Attrs != nil {
		for name, attr := range rhs.Attrs.All() {
			if existed, ok := attrs.Get(name); ok {
				attrs.Set(name, types.Attr{
					Ty:    types.Sup([]types.Type{existed.Ty, attr.Ty}),
					Range: attr.Range,
				})
			} else {
				attrs.Set(name, attr)
			}
		}
	}
	return types.NewDictWithAttrs(key, val, attrs)
}

func numberBinaryTy(left, right types.Type) types.Type {
	if types.IsFloat(left) || types.IsFloat(right) {
		return types.Float
	}
	if types.IsInt(left) && types.IsInt(right) {
		return types.Int
	}
	return types.Sup([]types.Type{widenNumber(left), widenNumber(right)})
}

func widenNumber(ty types.Type) types.Type {
	if types.IsInt(ty) {
		return types.Int
	}
	if types.IsFloat(ty) {
		return types.Float
	}
	return ty
}

// unary types a unary expression.
func (r *Resolver) unary(operand types.Type, op ast.UnaryOp, pos ast.Positioner) types.Type {
	operand = r.tyCtx.LiteralUnionToVariable(operand)
	if types.IsAny(operand) {
		if op == ast.UnaryOpNot {
			return types.Bool
		}
		return types.Any
	}
	switch op {
	case ast.UnaryOpUAdd, ast.UnaryOpUSub:
		if r.tyCtx.IsNumberBoolOrUnion(operand) {
			return widenNumber(operand)
		}
	case ast.UnaryOpInvert:
		if types.IsInt(operand) || types.IsBool(operand) {
			return types.Int
		}
	case ast.UnaryOpNot:
		return types.Bool
	}
	r.handler.AddError(failed.TypeError, failed.Message{
		Positioner: pos,
		Text:       fmt.Sprintf("bad operand type for unary %v: '%v'", op, operand.TypeString()),
	})
	return types.Any
}

// compare types one comparison pair. The result of a compare
// expression is always bool; this reports the pairs that cannot be
// compared.
func (r *Resolver) compare(left, right types.Type, op ast.CmpOp, pos ast.Positioner) types.Type {
	left = r.tyCtx.LiteralUnionToVariable(left)
	right = r.tyCtx.LiteralUnionToVariable(right)
	if types.IsAny(left) || types.IsAny(right) {
		return types.Bool
	}
	switch op {
	case ast.CmpOpLt, ast.CmpOpLtE, ast.CmpOpGt, ast.CmpOpGtE:
		if r.tyCtx.IsNumberBoolOrUnion(left) && r.tyCtx.IsNumberBoolOrUnion(right) {
			return types.Bool
		}
		if types.IsStr(left) && types.IsStr(right) {
			return types.Bool
		}
	case ast.CmpOpEq, ast.CmpOpNotEq:
		if comparableForEquality(left, right) {
			return types.Bool
		}
	case ast.CmpOpIs, ast.CmpOpIsNot:
		return types.Bool
	case ast.CmpOpIn, ast.CmpOpNotIn:
		if types.IsIterable(right) {
			return types.Bool
		}
	}
	if types.IsNone(left) || types.IsNone(right) {
		switch op {
		case ast.CmpOpEq, ast.CmpOpNotEq, ast.CmpOpIs, ast.CmpOpIsNot:
			return types.Bool
		}
	}
	r.handler.AddError(failed.TypeError, failed.Message{
		Positioner: pos,
		Text: fmt.Sprintf("unsupported operand type(s) for %v: '%v' and '%v'",
			op, left.TypeString(), right.TypeString()),
	})
	return types.Bool
}

func comparableForEquality(left, right types.Type) bool {
	if types.IsPrimitive(left) && types.IsPrimitive(right) {
		return true
	}
	if types.IsNone(left) || types.IsNone(right) {
		return true
	}
	if _, ok := left.(*types.List); ok {
		_, ok := right.(*types.List)
		return ok
	}
	switch left.(type) {
	case *types.Dict, *types.SchemaType:
		switch right.(type) {
		case *types.Dict, *types.SchemaType:
			return true
		}
	}
	if _, ok := left.(*types.Union); ok {
		return true
	}
	if _, ok := right.(*types.Union); ok {
		return true
	}
	return false
}
