package resolver

import (
	"github.com/kcl-lang/kcl-sub002/ast"
	"github.com/kcl-lang/kcl-sub002/types"
)

// doLoopTypeCheck binds the loop variables of a comprehension or
// quantifier to their types inferred from the iterated value. Union
// iterables contribute every member; the variable types are the
// suprema over the members.
func (r *Resolver) doLoopTypeCheck(targets []*ast.Identifier, iter ast.Expr, iterTy types.Type) {
	firstVarTypes := []types.Type{}
	secondVarTypes := []types.Type{}
	for _, ty := range types.UnionTypes(iterTy) {
		if !types.IsIterable(ty) && !types.IsAny(ty) {
			r.handler.AddTypeError(iter, "'%v' object is not iterable", ty.TypeString())
			continue
		}
		first, second := loopVarTypes(ty, len(targets))
		firstVarTypes = append(firstVarTypes, first)
		secondVarTypes = append(secondVarTypes, second)
	}
	firstTy := types.Sup(firstVarTypes)
	secondTy := types.Sup(secondVarTypes)
	if types.IsVoid(firstTy) {
		firstTy = types.Any
	}
	if types.IsVoid(secondTy) {
		secondTy = types.Any
	}
	if len(targets) >= 1 {
		r.declareLoopVar(targets[0], firstTy)
	}
	if len(targets) >= 2 {
		r.declareLoopVar(targets[1], secondTy)
	}
}

// declareLoopVar binds a loop variable in the current loop scope,
// shadowing any outer variable of the same name.
func (r *Resolver) declareLoopVar(target *ast.Identifier, ty types.Type) {
	name := target.GetName()
	r.insertObject(name, &ScopeObject{
		Name:  name,
		Start: target.Pos(),
		End:   target.End(),
		Ty:    ty,
		Kind:  KindVariable,
	})
	r.setNodeType(target, ty)
}

// loopVarTypes gives the types of the loop variables for one iterable
// member. With one variable a list yields its element and a dict its
// key; with two variables a list yields index and element and a str
// yields index and character.
func loopVarTypes(ty types.Type, varCount int) (types.Type, types.Type) {
	switch t := ty.(type) {
	case *types.List:
		if varCount == 2 {
			return types.Int, t.Elem
		}
		return t.Elem, types.Any
	case *types.Dict:
		return t.Key, t.Val
	case *types.SchemaType:
		return t.KeyTy(), t.ValTy()
	case *types.StrLit:
		if varCount == 2 {
			return types.Int, types.Str
		}
		return types.Str, types.Any
	default:
		if types.IsStr(ty) {
			if varCount == 2 {
				return types.Int, types.Str
			}
			return types.Str, types.Any
		}
		return types.Any, types.Any
	}
}
