package resolver

import (
	"fmt"

	"github.com/kcl-lang/kcl-sub002/ast"
	"github.com/kcl-lang/kcl-sub002/types"
	"github.com/kcl-lang/kcl-sub002/util"
)

// funcName extracts a printable callee name from the call expression,
// looking through selectors and parens.
func funcName(fn ast.Expr) string {
	for {
		switch e := fn.(type) {
		case *ast.Identifier:
			return fmt.Sprintf("%q", e.GetName())
		case *ast.SelectorExpr:
			return fmt.Sprintf("%q", e.Attr.GetName())
		case *ast.ParenExpr:
			fn = e.Expr
		default:
			return "anonymous function"
		}
	}
}

// doArgumentsTypeCheck checks a call's arguments against the callee
// signature.
func (r *Resolver) doArgumentsTypeCheck(fn ast.Expr, args []ast.Expr, kwargs []*ast.Keyword, funcTy *types.Function) {
	name := funcName(fn)
	seen := util.NewSet[string]()
	for _, kwarg := range kwargs {
		if kwarg.Arg == nil {
			continue
		}
		kwargName := kwarg.Arg.GetName()
		if seen.Has(kwargName) {
			r.handler.AddCompileError(kwarg, "%v has duplicated keyword argument %v", name, kwargName)
		}
		seen.Add(kwargName)
	}
	params := funcTy.Params
	if !funcTy.Variadic {
		for i, param := range params {
			if param.HasDefault || i < len(args) || seen.Has(param.Name) {
				continue
			}
			r.handler.AddCompileError(fn, "%v missing 1 required positional argument: %q", name, param.Name)
		}
		positionalLimit := len(params)
		if funcTy.KwOnlyIndex >= 0 {
			positionalLimit = funcTy.KwOnlyIndex
		}
		if len(args) > positionalLimit {
			r.handler.AddCompileError(fn, "%v takes %v positional argument(s) but %v were given",
				name, positionalLimit, len(args))
		}
	}
	for i, arg := range args {
		argTy := r.expr(arg)
		if i < len(params) {
			r.mustAssignableTo(argTy, params[i].Ty, arg, nil)
		}
	}
	for _, kwarg := range kwargs {
		if kwarg.Arg == nil {
			continue
		}
		kwargName := kwarg.Arg.GetName()
		valueTy := r.expr(kwarg.Value)
		var paramTy types.Type
		for i := range params {
			if params[i].Name == kwargName {
				paramTy = params[i].Ty
				break
			}
		}
		if paramTy == nil {
			if !funcTy.Variadic && len(params) > 0 {
				r.handler.AddCompileError(kwarg, "%v got an unexpected keyword argument '%v'", name, kwargName)
			}
			continue
		}
		r.mustAssignableTo(valueTy, paramTy, kwarg.Value, nil)
	}
}
