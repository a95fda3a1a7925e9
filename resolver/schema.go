package resolver

import (
	"fmt"

	"github.com/kcl-lang/kcl-sub002/ast"
	"github.com/kcl-lang/kcl-sub002/failed"
	"github.com/kcl-lang/kcl-sub002/types"
)

// resolveSchemaStmt type checks a schema body against the type the
// global builder produced for it.
func (r *Resolver) resolveSchemaStmt(schemaStmt *ast.SchemaStmt) types.Type {
	name := schemaStmt.Name.Value
	r.resolveUniqueKey(name, schemaStmt.Name)
	ty, ok := r.findTypeInScope(name)
	if !ok {
		ty = types.Any
	}
	schemaTy, ok := ty.(*types.SchemaType)
	if !ok {
		r.handler.AddTypeError(schemaStmt.Name, "expected schema type, got %v", ty.TypeString())
		return ty
	}
	r.ctx.schema = schemaTy
	r.doParametersCheck(schemaStmt.Args)
	r.enterSchemaScope(schemaStmt.Pos(), schemaStmt.End(), name)
	r.insertParameterObjects(schemaStmt.Args)
	if node := schemaStmt.IndexSignature; node != nil {
		if node.KeyName != "" {
			keyTy := types.Type(types.Str)
			if schemaTy.IndexSignature != nil {
				keyTy = schemaTy.IndexSignature.KeyTy
			}
			r.insertObject(node.KeyName, &ScopeObject{
				Name:  node.KeyName,
				Start: node.Pos(),
				End:   node.End(),
				Ty:    keyTy,
				Kind:  KindAttribute,
			})
		}
		if node.Value != nil && schemaTy.IndexSignature != nil {
			valueTy := r.expr(node.Value)
			r.mustAssignableTo(valueTy, schemaTy.IndexSignature.ValTy, node, nil)
		}
	}
	// Pre-declare every attribute name so that statement order inside
	// the body does not matter.
	for _, attrName := range schemaTy.AttrNames() {
		if !r.containsObject(attrName) {
			attrTy := types.Type(types.Any)
			var attrPos ast.Pos
			if attr, ok := schemaTy.AttrObj(attrName); ok {
				attrPos = attr.Pos
			}
			r.insertObject(attrName, &ScopeObject{
				Name:  attrName,
				Start: attrPos,
				End:   attrPos,
				Ty:    attrTy,
				Kind:  KindAttribute,
			})
		}
	}
	r.stmts(schemaStmt.Body)
	r.resolveCheckExprs(schemaStmt.Checks)
	r.leaveScope()
	r.ctx.schema = nil
	return schemaTy
}

// resolveRuleStmt type checks a rule body the same way a schema body
// is checked.
func (r *Resolver) resolveRuleStmt(ruleStmt *ast.RuleStmt) types.Type {
	name := ruleStmt.Name.Value
	r.resolveUniqueKey(name, ruleStmt.Name)
	ty, ok := r.findTypeInScope(name)
	if !ok {
		ty = types.Any
	}
	schemaTy, ok := ty.(*types.SchemaType)
	if !ok {
		r.handler.AddTypeError(ruleStmt.Name, "expected rule type, got %v", ty.TypeString())
		return ty
	}
	r.ctx.schema = schemaTy
	r.doParametersCheck(ruleStmt.Args)
	r.enterSchemaScope(ruleStmt.Pos(), ruleStmt.End(), name)
	r.insertParameterObjects(ruleStmt.Args)
	r.resolveCheckExprs(ruleStmt.Checks)
	r.leaveScope()
	r.ctx.schema = nil
	return schemaTy
}

func (r *Resolver) insertParameterObjects(args *ast.Arguments) {
	if args == nil {
		return
	}
	for i, param := range args.Args {
		paramName := param.GetName()
		ty := r.parseTyWithScope(args.ArgType(i), param)
		if defaultValue := args.ArgDefault(i); defaultValue != nil {
			valueTy := r.expr(defaultValue)
			r.mustAssignableTo(valueTy, ty, param, nil)
		}
		r.insertObject(paramName, &ScopeObject{
			Name:  paramName,
			Start: param.Pos(),
			End:   param.End(),
			Ty:    ty,
			Kind:  KindParameter,
		})
	}
}

func (r *Resolver) resolveCheckExprs(checks []*ast.CheckExpr) {
	for _, check := range checks {
		r.expr(check.Test)
		if check.IfCond != nil {
			r.expr(check.IfCond)
		}
		if check.Msg != nil {
			msgTy := r.expr(check.Msg)
			r.mustAssignableTo(msgTy, types.Str, check.Msg, nil)
		}
	}
}

// doParametersCheck rejects a parameter without a default that follows
// one with a default.
func (r *Resolver) doParametersCheck(args *ast.Arguments) {
	if args == nil {
		return
	}
	defaultSeen := false
	for i, param := range args.Args {
		if args.ArgDefault(i) != nil {
			defaultSeen = true
		} else if defaultSeen {
			r.handler.AddError(failed.IllegalParameterError, failed.Message{
				Positioner: param,
				Text:       fmt.Sprintf("non-default argument '%v' follows default argument", param.GetName()),
			})
		}
	}
}

// resolveDecorators evaluates the decorator calls of a schema or
// attribute, checking the arguments against the builtin signatures.
func (r *Resolver) resolveDecorators(decorators []*ast.CallExpr, target string) []*types.Decorator {
	var resolved []*types.Decorator
	for _, decorator := range decorators {
		ident, ok := decorator.Func.(*ast.Identifier)
		if !ok || len(ident.Names) != 1 {
			r.handler.AddTypeError(decorator, "decorator name must be a single identifier")
			continue
		}
		name := ident.Names[0].Value
		funcTy, ok := builtinDecorators[name]
		if !ok {
			r.handler.AddCompileError(decorator, "UnKnown decorator %v", name)
			continue
		}
		r.doArgumentsTypeCheck(decorator.Func, decorator.Args, decorator.Keywords, funcTy)
		dec := &types.Decorator{Name: name, Target: target, Keywords: map[string]string{}}
		for _, arg := range decorator.Args {
			dec.Args = append(dec.Args, exprLiteralString(arg))
		}
		for _, keyword := range decorator.Keywords {
			if keyword.Arg != nil {
				dec.Keywords[keyword.Arg.GetName()] = exprLiteralString(keyword.Value)
			}
		}
		resolved = append(resolved, dec)
	}
	return resolved
}

func exprLiteralString(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.StringLit:
		return e.Value
	case *ast.NumberLit:
		if e.IsFloat {
			return fmt.Sprintf("%v", e.FloatValue)
		}
		return fmt.Sprintf("%v%v", e.IntValue, e.BinarySuffix)
	case *ast.NameConstantLit:
		return string(e.Value)
	default:
		return ""
	}
}
