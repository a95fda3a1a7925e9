package resolver

import (
	"strings"

	"github.com/kcl-lang/kcl-sub002/ast"
	"github.com/kcl-lang/kcl-sub002/failed"
	"github.com/kcl-lang/kcl-sub002/types"
)

// validFormatSpecs are the interpolation conversion specs the runtime
// understands.
var validFormatSpecs = map[string]bool{
	"#json": true,
	"#yaml": true,
}

func (r *Resolver) stmts(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		r.stmt(stmt)
	}
}

// stmt types one statement and records its type in the side table.
func (r *Resolver) stmt(stmt ast.Stmt) types.Type {
	r.ctx.startPos = stmt.Pos()
	r.ctx.endPos = stmt.End()
	var ty types.Type
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		ty = r.walkExprStmt(s)
	case *ast.TypeAliasStmt:
		ty = r.walkTypeAliasStmt(s)
	case *ast.AssignStmt:
		ty = r.walkAssignStmt(s)
	case *ast.AugAssignStmt:
		ty = r.walkAugAssignStmt(s)
	case *ast.UnificationStmt:
		ty = r.walkUnificationStmt(s)
	case *ast.AssertStmt:
		ty = r.walkAssertStmt(s)
	case *ast.IfStmt:
		ty = r.walkIfStmt(s)
	case *ast.ImportStmt:
		ty = types.Any
	case *ast.SchemaStmt:
		ty = r.resolveSchemaStmt(s)
	case *ast.RuleStmt:
		ty = r.resolveRuleStmt(s)
	case *ast.SchemaAttr:
		ty = r.walkSchemaAttr(s)
	case *ast.SchemaIndexSignature:
		ty = types.Any
	default:
		failed.Bug("unexpected statement %T", stmt)
	}
	r.setNodeType(stmt, ty)
	return ty
}

func (r *Resolver) walkExprStmt(exprStmt *ast.ExprStmt) types.Type {
	if len(exprStmt.Exprs) != 1 {
		r.handler.AddCompileError(exprStmt, "expression statement can only have one expression")
	}
	ty := types.Type(types.Any)
	for _, expr := range exprStmt.Exprs {
		ty = r.expr(expr)
	}
	return ty
}

func (r *Resolver) walkTypeAliasStmt(typeAliasStmt *ast.TypeAliasStmt) types.Type {
	name := typeAliasStmt.Name.GetName()
	for _, reserved := range types.ReservedTypeIdentifiers {
		if name == reserved {
			r.handler.AddTypeError(typeAliasStmt,
				"type alias '%v' cannot be the same as the built-in types (%v)",
				name, strings.Join(types.ReservedTypeIdentifiers, ", "))
			return types.Any
		}
	}
	ty := r.parseTyWithScope(typeAliasStmt.Ty, typeAliasStmt)
	if aliases, ok := r.ctx.typeAliasMapping[r.ctx.pkgpath]; ok {
		aliases[name] = ty.AnnotationString()
	} else {
		r.ctx.typeAliasMapping[r.ctx.pkgpath] = map[string]string{name: ty.AnnotationString()}
	}
	r.insertObject(name, &ScopeObject{
		Name:  name,
		Start: typeAliasStmt.Pos(),
		End:   typeAliasStmt.End(),
		Ty:    ty,
		Kind:  KindTypeAlias,
	})
	return ty
}

func (r *Resolver) walkAssignStmt(assignStmt *ast.AssignStmt) types.Type {
	valueTy := types.Type(types.Any)
	for _, target := range assignStmt.Targets {
		if len(target.Names) == 0 {
			continue
		}
		name := target.Names[0].Value
		var expectedTy types.Type
		if assignStmt.Ty != "" {
			expectedTy = r.parseTyWithScope(assignStmt.Ty, target)
			r.checkAssignmentTypeAnnotation(name, expectedTy, target)
		}
		targetTy := r.walkIdentifier(target)
		if expectedTy == nil && len(target.Names) > 1 {
			expectedTy = targetTy
		}
		depth := 0
		if expectedTy != nil {
			depth = r.switchConfigExprContextByAssignTy(name, expectedTy, target)
		}
		valueTy = r.exprOrAny(assignStmt.Value)
		r.clearConfigExprContext(depth, false)
		if expectedTy != nil {
			var expectedPos ast.Positioner
			if obj, ok := r.scope.Lookup(name); ok && len(target.Names) == 1 {
				expectedPos = ast.Range{PosStart: obj.Start, PosEnd: obj.End}
			}
			r.mustAssignableTo(valueTy, expectedTy, assignStmt.Value, expectedPos)
		}
		if assignStmt.Ty == "" && len(target.Names) == 1 {
			if types.IsAny(targetTy) && !types.IsAny(valueTy) {
				r.setTypeToScope(name, valueTy, target)
				if r.ctx.schema != nil && !r.inLocalVars(name) {
					r.ctx.schema.SetAttrType(name, valueTy)
				}
			}
		}
	}
	return valueTy
}

// switchConfigExprContextByAssignTy enters the config context implied
// by the annotated type of an assignment target.
func (r *Resolver) switchConfigExprContextByAssignTy(name string, ty types.Type, pos ast.Positioner) int {
	switch ty.(type) {
	case *types.SchemaType, *types.Dict, *types.List, *types.Union:
		r.switchConfigExprContext(newConfigExprContextItem(name, ty, pos))
		return 1
	}
	return 0
}

func (r *Resolver) walkAugAssignStmt(augAssignStmt *ast.AugAssignStmt) types.Type {
	target := augAssignStmt.Target
	if len(target.Names) == 1 {
		name := target.Names[0].Value
		if !isPrivateField(name) && r.containsGlobalName(name) {
			msgs := []failed.Message{{
				Positioner: target,
				Text:       "Immutable variable '" + name + "' is modified during compiling",
			}}
			if declared, ok := r.globalNamePos(name); ok {
				msgs = append(msgs, failed.Message{
					Positioner:  ast.Range{PosStart: declared, PosEnd: declared},
					Text:        "change the variable name to '_" + name + "' to make it mutable",
					Suggestions: []string{"_" + name},
				})
			}
			r.handler.AddError(failed.ImmutableError, msgs...)
		}
	}
	targetTy := r.walkIdentifier(target)
	valueTy := r.expr(augAssignStmt.Value)
	binOp, ok := augAssignStmt.Op.ToBinOp()
	if !ok {
		failed.Bug("augmented assignment without an operator")
		return types.Any
	}
	newTy := r.binary(targetTy, valueTy, binOp, augAssignStmt)
	r.mustAssignableTo(newTy, targetTy, augAssignStmt.Value, nil)
	return newTy
}

func (r *Resolver) walkUnificationStmt(unificationStmt *ast.UnificationStmt) types.Type {
	target := unificationStmt.Target
	if len(target.Names) > 1 {
		r.handler.AddCompileError(target, "unification identifier can not be selected")
	}
	targetTy := r.walkIdentifier(target)
	// The target's declared type constrains the config literal.
	r.switchConfigExprContext(newConfigExprContextItem(target.GetName(), targetTy, target))
	valueTy := r.expr(unificationStmt.Value)
	r.restoreConfigExprContext()
	if !types.IsAny(targetTy) {
		r.mustAssignableTo(valueTy, targetTy, unificationStmt.Value, nil)
		return targetTy
	}
	if len(target.Names) == 1 {
		name := target.Names[0].Value
		r.setTypeToScope(name, valueTy, target)
		if r.ctx.schema != nil && !r.inLocalVars(name) {
			r.ctx.schema.SetAttrType(name, valueTy)
		}
	}
	return valueTy
}

func (r *Resolver) walkAssertStmt(assertStmt *ast.AssertStmt) types.Type {
	r.expr(assertStmt.Test)
	if assertStmt.IfCond != nil {
		r.expr(assertStmt.IfCond)
	}
	if assertStmt.Msg != nil {
		r.mustBeType(assertStmt.Msg, types.Str)
	}
	return types.Any
}

func (r *Resolver) walkIfStmt(ifStmt *ast.IfStmt) types.Type {
	r.expr(ifStmt.Cond)
	if len(ifStmt.Body) > 0 {
		r.enterScope(ifStmt.Body[0].Pos(), ifStmt.Body[len(ifStmt.Body)-1].End(), ScopeCondStmt)
		r.stmts(ifStmt.Body)
		r.leaveScope()
	}
	if len(ifStmt.Orelse) > 0 {
		r.enterScope(ifStmt.Orelse[0].Pos(), ifStmt.Orelse[len(ifStmt.Orelse)-1].End(), ScopeCondStmt)
		r.stmts(ifStmt.Orelse)
		r.leaveScope()
	}
	return types.Any
}

func (r *Resolver) walkSchemaAttr(schemaAttr *ast.SchemaAttr) types.Type {
	name := schemaAttr.Name.Value
	expectedTy := types.Type(types.Any)
	if r.ctx.schema != nil {
		if attr, ok := r.ctx.schema.AttrObj(name); ok {
			expectedTy = attr.Ty
		}
	}
	r.insertObject(name, &ScopeObject{
		Name:  name,
		Start: schemaAttr.Name.Pos(),
		End:   schemaAttr.Name.End(),
		Ty:    expectedTy,
		Kind:  KindAttribute,
	})
	if schemaAttr.Value != nil {
		depth := r.switchConfigExprContextByAssignTy(name, expectedTy, schemaAttr.Name)
		valueTy := r.expr(schemaAttr.Value)
		r.clearConfigExprContext(depth, false)
		if binOp, ok := schemaAttr.Op.ToBinOp(); ok {
			valueTy = r.binary(expectedTy, valueTy, binOp, schemaAttr)
		}
		r.mustAssignableTo(valueTy, expectedTy, schemaAttr.Value,
			ast.Range{PosStart: schemaAttr.Name.Pos(), PosEnd: schemaAttr.Name.End()})
	}
	return expectedTy
}

// ---------------------------------------------------------------------------
// Expressions

func (r *Resolver) exprs(exprs []ast.Expr) []types.Type {
	tys := make([]types.Type, 0, len(exprs))
	for _, expr := range exprs {
		tys = append(tys, r.expr(expr))
	}
	return tys
}

func (r *Resolver) exprOrAny(expr ast.Expr) types.Type {
	if expr == nil {
		return types.Any
	}
	return r.expr(expr)
}

// expr types one expression and records its type in the side table.
func (r *Resolver) expr(expr ast.Expr) types.Type {
	var ty types.Type
	switch e := expr.(type) {
	case *ast.Identifier:
		ty = r.walkIdentifier(e)
	case *ast.UnaryExpr:
		ty = r.unary(r.expr(e.Operand), e.Op, e)
	case *ast.BinaryExpr:
		ty = r.binary(r.expr(e.Left), r.expr(e.Right), e.Op, e)
	case *ast.IfExpr:
		ty = r.walkIfExpr(e)
	case *ast.SelectorExpr:
		ty = r.walkSelectorExpr(e)
	case *ast.CallExpr:
		ty = r.walkCallExpr(e)
	case *ast.Keyword:
		ty = r.exprOrAny(e.Value)
	case *ast.ParenExpr:
		ty = r.expr(e.Expr)
	case *ast.QuantExpr:
		ty = r.walkQuantExpr(e)
	case *ast.ListExpr:
		ty = r.walkListExpr(e)
	case *ast.ListIfItemExpr:
		ty = r.walkListIfItemExpr(e)
	case *ast.StarredExpr:
		ty = r.walkStarredExpr(e)
	case *ast.ListComp:
		ty = r.walkListComp(e)
	case *ast.DictComp:
		ty = r.walkDictComp(e)
	case *ast.SchemaExpr:
		ty = r.walkSchemaExpr(e)
	case *ast.ConfigExpr:
		ty = r.walkConfigEntries(e.Items)
	case *ast.ConfigIfEntryExpr:
		ty = r.walkConfigIfEntryExpr(e)
	case *ast.CheckExpr:
		ty = r.walkCheckExpr(e)
	case *ast.LambdaExpr:
		ty = r.walkLambdaExpr(e)
	case *ast.Subscript:
		ty = r.walkSubscript(e)
	case *ast.Compare:
		ty = r.walkCompare(e)
	case *ast.NumberLit:
		ty = r.walkNumberLit(e)
	case *ast.StringLit:
		ty = types.NewStrLit(e.Value)
	case *ast.NameConstantLit:
		ty = nameConstantTy(e.Value)
	case *ast.JoinedString:
		ty = r.walkJoinedString(e)
	case *ast.FormattedValue:
		ty = r.walkFormattedValue(e)
	case *ast.MissingExpr:
		ty = types.Any
	default:
		failed.Bug("unexpected expression %T", expr)
		ty = types.Any
	}
	r.setNodeType(expr, ty)
	return ty
}

// walkIdentifier resolves an identifier reference or declaration. The
// identifier's own context decides whether it reads or writes.
func (r *Resolver) walkIdentifier(ident *ast.Identifier) types.Type {
	r.ctx.lValue = ident.Ctx == ast.ExprContextStore
	names := make([]string, 0, len(ident.Names))
	for _, name := range ident.Names {
		names = append(names, name.Value)
	}
	tys := r.resolveVar(names, identPkgpath(ident), ident)
	r.ctx.lValue = false
	for i, name := range ident.Names {
		if i < len(tys) {
			r.setNodeType(name, tys[i])
		}
	}
	ty := tys[len(tys)-1]
	r.setNodeType(ident, ty)
	return ty
}

func identPkgpath(ident *ast.Identifier) string {
	return ident.Pkgpath
}

func (r *Resolver) walkIfExpr(ifExpr *ast.IfExpr) types.Type {
	r.expr(ifExpr.Cond)
	bodyTy := r.expr(ifExpr.Body)
	orelseTy := r.expr(ifExpr.Orelse)
	return types.Sup([]types.Type{bodyTy, orelseTy})
}

func (r *Resolver) walkSelectorExpr(selectorExpr *ast.SelectorExpr) types.Type {
	ty := r.expr(selectorExpr.Value)
	if _, isModule := ty.(*types.Module); isModule && selectorExpr.HasQuestion {
		r.handler.AddCompileError(selectorExpr,
			"For the module type, the use of '?.%v' is unnecessary and it can be modified as '.%v'",
			selectorExpr.Attr.GetName(), selectorExpr.Attr.GetName())
	}
	for _, name := range selectorExpr.Attr.Names {
		ty = r.loadAttr(ty, name.Value, selectorExpr)
		r.setNodeType(name, ty)
	}
	return ty
}

func (r *Resolver) walkCallExpr(callExpr *ast.CallExpr) types.Type {
	funcTy := r.expr(callExpr.Func)
	switch ty := funcTy.(type) {
	case *types.Function:
		r.doArgumentsTypeCheck(callExpr.Func, callExpr.Args, callExpr.Keywords, ty)
		return ty.Return
	case *types.SchemaType:
		if ty.IsInstance {
			r.handler.AddCompileError(callExpr, "schema '%v' instance is not callable", ty.Name)
			return types.Any
		}
		r.doArgumentsTypeCheck(callExpr.Func, callExpr.Args, callExpr.Keywords, ty.Func)
		return ty.Instance()
	default:
		if types.IsAny(funcTy) {
			r.exprs(callExpr.Args)
			for _, keyword := range callExpr.Keywords {
				r.exprOrAny(keyword.Value)
			}
			return types.Any
		}
		r.handler.AddCompileError(callExpr, "'%v' object is not callable", funcTy.TypeString())
		return types.Any
	}
}

func (r *Resolver) walkQuantExpr(quantExpr *ast.QuantExpr) types.Type {
	savedLocals := r.ctx.localVars
	r.enterScope(quantExpr.Pos(), quantExpr.End(), ScopeLoop)
	defer func() {
		r.leaveScope()
		r.ctx.localVars = savedLocals
	}()
	targets := r.checkLoopVariables(quantExpr.Variables, quantExpr)
	iterTy := r.expr(quantExpr.Target)
	r.doLoopTypeCheck(targets, quantExpr.Target, iterTy)
	for _, target := range targets {
		r.ctx.localVars = append(r.ctx.localVars, target.GetName())
	}
	testTy := r.exprOrAny(quantExpr.Test)
	if quantExpr.IfCond != nil {
		r.expr(quantExpr.IfCond)
	}
	switch quantExpr.Op {
	case ast.QuantOpAll, ast.QuantOpAny:
		return types.Bool
	case ast.QuantOpFilter:
		return iterTy
	case ast.QuantOpMap:
		return types.NewList(testTy)
	default:
		return types.Any
	}
}

// checkLoopVariables rejects dotted and surplus loop variables and
// returns the usable ones.
func (r *Resolver) checkLoopVariables(variables []*ast.Identifier, pos ast.Positioner) []*ast.Identifier {
	valid := make([]*ast.Identifier, 0, len(variables))
	for _, variable := range variables {
		if len(variable.Names) != 1 {
			r.handler.AddCompileError(variable, "loop variables can only be ordinary identifiers")
			continue
		}
		valid = append(valid, variable)
	}
	if len(valid) < 1 || len(valid) > 2 {
		r.handler.AddCompileError(pos,
			"the number of loop variables is %v, which can only be 1 or 2", len(valid))
		if len(valid) > 2 {
			valid = valid[:2]
		}
	}
	return valid
}

func (r *Resolver) walkListExpr(listExpr *ast.ListExpr) types.Type {
	switched := r.switchListExprContext()
	eltTypes := r.exprs(listExpr.Elts)
	if switched {
		r.restoreConfigExprContext()
	}
	eltTy := types.Sup(eltTypes)
	if types.IsVoid(eltTy) {
		eltTy = types.Any
	}
	return types.NewList(eltTy)
}

func (r *Resolver) walkListIfItemExpr(listIfItemExpr *ast.ListIfItemExpr) types.Type {
	r.expr(listIfItemExpr.IfCond)
	tys := r.exprs(listIfItemExpr.Exprs)
	if listIfItemExpr.Orelse != nil {
		tys = append(tys, r.expr(listIfItemExpr.Orelse))
	}
	ty := types.Sup(tys)
	if types.IsVoid(ty) {
		return types.Any
	}
	return ty
}

func (r *Resolver) walkStarredExpr(starredExpr *ast.StarredExpr) types.Type {
	valueTy := r.expr(starredExpr.Value)
	switch ty := valueTy.(type) {
	case *types.List:
		return ty.Elem
	case *types.Dict:
		return ty.Key
	case *types.SchemaType:
		return ty.KeyTy()
	default:
		if types.IsAny(valueTy) {
			return types.Any
		}
		r.handler.AddCompileError(starredExpr,
			"only list, dict, schema object can be used * unpacked, got %v", valueTy.TypeString())
		return types.Any
	}
}

func (r *Resolver) walkListComp(listComp *ast.ListComp) types.Type {
	savedLocals := r.ctx.localVars
	r.enterScope(listComp.Pos(), listComp.End(), ScopeLoop)
	defer func() {
		r.leaveScope()
		r.ctx.localVars = savedLocals
	}()
	for _, generator := range listComp.Generators {
		r.walkCompClause(generator)
	}
	if _, isStarred := listComp.Elt.(*ast.StarredExpr); isStarred {
		r.handler.AddCompileError(listComp.Elt, "list unpacking cannot be used in list comprehension")
	}
	eltTy := r.expr(listComp.Elt)
	return types.NewList(eltTy)
}

func (r *Resolver) walkDictComp(dictComp *ast.DictComp) types.Type {
	savedLocals := r.ctx.localVars
	r.enterScope(dictComp.Pos(), dictComp.End(), ScopeLoop)
	defer func() {
		r.leaveScope()
		r.ctx.localVars = savedLocals
	}()
	for _, generator := range dictComp.Generators {
		r.walkCompClause(generator)
	}
	entry := dictComp.Entry
	if entry.Key == nil {
		r.handler.AddCompileError(dictComp, "dict unpacking cannot be used in dict comprehension")
		r.exprOrAny(entry.Value)
		return types.NewDict(types.Any, types.Any)
	}
	keyTy := r.expr(entry.Key)
	if !types.IsKey(keyTy) {
		r.checkAttrTy(keyTy, entry.Key)
	}
	valTy := r.expr(entry.Value)
	return types.NewDict(keyTy, valTy)
}

func (r *Resolver) walkCompClause(compClause *ast.CompClause) {
	targets := r.checkLoopVariables(compClause.Targets, compClause)
	iterTy := r.expr(compClause.Iter)
	r.doLoopTypeCheck(targets, compClause.Iter, iterTy)
	for _, target := range targets {
		r.ctx.localVars = append(r.ctx.localVars, target.GetName())
	}
	for _, ifExpr := range compClause.Ifs {
		r.expr(ifExpr)
	}
}

func (r *Resolver) walkSchemaExpr(schemaExpr *ast.SchemaExpr) types.Type {
	defTy := r.walkIdentifier(schemaExpr.Name)
	configExpr, isConfig := schemaExpr.Config.(*ast.ConfigExpr)
	if !isConfig {
		r.handler.AddCompileError(schemaExpr.Config,
			"Invalid schema config expr, expect config entries, e.g., {k1 = v1, k2 = v2}")
		r.exprOrAny(schemaExpr.Config)
		return types.Any
	}
	switch ty := defTy.(type) {
	case *types.Dict:
		configTy := r.expr(configExpr)
		return r.binary(ty, configTy, ast.BinOpBitOr, schemaExpr)
	case *types.SchemaType:
		r.switchConfigExprContext(newConfigExprContextItem(ty.Name, ty, schemaExpr.Name))
		r.expr(configExpr)
		r.restoreConfigExprContext()
		if ty.IsInstance {
			if len(schemaExpr.Args) > 0 || len(schemaExpr.Kwargs) > 0 {
				r.handler.AddCompileError(schemaExpr,
					"Arguments cannot be used in the schema modification expression")
			}
			return ty
		}
		r.doArgumentsTypeCheck(schemaExpr.Name, schemaExpr.Args, schemaExpr.Kwargs, ty.Func)
		return ty.Instance()
	default:
		if types.IsAny(defTy) {
			r.expr(configExpr)
			return types.Any
		}
		r.handler.AddCompileError(schemaExpr.Name, "Invalid schema type '%v'", defTy.TypeString())
		r.expr(configExpr)
		return types.Any
	}
}

func (r *Resolver) walkConfigIfEntryExpr(configIfEntryExpr *ast.ConfigIfEntryExpr) types.Type {
	r.expr(configIfEntryExpr.IfCond)
	dictTy := r.walkConfigEntries(configIfEntryExpr.Items)
	if configIfEntryExpr.Orelse == nil {
		return dictTy
	}
	orelseTy := r.expr(configIfEntryExpr.Orelse)
	return types.Sup([]types.Type{dictTy, orelseTy})
}

func (r *Resolver) walkCheckExpr(checkExpr *ast.CheckExpr) types.Type {
	r.expr(checkExpr.Test)
	if checkExpr.IfCond != nil {
		r.expr(checkExpr.IfCond)
	}
	if checkExpr.Msg != nil {
		r.mustBeType(checkExpr.Msg, types.Str)
	}
	return types.Any
}

func (r *Resolver) walkLambdaExpr(lambdaExpr *ast.LambdaExpr) types.Type {
	r.ctx.inLambdaExpr.Push(true)
	r.enterScope(lambdaExpr.Pos(), lambdaExpr.End(), ScopeLambda)
	defer func() {
		r.leaveScope()
		r.ctx.inLambdaExpr.Pop()
	}()
	r.doParametersCheck(lambdaExpr.Args)
	var params []types.Parameter
	if args := lambdaExpr.Args; args != nil {
		for i, param := range args.Args {
			paramName := param.GetName()
			ty := r.parseTyWithScope(args.ArgType(i), param)
			if paramTy, isSchema := ty.(*types.SchemaType); isSchema {
				ty = paramTy.Instance()
			}
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
			params = append(params, types.Parameter{
				Name:       paramName,
				Ty:         ty,
				HasDefault: args.ArgDefault(i) != nil,
			})
		}
	}
	inferredTy := types.Type(types.Any)
	for i, stmt := range lambdaExpr.Body {
		ty := r.stmt(stmt)
		if i == len(lambdaExpr.Body)-1 {
			switch stmt.(type) {
			case *ast.ExprStmt, *ast.AssignStmt, *ast.AugAssignStmt, *ast.AssertStmt:
				inferredTy = ty
			default:
				r.handler.AddCompileError(stmt,
					"The last statement of the lambda body must be a expression e.g., x, 1, etc.")
			}
		}
	}
	returnTy := inferredTy
	if lambdaExpr.ReturnTy != "" {
		returnTy = r.parseTyWithScope(lambdaExpr.ReturnTy, lambdaExpr)
		r.mustAssignableTo(inferredTy, returnTy, lambdaExpr, nil)
	}
	return &types.Function{Params: params, Return: returnTy, KwOnlyIndex: -1}
}

func (r *Resolver) walkSubscript(subscript *ast.Subscript) types.Type {
	valueTy := r.expr(subscript.Value)
	if subscript.Index != nil {
		r.expr(subscript.Index)
	}
	for _, bound := range []ast.Expr{subscript.Lower, subscript.Upper, subscript.Step} {
		if bound != nil {
			r.mustBeType(bound, types.Int)
		}
	}
	switch ty := valueTy.(type) {
	case *types.Basic:
		if types.IsAny(valueTy) {
			return types.Any
		}
		if types.IsStr(valueTy) {
			if subscript.HasSlice() {
				return types.Str
			}
			r.checkSubscriptIndex(subscript.Index)
			return types.Str
		}
	case *types.StrLit:
		if subscript.HasSlice() {
			return types.Str
		}
		r.checkSubscriptIndex(subscript.Index)
		return types.Str
	case *types.List:
		if subscript.HasSlice() {
			return ty
		}
		r.checkSubscriptIndex(subscript.Index)
		return ty.Elem
	case *types.Dict:
		if subscript.HasSlice() {
			r.handler.AddTypeError(subscript, "unhashable type: 'slice'")
			return types.Any
		}
		return r.configSubscriptTy(subscript, valueTy, ty.Val)
	case *types.SchemaType:
		if subscript.HasSlice() {
			r.handler.AddTypeError(subscript, "unhashable type: 'slice'")
			return types.Any
		}
		return r.configSubscriptTy(subscript, valueTy, ty.ValTy())
	}
	r.handler.AddCompileError(subscript, "'%v' object is not subscriptable", valueTy.TypeString())
	return types.Any
}

// checkSubscriptIndex requires an int index on sequence types.
func (r *Resolver) checkSubscriptIndex(index ast.Expr) {
	if index == nil {
		return
	}
	indexTy := r.nodeTypeMap[index]
	if indexTy == nil {
		indexTy = r.expr(index)
	}
	if !types.IsInt(indexTy) && !types.IsAny(indexTy) {
		r.handler.AddTypeError(index, "expected int, got %v", indexTy.TypeString())
	}
}

// configSubscriptTy types dict and schema indexing. A string literal
// index resolves through attribute lookup, other key types fall back
// to the value type.
func (r *Resolver) configSubscriptTy(subscript *ast.Subscript, valueTy types.Type, valTy types.Type) types.Type {
	indexTy := r.nodeTypeMap[subscript.Index]
	if indexTy == nil {
		indexTy = r.expr(subscript.Index)
	}
	if strLit, ok := indexTy.(*types.StrLit); ok {
		return r.loadAttr(valueTy, strLit.Value, subscript)
	}
	if !types.IsStr(indexTy) && !types.IsAny(indexTy) {
		r.handler.AddTypeError(subscript.Index, "invalid dict/schema key type: '%v'", indexTy.TypeString())
		return types.Any
	}
	return valTy
}

func (r *Resolver) walkCompare(compare *ast.Compare) types.Type {
	leftTy := r.expr(compare.Left)
	for i, comparator := range compare.Comparators {
		rightTy := r.expr(comparator)
		if i < len(compare.Ops) {
			r.compare(leftTy, rightTy, compare.Ops[i], comparator)
		}
		leftTy = rightTy
	}
	return types.Bool
}

func (r *Resolver) walkNumberLit(numberLit *ast.NumberLit) types.Type {
	if numberLit.BinarySuffix != "" {
		if numberLit.IsFloat {
			r.handler.AddCompileError(numberLit, "float literal can not be followed the unit suffix")
			return types.NewFloatLit(numberLit.FloatValue)
		}
		value := types.CalNum(numberLit.IntValue, numberLit.BinarySuffix)
		return types.NewNumberMultiplier(value, numberLit.IntValue, numberLit.BinarySuffix)
	}
	if numberLit.IsFloat {
		return types.NewFloatLit(numberLit.FloatValue)
	}
	return types.NewIntLit(numberLit.IntValue)
}

func nameConstantTy(value ast.NameConstant) types.Type {
	switch value {
	case ast.NameConstantTrue:
		return types.NewBoolLit(true)
	case ast.NameConstantFalse:
		return types.NewBoolLit(false)
	default:
		return types.None
	}
}

func (r *Resolver) walkJoinedString(joinedString *ast.JoinedString) types.Type {
	for _, value := range joinedString.Values {
		r.expr(value)
	}
	return types.Str
}

func (r *Resolver) walkFormattedValue(formattedValue *ast.FormattedValue) types.Type {
	r.expr(formattedValue.Value)
	if spec := formattedValue.FormatSpec; spec != "" && !validFormatSpecs[strings.ToLower(spec)] {
		r.handler.AddCompileError(formattedValue, "%v is a invalid format spec", spec)
	}
	return types.Str
}

// checkAssignmentTypeAnnotation verifies and applies the annotation of
// an assignment against an earlier declaration of the same name.
func (r *Resolver) checkAssignmentTypeAnnotation(name string, expectedTy types.Type, pos ast.Positioner) {
	obj, ok := r.scope.Lookup(name)
	if !ok {
		return
	}
	if !types.IsAny(obj.Ty) && !types.IsUpperBound(obj.Ty, expectedTy) && !types.Equal(obj.Ty, expectedTy) {
		r.handler.AddError(failed.TypeError,
			failed.Message{
				Positioner: pos,
				Text:       "can not change the type of '" + name + "' to " + expectedTy.TypeString(),
			},
			failed.Message{
				Positioner: ast.Range{PosStart: obj.Start, PosEnd: obj.End},
				Text:       "expect " + obj.Ty.TypeString(),
			})
		return
	}
	obj.Ty = expectedTy
}
