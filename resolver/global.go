package resolver

import (
	"fmt"
	"strings"

	"github.com/kcl-lang/kcl-sub002/ast"
	"github.com/kcl-lang/kcl-sub002/failed"
	"github.com/kcl-lang/kcl-sub002/types"
	"github.com/kcl-lang/kcl-sub002/util"
)

// MaxScopeScanCount is how many passes the global type builder makes
// over the schema statements. Schemas may reference each other
// backwards, so bodies are rebuilt until the types are stable; three
// passes pin down every chain the language can express.
const MaxScopeScanCount = 3

const (
	MixinSuffix    = "Mixin"
	ProtocolSuffix = "Protocol"
)

// isMixinSchema reports the effective mixin flag. The Mixin naming
// suffix forces the flag even without the declaration keyword;
// protocols are exempt from the convention.
func isMixinSchema(schemaStmt *ast.SchemaStmt) bool {
	if schemaStmt.IsProtocol {
		return schemaStmt.IsMixin
	}
	return schemaStmt.IsMixin || strings.HasSuffix(schemaStmt.Name.Value, MixinSuffix)
}

// isPrivateField reports whether a name is package private and so may
// be redeclared.
func isPrivateField(name string) bool {
	return strings.HasPrefix(name, "_")
}

// initGlobalTypes builds the top level types of the current package:
// first the schema and rule shells, then the global variables, then
// the schema bodies over MaxScopeScanCount passes.
func (r *Resolver) initGlobalTypes() {
	modules, ok := r.program.Pkgs[r.ctx.pkgpath]
	if !ok {
		return
	}
	// Pass 1: declare every schema and rule as an empty shell so that
	// forward references resolve.
	for _, module := range modules {
		pkgpath := r.ctx.pkgpath
		r.changePackageContext(pkgpath, module.Filename)
		for _, stmt := range module.Body {
			var name, doc string
			var isMixin, isProtocol, isRule bool
			switch s := stmt.(type) {
			case *ast.SchemaStmt:
				name, doc = s.Name.Value, s.Doc
				isMixin, isProtocol = isMixinSchema(s), s.IsProtocol
			case *ast.RuleStmt:
				name, doc = s.Name.Value, s.Doc
				isRule = true
			default:
				continue
			}
			if r.containsObject(name) {
				r.handler.AddError(failed.UniqueKeyError, failed.Message{
					Positioner: stmt,
					Text:       "unique key error name '" + name + "'",
				})
				continue
			}
			schemaTy := types.NewSchemaType(name, r.ctx.pkgpath, r.ctx.filename)
			schemaTy.Doc = doc
			schemaTy.IsMixin = isMixin
			schemaTy.IsProtocol = isProtocol
			schemaTy.IsRule = isRule
			r.insertObject(name, &ScopeObject{
				Name:  name,
				Start: stmt.Pos(),
				End:   stmt.End(),
				Ty:    schemaTy,
				Kind:  KindDefinition,
			})
		}
	}
	// Pass 2: scan the global variable names with the unique check on.
	r.initGlobalVarTypes(true)
	// Pass 3: build the schema bodies repeatedly until references
	// across schemas settle.
	for i := 0; i < MaxScopeScanCount; i++ {
		lastPass := i == MaxScopeScanCount-1
		for _, module := range modules {
			pkgpath := r.ctx.pkgpath
			r.changePackageContext(pkgpath, module.Filename)
			for _, stmt := range module.Body {
				var schemaTy *types.SchemaType
				switch s := stmt.(type) {
				case *ast.SchemaStmt:
					parentTy := r.buildSchemaParentType(s)
					protocolTy := r.buildSchemaProtocolType(s)
					schemaTy = r.buildSchemaType(s, parentTy, protocolTy, lastPass)
				case *ast.RuleStmt:
					protocolTy := r.buildRuleProtocolType(s)
					schemaTy = r.buildRuleType(s, protocolTy, lastPass)
				default:
					continue
				}
				r.insertObject(schemaTy.Name, &ScopeObject{
					Name:  schemaTy.Name,
					Start: stmt.Pos(),
					End:   stmt.End(),
					Ty:    schemaTy,
					Kind:  KindDefinition,
				})
			}
		}
	}
	// Final variable pass with the settled schema types.
	r.initGlobalVarTypes(false)
}

// initGlobalVarTypes declares the top level variables of the package.
// With uniqueCheck set, redeclaring a public name is an error.
func (r *Resolver) initGlobalVarTypes(uniqueCheck bool) {
	modules, ok := r.program.Pkgs[r.ctx.pkgpath]
	if !ok {
		r.handler.AddError(failed.CannotFindModule, failed.Message{
			Positioner: ast.Range{PosStart: ast.Pos{Filename: r.ctx.filename, Line: 1}},
			Text:       fmt.Sprintf("pkgpath %v not found in the program", r.ctx.pkgpath),
		})
		return
	}
	for _, module := range modules {
		r.ctx.filename = module.Filename
		for _, stmt := range module.Body {
			if _, ok := stmt.(*ast.TypeAliasStmt); ok {
				r.stmt(stmt)
			}
		}
		r.initScopeWithStmts(module.Body, uniqueCheck)
	}
}

func (r *Resolver) initScopeWithStmts(stmts []ast.Stmt, uniqueCheck bool) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.AssignStmt:
			r.initScopeWithAssignStmt(s, uniqueCheck)
		case *ast.UnificationStmt:
			r.initScopeWithUnificationStmt(s, uniqueCheck)
		case *ast.IfStmt:
			r.initScopeWithStmts(s.Body, uniqueCheck)
			r.initScopeWithStmts(s.Orelse, uniqueCheck)
		}
	}
}

func (r *Resolver) initScopeWithAssignStmt(assignStmt *ast.AssignStmt, uniqueCheck bool) {
	for _, target := range assignStmt.Targets {
		if len(target.Names) == 0 {
			continue
		}
		name := target.Names[0].Value
		if r.containsObject(name) && !isPrivateField(name) && uniqueCheck {
			r.reportImmutable(name, target)
			continue
		}
		if uniqueCheck && !r.containsGlobalName(name) {
			r.insertGlobalName(name, target)
		}
		var ty types.Type
		if assignStmt.Ty != "" {
			ty = r.parseTyWithScope(assignStmt.Ty, target)
			if obj, ok := r.scope.Elems.Get(name); ok && !types.IsUpperBound(obj.Ty, ty) {
				r.handler.AddError(failed.TypeError,
					failed.Message{
						Positioner: target,
						Text:       fmt.Sprintf("can not change the type of '%v' to %v", name, obj.Ty.TypeString()),
					},
					failed.Message{
						Positioner: ast.Range{PosStart: obj.Start, PosEnd: obj.End},
						Text:       "expect " + obj.Ty.TypeString(),
					})
			}
		} else if obj, ok := r.scope.Elems.Get(name); ok {
			ty = obj.Ty
		} else {
			ty = types.Any
		}
		r.insertObject(name, &ScopeObject{
			Name:  name,
			Start: target.Pos(),
			End:   target.End(),
			Ty:    ty,
			Kind:  KindVariable,
		})
	}
}

func (r *Resolver) initScopeWithUnificationStmt(unificationStmt *ast.UnificationStmt, uniqueCheck bool) {
	target := unificationStmt.Target
	if len(target.Names) == 0 {
		return
	}
	name := target.Names[0].Value
	if r.containsObject(name) && !isPrivateField(name) && uniqueCheck {
		r.reportImmutable(name, target)
		return
	}
	if uniqueCheck && !r.containsGlobalName(name) {
		r.insertGlobalName(name, target)
	}
	ty := r.walkIdentifier(unificationStmt.Value.Name)
	r.insertObject(name, &ScopeObject{
		Name:  name,
		Start: target.Pos(),
		End:   target.End(),
		Ty:    ty,
		Kind:  KindVariable,
	})
}

func (r *Resolver) reportImmutable(name string, pos ast.Positioner) {
	msgs := []failed.Message{{
		Positioner: pos,
		Text:       fmt.Sprintf("Can not change the value of '%v', because it was declared immutable", name),
	}}
	if obj, ok := r.scope.Elems.Get(name); ok {
		msgs = append(msgs, failed.Message{
			Positioner:  ast.Range{PosStart: obj.Start, PosEnd: obj.End},
			Text:        fmt.Sprintf("The variable '%v' is declared here firstly", name),
			Suggestions: []string{"_" + name},
		})
	}
	r.handler.AddError(failed.ImmutableError, msgs...)
}

func (r *Resolver) buildRuleProtocolType(ruleStmt *ast.RuleStmt) *types.SchemaType {
	if ruleStmt.ForHostName == nil {
		return nil
	}
	ty := r.walkIdentifier(ruleStmt.ForHostName)
	if schemaTy, ok := ty.(*types.SchemaType); ok && schemaTy.IsProtocol && !schemaTy.IsInstance {
		return schemaTy
	}
	r.handler.AddError(failed.IllegalInheritError, failed.Message{
		Positioner: ruleStmt.ForHostName,
		Text:       fmt.Sprintf("invalid schema inherit object type, expect protocol, got '%v'", ty.TypeString()),
	})
	return nil
}

func (r *Resolver) buildSchemaProtocolType(schemaStmt *ast.SchemaStmt) *types.SchemaType {
	if schemaStmt.ForHostName == nil {
		return nil
	}
	if !isMixinSchema(schemaStmt) {
		r.handler.AddError(failed.IllegalInheritError, failed.Message{
			Positioner: schemaStmt.ForHostName,
			Text:       "only schema mixin can inherit from protocol",
		})
		return nil
	}
	ty := r.walkIdentifier(schemaStmt.ForHostName)
	if schemaTy, ok := ty.(*types.SchemaType); ok && schemaTy.IsProtocol && !schemaTy.IsInstance {
		return schemaTy
	}
	r.handler.AddError(failed.IllegalInheritError, failed.Message{
		Positioner: schemaStmt.ForHostName,
		Text:       fmt.Sprintf("invalid schema inherit object type, expect protocol, got '%v'", ty.TypeString()),
	})
	return nil
}

func (r *Resolver) buildSchemaParentType(schemaStmt *ast.SchemaStmt) *types.SchemaType {
	if schemaStmt.ParentName == nil {
		return nil
	}
	ty := r.walkIdentifier(schemaStmt.ParentName)
	if schemaTy, ok := ty.(*types.SchemaType); ok &&
		!schemaTy.IsProtocol && !schemaTy.IsMixin && !schemaTy.IsInstance {
		return schemaTy
	}
	r.handler.AddError(failed.IllegalInheritError, failed.Message{
		Positioner: schemaStmt.ParentName,
		Text:       fmt.Sprintf("invalid schema inherit object type, expect schema, got '%v'", ty.TypeString()),
	})
	return nil
}

// schemaLeftNames collects the attribute names a schema body declares,
// including assignments nested in if statements.
func schemaLeftNames(body []ast.Stmt) []*ast.Name {
	var names []*ast.Name
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *ast.SchemaAttr:
			names = append(names, s.Name)
		case *ast.AssignStmt:
			for _, target := range s.Targets {
				if len(target.Names) > 0 {
					names = append(names, target.Names[0])
				}
			}
		case *ast.UnificationStmt:
			if len(s.Target.Names) > 0 {
				names = append(names, s.Target.Names[0])
			}
		case *ast.IfStmt:
			names = append(names, schemaLeftNames(s.Body)...)
			names = append(names, schemaLeftNames(s.Orelse)...)
		}
	}
	return names
}

func containsName(names []*ast.Name, name string) bool {
	for _, n := range names {
		if n.Value == name {
			return true
		}
	}
	return false
}

func hasOnlyAttributeDefinitions(schemaStmt *ast.SchemaStmt) bool {
	if schemaStmt.Args != nil && len(schemaStmt.Args.Args) > 0 {
		return false
	}
	if len(schemaStmt.Mixins) > 0 || len(schemaStmt.Checks) > 0 || schemaStmt.IndexSignature != nil {
		return false
	}
	for _, stmt := range schemaStmt.Body {
		if _, ok := stmt.(*ast.SchemaAttr); !ok {
			return false
		}
	}
	return true
}

// buildSchemaType fills in one schema type from its statement. It runs
// once per builder pass; dependency edges and registry insertion only
// happen on the last pass so repeated scans stay idempotent.
func (r *Resolver) buildSchemaType(schemaStmt *ast.SchemaStmt, parentTy, protocolTy *types.SchemaType, lastPass bool) *types.SchemaType {
	name := schemaStmt.Name.Value
	pos := schemaStmt.Name
	isMixin := isMixinSchema(schemaStmt)
	for _, reserved := range types.ReservedTypeIdentifiers {
		if name == reserved {
			r.handler.AddCompileError(pos,
				"schema name '%v' cannot be the same as the built-in types (%v)",
				name, strings.Join(types.ReservedTypeIdentifiers, ", "))
		}
	}
	if schemaStmt.IsProtocol && !strings.HasSuffix(name, ProtocolSuffix) {
		r.handler.AddCompileError(pos, "schema protocol name must end with '%v'", ProtocolSuffix)
	}
	if schemaStmt.IsProtocol && !hasOnlyAttributeDefinitions(schemaStmt) {
		r.handler.AddCompileError(pos, "a protocol is only allowed to define attributes in it")
	}
	// The mixin flag and the Mixin naming convention must agree; a
	// mismatch in either direction is reported once, on the last pass.
	if lastPass {
		mixinByName := strings.HasSuffix(name, MixinSuffix)
		if schemaStmt.IsMixin && !mixinByName {
			r.handler.AddWarning(failed.SchemaFlagMismatchWarning, failed.Message{
				Positioner: pos,
				Text:       fmt.Sprintf("schema '%v' is declared as a mixin but its name does not end with '%v'", name, MixinSuffix),
			})
		}
		if !schemaStmt.IsMixin && !schemaStmt.IsProtocol && mixinByName {
			r.handler.AddWarning(failed.SchemaFlagMismatchWarning, failed.Message{
				Positioner: pos,
				Text:       fmt.Sprintf("schema '%v' is named like a mixin but is not declared as one", name),
			})
		}
	}
	if parentTy != nil && strings.HasSuffix(parentTy.Name, MixinSuffix) {
		r.handler.AddError(failed.IllegalInheritError, failed.Message{
			Positioner: pos,
			Text:       fmt.Sprintf("mixin inheritance %v is prohibited", parentTy.Name),
		})
	}
	attrNames := schemaLeftNames(schemaStmt.Body)

	var indexSignature *types.SchemaIndexSignature
	if node := schemaStmt.IndexSignature; node != nil {
		if node.KeyName != "" && containsName(attrNames, node.KeyName) {
			r.handler.AddError(failed.IndexSignatureError, failed.Message{
				Positioner: node,
				Text:       fmt.Sprintf("index signature attribute name '%v' cannot have the same name as schema attributes", node.KeyName),
			})
		}
		keyTy := r.parseTyStrWithScope(node.KeyTy, node)
		valTy := r.parseTyWithScope(node.ValTy, node)
		if !r.tyCtx.IsStrOrStrUnion(keyTy) {
			r.handler.AddError(failed.IndexSignatureError, failed.Message{
				Positioner: node,
				Text:       fmt.Sprintf("invalid index signature key type: '%v'", keyTy.TypeString()),
			})
		}
		indexSignature = &types.SchemaIndexSignature{
			KeyName:  node.KeyName,
			KeyTy:    keyTy,
			ValTy:    valTy,
			AnyOther: node.AnyOther,
		}
	}

	// Schema attributes, starting with the implicit settings attr.
	attrObjMap := util.NewOrderedMap[string, *types.SchemaAttr]()
	attrObjMap.Set(types.SettingsAttrName, &types.SchemaAttr{
		IsOptional: true,
		Ty:         types.NewDict(types.Str, types.Any),
		Pos:        schemaStmt.Name.Pos(),
	})
	for _, stmt := range schemaStmt.Body {
		var attrName string
		var ty types.Type
		var isOptional, hasDefault bool
		var decorators []*types.Decorator
		var attrDoc string
		switch s := stmt.(type) {
		case *ast.UnificationStmt:
			schemaName := s.Value.Name.GetName()
			ty = r.parseTyStrWithScope(schemaName, stmt)
			attrName = s.Target.GetName()
			isOptional = true
			hasDefault = true
		case *ast.SchemaAttr:
			attrName = s.Name.Value
			ty = r.parseTyWithScope(s.Ty, s.Name)
			isOptional = s.IsOptional
			hasDefault = s.Value != nil
			attrDoc = s.Doc
			if lastPass {
				decorators = r.resolveDecorators(s.Decorators, attrName)
			}
		default:
			continue
		}
		baseAttrTy := types.Type(types.Any)
		if parentTy != nil {
			if attr, ok := parentTy.AttrObj(attrName); ok {
				baseAttrTy = attr.Ty
			}
		}
		if !attrObjMap.Has(attrName) {
			optional := isOptional
			if parentTy != nil {
				if existed, ok := parentTy.AttrObj(attrName); ok {
					optional = existed.IsOptional
				}
			}
			attrObjMap.Set(attrName, &types.SchemaAttr{
				IsOptional: optional,
				HasDefault: hasDefault,
				Ty:         ty,
				Pos:        stmt.Pos(),
				Doc:        attrDoc,
				Decorators: decorators,
			})
		}
		declared, _ := attrObjMap.Get(attrName)
		if !types.IsUpperBound(declared.Ty, ty) || !types.IsUpperBound(baseAttrTy, ty) {
			r.handler.AddTypeError(stmt, "can't change schema field type of '%v' from %v to %v",
				attrName, declared.Ty.TypeString(), ty.TypeString())
		}
		if isOptional && !declared.IsOptional {
			r.handler.AddTypeError(stmt, "can't change the required schema attribute of '%v' to optional", attrName)
		}
		if indexSignature != nil && !indexSignature.AnyOther && !types.IsUpperBound(indexSignature.ValTy, ty) {
			r.handler.AddError(failed.IndexSignatureError, failed.Message{
				Positioner: stmt,
				Text: fmt.Sprintf("the type '%v' of schema attribute '%v' does not meet the index signature definition %v",
					ty.TypeString(), attrName, indexSignature.TypeString()),
			})
		}
	}

	// Mixins contribute their attributes unless overridden.
	var mixinTypes []*types.SchemaType
	for _, mixin := range schemaStmt.Mixins {
		mixinNames := mixin.Names
		lastName := mixinNames[len(mixinNames)-1].Value
		if !strings.HasSuffix(lastName, MixinSuffix) {
			r.handler.AddError(failed.NameError, failed.Message{
				Positioner: pos,
				Text:       fmt.Sprintf("a valid mixin name should end with 'Mixin', got '%v'", lastName),
			})
		}
		ty := r.walkIdentifier(mixin)
		mixinTy, ok := ty.(*types.SchemaType)
		if !ok || mixinTy.IsProtocol || !mixinTy.IsMixin || mixinTy.IsInstance {
			r.handler.AddError(failed.IllegalInheritError, failed.Message{
				Positioner: mixin,
				Text:       fmt.Sprintf("illegal schema mixin object type '%v'", ty.TypeString()),
			})
			continue
		}
		for mixinAttrName, attr := range mixinTy.Attrs.All() {
			if !attrObjMap.Has(mixinAttrName) {
				attrObjMap.Set(mixinAttrName, attr)
			}
		}
		mixinTypes = append(mixinTypes, mixinTy)
	}

	// Constructor parameters.
	var params []types.Parameter
	if args := schemaStmt.Args; args != nil {
		for i, param := range args.Args {
			paramName := param.GetName()
			if containsName(attrNames, paramName) {
				r.handler.AddCompileError(param,
					"Unexpected parameter name '%v' with the same name as the schema attribute", paramName)
			}
			ty := r.parseTyWithScope(args.ArgType(i), param)
			params = append(params, types.Parameter{
				Name:       paramName,
				Ty:         ty,
				HasDefault: args.ArgDefault(i) != nil,
			})
		}
	}

	runtimeKey := types.SchemaRuntimeKey(r.ctx.pkgpath, name)
	if lastPass && parentTy != nil {
		parentKey := types.SchemaRuntimeKey(parentTy.Pkgpath, parentTy.Name)
		r.tyCtx.AddDependency(runtimeKey, parentKey)
		if r.tyCtx.IsCyclic() {
			r.handler.AddError(failed.CycleInheritError, failed.Message{
				Positioner: schemaStmt,
				Text:       fmt.Sprintf("There is a circular reference between schema %v and %v", name, parentTy.Name),
			})
			// Break the base chain so attribute lookups terminate.
			parentTy = nil
		}
	}
	var decorators []*types.Decorator
	if lastPass {
		decorators = r.resolveDecorators(schemaStmt.Decorators, name)
	}

	schemaTy := &types.SchemaType{
		Name:              name,
		Pkgpath:           r.ctx.pkgpath,
		Filename:          r.ctx.filename,
		Doc:               schemaStmt.Doc,
		IsMixin:           isMixin,
		IsProtocol:        schemaStmt.IsProtocol,
		AcceptsUndeclared: isMixin || indexSignature != nil,
		Base:              parentTy,
		Protocol:          protocolTy,
		Mixins:            mixinTypes,
		Attrs:             attrObjMap,
		Func: &types.Function{
			Doc:         schemaStmt.Doc,
			Params:      params,
			Return:      types.Any,
			KwOnlyIndex: -1,
		},
		IndexSignature: indexSignature,
		Decorators:     decorators,
	}
	r.schemaMapping[runtimeKey] = schemaTy
	return schemaTy
}

// buildRuleType fills in one rule type. Rules reuse the schema type
// shape with the rule flag set; their parents act as mixins.
func (r *Resolver) buildRuleType(ruleStmt *ast.RuleStmt, protocolTy *types.SchemaType, lastPass bool) *types.SchemaType {
	name := ruleStmt.Name.Value
	pos := ruleStmt.Name
	for _, reserved := range types.ReservedTypeIdentifiers {
		if name == reserved {
			r.handler.AddCompileError(pos,
				"rule name '%v' cannot be the same as the built-in types (%v)",
				name, strings.Join(types.ReservedTypeIdentifiers, ", "))
		}
	}
	var parentTypes []*types.SchemaType
	for _, rule := range ruleStmt.ParentRules {
		ty := r.walkIdentifier(rule)
		parentTy, ok := ty.(*types.SchemaType)
		if !ok || !parentTy.IsRule || parentTy.IsInstance {
			r.handler.AddError(failed.IllegalInheritError, failed.Message{
				Positioner: rule,
				Text:       fmt.Sprintf("illegal rule type '%v'", ty.TypeString()),
			})
			continue
		}
		parentTypes = append(parentTypes, parentTy)
	}
	var params []types.Parameter
	if args := ruleStmt.Args; args != nil {
		for i, param := range args.Args {
			ty := r.parseTyWithScope(args.ArgType(i), param)
			params = append(params, types.Parameter{
				Name:       param.GetName(),
				Ty:         ty,
				HasDefault: args.ArgDefault(i) != nil,
			})
		}
	}
	if lastPass {
		runtimeKey := types.SchemaRuntimeKey(r.ctx.pkgpath, name)
		for _, parentTy := range parentTypes {
			parentKey := types.SchemaRuntimeKey(parentTy.Pkgpath, parentTy.Name)
			r.tyCtx.AddDependency(runtimeKey, parentKey)
			if r.tyCtx.IsCyclic() {
				r.handler.AddError(failed.CycleInheritError, failed.Message{
					Positioner: ruleStmt,
					Text:       fmt.Sprintf("There is a circular reference between rule %v and %v", name, parentTy.Name),
				})
			}
		}
	}
	var decorators []*types.Decorator
	if lastPass {
		decorators = r.resolveDecorators(ruleStmt.Decorators, name)
	}
	schemaTy := &types.SchemaType{
		Name:              name,
		Pkgpath:           r.ctx.pkgpath,
		Filename:          r.ctx.filename,
		Doc:               ruleStmt.Doc,
		IsRule:            true,
		AcceptsUndeclared: true,
		Protocol:          protocolTy,
		Mixins:            parentTypes,
		Attrs:             util.NewOrderedMap[string, *types.SchemaAttr](),
		Func: &types.Function{
			Doc:         ruleStmt.Doc,
			Params:      params,
			Return:      types.Any,
			KwOnlyIndex: -1,
		},
		Decorators: decorators,
	}
	if lastPass {
		r.schemaMapping[schemaTy.RuntimeKey()] = schemaTy
	}
	return schemaTy
}
