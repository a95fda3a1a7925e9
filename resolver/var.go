package resolver

import (
	"github.com/kcl-lang/kcl-sub002/ast"
	"github.com/kcl-lang/kcl-sub002/failed"
	"github.com/kcl-lang/kcl-sub002/types"
)

// resolveVar resolves a possibly dotted name to the types of each of
// its segments. The last element is the type of the whole reference.
//
// Inside a schema body a bare name resolves against the loop locals
// first, then the schema attributes, then the enclosing scopes. On the
// left of an assignment unknown names are declared on the fly.
func (r *Resolver) resolveVar(names []string, pkgpath string, pos ast.Positioner) []types.Type {
	if len(names) == 0 {
		r.handler.AddCompileError(pos, "missing variable")
		return []types.Type{types.Any}
	}
	if pkgpath != "" && r.ctx.lValue {
		r.handler.AddCompileError(pos, "only schema and dict object can be updated attribute")
	}
	if len(names) == 1 {
		return []types.Type{r.resolveSingleVar(names[0], pos)}
	}

	// Mark the imported module object used; search the whole scope
	// chain since child scopes do not hold module objects.
	if pkgpath != "" {
		if obj, ok := r.scope.Lookup(pkgpath); ok {
			obj.Used = true
		}
	}
	first := names[0]
	if pkgpath != "" {
		first = pkgpath
	}
	tys := make([]types.Type, 0, len(names))
	ty := r.resolveSingleVar(first, pos)
	tys = append(tys, ty)
	for _, name := range names[1:] {
		if r.ctx.lValue {
			if schemaTy, ok := ty.(*types.SchemaType); ok {
				r.checkConfigAttr(name, pos, schemaTy)
			}
		}
		ty = r.loadAttr(ty, name, pos)
		tys = append(tys, ty)
	}
	return tys
}

func (r *Resolver) resolveSingleVar(name string, pos ast.Positioner) types.Type {
	schemaTy := r.ctx.schema
	if schemaTy == nil {
		if !r.ctx.lValue {
			return r.lookupTypeFromScope(name, pos)
		}
		if !r.containsDeclaredObject(name) {
			r.insertObject(name, &ScopeObject{
				Name:  name,
				Start: pos.Pos(),
				End:   pos.End(),
				Ty:    types.Any,
				Kind:  KindVariable,
			})
			return types.Any
		}
		return r.lookupTypeFromScope(name, pos)
	}

	var attrTy types.Type
	if attr, ok := schemaTy.AttrObj(name); ok {
		attrTy = attr.Ty
	}
	if !r.ctx.lValue {
		scopeTy, inScope := r.findTypeInScope(name)
		if r.inLocalVars(name) {
			if inScope {
				return scopeTy
			}
			return types.Any
		}
		if attrTy != nil && !types.IsAny(attrTy) {
			return attrTy
		}
		if inScope {
			return scopeTy
		}
		return types.Any
	}
	if !r.containsObject(name) || attrTy == nil {
		r.insertObject(name, &ScopeObject{
			Name:  name,
			Start: pos.Pos(),
			End:   pos.End(),
			Ty:    types.Any,
			Kind:  KindVariable,
		})
		if attrTy == nil {
			schemaTy.Attrs.Set(name, &types.SchemaAttr{Ty: types.Any, Pos: pos.Pos()})
		}
		return types.Any
	}
	if attrTy != nil {
		return attrTy
	}
	return r.lookupTypeFromScope(name, pos)
}

// resolveUniqueKey rejects a second top level declaration of name in
// the current package.
func (r *Resolver) resolveUniqueKey(name string, pos ast.Positioner) {
	if r.scopeLevel != 0 {
		return
	}
	if !r.containsGlobalName(name) {
		r.insertGlobalName(name, pos)
		return
	}
	msgs := []failed.Message{{
		Positioner: pos,
		Text:       "unique key error name '" + name + "'",
	}}
	if declared, ok := r.globalNamePos(name); ok {
		msgs = append(msgs, failed.Message{
			Positioner: ast.Range{PosStart: declared, PosEnd: declared},
			Text:       "The variable '" + name + "' is declared here",
		})
	}
	r.handler.AddError(failed.UniqueKeyError, msgs...)
}

func (r *Resolver) insertGlobalName(name string, pos ast.Positioner) {
	mapping, ok := r.ctx.globalNames[r.ctx.pkgpath]
	if !ok {
		mapping = make(map[string]ast.Pos)
		r.ctx.globalNames[r.ctx.pkgpath] = mapping
	}
	mapping[name] = pos.Pos()
}

func (r *Resolver) containsGlobalName(name string) bool {
	_, ok := r.ctx.globalNames[r.ctx.pkgpath][name]
	return ok
}

func (r *Resolver) globalNamePos(name string) (ast.Pos, bool) {
	pos, ok := r.ctx.globalNames[r.ctx.pkgpath][name]
	return pos, ok
}
