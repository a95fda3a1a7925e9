package resolver

import (
	"github.com/agext/levenshtein"

	"github.com/kcl-lang/kcl-sub002/ast"
	"github.com/kcl-lang/kcl-sub002/failed"
	"github.com/kcl-lang/kcl-sub002/types"
)

// checkAttrTy rejects config keys that are not strings.
func (r *Resolver) checkAttrTy(attrTy types.Type, pos ast.Positioner) {
	if !types.IsAny(attrTy) && !types.IsKey(attrTy) {
		r.handler.AddError(failed.IllegalAttributeError, failed.Message{
			Positioner: pos,
			Text:       "A attribute must be string type, got '" + attrTy.TypeString() + "'",
		})
	}
}

// loadAttr resolves an attribute access `obj.attr` to its type,
// reporting a type error with close-name suggestions when the
// attribute does not exist.
func (r *Resolver) loadAttr(obj types.Type, attr string, pos ast.Positioner) types.Type {
	found := false
	returnTy := types.Type(types.Any)
	var candidates []string
	switch ty := obj.(type) {
	case *types.Basic:
		switch {
		case types.IsAny(obj):
			found = true
		case types.IsStr(obj):
			if memberTy, ok := stringMemberFunctions[attr]; ok {
				found = true
				returnTy = memberTy
			}
		}
	case *types.StrLit:
		if memberTy, ok := stringMemberFunctions[attr]; ok {
			found = true
			returnTy = memberTy
		}
	case *types.Dict:
		found = true
		returnTy = ty.Val
	case *types.Union:
		// Union attr access relies on runtime type guards; the static
		// answer is any.
		found = true
	case *types.SchemaType:
		found, returnTy = r.schemaLoadAttr(ty, attr)
		if !found && ty.IsMemberFunction(attr) {
			found = true
			returnTy = &types.Function{
				SelfTy:      obj,
				Return:      types.NewList(types.Any),
				KwOnlyIndex: -1,
			}
		}
		if !found {
			candidates = ty.AttrNames()
		}
	case *types.Module:
		found, returnTy = r.moduleLoadAttr(ty, attr, pos)
	}
	if !found {
		shown := attr
		if shown == "" {
			shown = "[missing name]"
		}
		r.handler.AddError(failed.TypeError, failed.Message{
			Positioner:  pos,
			Text:        obj.TypeString() + " has no attribute " + shown,
			Suggestions: suggestNames(attr, candidates),
		})
	}
	return returnTy
}

func (r *Resolver) moduleLoadAttr(moduleTy *types.Module, attr string, pos ast.Positioner) (bool, types.Type) {
	switch moduleTy.Kind {
	case types.ModuleKindUser:
		scope, ok := r.scopeMap[moduleTy.Pkgpath]
		if !ok {
			return false, types.Any
		}
		obj, ok := scope.Elems.Get(attr)
		if !ok {
			return false, types.Any
		}
		if types.IsModule(obj.Ty) {
			r.handler.AddCompileError(pos,
				"can not import the attribute '%v' from the module '%v'", attr, moduleTy.Pkgpath)
		}
		return true, obj.Ty
	case types.ModuleKindSystem:
		if moduleTy.Pkgpath == unitsModule && attr == unitsNumberMultiplier {
			return true, types.NonLiteralNumberMultiplier()
		}
		return systemModuleHasMember(moduleTy.Pkgpath, attr), types.Any
	}
	// Plugin modules are opaque.
	return true, types.Any
}

// schemaLoadAttr looks an attribute up on the registered schema type,
// falling back to the type being built when the registry has no entry
// yet. Mixins and index signatures accept undeclared attributes.
func (r *Resolver) schemaLoadAttr(schemaTy *types.SchemaType, attr string) (bool, types.Type) {
	lookupTy := schemaTy
	if registered, ok := r.schemaMapping[schemaTy.RuntimeKey()]; ok {
		lookupTy = registered
	}
	if attrObj, ok := lookupTy.AttrObj(attr); ok {
		return true, attrObj.Ty
	}
	if lookupTy.AcceptsUndeclared {
		return true, types.Any
	}
	return false, types.Any
}

// maxSuggestionDistance bounds how far a name may be from the unknown
// attribute to still be offered as a correction.
const maxSuggestionDistance = 2

func suggestNames(name string, candidates []string) []string {
	if name == "" {
		return nil
	}
	var suggestions []string
	for _, candidate := range candidates {
		if levenshtein.Distance(name, candidate, nil) <= maxSuggestionDistance {
			suggestions = append(suggestions, candidate)
		}
	}
	return suggestions
}
