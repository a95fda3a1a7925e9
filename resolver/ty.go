package resolver

import (
	"strings"

	"github.com/kcl-lang/kcl-sub002/ast"
	"github.com/kcl-lang/kcl-sub002/failed"
	"github.com/kcl-lang/kcl-sub002/types"
)

// tyStrReplacePkgpath strips the current package qualifier from an
// annotation so that `@pkg.Name` written inside pkg reads as `Name`.
func tyStrReplacePkgpath(tyStr, pkgpath string) string {
	qualifier := "@" + pkgpath
	if strings.Contains(tyStr, ".") && tyStrToPkgpath(tyStr) == qualifier {
		return strings.Replace(tyStr, qualifier+".", "", 1)
	}
	return tyStr
}

func tyStrToPkgpath(tyStr string) string {
	if i := strings.LastIndex(tyStr, "."); i >= 0 {
		return tyStr[:i]
	}
	return tyStr
}

// parseTyWithScope parses an annotation and resolves every named type
// it mentions against the current scope.
func (r *Resolver) parseTyWithScope(tyStr string, pos ast.Positioner) types.Type {
	ty := types.Parse(tyStr)
	ret := r.upgradeNamedTyWithScope(ty, pos)
	r.addTypeAlias(ty.AnnotationString(), ret.AnnotationString())
	return ret
}

// parseTyStrWithScope is parseTyWithScope keyed by the raw annotation
// string, used where the AST carries only a name.
func (r *Resolver) parseTyStrWithScope(tyStr string, pos ast.Positioner) types.Type {
	ty := types.Parse(tyStr)
	ret := r.upgradeNamedTyWithScope(ty, pos)
	r.addTypeAlias(tyStr, ret.AnnotationString())
	return ret
}

// mustBeType checks the expression against the expected type.
func (r *Resolver) mustBeType(expr ast.Expr, expected types.Type) {
	ty := r.expr(expr)
	r.mustAssignableTo(ty, expected, expr, nil)
}

// mustAssignableTo reports a type error when ty cannot be assigned to
// the expected type. expectedPos, when given, points at the
// declaration that fixed the expected type.
func (r *Resolver) mustAssignableTo(ty, expected types.Type, pos ast.Positioner, expectedPos ast.Positioner) {
	if r.checkType(ty, expected, pos) {
		return
	}
	msgs := []failed.Message{{
		Positioner: pos,
		Text:       "expected " + expected.TypeString() + ", got " + ty.TypeString(),
	}}
	if expectedPos != nil {
		msgs = append(msgs, failed.Message{
			Positioner: expectedPos,
			Text: "variable is defined here, its type is " +
				expected.TypeString() + ", but got " + ty.TypeString(),
		})
	}
	r.handler.AddError(failed.TypeError, msgs...)
}

// checkType is the assignability check used by mustAssignableTo. It
// recurses structurally so that dict literals check against schema
// index signatures.
func (r *Resolver) checkType(ty, expected types.Type, pos ast.Positioner) bool {
	switch t := ty.(type) {
	case *types.List:
		if e, ok := expected.(*types.List); ok {
			return r.checkType(t.Elem, e.Elem, pos)
		}
	case *types.Dict:
		switch e := expected.(type) {
		case *types.Dict:
			return r.checkType(t.Key, e.Key, pos) && r.checkType(t.Val, e.Val, pos)
		case *types.SchemaType:
			return r.dictAssignableToSchema(t, e, pos)
		}
	case *types.Union:
		all := true
		for _, elem := range t.Elems {
			if !r.checkType(elem, expected, pos) {
				all = false
			}
		}
		return all
	}
	if e, ok := expected.(*types.Union); ok {
		for _, elem := range e.Elems {
			if r.checkType(ty, elem, pos) {
				return true
			}
		}
		return false
	}
	return types.AssignableTo(ty, expected)
}

// dictAssignableToSchema is the relaxed compile time check for a dict
// flowing into a schema typed location.
func (r *Resolver) dictAssignableToSchema(dict *types.Dict, schemaTy *types.SchemaType, pos ast.Positioner) bool {
	indexSignature := schemaTy.IndexSignature
	if indexSignature == nil {
		return true
	}
	if !types.AssignableTo(dict.Val, indexSignature.ValTy) {
		r.handler.AddTypeError(pos, "expected schema index signature value type %v, got %v",
			indexSignature.ValTy.TypeString(), dict.Val.TypeString())
	}
	if indexSignature.AnyOther {
		return types.AssignableTo(dict.Key, indexSignature.KeyTy) &&
			types.AssignableTo(dict.Val, indexSignature.ValTy)
	}
	return true
}

// upgradeNamedTyWithScope replaces every Named type inside ty with the
// type its name denotes in the current scope.
func (r *Resolver) upgradeNamedTyWithScope(ty types.Type, pos ast.Positioner) types.Type {
	switch t := ty.(type) {
	case *types.List:
		return types.NewList(r.upgradeNamedTyWithScope(t.Elem, pos))
	case *types.Dict:
		return types.NewDict(
			r.upgradeNamedTyWithScope(t.Key, pos),
			r.upgradeNamedTyWithScope(t.Val, pos))
	case *types.Union:
		elems := make([]types.Type, 0, len(t.Elems))
		for _, elem := range t.Elems {
			elems = append(elems, r.upgradeNamedTyWithScope(elem, pos))
		}
		return types.NewUnion(elems...)
	case *types.Named:
		tyStr := tyStrReplacePkgpath(t.Name, r.ctx.pkgpath)
		var names []string
		if strings.HasPrefix(tyStr, "@") {
			if i := strings.LastIndex(tyStr, "."); i >= 0 {
				names = []string{tyStr[:i], tyStr[i+1:]}
			} else {
				names = []string{tyStr}
			}
		} else {
			names = strings.Split(tyStr, ".")
		}
		if len(names) == 0 || names[0] == "" {
			r.handler.AddCompileError(pos, "missing type annotation")
			return types.Any
		}
		pkgpath := ""
		if len(names) > 1 && !r.inLocalVars(names[0]) {
			if mapping, ok := r.ctx.importNames[r.ctx.filename]; ok {
				pkgpath = mapping[names[0]]
			}
		}
		r.ctx.lValue = false
		tys := r.resolveVar(names, pkgpath, pos)
		return tys[len(tys)-1]
	}
	return ty
}

// addTypeAlias records that the annotation name expands to alias in
// the current package, skipping the identity mapping.
func (r *Resolver) addTypeAlias(name, alias string) {
	if strings.HasPrefix(alias, "@") {
		if name == alias[1:] {
			return
		}
	} else if name == alias {
		return
	}
	mapping, ok := r.ctx.typeAliasMapping[r.ctx.pkgpath]
	if !ok {
		mapping = make(map[string]string)
		r.ctx.typeAliasMapping[r.ctx.pkgpath] = mapping
	}
	mapping[name] = alias
}
