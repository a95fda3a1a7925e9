package resolver

import (
	"fmt"

	"github.com/kcl-lang/kcl-sub002/ast"
	"github.com/kcl-lang/kcl-sub002/failed"
	"github.com/kcl-lang/kcl-sub002/types"
	"github.com/kcl-lang/kcl-sub002/util"
)

// The config expression context is a stack of the objects whose
// attributes the entries of the innermost config expression define.
// A nil entry means the context is unknown and attribute checks in
// that region are skipped rather than reported spuriously.

func newConfigExprContextItem(name string, ty types.Type, pos ast.Positioner) *ScopeObject {
	return &ScopeObject{
		Name:  name,
		Start: pos.Pos(),
		End:   pos.End(),
		Ty:    ty,
		Kind:  KindAttribute,
	}
}

// configAttrTy narrows the expected type of the attribute named key
// under a config context type. The second result is false when the
// context rejects the key: a schema with no matching attribute, index
// signature, or undeclared-attribute capability, or a union none of
// whose members accept it. A union that accepts narrows to the
// supremum of the accepting members.
func configAttrTy(key string, ty types.Type) (types.Type, bool) {
	switch t := ty.(type) {
	case *types.Dict:
		if t.Attrs != nil {
			if attr, ok := t.Attrs.Get(key); ok {
				return attr.Ty, true
			}
		}
		return t.Val, true
	case *types.SchemaType:
		if attr, ok := t.AttrObj(key); ok {
			return attr.Ty, true
		}
		if t.IndexSignature != nil {
			return t.IndexSignature.ValTy, true
		}
		if t.AcceptsUndeclared {
			return types.Any, true
		}
		return nil, false
	case *types.Union:
		var members []types.Type
		for _, elem := range t.Elems {
			if narrowed, ok := configAttrTy(key, elem); ok {
				members = append(members, narrowed)
			}
		}
		if len(members) == 0 {
			return nil, false
		}
		return types.Sup(members), true
	}
	return nil, false
}

// findAttrObjFromConfigExprContext resolves the attribute named key in
// the innermost config context, returning nil when the context cannot
// say anything about it.
func (r *Resolver) findAttrObjFromConfigExprContext(key string, pos ast.Positioner) *ScopeObject {
	top, ok := r.ctx.configExprContext.Peek()
	if !ok || top == nil {
		return nil
	}
	switch ty := top.Ty.(type) {
	case *types.Dict:
		narrowed, _ := configAttrTy(key, ty)
		return newConfigExprContextItem(key, narrowed, pos)
	case *types.SchemaType:
		if narrowed, ok := configAttrTy(key, ty); ok {
			return newConfigExprContextItem(key, narrowed, pos)
		}
		r.checkConfigAttr(key, pos, ty)
	case *types.Union:
		if narrowed, ok := configAttrTy(key, ty); ok {
			return newConfigExprContextItem(key, narrowed, pos)
		}
		var candidates []string
		for _, elem := range ty.Elems {
			if schemaTy, isSchema := elem.(*types.SchemaType); isSchema {
				candidates = append(candidates, schemaTy.AttrNames()...)
			}
		}
		r.handler.AddError(failed.IllegalAttributeError, failed.Message{
			Positioner:  pos,
			Text:        fmt.Sprintf("Cannot add member '%v' to '%v'", key, ty.TypeString()),
			Suggestions: suggestNames(key, candidates),
		})
	}
	return nil
}

// switchConfigExprContextByKey pushes the context for one config entry
// key and returns how many levels were pushed.
func (r *Resolver) switchConfigExprContextByKey(key ast.Expr) int {
	if key == nil {
		return 0
	}
	switch k := key.(type) {
	case *ast.Identifier:
		names := make([]string, 0, len(k.Names))
		for _, name := range k.Names {
			names = append(names, name.Value)
		}
		return r.switchConfigExprContextByNames(names, key)
	case *ast.StringLit:
		return r.switchConfigExprContextByName(k.Value, key)
	case *ast.Subscript:
		if ident, ok := k.Value.(*ast.Identifier); ok && !k.HasSlice() {
			if _, isIndex := k.Index.(*ast.NumberLit); isIndex {
				names := make([]string, 0, len(ident.Names))
				for _, name := range ident.Names {
					names = append(names, name.Value)
				}
				return r.switchConfigExprContextByNames(names, key)
			}
		}
		return 0
	default:
		return 0
	}
}

func (r *Resolver) switchConfigExprContextByName(name string, pos ast.Positioner) int {
	obj := r.findAttrObjFromConfigExprContext(name, pos)
	r.switchConfigExprContext(obj)
	return 1
}

func (r *Resolver) switchConfigExprContextByNames(names []string, pos ast.Positioner) int {
	depth := 0
	for _, name := range names {
		depth += r.switchConfigExprContextByName(name, pos)
	}
	return depth
}

func (r *Resolver) switchConfigExprContext(obj *ScopeObject) {
	r.ctx.configExprContext.Push(obj)
}

// switchListExprContext enters the element context of a list literal
// written as a config value.
func (r *Resolver) switchListExprContext() bool {
	top, ok := r.ctx.configExprContext.Peek()
	if !ok || top == nil {
		return false
	}
	if listTy, isList := top.Ty.(*types.List); isList {
		r.switchConfigExprContext(newConfigExprContextItem(top.Name, listTy.Elem, ast.Range{PosStart: top.Start, PosEnd: top.End}))
		return true
	}
	return false
}

func (r *Resolver) restoreConfigExprContext() {
	r.ctx.configExprContext.Pop()
}

func (r *Resolver) clearConfigExprContext(depth int, clearAll bool) {
	if clearAll {
		r.ctx.configExprContext.PopAll()
		return
	}
	for i := 0; i < depth; i++ {
		r.restoreConfigExprContext()
	}
}

// checkConfigExprByKeyName checks a schema-level attribute default
// against the attribute named keyName of the surrounding context.
func (r *Resolver) checkConfigExprByKeyName(keyName string, keyPos ast.Positioner, value ast.Expr) {
	depth := r.switchConfigExprContextByName(keyName, keyPos)
	r.expr(value)
	r.clearConfigExprContext(depth, false)
}

// checkConfigEntry types one `key op value` entry under the current
// config context, returning the value type. Dotted keys check the
// value against the innermost context level, wrapped back into nested
// dicts for the entry type.
func (r *Resolver) checkConfigEntry(key, value ast.Expr) types.Type {
	depth := r.switchConfigExprContextByKey(key)
	valueTy := r.expr(value)
	if depth > 0 {
		checkedTy := valueTy
		if _, isSubscript := key.(*ast.Subscript); isSubscript {
			checkedTy = types.NewList(checkedTy)
		}
		if top, ok := r.ctx.configExprContext.Peek(); ok && top != nil {
			r.mustAssignableTo(checkedTy, top.Ty, value, ast.Range{PosStart: top.Start, PosEnd: top.End})
		}
	}
	r.clearConfigExprContext(depth, false)
	return valueTy
}

// checkConfigAttr verifies that a schema config may set the attribute.
func (r *Resolver) checkConfigAttr(attr string, pos ast.Positioner, schemaTy *types.SchemaType) {
	if _, ok := schemaTy.AttrObj(attr); ok {
		return
	}
	if schemaTy.AcceptsUndeclared {
		return
	}
	r.handler.AddError(failed.IllegalAttributeError, failed.Message{
		Positioner:  pos,
		Text:        fmt.Sprintf("Cannot add member '%v' to schema '%v'", attr, schemaTy.Name),
		Suggestions: suggestNames(attr, schemaTy.AttrNames()),
	})
}

// walkConfigEntries types the entries of a config expression and
// returns the merged dict type.
func (r *Resolver) walkConfigEntries(entries []*ast.ConfigEntry) types.Type {
	r.enterScope(r.ctx.startPos, r.ctx.endPos, ScopeConfig)
	defer r.leaveScope()
	keyTypes := []types.Type{}
	valTypes := []types.Type{}
	attrs := util.NewOrderedMap[string, types.Attr]()
	for _, entry := range entries {
		if entry.Key == nil {
			keyTy, valTy := r.walkConfigUnpackEntry(entry)
			if keyTy != nil {
				keyTypes = append(keyTypes, keyTy)
				valTypes = append(valTypes, valTy)
			}
			continue
		}
		var keyTy types.Type
		switch key := entry.Key.(type) {
		case *ast.Identifier:
			// An identifier key is normally the literal attribute
			// name; a key that resolves to a local string variable is
			// a dynamic key instead.
			name := key.Names[0].Value
			if r.inLocalVars(name) {
				r.ctx.lValue = false
				keyTy = r.walkIdentifier(key)
			} else {
				keyTy = types.NewStrLit(name)
				valueName := key.GetName()
				if !attrs.Has(valueName) {
					r.insertObject(name, &ScopeObject{
						Name:  name,
						Start: key.Pos(),
						End:   key.End(),
						Ty:    types.Any,
						Kind:  KindAttribute,
					})
				}
			}
			r.setNodeType(key, keyTy)
		case *ast.Subscript:
			if ident, ok := key.Value.(*ast.Identifier); ok && !key.HasSlice() {
				keyTy = types.NewStrLit(ident.Names[0].Value)
			} else {
				keyTy = r.expr(key)
			}
		default:
			keyTy = r.expr(entry.Key)
		}
		valTy := r.checkConfigEntry(entry.Key, entry.Value)
		if entry.Op == ast.ConfigOpInsert && !types.IsAny(valTy) {
			if _, isList := valTy.(*types.List); !isList {
				r.handler.AddError(failed.IllegalAttributeError, failed.Message{
					Positioner: entry,
					Text:       fmt.Sprintf("only list type can in inserted, got '%v'", valTy.TypeString()),
				})
			}
		}
		if !types.IsKey(keyTy) {
			r.checkAttrTy(keyTy, entry.Key)
		}
		if strLit, ok := keyTy.(*types.StrLit); ok {
			entryValTy := valTy
			if ident, isIdent := entry.Key.(*ast.Identifier); isIdent {
				for i := len(ident.Names) - 1; i >= 1; i-- {
					entryValTy = types.NewDict(types.NewStrLit(ident.Names[i].Value), entryValTy)
				}
			}
			attrs.Set(strLit.Value, types.Attr{
				Ty:    entryValTy,
				Range: ast.Range{PosStart: entry.Key.Pos(), PosEnd: entry.Key.End()},
			})
			valTypes = append(valTypes, entryValTy)
		} else {
			valTypes = append(valTypes, valTy)
		}
		keyTypes = append(keyTypes, keyTy)
	}
	keyTy := types.Sup(keyTypes)
	valTy := types.Sup(valTypes)
	if types.IsVoid(keyTy) {
		keyTy = types.Any
	}
	if types.IsVoid(valTy) {
		valTy = types.Any
	}
	return types.NewDictWithAttrs(keyTy, valTy, attrs)
}

// walkConfigUnpackEntry types a `**value` entry, returning its key and
// value contribution or nil when the operand contributes nothing.
func (r *Resolver) walkConfigUnpackEntry(entry *ast.ConfigEntry) (types.Type, types.Type) {
	valTy := r.expr(entry.Value)
	switch ty := valTy.(type) {
	case *types.Basic:
		if types.IsNone(ty) || types.IsAny(ty) {
			return nil, nil
		}
	case *types.Dict:
		return ty.Key, ty.Val
	case *types.SchemaType:
		return ty.KeyTy(), ty.ValTy()
	case *types.Union:
		if r.tyCtx.IsConfigOrConfigUnion(ty) {
			keyTypes := []types.Type{}
			valTypes := []types.Type{}
			for _, elem := range types.UnionTypes(ty) {
				switch e := elem.(type) {
				case *types.Dict:
					keyTypes = append(keyTypes, e.Key)
					valTypes = append(valTypes, e.Val)
				case *types.SchemaType:
					keyTypes = append(keyTypes, e.KeyTy())
					valTypes = append(valTypes, e.ValTy())
				}
			}
			return types.Sup(keyTypes), types.Sup(valTypes)
		}
	}
	r.handler.AddCompileError(entry,
		"only dict and schema can be used ** unpack, got '%v'", valTy.TypeString())
	return nil, nil
}
