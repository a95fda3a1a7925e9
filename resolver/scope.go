package resolver

import (
	"fmt"

	"github.com/benbjohnson/immutable"

	"github.com/kcl-lang/kcl-sub002/ast"
	"github.com/kcl-lang/kcl-sub002/failed"
	"github.com/kcl-lang/kcl-sub002/types"
	"github.com/kcl-lang/kcl-sub002/util"
)

type ScopeObjectKind int

const (
	KindVariable ScopeObjectKind = iota
	KindAttribute
	KindDefinition
	KindParameter
	KindTypeAlias
	KindModule
)

// ScopeObject is a named entity stored in a scope.
type ScopeObject struct {
	Name  string
	Start ast.Pos
	End   ast.Pos
	Ty    types.Type
	Kind  ScopeObjectKind
	// Used records lookups, for the unused import warning.
	Used bool
	Doc  string
}

func (o *ScopeObject) Pos() ast.Pos { return o.Start }

func (o *ScopeObject) PosIsValid() bool {
	return o.Start.IsValid() && o.End.IsValid()
}

type ScopeKind int

const (
	ScopePackage ScopeKind = iota
	ScopeBuiltin
	ScopeSchema
	ScopeLoop
	ScopeCondStmt
	ScopeLambda
	ScopeConfig
)

// Scope maintains a set of objects and links to its containing
// (parent) and contained (children) scopes. Objects may be inserted
// and looked up by name.
type Scope struct {
	Parent   *Scope
	Children []*Scope
	Elems    *util.OrderedMap[string, *ScopeObject]
	Start    ast.Pos
	End      ast.Pos
	Kind     ScopeKind
	// SchemaName is set for ScopeSchema scopes.
	SchemaName string
}

func newScope(parent *Scope, start, end ast.Pos, kind ScopeKind) *Scope {
	scope := &Scope{
		Parent: parent,
		Elems:  util.NewOrderedMap[string, *ScopeObject](),
		Start:  start,
		End:    end,
		Kind:   kind,
	}
	if parent != nil {
		parent.Children = append(parent.Children, scope)
	}
	return scope
}

// Lookup finds the object with the name in this scope or any parent.
func (s *Scope) Lookup(name string) (*ScopeObject, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if obj, ok := cur.Elems.Get(name); ok {
			return obj, true
		}
	}
	return nil, false
}

// SetTy overrides the type of an object already in this scope.
func (s *Scope) SetTy(name string, ty types.Type) bool {
	obj, ok := s.Elems.Get(name)
	if !ok {
		return false
	}
	obj.Ty = ty
	return true
}

// ContainsPos reports whether the scope range covers pos.
func (s *Scope) ContainsPos(pos ast.Pos) bool {
	if pos.Filename != s.Start.Filename {
		return false
	}
	after := pos.Line > s.Start.Line || (pos.Line == s.Start.Line && pos.Column >= s.Start.Column)
	before := pos.Line < s.End.Line || (pos.Line == s.End.Line && pos.Column <= s.End.Column)
	return after && before
}

// InnerMost returns the deepest scope covering pos, descending through
// children. The builtin scope itself never matches.
func (s *Scope) InnerMost(pos ast.Pos) (*Scope, bool) {
	if s.Parent == nil {
		for _, child := range s.Children {
			if child.ContainsPos(pos) {
				return child.InnerMost(pos)
			}
		}
		return nil, false
	}
	if !s.ContainsPos(pos) {
		return nil, false
	}
	for _, child := range s.Children {
		if child.ContainsPos(pos) {
			return child.InnerMost(pos)
		}
	}
	return s, true
}

// SearchChildScopeByName finds the schema child scope declared under
// the given name.
func (s *Scope) SearchChildScopeByName(name string) (*Scope, bool) {
	if !s.Elems.Has(name) {
		return nil, false
	}
	for _, child := range s.Children {
		if child.Kind == ScopeSchema && child.SchemaName == name {
			return child, true
		}
	}
	return nil, false
}

// ProgramScope is the result of resolving a program: one package scope
// per package path plus the accumulated diagnostics and side tables.
type ProgramScope struct {
	ScopeMap map[string]*Scope
	// ImportNames maps filename to the names an import binds there.
	ImportNames map[string]map[string]string
	Handler     *failed.Handler

	// NodeTypeMap is the inferred type of every resolved node.
	NodeTypeMap map[ast.Node]types.Type
	// SchemaMapping is the frozen schema registry keyed by runtime key.
	SchemaMapping *immutable.Map[string, *types.SchemaType]
	// TypeAliasMapping maps pkgpath to alias name to the aliased
	// annotation string.
	TypeAliasMapping map[string]map[string]string
}

// Pkgpaths lists every resolved package path.
func (p *ProgramScope) Pkgpaths() []string {
	paths := make([]string, 0, len(p.ScopeMap))
	for pkgpath := range p.ScopeMap {
		paths = append(paths, pkgpath)
	}
	return paths
}

// MainScope returns the scope of the main package.
func (p *ProgramScope) MainScope() (*Scope, bool) {
	scope, ok := p.ScopeMap[ast.MainPkg]
	return scope, ok
}

// builtinScope builds the root scope holding the builtin functions.
func builtinScope() *Scope {
	scope := newScope(nil, ast.Pos{}, ast.Pos{}, ScopeBuiltin)
	for _, name := range builtinFunctionNames() {
		scope.Elems.Set(name, &ScopeObject{
			Name: name,
			Ty:   builtinFunctions[name],
			Kind: KindDefinition,
		})
	}
	return scope
}

// enterScope pushes a new child scope and makes it current.
func (r *Resolver) enterScope(start, end ast.Pos, kind ScopeKind) {
	r.scope = newScope(r.scope, start, end, kind)
	r.scopeLevel++
}

// enterSchemaScope is enterScope for schema bodies, recording the
// schema name on the scope.
func (r *Resolver) enterSchemaScope(start, end ast.Pos, name string) {
	r.enterScope(start, end, ScopeSchema)
	r.scope.SchemaName = name
}

func (r *Resolver) leaveScope() {
	r.ctx.localVars = r.ctx.localVars[:0]
	if r.scope.Parent == nil {
		failed.Bug("the scope parent is empty, can't leave the scope")
	}
	r.scopeLevel--
	r.scope = r.scope.Parent
}

// findTypeInScope looks the name up without reporting. Module objects
// found this way count as used for the unused import lint.
func (r *Resolver) findTypeInScope(name string) (types.Type, bool) {
	if obj, ok := r.scope.Lookup(name); ok {
		if obj.Kind == KindModule {
			obj.Used = true
		}
		return obj.Ty, true
	}
	return nil, false
}

// lookupTypeFromScope reports a compile error and falls back to any
// when the name is unknown.
func (r *Resolver) lookupTypeFromScope(name string, pos ast.Positioner) types.Type {
	if ty, ok := r.findTypeInScope(name); ok {
		return ty
	}
	r.handler.AddCompileError(pos, "name '%v' is not defined", stripPkgMark(name))
	return types.Any
}

// setTypeToScope widens ty to its variable type and stores it on an
// existing object, searching the parent scopes too.
func (r *Resolver) setTypeToScope(name string, ty types.Type, pos ast.Positioner) {
	if obj, ok := r.scope.Lookup(name); ok {
		obj.Ty = r.tyCtx.InferToVariable(ty)
		return
	}
	r.handler.AddCompileError(pos, "name '%v' is not defined", stripPkgMark(name))
}

func (r *Resolver) insertObject(name string, obj *ScopeObject) {
	r.scope.Elems.Set(name, obj)
}

func (r *Resolver) containsObject(name string) bool {
	return r.scope.Elems.Has(name)
}

// containsDeclaredObject reports whether an assignment target resolves
// to an existing declaration. Cond and loop scopes are transparent so
// that `if` bodies assign the enclosing variables, while lambda,
// schema and config scopes isolate their writes. Builtins never count:
// assigning a builtin name declares a fresh variable.
func (r *Resolver) containsDeclaredObject(name string) bool {
	for cur := r.scope; cur != nil && cur.Kind != ScopeBuiltin; cur = cur.Parent {
		if cur.Elems.Has(name) {
			return true
		}
		if cur.Kind == ScopeLambda || cur.Kind == ScopeSchema || cur.Kind == ScopeConfig {
			return false
		}
	}
	return false
}

func stripPkgMark(name string) string {
	out := make([]rune, 0, len(name))
	for _, c := range name {
		if c != '@' {
			out = append(out, c)
		}
	}
	return string(out)
}

var _ fmt.Stringer = ScopeObjectKind(0)

func (k ScopeObjectKind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindAttribute:
		return "attribute"
	case KindDefinition:
		return "definition"
	case KindParameter:
		return "parameter"
	case KindTypeAlias:
		return "type alias"
	case KindModule:
		return "module"
	}
	return "unknown"
}
