package types

import (
	"fmt"
	"strings"

	"github.com/kcl-lang/kcl-sub002/ast"
	"github.com/kcl-lang/kcl-sub002/util"
)

// SchemaType describes a schema definition or, when IsInstance holds,
// a value conforming to one.
type SchemaType struct {
	Name     string
	Pkgpath  string
	Filename string
	Doc      string

	IsInstance bool
	IsMixin    bool
	IsProtocol bool
	IsRule     bool

	// AcceptsUndeclared lets config entries introduce attributes that
	// are not declared by the schema. It is granted to mixins and to
	// schemas with an index signature; checking it directly avoids
	// re-deriving the rule at every use site.
	AcceptsUndeclared bool

	Base     *SchemaType
	Protocol *SchemaType
	Mixins   []*SchemaType

	// Attrs keeps declaration order so error messages and generated
	// docs list attributes the way the source declares them.
	Attrs *util.OrderedMap[string, *SchemaAttr]

	// Func is the constructor signature of the schema.
	Func *Function

	IndexSignature *SchemaIndexSignature
	Decorators     []*Decorator
}

type SchemaAttr struct {
	IsOptional bool
	HasDefault bool
	IsFinal    bool
	Ty         Type
	Pos        ast.Pos
	Doc        string
	Decorators []*Decorator
}

type SchemaIndexSignature struct {
	KeyName string
	KeyTy   Type
	ValTy   Type
	// AnyOther restricts the signature to attributes that are not
	// otherwise declared.
	AnyOther bool
}

// TypeString renders the index signature the way the source declares
// it, e.g. "[...str]: int".
func (s *SchemaIndexSignature) TypeString() string {
	key := s.KeyTy.TypeString()
	if s.AnyOther {
		key = "..." + key
	}
	if s.KeyName != "" {
		key = s.KeyName + ": " + key
	}
	return fmt.Sprintf("[%v]: %v", key, s.ValTy.TypeString())
}

// Decorator is an evaluated decorator call on a schema or attribute.
// Target is the schema or attribute name the decorator applies to,
// consumed by the runtime's deprecation reporting.
type Decorator struct {
	Name     string
	Target   string
	Args     []string
	Keywords map[string]string
}

// NewSchemaType returns an empty schema shell: the global type builder
// declares these first and fills the bodies in later passes.
func NewSchemaType(name, pkgpath, filename string) *SchemaType {
	return &SchemaType{
		Name:     name,
		Pkgpath:  pkgpath,
		Filename: filename,
		Attrs:    util.NewOrderedMap[string, *SchemaAttr](),
		Func:     &Function{Return: Any, KwOnlyIndex: -1},
	}
}

func (t *SchemaType) TypeString() string { return t.Name }

func (t *SchemaType) AnnotationString() string { return t.TypeStrWithPkgpath() }

// TypeStrWithPkgpath qualifies the schema name with its package unless
// it lives in the main package.
func (t *SchemaType) TypeStrWithPkgpath() string {
	if t.Pkgpath == "" || t.Pkgpath == ast.MainPkg {
		return t.Name
	}
	return fmt.Sprintf("@%v.%v", t.Pkgpath, t.Name)
}

// RuntimeKey is the unique key of the schema in the registry.
func (t *SchemaType) RuntimeKey() string {
	return SchemaRuntimeKey(t.Pkgpath, t.Name)
}

func SchemaRuntimeKey(pkgpath, name string) string {
	return fmt.Sprintf("%v.%v", pkgpath, name)
}

// Instance returns a shallow copy marked as an instance of the schema.
func (t *SchemaType) Instance() *SchemaType {
	instance := *t
	instance.IsInstance = true
	return &instance
}

// AttrObj finds the attribute in the schema, its base chain or its
// protocol.
func (t *SchemaType) AttrObj(name string) (*SchemaAttr, bool) {
	if attr, ok := t.Attrs.Get(name); ok {
		return attr, true
	}
	if t.Base != nil {
		return t.Base.AttrObj(name)
	}
	if t.Protocol != nil {
		return t.Protocol.AttrObj(name)
	}
	return nil, false
}

// AttrNames lists every reachable attribute name, own attributes first
// and inherited ones after, without duplicates.
func (t *SchemaType) AttrNames() []string {
	seen := util.NewSet[string]()
	var names []string
	for cur := t; cur != nil; cur = cur.Base {
		for _, name := range cur.Attrs.Keys() {
			if !seen.Has(name) {
				seen.Add(name)
				names = append(names, name)
			}
		}
	}
	if t.Protocol != nil {
		for _, name := range t.Protocol.AttrNames() {
			if !seen.Has(name) {
				seen.Add(name)
				names = append(names, name)
			}
		}
	}
	return names
}

// SetAttrType overrides the type of an existing attribute.
func (t *SchemaType) SetAttrType(name string, ty Type) {
	if attr, ok := t.Attrs.Get(name); ok {
		attr.Ty = ty
	}
}

// IsMemberFunction reports whether name is a member of the schema
// definition itself, such as instances().
func (t *SchemaType) IsMemberFunction(name string) bool {
	if t.IsInstance {
		return false
	}
	for _, member := range SchemaMemberFunctions {
		if member == name {
			return true
		}
	}
	return false
}

// KeyTy is the config key type of the schema, always str.
func (t *SchemaType) KeyTy() Type { return Str }

// ValTy is the config value type: the index signature value type when
// present, any otherwise.
func (t *SchemaType) ValTy() Type {
	if t.IndexSignature != nil {
		return t.IndexSignature.ValTy
	}
	return Any
}

// SignatureString renders the schema header the way hover docs show it.
func (t *SchemaType) SignatureString() string {
	base := ""
	if t.Base != nil {
		base = fmt.Sprintf("(%v)", t.Base.Name)
	}
	params := ""
	if len(t.Func.Params) > 0 {
		parts := make([]string, 0, len(t.Func.Params))
		for _, p := range t.Func.Params {
			parts = append(parts, fmt.Sprintf("%v: %v", p.Name, p.Ty.TypeString()))
		}
		params = fmt.Sprintf("[%v]", strings.Join(parts, ", "))
	}
	return fmt.Sprintf("%v\n\nschema %v%v%v", t.Pkgpath, t.Name, params, base)
}
