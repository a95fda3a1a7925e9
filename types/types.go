// Package types implements the structural type algebra of the language:
// the type variants, subsumption checks, the smallest-supertype
// computation and the type annotation mini-language.
package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kcl-lang/kcl-sub002/ast"
	"github.com/kcl-lang/kcl-sub002/util"
)

// Type is a type as seen by the resolver. Implementations are immutable
// once constructed, except for SchemaType which is filled in over the
// passes of the global type builder.
type Type interface {
	// TypeString is the human readable form used in diagnostics,
	// e.g. "int(1)" or "[str]".
	TypeString() string
	// AnnotationString is the form valid in a type annotation,
	// e.g. "1" for the literal type int(1).
	AnnotationString() string
	typeNode()
}

var _ Type = (*Basic)(nil)
var _ Type = (*BoolLit)(nil)
var _ Type = (*IntLit)(nil)
var _ Type = (*FloatLit)(nil)
var _ Type = (*StrLit)(nil)
var _ Type = (*NumberMultiplier)(nil)
var _ Type = (*List)(nil)
var _ Type = (*Dict)(nil)
var _ Type = (*Union)(nil)
var _ Type = (*Function)(nil)
var _ Type = (*SchemaType)(nil)
var _ Type = (*Named)(nil)
var _ Type = (*Module)(nil)

type basicKind int

const (
	anyKind basicKind = iota
	noneKind
	voidKind
	boolKind
	intKind
	floatKind
	strKind
)

// Basic is one of the nullary built-in types. Always use the package
// level singletons, never construct a Basic directly.
type Basic struct {
	kind basicKind
}

var (
	Any   = &Basic{anyKind}
	None  = &Basic{noneKind}
	Void  = &Basic{voidKind}
	Bool  = &Basic{boolKind}
	Int   = &Basic{intKind}
	Float = &Basic{floatKind}
	Str   = &Basic{strKind}
)

func (t *Basic) TypeString() string {
	switch t.kind {
	case anyKind:
		return AnyTypeStr
	case noneKind:
		return NoneTypeStr
	case voidKind:
		return VoidTypeStr
	case boolKind:
		return BoolTypeStr
	case intKind:
		return IntTypeStr
	case floatKind:
		return FloatTypeStr
	default:
		return StrTypeStr
	}
}

func (t *Basic) AnnotationString() string {
	if t.kind == noneKind {
		return NameConstantNone
	}
	return t.TypeString()
}

type BoolLit struct {
	Value bool
}

func NewBoolLit(v bool) *BoolLit { return &BoolLit{Value: v} }

func (t *BoolLit) TypeString() string {
	return fmt.Sprintf("%v(%v)", BoolTypeStr, t.AnnotationString())
}

func (t *BoolLit) AnnotationString() string {
	if t.Value {
		return NameConstantTrue
	}
	return NameConstantFalse
}

type IntLit struct {
	Value int64
}

func NewIntLit(v int64) *IntLit { return &IntLit{Value: v} }

func (t *IntLit) TypeString() string {
	return fmt.Sprintf("%v(%v)", IntTypeStr, t.Value)
}

func (t *IntLit) AnnotationString() string {
	return strconv.FormatInt(t.Value, 10)
}

type FloatLit struct {
	Value float64
}

func NewFloatLit(v float64) *FloatLit { return &FloatLit{Value: v} }

func (t *FloatLit) TypeString() string {
	return fmt.Sprintf("%v(%v)", FloatTypeStr, t.AnnotationString())
}

func (t *FloatLit) AnnotationString() string {
	s := strconv.FormatFloat(t.Value, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

type StrLit struct {
	Value string
}

func NewStrLit(v string) *StrLit { return &StrLit{Value: v} }

func (t *StrLit) TypeString() string {
	return fmt.Sprintf("%v(%v)", StrTypeStr, t.Value)
}

func (t *StrLit) AnnotationString() string {
	return fmt.Sprintf("%q", t.Value)
}

// NumberMultiplier is an integer with a unit suffix such as 4Ki.
// The non-literal form is the type of the units package constants.
type NumberMultiplier struct {
	Value     float64
	Raw       int64
	Suffix    string
	IsLiteral bool
}

func NewNumberMultiplier(value float64, raw int64, suffix string) *NumberMultiplier {
	return &NumberMultiplier{Value: value, Raw: raw, Suffix: suffix, IsLiteral: true}
}

func NonLiteralNumberMultiplier() *NumberMultiplier {
	return &NumberMultiplier{}
}

func (t *NumberMultiplier) TypeString() string {
	if t.IsLiteral {
		return fmt.Sprintf("%v(%v%v)", NumberMultiplierTypeStr, t.Raw, t.Suffix)
	}
	return NumberMultiplierTypeStr
}

func (t *NumberMultiplier) AnnotationString() string {
	if t.IsLiteral {
		return fmt.Sprintf("%v(%v%v)", NumberMultiplierTypeStr, t.Raw, t.Suffix)
	}
	return NumberMultiplierPkgTypeStr
}

type List struct {
	Elem Type
}

func NewList(elem Type) *List { return &List{Elem: elem} }

func (t *List) TypeString() string {
	return fmt.Sprintf("[%v]", t.Elem.TypeString())
}

func (t *List) AnnotationString() string {
	return fmt.Sprintf("[%v]", t.Elem.AnnotationString())
}

// Attr records the type and declaration range of a known dict key.
type Attr struct {
	Ty    Type
	Range ast.Range
}

type Dict struct {
	Key Type
	Val Type
	// Attrs carries per-key types for dicts built from config literals.
	// May be nil.
	Attrs *util.OrderedMap[string, Attr]
}

func NewDict(key, val Type) *Dict { return &Dict{Key: key, Val: val} }

func NewDictWithAttrs(key, val Type, attrs *util.OrderedMap[string, Attr]) *Dict {
	return &Dict{Key: key, Val: val, Attrs: attrs}
}

func (t *Dict) TypeString() string {
	return fmt.Sprintf("{%v:%v}", t.Key.TypeString(), t.Val.TypeString())
}

func (t *Dict) AnnotationString() string {
	return fmt.Sprintf("{%v:%v}", t.Key.AnnotationString(), t.Val.AnnotationString())
}

type Union struct {
	Elems []Type
}

// NewUnion builds a union without normalising. Most callers want Sup.
func NewUnion(elems ...Type) *Union { return &Union{Elems: elems} }

func (t *Union) TypeString() string {
	parts := make([]string, 0, len(t.Elems))
	for _, elem := range t.Elems {
		parts = append(parts, elem.TypeString())
	}
	return strings.Join(parts, " | ")
}

func (t *Union) AnnotationString() string {
	parts := make([]string, 0, len(t.Elems))
	for _, elem := range t.Elems {
		parts = append(parts, elem.AnnotationString())
	}
	return strings.Join(parts, "|")
}

// Parameter is a function or schema constructor parameter.
type Parameter struct {
	Name       string
	Ty         Type
	HasDefault bool
}

type Function struct {
	Doc      string
	Params   []Parameter
	SelfTy   Type
	Return   Type
	Variadic bool
	// KwOnlyIndex is the index of the first keyword-only parameter,
	// or -1 when every parameter may be positional.
	KwOnlyIndex int
}

// NewFunction builds a function type with positional parameters.
func NewFunction(params []Parameter, ret Type) *Function {
	return &Function{Params: params, Return: ret, KwOnlyIndex: -1}
}

// VariadicFunction is the type of builtins that accept anything.
func VariadicFunction() *Function {
	return &Function{Return: Any, Variadic: true, KwOnlyIndex: -1}
}

func (t *Function) TypeString() string {
	parts := make([]string, 0, len(t.Params))
	for _, param := range t.Params {
		parts = append(parts, param.Ty.TypeString())
	}
	return fmt.Sprintf("(%v) -> %v", strings.Join(parts, ", "), t.Return.TypeString())
}

func (t *Function) AnnotationString() string {
	return t.TypeString()
}

// SignatureString renders the function the way hover docs show it.
func (t *Function) SignatureString(name string) string {
	parts := make([]string, 0, len(t.Params))
	for _, param := range t.Params {
		parts = append(parts, fmt.Sprintf("%v: %v", param.Name, param.Ty.TypeString()))
	}
	return fmt.Sprintf("function %v(%v) -> %v", name, strings.Join(parts, ", "), t.Return.TypeString())
}

type ModuleKind int

const (
	ModuleKindUser ModuleKind = iota
	ModuleKindSystem
	ModuleKindPlugin
)

// Module is the type an import statement binds its package name to.
type Module struct {
	Pkgpath  string
	Imported []string
	Kind     ModuleKind
}

func (t *Module) TypeString() string {
	return fmt.Sprintf("%v '%v'", ModuleTypeStr, t.Pkgpath)
}

func (t *Module) AnnotationString() string {
	return t.TypeString()
}

// Named is an unresolved reference to a schema or type alias by name.
// The resolver replaces it before type checking uses it.
type Named struct {
	Name string
}

func NewNamed(name string) *Named { return &Named{Name: name} }

func (t *Named) TypeString() string       { return t.Name }
func (t *Named) AnnotationString() string { return t.Name }

func (*Basic) typeNode()            {}
func (*BoolLit) typeNode()          {}
func (*IntLit) typeNode()           {}
func (*FloatLit) typeNode()         {}
func (*StrLit) typeNode()           {}
func (*NumberMultiplier) typeNode() {}
func (*List) typeNode()             {}
func (*Dict) typeNode()             {}
func (*Union) typeNode()            {}
func (*Function) typeNode()         {}
func (*SchemaType) typeNode()       {}
func (*Named) typeNode()            {}
func (*Module) typeNode()           {}

// ---------------------------------------------------------------------------
// Predicates

func IsAny(t Type) bool  { b, ok := t.(*Basic); return ok && b.kind == anyKind }
func IsNone(t Type) bool { b, ok := t.(*Basic); return ok && b.kind == noneKind }
func IsVoid(t Type) bool { b, ok := t.(*Basic); return ok && b.kind == voidKind }

func IsNoneOrAny(t Type) bool { return IsNone(t) || IsAny(t) }

// IsBool also holds for bool literal types, mirroring the flag scheme
// where literals carry their base kind.
func IsBool(t Type) bool {
	if b, ok := t.(*Basic); ok {
		return b.kind == boolKind
	}
	_, ok := t.(*BoolLit)
	return ok
}

func IsInt(t Type) bool {
	if b, ok := t.(*Basic); ok {
		return b.kind == intKind
	}
	_, ok := t.(*IntLit)
	return ok
}

func IsFloat(t Type) bool {
	if b, ok := t.(*Basic); ok {
		return b.kind == floatKind
	}
	_, ok := t.(*FloatLit)
	return ok
}

func IsStr(t Type) bool {
	if b, ok := t.(*Basic); ok {
		return b.kind == strKind
	}
	_, ok := t.(*StrLit)
	return ok
}

func IsNumber(t Type) bool { return IsInt(t) || IsFloat(t) }

func IsLiteral(t Type) bool {
	switch ty := t.(type) {
	case *BoolLit, *IntLit, *FloatLit, *StrLit:
		return true
	case *NumberMultiplier:
		return ty.IsLiteral
	}
	return false
}

func IsPrimitive(t Type) bool {
	b, ok := t.(*Basic)
	return ok && (b.kind == boolKind || b.kind == intKind || b.kind == floatKind || b.kind == strKind)
}

// IsKey reports whether a type may key a config: str, str literals and
// unions thereof.
func IsKey(t Type) bool {
	switch ty := t.(type) {
	case *Basic:
		return ty.kind == strKind
	case *StrLit:
		return true
	case *Union:
		for _, elem := range ty.Elems {
			if !IsKey(elem) {
				return false
			}
		}
		return true
	}
	return false
}

func IsList(t Type) bool { _, ok := t.(*List); return ok }
func IsDict(t Type) bool { _, ok := t.(*Dict); return ok }

func IsSchema(t Type) bool { _, ok := t.(*SchemaType); return ok }

// IsSchemaDef reports whether t is a schema definition rather than an
// instance of one.
func IsSchemaDef(t Type) bool {
	schemaTy, ok := t.(*SchemaType)
	return ok && !schemaTy.IsInstance
}

func IsDictOrSchema(t Type) bool { return IsDict(t) || IsSchema(t) }

func IsIterable(t Type) bool {
	return IsStr(t) || IsList(t) || IsDict(t) || IsSchema(t)
}

func IsUnion(t Type) bool { _, ok := t.(*Union); return ok }

func IsFunc(t Type) bool { _, ok := t.(*Function); return ok }

func IsNumberMultiplier(t Type) bool { _, ok := t.(*NumberMultiplier); return ok }

func IsModule(t Type) bool { _, ok := t.(*Module); return ok }

// IsAssignable reports whether a value of this type can sit on the
// right hand side of an assignment at all.
func IsAssignable(t Type) bool {
	switch t.(type) {
	case *Module, *Named:
		return false
	case *Basic:
		return !IsVoid(t)
	}
	return true
}

// UnionTypes flattens t into its union members, or a single element
// slice when t is not a union.
func UnionTypes(t Type) []Type {
	if u, ok := t.(*Union); ok {
		return u.Elems
	}
	return []Type{t}
}

// DictEntryTy returns the key and value types of a dict or schema
// config type, with (nil, nil) for anything else.
func DictEntryTy(t Type) (Type, Type) {
	switch ty := t.(type) {
	case *Dict:
		return ty.Key, ty.Val
	case *SchemaType:
		return ty.KeyTy(), ty.ValTy()
	}
	return nil, nil
}

// Iterable is the union of every iterable type.
func Iterable() Type {
	return NewUnion(Str, NewDict(Any, Any), NewList(Any))
}

// Number is the union of int and float.
func Number() Type {
	return NewUnion(Int, Float)
}
