package types

// Type string constants shared by diagnostics and the annotation parser.
const (
	IntTypeStr    = "int"
	FloatTypeStr  = "float"
	StrTypeStr    = "str"
	BoolTypeStr   = "bool"
	AnyTypeStr    = "any"
	NoneTypeStr   = "NoneType"
	VoidTypeStr   = "void"
	ModuleTypeStr = "module"

	NumberMultiplierTypeStr    = "number_multiplier"
	NumberMultiplierPkgTypeStr = "units.NumberMultiplier"

	// SettingsAttrName is the implicit settings attribute every schema
	// carries.
	SettingsAttrName = "__settings__"

	NameConstantTrue      = "True"
	NameConstantFalse     = "False"
	NameConstantNone      = "None"
	NameConstantUndefined = "Undefined"
)

// ReservedTypeIdentifiers are names that cannot be shadowed by schemas
// or type aliases.
var ReservedTypeIdentifiers = []string{
	AnyTypeStr, IntTypeStr, FloatTypeStr, StrTypeStr, BoolTypeStr,
}

// typesMapping resolves the shorthand annotations to their types.
// Populated in newShorthandMapping rather than at package init so the
// parser never observes a partially built table.
func newShorthandMapping() map[string]Type {
	return map[string]Type{
		IntTypeStr:   Int,
		FloatTypeStr: Float,
		StrTypeStr:   Str,
		BoolTypeStr:  Bool,
		AnyTypeStr:   Any,
		"[]":         NewList(Any),
		"[any]":      NewList(Any),
		"[str]":      NewList(Str),
		"{:}":        NewDict(Any, Any),
		"{str:}":     NewDict(Str, Any),
		"{str:any}":  NewDict(Str, Any),
		"{str:str}":  NewDict(Str, Str),
	}
}

// ZeroLitTypes are the literal types that a division or modulo right
// operand must not subsume.
func ZeroLitTypes() []Type {
	return []Type{
		NewIntLit(0),
		NewFloatLit(0),
		NewBoolLit(false),
	}
}

// SchemaMemberFunctions are members available on schema definitions
// themselves rather than on instances.
var SchemaMemberFunctions = []string{"instances"}
