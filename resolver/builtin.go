package resolver

import (
	"github.com/kcl-lang/kcl-sub002/types"
)

// builtinFunctions holds the signatures of the global builtin
// functions. The table is keyed by call name and seeds the builtin
// scope every resolver shares.
var builtinFunctions = map[string]*types.Function{
	"option": {
		Doc: "Return the top level argument by the key",
		Params: []types.Parameter{
			{Name: "key", Ty: types.Str},
			{Name: "type", Ty: types.Str, HasDefault: true},
			{Name: "required", Ty: types.Bool, HasDefault: true},
			{Name: "default", Ty: types.Any, HasDefault: true},
			{Name: "help", Ty: types.Str, HasDefault: true},
		},
		Return:      types.Any,
		KwOnlyIndex: 1,
	},
	"print": {
		Doc:         "Prints the values to the system stdout by default.",
		Return:      types.None,
		Variadic:    true,
		KwOnlyIndex: -1,
	},
	"multiplyof": {
		Doc: "Check if the modular result of a and b is 0.",
		Params: []types.Parameter{
			{Name: "a", Ty: types.Int},
			{Name: "b", Ty: types.Int},
		},
		Return:      types.Bool,
		KwOnlyIndex: -1,
	},
	"isunique": {
		Doc: "Check if a list has duplicated elements",
		Params: []types.Parameter{
			{Name: "inval", Ty: types.NewList(types.Any)},
		},
		Return:      types.Bool,
		KwOnlyIndex: -1,
	},
	"len": {
		Doc: "Return the length of a value.",
		Params: []types.Parameter{
			{Name: "inval", Ty: types.Iterable()},
		},
		Return:      types.Int,
		KwOnlyIndex: -1,
	},
	"abs": {
		Doc: "Return the absolute value of the argument.",
		Params: []types.Parameter{
			{Name: "inval", Ty: types.Any},
		},
		Return:      types.Any,
		KwOnlyIndex: -1,
	},
	"all_true": {
		Doc: "Return True if bool(x) is True for all values x in the iterable.",
		Params: []types.Parameter{
			{Name: "inval", Ty: types.NewList(types.Any)},
		},
		Return:      types.Bool,
		KwOnlyIndex: -1,
	},
	"any_true": {
		Doc: "Return True if bool(x) is True for any x in the iterable.",
		Params: []types.Parameter{
			{Name: "inval", Ty: types.NewList(types.Any)},
		},
		Return:      types.Bool,
		KwOnlyIndex: -1,
	},
	"hex": {
		Doc: "Return the hexadecimal representation of an integer.",
		Params: []types.Parameter{
			{Name: "number", Ty: types.Int},
		},
		Return:      types.Str,
		KwOnlyIndex: -1,
	},
	"bin": {
		Doc: "Return the binary representation of an integer.",
		Params: []types.Parameter{
			{Name: "number", Ty: types.Int},
		},
		Return:      types.Str,
		KwOnlyIndex: -1,
	},
	"oct": {
		Doc: "Return the octal representation of an integer.",
		Params: []types.Parameter{
			{Name: "number", Ty: types.Int},
		},
		Return:      types.Str,
		KwOnlyIndex: -1,
	},
	"ord": {
		Doc: "Return the Unicode code point for a one-character string.",
		Params: []types.Parameter{
			{Name: "c", Ty: types.Str},
		},
		Return:      types.Int,
		KwOnlyIndex: -1,
	},
	"sorted": {
		Doc: "Return a new list containing all items from the iterable in ascending order.",
		Params: []types.Parameter{
			{Name: "inval", Ty: types.Iterable()},
			{Name: "reverse", Ty: types.Bool, HasDefault: true},
		},
		Return:      types.NewList(types.Any),
		KwOnlyIndex: 1,
	},
	"range": {
		Doc: "Return the range of a value.",
		Params: []types.Parameter{
			{Name: "start", Ty: types.Int, HasDefault: true},
			{Name: "stop", Ty: types.Int, HasDefault: true},
			{Name: "step", Ty: types.Int, HasDefault: true},
		},
		Return:      types.NewList(types.Int),
		KwOnlyIndex: -1,
	},
	"max": {
		Doc:         "With a single iterable argument, return its biggest item.",
		Return:      types.Any,
		Variadic:    true,
		KwOnlyIndex: -1,
	},
	"min": {
		Doc:         "With a single iterable argument, return its smallest item.",
		Return:      types.Any,
		Variadic:    true,
		KwOnlyIndex: -1,
	},
	"sum": {
		Doc: "Sum the iterable from left to right starting from the start value.",
		Params: []types.Parameter{
			{Name: "iterable", Ty: types.NewList(types.Any)},
			{Name: "start", Ty: types.Any, HasDefault: true},
		},
		Return:      types.Any,
		KwOnlyIndex: -1,
	},
	"pow": {
		Doc: "Equivalent to `x ** y` (with two arguments) or `x ** y % z` (with three arguments)",
		Params: []types.Parameter{
			{Name: "x", Ty: types.Number()},
			{Name: "y", Ty: types.Number()},
			{Name: "z", Ty: types.Number(), HasDefault: true},
		},
		Return:      types.Number(),
		KwOnlyIndex: -1,
	},
	"round": {
		Doc: "Round a number to a given precision in decimal digits.",
		Params: []types.Parameter{
			{Name: "number", Ty: types.Number()},
			{Name: "ndigits", Ty: types.Int, HasDefault: true},
		},
		Return:      types.Number(),
		KwOnlyIndex: -1,
	},
	"zip": {
		Doc:         "Return a list of tuples where the i-th tuple contains the i-th element of each iterable argument.",
		Return:      types.NewList(types.Any),
		Variadic:    true,
		KwOnlyIndex: -1,
	},
	"int": {
		Doc: "Convert a number or string to an integer.",
		Params: []types.Parameter{
			{Name: "number", Ty: types.Any},
			{Name: "base", Ty: types.Int, HasDefault: true},
		},
		Return:      types.Int,
		KwOnlyIndex: -1,
	},
	"float": {
		Doc: "Convert a string or number to a floating point number, if possible.",
		Params: []types.Parameter{
			{Name: "number", Ty: types.Any},
		},
		Return:      types.Float,
		KwOnlyIndex: -1,
	},
	"bool": {
		Doc: "Returns True when the argument x is true, False otherwise.",
		Params: []types.Parameter{
			{Name: "x", Ty: types.Any, HasDefault: true},
		},
		Return:      types.Bool,
		KwOnlyIndex: -1,
	},
	"str": {
		Doc: "Create a new string object from the given object.",
		Params: []types.Parameter{
			{Name: "x", Ty: types.Any, HasDefault: true},
		},
		Return:      types.Str,
		KwOnlyIndex: -1,
	},
	"list": {
		Doc: "Convert an iterable to a list or construct an empty list.",
		Params: []types.Parameter{
			{Name: "x", Ty: types.Any, HasDefault: true},
		},
		Return:      types.NewList(types.Any),
		KwOnlyIndex: -1,
	},
	"dict": {
		Doc: "Construct a dict from an iterable or keyword entries.",
		Params: []types.Parameter{
			{Name: "x", Ty: types.Any, HasDefault: true},
		},
		Return:      types.NewDict(types.Any, types.Any),
		Variadic:    true,
		KwOnlyIndex: -1,
	},
	"typeof": {
		Doc: "Return the type of the object",
		Params: []types.Parameter{
			{Name: "x", Ty: types.Any},
			{Name: "full_name", Ty: types.Bool, HasDefault: true},
		},
		Return:      types.Str,
		KwOnlyIndex: -1,
	},
}

// builtinFunctionOrder fixes the iteration order of the builtin scope,
// matching the declaration order of builtinFunctions above.
var builtinFunctionOrder = []string{
	"option", "print", "multiplyof", "isunique", "len", "abs",
	"all_true", "any_true", "hex", "bin", "oct", "ord", "sorted",
	"range", "max", "min", "sum", "pow", "round", "zip",
	"int", "float", "bool", "str", "list", "dict", "typeof",
}

func builtinFunctionNames() []string {
	return builtinFunctionOrder
}

func strMember(ret types.Type, variadic bool) *types.Function {
	return &types.Function{SelfTy: types.Str, Return: ret, Variadic: variadic, KwOnlyIndex: -1}
}

// stringMemberFunctions are the member methods available on every
// string value.
var stringMemberFunctions = map[string]*types.Function{
	"capitalize": strMember(types.Str, false),
	"count":      strMember(types.Int, false),
	"endswith":   strMember(types.Bool, false),
	"find":       strMember(types.Int, false),
	"format":     strMember(types.Str, true),
	"index":      strMember(types.Int, false),
	"isalpha":    strMember(types.Bool, false),
	"isalnum":    strMember(types.Bool, false),
	"isdigit":    strMember(types.Bool, false),
	"islower":    strMember(types.Bool, false),
	"isspace":    strMember(types.Bool, false),
	"istitle":    strMember(types.Bool, false),
	"isupper":    strMember(types.Bool, false),
	"join":       strMember(types.Str, true),
	"lower":      strMember(types.Str, true),
	"upper":      strMember(types.Str, true),
	"lstrip":     strMember(types.Str, true),
	"rstrip":     strMember(types.Str, true),
	"replace":    strMember(types.Str, true),
	"rfind":      strMember(types.Int, true),
	"rindex":     strMember(types.Int, true),
	"rsplit":     strMember(types.NewList(types.Str), true),
	"split":      strMember(types.NewList(types.Str), true),
	"splitlines": strMember(types.NewList(types.Str), true),
	"startswith": strMember(types.Bool, false),
	"strip":      strMember(types.Str, false),
	"title":      strMember(types.Str, false),
}

// builtinDecorators are the decorators allowed on schemas and schema
// attributes.
var builtinDecorators = map[string]*types.Function{
	"deprecated": {
		Doc: "Mark a schema or attribute as deprecated.",
		Params: []types.Parameter{
			{Name: "version", Ty: types.Str, HasDefault: true},
			{Name: "reason", Ty: types.Str, HasDefault: true},
			{Name: "strict", Ty: types.Bool, HasDefault: true},
		},
		Return:      types.None,
		KwOnlyIndex: -1,
	},
	"info": {
		Doc:         "Attach arbitrary metadata to a schema or attribute.",
		Return:      types.None,
		Variadic:    true,
		KwOnlyIndex: -1,
	},
}

const (
	unitsModule           = "units"
	unitsNumberMultiplier = "NumberMultiplier"
	pluginModulePrefix    = "kcl_plugin."
)

// standardSystemModules are the importable system packages. Their
// members resolve to the any type except where noted in loadAttr.
var standardSystemModules = []string{
	"collection", "net", "manifests", "math", "datetime", "regex",
	"yaml", "json", "crypto", "base64", "units", "file", "template",
}

func isSystemModule(pkgpath string) bool {
	for _, m := range standardSystemModules {
		if m == pkgpath {
			return true
		}
	}
	return false
}

// systemModuleMembers lists the callable members of each system
// module, used to reject unknown attribute access on them.
var systemModuleMembers = map[string][]string{
	"collection": {"union_all"},
	"net": {
		"split_host_port", "join_host_port", "fqdn", "parse_IP",
		"to_IP4", "to_IP16", "IP_string", "is_IPv4", "is_IP",
		"is_loopback_IP", "is_multicast_IP", "is_interface_local_multicast_IP",
		"is_link_local_multicast_IP", "is_link_local_unicast_IP",
		"is_global_unicast_IP", "is_unspecified_IP",
	},
	"manifests": {"yaml_stream"},
	"math": {
		"ceil", "factorial", "floor", "gcd", "isfinite", "isinf",
		"isnan", "modf", "exp", "expm1", "log", "log1p", "log2",
		"log10", "pow", "sqrt",
	},
	"datetime": {"today", "now", "ticks", "date"},
	"regex":    {"replace", "match", "compile", "findall", "search", "split"},
	"yaml":     {"encode", "decode", "dump_to_file"},
	"json":     {"encode", "decode", "dump_to_file"},
	"crypto":   {"md5", "sha1", "sha224", "sha256", "sha384", "sha512"},
	"base64":   {"encode", "decode"},
	"units": {
		"to_K", "to_M", "to_G", "to_T", "to_P",
		"to_Ki", "to_Mi", "to_Gi", "to_Ti", "to_Pi",
		unitsNumberMultiplier,
	},
	"file":     {"read", "glob"},
	"template": {"execute", "html_escape"},
}

func systemModuleHasMember(pkgpath, name string) bool {
	for _, member := range systemModuleMembers[pkgpath] {
		if member == name {
			return true
		}
	}
	return false
}
