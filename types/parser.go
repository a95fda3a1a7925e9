package types

import (
	"regexp"
	"strconv"
	"strings"
)

// numberMultiplierRegex matches literal multipliers such as 4Ki or 2M.
var numberMultiplierRegex = regexp.MustCompile(
	`^([1-9][0-9]{0,63})(E|P|T|G|M|K|k|m|u|n|Ei|Pi|Ti|Gi|Mi|Ki)$`)

var shorthandMapping = newShorthandMapping()

// Parse turns a type annotation string into a type. The empty string
// parses as any. Unknown names become Named types for the resolver to
// look up in scope.
//
// Parse is the single entry point for annotations: types rendered with
// AnnotationString parse back to an equal type.
func Parse(tyStr string) Type {
	if tyStr == "" {
		return Any
	}
	tyStr = strings.Trim(tyStr, " \r\n")
	if ty, ok := shorthandMapping[tyStr]; ok {
		return ty
	}
	switch {
	case isUnionTypeStr(tyStr):
		return parseUnionTypeStr(tyStr)
	case IsLiteralTypeStr(tyStr):
		return parseLitTypeStr(tyStr)
	case isNumberMultiplierTypeStr(tyStr):
		return parseNumberMultiplierTypeStr(tyStr)
	case IsDictTypeStr(tyStr):
		keyStr, valStr := SeparateKV(DereferenceType(tyStr))
		return NewDict(Parse(keyStr), Parse(valStr))
	case IsListTypeStr(tyStr):
		return NewList(Parse(DereferenceType(tyStr)))
	}
	return NewNamed(tyStr)
}

// IsLiteralTypeStr reports whether the annotation denotes a literal
// type: a name constant, a quoted string or a number.
func IsLiteralTypeStr(tyStr string) bool {
	switch tyStr {
	case NameConstantTrue, NameConstantFalse, NameConstantNone, NameConstantUndefined:
		return true
	}
	if strings.HasPrefix(tyStr, `"`) {
		return strings.HasSuffix(tyStr, `"`)
	}
	if strings.HasPrefix(tyStr, `'`) {
		return strings.HasSuffix(tyStr, `'`)
	}
	_, err := strconv.ParseFloat(tyStr, 64)
	return err == nil
}

func IsDictTypeStr(tyStr string) bool {
	return len(tyStr) >= 2 && tyStr[0] == '{' && tyStr[len(tyStr)-1] == '}'
}

func IsListTypeStr(tyStr string) bool {
	return len(tyStr) >= 2 && tyStr[0] == '[' && tyStr[len(tyStr)-1] == ']'
}

func IsBuiltinTypeStr(tyStr string) bool {
	switch tyStr {
	case IntTypeStr, FloatTypeStr, StrTypeStr, BoolTypeStr:
		return true
	}
	return false
}

// IsSchemaTypeStr reports whether the annotation can denote a schema.
func IsSchemaTypeStr(tyStr string) bool {
	if tyStr == "" {
		return true
	}
	return !IsListTypeStr(tyStr) && !IsDictTypeStr(tyStr) &&
		!IsBuiltinTypeStr(tyStr) && !IsLiteralTypeStr(tyStr)
}

// isUnionTypeStr reports whether the annotation has a top level `|`,
// i.e. one outside brackets and string literals.
func isUnionTypeStr(tyStr string) bool {
	depth := 0
	for i := 0; i < len(tyStr); i++ {
		switch tyStr[i] {
		case '|':
			if depth == 0 {
				return true
			}
		case '[', '{':
			depth++
		case ']', '}':
			depth--
		case '"', '\'':
			i = skipStringLit(tyStr, i)
		}
	}
	return false
}

func isNumberMultiplierTypeStr(tyStr string) bool {
	return numberMultiplierRegex.MatchString(tyStr)
}

// SplitTypeUnion splits a union annotation on its top level `|`
// separators, leaving nested lists, dicts and string literals intact.
func SplitTypeUnion(tyStr string) []string {
	var types []string
	depth := 0
	start := 0
	for i := 0; i < len(tyStr); i++ {
		switch tyStr[i] {
		case '|':
			if depth == 0 {
				types = append(types, tyStr[start:i])
				start = i + 1
			}
		case '[', '{':
			depth++
		case ']', '}':
			depth--
		case '"', '\'':
			i = skipStringLit(tyStr, i)
		}
	}
	return append(types, tyStr[start:])
}

// skipStringLit returns the index of the closing quote of the string
// literal starting at i, or the last index when it is unterminated.
func skipStringLit(s string, i int) int {
	quote := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote:
			return j
		}
	}
	return len(s) - 1
}

func parseUnionTypeStr(tyStr string) Type {
	parts := SplitTypeUnion(tyStr)
	tys := make([]Type, 0, len(parts))
	for _, part := range parts {
		tys = append(tys, Parse(part))
	}
	return Sup(tys)
}

func parseLitTypeStr(tyStr string) Type {
	switch tyStr {
	case NameConstantTrue:
		return NewBoolLit(true)
	case NameConstantFalse:
		return NewBoolLit(false)
	case NameConstantNone, NameConstantUndefined:
		return None
	}
	if v, err := strconv.ParseInt(tyStr, 10, 64); err == nil {
		return NewIntLit(v)
	}
	if v, err := strconv.ParseFloat(tyStr, 64); err == nil {
		return NewFloatLit(v)
	}
	return NewStrLit(unquoteStringLit(tyStr))
}

// unquoteStringLit strips the surrounding quotes and resolves the
// escape sequences of a string literal annotation.
func unquoteStringLit(s string) string {
	if len(s) < 2 {
		return s
	}
	quote := s[0]
	if (quote != '"' && quote != '\'') || s[len(s)-1] != quote {
		return s
	}
	body := s[1 : len(s)-1]
	if !strings.ContainsRune(body, '\\') {
		return body
	}
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] != '\\' || i == len(body)-1 {
			b.WriteByte(body[i])
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\', '"', '\'':
			b.WriteByte(body[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(body[i])
		}
	}
	return b.String()
}

func parseNumberMultiplierTypeStr(tyStr string) Type {
	suffixIndex := len(tyStr) - 1
	if strings.HasSuffix(tyStr, "i") {
		suffixIndex = len(tyStr) - 2
	}
	value, err := strconv.ParseInt(tyStr[:suffixIndex], 10, 64)
	if err != nil {
		// The regex guarantees a valid integer prefix.
		return NonLiteralNumberMultiplier()
	}
	suffix := tyStr[suffixIndex:]
	return NewNumberMultiplier(CalNum(value, suffix), value, suffix)
}

// CalNum multiplies a raw value by its unit suffix.
func CalNum(value int64, suffix string) float64 {
	multipliers := map[string]float64{
		"n":  1e-9,
		"u":  1e-6,
		"m":  1e-3,
		"k":  1e3,
		"K":  1e3,
		"M":  1e6,
		"G":  1e9,
		"T":  1e12,
		"P":  1e15,
		"E":  1e18,
		"Ki": 1 << 10,
		"Mi": 1 << 20,
		"Gi": 1 << 30,
		"Ti": 1 << 40,
		"Pi": 1 << 50,
		"Ei": 1 << 60,
	}
	if multiplier, ok := multipliers[suffix]; ok {
		return float64(value) * multiplier
	}
	return float64(value)
}

// SeparateKV splits a dict annotation body at the top level `:`.
func SeparateKV(tyStr string) (string, string) {
	depth := 0
	for i := 0; i < len(tyStr); i++ {
		switch tyStr[i] {
		case '[', '{':
			depth++
		case ']', '}':
			depth--
		case ':':
			if depth == 0 {
				return tyStr[:i], tyStr[i+1:]
			}
		case '"', '\'':
			i = skipStringLit(tyStr, i)
		}
	}
	return "", ""
}

// DereferenceType removes the outermost brackets of a list or dict
// annotation.
func DereferenceType(tyStr string) string {
	if len(tyStr) > 1 &&
		((tyStr[0] == '[' && tyStr[len(tyStr)-1] == ']') ||
			(tyStr[0] == '{' && tyStr[len(tyStr)-1] == '}')) {
		return tyStr[1 : len(tyStr)-1]
	}
	return tyStr
}
