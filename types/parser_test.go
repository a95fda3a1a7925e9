package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShorthands(t *testing.T) {
	assert.Equal(t, Any, Parse(""))
	assert.Equal(t, Any, Parse("any"))
	assert.Equal(t, Int, Parse("int"))
	assert.Equal(t, Str, Parse(" str "), "surrounding whitespace is stripped")
	assert.True(t, Equal(NewList(Any), Parse("[]")))
	assert.True(t, Equal(NewDict(Str, Any), Parse("{str:}")))
}

func TestParseContainers(t *testing.T) {
	assert.True(t, Equal(NewList(Int), Parse("[int]")))
	assert.True(t, Equal(NewList(NewList(Str)), Parse("[[str]]")))
	assert.True(t, Equal(NewDict(Str, Int), Parse("{str:int}")))
	assert.True(t, Equal(NewDict(Str, NewList(Int)), Parse("{str:[int]}")))
	assert.True(t, Equal(NewDict(Any, Any), Parse("{:}")))
}

func TestParseLiterals(t *testing.T) {
	assert.True(t, Equal(NewBoolLit(true), Parse("True")))
	assert.True(t, Equal(NewBoolLit(false), Parse("False")))
	assert.Equal(t, None, Parse("None"))
	assert.Equal(t, None, Parse("Undefined"))
	assert.True(t, Equal(NewIntLit(123), Parse("123")))
	assert.True(t, Equal(NewFloatLit(1.5), Parse("1.5")))
	assert.True(t, Equal(NewStrLit("abc"), Parse(`"abc"`)))
	assert.True(t, Equal(NewStrLit("a'b"), Parse(`'a\'b'`)))
}

func TestParseUnions(t *testing.T) {
	ty := Parse("int|str")
	union, ok := ty.(*Union)
	require.True(t, ok)
	assert.Len(t, union.Elems, 2)

	// A pipe inside brackets is not a union separator.
	listTy := Parse("[int|str]")
	list, ok := listTy.(*List)
	require.True(t, ok)
	assert.True(t, IsUnion(list.Elem))

	// A pipe inside a string literal member is not one either.
	strUnion := Parse(`"a|b"|"c"`)
	union, ok = strUnion.(*Union)
	require.True(t, ok)
	assert.Len(t, union.Elems, 2)
	assert.True(t, Equal(NewStrLit("a|b"), union.Elems[0]))
}

func TestParseNumberMultiplier(t *testing.T) {
	ty := Parse("2Ki")
	mul, ok := ty.(*NumberMultiplier)
	require.True(t, ok)
	assert.True(t, mul.IsLiteral)
	assert.Equal(t, int64(2), mul.Raw)
	assert.Equal(t, "Ki", mul.Suffix)
	assert.Equal(t, float64(2048), mul.Value)

	// A leading zero disqualifies the multiplier form.
	named, ok := Parse("0Ki").(*Named)
	require.True(t, ok)
	assert.Equal(t, "0Ki", named.Name)
}

func TestParseNamed(t *testing.T) {
	named, ok := Parse("Person").(*Named)
	require.True(t, ok)
	assert.Equal(t, "Person", named.Name)

	named, ok = Parse("pkg.Person").(*Named)
	require.True(t, ok)
	assert.Equal(t, "pkg.Person", named.Name)
}

func TestAnnotationRoundTrip(t *testing.T) {
	for _, tyStr := range []string{
		"int", "str", "[int]", "{str:int}", "[[str]]", "{str:[int]}",
	} {
		ty := Parse(tyStr)
		assert.True(t, Equal(ty, Parse(ty.AnnotationString())),
			"round trip of %v through %v", tyStr, ty.AnnotationString())
	}
}

func TestSplitTypeUnion(t *testing.T) {
	assert.Equal(t, []string{"int", "str"}, SplitTypeUnion("int|str"))
	assert.Equal(t, []string{"[int|str]", "bool"}, SplitTypeUnion("[int|str]|bool"))
	assert.Equal(t, []string{`"a|b"`, "int"}, SplitTypeUnion(`"a|b"|int`))
}

func TestSeparateKV(t *testing.T) {
	k, v := SeparateKV("str:int")
	assert.Equal(t, "str", k)
	assert.Equal(t, "int", v)

	k, v = SeparateKV("str:{str:int}")
	assert.Equal(t, "str", k)
	assert.Equal(t, "{str:int}", v)

	k, v = SeparateKV("int")
	assert.Equal(t, "", k)
	assert.Equal(t, "", v)
}

func TestDereferenceType(t *testing.T) {
	assert.Equal(t, "int", DereferenceType("[int]"))
	assert.Equal(t, "str:int", DereferenceType("{str:int}"))
	assert.Equal(t, "int", DereferenceType("int"))
}

func TestCalNum(t *testing.T) {
	assert.Equal(t, float64(2048), CalNum(2, "Ki"))
	assert.Equal(t, float64(3000), CalNum(3, "k"))
	assert.Equal(t, 0.001, CalNum(1, "m"))
	assert.Equal(t, float64(5), CalNum(5, "??"), "unknown suffixes leave the value unscaled")
}
