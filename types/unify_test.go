package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubsumeReflexive(t *testing.T) {
	for _, ty := range []Type{
		Any, Bool, Int, Float, Str, None,
		NewIntLit(3), NewStrLit("abc"),
		NewList(Int), NewDict(Str, Int),
		NewUnion(Int, Str),
	} {
		assert.True(t, Subsume(ty, ty, true), "expected %v to subsume itself", ty.TypeString())
	}
}

func TestLiteralNarrowing(t *testing.T) {
	assert.True(t, AssignableTo(NewIntLit(1), Int))
	assert.True(t, AssignableTo(NewIntLit(1), Float), "int literals widen to float")
	assert.True(t, AssignableTo(NewStrLit("a"), Str))
	assert.False(t, AssignableTo(NewIntLit(1), Str))
	assert.False(t, AssignableTo(NewStrLit("a"), Int))
	assert.False(t, AssignableTo(Int, NewIntLit(1)), "a variable type never narrows to a literal")
}

func TestUnionAssignability(t *testing.T) {
	intOrStr := NewUnion(Int, Str)
	assert.True(t, AssignableTo(Int, intOrStr))
	assert.True(t, AssignableTo(NewStrLit("a"), intOrStr))
	assert.False(t, AssignableTo(Bool, intOrStr))

	// Every member of a left hand union must fit.
	assert.True(t, AssignableTo(NewUnion(Int, NewIntLit(2)), Int))
	assert.False(t, AssignableTo(intOrStr, Int))
}

func TestAnyAndNone(t *testing.T) {
	assert.True(t, AssignableTo(Any, Int))
	assert.True(t, AssignableTo(Int, Any))
	assert.True(t, AssignableTo(None, Str), "none is assignable everywhere")
	assert.False(t, AssignableTo(Void, Int), "void is not a value type")
}

func TestContainerSubsume(t *testing.T) {
	assert.True(t, AssignableTo(NewList(NewIntLit(1)), NewList(Int)))
	assert.False(t, AssignableTo(NewList(Str), NewList(Int)))
	assert.True(t, AssignableTo(NewDict(Str, NewStrLit("x")), NewDict(Str, Str)))
	assert.False(t, AssignableTo(NewDict(Str, Int), NewDict(Str, Str)))
}

func TestSchemaSubsume(t *testing.T) {
	base := NewSchemaType("Base", "__main__", "main.k")
	derived := NewSchemaType("Derived", "__main__", "main.k")
	derived.Base = base
	other := NewSchemaType("Other", "__main__", "main.k")

	assert.True(t, IsSubSchemaOf(derived, base))
	assert.False(t, IsSubSchemaOf(base, derived))
	assert.True(t, AssignableTo(derived, base))
	assert.False(t, AssignableTo(other, base))
}

func TestNumberMultiplierSubsume(t *testing.T) {
	lit := NewNumberMultiplier(2048, 2, "Ki")
	sameLit := NewNumberMultiplier(2048, 2, "Ki")
	otherLit := NewNumberMultiplier(4096, 4, "Ki")
	variable := NonLiteralNumberMultiplier()

	assert.True(t, Subsume(lit, sameLit, true))
	assert.False(t, Subsume(lit, otherLit, true))
	assert.True(t, Subsume(lit, variable, true), "literal multipliers widen to the variable form")
	assert.False(t, Subsume(variable, lit, true))
}

func TestSupDeduplicatesAndWidens(t *testing.T) {
	assert.Equal(t, Int, Sup([]Type{Int, Int}))
	assert.Equal(t, Any, Sup(nil), "empty supremum is any")
	assert.Equal(t, Int, Sup([]Type{Void, Int}), "void never contributes")

	// Subsumed members are removed: int(1) folds into int.
	assert.Equal(t, Int, Sup([]Type{NewIntLit(1), Int}))

	sup := Sup([]Type{Int, Str})
	union, ok := sup.(*Union)
	if assert.True(t, ok) {
		assert.Len(t, union.Elems, 2)
	}
}

func TestTypeOfKeepsSubTypesWhenAsked(t *testing.T) {
	ty := TypeOf([]Type{NewIntLit(1), Int}, false)
	union, ok := ty.(*Union)
	if assert.True(t, ok) {
		assert.Len(t, union.Elems, 2)
	}
}

func TestIsUpperBound(t *testing.T) {
	assert.True(t, IsUpperBound(Int, NewIntLit(1)))
	assert.False(t, IsUpperBound(NewIntLit(1), Int))
	assert.True(t, IsUpperBound(NewUnion(Int, Str), Str))
	// Pure any on the left does not count at this level.
	assert.False(t, IsUpperBound(Int, Str))
}
