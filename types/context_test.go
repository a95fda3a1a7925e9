package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDependencyCycleDetection(t *testing.T) {
	ctx := NewContext()
	ctx.AddDependency("a", "b")
	ctx.AddDependency("b", "c")
	assert.False(t, ctx.IsCyclic())

	ctx.AddDependency("c", "a")
	assert.True(t, ctx.IsCyclic())
}

func TestSelfDependencyIsCyclic(t *testing.T) {
	ctx := NewContext()
	ctx.AddDependency("a", "a")
	assert.True(t, ctx.IsCyclic())
}

func TestInferToVariable(t *testing.T) {
	ctx := NewContext()
	assert.Equal(t, Int, ctx.InferToVariable(NewIntLit(3)))
	assert.Equal(t, Str, ctx.InferToVariable(NewStrLit("a")))
	assert.Equal(t, Bool, ctx.InferToVariable(NewBoolLit(true)))
	assert.Equal(t, Any, ctx.InferToVariable(None), "a variable initialised to None accepts anything")
	assert.True(t, Equal(NewList(Int), ctx.InferToVariable(NewList(NewIntLit(1)))))
	assert.True(t, Equal(NewDict(Str, Int), ctx.InferToVariable(NewDict(NewStrLit("k"), NewIntLit(1)))))

	// A literal union collapses into the base type.
	assert.Equal(t, Int, ctx.InferToVariable(NewUnion(NewIntLit(1), NewIntLit(2))))
}

func TestLiteralUnionToVariable(t *testing.T) {
	ctx := NewContext()
	// Non-union literals pass through untouched.
	lit := NewIntLit(1)
	assert.Equal(t, Type(lit), ctx.LiteralUnionToVariable(lit))
	assert.Equal(t, Int, ctx.LiteralUnionToVariable(NewUnion(NewIntLit(1), NewIntLit(2))))
}

func TestKindUnionPredicates(t *testing.T) {
	ctx := NewContext()
	assert.True(t, ctx.IsNumberOrNumberUnion(Int))
	assert.True(t, ctx.IsNumberOrNumberUnion(NewUnion(Int, Float)))
	assert.False(t, ctx.IsNumberOrNumberUnion(NewUnion(Int, Str)))

	assert.True(t, ctx.IsStrOrStrUnion(NewStrLit("a")))
	assert.True(t, ctx.IsConfigOrConfigUnion(NewDict(Str, Any)))
	assert.True(t, ctx.IsConfigOrConfigUnion(NewSchemaType("S", "__main__", "main.k")))
	assert.False(t, ctx.IsConfigOrConfigUnion(Int))

	assert.True(t, ctx.IsMulValOrUnion(Str))
	assert.True(t, ctx.IsMulValOrUnion(NewList(Int)))
}
