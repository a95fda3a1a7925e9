package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcl-lang/kcl-sub002/ast"
	"github.com/kcl-lang/kcl-sub002/failed"
	"github.com/kcl-lang/kcl-sub002/types"
)

func trueLit(line uint64) *ast.NameConstantLit {
	return &ast.NameConstantLit{Range: atLine(line), Value: ast.NameConstantTrue}
}

func listOf(line uint64, elts ...ast.Expr) *ast.ListExpr {
	return &ast.ListExpr{Range: atLine(line), Elts: elts}
}

func TestLambdaCallTyping(t *testing.T) {
	lambda := &ast.LambdaExpr{
		Range: atLine(1),
		Args: &ast.Arguments{
			Range:  atLine(1),
			Args:   []*ast.Identifier{testIdent(1, ast.ExprContextLoad, "a")},
			TyList: []string{"int"},
		},
		ReturnTy: "int",
		Body: []ast.Stmt{&ast.ExprStmt{Range: atLine(1), Exprs: []ast.Expr{
			&ast.BinaryExpr{
				Range: atLine(1),
				Left:  testIdent(1, ast.ExprContextLoad, "a"),
				Op:    ast.BinOpAdd,
				Right: intLit(1, 1),
			},
		}}},
	}
	call := &ast.CallExpr{
		Range: atLine(2),
		Func:  testIdent(2, ast.ExprContextLoad, "f"),
		Args:  []ast.Expr{intLit(2, 1)},
	}
	ps := resolveMain(
		assign(1, "f", "", lambda),
		assign(2, "r", "", call),
	)
	assertClean(t, ps)

	_, ok := mainObject(t, ps, "f").Ty.(*types.Function)
	require.True(t, ok, "expected function type, got %v", mainObject(t, ps, "f").Ty.TypeString())
	assert.True(t, types.Equal(types.Int, mainObject(t, ps, "r").Ty))
}

func TestLambdaLastStatementMustBeExpression(t *testing.T) {
	lambda := &ast.LambdaExpr{
		Range: atLine(1),
		Body: []ast.Stmt{&ast.IfStmt{
			Range: atLine(1),
			Cond:  trueLit(1),
			Body:  []ast.Stmt{assign(1, "_x", "", intLit(1, 1))},
		}},
	}
	ps := resolveMain(assign(1, "f", "", lambda))
	assertDiagnostic(t, ps, failed.CompileError,
		"The last statement of the lambda body must be a expression")
}

func TestLambdaReturnAnnotationBoundsBodyType(t *testing.T) {
	lambda := &ast.LambdaExpr{
		Range:    atLine(1),
		ReturnTy: "int",
		Body: []ast.Stmt{&ast.ExprStmt{
			Range: atLine(2),
			Exprs: []ast.Expr{strLit(2, "oops")},
		}},
	}
	ps := resolveMain(assign(1, "f", "", lambda))
	assertDiagnostic(t, ps, failed.TypeError, "expected int, got str(oops)")
}

func TestListSubscript(t *testing.T) {
	ps := resolveMain(
		assign(1, "l", "", listOf(1, intLit(1, 1), intLit(1, 2))),
		assign(2, "e", "", &ast.Subscript{
			Range: atLine(2),
			Value: testIdent(2, ast.ExprContextLoad, "l"),
			Index: intLit(2, 0),
		}),
	)
	assertClean(t, ps)
	assert.True(t, types.Equal(types.Int, mainObject(t, ps, "e").Ty))
}

func TestStringSliceYieldsString(t *testing.T) {
	ps := resolveMain(
		assign(1, "s", "", strLit(1, "hello")),
		assign(2, "part", "", &ast.Subscript{
			Range: atLine(2),
			Value: testIdent(2, ast.ExprContextLoad, "s"),
			Lower: intLit(2, 1),
			Upper: intLit(2, 3),
		}),
	)
	assertClean(t, ps)
	assert.True(t, types.Equal(types.Str, mainObject(t, ps, "part").Ty))
}

func TestSubscriptOnScalar(t *testing.T) {
	ps := resolveMain(
		assign(1, "n", "", intLit(1, 1)),
		assign(2, "e", "", &ast.Subscript{
			Range: atLine(2),
			Value: testIdent(2, ast.ExprContextLoad, "n"),
			Index: intLit(2, 0),
		}),
	)
	assertDiagnostic(t, ps, failed.CompileError, "'int' object is not subscriptable")
}

func TestCompareYieldsBool(t *testing.T) {
	ps := resolveMain(assign(1, "b", "", &ast.Compare{
		Range:       atLine(1),
		Left:        intLit(1, 1),
		Ops:         []ast.CmpOp{ast.CmpOpLt, ast.CmpOpLt},
		Comparators: []ast.Expr{intLit(1, 2), intLit(1, 3)},
	}))
	assertClean(t, ps)
	assert.True(t, types.Equal(types.Bool, mainObject(t, ps, "b").Ty))
}

func TestIfExprUnionsBranches(t *testing.T) {
	ps := resolveMain(assign(1, "x", "", &ast.IfExpr{
		Range:  atLine(1),
		Body:   intLit(1, 1),
		Cond:   trueLit(1),
		Orelse: strLit(1, "s"),
	}))
	assertClean(t, ps)

	unionTy, ok := mainObject(t, ps, "x").Ty.(*types.Union)
	require.True(t, ok, "expected union type, got %v", mainObject(t, ps, "x").Ty.TypeString())
	assert.Len(t, unionTy.Elems, 2)
}

func TestQuantExprAllYieldsBool(t *testing.T) {
	quant := &ast.QuantExpr{
		Range:     atLine(1),
		Target:    listOf(1, intLit(1, 1), intLit(1, 2)),
		Variables: []*ast.Identifier{testIdent(1, ast.ExprContextLoad, "x")},
		Op:        ast.QuantOpAll,
		Test: &ast.Compare{
			Range:       atLine(1),
			Left:        testIdent(1, ast.ExprContextLoad, "x"),
			Ops:         []ast.CmpOp{ast.CmpOpGt},
			Comparators: []ast.Expr{intLit(1, 0)},
		},
	}
	ps := resolveMain(assign(1, "ok", "", quant))
	assertClean(t, ps)
	assert.True(t, types.Equal(types.Bool, mainObject(t, ps, "ok").Ty))
}

func TestQuantExprOverNonIterable(t *testing.T) {
	quant := &ast.QuantExpr{
		Range:     atLine(1),
		Target:    intLit(1, 3),
		Variables: []*ast.Identifier{testIdent(1, ast.ExprContextLoad, "x")},
		Op:        ast.QuantOpAny,
		Test:      trueLit(1),
	}
	ps := resolveMain(assign(1, "ok", "", quant))
	assertDiagnostic(t, ps, failed.TypeError, "'int(3)' object is not iterable")
}

func TestListComprehension(t *testing.T) {
	comp := &ast.ListComp{
		Range: atLine(1),
		Elt:   testIdent(1, ast.ExprContextLoad, "x"),
		Generators: []*ast.CompClause{{
			Range:   atLine(1),
			Targets: []*ast.Identifier{testIdent(1, ast.ExprContextLoad, "x")},
			Iter:    listOf(1, intLit(1, 1), intLit(1, 2)),
		}},
	}
	ps := resolveMain(assign(1, "l", "", comp))
	assertClean(t, ps)

	listTy, ok := mainObject(t, ps, "l").Ty.(*types.List)
	require.True(t, ok, "expected list type, got %v", mainObject(t, ps, "l").Ty.TypeString())
	assert.True(t, types.Equal(types.Int, listTy.Elem))
}

func TestListComprehensionRejectsUnpacking(t *testing.T) {
	comp := &ast.ListComp{
		Range: atLine(1),
		Elt: &ast.StarredExpr{
			Range: atLine(1),
			Value: testIdent(1, ast.ExprContextLoad, "x"),
		},
		Generators: []*ast.CompClause{{
			Range:   atLine(1),
			Targets: []*ast.Identifier{testIdent(1, ast.ExprContextLoad, "x")},
			Iter:    listOf(1, listOf(1, intLit(1, 1))),
		}},
	}
	ps := resolveMain(assign(1, "l", "", comp))
	assertDiagnostic(t, ps, failed.CompileError, "list unpacking cannot be used in list comprehension")
}

func TestLoopVariableDoesNotLeak(t *testing.T) {
	comp := &ast.ListComp{
		Range: atLine(2),
		Elt:   testIdent(2, ast.ExprContextLoad, "x"),
		Generators: []*ast.CompClause{{
			Range:   atLine(2),
			Targets: []*ast.Identifier{testIdent(2, ast.ExprContextLoad, "x")},
			Iter:    listOf(2, strLit(2, "a")),
		}},
	}
	ps := resolveMain(
		assign(1, "x", "", intLit(1, 7)),
		assign(2, "l", "", comp),
	)
	assertClean(t, ps)
	// The comprehension variable shadows the global without retyping it.
	assert.True(t, types.Equal(types.Int, mainObject(t, ps, "x").Ty))
}

func TestStringMemberCall(t *testing.T) {
	call := &ast.CallExpr{
		Range: atLine(1),
		Func: &ast.SelectorExpr{
			Range: atLine(1),
			Value: strLit(1, "abc"),
			Attr:  testIdent(1, ast.ExprContextLoad, "upper"),
		},
	}
	ps := resolveMain(assign(1, "s", "", call))
	assertClean(t, ps)
	assert.True(t, types.Equal(types.Str, mainObject(t, ps, "s").Ty))
}

func TestAssertMessageMustBeString(t *testing.T) {
	ps := resolveMain(&ast.AssertStmt{
		Range: atLine(1),
		Test:  trueLit(1),
		Msg:   intLit(1, 1),
	})
	assertDiagnostic(t, ps, failed.TypeError, "expected str, got int(1)")
}

func TestIfStmtBodyAssignsGlobal(t *testing.T) {
	ps := resolveMain(&ast.IfStmt{
		Range: atLine(1),
		Cond:  trueLit(1),
		Body:  []ast.Stmt{assign(2, "b", "", intLit(2, 1))},
	})
	assertClean(t, ps)
	assert.True(t, types.Equal(types.Int, mainObject(t, ps, "b").Ty))
}

func TestFormatSpecValidation(t *testing.T) {
	joined := &ast.JoinedString{
		Range: atLine(1),
		Values: []ast.Expr{&ast.FormattedValue{
			Range:      atLine(1),
			Value:      intLit(1, 1),
			FormatSpec: "#jon",
		}},
	}
	ps := resolveMain(assign(1, "s", "", joined))
	assertDiagnostic(t, ps, failed.CompileError, "#jon is a invalid format spec")
}

func TestNumberUnitSuffix(t *testing.T) {
	lit := &ast.NumberLit{Range: atLine(1), IntValue: 2, BinarySuffix: "Ki"}
	ps := resolveMain(assign(1, "size", "", lit))
	assertClean(t, ps)

	multiplier, ok := mainObject(t, ps, "size").Ty.(*types.NumberMultiplier)
	require.True(t, ok, "expected number multiplier, got %v", mainObject(t, ps, "size").Ty.TypeString())
	assert.Equal(t, float64(2048), multiplier.Value)
}

func TestFloatWithUnitSuffix(t *testing.T) {
	lit := &ast.NumberLit{Range: atLine(1), IsFloat: true, FloatValue: 1.5, BinarySuffix: "Ki"}
	ps := resolveMain(assign(1, "size", "", lit))
	assertDiagnostic(t, ps, failed.CompileError, "float literal can not be followed the unit suffix")
}

func TestStarredUnpackInList(t *testing.T) {
	ps := resolveMain(
		assign(1, "base", "", listOf(1, intLit(1, 1))),
		assign(2, "all", "", listOf(2,
			&ast.StarredExpr{Range: atLine(2), Value: testIdent(2, ast.ExprContextLoad, "base")},
			intLit(2, 2),
		)),
	)
	assertClean(t, ps)
}

func TestStarredUnpackOnScalar(t *testing.T) {
	ps := resolveMain(assign(1, "l", "", listOf(1,
		&ast.StarredExpr{Range: atLine(1), Value: intLit(1, 1)},
	)))
	assertDiagnostic(t, ps, failed.CompileError, "only list, dict, schema object can be used * unpacked")
}

func TestDictUnpackEntry(t *testing.T) {
	base := config(1, entry(1, "a", intLit(1, 1), ast.ConfigOpUnion))
	unpack := &ast.ConfigEntry{
		Range: atLine(2),
		Value: testIdent(2, ast.ExprContextLoad, "base"),
		Op:    ast.ConfigOpUnion,
	}
	ps := resolveMain(
		assign(1, "base", "", base),
		assign(2, "merged", "", config(2, unpack,
			entry(2, "b", intLit(2, 2), ast.ConfigOpUnion))),
	)
	assertClean(t, ps)
	_, ok := mainObject(t, ps, "merged").Ty.(*types.Dict)
	assert.True(t, ok, "expected dict type, got %v", mainObject(t, ps, "merged").Ty.TypeString())
}

func TestDictUnpackOnScalar(t *testing.T) {
	unpack := &ast.ConfigEntry{
		Range: atLine(1),
		Value: intLit(1, 1),
		Op:    ast.ConfigOpUnion,
	}
	ps := resolveMain(assign(1, "d", "", config(1, unpack)))
	assertDiagnostic(t, ps, failed.CompileError, "only dict and schema can be used ** unpack, got 'int(1)'")
}
