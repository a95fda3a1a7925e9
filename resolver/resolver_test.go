package resolver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcl-lang/kcl-sub002/ast"
	"github.com/kcl-lang/kcl-sub002/failed"
	"github.com/kcl-lang/kcl-sub002/types"
)

// The tests below build small programs by hand, the way the JSON
// decoder would produce them, and resolve them end to end.

const testFile = "main.k"

func atLine(line uint64) ast.Range {
	return ast.Range{
		PosStart: ast.Pos{Filename: testFile, Line: line, Column: 1},
		PosEnd:   ast.Pos{Filename: testFile, Line: line, Column: 80},
	}
}

func testName(line uint64, value string) *ast.Name {
	return &ast.Name{Range: atLine(line), Value: value}
}

func testIdent(line uint64, ctx ast.ExprContext, names ...string) *ast.Identifier {
	parts := make([]*ast.Name, 0, len(names))
	for _, n := range names {
		parts = append(parts, testName(line, n))
	}
	return &ast.Identifier{Range: atLine(line), Names: parts, Ctx: ctx}
}

func intLit(line uint64, v int64) *ast.NumberLit {
	return &ast.NumberLit{Range: atLine(line), IntValue: v}
}

func strLit(line uint64, v string) *ast.StringLit {
	return &ast.StringLit{Range: atLine(line), Value: v}
}

func assign(line uint64, target, ty string, value ast.Expr) *ast.AssignStmt {
	return &ast.AssignStmt{
		Range:   atLine(line),
		Targets: []*ast.Identifier{testIdent(line, ast.ExprContextStore, target)},
		Ty:      ty,
		Value:   value,
	}
}

func entry(line uint64, key string, value ast.Expr, op ast.ConfigOp) *ast.ConfigEntry {
	return &ast.ConfigEntry{
		Range: atLine(line),
		Key:   testIdent(line, ast.ExprContextLoad, key),
		Value: value,
		Op:    op,
	}
}

func config(line uint64, items ...*ast.ConfigEntry) *ast.ConfigExpr {
	return &ast.ConfigExpr{Range: atLine(line), Items: items}
}

func schemaExpr(line uint64, schemaName string, cfg ast.Expr) *ast.SchemaExpr {
	return &ast.SchemaExpr{
		Range:  atLine(line),
		Name:   testIdent(line, ast.ExprContextLoad, schemaName),
		Config: cfg,
	}
}

func schemaAttr(line uint64, name, ty string) *ast.SchemaAttr {
	return &ast.SchemaAttr{
		Range: atLine(line),
		Name:  testName(line, name),
		Ty:    ty,
		Op:    ast.AugOpAssign,
	}
}

func schemaStmt(line uint64, name string, body ...ast.Stmt) *ast.SchemaStmt {
	return &ast.SchemaStmt{
		Range: ast.Range{
			PosStart: ast.Pos{Filename: testFile, Line: line, Column: 1},
			PosEnd:   ast.Pos{Filename: testFile, Line: line + uint64(len(body)) + 1, Column: 80},
		},
		Name: testName(line, name),
		Body: body,
	}
}

func mainProgram(stmts ...ast.Stmt) *ast.Program {
	return &ast.Program{
		Root: "/testdata",
		Pkgs: map[string][]*ast.Module{
			ast.MainPkg: {{
				Range: ast.Range{
					PosStart: ast.Pos{Filename: testFile, Line: 1, Column: 1},
					PosEnd:   ast.Pos{Filename: testFile, Line: 1000, Column: 1},
				},
				Filename: testFile,
				Pkg:      ast.MainPkg,
				Name:     "main",
				Body:     stmts,
			}},
		},
	}
}

func resolveMain(stmts ...ast.Stmt) *ProgramScope {
	return Resolve(mainProgram(stmts...), Options{LintCheck: true})
}

func diagnosticText(ps *ProgramScope) string {
	parts := make([]string, 0, len(ps.Handler.Diagnostics))
	for _, d := range ps.Handler.Diagnostics {
		parts = append(parts, d.Error())
	}
	return strings.Join(parts, "\n")
}

func assertDiagnostic(t *testing.T, ps *ProgramScope, code failed.ErrCode, substr string) {
	t.Helper()
	for _, d := range ps.Handler.Diagnostics {
		if d.Code != code {
			continue
		}
		if strings.Contains(d.Error(), substr) {
			return
		}
	}
	t.Errorf("no %v diagnostic containing %q, got:\n%v", code, substr, diagnosticText(ps))
}

func assertClean(t *testing.T, ps *ProgramScope) {
	t.Helper()
	assert.False(t, ps.Handler.HasErrors(), "unexpected errors:\n%v", diagnosticText(ps))
}

func mainObject(t *testing.T, ps *ProgramScope, name string) *ScopeObject {
	t.Helper()
	scope, ok := ps.MainScope()
	require.True(t, ok, "main scope missing")
	obj, ok := scope.Elems.Get(name)
	require.True(t, ok, "object %q missing from main scope", name)
	return obj
}

func TestGlobalVariableInference(t *testing.T) {
	ps := resolveMain(
		assign(1, "a", "", intLit(1, 1)),
		assign(2, "b", "", strLit(2, "hello")),
		assign(3, "c", "", &ast.ListExpr{Range: atLine(3), Elts: []ast.Expr{intLit(3, 1), intLit(3, 2)}}),
	)
	assertClean(t, ps)

	assert.True(t, types.Equal(types.Int, mainObject(t, ps, "a").Ty))
	assert.True(t, types.Equal(types.Str, mainObject(t, ps, "b").Ty))
	listTy, ok := mainObject(t, ps, "c").Ty.(*types.List)
	require.True(t, ok, "expected list type, got %v", mainObject(t, ps, "c").Ty.TypeString())
	assert.True(t, types.Equal(types.Int, listTy.Elem))
}

func TestImmutableVariableRedeclaration(t *testing.T) {
	ps := resolveMain(
		assign(1, "a", "", intLit(1, 1)),
		assign(2, "a", "", intLit(2, 2)),
	)
	assertDiagnostic(t, ps, failed.ImmutableError,
		"Can not change the value of 'a', because it was declared immutable")
	assertDiagnostic(t, ps, failed.ImmutableError, "The variable 'a' is declared here firstly")
	assertDiagnostic(t, ps, failed.ImmutableError, "did you mean '_a'?")
}

func TestPrivateVariableReassignmentIsAllowed(t *testing.T) {
	ps := resolveMain(
		assign(1, "_a", "", intLit(1, 1)),
		assign(2, "_a", "", intLit(2, 2)),
	)
	assertClean(t, ps)
}

func TestAugmentedAssignToImmutable(t *testing.T) {
	ps := resolveMain(
		assign(1, "a", "", intLit(1, 1)),
		&ast.AugAssignStmt{
			Range:  atLine(2),
			Target: testIdent(2, ast.ExprContextStore, "a"),
			Op:     ast.AugOpAdd,
			Value:  intLit(2, 1),
		},
	)
	assertDiagnostic(t, ps, failed.ImmutableError, "Immutable variable 'a' is modified during compiling")
}

func TestAnnotationTypeConflict(t *testing.T) {
	ps := resolveMain(
		assign(1, "_a", "str", strLit(1, "x")),
		assign(2, "_a", "int", intLit(2, 1)),
	)
	assertDiagnostic(t, ps, failed.TypeError, "can not change the type of '_a'")
}

func TestAnnotatedValueMismatch(t *testing.T) {
	ps := resolveMain(assign(1, "a", "str", intLit(1, 1)))
	assertDiagnostic(t, ps, failed.TypeError, "expected str, got int(1)")
}

func TestSchemaConfigAttrTypeMismatch(t *testing.T) {
	ps := resolveMain(
		schemaStmt(1, "Person", schemaAttr(2, "name", "str")),
		assign(4, "p", "", schemaExpr(4, "Person",
			config(4, entry(4, "name", intLit(4, 1), ast.ConfigOpUnion)))),
	)
	assertDiagnostic(t, ps, failed.TypeError, "expected str, got int(1)")
}

func TestSchemaConfigValidInstance(t *testing.T) {
	ps := resolveMain(
		schemaStmt(1, "Person",
			schemaAttr(2, "name", "str"),
			schemaAttr(3, "age", "int"),
		),
		assign(5, "p", "", schemaExpr(5, "Person", config(5,
			entry(5, "name", strLit(5, "alice"), ast.ConfigOpUnion),
			entry(5, "age", intLit(5, 30), ast.ConfigOpUnion),
		))),
	)
	assertClean(t, ps)

	instanceTy, ok := mainObject(t, ps, "p").Ty.(*types.SchemaType)
	require.True(t, ok, "expected schema type, got %v", mainObject(t, ps, "p").Ty.TypeString())
	assert.Equal(t, "Person", instanceTy.Name)
	assert.True(t, instanceTy.IsInstance)
}

func TestUndeclaredSchemaAttr(t *testing.T) {
	ps := resolveMain(
		schemaStmt(1, "Person", schemaAttr(2, "name", "str")),
		assign(4, "p", "", schemaExpr(4, "Person",
			config(4, entry(4, "age", intLit(4, 1), ast.ConfigOpUnion)))),
	)
	assertDiagnostic(t, ps, failed.IllegalAttributeError, "Cannot add member 'age' to schema 'Person'")
}

func TestConfigAttrTypoSuggestion(t *testing.T) {
	ps := resolveMain(
		schemaStmt(1, "Person", schemaAttr(2, "name", "str")),
		assign(4, "p", "", schemaExpr(4, "Person",
			config(4, entry(4, "nmae", strLit(4, "x"), ast.ConfigOpUnion)))),
	)
	assertDiagnostic(t, ps, failed.IllegalAttributeError, "did you mean 'name'?")
}

func TestIndexSignatureAcceptsUndeclaredAttrs(t *testing.T) {
	schema := schemaStmt(1, "Labels")
	schema.IndexSignature = &ast.SchemaIndexSignature{
		Range: atLine(2),
		KeyTy: "str",
		ValTy: "str",
	}
	ps := resolveMain(
		schema,
		assign(4, "l", "", schemaExpr(4, "Labels",
			config(4, entry(4, "env", strLit(4, "prod"), ast.ConfigOpUnion)))),
	)
	assertClean(t, ps)
}

func TestIndexSignatureValueTypeCheck(t *testing.T) {
	schema := schemaStmt(1, "Labels")
	schema.IndexSignature = &ast.SchemaIndexSignature{
		Range: atLine(2),
		KeyTy: "str",
		ValTy: "str",
	}
	ps := resolveMain(
		schema,
		assign(4, "l", "", schemaExpr(4, "Labels",
			config(4, entry(4, "env", intLit(4, 1), ast.ConfigOpUnion)))),
	)
	assertDiagnostic(t, ps, failed.TypeError, "expected str, got int(1)")
}

func TestMixinFlagNamingMismatch(t *testing.T) {
	flagged := schemaStmt(1, "Extra")
	flagged.IsMixin = true
	named := schemaStmt(3, "ExtraMixin")

	ps := resolveMain(flagged, named)
	assertDiagnostic(t, ps, failed.SchemaFlagMismatchWarning,
		"schema 'Extra' is declared as a mixin but its name does not end with 'Mixin'")
	assertDiagnostic(t, ps, failed.SchemaFlagMismatchWarning,
		"schema 'ExtraMixin' is named like a mixin but is not declared as one")
}

func TestSchemaInheritanceCycle(t *testing.T) {
	a := schemaStmt(1, "A")
	a.ParentName = testIdent(1, ast.ExprContextLoad, "B")
	b := schemaStmt(3, "B")
	b.ParentName = testIdent(3, ast.ExprContextLoad, "A")

	ps := resolveMain(a, b)
	assertDiagnostic(t, ps, failed.CycleInheritError, "There is a circular reference between schema")
}

func TestAttrTypoSuggestion(t *testing.T) {
	ps := resolveMain(
		schemaStmt(1, "Person", schemaAttr(2, "name", "str")),
		assign(4, "p", "", schemaExpr(4, "Person",
			config(4, entry(4, "name", strLit(4, "x"), ast.ConfigOpUnion)))),
		assign(5, "n", "", &ast.SelectorExpr{
			Range: atLine(5),
			Value: testIdent(5, ast.ExprContextLoad, "p"),
			Attr:  testIdent(5, ast.ExprContextLoad, "nme"),
		}),
	)
	assertDiagnostic(t, ps, failed.TypeError, "has no attribute nme")
	assertDiagnostic(t, ps, failed.TypeError, "did you mean 'name'?")
}

func TestInsertOpRequiresList(t *testing.T) {
	ps := resolveMain(
		assign(1, "a", "", config(1, entry(1, "x", intLit(1, 1), ast.ConfigOpInsert))),
	)
	assertDiagnostic(t, ps, failed.IllegalAttributeError, "only list type can in inserted, got 'int(1)'")
}

func TestInsertOpOnListValue(t *testing.T) {
	ps := resolveMain(
		assign(1, "a", "", config(1, entry(1, "x",
			&ast.ListExpr{Range: atLine(1), Elts: []ast.Expr{intLit(1, 1)}},
			ast.ConfigOpInsert))),
	)
	assertClean(t, ps)
}

func TestNestedConfigKeyBuildsDict(t *testing.T) {
	nested := &ast.ConfigEntry{
		Range: atLine(1),
		Key:   testIdent(1, ast.ExprContextLoad, "outer", "inner"),
		Value: intLit(1, 1),
		Op:    ast.ConfigOpUnion,
	}
	ps := resolveMain(assign(1, "a", "", config(1, nested)))
	assertClean(t, ps)

	dictTy, ok := mainObject(t, ps, "a").Ty.(*types.Dict)
	require.True(t, ok, "expected dict type, got %v", mainObject(t, ps, "a").Ty.TypeString())
	attr, ok := dictTy.Attrs.Get("outer")
	require.True(t, ok, "expected per-key attr for 'outer'")
	_, ok = attr.Ty.(*types.Dict)
	assert.True(t, ok, "expected nested dict for 'outer', got %v", attr.Ty.TypeString())
}

func TestBuiltinCallArgCount(t *testing.T) {
	call := &ast.CallExpr{
		Range: atLine(1),
		Func:  testIdent(1, ast.ExprContextLoad, "len"),
		Args:  []ast.Expr{strLit(1, "a"), strLit(1, "b"), strLit(1, "c")},
	}
	ps := resolveMain(&ast.ExprStmt{Range: atLine(1), Exprs: []ast.Expr{call}})
	assertDiagnostic(t, ps, failed.CompileError,
		`"len" takes 1 positional argument(s) but 3 were given`)
}

func TestUnexpectedKeywordArgument(t *testing.T) {
	call := &ast.CallExpr{
		Range: atLine(1),
		Func:  testIdent(1, ast.ExprContextLoad, "len"),
		Args:  []ast.Expr{strLit(1, "a")},
		Keywords: []*ast.Keyword{{
			Range: atLine(1),
			Arg:   testIdent(1, ast.ExprContextLoad, "bogus"),
			Value: intLit(1, 1),
		}},
	}
	ps := resolveMain(&ast.ExprStmt{Range: atLine(1), Exprs: []ast.Expr{call}})
	assertDiagnostic(t, ps, failed.CompileError, `"len" got an unexpected keyword argument 'bogus'`)
}

func TestUnificationBindsSchemaType(t *testing.T) {
	ps := resolveMain(
		schemaStmt(1, "Person", schemaAttr(2, "name", "str")),
		&ast.UnificationStmt{
			Range:  atLine(4),
			Target: testIdent(4, ast.ExprContextStore, "p"),
			Value: schemaExpr(4, "Person",
				config(4, entry(4, "name", strLit(4, "x"), ast.ConfigOpUnion))),
		},
	)
	assertClean(t, ps)

	schemaTy, ok := mainObject(t, ps, "p").Ty.(*types.SchemaType)
	require.True(t, ok, "expected schema type, got %v", mainObject(t, ps, "p").Ty.TypeString())
	assert.Equal(t, "Person", schemaTy.Name)
}

func TestDivisionByZeroLiteral(t *testing.T) {
	ps := resolveMain(assign(1, "a", "", &ast.BinaryExpr{
		Range: atLine(1),
		Left:  intLit(1, 1),
		Op:    ast.BinOpDiv,
		Right: intLit(1, 0),
	}))
	assertDiagnostic(t, ps, failed.TypeError, "integer division or modulo by zero")
}

func TestUnsupportedBinaryOperand(t *testing.T) {
	ps := resolveMain(assign(1, "a", "", &ast.BinaryExpr{
		Range: atLine(1),
		Left:  strLit(1, "x"),
		Op:    ast.BinOpSub,
		Right: intLit(1, 1),
	}))
	assertDiagnostic(t, ps, failed.TypeError, "unsupported operand type(s) for -")
}

func TestUnusedImportWarning(t *testing.T) {
	program := mainProgram(
		&ast.ImportStmt{Range: atLine(1), Path: "helpers", Rawpath: "helpers", Name: "helpers"},
		assign(2, "a", "", intLit(2, 1)),
	)
	program.Pkgs["helpers"] = []*ast.Module{{
		Range:    atLine(1),
		Filename: "helpers/base.k",
		Pkg:      "helpers",
		Name:     "helpers",
		Body:     []ast.Stmt{assign(1, "x", "", intLit(1, 1))},
	}}

	ps := Resolve(program, Options{LintCheck: true})
	assertClean(t, ps)
	assertDiagnostic(t, ps, failed.UnusedImportWarning, "Module 'helpers' imported but unused")
}

func TestMissingImportTarget(t *testing.T) {
	ps := resolveMain(
		&ast.ImportStmt{Range: atLine(1), Path: "nosuch", Rawpath: "nosuch", Name: "nosuch"},
	)
	assertDiagnostic(t, ps, failed.CannotFindModule, "Cannot find the module nosuch")
}

func TestSystemModuleImportIsAlwaysResolvable(t *testing.T) {
	ps := resolveMain(
		&ast.ImportStmt{Range: atLine(1), Path: "math", Rawpath: "math", Name: "math"},
		assign(2, "a", "", &ast.SelectorExpr{
			Range: atLine(2),
			Value: testIdent(2, ast.ExprContextLoad, "math"),
			Attr:  testIdent(2, ast.ExprContextLoad, "log"),
		}),
	)
	assertClean(t, ps)
}

func TestSchemaMappingIsRegistered(t *testing.T) {
	ps := resolveMain(schemaStmt(1, "Person", schemaAttr(2, "name", "str")))
	assertClean(t, ps)

	schemaTy, ok := ps.SchemaMapping.Get(types.SchemaRuntimeKey(ast.MainPkg, "Person"))
	require.True(t, ok, "schema not registered in the mapping")
	attr, ok := schemaTy.AttrObj("name")
	require.True(t, ok, "attribute missing from the registered schema")
	assert.True(t, types.Equal(types.Str, attr.Ty))
}

func TestTypeAliasReservedName(t *testing.T) {
	ps := resolveMain(&ast.TypeAliasStmt{
		Range: atLine(1),
		Name:  testIdent(1, ast.ExprContextLoad, "str"),
		Ty:    "int",
	})
	assertDiagnostic(t, ps, failed.TypeError, "type alias 'str' cannot be the same as the built-in types")
}

func TestNodeTypeMapRecordsLiterals(t *testing.T) {
	lit := intLit(1, 7)
	ps := resolveMain(assign(1, "a", "", lit))
	assertClean(t, ps)

	ty, ok := ps.NodeTypeMap[lit]
	require.True(t, ok, "literal missing from the node type map")
	intLitTy, ok := ty.(*types.IntLit)
	require.True(t, ok, "expected int literal type, got %v", ty.TypeString())
	assert.Equal(t, int64(7), intLitTy.Value)
}

func TestMixinSuffixForcesMixinFlag(t *testing.T) {
	extra := schemaStmt(1, "ExtraMixin", schemaAttr(2, "extra", "str"))
	user := schemaStmt(4, "User", schemaAttr(5, "name", "str"))
	user.Mixins = []*ast.Identifier{testIdent(4, ast.ExprContextLoad, "ExtraMixin")}

	ps := resolveMain(
		extra, user,
		assign(7, "u", "", schemaExpr(7, "User", config(7,
			entry(7, "name", strLit(7, "x"), ast.ConfigOpUnion),
			entry(7, "extra", strLit(7, "y"), ast.ConfigOpUnion)))),
	)
	assertClean(t, ps)

	mixinTy, ok := ps.SchemaMapping.Get(types.SchemaRuntimeKey(ast.MainPkg, "ExtraMixin"))
	require.True(t, ok, "mixin schema missing from the registry")
	assert.True(t, mixinTy.IsMixin, "the Mixin name suffix must set the mixin flag")

	userTy, ok := ps.SchemaMapping.Get(types.SchemaRuntimeKey(ast.MainPkg, "User"))
	require.True(t, ok, "schema missing from the registry")
	_, ok = userTy.AttrObj("extra")
	assert.True(t, ok, "mixin attribute not merged into the schema")
}

func TestSchemaAttrNarrowingAgainstParent(t *testing.T) {
	parent := schemaStmt(1, "A", schemaAttr(2, "x", "int"))
	child := schemaStmt(4, "B", schemaAttr(5, "x", "str"))
	child.ParentName = testIdent(4, ast.ExprContextLoad, "A")

	ps := resolveMain(parent, child)
	assertDiagnostic(t, ps, failed.TypeError, "can't change schema field type of 'x'")
}

func TestInheritanceDepthThree(t *testing.T) {
	a := schemaStmt(1, "A", schemaAttr(2, "a", "int"))
	b := schemaStmt(4, "B", schemaAttr(5, "b", "int"))
	b.ParentName = testIdent(4, ast.ExprContextLoad, "A")
	c := schemaStmt(7, "C", schemaAttr(8, "c", "int"))
	c.ParentName = testIdent(7, ast.ExprContextLoad, "B")

	ps := resolveMain(a, b, c,
		assign(10, "v", "", schemaExpr(10, "C", config(10,
			entry(10, "a", intLit(10, 1), ast.ConfigOpUnion),
			entry(10, "b", intLit(10, 2), ast.ConfigOpUnion),
			entry(10, "c", intLit(10, 3), ast.ConfigOpUnion)))),
	)
	assertClean(t, ps)

	grandchild, ok := ps.SchemaMapping.Get(types.SchemaRuntimeKey(ast.MainPkg, "C"))
	require.True(t, ok, "schema missing from the registry")
	attr, ok := grandchild.AttrObj("a")
	require.True(t, ok, "grandparent attribute not reachable at depth 3")
	assert.True(t, types.Equal(types.Int, attr.Ty))
}

func TestUnificationChecksDictTarget(t *testing.T) {
	ps := resolveMain(
		&ast.TypeAliasStmt{
			Range: atLine(1),
			Name:  testIdent(1, ast.ExprContextStore, "D"),
			Ty:    "{str:str}",
		},
		assign(2, "d", "{str:str}", config(2)),
		&ast.UnificationStmt{
			Range:  atLine(3),
			Target: testIdent(3, ast.ExprContextStore, "d"),
			Value: schemaExpr(3, "D",
				config(3, entry(3, "x", intLit(3, 1), ast.ConfigOpUnion))),
		},
	)
	assertDiagnostic(t, ps, failed.TypeError, "expected str, got int(1)")
}

func TestUnionConfigContextNarrowsBranches(t *testing.T) {
	ps := resolveMain(
		schemaStmt(1, "A", schemaAttr(2, "name", "str")),
		schemaStmt(4, "B", schemaAttr(5, "name", "str"), schemaAttr(6, "count", "int")),
		assign(8, "x", "A|B", config(8,
			entry(8, "count", strLit(8, "s"), ast.ConfigOpUnion))),
	)
	assertDiagnostic(t, ps, failed.TypeError, "expected int")
}

func TestUnionConfigContextRejectsUnknownKey(t *testing.T) {
	ps := resolveMain(
		schemaStmt(1, "A", schemaAttr(2, "name", "str")),
		schemaStmt(4, "B", schemaAttr(5, "name", "str"), schemaAttr(6, "count", "int")),
		assign(8, "x", "A|B", config(8,
			entry(8, "total", intLit(8, 1), ast.ConfigOpUnion))),
	)
	assertDiagnostic(t, ps, failed.IllegalAttributeError, "Cannot add member 'total'")
}
