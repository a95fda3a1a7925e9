// Package resolver implements semantic analysis: scope construction,
// global type building and type checking of whole programs.
//
// Resolution never aborts on the first problem. Every finding becomes
// a diagnostic on the handler and analysis continues with the any
// type, so a single run reports as much as possible.
package resolver

import (
	"log/slog"

	"github.com/benbjohnson/immutable"

	"github.com/kcl-lang/kcl-sub002/ast"
	"github.com/kcl-lang/kcl-sub002/failed"
	"github.com/kcl-lang/kcl-sub002/internal/log"
	"github.com/kcl-lang/kcl-sub002/types"
	"github.com/kcl-lang/kcl-sub002/util"
)

// Options tune the resolver behavior.
type Options struct {
	// LintCheck enables the style warnings (unused imports, reimports
	// and import position) on top of the semantic checks.
	LintCheck bool
}

// Resolver carries the state of one resolution run over a program.
type Resolver struct {
	program *ast.Program

	scopeMap   map[string]*Scope
	scope      *Scope
	scopeLevel int
	builtin    *Scope

	ctx     *context
	tyCtx   *types.Context
	options Options
	handler *failed.Handler

	nodeTypeMap   map[ast.Node]types.Type
	schemaMapping map[string]*types.SchemaType

	logger *slog.Logger
}

// context is the mutable cursor state of the walk.
type context struct {
	filename string
	pkgpath  string

	// schema is the schema type being built while walking its body.
	schema *types.SchemaType

	// localVars are the loop variables of the innermost comprehension
	// or quantifier, which shadow schema attributes.
	localVars []string

	// importNames maps filename to the import names bound there and
	// their package paths.
	importNames map[string]map[string]string

	// globalNames maps pkgpath to the top level names declared there
	// and their first declaration position.
	globalNames map[string]map[string]ast.Pos

	// lValue is set while resolving the target of an assignment.
	lValue bool

	// startPos and endPos track the span of the statement or
	// identifier being resolved.
	startPos ast.Pos
	endPos   ast.Pos

	inLambdaExpr util.Stack[bool]

	// configExprContext is the stack of expected config value types.
	// A nil entry means the expected type is unknown and checks are
	// skipped at that depth.
	configExprContext util.Stack[*ScopeObject]

	typeAliasMapping map[string]map[string]string
}

func newResolver(program *ast.Program, opts Options) *Resolver {
	builtin := builtinScope()
	return &Resolver{
		program:  program,
		scopeMap: make(map[string]*Scope),
		scope:    builtin,
		builtin:  builtin,
		ctx: &context{
			importNames:      make(map[string]map[string]string),
			globalNames:      make(map[string]map[string]ast.Pos),
			typeAliasMapping: make(map[string]map[string]string),
		},
		tyCtx:         types.NewContext(),
		options:       opts,
		handler:       failed.NewHandler(),
		nodeTypeMap:   make(map[ast.Node]types.Type),
		schemaMapping: make(map[string]*types.SchemaType),
		logger:        log.DefaultLogger.With("section", "resolver"),
	}
}

// Resolve type checks the whole program starting from the main
// package and returns the resulting program scope.
func Resolve(program *ast.Program, opts Options) *ProgramScope {
	r := newResolver(program, opts)
	r.resolveImport()
	r.check(ast.MainPkg)
	if r.options.LintCheck {
		r.lintCheckScopeMap()
	}
	return r.programScope()
}

// check resolves one package: imports first, then the global types,
// then every statement of every module.
func (r *Resolver) check(pkgpath string) {
	r.logger.Debug("checking package", "pkgpath", pkgpath)
	r.checkImport(pkgpath)
	r.initGlobalTypes()
	for _, module := range r.program.Pkgs[pkgpath] {
		r.ctx.filename = module.Filename
		for _, stmt := range module.Body {
			r.stmt(stmt)
		}
		if r.options.LintCheck {
			r.lintCheckModule(module)
		}
	}
}

// programScope freezes the resolver state into the result value.
func (r *Resolver) programScope() *ProgramScope {
	b := immutable.NewMapBuilder[string, *types.SchemaType](immutable.NewHasher(""))
	for key, schemaTy := range r.schemaMapping {
		b.Set(key, schemaTy)
	}
	return &ProgramScope{
		ScopeMap:         r.scopeMap,
		ImportNames:      r.ctx.importNames,
		Handler:          r.handler,
		NodeTypeMap:      r.nodeTypeMap,
		SchemaMapping:    b.Map(),
		TypeAliasMapping: r.ctx.typeAliasMapping,
	}
}

// setNodeType records the inferred type of a node in the side table.
func (r *Resolver) setNodeType(node ast.Node, ty types.Type) {
	r.nodeTypeMap[node] = ty
}

func (r *Resolver) inLocalVars(name string) bool {
	for _, local := range r.ctx.localVars {
		if local == name {
			return true
		}
	}
	return false
}
