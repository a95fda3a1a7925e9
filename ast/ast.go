// Package ast holds the abstract syntax tree the resolver walks.
//
// The tree is produced by a parser frontend (or decoded from its JSON
// serialisation, see json.go) and is not mutated by semantic analysis:
// all inferred information lives in side tables keyed by node pointers.
package ast

import "strings"

// MainPkg is the package path of the program entry package.
const MainPkg = "__main__"

// Node is implemented by every syntax node.
type Node interface {
	Positioner
}

// Stmt is implemented by all statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by all expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Program is a whole compile unit: every package reachable from the
// main package, keyed by package path.
type Program struct {
	Root string
	Pkgs map[string][]*Module
}

// MainModules returns the modules of the entry package.
func (p *Program) MainModules() []*Module {
	return p.Pkgs[MainPkg]
}

// Module is a single source file.
type Module struct {
	Range
	Filename string
	Pkg      string
	Name     string
	Doc      string
	Body     []Stmt
}

// Name is an identifier segment carrying its own position.
type Name struct {
	Range
	Value string
}

// Identifier is a possibly dotted name such as `a` or `pkg.Schema`.
type Identifier struct {
	Range
	Names   []*Name
	Pkgpath string
	Ctx     ExprContext
}

// GetName returns the dotted form of the identifier.
func (e *Identifier) GetName() string {
	parts := make([]string, 0, len(e.Names))
	for _, name := range e.Names {
		parts = append(parts, name.Value)
	}
	return strings.Join(parts, ".")
}

// ---------------------------------------------------------------------------
// Statements

type ExprStmt struct {
	Range
	Exprs []Expr
}

type TypeAliasStmt struct {
	Range
	Name *Identifier
	// Ty is the aliased type annotation, e.g. "str|int".
	Ty string
}

type AssignStmt struct {
	Range
	Targets []*Identifier
	// Ty is the optional type annotation on the first target, or "".
	Ty    string
	Value Expr
}

type AugAssignStmt struct {
	Range
	Target *Identifier
	Op     AugOp
	Value  Expr
}

// UnificationStmt is `target : Schema {...}` at statement level.
type UnificationStmt struct {
	Range
	Target *Identifier
	Value  *SchemaExpr
}

type AssertStmt struct {
	Range
	Test   Expr
	IfCond Expr
	Msg    Expr
}

type IfStmt struct {
	Range
	Cond   Expr
	Body   []Stmt
	Orelse []Stmt
}

type ImportStmt struct {
	Range
	// Path is the resolved package path of the import.
	Path string
	// Rawpath is the path as written, e.g. "..sub.pkg".
	Rawpath string
	Name    string
	Asname  string
}

// PkgName returns the name the imported package binds to in scope.
func (s *ImportStmt) PkgName() string {
	if s.Asname != "" {
		return s.Asname
	}
	return s.Name
}

type SchemaStmt struct {
	Range
	Doc            string
	Name           *Name
	ParentName     *Identifier
	ForHostName    *Identifier
	IsMixin        bool
	IsProtocol     bool
	Args           *Arguments
	Mixins         []*Identifier
	Body           []Stmt
	Decorators     []*CallExpr
	Checks         []*CheckExpr
	IndexSignature *SchemaIndexSignature
}

type RuleStmt struct {
	Range
	Doc         string
	Name        *Name
	ParentRules []*Identifier
	ForHostName *Identifier
	Args        *Arguments
	Decorators  []*CallExpr
	Checks      []*CheckExpr
}

// SchemaAttr is an attribute declaration inside a schema body.
type SchemaAttr struct {
	Range
	Doc        string
	Name       *Name
	Ty         string
	Op         AugOp
	Value      Expr
	IsOptional bool
	Decorators []*CallExpr
}

type SchemaIndexSignature struct {
	Range
	KeyName string
	KeyTy   string
	ValTy   string
	// AnyOther marks the `[...str]: str` form which constrains only the
	// attributes not declared elsewhere in the schema.
	AnyOther bool
	Value    Expr
}

func (*ExprStmt) stmtNode()             {}
func (*TypeAliasStmt) stmtNode()        {}
func (*AssignStmt) stmtNode()           {}
func (*AugAssignStmt) stmtNode()        {}
func (*UnificationStmt) stmtNode()      {}
func (*AssertStmt) stmtNode()           {}
func (*IfStmt) stmtNode()               {}
func (*ImportStmt) stmtNode()           {}
func (*SchemaStmt) stmtNode()           {}
func (*RuleStmt) stmtNode()             {}
func (*SchemaAttr) stmtNode()           {}
func (*SchemaIndexSignature) stmtNode() {}

// ---------------------------------------------------------------------------
// Expressions

type UnaryExpr struct {
	Range
	Op      UnaryOp
	Operand Expr
}

type BinaryExpr struct {
	Range
	Left  Expr
	Op    BinOp
	Right Expr
}

// IfExpr is the ternary `body if cond else orelse`.
type IfExpr struct {
	Range
	Body   Expr
	Cond   Expr
	Orelse Expr
}

type SelectorExpr struct {
	Range
	Value Expr
	Attr  *Identifier
	// HasQuestion marks the optional access form `a?.b`.
	HasQuestion bool
}

type CallExpr struct {
	Range
	Func     Expr
	Args     []Expr
	Keywords []*Keyword
}

type Keyword struct {
	Range
	Arg   *Identifier
	Value Expr
}

// Arguments is a parameter list of a lambda or schema constructor.
type Arguments struct {
	Range
	Args     []*Identifier
	Defaults []Expr
	TyList   []string
}

// ArgType returns the annotation of the i-th parameter, or "".
func (a *Arguments) ArgType(i int) string {
	if a == nil || i >= len(a.TyList) {
		return ""
	}
	return a.TyList[i]
}

// ArgDefault returns the default value of the i-th parameter, or nil.
func (a *Arguments) ArgDefault(i int) Expr {
	if a == nil || i >= len(a.Defaults) {
		return nil
	}
	return a.Defaults[i]
}

type ParenExpr struct {
	Range
	Expr Expr
}

type QuantExpr struct {
	Range
	Target    Expr
	Variables []*Identifier
	Op        QuantOp
	Test      Expr
	IfCond    Expr
}

type ListExpr struct {
	Range
	Elts []Expr
}

type ListIfItemExpr struct {
	Range
	IfCond Expr
	Exprs  []Expr
	Orelse Expr
}

type StarredExpr struct {
	Range
	Value Expr
}

type ListComp struct {
	Range
	Elt        Expr
	Generators []*CompClause
}

type DictComp struct {
	Range
	Entry      *ConfigEntry
	Generators []*CompClause
}

type CompClause struct {
	Range
	Targets []*Identifier
	Iter    Expr
	Ifs     []Expr
}

// SchemaExpr is a schema instantiation `Name(args) {config}`.
type SchemaExpr struct {
	Range
	Name   *Identifier
	Args   []Expr
	Kwargs []*Keyword
	Config Expr
}

type ConfigExpr struct {
	Range
	Items []*ConfigEntry
}

// ConfigEntry is one `key op value` item of a config expression.
// A nil Key marks a `**value` unpack entry.
type ConfigEntry struct {
	Range
	Key   Expr
	Value Expr
	Op    ConfigOp
}

type ConfigIfEntryExpr struct {
	Range
	IfCond Expr
	Items  []*ConfigEntry
	Orelse Expr
}

type CheckExpr struct {
	Range
	Test   Expr
	IfCond Expr
	Msg    Expr
}

type LambdaExpr struct {
	Range
	Args     *Arguments
	Body     []Stmt
	ReturnTy string
}

type Subscript struct {
	Range
	Value       Expr
	Index       Expr
	Lower       Expr
	Upper       Expr
	Step        Expr
	HasQuestion bool
}

// HasSlice reports whether the subscript uses the slice form.
func (e *Subscript) HasSlice() bool {
	return e.Index == nil
}

type Compare struct {
	Range
	Left        Expr
	Ops         []CmpOp
	Comparators []Expr
}

type NumberLit struct {
	Range
	IsFloat      bool
	IntValue     int64
	FloatValue   float64
	BinarySuffix string
}

type StringLit struct {
	Range
	Value        string
	IsLongString bool
}

type NameConstantLit struct {
	Range
	Value NameConstant
}

// JoinedString is a string interpolation `"a ${b} c"`.
type JoinedString struct {
	Range
	Values []Expr
}

type FormattedValue struct {
	Range
	Value      Expr
	FormatSpec string
}

// MissingExpr stands in for an expression the parser failed to produce.
type MissingExpr struct {
	Range
}

func (*Identifier) exprNode()        {}
func (*UnaryExpr) exprNode()         {}
func (*BinaryExpr) exprNode()        {}
func (*IfExpr) exprNode()            {}
func (*SelectorExpr) exprNode()      {}
func (*CallExpr) exprNode()          {}
func (*Keyword) exprNode()           {}
func (*ParenExpr) exprNode()         {}
func (*QuantExpr) exprNode()         {}
func (*ListExpr) exprNode()          {}
func (*ListIfItemExpr) exprNode()    {}
func (*StarredExpr) exprNode()       {}
func (*ListComp) exprNode()          {}
func (*DictComp) exprNode()          {}
func (*SchemaExpr) exprNode()        {}
func (*ConfigExpr) exprNode()        {}
func (*ConfigEntry) exprNode()       {}
func (*ConfigIfEntryExpr) exprNode() {}
func (*CheckExpr) exprNode()         {}
func (*LambdaExpr) exprNode()        {}
func (*Subscript) exprNode()         {}
func (*Compare) exprNode()           {}
func (*NumberLit) exprNode()         {}
func (*StringLit) exprNode()         {}
func (*NameConstantLit) exprNode()   {}
func (*JoinedString) exprNode()      {}
func (*FormattedValue) exprNode()    {}
func (*MissingExpr) exprNode()       {}

var _ Stmt = (*AssignStmt)(nil)
var _ Stmt = (*SchemaStmt)(nil)
var _ Expr = (*Identifier)(nil)
var _ Expr = (*ConfigExpr)(nil)
