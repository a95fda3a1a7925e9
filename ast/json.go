package ast

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// DecodeProgram decodes a JSON-serialised Program as emitted by the
// parser frontend. Every node object carries a "type" discriminator
// plus "pos" and "end" location objects.
func DecodeProgram(data []byte) (*Program, error) {
	var raw struct {
		Root string           `json:"root"`
		Pkgs map[string][]any `json:"pkgs"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decoding program")
	}
	prog := &Program{
		Root: raw.Root,
		Pkgs: make(map[string][]*Module, len(raw.Pkgs)),
	}
	for pkgpath, modules := range raw.Pkgs {
		for _, v := range modules {
			obj, ok := v.(map[string]any)
			if !ok {
				return nil, errors.Errorf("package %v: module is not an object", pkgpath)
			}
			module, err := buildModule(jsonObj(obj))
			if err != nil {
				return nil, errors.Wrapf(err, "package %v", pkgpath)
			}
			prog.Pkgs[pkgpath] = append(prog.Pkgs[pkgpath], module)
		}
	}
	return prog, nil
}

type jsonObj map[string]any

func (o jsonObj) str(key string) string {
	s, _ := o[key].(string)
	return s
}

func (o jsonObj) boolean(key string) bool {
	b, _ := o[key].(bool)
	return b
}

func (o jsonObj) num(key string) float64 {
	f, _ := o[key].(float64)
	return f
}

func (o jsonObj) obj(key string) (jsonObj, bool) {
	m, ok := o[key].(map[string]any)
	return jsonObj(m), ok && m != nil
}

func (o jsonObj) list(key string) []any {
	l, _ := o[key].([]any)
	return l
}

func (o jsonObj) pos(key string) Pos {
	p, ok := o.obj(key)
	if !ok {
		return Pos{}
	}
	return Pos{
		Filename: p.str("filename"),
		Line:     uint64(p.num("line")),
		Column:   uint64(p.num("column")),
	}
}

func (o jsonObj) rng() Range {
	return Range{PosStart: o.pos("pos"), PosEnd: o.pos("end")}
}

func buildModule(o jsonObj) (*Module, error) {
	body, err := buildStmtList(o.list("body"))
	if err != nil {
		return nil, errors.Wrapf(err, "module %v", o.str("filename"))
	}
	return &Module{
		Range:    o.rng(),
		Filename: o.str("filename"),
		Pkg:      o.str("pkg"),
		Name:     o.str("name"),
		Doc:      o.str("doc"),
		Body:     body,
	}, nil
}

func buildStmtList(items []any) ([]Stmt, error) {
	stmts := make([]Stmt, 0, len(items))
	for i, v := range items {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, errors.Errorf("statement %v is not an object", i)
		}
		stmt, err := buildStmt(jsonObj(obj))
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func buildStmt(o jsonObj) (Stmt, error) {
	kind := o.str("type")
	switch kind {
	case "ExprStmt":
		exprs, err := buildExprList(o.list("exprs"))
		if err != nil {
			return nil, err
		}
		return &ExprStmt{Range: o.rng(), Exprs: exprs}, nil

	case "TypeAliasStmt":
		name, err := buildIdentifierField(o, "name")
		if err != nil {
			return nil, err
		}
		return &TypeAliasStmt{Range: o.rng(), Name: name, Ty: o.str("ty")}, nil

	case "AssignStmt":
		targets, err := buildIdentifierList(o.list("targets"))
		if err != nil {
			return nil, err
		}
		value, err := buildExprField(o, "value")
		if err != nil {
			return nil, err
		}
		return &AssignStmt{Range: o.rng(), Targets: targets, Ty: o.str("ty"), Value: value}, nil

	case "AugAssignStmt":
		target, err := buildIdentifierField(o, "target")
		if err != nil {
			return nil, err
		}
		value, err := buildExprField(o, "value")
		if err != nil {
			return nil, err
		}
		return &AugAssignStmt{Range: o.rng(), Target: target, Op: AugOp(o.str("op")), Value: value}, nil

	case "UnificationStmt":
		target, err := buildIdentifierField(o, "target")
		if err != nil {
			return nil, err
		}
		value, err := buildExprField(o, "value")
		if err != nil {
			return nil, err
		}
		schemaExpr, ok := value.(*SchemaExpr)
		if !ok {
			return nil, errors.Errorf("unification value must be a schema expression")
		}
		return &UnificationStmt{Range: o.rng(), Target: target, Value: schemaExpr}, nil

	case "AssertStmt":
		test, err := buildExprField(o, "test")
		if err != nil {
			return nil, err
		}
		ifCond, err := buildOptExprField(o, "if_cond")
		if err != nil {
			return nil, err
		}
		msg, err := buildOptExprField(o, "msg")
		if err != nil {
			return nil, err
		}
		return &AssertStmt{Range: o.rng(), Test: test, IfCond: ifCond, Msg: msg}, nil

	case "IfStmt":
		cond, err := buildExprField(o, "cond")
		if err != nil {
			return nil, err
		}
		body, err := buildStmtList(o.list("body"))
		if err != nil {
			return nil, err
		}
		orelse, err := buildStmtList(o.list("orelse"))
		if err != nil {
			return nil, err
		}
		return &IfStmt{Range: o.rng(), Cond: cond, Body: body, Orelse: orelse}, nil

	case "ImportStmt":
		return &ImportStmt{
			Range:   o.rng(),
			Path:    o.str("path"),
			Rawpath: o.str("rawpath"),
			Name:    o.str("name"),
			Asname:  o.str("asname"),
		}, nil

	case "SchemaStmt":
		return buildSchemaStmt(o)

	case "RuleStmt":
		return buildRuleStmt(o)

	case "SchemaAttr":
		name, err := buildNameField(o, "name")
		if err != nil {
			return nil, err
		}
		value, err := buildOptExprField(o, "value")
		if err != nil {
			return nil, err
		}
		decorators, err := buildCallList(o.list("decorators"))
		if err != nil {
			return nil, err
		}
		op := AugOp(o.str("op"))
		if op == "" {
			op = AugOpAssign
		}
		return &SchemaAttr{
			Range:      o.rng(),
			Doc:        o.str("doc"),
			Name:       name,
			Ty:         o.str("ty"),
			Op:         op,
			Value:      value,
			IsOptional: o.boolean("is_optional"),
			Decorators: decorators,
		}, nil

	case "SchemaIndexSignature":
		value, err := buildOptExprField(o, "value")
		if err != nil {
			return nil, err
		}
		return &SchemaIndexSignature{
			Range:    o.rng(),
			KeyName:  o.str("key_name"),
			KeyTy:    o.str("key_ty"),
			ValTy:    o.str("val_ty"),
			AnyOther: o.boolean("any_other"),
			Value:    value,
		}, nil
	}
	return nil, errors.Errorf("unknown statement type %q at %v", kind, o.rng())
}

func buildSchemaStmt(o jsonObj) (*SchemaStmt, error) {
	name, err := buildNameField(o, "name")
	if err != nil {
		return nil, err
	}
	parent, err := buildOptIdentifierField(o, "parent_name")
	if err != nil {
		return nil, err
	}
	host, err := buildOptIdentifierField(o, "for_host_name")
	if err != nil {
		return nil, err
	}
	args, err := buildArgumentsField(o, "args")
	if err != nil {
		return nil, err
	}
	mixins, err := buildIdentifierList(o.list("mixins"))
	if err != nil {
		return nil, err
	}
	body, err := buildStmtList(o.list("body"))
	if err != nil {
		return nil, errors.Wrapf(err, "schema %v", name.Value)
	}
	decorators, err := buildCallList(o.list("decorators"))
	if err != nil {
		return nil, err
	}
	checks, err := buildCheckList(o.list("checks"))
	if err != nil {
		return nil, err
	}
	var indexSignature *SchemaIndexSignature
	if sig, ok := o.obj("index_signature"); ok {
		stmt, err := buildStmt(sig)
		if err != nil {
			return nil, err
		}
		indexSignature, ok = stmt.(*SchemaIndexSignature)
		if !ok {
			return nil, errors.Errorf("schema %v: index_signature has wrong node type", name.Value)
		}
	}
	return &SchemaStmt{
		Range:          o.rng(),
		Doc:            o.str("doc"),
		Name:           name,
		ParentName:     parent,
		ForHostName:    host,
		IsMixin:        o.boolean("is_mixin"),
		IsProtocol:     o.boolean("is_protocol"),
		Args:           args,
		Mixins:         mixins,
		Body:           body,
		Decorators:     decorators,
		Checks:         checks,
		IndexSignature: indexSignature,
	}, nil
}

func buildRuleStmt(o jsonObj) (*RuleStmt, error) {
	name, err := buildNameField(o, "name")
	if err != nil {
		return nil, err
	}
	parents, err := buildIdentifierList(o.list("parent_rules"))
	if err != nil {
		return nil, err
	}
	host, err := buildOptIdentifierField(o, "for_host_name")
	if err != nil {
		return nil, err
	}
	args, err := buildArgumentsField(o, "args")
	if err != nil {
		return nil, err
	}
	decorators, err := buildCallList(o.list("decorators"))
	if err != nil {
		return nil, err
	}
	checks, err := buildCheckList(o.list("checks"))
	if err != nil {
		return nil, err
	}
	return &RuleStmt{
		Range:       o.rng(),
		Doc:         o.str("doc"),
		Name:        name,
		ParentRules: parents,
		ForHostName: host,
		Args:        args,
		Decorators:  decorators,
		Checks:      checks,
	}, nil
}

func buildExprList(items []any) ([]Expr, error) {
	exprs := make([]Expr, 0, len(items))
	for i, v := range items {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, errors.Errorf("expression %v is not an object", i)
		}
		expr, err := buildExpr(jsonObj(obj))
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

func buildExprField(o jsonObj, key string) (Expr, error) {
	obj, ok := o.obj(key)
	if !ok {
		return nil, errors.Errorf("missing %q field at %v", key, o.rng())
	}
	return buildExpr(obj)
}

func buildOptExprField(o jsonObj, key string) (Expr, error) {
	obj, ok := o.obj(key)
	if !ok {
		return nil, nil
	}
	return buildExpr(obj)
}

func buildExpr(o jsonObj) (Expr, error) {
	kind := o.str("type")
	switch kind {
	case "Identifier":
		return buildIdentifier(o)

	case "UnaryExpr":
		operand, err := buildExprField(o, "operand")
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Range: o.rng(), Op: UnaryOp(o.str("op")), Operand: operand}, nil

	case "BinaryExpr":
		left, err := buildExprField(o, "left")
		if err != nil {
			return nil, err
		}
		right, err := buildExprField(o, "right")
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Range: o.rng(), Left: left, Op: BinOp(o.str("op")), Right: right}, nil

	case "IfExpr":
		body, err := buildExprField(o, "body")
		if err != nil {
			return nil, err
		}
		cond, err := buildExprField(o, "cond")
		if err != nil {
			return nil, err
		}
		orelse, err := buildExprField(o, "orelse")
		if err != nil {
			return nil, err
		}
		return &IfExpr{Range: o.rng(), Body: body, Cond: cond, Orelse: orelse}, nil

	case "SelectorExpr":
		value, err := buildExprField(o, "value")
		if err != nil {
			return nil, err
		}
		attr, err := buildIdentifierField(o, "attr")
		if err != nil {
			return nil, err
		}
		return &SelectorExpr{
			Range:       o.rng(),
			Value:       value,
			Attr:        attr,
			HasQuestion: o.boolean("has_question"),
		}, nil

	case "CallExpr":
		return buildCallExpr(o)

	case "Keyword":
		return buildKeyword(o)

	case "ParenExpr":
		inner, err := buildExprField(o, "expr")
		if err != nil {
			return nil, err
		}
		return &ParenExpr{Range: o.rng(), Expr: inner}, nil

	case "QuantExpr":
		target, err := buildExprField(o, "target")
		if err != nil {
			return nil, err
		}
		variables, err := buildIdentifierList(o.list("variables"))
		if err != nil {
			return nil, err
		}
		test, err := buildExprField(o, "test")
		if err != nil {
			return nil, err
		}
		ifCond, err := buildOptExprField(o, "if_cond")
		if err != nil {
			return nil, err
		}
		return &QuantExpr{
			Range:     o.rng(),
			Target:    target,
			Variables: variables,
			Op:        QuantOp(o.str("op")),
			Test:      test,
			IfCond:    ifCond,
		}, nil

	case "ListExpr":
		elts, err := buildExprList(o.list("elts"))
		if err != nil {
			return nil, err
		}
		return &ListExpr{Range: o.rng(), Elts: elts}, nil

	case "ListIfItemExpr":
		ifCond, err := buildExprField(o, "if_cond")
		if err != nil {
			return nil, err
		}
		exprs, err := buildExprList(o.list("exprs"))
		if err != nil {
			return nil, err
		}
		orelse, err := buildOptExprField(o, "orelse")
		if err != nil {
			return nil, err
		}
		return &ListIfItemExpr{Range: o.rng(), IfCond: ifCond, Exprs: exprs, Orelse: orelse}, nil

	case "StarredExpr":
		value, err := buildExprField(o, "value")
		if err != nil {
			return nil, err
		}
		return &StarredExpr{Range: o.rng(), Value: value}, nil

	case "ListComp":
		elt, err := buildExprField(o, "elt")
		if err != nil {
			return nil, err
		}
		generators, err := buildCompClauseList(o.list("generators"))
		if err != nil {
			return nil, err
		}
		return &ListComp{Range: o.rng(), Elt: elt, Generators: generators}, nil

	case "DictComp":
		entryObj, ok := o.obj("entry")
		if !ok {
			return nil, errors.Errorf("dict comprehension misses entry at %v", o.rng())
		}
		entry, err := buildConfigEntry(entryObj)
		if err != nil {
			return nil, err
		}
		generators, err := buildCompClauseList(o.list("generators"))
		if err != nil {
			return nil, err
		}
		return &DictComp{Range: o.rng(), Entry: entry, Generators: generators}, nil

	case "SchemaExpr":
		name, err := buildIdentifierField(o, "name")
		if err != nil {
			return nil, err
		}
		args, err := buildExprList(o.list("args"))
		if err != nil {
			return nil, err
		}
		kwargs, err := buildKeywordList(o.list("kwargs"))
		if err != nil {
			return nil, err
		}
		config, err := buildExprField(o, "config")
		if err != nil {
			return nil, err
		}
		return &SchemaExpr{Range: o.rng(), Name: name, Args: args, Kwargs: kwargs, Config: config}, nil

	case "ConfigExpr":
		items, err := buildConfigEntryList(o.list("items"))
		if err != nil {
			return nil, err
		}
		return &ConfigExpr{Range: o.rng(), Items: items}, nil

	case "ConfigIfEntryExpr":
		ifCond, err := buildExprField(o, "if_cond")
		if err != nil {
			return nil, err
		}
		items, err := buildConfigEntryList(o.list("items"))
		if err != nil {
			return nil, err
		}
		orelse, err := buildOptExprField(o, "orelse")
		if err != nil {
			return nil, err
		}
		return &ConfigIfEntryExpr{Range: o.rng(), IfCond: ifCond, Items: items, Orelse: orelse}, nil

	case "CheckExpr":
		return buildCheckExpr(o)

	case "LambdaExpr":
		args, err := buildArgumentsField(o, "args")
		if err != nil {
			return nil, err
		}
		body, err := buildStmtList(o.list("body"))
		if err != nil {
			return nil, err
		}
		return &LambdaExpr{Range: o.rng(), Args: args, Body: body, ReturnTy: o.str("return_ty")}, nil

	case "Subscript":
		value, err := buildExprField(o, "value")
		if err != nil {
			return nil, err
		}
		index, err := buildOptExprField(o, "index")
		if err != nil {
			return nil, err
		}
		lower, err := buildOptExprField(o, "lower")
		if err != nil {
			return nil, err
		}
		upper, err := buildOptExprField(o, "upper")
		if err != nil {
			return nil, err
		}
		step, err := buildOptExprField(o, "step")
		if err != nil {
			return nil, err
		}
		return &Subscript{
			Range:       o.rng(),
			Value:       value,
			Index:       index,
			Lower:       lower,
			Upper:       upper,
			Step:        step,
			HasQuestion: o.boolean("has_question"),
		}, nil

	case "Compare":
		left, err := buildExprField(o, "left")
		if err != nil {
			return nil, err
		}
		comparators, err := buildExprList(o.list("comparators"))
		if err != nil {
			return nil, err
		}
		ops := make([]CmpOp, 0, len(o.list("ops")))
		for _, v := range o.list("ops") {
			s, _ := v.(string)
			ops = append(ops, CmpOp(s))
		}
		return &Compare{Range: o.rng(), Left: left, Ops: ops, Comparators: comparators}, nil

	case "NumberLit":
		return &NumberLit{
			Range:        o.rng(),
			IsFloat:      o.boolean("is_float"),
			IntValue:     int64(o.num("int_value")),
			FloatValue:   o.num("float_value"),
			BinarySuffix: o.str("binary_suffix"),
		}, nil

	case "StringLit":
		return &StringLit{
			Range:        o.rng(),
			Value:        o.str("value"),
			IsLongString: o.boolean("is_long_string"),
		}, nil

	case "NameConstantLit":
		return &NameConstantLit{Range: o.rng(), Value: NameConstant(o.str("value"))}, nil

	case "JoinedString":
		values, err := buildExprList(o.list("values"))
		if err != nil {
			return nil, err
		}
		return &JoinedString{Range: o.rng(), Values: values}, nil

	case "FormattedValue":
		value, err := buildExprField(o, "value")
		if err != nil {
			return nil, err
		}
		return &FormattedValue{Range: o.rng(), Value: value, FormatSpec: o.str("format_spec")}, nil

	case "MissingExpr":
		return &MissingExpr{Range: o.rng()}, nil
	}
	return nil, errors.Errorf("unknown expression type %q at %v", kind, o.rng())
}

func buildIdentifier(o jsonObj) (*Identifier, error) {
	names := make([]*Name, 0, len(o.list("names")))
	for i, v := range o.list("names") {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, errors.Errorf("identifier name %v is not an object", i)
		}
		names = append(names, buildName(jsonObj(obj)))
	}
	if len(names) == 0 {
		return nil, errors.Errorf("identifier with no names at %v", o.rng())
	}
	ctx := ExprContextLoad
	if o.str("ctx") == "Store" {
		ctx = ExprContextStore
	}
	return &Identifier{
		Range:   o.rng(),
		Names:   names,
		Pkgpath: o.str("pkgpath"),
		Ctx:     ctx,
	}, nil
}

func buildName(o jsonObj) *Name {
	return &Name{Range: o.rng(), Value: o.str("value")}
}

func buildNameField(o jsonObj, key string) (*Name, error) {
	obj, ok := o.obj(key)
	if !ok {
		return nil, errors.Errorf("missing %q field at %v", key, o.rng())
	}
	return buildName(obj), nil
}

func buildIdentifierField(o jsonObj, key string) (*Identifier, error) {
	obj, ok := o.obj(key)
	if !ok {
		return nil, errors.Errorf("missing %q field at %v", key, o.rng())
	}
	return buildIdentifier(obj)
}

func buildOptIdentifierField(o jsonObj, key string) (*Identifier, error) {
	obj, ok := o.obj(key)
	if !ok {
		return nil, nil
	}
	return buildIdentifier(obj)
}

func buildIdentifierList(items []any) ([]*Identifier, error) {
	idents := make([]*Identifier, 0, len(items))
	for i, v := range items {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, errors.Errorf("identifier %v is not an object", i)
		}
		ident, err := buildIdentifier(jsonObj(obj))
		if err != nil {
			return nil, err
		}
		idents = append(idents, ident)
	}
	return idents, nil
}

func buildCallExpr(o jsonObj) (*CallExpr, error) {
	fn, err := buildExprField(o, "func")
	if err != nil {
		return nil, err
	}
	args, err := buildExprList(o.list("args"))
	if err != nil {
		return nil, err
	}
	keywords, err := buildKeywordList(o.list("keywords"))
	if err != nil {
		return nil, err
	}
	return &CallExpr{Range: o.rng(), Func: fn, Args: args, Keywords: keywords}, nil
}

func buildCallList(items []any) ([]*CallExpr, error) {
	calls := make([]*CallExpr, 0, len(items))
	for i, v := range items {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, errors.Errorf("call %v is not an object", i)
		}
		call, err := buildCallExpr(jsonObj(obj))
		if err != nil {
			return nil, err
		}
		calls = append(calls, call)
	}
	return calls, nil
}

func buildKeyword(o jsonObj) (*Keyword, error) {
	arg, err := buildIdentifierField(o, "arg")
	if err != nil {
		return nil, err
	}
	value, err := buildOptExprField(o, "value")
	if err != nil {
		return nil, err
	}
	return &Keyword{Range: o.rng(), Arg: arg, Value: value}, nil
}

func buildKeywordList(items []any) ([]*Keyword, error) {
	keywords := make([]*Keyword, 0, len(items))
	for i, v := range items {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, errors.Errorf("keyword %v is not an object", i)
		}
		kw, err := buildKeyword(jsonObj(obj))
		if err != nil {
			return nil, err
		}
		keywords = append(keywords, kw)
	}
	return keywords, nil
}

func buildArgumentsField(o jsonObj, key string) (*Arguments, error) {
	obj, ok := o.obj(key)
	if !ok {
		return nil, nil
	}
	args, err := buildIdentifierList(obj.list("args"))
	if err != nil {
		return nil, err
	}
	defaults := make([]Expr, 0, len(obj.list("defaults")))
	for _, v := range obj.list("defaults") {
		if v == nil {
			defaults = append(defaults, nil)
			continue
		}
		inner, ok := v.(map[string]any)
		if !ok {
			return nil, errors.Errorf("argument default is not an object")
		}
		expr, err := buildExpr(jsonObj(inner))
		if err != nil {
			return nil, err
		}
		defaults = append(defaults, expr)
	}
	tyList := make([]string, 0, len(obj.list("ty_list")))
	for _, v := range obj.list("ty_list") {
		s, _ := v.(string)
		tyList = append(tyList, s)
	}
	return &Arguments{Range: obj.rng(), Args: args, Defaults: defaults, TyList: tyList}, nil
}

func buildCompClauseList(items []any) ([]*CompClause, error) {
	clauses := make([]*CompClause, 0, len(items))
	for i, v := range items {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, errors.Errorf("comp clause %v is not an object", i)
		}
		o := jsonObj(obj)
		targets, err := buildIdentifierList(o.list("targets"))
		if err != nil {
			return nil, err
		}
		iter, err := buildExprField(o, "iter")
		if err != nil {
			return nil, err
		}
		ifs, err := buildExprList(o.list("ifs"))
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, &CompClause{Range: o.rng(), Targets: targets, Iter: iter, Ifs: ifs})
	}
	return clauses, nil
}

func buildConfigEntry(o jsonObj) (*ConfigEntry, error) {
	key, err := buildOptExprField(o, "key")
	if err != nil {
		return nil, err
	}
	value, err := buildExprField(o, "value")
	if err != nil {
		return nil, err
	}
	var op ConfigOp
	switch o.str("op") {
	case "=":
		op = ConfigOpOverride
	case "+=":
		op = ConfigOpInsert
	default:
		op = ConfigOpUnion
	}
	return &ConfigEntry{Range: o.rng(), Key: key, Value: value, Op: op}, nil
}

func buildConfigEntryList(items []any) ([]*ConfigEntry, error) {
	entries := make([]*ConfigEntry, 0, len(items))
	for i, v := range items {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, errors.Errorf("config entry %v is not an object", i)
		}
		entry, err := buildConfigEntry(jsonObj(obj))
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func buildCheckExpr(o jsonObj) (*CheckExpr, error) {
	test, err := buildExprField(o, "test")
	if err != nil {
		return nil, err
	}
	ifCond, err := buildOptExprField(o, "if_cond")
	if err != nil {
		return nil, err
	}
	msg, err := buildOptExprField(o, "msg")
	if err != nil {
		return nil, err
	}
	return &CheckExpr{Range: o.rng(), Test: test, IfCond: ifCond, Msg: msg}, nil
}

func buildCheckList(items []any) ([]*CheckExpr, error) {
	checks := make([]*CheckExpr, 0, len(items))
	for i, v := range items {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, errors.Errorf("check %v is not an object", i)
		}
		check, err := buildCheckExpr(jsonObj(obj))
		if err != nil {
			return nil, err
		}
		checks = append(checks, check)
	}
	return checks, nil
}
