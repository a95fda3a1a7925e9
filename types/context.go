package types

// Context tracks type dependencies across the global type builder
// passes and answers kind queries that look through unions.
type Context struct {
	// depGraph is the schema and alias dependency graph as adjacency
	// lists, used to reject inheritance and alias cycles.
	depGraph map[string][]string
}

func NewContext() *Context {
	return &Context{
		depGraph: make(map[string][]string),
	}
}

// AddDependency records that from depends on to.
func (c *Context) AddDependency(from, to string) {
	c.depGraph[from] = append(c.depGraph[from], to)
	if _, ok := c.depGraph[to]; !ok {
		c.depGraph[to] = nil
	}
}

// IsCyclic reports whether the dependency graph contains a cycle.
func (c *Context) IsCyclic() bool {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(c.depGraph))
	var visit func(node string) bool
	visit = func(node string) bool {
		switch state[node] {
		case visiting:
			return true
		case done:
			return false
		}
		state[node] = visiting
		for _, next := range c.depGraph[node] {
			if visit(next) {
				return true
			}
		}
		state[node] = done
		return false
	}
	for node := range c.depGraph {
		if visit(node) {
			return true
		}
	}
	return false
}

// LiteralUnionToVariable widens literal unions to their variable types,
// e.g. 1|2 becomes int. Non-union types pass through unchanged.
func (c *Context) LiteralUnionToVariable(ty Type) Type {
	if IsUnion(ty) {
		return c.InferToVariable(ty)
	}
	return ty
}

// InferToVariable widens a value type to the type its variable gets:
// literals become their base type, None becomes any, and containers
// widen element-wise.
func (c *Context) InferToVariable(ty Type) Type {
	switch t := ty.(type) {
	case *Basic:
		if t.kind == noneKind {
			return Any
		}
		return ty
	case *BoolLit:
		return Bool
	case *IntLit:
		return Int
	case *FloatLit:
		return Float
	case *StrLit:
		return Str
	case *List:
		return NewList(c.InferToVariable(t.Elem))
	case *Dict:
		return NewDictWithAttrs(c.InferToVariable(t.Key), c.InferToVariable(t.Val), t.Attrs)
	case *Union:
		widened := make([]Type, 0, len(t.Elems))
		for _, elem := range t.Elems {
			widened = append(widened, c.InferToVariable(elem))
		}
		return Sup(widened)
	}
	return ty
}

type kindPredicate func(Type) bool

// isKindOrKindUnion reports whether ty, or every member when ty is a
// union, satisfies one of the predicates.
func isKindOrKindUnion(ty Type, preds []kindPredicate) bool {
	check := func(t Type) bool {
		for _, pred := range preds {
			if pred(t) {
				return true
			}
		}
		return false
	}
	if IsUnion(ty) {
		for _, elem := range UnionTypes(ty) {
			if !check(elem) {
				return false
			}
		}
		return true
	}
	return check(ty)
}

// IsNumberOrNumberUnion accepts int, float and unions of them.
func (c *Context) IsNumberOrNumberUnion(ty Type) bool {
	return isKindOrKindUnion(ty, []kindPredicate{IsInt, IsFloat})
}

// IsNumberBoolOrUnion additionally accepts bool.
func (c *Context) IsNumberBoolOrUnion(ty Type) bool {
	return isKindOrKindUnion(ty, []kindPredicate{IsInt, IsFloat, IsBool})
}

// IsConfigOrConfigUnion accepts dicts, schemas and unions of them.
func (c *Context) IsConfigOrConfigUnion(ty Type) bool {
	return isKindOrKindUnion(ty, []kindPredicate{IsDict, IsSchema})
}

// IsStrOrStrUnion accepts str and unions of str.
func (c *Context) IsStrOrStrUnion(ty Type) bool {
	return isKindOrKindUnion(ty, []kindPredicate{IsStr})
}

// IsPrimitiveOrPrimitiveUnion accepts the primitive types and unions
// of them.
func (c *Context) IsPrimitiveOrPrimitiveUnion(ty Type) bool {
	return isKindOrKindUnion(ty, []kindPredicate{IsInt, IsFloat, IsBool, IsStr})
}

// IsMulValOrUnion accepts the types that `*` repeats: numbers, str and
// lists, plus unions of them.
func (c *Context) IsMulValOrUnion(ty Type) bool {
	return isKindOrKindUnion(ty, []kindPredicate{IsInt, IsFloat, IsStr, IsList})
}
