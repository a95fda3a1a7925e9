package types

// Subsume reports whether lhs can be assigned to rhs.
//
// checkLeftAny controls whether a left hand any is accepted; it is set
// at the outermost assignability check and cleared when recursing into
// unions so that union members are compared structurally.
func Subsume(lhs, rhs Type, checkLeftAny bool) bool {
	switch {
	case (checkLeftAny && IsAny(lhs)) || IsAny(rhs) || IsNone(lhs):
		return true

	case IsUnion(lhs):
		for _, elem := range UnionTypes(lhs) {
			if !Subsume(elem, rhs, false) {
				return false
			}
		}
		return true

	case IsUnion(rhs):
		for _, elem := range UnionTypes(rhs) {
			if Subsume(lhs, elem, false) {
				return true
			}
		}
		return false

	case IsSchema(lhs):
		rhsSchema, ok := rhs.(*SchemaType)
		if !ok {
			return false
		}
		return IsSubSchemaOf(lhs.(*SchemaType), rhsSchema)

	case IsInt(lhs) && IsFloat(rhs):
		return true

	case IsNumberMultiplier(lhs) && IsNumberMultiplier(rhs):
		lhsMul := lhs.(*NumberMultiplier)
		rhsMul := rhs.(*NumberMultiplier)
		if lhsMul.IsLiteral && rhsMul.IsLiteral {
			return lhsMul.Raw == rhsMul.Raw && lhsMul.Suffix == rhsMul.Suffix
		}
		return lhsMul.IsLiteral || !rhsMul.IsLiteral

	case IsPrimitive(lhs) && IsPrimitive(rhs):
		return Equal(lhs, rhs)

	case IsLiteral(lhs):
		if IsLiteral(rhs) {
			return Equal(lhs, rhs)
		}
		if IsPrimitive(rhs) {
			// Literals narrow to their base type, and numeric and bool
			// literals additionally widen to float.
			if IsFloat(rhs) && !IsStr(lhs) {
				return true
			}
			return literalBase(lhs) == rhs
		}
		return false

	case IsList(lhs) && IsList(rhs):
		return Subsume(lhs.(*List).Elem, rhs.(*List).Elem, checkLeftAny)

	case IsDict(lhs) && IsDict(rhs):
		lhsDict := lhs.(*Dict)
		rhsDict := rhs.(*Dict)
		return Subsume(lhsDict.Key, rhsDict.Key, checkLeftAny) &&
			Subsume(lhsDict.Val, rhsDict.Val, checkLeftAny)
	}
	return Equal(lhs, rhs)
}

func literalBase(t Type) Type {
	switch t.(type) {
	case *BoolLit:
		return Bool
	case *IntLit:
		return Int
	case *FloatLit:
		return Float
	case *StrLit:
		return Str
	}
	return nil
}

// Equal reports whether the two types are structurally identical.
func Equal(lhs, rhs Type) bool {
	if lhs == rhs {
		return true
	}
	switch l := lhs.(type) {
	case *BoolLit:
		r, ok := rhs.(*BoolLit)
		return ok && l.Value == r.Value
	case *IntLit:
		r, ok := rhs.(*IntLit)
		return ok && l.Value == r.Value
	case *FloatLit:
		r, ok := rhs.(*FloatLit)
		return ok && l.Value == r.Value
	case *StrLit:
		r, ok := rhs.(*StrLit)
		return ok && l.Value == r.Value
	case *NumberMultiplier:
		r, ok := rhs.(*NumberMultiplier)
		return ok && l.IsLiteral == r.IsLiteral && l.Raw == r.Raw && l.Suffix == r.Suffix
	case *List:
		r, ok := rhs.(*List)
		return ok && Equal(l.Elem, r.Elem)
	case *Dict:
		r, ok := rhs.(*Dict)
		return ok && Equal(l.Key, r.Key) && Equal(l.Val, r.Val)
	case *Union:
		r, ok := rhs.(*Union)
		if !ok || len(l.Elems) != len(r.Elems) {
			return false
		}
		for i := range l.Elems {
			if !Equal(l.Elems[i], r.Elems[i]) {
				return false
			}
		}
		return true
	case *SchemaType:
		r, ok := rhs.(*SchemaType)
		return ok && l.RuntimeKey() == r.RuntimeKey() && l.IsInstance == r.IsInstance
	case *Named:
		r, ok := rhs.(*Named)
		return ok && l.Name == r.Name
	case *Module:
		r, ok := rhs.(*Module)
		return ok && l.Pkgpath == r.Pkgpath
	case *Function:
		r, ok := rhs.(*Function)
		if !ok || len(l.Params) != len(r.Params) || l.Variadic != r.Variadic {
			return false
		}
		for i := range l.Params {
			if !Equal(l.Params[i].Ty, r.Params[i].Ty) {
				return false
			}
		}
		return Equal(l.Return, r.Return)
	}
	return false
}

// IsSubSchemaOf walks the base chain of lhs looking for rhs.
func IsSubSchemaOf(lhs, rhs *SchemaType) bool {
	if lhs.TypeStrWithPkgpath() == rhs.TypeStrWithPkgpath() {
		return true
	}
	if lhs.Base == nil {
		return false
	}
	return IsSubSchemaOf(lhs.Base, rhs)
}

// AssignableTo reports whether a value of type ty can be assigned to a
// location of the expected type.
func AssignableTo(ty, expected Type) bool {
	if !IsAssignable(ty) {
		return false
	}
	return Subsume(ty, expected, true)
}

// IsUpperBound reports whether lhs is an upper bound of rhs.
func IsUpperBound(lhs, rhs Type) bool {
	return Subsume(rhs, lhs, false)
}

// HasAnyType reports whether the list contains the any type.
func HasAnyType(tys []Type) bool {
	for _, ty := range tys {
		if IsAny(ty) {
			return true
		}
	}
	return false
}

// Sup returns the smallest supertype covering every type in the list.
func Sup(tys []Type) Type {
	return TypeOf(tys, true)
}

// TypeOf flattens and de-duplicates the type list into a single type,
// removing subsumed members when removeSubTypes is set.
func TypeOf(tys []Type, removeSubTypes bool) Type {
	var typeSet []Type
	for _, ty := range tys {
		typeSet = addTypeToTypeSet(typeSet, ty)
	}
	if removeSubTypes {
		removed := make(map[int]bool)
		for i, source := range typeSet {
			for j, target := range typeSet {
				if i != j && Subsume(source, target, false) {
					removed[i] = true
				}
			}
		}
		kept := make([]Type, 0, len(typeSet))
		for i, ty := range typeSet {
			if !removed[i] {
				kept = append(kept, ty)
			}
		}
		typeSet = kept
	}
	switch len(typeSet) {
	case 0:
		return Any
	case 1:
		return typeSet[0]
	}
	return NewUnion(typeSet...)
}

func addTypeToTypeSet(typeSet []Type, ty Type) []Type {
	if IsUnion(ty) {
		for _, elem := range UnionTypes(ty) {
			typeSet = addTypeToTypeSet(typeSet, elem)
		}
		return typeSet
	}
	// The bottom type never contributes to a supremum.
	if IsVoid(ty) {
		return typeSet
	}
	for _, existing := range typeSet {
		if Equal(existing, ty) {
			return typeSet
		}
	}
	return append(typeSet, ty)
}
