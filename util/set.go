package util

// Set is a mutable set over comparable elements. The zero value is not
// usable, construct with NewSet.
type Set[E comparable] struct {
	members map[E]struct{}
}

func NewSet[E comparable](elems ...E) Set[E] {
	s := Set[E]{members: make(map[E]struct{}, len(elems))}
	for _, elem := range elems {
		s.Add(elem)
	}
	return s
}

func (s Set[E]) Add(elem E) {
	s.members[elem] = struct{}{}
}

func (s Set[E]) Has(elem E) bool {
	_, ok := s.members[elem]
	return ok
}

func (s Set[E]) Len() int {
	return len(s.members)
}

// Slice returns the members in unspecified order.
func (s Set[E]) Slice() []E {
	out := make([]E, 0, len(s.members))
	for elem := range s.members {
		out = append(out, elem)
	}
	return out
}
