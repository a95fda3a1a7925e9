package util

// Stack is a slice-backed LIFO stack. The zero value is an empty stack.
type Stack[E any] struct {
	items []E
}

func (s *Stack[E]) Push(v E) {
	s.items = append(s.items, v)
}

// Pop removes and returns the top element, reporting false when the
// stack is empty.
func (s *Stack[E]) Pop() (E, bool) {
	top, ok := s.Peek()
	if ok {
		s.items = s.items[:len(s.items)-1]
	}
	return top, ok
}

// Peek returns the top of the stack without removing it.
func (s *Stack[E]) Peek() (E, bool) {
	if len(s.items) == 0 {
		var zero E
		return zero, false
	}
	return s.items[len(s.items)-1], true
}

func (s *Stack[E]) Len() int {
	return len(s.items)
}

// PopAll empties the stack and returns the elements bottom first.
func (s *Stack[E]) PopAll() []E {
	out := s.items
	s.items = nil
	return out
}
