// Package scope provides a lexical scope stack shared by the detectors that
// model name visibility across nested function bodies.
package scope

// Stack is a stack of name tables. Lookups walk from the innermost scope
// outward, so inner scopes see every binding of their enclosing scopes.
type Stack[T any] struct {
	frames []map[string]T
}

// New creates a stack holding one root scope.
func New[T any]() *Stack[T] {
	return &Stack[T]{frames: []map[string]T{{}}}
}

// Push enters a new innermost scope.
func (s *Stack[T]) Push() {
	s.frames = append(s.frames, map[string]T{})
}

// Pop leaves the innermost scope. The root scope is never popped.
func (s *Stack[T]) Pop() {
	if len(s.frames) > 1 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// Depth returns the number of active scopes, including the root.
func (s *Stack[T]) Depth() int {
	return len(s.frames)
}

// Define binds name in the innermost scope, replacing any earlier binding
// there.
func (s *Stack[T]) Define(name string, value T) {
	s.frames[len(s.frames)-1][name] = value
}

// Lookup resolves name from the innermost scope outward.
func (s *Stack[T]) Lookup(name string) (T, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i][name]; ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// LookupLocal resolves name in the innermost scope only.
func (s *Stack[T]) LookupLocal(name string) (T, bool) {
	v, ok := s.frames[len(s.frames)-1][name]
	return v, ok
}
