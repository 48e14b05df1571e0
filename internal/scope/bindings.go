package scope

// Stack is the set of names bound by the binding constructs enclosing
// the traversal's current position: function parameters, lambda and let
// bindings, case-branch pattern variables. Frames are pushed on entering
// a binding construct and popped on leaving it; the pairing is enforced
// by the closure returned from Push, so the LIFO discipline is
// structural rather than conventional.
type Stack struct {
	frames []map[string]struct{}
}

// NewStack returns an empty binding stack.
func NewStack() *Stack {
	return &Stack{}
}

// Push enters a binding construct. The returned release function pops
// exactly this frame and must be called when the construct is left,
// typically via defer.
func (s *Stack) Push(names []string) (release func()) {
	frame := make(map[string]struct{}, len(names))
	for _, n := range names {
		frame[n] = struct{}{}
	}
	s.frames = append(s.frames, frame)
	depth := len(s.frames)
	return func() {
		if len(s.frames) != depth {
			panic("scope: unbalanced binding stack release")
		}
		s.frames = s.frames[:depth-1]
	}
}

// Inside runs fn with the names bound, guaranteeing the frame is popped.
func (s *Stack) Inside(names []string, fn func()) {
	release := s.Push(names)
	defer release()
	fn()
}

// Bound reports whether any enclosing frame binds name.
func (s *Stack) Bound(name string) bool {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if _, ok := s.frames[i][name]; ok {
			return true
		}
	}
	return false
}

// Depth returns the number of open frames, used by tests to assert the
// stack is balanced after a traversal.
func (s *Stack) Depth() int {
	return len(s.frames)
}
