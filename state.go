package cmdl

import "sync"

// State is the variable store for one script run. Variables have
// process-wide lifetime for the duration of the run; there is no
// scoping.
type State struct {
	mu   sync.RWMutex
	vars map[string]Value
}

// NewState creates an empty variable store.
func NewState() *State {
	return &State{
		vars: make(map[string]Value),
	}
}

// Set stores a value under name, overwriting any previous value.
func (s *State) Set(name string, v Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars[name] = v
}

// Get returns the value stored under name.
func (s *State) Get(name string) (Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vars[name]
	return v, ok
}

// Has checks whether name is defined.
func (s *State) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.vars[name]
	return ok
}

// Resolve returns the value stored under name, or empty text for
// unknown identifiers. This is the plain-value resolution context;
// expression context resolves unknowns to 0 instead.
func (s *State) Resolve(name string) Value {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.vars[name]; ok {
		return v
	}
	return Text("")
}

// Len returns the number of defined variables.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vars)
}
