package parser

// SymbolTable is the set of identifiers assigned so far in one parse.
// Names are kept in the order of their first assignment.
type SymbolTable struct {
	index map[string]struct{}
	names []string
}

// NewSymbolTable creates an empty table
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{index: make(map[string]struct{})}
}

// Declare adds name to the table. It reports whether the name was new.
func (s *SymbolTable) Declare(name string) bool {
	if _, ok := s.index[name]; ok {
		return false
	}
	s.index[name] = struct{}{}
	s.names = append(s.names, name)
	return true
}

// Defined reports whether name has been assigned
func (s *SymbolTable) Defined(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Names returns a copy of the declared names in assignment order
func (s *SymbolTable) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}
