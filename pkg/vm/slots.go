package vm

import "fmt"

// Slots is the indexed binding storage behind a declarative scope. Names map
// to stable indices so the arguments object can alias parameter bindings.
type Slots struct {
	values      []Value
	immutable   []bool
	nameToIndex map[string]int
}

// NewSlots creates an empty slot table with room for capacity bindings.
func NewSlots(capacity int) *Slots {
	return &Slots{
		values:      make([]Value, 0, capacity),
		immutable:   make([]bool, 0, capacity),
		nameToIndex: make(map[string]int, capacity),
	}
}

// Define creates the binding name, or overwrites it if it already exists,
// and returns its index.
func (s *Slots) Define(name string, v Value) int {
	if idx, ok := s.nameToIndex[name]; ok {
		s.values[idx] = v
		return idx
	}
	s.values = append(s.values, v)
	s.immutable = append(s.immutable, false)
	idx := len(s.values) - 1
	s.nameToIndex[name] = idx
	return idx
}

// Index returns the slot index of name.
func (s *Slots) Index(name string) (int, bool) {
	idx, ok := s.nameToIndex[name]
	return idx, ok
}

func (s *Slots) Has(name string) bool {
	_, ok := s.nameToIndex[name]
	return ok
}

// Get retrieves the value at index.
func (s *Slots) Get(index int) (Value, bool) {
	if index < 0 || index >= len(s.values) {
		return Undefined, false
	}
	return s.values[index], true
}

// Set stores a value at an existing index.
func (s *Slots) Set(index int, value Value) error {
	if index < 0 || index >= len(s.values) {
		return fmt.Errorf("slot index out of range: %d", index)
	}
	s.values[index] = value
	return nil
}

func (s *Slots) MarkImmutable(index int) {
	if index >= 0 && index < len(s.immutable) {
		s.immutable[index] = true
	}
}

func (s *Slots) IsImmutable(index int) bool {
	return index >= 0 && index < len(s.immutable) && s.immutable[index]
}
