package vm

import "sort"

// PropertyStore is an insertion-ordered property table. Keys() lists
// canonical array indices first in ascending numeric order, then every
// other key in insertion order.
type PropertyStore struct {
	entries map[string]PropertyDescriptor
	order   []string
	indices int // number of keys in order that are array indices
}

func NewPropertyStore() *PropertyStore {
	return &PropertyStore{entries: make(map[string]PropertyDescriptor)}
}

func (s *PropertyStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

func (s *PropertyStore) Get(name string) (PropertyDescriptor, bool) {
	if s == nil {
		return PropertyDescriptor{}, false
	}
	d, ok := s.entries[name]
	return d, ok
}

func (s *PropertyStore) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.entries[name]
	return ok
}

// Set stores d under name, keeping the original position of an existing key.
func (s *PropertyStore) Set(name string, d PropertyDescriptor) {
	if _, exists := s.entries[name]; !exists {
		s.order = append(s.order, name)
		if _, ok := arrayIndex(name); ok {
			s.indices++
		}
	}
	s.entries[name] = d
}

func (s *PropertyStore) Delete(name string) bool {
	if s == nil {
		return false
	}
	if _, exists := s.entries[name]; !exists {
		return false
	}
	delete(s.entries, name)
	for i, k := range s.order {
		if k == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if _, ok := arrayIndex(name); ok {
		s.indices--
	}
	return true
}

// Keys returns every key in enumeration order.
func (s *PropertyStore) Keys() []string {
	if s == nil || len(s.order) == 0 {
		return nil
	}
	if s.indices == 0 {
		out := make([]string, len(s.order))
		copy(out, s.order)
		return out
	}
	idx := make([]uint32, 0, s.indices)
	rest := make([]string, 0, len(s.order)-s.indices)
	for _, k := range s.order {
		if n, ok := arrayIndex(k); ok {
			idx = append(idx, n)
		} else {
			rest = append(rest, k)
		}
	}
	sort.Slice(idx, func(i, j int) bool { return idx[i] < idx[j] })
	out := make([]string, 0, len(s.order))
	for _, n := range idx {
		out = append(out, IndexKey(n))
	}
	return append(out, rest...)
}

// IndicesFrom returns the array-index keys >= from in descending order.
func (s *PropertyStore) IndicesFrom(from uint32) []uint32 {
	if s == nil || s.indices == 0 {
		return nil
	}
	var out []uint32
	for _, k := range s.order {
		if n, ok := arrayIndex(k); ok && n >= from {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out
}

// Each calls fn for every entry in Keys() order until fn returns false.
func (s *PropertyStore) Each(fn func(name string, d PropertyDescriptor) bool) {
	for _, k := range s.Keys() {
		if !fn(k, s.entries[k]) {
			return
		}
	}
}
