// pkg/utils/orderedset.go
package utils

// OrderedSet is a string set that remembers first-insertion order.
// The zero value is ready to use.
type OrderedSet struct {
	index map[string]struct{}
	items []string
}

func NewOrderedSet(items ...string) *OrderedSet {
	s := &OrderedSet{}
	for _, item := range items {
		s.Add(item)
	}
	return s
}

// Add inserts item and reports whether it was not already present.
func (s *OrderedSet) Add(item string) bool {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[item]; ok {
		return false
	}
	s.index[item] = struct{}{}
	s.items = append(s.items, item)
	return true
}

func (s *OrderedSet) Contains(item string) bool {
	_, ok := s.index[item]
	return ok
}

func (s *OrderedSet) Len() int {
	return len(s.items)
}

// Items returns a copy of the members in insertion order. It never returns nil.
func (s *OrderedSet) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}
