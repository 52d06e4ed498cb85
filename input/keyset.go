package input

import "sort"

// KeySet is the set of keys currently held down. Owned by the listener
// goroutine; not safe for concurrent use.
type KeySet struct {
	keys map[string]struct{}
}

func NewKeySet() *KeySet {
	return &KeySet{keys: make(map[string]struct{})}
}

// Press adds id and reports whether it was newly added
func (s *KeySet) Press(id string) bool {
	if _, ok := s.keys[id]; ok {
		return false
	}
	s.keys[id] = struct{}{}
	return true
}

// Release removes id and reports whether it was present
func (s *KeySet) Release(id string) bool {
	if _, ok := s.keys[id]; !ok {
		return false
	}
	delete(s.keys, id)
	return true
}

func (s *KeySet) Contains(id string) bool {
	_, ok := s.keys[id]
	return ok
}

func (s *KeySet) Len() int {
	return len(s.keys)
}

// Snapshot returns a sorted copy of the held ids
func (s *KeySet) Snapshot() []string {
	out := make([]string, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
