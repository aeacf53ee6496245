package family

import "sync"

// Change is the difference between two revisions of a dataset.
type Change struct {
	Revision uint64
	// Added holds new people and people whose record changed.
	Added   []Person
	Removed []ID
}

// Empty reports whether the change carries nothing.
func (c Change) Empty() bool { return len(c.Added) == 0 && len(c.Removed) == 0 }

// Store holds the current dataset. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	people   []Person
	byID     map[ID]Person
	revision uint64
}

// NewStore creates a store seeded with people at revision 1.
func NewStore(people []Person) *Store {
	return &Store{
		people:   people,
		byID:     Index(people),
		revision: 1,
	}
}

// People returns the dataset in file order.
func (s *Store) People() []Person {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Person, len(s.people))
	copy(out, s.people)
	return out
}

// Get looks a person up by id.
func (s *Store) Get(id ID) (Person, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	return p, ok
}

// Relatives resolves the relations of the person with the given id.
func (s *Store) Relatives(id ID) (Person, Relatives, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return Person{}, Relatives{}, false
	}
	return p, RelativesOf(p, s.byID), true
}

// Revision increases by one for every non-empty replacement.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Replace swaps the dataset and returns what changed.
func (s *Store) Replace(people []Person) Change {
	next := Index(people)

	s.mu.Lock()
	defer s.mu.Unlock()

	change := Diff(s.people, people)
	if change.Empty() {
		change.Revision = s.revision
		return change
	}
	s.people = people
	s.byID = next
	s.revision++
	change.Revision = s.revision
	return change
}

// Reload reads path and replaces the dataset with its content.
func (s *Store) Reload(path string) (Change, error) {
	people, err := Load(path)
	if err != nil {
		return Change{}, err
	}
	return s.Replace(people), nil
}

// Diff compares two datasets by id, first occurrence wins on both sides.
// Added keeps the order of next; Removed keeps the order of prev.
func Diff(prev, next []Person) Change {
	before := Index(prev)
	after := Index(next)

	var c Change
	seen := make(map[ID]bool, len(next))
	for _, p := range next {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		old, ok := before[p.ID]
		if !ok || !old.equal(p) {
			c.Added = append(c.Added, p)
		}
	}
	gone := make(map[ID]bool)
	for _, p := range prev {
		if _, ok := after[p.ID]; !ok && !gone[p.ID] {
			gone[p.ID] = true
			c.Removed = append(c.Removed, p.ID)
		}
	}
	return c
}
