package obligation

import (
	"sort"
	"time"
)

// Store owns the keyed obligation collection. It is not safe for concurrent
// use; hosts that share a store across goroutines must serialize access.
type Store struct {
	items    map[string]*Obligation
	onChange []func()
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{items: make(map[string]*Obligation)}
}

// OnChange registers fn to run after every mutation.
func (s *Store) OnChange(fn func()) {
	if fn == nil {
		return
	}
	s.onChange = append(s.onChange, fn)
}

// Add inserts o, replacing any existing obligation with the same id.
func (s *Store) Add(o Obligation) {
	stored := o.Clone()
	stored.clamp()
	s.items[stored.ID] = &stored
	s.changed()
}

// Remove deletes the obligation and returns it.
func (s *Store) Remove(id string) (Obligation, bool) {
	existing, ok := s.items[id]
	if !ok {
		return Obligation{}, false
	}
	delete(s.items, id)
	s.changed()
	return *existing, true
}

// Update runs mutate against a copy of the obligation and commits the copy
// only when mutate succeeds. It reports whether the id existed.
func (s *Store) Update(id string, mutate func(*Obligation) error) (bool, error) {
	existing, ok := s.items[id]
	if !ok {
		return false, nil
	}
	working := existing.Clone()
	if mutate != nil {
		if err := mutate(&working); err != nil {
			return true, err
		}
	}
	working.ID = id
	working.clamp()
	s.items[id] = &working
	s.changed()
	return true, nil
}

// Apply merges the non-nil fields of p into the obligation.
func (s *Store) Apply(id string, p Patch) bool {
	ok, _ := s.Update(id, func(o *Obligation) error {
		p.apply(o)
		return nil
	})
	return ok
}

// Get returns a copy of the obligation.
func (s *Store) Get(id string) (Obligation, bool) {
	existing, ok := s.items[id]
	if !ok {
		return Obligation{}, false
	}
	return existing.Clone(), true
}

// Has reports whether id is present.
func (s *Store) Has(id string) bool {
	_, ok := s.items[id]
	return ok
}

// All returns a copy of every obligation keyed by id.
func (s *Store) All() map[string]Obligation {
	out := make(map[string]Obligation, len(s.items))
	for id, o := range s.items {
		out[id] = o.Clone()
	}
	return out
}

// IDs returns the stored ids in lexical order.
func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of stored obligations.
func (s *Store) Len() int {
	return len(s.items)
}

// MarkInjected records a surfacing of each id at the given time. Unknown ids
// are ignored. Hooks fire once for the whole batch.
func (s *Store) MarkInjected(ids []string, at time.Time) {
	touched := false
	for _, id := range ids {
		o, ok := s.items[id]
		if !ok {
			continue
		}
		ts := at
		o.LastInjection = &ts
		o.InjectionCount++
		touched = true
	}
	if touched {
		s.changed()
	}
}

// ResetInjections zeroes the injection count and timestamp of every
// obligation.
func (s *Store) ResetInjections() {
	for _, o := range s.items {
		o.InjectionCount = 0
		o.LastInjection = nil
	}
	s.changed()
}

func (s *Store) changed() {
	for _, fn := range s.onChange {
		fn()
	}
}
