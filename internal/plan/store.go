package plan

import (
	"fmt"
	"sync"

	"github.com/giantswarm/lineage/internal/api"
)

// Lookup is the read side of a plan store used by Resolve.
type Lookup interface {
	// GetByID returns the plan stored under id.
	GetByID(id string) (AbstractPlan, bool)
	// GetLatest follows DerivedFrom references forward from id and returns
	// the newest version. It returns false when id is not stored.
	GetLatest(id string) (AbstractPlan, bool)
	// GetByName returns the most recently added plan with the given name.
	GetByName(name string) (AbstractPlan, bool)
}

// Store is a plan store. Versions are appended, never replaced.
type Store interface {
	Lookup
	// GetNewestByNames returns the newest version per plan name, leaving out
	// names whose newest version is a tombstone.
	GetNewestByNames() map[string]AbstractPlan
	// Add appends plan and any of its children not yet stored.
	Add(plan AbstractPlan) error
	// List returns every stored version in insertion order.
	List() []AbstractPlan
}

// MemoryStore is an in-memory Store. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]AbstractPlan
	order   []string
	derived map[string]string // parent id -> newest derived id
	byName  map[string]string // name -> newest id
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]AbstractPlan),
		derived: make(map[string]string),
		byName:  make(map[string]string),
	}
}

// GetByID implements Lookup.
func (s *MemoryStore) GetByID(id string) (AbstractPlan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	return p, ok
}

// GetLatest implements Lookup.
func (s *MemoryStore) GetLatest(id string) (AbstractPlan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	current, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	seen := map[string]bool{id: true}
	for {
		next, ok := s.derived[current.GetID()]
		if !ok || seen[next] {
			return current, true
		}
		seen[next] = true
		current = s.byID[next]
	}
}

// GetByName implements Lookup.
func (s *MemoryStore) GetByName(name string) (AbstractPlan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return s.byID[id], true
}

// GetNewestByNames implements Store.
func (s *MemoryStore) GetNewestByNames() map[string]AbstractPlan {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make(map[string]AbstractPlan, len(s.byName))
	for name, id := range s.byName {
		p := s.byID[id]
		if p.Meta().IsTombstone() {
			continue
		}
		res[name] = p
	}
	return res
}

// List implements Store.
func (s *MemoryStore) List() []AbstractPlan {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]AbstractPlan, 0, len(s.order))
	for _, id := range s.order {
		res = append(res, s.byID[id])
	}
	return res
}

// Add implements Store.
func (s *MemoryStore) Add(p AbstractPlan) error {
	_, err := s.add(p)
	return err
}

// add stores p and its unseen children, returning the plans actually added
// in insertion order.
func (s *MemoryStore) add(p AbstractPlan) ([]AbstractPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var added []AbstractPlan
	if err := s.addLocked(p, &added); err != nil {
		return nil, err
	}
	return added, nil
}

func (s *MemoryStore) addLocked(p AbstractPlan, added *[]AbstractPlan) error {
	if p == nil {
		return fmt.Errorf("cannot add nil plan")
	}
	if existing, ok := s.byID[p.GetID()]; ok {
		if existing.IsEqualTo(p) && existing.GetKind() == p.GetKind() {
			return nil
		}
		return &api.IdentityConflictError{ID: p.GetID(), Reason: "a different plan is already stored under this id"}
	}

	if c, ok := p.(*CompositePlan); ok {
		for _, child := range c.Plans {
			if err := s.addLocked(child, added); err != nil {
				return err
			}
		}
	}

	meta := p.Meta()
	if meta.DerivedFrom != "" {
		if _, ok := s.byID[meta.DerivedFrom]; !ok {
			return fmt.Errorf("plan %s derives from unknown plan %s", meta.ID, meta.DerivedFrom)
		}
		s.derived[meta.DerivedFrom] = meta.ID
	}
	s.byID[meta.ID] = p
	s.byName[meta.Name] = meta.ID
	s.order = append(s.order, meta.ID)
	*added = append(*added, p)
	return nil
}

// Remove appends a tombstone for the newest version of the plan with the
// given id or name and returns it.
func Remove(store Store, idOrName string, at TimeSource) (AbstractPlan, error) {
	p, ok := store.GetLatest(idOrName)
	if !ok {
		named, found := store.GetByName(idOrName)
		if !found {
			return nil, api.NewPlanNotFoundError(idOrName)
		}
		p, _ = store.GetLatest(named.GetID())
	}
	if p.Meta().IsTombstone() {
		return nil, fmt.Errorf("plan %s is already removed", idOrName)
	}

	tomb := p.Tombstone(at())
	if err := store.Add(tomb); err != nil {
		return nil, fmt.Errorf("failed to remove plan %s: %w", idOrName, err)
	}
	return tomb, nil
}
