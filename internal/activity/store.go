package activity

import (
	"fmt"
	"sort"
	"sync"

	"github.com/giantswarm/lineage/internal/api"
	"github.com/giantswarm/lineage/internal/config"
	"github.com/giantswarm/lineage/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	activityEntityType   = "activities"
	collectionEntityType = "collections"
)

// Store persists the activity history.
type Store interface {
	Add(a *Activity) error
	AddCollection(c *Collection) error
	Get(id string) (*Activity, error)
	// List returns every activity ordered by start time
	List() ([]*Activity, error)
	Collections() ([]*Collection, error)
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu          sync.RWMutex
	activities  map[string]*Activity
	collections map[string]*Collection
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		activities:  make(map[string]*Activity),
		collections: make(map[string]*Collection),
	}
}

func (s *MemoryStore) Add(a *Activity) error {
	if a.ID == "" {
		return fmt.Errorf("activity has no id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities[a.ID] = a.Clone()
	return nil
}

func (s *MemoryStore) AddCollection(c *Collection) error {
	if c.ID == "" {
		return fmt.Errorf("activity collection has no id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.collections[c.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(id string) (*Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.activities[id]
	if !ok {
		return nil, api.NewActivityNotFoundError(id)
	}
	return a.Clone(), nil
}

func (s *MemoryStore) List() ([]*Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]*Activity, 0, len(s.activities))
	for _, a := range s.activities {
		res = append(res, a.Clone())
	}
	SortByStart(res)
	return res, nil
}

func (s *MemoryStore) Collections() ([]*Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]*Collection, 0, len(s.collections))
	for _, c := range s.collections {
		cp := *c
		res = append(res, &cp)
	}
	sortCollections(res)
	return res, nil
}

func sortCollections(cs []*Collection) {
	sort.SliceStable(cs, func(i, j int) bool {
		if !cs[i].StartedAt.Equal(cs[j].StartedAt) {
			return cs[i].StartedAt.Before(cs[j].StartedAt)
		}
		return cs[i].ID < cs[j].ID
	})
}

// FileStore keeps one YAML file per activity and per collection under
// <state-dir>/activities/ and <state-dir>/collections/.
type FileStore struct {
	storage *config.Storage
}

// NewFileStore creates a store on top of storage.
func NewFileStore(storage *config.Storage) *FileStore {
	return &FileStore{storage: storage}
}

func (s *FileStore) Add(a *Activity) error {
	if a.ID == "" {
		return fmt.Errorf("activity has no id")
	}
	data, err := yaml.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode activity %s: %w", a.ID, err)
	}
	if err := s.storage.Save(activityEntityType, a.ID, data); err != nil {
		return fmt.Errorf("failed to persist activity %s: %w", a.ID, err)
	}
	logging.Debug("ActivityStore", "Recorded activity %s of plan %s (exit code %d)", a.ID, a.PlanID, a.ExitCode)
	return nil
}

func (s *FileStore) AddCollection(c *Collection) error {
	if c.ID == "" {
		return fmt.Errorf("activity collection has no id")
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode activity collection %s: %w", c.ID, err)
	}
	if err := s.storage.Save(collectionEntityType, c.ID, data); err != nil {
		return fmt.Errorf("failed to persist activity collection %s: %w", c.ID, err)
	}
	logging.Debug("ActivityStore", "Recorded collection %s with %d activities", c.ID, len(c.ActivityIDs))
	return nil
}

func (s *FileStore) Get(id string) (*Activity, error) {
	if !s.storage.Exists(activityEntityType, id) {
		return nil, api.NewActivityNotFoundError(id)
	}
	data, err := s.storage.Load(activityEntityType, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load activity %s: %w", id, err)
	}
	var a Activity
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode activity %s: %w", id, err)
	}
	return &a, nil
}

func (s *FileStore) List() ([]*Activity, error) {
	ids, err := s.storage.List(activityEntityType)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	res := make([]*Activity, 0, len(ids))
	for _, id := range ids {
		a, err := s.Get(id)
		if err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	SortByStart(res)
	return res, nil
}

func (s *FileStore) Collections() ([]*Collection, error) {
	ids, err := s.storage.List(collectionEntityType)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity collections: %w", err)
	}
	res := make([]*Collection, 0, len(ids))
	for _, id := range ids {
		data, err := s.storage.Load(collectionEntityType, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load activity collection %s: %w", id, err)
		}
		var c Collection
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to decode activity collection %s: %w", id, err)
		}
		res = append(res, &c)
	}
	sortCollections(res)
	return res, nil
}
