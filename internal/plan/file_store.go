package plan

import (
	"fmt"
	"sort"
	"sync"

	"github.com/giantswarm/lineage/internal/config"
	"github.com/giantswarm/lineage/pkg/logging"

	"gopkg.in/yaml.v3"
)

const planEntityType = "plans"

// planRecord is the on-disk form of one plan version. Composites keep only
// the ids of their children.
type planRecord struct {
	Plan     `yaml:",inline"`
	Children []string `yaml:"children,omitempty"`
	LogIndex int      `yaml:"logIndex"`
}

// FileStore is a Store persisted as an append-only log of YAML records, one
// file per version, under <state-dir>/plans/. The whole log is loaded when
// the store is opened; lookups are served from memory.
type FileStore struct {
	mu      sync.Mutex
	storage *config.Storage
	index   *MemoryStore
	next    int
}

// NewFileStore opens the plan log kept by storage.
func NewFileStore(storage *config.Storage) (*FileStore, error) {
	fs := &FileStore{
		storage: storage,
		index:   NewMemoryStore(),
	}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) load() error {
	ids, err := fs.storage.List(planEntityType)
	if err != nil {
		return fmt.Errorf("failed to list plans: %w", err)
	}

	records := make([]planRecord, 0, len(ids))
	for _, id := range ids {
		data, err := fs.storage.Load(planEntityType, id)
		if err != nil {
			return fmt.Errorf("failed to load plan %s: %w", id, err)
		}
		var rec planRecord
		if err := yaml.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("failed to decode plan %s: %w", id, err)
		}
		records = append(records, rec)
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].LogIndex < records[j].LogIndex })

	for _, rec := range records {
		p, err := fs.rehydrate(rec)
		if err != nil {
			return err
		}
		if _, err := fs.index.add(p); err != nil {
			return fmt.Errorf("failed to index plan %s: %w", rec.ID, err)
		}
		if rec.LogIndex >= fs.next {
			fs.next = rec.LogIndex + 1
		}
	}

	logging.Debug("PlanStore", "Loaded %d plan versions from %s", len(records), fs.storage.Dir())
	return nil
}

func (fs *FileStore) rehydrate(rec planRecord) (AbstractPlan, error) {
	if !rec.Kind.IsComposite() {
		p := rec.Plan
		return &p, nil
	}

	children := make([]AbstractPlan, 0, len(rec.Children))
	for _, childID := range rec.Children {
		child, ok := fs.index.GetByID(childID)
		if !ok {
			return nil, fmt.Errorf("composite plan %s references unknown plan %s", rec.ID, childID)
		}
		children = append(children, child)
	}
	return &CompositePlan{Metadata: rec.Metadata, Plans: children}, nil
}

func toRecord(p AbstractPlan, logIndex int) (planRecord, error) {
	switch v := p.(type) {
	case *Plan:
		return planRecord{Plan: *v, LogIndex: logIndex}, nil
	case *CompositePlan:
		return planRecord{Plan: Plan{Metadata: v.Metadata}, Children: v.ChildIDs(), LogIndex: logIndex}, nil
	default:
		return planRecord{}, fmt.Errorf("unsupported plan type %T", p)
	}
}

// GetByID implements Lookup.
func (fs *FileStore) GetByID(id string) (AbstractPlan, bool) { return fs.index.GetByID(id) }

// GetLatest implements Lookup.
func (fs *FileStore) GetLatest(id string) (AbstractPlan, bool) { return fs.index.GetLatest(id) }

// GetByName implements Lookup.
func (fs *FileStore) GetByName(name string) (AbstractPlan, bool) { return fs.index.GetByName(name) }

// GetNewestByNames implements Store.
func (fs *FileStore) GetNewestByNames() map[string]AbstractPlan { return fs.index.GetNewestByNames() }

// List implements Store.
func (fs *FileStore) List() []AbstractPlan { return fs.index.List() }

// Add implements Store. Every newly added version is written before Add returns.
func (fs *FileStore) Add(p AbstractPlan) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	added, err := fs.index.add(p)
	if err != nil {
		return err
	}

	for _, a := range added {
		rec, err := toRecord(a, fs.next)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode plan %s: %w", a.GetID(), err)
		}
		if err := fs.storage.Save(planEntityType, a.GetID(), data); err != nil {
			return fmt.Errorf("failed to persist plan %s: %w", a.GetID(), err)
		}
		fs.next++
		logging.Debug("PlanStore", "Appended plan %s (%s) version %s", a.GetName(), a.GetKind(), a.GetID())
	}
	return nil
}
