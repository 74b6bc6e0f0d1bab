package jobs

import (
	"sync"

	"disinfowatch/internal/fsjson"
)

// Registry persists the job-name -> Record mapping in a single JSON file.
// The file is shared with other processes (dashboard, scheduler); writes are
// atomic so readers never see partial JSON, but concurrent writers across
// processes are last-writer-wins. Within one process the mutex serializes
// read-modify-write sequences.
type Registry struct {
	path string
	mu   sync.Mutex
}

// NewRegistry returns a registry backed by the JSON file at path.
func NewRegistry(path string) *Registry {
	return &Registry{path: path}
}

// Load returns the current mapping. A missing or empty backing file yields
// an empty mapping, never an error.
func (r *Registry) Load() (map[string]Record, error) {
	records := map[string]Record{}
	if _, err := fsjson.ReadObject(r.path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Save replaces the whole mapping on disk.
func (r *Registry) Save(records map[string]Record) error {
	return fsjson.WriteObjectAtomic(r.path, records)
}

// Update runs fn against the freshly loaded mapping under the registry lock
// and persists the result when fn reports a change.
func (r *Registry) Update(fn func(records map[string]Record) (changed bool, err error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.Load()
	if err != nil {
		return err
	}
	changed, err := fn(records)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return r.Save(records)
}
