package state

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const stateFileName = "artifacts.json"

// FileRepository implements Repository using a JSON file.
type FileRepository struct {
	dir string
	mu  sync.Mutex
}

// NewFileRepository creates a new FileRepository for the given directory.
func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{dir: dir}
}

// Load retrieves the last saved manifest from disk.
// Returns an empty state and nil error if no manifest file exists.
func (r *FileRepository) Load(ctx context.Context) (State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

func (r *FileRepository) load() (State, error) {
	data, err := os.ReadFile(r.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return State{Artifacts: map[string]Artifact{}}, nil
		}
		return State{}, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, err
	}
	state.ensure()

	return state, nil
}

// Save persists the manifest atomically (temp file, then rename).
func (r *FileRepository) Save(ctx context.Context, state State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(state)
}

func (r *FileRepository) save(state State) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return err
	}

	path := r.Path()
	tmp := path + ".tmp"

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// Update loads the manifest, applies fn and saves the result.
func (r *FileRepository) Update(ctx context.Context, fn func(*State)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.load()
	if err != nil {
		return err
	}
	fn(&s)
	return r.save(s)
}

// Path returns the full path to the manifest file.
func (r *FileRepository) Path() string {
	return filepath.Join(r.dir, stateFileName)
}
