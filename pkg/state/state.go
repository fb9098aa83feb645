package state

import "time"

// Status is the lifecycle position of a single artifact.
type Status string

const (
	StatusPending  Status = "pending"
	StatusComplete Status = "complete"
)

// Artifact records how a file on disk was produced.
type Artifact struct {
	// Path is the artifact's file path, also its manifest key.
	Path string `json:"path"`

	// Key covers every input that affects the artifact's content.
	Key string `json:"key"`

	Status Status `json:"status"`

	// CreatedAt is when the artifact was registered.
	CreatedAt time.Time `json:"created_at"`

	// CompletedAt is zero until the artifact is complete.
	CompletedAt time.Time `json:"completed_at,omitempty"`
}

// State is the artifact manifest.
type State struct {
	Artifacts map[string]Artifact `json:"artifacts"`
}

// IsEmpty returns true if no artifact has been recorded.
func (s State) IsEmpty() bool {
	return len(s.Artifacts) == 0
}

// Lookup returns the entry for path.
func (s State) Lookup(path string) (Artifact, bool) {
	a, ok := s.Artifacts[path]
	return a, ok
}

// Trusted reports whether path is a complete artifact built from key.
func (s State) Trusted(path, key string) bool {
	a, ok := s.Artifacts[path]
	return ok && a.Status == StatusComplete && a.Key == key
}

// MarkPending registers path as being produced from key.
func (s *State) MarkPending(path, key string) {
	s.ensure()
	s.Artifacts[path] = Artifact{
		Path:      path,
		Key:       key,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
}

// MarkComplete promotes a pending artifact. A missing entry is created.
func (s *State) MarkComplete(path, key string) {
	s.ensure()
	a, ok := s.Artifacts[path]
	if !ok || a.Key != key {
		a = Artifact{Path: path, Key: key, CreatedAt: time.Now()}
	}
	a.Status = StatusComplete
	a.CompletedAt = time.Now()
	s.Artifacts[path] = a
}

// Forget drops the entry for path.
func (s *State) Forget(path string) {
	delete(s.Artifacts, path)
}

func (s *State) ensure() {
	if s.Artifacts == nil {
		s.Artifacts = make(map[string]Artifact)
	}
}
