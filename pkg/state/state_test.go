package state

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_Trusted(t *testing.T) {
	var s State
	assert.True(t, s.IsEmpty())
	assert.False(t, s.Trusted("a.bin", "k1"))

	s.MarkPending("a.bin", "k1")
	assert.False(t, s.Trusted("a.bin", "k1"), "pending is not trusted")

	s.MarkComplete("a.bin", "k1")
	assert.True(t, s.Trusted("a.bin", "k1"))
	assert.False(t, s.Trusted("a.bin", "k2"), "different key")

	s.Forget("a.bin")
	_, ok := s.Lookup("a.bin")
	assert.False(t, ok)
}

func TestFileRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewFileRepository(t.TempDir())

	s, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.True(t, s.IsEmpty())

	require.NoError(t, repo.Update(ctx, func(s *State) {
		s.MarkPending("g.graph", "abc")
		s.MarkComplete("g.graph", "abc")
	}))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.True(t, loaded.Trusted("g.graph", "abc"))

	_, err = os.Stat(repo.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file renamed away")
}

func TestFileRepository_CorruptManifest(t *testing.T) {
	repo := NewFileRepository(t.TempDir())
	require.NoError(t, os.WriteFile(repo.Path(), []byte("{not json"), 0o644))

	_, err := repo.Load(context.Background())
	assert.Error(t, err)
}

func TestFileRepository_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	repo := NewFileRepository(t.TempDir())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, repo.Update(ctx, func(s *State) {
				s.MarkComplete(fmt.Sprintf("a%02d.graph", i), "k")
			}))
		}(i)
	}
	wg.Wait()

	s, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, s.Artifacts, 20, "no update is lost")
}
