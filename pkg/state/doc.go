// Package state persists the artifact manifest that decides whether a cached
// pipeline artifact can be trusted.
//
// Every artifact the pipeline produces (k-mer count files, compatibility
// graphs) is recorded with the cache key it was built from. An artifact is
// registered as pending before the producing step starts and marked complete
// only after it has been fully written and verified. A file on disk whose
// entry is missing, pending, or carries a different key is treated as a
// partial leftover and rebuilt.
//
// # Usage
//
//	repo := state.NewFileRepository("/path/to/workspace")
//
//	s, err := repo.Load(ctx)
//	if err != nil {
//	    return err
//	}
//	if s.Trusted(path, key) {
//	    // reuse
//	}
//	s.MarkPending(path, key)
//	if err := repo.Save(ctx, s); err != nil {
//	    return err
//	}
//
// # Version
//
// Current version: 1.1.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package state
