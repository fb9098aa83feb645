package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bft-labs/swga/internal/ports"
	"github.com/bft-labs/swga/pkg/state"
)

const tempSuffix = ".tmp"

// PruneResult reports what Prune removed.
type PruneResult struct {
	Files     int
	Bytes     int64
	Forgotten int
}

// Prune removes artifacts in dir that no later run would trust: temporary
// files, counter and graph files without a complete manifest entry, and
// manifest entries whose file is gone. Other files are left alone.
func Prune(ctx context.Context, dir string, manifest state.Repository, logger ports.Logger) (PruneResult, error) {
	var res PruneResult

	st, err := manifest.Load(ctx)
	if err != nil {
		return res, err
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return res, nil
		}
		return res, err
	}

	for _, e := range ents {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if e.IsDir() {
			continue
		}
		name := e.Name()
		path := filepath.Join(dir, name)

		switch {
		case strings.HasSuffix(name, tempSuffix):
		case strings.HasSuffix(name, ArtifactSuffix), strings.HasSuffix(name, GraphSuffix):
			if a, ok := st.Lookup(path); ok && a.Status == state.StatusComplete {
				continue
			}
		case strings.HasSuffix(name, GraphSuffix+NodesSuffix):
			if a, ok := st.Lookup(strings.TrimSuffix(path, NodesSuffix)); ok && a.Status == state.StatusComplete {
				continue
			}
		default:
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}
		if err := os.Remove(path); err != nil {
			logger.Warn("prune: remove failed", ports.String("path", path), ports.Err(err))
			continue
		}
		res.Files++
		res.Bytes += info.Size()
		logger.Debug("pruned", ports.String("path", path))
	}

	var stale []string
	for path, a := range st.Artifacts {
		if a.Status != state.StatusComplete || !fileExists(path) {
			stale = append(stale, path)
		}
	}
	if len(stale) > 0 {
		err := manifest.Update(ctx, func(s *state.State) {
			for _, p := range stale {
				s.Forget(p)
			}
		})
		if err != nil {
			return res, err
		}
		res.Forgotten = len(stale)
	}

	logger.Info("prune finished",
		ports.Int("files", res.Files),
		ports.Int64("bytes", res.Bytes),
		ports.Int("forgotten", res.Forgotten),
	)
	return res, nil
}
