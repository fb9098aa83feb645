package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/bft-labs/swga/internal/domain"
	"github.com/bft-labs/swga/internal/ports"
	"github.com/bft-labs/swga/pkg/graph"
	"github.com/bft-labs/swga/pkg/state"
)

// NodesSuffix names the node sidecar next to a graph file.
const NodesSuffix = ".nodes"

// GraphSuffix ends every graph file name.
const GraphSuffix = ".graph"

// GraphConfig configures the compatibility graph.
type GraphConfig struct {
	Dir             string
	MaxHetdimerBind int
}

// GraphArtifact is a written graph with its nodes mapped back to primers.
// Nodes[i] is graph node i+1 in the file.
type GraphArtifact struct {
	Path      string
	NodesPath string
	Graph     *graph.Graph
	Nodes     []domain.Primer
}

// GraphBuilder builds compatibility graphs and caches their files.
type GraphBuilder struct {
	cfg      GraphConfig
	manifest state.Repository
	logger   ports.Logger
}

// NewGraphBuilder creates a graph builder.
func NewGraphBuilder(cfg GraphConfig, manifest state.Repository, logger ports.Logger) *GraphBuilder {
	return &GraphBuilder{cfg: cfg, manifest: manifest, logger: logger}
}

func (b *GraphBuilder) key(primers []domain.Primer) string {
	h := sha256.New()
	fmt.Fprintf(h, "max_hetdimer_bind=%d\n", b.cfg.MaxHetdimerBind)
	for _, p := range primers {
		h.Write([]byte(p.Seq))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Build returns the graph for primers in the given order, reading a trusted
// cached file when one exists.
func (b *GraphBuilder) Build(ctx context.Context, primers []domain.Primer) (*GraphArtifact, error) {
	key := b.key(primers)
	path := filepath.Join(b.cfg.Dir, fmt.Sprintf("compat-h%d-%s%s", b.cfg.MaxHetdimerBind, key[:16], GraphSuffix))
	nodesPath := path + NodesSuffix

	s, err := b.manifest.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	if s.Trusted(path, key) && fileExists(path) && fileExists(nodesPath) {
		art, err := b.load(path, nodesPath, primers)
		if err == nil {
			b.logger.Info("reusing compatibility graph",
				ports.String("path", path),
				ports.Int("nodes", len(art.Nodes)),
				ports.Int("edges", len(art.Graph.Edges)),
			)
			return art, nil
		}
		b.logger.Warn("cached graph unreadable, rebuilding", ports.String("path", path), ports.Err(err))
	}

	seqs := make([]string, len(primers))
	for i, p := range primers {
		seqs[i] = p.Seq
	}
	g := graph.Build(seqs, b.cfg.MaxHetdimerBind)
	for _, ex := range g.Excluded {
		b.logger.Debug("self-dimer excluded", ports.String("seq", ex))
	}

	s.MarkPending(path, key)
	if err := b.manifest.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save manifest: %w", err)
	}
	if err := writeAtomic(path, g.Write); err != nil {
		return nil, err
	}
	if err := writeAtomic(nodesPath, g.WriteNodes); err != nil {
		return nil, err
	}
	if err := b.manifest.Update(ctx, func(s *state.State) { s.MarkComplete(path, key) }); err != nil {
		return nil, fmt.Errorf("save manifest: %w", err)
	}

	b.logger.Info("built compatibility graph",
		ports.String("path", path),
		ports.Int("input", len(primers)),
		ports.Int("nodes", len(g.Nodes)),
		ports.Int("excluded", len(g.Excluded)),
		ports.Int("edges", len(g.Edges)),
		ports.Int("max_hetdimer_bind", b.cfg.MaxHetdimerBind),
	)
	return &GraphArtifact{Path: path, NodesPath: nodesPath, Graph: g, Nodes: mapNodes(g.Nodes, primers)}, nil
}

func (b *GraphBuilder) load(path, nodesPath string, primers []domain.Primer) (*GraphArtifact, error) {
	ef, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer ef.Close()
	nf, err := os.Open(nodesPath)
	if err != nil {
		return nil, err
	}
	defer nf.Close()

	g, err := graph.Read(ef, nf)
	if err != nil {
		return nil, err
	}
	g.Threshold = b.cfg.MaxHetdimerBind
	nodes := mapNodes(g.Nodes, primers)
	if len(nodes) != len(g.Nodes) {
		return nil, fmt.Errorf("graph %s names primers outside the input", path)
	}
	return &GraphArtifact{Path: path, NodesPath: nodesPath, Graph: g, Nodes: nodes}, nil
}

func mapNodes(seqs []string, primers []domain.Primer) []domain.Primer {
	bySeq := make(map[string]domain.Primer, len(primers))
	for _, p := range primers {
		bySeq[p.Seq] = p
	}
	out := make([]domain.Primer, 0, len(seqs))
	for _, s := range seqs {
		if p, ok := bySeq[s]; ok {
			out = append(out, p)
		}
	}
	return out
}

// writeAtomic writes through a uniquely named temp file renamed into place.
func writeAtomic(path string, write func(w io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + "." + uuid.NewString() + tempSuffix
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// placeholders for the enumerator's argument template
func graphVars(art *GraphArtifact, minSize, maxSize int) map[string]string {
	return map[string]string{
		"graph": art.Path,
		"nodes": art.NodesPath,
		"min":   strconv.Itoa(minSize),
		"max":   strconv.Itoa(maxSize),
	}
}
