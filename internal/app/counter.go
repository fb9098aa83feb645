package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/swga/internal/domain"
	"github.com/bft-labs/swga/internal/ports"
	"github.com/bft-labs/swga/pkg/kmer"
	"github.com/bft-labs/swga/pkg/state"
)

// ArtifactSuffix is appended by the counter to its output prefix.
const ArtifactSuffix = ".solid_kmers_binary"

// DefaultCounterArgs matches the DSK command line.
var DefaultCounterArgs = []string{"{genome}", "{k}", "-o", "{out}", "-t", "{threshold}"}

// CounterConfig configures the external k-mer counter.
type CounterConfig struct {
	// Executable is the counter binary.
	Executable string

	// Args is the argument template. Placeholders: {genome}, {k},
	// {threshold}, {out} (output prefix) and {output} (full artifact path).
	Args []string

	// Dir holds the count artifacts and is the counter's working directory.
	Dir string
}

// Counter runs the k-mer counter and opens its output, reusing artifacts
// that the manifest marks complete for the same inputs.
type Counter struct {
	cfg      CounterConfig
	runner   ports.CommandRunner
	manifest state.Repository
	logger   ports.Logger
}

// NewCounter creates a counter.
func NewCounter(cfg CounterConfig, runner ports.CommandRunner, manifest state.Repository, logger ports.Logger) *Counter {
	if len(cfg.Args) == 0 {
		cfg.Args = DefaultCounterArgs
	}
	return &Counter{cfg: cfg, runner: runner, manifest: manifest, logger: logger}
}

// ArtifactPath returns the deterministic output path for (genome, k, threshold).
func (c *Counter) ArtifactPath(g ports.Genome, k, threshold int) string {
	name := fmt.Sprintf("%s-%dmers-t%d%s", g.Identity(), k, threshold, ArtifactSuffix)
	return filepath.Join(c.cfg.Dir, name)
}

// cacheKey covers every input that changes the counter's output.
func (c *Counter) cacheKey(g ports.Genome, k, threshold int) string {
	h := sha256.New()
	fmt.Fprintf(h, "genome=%s\nk=%d\nthreshold=%d\ncounter=%s\nargs=%s\n",
		g.Identity(), k, threshold, c.cfg.Executable, strings.Join(c.cfg.Args, "\x00"))
	return hex.EncodeToString(h.Sum(nil))
}

// Count ensures a complete artifact exists and returns its path. The counter
// is not invoked when a trusted artifact is already present.
func (c *Counter) Count(ctx context.Context, g ports.Genome, k, threshold int) (string, error) {
	path := c.ArtifactPath(g, k, threshold)
	key := c.cacheKey(g, k, threshold)

	s, err := c.manifest.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load manifest: %w", err)
	}

	exists := fileExists(path)
	if exists && s.Trusted(path, key) {
		c.logger.Info("reusing k-mer counts",
			ports.String("path", path),
			ports.Int("k", k),
		)
		return path, nil
	}
	if exists {
		c.logger.Warn("discarding partial k-mer artifact", ports.String("path", path))
		if err := os.Remove(path); err != nil {
			return "", fmt.Errorf("remove partial artifact: %w", err)
		}
	}

	if err := os.MkdirAll(c.cfg.Dir, 0o755); err != nil {
		return "", err
	}
	s.MarkPending(path, key)
	if err := c.manifest.Save(ctx, s); err != nil {
		return "", fmt.Errorf("save manifest: %w", err)
	}

	cmd := ports.Command{
		Path: c.cfg.Executable,
		Args: expandArgs(c.cfg.Args, map[string]string{
			"genome":    g.Path(),
			"k":         strconv.Itoa(k),
			"threshold": strconv.Itoa(threshold),
			"out":       strings.TrimSuffix(path, ArtifactSuffix),
			"output":    path,
		}),
		Dir: c.cfg.Dir,
	}

	c.logger.Info("counting k-mers",
		ports.String("genome", g.Path()),
		ports.Int("k", k),
		ports.Int("threshold", threshold),
		ports.String("cmd", cmd.String()),
	)
	start := time.Now()
	if err := c.runner.Run(ctx, cmd); err != nil {
		c.discard(ctx, path)
		return "", fmt.Errorf("%w: %w", domain.ErrCounter, err)
	}

	if err := verifyHeader(path, k); err != nil {
		c.discard(ctx, path)
		return "", err
	}

	if err := c.manifest.Update(ctx, func(s *state.State) { s.MarkComplete(path, key) }); err != nil {
		return "", fmt.Errorf("save manifest: %w", err)
	}
	c.logger.Info("counted k-mers",
		ports.String("path", path),
		ports.Duration("duration", time.Since(start)),
	)
	return path, nil
}

// Open counts if needed and returns a decoding iterator over the artifact.
func (c *Counter) Open(ctx context.Context, g ports.Genome, k, threshold int) (*KmerIterator, error) {
	path, err := c.Count(ctx, g, k, threshold)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := kmer.NewReader(f, kmer.WithMinFrequency(uint32(threshold)))
	if err != nil {
		_ = f.Close()
		c.discard(ctx, path)
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &KmerIterator{r: r, f: f, path: path, counter: c}, nil
}

// discard removes a failed artifact and its manifest entry.
func (c *Counter) discard(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		c.logger.Warn("failed to remove artifact", ports.String("path", path), ports.Err(err))
	}
	if err := c.manifest.Update(ctx, func(s *state.State) { s.Forget(path) }); err != nil {
		c.logger.Warn("failed to update manifest", ports.String("path", path), ports.Err(err))
	}
}

func verifyHeader(path string, k int) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: counter produced no output at %s: %w", domain.ErrCounter, path, err)
	}
	defer f.Close()
	r, err := kmer.NewReader(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if int(r.Header().K) != k {
		return &kmer.DecodeError{Reason: fmt.Sprintf("%s holds %d-mers, want %d", path, r.Header().K, k)}
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// KmerSource is a single-pass stream of decoded k-mer counts.
type KmerSource interface {
	Next(ctx context.Context) (kmer.Count, error)
	Close() error
}

// KmerIterator decodes a count artifact. A decode failure deletes the
// artifact so the next run recounts.
type KmerIterator struct {
	r       *kmer.Reader
	f       *os.File
	path    string
	counter *Counter
	err     error
}

func (it *KmerIterator) Next(ctx context.Context) (kmer.Count, error) {
	if it.err != nil {
		return kmer.Count{}, it.err
	}
	if err := ctx.Err(); err != nil {
		return kmer.Count{}, err
	}
	c, err := it.r.Next()
	if err == nil {
		return c, nil
	}
	it.err = err
	if !errors.Is(err, io.EOF) {
		_ = it.f.Close()
		it.counter.discard(ctx, it.path)
		it.err = fmt.Errorf("%s: %w", it.path, err)
	}
	return kmer.Count{}, it.err
}

func (it *KmerIterator) Close() error {
	err := it.f.Close()
	if errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}

// Path returns the artifact being decoded.
func (it *KmerIterator) Path() string {
	return it.path
}
