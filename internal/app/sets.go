package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bft-labs/swga/internal/domain"
	"github.com/bft-labs/swga/internal/ports"
)

// DefaultEnumeratorArgs passes the graph file and size bounds.
var DefaultEnumeratorArgs = []string{"-i", "{graph}", "-l", "{min}", "-h", "{max}"}

// SetSearchConfig configures the external set enumerator.
type SetSearchConfig struct {
	Executable string

	// Args is the argument template. Placeholders: {graph}, {nodes}, {min}, {max}.
	Args []string

	MinSize int
	MaxSize int
}

// SetSource is a single-pass stream of primer sets.
type SetSource interface {
	Next(ctx context.Context) (domain.PrimerSet, error)
	Close() error
}

// SetSearcher runs the enumerator over a compatibility graph.
type SetSearcher struct {
	cfg    SetSearchConfig
	runner ports.CommandRunner
	logger ports.Logger
}

// NewSetSearcher creates a set searcher.
func NewSetSearcher(cfg SetSearchConfig, runner ports.CommandRunner, logger ports.Logger) *SetSearcher {
	if len(cfg.Args) == 0 {
		cfg.Args = DefaultEnumeratorArgs
	}
	return &SetSearcher{cfg: cfg, runner: runner, logger: logger}
}

// Search starts the enumerator and returns an iterator over its sets.
// The caller must Close the iterator.
func (s *SetSearcher) Search(ctx context.Context, art *GraphArtifact) (*SetIterator, error) {
	cmd := ports.Command{
		Path: s.cfg.Executable,
		Args: expandArgs(s.cfg.Args, graphVars(art, s.cfg.MinSize, s.cfg.MaxSize)),
	}
	s.logger.Info("searching primer sets",
		ports.String("cmd", cmd.String()),
		ports.Int("nodes", len(art.Nodes)),
		ports.Int("min_size", s.cfg.MinSize),
		ports.Int("max_size", s.cfg.MaxSize),
	)
	proc, err := s.runner.Start(ctx, cmd)
	if err != nil {
		return nil, &domain.EnumeratorFailure{ExitCode: -1, Reason: err.Error()}
	}
	sc := bufio.NewScanner(proc.Stdout())
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &SetIterator{proc: proc, sc: sc, art: art, minSize: s.cfg.MinSize, maxSize: s.cfg.MaxSize}, nil
}

// SetIterator parses enumerator output lazily. Any failure kills the
// enumerator and is returned from every later call.
type SetIterator struct {
	proc    ports.Process
	sc      *bufio.Scanner
	art     *GraphArtifact
	minSize int
	maxSize int

	err     error
	emitted int
}

func (it *SetIterator) Next(ctx context.Context) (domain.PrimerSet, error) {
	if it.err != nil {
		return domain.PrimerSet{}, it.err
	}
	if err := ctx.Err(); err != nil {
		return domain.PrimerSet{}, it.fail(err)
	}

	for it.sc.Scan() {
		line := strings.TrimSpace(it.sc.Text())
		if line == "" {
			continue
		}
		set, err := it.parse(line)
		if err != nil {
			return domain.PrimerSet{}, it.fail(err)
		}
		it.emitted++
		return set, nil
	}
	if err := it.sc.Err(); err != nil {
		return domain.PrimerSet{}, it.fail(&domain.EnumeratorFailure{ExitCode: -1, Reason: "read output: " + err.Error(), Stderr: it.proc.Stderr()})
	}

	if err := it.proc.Wait(); err != nil {
		var exitErr *ports.ExitError
		if errors.As(err, &exitErr) {
			it.err = &domain.EnumeratorFailure{ExitCode: exitErr.Code, Stderr: exitErr.Stderr, Reason: "non-zero exit"}
		} else {
			it.err = &domain.EnumeratorFailure{ExitCode: -1, Reason: err.Error(), Stderr: it.proc.Stderr()}
		}
		return domain.PrimerSet{}, it.err
	}
	it.err = io.EOF
	return domain.PrimerSet{}, io.EOF
}

// parse validates one "<size> <id_1> ... <id_size>" line.
func (it *SetIterator) parse(line string) (domain.PrimerSet, error) {
	fields := strings.Fields(line)
	malformed := func(reason string) error {
		return &domain.EnumeratorFailure{ExitCode: -1, Line: line, Reason: reason}
	}

	size, err := strconv.Atoi(fields[0])
	if err != nil {
		return domain.PrimerSet{}, malformed("size is not an integer")
	}
	if size != len(fields)-1 {
		return domain.PrimerSet{}, malformed(fmt.Sprintf("size %d but %d ids", size, len(fields)-1))
	}
	if size < it.minSize || size > it.maxSize {
		return domain.PrimerSet{}, malformed(fmt.Sprintf("size %d outside [%d, %d]", size, it.minSize, it.maxSize))
	}

	ids := make([]int, size)
	seen := make(map[int]bool, size)
	for i, f := range fields[1:] {
		id, err := strconv.Atoi(f)
		if err != nil {
			return domain.PrimerSet{}, malformed(fmt.Sprintf("id %q is not an integer", f))
		}
		if seen[id] {
			return domain.PrimerSet{}, malformed(fmt.Sprintf("id %d repeated", id))
		}
		seen[id] = true
		ids[i] = id
	}

	n := len(it.art.Nodes)
	set := domain.PrimerSet{Primers: make([]domain.Primer, size)}
	for i, id := range ids {
		if id < 1 || id > n {
			return domain.PrimerSet{}, &domain.GraphConstraintViolation{Line: line, Reason: fmt.Sprintf("node %d outside 1..%d", id, n)}
		}
		set.Primers[i] = it.art.Nodes[id-1]
	}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if !it.art.Graph.HasEdge(ids[i]-1, ids[j]-1) {
				return domain.PrimerSet{}, &domain.GraphConstraintViolation{Line: line, Reason: fmt.Sprintf("nodes %d and %d are not adjacent", ids[i], ids[j])}
			}
		}
	}
	return set, nil
}

func (it *SetIterator) fail(err error) error {
	_ = it.proc.Kill()
	_ = it.proc.Wait()
	var ef *domain.EnumeratorFailure
	if errors.As(err, &ef) && ef.Stderr == "" {
		ef.Stderr = it.proc.Stderr()
	}
	it.err = err
	return err
}

// Close stops the enumerator if it is still running.
func (it *SetIterator) Close() error {
	if it.err == nil {
		_ = it.fail(errors.New("set iterator closed"))
	}
	return nil
}

// Emitted returns how many sets have been returned.
func (it *SetIterator) Emitted() int {
	return it.emitted
}
