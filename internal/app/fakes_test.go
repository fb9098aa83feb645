package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bft-labs/swga/internal/adapters/sqlstore"
	"github.com/bft-labs/swga/internal/domain"
	"github.com/bft-labs/swga/internal/ports"
	"github.com/bft-labs/swga/pkg/kmer"
	"github.com/bft-labs/swga/pkg/log"
)

// mockLogger implements ports.Logger and records warnings.
type mockLogger struct {
	mu    sync.Mutex
	warns []string
}

func (*mockLogger) Debug(string, ...ports.Field) {}
func (*mockLogger) Info(string, ...ports.Field)  {}
func (m *mockLogger) Warn(msg string, fields ...ports.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warns = append(m.warns, msg)
}
func (*mockLogger) Error(string, ...ports.Field) {}

func (m *mockLogger) Warnings() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.warns...)
}

var _ ports.Logger = (*mockLogger)(nil)

func noop() ports.Logger { return log.NoopLogger{} }

// memGenome is an in-memory ports.Genome.
type memGenome struct {
	id      string
	path    string
	ids     []string
	records []string
}

func newMemGenome(id string, records ...string) *memGenome {
	g := &memGenome{id: id, path: "/genomes/" + id + ".fasta"}
	for i, r := range records {
		g.ids = append(g.ids, "rec"+string(rune('1'+i)))
		g.records = append(g.records, r)
	}
	return g
}

func (g *memGenome) Identity() string { return g.id }
func (g *memGenome) Path() string     { return g.path }

func (g *memGenome) Stats(context.Context) (domain.GenomeStats, error) {
	var n int64
	for _, r := range g.records {
		n += int64(len(r))
	}
	return domain.GenomeStats{Records: len(g.records), Length: n}, nil
}

func (g *memGenome) Count(ctx context.Context, seq string) (int64, error) {
	m, err := g.FindAll(ctx, seq)
	return int64(len(m)), err
}

func (g *memGenome) FindAll(_ context.Context, seq string) ([]ports.Match, error) {
	var out []ports.Match
	var start int64
	for i, r := range g.records {
		for off := 0; off+len(seq) <= len(r); off++ {
			if r[off:off+len(seq)] == seq {
				out = append(out, ports.Match{RecordID: g.ids[i], Offset: int64(off), Position: start + int64(off)})
			}
		}
		start += int64(len(r))
	}
	return out, nil
}

// sliceSource is a KmerSource over fixed counts.
type sliceSource struct {
	counts []kmer.Count
	err    error
	closed bool
}

func (s *sliceSource) Next(ctx context.Context) (kmer.Count, error) {
	if len(s.counts) == 0 {
		if s.err != nil {
			return kmer.Count{}, s.err
		}
		return kmer.Count{}, io.EOF
	}
	c := s.counts[0]
	s.counts = s.counts[1:]
	return c, nil
}

func (s *sliceSource) Close() error {
	s.closed = true
	return nil
}

// counterRunner fakes the k-mer counter by writing fixture records to the
// output prefix given after -o.
type counterRunner struct {
	mu       sync.Mutex
	calls    int
	fixtures map[string][]kmer.Count // by genome path
	k        int
	fail     error
	garbage  bool
}

func (r *counterRunner) Run(_ context.Context, cmd ports.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++

	var genome, out string
	genome = cmd.Args[0]
	for i, a := range cmd.Args {
		if a == "-o" && i+1 < len(cmd.Args) {
			out = cmd.Args[i+1] + ArtifactSuffix
		}
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	if r.garbage {
		_, err := f.Write([]byte{1, 2, 3})
		return err
	}
	w, err := kmer.NewWriter(f, r.k, kmer.BitsFor(r.k))
	if err != nil {
		return err
	}
	for _, c := range r.fixtures[genome] {
		if err := w.Write(c.Seq, c.Freq); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return r.fail
}

func (r *counterRunner) Start(context.Context, ports.Command) (ports.Process, error) {
	panic("not used")
}

func (r *counterRunner) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// fakeProcess is a ports.Process with scripted output.
type fakeProcess struct {
	stdout  io.Reader
	stderr  string
	waitErr error
	kills   int
	waits   int
}

func (p *fakeProcess) Stdout() io.Reader { return p.stdout }
func (p *fakeProcess) Stderr() string    { return p.stderr }
func (p *fakeProcess) Kill() error       { p.kills++; return nil }
func (p *fakeProcess) Wait() error       { p.waits++; return p.waitErr }

// enumRunner returns a fakeProcess from Start.
type enumRunner struct {
	proc *fakeProcess
	cmds []ports.Command
}

func (r *enumRunner) Run(context.Context, ports.Command) error { panic("not used") }

func (r *enumRunner) Start(_ context.Context, cmd ports.Command) (ports.Process, error) {
	r.cmds = append(r.cmds, cmd)
	return r.proc, nil
}

func newEnumRunner(stdout string) *enumRunner {
	return &enumRunner{proc: &fakeProcess{stdout: strings.NewReader(stdout)}}
}

func newStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	s, err := sqlstore.Open(filepath.Join(t.TempDir(), "swga.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}
