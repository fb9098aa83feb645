package swga

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/bft-labs/swga/pkg/kmer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeRunner writes fixture k-mer files for the counter and replays a
// canned enumerator output.
type fakeRunner struct {
	mu       sync.Mutex
	fixtures map[string][]byte
	enumOut  string
	counts   int
	searches int
}

func (r *fakeRunner) Run(_ context.Context, cmd Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts++
	data := r.fixtures[filepath.Base(cmd.Args[0])]
	return os.WriteFile(cmd.Args[3]+".solid_kmers_binary", data, 0o644)
}

func (r *fakeRunner) Start(context.Context, Command) (Process, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searches++
	return &fakeProcess{stdout: strings.NewReader(r.enumOut)}, nil
}

type fakeProcess struct{ stdout io.Reader }

func (p *fakeProcess) Stdout() io.Reader { return p.stdout }
func (p *fakeProcess) Stderr() string    { return "" }
func (p *fakeProcess) Kill() error       { return nil }
func (p *fakeProcess) Wait() error       { return nil }

type recordingHandler struct {
	mu     sync.Mutex
	states []State
}

func (h *recordingHandler) OnStateChange(e StateChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states = append(h.states, e.Current)
}

func kmerFile(t *testing.T, counts map[string]uint32) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := kmer.NewWriter(&buf, 4, kmer.BitsFor(4))
	require.NoError(t, err)
	for _, seq := range []string{"AAAC", "CCCA", "GACA"} {
		if f, ok := counts[seq]; ok {
			require.NoError(t, w.Write(seq, f))
		}
	}
	require.NoError(t, w.Flush())
	return buf.Bytes()
}

func testConfig(t *testing.T) (Config, *fakeRunner) {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.FgGenome = filepath.Join(dir, "fg.fasta")
	cfg.BgGenome = filepath.Join(dir, "bg.fasta")
	cfg.WorkDir = filepath.Join(dir, "work")
	cfg.KmerMin, cfg.KmerMax = 4, 4
	cfg.MinBgBindDist = 10
	require.NoError(t, os.WriteFile(cfg.FgGenome, []byte(">f\nAAACCCCAAAACCCCA\n"), 0o644))
	require.NoError(t, os.WriteFile(cfg.BgGenome, []byte(">b\nAAAC"+strings.Repeat("T", 36)+"CCCATTTT\n"), 0o644))

	r := &fakeRunner{
		fixtures: map[string][]byte{
			"fg.fasta": kmerFile(t, map[string]uint32{"AAAC": 5, "CCCA": 4, "GACA": 1}),
			"bg.fasta": kmerFile(t, map[string]uint32{"AAAC": 1, "CCCA": 2}),
		},
		enumOut: "2 1 2\n",
	}
	return cfg, r
}

func newTestPipeline(t *testing.T, cfg Config, opts ...Option) *Pipeline {
	t.Helper()
	p, err := New(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg, _ := testConfig(t)
	cfg.Statistic = "median"
	_, err = New(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg, _ = testConfig(t)
	cfg.MinSize, cfg.MaxSize = 4, 2
	_, err = New(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg, _ = testConfig(t)
	cfg.MaxSets = -1
	_, err = New(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg, _ = testConfig(t)
	cfg.FgGenome += ".missing"
	_, err = New(cfg)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_SetDefaults(t *testing.T) {
	cfg := Config{FgGenome: "fg.fa", BgGenome: "bg.fa", MaxSets: 0}
	cfg.SetDefaults()
	assert.Equal(t, DefaultConfig().MaxSets, cfg.MaxSets)
	assert.Equal(t, 64*1024, cfg.StderrLimit)

	cfg = Config{StderrLimit: -1}
	cfg.SetDefaults()
	assert.Equal(t, -1, cfg.StderrLimit, "negative keeps all stderr")
}

func TestPipeline_Run(t *testing.T) {
	cfg, runner := testConfig(t)
	h := &recordingHandler{}
	p := newTestPipeline(t, cfg, WithRunner(runner), WithEventHandler(h))

	assert.Equal(t, StateIdle, p.Status())
	res, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Sets, 1)
	assert.Equal(t, []string{"AAAC", "CCCA"}, res.Sets[0].Set.Seqs())
	assert.Equal(t, 40.0, res.Sets[0].Quality.Score)
	assert.Equal(t, StateDone, p.Status())
	assert.Equal(t, []State{
		StateCounting, StateImporting, StateLocating, StateGraphing,
		StateSearching, StateScoring, StateDone,
	}, h.states)
	assert.Equal(t, 2, runner.counts)

	var out bytes.Buffer
	require.NoError(t, WriteSets(&out, res.Sets))
	assert.Equal(t, "40\t2\t2\tAAAC,CCCA\n", out.String())
}

func TestPipeline_StagesReuseWork(t *testing.T) {
	cfg, runner := testConfig(t)
	p := newTestPipeline(t, cfg, WithRunner(runner))
	ctx := context.Background()

	imp, err := p.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Foreground: 2, Created: 2}, imp)
	assert.Equal(t, StateDone, p.Status())

	art, err := p.Graph(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAAC", "CCCA"}, art.Graph.Nodes)
	assert.FileExists(t, art.Path)

	sets, err := p.Sets(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sets.Seen)
	assert.Zero(t, sets.Rejected)
	require.Len(t, sets.Sets, 1)

	// a fresh pipeline over the same workspace counts nothing again
	again := newTestPipeline(t, cfg, WithRunner(runner))
	imp, err = again.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Foreground: 2, Existing: 2}, imp)
	assert.Equal(t, 2, runner.counts)
}

func TestPipeline_PrimerList(t *testing.T) {
	cfg, runner := testConfig(t)
	cfg.PrimerList = filepath.Join(t.TempDir(), "primers.txt")
	require.NoError(t, os.WriteFile(cfg.PrimerList, []byte("# chosen by hand\nCCCA\n\nAAAC 2 1 2.0\nTTTTT\n"), 0o644))
	p := newTestPipeline(t, cfg, WithRunner(runner))
	ctx := context.Background()

	imp, err := p.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, imp)
	assert.Zero(t, runner.counts)

	res, err := p.Sets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"CCCA", "AAAC"}, res.Graph.Graph.Nodes, "TTTTT is not in the foreground")
	require.Len(t, res.Sets, 1)
}

func TestPipeline_FailureNamesStage(t *testing.T) {
	cfg, runner := testConfig(t)
	runner.enumOut = "2 1 7\n"
	p := newTestPipeline(t, cfg, WithRunner(runner))

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGraphConstraint)
	stage, ok := FailedStage(err)
	require.True(t, ok)
	assert.Equal(t, Stage("find_sets"), stage)
	assert.Equal(t, StateFailed, p.Status())

	_, ok = FailedStage(errors.New("plain"))
	assert.False(t, ok)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "Searching", StateSearching.String())
	assert.Equal(t, "Unknown", State(99).String())
}

func TestIsVersionCompatible(t *testing.T) {
	tests := []struct {
		version, min string
		want         bool
	}{
		{"1.0.0", "1.0.0", true},
		{"1.2.0", "1.1.9", true},
		{"1.0.1", "1.0.2", false},
		{"2.0.0", "1.9.9", true},
		{"0.9.0", "1.0.0", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isVersionCompatible(tt.version, tt.min), "%s >= %s", tt.version, tt.min)
	}
	require.NoError(t, validateModuleVersions())
	assert.Equal(t, Version, ModuleVersions()["swga"])
	assert.Contains(t, ModuleVersions(), "kmer")
}

func TestPipeline_Prune(t *testing.T) {
	cfg, runner := testConfig(t)
	p := newTestPipeline(t, cfg, WithRunner(runner))
	ctx := context.Background()

	_, err := p.Count(ctx)
	require.NoError(t, err)
	stray := filepath.Join(cfg.WorkDir, "interrupted-4mers-t2.solid_kmers_binary")
	require.NoError(t, os.WriteFile(stray, []byte("partial"), 0o644))

	res, err := p.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Files)
	assert.NoFileExists(t, stray)

	// trusted counter output survives
	_, err = p.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, runner.counts)
}
