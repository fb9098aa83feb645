package app

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/swga/internal/domain"
	"github.com/bft-labs/swga/internal/ports"
	"github.com/bft-labs/swga/pkg/graph"
)

// sevenNodes has nodes 1, 4 and 7 mutually adjacent plus edge 2-3.
func sevenNodes() *GraphArtifact {
	seqs := []string{"AAAA", "ACCA", "CAAC", "CCCC", "AACA", "CACA", "GGGG"}
	g := &graph.Graph{Nodes: seqs, Edges: [][2]int{{0, 3}, {0, 6}, {3, 6}, {1, 2}}}
	return &GraphArtifact{Path: "/w/g.graph", NodesPath: "/w/g.graph.nodes", Graph: g, Nodes: primers(seqs...)}
}

func collect(t *testing.T, it SetSource) ([]domain.PrimerSet, error) {
	t.Helper()
	var out []domain.PrimerSet
	for {
		s, err := it.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
}

func TestSetSearcher_MapsIDsToPrimers(t *testing.T) {
	runner := newEnumRunner("3 1 4 7\n")
	s := NewSetSearcher(SetSearchConfig{Executable: "enum", MinSize: 2, MaxSize: 5}, runner, noop())

	it, err := s.Search(context.Background(), sevenNodes())
	require.NoError(t, err)
	defer it.Close()

	sets, err := collect(t, it)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, []string{"AAAA", "CCCC", "GGGG"}, sets[0].Seqs())

	require.Len(t, runner.cmds, 1)
	assert.Equal(t, []string{"-i", "/w/g.graph", "-l", "2", "-h", "5"}, runner.cmds[0].Args)
}

func TestSetSearcher_MalformedLines(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"size mismatch", "3 1 4\n"},
		{"non-integer size", "x 1 4\n"},
		{"non-integer id", "2 1 z\n"},
		{"duplicate id", "2 4 4\n"},
		{"too small", "1 4\n"},
		{"too large", "4 1 4 7 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := newEnumRunner("2 1 4\n" + tt.line + "2 4 7\n")
			runner.proc.stderr = "set_finder: internal error 42\n"
			s := NewSetSearcher(SetSearchConfig{Executable: "enum", MinSize: 2, MaxSize: 3}, runner, noop())
			it, err := s.Search(context.Background(), sevenNodes())
			require.NoError(t, err)

			sets, err := collect(t, it)
			assert.Len(t, sets, 1, "sets before the bad line are delivered")
			var ef *domain.EnumeratorFailure
			require.True(t, errors.As(err, &ef), "got %v", err)
			assert.NotEmpty(t, ef.Line)
			assert.Equal(t, "set_finder: internal error 42\n", ef.Stderr)
			assert.Equal(t, 1, runner.proc.kills)

			_, again := it.Next(context.Background())
			assert.Equal(t, err, again, "failure is terminal")
		})
	}
}

func TestSetSearcher_GraphConstraintViolation(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"id out of range", "2 1 8\n"},
		{"zero id", "2 0 1\n"},
		{"not adjacent", "2 1 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := newEnumRunner(tt.line)
			s := NewSetSearcher(SetSearchConfig{Executable: "enum", MinSize: 1, MaxSize: 5}, runner, noop())
			it, err := s.Search(context.Background(), sevenNodes())
			require.NoError(t, err)

			_, err = collect(t, it)
			assert.ErrorIs(t, err, domain.ErrGraphConstraint)
			assert.NotErrorIs(t, err, domain.ErrEnumerator)
			assert.Equal(t, 1, runner.proc.kills)
		})
	}
}

func TestSetSearcher_NonZeroExitSurfacesStderr(t *testing.T) {
	runner := newEnumRunner("2 1 4\n")
	runner.proc.waitErr = &ports.ExitError{Command: "enum", Code: 3, Stderr: "oops: bad graph\n"}
	s := NewSetSearcher(SetSearchConfig{Executable: "enum", MinSize: 2, MaxSize: 3}, runner, noop())

	it, err := s.Search(context.Background(), sevenNodes())
	require.NoError(t, err)
	sets, err := collect(t, it)
	assert.Len(t, sets, 1)

	var ef *domain.EnumeratorFailure
	require.True(t, errors.As(err, &ef))
	assert.Equal(t, 3, ef.ExitCode)
	assert.Equal(t, "oops: bad graph\n", ef.Stderr)
}

func TestSetSearcher_SizeBoundsHold(t *testing.T) {
	runner := newEnumRunner("2 1 4\n3 1 4 7\n\n2 4 7\n2 2 3\n")
	s := NewSetSearcher(SetSearchConfig{Executable: "enum", MinSize: 2, MaxSize: 3}, runner, noop())
	it, err := s.Search(context.Background(), sevenNodes())
	require.NoError(t, err)

	sets, err := collect(t, it)
	require.NoError(t, err)
	assert.Len(t, sets, 4)
	for _, set := range sets {
		assert.GreaterOrEqual(t, set.Size(), 2)
		assert.LessOrEqual(t, set.Size(), 3)
	}
	assert.Equal(t, 4, it.Emitted())
}

func TestSetSearcher_CloseKillsRunningEnumerator(t *testing.T) {
	runner := newEnumRunner("2 1 4\n2 4 7\n")
	s := NewSetSearcher(SetSearchConfig{Executable: "enum", MinSize: 2, MaxSize: 3}, runner, noop())
	it, err := s.Search(context.Background(), sevenNodes())
	require.NoError(t, err)

	_, err = it.Next(context.Background())
	require.NoError(t, err)
	require.NoError(t, it.Close())
	assert.Equal(t, 1, runner.proc.kills)
	assert.Equal(t, 1, runner.proc.waits)
}
