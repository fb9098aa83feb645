package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/swga/internal/domain"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPrimers_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := newStore(t).Primers()

	p, err := repo.Create(ctx, domain.NewPrimer("ACGT", 2, 1))
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, 2.0, p.Ratio)

	got, ok, err := repo.FindBySeq(ctx, "ACGT")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, p, got)

	_, ok, err = repo.FindBySeq(ctx, "TTTT")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.Create(ctx, domain.NewPrimer("ACGT", 3, 1))
	assert.Error(t, err, "sequence is unique")
}

func TestPrimers_RejectsZeroForeground(t *testing.T) {
	ctx := context.Background()
	repo := newStore(t).Primers()

	_, err := repo.Create(ctx, domain.NewPrimer("ACGT", 0, 5))
	assert.ErrorIs(t, err, domain.ErrInvalidPrimer)

	_, err = repo.CreateBatch(ctx, []domain.Primer{domain.NewPrimer("AAAA", 1, 0), domain.NewPrimer("CCCC", 0, 0)})
	assert.ErrorIs(t, err, domain.ErrInvalidPrimer)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPrimers_CreateBatchSkipsExisting(t *testing.T) {
	ctx := context.Background()
	repo := newStore(t).Primers()

	_, err := repo.Create(ctx, domain.NewPrimer("AAAA", 9, 9))
	require.NoError(t, err)

	var batch []domain.Primer
	for _, s := range []string{"AAAA", "CCCC", "GGGG"} {
		batch = append(batch, domain.NewPrimer(s, 5, 1))
	}
	n, err := repo.CreateBatch(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	found, err := repo.FindBySeqs(ctx, []string{"AAAA", "CCCC", "TTTT"})
	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.Equal(t, int64(9), found["AAAA"].FgFreq, "existing row untouched")
}

func TestPrimers_List(t *testing.T) {
	ctx := context.Background()
	repo := newStore(t).Primers()

	_, err := repo.CreateBatch(ctx, []domain.Primer{
		domain.NewPrimer("AAAA", 10, 2),  // 5
		domain.NewPrimer("CCCC", 10, 0),  // 0
		domain.NewPrimer("GGGG", 10, 5),  // 2
		domain.NewPrimer("TTTT", 2, 1),   // 2
		domain.NewPrimer("ACGTA", 50, 1), // 50
	})
	require.NoError(t, err)

	all, err := repo.List(ctx, domain.PrimerQuery{MaxBgFreq: -1})
	require.NoError(t, err)
	var seqs []string
	for _, p := range all {
		seqs = append(seqs, p.Seq)
	}
	assert.Equal(t, []string{"ACGTA", "AAAA", "GGGG", "TTTT", "CCCC"}, seqs)

	filtered, err := repo.List(ctx, domain.PrimerQuery{MinFgFreq: 5, MaxBgFreq: 4, Length: 4, Limit: 1})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "AAAA", filtered[0].Seq)
}

func TestLocations_AppendOnce(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	locs := store.Locations()

	ok, err := locs.Indexed(ctx, 1, "bg", domain.StrandForward)
	require.NoError(t, err)
	assert.False(t, ok)

	written, err := locs.Append(ctx, 1, "bg", domain.StrandForward, []domain.PrimerLocation{
		{RecordID: "r", Offset: 15, Position: 15},
		{RecordID: "r", Offset: 10, Position: 10},
	})
	require.NoError(t, err)
	assert.True(t, written)

	written, err = locs.Append(ctx, 1, "bg", domain.StrandForward, []domain.PrimerLocation{{RecordID: "r", Offset: 99, Position: 99}})
	require.NoError(t, err)
	assert.False(t, written, "second scan is ignored")

	written, err = locs.Append(ctx, 1, "bg", domain.StrandReverse, []domain.PrimerLocation{{RecordID: "r", Offset: 1000, Position: 1000}})
	require.NoError(t, err)
	assert.True(t, written)

	fwd, err := locs.Positions(ctx, 1, "bg", []domain.Strand{domain.StrandForward})
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 15}, fwd)

	both, err := locs.Positions(ctx, 1, "bg", []domain.Strand{domain.StrandForward, domain.StrandReverse})
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 15, 1000}, both)

	all, err := locs.Locations(ctx, 1, "bg")
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, domain.StrandReverse, all[2].Strand)
}

func TestLocations_ZeroHitsMarked(t *testing.T) {
	ctx := context.Background()
	locs := newStore(t).Locations()

	written, err := locs.Append(ctx, 7, "fg", domain.StrandForward, nil)
	require.NoError(t, err)
	assert.True(t, written)

	ok, err := locs.Indexed(ctx, 7, "fg", domain.StrandForward)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "primers.db")
	s, err := Open(path)
	require.NoError(t, err)

	_, err = s.Primers().Create(context.Background(), domain.NewPrimer("ACGT", 1, 0))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	n, err := s.Primers().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
