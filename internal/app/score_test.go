package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/swga/internal/domain"
)

// memLocations is a ports.LocationRepository over fixed positions.
type memLocations struct {
	pos   map[int64][]int64
	calls int
}

func (m *memLocations) Indexed(context.Context, int64, string, domain.Strand) (bool, error) {
	return true, nil
}

func (m *memLocations) Append(context.Context, int64, string, domain.Strand, []domain.PrimerLocation) (bool, error) {
	return false, nil
}

func (m *memLocations) Positions(_ context.Context, id int64, _ string, _ []domain.Strand) ([]int64, error) {
	m.calls++
	return m.pos[id], nil
}

func (m *memLocations) Locations(context.Context, int64, string) ([]domain.PrimerLocation, error) {
	return nil, nil
}

// setList is a SetSource over fixed sets.
type setList struct {
	sets   []domain.PrimerSet
	err    error
	closed bool
}

func (s *setList) Next(context.Context) (domain.PrimerSet, error) {
	if len(s.sets) == 0 {
		if s.err != nil {
			return domain.PrimerSet{}, s.err
		}
		return domain.PrimerSet{}, io.EOF
	}
	out := s.sets[0]
	s.sets = s.sets[1:]
	return out, nil
}

func (s *setList) Close() error {
	s.closed = true
	return nil
}

func set(ids ...int64) domain.PrimerSet {
	var ps domain.PrimerSet
	for _, id := range ids {
		ps.Primers = append(ps.Primers, domain.Primer{ID: id, Seq: fmt.Sprintf("P%03d", id)})
	}
	return ps
}

func TestSpacing(t *testing.T) {
	q := spacing([]int64{1000, 10, 15}, 5000)
	assert.Equal(t, 3, q.Sites)
	assert.Equal(t, int64(5), q.MinGap)
	assert.Equal(t, 495.0, q.MeanGap)

	q = spacing([]int64{42}, 5000)
	assert.Equal(t, int64(5000), q.MinGap)
	assert.Equal(t, 5000.0, q.MeanGap)

	q = spacing(nil, 5000)
	assert.Equal(t, 0, q.Sites)
	assert.Equal(t, int64(5000), q.MinGap)
}

func TestFilter_RejectsCloseSites(t *testing.T) {
	locs := &memLocations{pos: map[int64][]int64{1: {10, 1000}, 2: {15}}}
	s := NewSetScorer(ScoreConfig{MinBgBindDist: 50, BgGenomeLength: 5000}, locs, "bg", noop())

	f := s.Filter(&setList{sets: []domain.PrimerSet{set(1, 2)}})
	_, err := f.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF, "minimum gap 5 < 50 rejects the set")
	seen, rejected := f.Counts()
	assert.Equal(t, 1, seen)
	assert.Equal(t, 1, rejected)
}

func TestFilter_MeanStatisticAndSparseSets(t *testing.T) {
	locs := &memLocations{pos: map[int64][]int64{1: {10, 1000}, 2: {15}, 3: {}, 4: {2000}}}
	s := NewSetScorer(ScoreConfig{MinBgBindDist: 50, Statistic: StatisticMean, BgGenomeLength: 5000}, locs, "bg", noop())

	f := s.Filter(&setList{sets: []domain.PrimerSet{set(1, 2), set(3, 4)}})
	defer f.Close()

	first, err := f.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 495.0, first.Quality.Score)

	sparse, err := f.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5000.0, sparse.Quality.Score, "fewer than two sites scores the genome length")
	assert.Equal(t, 1, sparse.Quality.Sites)
}

func TestScorer_MemoisesPositions(t *testing.T) {
	locs := &memLocations{pos: map[int64][]int64{1: {10}, 2: {500}, 3: {1000}}}
	s := NewSetScorer(ScoreConfig{BgGenomeLength: 5000}, locs, "bg", noop())
	ctx := context.Background()

	for _, ps := range []domain.PrimerSet{set(1, 2), set(1, 3), set(2, 3)} {
		_, err := s.Quality(ctx, ps)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, locs.calls)
}

func TestRank_BoundedBestFirst(t *testing.T) {
	locs := &memLocations{pos: map[int64][]int64{}}
	var sets []domain.PrimerSet
	for i := int64(1); i <= 20; i++ {
		// gap of 10*i between two sites
		locs.pos[i] = []int64{0, 10 * i}
		sets = append(sets, set(i))
	}
	s := NewSetScorer(ScoreConfig{BgGenomeLength: 5000}, locs, "bg", noop())
	ctx := context.Background()

	src := &setList{sets: sets}
	got, err := s.Rank(ctx, s.Filter(src), 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []float64{200, 190, 180}, []float64{got[0].Quality.Score, got[1].Quality.Score, got[2].Quality.Score})
}

func TestRank_TieBreaks(t *testing.T) {
	locs := &memLocations{pos: map[int64][]int64{
		1: {0, 100},
		2: {0, 100, 200},
		3: {0, 100},
		4: {0, 100},
	}}
	s := NewSetScorer(ScoreConfig{BgGenomeLength: 5000}, locs, "bg", noop())

	got, err := s.Rank(context.Background(), s.Filter(&setList{sets: []domain.PrimerSet{set(2), set(4), set(3), set(1)}}), 4)
	require.NoError(t, err)
	var order []string
	for _, g := range got {
		order = append(order, g.Set.Key())
	}
	assert.Equal(t, []string{"P001", "P003", "P004", "P002"}, order)
}

func TestRank_RequiresPositiveLimit(t *testing.T) {
	locs := &memLocations{pos: map[int64][]int64{1: {0, 500}}}
	s := NewSetScorer(ScoreConfig{BgGenomeLength: 5000}, locs, "bg", noop())

	for _, limit := range []int{0, -1} {
		_, err := s.Rank(context.Background(), s.Filter(&setList{sets: []domain.PrimerSet{set(1)}}), limit)
		assert.ErrorIs(t, err, domain.ErrInvalidConfig, "limit %d", limit)
	}
}

func TestRank_PropagatesFailure(t *testing.T) {
	locs := &memLocations{pos: map[int64][]int64{1: {0, 500}}}
	s := NewSetScorer(ScoreConfig{BgGenomeLength: 5000}, locs, "bg", noop())
	boom := &domain.EnumeratorFailure{ExitCode: 2, Stderr: "boom"}

	_, err := s.Rank(context.Background(), s.Filter(&setList{sets: []domain.PrimerSet{set(1)}, err: boom}), 5)
	assert.True(t, errors.Is(err, domain.ErrEnumerator))
}

func TestParseStatistic(t *testing.T) {
	st, err := ParseStatistic("mean")
	require.NoError(t, err)
	assert.Equal(t, StatisticMean, st)
	_, err = ParseStatistic("median")
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}
