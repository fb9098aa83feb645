package app

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	gocache "github.com/patrickmn/go-cache"

	"github.com/bft-labs/swga/internal/domain"
	"github.com/bft-labs/swga/internal/ports"
)

// Statistic selects the spacing measure used to score a set.
type Statistic string

const (
	StatisticMin  Statistic = "min"
	StatisticMean Statistic = "mean"
)

// ParseStatistic validates a statistic name.
func ParseStatistic(s string) (Statistic, error) {
	switch Statistic(s) {
	case StatisticMin, StatisticMean:
		return Statistic(s), nil
	}
	return "", fmt.Errorf("%w: unknown spacing statistic %q", domain.ErrInvalidConfig, s)
}

// ScoreConfig configures set scoring.
type ScoreConfig struct {
	// MinBgBindDist discards sets whose statistic is below it.
	MinBgBindDist int64

	Statistic Statistic

	// Strands whose background sites count toward spacing.
	Strands []domain.Strand

	// BgGenomeLength is the statistic for sets with fewer than two sites.
	BgGenomeLength int64
}

// ScoredSource is a single-pass stream of scored sets.
type ScoredSource interface {
	Next(ctx context.Context) (domain.ScoredSet, error)
	Close() error
}

// SetScorer scores sets by the spacing of their background binding sites.
type SetScorer struct {
	cfg    ScoreConfig
	locs   ports.LocationRepository
	bgID   string
	cache  *gocache.Cache
	logger ports.Logger
}

// NewSetScorer creates a scorer reading sites of genome bgID.
func NewSetScorer(cfg ScoreConfig, locs ports.LocationRepository, bgID string, logger ports.Logger) *SetScorer {
	if cfg.Statistic == "" {
		cfg.Statistic = StatisticMin
	}
	if len(cfg.Strands) == 0 {
		cfg.Strands = []domain.Strand{domain.StrandForward}
	}
	return &SetScorer{
		cfg:  cfg,
		locs: locs,
		bgID: bgID,
		// No janitor: entries live as long as the scorer.
		cache:  gocache.New(gocache.NoExpiration, 0),
		logger: logger,
	}
}

func (s *SetScorer) positions(ctx context.Context, primerID int64) ([]int64, error) {
	key := fmt.Sprintf("%d", primerID)
	if v, ok := s.cache.Get(key); ok {
		return v.([]int64), nil
	}
	pos, err := s.locs.Positions(ctx, primerID, s.bgID, s.cfg.Strands)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, pos)
	return pos, nil
}

// Quality computes the spacing metrics of set.
func (s *SetScorer) Quality(ctx context.Context, set domain.PrimerSet) (domain.SetQuality, error) {
	var all []int64
	for _, p := range set.Primers {
		pos, err := s.positions(ctx, p.ID)
		if err != nil {
			return domain.SetQuality{}, err
		}
		all = append(all, pos...)
	}
	q := spacing(all, s.cfg.BgGenomeLength)
	q.Score = float64(q.MinGap)
	if s.cfg.Statistic == StatisticMean {
		q.Score = q.MeanGap
	}
	return q, nil
}

// spacing sorts coords and measures the gaps between neighbours. With fewer
// than two coordinates both gaps are genomeLen.
func spacing(coords []int64, genomeLen int64) domain.SetQuality {
	q := domain.SetQuality{Sites: len(coords)}
	if len(coords) < 2 {
		q.MinGap = genomeLen
		q.MeanGap = float64(genomeLen)
		return q
	}
	sorted := append([]int64(nil), coords...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total int64
	q.MinGap = sorted[1] - sorted[0]
	for i := 1; i < len(sorted); i++ {
		gap := sorted[i] - sorted[i-1]
		total += gap
		if gap < q.MinGap {
			q.MinGap = gap
		}
	}
	q.MeanGap = float64(total) / float64(len(sorted)-1)
	return q
}

// Filter returns a lazy stream of the sets from src that meet
// MinBgBindDist. Closing it closes src.
func (s *SetScorer) Filter(src SetSource) *FilterIterator {
	return &FilterIterator{scorer: s, src: src}
}

// FilterIterator scores and filters sets as they are pulled.
type FilterIterator struct {
	scorer   *SetScorer
	src      SetSource
	seen     int
	rejected int
}

func (f *FilterIterator) Next(ctx context.Context) (domain.ScoredSet, error) {
	for {
		set, err := f.src.Next(ctx)
		if err != nil {
			return domain.ScoredSet{}, err
		}
		f.seen++
		q, err := f.scorer.Quality(ctx, set)
		if err != nil {
			return domain.ScoredSet{}, err
		}
		if q.Score < float64(f.scorer.cfg.MinBgBindDist) {
			f.rejected++
			continue
		}
		return domain.ScoredSet{Set: set, Quality: q}, nil
	}
}

func (f *FilterIterator) Close() error {
	return f.src.Close()
}

// Counts returns how many sets were read and how many were rejected.
func (f *FilterIterator) Counts() (seen, rejected int) {
	return f.seen, f.rejected
}

// Rank drains src and returns the best limit sets, best first. Ordering is
// score descending, then fewer background sites, then member sequences.
// Memory is bounded by limit, which must be positive.
func (s *SetScorer) Rank(ctx context.Context, src ScoredSource, limit int) ([]domain.ScoredSet, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: rank limit %d must be positive", domain.ErrInvalidConfig, limit)
	}
	h := &worstFirst{}
	for {
		ss, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		e := rankEntry{set: ss, key: ss.Set.Key()}
		if h.Len() < limit {
			heap.Push(h, e)
			continue
		}
		if better(e, (*h)[0]) {
			(*h)[0] = e
			heap.Fix(h, 0)
		}
	}

	out := make([]domain.ScoredSet, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(rankEntry).set
	}
	return out, nil
}

type rankEntry struct {
	set domain.ScoredSet
	key string
}

func better(a, b rankEntry) bool {
	if a.set.Quality.Score != b.set.Quality.Score {
		return a.set.Quality.Score > b.set.Quality.Score
	}
	if a.set.Quality.Sites != b.set.Quality.Sites {
		return a.set.Quality.Sites < b.set.Quality.Sites
	}
	return a.key < b.key
}

// worstFirst is a heap whose root is the worst kept set.
type worstFirst []rankEntry

func (h worstFirst) Len() int            { return len(h) }
func (h worstFirst) Less(i, j int) bool  { return better(h[j], h[i]) }
func (h worstFirst) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *worstFirst) Push(x interface{}) { *h = append(*h, x.(rankEntry)) }
func (h *worstFirst) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
