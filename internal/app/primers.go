package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bft-labs/swga/internal/domain"
	"github.com/bft-labs/swga/internal/ports"
)

// PrimerStore owns primer creation. Every primer it persists occurs in the
// foreground genome.
type PrimerStore struct {
	repo      ports.PrimerRepository
	fg        ports.Genome
	bg        ports.Genome
	logger    ports.Logger
	batchSize int
}

// NewPrimerStore creates a store counting against fg and bg.
func NewPrimerStore(repo ports.PrimerRepository, fg, bg ports.Genome, logger ports.Logger, batchSize int) *PrimerStore {
	return &PrimerStore{repo: repo, fg: fg, bg: bg, logger: logger, batchSize: batchSize}
}

// FindOrCreate returns the stored primer for seq, counting it in both genomes
// and persisting it on a miss. A sequence absent from the foreground is a
// *domain.PrimerNotInForegroundError and nothing is written.
func (s *PrimerStore) FindOrCreate(ctx context.Context, seq string) (domain.Primer, error) {
	seq = domain.NormalizeSeq(seq)
	if err := domain.ValidateSeq(seq); err != nil {
		return domain.Primer{}, err
	}

	p, ok, err := s.repo.FindBySeq(ctx, seq)
	if err != nil {
		return domain.Primer{}, err
	}
	if ok {
		return p, nil
	}

	fg, err := s.fg.Count(ctx, seq)
	if err != nil {
		return domain.Primer{}, fmt.Errorf("count %s in foreground: %w", seq, err)
	}
	if fg == 0 {
		return domain.Primer{}, &domain.PrimerNotInForegroundError{Seq: seq}
	}
	bg, err := s.bg.Count(ctx, seq)
	if err != nil {
		return domain.Primer{}, fmt.Errorf("count %s in background: %w", seq, err)
	}

	return s.repo.Create(ctx, domain.NewPrimer(seq, fg, bg))
}

// ImportResult summarizes a bulk import.
type ImportResult struct {
	Foreground int
	Existing   int
	Created    int
}

// ImportKmers stores every foreground k-mer not yet in the catalog, taking
// background counts from bg for those sequences only. No genome is scanned.
// Both sources are drained and closed.
func (s *PrimerStore) ImportKmers(ctx context.Context, fg, bg KmerSource) (ImportResult, error) {
	defer fg.Close()
	defer bg.Close()

	var (
		res   ImportResult
		order []string
		fgFrq = make(map[string]int64)
	)
	for {
		c, err := fg.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read foreground counts: %w", err)
		}
		if c.Freq == 0 {
			continue
		}
		if _, dup := fgFrq[c.Seq]; !dup {
			order = append(order, c.Seq)
		}
		fgFrq[c.Seq] = int64(c.Freq)
	}
	res.Foreground = len(order)

	bgFrq := make(map[string]int64, len(order))
	for {
		c, err := bg.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read background counts: %w", err)
		}
		if _, ok := fgFrq[c.Seq]; ok {
			bgFrq[c.Seq] = int64(c.Freq)
		}
	}

	existing, err := s.repo.FindBySeqs(ctx, order)
	if err != nil {
		return res, err
	}
	res.Existing = len(existing)

	batcher := NewBatcher(s.batchSize)
	flush := func() error {
		n, err := s.repo.CreateBatch(ctx, batcher.Batch())
		if err != nil {
			return err
		}
		res.Created += n
		batcher.Reset()
		return nil
	}
	for _, seq := range order {
		if _, ok := existing[seq]; ok {
			continue
		}
		if batcher.Add(domain.NewPrimer(seq, fgFrq[seq], bgFrq[seq])) {
			if err := flush(); err != nil {
				return res, err
			}
		}
	}
	if batcher.HasPending() {
		if err := flush(); err != nil {
			return res, err
		}
	}

	s.logger.Info("imported primers",
		ports.Int("foreground", res.Foreground),
		ports.Int("existing", res.Existing),
		ports.Int("created", res.Created),
	)
	return res, nil
}

// Resolve maps a primer list to stored primers in input order, collapsing
// duplicates. Missing primers are created; those absent from the foreground
// are logged and skipped.
func (s *PrimerStore) Resolve(ctx context.Context, rows []PrimerListRow) ([]domain.Primer, error) {
	seen := make(map[string]bool, len(rows))
	var seqs []string
	for _, r := range rows {
		seq := domain.NormalizeSeq(r.Seq)
		if seen[seq] {
			continue
		}
		seen[seq] = true
		seqs = append(seqs, seq)
	}

	found, err := s.repo.FindBySeqs(ctx, seqs)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Primer, 0, len(seqs))
	for _, seq := range seqs {
		if p, ok := found[seq]; ok {
			out = append(out, p)
			continue
		}
		p, err := s.FindOrCreate(ctx, seq)
		if errors.Is(err, domain.ErrPrimerNotInForeground) {
			s.logger.Warn("primer does not bind the foreground genome, skipping", ports.String("seq", seq))
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Candidates lists primers eligible for the compatibility graph, best ratio first.
func (s *PrimerStore) Candidates(ctx context.Context, q domain.PrimerQuery) ([]domain.Primer, error) {
	return s.repo.List(ctx, q)
}
