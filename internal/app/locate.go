package app

import (
	"context"
	"fmt"

	"github.com/bft-labs/swga/internal/domain"
	"github.com/bft-labs/swga/internal/ports"
	"github.com/bft-labs/swga/pkg/dimer"
)

// LocationIndexer records where primers bind. Each (primer, genome, strand)
// is scanned at most once.
type LocationIndexer struct {
	repo   ports.LocationRepository
	logger ports.Logger
}

// NewLocationIndexer creates an indexer.
func NewLocationIndexer(repo ports.LocationRepository, logger ports.Logger) *LocationIndexer {
	return &LocationIndexer{repo: repo, logger: logger}
}

// Index scans g for exact, overlapping matches of p on the given strand and
// stores them. The reverse strand is searched with the reverse complement
// and reported in forward coordinates. It returns the number of sites
// stored, or -1 if the triple was already indexed.
func (x *LocationIndexer) Index(ctx context.Context, p domain.Primer, g ports.Genome, strand domain.Strand) (int, error) {
	done, err := x.repo.Indexed(ctx, p.ID, g.Identity(), strand)
	if err != nil {
		return 0, err
	}
	if done {
		return -1, nil
	}

	needle := p.Seq
	if strand == domain.StrandReverse {
		needle = dimer.ReverseComplement(p.Seq)
	}
	matches, err := g.FindAll(ctx, needle)
	if err != nil {
		return 0, fmt.Errorf("locate %s: %w", p.Seq, err)
	}

	locs := make([]domain.PrimerLocation, len(matches))
	for i, m := range matches {
		locs[i] = domain.PrimerLocation{
			PrimerID: p.ID,
			GenomeID: g.Identity(),
			RecordID: m.RecordID,
			Offset:   m.Offset,
			Position: m.Position,
			Strand:   strand,
		}
	}
	written, err := x.repo.Append(ctx, p.ID, g.Identity(), strand, locs)
	if err != nil {
		return 0, err
	}
	if !written {
		return -1, nil
	}
	return len(locs), nil
}

// IndexAll indexes every primer on every strand.
func (x *LocationIndexer) IndexAll(ctx context.Context, primers []domain.Primer, g ports.Genome, strands []domain.Strand) error {
	scanned, sites := 0, 0
	for _, p := range primers {
		for _, s := range strands {
			n, err := x.Index(ctx, p, g, s)
			if err != nil {
				return err
			}
			if n >= 0 {
				scanned++
				sites += n
			}
		}
	}
	x.logger.Info("located primers",
		ports.String("genome", g.Identity()),
		ports.Int("primers", len(primers)),
		ports.Int("scanned", scanned),
		ports.Int("sites", sites),
	)
	return nil
}
