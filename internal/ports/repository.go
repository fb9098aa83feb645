package ports

import (
	"context"

	"github.com/bft-labs/swga/internal/domain"
)

// PrimerRepository persists primers. Sequences are unique.
type PrimerRepository interface {
	// FindBySeq returns the primer for seq and whether it exists.
	FindBySeq(ctx context.Context, seq string) (domain.Primer, bool, error)

	// FindBySeqs is a set-membership query keyed by sequence.
	FindBySeqs(ctx context.Context, seqs []string) (map[string]domain.Primer, error)

	// Create stores p and returns it with its ID set.
	Create(ctx context.Context, p domain.Primer) (domain.Primer, error)

	// CreateBatch stores ps in one transaction and returns how many were written.
	CreateBatch(ctx context.Context, ps []domain.Primer) (int, error)

	List(ctx context.Context, q domain.PrimerQuery) ([]domain.Primer, error)

	Count(ctx context.Context) (int64, error)
}

// LocationRepository persists binding sites, once per (primer, genome, strand).
type LocationRepository interface {
	// Indexed reports whether the triple has been scanned.
	Indexed(ctx context.Context, primerID int64, genomeID string, strand domain.Strand) (bool, error)

	// Append stores locs and marks the triple as scanned in one transaction.
	// It returns false without writing if the triple was already scanned.
	Append(ctx context.Context, primerID int64, genomeID string, strand domain.Strand, locs []domain.PrimerLocation) (bool, error)

	// Positions returns the linearised positions for the given strands.
	Positions(ctx context.Context, primerID int64, genomeID string, strands []domain.Strand) ([]int64, error)

	// Locations returns every stored site of the primer in the genome.
	Locations(ctx context.Context, primerID int64, genomeID string) ([]domain.PrimerLocation, error)
}
