package ports

import (
	"context"

	"github.com/bft-labs/swga/internal/domain"
)

// Match is one exact occurrence of a sequence in a genome.
type Match struct {
	RecordID string
	Offset   int64
	Position int64
}

// Genome exposes a genome's records for exact matching. Matches never span
// record boundaries.
type Genome interface {
	// Identity is stable for unchanged file content at the same path.
	Identity() string

	// Path is the genome file path handed to external tools.
	Path() string

	Stats(ctx context.Context) (domain.GenomeStats, error)

	// Count returns the number of overlapping occurrences of seq.
	Count(ctx context.Context, seq string) (int64, error)

	// FindAll returns every overlapping occurrence of seq in record order.
	FindAll(ctx context.Context, seq string) ([]Match, error)
}
