package domain

import (
	"fmt"
	"strings"
)

// Strand selects which strand of a genome is searched.
type Strand int

const (
	StrandForward Strand = iota
	StrandReverse
)

// String returns "+" or "-".
func (s Strand) String() string {
	if s == StrandReverse {
		return "-"
	}
	return "+"
}

// ParseStrands maps "forward" (or "+"), "reverse" (or "-") and "both" to
// the strands to search. Empty means forward.
func ParseStrands(s string) ([]Strand, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "forward", "+":
		return []Strand{StrandForward}, nil
	case "reverse", "-":
		return []Strand{StrandReverse}, nil
	case "both":
		return []Strand{StrandForward, StrandReverse}, nil
	default:
		return nil, fmt.Errorf("%w: unknown strands %q", ErrInvalidConfig, s)
	}
}

// PrimerLocation is one exact match of a primer in a genome.
type PrimerLocation struct {
	PrimerID int64
	GenomeID string
	RecordID string

	// Offset is the 0-based match start within the record.
	Offset int64

	// Position is the record's start in the concatenated genome plus Offset.
	Position int64

	Strand Strand
}

// GenomeStats summarizes a genome file.
type GenomeStats struct {
	Records int
	Length  int64
}
