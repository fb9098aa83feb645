package domain

import (
	"fmt"
	"strings"
)

// Primer is a candidate primer and its genome occurrence counts.
type Primer struct {
	ID     int64
	Seq    string
	FgFreq int64
	BgFreq int64
	Ratio  float64
}

// Ratio returns fg/bg, or 0 when bg is 0.
//
// A primer absent from the background is the best case yet ranks last under
// a descending-ratio sort. This is the established behaviour and downstream
// candidate ordering depends on it.
func Ratio(fg, bg int64) float64 {
	if bg > 0 {
		return float64(fg) / float64(bg)
	}
	return 0
}

// NewPrimer builds an unsaved primer from its counts.
func NewPrimer(seq string, fg, bg int64) Primer {
	return Primer{Seq: seq, FgFreq: fg, BgFreq: bg, Ratio: Ratio(fg, bg)}
}

// Validate checks the invariants a primer must hold before it is stored.
func (p Primer) Validate() error {
	if err := ValidateSeq(p.Seq); err != nil {
		return err
	}
	if p.FgFreq <= 0 {
		return fmt.Errorf("%w: %s has fg_freq %d", ErrInvalidPrimer, p.Seq, p.FgFreq)
	}
	if p.BgFreq < 0 {
		return fmt.Errorf("%w: %s has bg_freq %d", ErrInvalidPrimer, p.Seq, p.BgFreq)
	}
	return nil
}

// ValidateSeq checks that seq is a non-empty string over A, C, G, T.
func ValidateSeq(seq string) error {
	if seq == "" {
		return fmt.Errorf("%w: empty sequence", ErrInvalidPrimer)
	}
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case 'A', 'C', 'G', 'T':
		default:
			return fmt.Errorf("%w: %q has invalid base %q", ErrInvalidPrimer, seq, seq[i])
		}
	}
	return nil
}

// NormalizeSeq upper-cases and trims a user-supplied sequence.
func NormalizeSeq(seq string) string {
	return strings.ToUpper(strings.TrimSpace(seq))
}

// PrimerQuery filters the primer catalog.
type PrimerQuery struct {
	// MinFgFreq excludes primers with fewer foreground hits. 0 disables.
	MinFgFreq int64

	// MaxBgFreq excludes primers with more background hits. Negative disables.
	MaxBgFreq int64

	// Length restricts to primers of this length. 0 disables.
	Length int

	// Limit caps the result. 0 means no limit.
	Limit int
}
